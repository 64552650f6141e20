/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package model

import "time"

// ItemOutcome is the recorded result for one object processed during a
// synchronization run. Reason explains no-change and error outcomes.
type ItemOutcome struct {
	TaskID     string    `bson:"task_id" json:"task_id"`
	ObjectID   string    `bson:"object_id,omitempty" json:"object_id,omitempty"`
	MvoID      string    `bson:"mvo_id,omitempty" json:"mvo_id,omitempty"`
	Outcome    string    `bson:"outcome" json:"outcome"`
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
	RecordedAt time.Time `bson:"recorded_at" json:"recorded_at"`
}

// RunRecord is the per-run summary written when a task finishes.
type RunRecord struct {
	TaskID        string    `bson:"task_id" json:"task_id"`
	Kind          string    `bson:"kind" json:"kind"`
	SystemID      string    `bson:"system_id,omitempty" json:"system_id,omitempty"`
	Status        string    `bson:"status" json:"status"`
	FailureReason string    `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	Creates       int       `bson:"creates" json:"creates"`
	Updates       int       `bson:"updates" json:"updates"`
	Deletes       int       `bson:"deletes" json:"deletes"`
	NoChange      int       `bson:"no_change" json:"no_change"`
	Errors        int       `bson:"errors" json:"errors"`
	StartedAt     time.Time `bson:"started_at" json:"started_at"`
	FinishedAt    time.Time `bson:"finished_at" json:"finished_at"`
}
