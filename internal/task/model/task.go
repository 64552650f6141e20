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

// TaskKind discriminates the units of scheduled work.
type TaskKind string

const (
	KindFullImport            TaskKind = "full_import"
	KindDeltaImport           TaskKind = "delta_import"
	KindExport                TaskKind = "export"
	KindDeleteConnectedSystem TaskKind = "delete_connected_system"
	KindDeletionSweep         TaskKind = "deletion_sweep"
)

// TaskStatus is the lifecycle state of a worker task. Queued tasks are
// claimed exactly once by a dispatcher worker; Completed and Failed are
// terminal.
type TaskStatus string

const (
	TaskQueued    TaskStatus = "queued"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// TaskParams are the kind-specific parameters of a worker task.
type TaskParams struct {
	SystemID                 string `json:"system_id,omitempty"`
	EvaluateMvoDeletionRules bool   `json:"evaluate_mvo_deletion_rules,omitempty"`
}

// WorkerTask is one unit of scheduled synchronization work pulled from
// the durable queue. Tasks are idempotent by design: re-running one with
// the same inputs must not double-apply deltas.
type WorkerTask struct {
	TaskID        string     `json:"task_id"`
	Kind          TaskKind   `json:"kind"`
	Status        TaskStatus `json:"status"`
	Params        TaskParams `json:"params"`
	EnqueuedAt    time.Time  `json:"enqueued_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
}

// RunSummary accumulates the per-run counters emitted to the activity
// boundary when a task finishes.
type RunSummary struct {
	TaskID   string `json:"task_id"`
	Creates  int    `json:"creates"`
	Updates  int    `json:"updates"`
	Deletes  int    `json:"deletes"`
	NoChange int    `json:"no_change"`
	Errors   int    `json:"errors"`
}
