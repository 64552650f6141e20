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

package service

import (
	"fmt"
	"time"

	"github.com/wso2/identity-metadirectory-service/internal/activity/model"
	"github.com/wso2/identity-metadirectory-service/internal/activity/store"
	"github.com/wso2/identity-metadirectory-service/internal/system/config"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// Sink receives activity records. The Mongo repository satisfies it.
type Sink interface {
	AddRunRecord(record model.RunRecord) error
	AddItemOutcomes(outcomes []model.ItemOutcome) error
}

// Recorder buffers per-item outcomes for one run and flushes them with
// the run summary when the run finishes. Activity writes are best
// effort: a failure is logged, never propagated into the run itself.
type Recorder struct {
	sink  Sink
	items []model.ItemOutcome
	now   func() time.Time
}

// NewRecorder returns a recorder bound to the configured activity
// store. Without one, records go nowhere and only the audit log remains.
func NewRecorder() *Recorder {

	cfg := config.GetMDSRuntime().Config.Activity
	var sink Sink
	if cfg.URI != "" {
		if repo := store.NewActivityRepository(cfg.Collection); repo != nil {
			sink = repo
		}
	}
	return &Recorder{sink: sink, now: time.Now}
}

// NewRecorderWithSink returns a recorder over the given sink, used by
// tests.
func NewRecorderWithSink(sink Sink) *Recorder {

	return &Recorder{sink: sink, now: time.Now}
}

// RecordItem buffers one per-item outcome.
func (r *Recorder) RecordItem(taskID, objectID, mvoID, outcome, reason string) {

	r.items = append(r.items, model.ItemOutcome{
		TaskID:     taskID,
		ObjectID:   objectID,
		MvoID:      mvoID,
		Outcome:    outcome,
		Reason:     reason,
		RecordedAt: r.now(),
	})
}

// Flush writes the run summary and the buffered item outcomes.
func (r *Recorder) Flush(record model.RunRecord) {

	if r.sink == nil {
		r.items = nil
		return
	}
	logger := log.GetLogger()
	if err := r.sink.AddRunRecord(record); err != nil {
		logger.Error(fmt.Sprintf("Failed to write run record for task: %s", record.TaskID), log.Error(err))
	}
	if err := r.sink.AddItemOutcomes(r.items); err != nil {
		logger.Error(fmt.Sprintf("Failed to write item outcomes for task: %s", record.TaskID), log.Error(err))
	}
	r.items = nil
}
