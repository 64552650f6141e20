/*
 * Copyright (c) 2025-2026, WSO2 LLC. (http://www.wso2.com).
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

package schedulers

import (
	"fmt"
	"time"

	drService "github.com/wso2/identity-metadirectory-service/internal/deferredref/service"
	exportService "github.com/wso2/identity-metadirectory-service/internal/export/service"
	"github.com/wso2/identity-metadirectory-service/internal/system/config"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
	taskModel "github.com/wso2/identity-metadirectory-service/internal/task/model"
	taskProvider "github.com/wso2/identity-metadirectory-service/internal/task/provider"
)

const (
	defaultDeletionSweepInterval = 5 * time.Minute
	defaultExportRetryInterval   = time.Minute
	staleReferenceCheckInterval  = time.Hour
)

// StartDeletionSweepScheduler periodically enqueues a deletion sweep
// task so scheduled metaverse objects whose grace period expired get
// tombstoned by the dispatcher pool.
func StartDeletionSweepScheduler() {

	interval := time.Duration(config.GetMDSRuntime().Config.Sync.DeletionSweepIntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultDeletionSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once at startup
	enqueueDeletionSweep()

	for range ticker.C {
		enqueueDeletionSweep()
	}
}

func enqueueDeletionSweep() {

	logger := log.GetLogger()
	taskService := taskProvider.NewTaskProvider().GetTaskService()
	task, err := taskService.EnqueueTask(taskModel.KindDeletionSweep, taskModel.TaskParams{})
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to enqueue deletion sweep task: %v", err))
		return
	}
	logger.Debug(fmt.Sprintf("Enqueued deletion sweep task %s", task.TaskID))
}

// StartExportRetryScheduler moves failed export changes back to pending
// once their retry interval has passed. Changes at the attempt cap were
// already abandoned by the exporter and stay put.
func StartExportRetryScheduler() {

	cfg := config.GetMDSRuntime().Config.Sync
	interval := time.Duration(cfg.ExportRetryIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultExportRetryInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	exporter := exportService.NewExporter()
	requeueFailedExports(exporter, interval)

	for range ticker.C {
		requeueFailedExports(exporter, interval)
	}
}

func requeueFailedExports(exporter *exportService.Exporter, retryAfter time.Duration) {

	logger := log.GetLogger()
	count, err := exporter.RequeueFailed(time.Now().UTC().Add(-retryAfter))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to requeue failed export changes: %v", err))
		return
	}
	if count > 0 {
		logger.Info(fmt.Sprintf("Requeued %d failed export change(s) for retry", count))
	}
}

// StartStaleReferenceScheduler logs warnings for deferred references
// whose target never appeared. The references stay queued; the warning
// gives operators a trail to broken reference data in source systems.
func StartStaleReferenceScheduler() {

	warningAge := time.Duration(config.GetMDSRuntime().Config.Sync.DeferredRefWarningAgeHours) * time.Hour
	if warningAge <= 0 {
		warningAge = 24 * time.Hour
	}
	ticker := time.NewTicker(staleReferenceCheckInterval)
	defer ticker.Stop()

	resolver := drService.NewResolver(nil)
	warnStaleReferences(resolver, warningAge)

	for range ticker.C {
		warnStaleReferences(resolver, warningAge)
	}
}

func warnStaleReferences(resolver *drService.Resolver, warningAge time.Duration) {

	if _, err := resolver.WarnStale(time.Now().UTC().Add(-warningAge)); err != nil {
		log.GetLogger().Error(fmt.Sprintf("Failed to scan for stale deferred references: %v", err))
	}
}
