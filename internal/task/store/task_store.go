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

package store

import (
	"fmt"
	"time"

	"github.com/wso2/identity-metadirectory-service/internal/system/database/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/row"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
	"github.com/wso2/identity-metadirectory-service/internal/task/model"
)

// EnqueueTask appends a task to the durable queue.
func EnqueueTask(task model.WorkerTask) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for enqueuing worker task", log.Error(err))
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.InsertWorkerTask[provider.NewDBProvider().GetDBType()]
	_, err = dbClient.ExecuteQuery(query, task.TaskID, string(task.Kind), task.Params.SystemID,
		task.Params.EvaluateMvoDeletionRules, task.EnqueuedAt)
	if err != nil {
		errorMsg := fmt.Sprintf("Error occurred while enqueuing worker task: %s", task.TaskID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.WORKER_TASK_STORE.Code,
			Message:     errors2.WORKER_TASK_STORE.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// ClaimNextTask atomically claims the oldest queued task and marks it
// running. Concurrent workers never claim the same task; nil means the
// queue is empty.
func ClaimNextTask(now time.Time) (*model.WorkerTask, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for claiming worker task", log.Error(err))
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.ClaimNextWorkerTask[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, now)
	if err != nil {
		logger.Debug("Failed to claim worker task", log.Error(err))
		return nil, errors2.NewServerError(errors2.WORKER_TASK_STORE, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return taskFromRow(results[0]), nil
}

// CompleteTask marks a task completed.
func CompleteTask(taskID string, now time.Time) error {

	return execTask(scripts.CompleteWorkerTask, taskID, now)
}

// FailTask marks a task failed with the reason shown to operators.
func FailTask(taskID string, now time.Time, reason string) error {

	return execTask(scripts.FailWorkerTask, taskID, now, reason)
}

// GetTask fetches one task by id, or nil.
func GetTask(taskID string) (*model.WorkerTask, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.GetWorkerTask[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, taskID)
	if err != nil {
		return nil, errors2.NewServerError(errors2.WORKER_TASK_STORE, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return taskFromRow(results[0]), nil
}

func execTask(queries map[string]string, args ...interface{}) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := queries[provider.NewDBProvider().GetDBType()]
	if _, err := dbClient.ExecuteQuery(query, args...); err != nil {
		return errors2.NewServerError(errors2.WORKER_TASK_STORE, err)
	}
	return nil
}

func taskFromRow(r map[string]interface{}) *model.WorkerTask {

	return &model.WorkerTask{
		TaskID: row.String(r["task_id"]),
		Kind:   model.TaskKind(row.String(r["kind"])),
		Status: model.TaskStatus(row.String(r["status"])),
		Params: model.TaskParams{
			SystemID:                 row.String(r["system_id"]),
			EvaluateMvoDeletionRules: row.Bool(r["evaluate_deletion_rules"]),
		},
		EnqueuedAt:    row.Time(r["enqueued_at"]),
		StartedAt:     row.TimePtr(r["started_at"]),
		FinishedAt:    row.TimePtr(r["finished_at"]),
		FailureReason: row.String(r["failure_reason"]),
	}
}
