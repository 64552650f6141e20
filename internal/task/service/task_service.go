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
	"net/http"
	"time"

	"github.com/google/uuid"

	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/task/model"
	"github.com/wso2/identity-metadirectory-service/internal/task/store"
)

// TaskServiceInterface enqueues and inspects worker tasks.
type TaskServiceInterface interface {
	EnqueueTask(kind model.TaskKind, params model.TaskParams) (*model.WorkerTask, error)
	GetTask(taskID string) (*model.WorkerTask, error)
}

// TaskService is the default implementation over the durable queue.
type TaskService struct{}

// GetTaskService returns a new instance.
func GetTaskService() TaskServiceInterface {

	return &TaskService{}
}

// EnqueueTask validates and appends a task to the queue. The task runs
// asynchronously; callers poll GetTask for its outcome.
func (t *TaskService) EnqueueTask(kind model.TaskKind, params model.TaskParams) (*model.WorkerTask, error) {

	if err := validateTaskRequest(kind, params); err != nil {
		return nil, err
	}

	task := model.WorkerTask{
		TaskID:     uuid.New().String(),
		Kind:       kind,
		Status:     model.TaskQueued,
		Params:     params,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := store.EnqueueTask(task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask fetches one task, or nil when unknown.
func (t *TaskService) GetTask(taskID string) (*model.WorkerTask, error) {

	return store.GetTask(taskID)
}

func validateTaskRequest(kind model.TaskKind, params model.TaskParams) error {

	switch kind {
	case model.KindFullImport, model.KindDeltaImport, model.KindExport, model.KindDeleteConnectedSystem:
		if params.SystemID == "" {
			return invalidTaskError(fmt.Sprintf("Task kind %s requires a system_id.", kind))
		}
	case model.KindDeletionSweep:
		// Sweeps run across the whole metaverse.
	default:
		return invalidTaskError(fmt.Sprintf("Unknown task kind: %s", kind))
	}
	if params.EvaluateMvoDeletionRules && kind != model.KindDeleteConnectedSystem {
		return invalidTaskError("evaluate_mvo_deletion_rules only applies to delete_connected_system tasks.")
	}
	return nil
}

func invalidTaskError(description string) error {

	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.INVALID_TASK_REQUEST.Code,
		Message:     errors2.INVALID_TASK_REQUEST.Message,
		Description: description,
	}, http.StatusBadRequest)
}
