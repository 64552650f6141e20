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

package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wso2/identity-metadirectory-service/internal/system/authn"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
	"github.com/wso2/identity-metadirectory-service/internal/system/utils"
	"github.com/wso2/identity-metadirectory-service/internal/task/model"
	"github.com/wso2/identity-metadirectory-service/internal/task/provider"
)

// TaskHandler serves the sync task API.
type TaskHandler struct{}

// NewTaskHandler creates a new instance of TaskHandler.
func NewTaskHandler() *TaskHandler {

	return &TaskHandler{}
}

type taskRequest struct {
	Kind                     string `json:"kind"`
	SystemID                 string `json:"system_id,omitempty"`
	EvaluateMvoDeletionRules bool   `json:"evaluate_mvo_deletion_rules,omitempty"`
}

// AddSyncTask enqueues a synchronization task and returns its id.
func (th *TaskHandler) AddSyncTask(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	var request taskRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_TASK_REQUEST.Code,
			Message:     errors2.INVALID_TASK_REQUEST.Message,
			Description: utils.HandleDecodeError(err, "sync task"),
		}, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	taskService := provider.NewTaskProvider().GetTaskService()
	task, err := taskService.EnqueueTask(model.TaskKind(request.Kind), model.TaskParams{
		SystemID:                 request.SystemID,
		EvaluateMvoDeletionRules: request.EvaluateMvoDeletionRules,
	})
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	logger := log.GetLogger()
	logger.Audit(log.AuditEvent{
		InitiatorID:   authn.GetSubjectFromRequest(r),
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      task.TaskID,
		TargetType:    log.TargetTypeWorkerTask,
		ActionID:      string(task.Kind),
		Data:          map[string]string{"system_id": task.Params.SystemID},
	})

	utils.WriteJSONResponse(w, http.StatusAccepted, task)
}

// GetSyncTask reports the status of one task.
func (th *TaskHandler) GetSyncTask(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	taskID := path[strings.LastIndex(path, "/")+1:]

	taskService := provider.NewTaskProvider().GetTaskService()
	task, err := taskService.GetTask(taskID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if task == nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.TASK_NOT_FOUND.Code,
			Message:     errors2.TASK_NOT_FOUND.Message,
			Description: "No sync task exists with the given id.",
		}, http.StatusNotFound)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, task)
}
