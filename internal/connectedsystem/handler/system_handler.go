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

	"github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	"github.com/wso2/identity-metadirectory-service/internal/connectedsystem/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/authn"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
	"github.com/wso2/identity-metadirectory-service/internal/system/utils"
	taskModel "github.com/wso2/identity-metadirectory-service/internal/task/model"
	taskProvider "github.com/wso2/identity-metadirectory-service/internal/task/provider"
)

// SystemHandler serves the connected system registry API.
type SystemHandler struct{}

// NewSystemHandler creates a new instance of SystemHandler.
func NewSystemHandler() *SystemHandler {

	return &SystemHandler{}
}

// AddConnectedSystem registers a connected system.
func (sh *SystemHandler) AddConnectedSystem(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	var request model.ConnectedSystem
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_SYSTEM_DEFINITION.Code,
			Message:     errors2.INVALID_SYSTEM_DEFINITION.Message,
			Description: utils.HandleDecodeError(err, "connected system"),
		}, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	systemService := provider.NewSystemProvider().GetSystemService()
	system, err := systemService.AddConnectedSystem(request)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	logger := log.GetLogger()
	logger.Audit(log.AuditEvent{
		InitiatorID:   authn.GetSubjectFromRequest(r),
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      system.SystemID,
		TargetType:    log.TargetTypeConnectedSystem,
		ActionID:      log.ActionAddConnectedSystem,
		Data:          map[string]string{"connector_type": system.ConnectorType},
	})

	utils.WriteJSONResponse(w, http.StatusCreated, system)
}

// GetConnectedSystems lists all registered systems.
func (sh *SystemHandler) GetConnectedSystems(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	systemService := provider.NewSystemProvider().GetSystemService()
	systems, err := systemService.GetConnectedSystems()
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if systems == nil {
		systems = []model.ConnectedSystem{}
	}

	utils.WriteJSONResponse(w, http.StatusOK, systems)
}

// GetConnectedSystem fetches one system by id.
func (sh *SystemHandler) GetConnectedSystem(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	systemService := provider.NewSystemProvider().GetSystemService()
	system, err := systemService.GetConnectedSystem(pathSegment(r, 1))
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if system == nil {
		sh.writeSystemNotFound(w)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, system)
}

// DeleteConnectedSystem enqueues the teardown task for a system and
// reports it. Removal of the system's objects and rules happens
// asynchronously; callers poll the returned task for the outcome.
func (sh *SystemHandler) DeleteConnectedSystem(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	systemID := pathSegment(r, 1)
	systemService := provider.NewSystemProvider().GetSystemService()
	system, err := systemService.GetConnectedSystem(systemID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if system == nil {
		sh.writeSystemNotFound(w)
		return
	}

	evaluate := r.URL.Query().Get("evaluate_mvo_deletion_rules") == "true"
	taskService := taskProvider.NewTaskProvider().GetTaskService()
	task, err := taskService.EnqueueTask(taskModel.KindDeleteConnectedSystem, taskModel.TaskParams{
		SystemID:                 systemID,
		EvaluateMvoDeletionRules: evaluate,
	})
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	logger := log.GetLogger()
	logger.Audit(log.AuditEvent{
		InitiatorID:   authn.GetSubjectFromRequest(r),
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      systemID,
		TargetType:    log.TargetTypeConnectedSystem,
		ActionID:      string(task.Kind),
		Data:          map[string]string{"task_id": task.TaskID},
	})

	utils.WriteJSONResponse(w, http.StatusAccepted, task)
}

// AddConnectedObjectType binds an object type of a system to a metaverse
// object type.
func (sh *SystemHandler) AddConnectedObjectType(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	var request model.ConnectedObjectType
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_OBJECT_TYPE_DEFINITION.Code,
			Message:     errors2.INVALID_OBJECT_TYPE_DEFINITION.Message,
			Description: utils.HandleDecodeError(err, "object type"),
		}, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}
	request.SystemID = pathSegment(r, 1)

	systemService := provider.NewSystemProvider().GetSystemService()
	objectType, err := systemService.AddConnectedObjectType(request)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	logger := log.GetLogger()
	logger.Audit(log.AuditEvent{
		InitiatorID:   authn.GetSubjectFromRequest(r),
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      objectType.TypeID,
		TargetType:    log.TargetTypeObjectType,
		ActionID:      log.ActionAddObjectType,
		Data: map[string]string{
			"system_id":         objectType.SystemID,
			"metaverse_type_id": objectType.MetaverseTypeID,
		},
	})

	utils.WriteJSONResponse(w, http.StatusCreated, objectType)
}

// GetConnectedObjectType fetches one object type binding.
func (sh *SystemHandler) GetConnectedObjectType(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	systemService := provider.NewSystemProvider().GetSystemService()
	objectType, err := systemService.GetConnectedObjectType(pathSegment(r, 1), pathSegment(r, 3))
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if objectType == nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.OBJECT_TYPE_NOT_FOUND.Code,
			Message:     errors2.OBJECT_TYPE_NOT_FOUND.Message,
			Description: "No object type exists with the given id.",
		}, http.StatusNotFound)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, objectType)
}

func (sh *SystemHandler) writeSystemNotFound(w http.ResponseWriter) {

	clientError := errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.SYSTEM_NOT_FOUND.Code,
		Message:     errors2.SYSTEM_NOT_FOUND.Message,
		Description: "No connected system exists with the given id.",
	}, http.StatusNotFound)
	utils.WriteErrorResponse(w, clientError)
}

// pathSegment returns the nth segment of the request path, counted from
// zero, or an empty string when the path is shorter.
func pathSegment(r *http.Request, n int) string {

	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if n >= len(segments) {
		return ""
	}
	return segments[n]
}
