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

	"github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	"github.com/wso2/identity-metadirectory-service/internal/metaverse/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/authn"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
	"github.com/wso2/identity-metadirectory-service/internal/system/utils"
)

// TypeHandler serves the metaverse object type registry API.
type TypeHandler struct{}

// NewTypeHandler creates a new instance of TypeHandler.
func NewTypeHandler() *TypeHandler {

	return &TypeHandler{}
}

// AddObjectType registers a metaverse object type.
func (th *TypeHandler) AddObjectType(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	var request model.ObjectType
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_OBJECT_TYPE_DEFINITION.Code,
			Message:     errors2.INVALID_OBJECT_TYPE_DEFINITION.Message,
			Description: utils.HandleDecodeError(err, "metaverse object type"),
		}, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	typeService := provider.NewTypeProvider().GetTypeService()
	objectType, err := typeService.AddObjectType(request)
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
		ActionID:      log.ActionAddMetaverseType,
		Data:          map[string]string{"deletion_rule": string(objectType.Deletion.Kind)},
	})

	utils.WriteJSONResponse(w, http.StatusCreated, objectType)
}

// GetObjectType fetches one metaverse object type by id.
func (th *TypeHandler) GetObjectType(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	typeID := path[strings.LastIndex(path, "/")+1:]

	typeService := provider.NewTypeProvider().GetTypeService()
	objectType, err := typeService.GetObjectType(typeID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if objectType == nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.OBJECT_TYPE_NOT_FOUND.Code,
			Message:     errors2.OBJECT_TYPE_NOT_FOUND.Message,
			Description: "No metaverse object type exists with the given id.",
		}, http.StatusNotFound)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, objectType)
}
