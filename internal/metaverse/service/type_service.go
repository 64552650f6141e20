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

	"github.com/google/uuid"

	csStore "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/store"
	"github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	"github.com/wso2/identity-metadirectory-service/internal/metaverse/store"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
)

// TypeServiceInterface manages the metaverse object type registry.
type TypeServiceInterface interface {
	AddObjectType(objectType model.ObjectType) (*model.ObjectType, error)
	GetObjectType(typeID string) (*model.ObjectType, error)
}

// TypeService is the default implementation of the TypeServiceInterface.
type TypeService struct{}

// GetTypeService returns a new instance.
func GetTypeService() TypeServiceInterface {

	return &TypeService{}
}

// AddObjectType validates and registers a metaverse object type with its
// deletion policy. An omitted deletion kind defaults to never.
func (ts *TypeService) AddObjectType(objectType model.ObjectType) (*model.ObjectType, error) {

	if objectType.Name == "" {
		return nil, invalidTypeError("A metaverse object type requires a name.")
	}
	if objectType.Deletion.Kind == "" {
		objectType.Deletion.Kind = model.DeletionNever
	}
	if objectType.Deletion.GracePeriodDays < 0 {
		return nil, invalidTypeError("grace_period_days cannot be negative.")
	}
	switch objectType.Deletion.Kind {
	case model.DeletionNever, model.DeletionOnLastDisconnect:
	case model.DeletionOnTriggerSystems:
		if len(objectType.Deletion.TriggerSystemIDs) == 0 {
			return nil, invalidTypeError("An on_trigger_systems deletion rule requires trigger_system_ids.")
		}
		for _, systemID := range objectType.Deletion.TriggerSystemIDs {
			system, err := csStore.GetConnectedSystem(systemID)
			if err != nil {
				return nil, err
			}
			if system == nil {
				return nil, invalidTypeError(
					fmt.Sprintf("Trigger system %s is not a registered connected system.", systemID))
			}
		}
	default:
		return nil, invalidTypeError(fmt.Sprintf("Unknown deletion rule kind: %s", objectType.Deletion.Kind))
	}

	if objectType.TypeID == "" {
		objectType.TypeID = uuid.New().String()
	} else {
		existing, err := store.GetObjectType(objectType.TypeID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errors2.NewClientError(errors2.ErrorMessage{
				Code:    errors2.INVALID_OBJECT_TYPE_DEFINITION.Code,
				Message: errors2.INVALID_OBJECT_TYPE_DEFINITION.Message,
				Description: fmt.Sprintf("A metaverse object type already exists with id: %s",
					objectType.TypeID),
			}, http.StatusConflict)
		}
	}

	if err := store.AddObjectType(objectType); err != nil {
		return nil, err
	}
	return &objectType, nil
}

// GetObjectType fetches one object type, or nil when unknown.
func (ts *TypeService) GetObjectType(typeID string) (*model.ObjectType, error) {

	return store.GetObjectType(typeID)
}

func invalidTypeError(description string) error {

	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.INVALID_OBJECT_TYPE_DEFINITION.Code,
		Message:     errors2.INVALID_OBJECT_TYPE_DEFINITION.Message,
		Description: description,
	}, http.StatusBadRequest)
}
