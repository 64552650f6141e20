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

	"github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	"github.com/wso2/identity-metadirectory-service/internal/connectedsystem/store"
	mvStore "github.com/wso2/identity-metadirectory-service/internal/metaverse/store"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
)

// SystemServiceInterface manages the connected system registry.
type SystemServiceInterface interface {
	AddConnectedSystem(system model.ConnectedSystem) (*model.ConnectedSystem, error)
	GetConnectedSystems() ([]model.ConnectedSystem, error)
	GetConnectedSystem(systemID string) (*model.ConnectedSystem, error)
	AddConnectedObjectType(objectType model.ConnectedObjectType) (*model.ConnectedObjectType, error)
	GetConnectedObjectType(systemID, typeID string) (*model.ConnectedObjectType, error)
}

// SystemService is the default implementation of the SystemServiceInterface.
type SystemService struct{}

// GetSystemService returns a new instance.
func GetSystemService() SystemServiceInterface {

	return &SystemService{}
}

// AddConnectedSystem validates and registers a connected system. A
// caller-chosen system_id is honored when free; otherwise one is
// assigned.
func (ss *SystemService) AddConnectedSystem(system model.ConnectedSystem) (*model.ConnectedSystem, error) {

	if system.Name == "" {
		return nil, invalidSystemError("A connected system requires a name.")
	}
	if system.ConnectorType == "" {
		return nil, invalidSystemError("A connected system requires a connector_type.")
	}
	if system.Capabilities.MaxExportParallelism < 0 {
		return nil, invalidSystemError("max_export_parallelism cannot be negative.")
	}

	if system.SystemID == "" {
		system.SystemID = uuid.New().String()
	} else {
		existing, err := store.GetConnectedSystem(system.SystemID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errors2.NewClientError(errors2.ErrorMessage{
				Code:        errors2.INVALID_SYSTEM_DEFINITION.Code,
				Message:     errors2.INVALID_SYSTEM_DEFINITION.Message,
				Description: fmt.Sprintf("A connected system already exists with id: %s", system.SystemID),
			}, http.StatusConflict)
		}
	}

	now := time.Now().UTC().Unix()
	system.CreatedAt = now
	system.UpdatedAt = now

	if err := store.AddConnectedSystem(system); err != nil {
		return nil, err
	}
	return &system, nil
}

// GetConnectedSystems lists all registered systems.
func (ss *SystemService) GetConnectedSystems() ([]model.ConnectedSystem, error) {

	return store.GetConnectedSystems()
}

// GetConnectedSystem fetches one system, or nil when unknown.
func (ss *SystemService) GetConnectedSystem(systemID string) (*model.ConnectedSystem, error) {

	return store.GetConnectedSystem(systemID)
}

// AddConnectedObjectType binds an object type of a connected system to a
// metaverse object type. The secondary external id attribute is only
// accepted when the system's connector declares support for it.
func (ss *SystemService) AddConnectedObjectType(objectType model.ConnectedObjectType) (*model.ConnectedObjectType, error) {

	if objectType.SystemID == "" || objectType.TypeID == "" {
		return nil, invalidObjectTypeError("An object type requires both a system_id and a type_id.")
	}
	if objectType.MetaverseTypeID == "" {
		return nil, invalidObjectTypeError("An object type requires a metaverse_type_id.")
	}
	if objectType.ExternalIDAttribute == "" {
		return nil, invalidObjectTypeError("An object type requires an external_id_attribute.")
	}

	system, err := store.GetConnectedSystem(objectType.SystemID)
	if err != nil {
		return nil, err
	}
	if system == nil {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.SYSTEM_NOT_FOUND.Code,
			Message:     errors2.SYSTEM_NOT_FOUND.Message,
			Description: fmt.Sprintf("No connected system exists with id: %s", objectType.SystemID),
		}, http.StatusNotFound)
	}
	if objectType.SecondaryIDAttribute != "" && !system.Capabilities.SupportsSecondaryExternalID {
		return nil, invalidObjectTypeError(fmt.Sprintf(
			"System %s does not support a secondary external id attribute.", system.SystemID))
	}

	metaverseType, err := mvStore.GetObjectType(objectType.MetaverseTypeID)
	if err != nil {
		return nil, err
	}
	if metaverseType == nil {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.OBJECT_TYPE_NOT_FOUND.Code,
			Message:     errors2.OBJECT_TYPE_NOT_FOUND.Message,
			Description: fmt.Sprintf("No metaverse object type exists with id: %s", objectType.MetaverseTypeID),
		}, http.StatusNotFound)
	}

	if err := store.AddConnectedObjectType(objectType); err != nil {
		return nil, err
	}
	return &objectType, nil
}

// GetConnectedObjectType fetches one object type binding, or nil when
// unknown.
func (ss *SystemService) GetConnectedObjectType(systemID, typeID string) (*model.ConnectedObjectType, error) {

	return store.GetConnectedObjectType(systemID, typeID)
}

func invalidSystemError(description string) error {

	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.INVALID_SYSTEM_DEFINITION.Code,
		Message:     errors2.INVALID_SYSTEM_DEFINITION.Message,
		Description: description,
	}, http.StatusBadRequest)
}

func invalidObjectTypeError(description string) error {

	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.INVALID_OBJECT_TYPE_DEFINITION.Code,
		Message:     errors2.INVALID_OBJECT_TYPE_DEFINITION.Message,
		Description: description,
	}, http.StatusBadRequest)
}
