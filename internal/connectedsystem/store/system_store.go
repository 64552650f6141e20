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
	"encoding/json"
	"fmt"

	"github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/row"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// AddConnectedSystem registers a connected system and its connector
// capability flags.
func AddConnectedSystem(system model.ConnectedSystem) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for adding connected system: %s", system.SystemID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DB_CLIENT_INIT.Code,
			Message:     errors2.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	capabilities, err := json.Marshal(system.Capabilities)
	if err != nil {
		return errors2.NewServerError(errors2.ADD_CONNECTED_SYSTEM, err)
	}

	query := scripts.InsertConnectedSystem[provider.NewDBProvider().GetDBType()]
	_, err = dbClient.ExecuteQuery(query, system.SystemID, system.Name, system.ConnectorType,
		string(capabilities), system.CreatedAt, system.UpdatedAt)
	if err != nil {
		errorMsg := fmt.Sprintf("Error occurred while adding connected system: %s", system.SystemID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_CONNECTED_SYSTEM.Code,
			Message:     errors2.ADD_CONNECTED_SYSTEM.Message,
			Description: errorMsg,
		}, err)
	}

	logger.Info(fmt.Sprintf("Connected system %s added successfully", system.SystemID))
	return nil
}

// GetConnectedSystem fetches one connected system by id. Returns nil
// when the system does not exist.
func GetConnectedSystem(systemID string) (*model.ConnectedSystem, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for fetching connected system: %s", systemID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DB_CLIENT_INIT.Code,
			Message:     errors2.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	query := scripts.GetConnectedSystem[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, systemID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch connected system: %s", systemID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_CONNECTED_SYSTEM.Code,
			Message:     errors2.GET_CONNECTED_SYSTEM.Message,
			Description: errorMsg,
		}, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	system, err := systemFromRow(results[0])
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CONNECTED_SYSTEM, err)
	}
	return system, nil
}

// GetConnectedSystems fetches every registered connected system.
func GetConnectedSystems() ([]model.ConnectedSystem, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.GetConnectedSystems[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CONNECTED_SYSTEM, err)
	}

	var systems []model.ConnectedSystem
	for _, r := range results {
		system, err := systemFromRow(r)
		if err != nil {
			return nil, errors2.NewServerError(errors2.GET_CONNECTED_SYSTEM, err)
		}
		systems = append(systems, *system)
	}
	return systems, nil
}

// DeleteConnectedSystem removes the connected system row itself. Its
// objects are removed by the delete pipeline, which also drives the
// deletion rule evaluation.
func DeleteConnectedSystem(systemID string) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.DeleteConnectedSystem[provider.NewDBProvider().GetDBType()]
	if _, err := dbClient.ExecuteQuery(query, systemID); err != nil {
		return errors2.NewServerError(errors2.DELETE_CONNECTED_SYSTEM, err)
	}
	log.GetLogger().Info(fmt.Sprintf("Connected system %s deleted", systemID))
	return nil
}

// AddConnectedObjectType maps a connected system object type onto a
// metaverse type and its external identifier attribute.
func AddConnectedObjectType(objectType model.ConnectedObjectType) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.InsertConnectedObjectType[provider.NewDBProvider().GetDBType()]
	_, err = dbClient.ExecuteQuery(query, objectType.SystemID, objectType.TypeID,
		objectType.MetaverseTypeID, objectType.ExternalIDAttribute, objectType.SecondaryIDAttribute)
	if err != nil {
		return errors2.NewServerError(errors2.ADD_CONNECTED_SYSTEM, err)
	}
	return nil
}

// GetConnectedObjectType fetches the type mapping for one system and
// type id. Returns nil when no mapping exists.
func GetConnectedObjectType(systemID, typeID string) (*model.ConnectedObjectType, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.GetConnectedObjectType[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, systemID, typeID)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_CONNECTED_SYSTEM, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	r := results[0]
	return &model.ConnectedObjectType{
		SystemID:             row.String(r["system_id"]),
		TypeID:               row.String(r["type_id"]),
		MetaverseTypeID:      row.String(r["metaverse_type_id"]),
		ExternalIDAttribute:  row.String(r["external_id_attribute"]),
		SecondaryIDAttribute: row.String(r["secondary_external_id_attribute"]),
	}, nil
}

func systemFromRow(r map[string]interface{}) (*model.ConnectedSystem, error) {

	var capabilities model.ConnectorCapabilities
	if raw := row.String(r["capabilities"]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &capabilities); err != nil {
			return nil, fmt.Errorf("failed to decode connector capabilities: %w", err)
		}
	}
	return &model.ConnectedSystem{
		SystemID:      row.String(r["system_id"]),
		Name:          row.String(r["name"]),
		ConnectorType: row.String(r["connector_type"]),
		Capabilities:  capabilities,
		CreatedAt:     row.Int64(r["created_at"]),
		UpdatedAt:     row.Int64(r["updated_at"]),
	}, nil
}
