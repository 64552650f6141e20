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

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	"github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/row"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// UpsertConnectedObject stores an imported object snapshot. An existing
// row keyed by (system, type, external id) keeps its metaverse link;
// only the snapshot payload is refreshed.
func UpsertConnectedObject(object model.ConnectedObject) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for storing connected object: %s", object.ObjectID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DB_CLIENT_INIT.Code,
			Message:     errors2.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	attrs, err := attribute.EncodeAttributes(object.Attributes)
	if err != nil {
		return errors2.NewServerError(errors2.UPSERT_CONNECTED_OBJECT, err)
	}

	query := scripts.UpsertConnectedObject[provider.NewDBProvider().GetDBType()]
	_, err = dbClient.ExecuteQuery(query, object.ObjectID, object.SystemID, object.TypeID,
		object.ExternalID, object.SecondaryExternalID, attrs, object.MvoID, object.LastImportedAt)
	if err != nil {
		errorMsg := fmt.Sprintf("Error occurred while storing connected object: %s", object.ObjectID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPSERT_CONNECTED_OBJECT.Code,
			Message:     errors2.UPSERT_CONNECTED_OBJECT.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetConnectedObject fetches one object by its id, or nil.
func GetConnectedObject(objectID string) (*model.ConnectedObject, error) {

	return getOneObject(scripts.GetConnectedObject, objectID)
}

// GetConnectedObjectByExternalID fetches the object a connected system
// knows under the given external identifier, or nil.
func GetConnectedObjectByExternalID(systemID, typeID, externalID string) (*model.ConnectedObject, error) {

	return getOneObject(scripts.GetConnectedObjectByExternalID, systemID, typeID, externalID)
}

// GetConnectedObjectsBySystem lists every object of a connected system.
func GetConnectedObjectsBySystem(systemID string) ([]model.ConnectedObject, error) {

	return getObjects(scripts.GetConnectedObjectsBySystem, systemID)
}

// GetConnectedObjectsByMvo lists every object linked to a metaverse
// object, the read attribute flow evaluation depends on.
func GetConnectedObjectsByMvo(mvoID string) ([]model.ConnectedObject, error) {

	return getObjects(scripts.GetConnectedObjectsByMvo, mvoID)
}

// LinkConnectedObject joins the object to a metaverse object.
func LinkConnectedObject(objectID, mvoID string) error {

	return execObject(scripts.LinkConnectedObject, objectID, mvoID)
}

// UnlinkConnectedObject disconnects the object from its metaverse
// object without deleting either side.
func UnlinkConnectedObject(objectID string) error {

	return execObject(scripts.UnlinkConnectedObject, objectID)
}

// CountLinkedObjects counts the objects currently linked to a
// metaverse object.
func CountLinkedObjects(mvoID string) (int, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return 0, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.CountLinkedObjects[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, mvoID)
	if err != nil {
		return 0, errors2.NewServerError(errors2.GET_CONNECTED_OBJECT, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return row.Int(results[0]["link_count"]), nil
}

// DeleteConnectedObjectsBySystem removes every object of a system,
// used by the delete-connected-system pipeline after unlink handling.
func DeleteConnectedObjectsBySystem(systemID string) error {

	return execObject(scripts.DeleteConnectedObjectsBySystem, systemID)
}

// DeleteConnectedObject removes a single object row.
func DeleteConnectedObject(objectID string) error {

	return execObject(scripts.DeleteConnectedObject, objectID)
}

func getOneObject(queries map[string]string, args ...interface{}) (*model.ConnectedObject, error) {

	objects, err := getObjects(queries, args...)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, nil
	}
	return &objects[0], nil
}

func getObjects(queries map[string]string, args ...interface{}) ([]model.ConnectedObject, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for fetching connected objects", log.Error(err))
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := queries[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, args...)
	if err != nil {
		logger.Debug("Failed to fetch connected objects", log.Error(err))
		return nil, errors2.NewServerError(errors2.GET_CONNECTED_OBJECT, err)
	}

	var objects []model.ConnectedObject
	for _, r := range results {
		object, err := objectFromRow(r)
		if err != nil {
			return nil, errors2.NewServerError(errors2.GET_CONNECTED_OBJECT, err)
		}
		objects = append(objects, *object)
	}
	return objects, nil
}

func execObject(queries map[string]string, args ...interface{}) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := queries[provider.NewDBProvider().GetDBType()]
	if _, err := dbClient.ExecuteQuery(query, args...); err != nil {
		return errors2.NewServerError(errors2.EXECUTE_QUERY, err)
	}
	return nil
}

func objectFromRow(r map[string]interface{}) (*model.ConnectedObject, error) {

	attrs, err := attribute.DecodeAttributes(row.String(r["attributes"]))
	if err != nil {
		return nil, fmt.Errorf("failed to decode connected object attributes: %w", err)
	}
	return &model.ConnectedObject{
		ObjectID:            row.String(r["object_id"]),
		SystemID:            row.String(r["system_id"]),
		TypeID:              row.String(r["type_id"]),
		ExternalID:          row.String(r["external_id"]),
		SecondaryExternalID: row.String(r["secondary_external_id"]),
		Attributes:          attrs,
		MvoID:               row.String(r["mvo_id"]),
		LastImportedAt:      row.Time(r["last_imported_at"]),
	}, nil
}
