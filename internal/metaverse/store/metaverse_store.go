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
	"time"

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	"github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/row"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// AddMetaverseObject persists a newly projected or authoritative object.
func AddMetaverseObject(object model.MetaverseObject) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for storing metaverse object: %s", object.MvoID)
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
		return errors2.NewServerError(errors2.UPSERT_METAVERSE_OBJECT, err)
	}

	query := scripts.InsertMetaverseObject[provider.NewDBProvider().GetDBType()]
	_, err = dbClient.ExecuteQuery(query, object.MvoID, object.TypeID, attrs, string(object.Origin),
		string(object.Status), object.CreatedAt, object.UpdatedAt)
	if err != nil {
		errorMsg := fmt.Sprintf("Error occurred while storing metaverse object: %s", object.MvoID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPSERT_METAVERSE_OBJECT.Code,
			Message:     errors2.UPSERT_METAVERSE_OBJECT.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetMetaverseObject fetches one object by its id, or nil. Deleted
// objects are still returned here so callers can distinguish a tombstone
// from a missing row.
func GetMetaverseObject(mvoID string) (*model.MetaverseObject, error) {

	objects, err := getMetaverseObjects(scripts.GetMetaverseObject, mvoID)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, nil
	}
	return &objects[0], nil
}

// GetMetaverseObjectsByType lists the non-deleted objects of a type,
// the candidate set for object matching.
func GetMetaverseObjectsByType(typeID string) ([]model.MetaverseObject, error) {

	return getMetaverseObjects(scripts.GetMetaverseObjectsByType, typeID)
}

// ScheduleMetaverseDeletion moves an object into the grace period.
func ScheduleMetaverseDeletion(mvoID string, deleteAt, now time.Time) error {

	return execMetaverse(scripts.ScheduleMetaverseDeletion, mvoID, deleteAt, now)
}

// ReactivateMetaverseObject cancels a scheduled deletion. The update is
// conditional on the scheduled state so a concurrent sweep cannot be
// undone.
func ReactivateMetaverseObject(mvoID string, now time.Time) error {

	return execMetaverse(scripts.ReactivateMetaverseObject, mvoID, now)
}

// MarkMetaverseDeleted tombstones an object.
func MarkMetaverseDeleted(mvoID string, now time.Time) error {

	return execMetaverse(scripts.MarkMetaverseDeleted, mvoID, now)
}

// SetLastDisconnected records the moment the most recent link was lost.
func SetLastDisconnected(mvoID string, now time.Time) error {

	return execMetaverse(scripts.SetLastDisconnected, mvoID, now)
}

// GetExpiredScheduledObjects lists objects whose grace period has lapsed.
func GetExpiredScheduledObjects(now time.Time) ([]model.MetaverseObject, error) {

	return getMetaverseObjects(scripts.GetExpiredScheduledObjects, now)
}

// AddObjectType registers a metaverse object type with its deletion rule.
func AddObjectType(objectType model.ObjectType) error {

	rule, err := json.Marshal(objectType.Deletion)
	if err != nil {
		return errors2.NewServerError(errors2.GET_OBJECT_TYPE, err)
	}
	return execMetaverse(scripts.InsertObjectType, objectType.TypeID, objectType.Name, string(rule))
}

// GetObjectType fetches a metaverse object type, or nil.
func GetObjectType(typeID string) (*model.ObjectType, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for fetching object type", log.Error(err))
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.GetObjectType[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, typeID)
	if err != nil {
		logger.Debug(fmt.Sprintf("Failed to fetch object type: %s", typeID), log.Error(err))
		return nil, errors2.NewServerError(errors2.GET_OBJECT_TYPE, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	var rule model.DeletionRule
	if err := json.Unmarshal([]byte(row.String(results[0]["deletion_rule"])), &rule); err != nil {
		return nil, errors2.NewServerError(errors2.GET_OBJECT_TYPE, err)
	}
	return &model.ObjectType{
		TypeID:   row.String(results[0]["type_id"]),
		Name:     row.String(results[0]["name"]),
		Deletion: rule,
	}, nil
}

func getMetaverseObjects(queries map[string]string, args ...interface{}) ([]model.MetaverseObject, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for fetching metaverse objects", log.Error(err))
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := queries[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, args...)
	if err != nil {
		logger.Debug("Failed to fetch metaverse objects", log.Error(err))
		return nil, errors2.NewServerError(errors2.GET_METAVERSE_OBJECT, err)
	}

	var objects []model.MetaverseObject
	for _, r := range results {
		object, err := metaverseObjectFromRow(r)
		if err != nil {
			return nil, errors2.NewServerError(errors2.GET_METAVERSE_OBJECT, err)
		}
		objects = append(objects, *object)
	}
	return objects, nil
}

func execMetaverse(queries map[string]string, args ...interface{}) error {

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

func metaverseObjectFromRow(r map[string]interface{}) (*model.MetaverseObject, error) {

	attrs, err := attribute.DecodeAttributes(row.String(r["attributes"]))
	if err != nil {
		return nil, fmt.Errorf("failed to decode metaverse object attributes: %w", err)
	}
	return &model.MetaverseObject{
		MvoID:               row.String(r["mvo_id"]),
		TypeID:              row.String(r["type_id"]),
		Attributes:          attrs,
		Origin:              model.Origin(row.String(r["origin"])),
		Status:              model.Status(row.String(r["status"])),
		ScheduledDeletionAt: row.TimePtr(r["scheduled_deletion_at"]),
		LastDisconnectedAt:  row.TimePtr(r["last_disconnected_at"]),
		CreatedAt:           row.Time(r["created_at"]),
		UpdatedAt:           row.Time(r["updated_at"]),
	}, nil
}
