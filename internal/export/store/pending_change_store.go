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

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	"github.com/wso2/identity-metadirectory-service/internal/export/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/row"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// AddPendingChange enqueues one attribute delta for export.
func AddPendingChange(change model.PendingChange) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for storing pending change", log.Error(err))
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	kind, text := change.Value.EncodeText()
	query := scripts.InsertPendingChange[provider.NewDBProvider().GetDBType()]
	_, err = dbClient.ExecuteQuery(query, change.ChangeID, change.ObjectID, change.SystemID,
		change.AttributeName, kind, text, string(change.Status), change.AttemptCount, change.DeleteRequest,
		change.CreatedAt, change.UpdatedAt)
	if err != nil {
		errorMsg := fmt.Sprintf("Error occurred while storing pending change: %s", change.ChangeID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.EXPORT_CHANGE_STORE.Code,
			Message:     errors2.EXPORT_CHANGE_STORE.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetPendingChangesForSystem lists a system's undelivered changes in
// enqueue order.
func GetPendingChangesForSystem(systemID string) ([]model.PendingChange, error) {

	return getChanges(scripts.GetPendingChangesForSystem, systemID)
}

// GetExportedChangesForObject lists an object's delivered but not yet
// confirmed changes, which the next import pass settles.
func GetExportedChangesForObject(objectID string) ([]model.PendingChange, error) {

	return getChanges(scripts.GetExportedChangesForObject, objectID)
}

// GetHeldObjectIDs lists the objects of a system with a failed change
// outstanding. Their queues may not advance until the retry settles,
// otherwise the retried older value would overwrite a newer one.
func GetHeldObjectIDs(systemID string) ([]string, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.GetHeldExportObjects[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, systemID)
	if err != nil {
		return nil, errors2.NewServerError(errors2.EXPORT_CHANGE_STORE, err)
	}

	var objectIDs []string
	for _, r := range results {
		objectIDs = append(objectIDs, row.String(r["object_id"]))
	}
	return objectIDs, nil
}

// GetRetryableFailedChanges lists failed changes last touched on or
// before the cutoff, candidates for re-queueing.
func GetRetryableFailedChanges(before time.Time) ([]model.PendingChange, error) {

	return getChanges(scripts.GetRetryableFailedChanges, before)
}

// UpdatePendingChange writes back the delivery state of a change.
func UpdatePendingChange(change model.PendingChange) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	var importedKind, importedText string
	if change.LastImportedValue != nil {
		importedKind, importedText = change.LastImportedValue.EncodeText()
	}

	query := scripts.UpdatePendingChange[provider.NewDBProvider().GetDBType()]
	_, err = dbClient.ExecuteQuery(query, change.ChangeID, string(change.Status), change.AttemptCount,
		change.LastExportedAt, importedKind, importedText, change.UpdatedAt)
	if err != nil {
		return errors2.NewServerError(errors2.EXPORT_CHANGE_STORE, err)
	}
	return nil
}

// DeleteChangesForObject drops every queued change of an object, used
// when the object itself is removed.
func DeleteChangesForObject(objectID string) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.DeleteChangesForObject[provider.NewDBProvider().GetDBType()]
	if _, err := dbClient.ExecuteQuery(query, objectID); err != nil {
		return errors2.NewServerError(errors2.EXPORT_CHANGE_STORE, err)
	}
	return nil
}

func getChanges(queries map[string]string, args ...interface{}) ([]model.PendingChange, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for fetching pending changes", log.Error(err))
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := queries[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, args...)
	if err != nil {
		logger.Debug("Failed to fetch pending changes", log.Error(err))
		return nil, errors2.NewServerError(errors2.EXPORT_CHANGE_STORE, err)
	}

	var changes []model.PendingChange
	for _, r := range results {
		change, err := changeFromRow(r)
		if err != nil {
			return nil, errors2.NewServerError(errors2.EXPORT_CHANGE_STORE, err)
		}
		changes = append(changes, *change)
	}
	return changes, nil
}

func changeFromRow(r map[string]interface{}) (*model.PendingChange, error) {

	value, err := attribute.DecodeText(row.String(r["value_kind"]), row.String(r["value_text"]))
	if err != nil {
		return nil, fmt.Errorf("failed to decode pending change value: %w", err)
	}

	var imported *attribute.Value
	if kind := row.String(r["last_imported_kind"]); kind != "" {
		v, err := attribute.DecodeText(kind, row.String(r["last_imported_text"]))
		if err != nil {
			return nil, fmt.Errorf("failed to decode last imported value: %w", err)
		}
		imported = &v
	}

	return &model.PendingChange{
		ChangeID:          row.String(r["change_id"]),
		ObjectID:          row.String(r["object_id"]),
		SystemID:          row.String(r["system_id"]),
		AttributeName:     row.String(r["attribute_name"]),
		Value:             value,
		Status:            model.ChangeStatus(row.String(r["status"])),
		AttemptCount:      row.Int(r["attempt_count"]),
		LastExportedAt:    row.TimePtr(r["last_exported_at"]),
		LastImportedValue: imported,
		DeleteRequest:     row.Bool(r["delete_request"]),
		CreatedAt:         row.Time(r["created_at"]),
		UpdatedAt:         row.Time(r["updated_at"]),
	}, nil
}
