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

	"github.com/wso2/identity-metadirectory-service/internal/deferredref/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/row"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// AddDeferredReference records an unresolved reference. Re-recording
// the same source, target and attribute is a no-op so repeated imports
// stay idempotent.
func AddDeferredReference(reference model.DeferredReference) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for storing deferred reference", log.Error(err))
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.InsertDeferredReference[provider.NewDBProvider().GetDBType()]
	_, err = dbClient.ExecuteQuery(query, reference.ReferenceID, reference.SourceObjectID,
		reference.SourceMvoID, reference.TargetExternalID, reference.TargetAttribute, reference.CreatedAt)
	if err != nil {
		errorMsg := fmt.Sprintf("Error occurred while storing deferred reference to: %s",
			reference.TargetExternalID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DEFERRED_REFERENCE_STORE.Code,
			Message:     errors2.DEFERRED_REFERENCE_STORE.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetDeferredReferencesByTarget lists the references waiting on a
// target external identifier.
func GetDeferredReferencesByTarget(targetExternalID string) ([]model.DeferredReference, error) {

	return getDeferredReferences(scripts.GetDeferredReferencesByTarget, targetExternalID)
}

// GetStaleDeferredReferences lists references left unresolved since
// before the cutoff, surfaced as warnings by the scheduler.
func GetStaleDeferredReferences(before time.Time) ([]model.DeferredReference, error) {

	return getDeferredReferences(scripts.GetStaleDeferredReferences, before)
}

// DeleteDeferredReference removes a resolved or discarded reference.
func DeleteDeferredReference(referenceID string) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.DeleteDeferredReference[provider.NewDBProvider().GetDBType()]
	if _, err := dbClient.ExecuteQuery(query, referenceID); err != nil {
		return errors2.NewServerError(errors2.DEFERRED_REFERENCE_STORE, err)
	}
	return nil
}

func getDeferredReferences(queries map[string]string, args ...interface{}) ([]model.DeferredReference, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for fetching deferred references", log.Error(err))
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := queries[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, args...)
	if err != nil {
		logger.Debug("Failed to fetch deferred references", log.Error(err))
		return nil, errors2.NewServerError(errors2.DEFERRED_REFERENCE_STORE, err)
	}

	var references []model.DeferredReference
	for _, r := range results {
		references = append(references, model.DeferredReference{
			ReferenceID:      row.String(r["reference_id"]),
			SourceObjectID:   row.String(r["source_object_id"]),
			SourceMvoID:      row.String(r["source_mvo_id"]),
			TargetExternalID: row.String(r["target_external_id"]),
			TargetAttribute:  row.String(r["target_attribute"]),
			CreatedAt:        row.Time(r["created_at"]),
		})
	}
	return references, nil
}
