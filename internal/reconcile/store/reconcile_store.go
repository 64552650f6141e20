/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
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
	"database/sql"
	"fmt"
	"time"

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	exportModel "github.com/wso2/identity-metadirectory-service/internal/export/model"
	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/client"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// ProjectMetaverseObject creates a metaverse object and links its
// originating connected object in one transaction. A failure on either
// statement leaves neither an orphan object nor a dangling link behind.
func ProjectMetaverseObject(object mvModel.MetaverseObject, connectedObjectID string) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for projecting metaverse object", log.Error(err))
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	attrs, err := attribute.EncodeAttributes(object.Attributes)
	if err != nil {
		return errors2.NewServerError(errors2.UPSERT_METAVERSE_OBJECT, err)
	}

	dbType := provider.NewDBProvider().GetDBType()
	err = dbClient.WithTransaction(func(tx *sql.Tx) error {
		_, err := client.QueryTx(tx, scripts.InsertMetaverseObject[dbType], object.MvoID, object.TypeID,
			attrs, string(object.Origin), string(object.Status), object.CreatedAt, object.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = client.QueryTx(tx, scripts.LinkConnectedObject[dbType], connectedObjectID, object.MvoID)
		return err
	})
	if err != nil {
		errorMsg := fmt.Sprintf("Error occurred while projecting metaverse object: %s", object.MvoID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPSERT_METAVERSE_OBJECT.Code,
			Message:     errors2.UPSERT_METAVERSE_OBJECT.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// ApplyAttributeFlow commits recomputed attributes together with the
// outbound changes they produced. The single transaction keeps the
// metaverse object and its export queue consistent: an object is never
// observed with updated attributes but only part of its deltas queued.
func ApplyAttributeFlow(mvoID string, attrs map[string]attribute.Value, updatedAt time.Time,
	outbound []exportModel.PendingChange) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for applying attribute flow", log.Error(err))
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	encoded, err := attribute.EncodeAttributes(attrs)
	if err != nil {
		return errors2.NewServerError(errors2.UPSERT_METAVERSE_OBJECT, err)
	}

	dbType := provider.NewDBProvider().GetDBType()
	err = dbClient.WithTransaction(func(tx *sql.Tx) error {
		_, err := client.QueryTx(tx, scripts.UpdateMetaverseAttributes[dbType], mvoID, encoded, updatedAt)
		if err != nil {
			return err
		}
		for _, change := range outbound {
			kind, text := change.Value.EncodeText()
			_, err := client.QueryTx(tx, scripts.InsertPendingChange[dbType], change.ChangeID,
				change.ObjectID, change.SystemID, change.AttributeName, kind, text,
				string(change.Status), change.AttemptCount, change.DeleteRequest,
				change.CreatedAt, change.UpdatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		errorMsg := fmt.Sprintf("Error occurred while applying attribute flow for metaverse object: %s", mvoID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPSERT_METAVERSE_OBJECT.Code,
			Message:     errors2.UPSERT_METAVERSE_OBJECT.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}
