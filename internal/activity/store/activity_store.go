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
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wso2/identity-metadirectory-service/internal/activity/model"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

var (
	activityDB  *mongo.Database
	connectOnce sync.Once
)

// Connect initializes the shared activity database connection. The
// activity boundary is write-only from the engine's perspective; read
// access belongs to reporting tools.
func Connect(uri, dbName string) error {

	var connectErr error
	connectOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			connectErr = errors2.NewServerError(errors2.ACTIVITY_WRITE, err)
			return
		}
		if err := client.Ping(ctx, nil); err != nil {
			connectErr = errors2.NewServerError(errors2.ACTIVITY_WRITE, err)
			return
		}
		activityDB = client.Database(dbName)
		log.GetLogger().Info("Connected to activity store")
	})
	return connectErr
}

// ActivityRepository writes run records and per-item outcomes.
type ActivityRepository struct {
	runs  *mongo.Collection
	items *mongo.Collection
}

// NewActivityRepository returns a repository over the shared connection,
// or nil when no activity store is configured.
func NewActivityRepository(collectionName string) *ActivityRepository {

	if activityDB == nil {
		return nil
	}
	return &ActivityRepository{
		runs:  activityDB.Collection(collectionName),
		items: activityDB.Collection(collectionName + "_items"),
	}
}

// AddRunRecord inserts one run summary.
func (repo *ActivityRepository) AddRunRecord(record model.RunRecord) error {

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := repo.runs.InsertOne(ctx, record); err != nil {
		return errors2.NewServerError(errors2.ACTIVITY_WRITE, err)
	}
	return nil
}

// AddItemOutcomes inserts a batch of per-item outcomes.
func (repo *ActivityRepository) AddItemOutcomes(outcomes []model.ItemOutcome) error {

	if len(outcomes) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	docs := make([]interface{}, 0, len(outcomes))
	for _, outcome := range outcomes {
		docs = append(docs, outcome)
	}
	if _, err := repo.items.InsertMany(ctx, docs); err != nil {
		return errors2.NewServerError(errors2.ACTIVITY_WRITE, err)
	}
	return nil
}
