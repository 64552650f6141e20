/*
 * Copyright (c) 2025-2026, WSO2 LLC. (http://www.wso2.com).
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

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	csModel "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	csStore "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/store"
	"github.com/wso2/identity-metadirectory-service/internal/connector"
	matchModel "github.com/wso2/identity-metadirectory-service/internal/matching/model"
	matchStore "github.com/wso2/identity-metadirectory-service/internal/matching/store"
	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	mvStore "github.com/wso2/identity-metadirectory-service/internal/metaverse/store"
	syncModel "github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	syncStore "github.com/wso2/identity-metadirectory-service/internal/syncrule/store"
	taskModel "github.com/wso2/identity-metadirectory-service/internal/task/model"
	taskProvider "github.com/wso2/identity-metadirectory-service/internal/task/provider"
	taskStore "github.com/wso2/identity-metadirectory-service/internal/task/store"
)

// scriptedConnector feeds canned import streams and records outbound
// calls, standing in for a real directory connector.
type scriptedConnector struct {
	capabilities csModel.ConnectorCapabilities
	objects      []connector.ImportedObject
	deltas       []connector.ImportedObject

	mu          sync.Mutex
	exports     []exportRecord
	deleted     []string
	failExports bool
}

type exportRecord struct {
	ExternalID    string
	AttributeName string
	Value         attribute.Value
}

func (c *scriptedConnector) Capabilities() csModel.ConnectorCapabilities {
	return c.capabilities
}

func (c *scriptedConnector) FullImport(_ context.Context) (<-chan connector.ImportedObject, <-chan error) {
	return c.stream(c.objects)
}

func (c *scriptedConnector) DeltaImport(_ context.Context) (<-chan connector.ImportedObject, <-chan error) {
	return c.stream(c.deltas)
}

func (c *scriptedConnector) stream(objects []connector.ImportedObject) (<-chan connector.ImportedObject, <-chan error) {
	out := make(chan connector.ImportedObject)
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)
		for _, object := range objects {
			out <- object
		}
	}()
	return out, errs
}

func (c *scriptedConnector) ExportChange(_ context.Context, object csModel.ConnectedObject,
	attributeName string, value attribute.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failExports {
		return context.DeadlineExceeded
	}
	c.exports = append(c.exports, exportRecord{
		ExternalID:    object.ExternalID,
		AttributeName: attributeName,
		Value:         value,
	})
	return nil
}

func (c *scriptedConnector) DeleteObject(_ context.Context, object csModel.ConnectedObject) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, object.ExternalID)
	return nil
}

func (c *scriptedConnector) exportedTo(externalID string) []exportRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	var records []exportRecord
	for _, record := range c.exports {
		if record.ExternalID == externalID {
			records = append(records, record)
		}
	}
	return records
}

func seedSystem(t *testing.T, systemID string, caps csModel.ConnectorCapabilities) {
	t.Helper()
	now := time.Now().Unix()
	err := csStore.AddConnectedSystem(csModel.ConnectedSystem{
		SystemID:      systemID,
		Name:          systemID,
		ConnectorType: "scripted",
		Capabilities:  caps,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)
}

func seedObjectType(t *testing.T, systemID, typeID, metaverseTypeID, externalIDAttr string) {
	t.Helper()
	err := csStore.AddConnectedObjectType(csModel.ConnectedObjectType{
		SystemID:            systemID,
		TypeID:              typeID,
		MetaverseTypeID:     metaverseTypeID,
		ExternalIDAttribute: externalIDAttr,
	})
	require.NoError(t, err)
}

func seedMetaverseType(t *testing.T, typeID string, deletion mvModel.DeletionRule) {
	t.Helper()
	err := mvStore.AddObjectType(mvModel.ObjectType{
		TypeID:   typeID,
		Name:     typeID,
		Deletion: deletion,
	})
	require.NoError(t, err)
}

func seedSyncRule(t *testing.T, rule syncModel.SyncRule) string {
	t.Helper()
	if rule.RuleID == "" {
		rule.RuleID = uuid.NewString()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, syncStore.AddSyncRule(rule))
	return rule.RuleID
}

func seedMatchingRule(t *testing.T, objectTypeID string, order int,
	comparisons []matchModel.AttributeComparison) {
	t.Helper()
	now := time.Now().Unix()
	err := matchStore.AddMatchingRule(matchModel.ObjectMatchingRule{
		RuleID:       uuid.NewString(),
		ObjectTypeID: objectTypeID,
		Order:        order,
		Comparisons:  comparisons,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
}

func enqueueAndWait(t *testing.T, kind taskModel.TaskKind, params taskModel.TaskParams) *taskModel.WorkerTask {
	t.Helper()
	task, err := taskProvider.NewTaskProvider().GetTaskService().EnqueueTask(kind, params)
	require.NoError(t, err)
	return waitForTask(t, task.TaskID)
}

// waitForTask polls the durable queue until the dispatcher pool
// finishes the task.
func waitForTask(t *testing.T, taskID string) *taskModel.WorkerTask {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		task, err := taskStore.GetTask(taskID)
		require.NoError(t, err)
		require.NotNil(t, task)
		if task.Status == taskModel.TaskCompleted || task.Status == taskModel.TaskFailed {
			return task
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Fatalf("task %s did not finish in time", taskID)
	return nil
}
