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
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	csModel "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	"github.com/wso2/identity-metadirectory-service/internal/connector"
	"github.com/wso2/identity-metadirectory-service/internal/export/model"
)

type fakeExportStore struct {
	mu       sync.Mutex
	objects  map[string]csModel.ConnectedObject
	pending  []model.PendingChange
	exported []model.PendingChange
	failed   []model.PendingChange
	updated  []model.PendingChange
}

func (s *fakeExportStore) GetConnectedObject(objectID string) (*csModel.ConnectedObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	object, ok := s.objects[objectID]
	if !ok {
		return nil, nil
	}
	return &object, nil
}

func (s *fakeExportStore) GetPendingChangesForSystem(systemID string) ([]model.PendingChange, error) {
	return s.pending, nil
}

func (s *fakeExportStore) GetHeldObjectIDs(systemID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var objectIDs []string
	for _, change := range s.failed {
		if change.SystemID == systemID && change.Status == model.StatusFailed {
			objectIDs = append(objectIDs, change.ObjectID)
		}
	}
	return objectIDs, nil
}

func (s *fakeExportStore) GetExportedChangesForObject(objectID string) ([]model.PendingChange, error) {
	return s.exported, nil
}

func (s *fakeExportStore) GetRetryableFailedChanges(before time.Time) ([]model.PendingChange, error) {
	return s.failed, nil
}

func (s *fakeExportStore) UpdatePendingChange(change model.PendingChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, change)
	return nil
}

func (s *fakeExportStore) lastUpdate(changeID string) (model.PendingChange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.updated) - 1; i >= 0; i-- {
		if s.updated[i].ChangeID == changeID {
			return s.updated[i], true
		}
	}
	return model.PendingChange{}, false
}

type fakeConnector struct {
	mu           sync.Mutex
	capabilities csModel.ConnectorCapabilities
	failFor      map[string]error
	exports      []string
	deletes      []string
}

func (c *fakeConnector) Capabilities() csModel.ConnectorCapabilities {
	return c.capabilities
}

func (c *fakeConnector) FullImport(ctx context.Context) (<-chan connector.ImportedObject, <-chan error) {
	objects := make(chan connector.ImportedObject)
	errs := make(chan error)
	close(objects)
	close(errs)
	return objects, errs
}

func (c *fakeConnector) DeltaImport(ctx context.Context) (<-chan connector.ImportedObject, <-chan error) {
	return c.FullImport(ctx)
}

func (c *fakeConnector) ExportChange(ctx context.Context, object csModel.ConnectedObject,
	attributeName string, value attribute.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.failFor[attributeName]; ok {
		return err
	}
	c.exports = append(c.exports, object.ObjectID+"/"+attributeName)
	return nil
}

func (c *fakeConnector) DeleteObject(ctx context.Context, object csModel.ConnectedObject) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, object.ObjectID)
	return nil
}

func exporterFixture(conn *fakeConnector, store *fakeExportStore) *Exporter {
	return NewExporterWithStore(store,
		func(systemID string) (connector.Connector, error) { return conn, nil }, 3)
}

func pendingChange(id, objectID, attr, value string) model.PendingChange {
	return model.PendingChange{
		ChangeID:      id,
		ObjectID:      objectID,
		SystemID:      "crm",
		AttributeName: attr,
		Value:         attribute.StringValue(value),
		Status:        model.StatusPending,
	}
}

func TestDispatchPending_DeliversAndMarksExported(t *testing.T) {
	store := &fakeExportStore{
		objects: map[string]csModel.ConnectedObject{"crm-1": {ObjectID: "crm-1", SystemID: "crm"}},
		pending: []model.PendingChange{pendingChange("ch-1", "crm-1", "emailAddress", "a@corp.example")},
	}
	conn := &fakeConnector{}
	exporter := exporterFixture(conn, store)

	stats, err := exporter.DispatchPending(context.Background(), "crm")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Delivered)

	updated, ok := store.lastUpdate("ch-1")
	require.True(t, ok)
	assert.Equal(t, model.StatusExported, updated.Status)
	assert.Equal(t, 1, updated.AttemptCount)
}

func TestDispatchPending_AutoConfirmSkipsExportedState(t *testing.T) {
	store := &fakeExportStore{
		objects: map[string]csModel.ConnectedObject{"crm-1": {ObjectID: "crm-1", SystemID: "crm"}},
		pending: []model.PendingChange{pendingChange("ch-1", "crm-1", "emailAddress", "a@corp.example")},
	}
	conn := &fakeConnector{capabilities: csModel.ConnectorCapabilities{SupportsAutoConfirmExport: true}}
	exporter := exporterFixture(conn, store)

	_, err := exporter.DispatchPending(context.Background(), "crm")
	require.NoError(t, err)

	updated, ok := store.lastUpdate("ch-1")
	require.True(t, ok)
	assert.Equal(t, model.StatusConfirmed, updated.Status)
}

func TestDispatchPending_FailureStopsObjectQueue(t *testing.T) {
	store := &fakeExportStore{
		objects: map[string]csModel.ConnectedObject{"crm-1": {ObjectID: "crm-1", SystemID: "crm"}},
		pending: []model.PendingChange{
			pendingChange("ch-1", "crm-1", "emailAddress", "a@corp.example"),
			pendingChange("ch-2", "crm-1", "displayName", "Alice"),
		},
	}
	conn := &fakeConnector{failFor: map[string]error{"emailAddress": errors.New("target down")}}
	exporter := exporterFixture(conn, store)

	stats, err := exporter.DispatchPending(context.Background(), "crm")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.Delivered)

	updated, ok := store.lastUpdate("ch-1")
	require.True(t, ok)
	assert.Equal(t, model.StatusFailed, updated.Status)

	// The later change of the same object was never attempted.
	_, attempted := store.lastUpdate("ch-2")
	assert.False(t, attempted)
	assert.Empty(t, conn.exports)
}

func TestDispatchPending_DeleteRequestCallsDeleteObject(t *testing.T) {
	change := pendingChange("ch-1", "crm-1", "", "")
	change.DeleteRequest = true
	store := &fakeExportStore{
		objects: map[string]csModel.ConnectedObject{"crm-1": {ObjectID: "crm-1", SystemID: "crm"}},
		pending: []model.PendingChange{change},
	}
	conn := &fakeConnector{}
	exporter := exporterFixture(conn, store)

	stats, err := exporter.DispatchPending(context.Background(), "crm")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Delivered)
	assert.Equal(t, []string{"crm-1"}, conn.deletes)
}

func TestDispatchPending_DeleteRequestConfirmsOnDelivery(t *testing.T) {
	change := pendingChange("ch-1", "crm-1", "", "")
	change.DeleteRequest = true
	store := &fakeExportStore{
		objects: map[string]csModel.ConnectedObject{"crm-1": {ObjectID: "crm-1", SystemID: "crm"}},
		pending: []model.PendingChange{change},
	}
	conn := &fakeConnector{}
	exporter := exporterFixture(conn, store)

	_, err := exporter.DispatchPending(context.Background(), "crm")
	require.NoError(t, err)

	// Without auto-confirm an attribute change would rest at Exported,
	// but a delete leaves nothing behind for an import pass to confirm.
	updated, ok := store.lastUpdate("ch-1")
	require.True(t, ok)
	assert.Equal(t, model.StatusConfirmed, updated.Status)
}

func TestDispatchPending_ParallelAcrossObjects(t *testing.T) {
	store := &fakeExportStore{
		objects: map[string]csModel.ConnectedObject{
			"crm-1": {ObjectID: "crm-1", SystemID: "crm"},
			"crm-2": {ObjectID: "crm-2", SystemID: "crm"},
		},
		pending: []model.PendingChange{
			pendingChange("ch-1", "crm-1", "emailAddress", "a@corp.example"),
			pendingChange("ch-2", "crm-2", "emailAddress", "b@corp.example"),
		},
	}
	conn := &fakeConnector{capabilities: csModel.ConnectorCapabilities{
		SupportsParallelExport: true,
		MaxExportParallelism:   4,
	}}
	exporter := exporterFixture(conn, store)

	stats, err := exporter.DispatchPending(context.Background(), "crm")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Delivered)
	assert.ElementsMatch(t, []string{"crm-1/emailAddress", "crm-2/emailAddress"}, conn.exports)
}

func TestConfirmImported_SettlesMatchingValue(t *testing.T) {
	exported := pendingChange("ch-1", "crm-1", "emailAddress", "a@corp.example")
	exported.Status = model.StatusExported
	store := &fakeExportStore{exported: []model.PendingChange{exported}}
	exporter := exporterFixture(&fakeConnector{}, store)

	confirmed, err := exporter.ConfirmImported(csModel.ConnectedObject{
		ObjectID: "crm-1",
		Attributes: map[string]attribute.Value{
			"emailAddress": attribute.StringValue("a@corp.example"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, confirmed)

	updated, ok := store.lastUpdate("ch-1")
	require.True(t, ok)
	assert.Equal(t, model.StatusConfirmed, updated.Status)
}

func TestConfirmImported_MismatchLeavesExported(t *testing.T) {
	exported := pendingChange("ch-1", "crm-1", "emailAddress", "a@corp.example")
	exported.Status = model.StatusExported
	store := &fakeExportStore{exported: []model.PendingChange{exported}}
	exporter := exporterFixture(&fakeConnector{}, store)

	confirmed, err := exporter.ConfirmImported(csModel.ConnectedObject{
		ObjectID: "crm-1",
		Attributes: map[string]attribute.Value{
			"emailAddress": attribute.StringValue("other@corp.example"),
		},
	})
	require.NoError(t, err)
	assert.Zero(t, confirmed)

	updated, ok := store.lastUpdate("ch-1")
	require.True(t, ok)
	assert.Equal(t, model.StatusExported, updated.Status)
	require.NotNil(t, updated.LastImportedValue)
	assert.Equal(t, "other@corp.example", updated.LastImportedValue.Str)
}

func TestRequeueFailed_MovesFailedBackToPending(t *testing.T) {
	failed := pendingChange("ch-1", "crm-1", "emailAddress", "a@corp.example")
	failed.Status = model.StatusFailed
	failed.AttemptCount = 1
	store := &fakeExportStore{failed: []model.PendingChange{failed}}
	exporter := exporterFixture(&fakeConnector{}, store)

	requeued, err := exporter.RequeueFailed(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, requeued)

	updated, ok := store.lastUpdate("ch-1")
	require.True(t, ok)
	assert.Equal(t, model.StatusPending, updated.Status)
}

func TestDispatchPending_FailedChangeHoldsObjectQueueAcrossRuns(t *testing.T) {
	older := pendingChange("ch-old", "crm-1", "emailAddress", "old@corp.example")
	older.Status = model.StatusFailed
	older.AttemptCount = 1
	store := &fakeExportStore{
		objects: map[string]csModel.ConnectedObject{
			"crm-1": {ObjectID: "crm-1", SystemID: "crm"},
			"crm-2": {ObjectID: "crm-2", SystemID: "crm"},
		},
		pending: []model.PendingChange{
			pendingChange("ch-new", "crm-1", "emailAddress", "new@corp.example"),
			pendingChange("ch-other", "crm-2", "title", "engineer"),
		},
		failed: []model.PendingChange{older},
	}
	conn := &fakeConnector{}
	exporter := exporterFixture(conn, store)

	stats, err := exporter.DispatchPending(context.Background(), "crm")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Delivered)

	// crm-1 still owes the retry of ch-old; delivering ch-new now would
	// let the retried older value win later.
	_, advanced := store.lastUpdate("ch-new")
	assert.False(t, advanced)

	updated, ok := store.lastUpdate("ch-other")
	require.True(t, ok)
	assert.Equal(t, model.StatusExported, updated.Status)
}
