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
	"fmt"
	"sync"
	"time"

	csModel "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	csStore "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/store"
	"github.com/wso2/identity-metadirectory-service/internal/connector"
	"github.com/wso2/identity-metadirectory-service/internal/export/model"
	"github.com/wso2/identity-metadirectory-service/internal/export/store"
	"github.com/wso2/identity-metadirectory-service/internal/system/config"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// Store is the persistence surface the exporter needs.
type Store interface {
	GetConnectedObject(objectID string) (*csModel.ConnectedObject, error)
	GetPendingChangesForSystem(systemID string) ([]model.PendingChange, error)
	GetHeldObjectIDs(systemID string) ([]string, error)
	GetExportedChangesForObject(objectID string) ([]model.PendingChange, error)
	GetRetryableFailedChanges(before time.Time) ([]model.PendingChange, error)
	UpdatePendingChange(change model.PendingChange) error
}

// DispatchStats summarizes one dispatch pass over a system's queue.
type DispatchStats struct {
	Delivered int
	Failed    int
	Abandoned int
}

// Exporter drains the pending export queue through connectors. Changes
// for the same connected object are delivered strictly in enqueue order;
// changes for different objects run in parallel when the connector
// allows it.
type Exporter struct {
	store       Store
	connectorFn func(systemID string) (connector.Connector, error)
	maxAttempts int
	now         func() time.Time
}

// NewExporter returns an exporter bound to the feature stores and the
// connector registry.
func NewExporter() *Exporter {

	return &Exporter{
		store:       dbStore{},
		connectorFn: connector.Get,
		maxAttempts: config.GetMDSRuntime().Config.Sync.MaxExportAttempts,
		now:         time.Now,
	}
}

// NewExporterWithStore returns an exporter over the given store and
// connector resolver, used by tests.
func NewExporterWithStore(s Store, connectorFn func(systemID string) (connector.Connector, error),
	maxAttempts int) *Exporter {

	return &Exporter{store: s, connectorFn: connectorFn, maxAttempts: maxAttempts, now: time.Now}
}

// DispatchPending delivers every pending change of a system. A failed
// delivery marks the change failed (or abandoned at the attempt cap)
// and skips the rest of that object's queue so ordering is preserved.
func (e *Exporter) DispatchPending(ctx context.Context, systemID string) (*DispatchStats, error) {

	conn, err := e.connectorFn(systemID)
	if err != nil {
		return nil, err
	}
	changes, err := e.store.GetPendingChangesForSystem(systemID)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return &DispatchStats{}, nil
	}

	// An object with a failed change outstanding keeps its whole queue
	// parked until the retry scheduler requeues it. Dispatching the later
	// changes now would let the retried older value overwrite them.
	heldIDs, err := e.store.GetHeldObjectIDs(systemID)
	if err != nil {
		return nil, err
	}
	held := map[string]bool{}
	for _, objectID := range heldIDs {
		held[objectID] = true
	}

	// Group by object, preserving enqueue order within each group.
	var order []string
	byObject := map[string][]model.PendingChange{}
	for _, change := range changes {
		if held[change.ObjectID] {
			continue
		}
		if _, ok := byObject[change.ObjectID]; !ok {
			order = append(order, change.ObjectID)
		}
		byObject[change.ObjectID] = append(byObject[change.ObjectID], change)
	}

	parallelism := exportParallelism(conn.Capabilities())

	var (
		mu    sync.Mutex
		stats DispatchStats
		wg    sync.WaitGroup
	)
	sem := make(chan struct{}, parallelism)
	for _, objectID := range order {
		queue := byObject[objectID]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			objectStats := e.dispatchObjectQueue(ctx, conn, queue)
			mu.Lock()
			stats.Delivered += objectStats.Delivered
			stats.Failed += objectStats.Failed
			stats.Abandoned += objectStats.Abandoned
			mu.Unlock()
		}()
	}
	wg.Wait()
	return &stats, nil
}

func (e *Exporter) dispatchObjectQueue(ctx context.Context, conn connector.Connector,
	queue []model.PendingChange) DispatchStats {

	logger := log.GetLogger()
	var stats DispatchStats
	autoConfirm := conn.Capabilities().SupportsAutoConfirmExport

	for i := range queue {
		change := queue[i]
		object, err := e.store.GetConnectedObject(change.ObjectID)
		if err != nil || object == nil {
			logger.Error(fmt.Sprintf("Failed to load connected object for export change: %s",
				change.ChangeID), log.Error(err))
			stats.Failed++
			return stats
		}

		if change.DeleteRequest {
			err = conn.DeleteObject(ctx, *object)
		} else {
			err = conn.ExportChange(ctx, *object, change.AttributeName, change.Value)
		}

		if err != nil {
			MarkFailed(&change, e.maxAttempts, e.now())
			if updateErr := e.store.UpdatePendingChange(change); updateErr != nil {
				logger.Error(fmt.Sprintf("Failed to persist export state for change: %s",
					change.ChangeID), log.Error(updateErr))
			}
			if change.Status == model.StatusAbandoned {
				stats.Abandoned++
				logger.Audit(log.AuditEvent{
					InitiatorType: log.InitiatorTypeSystem,
					TargetID:      change.ChangeID,
					TargetType:    log.TargetTypeExportChange,
					ActionID:      log.ActionExportAbandoned,
					Data:          map[string]string{"object_id": change.ObjectID},
				})
			} else {
				stats.Failed++
				logger.Audit(log.AuditEvent{
					InitiatorType: log.InitiatorTypeSystem,
					TargetID:      change.ChangeID,
					TargetType:    log.TargetTypeExportChange,
					ActionID:      log.ActionExportFailed,
					Data:          map[string]string{"object_id": change.ObjectID},
				})
			}
			// Preserve per-object ordering: later changes wait for the
			// retry of this one.
			return stats
		}

		MarkDelivered(&change, autoConfirm, e.now())
		if err := e.store.UpdatePendingChange(change); err != nil {
			logger.Error(fmt.Sprintf("Failed to persist export state for change: %s",
				change.ChangeID), log.Error(err))
			return stats
		}
		stats.Delivered++
		logger.Audit(log.AuditEvent{
			InitiatorType: log.InitiatorTypeSystem,
			TargetID:      change.ChangeID,
			TargetType:    log.TargetTypeExportChange,
			ActionID:      log.ActionExportDelivered,
			Data:          map[string]string{"object_id": change.ObjectID},
		})
	}
	return stats
}

// ConfirmImported settles the exported changes of an object against its
// freshly imported attribute values, the import-confirmation leg of the
// export lifecycle.
func (e *Exporter) ConfirmImported(object csModel.ConnectedObject) (int, error) {

	logger := log.GetLogger()
	changes, err := e.store.GetExportedChangesForObject(object.ObjectID)
	if err != nil {
		return 0, err
	}

	confirmed := 0
	for i := range changes {
		change := changes[i]
		imported := object.Attributes[change.AttributeName]
		wasConfirmed := ConfirmOnImport(&change, imported, e.now())
		if err := e.store.UpdatePendingChange(change); err != nil {
			return confirmed, err
		}
		if wasConfirmed {
			confirmed++
			logger.Audit(log.AuditEvent{
				InitiatorType: log.InitiatorTypeSystem,
				TargetID:      change.ChangeID,
				TargetType:    log.TargetTypeExportChange,
				ActionID:      log.ActionExportConfirmed,
				Data:          map[string]string{"object_id": change.ObjectID},
			})
		}
	}
	return confirmed, nil
}

// RequeueFailed moves failed changes last touched on or before the
// cutoff back to pending. The scheduler calls this on the export retry
// interval.
func (e *Exporter) RequeueFailed(before time.Time) (int, error) {

	changes, err := e.store.GetRetryableFailedChanges(before)
	if err != nil {
		return 0, err
	}

	requeued := 0
	for i := range changes {
		change := changes[i]
		if !Requeue(&change, e.now()) {
			continue
		}
		if err := e.store.UpdatePendingChange(change); err != nil {
			return requeued, err
		}
		requeued++
	}
	return requeued, nil
}

func exportParallelism(capabilities csModel.ConnectorCapabilities) int {

	if !capabilities.SupportsParallelExport {
		return 1
	}
	if capabilities.MaxExportParallelism > 0 {
		return capabilities.MaxExportParallelism
	}
	if fallback := config.GetMDSRuntime().Config.Sync.DefaultExportParallelism; fallback > 0 {
		return fallback
	}
	return 1
}

type dbStore struct{}

func (dbStore) GetConnectedObject(objectID string) (*csModel.ConnectedObject, error) {
	return csStore.GetConnectedObject(objectID)
}

func (dbStore) GetPendingChangesForSystem(systemID string) ([]model.PendingChange, error) {
	return store.GetPendingChangesForSystem(systemID)
}

func (dbStore) GetHeldObjectIDs(systemID string) ([]string, error) {
	return store.GetHeldObjectIDs(systemID)
}

func (dbStore) GetExportedChangesForObject(objectID string) ([]model.PendingChange, error) {
	return store.GetExportedChangesForObject(objectID)
}

func (dbStore) GetRetryableFailedChanges(before time.Time) ([]model.PendingChange, error) {
	return store.GetRetryableFailedChanges(before)
}

func (dbStore) UpdatePendingChange(change model.PendingChange) error {
	return store.UpdatePendingChange(change)
}
