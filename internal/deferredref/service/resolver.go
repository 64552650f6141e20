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
	"fmt"
	"time"

	"github.com/wso2/identity-metadirectory-service/internal/deferredref/model"
	"github.com/wso2/identity-metadirectory-service/internal/deferredref/store"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// Refresher re-runs attribute flow for one metaverse object. The
// reconciler satisfies it.
type Refresher interface {
	RefreshMvo(mvoID string) (int, error)
}

// Store is the persistence surface the resolver needs.
type Store interface {
	GetDeferredReferencesByTarget(targetExternalID string) ([]model.DeferredReference, error)
	GetStaleDeferredReferences(before time.Time) ([]model.DeferredReference, error)
	DeleteDeferredReference(referenceID string) error
}

// Resolver settles deferred references once their targets arrive.
type Resolver struct {
	store     Store
	refresher Refresher
}

// NewResolver returns a resolver bound to the deferred reference store.
func NewResolver(refresher Refresher) *Resolver {

	return &Resolver{store: dbStore{}, refresher: refresher}
}

// NewResolverWithStore returns a resolver over the given store, used by
// tests.
func NewResolverWithStore(s Store, refresher Refresher) *Resolver {

	return &Resolver{store: s, refresher: refresher}
}

// ResolveFor replays the references waiting on the given external
// identifiers, called after a connected object with those identifiers
// gets linked. Each waiting reference is removed and its source
// metaverse object re-flowed; a reference that still cannot resolve is
// re-deferred by the flow itself, so the whole pass is idempotent.
// Returns the number of references replayed.
func (r *Resolver) ResolveFor(externalIDs ...string) (int, error) {

	logger := log.GetLogger()
	resolved := 0

	for _, externalID := range externalIDs {
		if externalID == "" {
			continue
		}
		references, err := r.store.GetDeferredReferencesByTarget(externalID)
		if err != nil {
			return resolved, err
		}
		for _, reference := range references {
			if err := r.store.DeleteDeferredReference(reference.ReferenceID); err != nil {
				return resolved, err
			}
			if _, err := r.refresher.RefreshMvo(reference.SourceMvoID); err != nil {
				return resolved, err
			}
			resolved++

			logger.Audit(log.AuditEvent{
				InitiatorType: log.InitiatorTypeSystem,
				TargetID:      reference.SourceMvoID,
				TargetType:    log.TargetTypeMetaverseObject,
				ActionID:      log.ActionResolveDeferred,
				Data: map[string]string{
					"target_external_id": reference.TargetExternalID,
					"target_attribute":   reference.TargetAttribute,
				},
			})
		}
	}
	return resolved, nil
}

// WarnStale logs a warning for every reference outstanding since before
// the cutoff, so operators notice targets that never arrive.
func (r *Resolver) WarnStale(before time.Time) (int, error) {

	logger := log.GetLogger()
	references, err := r.store.GetStaleDeferredReferences(before)
	if err != nil {
		return 0, err
	}
	for _, reference := range references {
		logger.Warn(fmt.Sprintf(
			"Deferred reference from object %s to %s (attribute %s) unresolved since %s",
			reference.SourceObjectID, reference.TargetExternalID, reference.TargetAttribute,
			reference.CreatedAt.Format(time.RFC3339)))
	}
	return len(references), nil
}

type dbStore struct{}

func (dbStore) GetDeferredReferencesByTarget(targetExternalID string) ([]model.DeferredReference, error) {
	return store.GetDeferredReferencesByTarget(targetExternalID)
}

func (dbStore) GetStaleDeferredReferences(before time.Time) ([]model.DeferredReference, error) {
	return store.GetStaleDeferredReferences(before)
}

func (dbStore) DeleteDeferredReference(referenceID string) error {
	return store.DeleteDeferredReference(referenceID)
}
