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
	"net/http"
	"time"

	"github.com/google/uuid"

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	csModel "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	csStore "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/store"
	drModel "github.com/wso2/identity-metadirectory-service/internal/deferredref/model"
	drStore "github.com/wso2/identity-metadirectory-service/internal/deferredref/store"
	exportModel "github.com/wso2/identity-metadirectory-service/internal/export/model"
	flowService "github.com/wso2/identity-metadirectory-service/internal/flow/service"
	matchModel "github.com/wso2/identity-metadirectory-service/internal/matching/model"
	matchService "github.com/wso2/identity-metadirectory-service/internal/matching/service"
	matchStore "github.com/wso2/identity-metadirectory-service/internal/matching/store"
	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	mvStore "github.com/wso2/identity-metadirectory-service/internal/metaverse/store"
	reconcileStore "github.com/wso2/identity-metadirectory-service/internal/reconcile/store"
	syncModel "github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	syncService "github.com/wso2/identity-metadirectory-service/internal/syncrule/service"
	syncStore "github.com/wso2/identity-metadirectory-service/internal/syncrule/store"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/lock"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// Action names the reconciliation outcome for one connected object.
type Action string

const (
	ActionJoined       Action = "joined"
	ActionProjected    Action = "projected"
	ActionUpdated      Action = "updated"
	ActionNoChange     Action = "no_change"
	ActionFiltered     Action = "filtered"
	ActionDisconnected Action = "disconnected"
)

// Result reports what reconciliation did with a connected object and
// how many attribute deltas were applied to its metaverse object.
type Result struct {
	Action Action
	MvoID  string
	Deltas int
}

// Store is the persistence surface reconciliation needs. The production
// binding delegates to the feature stores; tests substitute an
// in-memory fake.
type Store interface {
	GetConnectedObjectType(systemID, typeID string) (*csModel.ConnectedObjectType, error)
	GetConnectedObjectByExternalID(systemID, typeID, externalID string) (*csModel.ConnectedObject, error)
	GetConnectedObjectsByMvo(mvoID string) ([]csModel.ConnectedObject, error)
	LinkConnectedObject(objectID, mvoID string) error
	UnlinkConnectedObject(objectID string) error
	SetLastDisconnected(mvoID string, now time.Time) error

	GetSyncRulesForSystemType(systemID, objectTypeID string) ([]syncModel.SyncRule, error)
	GetMatchingRulesForType(objectTypeID string) ([]matchModel.ObjectMatchingRule, error)

	GetMetaverseObject(mvoID string) (*mvModel.MetaverseObject, error)
	GetMetaverseObjectsByType(typeID string) ([]mvModel.MetaverseObject, error)
	ProjectObject(object mvModel.MetaverseObject, connectedObjectID string) error
	ApplyAttributeFlow(mvoID string, attrs map[string]attribute.Value, updatedAt time.Time,
		outbound []exportModel.PendingChange) error
	ReactivateMetaverseObject(mvoID string, now time.Time) error

	AddDeferredReference(reference drModel.DeferredReference) error
}

// Reconciler drives matching, projection, join and attribute flow for
// one connected object at a time. All writes to a metaverse object
// happen under its advisory lock.
type Reconciler struct {
	store Store
	lock  lock.DistributedLock
	now   func() time.Time
}

// NewReconciler returns a reconciler bound to the feature stores and
// the Postgres advisory lock.
func NewReconciler() *Reconciler {

	return &Reconciler{store: dbStore{}, lock: lock.NewPostgresLock(), now: time.Now}
}

// NewReconcilerWithStore returns a reconciler over the given store and
// lock, used by tests.
func NewReconcilerWithStore(store Store, distLock lock.DistributedLock) *Reconciler {

	return &Reconciler{store: store, lock: distLock, now: time.Now}
}

// ReconcileObject runs the full reconciliation pass for one imported
// connected object: already-linked objects get their metaverse object
// re-evaluated; unlinked objects are matched against the metaverse
// population and joined, projected or left unlinked. An ambiguous match
// aborts the object with a policy exception and changes nothing.
func (r *Reconciler) ReconcileObject(object csModel.ConnectedObject) (*Result, error) {

	logger := log.GetLogger()

	objectType, err := r.store.GetConnectedObjectType(object.SystemID, object.TypeID)
	if err != nil {
		return nil, err
	}
	if objectType == nil {
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_OBJECT_TYPE.Code,
			Message:     errors2.GET_OBJECT_TYPE.Message,
			Description: fmt.Sprintf("No object type mapping for system %s type %s", object.SystemID, object.TypeID),
		}, nil)
	}

	rules, err := r.store.GetSyncRulesForSystemType(object.SystemID, objectType.MetaverseTypeID)
	if err != nil {
		return nil, err
	}

	if object.IsLinked() {
		if !anyInboundInScope(rules, object) && disconnectOnOutOfScope(rules) {
			return r.Disconnect(object)
		}
		deltas, err := r.refreshLocked(object.MvoID)
		if err != nil {
			return nil, err
		}
		action := ActionUpdated
		if deltas == 0 {
			action = ActionNoChange
		}
		return &Result{Action: action, MvoID: object.MvoID, Deltas: deltas}, nil
	}

	if !anyInboundInScope(rules, object) {
		return &Result{Action: ActionFiltered}, nil
	}

	matchingRules, err := r.store.GetMatchingRulesForType(objectType.MetaverseTypeID)
	if err != nil {
		return nil, err
	}
	candidates, err := r.store.GetMetaverseObjectsByType(objectType.MetaverseTypeID)
	if err != nil {
		return nil, err
	}

	match := matchService.Match(object, matchingRules, candidates)
	switch match.Outcome {
	case matchService.OutcomeAmbiguous:
		logger.Audit(log.AuditEvent{
			InitiatorType: log.InitiatorTypeSystem,
			TargetID:      object.ObjectID,
			TargetType:    log.TargetTypeConnectedObject,
			ActionID:      log.ActionAmbiguousMatch,
			Data:          map[string]string{"rule_id": match.RuleID},
		})
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.AMBIGUOUS_MATCH.Code,
			Message:     errors2.AMBIGUOUS_MATCH.Message,
			Description: fmt.Sprintf("Connected object %s matched multiple metaverse objects under rule %s", object.ObjectID, match.RuleID),
		}, http.StatusConflict)

	case matchService.OutcomeUnique:
		deltas, err := r.join(object, match.MvoID)
		if err != nil {
			return nil, err
		}
		return &Result{Action: ActionJoined, MvoID: match.MvoID, Deltas: deltas}, nil

	default:
		if !projectionAllowed(rules, object) {
			return &Result{Action: ActionFiltered}, nil
		}
		mvoID, deltas, err := r.project(object, objectType.MetaverseTypeID)
		if err != nil {
			return nil, err
		}
		return &Result{Action: ActionProjected, MvoID: mvoID, Deltas: deltas}, nil
	}
}

// Disconnect unlinks a connected object from its metaverse object and
// re-runs attribute flow without it. The caller decides what the loss of
// this link means for the metaverse object's lifetime.
func (r *Reconciler) Disconnect(object csModel.ConnectedObject) (*Result, error) {

	if !object.IsLinked() {
		return &Result{Action: ActionNoChange}, nil
	}
	mvoID := object.MvoID

	logger := log.GetLogger()
	key := lock.MvoLockKey(mvoID)
	acquired, err := r.lock.Acquire(key)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, errors2.NewServerError(errors2.LOCK_ACQUIRE, nil)
	}
	defer func() {
		if err := r.lock.Release(key); err != nil {
			logger.Error(fmt.Sprintf("Failed to release lock for metaverse object: %s", mvoID), log.Error(err))
		}
	}()

	if err := r.store.UnlinkConnectedObject(object.ObjectID); err != nil {
		return nil, err
	}
	if err := r.store.SetLastDisconnected(mvoID, r.now()); err != nil {
		return nil, err
	}

	// The departed object no longer contributes values, but the
	// EnforceState policy of its rules still decides whether the
	// attributes it supplied are retracted or kept.
	mvo, err := r.store.GetMetaverseObject(mvoID)
	if err != nil {
		return nil, err
	}
	var departed []flowService.Source
	if mvo != nil {
		rules, err := r.store.GetSyncRulesForSystemType(object.SystemID, mvo.TypeID)
		if err != nil {
			return nil, err
		}
		ghost := object
		ghost.Attributes = nil
		departed = append(departed, flowService.Source{Object: ghost, Rules: rules})
	}

	deltas, err := r.flow(mvoID, departed...)
	if err != nil {
		return nil, err
	}
	return &Result{Action: ActionDisconnected, MvoID: mvoID, Deltas: deltas}, nil
}

// RefreshMvo re-runs attribute flow for a metaverse object, used after
// link changes and deferred reference resolution.
func (r *Reconciler) RefreshMvo(mvoID string) (int, error) {

	return r.refreshLocked(mvoID)
}

func (r *Reconciler) join(object csModel.ConnectedObject, mvoID string) (int, error) {

	logger := log.GetLogger()
	key := lock.MvoLockKey(mvoID)
	acquired, err := r.lock.Acquire(key)
	if err != nil {
		return 0, err
	}
	if !acquired {
		return 0, errors2.NewServerError(errors2.LOCK_ACQUIRE, nil)
	}
	defer func() {
		if err := r.lock.Release(key); err != nil {
			logger.Error(fmt.Sprintf("Failed to release lock for metaverse object: %s", mvoID), log.Error(err))
		}
	}()

	if err := r.store.LinkConnectedObject(object.ObjectID, mvoID); err != nil {
		return 0, err
	}
	// A join reconnects a disconnected source, so a pending scheduled
	// deletion no longer applies.
	if err := r.store.ReactivateMetaverseObject(mvoID, r.now()); err != nil {
		return 0, err
	}

	logger.Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      mvoID,
		TargetType:    log.TargetTypeMetaverseObject,
		ActionID:      log.ActionJoinObject,
		Data:          map[string]string{"object_id": object.ObjectID},
	})
	return r.flow(mvoID)
}

func (r *Reconciler) project(object csModel.ConnectedObject, metaverseTypeID string) (string, int, error) {

	logger := log.GetLogger()
	now := r.now()
	mvo := mvModel.MetaverseObject{
		MvoID:      uuid.New().String(),
		TypeID:     metaverseTypeID,
		Attributes: map[string]attribute.Value{},
		Origin:     mvModel.OriginProjected,
		Status:     mvModel.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// Creating the object and linking its source commit as one unit so a
	// failure cannot leave an orphan metaverse object behind.
	if err := r.store.ProjectObject(mvo, object.ObjectID); err != nil {
		return "", 0, err
	}

	logger.Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      mvo.MvoID,
		TargetType:    log.TargetTypeMetaverseObject,
		ActionID:      log.ActionProjectObject,
		Data:          map[string]string{"object_id": object.ObjectID},
	})

	deltas, err := r.refreshLocked(mvo.MvoID)
	return mvo.MvoID, deltas, err
}

func (r *Reconciler) refreshLocked(mvoID string) (int, error) {

	logger := log.GetLogger()
	key := lock.MvoLockKey(mvoID)
	acquired, err := r.lock.Acquire(key)
	if err != nil {
		return 0, err
	}
	if !acquired {
		return 0, errors2.NewServerError(errors2.LOCK_ACQUIRE, nil)
	}
	defer func() {
		if err := r.lock.Release(key); err != nil {
			logger.Error(fmt.Sprintf("Failed to release lock for metaverse object: %s", mvoID), log.Error(err))
		}
	}()

	return r.flow(mvoID)
}

// flow recomputes the metaverse object's attributes from every linked
// connected object plus any extra sources and applies the resulting
// deltas. The caller holds the object's lock.
func (r *Reconciler) flow(mvoID string, extra ...flowService.Source) (int, error) {

	mvo, err := r.store.GetMetaverseObject(mvoID)
	if err != nil {
		return 0, err
	}
	if mvo == nil || mvo.Status == mvModel.StatusDeleted {
		return 0, nil
	}

	linked, err := r.store.GetConnectedObjectsByMvo(mvoID)
	if err != nil {
		return 0, err
	}

	sources := make([]flowService.Source, 0, len(linked))
	rulesBySystem := map[string][]syncModel.SyncRule{}
	for _, object := range linked {
		rules, ok := rulesBySystem[object.SystemID]
		if !ok {
			rules, err = r.store.GetSyncRulesForSystemType(object.SystemID, mvo.TypeID)
			if err != nil {
				return 0, err
			}
			rulesBySystem[object.SystemID] = rules
		}
		resolved, err := r.resolveReferences(object, mvoID)
		if err != nil {
			return 0, err
		}
		sources = append(sources, flowService.Source{Object: resolved, Rules: rules})
	}
	sources = append(sources, extra...)

	deltas := flowService.Evaluate(mvo.Attributes, sources)
	if len(deltas) == 0 {
		return 0, nil
	}

	attrs := make(map[string]attribute.Value, len(mvo.Attributes))
	for name, value := range mvo.Attributes {
		attrs[name] = value
	}
	for _, delta := range deltas {
		if delta.Retract {
			delete(attrs, delta.Attribute)
			continue
		}
		attrs[delta.Attribute] = delta.Value
	}
	outbound := r.outboundChanges(linked, rulesBySystem, deltas)
	if err := r.store.ApplyAttributeFlow(mvoID, attrs, r.now(), outbound); err != nil {
		return 0, err
	}
	return len(deltas), nil
}

// resolveReferences rewrites reference attributes of a connected object
// into metaverse object references. A reference whose target external
// identifier is not yet linked is recorded as deferred and withheld from
// attribute flow until the target arrives.
func (r *Reconciler) resolveReferences(object csModel.ConnectedObject,
	mvoID string) (csModel.ConnectedObject, error) {

	var pending []string
	for name, value := range object.Attributes {
		if value.Kind == attribute.KindReference {
			pending = append(pending, name)
		}
	}
	if len(pending) == 0 {
		return object, nil
	}

	resolved := object
	resolved.Attributes = make(map[string]attribute.Value, len(object.Attributes))
	for name, value := range object.Attributes {
		resolved.Attributes[name] = value
	}

	for _, name := range pending {
		targetExternalID := resolved.Attributes[name].Ref
		target, err := r.store.GetConnectedObjectByExternalID(object.SystemID, object.TypeID, targetExternalID)
		if err != nil {
			return object, err
		}
		if target != nil && target.IsLinked() {
			resolved.Attributes[name] = attribute.ReferenceValue(target.MvoID)
			continue
		}
		delete(resolved.Attributes, name)
		err = r.store.AddDeferredReference(drModel.DeferredReference{
			ReferenceID:      uuid.New().String(),
			SourceObjectID:   object.ObjectID,
			SourceMvoID:      mvoID,
			TargetExternalID: targetExternalID,
			TargetAttribute:  name,
			CreatedAt:        r.now(),
		})
		if err != nil {
			return object, err
		}
	}
	return resolved, nil
}

// outboundChanges turns applied metaverse deltas into pending export
// changes for every linked, in-scope connected object whose system has
// an outbound mapping of the changed attribute. A retraction exports a
// zero value, which connectors treat as a clear. The caller commits the
// returned changes together with the attribute update.
func (r *Reconciler) outboundChanges(linked []csModel.ConnectedObject,
	rulesBySystem map[string][]syncModel.SyncRule, deltas []flowService.Delta) []exportModel.PendingChange {

	var outbound []exportModel.PendingChange
	now := r.now()
	for _, object := range linked {
		for _, rule := range rulesBySystem[object.SystemID] {
			if !rule.Enabled || rule.Direction != syncModel.DirectionOutbound {
				continue
			}
			if !syncService.InScope(rule, object.Attributes) {
				continue
			}
			for _, mapping := range rule.Mappings {
				for _, delta := range deltas {
					if delta.Attribute != mapping.SourceAttribute {
						continue
					}
					change := exportModel.PendingChange{
						ChangeID:      uuid.New().String(),
						ObjectID:      object.ObjectID,
						SystemID:      object.SystemID,
						AttributeName: mapping.TargetAttribute,
						Value:         delta.Value,
						Status:        exportModel.StatusPending,
						CreatedAt:     now,
						UpdatedAt:     now,
					}
					outbound = append(outbound, change)
				}
			}
		}
	}
	return outbound
}

func anyInboundInScope(rules []syncModel.SyncRule, object csModel.ConnectedObject) bool {

	for _, rule := range rules {
		if rule.Enabled && rule.Direction == syncModel.DirectionInbound &&
			syncService.InScope(rule, object.Attributes) {
			return true
		}
	}
	return false
}

// disconnectOnOutOfScope consults the lowest-order enabled inbound rule
// for its out-of-scope action; an unset action defaults to disconnect.
func disconnectOnOutOfScope(rules []syncModel.SyncRule) bool {

	for _, rule := range rules {
		if rule.Enabled && rule.Direction == syncModel.DirectionInbound {
			return rule.OutOfScopeAction != syncModel.OutOfScopeNone
		}
	}
	return false
}

func projectionAllowed(rules []syncModel.SyncRule, object csModel.ConnectedObject) bool {

	for _, rule := range rules {
		if rule.Enabled && rule.Direction == syncModel.DirectionInbound && rule.ProjectionAllowed &&
			syncService.InScope(rule, object.Attributes) {
			return true
		}
	}
	return false
}

// dbStore binds the reconciler to the feature stores.
type dbStore struct{}

func (dbStore) GetConnectedObjectType(systemID, typeID string) (*csModel.ConnectedObjectType, error) {
	return csStore.GetConnectedObjectType(systemID, typeID)
}

func (dbStore) GetConnectedObjectByExternalID(systemID, typeID, externalID string) (*csModel.ConnectedObject, error) {
	return csStore.GetConnectedObjectByExternalID(systemID, typeID, externalID)
}

func (dbStore) GetConnectedObjectsByMvo(mvoID string) ([]csModel.ConnectedObject, error) {
	return csStore.GetConnectedObjectsByMvo(mvoID)
}

func (dbStore) LinkConnectedObject(objectID, mvoID string) error {
	return csStore.LinkConnectedObject(objectID, mvoID)
}

func (dbStore) UnlinkConnectedObject(objectID string) error {
	return csStore.UnlinkConnectedObject(objectID)
}

func (dbStore) SetLastDisconnected(mvoID string, now time.Time) error {
	return mvStore.SetLastDisconnected(mvoID, now)
}

func (dbStore) GetSyncRulesForSystemType(systemID, objectTypeID string) ([]syncModel.SyncRule, error) {
	return syncStore.GetSyncRulesForSystemType(systemID, objectTypeID)
}

func (dbStore) GetMatchingRulesForType(objectTypeID string) ([]matchModel.ObjectMatchingRule, error) {
	return matchStore.GetMatchingRulesForType(objectTypeID)
}

func (dbStore) GetMetaverseObject(mvoID string) (*mvModel.MetaverseObject, error) {
	return mvStore.GetMetaverseObject(mvoID)
}

func (dbStore) GetMetaverseObjectsByType(typeID string) ([]mvModel.MetaverseObject, error) {
	return mvStore.GetMetaverseObjectsByType(typeID)
}

func (dbStore) ProjectObject(object mvModel.MetaverseObject, connectedObjectID string) error {
	return reconcileStore.ProjectMetaverseObject(object, connectedObjectID)
}

func (dbStore) ApplyAttributeFlow(mvoID string, attrs map[string]attribute.Value,
	updatedAt time.Time, outbound []exportModel.PendingChange) error {
	return reconcileStore.ApplyAttributeFlow(mvoID, attrs, updatedAt, outbound)
}

func (dbStore) ReactivateMetaverseObject(mvoID string, now time.Time) error {
	return mvStore.ReactivateMetaverseObject(mvoID, now)
}

func (dbStore) AddDeferredReference(reference drModel.DeferredReference) error {
	return drStore.AddDeferredReference(reference)
}
