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

	csStore "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/store"
	mvStore "github.com/wso2/identity-metadirectory-service/internal/metaverse/store"
	"github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	"github.com/wso2/identity-metadirectory-service/internal/syncrule/store"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
)

// RuleServiceInterface manages the sync rule catalog.
type RuleServiceInterface interface {
	AddSyncRule(rule model.SyncRule, createdBy string) (*model.SyncRule, error)
	GetSyncRulesForType(objectTypeID string) ([]model.SyncRule, error)
	GetSyncRule(ruleID string) (*model.SyncRule, error)
	DeleteSyncRule(ruleID string) error
}

// RuleService is the default implementation of the RuleServiceInterface.
type RuleService struct{}

// GetRuleService returns a new instance.
func GetRuleService() RuleServiceInterface {

	return &RuleService{}
}

// AddSyncRule validates and persists a sync rule. Each (object type,
// direction) pair carries at most one rule per order slot; a second rule
// claiming a taken slot is rejected rather than silently reordered.
func (rs *RuleService) AddSyncRule(rule model.SyncRule, createdBy string) (*model.SyncRule, error) {

	if err := validateSyncRule(&rule); err != nil {
		return nil, err
	}

	system, err := csStore.GetConnectedSystem(rule.SystemID)
	if err != nil {
		return nil, err
	}
	if system == nil {
		return nil, invalidRuleError(fmt.Sprintf("No connected system exists with id: %s", rule.SystemID))
	}
	objectType, err := mvStore.GetObjectType(rule.ObjectTypeID)
	if err != nil {
		return nil, err
	}
	if objectType == nil {
		return nil, invalidRuleError(fmt.Sprintf("No metaverse object type exists with id: %s", rule.ObjectTypeID))
	}

	existing, err := store.GetSyncRulesForType(rule.ObjectTypeID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if other.Direction == rule.Direction && other.Order == rule.Order {
			return nil, errors2.NewClientError(errors2.ErrorMessage{
				Code:    errors2.SYNC_RULE_EXISTS.Code,
				Message: errors2.SYNC_RULE_EXISTS.Message,
				Description: fmt.Sprintf("Rule %s already occupies order %d for %s %s rules.",
					other.RuleID, rule.Order, rule.ObjectTypeID, rule.Direction),
			}, http.StatusConflict)
		}
	}

	rule.RuleID = uuid.New().String()
	rule.CreatedAt = time.Now().UTC()
	rule.CreatedBy = createdBy
	for i := range rule.Mappings {
		if rule.Mappings[i].CreatedAt.IsZero() {
			rule.Mappings[i].CreatedAt = rule.CreatedAt
		}
		if rule.Mappings[i].CreatedBy == "" {
			rule.Mappings[i].CreatedBy = createdBy
		}
	}

	if err := store.AddSyncRule(rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetSyncRulesForType lists the rules of a metaverse object type in
// precedence order.
func (rs *RuleService) GetSyncRulesForType(objectTypeID string) ([]model.SyncRule, error) {

	if objectTypeID == "" {
		return nil, invalidRuleError("An object_type_id is required to list sync rules.")
	}
	return store.GetSyncRulesForType(objectTypeID)
}

// GetSyncRule fetches one rule, or nil when unknown.
func (rs *RuleService) GetSyncRule(ruleID string) (*model.SyncRule, error) {

	return store.GetSyncRule(ruleID)
}

// DeleteSyncRule removes a rule from the catalog. Objects already
// reconciled under the rule keep their state until the next import run
// re-evaluates them.
func (rs *RuleService) DeleteSyncRule(ruleID string) error {

	rule, err := store.GetSyncRule(ruleID)
	if err != nil {
		return err
	}
	if rule == nil {
		return errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.RULE_NOT_FOUND.Code,
			Message:     errors2.RULE_NOT_FOUND.Message,
			Description: fmt.Sprintf("No sync rule exists with id: %s", ruleID),
		}, http.StatusNotFound)
	}
	return store.DeleteSyncRule(ruleID)
}

func validateSyncRule(rule *model.SyncRule) error {

	if rule.Name == "" {
		return invalidRuleError("A sync rule requires a name.")
	}
	if rule.SystemID == "" {
		return invalidRuleError("A sync rule requires a system_id.")
	}
	if rule.ObjectTypeID == "" {
		return invalidRuleError("A sync rule requires an object_type_id.")
	}
	if rule.Direction != model.DirectionInbound && rule.Direction != model.DirectionOutbound {
		return invalidRuleError(fmt.Sprintf("Unknown rule direction: %s", rule.Direction))
	}
	if rule.Order < 1 {
		return invalidRuleError("Rule order must be a positive integer.")
	}
	if len(rule.Mappings) == 0 {
		return invalidRuleError("A sync rule requires at least one attribute mapping.")
	}
	for _, mapping := range rule.Mappings {
		if mapping.SourceAttribute == "" || mapping.TargetAttribute == "" {
			return invalidRuleError("Attribute mappings require both a source and a target attribute.")
		}
	}
	for _, criterion := range rule.Scope {
		if criterion.Attribute == "" {
			return invalidRuleError("Scoping criteria require an attribute name.")
		}
		switch criterion.Operator {
		case model.OperatorEquals, model.OperatorNotEquals, model.OperatorPresent:
		default:
			return invalidRuleError(fmt.Sprintf("Unknown scoping operator: %s", criterion.Operator))
		}
	}
	if rule.OutOfScopeAction == "" {
		rule.OutOfScopeAction = model.OutOfScopeDisconnect
	}
	if rule.OutOfScopeAction != model.OutOfScopeDisconnect && rule.OutOfScopeAction != model.OutOfScopeNone {
		return invalidRuleError(fmt.Sprintf("Unknown out_of_scope_action: %s", rule.OutOfScopeAction))
	}
	if rule.DeprovisionAction == "" {
		rule.DeprovisionAction = model.DeprovisionNone
	}
	switch rule.DeprovisionAction {
	case model.DeprovisionNone, model.DeprovisionDisconnect, model.DeprovisionRequestDelete:
	default:
		return invalidRuleError(fmt.Sprintf("Unknown deprovision_action: %s", rule.DeprovisionAction))
	}
	if rule.ProjectionAllowed && rule.Direction == model.DirectionOutbound {
		return invalidRuleError("Only inbound rules may allow projection.")
	}
	return nil
}

func invalidRuleError(description string) error {

	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.INVALID_RULE_DEFINITION.Code,
		Message:     errors2.INVALID_RULE_DEFINITION.Message,
		Description: description,
	}, http.StatusBadRequest)
}
