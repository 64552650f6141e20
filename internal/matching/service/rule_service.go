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

	"github.com/wso2/identity-metadirectory-service/internal/matching/model"
	"github.com/wso2/identity-metadirectory-service/internal/matching/store"
	mvStore "github.com/wso2/identity-metadirectory-service/internal/metaverse/store"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
)

// MatchingRuleServiceInterface manages the join rule catalog.
type MatchingRuleServiceInterface interface {
	AddMatchingRule(rule model.ObjectMatchingRule) (*model.ObjectMatchingRule, error)
	GetMatchingRulesForType(objectTypeID string) ([]model.ObjectMatchingRule, error)
	DeleteMatchingRule(ruleID string) error
}

// MatchingRuleService is the default implementation of the
// MatchingRuleServiceInterface.
type MatchingRuleService struct{}

// GetMatchingRuleService returns a new instance.
func GetMatchingRuleService() MatchingRuleServiceInterface {

	return &MatchingRuleService{}
}

// AddMatchingRule validates and persists a join rule. Order slots are
// unique per object type so that rule precedence stays unambiguous.
func (ms *MatchingRuleService) AddMatchingRule(rule model.ObjectMatchingRule) (*model.ObjectMatchingRule, error) {

	if err := validateMatchingRule(rule); err != nil {
		return nil, err
	}

	objectType, err := mvStore.GetObjectType(rule.ObjectTypeID)
	if err != nil {
		return nil, err
	}
	if objectType == nil {
		return nil, invalidMatchingRuleError(
			fmt.Sprintf("No metaverse object type exists with id: %s", rule.ObjectTypeID))
	}

	existing, err := store.GetMatchingRulesForType(rule.ObjectTypeID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if other.Order == rule.Order {
			return nil, errors2.NewClientError(errors2.ErrorMessage{
				Code:    errors2.MATCHING_RULE_EXISTS.Code,
				Message: errors2.MATCHING_RULE_EXISTS.Message,
				Description: fmt.Sprintf("Rule %s already occupies order %d for type %s.",
					other.RuleID, rule.Order, rule.ObjectTypeID),
			}, http.StatusConflict)
		}
	}

	rule.RuleID = uuid.New().String()
	now := time.Now().UTC().Unix()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := store.AddMatchingRule(rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetMatchingRulesForType lists the join rules of an object type in
// precedence order.
func (ms *MatchingRuleService) GetMatchingRulesForType(objectTypeID string) ([]model.ObjectMatchingRule, error) {

	if objectTypeID == "" {
		return nil, invalidMatchingRuleError("An object_type_id is required to list matching rules.")
	}
	return store.GetMatchingRulesForType(objectTypeID)
}

// DeleteMatchingRule removes a join rule.
func (ms *MatchingRuleService) DeleteMatchingRule(ruleID string) error {

	rule, err := store.GetMatchingRule(ruleID)
	if err != nil {
		return err
	}
	if rule == nil {
		return errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.RULE_NOT_FOUND.Code,
			Message:     errors2.RULE_NOT_FOUND.Message,
			Description: fmt.Sprintf("No matching rule exists with id: %s", ruleID),
		}, http.StatusNotFound)
	}
	return store.DeleteMatchingRule(ruleID)
}

func validateMatchingRule(rule model.ObjectMatchingRule) error {

	if rule.ObjectTypeID == "" {
		return invalidMatchingRuleError("A matching rule requires an object_type_id.")
	}
	if rule.Order < 1 {
		return invalidMatchingRuleError("Rule order must be a positive integer.")
	}
	if len(rule.Comparisons) == 0 {
		return invalidMatchingRuleError("A matching rule requires at least one attribute comparison.")
	}
	for _, comparison := range rule.Comparisons {
		if comparison.CSOAttribute == "" || comparison.MVOAttribute == "" {
			return invalidMatchingRuleError(
				"Attribute comparisons require both a connected and a metaverse attribute.")
		}
	}
	return nil
}

func invalidMatchingRuleError(description string) error {

	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.INVALID_RULE_DEFINITION.Code,
		Message:     errors2.INVALID_RULE_DEFINITION.Message,
		Description: description,
	}, http.StatusBadRequest)
}
