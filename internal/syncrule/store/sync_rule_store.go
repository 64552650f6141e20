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
	"encoding/json"
	"fmt"

	"github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/row"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// AddSyncRule persists a sync rule. Mappings and scoping criteria are
// stored as JSON documents alongside the rule row.
func AddSyncRule(rule model.SyncRule) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for storing sync rule: %s", rule.RuleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DB_CLIENT_INIT.Code,
			Message:     errors2.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	mappings, err := json.Marshal(rule.Mappings)
	if err != nil {
		return errors2.NewServerError(errors2.ADD_SYNC_RULE, err)
	}
	scope, err := json.Marshal(rule.Scope)
	if err != nil {
		return errors2.NewServerError(errors2.ADD_SYNC_RULE, err)
	}

	query := scripts.InsertSyncRule[provider.NewDBProvider().GetDBType()]
	_, err = dbClient.ExecuteQuery(query, rule.RuleID, rule.SystemID, rule.ObjectTypeID, rule.Name,
		rule.Enabled, string(rule.Direction), rule.Order, rule.CreatedAt, rule.CreatedBy,
		rule.ProjectionAllowed, rule.EnforceState, string(mappings), string(scope),
		string(rule.OutOfScopeAction), string(rule.DeprovisionAction))
	if err != nil {
		errorMsg := fmt.Sprintf("Error occurred while storing sync rule: %s", rule.RuleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_SYNC_RULE.Code,
			Message:     errors2.ADD_SYNC_RULE.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetSyncRulesForType lists every rule of an object type in precedence
// order.
func GetSyncRulesForType(objectTypeID string) ([]model.SyncRule, error) {

	return getSyncRules(scripts.GetSyncRulesForType, objectTypeID)
}

// GetSyncRulesForSystemType lists the rules a single connected system
// holds for an object type, in precedence order.
func GetSyncRulesForSystemType(systemID, objectTypeID string) ([]model.SyncRule, error) {

	return getSyncRules(scripts.GetSyncRulesForSystemType, systemID, objectTypeID)
}

// GetSyncRule fetches one rule by id, or nil.
func GetSyncRule(ruleID string) (*model.SyncRule, error) {

	rules, err := getSyncRules(scripts.GetSyncRule, ruleID)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

// DeleteSyncRule removes a rule.
func DeleteSyncRule(ruleID string) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.DeleteSyncRule[provider.NewDBProvider().GetDBType()]
	if _, err := dbClient.ExecuteQuery(query, ruleID); err != nil {
		return errors2.NewServerError(errors2.DELETE_SYNC_RULE, err)
	}
	return nil
}

func getSyncRules(queries map[string]string, args ...interface{}) ([]model.SyncRule, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for fetching sync rules", log.Error(err))
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := queries[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, args...)
	if err != nil {
		logger.Debug("Failed to fetch sync rules", log.Error(err))
		return nil, errors2.NewServerError(errors2.GET_SYNC_RULE, err)
	}

	var rules []model.SyncRule
	for _, r := range results {
		rule, err := syncRuleFromRow(r)
		if err != nil {
			return nil, errors2.NewServerError(errors2.GET_SYNC_RULE, err)
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

func syncRuleFromRow(r map[string]interface{}) (*model.SyncRule, error) {

	var mappings []model.AttributeMapping
	if err := json.Unmarshal([]byte(row.String(r["mappings"])), &mappings); err != nil {
		return nil, fmt.Errorf("failed to decode sync rule mappings: %w", err)
	}
	var scope []model.ScopingCriterion
	if err := json.Unmarshal([]byte(row.String(r["scope"])), &scope); err != nil {
		return nil, fmt.Errorf("failed to decode sync rule scope: %w", err)
	}
	return &model.SyncRule{
		RuleID:            row.String(r["rule_id"]),
		SystemID:          row.String(r["system_id"]),
		ObjectTypeID:      row.String(r["object_type_id"]),
		Name:              row.String(r["name"]),
		Enabled:           row.Bool(r["enabled"]),
		Direction:         model.Direction(row.String(r["direction"])),
		Order:             row.Int(r["rule_order"]),
		CreatedAt:         row.Time(r["created_at"]),
		CreatedBy:         row.String(r["created_by"]),
		ProjectionAllowed: row.Bool(r["projection_allowed"]),
		EnforceState:      row.Bool(r["enforce_state"]),
		Mappings:          mappings,
		Scope:             scope,
		OutOfScopeAction:  model.OutOfScopeAction(row.String(r["out_of_scope_action"])),
		DeprovisionAction: model.DeprovisionAction(row.String(r["deprovision_action"])),
	}, nil
}
