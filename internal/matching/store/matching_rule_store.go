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

	"github.com/wso2/identity-metadirectory-service/internal/matching/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/row"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/scripts"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// AddMatchingRule persists a join rule. Comparisons are stored as a
// JSON document on the rule row.
func AddMatchingRule(rule model.ObjectMatchingRule) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get database client for storing matching rule: %s", rule.RuleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DB_CLIENT_INIT.Code,
			Message:     errors2.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	comparisons, err := json.Marshal(rule.Comparisons)
	if err != nil {
		return errors2.NewServerError(errors2.ADD_MATCHING_RULE, err)
	}

	query := scripts.InsertMatchingRule[provider.NewDBProvider().GetDBType()]
	_, err = dbClient.ExecuteQuery(query, rule.RuleID, rule.ObjectTypeID, rule.Order, string(comparisons),
		rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		errorMsg := fmt.Sprintf("Error occurred while storing matching rule: %s", rule.RuleID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_MATCHING_RULE.Code,
			Message:     errors2.ADD_MATCHING_RULE.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

// GetMatchingRulesForType lists the join rules of an object type in
// precedence order.
func GetMatchingRulesForType(objectTypeID string) ([]model.ObjectMatchingRule, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		logger.Debug("Failed to get database client for fetching matching rules", log.Error(err))
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.GetMatchingRulesForType[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, objectTypeID)
	if err != nil {
		logger.Debug(fmt.Sprintf("Failed to fetch matching rules for type: %s", objectTypeID), log.Error(err))
		return nil, errors2.NewServerError(errors2.GET_MATCHING_RULE, err)
	}

	var rules []model.ObjectMatchingRule
	for _, r := range results {
		var comparisons []model.AttributeComparison
		if err := json.Unmarshal([]byte(row.String(r["comparisons"])), &comparisons); err != nil {
			return nil, errors2.NewServerError(errors2.GET_MATCHING_RULE, err)
		}
		rules = append(rules, model.ObjectMatchingRule{
			RuleID:       row.String(r["rule_id"]),
			ObjectTypeID: row.String(r["object_type_id"]),
			Order:        row.Int(r["rule_order"]),
			Comparisons:  comparisons,
			CreatedAt:    row.Int64(r["created_at"]),
			UpdatedAt:    row.Int64(r["updated_at"]),
		})
	}
	return rules, nil
}

// GetMatchingRule fetches one join rule by id, or nil when unknown.
func GetMatchingRule(ruleID string) (*model.ObjectMatchingRule, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.GetMatchingRule[provider.NewDBProvider().GetDBType()]
	results, err := dbClient.ExecuteQuery(query, ruleID)
	if err != nil {
		return nil, errors2.NewServerError(errors2.GET_MATCHING_RULE, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	var comparisons []model.AttributeComparison
	if err := json.Unmarshal([]byte(row.String(r["comparisons"])), &comparisons); err != nil {
		return nil, errors2.NewServerError(errors2.GET_MATCHING_RULE, err)
	}
	return &model.ObjectMatchingRule{
		RuleID:       row.String(r["rule_id"]),
		ObjectTypeID: row.String(r["object_type_id"]),
		Order:        row.Int(r["rule_order"]),
		Comparisons:  comparisons,
		CreatedAt:    row.Int64(r["created_at"]),
		UpdatedAt:    row.Int64(r["updated_at"]),
	}, nil
}

// DeleteMatchingRule removes a join rule.
func DeleteMatchingRule(ruleID string) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return errors2.NewServerError(errors2.DB_CLIENT_INIT, err)
	}
	defer dbClient.Close()

	query := scripts.DeleteMatchingRule[provider.NewDBProvider().GetDBType()]
	if _, err := dbClient.ExecuteQuery(query, ruleID); err != nil {
		return errors2.NewServerError(errors2.DELETE_MATCHING_RULE, err)
	}
	return nil
}
