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

package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wso2/identity-metadirectory-service/internal/matching/model"
	"github.com/wso2/identity-metadirectory-service/internal/matching/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/authn"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
	"github.com/wso2/identity-metadirectory-service/internal/system/utils"
)

// MatchingRuleHandler serves the join rule catalog API.
type MatchingRuleHandler struct{}

// NewMatchingRuleHandler creates a new instance of MatchingRuleHandler.
func NewMatchingRuleHandler() *MatchingRuleHandler {

	return &MatchingRuleHandler{}
}

// AddMatchingRule creates a join rule and returns the stored form.
func (mrh *MatchingRuleHandler) AddMatchingRule(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	var request model.ObjectMatchingRule
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_RULE_DEFINITION.Code,
			Message:     errors2.INVALID_RULE_DEFINITION.Message,
			Description: utils.HandleDecodeError(err, "matching rule"),
		}, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	ruleService := provider.NewMatchingRuleProvider().GetMatchingRuleService()
	rule, err := ruleService.AddMatchingRule(request)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	logger := log.GetLogger()
	logger.Audit(log.AuditEvent{
		InitiatorID:   authn.GetSubjectFromRequest(r),
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      rule.RuleID,
		TargetType:    log.TargetTypeMatchingRule,
		ActionID:      log.ActionAddMatchingRule,
		Data:          map[string]string{"object_type_id": rule.ObjectTypeID},
	})

	utils.WriteJSONResponse(w, http.StatusCreated, rule)
}

// GetMatchingRules lists the join rules of one metaverse object type.
func (mrh *MatchingRuleHandler) GetMatchingRules(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	objectTypeID := r.URL.Query().Get("object_type_id")
	ruleService := provider.NewMatchingRuleProvider().GetMatchingRuleService()
	rules, err := ruleService.GetMatchingRulesForType(objectTypeID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if rules == nil {
		rules = []model.ObjectMatchingRule{}
	}

	utils.WriteJSONResponse(w, http.StatusOK, rules)
}

// DeleteMatchingRule removes one join rule by id.
func (mrh *MatchingRuleHandler) DeleteMatchingRule(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	ruleID := path[strings.LastIndex(path, "/")+1:]

	ruleService := provider.NewMatchingRuleProvider().GetMatchingRuleService()
	if err := ruleService.DeleteMatchingRule(ruleID); err != nil {
		utils.HandleError(w, err)
		return
	}

	logger := log.GetLogger()
	logger.Audit(log.AuditEvent{
		InitiatorID:   authn.GetSubjectFromRequest(r),
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      ruleID,
		TargetType:    log.TargetTypeMatchingRule,
		ActionID:      log.ActionDeleteMatchingRule,
	})

	w.WriteHeader(http.StatusNoContent)
}
