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

	"github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	"github.com/wso2/identity-metadirectory-service/internal/syncrule/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/authn"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
	"github.com/wso2/identity-metadirectory-service/internal/system/utils"
)

// SyncRuleHandler serves the sync rule catalog API.
type SyncRuleHandler struct{}

// NewSyncRuleHandler creates a new instance of SyncRuleHandler.
func NewSyncRuleHandler() *SyncRuleHandler {

	return &SyncRuleHandler{}
}

// AddSyncRule creates a sync rule and returns the stored form.
func (srh *SyncRuleHandler) AddSyncRule(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	var request model.SyncRule
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_RULE_DEFINITION.Code,
			Message:     errors2.INVALID_RULE_DEFINITION.Message,
			Description: utils.HandleDecodeError(err, "sync rule"),
		}, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	subject := authn.GetSubjectFromRequest(r)
	ruleService := provider.NewSyncRuleProvider().GetRuleService()
	rule, err := ruleService.AddSyncRule(request, subject)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	logger := log.GetLogger()
	logger.Audit(log.AuditEvent{
		InitiatorID:   subject,
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      rule.RuleID,
		TargetType:    log.TargetTypeSyncRule,
		ActionID:      log.ActionAddSyncRule,
		Data: map[string]string{
			"system_id":      rule.SystemID,
			"object_type_id": rule.ObjectTypeID,
			"direction":      string(rule.Direction),
		},
	})

	utils.WriteJSONResponse(w, http.StatusCreated, rule)
}

// GetSyncRules lists the rules of one metaverse object type.
func (srh *SyncRuleHandler) GetSyncRules(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	objectTypeID := r.URL.Query().Get("object_type_id")
	ruleService := provider.NewSyncRuleProvider().GetRuleService()
	rules, err := ruleService.GetSyncRulesForType(objectTypeID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if rules == nil {
		rules = []model.SyncRule{}
	}

	utils.WriteJSONResponse(w, http.StatusOK, rules)
}

// GetSyncRule fetches one rule by id.
func (srh *SyncRuleHandler) GetSyncRule(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	ruleService := provider.NewSyncRuleProvider().GetRuleService()
	rule, err := ruleService.GetSyncRule(lastPathSegment(r))
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if rule == nil {
		clientError := errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.RULE_NOT_FOUND.Code,
			Message:     errors2.RULE_NOT_FOUND.Message,
			Description: "No sync rule exists with the given id.",
		}, http.StatusNotFound)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, rule)
}

// DeleteSyncRule removes one rule by id.
func (srh *SyncRuleHandler) DeleteSyncRule(w http.ResponseWriter, r *http.Request) {

	if _, err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	ruleID := lastPathSegment(r)
	ruleService := provider.NewSyncRuleProvider().GetRuleService()
	if err := ruleService.DeleteSyncRule(ruleID); err != nil {
		utils.HandleError(w, err)
		return
	}

	logger := log.GetLogger()
	logger.Audit(log.AuditEvent{
		InitiatorID:   authn.GetSubjectFromRequest(r),
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      ruleID,
		TargetType:    log.TargetTypeSyncRule,
		ActionID:      log.ActionDeleteSyncRule,
	})

	w.WriteHeader(http.StatusNoContent)
}

func lastPathSegment(r *http.Request) string {

	path := strings.TrimSuffix(r.URL.Path, "/")
	return path[strings.LastIndex(path, "/")+1:]
}
