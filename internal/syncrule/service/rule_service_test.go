/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	"github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
)

func validRule() model.SyncRule {
	return model.SyncRule{
		Name:         "hr-person-inbound",
		SystemID:     "hr",
		ObjectTypeID: "person",
		Enabled:      true,
		Direction:    model.DirectionInbound,
		Order:        1,
		Mappings: []model.AttributeMapping{
			{SourceAttribute: "mail", TargetAttribute: "email"},
		},
	}
}

func assertInvalidRule(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var clientError *errors2.ClientError
	require.ErrorAs(t, err, &clientError)
	assert.Equal(t, errors2.INVALID_RULE_DEFINITION.Code, clientError.Code)
	assert.Equal(t, http.StatusBadRequest, clientError.StatusCode)
}

func TestValidateSyncRule_ValidRuleGetsDefaults(t *testing.T) {
	r := validRule()
	require.NoError(t, validateSyncRule(&r))

	assert.Equal(t, model.OutOfScopeDisconnect, r.OutOfScopeAction)
	assert.Equal(t, model.DeprovisionNone, r.DeprovisionAction)
}

func TestValidateSyncRule_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.SyncRule)
	}{
		{"missing name", func(r *model.SyncRule) { r.Name = "" }},
		{"missing system", func(r *model.SyncRule) { r.SystemID = "" }},
		{"missing object type", func(r *model.SyncRule) { r.ObjectTypeID = "" }},
		{"unknown direction", func(r *model.SyncRule) { r.Direction = "sideways" }},
		{"zero order", func(r *model.SyncRule) { r.Order = 0 }},
		{"no mappings", func(r *model.SyncRule) { r.Mappings = nil }},
		{"mapping without target", func(r *model.SyncRule) {
			r.Mappings = []model.AttributeMapping{{SourceAttribute: "mail"}}
		}},
		{"unknown deprovision action", func(r *model.SyncRule) { r.DeprovisionAction = "vaporize" }},
		{"unknown out of scope action", func(r *model.SyncRule) { r.OutOfScopeAction = "ignore" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := validRule()
			tc.mutate(&r)
			assertInvalidRule(t, validateSyncRule(&r))
		})
	}
}

func TestValidateSyncRule_ScopeOperators(t *testing.T) {
	r := validRule()
	r.Scope = []model.ScopingCriterion{
		{Attribute: "department", Operator: model.OperatorEquals, Value: attribute.StringValue("eng")},
		{Attribute: "active", Operator: model.OperatorPresent},
	}
	require.NoError(t, validateSyncRule(&r))

	r.Scope = append(r.Scope, model.ScopingCriterion{Attribute: "x", Operator: "matches"})
	assertInvalidRule(t, validateSyncRule(&r))

	r = validRule()
	r.Scope = []model.ScopingCriterion{{Operator: model.OperatorPresent}}
	assertInvalidRule(t, validateSyncRule(&r))
}

func TestValidateSyncRule_OutboundCannotProject(t *testing.T) {
	r := validRule()
	r.Direction = model.DirectionOutbound
	r.ProjectionAllowed = true
	assertInvalidRule(t, validateSyncRule(&r))

	r.ProjectionAllowed = false
	require.NoError(t, validateSyncRule(&r))
}
