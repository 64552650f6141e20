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

	"github.com/wso2/identity-metadirectory-service/internal/matching/model"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
)

func validMatchingRule() model.ObjectMatchingRule {
	return model.ObjectMatchingRule{
		ObjectTypeID: "person",
		Order:        1,
		Comparisons: []model.AttributeComparison{
			{CSOAttribute: "employeeId", MVOAttribute: "employeeId", CaseSensitive: true},
		},
	}
}

func TestValidateMatchingRule(t *testing.T) {
	require.NoError(t, validateMatchingRule(validMatchingRule()))

	tests := []struct {
		name   string
		mutate func(*model.ObjectMatchingRule)
	}{
		{"missing object type", func(r *model.ObjectMatchingRule) { r.ObjectTypeID = "" }},
		{"zero order", func(r *model.ObjectMatchingRule) { r.Order = 0 }},
		{"no comparisons", func(r *model.ObjectMatchingRule) { r.Comparisons = nil }},
		{"comparison without mvo attribute", func(r *model.ObjectMatchingRule) {
			r.Comparisons = []model.AttributeComparison{{CSOAttribute: "employeeId"}}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := validMatchingRule()
			tc.mutate(&r)
			err := validateMatchingRule(r)
			require.Error(t, err)
			var clientError *errors2.ClientError
			require.ErrorAs(t, err, &clientError)
			assert.Equal(t, errors2.INVALID_RULE_DEFINITION.Code, clientError.Code)
			assert.Equal(t, http.StatusBadRequest, clientError.StatusCode)
		})
	}
}
