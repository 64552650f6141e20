/*
 * Copyright (c) 2025-2026, WSO2 LLC. (http://www.wso2.com).
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
	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	"github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
)

// InScope evaluates a rule's scoping criteria against a connected
// object's attributes. All criteria must hold. A typed criterion
// compared against a value of a different kind is absorbed as
// "scope fails", never an error.
func InScope(rule model.SyncRule, attrs map[string]attribute.Value) bool {

	for _, criterion := range rule.Scope {
		if !criterionHolds(criterion, attrs) {
			return false
		}
	}
	return true
}

func criterionHolds(criterion model.ScopingCriterion, attrs map[string]attribute.Value) bool {

	actual, ok := attrs[criterion.Attribute]
	if !ok || actual.IsZero() {
		// An absent attribute satisfies nothing, including not_equals:
		// scoping reasons about present values only.
		return false
	}

	switch criterion.Operator {
	case model.OperatorPresent:
		return true
	case model.OperatorEquals:
		return actual.Equal(criterion.Value, criterion.CaseSensitive)
	case model.OperatorNotEquals:
		if actual.Kind != criterion.Value.Kind {
			// Kind mismatch is a scope failure, not a successful inequality.
			return false
		}
		return !actual.Equal(criterion.Value, criterion.CaseSensitive)
	default:
		return false
	}
}
