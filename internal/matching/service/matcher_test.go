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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	csModel "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	"github.com/wso2/identity-metadirectory-service/internal/matching/model"
	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

func cso(attrs map[string]attribute.Value) csModel.ConnectedObject {
	return csModel.ConnectedObject{ObjectID: "cso-1", SystemID: "hr", Attributes: attrs}
}

func mvo(id string, attrs map[string]attribute.Value) mvModel.MetaverseObject {
	return mvModel.MetaverseObject{MvoID: id, Status: mvModel.StatusActive, Attributes: attrs}
}

func TestMatch_PerComparisonCaseSensitivity(t *testing.T) {
	rule := model.ObjectMatchingRule{
		RuleID: "r1", Order: 1,
		Comparisons: []model.AttributeComparison{
			{CSOAttribute: "givenName", MVOAttribute: "givenName", CaseSensitive: false},
			{CSOAttribute: "employeeID", MVOAttribute: "employeeID", CaseSensitive: true},
		},
	}

	candidate := mvo("mvo-1", map[string]attribute.Value{
		"givenName":  attribute.StringValue("Bob"),
		"employeeID": attribute.StringValue("E-100"),
	})

	result := Match(cso(map[string]attribute.Value{
		"givenName":  attribute.StringValue("BOB"),
		"employeeID": attribute.StringValue("E-100"),
	}), []model.ObjectMatchingRule{rule}, []mvModel.MetaverseObject{candidate})
	assert.Equal(t, OutcomeUnique, result.Outcome)
	assert.Equal(t, "mvo-1", result.MvoID)

	result = Match(cso(map[string]attribute.Value{
		"givenName":  attribute.StringValue("BOB"),
		"employeeID": attribute.StringValue("e-100"),
	}), []model.ObjectMatchingRule{rule}, []mvModel.MetaverseObject{candidate})
	assert.Equal(t, OutcomeNone, result.Outcome,
		"case-sensitive comparison must reject the mismatched field")
}

func TestMatch_AmbiguousAbortsWithoutFallthrough(t *testing.T) {
	broad := model.ObjectMatchingRule{
		RuleID: "broad", Order: 1,
		Comparisons: []model.AttributeComparison{
			{CSOAttribute: "surname", MVOAttribute: "surname"},
		},
	}
	specific := model.ObjectMatchingRule{
		RuleID: "specific", Order: 2,
		Comparisons: []model.AttributeComparison{
			{CSOAttribute: "employeeID", MVOAttribute: "employeeID", CaseSensitive: true},
		},
	}

	candidates := []mvModel.MetaverseObject{
		mvo("mvo-1", map[string]attribute.Value{
			"surname":    attribute.StringValue("Smith"),
			"employeeID": attribute.StringValue("E-100"),
		}),
		mvo("mvo-2", map[string]attribute.Value{
			"surname": attribute.StringValue("Smith"),
		}),
	}

	result := Match(cso(map[string]attribute.Value{
		"surname":    attribute.StringValue("Smith"),
		"employeeID": attribute.StringValue("E-100"),
	}), []model.ObjectMatchingRule{specific, broad}, candidates)

	// The broad rule runs first by order and yields two candidates:
	// matching aborts instead of consulting the later rule.
	assert.Equal(t, OutcomeAmbiguous, result.Outcome)
	assert.Equal(t, "broad", result.RuleID)
}

func TestMatch_FirstRuleWithUniqueMatchShortCircuits(t *testing.T) {
	byEmployeeID := model.ObjectMatchingRule{
		RuleID: "by-employee-id", Order: 1,
		Comparisons: []model.AttributeComparison{
			{CSOAttribute: "employeeID", MVOAttribute: "employeeID", CaseSensitive: true},
		},
	}
	byMail := model.ObjectMatchingRule{
		RuleID: "by-mail", Order: 2,
		Comparisons: []model.AttributeComparison{
			{CSOAttribute: "mail", MVOAttribute: "email"},
		},
	}

	candidates := []mvModel.MetaverseObject{
		mvo("mvo-1", map[string]attribute.Value{
			"employeeID": attribute.StringValue("E-100"),
		}),
		mvo("mvo-2", map[string]attribute.Value{
			"email": attribute.StringValue("bob@corp.example"),
		}),
	}

	result := Match(cso(map[string]attribute.Value{
		"employeeID": attribute.StringValue("E-100"),
		"mail":       attribute.StringValue("bob@corp.example"),
	}), []model.ObjectMatchingRule{byMail, byEmployeeID}, candidates)

	assert.Equal(t, OutcomeUnique, result.Outcome)
	assert.Equal(t, "mvo-1", result.MvoID)
	assert.Equal(t, "by-employee-id", result.RuleID)
}

func TestMatch_NoRuleMatchesReturnsNone(t *testing.T) {
	rule := model.ObjectMatchingRule{
		RuleID: "r1", Order: 1,
		Comparisons: []model.AttributeComparison{
			{CSOAttribute: "mail", MVOAttribute: "email"},
		},
	}

	result := Match(cso(map[string]attribute.Value{
		"mail": attribute.StringValue("new@corp.example"),
	}), []model.ObjectMatchingRule{rule}, nil)
	assert.Equal(t, OutcomeNone, result.Outcome)
}

func TestMatch_DeletedCandidatesIgnored(t *testing.T) {
	rule := model.ObjectMatchingRule{
		RuleID: "r1", Order: 1,
		Comparisons: []model.AttributeComparison{
			{CSOAttribute: "mail", MVOAttribute: "email"},
		},
	}
	gone := mvo("mvo-1", map[string]attribute.Value{
		"email": attribute.StringValue("bob@corp.example"),
	})
	gone.Status = mvModel.StatusDeleted

	result := Match(cso(map[string]attribute.Value{
		"mail": attribute.StringValue("bob@corp.example"),
	}), []model.ObjectMatchingRule{rule}, []mvModel.MetaverseObject{gone})
	assert.Equal(t, OutcomeNone, result.Outcome)
}
