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
	"sort"

	csModel "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	"github.com/wso2/identity-metadirectory-service/internal/matching/model"
	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
)

// Outcome of a matching attempt.
type Outcome string

const (
	OutcomeNone      Outcome = "none"
	OutcomeUnique    Outcome = "unique"
	OutcomeAmbiguous Outcome = "ambiguous"
)

// MatchResult carries the matcher's decision. MvoID is only set for
// OutcomeUnique; RuleID names the rule that decided, for diagnostics.
type MatchResult struct {
	Outcome Outcome
	MvoID   string
	RuleID  string
}

// Match evaluates the ordered matching rules for the object type
// against the candidate metaverse population. The first rule yielding
// exactly one candidate wins. A rule yielding more than one candidate
// aborts the whole attempt as ambiguous; that is a policy exception for
// an operator, never something to resolve silently.
func Match(cso csModel.ConnectedObject, rules []model.ObjectMatchingRule,
	candidates []mvModel.MetaverseObject) MatchResult {

	ordered := make([]model.ObjectMatchingRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	for _, rule := range ordered {
		if len(rule.Comparisons) == 0 {
			continue
		}
		var matched []string
		for _, candidate := range candidates {
			if candidate.Status == mvModel.StatusDeleted {
				continue
			}
			if comparisonsHold(cso, candidate, rule.Comparisons) {
				matched = append(matched, candidate.MvoID)
			}
		}
		switch len(matched) {
		case 0:
			continue
		case 1:
			return MatchResult{Outcome: OutcomeUnique, MvoID: matched[0], RuleID: rule.RuleID}
		default:
			return MatchResult{Outcome: OutcomeAmbiguous, RuleID: rule.RuleID}
		}
	}
	return MatchResult{Outcome: OutcomeNone}
}

func comparisonsHold(cso csModel.ConnectedObject, mvo mvModel.MetaverseObject,
	comparisons []model.AttributeComparison) bool {

	for _, cmp := range comparisons {
		csoValue, ok := cso.Attributes[cmp.CSOAttribute]
		if !ok || csoValue.IsZero() {
			return false
		}
		mvoValue, ok := mvo.Attributes[cmp.MVOAttribute]
		if !ok || mvoValue.IsZero() {
			return false
		}
		if !csoValue.Equal(mvoValue, cmp.CaseSensitive) {
			return false
		}
	}
	return true
}
