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

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	csModel "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	syncModel "github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	syncService "github.com/wso2/identity-metadirectory-service/internal/syncrule/service"
)

// Source pairs one linked connected object with the inbound sync rules
// configured for its system and object type.
type Source struct {
	Object csModel.ConnectedObject
	Rules  []syncModel.SyncRule
}

// Delta is one attribute change the evaluator wants applied to the
// metaverse object. Retract means the attribute is explicitly unset.
type Delta struct {
	Attribute string
	Value     attribute.Value
	Retract   bool
}

type contribution struct {
	order     int
	createdAt int64
	value     attribute.Value
}

// Evaluate computes the attribute deltas for a metaverse object from
// all of its linked connected objects. For each attribute, the enabled,
// in-scope rule with the lowest Order wins; ties go to the rule with the
// oldest creation time. Precedence is by configuration, never by import
// time. When no rule contributes an attribute any more, the attribute is
// retracted only if the rule that would have supplied it carries
// EnforceState.
//
// The evaluator is pure: it reads its inputs and returns deltas, it
// never touches storage.
func Evaluate(current map[string]attribute.Value, sources []Source) []Delta {

	contributions := map[string][]contribution{}
	enforcers := map[string]enforcement{}

	for _, source := range sources {
		for _, rule := range source.Rules {
			if !rule.Enabled || rule.Direction != syncModel.DirectionInbound {
				continue
			}
			inScope := syncService.InScope(rule, source.Object.Attributes)
			for _, mapping := range rule.Mappings {
				// EnforceState is tracked for every mapped attribute of an
				// enabled rule, in or out of scope: a rule whose scope fails
				// is treated as disabled for this object, but its retraction
				// policy still applies to attributes it previously supplied.
				recordEnforcement(enforcers, rule, mapping.TargetAttribute)

				if !inScope {
					continue
				}
				value, ok := source.Object.Attributes[mapping.SourceAttribute]
				if !ok || value.IsZero() {
					continue
				}
				contributions[mapping.TargetAttribute] = append(
					contributions[mapping.TargetAttribute], contribution{
						order:     rule.Order,
						createdAt: rule.CreatedAt.UnixNano(),
						value:     value,
					})
			}
		}
	}

	attrs := attributeUniverse(current, contributions, enforcers)

	var deltas []Delta
	for _, name := range attrs {
		winner, contributes := pickWinner(contributions[name])
		currentValue, has := current[name]

		switch {
		case contributes:
			if !has || !currentValue.Equal(winner, true) {
				deltas = append(deltas, Delta{Attribute: name, Value: winner})
			}
		case has && enforcers[name].enforceState:
			deltas = append(deltas, Delta{Attribute: name, Retract: true})
		}
		// No contributor and no EnforceState: the prior value is left
		// untouched.
	}
	return deltas
}

type enforcement struct {
	order        int
	createdAt    int64
	enforceState bool
}

// recordEnforcement keeps the EnforceState flag of the
// highest-precedence enabled rule mapping the attribute, the rule that
// previously supplied the value under the same precedence order.
func recordEnforcement(enforcers map[string]enforcement, rule syncModel.SyncRule, attr string) {

	candidate := enforcement{
		order:        rule.Order,
		createdAt:    rule.CreatedAt.UnixNano(),
		enforceState: rule.EnforceState,
	}
	existing, seen := enforcers[attr]
	if !seen {
		enforcers[attr] = candidate
		return
	}
	if candidate.order < existing.order ||
		(candidate.order == existing.order && candidate.createdAt < existing.createdAt) {
		enforcers[attr] = candidate
	}
}

func pickWinner(candidates []contribution) (attribute.Value, bool) {

	if len(candidates) == 0 {
		return attribute.Value{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].order != candidates[j].order {
			return candidates[i].order < candidates[j].order
		}
		return candidates[i].createdAt < candidates[j].createdAt
	})
	return candidates[0].value, true
}

// attributeUniverse lists every attribute the evaluator must decide on:
// everything currently set plus everything any rule maps, in a stable
// order so repeated evaluation yields identical delta sequences.
func attributeUniverse(current map[string]attribute.Value,
	contributions map[string][]contribution, enforcers map[string]enforcement) []string {

	seen := map[string]bool{}
	for name := range current {
		seen[name] = true
	}
	for name := range contributions {
		seen[name] = true
	}
	for name := range enforcers {
		seen[name] = true
	}

	attrs := make([]string, 0, len(seen))
	for name := range seen {
		attrs = append(attrs, name)
	}
	sort.Strings(attrs)
	return attrs
}
