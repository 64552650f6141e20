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

package model

import (
	"time"

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
)

// Direction of a sync rule relative to the metaverse.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// OutOfScopeAction governs what happens to a previously in-scope
// connected object once it fails the rule's scoping criteria.
type OutOfScopeAction string

const (
	OutOfScopeDisconnect OutOfScopeAction = "disconnect"
	OutOfScopeNone       OutOfScopeAction = "none"
)

// DeprovisionAction governs the outbound consequence for a connected
// object still linked to a metaverse object being deleted.
type DeprovisionAction string

const (
	DeprovisionNone          DeprovisionAction = "none"
	DeprovisionDisconnect    DeprovisionAction = "disconnect"
	DeprovisionRequestDelete DeprovisionAction = "request_delete"
)

// CriterionOperator is the comparison a scoping criterion applies.
type CriterionOperator string

const (
	OperatorEquals    CriterionOperator = "equals"
	OperatorNotEquals CriterionOperator = "not_equals"
	OperatorPresent   CriterionOperator = "present"
)

// AttributeMapping flows one source attribute into one target
// attribute. CreatedAt and CreatedBy record who authored the mapping and
// when; creation time breaks precedence ties between rules of equal
// order.
type AttributeMapping struct {
	SourceAttribute string    `json:"source_attribute"`
	TargetAttribute string    `json:"target_attribute"`
	CreatedAt       time.Time `json:"created_at"`
	CreatedBy       string    `json:"created_by"`
}

// ScopingCriterion is one typed predicate over a connected object's
// attributes. All criteria of a rule must hold (AND semantics) for the
// rule to contribute anything. Comparisons across mismatched value kinds
// never match.
type ScopingCriterion struct {
	Attribute     string            `json:"attribute"`
	Operator      CriterionOperator `json:"operator"`
	Value         attribute.Value   `json:"value"`
	CaseSensitive bool              `json:"case_sensitive"`
}

// SyncRule is the ordered, per-system, per-object-type policy bundle
// driving attribute flow. Lower Order wins; ties are broken by the
// oldest CreatedAt.
type SyncRule struct {
	RuleID            string             `json:"rule_id"`
	SystemID          string             `json:"system_id"`
	ObjectTypeID      string             `json:"object_type_id"`
	Name              string             `json:"name"`
	Enabled           bool               `json:"enabled"`
	Direction         Direction          `json:"direction"`
	Order             int                `json:"order"`
	CreatedAt         time.Time          `json:"created_at"`
	CreatedBy         string             `json:"created_by"`
	ProjectionAllowed bool               `json:"projection_allowed"`
	EnforceState      bool               `json:"enforce_state"`
	Mappings          []AttributeMapping `json:"mappings"`
	Scope             []ScopingCriterion `json:"scope"`
	OutOfScopeAction  OutOfScopeAction   `json:"out_of_scope_action"`
	DeprovisionAction DeprovisionAction  `json:"deprovision_action"`
}
