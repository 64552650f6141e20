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

// DeletionRuleKind discriminates the deletion rule variants of a
// metaverse object type.
type DeletionRuleKind string

const (
	// DeletionNever keeps the object regardless of disconnects.
	DeletionNever DeletionRuleKind = "never"
	// DeletionOnLastDisconnect fires when the last linked connected
	// object disconnects.
	DeletionOnLastDisconnect DeletionRuleKind = "on_last_disconnect"
	// DeletionOnTriggerSystems fires when a connected object from one of
	// the designated trigger systems disconnects, regardless of other
	// remaining links.
	DeletionOnTriggerSystems DeletionRuleKind = "on_trigger_systems"
)

// DeletionRule is the tagged deletion policy of a metaverse object
// type. TriggerSystemIDs is only meaningful for DeletionOnTriggerSystems.
// A zero GracePeriodDays means deletion is immediate.
type DeletionRule struct {
	Kind             DeletionRuleKind `json:"kind"`
	GracePeriodDays  int              `json:"grace_period_days,omitempty"`
	TriggerSystemIDs []string         `json:"trigger_system_ids,omitempty"`
}

// ObjectType describes a metaverse object type and its deletion policy.
type ObjectType struct {
	TypeID   string       `json:"type_id"`
	Name     string       `json:"name"`
	Deletion DeletionRule `json:"deletion"`
}
