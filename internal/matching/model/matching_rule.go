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

// AttributeComparison equates one connected object attribute with one
// metaverse attribute. Case sensitivity applies per comparison.
type AttributeComparison struct {
	CSOAttribute  string `json:"cso_attribute"`
	MVOAttribute  string `json:"mvo_attribute"`
	CaseSensitive bool   `json:"case_sensitive"`
}

// ObjectMatchingRule is one ordered join rule for a metaverse object
// type. The first rule (ascending Order) yielding exactly one candidate
// wins; earlier, more specific rules take precedence over broader ones.
type ObjectMatchingRule struct {
	RuleID       string                `json:"rule_id"`
	ObjectTypeID string                `json:"object_type_id"`
	Order        int                   `json:"order"`
	Comparisons  []AttributeComparison `json:"comparisons"`
	CreatedAt    int64                 `json:"created_at"`
	UpdatedAt    int64                 `json:"updated_at"`
}
