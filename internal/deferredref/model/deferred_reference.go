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

import "time"

// DeferredReference is a forward pointer recorded when an attribute flow
// targeted an object that did not exist yet. Once an object with the
// recorded external identifier is projected or joined, the reference is
// replayed onto the source object's metaverse object and removed.
type DeferredReference struct {
	ReferenceID      string    `json:"reference_id"`
	SourceObjectID   string    `json:"source_object_id"`
	SourceMvoID      string    `json:"source_mvo_id"`
	TargetExternalID string    `json:"target_external_id"`
	TargetAttribute  string    `json:"target_attribute"`
	CreatedAt        time.Time `json:"created_at"`
}
