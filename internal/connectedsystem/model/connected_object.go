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

// ConnectedObject is the snapshot of an object as seen in one connected
// system. It is owned by its system; at most one metaverse object link
// exists at a time.
type ConnectedObject struct {
	ObjectID            string                     `json:"object_id"`
	SystemID            string                     `json:"system_id"`
	TypeID              string                     `json:"type_id"`
	ExternalID          string                     `json:"external_id"`
	SecondaryExternalID string                     `json:"secondary_external_id,omitempty"`
	Attributes          map[string]attribute.Value `json:"attributes"`
	MvoID               string                     `json:"mvo_id,omitempty"`
	LastImportedAt      time.Time                  `json:"last_imported_at"`
}

// IsLinked reports whether the object is currently joined to a
// metaverse object.
func (c *ConnectedObject) IsLinked() bool {

	return c.MvoID != ""
}
