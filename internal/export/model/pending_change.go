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

// ChangeStatus is the delivery state of a pending export change.
// Lifecycle: Pending -> Exported -> Confirmed, or Pending -> Failed ->
// Pending (re-queue) until the attempt cap, after which the change is
// Abandoned and excluded from automatic retry.
type ChangeStatus string

const (
	StatusPending   ChangeStatus = "pending"
	StatusExported  ChangeStatus = "exported"
	StatusConfirmed ChangeStatus = "confirmed"
	StatusFailed    ChangeStatus = "failed"
	StatusAbandoned ChangeStatus = "abandoned"
)

// PendingChange is one attribute delta awaiting delivery to a
// connector. DeleteRequest marks a deprovisioning delete rather than an
// attribute update.
type PendingChange struct {
	ChangeID          string           `json:"change_id"`
	ObjectID          string           `json:"object_id"`
	SystemID          string           `json:"system_id"`
	AttributeName     string           `json:"attribute_name"`
	Value             attribute.Value  `json:"value"`
	Status            ChangeStatus     `json:"status"`
	AttemptCount      int              `json:"attempt_count"`
	LastExportedAt    *time.Time       `json:"last_exported_at,omitempty"`
	LastImportedValue *attribute.Value `json:"last_imported_value,omitempty"`
	DeleteRequest     bool             `json:"delete_request,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
