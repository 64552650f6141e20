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

// Origin marks how a metaverse object came into existence.
type Origin string

const (
	OriginProjected     Origin = "projected"
	OriginAuthoritative Origin = "authoritative"
)

// Status is the lifecycle state of a metaverse object. An object with a
// ScheduledDeletionAt in the past is swept eagerly by the scheduler.
type Status string

const (
	StatusActive               Status = "active"
	StatusScheduledForDeletion Status = "scheduled_for_deletion"
	StatusDeleted              Status = "deleted"
)

// MetaverseObject is the reconciled, system-of-record identity
// aggregated from every linked connected object under sync rule
// precedence. Its lifetime is governed by the deletion evaluator, never
// by a single connected object.
type MetaverseObject struct {
	MvoID               string                     `json:"mvo_id"`
	TypeID              string                     `json:"type_id"`
	Attributes          map[string]attribute.Value `json:"attributes"`
	Origin              Origin                     `json:"origin"`
	Status              Status                     `json:"status"`
	ScheduledDeletionAt *time.Time                 `json:"scheduled_deletion_at,omitempty"`
	LastDisconnectedAt  *time.Time                 `json:"last_disconnected_at,omitempty"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}
