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
	"time"

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	"github.com/wso2/identity-metadirectory-service/internal/export/model"
)

// MarkDelivered records a successful delivery attempt. The change moves
// to Exported, or straight to Confirmed when the connector auto-confirms
// its exports. A delivered delete request also confirms immediately:
// the deleted object has no attribute value a later import could echo
// back to settle it.
func MarkDelivered(change *model.PendingChange, autoConfirm bool, now time.Time) {

	change.AttemptCount++
	change.LastExportedAt = &now
	change.UpdatedAt = now
	if autoConfirm || change.DeleteRequest {
		change.Status = model.StatusConfirmed
		return
	}
	change.Status = model.StatusExported
}

// MarkFailed records a failed delivery attempt. Once the attempt cap is
// reached the change is abandoned and excluded from automatic retry; it
// then needs operator or connector-side remediation.
func MarkFailed(change *model.PendingChange, maxAttempts int, now time.Time) {

	change.AttemptCount++
	change.LastExportedAt = &now
	change.UpdatedAt = now
	if change.AttemptCount >= maxAttempts {
		change.Status = model.StatusAbandoned
		return
	}
	change.Status = model.StatusFailed
}

// Requeue moves a retryable failed change back to Pending. Abandoned
// changes are never requeued automatically.
func Requeue(change *model.PendingChange, now time.Time) bool {

	if change.Status != model.StatusFailed {
		return false
	}
	change.Status = model.StatusPending
	change.UpdatedAt = now
	return true
}

// ConfirmOnImport inspects a freshly imported value for an Exported
// change. The imported value is recorded for audit regardless; the
// change moves to Confirmed only when it matches the exported value.
func ConfirmOnImport(change *model.PendingChange, imported attribute.Value, now time.Time) bool {

	if change.Status != model.StatusExported {
		return false
	}
	change.LastImportedValue = &imported
	change.UpdatedAt = now
	if imported.Equal(change.Value, true) {
		change.Status = model.StatusConfirmed
		return true
	}
	return false
}
