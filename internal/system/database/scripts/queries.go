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

package scripts

// Connected systems

var InsertConnectedSystem = map[string]string{
	"postgres": `INSERT INTO connected_system (system_id, name, connector_type, capabilities, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
}

var GetConnectedSystems = map[string]string{
	"postgres": `SELECT system_id, name, connector_type, capabilities, created_at, updated_at FROM connected_system`,
}

var GetConnectedSystem = map[string]string{
	"postgres": `SELECT system_id, name, connector_type, capabilities, created_at, updated_at
        FROM connected_system WHERE system_id = $1`,
}

var DeleteConnectedSystem = map[string]string{
	"postgres": `DELETE FROM connected_system WHERE system_id = $1`,
}

var InsertConnectedObjectType = map[string]string{
	"postgres": `INSERT INTO connected_object_type (system_id, type_id, metaverse_type_id, external_id_attribute,
        secondary_external_id_attribute) VALUES ($1, $2, $3, $4, $5)`,
}

var GetConnectedObjectType = map[string]string{
	"postgres": `SELECT system_id, type_id, metaverse_type_id, external_id_attribute, secondary_external_id_attribute
        FROM connected_object_type WHERE system_id = $1 AND type_id = $2`,
}

// Connected system objects

var UpsertConnectedObject = map[string]string{
	"postgres": `INSERT INTO connected_object (object_id, system_id, type_id, external_id, secondary_external_id,
        attributes, mvo_id, last_imported_at)
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
        ON CONFLICT (system_id, type_id, external_id) DO UPDATE SET
        secondary_external_id = EXCLUDED.secondary_external_id,
        attributes = EXCLUDED.attributes,
        last_imported_at = EXCLUDED.last_imported_at`,
}

var GetConnectedObject = map[string]string{
	"postgres": `SELECT object_id, system_id, type_id, external_id, secondary_external_id, attributes,
        COALESCE(mvo_id, '') AS mvo_id, last_imported_at
        FROM connected_object WHERE object_id = $1`,
}

var GetConnectedObjectByExternalID = map[string]string{
	"postgres": `SELECT object_id, system_id, type_id, external_id, secondary_external_id, attributes,
        COALESCE(mvo_id, '') AS mvo_id, last_imported_at
        FROM connected_object WHERE system_id = $1 AND type_id = $2 AND external_id = $3`,
}

var GetConnectedObjectsBySystem = map[string]string{
	"postgres": `SELECT object_id, system_id, type_id, external_id, secondary_external_id, attributes,
        COALESCE(mvo_id, '') AS mvo_id, last_imported_at
        FROM connected_object WHERE system_id = $1`,
}

var GetConnectedObjectsByMvo = map[string]string{
	"postgres": `SELECT object_id, system_id, type_id, external_id, secondary_external_id, attributes,
        COALESCE(mvo_id, '') AS mvo_id, last_imported_at
        FROM connected_object WHERE mvo_id = $1`,
}

var LinkConnectedObject = map[string]string{
	"postgres": `UPDATE connected_object SET mvo_id = $2 WHERE object_id = $1`,
}

var UnlinkConnectedObject = map[string]string{
	"postgres": `UPDATE connected_object SET mvo_id = NULL WHERE object_id = $1`,
}

var CountLinkedObjects = map[string]string{
	"postgres": `SELECT COUNT(*) AS link_count FROM connected_object WHERE mvo_id = $1`,
}

var DeleteConnectedObjectsBySystem = map[string]string{
	"postgres": `DELETE FROM connected_object WHERE system_id = $1`,
}

var DeleteConnectedObject = map[string]string{
	"postgres": `DELETE FROM connected_object WHERE object_id = $1`,
}

// Metaverse objects and types

var InsertMetaverseObject = map[string]string{
	"postgres": `INSERT INTO metaverse_object (mvo_id, type_id, attributes, origin, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
}

var GetMetaverseObject = map[string]string{
	"postgres": `SELECT mvo_id, type_id, attributes, origin, status, scheduled_deletion_at, last_disconnected_at,
        created_at, updated_at FROM metaverse_object WHERE mvo_id = $1`,
}

var GetMetaverseObjectsByType = map[string]string{
	"postgres": `SELECT mvo_id, type_id, attributes, origin, status, scheduled_deletion_at, last_disconnected_at,
        created_at, updated_at FROM metaverse_object WHERE type_id = $1 AND status != 'deleted'`,
}

var UpdateMetaverseAttributes = map[string]string{
	"postgres": `UPDATE metaverse_object SET attributes = $2, updated_at = $3 WHERE mvo_id = $1`,
}

var ScheduleMetaverseDeletion = map[string]string{
	"postgres": `UPDATE metaverse_object SET status = 'scheduled_for_deletion', scheduled_deletion_at = $2,
        last_disconnected_at = $3, updated_at = $3 WHERE mvo_id = $1`,
}

var ReactivateMetaverseObject = map[string]string{
	"postgres": `UPDATE metaverse_object SET status = 'active', scheduled_deletion_at = NULL, updated_at = $2
        WHERE mvo_id = $1 AND status = 'scheduled_for_deletion'`,
}

var MarkMetaverseDeleted = map[string]string{
	"postgres": `UPDATE metaverse_object SET status = 'deleted', scheduled_deletion_at = NULL, updated_at = $2
        WHERE mvo_id = $1`,
}

var SetLastDisconnected = map[string]string{
	"postgres": `UPDATE metaverse_object SET last_disconnected_at = $2, updated_at = $2 WHERE mvo_id = $1`,
}

var GetExpiredScheduledObjects = map[string]string{
	"postgres": `SELECT mvo_id, type_id, attributes, origin, status, scheduled_deletion_at, last_disconnected_at,
        created_at, updated_at FROM metaverse_object
        WHERE status = 'scheduled_for_deletion' AND scheduled_deletion_at <= $1`,
}

var InsertObjectType = map[string]string{
	"postgres": `INSERT INTO metaverse_object_type (type_id, name, deletion_rule) VALUES ($1, $2, $3)`,
}

var GetObjectType = map[string]string{
	"postgres": `SELECT type_id, name, deletion_rule FROM metaverse_object_type WHERE type_id = $1`,
}

// Sync rules

var InsertSyncRule = map[string]string{
	"postgres": `INSERT INTO sync_rule (rule_id, system_id, object_type_id, name, enabled, direction, rule_order,
        created_at, created_by, projection_allowed, enforce_state, mappings, scope, out_of_scope_action,
        deprovision_action) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
}

var GetSyncRulesForType = map[string]string{
	"postgres": `SELECT rule_id, system_id, object_type_id, name, enabled, direction, rule_order, created_at,
        created_by, projection_allowed, enforce_state, mappings, scope, out_of_scope_action, deprovision_action
        FROM sync_rule WHERE object_type_id = $1 ORDER BY rule_order ASC, created_at ASC`,
}

var GetSyncRulesForSystemType = map[string]string{
	"postgres": `SELECT rule_id, system_id, object_type_id, name, enabled, direction, rule_order, created_at,
        created_by, projection_allowed, enforce_state, mappings, scope, out_of_scope_action, deprovision_action
        FROM sync_rule WHERE system_id = $1 AND object_type_id = $2 ORDER BY rule_order ASC, created_at ASC`,
}

var GetSyncRule = map[string]string{
	"postgres": `SELECT rule_id, system_id, object_type_id, name, enabled, direction, rule_order, created_at,
        created_by, projection_allowed, enforce_state, mappings, scope, out_of_scope_action, deprovision_action
        FROM sync_rule WHERE rule_id = $1`,
}

var DeleteSyncRule = map[string]string{
	"postgres": `DELETE FROM sync_rule WHERE rule_id = $1`,
}

// Object matching rules

var InsertMatchingRule = map[string]string{
	"postgres": `INSERT INTO object_matching_rule (rule_id, object_type_id, rule_order, comparisons, created_at,
        updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
}

var GetMatchingRulesForType = map[string]string{
	"postgres": `SELECT rule_id, object_type_id, rule_order, comparisons, created_at, updated_at
        FROM object_matching_rule WHERE object_type_id = $1 ORDER BY rule_order ASC`,
}

var GetMatchingRule = map[string]string{
	"postgres": `SELECT rule_id, object_type_id, rule_order, comparisons, created_at, updated_at
        FROM object_matching_rule WHERE rule_id = $1`,
}

var DeleteMatchingRule = map[string]string{
	"postgres": `DELETE FROM object_matching_rule WHERE rule_id = $1`,
}

// Deferred references

var InsertDeferredReference = map[string]string{
	"postgres": `INSERT INTO deferred_reference (reference_id, source_object_id, source_mvo_id, target_external_id,
        target_attribute, created_at) VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (source_object_id, target_external_id, target_attribute) DO NOTHING`,
}

var GetDeferredReferencesByTarget = map[string]string{
	"postgres": `SELECT reference_id, source_object_id, source_mvo_id, target_external_id, target_attribute,
        created_at FROM deferred_reference WHERE target_external_id = $1`,
}

var GetStaleDeferredReferences = map[string]string{
	"postgres": `SELECT reference_id, source_object_id, source_mvo_id, target_external_id, target_attribute,
        created_at FROM deferred_reference WHERE created_at <= $1`,
}

var DeleteDeferredReference = map[string]string{
	"postgres": `DELETE FROM deferred_reference WHERE reference_id = $1`,
}

// Pending export changes

var InsertPendingChange = map[string]string{
	"postgres": `INSERT INTO pending_export_change (change_id, object_id, system_id, attribute_name, value_kind,
        value_text, status, attempt_count, delete_request, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
}

var GetPendingChangesForSystem = map[string]string{
	"postgres": `SELECT change_id, object_id, system_id, attribute_name, value_kind, value_text, status,
        attempt_count, last_exported_at, last_imported_kind, last_imported_text, delete_request, created_at,
        updated_at FROM pending_export_change WHERE system_id = $1 AND status = 'pending'
        ORDER BY created_at ASC`,
}

var GetExportedChangesForObject = map[string]string{
	"postgres": `SELECT change_id, object_id, system_id, attribute_name, value_kind, value_text, status,
        attempt_count, last_exported_at, last_imported_kind, last_imported_text, delete_request, created_at,
        updated_at FROM pending_export_change WHERE object_id = $1 AND status = 'exported'`,
}

var GetHeldExportObjects = map[string]string{
	"postgres": `SELECT DISTINCT object_id FROM pending_export_change WHERE system_id = $1
        AND status = 'failed'`,
}

var GetRetryableFailedChanges = map[string]string{
	"postgres": `SELECT change_id, object_id, system_id, attribute_name, value_kind, value_text, status,
        attempt_count, last_exported_at, last_imported_kind, last_imported_text, delete_request, created_at,
        updated_at FROM pending_export_change WHERE status = 'failed' AND updated_at <= $1`,
}

var UpdatePendingChange = map[string]string{
	"postgres": `UPDATE pending_export_change SET status = $2, attempt_count = $3, last_exported_at = $4,
        last_imported_kind = $5, last_imported_text = $6, updated_at = $7 WHERE change_id = $1`,
}

var DeleteChangesForObject = map[string]string{
	"postgres": `DELETE FROM pending_export_change WHERE object_id = $1`,
}

// Worker tasks

var InsertWorkerTask = map[string]string{
	"postgres": `INSERT INTO worker_task (task_id, kind, status, system_id, evaluate_deletion_rules, enqueued_at)
        VALUES ($1, $2, 'queued', $3, $4, $5)`,
}

var ClaimNextWorkerTask = map[string]string{
	"postgres": `UPDATE worker_task SET status = 'running', started_at = $1
        WHERE task_id = (
            SELECT task_id FROM worker_task WHERE status = 'queued'
            ORDER BY enqueued_at ASC LIMIT 1 FOR UPDATE SKIP LOCKED)
        RETURNING task_id, kind, status, COALESCE(system_id, '') AS system_id, evaluate_deletion_rules,
        enqueued_at, started_at, finished_at, COALESCE(failure_reason, '') AS failure_reason`,
}

var CompleteWorkerTask = map[string]string{
	"postgres": `UPDATE worker_task SET status = 'completed', finished_at = $2 WHERE task_id = $1`,
}

var FailWorkerTask = map[string]string{
	"postgres": `UPDATE worker_task SET status = 'failed', finished_at = $2, failure_reason = $3 WHERE task_id = $1`,
}

var GetWorkerTask = map[string]string{
	"postgres": `SELECT task_id, kind, status, COALESCE(system_id, '') AS system_id, evaluate_deletion_rules,
        enqueued_at, started_at, finished_at, COALESCE(failure_reason, '') AS failure_reason
        FROM worker_task WHERE task_id = $1`,
}
