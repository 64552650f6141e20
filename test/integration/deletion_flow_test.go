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

package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	csModel "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	csStore "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/store"
	"github.com/wso2/identity-metadirectory-service/internal/connector"
	matchModel "github.com/wso2/identity-metadirectory-service/internal/matching/model"
	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	mvStore "github.com/wso2/identity-metadirectory-service/internal/metaverse/store"
	syncModel "github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	taskModel "github.com/wso2/identity-metadirectory-service/internal/task/model"
)

func employeeOf(externalID, mail string) connector.ImportedObject {
	return connector.ImportedObject{
		TypeID:     "employee",
		ExternalID: externalID,
		Attributes: map[string]attribute.Value{
			"employeeId": attribute.StringValue(externalID),
			"mail":       attribute.StringValue(mail),
		},
	}
}

// A deletion marker in a delta import disconnects the object; the grace
// period defers the metaverse deletion, and a rejoining import
// reactivates the scheduled object.
func TestGracePeriodSchedulesAndRejoinReactivates(t *testing.T) {
	seedMetaverseType(t, "person_grace", mvModel.DeletionRule{
		Kind:            mvModel.DeletionOnLastDisconnect,
		GracePeriodDays: 7,
	})
	seedSystem(t, "hr_grace", csModel.ConnectorCapabilities{})
	seedObjectType(t, "hr_grace", "employee", "person_grace", "employeeId")
	seedSyncRule(t, syncModel.SyncRule{
		SystemID:          "hr_grace",
		ObjectTypeID:      "person_grace",
		Name:              "hr inbound",
		Enabled:           true,
		Direction:         syncModel.DirectionInbound,
		Order:             1,
		ProjectionAllowed: true,
		Mappings: []syncModel.AttributeMapping{
			{SourceAttribute: "employeeId", TargetAttribute: "employeeId"},
			{SourceAttribute: "mail", TargetAttribute: "email"},
		},
	})
	seedMatchingRule(t, "person_grace", 1, []matchModel.AttributeComparison{
		{CSOAttribute: "employeeId", MVOAttribute: "employeeId", CaseSensitive: true},
	})

	frank := employeeOf("frank", "frank@example.com")
	conn := &scriptedConnector{objects: []connector.ImportedObject{frank}}
	connector.Register("hr_grace", conn)

	task := enqueueAndWait(t, taskModel.KindFullImport, taskModel.TaskParams{SystemID: "hr_grace"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	frankObj, err := csStore.GetConnectedObjectByExternalID("hr_grace", "employee", "frank")
	require.NoError(t, err)
	require.NotNil(t, frankObj)
	mvoID := frankObj.MvoID

	// The delta import reports frank as deleted in HR.
	conn.deltas = []connector.ImportedObject{{TypeID: "employee", ExternalID: "frank", Deleted: true}}
	task = enqueueAndWait(t, taskModel.KindDeltaImport, taskModel.TaskParams{SystemID: "hr_grace"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	frankObj, err = csStore.GetConnectedObjectByExternalID("hr_grace", "employee", "frank")
	require.NoError(t, err)
	assert.Nil(t, frankObj)

	mvo, err := mvStore.GetMetaverseObject(mvoID)
	require.NoError(t, err)
	require.NotNil(t, mvo)
	assert.Equal(t, mvModel.StatusScheduledForDeletion, mvo.Status)
	require.NotNil(t, mvo.ScheduledDeletionAt)
	assert.True(t, mvo.ScheduledDeletionAt.After(time.Now().Add(6*24*time.Hour)))

	// frank reappears before the grace period runs out and joins the
	// scheduled object back to life.
	conn.objects = []connector.ImportedObject{frank}
	task = enqueueAndWait(t, taskModel.KindFullImport, taskModel.TaskParams{SystemID: "hr_grace"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	frankObj, err = csStore.GetConnectedObjectByExternalID("hr_grace", "employee", "frank")
	require.NoError(t, err)
	require.NotNil(t, frankObj)
	assert.Equal(t, mvoID, frankObj.MvoID)

	mvo, err = mvStore.GetMetaverseObject(mvoID)
	require.NoError(t, err)
	require.NotNil(t, mvo)
	assert.Equal(t, mvModel.StatusActive, mvo.Status)
	assert.Nil(t, mvo.ScheduledDeletionAt)
}

// Without a grace period the last disconnect tombstones the metaverse
// object immediately and deprovisions the remaining outbound system via
// a delete request on its export queue.
func TestImmediateDeletionDeprovisionsOutbound(t *testing.T) {
	seedMetaverseType(t, "person_imm", mvModel.DeletionRule{Kind: mvModel.DeletionOnTriggerSystems,
		TriggerSystemIDs: []string{"hr_imm"}})
	seedSystem(t, "hr_imm", csModel.ConnectorCapabilities{})
	seedObjectType(t, "hr_imm", "employee", "person_imm", "employeeId")
	seedSystem(t, "crm_imm", csModel.ConnectorCapabilities{})
	seedObjectType(t, "crm_imm", "contact", "person_imm", "contactId")

	seedSyncRule(t, syncModel.SyncRule{
		SystemID:          "hr_imm",
		ObjectTypeID:      "person_imm",
		Name:              "hr inbound",
		Enabled:           true,
		Direction:         syncModel.DirectionInbound,
		Order:             1,
		ProjectionAllowed: true,
		Mappings:          []syncModel.AttributeMapping{{SourceAttribute: "mail", TargetAttribute: "email"}},
	})
	seedSyncRule(t, syncModel.SyncRule{
		SystemID:          "crm_imm",
		ObjectTypeID:      "person_imm",
		Name:              "crm outbound",
		Enabled:           true,
		Direction:         syncModel.DirectionOutbound,
		Order:             2,
		Mappings:          []syncModel.AttributeMapping{{SourceAttribute: "email", TargetAttribute: "emailAddress"}},
		DeprovisionAction: syncModel.DeprovisionRequestDelete,
	})

	grace := employeeOf("grace", "grace@example.com")
	hrConn := &scriptedConnector{objects: []connector.ImportedObject{grace}}
	connector.Register("hr_imm", hrConn)
	crmConn := &scriptedConnector{}
	connector.Register("crm_imm", crmConn)

	task := enqueueAndWait(t, taskModel.KindFullImport, taskModel.TaskParams{SystemID: "hr_imm"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	graceObj, err := csStore.GetConnectedObjectByExternalID("hr_imm", "employee", "grace")
	require.NoError(t, err)
	require.NotNil(t, graceObj)
	mvoID := graceObj.MvoID

	crmObj := csModel.ConnectedObject{
		ObjectID:       "crm-grace",
		SystemID:       "crm_imm",
		TypeID:         "contact",
		ExternalID:     "crm-grace",
		Attributes:     map[string]attribute.Value{"contactId": attribute.StringValue("crm-grace")},
		LastImportedAt: time.Now().UTC(),
	}
	require.NoError(t, csStore.UpsertConnectedObject(crmObj))
	require.NoError(t, csStore.LinkConnectedObject("crm-grace", mvoID))

	// grace leaves the trigger system.
	hrConn.deltas = []connector.ImportedObject{{TypeID: "employee", ExternalID: "grace", Deleted: true}}
	task = enqueueAndWait(t, taskModel.KindDeltaImport, taskModel.TaskParams{SystemID: "hr_imm"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	mvo, err := mvStore.GetMetaverseObject(mvoID)
	require.NoError(t, err)
	require.NotNil(t, mvo)
	assert.Equal(t, mvModel.StatusDeleted, mvo.Status)

	// The export run carries the deprovision delete to the CRM.
	task = enqueueAndWait(t, taskModel.KindExport, taskModel.TaskParams{SystemID: "crm_imm"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)
	assert.Contains(t, crmConn.deleted, "crm-grace")
}

// The deletion sweep tombstones scheduled objects whose grace period
// has expired.
func TestDeletionSweepTombstonesExpiredObjects(t *testing.T) {
	seedMetaverseType(t, "person_sweep", mvModel.DeletionRule{Kind: mvModel.DeletionNever})

	mvo := mvModel.MetaverseObject{
		MvoID:      "mvo-sweep-1",
		TypeID:     "person_sweep",
		Attributes: map[string]attribute.Value{},
		Origin:     mvModel.OriginProjected,
		Status:     mvModel.StatusActive,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, mvStore.AddMetaverseObject(mvo))
	require.NoError(t, mvStore.ScheduleMetaverseDeletion("mvo-sweep-1",
		time.Now().UTC().Add(-time.Hour), time.Now().UTC()))

	task := enqueueAndWait(t, taskModel.KindDeletionSweep, taskModel.TaskParams{})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	swept, err := mvStore.GetMetaverseObject("mvo-sweep-1")
	require.NoError(t, err)
	require.NotNil(t, swept)
	assert.Equal(t, mvModel.StatusDeleted, swept.Status)
}

// Deleting a connected system removes its snapshots and unregisters the
// connector; metaverse objects survive unless deletion rules are asked
// for.
func TestDeleteConnectedSystemTask(t *testing.T) {
	seedMetaverseType(t, "person_sysdel", mvModel.DeletionRule{Kind: mvModel.DeletionOnLastDisconnect})
	seedSystem(t, "hr_sysdel", csModel.ConnectorCapabilities{})
	seedObjectType(t, "hr_sysdel", "employee", "person_sysdel", "employeeId")
	seedSyncRule(t, syncModel.SyncRule{
		SystemID:          "hr_sysdel",
		ObjectTypeID:      "person_sysdel",
		Name:              "hr inbound",
		Enabled:           true,
		Direction:         syncModel.DirectionInbound,
		Order:             1,
		ProjectionAllowed: true,
		Mappings:          []syncModel.AttributeMapping{{SourceAttribute: "mail", TargetAttribute: "email"}},
	})

	conn := &scriptedConnector{objects: []connector.ImportedObject{employeeOf("henry", "henry@example.com")}}
	connector.Register("hr_sysdel", conn)

	task := enqueueAndWait(t, taskModel.KindFullImport, taskModel.TaskParams{SystemID: "hr_sysdel"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	henry, err := csStore.GetConnectedObjectByExternalID("hr_sysdel", "employee", "henry")
	require.NoError(t, err)
	require.NotNil(t, henry)
	mvoID := henry.MvoID

	task = enqueueAndWait(t, taskModel.KindDeleteConnectedSystem, taskModel.TaskParams{
		SystemID:                 "hr_sysdel",
		EvaluateMvoDeletionRules: false,
	})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	henry, err = csStore.GetConnectedObjectByExternalID("hr_sysdel", "employee", "henry")
	require.NoError(t, err)
	assert.Nil(t, henry)

	system, err := csStore.GetConnectedSystem("hr_sysdel")
	require.NoError(t, err)
	assert.Nil(t, system)

	mvo, err := mvStore.GetMetaverseObject(mvoID)
	require.NoError(t, err)
	require.NotNil(t, mvo)
	assert.Equal(t, mvModel.StatusActive, mvo.Status)

	_, err = connector.Get("hr_sysdel")
	assert.Error(t, err)
}
