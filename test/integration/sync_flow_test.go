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
	exportStore "github.com/wso2/identity-metadirectory-service/internal/export/store"
	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	mvStore "github.com/wso2/identity-metadirectory-service/internal/metaverse/store"
	syncModel "github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	taskModel "github.com/wso2/identity-metadirectory-service/internal/task/model"
)

// Full import against an empty metaverse: both employees get projected,
// and the forward reference from bob to alice is first deferred, then
// replayed once alice arrives.
func TestFullImportProjectsAndResolvesReferences(t *testing.T) {
	seedMetaverseType(t, "person_proj", mvModel.DeletionRule{Kind: mvModel.DeletionNever})
	seedSystem(t, "hr_proj", csModel.ConnectorCapabilities{})
	seedObjectType(t, "hr_proj", "employee", "person_proj", "employeeId")
	seedSyncRule(t, syncModel.SyncRule{
		SystemID:          "hr_proj",
		ObjectTypeID:      "person_proj",
		Name:              "hr inbound",
		Enabled:           true,
		Direction:         syncModel.DirectionInbound,
		Order:             1,
		ProjectionAllowed: true,
		Mappings: []syncModel.AttributeMapping{
			{SourceAttribute: "mail", TargetAttribute: "email"},
			{SourceAttribute: "manager", TargetAttribute: "manager"},
		},
	})

	// bob arrives before his manager does.
	conn := &scriptedConnector{
		objects: []connector.ImportedObject{
			{
				TypeID:     "employee",
				ExternalID: "bob",
				Attributes: map[string]attribute.Value{
					"employeeId": attribute.StringValue("bob"),
					"mail":       attribute.StringValue("bob@example.com"),
					"manager":    attribute.ReferenceValue("alice"),
				},
			},
			{
				TypeID:     "employee",
				ExternalID: "alice",
				Attributes: map[string]attribute.Value{
					"employeeId": attribute.StringValue("alice"),
					"mail":       attribute.StringValue("alice@example.com"),
				},
			},
		},
	}
	connector.Register("hr_proj", conn)

	task := enqueueAndWait(t, taskModel.KindFullImport, taskModel.TaskParams{SystemID: "hr_proj"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	bob, err := csStore.GetConnectedObjectByExternalID("hr_proj", "employee", "bob")
	require.NoError(t, err)
	require.NotNil(t, bob)
	require.True(t, bob.IsLinked())

	alice, err := csStore.GetConnectedObjectByExternalID("hr_proj", "employee", "alice")
	require.NoError(t, err)
	require.NotNil(t, alice)
	require.True(t, alice.IsLinked())

	bobMvo, err := mvStore.GetMetaverseObject(bob.MvoID)
	require.NoError(t, err)
	require.NotNil(t, bobMvo)
	assert.Equal(t, mvModel.StatusActive, bobMvo.Status)
	assert.Equal(t, attribute.StringValue("bob@example.com"), bobMvo.Attributes["email"])

	// The deferred manager reference was replayed and now points at
	// alice's metaverse object.
	assert.Equal(t, attribute.ReferenceValue(alice.MvoID), bobMvo.Attributes["manager"])
}

// A second full import that no longer carries an object retires its
// connected snapshot; with a "never" deletion rule the metaverse object
// survives the disconnect.
func TestFullImportRetiresObsoleteObjects(t *testing.T) {
	seedMetaverseType(t, "person_ret", mvModel.DeletionRule{Kind: mvModel.DeletionNever})
	seedSystem(t, "hr_ret", csModel.ConnectorCapabilities{})
	seedObjectType(t, "hr_ret", "employee", "person_ret", "employeeId")
	seedSyncRule(t, syncModel.SyncRule{
		SystemID:          "hr_ret",
		ObjectTypeID:      "person_ret",
		Name:              "hr inbound",
		Enabled:           true,
		Direction:         syncModel.DirectionInbound,
		Order:             1,
		ProjectionAllowed: true,
		Mappings:          []syncModel.AttributeMapping{{SourceAttribute: "mail", TargetAttribute: "email"}},
	})

	carol := connector.ImportedObject{
		TypeID:     "employee",
		ExternalID: "carol",
		Attributes: map[string]attribute.Value{
			"employeeId": attribute.StringValue("carol"),
			"mail":       attribute.StringValue("carol@example.com"),
		},
	}
	dave := connector.ImportedObject{
		TypeID:     "employee",
		ExternalID: "dave",
		Attributes: map[string]attribute.Value{
			"employeeId": attribute.StringValue("dave"),
			"mail":       attribute.StringValue("dave@example.com"),
		},
	}

	conn := &scriptedConnector{objects: []connector.ImportedObject{carol, dave}}
	connector.Register("hr_ret", conn)
	task := enqueueAndWait(t, taskModel.KindFullImport, taskModel.TaskParams{SystemID: "hr_ret"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	daveObj, err := csStore.GetConnectedObjectByExternalID("hr_ret", "employee", "dave")
	require.NoError(t, err)
	require.NotNil(t, daveObj)
	daveMvoID := daveObj.MvoID

	// dave vanished from the source.
	conn.objects = []connector.ImportedObject{carol}
	task = enqueueAndWait(t, taskModel.KindFullImport, taskModel.TaskParams{SystemID: "hr_ret"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	daveObj, err = csStore.GetConnectedObjectByExternalID("hr_ret", "employee", "dave")
	require.NoError(t, err)
	assert.Nil(t, daveObj)

	daveMvo, err := mvStore.GetMetaverseObject(daveMvoID)
	require.NoError(t, err)
	require.NotNil(t, daveMvo)
	assert.Equal(t, mvModel.StatusActive, daveMvo.Status)
	assert.NotNil(t, daveMvo.LastDisconnectedAt)
}

// Outbound lifecycle across two systems: an HR attribute change fans
// out to the linked CRM object, an export run delivers it, and a later
// CRM import confirms the exported value.
func TestOutboundExportLifecycle(t *testing.T) {
	seedMetaverseType(t, "person_exp", mvModel.DeletionRule{Kind: mvModel.DeletionNever})
	seedSystem(t, "hr_exp", csModel.ConnectorCapabilities{})
	seedObjectType(t, "hr_exp", "employee", "person_exp", "employeeId")
	seedSystem(t, "crm_exp", csModel.ConnectorCapabilities{})
	seedObjectType(t, "crm_exp", "contact", "person_exp", "contactId")

	seedSyncRule(t, syncModel.SyncRule{
		SystemID:          "hr_exp",
		ObjectTypeID:      "person_exp",
		Name:              "hr inbound",
		Enabled:           true,
		Direction:         syncModel.DirectionInbound,
		Order:             1,
		ProjectionAllowed: true,
		Mappings:          []syncModel.AttributeMapping{{SourceAttribute: "mail", TargetAttribute: "email"}},
	})
	seedSyncRule(t, syncModel.SyncRule{
		SystemID:     "crm_exp",
		ObjectTypeID: "person_exp",
		Name:         "crm outbound",
		Enabled:      true,
		Direction:    syncModel.DirectionOutbound,
		Order:        2,
		Mappings:     []syncModel.AttributeMapping{{SourceAttribute: "email", TargetAttribute: "emailAddress"}},
	})

	erin := connector.ImportedObject{
		TypeID:     "employee",
		ExternalID: "erin",
		Attributes: map[string]attribute.Value{
			"employeeId": attribute.StringValue("erin"),
			"mail":       attribute.StringValue("erin@example.com"),
		},
	}
	hrConn := &scriptedConnector{objects: []connector.ImportedObject{erin}}
	connector.Register("hr_exp", hrConn)
	crmConn := &scriptedConnector{}
	connector.Register("crm_exp", crmConn)

	task := enqueueAndWait(t, taskModel.KindFullImport, taskModel.TaskParams{SystemID: "hr_exp"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	erinObj, err := csStore.GetConnectedObjectByExternalID("hr_exp", "employee", "erin")
	require.NoError(t, err)
	require.NotNil(t, erinObj)

	// A CRM contact already linked to erin's metaverse object.
	crmObj := csModel.ConnectedObject{
		ObjectID:       "crm-erin",
		SystemID:       "crm_exp",
		TypeID:         "contact",
		ExternalID:     "crm-erin",
		Attributes:     map[string]attribute.Value{"contactId": attribute.StringValue("crm-erin")},
		LastImportedAt: time.Now().UTC(),
	}
	require.NoError(t, csStore.UpsertConnectedObject(crmObj))
	require.NoError(t, csStore.LinkConnectedObject("crm-erin", erinObj.MvoID))

	// Change erin's mail in HR and re-import; the flow delta must fan
	// out to the CRM export queue.
	erin.Attributes["mail"] = attribute.StringValue("erin.new@example.com")
	hrConn.objects = []connector.ImportedObject{erin}
	task = enqueueAndWait(t, taskModel.KindFullImport, taskModel.TaskParams{SystemID: "hr_exp"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	pending, err := exportStore.GetPendingChangesForSystem("crm_exp")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "crm-erin", pending[0].ObjectID)
	assert.Equal(t, "emailAddress", pending[0].AttributeName)
	assert.Equal(t, attribute.StringValue("erin.new@example.com"), pending[0].Value)

	// Export run delivers the change to the CRM connector.
	task = enqueueAndWait(t, taskModel.KindExport, taskModel.TaskParams{SystemID: "crm_exp"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	records := crmConn.exportedTo("crm-erin")
	require.Len(t, records, 1)
	assert.Equal(t, "emailAddress", records[0].AttributeName)

	exported, err := exportStore.GetExportedChangesForObject("crm-erin")
	require.NoError(t, err)
	require.Len(t, exported, 1)

	// The CRM import reflects the value back; the exported change
	// settles to confirmed.
	crmConn.objects = []connector.ImportedObject{{
		TypeID:     "contact",
		ExternalID: "crm-erin",
		Attributes: map[string]attribute.Value{
			"contactId":    attribute.StringValue("crm-erin"),
			"emailAddress": attribute.StringValue("erin.new@example.com"),
		},
	}}
	task = enqueueAndWait(t, taskModel.KindFullImport, taskModel.TaskParams{SystemID: "crm_exp"})
	require.Equal(t, taskModel.TaskCompleted, task.Status)

	exported, err = exportStore.GetExportedChangesForObject("crm-erin")
	require.NoError(t, err)
	assert.Empty(t, exported)
}
