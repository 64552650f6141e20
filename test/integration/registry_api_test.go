/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
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
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csModel "github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	srModel "github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
)

func TestRegistryAPIProvisioningFlow(t *testing.T) {
	server := newTestServer(t)
	token := signTestToken(t, "admin-1")
	base := server.URL + "/api/v1"

	// Metaverse type first; everything else references it.
	resp := doRequest(t, http.MethodPost, base+"/metaverse-types", token, []byte(`{
		"type_id": "person_reg",
		"name": "Person",
		"deletion": {"kind": "on_last_disconnect", "grace_period_days": 7}
	}`))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, base+"/connected-systems", token, []byte(`{
		"system_id": "hr_reg",
		"name": "HR System",
		"connector_type": "scripted",
		"capabilities": {"supports_auto_confirm_export": true}
	}`))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var system csModel.ConnectedSystem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&system))
	assert.Equal(t, "hr_reg", system.SystemID)
	assert.NotZero(t, system.CreatedAt)

	resp = doRequest(t, http.MethodPost, base+"/connected-systems/hr_reg/object-types", token, []byte(`{
		"type_id": "employee",
		"metaverse_type_id": "person_reg",
		"external_id_attribute": "employeeId"
	}`))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, base+"/connected-systems/hr_reg/object-types/employee", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var objectType csModel.ConnectedObjectType
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&objectType))
	assert.Equal(t, "person_reg", objectType.MetaverseTypeID)
}

func TestRegistryAPIRejectsUnsupportedSecondaryID(t *testing.T) {
	server := newTestServer(t)
	token := signTestToken(t, "admin-1")
	base := server.URL + "/api/v1"

	seedMetaverseType(t, "person_sec", mvModel.DeletionRule{Kind: mvModel.DeletionNever})
	seedSystem(t, "fin_sec", csModel.ConnectorCapabilities{})

	// The seeded system declares no secondary id support.
	resp := doRequest(t, http.MethodPost, base+"/connected-systems/fin_sec/object-types", token, []byte(`{
		"type_id": "account",
		"metaverse_type_id": "person_sec",
		"external_id_attribute": "accountId",
		"secondary_external_id_attribute": "upn"
	}`))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSyncRuleAPILifecycleAndOrderConflict(t *testing.T) {
	server := newTestServer(t)
	token := signTestToken(t, "admin-2")
	base := server.URL + "/api/v1"

	seedMetaverseType(t, "person_rl", mvModel.DeletionRule{Kind: mvModel.DeletionNever})
	seedSystem(t, "hr_rl", csModel.ConnectorCapabilities{})

	body := []byte(`{
		"name": "hr-person-inbound",
		"system_id": "hr_rl",
		"object_type_id": "person_rl",
		"enabled": true,
		"direction": "inbound",
		"order": 1,
		"projection_allowed": true,
		"mappings": [{"source_attribute": "mail", "target_attribute": "email"}]
	}`)
	resp := doRequest(t, http.MethodPost, base+"/sync-rules", token, body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created srModel.SyncRule
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.RuleID)
	assert.Equal(t, "admin-2", created.CreatedBy)
	assert.Equal(t, srModel.OutOfScopeDisconnect, created.OutOfScopeAction)

	// Same order slot for the same direction is taken.
	resp = doRequest(t, http.MethodPost, base+"/sync-rules", token, body)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, base+"/sync-rules?object_type_id=person_rl", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rules []srModel.SyncRule
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rules))
	require.Len(t, rules, 1)

	resp = doRequest(t, http.MethodDelete, base+"/sync-rules/"+created.RuleID, token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, base+"/sync-rules/"+created.RuleID, token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMatchingRuleAPIRejectsUnknownType(t *testing.T) {
	server := newTestServer(t)
	token := signTestToken(t, "admin-3")

	resp := doRequest(t, http.MethodPost, server.URL+"/api/v1/matching-rules", token, []byte(`{
		"object_type_id": "no_such_type",
		"order": 1,
		"comparisons": [{"cso_attribute": "employeeId", "mvo_attribute": "employeeId"}]
	}`))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteConnectedSystemAPIEnqueuesTeardown(t *testing.T) {
	server := newTestServer(t)
	token := signTestToken(t, "admin-4")
	base := server.URL + "/api/v1"

	seedSystem(t, "legacy_reg", csModel.ConnectorCapabilities{})

	resp := doRequest(t, http.MethodDelete, base+"/connected-systems/legacy_reg", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var task struct {
		TaskID string `json:"task_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	require.NotEmpty(t, task.TaskID)
	waitForTask(t, task.TaskID)

	resp = doRequest(t, http.MethodGet, base+"/connected-systems/legacy_reg", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
