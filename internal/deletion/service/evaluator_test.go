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

package service

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	syncModel "github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

var t0 = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func userType(rule mvModel.DeletionRule) mvModel.ObjectType {
	return mvModel.ObjectType{TypeID: "user", Name: "User", Deletion: rule}
}

func TestEvaluateDisconnect_Never(t *testing.T) {
	d := EvaluateDisconnect(userType(mvModel.DeletionRule{Kind: mvModel.DeletionNever}), "hr", 0, t0)
	assert.Equal(t, ActionNone, d.Action)
}

func TestEvaluateDisconnect_LastDisconnectWithGracePeriod(t *testing.T) {
	objType := userType(mvModel.DeletionRule{
		Kind:            mvModel.DeletionOnLastDisconnect,
		GracePeriodDays: 7,
	})

	d := EvaluateDisconnect(objType, "hr", 0, t0)
	assert.Equal(t, ActionSchedule, d.Action)
	assert.Equal(t, t0.Add(7*24*time.Hour), d.ScheduledAt)

	// Links remain, nothing to do.
	d = EvaluateDisconnect(objType, "hr", 2, t0)
	assert.Equal(t, ActionNone, d.Action)
}

func TestEvaluateDisconnect_LastDisconnectNoGraceDeletesNow(t *testing.T) {
	objType := userType(mvModel.DeletionRule{Kind: mvModel.DeletionOnLastDisconnect})
	d := EvaluateDisconnect(objType, "hr", 0, t0)
	assert.Equal(t, ActionDelete, d.Action)
}

func TestEvaluateDisconnect_TriggerSystemsFireRegardlessOfRemainingLinks(t *testing.T) {
	objType := userType(mvModel.DeletionRule{
		Kind:             mvModel.DeletionOnTriggerSystems,
		TriggerSystemIDs: []string{"hr"},
	})

	d := EvaluateDisconnect(objType, "hr", 3, t0)
	assert.Equal(t, ActionDelete, d.Action)

	d = EvaluateDisconnect(objType, "crm", 0, t0)
	assert.Equal(t, ActionNone, d.Action, "non-trigger system disconnects never fire the rule")
}

func TestEvaluateDisconnect_UnknownRuleKindTreatedAsNever(t *testing.T) {
	objType := userType(mvModel.DeletionRule{Kind: "mystery"})
	d := EvaluateDisconnect(objType, "hr", 0, t0)
	assert.Equal(t, ActionNone, d.Action)
}

func TestSweepDue(t *testing.T) {
	due := t0.Add(-time.Hour)
	notDue := t0.Add(time.Hour)

	scheduled := mvModel.MetaverseObject{
		MvoID:               "mvo-1",
		Status:              mvModel.StatusScheduledForDeletion,
		ScheduledDeletionAt: &due,
	}
	assert.True(t, SweepDue(scheduled, t0))

	scheduled.ScheduledDeletionAt = &notDue
	assert.False(t, SweepDue(scheduled, t0))

	active := mvModel.MetaverseObject{MvoID: "mvo-2", Status: mvModel.StatusActive}
	assert.False(t, SweepDue(active, t0))
}

func TestDeprovisionActionFor_LowestOrderOutboundRuleDecides(t *testing.T) {
	rules := []syncModel.SyncRule{
		{SystemID: "crm", Enabled: true, Direction: syncModel.DirectionOutbound,
			Order: 5, DeprovisionAction: syncModel.DeprovisionDisconnect},
		{SystemID: "crm", Enabled: true, Direction: syncModel.DirectionOutbound,
			Order: 1, DeprovisionAction: syncModel.DeprovisionRequestDelete},
		{SystemID: "crm", Enabled: true, Direction: syncModel.DirectionInbound,
			Order: 0, DeprovisionAction: syncModel.DeprovisionDisconnect},
		{SystemID: "other", Enabled: true, Direction: syncModel.DirectionOutbound,
			Order: 0, DeprovisionAction: syncModel.DeprovisionDisconnect},
	}

	assert.Equal(t, syncModel.DeprovisionRequestDelete, DeprovisionActionFor(rules, "crm"))
	assert.Equal(t, syncModel.DeprovisionNone, DeprovisionActionFor(rules, "unknown"))
}

func TestOutOfScopeActionFor_DefaultsToDisconnect(t *testing.T) {
	assert.Equal(t, syncModel.OutOfScopeDisconnect,
		OutOfScopeActionFor(syncModel.SyncRule{}))
	assert.Equal(t, syncModel.OutOfScopeNone,
		OutOfScopeActionFor(syncModel.SyncRule{OutOfScopeAction: syncModel.OutOfScopeNone}))
}
