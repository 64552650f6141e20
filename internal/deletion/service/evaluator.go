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
	"fmt"
	"time"

	mvModel "github.com/wso2/identity-metadirectory-service/internal/metaverse/model"
	syncModel "github.com/wso2/identity-metadirectory-service/internal/syncrule/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// Action is the deletion evaluator's verdict for a metaverse object
// after a connected object disconnected.
type Action string

const (
	ActionNone     Action = "none"
	ActionSchedule Action = "schedule"
	ActionDelete   Action = "delete"
)

// Decision carries the verdict plus the scheduled deletion time when
// the type's grace period defers the deletion.
type Decision struct {
	Action      Action
	ScheduledAt time.Time
}

// EvaluateDisconnect applies the object type's deletion rule after a
// connected object from disconnectedSystemID was unlinked.
// remainingLinks counts the links left after the unlink. A type with an
// unknown rule kind is treated as "never" and logged, not failed.
func EvaluateDisconnect(objectType mvModel.ObjectType, disconnectedSystemID string,
	remainingLinks int, now time.Time) Decision {

	rule := objectType.Deletion
	switch rule.Kind {
	case mvModel.DeletionNever, "":
		return Decision{Action: ActionNone}

	case mvModel.DeletionOnLastDisconnect:
		if remainingLinks > 0 {
			return Decision{Action: ActionNone}
		}
		return graceDecision(rule, now)

	case mvModel.DeletionOnTriggerSystems:
		for _, systemID := range rule.TriggerSystemIDs {
			if systemID == disconnectedSystemID {
				return graceDecision(rule, now)
			}
		}
		return Decision{Action: ActionNone}

	default:
		log.GetLogger().Warn(fmt.Sprintf(
			"Object type %s has unrecognized deletion rule kind '%s'; treating as never",
			objectType.TypeID, rule.Kind))
		return Decision{Action: ActionNone}
	}
}

func graceDecision(rule mvModel.DeletionRule, now time.Time) Decision {

	if rule.GracePeriodDays > 0 {
		return Decision{
			Action:      ActionSchedule,
			ScheduledAt: now.Add(time.Duration(rule.GracePeriodDays) * 24 * time.Hour),
		}
	}
	return Decision{Action: ActionDelete}
}

// SweepDue reports whether a scheduled metaverse object is ripe for the
// deletion sweep.
func SweepDue(mvo mvModel.MetaverseObject, now time.Time) bool {

	return mvo.Status == mvModel.StatusScheduledForDeletion &&
		mvo.ScheduledDeletionAt != nil &&
		!mvo.ScheduledDeletionAt.After(now)
}

// DeprovisionActionFor returns the outbound deprovision action the
// owning sync rule dictates for a connected object still linked to a
// metaverse object being deleted. The lowest-order enabled outbound rule
// for the object's system decides; with no such rule nothing happens.
func DeprovisionActionFor(rules []syncModel.SyncRule, systemID string) syncModel.DeprovisionAction {

	best := syncModel.DeprovisionNone
	bestOrder := -1
	for _, rule := range rules {
		if !rule.Enabled || rule.Direction != syncModel.DirectionOutbound || rule.SystemID != systemID {
			continue
		}
		if bestOrder == -1 || rule.Order < bestOrder {
			bestOrder = rule.Order
			best = rule.DeprovisionAction
		}
	}
	return best
}

// OutOfScopeActionFor returns the inbound out-of-scope action for a
// connected object whose rule scope stopped holding. Disconnect is the
// default when the rule does not say otherwise.
func OutOfScopeActionFor(rule syncModel.SyncRule) syncModel.OutOfScopeAction {

	if rule.OutOfScopeAction == "" {
		return syncModel.OutOfScopeDisconnect
	}
	return rule.OutOfScopeAction
}
