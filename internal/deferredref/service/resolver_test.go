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

package service

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/identity-metadirectory-service/internal/deferredref/model"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

type fakeStore struct {
	references map[string][]model.DeferredReference
	stale      []model.DeferredReference
	deleted    []string
}

func (s *fakeStore) GetDeferredReferencesByTarget(targetExternalID string) ([]model.DeferredReference, error) {
	return s.references[targetExternalID], nil
}

func (s *fakeStore) GetStaleDeferredReferences(before time.Time) ([]model.DeferredReference, error) {
	return s.stale, nil
}

func (s *fakeStore) DeleteDeferredReference(referenceID string) error {
	s.deleted = append(s.deleted, referenceID)
	return nil
}

type fakeRefresher struct {
	refreshed []string
}

func (r *fakeRefresher) RefreshMvo(mvoID string) (int, error) {
	r.refreshed = append(r.refreshed, mvoID)
	return 1, nil
}

func TestResolveFor_ReplaysWaitingReferences(t *testing.T) {
	store := &fakeStore{references: map[string][]model.DeferredReference{
		"emp-99": {
			{ReferenceID: "ref-1", SourceObjectID: "emp-1", SourceMvoID: "mvo-1",
				TargetExternalID: "emp-99", TargetAttribute: "manager"},
			{ReferenceID: "ref-2", SourceObjectID: "emp-2", SourceMvoID: "mvo-2",
				TargetExternalID: "emp-99", TargetAttribute: "manager"},
		},
	}}
	refresher := &fakeRefresher{}
	resolver := NewResolverWithStore(store, refresher)

	resolved, err := resolver.ResolveFor("emp-99")
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)
	assert.ElementsMatch(t, []string{"ref-1", "ref-2"}, store.deleted)
	assert.ElementsMatch(t, []string{"mvo-1", "mvo-2"}, refresher.refreshed)
}

func TestResolveFor_NoWaitersIsNoop(t *testing.T) {
	store := &fakeStore{references: map[string][]model.DeferredReference{}}
	refresher := &fakeRefresher{}
	resolver := NewResolverWithStore(store, refresher)

	resolved, err := resolver.ResolveFor("emp-1", "")
	require.NoError(t, err)
	assert.Zero(t, resolved)
	assert.Empty(t, refresher.refreshed)
}

func TestWarnStale_CountsOutstandingReferences(t *testing.T) {
	store := &fakeStore{stale: []model.DeferredReference{
		{ReferenceID: "ref-1", SourceObjectID: "emp-1", TargetExternalID: "emp-99",
			TargetAttribute: "manager", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	resolver := NewResolverWithStore(store, &fakeRefresher{})

	count, err := resolver.WarnStale(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
