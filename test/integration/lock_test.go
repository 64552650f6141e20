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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/identity-metadirectory-service/internal/system/database/lock"
)

// Two lock instances stand in for two workers; advisory locks are
// session scoped, so each held key must survive on its own pinned
// connection until released.
func TestAdvisoryLockExcludesAcrossInstances(t *testing.T) {
	key := lock.MvoLockKey("mvo-lock-a")
	first := lock.NewPostgresLock()
	second := lock.NewPostgresLock()

	acquired, err := first.Acquire(key)
	require.NoError(t, err)
	require.True(t, acquired)

	// The key stays held even though acquiring opened and dropped no
	// pooled statements since; a second worker must be shut out.
	blocked, err := second.Acquire(key)
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, first.Release(key))

	acquired, err = second.Acquire(key)
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, second.Release(key))
}

func TestAdvisoryLockReleaseWithoutAcquireFails(t *testing.T) {
	l := lock.NewPostgresLock()
	assert.Error(t, l.Release(lock.MvoLockKey("mvo-lock-never-held")))
}

func TestAdvisoryLockSerializesCriticalSections(t *testing.T) {
	key := lock.MvoLockKey("mvo-lock-b")

	var inside int32
	var overlaps int32
	var wg sync.WaitGroup

	for worker := 0; worker < 2; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := lock.NewPostgresLock()
			for i := 0; i < 5; i++ {
				for {
					acquired, err := l.Acquire(key)
					if !assert.NoError(t, err) {
						return
					}
					if acquired {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				if !assert.NoError(t, l.Release(key)) {
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlaps), "two holders were inside the critical section at once")
}
