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

package lock

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/wso2/identity-metadirectory-service/internal/system/database/client"
	"github.com/wso2/identity-metadirectory-service/internal/system/database/provider"
	"github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

type DistributedLock interface {
	Acquire(key string) (bool, error)
	Release(key string) error
}

// PostgresLock implements DistributedLock using PostgreSQL advisory locks.
// Reconciliation uses it for per-metaverse-object mutual exclusion:
// attribute flow reads the full set of linked connected objects, so two
// writers on the same metaverse object must never overlap.
//
// Advisory locks are session scoped, so each held key pins a dedicated
// connection for the lock's lifetime. Acquire and Release for one key
// must run on that same session; the pinned connection and its client
// are only closed once the key is released.
type PostgresLock struct {
	mu       sync.Mutex
	sessions map[string]*lockSession
}

type lockSession struct {
	dbClient client.DBClientInterface
	conn     *sql.Conn
}

func NewPostgresLock() *PostgresLock {
	return &PostgresLock{sessions: make(map[string]*lockSession)}
}

// MvoLockKey builds the advisory lock key for a metaverse object.
func MvoLockKey(mvoID string) string {

	return "mvo:" + mvoID
}

// PostgreSQL advisory locks use bigint or two integers. We'll use a single bigint.
func (l *PostgresLock) generateLockKey(key string) (int64, error) {

	logger := log.GetLogger()
	h := fnv.New64a()
	_, err := h.Write([]byte(key))
	if err != nil {
		errorMsg := fmt.Sprintf("failed to hash lock key '%s'", key)
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_KEY_GEN.Code,
			Message:     errors.LOCK_KEY_GEN.Message,
			Description: errorMsg,
		}, err)
		return 0, serverError
	}
	return int64(h.Sum64()), nil
}

func (l *PostgresLock) Acquire(key string) (bool, error) {

	logger := log.GetLogger()

	l.mu.Lock()
	if _, held := l.sessions[key]; held {
		l.mu.Unlock()
		return false, nil
	}
	l.mu.Unlock()

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		errorMsg := "Failed during DB client creation for advisory lock acquiring."
		logger.Error(errorMsg, log.Error(err))
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.DB_CLIENT_INIT.Code,
			Message:     errors.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}
	lockID, err := l.generateLockKey(key)
	if err != nil {
		closeQuietly(dbClient, nil)
		return false, err
	}

	ctx := context.Background()
	conn, err := dbClient.Conn(ctx)
	if err != nil {
		closeQuietly(dbClient, nil)
		errorMsg := "Failed to pin a connection for advisory lock acquiring."
		logger.Error(errorMsg, log.Error(err))
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_ACQUIRE.Code,
			Message:     errors.LOCK_ACQUIRE.Message,
			Description: errorMsg,
		}, err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		closeQuietly(dbClient, conn)
		errorMsg := "Failed to execute pg_try_advisory_lock"
		logger.Error(errorMsg, log.Error(err))
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_ACQUIRE.Code,
			Message:     errors.LOCK_ACQUIRE.Message,
			Description: errorMsg,
		}, err)
	}
	if !acquired {
		closeQuietly(dbClient, conn)
		return false, nil
	}

	l.mu.Lock()
	if _, held := l.sessions[key]; held {
		// Lost the race against another Acquire of this instance.
		l.mu.Unlock()
		if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", lockID); err != nil {
			logger.Error(fmt.Sprintf("Failed to drop duplicate advisory lock %d", lockID), log.Error(err))
		}
		closeQuietly(dbClient, conn)
		return false, nil
	}
	l.sessions[key] = &lockSession{dbClient: dbClient, conn: conn}
	l.mu.Unlock()
	return true, nil
}

func (l *PostgresLock) Release(key string) error {

	logger := log.GetLogger()

	l.mu.Lock()
	session, held := l.sessions[key]
	delete(l.sessions, key)
	l.mu.Unlock()

	if !held {
		errorMsg := fmt.Sprintf("advisory lock for key %s was not held", key)
		logger.Error(errorMsg)
		return errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RELEASE.Code,
			Message:     errors.LOCK_RELEASE.Message,
			Description: errorMsg,
		}, nil)
	}
	defer closeQuietly(session.dbClient, session.conn)

	lockID, err := l.generateLockKey(key)
	if err != nil {
		return err
	}

	var released bool
	err = session.conn.QueryRowContext(context.Background(),
		"SELECT pg_advisory_unlock($1)", lockID).Scan(&released)
	if err != nil {
		errorMsg := "pg_advisory_unlock failed"
		logger.Error(errorMsg, log.Error(err))
		return errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RELEASE.Code,
			Message:     errors.LOCK_RELEASE.Message,
			Description: errorMsg,
		}, err)
	}
	if !released {
		errorMsg := fmt.Sprintf("advisory lock for key %s was not held by its session", key)
		logger.Error(errorMsg)
		return errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RELEASE.Code,
			Message:     errors.LOCK_RELEASE.Message,
			Description: errorMsg,
		}, nil)
	}
	logger.Debug(fmt.Sprintf("Advisory lock released for lock id: %d", lockID))
	return nil
}

func closeQuietly(dbClient client.DBClientInterface, conn *sql.Conn) {

	logger := log.GetLogger()
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Debug("Failed to close pinned lock connection", log.Error(err))
		}
	}
	if err := dbClient.Close(); err != nil {
		logger.Debug("Failed to close lock database client", log.Error(err))
	}
}
