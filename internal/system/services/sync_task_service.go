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

package services

import (
	"net/http"
	"strings"

	"github.com/wso2/identity-metadirectory-service/internal/task/handler"
)

// SyncTaskService handles routing for the sync task endpoints.
type SyncTaskService struct {
	taskHandler *handler.TaskHandler
}

// NewSyncTaskService creates a new SyncTaskService instance.
func NewSyncTaskService() *SyncTaskService {

	return &SyncTaskService{
		taskHandler: handler.NewTaskHandler(),
	}
}

// Route dispatches sync task requests.
func (s *SyncTaskService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	method := r.Method

	switch {
	case method == http.MethodPost && path == "/sync-tasks":
		s.taskHandler.AddSyncTask(w, r)

	case method == http.MethodGet && strings.HasPrefix(path, "/sync-tasks/"):
		s.taskHandler.GetSyncTask(w, r)

	default:
		http.NotFound(w, r)
	}
}
