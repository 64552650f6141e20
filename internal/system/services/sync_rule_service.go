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

	"github.com/wso2/identity-metadirectory-service/internal/syncrule/handler"
)

// SyncRuleService handles routing for the sync rule endpoints.
type SyncRuleService struct {
	ruleHandler *handler.SyncRuleHandler
}

// NewSyncRuleService creates a new SyncRuleService instance.
func NewSyncRuleService() *SyncRuleService {

	return &SyncRuleService{
		ruleHandler: handler.NewSyncRuleHandler(),
	}
}

// Route dispatches sync rule requests.
func (s *SyncRuleService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	method := r.Method

	switch {
	case method == http.MethodPost && path == "/sync-rules":
		s.ruleHandler.AddSyncRule(w, r)

	case method == http.MethodGet && path == "/sync-rules":
		s.ruleHandler.GetSyncRules(w, r)

	case method == http.MethodGet && strings.HasPrefix(path, "/sync-rules/"):
		s.ruleHandler.GetSyncRule(w, r)

	case method == http.MethodDelete && strings.HasPrefix(path, "/sync-rules/"):
		s.ruleHandler.DeleteSyncRule(w, r)

	default:
		http.NotFound(w, r)
	}
}
