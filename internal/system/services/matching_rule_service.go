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

	"github.com/wso2/identity-metadirectory-service/internal/matching/handler"
)

// MatchingRuleService handles routing for the matching rule endpoints.
type MatchingRuleService struct {
	ruleHandler *handler.MatchingRuleHandler
}

// NewMatchingRuleService creates a new MatchingRuleService instance.
func NewMatchingRuleService() *MatchingRuleService {

	return &MatchingRuleService{
		ruleHandler: handler.NewMatchingRuleHandler(),
	}
}

// Route dispatches matching rule requests.
func (s *MatchingRuleService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	method := r.Method

	switch {
	case method == http.MethodPost && path == "/matching-rules":
		s.ruleHandler.AddMatchingRule(w, r)

	case method == http.MethodGet && path == "/matching-rules":
		s.ruleHandler.GetMatchingRules(w, r)

	case method == http.MethodDelete && strings.HasPrefix(path, "/matching-rules/"):
		s.ruleHandler.DeleteMatchingRule(w, r)

	default:
		http.NotFound(w, r)
	}
}
