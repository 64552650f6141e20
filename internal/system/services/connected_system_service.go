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

	"github.com/wso2/identity-metadirectory-service/internal/connectedsystem/handler"
)

// ConnectedSystemService handles routing for the connected system
// registry endpoints.
type ConnectedSystemService struct {
	systemHandler *handler.SystemHandler
}

// NewConnectedSystemService creates a new ConnectedSystemService instance.
func NewConnectedSystemService() *ConnectedSystemService {

	return &ConnectedSystemService{
		systemHandler: handler.NewSystemHandler(),
	}
}

// Route dispatches connected system requests.
func (s *ConnectedSystemService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	method := r.Method
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")

	switch {
	case method == http.MethodPost && path == "/connected-systems":
		s.systemHandler.AddConnectedSystem(w, r)

	case method == http.MethodGet && path == "/connected-systems":
		s.systemHandler.GetConnectedSystems(w, r)

	case method == http.MethodGet && len(segments) == 2:
		s.systemHandler.GetConnectedSystem(w, r)

	case method == http.MethodDelete && len(segments) == 2:
		s.systemHandler.DeleteConnectedSystem(w, r)

	case method == http.MethodPost && len(segments) == 3 && segments[2] == "object-types":
		s.systemHandler.AddConnectedObjectType(w, r)

	case method == http.MethodGet && len(segments) == 4 && segments[2] == "object-types":
		s.systemHandler.GetConnectedObjectType(w, r)

	default:
		http.NotFound(w, r)
	}
}
