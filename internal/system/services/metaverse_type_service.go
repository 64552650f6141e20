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

	"github.com/wso2/identity-metadirectory-service/internal/metaverse/handler"
)

// MetaverseTypeService handles routing for the metaverse object type
// registry endpoints.
type MetaverseTypeService struct {
	typeHandler *handler.TypeHandler
}

// NewMetaverseTypeService creates a new MetaverseTypeService instance.
func NewMetaverseTypeService() *MetaverseTypeService {

	return &MetaverseTypeService{
		typeHandler: handler.NewTypeHandler(),
	}
}

// Route dispatches metaverse type requests.
func (s *MetaverseTypeService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	method := r.Method

	switch {
	case method == http.MethodPost && path == "/metaverse-types":
		s.typeHandler.AddObjectType(w, r)

	case method == http.MethodGet && strings.HasPrefix(path, "/metaverse-types/"):
		s.typeHandler.GetObjectType(w, r)

	default:
		http.NotFound(w, r)
	}
}
