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

package provider

import (
	"github.com/wso2/identity-metadirectory-service/internal/connectedsystem/service"
)

// SystemProviderInterface defines the interface for the connected system
// provider.
type SystemProviderInterface interface {
	GetSystemService() service.SystemServiceInterface
}

// SystemProvider is the default implementation of the SystemProviderInterface.
type SystemProvider struct{}

// NewSystemProvider creates a new instance of SystemProvider.
func NewSystemProvider() SystemProviderInterface {

	return &SystemProvider{}
}

// GetSystemService returns the connected system service instance.
func (sp *SystemProvider) GetSystemService() service.SystemServiceInterface {

	return service.GetSystemService()
}
