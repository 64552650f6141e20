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

package model

// ConnectorCapabilities are the capability flags a connector declares,
// consumed by the engine as configuration.
type ConnectorCapabilities struct {
	SupportsParallelExport         bool `json:"supports_parallel_export"`
	MaxExportParallelism           int  `json:"max_export_parallelism"`
	SupportsAutoConfirmExport      bool `json:"supports_auto_confirm_export"`
	SupportsUserSelectedExternalID bool `json:"supports_user_selected_external_id"`
	SupportsUserSelectedAttrTypes  bool `json:"supports_user_selected_attribute_types"`
	SupportsSecondaryExternalID    bool `json:"supports_secondary_external_id"`
}

// ConnectedSystem represents an external source or target of identity
// data, such as a directory, HR system or SaaS application.
type ConnectedSystem struct {
	SystemID      string                `json:"system_id"`
	Name          string                `json:"name"`
	ConnectorType string                `json:"connector_type"`
	Capabilities  ConnectorCapabilities `json:"capabilities"`
	CreatedAt     int64                 `json:"created_at"`
	UpdatedAt     int64                 `json:"updated_at"`
}

// ConnectedObjectType maps an object type of a connected system onto a
// metaverse object type and designates the attribute carrying the
// external identifier (and optionally a secondary one).
type ConnectedObjectType struct {
	SystemID             string `json:"system_id"`
	TypeID               string `json:"type_id"`
	MetaverseTypeID      string `json:"metaverse_type_id"`
	ExternalIDAttribute  string `json:"external_id_attribute"`
	SecondaryIDAttribute string `json:"secondary_external_id_attribute,omitempty"`
}
