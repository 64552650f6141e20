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

// Package connector defines the boundary between the synchronization
// engine and connected systems. Connector implementations are registered
// per system at startup; the engine never talks to an external system
// except through this interface.
package connector

import (
	"context"
	"fmt"
	"sync"

	attribute "github.com/wso2/identity-metadirectory-service/internal/attribute/model"
	"github.com/wso2/identity-metadirectory-service/internal/connectedsystem/model"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
)

// ImportedObject is one object emitted by a connector import. Deleted
// is only meaningful for delta imports, where it marks an object removed
// from the connected system since the previous run.
type ImportedObject struct {
	TypeID              string
	ExternalID          string
	SecondaryExternalID string
	Attributes          map[string]attribute.Value
	Deleted             bool
}

// Connector is implemented once per connector type. Imports produce a
// lazily consumed finite stream; the error channel carries at most one
// terminal error and both channels close when the import ends.
type Connector interface {

	// Capabilities declares the connector's capability flags. The engine
	// treats them as configuration, not suggestions.
	Capabilities() model.ConnectorCapabilities

	// FullImport streams every object the connected system currently holds.
	FullImport(ctx context.Context) (<-chan ImportedObject, <-chan error)

	// DeltaImport streams only objects changed or deleted since the
	// previous import run.
	DeltaImport(ctx context.Context) (<-chan ImportedObject, <-chan error)

	// ExportChange delivers one attribute value to the connected system.
	ExportChange(ctx context.Context, object model.ConnectedObject, attributeName string,
		value attribute.Value) error

	// DeleteObject requests the connected system remove the object, the
	// outbound side of a request_delete deprovision action.
	DeleteObject(ctx context.Context, object model.ConnectedObject) error
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Connector)
)

// Register binds a connector to a connected system id. Re-registering
// replaces the previous binding.
func Register(systemID string, c Connector) {

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[systemID] = c
}

// Unregister removes the connector binding of a system, part of the
// delete-connected-system pipeline.
func Unregister(systemID string) {

	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, systemID)
}

// Get resolves the connector of a system.
func Get(systemID string) (Connector, error) {

	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[systemID]
	if !ok {
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.CONNECTOR_UNAVAILABLE.Code,
			Message:     errors2.CONNECTOR_UNAVAILABLE.Message,
			Description: fmt.Sprintf("No connector registered for system: %s", systemID),
		}, nil)
	}
	return c, nil
}
