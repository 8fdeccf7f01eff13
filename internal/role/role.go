// Copyright 2026 The Rolesmith Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package role holds the Azure custom role definition model and the manager
// that owns the session's current role.
package role

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/rolesmith/rolesmith/internal/permission"
)

// TypeCustomRole is the role type for user-defined roles.
const TypeCustomRole = "CustomRole"

// Definition is an Azure custom role definition. JSON keys match the Azure
// role document format; the core never reads Id/CreatedOn/UpdatedOn, they are
// carried as opaque metadata.
type Definition struct {
	Name             string             `json:"Name"`
	IsCustom         bool               `json:"IsCustom"`
	Description      string             `json:"Description"`
	Type             string             `json:"Type"`
	Permissions      []permission.Block `json:"Permissions"`
	AssignableScopes []string           `json:"AssignableScopes"`
	ID               string             `json:"Id,omitempty"`
	CreatedOn        string             `json:"CreatedOn,omitempty"`
	UpdatedOn        string             `json:"UpdatedOn,omitempty"`
}

// New creates an empty custom role: one empty permission block and the root
// assignable scope.
func New(name, description string) *Definition {
	now := time.Now().UTC().Format(time.RFC3339)
	return &Definition{
		Name:             name,
		IsCustom:         true,
		Description:      description,
		Type:             TypeCustomRole,
		Permissions:      []permission.Block{{}},
		AssignableScopes: []string{"/"},
		ID:               "custom-" + uuid.NewString()[:8],
		CreatedOn:        now,
		UpdatedOn:        now,
	}
}

// Touch updates the modification timestamp.
func (d *Definition) Touch() {
	d.UpdatedOn = time.Now().UTC().Format(time.RFC3339)
}

// ActionCounts returns the total control-plane (Actions+NotActions) and
// data-plane (DataActions+NotDataActions) entry counts across all blocks.
func (d *Definition) ActionCounts() (control, data int) {
	for _, b := range d.Permissions {
		control += len(b.Actions) + len(b.NotActions)
		data += len(b.DataActions) + len(b.NotDataActions)
	}
	return control, data
}

// MarshalIndent renders the definition as the pretty-printed JSON document
// used for files and the catalog.
func (d *Definition) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
