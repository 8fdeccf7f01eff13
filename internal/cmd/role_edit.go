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

package cmd

import (
	"errors"
	"strings"

	"github.com/rolesmith/rolesmith/internal/audit"
	"github.com/rolesmith/rolesmith/internal/permission"
	"github.com/rolesmith/rolesmith/internal/role"
	"github.com/rolesmith/rolesmith/internal/store"
)

// MergeCommand merges permissions from source roles into the working role.
type MergeCommand struct {
	*Command
}

func (c *MergeCommand) Synopsis() string {
	return "Merge permissions from other roles into the working role"
}

func (c *MergeCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith merge [roles] [options]

  Merges permissions from one or more source roles into the working
  role. Sources are resolved against the local roles directory first,
  then against Azure. Filters narrow what gets merged; existing
  permissions on the working role are always preserved.

  In patterns, '%' matches any run of characters and '?' a single
  character; '*' is literal. A pattern without wildcards matches as a
  substring.

Options:

  -roles        Comma-separated list of source role names.
  -filter       Pattern applied to incoming permissions (e.g. 'Storage%').
  -filter-type  'control' or 'data'.
`)
}

func (c *MergeCommand) Run(args []string) int {
	f := c.flagSet("merge")
	rolesFlag := f.String("roles", "", "comma-separated role names")
	filter := f.String("filter", "", "string pattern")
	filterType := f.String("filter-type", "", "control or data")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *rolesFlag == "" && f.NArg() > 0 {
		*rolesFlag = f.Arg(0)
	}
	if *rolesFlag == "" {
		errorf(c.UI, "a comma-separated list of source roles is required")
		return 1
	}
	if !c.Session.Manager.HasCurrent() {
		errorf(c.UI, "no role is currently loaded; use create or load first")
		return 1
	}

	typeFilter, err := parseTypeFlag(*filterType)
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	var sources []*role.Definition
	var failed []string
	for _, name := range strings.Split(*rolesFlag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		src, origin, resolveErr := c.resolveSource(name)
		if resolveErr != nil {
			errorf(c.UI, "failed to resolve role '%s': %s", name, resolveErr)
			return 1
		}
		if src == nil {
			failed = append(failed, name)
			continue
		}
		if origin == "azure" {
			c.UI.Output("Loaded '" + name + "' from Azure")
		}
		sources = append(sources, src)
	}

	if len(failed) > 0 {
		warn(c.UI, "Roles not found (local or Azure): %s", strings.Join(failed, ", "))
	}
	if len(sources) == 0 {
		errorf(c.UI, "no source roles could be loaded")
		return 1
	}

	updated, err := c.Session.Manager.Merge(sources, *filter, typeFilter)
	if err != nil {
		errorf(c.UI, "merge failed: %s", err)
		return 1
	}

	c.Session.Audit.Log(c.Context, audit.Event{
		Type:     audit.TypeRoleMerged,
		Resource: updated.Name,
		Metadata: map[string]any{
			"sources":       len(sources),
			"string_filter": *filter,
			"type_filter":   *filterType,
		},
	})

	success(c.UI, "Merged permissions from %d role(s)", len(sources))
	printRoleSummary(c.UI, updated)
	return 0
}

func (c *MergeCommand) resolveSource(name string) (*role.Definition, string, error) {
	d, err := c.Session.Files.LoadByName(name)
	if err == nil {
		return d, "local", nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, "", err
	}

	client, err := c.Session.AzureClient()
	if err != nil {
		return nil, "", err
	}
	d, err = client.GetByName(c.Context, name)
	if err != nil {
		return nil, "", err
	}
	if d == nil {
		return nil, "", nil
	}
	return d, "azure", nil
}

// RemoveCommand strips permissions from the working role.
type RemoveCommand struct {
	*Command
}

func (c *RemoveCommand) Synopsis() string {
	return "Remove permissions from the working role"
}

func (c *RemoveCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith remove [options]

  Removes matching permissions from the working role. At least one
  filter is required; removing with both filters removes only actions
  matching both.

Options:

  -filter       Pattern selecting permissions to remove.
  -filter-type  'control' or 'data'.
`)
}

func (c *RemoveCommand) Run(args []string) int {
	f := c.flagSet("remove")
	filter := f.String("filter", "", "string pattern")
	filterType := f.String("filter-type", "", "control or data")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if !c.Session.Manager.HasCurrent() {
		errorf(c.UI, "no role is currently loaded; use create or load first")
		return 1
	}
	if *filter == "" && *filterType == "" {
		errorf(c.UI, "specify -filter and/or -filter-type")
		return 1
	}

	typeFilter, err := parseTypeFlag(*filterType)
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	updated, err := c.Session.Manager.Remove(*filter, typeFilter)
	if err != nil {
		errorf(c.UI, "remove failed: %s", err)
		return 1
	}

	c.Session.Audit.Log(c.Context, audit.Event{
		Type:     audit.TypeRoleTrimmed,
		Resource: updated.Name,
		Metadata: map[string]any{
			"string_filter": *filter,
			"type_filter":   *filterType,
		},
	})

	success(c.UI, "Removed permissions")
	printRoleSummary(c.UI, updated)
	return 0
}

// SetNameCommand renames the working role.
type SetNameCommand struct {
	*Command
}

func (c *SetNameCommand) Synopsis() string {
	return "Change the working role's name"
}

func (c *SetNameCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith set-name -name=<name>
`)
}

func (c *SetNameCommand) Run(args []string) int {
	f := c.flagSet("set-name")
	name := f.String("name", "", "new role name")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *name == "" && f.NArg() > 0 {
		*name = f.Arg(0)
	}
	if *name == "" {
		errorf(c.UI, "a name is required")
		return 1
	}

	updated, err := c.Session.Manager.SetName(*name)
	if err != nil {
		errorf(c.UI, "no role is currently loaded; use create or load first")
		return 1
	}
	success(c.UI, "Renamed role to '%s'", updated.Name)
	return 0
}

// SetDescriptionCommand updates the working role's description.
type SetDescriptionCommand struct {
	*Command
}

func (c *SetDescriptionCommand) Synopsis() string {
	return "Change the working role's description"
}

func (c *SetDescriptionCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith set-description -description=<text>
`)
}

func (c *SetDescriptionCommand) Run(args []string) int {
	f := c.flagSet("set-description")
	description := f.String("description", "", "new description")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *description == "" && f.NArg() > 0 {
		*description = f.Arg(0)
	}
	if *description == "" {
		errorf(c.UI, "a description is required")
		return 1
	}

	if _, err := c.Session.Manager.SetDescription(*description); err != nil {
		errorf(c.UI, "no role is currently loaded; use create or load first")
		return 1
	}
	success(c.UI, "Updated description")
	return 0
}

// SetScopesCommand replaces the working role's assignable scopes.
type SetScopesCommand struct {
	*Command
}

func (c *SetScopesCommand) Synopsis() string {
	return "Replace the working role's assignable scopes"
}

func (c *SetScopesCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith set-scopes -scopes=<scopes>

  Replaces the assignable scopes with a comma-separated list, e.g.
  '/subscriptions/0000...,/subscriptions/1111...'.
`)
}

func (c *SetScopesCommand) Run(args []string) int {
	f := c.flagSet("set-scopes")
	scopesFlag := f.String("scopes", "", "comma-separated scopes")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *scopesFlag == "" && f.NArg() > 0 {
		*scopesFlag = f.Arg(0)
	}
	if *scopesFlag == "" {
		errorf(c.UI, "a comma-separated list of scopes is required")
		return 1
	}

	var scopes []string
	for _, s := range strings.Split(*scopesFlag, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	if len(scopes) == 0 {
		errorf(c.UI, "a comma-separated list of scopes is required")
		return 1
	}

	updated, err := c.Session.Manager.SetScopes(scopes)
	if err != nil {
		errorf(c.UI, "no role is currently loaded; use create or load first")
		return 1
	}
	success(c.UI, "Set %d assignable scope(s)", len(updated.AssignableScopes))
	return 0
}

func parseTypeFlag(s string) (permission.Type, error) {
	if s == "" {
		return "", nil
	}
	return permission.ParseType(s)
}
