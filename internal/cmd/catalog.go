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
	"fmt"
	"strings"

	"github.com/rolesmith/rolesmith/internal/audit"
	"github.com/rolesmith/rolesmith/internal/azure"
	"github.com/rolesmith/rolesmith/internal/store/postgres"
)

// CatalogListCommand lists roles in the shared catalog.
type CatalogListCommand struct {
	*Command
}

func (c *CatalogListCommand) Synopsis() string {
	return "List roles in the shared catalog"
}

func (c *CatalogListCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith catalog list

  Lists the role documents in the shared team catalog.
`)
}

func (c *CatalogListCommand) Run(args []string) int {
	catalog, err := c.Session.Catalog(c.Context)
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	entries, err := catalog.List(c.Context)
	if err != nil {
		errorf(c.UI, "failed to list catalog: %s", err)
		return 1
	}
	if len(entries) == 0 {
		c.UI.Output("The catalog is empty")
		return 0
	}

	for _, e := range entries {
		line := fmt.Sprintf("  %-30s %s", e.Slug, e.Name)
		if e.PushedBy != "" {
			line += "  (pushed by " + e.PushedBy + ")"
		}
		c.UI.Output(line)
	}
	c.UI.Output(fmt.Sprintf("%d catalog role(s)", len(entries)))
	return 0
}

// CatalogPushCommand publishes the working role to the shared catalog.
type CatalogPushCommand struct {
	*Command
}

func (c *CatalogPushCommand) Synopsis() string {
	return "Push the working role to the shared catalog"
}

func (c *CatalogPushCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith catalog push

  Uploads the working role to the shared team catalog, replacing any
  earlier version with the same name. The pushing identity is
  recorded when Azure credentials are available.
`)
}

func (c *CatalogPushCommand) Run(args []string) int {
	def, err := c.Session.Manager.Require()
	if err != nil {
		errorf(c.UI, "no role is currently loaded; use create or load first")
		return 1
	}

	catalog, err := c.Session.Catalog(c.Context)
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	// Best effort: record who pushed, when a credential is at hand.
	pushedBy := ""
	if cred, credErr := c.Session.Credential(); credErr == nil {
		if principal, whoErr := azure.WhoAmI(c.Context, cred); whoErr == nil {
			pushedBy = principal.PrincipalName
		}
	}

	if err := catalog.Put(c.Context, def, pushedBy); err != nil {
		errorf(c.UI, "failed to push role: %s", err)
		return 1
	}

	c.Session.Audit.Log(c.Context, audit.Event{
		Type:     audit.TypeCatalogPushed,
		ActorID:  pushedBy,
		Resource: def.Name,
	})

	success(c.UI, "Pushed role '%s' to the catalog", def.Name)
	return 0
}

// CatalogPullCommand loads a role from the shared catalog.
type CatalogPullCommand struct {
	*Command
}

func (c *CatalogPullCommand) Synopsis() string {
	return "Pull a role from the shared catalog"
}

func (c *CatalogPullCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith catalog pull [name]

  Fetches a role from the shared team catalog and makes it the
  working role.
`)
}

func (c *CatalogPullCommand) Run(args []string) int {
	f := c.flagSet("catalog pull")
	name := f.String("name", "", "role name")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *name == "" && f.NArg() > 0 {
		*name = f.Arg(0)
	}
	if *name == "" {
		errorf(c.UI, "a role name is required")
		return 1
	}

	catalog, err := c.Session.Catalog(c.Context)
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	def, err := catalog.Get(c.Context, *name)
	if err != nil {
		if errors.Is(err, postgres.ErrCatalogRoleNotFound) {
			errorf(c.UI, "role '%s' not found in the catalog", *name)
			return 1
		}
		errorf(c.UI, "failed to pull role: %s", err)
		return 1
	}

	c.Session.Manager.SetCurrent(def)
	c.Session.Audit.Log(c.Context, audit.Event{
		Type:     audit.TypeCatalogPulled,
		Resource: def.Name,
	})

	success(c.UI, "Pulled role '%s' from the catalog", def.Name)
	printRoleSummary(c.UI, def)
	return 0
}

// CatalogDeleteCommand removes a role from the shared catalog.
type CatalogDeleteCommand struct {
	*Command
}

func (c *CatalogDeleteCommand) Synopsis() string {
	return "Delete a role from the shared catalog"
}

func (c *CatalogDeleteCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith catalog delete [name]
`)
}

func (c *CatalogDeleteCommand) Run(args []string) int {
	f := c.flagSet("catalog delete")
	name := f.String("name", "", "role name")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *name == "" && f.NArg() > 0 {
		*name = f.Arg(0)
	}
	if *name == "" {
		errorf(c.UI, "a role name is required")
		return 1
	}

	catalog, err := c.Session.Catalog(c.Context)
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	if err := catalog.Delete(c.Context, *name); err != nil {
		if errors.Is(err, postgres.ErrCatalogRoleNotFound) {
			errorf(c.UI, "role '%s' not found in the catalog", *name)
			return 1
		}
		errorf(c.UI, "failed to delete role: %s", err)
		return 1
	}

	c.Session.Audit.Log(c.Context, audit.Event{
		Type:     audit.TypeCatalogDeleted,
		Resource: *name,
	})

	success(c.UI, "Deleted role '%s' from the catalog", *name)
	return 0
}
