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
	"os"
	"strings"

	"github.com/rolesmith/rolesmith/internal/audit"
	"github.com/rolesmith/rolesmith/internal/permission"
	"github.com/rolesmith/rolesmith/internal/role"
	"github.com/rolesmith/rolesmith/internal/store"
)

// CreateCommand starts a new working role.
type CreateCommand struct {
	*Command
}

func (c *CreateCommand) Synopsis() string {
	return "Create a new custom role as the working role"
}

func (c *CreateCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith create [name] [options]

  Creates a new empty custom role and makes it the working role.

Options:

  -name         Name of the custom role.
  -description  Role description.
`)
}

func (c *CreateCommand) Run(args []string) int {
	f := c.flagSet("create")
	name := f.String("name", "", "role name")
	description := f.String("description", "", "role description")
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

	def := c.Session.Manager.Create(*name, *description)
	c.Session.Audit.Log(c.Context, audit.Event{
		Type:     audit.TypeRoleCreated,
		Resource: def.Name,
	})

	success(c.UI, "Created role '%s'", def.Name)
	printRoleSummary(c.UI, def)
	return 0
}

// LoadCommand loads a role into the workspace. The name resolves in
// order: a path to a JSON file, then the local roles directory, then
// Azure by role name.
type LoadCommand struct {
	*Command
}

func (c *LoadCommand) Synopsis() string {
	return "Load a role from file, the roles directory, or Azure"
}

func (c *LoadCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith load [name] [options]

  Loads a role definition and makes it the working role. The name is
  tried as a file path first, then against the local roles directory,
  and finally against Azure role definitions in the active
  subscription.

Options:

  -name             Role name or file path.
  -subscription-id  Subscription to use for the Azure fallback.
`)
}

func (c *LoadCommand) Run(args []string) int {
	f := c.flagSet("load")
	name := f.String("name", "", "role name or path")
	subscription := f.String("subscription-id", "", "subscription id")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *name == "" && f.NArg() > 0 {
		*name = f.Arg(0)
	}
	if *name == "" {
		errorf(c.UI, "a role name or file path is required")
		return 1
	}
	if *subscription != "" {
		c.Session.UseSubscription(*subscription)
	}

	def, origin, err := c.resolve(*name)
	if err != nil {
		errorf(c.UI, "failed to load role '%s': %s", *name, err)
		return 1
	}
	if def == nil {
		errorf(c.UI, "role '%s' not found locally or in Azure", *name)
		return 1
	}

	c.Session.Manager.SetCurrent(def)
	c.Session.Audit.Log(c.Context, audit.Event{
		Type:     audit.TypeRoleLoaded,
		Resource: def.Name,
		Metadata: map[string]any{"origin": origin},
	})

	success(c.UI, "Loaded role '%s' (%s)", def.Name, origin)
	printRoleSummary(c.UI, def)
	return 0
}

func (c *LoadCommand) resolve(name string) (def *role.Definition, origin string, err error) {
	// File path
	if strings.HasSuffix(name, ".json") {
		if _, statErr := os.Stat(name); statErr == nil {
			d, loadErr := c.Session.Files.Load(name)
			if loadErr != nil {
				return nil, "", loadErr
			}
			return d, "file", nil
		}
	}

	// Local roles directory
	d, loadErr := c.Session.Files.LoadByName(name)
	if loadErr == nil {
		return d, "local", nil
	}
	if !errors.Is(loadErr, store.ErrNotFound) {
		return nil, "", loadErr
	}

	// Azure fallback
	client, azErr := c.Session.AzureClient()
	if azErr != nil {
		return nil, "", azErr
	}
	d, azErr = client.GetByName(c.Context, name)
	if azErr != nil {
		return nil, "", azErr
	}
	if d == nil {
		return nil, "", nil
	}
	return d, "azure", nil
}

// ViewCommand shows the working role.
type ViewCommand struct {
	*Command
}

func (c *ViewCommand) Synopsis() string {
	return "Show the working role"
}

func (c *ViewCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith view [options]

  Prints the working role with actions grouped by provider namespace.
  Long action lists are truncated unless -all is set.

Options:

  -all   Show every action without truncation.
  -json  Print the raw role document instead.
`)
}

func (c *ViewCommand) Run(args []string) int {
	f := c.flagSet("view")
	showAll := f.Bool("all", false, "show every action")
	asJSON := f.Bool("json", false, "print raw JSON")
	if err := f.Parse(args); err != nil {
		return 1
	}

	def, err := c.Session.Manager.Require()
	if err != nil {
		errorf(c.UI, "no role is currently loaded; use create or load first")
		return 1
	}

	if *asJSON {
		data, err := def.MarshalIndent()
		if err != nil {
			errorf(c.UI, "failed to render role: %s", err)
			return 1
		}
		c.UI.Output(string(data))
		return 0
	}

	printRoleDetails(c.UI, def, *showAll)
	return 0
}

// SaveCommand writes the working role to the roles directory.
type SaveCommand struct {
	*Command
}

func (c *SaveCommand) Synopsis() string {
	return "Save the working role to the roles directory"
}

func (c *SaveCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith save [options]

  Writes the working role as JSON into the roles directory. The file
  name is derived from the role name.

Options:

  -output     Explicit output path, bypassing the roles directory.
  -overwrite  Replace an existing file.
`)
}

func (c *SaveCommand) Run(args []string) int {
	f := c.flagSet("save")
	output := f.String("output", "", "output path")
	overwrite := f.Bool("overwrite", false, "overwrite existing file")
	if err := f.Parse(args); err != nil {
		return 1
	}

	def, err := c.Session.Manager.Require()
	if err != nil {
		errorf(c.UI, "no role is currently loaded; use create or load first")
		return 1
	}

	var path string
	if *output != "" {
		path, err = c.Session.Files.Save(def, *output, *overwrite)
	} else {
		path, err = c.Session.Files.SaveByName(def, *overwrite)
	}
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			errorf(c.UI, "file already exists; pass -overwrite to replace it")
			return 1
		}
		errorf(c.UI, "failed to save role: %s", err)
		return 1
	}

	c.Session.Audit.Log(c.Context, audit.Event{
		Type:     audit.TypeRoleSaved,
		Resource: def.Name,
		Metadata: map[string]any{"path": path},
	})

	success(c.UI, "Saved role '%s' to %s", def.Name, path)
	return 0
}

// ListCommand lists saved roles.
type ListCommand struct {
	*Command
}

func (c *ListCommand) Synopsis() string {
	return "List saved roles"
}

func (c *ListCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith list [name]

  Lists the role documents in the roles directory. With a name, shows
  that role's summary instead.
`)
}

func (c *ListCommand) Run(args []string) int {
	f := c.flagSet("list")
	if err := f.Parse(args); err != nil {
		return 1
	}

	if f.NArg() > 0 {
		def, err := c.Session.Files.LoadByName(f.Arg(0))
		if err != nil {
			errorf(c.UI, "role '%s' not found in %s", f.Arg(0), c.Session.Files.Dir())
			return 1
		}
		printRoleDetails(c.UI, def, false)
		return 0
	}

	names, err := c.Session.Files.List()
	if err != nil {
		errorf(c.UI, "failed to list roles: %s", err)
		return 1
	}
	if len(names) == 0 {
		c.UI.Output("No saved roles in " + c.Session.Files.Dir())
		return 0
	}
	for _, name := range names {
		c.UI.Output("  " + name)
	}
	return 0
}

// DeleteCommand removes saved role documents.
type DeleteCommand struct {
	*Command
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete saved roles"
}

func (c *DeleteCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith delete [name] [options]

  Deletes role documents from the roles directory. Either a single
  name or a -filter pattern must be given. Bulk deletion asks for
  confirmation unless -force is set.

Options:

  -filter  Pattern selecting roles to delete (e.g. '%test%').
  -force   Skip the confirmation prompt.
`)
}

func (c *DeleteCommand) Run(args []string) int {
	f := c.flagSet("delete")
	filter := f.String("filter", "", "name pattern")
	force := f.Bool("force", false, "skip confirmation")
	if err := f.Parse(args); err != nil {
		return 1
	}

	if f.NArg() > 0 {
		name := f.Arg(0)
		found, err := c.Session.Files.Delete(name)
		if err != nil {
			errorf(c.UI, "failed to delete role '%s': %s", name, err)
			return 1
		}
		if !found {
			errorf(c.UI, "role '%s' not found in %s", name, c.Session.Files.Dir())
			return 1
		}
		c.Session.Audit.Log(c.Context, audit.Event{
			Type:     audit.TypeRoleDeleted,
			Resource: name,
		})
		success(c.UI, "Deleted role '%s'", name)
		return 0
	}

	if *filter == "" {
		errorf(c.UI, "a role name or -filter is required")
		return 1
	}

	names, err := c.Session.Files.List()
	if err != nil {
		errorf(c.UI, "failed to list roles: %s", err)
		return 1
	}
	matched := permission.FilterByString(names, *filter)
	if len(matched) == 0 {
		c.UI.Output("No saved roles match " + *filter)
		return 0
	}

	if !*force {
		c.UI.Output("The following roles will be deleted:")
		for _, name := range matched {
			c.UI.Output("  " + name)
		}
		answer, err := c.UI.Ask("Delete these roles? (y/N)")
		if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
			c.UI.Output("Aborted.")
			return 0
		}
	}

	deleted := 0
	for _, name := range matched {
		found, err := c.Session.Files.Delete(name)
		if err != nil {
			warn(c.UI, "failed to delete '%s': %s", name, err)
			continue
		}
		if found {
			deleted++
			c.Session.Audit.Log(c.Context, audit.Event{
				Type:     audit.TypeRoleDeleted,
				Resource: name,
			})
		}
	}
	success(c.UI, "Deleted %d role(s)", deleted)
	return 0
}
