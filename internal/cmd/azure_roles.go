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
	"fmt"
	"sort"
	"strings"

	"github.com/rolesmith/rolesmith/internal/audit"
	"github.com/rolesmith/rolesmith/internal/azure"
	"github.com/rolesmith/rolesmith/internal/permission"
	"github.com/rolesmith/rolesmith/internal/role"
)

// PublishCommand pushes the working role to Azure.
type PublishCommand struct {
	*Command
}

func (c *PublishCommand) Synopsis() string {
	return "Publish the working role to Azure"
}

func (c *PublishCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith publish [options]

  Creates or updates the working role as a custom role definition in
  the active subscription.

Options:

  -subscription-id  Subscription to publish into.
`)
}

func (c *PublishCommand) Run(args []string) int {
	f := c.flagSet("publish")
	subscription := f.String("subscription-id", "", "subscription id")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *subscription != "" {
		c.Session.UseSubscription(*subscription)
	}

	def, err := c.Session.Manager.Require()
	if err != nil {
		errorf(c.UI, "no role is currently loaded; use create or load first")
		return 1
	}

	client, err := c.Session.AzureClient()
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	published, err := client.Publish(c.Context, def)
	if err != nil {
		errorf(c.UI, "failed to publish role: %s", err)
		return 1
	}
	c.Session.Manager.SetCurrent(published)

	c.Session.Audit.Log(c.Context, audit.Event{
		Type:           audit.TypeRolePublished,
		SubscriptionID: client.SubscriptionID(),
		Resource:       published.Name,
	})

	success(c.UI, "Role published to Azure")
	c.UI.Output("  ID:   " + published.ID)
	c.UI.Output("  Name: " + published.Name)
	return 0
}

// UnpublishCommand deletes a custom role definition from Azure.
type UnpublishCommand struct {
	*Command
}

func (c *UnpublishCommand) Synopsis() string {
	return "Delete a custom role definition from Azure"
}

func (c *UnpublishCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith unpublish [name] [options]

  Deletes a custom role definition from the active subscription.
  Built-in roles cannot be deleted.

Options:

  -name             Role name.
  -subscription-id  Subscription to delete from.
`)
}

func (c *UnpublishCommand) Run(args []string) int {
	f := c.flagSet("unpublish")
	name := f.String("name", "", "role name")
	subscription := f.String("subscription-id", "", "subscription id")
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
	if *subscription != "" {
		c.Session.UseSubscription(*subscription)
	}

	client, err := c.Session.AzureClient()
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	def, err := client.GetByName(c.Context, *name)
	if err != nil {
		errorf(c.UI, "failed to look up role '%s': %s", *name, err)
		return 1
	}
	if def == nil {
		errorf(c.UI, "role '%s' not found in subscription %s", *name, client.SubscriptionID())
		return 1
	}
	if !def.IsCustom {
		errorf(c.UI, "'%s' is a built-in role and cannot be deleted", def.Name)
		return 1
	}

	if err := client.Delete(c.Context, def.ID); err != nil {
		errorf(c.UI, "failed to delete role: %s", err)
		return 1
	}

	c.Session.Audit.Log(c.Context, audit.Event{
		Type:           audit.TypeRoleUnpublished,
		SubscriptionID: client.SubscriptionID(),
		Resource:       def.Name,
	})

	success(c.UI, "Deleted role '%s' from Azure", def.Name)
	return 0
}

// ListAzureCommand lists custom roles in the active subscription.
type ListAzureCommand struct {
	*Command
}

func (c *ListAzureCommand) Synopsis() string {
	return "List custom roles in the active subscription"
}

func (c *ListAzureCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith list-azure [options]

Options:

  -subscription-id  Subscription to list.
`)
}

func (c *ListAzureCommand) Run(args []string) int {
	f := c.flagSet("list-azure")
	subscription := f.String("subscription-id", "", "subscription id")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *subscription != "" {
		c.Session.UseSubscription(*subscription)
	}

	client, err := c.Session.AzureClient()
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	roles, err := client.ListCustomRoles(c.Context, client.Scope())
	if err != nil {
		errorf(c.UI, "failed to list roles: %s", err)
		return 1
	}
	if len(roles) == 0 {
		c.UI.Output("No custom roles found in subscription " + client.SubscriptionID())
		return 0
	}

	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	for _, r := range roles {
		control, data := r.ActionCounts()
		c.UI.Output(fmt.Sprintf("  %-40s %4d control, %4d data", r.Name, control, data))
	}
	c.UI.Output(fmt.Sprintf("%d custom role(s)", len(roles)))
	return 0
}

// ViewAzureCommand shows a role from Azure, built-in or custom.
type ViewAzureCommand struct {
	*Command
}

func (c *ViewAzureCommand) Synopsis() string {
	return "Show an Azure role's permissions"
}

func (c *ViewAzureCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith view-azure [name] [options]

  Fetches a role definition from Azure by name and prints its
  permissions. Works for built-in and custom roles.

Options:

  -name             Role name.
  -filter           Pattern to narrow the displayed permissions.
  -all              Show every action without truncation.
  -subscription-id  Subscription to query.
`)
}

func (c *ViewAzureCommand) Run(args []string) int {
	f := c.flagSet("view-azure")
	name := f.String("name", "", "role name")
	filter := f.String("filter", "", "string pattern")
	showAll := f.Bool("all", false, "show every action")
	subscription := f.String("subscription-id", "", "subscription id")
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
	if *subscription != "" {
		c.Session.UseSubscription(*subscription)
	}

	client, err := c.Session.AzureClient()
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	def, err := client.GetByName(c.Context, *name)
	if err != nil {
		errorf(c.UI, "failed to fetch role: %s", err)
		return 1
	}
	if def == nil {
		errorf(c.UI, "role not found: %s", *name)
		return 1
	}

	if *filter != "" {
		def = filterDefinition(def, *filter)
	}
	printRoleDetails(c.UI, def, *showAll)
	return 0
}

// filterDefinition returns a copy with only the permissions matching
// the pattern, for display purposes.
func filterDefinition(d *role.Definition, pattern string) *role.Definition {
	out := *d
	out.Permissions = make([]permission.Block, len(d.Permissions))
	for i, b := range d.Permissions {
		out.Permissions[i] = permission.Block{
			Actions:        permission.FilterByString(b.Actions, pattern),
			NotActions:     permission.FilterByString(b.NotActions, pattern),
			DataActions:    permission.FilterByString(b.DataActions, pattern),
			NotDataActions: permission.FilterByString(b.NotDataActions, pattern),
		}
	}
	return &out
}

// SearchPermissionsCommand searches every role in the subscription for
// matching actions and reports which roles grant them.
type SearchPermissionsCommand struct {
	*Command
}

func (c *SearchPermissionsCommand) Synopsis() string {
	return "Search all Azure roles for matching permissions"
}

func (c *SearchPermissionsCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith search-permissions [pattern] [options]

  Scans every role definition in the subscription (built-in and
  custom) and lists the permissions matching the pattern, together
  with the roles that grant them.

Options:

  -filter           Permission pattern (e.g. 'Storage%', '%delete').
  -subscription-id  Subscription to search.
`)
}

func (c *SearchPermissionsCommand) Run(args []string) int {
	f := c.flagSet("search-permissions")
	filter := f.String("filter", "", "permission pattern")
	subscription := f.String("subscription-id", "", "subscription id")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *filter == "" && f.NArg() > 0 {
		*filter = f.Arg(0)
	}
	if *filter == "" {
		errorf(c.UI, "a permission pattern is required")
		return 1
	}
	if *subscription != "" {
		c.Session.UseSubscription(*subscription)
	}

	client, err := c.Session.AzureClient()
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	roles, err := client.ListAllRoles(c.Context, client.Scope())
	if err != nil {
		errorf(c.UI, "failed to list roles: %s", err)
		return 1
	}

	actions, dataActions := collectMatches(roles, *filter)
	merged := make(map[string]map[string]struct{}, len(actions)+len(dataActions))
	for perm, owners := range actions {
		merged[perm] = owners
	}
	for perm, owners := range dataActions {
		if existing, ok := merged[perm]; ok {
			for owner := range owners {
				existing[owner] = struct{}{}
			}
			continue
		}
		merged[perm] = owners
	}

	if len(merged) == 0 {
		c.UI.Output("No permissions found matching: " + *filter)
		return 0
	}

	perms := make([]string, 0, len(merged))
	for perm := range merged {
		perms = append(perms, perm)
	}
	sort.Strings(perms)

	for _, perm := range perms {
		owners := permission.SortedKeys(merged[perm])
		preview := strings.Join(owners, ", ")
		if len(owners) > 3 {
			preview = strings.Join(owners[:3], ", ") + fmt.Sprintf(" (+%d more)", len(owners)-3)
		}
		c.UI.Output("  " + perm)
		c.UI.Output("    granted by: " + preview)
	}
	c.UI.Output(fmt.Sprintf("Found %d unique permission(s) matching '%s'.", len(perms), *filter))
	return 0
}

// ImportAzurePermissionsCommand merges matching permissions from every
// Azure role into the working role.
type ImportAzurePermissionsCommand struct {
	*Command
}

func (c *ImportAzurePermissionsCommand) Synopsis() string {
	return "Import matching permissions from all Azure roles"
}

func (c *ImportAzurePermissionsCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith import-azure-permissions [pattern] [options]

  Searches every role definition in the subscription for permissions
  matching the pattern and merges the matches into the working role.
  Control and data plane placement follows the source roles.

Options:

  -filter           Permission pattern (e.g. '%keyvault%/read').
  -subscription-id  Subscription to search.
`)
}

func (c *ImportAzurePermissionsCommand) Run(args []string) int {
	f := c.flagSet("import-azure-permissions")
	filter := f.String("filter", "", "permission pattern")
	subscription := f.String("subscription-id", "", "subscription id")
	if err := f.Parse(args); err != nil {
		return 1
	}
	if *filter == "" && f.NArg() > 0 {
		*filter = f.Arg(0)
	}
	if *filter == "" {
		errorf(c.UI, "a permission pattern is required")
		return 1
	}
	if !c.Session.Manager.HasCurrent() {
		errorf(c.UI, "no role is currently loaded; use create or load first")
		return 1
	}
	if *subscription != "" {
		c.Session.UseSubscription(*subscription)
	}

	client, err := c.Session.AzureClient()
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	roles, err := client.ListAllRoles(c.Context, client.Scope())
	if err != nil {
		errorf(c.UI, "failed to list roles: %s", err)
		return 1
	}

	actions, dataActions := collectMatches(roles, *filter)
	if len(actions) == 0 && len(dataActions) == 0 {
		c.UI.Output("No permissions found matching: " + *filter)
		return 0
	}

	incoming := &role.Definition{
		Name: "azure-import",
		Permissions: []permission.Block{{
			Actions:     permission.SortedKeys(setOf(actions)),
			DataActions: permission.SortedKeys(setOf(dataActions)),
		}},
	}

	updated, err := c.Session.Manager.Merge([]*role.Definition{incoming}, "", "")
	if err != nil {
		errorf(c.UI, "import failed: %s", err)
		return 1
	}

	c.Session.Audit.Log(c.Context, audit.Event{
		Type:           audit.TypeRoleMerged,
		SubscriptionID: client.SubscriptionID(),
		Resource:       updated.Name,
		Metadata: map[string]any{
			"string_filter": *filter,
			"origin":        "azure-import",
		},
	})

	success(c.UI, "Imported %d control and %d data permission(s)", len(actions), len(dataActions))
	printRoleSummary(c.UI, updated)
	return 0
}

// collectMatches scans role permission blocks for actions matching the
// pattern, keyed by action with the set of granting role names.
func collectMatches(roles []*role.Definition, pattern string) (actions, dataActions map[string]map[string]struct{}) {
	actions = make(map[string]map[string]struct{})
	dataActions = make(map[string]map[string]struct{})
	record := func(into map[string]map[string]struct{}, perms []string, owner string) {
		for _, p := range permission.FilterByString(perms, pattern) {
			if into[p] == nil {
				into[p] = make(map[string]struct{})
			}
			into[p][owner] = struct{}{}
		}
	}
	for _, r := range roles {
		for _, block := range r.Permissions {
			record(actions, block.Actions, r.Name)
			record(dataActions, block.DataActions, r.Name)
		}
	}
	return actions, dataActions
}

func setOf(m map[string]map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

// WhoamiCommand reports the signed-in Azure identity.
type WhoamiCommand struct {
	*Command
}

func (c *WhoamiCommand) Synopsis() string {
	return "Show the signed-in Azure identity"
}

func (c *WhoamiCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith whoami

  Acquires an ARM token and prints the tenant and principal it was
  issued to.
`)
}

func (c *WhoamiCommand) Run(args []string) int {
	cred, err := c.Session.Credential()
	if err != nil {
		errorf(c.UI, "%s", err)
		return 1
	}

	principal, err := azure.WhoAmI(c.Context, cred)
	if err != nil {
		errorf(c.UI, "failed to identify caller: %s", err)
		return 1
	}

	if principal.PrincipalName != "" {
		c.UI.Output("  principal: " + principal.PrincipalName)
	}
	if principal.ObjectID != "" {
		c.UI.Output("  object id: " + principal.ObjectID)
	}
	if principal.AppID != "" {
		c.UI.Output("  app id:    " + principal.AppID)
	}
	c.UI.Output("  tenant:    " + principal.TenantID)
	if c.Session.SubscriptionID != "" {
		c.UI.Output("  subscription: " + c.Session.SubscriptionID)
	}
	return 0
}
