package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/cli"

	"github.com/rolesmith/rolesmith/internal/role"
)

var (
	successMark = color.New(color.FgGreen).SprintFunc()
	warnMark    = color.New(color.FgYellow).SprintFunc()
	errorMark   = color.New(color.FgRed).SprintFunc()
	headerText  = color.New(color.Bold).SprintFunc()
)

func success(ui cli.Ui, format string, args ...any) {
	ui.Output(successMark("✓ ") + fmt.Sprintf(format, args...))
}

func warn(ui cli.Ui, format string, args ...any) {
	ui.Warn(warnMark("⚠ ") + fmt.Sprintf(format, args...))
}

func errorf(ui cli.Ui, format string, args ...any) {
	ui.Error(errorMark("✗ ") + fmt.Sprintf(format, args...))
}

// printRoleSummary prints a one-role overview: name, id, counts.
func printRoleSummary(ui cli.Ui, d *role.Definition) {
	control, data := d.ActionCounts()
	ui.Output(headerText(d.Name))
	if d.ID != "" {
		ui.Output("  id:          " + d.ID)
	}
	if d.Description != "" {
		ui.Output("  description: " + d.Description)
	}
	ui.Output(fmt.Sprintf("  actions:     %d control, %d data", control, data))
	if len(d.AssignableScopes) > 0 {
		ui.Output("  scopes:      " + strings.Join(d.AssignableScopes, ", "))
	}
}

// Action listing limits: per-namespace display is truncated so a role
// built from Reader-sized sources stays readable.
const (
	maxNamespaces       = 10
	maxActionsPerPrefix = 5
)

// printRoleDetails prints the role grouped by provider namespace. With
// full set, nothing is truncated.
func printRoleDetails(ui cli.Ui, d *role.Definition, full bool) {
	printRoleSummary(ui, d)

	for _, block := range d.Permissions {
		printActionGroup(ui, "Actions", block.Actions, full)
		printActionGroup(ui, "NotActions", block.NotActions, full)
		printActionGroup(ui, "DataActions", block.DataActions, full)
		printActionGroup(ui, "NotDataActions", block.NotDataActions, full)
	}
}

func printActionGroup(ui cli.Ui, label string, actions []string, full bool) {
	if len(actions) == 0 {
		return
	}
	ui.Output("")
	ui.Output(headerText(fmt.Sprintf("%s (%d)", label, len(actions))))

	grouped := groupByNamespace(actions)
	namespaces := make([]string, 0, len(grouped))
	for ns := range grouped {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	shown := namespaces
	if !full && len(shown) > maxNamespaces {
		shown = shown[:maxNamespaces]
	}
	for _, ns := range shown {
		members := grouped[ns]
		ui.Output("  " + ns + " (" + fmt.Sprint(len(members)) + ")")
		display := members
		if !full && len(display) > maxActionsPerPrefix {
			display = display[:maxActionsPerPrefix]
		}
		for _, a := range display {
			ui.Output("    " + a)
		}
		if !full && len(members) > maxActionsPerPrefix {
			ui.Output(fmt.Sprintf("    ... and %d more", len(members)-maxActionsPerPrefix))
		}
	}
	if !full && len(namespaces) > maxNamespaces {
		ui.Output(fmt.Sprintf("  ... and %d more namespaces", len(namespaces)-maxNamespaces))
	}
}

// groupByNamespace buckets actions by their provider prefix
// (the part before the first slash).
func groupByNamespace(actions []string) map[string][]string {
	grouped := make(map[string][]string)
	for _, a := range actions {
		ns := a
		if i := strings.Index(a, "/"); i > 0 {
			ns = a[:i]
		}
		grouped[ns] = append(grouped[ns], a)
	}
	for _, members := range grouped {
		sort.Strings(members)
	}
	return grouped
}
