package cmd

import (
	"github.com/rolesmith/rolesmith/internal/version"
)

// VersionCommand prints the build version.
type VersionCommand struct {
	*Command
}

func (c *VersionCommand) Synopsis() string {
	return "Print the rolesmith version"
}

func (c *VersionCommand) Help() string {
	return "Usage: rolesmith version"
}

func (c *VersionCommand) Run(args []string) int {
	c.UI.Output("rolesmith " + version.Full())
	return 0
}
