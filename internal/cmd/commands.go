package cmd

import (
	"context"

	"github.com/mitchellh/cli"
)

// Commands is the mapping of all the available commands.
var Commands map[string]cli.CommandFactory

func initCommands(ctx context.Context, ui cli.Ui, session *Session, runner func(args []string) int) {
	getBaseCommand := func() *Command {
		return &Command{
			UI:      ui,
			Session: session,
			Context: ctx,
		}
	}

	Commands = map[string]cli.CommandFactory{
		"create": func() (cli.Command, error) {
			return &CreateCommand{Command: getBaseCommand()}, nil
		},
		"load": func() (cli.Command, error) {
			return &LoadCommand{Command: getBaseCommand()}, nil
		},
		"view": func() (cli.Command, error) {
			return &ViewCommand{Command: getBaseCommand()}, nil
		},
		"save": func() (cli.Command, error) {
			return &SaveCommand{Command: getBaseCommand()}, nil
		},
		"list": func() (cli.Command, error) {
			return &ListCommand{Command: getBaseCommand()}, nil
		},
		"delete": func() (cli.Command, error) {
			return &DeleteCommand{Command: getBaseCommand()}, nil
		},
		"merge": func() (cli.Command, error) {
			return &MergeCommand{Command: getBaseCommand()}, nil
		},
		"remove": func() (cli.Command, error) {
			return &RemoveCommand{Command: getBaseCommand()}, nil
		},
		"set-name": func() (cli.Command, error) {
			return &SetNameCommand{Command: getBaseCommand()}, nil
		},
		"set-description": func() (cli.Command, error) {
			return &SetDescriptionCommand{Command: getBaseCommand()}, nil
		},
		"set-scopes": func() (cli.Command, error) {
			return &SetScopesCommand{Command: getBaseCommand()}, nil
		},
		"publish": func() (cli.Command, error) {
			return &PublishCommand{Command: getBaseCommand()}, nil
		},
		"unpublish": func() (cli.Command, error) {
			return &UnpublishCommand{Command: getBaseCommand()}, nil
		},
		"list-azure": func() (cli.Command, error) {
			return &ListAzureCommand{Command: getBaseCommand()}, nil
		},
		"view-azure": func() (cli.Command, error) {
			return &ViewAzureCommand{Command: getBaseCommand()}, nil
		},
		"search-permissions": func() (cli.Command, error) {
			return &SearchPermissionsCommand{Command: getBaseCommand()}, nil
		},
		"import-azure-permissions": func() (cli.Command, error) {
			return &ImportAzurePermissionsCommand{Command: getBaseCommand()}, nil
		},
		"subscriptions": func() (cli.Command, error) {
			return &SubscriptionsCommand{Command: getBaseCommand()}, nil
		},
		"use-subscription": func() (cli.Command, error) {
			return &UseSubscriptionCommand{Command: getBaseCommand()}, nil
		},
		"whoami": func() (cli.Command, error) {
			return &WhoamiCommand{Command: getBaseCommand()}, nil
		},
		"catalog list": func() (cli.Command, error) {
			return &CatalogListCommand{Command: getBaseCommand()}, nil
		},
		"catalog push": func() (cli.Command, error) {
			return &CatalogPushCommand{Command: getBaseCommand()}, nil
		},
		"catalog pull": func() (cli.Command, error) {
			return &CatalogPullCommand{Command: getBaseCommand()}, nil
		},
		"catalog delete": func() (cli.Command, error) {
			return &CatalogDeleteCommand{Command: getBaseCommand()}, nil
		},
		"serve": func() (cli.Command, error) {
			return &ServeCommand{
				Command:    getBaseCommand(),
				ShutdownCh: MakeShutdownCh(),
			}, nil
		},
		"console": func() (cli.Command, error) {
			return &ConsoleCommand{
				Command: getBaseCommand(),
				Runner:  runner,
			}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{Command: getBaseCommand()}, nil
		},
	}
}
