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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	"github.com/mitchellh/cli"

	"github.com/rolesmith/rolesmith/internal/config"
)

// RunOptions allows callers to redirect output and inject state.
type RunOptions struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the CLI with the given arguments.
func Run(args []string) int {
	return RunCustom(args, nil)
}

// RunCustom executes the CLI with explicit run options.
func RunCustom(args []string, runOpts *RunOptions) int {
	if runOpts == nil {
		runOpts = &RunOptions{}
	}

	args = normalizeArgs(args)

	useColor := true
	if os.Getenv("ROLESMITH_NO_COLOR") != "" || color.NoColor {
		useColor = false
	}

	if runOpts.Stdout == nil {
		runOpts.Stdout = os.Stdout
	}
	if runOpts.Stderr == nil {
		runOpts.Stderr = os.Stderr
	}

	// Only use colored output on real terminals
	if useColor {
		if f, ok := runOpts.Stdout.(*os.File); ok {
			runOpts.Stdout = colorable.NewColorable(f)
		}
		if f, ok := runOpts.Stderr.(*os.File); ok {
			runOpts.Stderr = colorable.NewColorable(f)
		}
	} else {
		runOpts.Stdout = colorable.NewNonColorable(runOpts.Stdout)
		runOpts.Stderr = colorable.NewNonColorable(runOpts.Stderr)
	}

	ui := &cli.ColoredUi{
		ErrorColor: cli.UiColorRed,
		WarnColor:  cli.UiColorYellow,
		Ui: &cli.BasicUi{
			Reader:      bufio.NewReader(os.Stdin),
			Writer:      runOpts.Stdout,
			ErrorWriter: runOpts.Stderr,
		},
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(runOpts.Stderr, "Failed to load configuration: %s\n", err)
		return 1
	}

	session := NewSession(cfg)
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The console re-enters the CLI with the same session so state
	// carries across commands.
	runner := func(innerArgs []string) int {
		inner := &cli.CLI{
			Name:       "rolesmith",
			Args:       innerArgs,
			Commands:   Commands,
			HelpWriter: runOpts.Stderr,
		}
		code, runErr := inner.Run()
		if runErr != nil {
			fmt.Fprintf(runOpts.Stderr, "Error executing command: %s\n", runErr)
			return 1
		}
		return code
	}

	initCommands(ctx, ui, session, runner)

	c := &cli.CLI{
		Name:           "rolesmith",
		Args:           args,
		Commands:       Commands,
		HelpFunc:       cli.BasicHelpFunc("rolesmith"),
		HelpWriter:     runOpts.Stderr,
		HiddenCommands: []string{"version"},
		Autocomplete:   true,
	}

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(runOpts.Stderr, "Error executing CLI: %s\n", err)
		return 1
	}
	return exitCode
}

// normalizeArgs maps version flags onto the version command.
func normalizeArgs(args []string) []string {
	if len(args) == 1 && (args[0] == "-v" || args[0] == "-version" || args[0] == "--version") {
		return []string{"version"}
	}
	return args
}
