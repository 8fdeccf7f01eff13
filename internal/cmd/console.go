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
	"os/exec"
	"strings"
	"time"
)

// shellTimeout bounds '!' escapes so a stuck command cannot wedge the
// console.
const shellTimeout = 60 * time.Second

// ConsoleCommand runs an interactive session where the working role
// and the selected subscription persist between commands.
type ConsoleCommand struct {
	*Command

	// Runner dispatches one command line through the CLI. It is
	// injected to avoid the console depending on CLI construction.
	Runner func(args []string) int

	// Input defaults to stdin; tests substitute a reader.
	Input io.Reader
}

func (c *ConsoleCommand) Synopsis() string {
	return "Run commands interactively against a shared workspace"
}

func (c *ConsoleCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith console

  Starts an interactive session. Commands share one workspace, so a
  role loaded by one command is visible to the next. Lines beginning
  with '#' are comments. 'paste' enters multi-line mode (finish with
  an empty line), '!<cmd>' or 'shell <cmd>' runs a shell command, and
  'exit' or 'quit' leaves the console.
`)
}

func (c *ConsoleCommand) Run(args []string) int {
	input := c.Input
	if input == nil {
		input = os.Stdin
	}
	scanner := bufio.NewScanner(input)

	c.UI.Output("rolesmith console (type 'help' for commands, 'exit' to leave)")
	for {
		c.printContext()
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			return 0
		}

		for _, line := range ParseScript(scanner.Text()) {
			if done := c.dispatch(scanner, line); done {
				return 0
			}
		}
	}
}

// dispatch runs one console line; it reports true when the console
// should exit.
func (c *ConsoleCommand) dispatch(scanner *bufio.Scanner, line string) bool {
	lower := strings.ToLower(line)
	switch {
	case lower == "exit" || lower == "quit":
		c.UI.Output("Goodbye!")
		return true

	case lower == "paste":
		c.UI.Output("Enter multiple commands (finish with an empty line):")
		var lines []string
		for scanner.Scan() {
			text := scanner.Text()
			if strings.TrimSpace(text) == "" {
				break
			}
			lines = append(lines, text)
		}
		commands := ParseScript(strings.Join(lines, "\n"))
		if len(commands) > 0 {
			c.UI.Output(fmt.Sprintf("Executing %d command(s)...", len(commands)))
			for _, cmd := range commands {
				c.UI.Output(">> " + cmd)
				if done := c.dispatch(scanner, cmd); done {
					return true
				}
			}
		}

	case strings.HasPrefix(line, "!"):
		c.runShell(strings.TrimSpace(line[1:]))

	case strings.HasPrefix(lower, "shell "):
		c.runShell(strings.TrimSpace(line[6:]))

	default:
		args, err := splitCommandLine(line)
		if err != nil {
			errorf(c.UI, "%s", err)
			return false
		}
		if len(args) == 0 {
			return false
		}
		if args[0] == "console" {
			warn(c.UI, "the 'console' command is not available in console mode")
			return false
		}
		c.Runner(args)
	}
	return false
}

func (c *ConsoleCommand) printContext() {
	roleName := "none"
	if current := c.Session.Manager.Current(); current != nil {
		roleName = current.Name
	}
	sub := c.Session.SubscriptionID
	if sub == "" {
		sub = "none"
	}
	fmt.Fprintf(os.Stderr, "\n[role: %s | subscription: %s]\n", roleName, sub)
}

func (c *ConsoleCommand) runShell(command string) {
	if command == "" {
		return
	}
	ctx, cancel := context.WithTimeout(c.Context, shellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		c.UI.Output(strings.TrimRight(string(out), "\n"))
	}
	if ctx.Err() != nil {
		errorf(c.UI, "command timed out after %s", shellTimeout)
		return
	}
	if err != nil {
		errorf(c.UI, "command failed: %s", err)
	}
}

// ParseScript splits raw input into command lines, dropping blank
// lines and '#' comments.
func ParseScript(text string) []string {
	var commands []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	return commands
}

// splitCommandLine tokenizes a command line with shell-style single
// and double quoting.
func splitCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var quote rune
	inToken := false

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				args = append(args, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command")
	}
	if inToken {
		args = append(args, current.String())
	}
	return args, nil
}
