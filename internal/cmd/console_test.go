package cmd

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolesmith/rolesmith/internal/audit"
	"github.com/rolesmith/rolesmith/internal/config"
	"github.com/rolesmith/rolesmith/internal/role"
	"github.com/rolesmith/rolesmith/internal/store"
)

func newTestConsole(t *testing.T, runner func(args []string) int) (*ConsoleCommand, *cli.MockUi) {
	t.Helper()
	ui := cli.NewMockUi()
	session := &Session{
		Config:  &config.Config{},
		Manager: role.NewManager(),
		Files:   store.NewFileStore(t.TempDir()),
		Audit:   audit.NewSlogLogger(),
	}
	return &ConsoleCommand{
		Command: &Command{UI: ui, Session: session, Context: context.Background()},
		Runner:  runner,
	}, ui
}

func TestParseScript(t *testing.T) {
	script := `
# load the working role
load storage-reader

merge -roles Reader
   # trailing comment line

view
`
	assert.Equal(t,
		[]string{"load storage-reader", "merge -roles Reader", "view"},
		ParseScript(script))
}

func TestParseScript_Empty(t *testing.T) {
	assert.Nil(t, ParseScript(""))
	assert.Nil(t, ParseScript("# only a comment\n\n"))
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"view", []string{"view"}},
		{"merge -roles Reader,Contributor", []string{"merge", "-roles", "Reader,Contributor"}},
		{`load "Storage Blob Reader"`, []string{"load", "Storage Blob Reader"}},
		{"set-description 'reads all the things'", []string{"set-description", "reads all the things"}},
		{"  spaced   out  ", []string{"spaced", "out"}},
		{`mixed "double" and 'single'`, []string{"mixed", "double", "and", "single"}},
		{"", nil},
	}
	for _, tt := range tests {
		args, err := splitCommandLine(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, args, tt.line)
	}
}

func TestSplitCommandLine_UnterminatedQuote(t *testing.T) {
	_, err := splitCommandLine(`load "Storage Reader`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated quote")
}

func TestConsoleDispatch_RunsCommand(t *testing.T) {
	var got [][]string
	console, _ := newTestConsole(t, func(args []string) int {
		got = append(got, args)
		return 0
	})

	scanner := bufio.NewScanner(strings.NewReader(""))
	done := console.dispatch(scanner, `load "Storage Reader"`)
	assert.False(t, done)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"load", "Storage Reader"}, got[0])
}

func TestConsoleDispatch_Exit(t *testing.T) {
	console, ui := newTestConsole(t, func([]string) int { return 0 })

	scanner := bufio.NewScanner(strings.NewReader(""))
	assert.True(t, console.dispatch(scanner, "exit"))
	assert.True(t, console.dispatch(scanner, "QUIT"))
	assert.Contains(t, ui.OutputWriter.String(), "Goodbye!")
}

func TestConsoleDispatch_BlocksNestedConsole(t *testing.T) {
	called := false
	console, _ := newTestConsole(t, func([]string) int {
		called = true
		return 0
	})

	scanner := bufio.NewScanner(strings.NewReader(""))
	done := console.dispatch(scanner, "console")
	assert.False(t, done)
	assert.False(t, called)
}

func TestConsoleDispatch_PasteMode(t *testing.T) {
	var got [][]string
	console, ui := newTestConsole(t, func(args []string) int {
		got = append(got, args)
		return 0
	})

	// Paste body ends at the empty line; the trailing command belongs
	// to the surrounding session, not the paste block.
	scanner := bufio.NewScanner(strings.NewReader("# comment\nview\nlist\n\nignored"))
	done := console.dispatch(scanner, "paste")
	assert.False(t, done)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"view"}, got[0])
	assert.Equal(t, []string{"list"}, got[1])
	assert.Contains(t, ui.OutputWriter.String(), "Executing 2 command(s)")
}

func TestConsoleRun_ExitsOnEOF(t *testing.T) {
	console, _ := newTestConsole(t, func([]string) int { return 0 })
	console.Input = strings.NewReader("version\n")

	ran := 0
	console.Runner = func([]string) int {
		ran++
		return 0
	}
	assert.Equal(t, 0, console.Run(nil))
	assert.Equal(t, 1, ran)
}
