// pattern: Functional Core
package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// ErrUnknownCommand is returned by Execute for a name no command or group has.
var ErrUnknownCommand = errors.New("unknown command")

// Command is one subcommand. Run writes its output to w.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(w io.Writer, args []string) error
}

// Group is a named set of subcommands, e.g. "table check".
type Group struct {
	Name     string
	Summary  string
	Commands map[string]*Command
}

// App dispatches command-line arguments to commands. With no arguments
// the caller launches the dashboard.
type App struct {
	version  string
	groups   map[string]*Group
	commands map[string]*Command

	out    io.Writer
	errOut io.Writer
}

// NewApp creates an App writing to stdout and stderr.
func NewApp(version string) *App {
	return &App{
		version:  version,
		groups:   make(map[string]*Group),
		commands: make(map[string]*Command),
		out:      os.Stdout,
		errOut:   os.Stderr,
	}
}

// SetOutput redirects command output and help text.
func (a *App) SetOutput(out, errOut io.Writer) {
	a.out, a.errOut = out, errOut
}

// AddGroup creates and registers a new command group.
func (a *App) AddGroup(name, summary string) *Group {
	g := &Group{Name: name, Summary: summary, Commands: make(map[string]*Command)}
	a.groups[name] = g
	return g
}

// AddCommand registers a top-level command.
func (a *App) AddCommand(cmd *Command) {
	a.commands[cmd.Name] = cmd
}

// AddCommand registers a command in the group.
func (g *Group) AddCommand(cmd *Command) {
	g.Commands[cmd.Name] = cmd
}

// Execute runs the command named by args. It reports launchTUI when args
// is empty. Help requests print to the error writer and return nil.
func (a *App) Execute(args []string) (launchTUI bool, err error) {
	if len(args) == 0 {
		return true, nil
	}
	name, rest := args[0], args[1:]

	if cmd, ok := a.commands[name]; ok {
		return false, a.run(cmd, rest)
	}

	group, ok := a.groups[name]
	if !ok {
		a.PrintHelp(a.errOut)
		return false, fmt.Errorf("%w %q", ErrUnknownCommand, name)
	}
	if len(rest) == 0 || rest[0] == "help" || isHelpFlag(rest[0]) {
		group.PrintHelp(a.errOut)
		return false, nil
	}
	cmd, ok := group.Commands[rest[0]]
	if !ok {
		group.PrintHelp(a.errOut)
		return false, fmt.Errorf("%w %q", ErrUnknownCommand, name+" "+rest[0])
	}
	return false, a.run(cmd, rest[1:])
}

func (a *App) run(cmd *Command, args []string) error {
	if slices.ContainsFunc(args, isHelpFlag) {
		fmt.Fprintln(a.errOut, cmd.Usage)
		return nil
	}
	return cmd.Run(a.out, args)
}

func isHelpFlag(arg string) bool {
	return arg == "--help" || arg == "-h"
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "rttdash %s: a terminal dashboard for RTT channels\n\n", a.version)
	fmt.Fprintf(w, "Usage: rttdash [options] [command]\n\nCommands:\n")
	for _, name := range slices.Sorted(maps.Keys(a.commands)) {
		fmt.Fprintf(w, "  %-10s %s\n", name, a.commands[name].Summary)
	}
	fmt.Fprintf(w, "  %-10s %s\n", "(none)", "Attach to the target and open the dashboard")

	if len(a.groups) > 0 {
		fmt.Fprintf(w, "\nCommand Groups:\n")
		for _, name := range slices.Sorted(maps.Keys(a.groups)) {
			fmt.Fprintf(w, "  %-10s %s\n", name, a.groups[name].Summary)
		}
		fmt.Fprintf(w, "\nUse \"rttdash <group> help\" for group details.\n")
	}
	fmt.Fprintf(w, "\nOptions:\n")
}

// PrintHelp prints help for a specific group.
func (g *Group) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: rttdash %s <command>\n\nCommands:\n", g.Name)
	for _, name := range slices.Sorted(maps.Keys(g.Commands)) {
		fmt.Fprintf(w, "  %-10s %s\n", name, g.Commands[name].Summary)
	}
	fmt.Fprintf(w, "\nUse \"rttdash %s <command> --help\" for command details.\n", g.Name)
}
