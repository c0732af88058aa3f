// Copyright 2023 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/lojoja/clickext/logging"
)

// commonSectionName is the help section under which a group's common flags
// (and the reserved -debug flag) are listed on every subcommand.
const commonSectionName = "COMMON OPTIONS"

// Ensure [Group] implements [Command].
var _ Command = (*Group)(nil)

// Group is a parent command that dispatches to named subcommands. It extends
// plain dispatch with two behaviors:
//
// Aliases: a subcommand may be registered under alternate names, typically
// shorter ones. Aliases resolve to the same command as the canonical name
// and are annotated in help output ("deploy (d, dep)"). A group whose
// commands have no aliases behaves exactly like a plain group.
//
// Common flags: the group may declare flags that are attached to every
// registered subcommand. Common flags parse like any command flag but always
// list after the command's own sections in help output. Name collisions with
// a subcommand's flags are reported as a [ConfigurationError] when the
// subcommand is registered, never silently overridden.
type Group struct {
	BaseCommand

	// Name is the name of the command or subcommand. For top-level groups,
	// this should be the binary name. For subgroups, this should be the name
	// of the subcommand.
	Name string

	// Description is the human-friendly description of the group.
	Description string

	// Hide marks the entire group as hidden. It will not be shown in help
	// output.
	Hide bool

	// Version defines the version information for the command. This can be
	// omitted for subgroups as it will be inherited from the parent.
	Version string

	// CommonFlags registers flags shared by every subcommand in the group,
	// in the order they should be declared.
	CommonFlags func(f *FlagSection)

	// Debug appends a reserved "-debug" boolean flag to every subcommand.
	// When the flag is passed, the group's logger is raised to debug
	// verbosity for that invocation only; the previous level is restored
	// when the invocation returns.
	Debug bool

	// Logger is the logger whose level the -debug flag adjusts. If nil, the
	// process-wide logger from the logging package is used.
	Logger *slog.Logger

	commands  map[string]CommandFactory
	aliases   map[string]string   // alias -> canonical name
	aliasesOf map[string][]string // canonical name -> aliases, declaration order
	names     []string            // canonical names, registration order
}

// Desc is the group description. It is used to satisfy the [Command]
// interface.
func (g *Group) Desc() string {
	return g.Description
}

// Hidden determines whether the group is hidden. It is used to satisfy the
// [Command] interface.
func (g *Group) Hidden() bool {
	return g.Hide
}

// Register adds a subcommand under the given canonical name, optionally
// reachable through the given aliases. It returns a [ConfigurationError]
// when:
//
//   - the name or an alias collides with an existing canonical name or alias
//   - an alias is empty, duplicates the command's own name, or repeats
//     another alias in the call
//   - the command's flags, merged with the group's common flags, contain a
//     duplicate flag name
//
// Flag validation instantiates the command once through its factory; the
// command is re-instantiated when dispatched.
func (g *Group) Register(name string, fn CommandFactory, aliases ...string) error {
	if name == "" {
		return NewConfigurationError("missing command name")
	}
	if fn == nil {
		return NewConfigurationError("nil command factory for %q", name)
	}

	if err := g.checkNameFree(name); err != nil {
		return err
	}

	seen := map[string]struct{}{name: {}}
	for _, alias := range aliases {
		if alias == "" {
			return NewConfigurationError("empty alias for command %q", name)
		}
		if alias == name {
			return NewConfigurationError("alias %q duplicates the command's own name", alias)
		}
		if _, ok := seen[alias]; ok {
			return NewConfigurationError("alias %q given more than once for command %q", alias, name)
		}
		if err := g.checkNameFree(alias); err != nil {
			return err
		}
		seen[alias] = struct{}{}
	}

	instance := fn()
	if instance == nil {
		return NewConfigurationError("factory for command %q returned nil", name)
	}
	g.inherit(instance)
	if typ, ok := instance.(FlagCommand); ok {
		if err := typ.Flags().Finalize(); err != nil {
			return fmt.Errorf("invalid flags for command %q: %w", name, err)
		}
	}

	if g.commands == nil {
		g.commands = map[string]CommandFactory{}
		g.aliases = map[string]string{}
		g.aliasesOf = map[string][]string{}
	}

	g.commands[name] = fn
	g.names = append(g.names, name)
	for _, alias := range aliases {
		g.aliases[alias] = name
	}
	if len(aliases) > 0 {
		g.aliasesOf[name] = aliases
	}
	return nil
}

// MustRegister behaves like [Group.Register] but panics on error. It is
// intended for static registration at program startup, where a registration
// failure is a programming mistake that should fail immediately.
func (g *Group) MustRegister(name string, fn CommandFactory, aliases ...string) {
	if err := g.Register(name, fn, aliases...); err != nil {
		panic(err)
	}
}

// checkNameFree reports a [ConfigurationError] if the given name is already
// used as a canonical name or alias in the group.
func (g *Group) checkNameFree(name string) error {
	if _, ok := g.commands[name]; ok {
		return NewConfigurationError("%q conflicts with an existing command name", name)
	}
	if canonical, ok := g.aliases[name]; ok {
		return NewConfigurationError("%q conflicts with an existing alias for command %q", name, canonical)
	}
	return nil
}

// Resolve returns a new instance of the subcommand registered under the
// given name, matching canonical names first and aliases second. Matches are
// exact. An unknown name returns a [UsageError].
func (g *Group) Resolve(name string) (Command, error) {
	canonical := name
	if _, ok := g.commands[canonical]; !ok {
		c, ok := g.aliases[name]
		if !ok {
			return nil, NewUsageError("no such command %q", name)
		}
		canonical = c
	}

	instance := g.commands[canonical]()
	if instance == nil {
		return nil, NewUsageError("no such command %q", name)
	}
	g.inherit(instance)
	return instance, nil
}

// inherit hands the group's common flag sections to a subcommand instance.
func (g *Group) inherit(cmd Command) {
	if typ, ok := cmd.(commonFlagInheritor); ok {
		typ.setCommonFlags(g.commonSections())
	}
}

// commonSections builds the deferred flag sections every subcommand
// inherits: sections inherited from an enclosing group first, then this
// group's own common flags and the reserved -debug flag.
func (g *Group) commonSections() []*deferredSection {
	out := append([]*deferredSection{}, g.inheritedFlags()...)
	if g.CommonFlags == nil && !g.Debug {
		return out
	}

	return append(out, &deferredSection{
		name: commonSectionName,
		fn: func(sec *FlagSection) {
			if g.CommonFlags != nil {
				g.CommonFlags(sec)
			}
			if g.Debug {
				g.registerDebugFlag(sec)
			}
		},
	})
}

// registerDebugFlag adds the reserved -debug flag. Parsing "-debug" raises
// the group logger to debug verbosity; [Group.Run] restores the previous
// level after the invocation.
func (g *Group) registerDebugFlag(sec *FlagSection) {
	var debug bool
	Flag(sec, &Var[bool]{
		Name:    "debug",
		Usage:   "Show debug statements.",
		IsBool:  true,
		Default: false,
		Target:  &debug,
		Parser:  strconv.ParseBool,
		Printer: strconv.FormatBool,
		Setter: func(cur *bool, val bool) {
			*cur = val
			if val {
				logging.SetLevel(g.logger(), logging.LevelDebug)
			}
		},
	})
}

// logger returns the logger adjusted by the -debug flag.
func (g *Group) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return logging.Default()
}

// Help compiles structured help information. Each subcommand line is
// annotated with its aliases, canonical name first, aliases in the order
// they were registered.
func (g *Group) Help() string {
	var b strings.Builder

	longest := 0
	names := make([]string, 0, len(g.commands))
	display := make(map[string]string, len(g.commands))
	for name := range g.commands {
		names = append(names, name)

		d := name
		if aliases := g.aliasesOf[name]; len(aliases) > 0 {
			d = fmt.Sprintf("%s (%s)", name, strings.Join(aliases, ", "))
		}
		display[name] = d

		if l := len(d); l > longest {
			longest = l
		}
	}
	sort.Strings(names)

	fmt.Fprintf(&b, "Usage: %s COMMAND\n\n", g.Name)
	for _, name := range names {
		cmd := g.commands[name]()
		if cmd == nil {
			continue
		}

		if !cmd.Hidden() {
			fmt.Fprintf(&b, "  %-*s%s\n", longest+4, display[name], cmd.Desc())
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// Run resolves the typed subcommand name and dispatches to it, printing help
// output when no (or an explicit help) argument is given.
func (g *Group) Run(ctx context.Context, args []string) error {
	name, args := extractCommandAndArgs(args)

	// Short-circuit top-level help.
	if name == "" || name == "-h" || name == "-help" || name == "--help" {
		fmt.Fprintln(g.Stderr(), g.Help())
		return nil
	}

	// Short-circuit version.
	if name == "-v" || name == "-version" || name == "--version" {
		fmt.Fprintln(g.Stderr(), g.Version)
		return nil
	}

	instance, err := g.Resolve(name)
	if err != nil {
		return err
	}

	// Ensure the child inherits the streams from the group.
	instance.SetStdin(g.stdin)
	instance.SetStdout(g.stdout)
	instance.SetStderr(g.stderr)

	// The -debug flag is scoped to a single invocation: restore the level the
	// logger had before dispatch. The restore must cover subgroup dispatch
	// too, since nested commands inherit the flag but subgroups do not rerun
	// this block.
	if g.Debug {
		if typ, ok := g.logger().Handler().(logging.LevelableHandler); ok {
			prev := typ.Level()
			defer typ.SetLevel(prev)
		}
	}

	// If this is a subgroup, prefix the name with the parent and inherit
	// some values.
	if typ, ok := instance.(*Group); ok {
		typ.Name = g.Name + " " + typ.Name
		typ.Version = g.Version
		if typ.Logger == nil {
			typ.Logger = g.Logger
		}
		return typ.Run(ctx, args)
	}

	if err := instance.Run(ctx, args); err != nil {
		// Special case requesting help.
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(instance.Stderr(), instance.Help())
			return nil
		}
		//nolint:wrapcheck // We want to bubble this error exactly as-is.
		return err
	}
	return nil
}

// extractCommandAndArgs is a helper that pulls the subcommand and arguments.
func extractCommandAndArgs(args []string) (string, []string) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return args[0], nil
	default:
		return args[0], args[1:]
	}
}
