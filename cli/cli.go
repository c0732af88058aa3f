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

// Package cli is an SDK for building CLIs whose commands live in groups with
// aliases and shared options. A [Group] dispatches to named subcommands;
// subcommands can themselves be a [Group], which creates nested CLIs (e.g.
// "my-tool do the-thing").
//
// Beyond plain dispatch, the package provides three conveniences:
//
//   - Command aliases. A subcommand may be registered under alternate,
//     typically shorter names: both "deploy" and "d" resolve to the same
//     command, and help output annotates the canonical name with its
//     aliases.
//
//   - Common flags. A group may declare flags that every subcommand
//     inherits. Common flags parse like any other flag but always list after
//     the command's own flags in help, and a collision with a command's own
//     flag name is rejected when the command is registered.
//
//   - A reserved -debug flag. Groups with Debug set accept -debug on every
//     subcommand, raising the logger to debug verbosity for that single
//     invocation.
//
// To minimize startup times, commands are instantiated lazily through a
// [CommandFactory] only when needed. Most applications create a private
// global function that returns the root group:
//
//	var rootCmd = func() cli.Command {
//		g := &cli.Group{
//			Name:    "my-tool",
//			Version: "1.2.3",
//			Debug:   true,
//			CommonFlags: func(f *cli.FlagSection) {
//				// flags shared by every subcommand
//			},
//		}
//		g.MustRegister("eat", func() cli.Command { return &EatCommand{} }, "e")
//		g.MustRegister("sleep", func() cli.Command { return &SleepCommand{} })
//		return g
//	}
//
// This CLI could be invoked via:
//
//	$ my-tool eat
//	$ my-tool e
//	$ my-tool sleep -debug
//
// Registration mistakes (conflicting aliases, duplicate flag names) are
// reported as a [ConfigurationError] from [Group.Register]; unknown command
// names at dispatch time are a [UsageError], which [Run] renders for the
// user as "no such command" with a distinct exit code.
package cli
