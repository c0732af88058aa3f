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

package cli_test

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lojoja/clickext/cli"
)

type BuildCommand struct {
	cli.BaseCommand
}

func (c *BuildCommand) Desc() string {
	return "Build the project"
}

func (c *BuildCommand) Help() string {
	return strings.Trim(`
The build command builds the project.
`+c.Flags().Help(), "\n")
}

func (c *BuildCommand) Flags() *cli.FlagSet {
	return c.NewFlagSet()
}

func (c *BuildCommand) Run(ctx context.Context, args []string) error {
	// TODO: implement
	return nil
}

type DeployCommand struct {
	cli.BaseCommand
}

func (c *DeployCommand) Desc() string {
	return "Deploy the project"
}

func (c *DeployCommand) Help() string {
	return strings.Trim(`
The deploy command deploys the project.
`+c.Flags().Help(), "\n")
}

func (c *DeployCommand) Flags() *cli.FlagSet {
	return c.NewFlagSet()
}

func (c *DeployCommand) Run(ctx context.Context, args []string) error {
	// TODO: implement
	return nil
}

func Example_commandGroup() {
	ctx := context.Background()

	group := &cli.Group{
		Name:    "my-tool",
		Version: "1.2.3",
	}
	group.MustRegister("build", func() cli.Command {
		return &BuildCommand{}
	})
	group.MustRegister("deploy", func() cli.Command {
		return &DeployCommand{}
	}, "d")

	// Help output is written to stderr by default. Redirect to stdout so the
	// "Output" assertion works.
	group.SetStderr(os.Stdout)

	if err := group.Run(ctx, []string{"-h"}); err != nil {
		// TODO: handle error
		panic(err)
	}

	// Output:
	// Usage: my-tool COMMAND
	//
	//   build         Build the project
	//   deploy (d)    Deploy the project
}

type GreetingCommand struct {
	cli.BaseCommand

	// Greeting is the word to print.
	Greeting string

	// Excited points at the target of the group's common -excited flag.
	Excited *bool
}

func (c *GreetingCommand) Desc() string {
	return "Print a greeting"
}

func (c *GreetingCommand) Help() string {
	return strings.Trim(`
Usage: {{ COMMAND }} [options]
`+c.Flags().Help(), "\n")
}

func (c *GreetingCommand) Flags() *cli.FlagSet {
	return c.NewFlagSet()
}

func (c *GreetingCommand) Run(ctx context.Context, args []string) error {
	if err := c.Flags().Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if *c.Excited {
		fmt.Fprintln(c.Stdout(), c.Greeting+"!")
	} else {
		fmt.Fprintln(c.Stdout(), c.Greeting+".")
	}
	return nil
}

func Example_commonFlags() {
	ctx := context.Background()

	var excited bool
	group := &cli.Group{
		Name: "greeter",
		CommonFlags: func(f *cli.FlagSection) {
			f.BoolVar(&cli.BoolVar{
				Name:   "excited",
				Usage:  "End the greeting with an exclamation mark.",
				Target: &excited,
			})
		},
	}
	group.MustRegister("hello", func() cli.Command {
		return &GreetingCommand{Greeting: "Hello", Excited: &excited}
	})
	group.MustRegister("hi", func() cli.Command {
		return &GreetingCommand{Greeting: "Hi", Excited: &excited}
	})

	for _, args := range [][]string{
		{"hello"},
		{"hello", "-excited"},
		{"hi", "-excited"},
	} {
		if err := group.Run(ctx, args); err != nil {
			// TODO: handle error
			panic(err)
		}
	}

	// Output:
	// Hello.
	// Hello!
	// Hi!
}
