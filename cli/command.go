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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/posener/complete/v2"
)

// Command is the interface for a command or subcommand. Most of these
// functions have default implementations on [BaseCommand].
type Command interface {
	// Desc provides a short, one-line description of the command. It should
	// be shorter than 50 characters.
	Desc() string

	// Help is the long-form help output. It should include usage
	// instructions and flag information.
	Help() string

	// Hidden indicates whether the command is hidden from help output.
	Hidden() bool

	// Run executes the command.
	Run(ctx context.Context, args []string) error

	Prompt(msg string) (string, error)

	// Stdout returns the stdout stream. SetStdout sets the stdout stream.
	Stdout() io.Writer
	SetStdout(w io.Writer)

	// Stderr returns the stderr stream. SetStderr sets the stderr stream.
	Stderr() io.Writer
	SetStderr(w io.Writer)

	// Stdin returns the stdin stream. SetStdin sets the stdin stream.
	Stdin() io.Reader
	SetStdin(r io.Reader)

	// Pipe creates new unique stdin, stdout, and stderr buffers, sets them on
	// the command, and returns them. This is most useful for testing where
	// callers want to simulate inputs or assert certain command outputs.
	Pipe() (stdin, stdout, stderr *bytes.Buffer)
}

// CommandFactory returns a new instance of a command. This returns a
// function instead of allocations because we want the CLI to load as fast as
// possible, so we lazy load as much as possible.
type CommandFactory func() Command

// FlagCommand is an optional interface for commands that parse flags. A
// command in a [Group] exposes its flag set through this interface so the
// group can attach its common flags and validate them at registration time.
type FlagCommand interface {
	Command

	// Flags returns the command's flag set. Build it with
	// [BaseCommand.NewFlagSet] (not the package-level [NewFlagSet]) so flags
	// inherited from an enclosing group are included.
	Flags() *FlagSet
}

// ArgPredictor is an optional interface for commands that predict the values
// of their positional arguments during shell completion.
type ArgPredictor interface {
	PredictArgs() complete.Predictor
}

// BaseCommand is the default command structure. All commands should embed
// this structure.
type BaseCommand struct {
	stdout, stderr io.Writer
	stdin          io.Reader

	// commonFlags holds the deferred flag sections inherited from an
	// enclosing group. It is populated by the group when the command is
	// registered and when it is dispatched.
	commonFlags []*deferredSection
}

// commonFlagInheritor is the internal plumbing through which a [Group]
// hands its common flag sections to a registered command.
type commonFlagInheritor interface {
	setCommonFlags(sections []*deferredSection)
	inheritedFlags() []*deferredSection
}

var _ commonFlagInheritor = (*BaseCommand)(nil)

func (c *BaseCommand) setCommonFlags(sections []*deferredSection) {
	c.commonFlags = sections
}

func (c *BaseCommand) inheritedFlags() []*deferredSection {
	return c.commonFlags
}

// NewFlagSet creates a new flag set that includes any flag sections
// inherited from an enclosing group. Commands should build their flag sets
// through this method so group common flags parse and render correctly.
func (c *BaseCommand) NewFlagSet(opts ...Option) *FlagSet {
	set := NewFlagSet(opts...)
	for _, d := range c.commonFlags {
		set.DeferSection(d.name, d.fn)
	}
	return set
}

// Hidden indicates whether the command is hidden. The default is unhidden.
func (c *BaseCommand) Hidden() bool {
	return false
}

// Prompt prompts the user for a value. If stdin is a tty, it prompts.
// Otherwise it reads from the reader.
func (c *BaseCommand) Prompt(msg string) (string, error) {
	scanner := bufio.NewScanner(io.LimitReader(c.Stdin(), 64*1_000))

	if c.Stdin() == os.Stdin && isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprint(c.Stdout(), msg)
	}

	scanner.Scan()

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return scanner.Text(), nil
}

// Stdout returns the stdout stream.
func (c *BaseCommand) Stdout() io.Writer {
	if v := c.stdout; v != nil {
		return v
	}
	return os.Stdout
}

// SetStdout sets the standard out.
func (c *BaseCommand) SetStdout(w io.Writer) {
	c.stdout = w
}

// Stderr returns the stderr stream.
func (c *BaseCommand) Stderr() io.Writer {
	if v := c.stderr; v != nil {
		return v
	}
	return os.Stderr
}

// SetStderr sets the standard error.
func (c *BaseCommand) SetStderr(w io.Writer) {
	c.stderr = w
}

// Stdin returns the stdin stream.
func (c *BaseCommand) Stdin() io.Reader {
	if v := c.stdin; v != nil {
		return v
	}
	return os.Stdin
}

// SetStdin sets the standard input.
func (c *BaseCommand) SetStdin(r io.Reader) {
	c.stdin = r
}

// Pipe creates new unique stdin, stdout, and stderr buffers, sets them on
// the command, and returns them. This is most useful for testing where
// callers want to simulate inputs or assert certain command outputs.
func (c *BaseCommand) Pipe() (stdin, stdout, stderr *bytes.Buffer) {
	stdin = bytes.NewBuffer(nil)
	stdout = bytes.NewBuffer(nil)
	stderr = bytes.NewBuffer(nil)
	c.stdin = stdin
	c.stdout = stdout
	c.stderr = stderr
	return
}
