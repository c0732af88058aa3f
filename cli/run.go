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

	"github.com/lojoja/clickext/logging"
)

// Process exit codes. Usage errors use a distinct code so scripts can tell
// "you called me wrong" apart from "I failed".
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Run executes the command and converts the result into a process exit code,
// rendering any error through the logging pipeline instead of letting it
// escape raw. A [UsageError] (e.g. an unknown subcommand) exits with
// [ExitUsage]; any other error exits with [ExitFailure]. A help request via
// [flag.ErrHelp] prints the command help and exits successfully.
//
// The logger is taken from the context. Typical usage:
//
//	func main() {
//		logging.Init()
//		os.Exit(cli.Run(context.Background(), rootCmd(), os.Args[1:]))
//	}
func Run(ctx context.Context, cmd Command, args []string) int {
	logger := logging.FromContext(ctx)

	err := cmd.Run(ctx, args)
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(cmd.Stderr(), cmd.Help())
		return ExitSuccess
	}

	logger.ErrorContext(ctx, err.Error())

	var uerr *UsageError
	if errors.As(err, &uerr) {
		return ExitUsage
	}
	return ExitFailure
}
