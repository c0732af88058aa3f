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

package logging_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/lojoja/clickext/logging"
)

var logger *slog.Logger

func ExampleInit() {
	// Typically the first statement of main. Re-invocation is a no-op.
	logger = logging.Init()
}

func ExampleNewFromEnv() {
	logger = logging.NewFromEnv(context.Background(), "MY_APP_")
}

func ExampleSetLevel() {
	logging.SetLevel(logging.Default(), logging.LevelDebug) // level is now debug
}

func ExampleNew() {
	logger = logging.New(os.Stdout, os.Stderr, logging.LevelWarning, logging.ColorNever)

	logger.Info("not shown")
	logger.Warn("something odd")
	// "Warning: something odd" is written to stderr.
}

func ExampleWithLogger() {
	ctx := context.Background()

	logger = logging.New(os.Stdout, os.Stderr, logging.LevelDebug, logging.ColorAuto)
	ctx = logging.WithLogger(ctx, logger)

	logger = logging.FromContext(ctx) // same logger
}
