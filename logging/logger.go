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

// Package logging provides opinionated console logging for command-line
// programs, built on [log/slog].
//
// Output is meant for humans: informational messages render bare, all other
// levels are prefixed with their severity (e.g. "Error: something broke"),
// and the prefix is colorized when the destination is an interactive
// terminal. Records at warning and above go to stderr, everything else to
// stdout.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/sethvargo/go-envconfig"
)

// contextKey is a private string type to prevent collisions in the context
// map.
type contextKey string

// loggerKey points to the value in the context where the logger is stored.
const loggerKey = contextKey("logger")

// initOnce guards process-wide installation so that repeated [Init] calls
// never produce a second handler (and therefore never duplicate log lines).
var (
	initOnce   sync.Once
	procLogger *slog.Logger
)

// options is a holding structure for configurable options.
type options struct {
	level  slog.Level
	color  ColorMode
	stdout io.Writer
	stderr io.Writer

	lookuper envconfig.Lookuper
}

// Option represents a configuration function for the logger.
type Option func(o *options) *options

// WithLevel sets the initial level of the logger. The default is
// [LevelInfo].
func WithLevel(l slog.Level) Option {
	return func(o *options) *options {
		o.level = l
		return o
	}
}

// WithColorMode overrides the automatic terminal detection for color output.
func WithColorMode(m ColorMode) Option {
	return func(o *options) *options {
		o.color = m
		return o
	}
}

// WithWriters sets the output and error streams of the logger. If you use
// something other than [os.Stdout] and [os.Stderr], the caller is
// responsible for closing any handles.
func WithWriters(stdout, stderr io.Writer) Option {
	return func(o *options) *options {
		o.stdout = stdout
		o.stderr = stderr
		return o
	}
}

// WithLookuper overrides the lookuper used to read environment variables in
// [NewFromEnv]. It's primarily used for testing.
func WithLookuper(l envconfig.Lookuper) Option {
	return func(o *options) *options {
		o.lookuper = l
		return o
	}
}

// newOptions applies the given options over the defaults.
func newOptions(opts ...Option) *options {
	o := &options{
		level:    LevelInfo,
		color:    ColorAuto,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		lookuper: envconfig.OsLookuper(),
	}
	for _, opt := range opts {
		o = opt(o)
	}
	return o
}

// New creates a console logger that writes to the provided streams at the
// provided level. Use [SetLevel] to change the level after creation.
func New(stdout, stderr io.Writer, level slog.Level, color ColorMode) *slog.Logger {
	return slog.New(NewConsoleHandler(stdout, stderr, level, color))
}

// Init installs the process-wide console logger exactly once and returns it.
// The first call configures the logger from the given options and also makes
// it the [log/slog] default; any subsequent call is a no-op that returns the
// already-installed logger, regardless of options. The default level is
// [LevelInfo].
func Init(opts ...Option) *slog.Logger {
	initOnce.Do(func() {
		o := newOptions(opts...)
		procLogger = New(o.stdout, o.stderr, o.level, o.color)
		slog.SetDefault(procLogger)
	})
	return procLogger
}

// Default returns the process-wide logger, installing it with default
// options if [Init] has not been called.
func Default() *slog.Logger {
	return Init()
}

// SetLevel adjusts the level on the provided logger. The handler on the
// given logger must be a [LevelableHandler] or else this function panics. If
// you created a logger through this package, it will automatically satisfy
// that interface.
//
// This function is safe for concurrent use.
//
// It returns the provided logger for convenience and easier chaining.
func SetLevel(logger *slog.Logger, level slog.Level) *slog.Logger {
	if typ, ok := logger.Handler().(LevelableHandler); ok {
		typ.SetLevel(level)
		return logger
	}

	panic("handler is not capable of setting levels")
}

// CurrentLevel returns the level of the provided logger's handler, or
// [LevelInfo] if the handler cannot report its level.
func CurrentLevel(logger *slog.Logger) slog.Level {
	if typ, ok := logger.Handler().(LevelableHandler); ok {
		return typ.Level()
	}
	return LevelInfo
}

// WithLogger creates a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in the context. If no such logger
// exists, the process-wide logger is returned.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return Default()
}
