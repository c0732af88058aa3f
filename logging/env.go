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

package logging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sethvargo/go-envconfig"
)

// envConfig is the environment surface of the logger. Values are resolved
// with the prefix given to [NewFromEnv] first, falling back to the bare
// names.
type envConfig struct {
	// Level is the string representation of the log level. See
	// [LevelNames] for accepted values.
	Level string `env:"LOG_LEVEL"`

	// Debug forces the most verbose level, overriding Level.
	Debug bool `env:"LOG_DEBUG"`

	// Color controls colorized output: "auto" (default), "always" or
	// "never".
	Color string `env:"LOG_COLOR"`

	// NoColor disables color entirely, honoring the NO_COLOR convention.
	NoColor bool `env:"NO_COLOR"`
}

// NewFromEnv is a convenience function for creating a logger that is
// configured from the environment. It sources the following environment
// variables, first checking any with the prefix, then falling back to the
// global unprefixed value:
//
//   - LOG_LEVEL: string representation of the log level.
//   - LOG_DEBUG: force debug verbosity regardless of LOG_LEVEL.
//   - LOG_COLOR: "auto", "always", or "never".
//   - NO_COLOR: disable color entirely.
//
// It panics if any variable has an invalid value, since that indicates a
// broken environment that should fail before any command dispatches. You can
// customize the values used when no environment variables are found using
// [Option] like [WithLevel].
func NewFromEnv(ctx context.Context, envPrefix string, opts ...Option) *slog.Logger {
	o := newOptions(opts...)

	lookuper := o.lookuper
	if envPrefix != "" {
		lookuper = envconfig.MultiLookuper(
			envconfig.PrefixLookuper(envPrefix, o.lookuper),
			o.lookuper,
		)
	}

	var cfg envConfig
	if err := envconfig.ProcessWith(ctx, &cfg, lookuper); err != nil {
		panic(fmt.Sprintf("logging: invalid environment: %s", err))
	}

	if cfg.Level != "" {
		level, err := LookupLevel(cfg.Level)
		if err != nil {
			panic(fmt.Sprintf("logging: invalid value for LOG_LEVEL: %s", err))
		}
		o.level = level
	}

	if cfg.Debug {
		o.level = LevelDebug
	}

	switch cfg.Color {
	case "":
		// keep configured mode
	case "auto":
		o.color = ColorAuto
	case "always":
		o.color = ColorAlways
	case "never":
		o.color = ColorNever
	default:
		panic(fmt.Sprintf("logging: invalid value for LOG_COLOR: %q", cfg.Color))
	}

	if cfg.NoColor {
		o.color = ColorNever
	}

	return New(o.stdout, o.stderr, o.level, o.color)
}
