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
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConsoleHandler_Prefixes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		level     slog.Level
		msg       string
		expStdout string
		expStderr string
	}{
		{
			name:      "debug_prefixed",
			level:     LevelDebug,
			msg:       "tracing",
			expStdout: "Debug: tracing\n",
		},
		{
			name:      "info_bare",
			level:     LevelInfo,
			msg:       "hello",
			expStdout: "hello\n",
		},
		{
			name:      "warning_stderr",
			level:     LevelWarning,
			msg:       "careful",
			expStderr: "Warning: careful\n",
		},
		{
			name:      "error_stderr",
			level:     LevelError,
			msg:       "broken",
			expStderr: "Error: broken\n",
		},
		{
			name:      "critical_stderr",
			level:     LevelCritical,
			msg:       "on fire",
			expStderr: "Critical: on fire\n",
		},
		{
			name:      "multiline_repeats_prefix",
			level:     LevelError,
			msg:       "one\ntwo",
			expStderr: "Error: one\nError: two\n",
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			logger := New(&stdout, &stderr, LevelDebug, ColorNever)
			logger.Log(context.Background(), tc.level, tc.msg)

			if diff := cmp.Diff(tc.expStdout, stdout.String()); diff != "" {
				t.Errorf("stdout diff (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.expStderr, stderr.String()); diff != "" {
				t.Errorf("stderr diff (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestConsoleHandler_Color(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		color ColorMode
		level slog.Level
		msg   string
		exp   string
	}{
		{
			name:  "always_warning_yellow",
			color: ColorAlways,
			level: LevelWarning,
			msg:   "careful",
			exp:   "\033[33mWarning: \033[0mcareful\n",
		},
		{
			name:  "always_error_red",
			color: ColorAlways,
			level: LevelError,
			msg:   "broken",
			exp:   "\033[31mError: \033[0mbroken\n",
		},
		{
			name:  "always_debug_blue",
			color: ColorAlways,
			level: LevelDebug,
			msg:   "tracing",
			exp:   "\033[34mDebug: \033[0mtracing\n",
		},
		{
			name:  "always_info_uncolored",
			color: ColorAlways,
			level: LevelInfo,
			msg:   "hello",
			exp:   "hello\n",
		},
		{
			name:  "never_plain",
			color: ColorNever,
			level: LevelError,
			msg:   "broken",
			exp:   "Error: broken\n",
		},
		{
			// Buffers are not terminals, so auto must disable color.
			name:  "auto_non_tty_plain",
			color: ColorAuto,
			level: LevelError,
			msg:   "broken",
			exp:   "Error: broken\n",
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, &buf, LevelDebug, tc.color)
			logger.Log(context.Background(), tc.level, tc.msg)

			if diff := cmp.Diff(tc.exp, buf.String()); diff != "" {
				t.Errorf("output diff (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestConsoleHandler_Attrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, &buf, LevelDebug, ColorNever)

	logger.Info("listening", "port", 8080)
	if got, want := buf.String(), "listening port=8080\n"; got != want {
		t.Errorf("expected %q to be %q", got, want)
	}

	buf.Reset()
	logger.With("app", "demo").WithGroup("srv").Info("ready", "port", 8080)
	if got, want := buf.String(), "ready app=demo srv.port=8080\n"; got != want {
		t.Errorf("expected %q to be %q", got, want)
	}
}

// Concurrent records through the same derived handler must not bleed
// attributes into each other. Run with -race to catch regressions in the
// handler's attr handling.
func TestConsoleHandler_ConcurrentAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, &buf, LevelDebug, ColorNever).With("app", "demo")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Info("ready", "worker", i)
			}
		}()
	}
	wg.Wait()

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if line != "ready app=demo worker=0" && line != "ready app=demo worker=1" {
			t.Errorf("unexpected log line %q", line)
		}
	}
}

func TestConsoleHandler_SetLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, &buf, LevelInfo, ColorNever)

	logger.Debug("hidden")
	if got := buf.String(); got != "" {
		t.Errorf("expected no output, got %q", got)
	}

	SetLevel(logger, LevelDebug)
	logger.Debug("visible")
	if got, want := buf.String(), "Debug: visible\n"; got != want {
		t.Errorf("expected %q to be %q", got, want)
	}

	if got, want := CurrentLevel(logger), LevelDebug; got != want {
		t.Errorf("expected level %v to be %v", got, want)
	}
}

func TestConsoleHandler_DerivedSharesLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, &buf, LevelInfo, ColorNever)
	derived := logger.With("app", "demo")

	// Derived handlers share the level with their parent so a -debug flag
	// affects every logger in the tree.
	SetLevel(logger, LevelDebug)
	derived.Debug("visible")
	if got, want := buf.String(), "Debug: visible app=demo\n"; got != want {
		t.Errorf("expected %q to be %q", got, want)
	}
}
