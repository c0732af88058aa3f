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
	"log/slog"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func TestNewFromEnv(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		prefix    string
		env       map[string]string
		expLevel  slog.Level
		expPanic  bool
		expColor  ColorMode
		skipColor bool
	}{
		{
			name:      "defaults",
			env:       nil,
			expLevel:  LevelInfo,
			skipColor: true,
		},
		{
			name:      "level",
			env:       map[string]string{"LOG_LEVEL": "error"},
			expLevel:  LevelError,
			skipColor: true,
		},
		{
			name:      "prefixed_level_wins",
			prefix:    "MY_APP_",
			env:       map[string]string{"MY_APP_LOG_LEVEL": "debug", "LOG_LEVEL": "error"},
			expLevel:  LevelDebug,
			skipColor: true,
		},
		{
			name:      "unprefixed_fallback",
			prefix:    "MY_APP_",
			env:       map[string]string{"LOG_LEVEL": "warn"},
			expLevel:  LevelWarning,
			skipColor: true,
		},
		{
			name:      "debug_overrides_level",
			env:       map[string]string{"LOG_LEVEL": "error", "LOG_DEBUG": "true"},
			expLevel:  LevelDebug,
			skipColor: true,
		},
		{
			name:     "color_never",
			env:      map[string]string{"LOG_COLOR": "never"},
			expLevel: LevelInfo,
			expColor: ColorNever,
		},
		{
			name:     "no_color_convention",
			env:      map[string]string{"NO_COLOR": "1", "LOG_COLOR": "always"},
			expLevel: LevelInfo,
			expColor: ColorNever,
		},
		{
			name:     "bad_level_panics",
			env:      map[string]string{"LOG_LEVEL": "loud"},
			expPanic: true,
		},
		{
			name:     "bad_color_panics",
			env:      map[string]string{"LOG_COLOR": "sometimes"},
			expPanic: true,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				r := recover()
				if tc.expPanic && r == nil {
					t.Errorf("expected a panic")
				}
				if !tc.expPanic && r != nil {
					t.Errorf("unexpected panic: %v", r)
				}
			}()

			logger := NewFromEnv(context.Background(), tc.prefix,
				WithLookuper(envconfig.MapLookuper(tc.env)))

			if got, want := CurrentLevel(logger), tc.expLevel; got != want {
				t.Errorf("expected level %v to be %v", got, want)
			}

			if !tc.skipColor {
				typ, ok := logger.Handler().(*ConsoleHandler)
				if !ok {
					t.Fatalf("handler is incorrect type %T", logger.Handler())
				}
				wantColor := tc.expColor == ColorAlways
				if typ.colorOut != wantColor || typ.colorErr != wantColor {
					t.Errorf("expected color out=%t err=%t to be %t",
						typ.colorOut, typ.colorErr, wantColor)
				}
			}
		})
	}
}
