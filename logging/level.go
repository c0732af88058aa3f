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
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Levels understood by this package. They alias [log/slog] levels where one
// exists. LevelCritical is above LevelError and always renders with a prefix.
const (
	LevelDebug    = slog.LevelDebug
	LevelInfo     = slog.LevelInfo
	LevelWarning  = slog.LevelWarn
	LevelError    = slog.LevelError
	LevelCritical = slog.Level(12)
)

// levelNames maps the accepted string names to their levels. Aliases for the
// same level are permitted; levelStrings decides which name is used when
// printing.
var levelNames = map[string]slog.Level{
	"debug":    LevelDebug,
	"info":     LevelInfo,
	"warn":     LevelWarning,
	"warning":  LevelWarning,
	"error":    LevelError,
	"critical": LevelCritical,
}

// levelStrings is the reverse of levelNames for the primary names.
var levelStrings = map[slog.Level]string{
	LevelDebug:    "debug",
	LevelInfo:     "info",
	LevelWarning:  "warn",
	LevelError:    "error",
	LevelCritical: "critical",
}

// LookupLevel converts the given string name to its level. Names are matched
// case-insensitively. It returns an error if no level corresponds to the
// given name.
func LookupLevel(name string) (slog.Level, error) {
	v, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("no such level %q, valid levels are %q", name, LevelNames())
	}
	return v, nil
}

// LevelString returns the string representation of the given level. Levels
// without a registered name fall back to the [slog.Level] representation.
func LevelString(level slog.Level) string {
	if v, ok := levelStrings[level]; ok {
		return v
	}
	return strings.ToLower(level.String())
}

// LevelNames returns the sorted list of accepted level names.
func LevelNames() []string {
	names := make([]string, 0, len(levelNames))
	for name := range levelNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// levelTitle returns the user-facing prefix for a level (e.g. "Warning").
// Unnamed levels between two named ones inherit the lower name, matching how
// console output groups severities.
func levelTitle(level slog.Level) string {
	switch {
	case level >= LevelCritical:
		return "Critical"
	case level >= LevelError:
		return "Error"
	case level >= LevelWarning:
		return "Warning"
	case level >= LevelInfo:
		return "Info"
	default:
		return "Debug"
	}
}
