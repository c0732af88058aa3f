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
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// ColorMode controls whether console output is colorized.
type ColorMode int

const (
	// ColorAuto colorizes output only when the destination is an interactive
	// terminal.
	ColorAuto ColorMode = iota

	// ColorAlways colorizes output unconditionally.
	ColorAlways

	// ColorNever disables color.
	ColorNever
)

// ANSI escape sequences for the level prefixes.
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
)

// levelColors maps level titles to their display color. Info has no entry
// because informational messages render without a prefix.
var levelColors = map[string]string{
	"Critical": ansiRed,
	"Error":    ansiRed,
	"Warning":  ansiYellow,
	"Debug":    ansiBlue,
}

// LevelableHandler is an interface for handlers that support changing their
// level dynamically.
type LevelableHandler interface {
	// Level returns the current level of the handler.
	Level() slog.Level

	// SetLevel dynamically changes the level of the handler.
	SetLevel(level slog.Level)
}

// Ensure [ConsoleHandler] satisfies the interfaces.
var (
	_ slog.Handler     = (*ConsoleHandler)(nil)
	_ LevelableHandler = (*ConsoleHandler)(nil)
)

// ConsoleHandler is a [slog.Handler] that renders records for human
// consumption on a console. Records at warning and above are written to the
// error stream, all others to the output stream.
//
// Every level except Info renders as "<Level>: <message>"; informational
// messages render bare to keep normal output uncluttered. Multi-line messages
// repeat the prefix on each line. When color is enabled for the destination
// stream, the prefix is colorized by severity.
type ConsoleHandler struct {
	mu *sync.Mutex

	stdout, stderr io.Writer
	colorOut       bool
	colorErr       bool
	level          *slog.LevelVar

	groups []string
	attrs  []slog.Attr
}

// NewConsoleHandler creates a console handler that writes to the given
// streams at the given level.
func NewConsoleHandler(stdout, stderr io.Writer, level slog.Level, color ColorMode) *ConsoleHandler {
	lvl := new(slog.LevelVar)
	lvl.Set(level)

	return &ConsoleHandler{
		mu:       new(sync.Mutex),
		stdout:   stdout,
		stderr:   stderr,
		colorOut: useColor(stdout, color),
		colorErr: useColor(stderr, color),
		level:    lvl,
	}
}

// useColor decides whether to emit ANSI sequences for the given writer.
func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		f, ok := w.(*os.File)
		if !ok {
			return false
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
}

// Level returns the current level. It is safe for concurrent use.
func (h *ConsoleHandler) Level() slog.Level {
	return h.level.Level()
}

// SetLevel dynamically changes the handler level. It is safe for concurrent
// use.
func (h *ConsoleHandler) SetLevel(level slog.Level) {
	h.level.Set(level)
}

// Enabled implements [slog.Handler].
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements [slog.Handler].
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	w, color := h.stdout, h.colorOut
	if r.Level >= LevelWarning {
		w, color = h.stderr, h.colorErr
	}

	prefix := ""
	if title := levelTitle(r.Level); title != "Info" {
		prefix = title + ": "
		if c, ok := levelColors[title]; ok && color {
			prefix = c + prefix + ansiReset
		}
	}

	var b strings.Builder
	for _, line := range strings.Split(r.Message, "\n") {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteString("\n")
	}

	// Attributes render as trailing key=value pairs on the final line. Keys
	// of attrs attached via WithAttrs were prefixed when they were added;
	// record attrs take the current group prefix. The copy keeps concurrent
	// Handle calls from appending into a shared backing array.
	attrs := append([]slog.Attr(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, slog.Attr{Key: h.prefixKey(a.Key), Value: a.Value})
		return true
	})
	if len(attrs) > 0 {
		line := strings.TrimSuffix(b.String(), "\n")
		b.Reset()
		b.WriteString(line)
		for _, a := range attrs {
			fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		}
		b.WriteString("\n")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write log record: %w", err)
	}
	return nil
}

// WithAttrs implements [slog.Handler].
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	h2 := h.clone()
	for _, a := range attrs {
		h2.attrs = append(h2.attrs, slog.Attr{Key: h.prefixKey(a.Key), Value: a.Value})
	}
	return h2
}

// prefixKey applies the open group names to an attribute key.
func (h *ConsoleHandler) prefixKey(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(append(append([]string{}, h.groups...), key), ".")
}

// WithGroup implements [slog.Handler].
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	return h2
}

// clone copies the handler, sharing the mutex and level so derived handlers
// stay coordinated with their parent.
func (h *ConsoleHandler) clone() *ConsoleHandler {
	return &ConsoleHandler{
		mu:       h.mu,
		stdout:   h.stdout,
		stderr:   h.stderr,
		colorOut: h.colorOut,
		colorErr: h.colorErr,
		level:    h.level,
		groups:   append([]string{}, h.groups...),
		attrs:    append([]slog.Attr{}, h.attrs...),
	}
}
