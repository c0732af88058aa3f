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
	"fmt"
)

// ConfigurationError indicates a programming mistake in how commands, groups,
// or flags were declared: an alias that collides with another name, a common
// flag that shadows a command flag, a nil factory. These errors surface at
// registration time so a broken CLI fails before it ever dispatches.
type ConfigurationError struct {
	err error
}

// NewConfigurationError creates a [ConfigurationError]. The format and args
// parameters are passed to [fmt.Errorf] to create the underlying error.
func NewConfigurationError(format string, args ...any) error {
	return &ConfigurationError{err: fmt.Errorf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.err == nil {
		return "configuration error"
	}
	return e.err.Error()
}

func (e *ConfigurationError) Is(err error) bool {
	_, ok := err.(*ConfigurationError)
	return ok
}

func (e *ConfigurationError) Unwrap() error {
	return e.err
}

// UsageError indicates the user invoked the CLI incorrectly, most commonly by
// naming a command that does not exist. Usage errors are rendered for the
// user by [Run] and never surface as a raw failure.
type UsageError struct {
	err error
}

// NewUsageError creates a [UsageError]. The format and args parameters are
// passed to [fmt.Errorf] to create the underlying error.
func NewUsageError(format string, args ...any) error {
	return &UsageError{err: fmt.Errorf(format, args...)}
}

func (e *UsageError) Error() string {
	if e.err == nil {
		return "usage error"
	}
	return e.err.Error()
}

func (e *UsageError) Is(err error) bool {
	_, ok := err.(*UsageError)
	return ok
}

func (e *UsageError) Unwrap() error {
	return e.err
}
