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
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGroup_Completion(t *testing.T) {
	t.Parallel()

	group := &Group{Name: "test", Debug: true}
	group.MustRegister("greet", func() Command {
		return &GreetCommand{Greeting: "Hello"}
	}, "g")
	group.MustRegister("echo", testCommandFactory)
	group.MustRegister("secret", func() Command {
		return &TestCommand{Hide: true}
	})

	cc := group.Completion()

	names := make([]string, 0, len(cc.Sub))
	for name := range cc.Sub {
		names = append(names, name)
	}
	sort.Strings(names)
	if diff := cmp.Diff([]string{"echo", "g", "greet"}, names); diff != "" {
		t.Errorf("subcommand diff (-want, +got):\n%s", diff)
	}

	// The alias completes with the canonical command's predictors.
	if cc.Sub["g"] != cc.Sub["greet"] {
		t.Errorf("expected the alias to share the canonical completion")
	}

	for _, flagName := range []string{"shout", "debug"} {
		if _, ok := cc.Sub["greet"].Flags[flagName]; !ok {
			t.Errorf("expected a predictor for -%s", flagName)
		}
	}
}

func TestGroup_Completion_Nested(t *testing.T) {
	t.Parallel()

	sub := &Group{Name: "sub"}
	sub.MustRegister("echo", testCommandFactory, "e")

	group := &Group{Name: "test"}
	group.MustRegister("sub", func() Command { return sub }, "s")

	cc := group.Completion()

	if cc.Sub["s"] != cc.Sub["sub"] {
		t.Errorf("expected the alias to share the canonical completion")
	}
	nested := cc.Sub["sub"]
	if _, ok := nested.Sub["e"]; !ok {
		t.Errorf("expected the nested alias to complete")
	}
}
