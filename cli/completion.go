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
	"flag"

	"github.com/posener/complete/v2"
)

// Completion builds the shell completion tree for the group. Subcommands
// complete under their canonical name and every alias, with aliases sharing
// the canonical command's flag and argument predictors. Hidden commands are
// excluded.
//
// Callers typically pass the result to [complete.Command.Complete] before
// dispatching:
//
//	group.Completion().Complete("my-tool")
func (g *Group) Completion() *complete.Command {
	sub := make(map[string]*complete.Command, len(g.commands)+len(g.aliases))

	for name, fn := range g.commands {
		instance := fn()
		if instance == nil || instance.Hidden() {
			continue
		}
		g.inherit(instance)

		if typ, ok := instance.(*Group); ok {
			sub[name] = typ.Completion()
			continue
		}

		cc := new(complete.Command)
		if typ, ok := instance.(FlagCommand); ok {
			set := typ.Flags()
			_ = set.Finalize()

			flags := map[string]complete.Predictor{}
			set.VisitAll(func(fl *flag.Flag) {
				if v, ok := fl.Value.(Value); ok {
					flags[fl.Name] = v.Predictor()
				}
			})
			cc.Flags = flags
		}
		if typ, ok := instance.(ArgPredictor); ok {
			cc.Args = typ.PredictArgs()
		}
		sub[name] = cc
	}

	for alias, canonical := range g.aliases {
		if cc, ok := sub[canonical]; ok {
			sub[alias] = cc
		}
	}

	return &complete.Command{Sub: sub}
}
