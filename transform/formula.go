// Copyright 2024 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transform

import (
	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/compiler"
	"github.com/dolthub/vegafusion-go/qplan"
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// Formula adds or replaces a field computed from Expr, wrapping the
// input in a qplan.Select that passes through every existing column and
// appends (or overwrites) the one named As.
func Formula(t chartspec.Formula, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	expr, err := compiler.Compile(t.Expr, input.Schema(), cfg.CompilationConfig)
	if err != nil {
		return nil, nil, err
	}
	typ, err := vexpr.TypeOf(expr, input.Schema())
	if err != nil {
		return nil, nil, err
	}
	exprs, aliases := passthroughExprs(input.Schema())
	exprs, aliases = appendColumn(exprs, aliases, t.As, expr)
	schema := input.Schema().WithField(vftypes.Field{Name: t.As, Type: typ})
	name := cfg.NextName("formula")
	return qplan.NewSelect(name, input, exprs, aliases, schema), nil, nil
}
