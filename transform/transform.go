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

// Package transform implements the transform engine: one module per
// data-shaping operator, each translating a chartspec.TransformSpec
// into a new qplan.Node plus any signal values it emits. Operators are
// plain functions dispatched from Eval, one per shape, with no class
// hierarchy.
package transform

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/compiler"
	"github.com/dolthub/vegafusion-go/dialect"
	"github.com/dolthub/vegafusion-go/qplan"
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// Config threads per-evaluation context through every transform operator:
// the expression compiler's scope, the target dialect, and a generator
// for unique query-plan node names (uuid-suffixed, so re-entrant
// planning passes never collide).
type Config struct {
	compiler.CompilationConfig
	Dialect  dialect.Dialect
	NextName func(prefix string) string
}

// NewConfig builds a Config with a uuid-suffixed name generator.
func NewConfig(cc compiler.CompilationConfig, d dialect.Dialect) Config {
	return Config{
		CompilationConfig: cc,
		Dialect:           d,
		NextName: func(prefix string) string {
			return fmt.Sprintf("%s_%s", prefix, uuid.New().String()[:8])
		},
	}
}

// EmittedSignal is one signal value a transform produces as a side
// effect of evaluation. Most transforms compute a compile-time constant
// (Bin's start/step/stop, folded from a literal extent); Extent's
// min/max genuinely depends on the data the server holds, so its
// emitted signal instead carries the query node whose single-row result
// the host must fetch through Connection.FetchQuery rather than a
// resolved Value.
type EmittedSignal struct {
	Name  string
	Value *vftypes.Scalar
	Query qplan.Node
}

// Eval dispatches spec to its operator implementation; every operator
// shares the one contract (input plan, config) -> (output plan,
// emitted signals).
func Eval(spec chartspec.TransformSpec, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	switch t := spec.(type) {
	case chartspec.Filter:
		return Filter(t, input, cfg)
	case chartspec.Formula:
		return Formula(t, input, cfg)
	case chartspec.Aggregate:
		return Aggregate(t, input, cfg)
	case chartspec.Bin:
		return Bin(t, input, cfg)
	case chartspec.Collect:
		return Collect(t, input, cfg)
	case chartspec.Extent:
		return Extent(t, input, cfg)
	case chartspec.Fold:
		return Fold(t, input, cfg)
	case chartspec.Identifier:
		return Identifier(t, input, cfg)
	case chartspec.Impute:
		return Impute(t, input, cfg)
	case chartspec.JoinAggregate:
		return JoinAggregate(t, input, cfg)
	case chartspec.Pivot:
		return Pivot(t, input, cfg)
	case chartspec.Project:
		return Project(t, input, cfg)
	case chartspec.Stack:
		return Stack(t, input, cfg)
	case chartspec.TimeUnit:
		return TimeUnit(t, input, cfg)
	case chartspec.Window:
		return Window(t, input, cfg)
	default:
		return nil, nil, vferrors.Internal("transform: %T reached the engine but is not Supported(); the planner must keep it client-side", spec)
	}
}

// EvalPipeline folds a dataset's transform list over input in list
// order — each operator's output plan becomes the next operator's
// input — accumulating every emitted signal along the way.
func EvalPipeline(specs []chartspec.TransformSpec, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	node := input
	var signals []EmittedSignal
	for _, s := range specs {
		out, sigs, err := Eval(s, node, cfg)
		if err != nil {
			return nil, nil, err
		}
		node = out
		signals = append(signals, sigs...)
	}
	return node, signals, nil
}

// passthroughExprs builds the identity projection list over schema: one
// Column reference per field, aliased to its own name. Every transform
// that appends or replaces a single column starts from this and calls
// appendColumn, rather than re-deriving the full passthrough list by
// hand.
func passthroughExprs(schema vftypes.Schema) ([]vexpr.Expr, []string) {
	exprs := make([]vexpr.Expr, len(schema.Fields))
	aliases := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		exprs[i] = vexpr.NewColumn(f.Name, f.Type)
		aliases[i] = f.Name
	}
	return exprs, aliases
}

// appendColumn appends (name, expr) to a projection list, replacing an
// existing column of the same name in place rather than duplicating it.
func appendColumn(exprs []vexpr.Expr, aliases []string, name string, expr vexpr.Expr) ([]vexpr.Expr, []string) {
	for i, a := range aliases {
		if a == name {
			exprs[i] = expr
			return exprs, aliases
		}
	}
	return append(exprs, expr), append(aliases, name)
}

// ensureOrdinal guarantees input carries qplan.OrdinalColumn, stamping
// one via row_number() OVER () (input order, the same fallback
// Identifier uses when no ordinal column is already present) when the
// schema doesn't already have it — e.g. because no Collect ran earlier
// in the pipeline. Stack and Impute both need this canonical
// row-ordering column as their final tie-break key, so they call this
// before building their own ORDER BY.
func ensureOrdinal(input qplan.Node, cfg Config) (qplan.Node, *vexpr.Column) {
	schema := input.Schema()
	if f, ok := schema.FieldByName(qplan.OrdinalColumn); ok {
		return input, vexpr.NewColumn(f.Name, f.Type)
	}
	ordinal := vexpr.NewWindowFn(rowNumberKind, nil, nil, nil, nil, vftypes.Int64)
	exprs, aliases := passthroughExprs(schema)
	exprs = append(exprs, ordinal)
	aliases = append(aliases, qplan.OrdinalColumn)
	outSchema := schema.WithField(ordinalField())
	name := cfg.NextName("ordinal")
	return qplan.NewSelect(name, input, exprs, aliases, outSchema), vexpr.NewColumn(qplan.OrdinalColumn, vftypes.Int64)
}

func litFloat(v float64) vexpr.Expr {
	return vexpr.NewLiteral(vftypes.FloatScalar(vftypes.Float64, v))
}

func litInt(v int64) vexpr.Expr {
	return vexpr.NewLiteral(vftypes.IntScalar(vftypes.Int64, v))
}

func litString(v string) vexpr.Expr {
	return vexpr.NewLiteral(vftypes.StringScalar(v))
}

func columnOf(schema vftypes.Schema, name string) (*vexpr.Column, error) {
	f, ok := schema.FieldByName(name)
	if !ok {
		return nil, vferrors.Specification("field %q not found in schema", name)
	}
	return vexpr.NewColumn(name, f.Type), nil
}

// sortSpecToKeys builds vexpr.Sort keys from parallel field/order slices,
// used by Collect, Stack, and Window's shared sort-key shape. order[i] is
// "ascending" (default) or "descending"; nulls sort first on the
// ascending direction and last on descending, so a null orders as the
// smallest value in either direction.
func sortSpecToKeys(schema vftypes.Schema, fields []string, order []string) ([]*vexpr.Sort, error) {
	keys := make([]*vexpr.Sort, len(fields))
	for i, name := range fields {
		col, err := columnOf(schema, name)
		if err != nil {
			return nil, err
		}
		asc := true
		if i < len(order) && order[i] == "descending" {
			asc = false
		}
		keys[i] = vexpr.NewSort(col, asc, asc)
	}
	return keys, nil
}

// groupbyExprs resolves a list of field names to Column expressions
// against schema, for the Groupby clause shared by Aggregate, Impute,
// JoinAggregate, Stack, and Window.
func groupbyExprs(schema vftypes.Schema, fields []string) ([]vexpr.Expr, error) {
	exprs := make([]vexpr.Expr, len(fields))
	for i, name := range fields {
		col, err := columnOf(schema, name)
		if err != nil {
			return nil, err
		}
		exprs[i] = col
	}
	return exprs, nil
}
