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
	"github.com/dolthub/vegafusion-go/qplan"
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// Stack computes running-sum start/stop offsets for Field within Groupby
// partitions, ordered by SortFields. The running total is a
// sum(...) OVER (PARTITION BY ... ORDER BY ...) window function left
// with no explicit Frame: with an ORDER BY present and no frame clause,
// SQL's own default window frame (RANGE UNBOUNDED PRECEDING AND CURRENT
// ROW) already computes exactly the cumulative sum Stack needs, so there
// is no need to special-case an "unbounded preceding" bound this IR's
// WindowFrame (which only expresses fixed row counts) cannot represent.
func Stack(t chartspec.Stack, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	input, ordinal := ensureOrdinal(input, cfg)
	schema := input.Schema()
	col, err := columnOf(schema, t.Field)
	if err != nil {
		return nil, nil, err
	}
	partition, err := groupbyExprs(schema, t.Groupby)
	if err != nil {
		return nil, nil, err
	}
	order, err := sortSpecToKeys(schema, t.SortFields, t.SortOrder)
	if err != nil {
		return nil, nil, err
	}
	// Sort keys as given, then the canonical row-ordering column as the
	// final tie-break, so the running sum is deterministic even when
	// SortFields alone don't fully order the partition.
	order = append(order, vexpr.NewSort(ordinal, true, true))

	runSum := vexpr.NewWindowFn("sum", []vexpr.Expr{col}, partition, order, nil, vftypes.Float64)
	var start, stop vexpr.Expr = vexpr.NewBinary(vexpr.OpSubtract, runSum, col), runSum

	if t.Offset == "normalize" || t.Offset == "center" {
		total := vexpr.NewWindowFn("sum", []vexpr.Expr{col}, partition, nil, nil, vftypes.Float64)
		switch t.Offset {
		case "normalize":
			start = vexpr.NewBinary(vexpr.OpDivide, start, total)
			stop = vexpr.NewBinary(vexpr.OpDivide, stop, total)
		case "center":
			half := vexpr.NewBinary(vexpr.OpDivide, total, litFloat(2))
			start = vexpr.NewBinary(vexpr.OpSubtract, start, half)
			stop = vexpr.NewBinary(vexpr.OpSubtract, stop, half)
		}
	}

	as0, as1 := t.As[0], t.As[1]
	if as0 == "" {
		as0 = t.Field + "_start"
	}
	if as1 == "" {
		as1 = t.Field + "_end"
	}

	exprs, aliases := passthroughExprs(schema)
	exprs, aliases = appendColumn(exprs, aliases, as0, start)
	exprs, aliases = appendColumn(exprs, aliases, as1, stop)
	outSchema := schema.
		WithField(vftypes.Field{Name: as0, Type: vftypes.Float64}).
		WithField(vftypes.Field{Name: as1, Type: vftypes.Float64})

	name := cfg.NextName("stack")
	return qplan.NewSelect(name, input, exprs, aliases, outSchema), nil, nil
}
