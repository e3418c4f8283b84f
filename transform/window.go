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

// Window computes one or more window functions (Ops) over rows
// partitioned by Groupby and ordered by SortFields, writing each result
// to the parallel entry of As. Unlike JoinAggregate, Window
// exposes the full ranking/offset function family (row_number, rank,
// ntile, lag/lead, first_value/last_value) in addition to the plain
// aggregate-as-window ops JoinAggregate also supports.
func Window(t chartspec.Window, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	schema := input.Schema()
	partition, err := groupbyExprs(schema, t.Groupby)
	if err != nil {
		return nil, nil, err
	}
	order, err := sortSpecToKeys(schema, t.SortFields, t.SortOrder)
	if err != nil {
		return nil, nil, err
	}

	exprs, aliases := passthroughExprs(schema)
	outSchema := schema
	for i, op := range t.Ops {
		var fieldName string
		if i < len(t.Fields) {
			fieldName = t.Fields[i]
		}
		var param float64
		if i < len(t.Params) {
			param = t.Params[i]
		}
		kind, args, retType, err := windowOpShape(schema, op, fieldName, param)
		if err != nil {
			return nil, nil, err
		}
		var as string
		if i < len(t.As) && t.As[i] != "" {
			as = t.As[i]
		} else if fieldName != "" {
			as = op + "_" + fieldName
		} else {
			as = op
		}
		fn := vexpr.NewWindowFn(kind, args, partition, order, nil, retType)
		exprs, aliases = appendColumn(exprs, aliases, as, fn)
		outSchema = outSchema.WithField(vftypes.Field{Name: as, Type: retType})
	}

	name := cfg.NextName("window")
	return qplan.NewSelect(name, input, exprs, aliases, outSchema), nil, nil
}

// windowOpShape resolves one (op, field, param) triple to a WindowFn
// kind/args/return-type. The ranking family takes no column argument;
// ntile takes its bucket count as a literal; lag/lead take an integer
// offset (Params[i], default 1); everything else falls back to the
// aggregate-as-window shape shared with JoinAggregate.
func windowOpShape(schema vftypes.Schema, op, field string, param float64) (string, []vexpr.Expr, vftypes.Type, error) {
	switch op {
	case "row_number", "rank", "dense_rank":
		return op, nil, vftypes.Int64, nil
	case "percent_rank", "cume_dist":
		return op, nil, vftypes.Float64, nil
	case "ntile":
		n := int64(param)
		if n == 0 {
			n = 1
		}
		return op, []vexpr.Expr{litInt(n)}, vftypes.Int64, nil
	case "lag", "lead":
		col, err := columnOf(schema, field)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		t, err := vexpr.TypeOf(col, schema)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		offset := int64(1)
		if param != 0 {
			offset = int64(param)
		}
		return op, []vexpr.Expr{col, litInt(offset)}, t, nil
	case "first_value", "last_value":
		col, err := columnOf(schema, field)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		t, err := vexpr.TypeOf(col, schema)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		return op, []vexpr.Expr{col}, t, nil
	default:
		return aggregateOpShape(schema, op, field)
	}
}
