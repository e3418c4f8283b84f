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
	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// aggregateFuncNames maps a chart-spec aggregate op straight onto the
// SQL-standard aggregate function name every dialect's
// AggregateFunctions/AggregateTransformers table (dialect/dialects.go)
// is keyed by.
var aggregateFuncNames = map[string]string{
	"sum": "sum", "mean": "avg", "average": "avg",
	"min": "min", "max": "max", "median": "median",
	"variance": "var", "variancp": "var_pop",
	"stdev": "stddev", "stdevp": "stddev_pop",
}

// Aggregate groups rows by Groupby and computes Ops over Fields, writing
// results to As. Alias precedence: explicit As[i] always wins.
func Aggregate(t chartspec.Aggregate, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	groupBy, err := groupbyExprs(input.Schema(), t.Groupby)
	if err != nil {
		return nil, nil, err
	}

	fields := make([]vftypes.Field, 0, len(t.Groupby)+len(t.Ops))
	for _, g := range t.Groupby {
		f, ok := input.Schema().FieldByName(g)
		if !ok {
			return nil, nil, vferrors.Specification("aggregate: groupby field %q not found", g)
		}
		fields = append(fields, f)
	}

	aggs := make([]qplan.AggExpr, 0, len(t.Ops))
	for i, op := range t.Ops {
		var fieldName string
		if i < len(t.Fields) {
			fieldName = t.Fields[i]
		}
		expr, retType, err := buildAggregateExpr(input.Schema(), op, fieldName)
		if err != nil {
			return nil, nil, err
		}
		alias := aggregateAlias(t, i, op, fieldName)
		aggs = append(aggs, qplan.AggExpr{Expr: expr, Alias: alias})
		fields = append(fields, vftypes.Field{Name: alias, Type: retType})
	}

	schema := vftypes.Schema{Fields: fields}
	name := cfg.NextName("aggregate")
	return qplan.NewAggregate(name, input, groupBy, aggs, schema), nil, nil
}

func aggregateAlias(t chartspec.Aggregate, i int, op, field string) string {
	if i < len(t.As) && t.As[i] != "" {
		return t.As[i]
	}
	if field != "" {
		return op + "_" + field
	}
	return op
}

// buildAggregateExpr translates one (op, field) pair into a ScalarUdf
// aggregate call and its output type.
func buildAggregateExpr(schema vftypes.Schema, op, field string) (vexpr.Expr, vftypes.Type, error) {
	name, args, retType, err := aggregateOpShape(schema, op, field)
	if err != nil {
		return nil, vftypes.Type{}, err
	}
	return vexpr.NewScalarUdf(name, args, retType), retType, nil
}

// aggregateOpShape resolves one (op, field) pair to the function name,
// arguments, and output type shared by Aggregate's ScalarUdf form and
// JoinAggregate/Window's WindowFn form: count ignores
// field; valid/missing count non-null/null rows; distinct counts unique
// values; values collects into a list.
func aggregateOpShape(schema vftypes.Schema, op, field string) (name string, args []vexpr.Expr, retType vftypes.Type, err error) {
	switch op {
	case "count":
		return "count", []vexpr.Expr{&vexpr.Wildcard{}}, vftypes.Int64, nil

	case "valid":
		col, err := columnOf(schema, field)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		return "count", []vexpr.Expr{col}, vftypes.Int64, nil

	case "missing":
		col, err := columnOf(schema, field)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		flag := vexpr.NewCase([]vexpr.WhenThen{
			{Cond: vexpr.NewUnary(vexpr.OpIsNull, col), Value: litInt(1)},
		}, litInt(0))
		return "sum", []vexpr.Expr{flag}, vftypes.Int64, nil

	case "distinct":
		col, err := columnOf(schema, field)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		return "count_distinct", []vexpr.Expr{col}, vftypes.Int64, nil

	case "values":
		col, err := columnOf(schema, field)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		elemType, err := vexpr.TypeOf(col, schema)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		listType := vftypes.List(elemType)
		return "array_agg", []vexpr.Expr{col}, listType, nil

	case "product", "stderr", "q1", "q3", "ci0", "ci1", "argmin", "argmax":
		// No portable SQL form for these (product would need log-sum-exp
		// composed with sum/exp, which the dialect's aggregate-vs-scalar
		// call detection can't see through when nested inside a wrapping
		// scalar function; argmin/argmax return the whole record at the
		// row where field is extremal, which needs a struct-per-row value
		// or a join back to the input that this single-call shape cannot
		// express — aliasing them to plain min/max would silently return
		// a scalar instead of the record). Each degrades to a single
		// named aggregate call under the op's own name, which reports
		// UnsupportedForDialect until a dialect registers an
		// AggregateTransformers entry for it.
		col, err := columnOf(schema, field)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		return op, []vexpr.Expr{col}, vftypes.Float64, nil

	default:
		fname, ok := aggregateFuncNames[op]
		if !ok {
			return "", nil, vftypes.Type{}, vferrors.Specification("aggregate: unknown op %q", op)
		}
		col, err := columnOf(schema, field)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		t, err := vexpr.TypeOf(col, schema)
		if err != nil {
			return "", nil, vftypes.Type{}, err
		}
		retType := vftypes.Float64
		if op == "min" || op == "max" {
			retType = t
		}
		return fname, []vexpr.Expr{col}, retType, nil
	}
}
