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

// Extent computes Field's [min, max] and emits it as Signal. Unlike Bin's
// signal (folded from a literal extent already present in the spec),
// Extent's bounds genuinely depend on the data the server holds, so the
// emitted signal carries the query whose single-row result the host must
// fetch — the Connection.FetchQuery suspension point — rather than
// a resolved Value. Extent does not alter the row stream; it passes input
// through unchanged downstream.
func Extent(t chartspec.Extent, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	col, err := columnOf(input.Schema(), t.Field)
	if err != nil {
		return nil, nil, err
	}
	colType, err := vexpr.TypeOf(col, input.Schema())
	if err != nil {
		return nil, nil, err
	}

	aggs := []qplan.AggExpr{
		{Expr: vexpr.NewScalarUdf("min", []vexpr.Expr{col}, colType), Alias: "min"},
		{Expr: vexpr.NewScalarUdf("max", []vexpr.Expr{col}, colType), Alias: "max"},
	}
	schema := vftypes.Schema{Fields: []vftypes.Field{
		{Name: "min", Type: colType},
		{Name: "max", Type: colType},
	}}
	queryName := cfg.NextName("extent")
	query := qplan.NewAggregate(queryName, input, nil, aggs, schema)

	return input, []EmittedSignal{{Name: t.Signal, Query: query}}, nil
}
