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

// JoinAggregate computes Ops over Fields within Groupby partitions
// without collapsing rows — the aggregate-as-window counterpart of
// Aggregate. Each op becomes a WindowFn partitioned by Groupby (no ORDER
// BY: the aggregate applies over the whole partition, not a running
// frame) appended as a new column, the same shape Collect/Identifier use
// to stamp a window function's result into a Select rather than reaching
// for the standalone qplan.Window node, whose render path has no per-
// column alias to give these outputs their names.
func JoinAggregate(t chartspec.JoinAggregate, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	schema := input.Schema()
	partition, err := groupbyExprs(schema, t.Groupby)
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
		kind, args, retType, err := aggregateOpShape(schema, op, fieldName)
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
		fn := vexpr.NewWindowFn(kind, args, partition, nil, nil, retType)
		exprs, aliases = appendColumn(exprs, aliases, as, fn)
		outSchema = outSchema.WithField(vftypes.Field{Name: as, Type: retType})
	}

	name := cfg.NextName("joinaggregate")
	return qplan.NewSelect(name, input, exprs, aliases, outSchema), nil, nil
}
