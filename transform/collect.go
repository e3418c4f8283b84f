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

// rowNumberKind is the window-function kind every ordinal-preserving
// operator (Collect, Stack, Impute) uses to stamp qplan.OrdinalColumn.
const rowNumberKind = "row_number"

func ordinalField() vftypes.Field {
	return vftypes.Field{Name: qplan.OrdinalColumn, Type: vftypes.Int64}
}

// Collect sorts rows by Sort. SQL has no standalone "sort only" relational
// operator outside a final ORDER BY or a window function's own ORDER BY,
// so Collect is implemented as row-order tracking: it stamps a
// qplan.OrdinalColumn computed via row_number() OVER (ORDER BY <keys>),
// so any later operator that needs "the order Collect established" reads
// it back from that column instead of requiring a dedicated Sort plan
// node.
func Collect(t chartspec.Collect, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	fields := make([]string, len(t.Sort))
	orders := make([]string, len(t.Sort))
	for i, k := range t.Sort {
		fields[i] = k.Field
		orders[i] = k.Order
	}
	keys, err := sortSpecToKeys(input.Schema(), fields, orders)
	if err != nil {
		return nil, nil, err
	}
	ordinal := vexpr.NewWindowFn(rowNumberKind, nil, nil, keys, nil, vftypes.Int64)
	exprs, aliases := passthroughExprs(input.Schema())
	exprs = append(exprs, ordinal)
	aliases = append(aliases, qplan.OrdinalColumn)
	schema := input.Schema().WithField(ordinalField())
	name := cfg.NextName("collect")
	return qplan.NewSelect(name, input, exprs, aliases, schema), nil, nil
}
