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

// Identifier adds a unique row identifier column named As, implemented
// as row_number() OVER () ordered by the ordinal column when one is
// already present (so re-running Identifier after a Collect/Stack still
// yields a stable id), or in input order otherwise.
func Identifier(t chartspec.Identifier, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	var order []*vexpr.Sort
	if f, ok := input.Schema().FieldByName(qplan.OrdinalColumn); ok {
		order = []*vexpr.Sort{vexpr.NewSort(vexpr.NewColumn(f.Name, f.Type), true, true)}
	}
	id := vexpr.NewWindowFn(rowNumberKind, nil, nil, order, nil, vftypes.Int64)
	exprs, aliases := passthroughExprs(input.Schema())
	exprs, aliases = appendColumn(exprs, aliases, t.As, id)
	schema := input.Schema().WithField(vftypes.Field{Name: t.As, Type: vftypes.Int64})
	name := cfg.NextName("identifier")
	return qplan.NewSelect(name, input, exprs, aliases, schema), nil, nil
}
