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

// Project selects a subset of Fields, optionally renaming each to the
// parallel entry of As.
func Project(t chartspec.Project, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	exprs := make([]vexpr.Expr, len(t.Fields))
	aliases := make([]string, len(t.Fields))
	fields := make([]vftypes.Field, len(t.Fields))
	for i, name := range t.Fields {
		col, err := columnOf(input.Schema(), name)
		if err != nil {
			return nil, nil, err
		}
		alias := name
		if i < len(t.As) && t.As[i] != "" {
			alias = t.As[i]
		}
		exprs[i] = col
		aliases[i] = alias
		fields[i] = vftypes.Field{Name: alias, Type: col.Type}
	}
	schema := vftypes.Schema{Fields: fields}
	name := cfg.NextName("project")
	return qplan.NewSelect(name, input, exprs, aliases, schema), nil, nil
}
