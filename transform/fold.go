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

// Fold reshapes wide Fields into long key/value pairs: every other
// column passes through unchanged, repeated once per folded field, with
// a new key column holding the field's name and a value column holding
// its value. SQL has no native "melt"/"unpivot" primitive in this IR, so
// Fold builds one Select per folded field (passthrough columns plus a
// literal key and the field's value) and unions them together.
func Fold(t chartspec.Fold, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	keyAs, valAs := "key", "value"
	if len(t.As) >= 1 && t.As[0] != "" {
		keyAs = t.As[0]
	}
	if len(t.As) >= 2 && t.As[1] != "" {
		valAs = t.As[1]
	}

	folded := map[string]bool{}
	for _, f := range t.Fields {
		folded[f] = true
	}

	var passthroughFields []vftypes.Field
	for _, f := range input.Schema().Fields {
		if !folded[f.Name] {
			passthroughFields = append(passthroughFields, f)
		}
	}

	valueType := vftypes.Float64
	for i, f := range t.Fields {
		field, ok := input.Schema().FieldByName(f)
		if !ok {
			return nil, nil, vferrors.Specification("fold: field %q not found", f)
		}
		if i == 0 {
			valueType = field.Type
		} else if valueType.Kind != field.Type.Kind {
			valueType = vftypes.Utf8
		}
	}

	schema := vftypes.Schema{Fields: append(append([]vftypes.Field{}, passthroughFields...),
		vftypes.Field{Name: keyAs, Type: vftypes.Utf8},
		vftypes.Field{Name: valAs, Type: valueType},
	)}

	branches := make([]qplan.Node, len(t.Fields))
	for i, f := range t.Fields {
		exprs := make([]vexpr.Expr, 0, len(passthroughFields)+2)
		aliases := make([]string, 0, len(passthroughFields)+2)
		for _, pf := range passthroughFields {
			exprs = append(exprs, vexpr.NewColumn(pf.Name, pf.Type))
			aliases = append(aliases, pf.Name)
		}
		col, err := columnOf(input.Schema(), f)
		if err != nil {
			return nil, nil, err
		}
		exprs = append(exprs, litString(f), col)
		aliases = append(aliases, keyAs, valAs)
		branchName := cfg.NextName("fold_branch")
		branches[i] = qplan.NewSelect(branchName, input, exprs, aliases, schema)
	}

	name := cfg.NextName("fold")
	if len(branches) == 1 {
		return branches[0], nil, nil
	}
	return qplan.NewUnion(name, branches), nil, nil
}
