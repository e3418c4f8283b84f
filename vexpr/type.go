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

package vexpr

import (
	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// TypeOf computes the logical type an expression produces when
// evaluated against schema.
func TypeOf(e Expr, schema vftypes.Schema) (vftypes.Type, error) {
	switch n := e.(type) {
	case *Literal:
		return n.Value.Type, nil

	case *Column:
		if f, ok := schema.FieldByName(n.Name); ok {
			return f.Type, nil
		}
		return vftypes.Type{}, vferrors.Specification("column %q not found in schema", n.Name)

	case *ScalarUdf:
		return n.ReturnType, nil

	case *Cast:
		return n.Type, nil

	case *Binary:
		if n.Op.IsComparison() {
			return vftypes.Boolean, nil
		}
		lt, err := TypeOf(n.Left, schema)
		if err != nil {
			return vftypes.Type{}, err
		}
		rt, err := TypeOf(n.Right, schema)
		if err != nil {
			return vftypes.Type{}, err
		}
		if n.Op == OpAdd && lt.Kind == vftypes.KindUtf8 && rt.Kind == vftypes.KindUtf8 {
			return vftypes.Utf8, nil
		}
		if !vftypes.IsNumeric(lt) || !vftypes.IsNumeric(rt) {
			return vftypes.Type{}, vferrors.TypeError("arithmetic operator %q requires numeric operands, got %s and %s", n.Op, lt, rt)
		}
		return vftypes.Widen(lt, rt), nil

	case *Unary:
		if n.Op == OpIsNull || n.Op == OpNot {
			return vftypes.Boolean, nil
		}
		return TypeOf(n.Expr, schema)

	case *Case:
		if len(n.Whens) > 0 {
			return TypeOf(n.Whens[0].Value, schema)
		}
		if n.Else != nil {
			return TypeOf(n.Else, schema)
		}
		return vftypes.Type{}, vferrors.Internal("case expression has no branches")

	case *Sort:
		return TypeOf(n.Expr, schema)

	case *WindowFn:
		return n.ReturnType, nil

	case *Wildcard:
		return vftypes.Int64, nil

	default:
		return vftypes.Type{}, vferrors.Internal("unknown expression node %T", e)
	}
}
