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
	"math"

	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// Scope is the constant-folding context threaded through EvalToScalar:
// Signals maps a resolved signal name to its current value, Data maps
// a resolved dataset name to its schema (carried for the caller; neither
// constant folding nor TypeOf, which takes a schema directly, reads it,
// since no Column reference is ever foldable). Mirrors
// compiler.CompilationConfig's SignalScope/DataScope fields.
type Scope struct {
	Signals map[string]vftypes.Scalar
	Data    map[string]vftypes.Schema
}

// EvalToScalar reduces a literal/constant-foldable expression tree to
// a Scalar. It fails with vferrors.CodeNotConstant if any
// non-foldable reference (Column, Wildcard, WindowFn, or ScalarUdf —
// the IR has no generic notion of a pure function, so UDF calls are
// never folded) remains anywhere in the tree.
func EvalToScalar(e Expr, scope Scope) (vftypes.Scalar, error) {
	switch n := e.(type) {
	case *Literal:
		return n.Value, nil

	case *Cast:
		v, err := EvalToScalar(n.Expr, scope)
		if err != nil {
			return vftypes.Scalar{}, err
		}
		arr, ok := vftypes.Cast(v.ToArray(), n.Type)
		if !ok {
			return vftypes.Scalar{}, vferrors.TypeError("cannot cast %s to %s", v.Type, n.Type)
		}
		return arr.Get(0), nil

	case *Unary:
		v, err := EvalToScalar(n.Expr, scope)
		if err != nil {
			return vftypes.Scalar{}, err
		}
		return evalUnary(n.Op, v)

	case *Binary:
		l, err := EvalToScalar(n.Left, scope)
		if err != nil {
			return vftypes.Scalar{}, err
		}
		r, err := EvalToScalar(n.Right, scope)
		if err != nil {
			return vftypes.Scalar{}, err
		}
		return evalBinary(n.Op, l, r)

	case *Case:
		for _, wt := range n.Whens {
			cond, err := EvalToScalar(wt.Cond, scope)
			if err != nil {
				return vftypes.Scalar{}, err
			}
			if cond.Valid && cond.Bool {
				return EvalToScalar(wt.Value, scope)
			}
		}
		if n.Else != nil {
			return EvalToScalar(n.Else, scope)
		}
		return vftypes.NullScalar(vftypes.Boolean), nil

	case *Column:
		return vftypes.Scalar{}, vferrors.NotConstant("column reference %q is not constant-foldable", n.Name)
	case *Wildcard:
		return vftypes.Scalar{}, vferrors.NotConstant("wildcard is not constant-foldable")
	case *WindowFn:
		return vftypes.Scalar{}, vferrors.NotConstant("window function %q is not constant-foldable", n.Kind)
	case *ScalarUdf:
		return vftypes.Scalar{}, vferrors.NotConstant("function call %q is not constant-foldable", n.Name)
	case *Sort:
		return vftypes.Scalar{}, vferrors.NotConstant("sort key is not a value expression")
	default:
		return vftypes.Scalar{}, vferrors.Internal("unknown expression node %T", e)
	}
}

// evalUnary implements the IR's null propagation: any unary op with a
// null operand yields null, except IS NULL, which is itself the test.
func evalUnary(op UnaryOp, v vftypes.Scalar) (vftypes.Scalar, error) {
	if op == OpIsNull {
		return vftypes.BoolScalar(!v.Valid), nil
	}
	if !v.Valid {
		return vftypes.NullScalar(v.Type), nil
	}
	switch op {
	case OpNot:
		return vftypes.BoolScalar(!v.Bool), nil
	case OpNegate:
		if isFloatKind(v.Type) {
			return vftypes.FloatScalar(v.Type, -v.Float), nil
		}
		return vftypes.IntScalar(v.Type, -v.Int), nil
	default:
		return vftypes.Scalar{}, vferrors.Internal("unknown unary operator %q", op)
	}
}

// evalBinary implements the IR's null propagation: any binary op with a
// null operand yields null, except the boolean short-circuits (AND
// with a false operand, OR with a true operand) where the defined
// operand alone determines the result.
func evalBinary(op BinaryOp, l, r vftypes.Scalar) (vftypes.Scalar, error) {
	if op == OpAnd {
		if l.Valid && !l.Bool {
			return vftypes.BoolScalar(false), nil
		}
		if r.Valid && !r.Bool {
			return vftypes.BoolScalar(false), nil
		}
	}
	if op == OpOr {
		if l.Valid && l.Bool {
			return vftypes.BoolScalar(true), nil
		}
		if r.Valid && r.Bool {
			return vftypes.BoolScalar(true), nil
		}
	}
	if op == OpAnd || op == OpOr {
		if !l.Valid || !r.Valid {
			return vftypes.NullScalar(vftypes.Boolean), nil
		}
		if op == OpAnd {
			return vftypes.BoolScalar(l.Bool && r.Bool), nil
		}
		return vftypes.BoolScalar(l.Bool || r.Bool), nil
	}
	if !l.Valid || !r.Valid {
		if op.IsComparison() {
			return vftypes.NullScalar(vftypes.Boolean), nil
		}
		return vftypes.NullScalar(vftypes.Widen(numericOrFloat64(l.Type), numericOrFloat64(r.Type))), nil
	}

	if op.IsComparison() {
		return evalComparison(op, l, r)
	}
	// JS-style string concatenation: "b" + "ar" folds to "bar", the form
	// computed member-name resolution relies on.
	if op == OpAdd && l.Type.Kind == vftypes.KindUtf8 && r.Type.Kind == vftypes.KindUtf8 {
		return vftypes.StringScalar(l.Str + r.Str), nil
	}
	return evalArithmetic(op, l, r)
}

func numericOrFloat64(t vftypes.Type) vftypes.Type {
	if vftypes.IsNumeric(t) {
		return t
	}
	return vftypes.Float64
}

func evalArithmetic(op BinaryOp, l, r vftypes.Scalar) (vftypes.Scalar, error) {
	if !vftypes.IsNumeric(l.Type) || !vftypes.IsNumeric(r.Type) {
		return vftypes.Scalar{}, vferrors.TypeError("arithmetic operator %q requires numeric operands, got %s and %s", op, l.Type, r.Type)
	}
	lf, rf := asFloat(l), asFloat(r)
	result := vftypes.Widen(l.Type, r.Type)
	var out float64
	switch op {
	case OpAdd:
		out = lf + rf
	case OpSubtract:
		out = lf - rf
	case OpMultiply:
		out = lf * rf
	case OpDivide:
		out = lf / rf
	case OpModulo:
		out = math.Mod(lf, rf)
	default:
		return vftypes.Scalar{}, vferrors.Internal("unknown arithmetic operator %q", op)
	}
	if isFloatKind(result) {
		return vftypes.FloatScalar(result, out), nil
	}
	return vftypes.IntScalar(result, int64(out)), nil
}

func evalComparison(op BinaryOp, l, r vftypes.Scalar) (vftypes.Scalar, error) {
	if l.Type.Kind == vftypes.KindUtf8 || r.Type.Kind == vftypes.KindUtf8 {
		switch op {
		case OpEq:
			return vftypes.BoolScalar(l.Str == r.Str), nil
		case OpNotEq:
			return vftypes.BoolScalar(l.Str != r.Str), nil
		case OpLt:
			return vftypes.BoolScalar(l.Str < r.Str), nil
		case OpLtEq:
			return vftypes.BoolScalar(l.Str <= r.Str), nil
		case OpGt:
			return vftypes.BoolScalar(l.Str > r.Str), nil
		case OpGtEq:
			return vftypes.BoolScalar(l.Str >= r.Str), nil
		}
	}
	lf, rf := asFloat(l), asFloat(r)
	switch op {
	case OpEq:
		return vftypes.BoolScalar(lf == rf), nil
	case OpNotEq:
		return vftypes.BoolScalar(lf != rf), nil
	case OpLt:
		return vftypes.BoolScalar(lf < rf), nil
	case OpLtEq:
		return vftypes.BoolScalar(lf <= rf), nil
	case OpGt:
		return vftypes.BoolScalar(lf > rf), nil
	case OpGtEq:
		return vftypes.BoolScalar(lf >= rf), nil
	default:
		return vftypes.Scalar{}, vferrors.Internal("unknown comparison operator %q", op)
	}
}

func asFloat(s vftypes.Scalar) float64 {
	switch {
	case isFloatKind(s.Type):
		return s.Float
	case isUnsignedKind(s.Type):
		return float64(s.Uint)
	default:
		return float64(s.Int)
	}
}

func isFloatKind(t vftypes.Type) bool {
	return t.Kind == vftypes.KindFloat32 || t.Kind == vftypes.KindFloat64
}

func isUnsignedKind(t vftypes.Type) bool {
	switch t.Kind {
	case vftypes.KindUint8, vftypes.KindUint16, vftypes.KindUint32:
		return true
	default:
		return false
	}
}
