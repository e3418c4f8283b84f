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

// Package compiler implements the expression compiler: it lowers a
// parsed chart-spec expression (compiler/ast.Node, produced by Parse) to
// the Expression IR (vexpr.Expr), resolving `datum` member access against
// the dataset schema in scope and constant-folding computed member
// indices. A single recursive function dispatches on node shape,
// consulting a schema for name resolution, with no parser rewriting of
// its own.
package compiler

import (
	"strconv"

	"github.com/dolthub/vegafusion-go/compiler/ast"
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// datumName is the sentinel identifier every chart-spec expression uses
// to reference the row currently in scope.
const datumName = "datum"

// CompilationConfig threads the context a compilation needs: the scope's
// currently-resolved signal values (folded to scalars upstream, since a
// signal's own expression is compiled and evaluated before anything that
// references it) and the named schemas of datasets reachable via
// cross-dataset lookups.
type CompilationConfig struct {
	SignalScope map[string]vftypes.Scalar
	DataScope   map[string]vftypes.Schema
	Timezone    string
}

// Compile lowers src, a chart-spec expression string, to an Expression IR
// tree evaluated against schema (the `datum` row shape in scope).
func Compile(src string, schema vftypes.Schema, cfg CompilationConfig) (vexpr.Expr, error) {
	node, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return compileNode(node, schema, cfg)
}

func compileNode(n ast.Node, schema vftypes.Schema, cfg CompilationConfig) (vexpr.Expr, error) {
	switch node := n.(type) {
	case *ast.Literal:
		return compileLiteral(node)

	case *ast.Identifier:
		return compileIdentifier(node, cfg)

	case *ast.Member:
		return compileMember(node, schema, cfg)

	case *ast.Call:
		return compileCall(node, schema, cfg)

	case *ast.Unary:
		return compileUnary(node, schema, cfg)

	case *ast.Binary:
		return compileBinary(node, schema, cfg)

	case *ast.Conditional:
		return compileConditional(node, schema, cfg)

	case *ast.ArrayLiteral:
		return nil, compilationErrorf("array literals are not supported")

	default:
		return nil, vferrors.Internal("compiler: unknown ast node %T", n)
	}
}

func compilationErrorf(format string, args ...interface{}) error {
	return vferrors.Compilation(format, args...)
}

func compileLiteral(n *ast.Literal) (vexpr.Expr, error) {
	switch v := n.Value.(type) {
	case nil:
		return vexpr.NewLiteral(vftypes.NullScalar(vftypes.Float64)), nil
	case bool:
		return vexpr.NewLiteral(vftypes.BoolScalar(v)), nil
	case float64:
		return vexpr.NewLiteral(vftypes.FloatScalar(vftypes.Float64, v)), nil
	case string:
		return vexpr.NewLiteral(vftypes.StringScalar(v)), nil
	default:
		return nil, vferrors.Internal("compiler: unrecognized literal value %T", v)
	}
}

// compileIdentifier resolves a bare name as a signal/constant.
// `datum` alone, not followed by member access, is not a value this
// language can produce: every use of `datum` must immediately narrow to a
// field.
func compileIdentifier(n *ast.Identifier, cfg CompilationConfig) (vexpr.Expr, error) {
	if n.Name == datumName {
		return nil, compilationErrorf("datum must be narrowed with member access (datum.field or datum[expr])")
	}
	if v, ok := cfg.SignalScope[n.Name]; ok {
		return vexpr.NewLiteral(v), nil
	}
	return nil, compilationErrorf("unresolved identifier %q", n.Name)
}

func isDatum(n ast.Node) bool {
	id, ok := n.(*ast.Identifier)
	return ok && id.Name == datumName
}

// compileMember applies the member-access lowering rules in order:
// datum access, struct field access, list/string indexed access, and the
// `.length` fallback.
func compileMember(n *ast.Member, schema vftypes.Schema, cfg CompilationConfig) (vexpr.Expr, error) {
	if isDatum(n.Object) {
		prop, err := resolveMemberName(n, schema, cfg)
		if err != nil {
			return nil, err
		}
		field, ok := schema.FieldByName(prop)
		if !ok {
			return nil, vferrors.Specification("datum has no field %q", prop)
		}
		return vexpr.NewColumn(prop, field.Type), nil
	}

	obj, err := compileNode(n.Object, schema, cfg)
	if err != nil {
		return nil, err
	}
	objType, err := vexpr.TypeOf(obj, schema)
	if err != nil {
		return nil, err
	}

	if objType.Kind == vftypes.KindStruct {
		name, err := resolveMemberName(n, schema, cfg)
		if err != nil {
			return nil, err
		}
		field, ok := fieldByName(objType.Fields, name)
		if ok {
			return vexpr.NewScalarUdf("get["+name+"]", []vexpr.Expr{obj}, field.Type), nil
		}
		// Fall through to the .length rule below for a struct with no
		// matching field named "length".
	}

	if objType.Kind == vftypes.KindList || objType.Kind == vftypes.KindUtf8 {
		if idx, ok, err := memberIntIndex(n, schema, cfg); err != nil {
			return nil, err
		} else if ok {
			elemType := vftypes.Utf8
			if objType.Kind == vftypes.KindList {
				elemType = *objType.Elem
			}
			idxExpr := vexpr.NewLiteral(vftypes.IntScalar(vftypes.Int64, int64(idx)))
			name := "get[" + strconv.Itoa(idx) + "]"
			return vexpr.NewScalarUdf(name, []vexpr.Expr{obj, idxExpr}, elemType), nil
		}
	}

	// obj.length on a non-object resolves to length(obj) — this is
	// also the catch-all for struct/list/string .length access, since
	// none of those kinds carry a builtin "length" field of their own.
	if !n.Computed && n.Prop == "length" {
		return vexpr.NewScalarUdf("length", []vexpr.Expr{obj}, vftypes.Int64), nil
	}

	return nil, compilationErrorf("unsupported member access on %s", objType)
}

func fieldByName(fields []vftypes.Field, name string) (vftypes.Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return vftypes.Field{}, false
}

// resolveMemberName returns the literal property name for a member
// access: n.Prop directly for dotted access, or the constant-folded
// string value of n.Index for bracketed access.
func resolveMemberName(n *ast.Member, schema vftypes.Schema, cfg CompilationConfig) (string, error) {
	if !n.Computed {
		return n.Prop, nil
	}
	idxExpr, err := compileNode(n.Index, schema, cfg)
	if err != nil {
		return "", err
	}
	v, err := vexpr.EvalToScalar(idxExpr, vexpr.Scope{Signals: cfg.SignalScope, Data: cfg.DataScope})
	if err != nil {
		cerr := vferrors.Compilation("member index must be a constant expression")
		cerr.Cause = err
		return "", cerr
	}
	if v.Type.Kind == vftypes.KindUtf8 {
		return v.Str, nil
	}
	return "", compilationErrorf("member index must fold to a string")
}

// memberIntIndex returns the constant-folded non-negative integer index of
// a member access, for list/string positional indexing: `obj[i]` when
// Computed, or `obj.i` when the dotted property text itself parses as a
// non-negative integer.
func memberIntIndex(n *ast.Member, schema vftypes.Schema, cfg CompilationConfig) (int, bool, error) {
	if !n.Computed {
		i, err := strconv.Atoi(n.Prop)
		if err != nil || i < 0 {
			return 0, false, nil
		}
		return i, true, nil
	}
	idxExpr, err := compileNode(n.Index, schema, cfg)
	if err != nil {
		return 0, false, err
	}
	v, err := vexpr.EvalToScalar(idxExpr, vexpr.Scope{Signals: cfg.SignalScope, Data: cfg.DataScope})
	if err != nil {
		// A non-constant index into a list/string is outside this
		// grammar's supported positional-access form.
		return 0, false, nil
	}
	if !vftypes.IsNumeric(v.Type) {
		return 0, false, nil
	}
	i := int(v.Int)
	if isFloatKindKind(v.Type) {
		i = int(v.Float)
	}
	if i < 0 {
		return 0, false, nil
	}
	return i, true, nil
}

func isFloatKindKind(t vftypes.Type) bool {
	return t.Kind == vftypes.KindFloat32 || t.Kind == vftypes.KindFloat64
}

// compileCall dispatches to the built-in registry; an unknown callee is
// a CompilationError.
func compileCall(n *ast.Call, schema vftypes.Schema, cfg CompilationConfig) (vexpr.Expr, error) {
	b, ok := builtins[n.Callee]
	if !ok {
		return nil, compilationErrorf("unknown function %q", n.Callee)
	}
	args := make([]vexpr.Expr, len(n.Args))
	for i, a := range n.Args {
		arg, err := compileNode(a, schema, cfg)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return b.lower(args)
}

func compileUnary(n *ast.Unary, schema vftypes.Schema, cfg CompilationConfig) (vexpr.Expr, error) {
	operand, err := compileNode(n.Operand, schema, cfg)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.Negate:
		return vexpr.NewUnary(vexpr.OpNegate, operand), nil
	case ast.Not:
		return vexpr.NewUnary(vexpr.OpNot, operand), nil
	default:
		return nil, vferrors.Internal("compiler: unknown unary operator %q", n.Op)
	}
}

// compileBinary maps the parsed operator one-to-one onto an IR BinaryOp.
// `===`/`!==` map to `=`/`<>` with strict-equality semantics restricted to
// matching operand types; this compiler's IR has no looser `==`
// coercion path distinct from `===`, so both map to the same IR operator
// once the type check passes.
func compileBinary(n *ast.Binary, schema vftypes.Schema, cfg CompilationConfig) (vexpr.Expr, error) {
	left, err := compileNode(n.Left, schema, cfg)
	if err != nil {
		return nil, err
	}
	right, err := compileNode(n.Right, schema, cfg)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.StrictEqual, ast.Equal:
		if err := requireMatchingTypes(left, right, schema); err != nil {
			return nil, err
		}
		return vexpr.NewBinary(vexpr.OpEq, left, right), nil
	case ast.StrictNotEqual, ast.NotEqual:
		if err := requireMatchingTypes(left, right, schema); err != nil {
			return nil, err
		}
		return vexpr.NewBinary(vexpr.OpNotEq, left, right), nil
	case ast.Add:
		return vexpr.NewBinary(vexpr.OpAdd, left, right), nil
	case ast.Subtract:
		return vexpr.NewBinary(vexpr.OpSubtract, left, right), nil
	case ast.Multiply:
		return vexpr.NewBinary(vexpr.OpMultiply, left, right), nil
	case ast.Divide:
		return vexpr.NewBinary(vexpr.OpDivide, left, right), nil
	case ast.Modulo:
		return vexpr.NewBinary(vexpr.OpModulo, left, right), nil
	case ast.Less:
		return vexpr.NewBinary(vexpr.OpLt, left, right), nil
	case ast.LessEq:
		return vexpr.NewBinary(vexpr.OpLtEq, left, right), nil
	case ast.Greater:
		return vexpr.NewBinary(vexpr.OpGt, left, right), nil
	case ast.GreaterEq:
		return vexpr.NewBinary(vexpr.OpGtEq, left, right), nil
	case ast.And:
		return vexpr.NewBinary(vexpr.OpAnd, left, right), nil
	case ast.Or:
		return vexpr.NewBinary(vexpr.OpOr, left, right), nil
	default:
		return nil, vferrors.Internal("compiler: unknown binary operator %q", n.Op)
	}
}

func requireMatchingTypes(left, right vexpr.Expr, schema vftypes.Schema) error {
	lt, err := vexpr.TypeOf(left, schema)
	if err != nil {
		return err
	}
	rt, err := vexpr.TypeOf(right, schema)
	if err != nil {
		return err
	}
	if vftypes.IsNumeric(lt) && vftypes.IsNumeric(rt) {
		return nil
	}
	if lt.Kind != rt.Kind {
		return vferrors.TypeError("strict equality requires matching types, got %s and %s", lt, rt)
	}
	return nil
}

func compileConditional(n *ast.Conditional, schema vftypes.Schema, cfg CompilationConfig) (vexpr.Expr, error) {
	test, err := compileNode(n.Test, schema, cfg)
	if err != nil {
		return nil, err
	}
	consequent, err := compileNode(n.Consequent, schema, cfg)
	if err != nil {
		return nil, err
	}
	alternate, err := compileNode(n.Alternate, schema, cfg)
	if err != nil {
		return nil, err
	}
	return vexpr.NewCase([]vexpr.WhenThen{{Cond: test, Value: consequent}}, alternate), nil
}
