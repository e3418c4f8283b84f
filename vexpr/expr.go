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

// Package vexpr implements the Expression IR: the single,
// language-independent tree of expression nodes shared by the
// expression compiler, the transform engine, and the SQL emitter.
// One small struct per node kind instead of a class hierarchy.
package vexpr

import "github.com/dolthub/vegafusion-go/vftypes"

// Expr is the interface every IR node implements. It intentionally
// exposes no Eval method: this IR is consumed by the SQL emitter and
// by EvalToScalar's constant folder, never interpreted against live
// rows — row execution belongs to the downstream query engine.
type Expr interface {
	exprNode()
}

// Literal wraps a constant Scalar value.
type Literal struct {
	Value vftypes.Scalar
}

func (*Literal) exprNode() {}

// NewLiteral builds a Literal node.
func NewLiteral(v vftypes.Scalar) *Literal { return &Literal{Value: v} }

// Column references a named field of the row currently in scope — the
// `datum` sentinel's member-access target.
type Column struct {
	Name string
	Type vftypes.Type
}

func (*Column) exprNode() {}

// NewColumn builds a Column node.
func NewColumn(name string, t vftypes.Type) *Column { return &Column{Name: name, Type: t} }

// ScalarUdf is a named scalar function call whose return type is
// carried explicitly, since the IR has no function-signature registry
// of its own. The `get[prop]`/`get[i]` member-access lowerings and the
// expression compiler's built-in registry both produce this node
// shape.
type ScalarUdf struct {
	Name       string
	Args       []Expr
	ReturnType vftypes.Type
}

func (*ScalarUdf) exprNode() {}

// NewScalarUdf builds a ScalarUdf node.
func NewScalarUdf(name string, args []Expr, ret vftypes.Type) *ScalarUdf {
	return &ScalarUdf{Name: name, Args: args, ReturnType: ret}
}

// Cast converts Expr's runtime value to Type, following the vftypes
// widening and cast rules.
type Cast struct {
	Expr Expr
	Type vftypes.Type
}

func (*Cast) exprNode() {}

// NewCast builds a Cast node.
func NewCast(e Expr, t vftypes.Type) *Cast { return &Cast{Expr: e, Type: t} }

// BinaryOp enumerates the binary operators the IR defines. Comparison
// and logical operators always produce Boolean; arithmetic operators
// produce the widened numeric type of their operands.
type BinaryOp string

const (
	OpAdd      BinaryOp = "+"
	OpSubtract BinaryOp = "-"
	OpMultiply BinaryOp = "*"
	OpDivide   BinaryOp = "/"
	OpModulo   BinaryOp = "%"
	OpEq       BinaryOp = "="
	OpNotEq    BinaryOp = "<>"
	OpLt       BinaryOp = "<"
	OpLtEq     BinaryOp = "<="
	OpGt       BinaryOp = ">"
	OpGtEq     BinaryOp = ">="
	OpAnd      BinaryOp = "AND"
	OpOr       BinaryOp = "OR"
)

// IsComparison reports whether op always yields a Boolean result.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq, OpAnd, OpOr:
		return true
	default:
		return false
	}
}

// Binary is a two-operand expression.
type Binary struct {
	Op          BinaryOp
	Left, Right Expr
}

func (*Binary) exprNode() {}

// NewBinary builds a Binary node.
func NewBinary(op BinaryOp, l, r Expr) *Binary { return &Binary{Op: op, Left: l, Right: r} }

// UnaryOp enumerates the unary operators the IR defines.
type UnaryOp string

const (
	OpNegate UnaryOp = "-"
	OpNot    UnaryOp = "NOT"
	OpIsNull UnaryOp = "IS NULL"
)

// Unary is a single-operand expression.
type Unary struct {
	Op   UnaryOp
	Expr Expr
}

func (*Unary) exprNode() {}

// NewUnary builds a Unary node.
func NewUnary(op UnaryOp, e Expr) *Unary { return &Unary{Op: op, Expr: e} }

// WhenThen is one branch of a Case expression.
type WhenThen struct {
	Cond  Expr
	Value Expr
}

// Case is a SQL-style CASE WHEN ... THEN ... ELSE ... END expression,
// produced by the conditional ternary operator and by dialect cast
// transformers such as the boolean-to-string CASE rewrite.
type Case struct {
	Whens []WhenThen
	Else  Expr // nil means implicit NULL
}

func (*Case) exprNode() {}

// NewCase builds a Case node.
func NewCase(whens []WhenThen, els Expr) *Case { return &Case{Whens: whens, Else: els} }

// Sort wraps an expression with ordering direction and null placement,
// used both as a transform's ORDER BY key and inside a WindowFn's
// Order list.
type Sort struct {
	Expr       Expr
	Ascending  bool
	NullsFirst bool
}

func (*Sort) exprNode() {}

// NewSort builds a Sort node.
func NewSort(e Expr, ascending, nullsFirst bool) *Sort {
	return &Sort{Expr: e, Ascending: ascending, NullsFirst: nullsFirst}
}

// WindowFrame describes a window function's frame bounds. Bounded is
// false for an unbounded-preceding/unbounded-following frame; dialects
// that report !SupportsBoundedWindowFrames force Bounded to false at
// emission time regardless of what the transform requested.
type WindowFrame struct {
	Bounded   bool
	Preceding int // rows preceding, meaningful only when Bounded
	Following int // rows following, meaningful only when Bounded
}

// WindowFn is a window function invocation: a named kind (e.g.
// "row_number", "rank", "sum", "lag", "lead"), its arguments, PARTITION
// BY keys, ORDER BY keys, and an optional frame.
type WindowFn struct {
	Kind       string
	Args       []Expr
	Partition  []Expr
	Order      []*Sort
	Frame      *WindowFrame
	ReturnType vftypes.Type
}

func (*WindowFn) exprNode() {}

// NewWindowFn builds a WindowFn node.
func NewWindowFn(kind string, args, partition []Expr, order []*Sort, frame *WindowFrame, ret vftypes.Type) *WindowFn {
	return &WindowFn{Kind: kind, Args: args, Partition: partition, Order: order, Frame: frame, ReturnType: ret}
}

// Wildcard represents `*` as used in COUNT(*).
type Wildcard struct{}

func (*Wildcard) exprNode() {}
