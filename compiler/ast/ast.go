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

// Package ast defines the parsed expression tree the tokenizer/parser in
// package compiler builds from a chart-spec expression string, before
// compiler.Compile lowers it to the Expression IR (vexpr.Expr): a dumb
// syntax tree, typed and resolved by a later pass, not by the parser
// itself.
package ast

// Node is any parsed expression node.
type Node interface {
	exprNode()
}

// Literal is a parsed constant: float64 for numbers, string for strings,
// bool for true/false, nil for null.
type Literal struct {
	Value any
}

func (*Literal) exprNode() {}

// Identifier is a bare name: "datum", a signal name, or a built-in constant
// like "PI".
type Identifier struct {
	Name string
}

func (*Identifier) exprNode() {}

// Member is `Object.Prop` (Computed=false, Prop holds the property name,
// Index is nil) or `Object[Index]` (Computed=true, Index holds the parsed
// expression, Prop is empty).
type Member struct {
	Object   Node
	Prop     string
	Index    Node
	Computed bool
}

func (*Member) exprNode() {}

// Call is `Callee(Args...)`. Callee is always a bare function name in the
// grammar this parser accepts (no first-class function values).
type Call struct {
	Callee string
	Args   []Node
}

func (*Call) exprNode() {}

// BinaryOp enumerates the source-level binary/logical operators the parser
// recognizes, before compiler.Compile maps them onto vexpr.BinaryOp.
type BinaryOp string

const (
	Add            BinaryOp = "+"
	Subtract       BinaryOp = "-"
	Multiply       BinaryOp = "*"
	Divide         BinaryOp = "/"
	Modulo         BinaryOp = "%"
	Equal          BinaryOp = "=="
	StrictEqual    BinaryOp = "==="
	NotEqual       BinaryOp = "!="
	StrictNotEqual BinaryOp = "!=="
	Less           BinaryOp = "<"
	LessEq         BinaryOp = "<="
	Greater        BinaryOp = ">"
	GreaterEq      BinaryOp = ">="
	And            BinaryOp = "&&"
	Or             BinaryOp = "||"
)

// Binary is a two-operand expression (arithmetic, comparison, or logical).
type Binary struct {
	Op          BinaryOp
	Left, Right Node
}

func (*Binary) exprNode() {}

// UnaryOp enumerates the source-level unary operators.
type UnaryOp string

const (
	Negate UnaryOp = "-"
	Not    UnaryOp = "!"
)

// Unary is a single-operand prefix expression.
type Unary struct {
	Op      UnaryOp
	Operand Node
}

func (*Unary) exprNode() {}

// Conditional is the ternary `Test ? Consequent : Alternate`.
type Conditional struct {
	Test       Node
	Consequent Node
	Alternate  Node
}

func (*Conditional) exprNode() {}

// ArrayLiteral is a bracketed list `[a, b, c]`. The parser accepts it
// anywhere a primary expression may appear; compiler.Compile rejects it
// with a CompilationError wherever it appears, including as a call
// argument, since no built-in takes a list argument.
type ArrayLiteral struct {
	Elements []Node
}

func (*ArrayLiteral) exprNode() {}
