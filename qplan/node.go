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

// Package qplan implements the Query Plan Node graph: a directed acyclic
// graph of named relational operators that the Transform Engine and
// Planner build up and the Dialect Layer ultimately renders to SQL text.
//
// Nodes are immutable after construction; each builder returns a new node
// that references its parent and never mutates it in place.
package qplan

import (
	"github.com/dolthub/vegafusion-go/dialect"
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// OrdinalColumn is the stable synthetic column name used to preserve
// original input row order across operators that otherwise lose it
// (Stack's running-sum tie-break, Impute's synthesized-row placement).
const OrdinalColumn = "__row_number"

// ImputeColumn flags rows whose field an Impute transform filled: true
// for rows the transform added and for real rows whose field was null,
// NULL for every other row.
const ImputeColumn = "_impute"

// JoinKind enumerates the join types a Join node supports.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
)

// Node is a relational operator in the query plan DAG. Every
// implementation is a small immutable value; building a new operator over
// an existing node never mutates that node.
type Node interface {
	// Schema is this node's Arrow-style logical schema, computed once at
	// construction time from the node's inputs.
	Schema() vftypes.Schema
	// Dialect is the SQL backend this node (and everything beneath it)
	// targets.
	Dialect() dialect.Dialect
	// Name is the stable identifier other nodes use to reference this
	// node in a FROM/JOIN clause.
	Name() string
	node()
}

type base struct {
	name    string
	schema  vftypes.Schema
	dialect dialect.Dialect
}

func (b base) Schema() vftypes.Schema   { return b.schema }
func (b base) Dialect() dialect.Dialect { return b.dialect }
func (b base) Name() string             { return b.name }
func (base) node()                      {}

// Source is a leaf node referencing a table known to a Connection.
type Source struct {
	base
	Table string
}

// NewSource builds a leaf node over a named table with the given schema.
func NewSource(name, table string, schema vftypes.Schema, d dialect.Dialect) *Source {
	return &Source{base: base{name: name, schema: schema, dialect: d}, Table: table}
}

// Select projects a list of expressions (with output aliases) over its
// child, the qplan analogue of plan.Project.
type Select struct {
	base
	Child   Node
	Exprs   []vexpr.Expr
	Aliases []string
}

// NewSelect builds a Select node whose output schema is the given
// schema, as supplied by the caller.
func NewSelect(name string, child Node, exprs []vexpr.Expr, aliases []string, schema vftypes.Schema) *Select {
	return &Select{base: base{name: name, schema: schema, dialect: child.Dialect()}, Child: child, Exprs: exprs, Aliases: aliases}
}

// Filter restricts its child to rows where Predicate evaluates true.
type Filter struct {
	base
	Child     Node
	Predicate vexpr.Expr
}

// NewFilter builds a Filter node; its schema is identical to its child's.
func NewFilter(name string, child Node, predicate vexpr.Expr) *Filter {
	return &Filter{base: base{name: name, schema: child.Schema(), dialect: child.Dialect()}, Child: child, Predicate: predicate}
}

// AggExpr pairs an aggregate expression with its output alias.
type AggExpr struct {
	Expr  vexpr.Expr
	Alias string
}

// Aggregate groups its child by GroupBy and computes Aggs per group, the
// qplan analogue of plan.GroupBy.
type Aggregate struct {
	base
	Child   Node
	GroupBy []vexpr.Expr
	Aggs    []AggExpr
}

// NewAggregate builds an Aggregate node.
func NewAggregate(name string, child Node, groupBy []vexpr.Expr, aggs []AggExpr, schema vftypes.Schema) *Aggregate {
	return &Aggregate{base: base{name: name, schema: schema, dialect: child.Dialect()}, Child: child, GroupBy: groupBy, Aggs: aggs}
}

// Join combines Left and Right on a predicate, the qplan analogue of
// plan.JoinNode.
type Join struct {
	base
	Kind  JoinKind
	Left  Node
	Right Node
	On    vexpr.Expr
}

// NewJoin builds a Join node over the given output schema (typically the
// concatenation of Left's and Right's schemas).
func NewJoin(name string, kind JoinKind, left, right Node, on vexpr.Expr, schema vftypes.Schema) *Join {
	return &Join{base: base{name: name, schema: schema, dialect: left.Dialect()}, Kind: kind, Left: left, Right: right, On: on}
}

// Window evaluates one or more window functions over its child, the qplan
// analogue of plan.Window.
type Window struct {
	base
	Child Node
	Fns   []vexpr.Expr
}

// NewWindow builds a Window node.
func NewWindow(name string, child Node, fns []vexpr.Expr, schema vftypes.Schema) *Window {
	return &Window{base: base{name: name, schema: schema, dialect: child.Dialect()}, Child: child, Fns: fns}
}

// Union concatenates Children, the qplan analogue of plan.Union. Children
// must share a schema; Union's own schema is that shared schema.
type Union struct {
	base
	Children []Node
}

// NewUnion builds a Union node over homogeneous children.
func NewUnion(name string, children []Node) *Union {
	var d dialect.Dialect
	var schema vftypes.Schema
	if len(children) > 0 {
		d = children[0].Dialect()
		schema = children[0].Schema()
	}
	return &Union{base: base{name: name, schema: schema, dialect: d}, Children: children}
}

// Values is a leaf node over a literal table: a fixed set of rows with
// named columns, the node a chartspec dataset's inline `values` (or any
// other caller-supplied constant rows, e.g. a synthesized DISTINCT-key
// list) lowers to. Rendered through dialect.RenderValues, the single
// choke point for literal tables.
type Values struct {
	base
	Columns []string
	Rows    [][]vftypes.Scalar
}

// NewValues builds a Values node. Every row in rows must have the same
// length as columns; schema describes the output column types.
func NewValues(name string, columns []string, rows [][]vftypes.Scalar, schema vftypes.Schema, d dialect.Dialect) *Values {
	return &Values{base: base{name: name, schema: schema, dialect: d}, Columns: columns, Rows: rows}
}

// ChainQueryStr wraps a raw SQL template with a `{parent}` placeholder, the
// escape hatch that lets a transform emit SQL shapes (e.g. Impute's
// row-cross-join) with no direct relational-operator counterpart above.
type ChainQueryStr struct {
	base
	Template string
	Parent   Node
}

// NewChainQueryStr builds a ChainQueryStr node. template must reference
// `{parent}` somewhere in its FROM clause; Render substitutes it with
// parent's own rendered SQL.
func NewChainQueryStr(name, template string, parent Node, schema vftypes.Schema) *ChainQueryStr {
	return &ChainQueryStr{base: base{name: name, schema: schema, dialect: parent.Dialect()}, Template: template, Parent: parent}
}
