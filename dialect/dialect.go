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

// Package dialect implements the dialect layer: per-backend capability
// tables, rewrite-rule registries, and the SQL emitter that walks the
// Expression IR. Each Dialect is an immutable value, never a subclass,
// and its rewrite rules are plain function values keyed by operator or
// function name.
package dialect

import "github.com/dolthub/vegafusion-go/vexpr"

// ValuesModeKind selects how a literal table (a VALUES clause) renders
// for a given backend.
type ValuesModeKind int

const (
	// ValuesWithSubqueryColumnAliases renders
	// SELECT * FROM (VALUES (1,2),(3,4)) AS t(a,b).
	ValuesWithSubqueryColumnAliases ValuesModeKind = iota
	// ValuesWithSelectColumnAliases renders
	// SELECT column1 AS a, column2 AS b FROM (VALUES (1,2),(3,4)).
	ValuesWithSelectColumnAliases
	// SelectUnion renders SELECT 1 AS a, 2 AS b UNION ALL SELECT 3, 4.
	SelectUnion
)

// ValuesMode is the values_mode capability plus its sub-options.
type ValuesMode struct {
	Kind ValuesModeKind

	// ExplicitRow: wrap each VALUES row in ROW(...) — only meaningful
	// for the two Values* kinds.
	ExplicitRow bool

	// ColumnPrefix/BaseIndex: only meaningful for
	// ValuesWithSelectColumnAliases, where the backend names unaliased
	// VALUES columns "<ColumnPrefix><BaseIndex+i>" (e.g. Snowflake's
	// COLUMN1, SQLite's column1).
	ColumnPrefix string
	BaseIndex    int
}

// Dialect is an immutable per-backend capability table and rewrite-rule
// registry. Every field is populated once by a constructor function
// (Athena, BigQuery, ...) and never mutated afterward.
type Dialect struct {
	Name string

	// QuoteStyle is the identifier quote character.
	QuoteStyle byte

	BinaryOps          map[vexpr.BinaryOp]bool
	BinaryOpTransforms map[vexpr.BinaryOp]BinaryOperatorTransformer

	ScalarFunctions    map[string]bool
	AggregateFunctions map[string]bool
	WindowFunctions    map[string]bool

	ScalarTransformers    map[string]FunctionTransformer
	AggregateTransformers map[string]FunctionTransformer

	ValuesMode ValuesMode

	SupportsNullOrdering                      bool
	ImputeFullyQualified                      bool
	JoinAggregateFullyQualified               bool
	SupportsBoundedWindowFrames               bool
	SupportsFramesInNavigationWindowFunctions bool

	// CastDatatypes maps a logical Kind to the textual SQL type name
	// this dialect renders for CAST(... AS <name>).
	CastDatatypes map[CastKind]string

	CastTransformers map[CastPair]CastTransformer

	CastPropagatesNull      bool
	SupportsNonFiniteFloats bool
}

// SupportsScalarFunction reports whether name is a native scalar
// function on this dialect (ignoring any transformer).
func (d Dialect) SupportsScalarFunction(name string) bool { return d.ScalarFunctions[name] }

// SupportsAggregateFunction reports whether name is a native aggregate
// function on this dialect.
func (d Dialect) SupportsAggregateFunction(name string) bool { return d.AggregateFunctions[name] }

// SupportsWindowFunction reports whether name is a native window
// function on this dialect.
func (d Dialect) SupportsWindowFunction(name string) bool { return d.WindowFunctions[name] }

// SupportsBinaryOp reports whether op is native on this dialect
// (ignoring any registered transform).
func (d Dialect) SupportsBinaryOp(op vexpr.BinaryOp) bool { return d.BinaryOps[op] }
