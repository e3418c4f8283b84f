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

package chartspec

import "regexp"

// TransformSpec is the tagged union over the 15 supported transform
// operators plus an Unknown fallback for anything the Planner must retain
// client-side unconditionally.
//
// Every concrete operator struct below additionally satisfies this
// interface so the Transform Engine and Planner can each switch on the
// concrete type without a parallel "Kind" enum field, in the spirit of the
// Expression IR's exprNode() marker (vexpr.Expr).
type TransformSpec interface {
	transformNode()
	// OutputSignals names the signals this transform emits into its
	// dataset's scope when evaluated (possibly empty).
	OutputSignals() []string
	// Supported reports whether the Planner's supportability analysis
	// can push this transform entirely to the server. A transform is
	// unsupported when it references a builtin the expression compiler
	// lowers to a form no dialect can ever emit (the isArray/isBoolean/
	// isNumber/isObject/isString/isDate family; see compiler/builtins.go),
	// or when it names a configuration this implementation does not
	// translate to SQL (Impute with more than one groupby field). Pivot
	// and Unknown are never supported.
	Supported() bool
}

type transformBase struct{}

func (transformBase) transformNode() {}

// nonPushableBuiltin matches a call to one of the type-checking
// predicates the Expression Compiler deliberately emits under names no
// dialect recognizes (compiler/builtins.go), the signal that an
// expression-bearing transform cannot be pushed to the server.
var nonPushableBuiltin = regexp.MustCompile(`\b(isArray|isBoolean|isNumber|isObject|isString|isDate)\s*\(`)

// exprSupported reports whether an expression string is free of
// non-pushable builtin calls. It is a syntactic scan rather than a full
// parse: the Planner's supportability pass runs ahead of, and far more
// often than, compilation itself, so it must stay cheap; an expression
// this scan passes that still fails to compile simply surfaces as a
// CompilationError from the Transform Engine later, same as any other
// malformed expression.
func exprSupported(expr string) bool {
	return !nonPushableBuiltin.MatchString(expr)
}

// Filter removes rows where Expr evaluates to a falsy value.
type Filter struct {
	transformBase
	Expr string `json:"expr"`
}

func (Filter) OutputSignals() []string { return nil }

func (f Filter) Supported() bool { return exprSupported(f.Expr) }

// Formula adds or replaces a field computed from Expr.
type Formula struct {
	transformBase
	Expr string `json:"expr"`
	As   string `json:"as"`
}

func (Formula) OutputSignals() []string { return nil }

func (f Formula) Supported() bool { return exprSupported(f.Expr) }

// Aggregate groups rows by Groupby and computes Ops over Fields, writing
// results to As.
type Aggregate struct {
	transformBase
	Groupby []string `json:"groupby,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	Ops     []string `json:"ops,omitempty"`
	As      []string `json:"as,omitempty"`
}

func (Aggregate) OutputSignals() []string { return nil }

func (Aggregate) Supported() bool { return true }

// Bin computes bin boundaries for Field and appends start/stop columns.
type Bin struct {
	transformBase
	Field   string    `json:"field"`
	Extent  []float64 `json:"extent"`
	Maxbins float64   `json:"maxbins,omitempty"`
	Base    float64   `json:"base,omitempty"`
	Step    float64   `json:"step,omitempty"`
	Steps   []float64 `json:"steps,omitempty"`
	Minstep float64   `json:"minstep,omitempty"`
	Divide  []float64 `json:"divide,omitempty"`
	Nice    bool      `json:"nice,omitempty"`
	Anchor  *float64  `json:"anchor,omitempty"`
	Span    *float64  `json:"span,omitempty"`
	Signal  string    `json:"signal,omitempty"`
	As      []string  `json:"as,omitempty"`
}

func (b Bin) OutputSignals() []string {
	if b.Signal == "" {
		return nil
	}
	return []string{b.Signal}
}

func (Bin) Supported() bool { return true }

// Collect sorts rows by Sort, optionally in descending key order.
type Collect struct {
	transformBase
	Sort []SortKey `json:"sort"`
}

func (Collect) OutputSignals() []string { return nil }

func (Collect) Supported() bool { return true }

// SortKey names a field and its sort direction for Collect.
type SortKey struct {
	Field string `json:"field"`
	Order string `json:"order,omitempty"` // "ascending" | "descending"
}

// Extent computes the [min,max] of Field and emits it as Signal.
type Extent struct {
	transformBase
	Field  string `json:"field"`
	Signal string `json:"signal"`
}

func (e Extent) OutputSignals() []string { return []string{e.Signal} }

func (Extent) Supported() bool { return true }

// Fold reshapes wide Fields into long key/value pairs (As names the
// key/value output columns).
type Fold struct {
	transformBase
	Fields []string `json:"fields"`
	As     []string `json:"as,omitempty"`
}

func (Fold) OutputSignals() []string { return nil }

func (Fold) Supported() bool { return true }

// Identifier adds a unique row identifier column named As.
type Identifier struct {
	transformBase
	As string `json:"as"`
}

func (Identifier) OutputSignals() []string { return nil }

func (Identifier) Supported() bool { return true }

// Impute fills missing Key/Groupby combinations for Field with Value.
type Impute struct {
	transformBase
	Field   string   `json:"field"`
	Key     string   `json:"key"`
	Groupby []string `json:"groupby,omitempty"`
	Value   any      `json:"value"`
}

func (Impute) OutputSignals() []string { return nil }

// Supported reports false for more than one groupby field, the
// configuration the engine does not translate to SQL.
func (im Impute) Supported() bool { return len(im.Groupby) <= 1 }

// JoinAggregate computes Ops over Fields within Groupby partitions without
// collapsing rows (aggregate-as-window, unlike Aggregate).
type JoinAggregate struct {
	transformBase
	Groupby []string `json:"groupby,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	Ops     []string `json:"ops,omitempty"`
	As      []string `json:"as,omitempty"`
}

func (JoinAggregate) OutputSignals() []string { return nil }

func (JoinAggregate) Supported() bool { return true }

// Pivot reshapes long Field/Value pairs into wide columns named by the
// distinct values of Field.
type Pivot struct {
	transformBase
	Field string `json:"field"`
	Value string `json:"value"`
	Op    string `json:"op,omitempty"`
}

func (Pivot) OutputSignals() []string { return nil }

// Supported is always false: the Transform Engine's Pivot (transform/
// pivot.go) cannot build a column-per-distinct-value plan without a
// second connection.fetch_query round trip its synchronous Eval
// contract has no slot for, so the Planner must demote any dataset
// using Pivot to the client rather than extract it and fail later.
func (Pivot) Supported() bool { return false }

// Project selects a subset of Fields, optionally renaming via As.
type Project struct {
	transformBase
	Fields []string `json:"fields"`
	As     []string `json:"as,omitempty"`
}

func (Project) OutputSignals() []string { return nil }

func (Project) Supported() bool { return true }

// Stack computes running-sum start/stop offsets for Field within Groupby
// partitions.
type Stack struct {
	transformBase
	Field      string    `json:"field"`
	Groupby    []string  `json:"groupby,omitempty"`
	SortFields []string  `json:"sort,omitempty"`
	SortOrder  []string  `json:"order,omitempty"`
	Offset     string    `json:"offset,omitempty"` // "zero" | "normalize" | "center"
	As         [2]string `json:"as,omitempty"`
}

func (Stack) OutputSignals() []string { return nil }

func (Stack) Supported() bool { return true }

// TimeUnit truncates Field to the given time granularity, writing As.
type TimeUnit struct {
	transformBase
	Field string `json:"field"`
	Units string `json:"units"`
	As    string `json:"as,omitempty"`
}

func (TimeUnit) OutputSignals() []string { return nil }

func (TimeUnit) Supported() bool { return true }

// Window computes one or more window functions over ordered/partitioned
// rows.
type Window struct {
	transformBase
	Groupby    []string  `json:"groupby,omitempty"`
	SortFields []string  `json:"sort,omitempty"`
	SortOrder  []string  `json:"order,omitempty"`
	Ops        []string  `json:"ops"`
	Fields     []string  `json:"fields,omitempty"`
	Params     []float64 `json:"params,omitempty"`
	As         []string  `json:"as,omitempty"`
}

func (Window) OutputSignals() []string { return nil }

func (Window) Supported() bool { return true }

// Unknown wraps a transform type the Planner does not recognize, always
// retained client-side.
type Unknown struct {
	transformBase
	Kind string         `json:"type"`
	Raw  map[string]any `json:"-"`
}

func (Unknown) OutputSignals() []string { return nil }

func (Unknown) Supported() bool { return false }
