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

package dialect

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// ToSQL walks expr and renders it as a SQL string under dialect,
// consulting schema for Column type resolution. For every
// function call, binary op, cast, or aggregate/window invocation: (1)
// if the name/op is native, emit directly; (2) else if a transformer
// is registered, delegate to it and re-emit the result; (3) else fail
// with vferrors.UnsupportedForDialect.
//
// Rendering is direct string composition rather than a vitess sqlparser
// AST round trip: the vitess printer speaks only MySQL (backtick
// identifiers, backslash string escapes), and this emitter has to speak
// all twelve backends with their own quote characters and literal
// syntax. The sqlparser dependency still backs Validate's parse-back
// check below and vfconn's query sanity checking, the two places a
// MySQL-flavored grammar is what we actually want.
func ToSQL(e vexpr.Expr, d Dialect, schema vftypes.Schema) (string, error) {
	return emitter{d: d, schema: schema, rewrite: true}.render(e)
}

// ToSQLAggregate renders e the same way as ToSQL, except that if e is a
// top-level ScalarUdf call its name is checked against the dialect's
// AggregateFunctions/AggregateTransformers instead of its scalar
// counterparts. The Expression IR has no separate aggregate-call node
// (its node set is closed), so the Aggregate query-plan node uses this
// entry point to disambiguate `sum(x)` from a same-named scalar function.
func ToSQLAggregate(e vexpr.Expr, d Dialect, schema vftypes.Schema) (string, error) {
	udf, ok := e.(*vexpr.ScalarUdf)
	if !ok {
		return ToSQL(e, d, schema)
	}
	return emitter{d: d, schema: schema, rewrite: true}.functionCall(udf.Name, udf.Args, udf.ReturnType, true)
}

// QuoteIdent wraps name in d's identifier quote character, doubling any
// embedded quote.
func (d Dialect) QuoteIdent(name string) string {
	if d.QuoteStyle == 0 {
		return name
	}
	q := string(d.QuoteStyle)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// emitter carries one rendering pass's context. rewrite enables the
// dialect's transformer tables; it is cleared while rendering a
// transformer's own output, so a rewrite that reuses its input's name
// (Redshift's ln → ln(CAST(..)), Snowflake's log2 → log(2, v)) renders
// as the dialect-native call the transformer meant instead of being
// re-routed through the same transformer again.
type emitter struct {
	d       Dialect
	schema  vftypes.Schema
	rewrite bool
}

func (em emitter) rewritten() emitter {
	em.rewrite = false
	return em
}

func (em emitter) render(e vexpr.Expr) (string, error) {
	switch n := e.(type) {
	case *vexpr.Literal:
		return literalSQL(n.Value, em.d)

	case *vexpr.Column:
		return em.d.QuoteIdent(n.Name), nil

	case *vexpr.Unary:
		inner, err := em.render(n.Expr)
		if err != nil {
			return "", err
		}
		switch n.Op {
		case vexpr.OpNot:
			return fmt.Sprintf("NOT (%s)", inner), nil
		case vexpr.OpIsNull:
			return fmt.Sprintf("(%s IS NULL)", inner), nil
		case vexpr.OpNegate:
			return fmt.Sprintf("(-%s)", inner), nil
		default:
			return "", vferrors.Internal("unknown unary operator %q", n.Op)
		}

	case *vexpr.Binary:
		return em.binary(n)

	case *vexpr.Cast:
		return em.cast(n)

	case *vexpr.ScalarUdf:
		return em.functionCall(n.Name, n.Args, n.ReturnType, false)

	case *vexpr.Case:
		return em.caseExpr(n)

	case *vexpr.WindowFn:
		return em.windowFn(n)

	case *vexpr.Wildcard:
		return "*", nil

	default:
		return "", vferrors.Internal("unknown expression node %T", e)
	}
}

func literalSQL(v vftypes.Scalar, d Dialect) (string, error) {
	if !v.Valid {
		return "NULL", nil
	}
	switch v.Type.Kind {
	case vftypes.KindBoolean:
		if v.Bool {
			return "TRUE", nil
		}
		return "FALSE", nil
	case vftypes.KindUtf8:
		return quoteString(v.Str), nil
	case vftypes.KindFloat32, vftypes.KindFloat64:
		if math.IsInf(v.Float, 0) || math.IsNaN(v.Float) {
			if !d.SupportsNonFiniteFloats {
				return "NULL", nil
			}
			switch {
			case math.IsNaN(v.Float):
				return "'NaN'", nil
			case v.Float > 0:
				return "'Infinity'", nil
			default:
				return "'-Infinity'", nil
			}
		}
		return strconv.FormatFloat(v.Float, 'g', -1, 64), nil
	case vftypes.KindTimestampMs, vftypes.KindTimestampNs:
		return quoteString(v.Time.Format("2006-01-02 15:04:05.000")), nil
	case vftypes.KindUint8, vftypes.KindUint16, vftypes.KindUint32:
		return strconv.FormatUint(v.Uint, 10), nil
	default:
		return strconv.FormatInt(v.Int, 10), nil
	}
}

// quoteString renders a SQL string literal with the portable
// doubled-single-quote escape every supported backend accepts.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (em emitter) binary(n *vexpr.Binary) (string, error) {
	if !em.d.SupportsBinaryOp(n.Op) {
		if xform, ok := em.d.BinaryOpTransforms[n.Op]; ok && em.rewrite {
			resultType, err := vexpr.TypeOf(n, em.schema)
			if err != nil {
				return "", err
			}
			return em.rewritten().render(xform(n.Left, n.Right, resultType))
		}
		return "", vferrors.UnsupportedForDialect("dialect %q does not support operator %q", em.d.Name, n.Op)
	}

	l, err := em.render(n.Left)
	if err != nil {
		return "", err
	}
	r, err := em.render(n.Right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", l, n.Op, r), nil
}

func (em emitter) cast(n *vexpr.Cast) (string, error) {
	fromType, err := vexpr.TypeOf(n.Expr, em.schema)
	if err != nil {
		return "", err
	}
	if xform, ok := em.d.CastTransformers[CastPair{From: fromType.Kind, To: n.Type.Kind}]; ok && em.rewrite {
		return em.rewritten().render(xform(n.Expr))
	}
	sqlType, ok := em.d.CastDatatypes[n.Type.Kind]
	if !ok {
		return "", vferrors.UnsupportedForDialect("dialect %q has no cast target for %s", em.d.Name, n.Type)
	}
	inner, err := em.render(n.Expr)
	if err != nil {
		return "", err
	}
	rendered := fmt.Sprintf("CAST(%s AS %s)", inner, sqlType)
	if !em.d.CastPropagatesNull {
		rendered = fmt.Sprintf("CASE WHEN %s IS NULL THEN NULL ELSE %s END", inner, rendered)
	}
	return rendered, nil
}

func (em emitter) functionCall(name string, args []vexpr.Expr, resultType vftypes.Type, aggregate bool) (string, error) {
	if name == "INTERVAL" {
		// Escape hatch for DateAddToIntervalAddition: args are
		// [amount, unit]. The unit renders as a bare keyword, not a
		// quoted string.
		amount, err := em.render(args[0])
		if err != nil {
			return "", err
		}
		unit, err := intervalUnit(args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("INTERVAL %s %s", amount, unit), nil
	}

	native := em.d.SupportsScalarFunction(name)
	transformers := em.d.ScalarTransformers
	if aggregate {
		native = em.d.SupportsAggregateFunction(name)
		transformers = em.d.AggregateTransformers
	}

	if !native {
		if xform, ok := transformers[name]; ok && em.rewrite {
			return em.rewritten().render(xform(args, resultType))
		}
		if em.rewrite {
			return "", vferrors.UnsupportedForDialect("dialect %q does not support function %q", em.d.Name, name)
		}
		// A transformer emitted this call: it names the dialect's own
		// native spelling (BigQuery's MOD, Snowflake's two-argument log),
		// so render it as written.
	}

	// "count_distinct" is the IR spelling of the `distinct` aggregate op;
	// SQL has no function of that name, only the COUNT(DISTINCT x) form.
	if aggregate && name == "count_distinct" {
		arg, err := em.render(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("count(DISTINCT %s)", arg), nil
	}

	parts := make([]string, len(args))
	for i, a := range args {
		s, err := em.render(a)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", ")), nil
}

func intervalUnit(e vexpr.Expr) (string, error) {
	lit, ok := e.(*vexpr.Literal)
	if !ok || !lit.Value.Valid || lit.Value.Type.Kind != vftypes.KindUtf8 {
		return "", vferrors.Internal("INTERVAL unit must be a string literal")
	}
	return lit.Value.Str, nil
}

func (em emitter) caseExpr(n *vexpr.Case) (string, error) {
	var b strings.Builder
	b.WriteString("CASE")
	for _, wt := range n.Whens {
		cond, err := em.render(wt.Cond)
		if err != nil {
			return "", err
		}
		val, err := em.render(wt.Value)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " WHEN %s THEN %s", cond, val)
	}
	if n.Else != nil {
		els, err := em.render(n.Else)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " ELSE %s", els)
	}
	b.WriteString(" END")
	return b.String(), nil
}

func (em emitter) windowFn(n *vexpr.WindowFn) (string, error) {
	if !em.d.SupportsWindowFunction(n.Kind) {
		return "", vferrors.UnsupportedForDialect("dialect %q does not support window function %q", em.d.Name, n.Kind)
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		s, err := em.render(a)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s(%s)", n.Kind, strings.Join(parts, ", "))
	b.WriteString(" OVER (")
	if len(n.Partition) > 0 {
		partCols := make([]string, len(n.Partition))
		for i, p := range n.Partition {
			s, err := em.render(p)
			if err != nil {
				return "", err
			}
			partCols[i] = s
		}
		fmt.Fprintf(&b, "PARTITION BY %s", strings.Join(partCols, ", "))
	}
	if len(n.Order) > 0 {
		if len(n.Partition) > 0 {
			b.WriteString(" ")
		}
		orderParts := make([]string, len(n.Order))
		for i, o := range n.Order {
			s, err := em.render(o.Expr)
			if err != nil {
				return "", err
			}
			orderParts[i] = NullsAwareOrderBy(em.d, s, o.Ascending, o.NullsFirst)
		}
		fmt.Fprintf(&b, "ORDER BY %s", strings.Join(orderParts, ", "))
	}
	if n.Frame != nil && n.Frame.Bounded && em.d.SupportsBoundedWindowFrames {
		fmt.Fprintf(&b, " ROWS BETWEEN %d PRECEDING AND %d FOLLOWING", n.Frame.Preceding, n.Frame.Following)
	}
	b.WriteString(")")
	return b.String(), nil
}

// NullsAwareOrderBy renders a single ORDER BY key for exprSQL under d's
// null-ordering capability. Dialects that support NULLS
// FIRST/LAST (d.SupportsNullOrdering) get it directly; dialects that
// don't (e.g. MySQL) instead sort by a synthetic CASE key ranking null
// vs. non-null first, then by the real expression/direction, so nulls
// land on the requested side regardless of the dialect's own implicit
// null-sorting default. Shared by the window-function emitter and the
// Transform Engine's raw-SQL ORDER BY clauses (transform/impute.go).
func NullsAwareOrderBy(d Dialect, exprSQL string, ascending, nullsFirst bool) string {
	dir := "ASC"
	if !ascending {
		dir = "DESC"
	}
	if d.SupportsNullOrdering {
		nulls := " NULLS LAST"
		if nullsFirst {
			nulls = " NULLS FIRST"
		}
		return fmt.Sprintf("%s %s%s", exprSQL, dir, nulls)
	}
	rank := "CASE WHEN %s IS NULL THEN 1 ELSE 0 END"
	if nullsFirst {
		rank = "CASE WHEN %s IS NULL THEN 0 ELSE 1 END"
	}
	return fmt.Sprintf(fmt.Sprintf(rank, exprSQL)+" ASC, %s %s", exprSQL, dir)
}

// Validate parses sql back through the vitess sqlparser as a sanity
// round-trip check: for every expression that type-checks, ToSQL either
// returns a string that parses or fails with UnsupportedForDialect.
// Emission already enforces the latter; this gives callers (tests, in
// particular) a way to assert the former.
func Validate(sql string) error {
	// The vitess grammar is MySQL's: identifiers are backtick-quoted.
	// Fragments emitted for ANSI-quoting dialects are rewritten first so
	// the round trip checks structure, not quote flavor (emitted string
	// literals are single-quoted, so the rewrite never touches one).
	normalized := strings.ReplaceAll(sql, `"`, "`")
	_, err := sqlparser.Parse(fmt.Sprintf("SELECT %s", normalized))
	if err != nil {
		return vferrors.Wrap(err, "emitted SQL fragment does not parse")
	}
	return nil
}
