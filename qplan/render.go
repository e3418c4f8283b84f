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

package qplan

import (
	"fmt"
	"strings"

	"github.com/dolthub/vegafusion-go/dialect"
	"github.com/dolthub/vegafusion-go/vferrors"
)

// Render walks n and produces the SQL text that computes it, delegating
// every expression to dialect.ToSQL. Every pushed-down operator
// ultimately compiles to one query rather than a Go-side execution
// tree, so rendering is a single bottom-up walk.
func Render(n Node) (string, error) {
	switch v := n.(type) {
	case *Source:
		return quoteIdent(v.Dialect(), v.Table), nil
	case *Values:
		return dialect.RenderValues(v.Dialect(), v.Columns, v.Rows)
	case *Select:
		return renderSelect(v)
	case *Filter:
		return renderFilter(v)
	case *Aggregate:
		return renderAggregate(v)
	case *Join:
		return renderJoin(v)
	case *Window:
		return renderWindow(v)
	case *Union:
		return renderUnion(v)
	case *ChainQueryStr:
		return renderChainQueryStr(v)
	default:
		return "", vferrors.Internal("qplan: unhandled node type %T", n)
	}
}

func quoteIdent(d dialect.Dialect, name string) string {
	return d.QuoteIdent(name)
}

func fromClause(child Node) (string, error) {
	childSQL, err := Render(child)
	if err != nil {
		return "", err
	}
	if _, ok := child.(*Source); ok {
		return fmt.Sprintf("FROM %s AS %s", childSQL, quoteIdent(child.Dialect(), child.Name())), nil
	}
	return fmt.Sprintf("FROM (%s) AS %s", childSQL, quoteIdent(child.Dialect(), child.Name())), nil
}

func renderSelect(s *Select) (string, error) {
	from, err := fromClause(s.Child)
	if err != nil {
		return "", err
	}
	cols := make([]string, len(s.Exprs))
	for i, e := range s.Exprs {
		sql, err := dialect.ToSQL(e, s.Dialect(), s.Child.Schema())
		if err != nil {
			return "", err
		}
		alias := ""
		if i < len(s.Aliases) && s.Aliases[i] != "" {
			alias = " AS " + quoteIdent(s.Dialect(), s.Aliases[i])
		}
		cols[i] = sql + alias
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	return fmt.Sprintf("SELECT %s %s", strings.Join(cols, ", "), from), nil
}

func renderFilter(f *Filter) (string, error) {
	from, err := fromClause(f.Child)
	if err != nil {
		return "", err
	}
	pred, err := dialect.ToSQL(f.Predicate, f.Dialect(), f.Child.Schema())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT * %s WHERE %s", from, pred), nil
}

func renderAggregate(a *Aggregate) (string, error) {
	from, err := fromClause(a.Child)
	if err != nil {
		return "", err
	}
	groupCols := make([]string, len(a.GroupBy))
	for i, e := range a.GroupBy {
		sql, err := dialect.ToSQL(e, a.Dialect(), a.Child.Schema())
		if err != nil {
			return "", err
		}
		groupCols[i] = sql
	}
	aggCols := make([]string, len(a.Aggs))
	for i, agg := range a.Aggs {
		sql, err := dialect.ToSQLAggregate(agg.Expr, a.Dialect(), a.Child.Schema())
		if err != nil {
			return "", err
		}
		alias := ""
		if agg.Alias != "" {
			alias = " AS " + quoteIdent(a.Dialect(), agg.Alias)
		}
		aggCols[i] = sql + alias
	}
	allCols := append(append([]string{}, groupCols...), aggCols...)
	if len(allCols) == 0 {
		return "", vferrors.Internal("qplan: aggregate node with no group-by or aggregate expressions")
	}
	q := fmt.Sprintf("SELECT %s %s", strings.Join(allCols, ", "), from)
	if len(groupCols) > 0 {
		q += " GROUP BY " + strings.Join(groupCols, ", ")
	}
	return q, nil
}

func renderJoin(j *Join) (string, error) {
	leftSQL, err := Render(j.Left)
	if err != nil {
		return "", err
	}
	rightSQL, err := Render(j.Right)
	if err != nil {
		return "", err
	}
	kw := map[JoinKind]string{
		InnerJoin: "JOIN",
		LeftJoin:  "LEFT JOIN",
		RightJoin: "RIGHT JOIN",
		FullJoin:  "FULL OUTER JOIN",
		CrossJoin: "CROSS JOIN",
	}[j.Kind]

	leftFrom := joinOperand(j.Left, leftSQL)
	rightFrom := joinOperand(j.Right, rightSQL)

	if j.Kind == CrossJoin || j.On == nil {
		return fmt.Sprintf("SELECT * FROM %s %s %s", leftFrom, kw, rightFrom), nil
	}
	on, err := dialect.ToSQL(j.On, j.Dialect(), j.Schema())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT * FROM %s %s %s ON %s", leftFrom, kw, rightFrom, on), nil
}

// joinOperand renders one side of a Join as a FROM item: a bare aliased
// table for a Source leaf, a parenthesized subquery otherwise.
func joinOperand(n Node, sql string) string {
	alias := quoteIdent(n.Dialect(), n.Name())
	if _, ok := n.(*Source); ok {
		return fmt.Sprintf("%s AS %s", sql, alias)
	}
	return fmt.Sprintf("(%s) AS %s", sql, alias)
}

func renderWindow(w *Window) (string, error) {
	from, err := fromClause(w.Child)
	if err != nil {
		return "", err
	}
	fnCols := make([]string, len(w.Fns))
	for i, fn := range w.Fns {
		sql, err := dialect.ToSQL(fn, w.Dialect(), w.Child.Schema())
		if err != nil {
			return "", err
		}
		fnCols[i] = sql
	}
	cols := append([]string{"*"}, fnCols...)
	return fmt.Sprintf("SELECT %s %s", strings.Join(cols, ", "), from), nil
}

func renderUnion(u *Union) (string, error) {
	parts := make([]string, len(u.Children))
	for i, c := range u.Children {
		sql, err := Render(c)
		if err != nil {
			return "", err
		}
		parts[i] = sql
	}
	return strings.Join(parts, " UNION ALL "), nil
}

func renderChainQueryStr(c *ChainQueryStr) (string, error) {
	parentSQL, err := Render(c.Parent)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(c.Template, "{parent}", fmt.Sprintf("(%s)", parentSQL)), nil
}
