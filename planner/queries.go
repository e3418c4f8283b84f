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

package planner

import (
	"sort"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/compiler"
	"github.com/dolthub/vegafusion-go/dialect"
	"github.com/dolthub/vegafusion-go/qplan"
	"github.com/dolthub/vegafusion-go/transform"
	"github.com/dolthub/vegafusion-go/vfconn"
	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// ServerQuery is one server-spec dataset rendered to executable SQL: the
// query text the host hands to Connection.FetchQuery, the schema the
// result must carry, and any signals the dataset's transforms emit
// (Bin's folded parameters as resolved values, Extent's bounds as a
// query of their own).
type ServerQuery struct {
	Dataset string
	SQL     string
	Schema  vftypes.Schema
	Signals []transform.EmittedSignal
}

// BuildServerQueries walks a server-spec (the relational half a Plan
// run produced) and builds one ServerQuery per dataset: the transform
// engine builds a query node per transform, and the dialect layer
// renders the final node as SQL for the connection's dialect.
//
// Leaf datasets bind in one of three ways: inline Values become a
// literal-table node (rendered through the dialect's ValuesMode), a URL
// dataset reads the table the connection registered under the dataset's
// name (ingestion itself happens outside this module), and a Source
// dataset reads
// the query node already built for its source earlier in the same walk —
// the extractor emits datasets in dependency order within a scope, so a
// forward reference is a specification error, not a scheduling problem.
//
// signals carries the current value of every client_to_server signal the
// server-side expressions reference (the comm plan names them); pass nil
// when the spec's server half references none.
func BuildServerQueries(serverSpec *chartspec.ChartSpec, conn vfconn.Connection, signals map[string]vftypes.Scalar) ([]ServerQuery, error) {
	sc, err := conn.SessionContext()
	if err != nil {
		return nil, vferrors.Wrap(err, "planner: reading session context")
	}
	cfg := transform.NewConfig(compiler.CompilationConfig{
		SignalScope: signals,
		DataScope:   sc.DataScope(),
		Timezone:    sc.Timezone,
	}, conn.Dialect())

	b := &queryBuilder{cfg: cfg, tables: sc.Tables}
	if err := b.level(serverSpec.Data, serverSpec.Marks, map[string]qplan.Node{}); err != nil {
		return nil, err
	}
	return b.out, nil
}

type queryBuilder struct {
	cfg    transform.Config
	tables map[string]vftypes.Schema
	out    []ServerQuery
}

// level builds every dataset at one scope, then recurses into nested
// group marks. bound maps each dataset name visible at this scope to its
// built query node; a child scope starts from a copy, so sibling groups
// never see each other's bindings.
func (b *queryBuilder) level(data []*chartspec.DataSpec, marks []*chartspec.MarkSpec, bound map[string]qplan.Node) error {
	for _, d := range data {
		base, err := b.baseNode(d, bound)
		if err != nil {
			return err
		}
		node, sigs, err := transform.EvalPipeline(d.Transform, base, b.cfg)
		if err != nil {
			return vferrors.Wrap(err, "planner: building query for dataset %q", d.Name)
		}
		sql, err := qplan.Render(node)
		if err != nil {
			return vferrors.Wrap(err, "planner: rendering query for dataset %q", d.Name)
		}
		bound[d.Name] = node
		b.out = append(b.out, ServerQuery{Dataset: d.Name, SQL: sql, Schema: node.Schema(), Signals: sigs})
	}
	for _, m := range marks {
		if !m.IsGroup() {
			continue
		}
		child := make(map[string]qplan.Node, len(bound))
		for k, v := range bound {
			child[k] = v
		}
		if err := b.level(m.Data, m.Marks, child); err != nil {
			return err
		}
	}
	return nil
}

func (b *queryBuilder) baseNode(d *chartspec.DataSpec, bound map[string]qplan.Node) (qplan.Node, error) {
	if d.Source != "" {
		src, ok := bound[d.Source]
		if !ok {
			return nil, vferrors.Specification("planner: dataset %q sources %q, which is not bound in scope", d.Name, d.Source)
		}
		return src, nil
	}
	if d.Values != nil {
		return valuesNode(d.Name, d.Values, b.cfg.Dialect)
	}
	schema, ok := b.tables[d.Name]
	if !ok {
		return nil, vferrors.Specification("planner: connection reports no table for dataset %q", d.Name)
	}
	return qplan.NewSource(d.Name, d.Name, schema, b.cfg.Dialect), nil
}

// valuesNode lowers a dataset's inline rows to a qplan.Values literal
// table. Column order is the sorted union of row keys, and each column's
// type is taken from its first non-null occurrence, with every other
// occurrence coerced by kind (numbers arrive as float64 from JSON).
func valuesNode(name string, values []map[string]any, d dialect.Dialect) (*qplan.Values, error) {
	colSet := map[string]bool{}
	for _, row := range values {
		for k := range row {
			colSet[k] = true
		}
	}
	columns := make([]string, 0, len(colSet))
	for k := range colSet {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	types := make(map[string]vftypes.Type, len(columns))
	for _, row := range values {
		for _, c := range columns {
			if _, seen := types[c]; seen {
				continue
			}
			if v, ok := row[c]; ok && v != nil {
				t, err := inlineValueType(name, c, v)
				if err != nil {
					return nil, err
				}
				types[c] = t
			}
		}
	}

	fields := make([]vftypes.Field, len(columns))
	for i, c := range columns {
		t, ok := types[c]
		if !ok {
			t = vftypes.Float64
		}
		fields[i] = vftypes.Field{Name: c, Type: t}
	}
	schema := vftypes.Schema{Fields: fields}

	rows := make([][]vftypes.Scalar, len(values))
	for i, row := range values {
		out := make([]vftypes.Scalar, len(columns))
		for j, c := range columns {
			s, err := inlineValueScalar(name, c, row[c], fields[j].Type)
			if err != nil {
				return nil, err
			}
			out[j] = s
		}
		rows[i] = out
	}
	return qplan.NewValues(name, columns, rows, schema, d), nil
}

func inlineValueType(dataset, column string, v any) (vftypes.Type, error) {
	switch v.(type) {
	case float64:
		return vftypes.Float64, nil
	case string:
		return vftypes.Utf8, nil
	case bool:
		return vftypes.Boolean, nil
	default:
		return vftypes.Type{}, vferrors.Specification("planner: dataset %q column %q has unsupported inline value type %T", dataset, column, v)
	}
}

func inlineValueScalar(dataset, column string, v any, t vftypes.Type) (vftypes.Scalar, error) {
	switch val := v.(type) {
	case nil:
		return vftypes.NullScalar(t), nil
	case float64:
		return vftypes.FloatScalar(vftypes.Float64, val), nil
	case string:
		return vftypes.StringScalar(val), nil
	case bool:
		return vftypes.BoolScalar(val), nil
	default:
		return vftypes.Scalar{}, vferrors.Specification("planner: dataset %q column %q has unsupported inline value type %T", dataset, column, v)
	}
}
