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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/dialect"
	"github.com/dolthub/vegafusion-go/vfconn"
	"github.com/dolthub/vegafusion-go/vftypes"
)

func connWithTable(t *testing.T, name string, cols ...string) *vfconn.MemConnection {
	t.Helper()
	conn := vfconn.NewMemConnection(dialect.Generic())
	fields := make([]vftypes.Field, len(cols))
	arrays := make([]vftypes.Array, len(cols))
	for i, c := range cols {
		fields[i] = vftypes.Field{Name: c, Type: vftypes.Float64}
		arrays[i] = vftypes.NewArray(vftypes.Float64, nil)
	}
	conn.RegisterTable(name, vfconn.NewTable(vftypes.Schema{Fields: fields}, arrays))
	return conn
}

func TestBuildServerQueriesRendersPipelineOverRegisteredTable(t *testing.T) {
	conn := connWithTable(t, "events", "a", "b")
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{
			Name: "events",
			URL:  "http://example.com/events.json",
			Transform: []chartspec.TransformSpec{
				chartspec.Filter{Expr: "datum.a > 0"},
				chartspec.Aggregate{Groupby: []string{"b"}, Fields: []string{"a"}, Ops: []string{"sum"}, As: []string{"total"}},
			},
		}},
	}
	queries, err := BuildServerQueries(spec, conn, nil)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	require.Equal(t, "events", queries[0].Dataset)
	require.Contains(t, queries[0].SQL, "WHERE")
	require.Contains(t, queries[0].SQL, "GROUP BY")
	require.Equal(t, []string{"b", "total"}, queries[0].Schema.Names())
}

func TestBuildServerQueriesInlineValuesRenderThroughValuesMode(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{
			Name: "inline",
			Values: []map[string]any{
				{"x": 1.0, "label": "a"},
				{"x": 2.0, "label": "b"},
			},
		}},
	}
	queries, err := BuildServerQueries(spec, vfconn.NewMemConnection(dialect.Generic()), nil)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	require.Contains(t, queries[0].SQL, "VALUES")
	require.Equal(t, []string{"label", "x"}, queries[0].Schema.Names())
}

func TestBuildServerQueriesSourceChainsWithinScope(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{
			{Name: "base", Values: []map[string]any{{"x": 1.0}}},
			{Name: "derived", Source: "base", Transform: []chartspec.TransformSpec{
				chartspec.Filter{Expr: "datum.x > 0"},
			}},
		},
	}
	queries, err := BuildServerQueries(spec, vfconn.NewMemConnection(dialect.Generic()), nil)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	require.Contains(t, queries[1].SQL, "VALUES", "derived's query must inline its source's rendered plan")
	require.Contains(t, queries[1].SQL, "WHERE")
}

func TestBuildServerQueriesUnboundSourceFails(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{Name: "derived", Source: "missing"}},
	}
	_, err := BuildServerQueries(spec, vfconn.NewMemConnection(dialect.Generic()), nil)
	require.Error(t, err)
}

func TestBuildServerQueriesSignalScopeReachesFilterExpressions(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{
			Name:   "inline",
			Values: []map[string]any{{"x": 1.0}},
			Transform: []chartspec.TransformSpec{
				chartspec.Filter{Expr: "datum.x > threshold"},
			},
		}},
	}
	signals := map[string]vftypes.Scalar{
		"threshold": vftypes.FloatScalar(vftypes.Float64, 2),
	}
	queries, err := BuildServerQueries(spec, vfconn.NewMemConnection(dialect.Generic()), signals)
	require.NoError(t, err)
	require.Contains(t, queries[0].SQL, "2")

	_, err = BuildServerQueries(spec, vfconn.NewMemConnection(dialect.Generic()), nil)
	require.Error(t, err, "an unresolved signal reference must surface as a compilation error")
}

func TestBuildServerQueriesGroupMarkDatasetsScopeIndependently(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{Name: "base", Values: []map[string]any{{"x": 1.0}}}},
		Marks: []*chartspec.MarkSpec{{
			Type: "group",
			Data: []*chartspec.DataSpec{{Name: "inner", Source: "base"}},
		}},
	}
	queries, err := BuildServerQueries(spec, vfconn.NewMemConnection(dialect.Generic()), nil)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	require.Equal(t, "inner", queries[1].Dataset)
}
