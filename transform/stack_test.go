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

package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/qplan"
	"github.com/dolthub/vegafusion-go/vexpr"
)

func TestStackDefaultAsNames(t *testing.T) {
	spec := chartspec.Stack{Field: "a", Groupby: []string{"cat"}, SortFields: []string{"b"}}
	out, signals, err := Stack(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Nil(t, signals)
	require.Contains(t, schemaNames(out.Schema()), "a_start")
	require.Contains(t, schemaNames(out.Schema()), "a_end")
}

func TestStackExplicitAsNames(t *testing.T) {
	spec := chartspec.Stack{Field: "a", SortFields: []string{"b"}, As: [2]string{"lo", "hi"}}
	out, _, err := Stack(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Contains(t, schemaNames(out.Schema()), "lo")
	require.Contains(t, schemaNames(out.Schema()), "hi")
}

func TestStackNormalizeAndCenterBuildWithoutError(t *testing.T) {
	for _, offset := range []string{"zero", "normalize", "center"} {
		spec := chartspec.Stack{Field: "a", Groupby: []string{"cat"}, SortFields: []string{"b"}, Offset: offset}
		_, _, err := Stack(spec, testInput(), testConfig())
		require.NoError(t, err, offset)
	}
}

func TestStackUnknownFieldFails(t *testing.T) {
	spec := chartspec.Stack{Field: "missing"}
	_, _, err := Stack(spec, testInput(), testConfig())
	require.Error(t, err)
}

func TestStackAppendsOrdinalTieBreakWhenAbsent(t *testing.T) {
	spec := chartspec.Stack{Field: "a", Groupby: []string{"cat"}, SortFields: []string{"b"}}
	out, _, err := Stack(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Contains(t, schemaNames(out.Schema()), qplan.OrdinalColumn)

	sel, ok := out.(*qplan.Select)
	require.True(t, ok)
	runSum, ok := sel.Exprs[len(sel.Exprs)-1].(*vexpr.WindowFn)
	require.True(t, ok)
	require.Len(t, runSum.Order, 2)
	last := runSum.Order[len(runSum.Order)-1]
	col, ok := last.Expr.(*vexpr.Column)
	require.True(t, ok)
	require.Equal(t, qplan.OrdinalColumn, col.Name)
}

func TestStackReusesExistingOrdinalColumnInstead(t *testing.T) {
	collectSpec := chartspec.Collect{Sort: []chartspec.SortKey{{Field: "b"}}}
	collected, _, err := Collect(collectSpec, testInput(), testConfig())
	require.NoError(t, err)

	spec := chartspec.Stack{Field: "a", Groupby: []string{"cat"}, SortFields: []string{"b"}}
	out, _, err := Stack(spec, collected, testConfig())
	require.NoError(t, err)

	sel, ok := out.(*qplan.Select)
	require.True(t, ok)
	require.Equal(t, collected, sel.Child, "stack must not re-stamp an ordinal column that already exists upstream")
}
