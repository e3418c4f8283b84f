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

func TestAggregateGroupAndSum(t *testing.T) {
	spec := chartspec.Aggregate{
		Groupby: []string{"cat"},
		Fields:  []string{"a"},
		Ops:     []string{"sum"},
		As:      []string{"a_total"},
	}
	out, signals, err := Aggregate(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Nil(t, signals)
	agg, ok := out.(*qplan.Aggregate)
	require.True(t, ok)
	require.Len(t, agg.GroupBy, 1)
	require.Len(t, agg.Aggs, 1)
	require.Equal(t, "a_total", agg.Aggs[0].Alias)
	require.Equal(t, []string{"cat", "a_total"}, schemaNames(out.Schema()))
}

func TestAggregateDefaultAlias(t *testing.T) {
	spec := chartspec.Aggregate{Fields: []string{"a"}, Ops: []string{"mean"}}
	out, _, err := Aggregate(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Equal(t, []string{"mean_a"}, schemaNames(out.Schema()))
}

func TestAggregateCountNoField(t *testing.T) {
	spec := chartspec.Aggregate{Ops: []string{"count"}}
	out, _, err := Aggregate(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Equal(t, []string{"count"}, schemaNames(out.Schema()))
}

func TestAggregateUnknownOpFails(t *testing.T) {
	spec := chartspec.Aggregate{Fields: []string{"a"}, Ops: []string{"bogus"}}
	_, _, err := Aggregate(spec, testInput(), testConfig())
	require.Error(t, err)
}

func TestAggregateUnknownGroupbyFieldFails(t *testing.T) {
	spec := chartspec.Aggregate{Groupby: []string{"missing"}}
	_, _, err := Aggregate(spec, testInput(), testConfig())
	require.Error(t, err)
}

func TestAggregateValuesProducesListType(t *testing.T) {
	spec := chartspec.Aggregate{Fields: []string{"cat"}, Ops: []string{"values"}}
	out, _, err := Aggregate(spec, testInput(), testConfig())
	require.NoError(t, err)
	f, ok := out.Schema().FieldByName("values_cat")
	require.True(t, ok)
	require.True(t, f.Type.Kind.String() != "")
}

func TestAggregateArgminArgmaxAreNotAliasedToMinMax(t *testing.T) {
	// argmin/argmax return the whole record at the extremal row, not the
	// scalar min/max of the field; until a dialect can express that, the
	// plan builds under the op's own name and fails at SQL-emission time
	// rather than silently computing the wrong scalar.
	for _, op := range []string{"argmin", "argmax"} {
		spec := chartspec.Aggregate{Fields: []string{"a"}, Ops: []string{op}}
		out, _, err := Aggregate(spec, testInput(), testConfig())
		require.NoError(t, err, op)

		agg := out.(*qplan.Aggregate)
		udf := agg.Aggs[0].Expr.(*vexpr.ScalarUdf)
		require.Equal(t, op, udf.Name, "%s must not silently alias to a scalar min/max call", op)

		_, err = qplan.Render(out)
		require.Error(t, err, "%s has no dialect rendering", op)
	}
}

func TestAggregateProductLeftUnregisteredIsStillBuildable(t *testing.T) {
	// product/stderr/q1/q3/ci0/ci1 are deliberately unsupported by every
	// dialect's function tables, but Aggregate itself must still build the
	// plan node; the failure surfaces later at SQL-emission time.
	spec := chartspec.Aggregate{Fields: []string{"a"}, Ops: []string{"product"}}
	out, _, err := Aggregate(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Equal(t, []string{"product_a"}, schemaNames(out.Schema()))
}
