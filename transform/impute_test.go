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
)

func TestImputeNoGroupbyPreservesEveryColumn(t *testing.T) {
	spec := chartspec.Impute{Field: "a", Key: "cat", Value: 0.0}
	out, signals, err := Impute(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Nil(t, signals)
	sel, ok := out.(*qplan.Select)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "cat", "t"}, sel.Aliases)
	require.Equal(t, []string{"a", "b", "cat", "t"}, schemaNames(out.Schema()))
}

func TestImputeUnknownKeyFieldFails(t *testing.T) {
	spec := chartspec.Impute{Field: "a", Key: "missing", Value: 0.0}
	_, _, err := Impute(spec, testInput(), testConfig())
	require.Error(t, err)
}

func TestImputeWithOneGroupbyFieldPreservesEveryColumn(t *testing.T) {
	spec := chartspec.Impute{Field: "a", Key: "cat", Groupby: []string{"b"}, Value: 0.0}
	out, _, err := Impute(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Equal(t,
		[]string{"a", "b", "cat", "t", qplan.ImputeColumn, qplan.OrdinalColumn},
		schemaNames(out.Schema()))
	cq := out.(*qplan.ChainQueryStr)
	require.Contains(t, cq.Template, "CROSS JOIN")
	require.Contains(t, cq.Template, "row_number() OVER ()")
	require.Contains(t, cq.Template, "ORDER BY")
}

func TestImputeMoreThanOneGroupbyFieldFails(t *testing.T) {
	spec := chartspec.Impute{Field: "a", Key: "cat", Groupby: []string{"b", "t"}, Value: 0.0}
	_, _, err := Impute(spec, testInput(), testConfig())
	require.Error(t, err)
}

func TestImputeValueLiteralString(t *testing.T) {
	sql, err := imputeValueLiteral("o'clock")
	require.NoError(t, err)
	require.Equal(t, "'o''clock'", sql)
}

func TestImputeValueLiteralNil(t *testing.T) {
	sql, err := imputeValueLiteral(nil)
	require.NoError(t, err)
	require.Equal(t, "NULL", sql)
}

func TestImputeValueLiteralUnsupportedType(t *testing.T) {
	_, err := imputeValueLiteral([]int{1})
	require.Error(t, err)
}
