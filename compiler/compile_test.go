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

package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vftypes"
)

func rowSchema() vftypes.Schema {
	return vftypes.Schema{Fields: []vftypes.Field{
		{Name: "x", Type: vftypes.Float64},
		{Name: "name", Type: vftypes.Utf8},
		{Name: "tags", Type: vftypes.List(vftypes.Utf8)},
		{Name: "point", Type: vftypes.Struct(
			vftypes.Field{Name: "lat", Type: vftypes.Float64},
			vftypes.Field{Name: "lon", Type: vftypes.Float64},
		)},
	}}
}

func TestCompileLiteral(t *testing.T) {
	e, err := Compile("42", rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	lit, ok := e.(*vexpr.Literal)
	require.True(t, ok)
	require.Equal(t, 42.0, lit.Value.Float)
}

func TestCompileDatumFieldAccess(t *testing.T) {
	e, err := Compile("datum.x", rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	col, ok := e.(*vexpr.Column)
	require.True(t, ok)
	require.Equal(t, "x", col.Name)
	require.Equal(t, vftypes.Float64, col.Type)
}

func TestCompileDatumComputedFieldAccess(t *testing.T) {
	e, err := Compile(`datum["x"]`, rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	col, ok := e.(*vexpr.Column)
	require.True(t, ok)
	require.Equal(t, "x", col.Name)
}

func TestCompileDatumComputedFieldAccessConstantFolds(t *testing.T) {
	e, err := Compile(`datum["na"+"me"]`, rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	col, ok := e.(*vexpr.Column)
	require.True(t, ok)
	require.Equal(t, "name", col.Name)
}

func TestCompileDatumNonFoldableIndexIsCompilationError(t *testing.T) {
	_, err := Compile(`datum[1+"x"]`, rowSchema(), CompilationConfig{})
	require.Error(t, err)
}

func TestCompileDatumUnknownFieldFails(t *testing.T) {
	_, err := Compile("datum.missing", rowSchema(), CompilationConfig{})
	require.Error(t, err)
}

func TestCompileStructFieldAccess(t *testing.T) {
	e, err := Compile("datum.point.lat", rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	udf, ok := e.(*vexpr.ScalarUdf)
	require.True(t, ok)
	require.Equal(t, "get[lat]", udf.Name)
	require.Equal(t, vftypes.Float64, udf.ReturnType)
}

func TestCompileListIndexAccess(t *testing.T) {
	e, err := Compile("datum.tags[0]", rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	udf, ok := e.(*vexpr.ScalarUdf)
	require.True(t, ok)
	require.Equal(t, "get[0]", udf.Name)
	require.Equal(t, vftypes.Utf8, udf.ReturnType)
}

func TestCompileLengthOnNonStruct(t *testing.T) {
	e, err := Compile("datum.name.length", rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	udf, ok := e.(*vexpr.ScalarUdf)
	require.True(t, ok)
	require.Equal(t, "length", udf.Name)
	require.Equal(t, vftypes.Int64, udf.ReturnType)
}

func TestCompileIsValidLowersToIsNotNull(t *testing.T) {
	e, err := Compile("isValid(datum.x)", rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	un, ok := e.(*vexpr.Unary)
	require.True(t, ok)
	require.Equal(t, vexpr.OpNot, un.Op)
	inner, ok := un.Expr.(*vexpr.Unary)
	require.True(t, ok)
	require.Equal(t, vexpr.OpIsNull, inner.Op)
}

func TestCompileTypeCheckingBuiltinUsesNameAbsentFromAnyDialect(t *testing.T) {
	e, err := Compile("isNumber(datum.x)", rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	udf, ok := e.(*vexpr.ScalarUdf)
	require.True(t, ok)
	require.Equal(t, "isNumber", udf.Name)
}

func TestCompileUnknownFunctionFails(t *testing.T) {
	_, err := Compile("bogus(1)", rowSchema(), CompilationConfig{})
	require.Error(t, err)
}

func TestCompileUnknownIdentifierFails(t *testing.T) {
	_, err := Compile("undeclaredSignal", rowSchema(), CompilationConfig{})
	require.Error(t, err)
}

func TestCompileSignalResolvesFromScope(t *testing.T) {
	cfg := CompilationConfig{SignalScope: map[string]vftypes.Scalar{
		"threshold": vftypes.FloatScalar(vftypes.Float64, 10),
	}}
	e, err := Compile("datum.x > threshold", rowSchema(), cfg)
	require.NoError(t, err)
	bin, ok := e.(*vexpr.Binary)
	require.True(t, ok)
	require.Equal(t, vexpr.OpGt, bin.Op)
}

func TestCompileTernaryLowersToCase(t *testing.T) {
	e, err := Compile(`datum.x > 0 ? "pos" : "neg"`, rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	c, ok := e.(*vexpr.Case)
	require.True(t, ok)
	require.Len(t, c.Whens, 1)
	require.NotNil(t, c.Else)
}

func TestCompileStrictEqualityRejectsMismatchedTypes(t *testing.T) {
	_, err := Compile(`datum.x === datum.name`, rowSchema(), CompilationConfig{})
	require.Error(t, err)
}

func TestCompileMathBuiltinNamesMatchDialectTables(t *testing.T) {
	cases := map[string]string{
		"log(datum.x)":  "ln",
		"log2(datum.x)": "log2",
		"sign(datum.x)": "signum",
	}
	for src, wantName := range cases {
		e, err := Compile(src, rowSchema(), CompilationConfig{})
		require.NoError(t, err, src)
		udf, ok := e.(*vexpr.ScalarUdf)
		require.True(t, ok, src)
		require.Equal(t, wantName, udf.Name, src)
	}
}

func TestCompileDateAddArgOrderMatchesIntervalTransformer(t *testing.T) {
	e, err := Compile(`dateAdd("day", 1, datum.x)`, rowSchema(), CompilationConfig{})
	require.NoError(t, err)
	udf, ok := e.(*vexpr.ScalarUdf)
	require.True(t, ok)
	require.Equal(t, "date_add", udf.Name)
	require.Len(t, udf.Args, 3)
}
