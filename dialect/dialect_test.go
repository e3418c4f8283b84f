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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vftypes"
)

func TestByNameCaseInsensitive(t *testing.T) {
	for _, name := range []string{"BigQuery", "BIGQUERY", "bigquery"} {
		d, err := ByName(name)
		require.NoError(t, err)
		require.Equal(t, "bigquery", d.Name)
	}
}

func TestByNameGenericAndDefaultAreSame(t *testing.T) {
	g, err := ByName("generic")
	require.NoError(t, err)
	def, err := ByName("default")
	require.NoError(t, err)
	require.Equal(t, g.Name, def.Name)
}

func TestByNameUnknownFails(t *testing.T) {
	_, err := ByName("not-a-dialect")
	require.Error(t, err)
}

func TestAllTwelveNamedDialectsPlusGenericResolve(t *testing.T) {
	names := []string{
		"athena", "bigquery", "clickhouse", "databricks", "datafusion", "dremio",
		"duckdb", "generic", "default", "mysql", "postgres", "redshift", "snowflake", "sqlite",
	}
	for _, n := range names {
		_, err := ByName(n)
		require.NoErrorf(t, err, "dialect %q should resolve", n)
	}
}

func TestBigQueryModuloRewrite(t *testing.T) {
	d := BigQuery()
	require.False(t, d.SupportsBinaryOp(vexpr.OpModulo))
	xform, ok := d.BinaryOpTransforms[vexpr.OpModulo]
	require.True(t, ok)
	rewritten := xform(vexpr.NewColumn("x", vftypes.Int32), vexpr.NewColumn("y", vftypes.Int32), vftypes.Int32)
	udf, ok := rewritten.(*vexpr.ScalarUdf)
	require.True(t, ok)
	require.Equal(t, "MOD", udf.Name)
}

func TestSnowflakeLog2Rewrite(t *testing.T) {
	d := Snowflake()
	xform, ok := d.ScalarTransformers["log2"]
	require.True(t, ok)
	rewritten := xform([]vexpr.Expr{vexpr.NewColumn("v", vftypes.Float64)}, vftypes.Float64)
	udf, ok := rewritten.(*vexpr.ScalarUdf)
	require.True(t, ok)
	require.Equal(t, "log", udf.Name)
	require.Len(t, udf.Args, 2)
	lit, ok := udf.Args[0].(*vexpr.Literal)
	require.True(t, ok)
	require.Equal(t, int64(2), lit.Value.Int)
}

func TestRedshiftLnCastsArgument(t *testing.T) {
	d := Redshift()
	xform, ok := d.ScalarTransformers["ln"]
	require.True(t, ok)
	rewritten := xform([]vexpr.Expr{vexpr.NewColumn("v", vftypes.Float64)}, vftypes.Float64)
	udf, ok := rewritten.(*vexpr.ScalarUdf)
	require.True(t, ok)
	require.Equal(t, "ln", udf.Name)
	_, ok = udf.Args[0].(*vexpr.Cast)
	require.True(t, ok, "redshift's ln transformer must cast its argument to double precision")
}

func TestRedshiftLog2UsesLnRatio(t *testing.T) {
	d := Redshift()
	xform, ok := d.ScalarTransformers["log2"]
	require.True(t, ok)
	rewritten := xform([]vexpr.Expr{vexpr.NewColumn("v", vftypes.Float64)}, vftypes.Float64)
	bin, ok := rewritten.(*vexpr.Binary)
	require.True(t, ok)
	require.Equal(t, vexpr.OpDivide, bin.Op)
}

func TestValuesModeDiffersAcrossDialects(t *testing.T) {
	require.Equal(t, SelectUnion, BigQuery().ValuesMode.Kind)
	require.Equal(t, ValuesWithSelectColumnAliases, Snowflake().ValuesMode.Kind)
	require.Equal(t, "COLUMN", Snowflake().ValuesMode.ColumnPrefix)
	require.Equal(t, "column", SQLite().ValuesMode.ColumnPrefix)
	require.Equal(t, ValuesWithSubqueryColumnAliases, MySQL().ValuesMode.Kind)
	require.True(t, MySQL().ValuesMode.ExplicitRow)
}

func TestMySQLDoesNotSupportNullOrdering(t *testing.T) {
	require.False(t, MySQL().SupportsNullOrdering)
	require.True(t, Postgres().SupportsNullOrdering)
}

func TestBoolToStringWithCase(t *testing.T) {
	col := vexpr.NewColumn("flag", vftypes.Boolean)
	rewritten := BoolToStringWithCase(col)
	c, ok := rewritten.(*vexpr.Case)
	require.True(t, ok)
	require.Len(t, c.Whens, 2)
}
