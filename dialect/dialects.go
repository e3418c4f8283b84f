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
	"strings"

	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vftypes"
)

func set(names ...string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

func opSet(ops ...vexpr.BinaryOp) map[vexpr.BinaryOp]bool {
	out := make(map[vexpr.BinaryOp]bool, len(ops))
	for _, op := range ops {
		out[op] = true
	}
	return out
}

var standardBinaryOps = []vexpr.BinaryOp{
	vexpr.OpEq, vexpr.OpNotEq, vexpr.OpLt, vexpr.OpLtEq, vexpr.OpGt, vexpr.OpGtEq,
	vexpr.OpAdd, vexpr.OpSubtract, vexpr.OpMultiply, vexpr.OpDivide, vexpr.OpAnd, vexpr.OpOr,
}

var standardBinaryOpsWithModulo = append(append([]vexpr.BinaryOp{}, standardBinaryOps...), vexpr.OpModulo)

// stringDatetimeScalarFunctions are the string and datetime builtins
// (compiler/builtins.go) every backend carries natively, bespoke or not:
// the Transform Engine's Formula/TimeUnit output and the planner's
// datetime-stringification bridge (timeFormat/toDate) must resolve on
// every dialect, since the bridge appends its formulas after the
// supportability pass has already run.
var stringDatetimeScalarFunctions = []string{
	"upper", "lower", "trim", "replace", "substring", "length",
	"timeFormat", "toDate", "date_trunc",
	"date_part_year", "date_part_month", "date_part_date", "date_part_day",
	"date_part_hours", "date_part_minutes", "date_part_seconds",
}

var standardScalarFunctions = append([]string{
	"abs", "acos", "asin", "atan", "atan2", "ceil", "coalesce", "cos", "exp", "floor",
	"ln", "log", "log10", "pow", "random", "round", "sign", "sin", "sqrt", "tan", "trunc",
}, stringDatetimeScalarFunctions...)

var standardWindowFunctions = []string{
	"row_number", "rank", "dense_rank", "percent_rank", "cume_dist", "ntile",
	"lag", "lead", "first_value", "last_value", "nth_value",
	// JoinAggregate/Window also emit a plain aggregate name as the window
	// Kind when an "aggregate-as-window" op (sum/avg/min/max/count) is
	// requested.
	"sum", "avg", "min", "max", "count",
}

var standardAggregateFunctions = []string{
	"min", "max", "count", "avg", "sum", "var_pop", "stddev_pop",
	// The "distinct" and "values" aggregate ops.
	"count_distinct", "array_agg",
}

// defaultCastDatatypes is the Generic/DataFusion-flavored cast table,
// reused verbatim by dialects that do not diverge from it.
func defaultCastDatatypes() map[CastKind]string {
	return map[CastKind]string{
		vftypes.KindBoolean:     "BOOLEAN",
		vftypes.KindInt8:        "TINYINT",
		vftypes.KindUint8:       "TINYINT",
		vftypes.KindInt16:       "SMALLINT",
		vftypes.KindUint16:      "SMALLINT",
		vftypes.KindInt32:       "INT",
		vftypes.KindUint32:      "INT",
		vftypes.KindInt64:       "BIGINT",
		vftypes.KindFloat32:     "FLOAT",
		vftypes.KindFloat64:     "DOUBLE",
		vftypes.KindUtf8:        "VARCHAR",
		vftypes.KindTimestampMs: "TIMESTAMP",
		vftypes.KindTimestampNs: "TIMESTAMP",
	}
}

// Generic is the Default dialect: a conservative, maximally-compatible
// capability table used when a more specific backend is not named
// ("generic" and "default" resolve to the same value in ByName).
func Generic() Dialect {
	return Dialect{
		Name:                  "generic",
		QuoteStyle:            '"',
		BinaryOps:             opSet(standardBinaryOpsWithModulo...),
		BinaryOpTransforms:    map[vexpr.BinaryOp]BinaryOperatorTransformer{},
		ScalarFunctions:       set(standardScalarFunctions...),
		AggregateFunctions:    set(standardAggregateFunctions...),
		WindowFunctions:       set(standardWindowFunctions...),
		ScalarTransformers: map[string]FunctionTransformer{
			"date_add": DateAddToIntervalAddition(),
			// The IR spells JS Math.sign as "signum" (compiler/builtins.go);
			// every Generic-derived backend natively calls it "sign".
			"signum": RenameFunctionTransformer("sign"),
			// No portable native base-2 log; lower to ln(v)/ln(2).
			"log2": LogBaseWithLnTransformer(2.0, nil),
		},
		AggregateTransformers: map[string]FunctionTransformer{
			"var":    RenameFunctionTransformer("var_samp"),
			"stddev": RenameFunctionTransformer("stddev_samp"),
		},
		ValuesMode:           ValuesMode{Kind: ValuesWithSubqueryColumnAliases, ExplicitRow: false},
		SupportsNullOrdering: true,
		SupportsBoundedWindowFrames:               true,
		SupportsFramesInNavigationWindowFunctions: true,
		CastDatatypes:           defaultCastDatatypes(),
		CastTransformers:        map[CastPair]CastTransformer{},
		CastPropagatesNull:      true,
		SupportsNonFiniteFloats: false,
	}
}

// Athena mirrors Presto/Trino's SQL surface.
func Athena() Dialect {
	d := Generic()
	d.Name = "athena"
	d.QuoteStyle = '"'
	d.BinaryOps = opSet(standardBinaryOpsWithModulo...)
	d.SupportsNonFiniteFloats = false
	return d
}

// BigQuery: backtick-quoted identifiers, no infix modulo (`x % y`
// renders as `MOD(x, y)`), SELECT-UNION VALUES rendering, several
// renamed/lowered math functions.
func BigQuery() Dialect {
	return Dialect{
		Name:       "bigquery",
		QuoteStyle: '`',
		BinaryOps:  opSet(standardBinaryOps...), // no Modulo: rewritten via transform
		BinaryOpTransforms: map[vexpr.BinaryOp]BinaryOperatorTransformer{
			vexpr.OpModulo: ModulusOpToFunction,
		},
		ScalarFunctions: set(append([]string{
			"abs", "acos", "asin", "atan", "atan2", "ceil", "coalesce", "cos", "exp", "floor",
			"ln", "log10", "pow", "round", "sin", "sqrt", "tan", "trunc",
		}, stringDatetimeScalarFunctions...)...),
		AggregateFunctions: set(standardAggregateFunctions...),
		WindowFunctions:    set(standardWindowFunctions...),
		ScalarTransformers: map[string]FunctionTransformer{
			"log":    RenameFunctionTransformer("log10"),
			"log2":   LogBaseTransformer(2, false),
			"signum": RenameFunctionTransformer("sign"),
			"random": RenameFunctionTransformer("rand"),
			"date_add": DateAddToIntervalAddition(),
		},
		AggregateTransformers:       map[string]FunctionTransformer{},
		ValuesMode:                  ValuesMode{Kind: SelectUnion},
		SupportsNullOrdering:        true,
		JoinAggregateFullyQualified: true,
		SupportsBoundedWindowFrames: true,
		SupportsFramesInNavigationWindowFunctions: false,
		CastDatatypes: map[CastKind]string{
			vftypes.KindBoolean: "BOOLEAN",
			vftypes.KindInt8:    "INT64", vftypes.KindUint8: "INT64",
			vftypes.KindInt16: "INT64", vftypes.KindUint16: "INT64",
			vftypes.KindInt32: "INT64", vftypes.KindUint32: "INT64", vftypes.KindInt64: "INT64",
			vftypes.KindFloat32: "FLOAT64", vftypes.KindFloat64: "FLOAT64",
			vftypes.KindUtf8: "STRING",
		},
		CastTransformers:       map[CastPair]CastTransformer{},
		CastPropagatesNull:      true,
		SupportsNonFiniteFloats: true,
	}
}

// ClickHouse renames sample-variance-family aggregates to their
// "Samp"-suffixed native equivalents.
func ClickHouse() Dialect {
	d := Generic()
	d.Name = "clickhouse"
	d.ValuesMode = ValuesMode{Kind: SelectUnion}
	d.AggregateTransformers = map[string]FunctionTransformer{
		"var":    RenameFunctionTransformer("varSamp"),
		"stddev": RenameFunctionTransformer("stddevSamp"),
	}
	d.CastPropagatesNull = false
	d.SupportsNonFiniteFloats = true
	return d
}

// Databricks uses backtick-quoted identifiers like BigQuery but keeps
// the VALUES-with-subquery-aliases rendering.
func Databricks() Dialect {
	d := Generic()
	d.Name = "databricks"
	d.QuoteStyle = '`'
	d.SupportsFramesInNavigationWindowFunctions = false
	d.SupportsNonFiniteFloats = true
	return d
}

// DataFusion is the reference/native dialect: Generic's capability and
// transformer tables unchanged, with non-finite float literals enabled.
func DataFusion() Dialect {
	d := Generic()
	d.Name = "datafusion"
	d.SupportsNonFiniteFloats = true
	return d
}

// Dremio cannot express bounded window frames.
func Dremio() Dialect {
	d := Generic()
	d.Name = "dremio"
	d.SupportsBoundedWindowFrames = false
	d.SupportsNonFiniteFloats = true
	return d
}

// DuckDB closely tracks the reference dialect.
func DuckDB() Dialect {
	d := Generic()
	d.Name = "duckdb"
	d.SupportsNonFiniteFloats = true
	return d
}

// MySQL has no NULLS FIRST/LAST and renders VALUES as explicit ROW(...)
// tuples.
func MySQL() Dialect {
	d := Generic()
	d.Name = "mysql"
	d.QuoteStyle = '`'
	d.ValuesMode = ValuesMode{Kind: ValuesWithSubqueryColumnAliases, ExplicitRow: true}
	d.SupportsNullOrdering = false
	delete(d.ScalarFunctions, "random")
	d.ScalarTransformers["random"] = RenameFunctionTransformer("rand")
	return d
}

// Postgres tracks the reference dialect closely.
func Postgres() Dialect {
	d := Generic()
	d.Name = "postgres"
	d.SupportsNonFiniteFloats = true
	return d
}

// Redshift lacks ln/log/log10 unless their argument is cast to double
// precision (`ln(v)` emits `ln(CAST(v AS DOUBLE PRECISION))`), and has
// no native base-2 log at all.
func Redshift() Dialect {
	doublePrecision := vftypes.Float64
	return Dialect{
		Name:       "redshift",
		QuoteStyle: '"',
		BinaryOps:          opSet(standardBinaryOpsWithModulo...),
		BinaryOpTransforms: map[vexpr.BinaryOp]BinaryOperatorTransformer{},
		ScalarFunctions: set(append([]string{
			"abs", "acos", "asin", "atan", "atan2", "ceil", "coalesce", "cos", "exp", "floor",
			"pow", "round", "sin", "sqrt", "tan", "trunc", "random",
		}, stringDatetimeScalarFunctions...)...),
		AggregateFunctions: set("min", "max", "count", "avg", "sum", "var_pop", "stddev_pop", "count_distinct"),
		WindowFunctions:    set(standardWindowFunctions...),
		ScalarTransformers: map[string]FunctionTransformer{
			"log2":     LogBaseWithLnTransformer(2.0, &doublePrecision),
			"ln":       CastArgsFunctionTransformer("ln", doublePrecision),
			"log":      CastArgsFunctionTransformer("log", doublePrecision),
			"log10":    CastArgsFunctionTransformer("log", doublePrecision),
			"signum":   RenameFunctionTransformer("sign"),
			"date_add": DateAddToIntervalAddition(),
		},
		AggregateTransformers: map[string]FunctionTransformer{
			"var":    RenameFunctionTransformer("var_samp"),
			"stddev": RenameFunctionTransformer("stddev_samp"),
		},
		ValuesMode:                  ValuesMode{Kind: SelectUnion},
		SupportsNullOrdering:        true,
		JoinAggregateFullyQualified: true,
		SupportsBoundedWindowFrames: true,
		SupportsFramesInNavigationWindowFunctions: true,
		CastDatatypes: map[CastKind]string{
			vftypes.KindBoolean: "BOOLEAN",
			vftypes.KindInt8:    "SMALLINT", vftypes.KindUint8: "SMALLINT",
			vftypes.KindInt16: "SMALLINT", vftypes.KindUint16: "INTEGER",
			vftypes.KindInt32: "INTEGER", vftypes.KindUint32: "BIGINT", vftypes.KindInt64: "BIGINT",
			vftypes.KindFloat32: "REAL", vftypes.KindFloat64: "DOUBLE PRECISION",
			vftypes.KindUtf8: "TEXT",
		},
		CastTransformers: map[CastPair]CastTransformer{
			{From: vftypes.KindBoolean, To: vftypes.KindUtf8}: BoolToStringWithCase,
		},
		CastPropagatesNull:      false,
		SupportsNonFiniteFloats: true,
	}
}

// Snowflake quotes with double quotes, names unaliased VALUES columns
// COLUMN1.. (base index 1), and lowers both `log` and `log2` to the
// two-argument native `log(base, v)`.
func Snowflake() Dialect {
	return Dialect{
		Name:       "snowflake",
		QuoteStyle: '"',
		BinaryOps:          opSet(standardBinaryOpsWithModulo...),
		BinaryOpTransforms: map[vexpr.BinaryOp]BinaryOperatorTransformer{},
		ScalarFunctions: set(append([]string{
			"abs", "acos", "asin", "atan", "atan2", "ceil", "coalesce", "cos", "exp", "floor",
			"ln", "pow", "round", "sin", "sqrt", "tan", "trunc", "random",
		}, stringDatetimeScalarFunctions...)...),
		AggregateFunctions: set(
			"min", "max", "count", "avg", "sum", "median", "var_pop", "stddev_pop", "covar_pop", "corr",
			"count_distinct", "array_agg",
		),
		WindowFunctions: set(standardWindowFunctions...),
		ScalarTransformers: map[string]FunctionTransformer{
			"log":      LogBaseTransformer(10, true),
			"log10":    LogBaseTransformer(10, true),
			"log2":     LogBaseTransformer(2, true),
			"signum":   RenameFunctionTransformer("sign"),
			"date_add": DateAddToIntervalAddition(),
		},
		AggregateTransformers: map[string]FunctionTransformer{
			"var":    RenameFunctionTransformer("var_samp"),
			"stddev": RenameFunctionTransformer("stddev_samp"),
			"covar":  RenameFunctionTransformer("covar_samp"),
		},
		ValuesMode: ValuesMode{
			Kind: ValuesWithSelectColumnAliases, ColumnPrefix: "COLUMN", BaseIndex: 1,
		},
		SupportsNullOrdering:        true,
		SupportsBoundedWindowFrames: true,
		SupportsFramesInNavigationWindowFunctions: true,
		CastDatatypes: map[CastKind]string{
			vftypes.KindBoolean: "BOOLEAN",
			vftypes.KindInt8:    "TINYINT", vftypes.KindUint8: "SMALLINT",
			vftypes.KindInt16: "SMALLINT", vftypes.KindUint16: "INTEGER",
			vftypes.KindInt32: "INTEGER", vftypes.KindUint32: "BIGINT", vftypes.KindInt64: "BIGINT",
			vftypes.KindFloat32: "FLOAT", vftypes.KindFloat64: "DOUBLE",
			vftypes.KindUtf8: "VARCHAR",
		},
		CastTransformers:       map[CastPair]CastTransformer{},
		CastPropagatesNull:      true,
		SupportsNonFiniteFloats: true,
	}
}

// SQLite names unaliased VALUES columns column1.. (lowercase, unlike
// Snowflake's COLUMN1) and renders boolean→utf8 casts via CASE WHEN
// since SQLite's CAST(bool AS TEXT) yields "1"/"0".
func SQLite() Dialect {
	return Dialect{
		Name:       "sqlite",
		QuoteStyle: '"',
		BinaryOps:          opSet(standardBinaryOpsWithModulo...),
		BinaryOpTransforms: map[vexpr.BinaryOp]BinaryOperatorTransformer{},
		ScalarFunctions: set(append([]string{
			"abs", "acos", "asin", "atan", "atan2", "ceil", "coalesce", "cos", "exp", "floor",
			"ln", "log", "log10", "log2", "pow", "round", "sin", "sqrt", "tan", "trunc",
		}, stringDatetimeScalarFunctions...)...),
		AggregateFunctions: set(standardAggregateFunctions...),
		WindowFunctions:    set(standardWindowFunctions...),
		ScalarTransformers: map[string]FunctionTransformer{
			"date_add": DateAddToIntervalAddition(),
			"signum":   RenameFunctionTransformer("sign"),
		},
		AggregateTransformers: map[string]FunctionTransformer{},
		ValuesMode: ValuesMode{
			Kind: ValuesWithSelectColumnAliases, ColumnPrefix: "column", BaseIndex: 1,
		},
		SupportsNullOrdering:        true,
		JoinAggregateFullyQualified: true,
		SupportsBoundedWindowFrames: true,
		SupportsFramesInNavigationWindowFunctions: true,
		CastDatatypes: map[CastKind]string{
			vftypes.KindBoolean: "BOOLEAN",
			vftypes.KindInt8:    "INTEGER", vftypes.KindUint8: "INTEGER",
			vftypes.KindInt16: "INTEGER", vftypes.KindUint16: "INTEGER",
			vftypes.KindInt32: "INTEGER", vftypes.KindUint32: "INTEGER", vftypes.KindInt64: "INTEGER",
			vftypes.KindFloat32: "REAL", vftypes.KindFloat64: "REAL",
			vftypes.KindUtf8: "TEXT",
		},
		CastTransformers: map[CastPair]CastTransformer{
			{From: vftypes.KindBoolean, To: vftypes.KindUtf8}: BoolToStringWithCase,
		},
		CastPropagatesNull:      true,
		SupportsNonFiniteFloats: false,
	}
}

// ByName resolves a case-insensitive dialect name string to a Dialect
// value. "generic" and "default" both resolve to Generic().
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "athena":
		return Athena(), nil
	case "bigquery":
		return BigQuery(), nil
	case "clickhouse":
		return ClickHouse(), nil
	case "databricks":
		return Databricks(), nil
	case "datafusion":
		return DataFusion(), nil
	case "dremio":
		return Dremio(), nil
	case "duckdb":
		return DuckDB(), nil
	case "generic", "default":
		return Generic(), nil
	case "mysql":
		return MySQL(), nil
	case "postgres":
		return Postgres(), nil
	case "redshift":
		return Redshift(), nil
	case "snowflake":
		return Snowflake(), nil
	case "sqlite":
		return SQLite(), nil
	default:
		return Dialect{}, vferrors.Specification("unknown dialect %q", name)
	}
}
