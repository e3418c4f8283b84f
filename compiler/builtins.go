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
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// builtin describes one entry of the call registry: lower receives
// the already-compiled argument expressions and produces the IR node.
// Most entries just need a name and return type; the register* helpers
// below build lower from those for the common shapes.
type builtin struct {
	lower func(args []vexpr.Expr) (vexpr.Expr, error)
}

// builtins maps a chart-spec call name to its lowering. Names for the
// scalar-function entries are chosen to match dialect/dialects.go's
// ScalarFunctions/ScalarTransformers tables exactly, so the emitted
// ScalarUdf resolves against a real dialect capability (or its
// transformer) rather than failing at SQL-emission time for every
// backend.
var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{}

	// Math, one-argument, float64 in and out — native on every dialect's
	// standardScalarFunctions table (dialect/dialects.go).
	for _, name := range []string{"abs", "acos", "asin", "atan", "ceil", "cos", "exp", "floor", "ln", "log10", "sin", "sqrt", "tan", "trunc"} {
		registerUnaryFloat(name, name)
	}
	// JS Math.log is natural log, so it lowers to the IR name "ln". The
	// dialect tables treat IR "log" as base-10 (BigQuery renames it to
	// log10, Snowflake rewrites it to log(10, v)).
	registerUnaryFloat("log", "ln")
	// JS Math.log2 has no single standard SQL name; "log2" is the IR name
	// every per-dialect LogBaseTransformer(2, ...) is registered under.
	registerUnaryFloat("log2", "log2")
	// JS Math.sign; BigQuery/Redshift/Snowflake rename "signum"->"sign" via
	// RenameFunctionTransformer, so the IR name must be "signum".
	registerUnaryFloat("sign", "signum")

	registerBinaryFloat("atan2", "atan2")
	registerBinaryFloat("pow", "pow")

	builtins["round"] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity("round", args, 1); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf("round", args, vftypes.Float64), nil
	}}
	builtins["random"] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity("random", args, 0); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf("random", nil, vftypes.Float64), nil
	}}
	builtins["coalesce"] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if len(args) == 0 {
			return nil, compilationErrorf("coalesce requires at least one argument")
		}
		return vexpr.NewScalarUdf("coalesce", args, vftypes.Float64), nil
	}}

	// length() is also reachable directly as a call, not only via the
	// `.length` member-access lowering.
	builtins["length"] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity("length", args, 1); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf("length", args, vftypes.Int64), nil
	}}

	// Type-checking / selection predicates. isValid(x) means x IS NOT
	// NULL and lowers straight to the IR's own IS NULL unary,
	// which every dialect can emit natively; the rest (isArray,
	// isBoolean, isNumber, isObject, isString, isDate) have no SQL
	// equivalent and are intentionally emitted under names absent from
	// every dialect's ScalarFunctions/ScalarTransformers table, so they
	// fail with UnsupportedForDialect at emission time rather than
	// silently returning nonsense — the mechanism by which a dataset
	// using one of these degrades to PartiallySupported.
	builtins["isValid"] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity("isValid", args, 1); err != nil {
			return nil, err
		}
		return vexpr.NewUnary(vexpr.OpNot, vexpr.NewUnary(vexpr.OpIsNull, args[0])), nil
	}}
	for _, name := range []string{"isArray", "isBoolean", "isNumber", "isObject", "isString", "isDate"} {
		n := name
		builtins[n] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
			if err := checkArity(n, args, 1); err != nil {
				return nil, err
			}
			return vexpr.NewScalarUdf(n, args, vftypes.Boolean), nil
		}}
	}

	// String builtins.
	registerStringFn("upper", "upper", 1)
	registerStringFn("lower", "lower", 1)
	registerStringFn("trim", "trim", 1)
	builtins["replace"] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity("replace", args, 3); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf("replace", args, vftypes.Utf8), nil
	}}
	builtins["substring"] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if len(args) != 2 && len(args) != 3 {
			return nil, compilationErrorf("substring expects 2 or 3 arguments, got %d", len(args))
		}
		return vexpr.NewScalarUdf("substring", args, vftypes.Utf8), nil
	}}

	// Datetime builtins. timeFormat is the formatter the datetime bridge
	// uses to stringify local datetimes for transport; toDate reparses
	// on the other side.
	builtins["timeFormat"] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity("timeFormat", args, 2); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf("timeFormat", args, vftypes.Utf8), nil
	}}
	builtins["toDate"] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity("toDate", args, 1); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf("toDate", args, vftypes.TimestampMs), nil
	}}
	// dateAdd(unit, amount, date): arg order matches
	// dialect.DateAddToIntervalAddition's expectation, which every
	// dialect registers under the IR name "date_add".
	builtins["dateAdd"] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity("dateAdd", args, 3); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf("date_add", args, vftypes.TimestampMs), nil
	}}
	for _, name := range []string{"year", "month", "date", "day", "hours", "minutes", "seconds"} {
		registerDatePart(name)
	}
}

func registerUnaryFloat(jsName, irName string) {
	n := irName
	builtins[jsName] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity(jsName, args, 1); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf(n, args, vftypes.Float64), nil
	}}
}

func registerBinaryFloat(jsName, irName string) {
	n := irName
	builtins[jsName] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity(jsName, args, 2); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf(n, args, vftypes.Float64), nil
	}}
}

func registerStringFn(jsName, irName string, arity int) {
	n := irName
	builtins[jsName] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity(jsName, args, arity); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf(n, args, vftypes.Utf8), nil
	}}
}

func registerDatePart(name string) {
	n := "date_part_" + name
	builtins[name] = builtin{lower: func(args []vexpr.Expr) (vexpr.Expr, error) {
		if err := checkArity(name, args, 1); err != nil {
			return nil, err
		}
		return vexpr.NewScalarUdf(n, args, vftypes.Int32), nil
	}}
}

func checkArity(name string, args []vexpr.Expr, want int) error {
	if len(args) != want {
		return compilationErrorf("%s expects %d argument(s), got %d", name, want, len(args))
	}
	return nil
}
