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

import "github.com/dolthub/vegafusion-go/vexpr"
import "github.com/dolthub/vegafusion-go/vftypes"

// CastKind is the logical type on one side of a cast-datatype mapping
// or cast-transformer key. It reuses vftypes.Kind directly since the
// dialect layer never needs the nested list/struct shape, only the
// scalar kind, to decide how to render or rewrite a cast.
type CastKind = vftypes.Kind

// CastPair is a (source, target) kind pair keying CastTransformers.
type CastPair struct {
	From, To CastKind
}

// BinaryOperatorTransformer rewrites a binary-operator expression node
// into an equivalent expression a dialect can natively emit, e.g.
// BigQuery's `x % y` → `MOD(x, y)`.
type BinaryOperatorTransformer func(l, r vexpr.Expr, resultType vftypes.Type) vexpr.Expr

// ModulusOpToFunction rewrites `a % b` into a call to the dialect's
// native MOD(a, b) function, for backends (BigQuery) whose SQL grammar
// has no infix modulo operator.
func ModulusOpToFunction(l, r vexpr.Expr, resultType vftypes.Type) vexpr.Expr {
	return vexpr.NewScalarUdf("MOD", []vexpr.Expr{l, r}, resultType)
}

// FunctionTransformer rewrites a scalar or aggregate function call —
// by name and argument list — into a replacement expression a dialect
// can natively emit.
type FunctionTransformer func(args []vexpr.Expr, resultType vftypes.Type) vexpr.Expr

// RenameFunctionTransformer swaps in a different native function name
// for the same argument list (e.g. "signum" → "sign").
func RenameFunctionTransformer(nativeName string) FunctionTransformer {
	return func(args []vexpr.Expr, resultType vftypes.Type) vexpr.Expr {
		return vexpr.NewScalarUdf(nativeName, args, resultType)
	}
}

// ExpWithPowFunctionTransformer lowers `exp(x)` to `pow(e, x)` for
// backends lacking a native exp.
func ExpWithPowFunctionTransformer() FunctionTransformer {
	e := vexpr.NewLiteral(vftypes.FloatScalar(vftypes.Float64, 2.718281828459045))
	return func(args []vexpr.Expr, resultType vftypes.Type) vexpr.Expr {
		return vexpr.NewScalarUdf("pow", []vexpr.Expr{e, args[0]}, resultType)
	}
}

// CastArgsFunctionTransformer wraps every argument in a CAST to
// castType before calling nativeName, for backends (Redshift) whose
// math functions require an explicit floating-point argument type.
func CastArgsFunctionTransformer(nativeName string, castType vftypes.Type) FunctionTransformer {
	return func(args []vexpr.Expr, resultType vftypes.Type) vexpr.Expr {
		casted := make([]vexpr.Expr, len(args))
		for i, a := range args {
			casted[i] = vexpr.NewCast(a, castType)
		}
		return vexpr.NewScalarUdf(nativeName, casted, resultType)
	}
}

// LogBaseTransformer lowers a single-argument `log_b(v)` call into the
// dialect's native two-argument `log(base, v)` or `log(v, base)`,
// depending on baseFirst, for backends (BigQuery, Snowflake) whose
// `log` takes an explicit base.
func LogBaseTransformer(base int, baseFirst bool) FunctionTransformer {
	baseLit := vexpr.NewLiteral(vftypes.IntScalar(vftypes.Int32, int64(base)))
	return func(args []vexpr.Expr, resultType vftypes.Type) vexpr.Expr {
		var callArgs []vexpr.Expr
		if baseFirst {
			callArgs = []vexpr.Expr{baseLit, args[0]}
		} else {
			callArgs = []vexpr.Expr{args[0], baseLit}
		}
		return vexpr.NewScalarUdf("log", callArgs, resultType)
	}
}

// LogBaseWithLnTransformer lowers `log_b(v)` to `ln(v) / ln(b)` for
// backends with no native log-with-base function at all (Redshift's
// log2). When castType is non-nil, both operands (the value and the
// base literal) are cast to it first.
func LogBaseWithLnTransformer(base float64, castType *vftypes.Type) FunctionTransformer {
	baseLit := vexpr.NewLiteral(vftypes.FloatScalar(vftypes.Float64, base))
	return func(args []vexpr.Expr, resultType vftypes.Type) vexpr.Expr {
		v := args[0]
		b := vexpr.Expr(baseLit)
		if castType != nil {
			v = vexpr.NewCast(v, *castType)
			b = vexpr.NewCast(baseLit, *castType)
		}
		lnV := vexpr.NewScalarUdf("ln", []vexpr.Expr{v}, resultType)
		lnB := vexpr.NewScalarUdf("ln", []vexpr.Expr{b}, resultType)
		return vexpr.NewBinary(vexpr.OpDivide, lnV, lnB)
	}
}

// DateAddToIntervalAddition lowers a `date_add(unit, amount, date)`
// call to `date + INTERVAL amount unit`, modeled here as
// `date + ScalarUdf("INTERVAL", [amount, unit])` since the IR has no
// dedicated interval-literal node; the SQL emitter special-cases the
// "INTERVAL" function name when rendering this node.
func DateAddToIntervalAddition() FunctionTransformer {
	return func(args []vexpr.Expr, resultType vftypes.Type) vexpr.Expr {
		unit, amount, date := args[0], args[1], args[2]
		interval := vexpr.NewScalarUdf("INTERVAL", []vexpr.Expr{amount, unit}, resultType)
		return vexpr.NewBinary(vexpr.OpAdd, date, interval)
	}
}

// CastTransformer rewrites a cast into a dialect-specific expression
// in place of a plain CAST(expr AS type).
type CastTransformer func(e vexpr.Expr) vexpr.Expr

// BoolToStringWithCase renders a boolean→utf8 cast as
// `CASE WHEN x THEN 'true' WHEN NOT x THEN 'false' END` (NULL when x is
// NULL, since neither branch matches), for
// backends whose native CAST(bool AS string) either errors or renders
// "1"/"0" instead of "true"/"false".
func BoolToStringWithCase(e vexpr.Expr) vexpr.Expr {
	trueStr := vexpr.NewLiteral(vftypes.StringScalar("true"))
	falseStr := vexpr.NewLiteral(vftypes.StringScalar("false"))
	return vexpr.NewCase([]vexpr.WhenThen{
		{Cond: e, Value: trueStr},
		{Cond: vexpr.NewUnary(vexpr.OpNot, e), Value: falseStr},
	}, nil)
}
