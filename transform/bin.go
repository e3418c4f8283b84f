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
	"math"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/qplan"
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// binEpsilon nudges a row's computed bin index away from a floating-point
// boundary artifact at bin edges.
const binEpsilon = 1e-14

// binDivisors is the default step-shrinking sequence: once a power-of-base
// candidate step is chosen, try dividing it by each of these in turn as
// long as the resulting bin count still fits within maxbins.
var binDivisors = []float64{5, 2}

// binParams computes {start, stop, step} for t.Extent, reproducing the
// canonical vega-statistics bin algorithm: pick a power-of-Base step
// that fits Maxbins, try the Divide shrink factors, then nice/anchor
// adjust the bounds. For extent=[0,100], maxbins=10, base=10, nice=true
// the result is {start:0, stop:100, step:10}.
func binParams(t chartspec.Bin) (start, stop, step float64, err error) {
	if len(t.Extent) != 2 {
		return 0, 0, 0, vferrors.Specification("bin: extent must have exactly 2 elements, got %d", len(t.Extent))
	}
	lo, hi := t.Extent[0], t.Extent[1]
	if lo > hi {
		return 0, 0, 0, vferrors.Specification("bin: extent[0] (%v) must not exceed extent[1] (%v)", lo, hi)
	}

	maxb := t.Maxbins
	if maxb == 0 {
		maxb = 10
	}
	base := t.Base
	if base == 0 {
		base = 10
	}
	logb := math.Log(base)

	span := hi - lo
	if t.Span != nil {
		span = *t.Span
	}
	if span == 0 {
		span = math.Abs(lo)
	}
	if span == 0 {
		span = 1
	}

	switch {
	case t.Step != 0:
		step = t.Step

	case len(t.Steps) > 0:
		target := span / maxb
		step = t.Steps[len(t.Steps)-1]
		for _, s := range t.Steps {
			if s > target {
				step = s
				break
			}
		}

	default:
		level := math.Ceil(math.Log(maxb) / logb)
		minstep := t.Minstep
		step = math.Max(minstep, math.Pow(base, math.Round(math.Log(span)/logb)-level))
		for math.Ceil(span/step) > maxb {
			step *= base
		}
		divisors := binDivisors
		if len(t.Divide) > 0 {
			divisors = t.Divide
		}
		for _, d := range divisors {
			v := step / d
			if v >= minstep && span/v <= maxb {
				step = v
			}
		}
	}

	logStep := math.Log(step)
	precision := 0
	if logStep < 0 {
		precision = int(-logStep/logb) + 1
	}
	eps := math.Pow(base, float64(-precision-1))

	min, max := lo, hi
	if t.Nice {
		v := math.Floor(min/step+eps) * step
		if min < v {
			min = v - step
		} else {
			min = v
		}
		max = math.Ceil(max/step) * step
	}

	if t.Anchor != nil {
		shift := *t.Anchor - (min + step*math.Floor((*t.Anchor-min)/step))
		min += shift
		max += shift
	}

	if max == min {
		max = min + step
	}
	return min, max, step, nil
}

// Bin computes bin boundaries for Field and appends two columns (As[0],
// As[1] — default "<field>_bin0"/"<field>_bin1") holding each row's bin
// start and end. Boundary rows map specially: a value below
// start maps to -Infinity, a value at or past stop maps to +Infinity
// except when it lands within an epsilon of stop, in which case it maps
// to the last bin rather than spilling into a phantom extra bin.
func Bin(t chartspec.Bin, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	start, stop, step, err := binParams(t)
	if err != nil {
		return nil, nil, err
	}
	col, err := columnOf(input.Schema(), t.Field)
	if err != nil {
		return nil, nil, err
	}

	as0, as1 := t.Field+"_bin0", t.Field+"_bin1"
	if len(t.As) >= 1 && t.As[0] != "" {
		as0 = t.As[0]
	}
	if len(t.As) >= 2 && t.As[1] != "" {
		as1 = t.As[1]
	}

	n := math.Ceil((stop-start)/step - binEpsilon)
	lastStart := start + step*(n-1)
	eps2 := step * 1e-6

	idx := binIndexExpr(col, start, step)
	belowStart := vexpr.NewBinary(vexpr.OpLt, idx, litFloat(0))
	atOrPastStop := vexpr.NewBinary(vexpr.OpGtEq, idx, litFloat(n))
	nearStop := vexpr.NewBinary(vexpr.OpLtEq,
		vexpr.NewScalarUdf("abs", []vexpr.Expr{vexpr.NewBinary(vexpr.OpSubtract, col, litFloat(stop))}, vftypes.Float64),
		litFloat(eps2))
	binStart := vexpr.NewBinary(vexpr.OpAdd, litFloat(start), vexpr.NewBinary(vexpr.OpMultiply, litFloat(step), idx))

	bin0 := vexpr.NewCase([]vexpr.WhenThen{
		{Cond: belowStart, Value: vexpr.NewLiteral(vftypes.FloatScalar(vftypes.Float64, math.Inf(-1)))},
		{Cond: vexpr.NewBinary(vexpr.OpAnd, atOrPastStop, nearStop), Value: litFloat(lastStart)},
		{Cond: atOrPastStop, Value: vexpr.NewLiteral(vftypes.FloatScalar(vftypes.Float64, math.Inf(1)))},
	}, binStart)
	bin1 := vexpr.NewBinary(vexpr.OpAdd, bin0, litFloat(step))

	exprs, aliases := passthroughExprs(input.Schema())
	exprs, aliases = appendColumn(exprs, aliases, as0, bin0)
	exprs, aliases = appendColumn(exprs, aliases, as1, bin1)
	schema := input.Schema().
		WithField(vftypes.Field{Name: as0, Type: vftypes.Float64}).
		WithField(vftypes.Field{Name: as1, Type: vftypes.Float64})

	name := cfg.NextName("bin")
	plan := qplan.NewSelect(name, input, exprs, aliases, schema)

	var signals []EmittedSignal
	if t.Signal != "" {
		value := binSignalValue(t, start, stop, step)
		signals = []EmittedSignal{{Name: t.Signal, Value: &value}}
	}
	return plan, signals, nil
}

// binIndexExpr builds floor((col - start) / step + binEpsilon), the bin
// index a row's value falls into before the boundary cases are applied.
func binIndexExpr(col vexpr.Expr, start, step float64) vexpr.Expr {
	diff := vexpr.NewBinary(vexpr.OpSubtract, col, litFloat(start))
	ratio := vexpr.NewBinary(vexpr.OpDivide, diff, litFloat(step))
	shifted := vexpr.NewBinary(vexpr.OpAdd, ratio, litFloat(binEpsilon))
	return vexpr.NewScalarUdf("floor", []vexpr.Expr{shifted}, vftypes.Float64)
}

// binSignalValue builds the struct scalar Bin emits when Signal is set:
// {fields: [Field], fname: "bin_"+Field, start, step, stop}.
func binSignalValue(t chartspec.Bin, start, stop, step float64) vftypes.Scalar {
	fieldsType := vftypes.List(vftypes.Utf8)
	structType := vftypes.Struct(
		vftypes.Field{Name: "fields", Type: fieldsType},
		vftypes.Field{Name: "fname", Type: vftypes.Utf8},
		vftypes.Field{Name: "start", Type: vftypes.Float64},
		vftypes.Field{Name: "step", Type: vftypes.Float64},
		vftypes.Field{Name: "stop", Type: vftypes.Float64},
	)
	return vftypes.Scalar{
		Type:  structType,
		Valid: true,
		Struct: map[string]vftypes.Scalar{
			"fields": {Type: fieldsType, Valid: true, List: []vftypes.Scalar{vftypes.StringScalar(t.Field)}},
			"fname":  vftypes.StringScalar("bin_" + t.Field),
			"start":  vftypes.FloatScalar(vftypes.Float64, start),
			"step":   vftypes.FloatScalar(vftypes.Float64, step),
			"stop":   vftypes.FloatScalar(vftypes.Float64, stop),
		},
	}
}
