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
	"strings"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/qplan"
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// timeUnitGrain orders the granularity words a Units value may combine
// (e.g. "yearmonthdate"), finest first. TimeUnit truncates to the
// finest grain actually named: this is an approximation of Vega's
// component-wise timeUnit semantics (which can retain, say, year+hours
// while dropping month/date) — this implementation truncates to a single
// point on the calendar rather than reconstructing a sparse component
// set, which covers the common single- and prefix-combined units
// ("year", "yearmonth", "yearmonthdate", ...) exactly and approximates
// the rest.
var timeUnitGrain = []struct {
	word string
	sql  string
}{
	{"seconds", "second"},
	{"minutes", "minute"},
	{"hours", "hour"},
	{"date", "day"},
	{"month", "month"},
	{"year", "year"},
}

func timeUnitSQLGrain(units string) (string, error) {
	u := strings.ToLower(units)
	for _, g := range timeUnitGrain {
		if strings.Contains(u, g.word) {
			return g.sql, nil
		}
	}
	return "", vferrors.Specification("timeUnit: unrecognized units %q", units)
}

// TimeUnit truncates Field to the granularity named by Units, writing the
// result to As (default "<field>_<units>"), via the date_trunc(unit,
// field) scalar function.
func TimeUnit(t chartspec.TimeUnit, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	grain, err := timeUnitSQLGrain(t.Units)
	if err != nil {
		return nil, nil, err
	}
	col, err := columnOf(input.Schema(), t.Field)
	if err != nil {
		return nil, nil, err
	}
	colType, err := vexpr.TypeOf(col, input.Schema())
	if err != nil {
		return nil, nil, err
	}

	as := t.As
	if as == "" {
		as = t.Field + "_" + t.Units
	}

	truncated := vexpr.NewScalarUdf("date_trunc", []vexpr.Expr{litString(grain), col}, colType)

	exprs, aliases := passthroughExprs(input.Schema())
	exprs, aliases = appendColumn(exprs, aliases, as, truncated)
	schema := input.Schema().WithField(vftypes.Field{Name: as, Type: colType})

	name := cfg.NextName("timeunit")
	return qplan.NewSelect(name, input, exprs, aliases, schema), nil, nil
}
