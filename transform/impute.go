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
	"fmt"
	"strings"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/dialect"
	"github.com/dolthub/vegafusion-go/qplan"
	"github.com/dolthub/vegafusion-go/vexpr"
	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// Impute fills in missing values of Field with Value. With no Groupby
// there is nothing to fill in but null field values already present in
// every row, so that case is a plain CASE-rewrite Select with every
// other column passed through unchanged. With one Groupby field, filling
// requires synthesizing the (key, groupby) combinations the input never
// had, a distinct-keys × distinct-groups cross join left-joined back to
// the source — a shape this IR's Select/Filter/Aggregate/Join/Window
// node set has no single counterpart for — so that case is rendered
// directly as a qplan.ChainQueryStr, the escape hatch qplan/node.go
// documents for exactly this. Rows are flagged via qplan.ImputeColumn:
// true wherever the joined row's Field was null (every row the join
// manufactured, and also a real row whose Field was null), NULL
// otherwise; and the join carries a row_number() ordinal through as
// qplan.OrdinalColumn so a later Stack run over the imputed output
// reuses the same row-ordering column (via ensureOrdinal) instead of
// re-stamping one.
func Impute(t chartspec.Impute, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	schema := input.Schema()
	if _, ok := schema.FieldByName(t.Key); !ok {
		return nil, nil, vferrors.Specification("impute: key field %q not found", t.Key)
	}
	fieldField, ok := schema.FieldByName(t.Field)
	if !ok {
		return nil, nil, vferrors.Specification("impute: field %q not found", t.Field)
	}

	var groupField *vftypes.Field
	switch len(t.Groupby) {
	case 0:
	case 1:
		f, ok := schema.FieldByName(t.Groupby[0])
		if !ok {
			return nil, nil, vferrors.Specification("impute: groupby field %q not found", t.Groupby[0])
		}
		groupField = &f
	default:
		return nil, nil, vferrors.Specification("impute: more than one groupby field is unsupported")
	}

	if groupField == nil {
		return imputeZeroGroupby(t, fieldField, input, cfg)
	}
	return imputeSingleGroupby(t, *groupField, input, cfg)
}

// imputeZeroGroupby replaces null values of Field with Value in place:
// no row is added or removed, so every other column passes through
// unchanged.
func imputeZeroGroupby(t chartspec.Impute, fieldField vftypes.Field, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	schema := input.Schema()
	fieldCol := vexpr.NewColumn(fieldField.Name, fieldField.Type)
	value, err := imputeValueScalar(t.Value, fieldField.Type)
	if err != nil {
		return nil, nil, err
	}
	fillExpr := vexpr.NewCase(
		[]vexpr.WhenThen{{Cond: vexpr.NewUnary(vexpr.OpIsNull, fieldCol), Value: vexpr.NewLiteral(value)}},
		fieldCol,
	)

	exprs, aliases := passthroughExprs(schema)
	exprs, aliases = appendColumn(exprs, aliases, t.Field, fillExpr)

	name := cfg.NextName("impute")
	return qplan.NewSelect(name, input, exprs, aliases, schema), nil, nil
}

// imputeSingleGroupby synthesizes every (key, groupby) combination the
// input is missing, filling Field with Value on the manufactured rows.
// The join carries a row_number()
// ordinal over the untouched {parent} rows through as
// qplan.OrdinalColumn, NULL on synthesized rows, and a final ORDER BY
// puts those synthesized rows last (through the dialect-aware NULLS
// fallback, since not every dialect can say NULLS LAST directly).
func imputeSingleGroupby(t chartspec.Impute, groupField vftypes.Field, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	schema := input.Schema()
	quote := cfg.Dialect.QuoteIdent
	valueSQL, err := imputeValueLiteral(t.Value)
	if err != nil {
		return nil, nil, err
	}

	kq, gq, fq := quote(t.Key), quote(groupField.Name), quote(t.Field)
	ordq := quote(qplan.OrdinalColumn)

	selectCols := make([]string, 0, len(schema.Fields)+2)
	for _, f := range schema.Fields {
		fq2 := quote(f.Name)
		switch f.Name {
		case t.Key:
			selectCols = append(selectCols, fmt.Sprintf("k.%s AS %s", fq2, fq2))
		case groupField.Name:
			selectCols = append(selectCols, fmt.Sprintf("g.%s AS %s", fq2, fq2))
		case t.Field:
			selectCols = append(selectCols, fmt.Sprintf(
				"CASE WHEN src.%s IS NOT NULL THEN src.%s ELSE %s END AS %s", fq2, fq2, valueSQL, fq2))
		default:
			selectCols = append(selectCols, fmt.Sprintf("src.%s AS %s", fq2, fq2))
		}
	}
	selectCols = append(selectCols,
		fmt.Sprintf("CASE WHEN src.%s IS NOT NULL THEN NULL ELSE true END AS %s", fq, quote(qplan.ImputeColumn)),
		fmt.Sprintf("src.%s AS %s", ordq, ordq),
	)

	orderBy := dialect.NullsAwareOrderBy(cfg.Dialect, "src."+ordq, true, false)

	template := fmt.Sprintf(
		"SELECT %s "+
			"FROM (SELECT DISTINCT %s FROM {parent} WHERE %s IS NOT NULL) AS k "+
			"CROSS JOIN (SELECT DISTINCT %s FROM {parent} WHERE %s IS NOT NULL) AS g "+
			"LEFT JOIN (SELECT *, row_number() OVER () AS %s FROM {parent}) AS src "+
			"ON src.%s = k.%s AND src.%s = g.%s "+
			"ORDER BY %s",
		strings.Join(selectCols, ", "),
		kq, kq,
		gq, gq,
		ordq,
		kq, kq, gq, gq,
		orderBy,
	)

	fields := make([]vftypes.Field, 0, len(schema.Fields)+2)
	fields = append(fields, schema.Fields...)
	fields = append(fields,
		vftypes.Field{Name: qplan.ImputeColumn, Type: vftypes.Type{Kind: vftypes.KindBoolean, Nullable: true}},
		ordinalField(),
	)
	outSchema := vftypes.Schema{Fields: fields}

	name := cfg.NextName("impute")
	return qplan.NewChainQueryStr(name, template, input, outSchema), nil, nil
}

// imputeValueLiteral renders t.Value (decoded from the chart spec's own
// JSON, so one of nil/float64/string/bool) as a raw SQL literal for use
// inside Impute's ChainQueryStr template.
func imputeValueLiteral(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case float64:
		return fmt.Sprintf("%v", val), nil
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'", nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	default:
		return "", vferrors.Specification("impute: unsupported value literal type %T", v)
	}
}

// imputeValueScalar renders t.Value as a vftypes.Scalar for use inside
// the zero-groupby path's CASE expression, the vexpr IR's counterpart
// to imputeValueLiteral's raw-SQL rendering.
func imputeValueScalar(v any, fieldType vftypes.Type) (vftypes.Scalar, error) {
	switch val := v.(type) {
	case nil:
		return vftypes.NullScalar(fieldType), nil
	case float64:
		if vftypes.IsNumeric(fieldType) && fieldType.Kind != vftypes.KindFloat32 && fieldType.Kind != vftypes.KindFloat64 {
			return vftypes.IntScalar(fieldType, int64(val)), nil
		}
		return vftypes.FloatScalar(vftypes.Float64, val), nil
	case string:
		return vftypes.StringScalar(val), nil
	case bool:
		return vftypes.BoolScalar(val), nil
	default:
		return vftypes.Scalar{}, vferrors.Specification("impute: unsupported value literal type %T", v)
	}
}
