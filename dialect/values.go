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
	"fmt"
	"strings"

	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// RenderValues renders a literal table of rows as SQL text under d's
// ValuesMode: the single choke point every literal table — a
// chart-spec dataset's inline `values`, a synthesized DISTINCT-key list,
// or anything else a caller needs to hand the server as constant rows —
// passes through, so a new backend only ever needs a new ValuesMode
// rather than a new rendering path. columns names the output columns in
// row order; every row in rows must have the same length as columns.
func RenderValues(d Dialect, columns []string, rows [][]vftypes.Scalar) (string, error) {
	if len(rows) == 0 {
		return "", vferrors.Specification("dialect: RenderValues requires at least one row")
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return "", vferrors.Specification("dialect: RenderValues row has %d values, want %d columns", len(row), len(columns))
		}
	}

	rowSQL := make([]string, len(rows))
	for i, row := range rows {
		s, err := renderValuesRow(d, row)
		if err != nil {
			return "", err
		}
		rowSQL[i] = s
	}

	switch d.ValuesMode.Kind {
	case ValuesWithSubqueryColumnAliases:
		aliases := make([]string, len(columns))
		for i, c := range columns {
			aliases[i] = d.QuoteIdent(c)
		}
		return fmt.Sprintf("SELECT * FROM (VALUES %s) AS t(%s)", strings.Join(rowSQL, ", "), strings.Join(aliases, ", ")), nil

	case ValuesWithSelectColumnAliases:
		selectCols := make([]string, len(columns))
		for i, c := range columns {
			selectCols[i] = fmt.Sprintf("%s%d AS %s", d.ValuesMode.ColumnPrefix, d.ValuesMode.BaseIndex+i, d.QuoteIdent(c))
		}
		return fmt.Sprintf("SELECT %s FROM (VALUES %s)", strings.Join(selectCols, ", "), strings.Join(rowSQL, ", ")), nil

	case SelectUnion:
		selects := make([]string, len(rows))
		for i, row := range rows {
			parts := make([]string, len(row))
			for j, v := range row {
				lit, err := literalSQL(v, d)
				if err != nil {
					return "", err
				}
				if i == 0 {
					parts[j] = fmt.Sprintf("%s AS %s", lit, d.QuoteIdent(columns[j]))
				} else {
					parts[j] = lit
				}
			}
			selects[i] = "SELECT " + strings.Join(parts, ", ")
		}
		return strings.Join(selects, " UNION ALL "), nil

	default:
		return "", vferrors.Internal("dialect: unknown ValuesMode.Kind %d", d.ValuesMode.Kind)
	}
}

func renderValuesRow(d Dialect, row []vftypes.Scalar) (string, error) {
	parts := make([]string, len(row))
	for i, v := range row {
		s, err := literalSQL(v, d)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	joined := strings.Join(parts, ", ")
	if d.ValuesMode.ExplicitRow {
		return fmt.Sprintf("ROW(%s)", joined), nil
	}
	return fmt.Sprintf("(%s)", joined), nil
}
