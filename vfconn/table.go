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

package vfconn

import "github.com/dolthub/vegafusion-go/vftypes"

// Table is a FetchQuery result: a schema plus one vftypes.Array per
// column, column-major the same way vftypes.Array itself is a columnar
// buffer. This package has no streaming/cursor contract to honor:
// FetchQuery's caller always wants the whole result to fold into a
// signal value or a constant-folded expression, never a row-by-row
// scan.
type Table struct {
	Schema  vftypes.Schema
	Columns []vftypes.Array
}

// NewTable builds a Table from a schema and its columns, which must be
// given in schema column order and share a common length.
func NewTable(schema vftypes.Schema, columns []vftypes.Array) Table {
	return Table{Schema: schema, Columns: columns}
}

// NumRows returns the row count, taken from the first column, or 0 for a
// Table with no columns.
func (t Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Column returns the column named name and true, or a zero Array and
// false if t's schema has no such column.
func (t Table) Column(name string) (vftypes.Array, bool) {
	for i, f := range t.Schema.Fields {
		if f.Name == name && i < len(t.Columns) {
			return t.Columns[i], true
		}
	}
	return vftypes.Array{}, false
}

// Row returns the scalar at row i of every column, in schema order.
func (t Table) Row(i int) []vftypes.Scalar {
	row := make([]vftypes.Scalar, len(t.Columns))
	for c, col := range t.Columns {
		row[c] = col.Get(i)
	}
	return row
}
