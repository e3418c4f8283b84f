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

import (
	"context"
	"strings"

	"github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/dolthub/vegafusion-go/dialect"
	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// MemConnection is the reference in-memory Connection: a fixed, named
// set of tables held entirely in process memory, with no real query
// engine behind it. It backs every table a plannertest fixture or a
// caller without a real warehouse needs.
//
// FetchQuery here is intentionally not a general SQL executor — there
// is no query engine in this package to lean on. After checking that the
// query parses, it looks only at which registered table names appear in
// it (quoted or not): if exactly one does, that table's data is returned
// verbatim, and any filter, projection or aggregate in the query is not
// applied; otherwise the result is empty and matches expectedSchema, the
// same schema-only answer SessionContext gives. A
// host needing real pushdown execution supplies its own Connection
// against its own warehouse.
type MemConnection struct {
	dialect dialect.Dialect
	tz      string
	tables  map[string]Table
}

// NewMemConnection builds an empty MemConnection rendering queries for d.
func NewMemConnection(d dialect.Dialect) *MemConnection {
	return &MemConnection{dialect: d, tz: "UTC", tables: map[string]Table{}}
}

// RegisterTable adds (or replaces) a named table.
func (c *MemConnection) RegisterTable(name string, t Table) {
	c.tables[name] = t
}

// WithTimezone sets the timezone SessionContext reports; MemConnection
// defaults to UTC.
func (c *MemConnection) WithTimezone(tz string) *MemConnection {
	c.tz = tz
	return c
}

func (c *MemConnection) Dialect() dialect.Dialect { return c.dialect }

func (c *MemConnection) Tables() (map[string]vftypes.Schema, error) {
	out := make(map[string]vftypes.Schema, len(c.tables))
	for name, t := range c.tables {
		out[name] = t.Schema
	}
	return out, nil
}

func (c *MemConnection) SessionContext() (*SessionContext, error) {
	tables, err := c.Tables()
	if err != nil {
		return nil, err
	}
	return &SessionContext{Timezone: c.tz, Tables: tables}, nil
}

func (c *MemConnection) FetchQuery(ctx context.Context, sql string, expectedSchema vftypes.Schema) (Table, error) {
	// The vitess parser speaks MySQL, where identifiers are backtick-
	// quoted; rewrite this connection's own quote character first so a
	// query rendered for an ANSI-quoting dialect still parses. Emitted
	// string literals are single-quoted, so the rewrite never touches one.
	parseable := sql
	if q := string(c.dialect.QuoteStyle); q != "" && q != "`" {
		parseable = strings.ReplaceAll(parseable, q, "`")
	}
	if _, err := sqlparser.Parse(parseable); err != nil {
		return Table{}, vferrors.Wrap(err, "vfconn: query does not parse")
	}
	if name, ok := c.singleTableNameIn(sql); ok {
		if t, ok := c.tables[name]; ok {
			return t, nil
		}
	}
	return emptyTableOf(expectedSchema), nil
}

// singleTableNameIn reports whether sql references exactly one of c's
// registered tables by name, quoted (under c.dialect.QuoteStyle) or bare.
func (c *MemConnection) singleTableNameIn(sql string) (string, bool) {
	q := string(c.dialect.QuoteStyle)
	var found string
	for name := range c.tables {
		needle := name
		if q != "" {
			needle = q + name + q
		}
		if strings.Contains(sql, needle) {
			if found != "" && found != name {
				return "", false
			}
			found = name
		}
	}
	return found, found != ""
}

func emptyTableOf(schema vftypes.Schema) Table {
	cols := make([]vftypes.Array, len(schema.Fields))
	for i, f := range schema.Fields {
		cols[i] = vftypes.NewArray(f.Type, nil)
	}
	return Table{Schema: schema, Columns: cols}
}
