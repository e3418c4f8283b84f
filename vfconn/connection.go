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

// Package vfconn implements the external connection boundary a host
// embeds to let the planner and transform engine resolve table schemas
// and, eventually, hand a rendered query off to a real warehouse. No
// package in this repository depends on a specific backend; everything
// downstream of qplan.Render only ever produces a SQL string and a
// Connection is the one seam where that string meets data.
package vfconn

import (
	"context"

	"github.com/dolthub/vegafusion-go/dialect"
	"github.com/dolthub/vegafusion-go/vftypes"
)

// Connection is the host-supplied boundary between the planner/transform
// engine and a real data warehouse. Implementations must be safe for
// concurrent use: the Transform Engine may call FetchQuery for independent
// signals (e.g. multiple Extent nodes) concurrently.
type Connection interface {
	// FetchQuery executes sql (already rendered by qplan.Render for this
	// connection's Dialect) and returns its result shaped to
	// expectedSchema. A backend that cannot guarantee column order or
	// naming should reorder/rename its native result to match
	// expectedSchema rather than erroring.
	FetchQuery(ctx context.Context, sql string, expectedSchema vftypes.Schema) (Table, error)

	// Tables reports every table this connection can see, by name, for
	// the Planner's schema-resolution pass.
	Tables() (map[string]vftypes.Schema, error)

	// Dialect names the SQL dialect FetchQuery expects its input
	// rendered in.
	Dialect() dialect.Dialect

	// SessionContext returns a schema-only snapshot of this connection's
	// tables, letting the expression compiler resolve column references
	// without round-tripping to the real backend for every compilation.
	SessionContext() (*SessionContext, error)
}

// SessionContext is the local, schema-only view of a Connection's tables.
// It carries no rows: every table it names is reported empty, so a
// compiler.CompilationConfig.DataScope can be built from it directly
// without ever touching the backend.
type SessionContext struct {
	Timezone string
	Tables   map[string]vftypes.Schema
}

// DataScope projects s into the shape compiler.CompilationConfig.DataScope
// expects, so a host can write
// cfg := compiler.CompilationConfig{DataScope: sc.DataScope(), Timezone: sc.Timezone}
// without reaching into SessionContext's fields directly.
func (s *SessionContext) DataScope() map[string]vftypes.Schema {
	return s.Tables
}
