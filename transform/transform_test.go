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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/compiler"
	"github.com/dolthub/vegafusion-go/dialect"
	"github.com/dolthub/vegafusion-go/qplan"
	"github.com/dolthub/vegafusion-go/vftypes"
)

func testSchema() vftypes.Schema {
	return vftypes.Schema{Fields: []vftypes.Field{
		{Name: "a", Type: vftypes.Float64},
		{Name: "b", Type: vftypes.Float64},
		{Name: "cat", Type: vftypes.Utf8},
		{Name: "t", Type: vftypes.TimestampMs},
	}}
}

func testInput() qplan.Node {
	return qplan.NewSource("src", "data", testSchema(), dialect.Generic())
}

func testConfig() Config {
	return NewConfig(compiler.CompilationConfig{}, dialect.Generic())
}

func schemaNames(s vftypes.Schema) []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func TestSortSpecToKeysNullsFollowDirection(t *testing.T) {
	keys, err := sortSpecToKeys(testSchema(), []string{"a", "b"}, []string{"ascending", "descending"})
	require.NoError(t, err)
	require.Len(t, keys, 2)

	require.True(t, keys[0].Ascending)
	require.True(t, keys[0].NullsFirst, "ascending keys sort nulls first")

	require.False(t, keys[1].Ascending)
	require.False(t, keys[1].NullsFirst, "descending keys sort nulls last")
}

func TestSortSpecToKeysDefaultsToAscending(t *testing.T) {
	keys, err := sortSpecToKeys(testSchema(), []string{"a"}, nil)
	require.NoError(t, err)
	require.True(t, keys[0].Ascending)
	require.True(t, keys[0].NullsFirst)
}
