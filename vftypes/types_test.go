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

package vftypes

import "testing"

import "github.com/stretchr/testify/require"

func TestWidenLattice(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want Type
	}{
		{"int8 widens to int16", Int8, Int16, Int16},
		{"int64 widens to float32", Int64, Float32, Float32},
		{"float32 widens to float64", Float32, Float64, Float64},
		{"same type is idempotent", Int32, Int32, Int32},
		{"order does not matter", Float64, Int8, Float64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want.Kind, Widen(tt.a, tt.b).Kind)
			require.Equal(t, tt.want.Kind, Widen(tt.b, tt.a).Kind)
		})
	}
}

func TestIsNumeric(t *testing.T) {
	require.True(t, IsNumeric(Int32))
	require.True(t, IsNumeric(Float64))
	require.False(t, IsNumeric(Utf8))
	require.False(t, IsNumeric(Boolean))
	require.False(t, IsNumeric(List(Int32)))
}

func TestSchemaFieldByName(t *testing.T) {
	s := Schema{Fields: []Field{{Name: "a", Type: Int32}, {Name: "b", Type: Utf8}}}
	f, ok := s.FieldByName("b")
	require.True(t, ok)
	require.Equal(t, Utf8.Kind, f.Type.Kind)

	_, ok = s.FieldByName("missing")
	require.False(t, ok)
}

func TestSchemaWithFieldReplacesExisting(t *testing.T) {
	s := Schema{Fields: []Field{{Name: "a", Type: Int32}}}
	s2 := s.WithField(Field{Name: "a", Type: Utf8})
	require.Len(t, s2.Fields, 1)
	require.Equal(t, Utf8.Kind, s2.Fields[0].Type.Kind)

	s3 := s.WithField(Field{Name: "b", Type: Boolean})
	require.Len(t, s3.Fields, 2)
	require.Equal(t, []string{"a", "b"}, s3.Names())
}

func TestStructAndListTypeString(t *testing.T) {
	st := Struct(Field{Name: "x", Type: Int32}, Field{Name: "y", Type: Utf8})
	require.Contains(t, st.String(), "struct")

	l := List(Float64)
	require.Equal(t, "list<float64>", l.String())
}
