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

package vexpr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/vftypes"
)

func schemaFixture() vftypes.Schema {
	return vftypes.Schema{Fields: []vftypes.Field{
		{Name: "a", Type: vftypes.Int32},
		{Name: "b", Type: vftypes.Utf8},
	}}
}

func TestTypeOfColumn(t *testing.T) {
	ty, err := TypeOf(NewColumn("a", vftypes.Int32), schemaFixture())
	require.NoError(t, err)
	require.Equal(t, vftypes.KindInt32, ty.Kind)
}

func TestTypeOfMissingColumnErrors(t *testing.T) {
	_, err := TypeOf(NewColumn("missing", vftypes.Int32), schemaFixture())
	require.Error(t, err)
}

func TestTypeOfComparisonIsBoolean(t *testing.T) {
	expr := NewBinary(OpEq, NewColumn("a", vftypes.Int32), NewLiteral(vftypes.IntScalar(vftypes.Int32, 1)))
	ty, err := TypeOf(expr, schemaFixture())
	require.NoError(t, err)
	require.Equal(t, vftypes.KindBoolean, ty.Kind)
}

func TestTypeOfArithmeticWidens(t *testing.T) {
	expr := NewBinary(OpAdd, NewColumn("a", vftypes.Int32), NewLiteral(vftypes.FloatScalar(vftypes.Float64, 1)))
	ty, err := TypeOf(expr, schemaFixture())
	require.NoError(t, err)
	require.Equal(t, vftypes.KindFloat64, ty.Kind)
}

func TestTypeOfArithmeticRejectsNonNumeric(t *testing.T) {
	expr := NewBinary(OpAdd, NewColumn("b", vftypes.Utf8), NewLiteral(vftypes.IntScalar(vftypes.Int32, 1)))
	_, err := TypeOf(expr, schemaFixture())
	require.Error(t, err)
}

func TestTypeOfCastIgnoresOperandType(t *testing.T) {
	expr := NewCast(NewColumn("a", vftypes.Int32), vftypes.Utf8)
	ty, err := TypeOf(expr, schemaFixture())
	require.NoError(t, err)
	require.Equal(t, vftypes.KindUtf8, ty.Kind)
}

func TestTypeOfWildcardIsInt64(t *testing.T) {
	ty, err := TypeOf(&Wildcard{}, schemaFixture())
	require.NoError(t, err)
	require.Equal(t, vftypes.KindInt64, ty.Kind)
}
