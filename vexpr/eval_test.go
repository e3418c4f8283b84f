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

	"github.com/dolthub/vegafusion-go/vferrors"
	"github.com/dolthub/vegafusion-go/vftypes"
)

func TestEvalToScalarLiteral(t *testing.T) {
	v, err := EvalToScalar(NewLiteral(vftypes.IntScalar(vftypes.Int32, 5)), Scope{})
	require.NoError(t, err)
	require.Equal(t, int64(5), v.Int)
}

func TestEvalToScalarArithmetic(t *testing.T) {
	expr := NewBinary(OpAdd,
		NewLiteral(vftypes.IntScalar(vftypes.Int32, 2)),
		NewLiteral(vftypes.FloatScalar(vftypes.Float64, 3.5)))
	v, err := EvalToScalar(expr, Scope{})
	require.NoError(t, err)
	require.Equal(t, vftypes.KindFloat64, v.Type.Kind)
	require.Equal(t, 5.5, v.Float)
}

func TestEvalToScalarStringConcatMember(t *testing.T) {
	// datum["b"+"ar"] must compile to Column("bar"); here we just check
	// the index sub-expression folds to "bar".
	expr := NewBinary(OpAdd, NewLiteral(vftypes.StringScalar("b")), NewLiteral(vftypes.StringScalar("ar")))
	v, err := EvalToScalar(expr, Scope{})
	require.NoError(t, err)
	require.Equal(t, "bar", v.Str)
}

func TestEvalToScalarMixedConcatIsTypeError(t *testing.T) {
	expr := NewBinary(OpAdd, NewLiteral(vftypes.FloatScalar(vftypes.Float64, 1)), NewLiteral(vftypes.StringScalar("x")))
	_, err := EvalToScalar(expr, Scope{})
	require.Error(t, err)
}

func TestEvalToScalarNullPropagation(t *testing.T) {
	expr := NewBinary(OpAdd,
		NewLiteral(vftypes.NullScalar(vftypes.Int32)),
		NewLiteral(vftypes.IntScalar(vftypes.Int32, 1)))
	v, err := EvalToScalar(expr, Scope{})
	require.NoError(t, err)
	require.False(t, v.Valid)
}

func TestEvalToScalarAndShortCircuitsOnFalse(t *testing.T) {
	expr := NewBinary(OpAnd,
		NewLiteral(vftypes.BoolScalar(false)),
		NewLiteral(vftypes.NullScalar(vftypes.Boolean)))
	v, err := EvalToScalar(expr, Scope{})
	require.NoError(t, err)
	require.True(t, v.Valid)
	require.False(t, v.Bool)
}

func TestEvalToScalarOrShortCircuitsOnTrue(t *testing.T) {
	expr := NewBinary(OpOr,
		NewLiteral(vftypes.NullScalar(vftypes.Boolean)),
		NewLiteral(vftypes.BoolScalar(true)))
	v, err := EvalToScalar(expr, Scope{})
	require.NoError(t, err)
	require.True(t, v.Valid)
	require.True(t, v.Bool)
}

func TestEvalToScalarColumnIsNotConstant(t *testing.T) {
	_, err := EvalToScalar(NewColumn("foo", vftypes.Int32), Scope{})
	require.Error(t, err)
	require.Equal(t, vferrors.CodeNotConstant, vferrors.CodeOf(err))
}

func TestEvalToScalarCase(t *testing.T) {
	expr := NewCase([]WhenThen{
		{Cond: NewLiteral(vftypes.BoolScalar(false)), Value: NewLiteral(vftypes.IntScalar(vftypes.Int32, 1))},
		{Cond: NewLiteral(vftypes.BoolScalar(true)), Value: NewLiteral(vftypes.IntScalar(vftypes.Int32, 2))},
	}, NewLiteral(vftypes.IntScalar(vftypes.Int32, 3)))
	v, err := EvalToScalar(expr, Scope{})
	require.NoError(t, err)
	require.Equal(t, int64(2), v.Int)
}

func TestEvalToScalarIsNull(t *testing.T) {
	v, err := EvalToScalar(NewUnary(OpIsNull, NewLiteral(vftypes.NullScalar(vftypes.Int32))), Scope{})
	require.NoError(t, err)
	require.True(t, v.Bool)
}
