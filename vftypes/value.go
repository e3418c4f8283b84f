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

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scalar is a single nullable, typed value — the row-oriented half of
// the tagged-value model. The zero value of each field is
// meaningless unless Valid is true; callers must check Valid before
// reading Bool/Int/Uint/Float/Str/Time/List/Struct.
type Scalar struct {
	Type  Type
	Valid bool

	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	Str    string
	Time   time.Time
	Dec    decimal.Decimal
	List   []Scalar
	Struct map[string]Scalar
}

// NullScalar returns an invalid (SQL NULL) scalar of type t.
func NullScalar(t Type) Scalar {
	return Scalar{Type: t}
}

// BoolScalar builds a valid boolean scalar.
func BoolScalar(v bool) Scalar { return Scalar{Type: Boolean, Valid: true, Bool: v} }

// IntScalar builds a valid scalar of the given signed-integer kind.
func IntScalar(t Type, v int64) Scalar { return Scalar{Type: t, Valid: true, Int: v} }

// FloatScalar builds a valid scalar of the given floating-point kind.
func FloatScalar(t Type, v float64) Scalar { return Scalar{Type: t, Valid: true, Float: v} }

// StringScalar builds a valid utf8 scalar.
func StringScalar(v string) Scalar { return Scalar{Type: Utf8, Valid: true, Str: v} }

// ToArray produces a single-element Array holding this scalar.
func (s Scalar) ToArray() Array {
	return Array{Type: s.Type, Values: []Scalar{s}}
}

// Array is a columnar, length-tagged sequence of scalars sharing one
// logical type. The backing buffer is a plain slice rather than a
// per-kind typed buffer: this module never touches the wire format,
// and the SQL emitter only ever needs random-access Get, so there is
// no benefit porting Arrow's per-type buffer layout here.
type Array struct {
	Type   Type
	Values []Scalar
}

// NewArray builds an Array of the given type from already-built
// scalars, which must each carry the same Type as t.
func NewArray(t Type, values []Scalar) Array {
	return Array{Type: t, Values: values}
}

// Len returns the number of rows in the array.
func (a Array) Len() int { return len(a.Values) }

// Get returns the scalar at index i, or a null scalar of a's type if i
// is out of bounds.
func (a Array) Get(i int) Scalar {
	if i < 0 || i >= len(a.Values) {
		return NullScalar(a.Type)
	}
	return a.Values[i]
}

// DataTypeOf reports the logical type of t itself; present alongside
// Array/Scalar for API symmetry with the IR-level data_type_of(expr,
// schema), which lives in package vexpr since it needs a schema.
func DataTypeOf(t Type) Type { return t }

// Widen returns the least-upper-bound type of a and b along the
// numeric lattice i8 < i16 < i32 < i64 < f32 < f64. Widen
// panics if either type is non-numeric; callers must check IsNumeric
// first.
func Widen(a, b Type) Type {
	ra, oka := numericRank[a.Kind]
	rb, okb := numericRank[b.Kind]
	if !oka || !okb {
		panic("vftypes.Widen: non-numeric type")
	}
	if ra >= rb {
		return a
	}
	return b
}

// Cast converts a to target following the widening lattice for numeric
// targets, and simple reinterpretation for the rest. An undefined
// conversion reports false; callers wrap that into a vferrors.TypeError
// at the call site, keeping vftypes free of an error-package import.
func Cast(a Array, target Type) (Array, bool) {
	out := make([]Scalar, a.Len())
	for i, s := range a.Values {
		cast, ok := castScalar(s, target)
		if !ok {
			return Array{}, false
		}
		out[i] = cast
	}
	return Array{Type: target, Values: out}, true
}

func castScalar(s Scalar, target Type) (Scalar, bool) {
	if !s.Valid {
		return NullScalar(target), true
	}
	switch {
	case IsNumeric(s.Type) && IsNumeric(target):
		return castNumeric(s, target), true
	case s.Type.Kind == KindUtf8 && target.Kind == KindUtf8:
		return s, true
	case IsNumeric(s.Type) && target.Kind == KindUtf8:
		return StringScalar(numericToString(s)), true
	case s.Type.Kind == KindBoolean && target.Kind == KindUtf8:
		if s.Bool {
			return StringScalar("true"), true
		}
		return StringScalar("false"), true
	case s.Type.Kind == target.Kind:
		return s, true
	default:
		return Scalar{}, false
	}
}

func castNumeric(s Scalar, target Type) Scalar {
	var f float64
	if isFloatKind(s.Type.Kind) {
		f = s.Float
	} else if isUnsignedKind(s.Type.Kind) {
		f = float64(s.Uint)
	} else {
		f = float64(s.Int)
	}
	if isFloatKind(target.Kind) {
		return FloatScalar(target, f)
	}
	if isUnsignedKind(target.Kind) {
		return Scalar{Type: target, Valid: true, Uint: uint64(f)}
	}
	return IntScalar(target, int64(f))
}

func isFloatKind(k Kind) bool { return k == KindFloat32 || k == KindFloat64 }

func isUnsignedKind(k Kind) bool {
	switch k {
	case KindUint8, KindUint16, KindUint32:
		return true
	default:
		return false
	}
}

func numericToString(s Scalar) string {
	if isFloatKind(s.Type.Kind) {
		return decimal.NewFromFloat(s.Float).String()
	}
	if isUnsignedKind(s.Type.Kind) {
		return decimal.NewFromInt(int64(s.Uint)).String()
	}
	return decimal.NewFromInt(s.Int).String()
}
