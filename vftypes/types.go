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

// Package vftypes implements the uniform tagged-value model shared by
// row-scalars and columnar arrays, along with the logical type system
// every other package in this module type-checks against: boolean, the
// signed/unsigned integer widths, float32/64, utf8, timestamp{ms,ns},
// list<T>, and struct{field:T}.
package vftypes

import "fmt"

// Kind tags the logical type of a Scalar/Array/expression result.
type Kind int

const (
	KindBoolean Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindFloat32
	KindFloat64
	KindUtf8
	KindTimestampMs
	KindTimestampNs
	KindList
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindUtf8:
		return "utf8"
	case KindTimestampMs:
		return "timestamp[ms]"
	case KindTimestampNs:
		return "timestamp[ns]"
	case KindList:
		return "list"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Type is a logical type: a Kind plus, for the compound kinds, the
// nested shape (list element type, or struct field list).
type Type struct {
	Kind     Kind
	Elem     *Type   // set when Kind == KindList
	Fields   []Field // set when Kind == KindStruct
	Nullable bool
}

// Field is a single named, typed member of a struct type.
type Field struct {
	Name string
	Type Type
}

func (t Type) String() string {
	switch t.Kind {
	case KindList:
		return fmt.Sprintf("list<%s>", t.Elem)
	case KindStruct:
		names := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			names[i] = fmt.Sprintf("%s:%s", f.Name, f.Type)
		}
		return fmt.Sprintf("struct{%v}", names)
	default:
		return t.Kind.String()
	}
}

// Simple type constructors for the scalar kinds.
var (
	Boolean      = Type{Kind: KindBoolean}
	Int8         = Type{Kind: KindInt8}
	Int16        = Type{Kind: KindInt16}
	Int32        = Type{Kind: KindInt32}
	Int64        = Type{Kind: KindInt64}
	Uint8        = Type{Kind: KindUint8}
	Uint16       = Type{Kind: KindUint16}
	Uint32       = Type{Kind: KindUint32}
	Float32      = Type{Kind: KindFloat32}
	Float64      = Type{Kind: KindFloat64}
	Utf8         = Type{Kind: KindUtf8}
	TimestampMs  = Type{Kind: KindTimestampMs}
	TimestampNs  = Type{Kind: KindTimestampNs}
)

// List builds a list<elem> type.
func List(elem Type) Type {
	return Type{Kind: KindList, Elem: &elem}
}

// Struct builds a struct{fields...} type.
func Struct(fields ...Field) Type {
	return Type{Kind: KindStruct, Fields: fields}
}

// numericRank orders the numeric kinds along the widening lattice
// i8 < i16 < i32 < i64 < f32 < f64. The
// unsigned kinds slot in alongside their same-width signed sibling;
// widening an unsigned type always promotes at least one rank up, since
// a signed type of the same bit width cannot represent its max value.
var numericRank = map[Kind]int{
	KindInt8:    0,
	KindUint8:   1,
	KindInt16:   2,
	KindUint16:  3,
	KindInt32:   4,
	KindUint32:  5,
	KindInt64:   6,
	KindFloat32: 7,
	KindFloat64: 8,
}

// IsNumeric reports whether t is one of the integer or floating point
// kinds.
func IsNumeric(t Type) bool {
	_, ok := numericRank[t.Kind]
	return ok
}

// Schema is an ordered list of named, typed columns, the Go analogue of
// an Arrow logical schema: every qplan.Node carries one.
type Schema struct {
	Fields []Field
}

// FieldByName returns the field named name and true, or the zero Field
// and false.
func (s Schema) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the schema's column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// WithField returns a copy of s with an additional trailing field,
// replacing any existing field of the same name in place.
func (s Schema) WithField(f Field) Schema {
	for i, existing := range s.Fields {
		if existing.Name == f.Name {
			out := make([]Field, len(s.Fields))
			copy(out, s.Fields)
			out[i] = f
			return Schema{Fields: out}
		}
	}
	out := make([]Field, len(s.Fields), len(s.Fields)+1)
	copy(out, s.Fields)
	out = append(out, f)
	return Schema{Fields: out}
}
