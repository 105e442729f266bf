// Copyright 2024 The YachtSQL Authors.
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

package sql

import "fmt"

// TypeTag names the primitive shape of a Value, independent of any
// particular Type implementation's parametrisation (e.g. DECIMAL(p,s)).
type TypeTag int

const (
	NullTag TypeTag = iota
	BoolTag
	Int64Tag
	Float64Tag
	DecimalTag
	StringTag
	BytesTag
	DateTag
	TimeTag
	TimestampTag
	TimestampTZTag
	IntervalTag
	UUIDTag
	JSONTag
	ArrayTag
	StructTag
	RangeTag
	VectorTag
	EnumTag
)

func (t TypeTag) String() string {
	switch t {
	case NullTag:
		return "NULL"
	case BoolTag:
		return "BOOL"
	case Int64Tag:
		return "INT64"
	case Float64Tag:
		return "FLOAT64"
	case DecimalTag:
		return "DECIMAL"
	case StringTag:
		return "STRING"
	case BytesTag:
		return "BYTES"
	case DateTag:
		return "DATE"
	case TimeTag:
		return "TIME"
	case TimestampTag:
		return "TIMESTAMP"
	case TimestampTZTag:
		return "TIMESTAMPTZ"
	case IntervalTag:
		return "INTERVAL"
	case UUIDTag:
		return "UUID"
	case JSONTag:
		return "JSON"
	case ArrayTag:
		return "ARRAY"
	case StructTag:
		return "STRUCT"
	case RangeTag:
		return "RANGE"
	case VectorTag:
		return "VECTOR"
	case EnumTag:
		return "ENUM"
	default:
		return "UNKNOWN"
	}
}

// Type describes the shape and behavior of a column or expression's
// result: comparison, conversion, and display. Concrete implementations
// live in package sql/types; this interface is what the rest of the
// engine (expressions, plan nodes, storage) programs against.
type Type interface {
	// Tag is the primitive shape this Type represents.
	Tag() TypeTag
	// Name is the canonical, dialect-neutral type name (e.g. "INT64",
	// "DECIMAL(10,2)", "ARRAY<STRING>").
	Name() string
	// Compare orders two non-null Values of this type. NULL ordering is
	// handled by the caller (sort/group operators), not here.
	Compare(a, b interface{}) (int, error)
	// Convert coerces an arbitrary Go value (or another Value's payload)
	// into this Type's canonical payload representation.
	Convert(v interface{}) (interface{}, error)
	// Zero returns the zero payload for this type, used to seed
	// accumulators and default values.
	Zero() interface{}
	// Equals reports whether two Types are the same shape (including
	// parametrisation, e.g. DECIMAL(10,2) != DECIMAL(12,2)).
	Equals(other Type) bool
}

// Value is an immutable, tagged scalar. NULL is represented explicitly
// via the null flag rather than a sentinel payload, per spec.md §3:
// "NULL is a first-class value per column, not a sentinel."
type Value struct {
	typ     Type
	payload interface{}
	null    bool
}

// NewValue builds a non-null Value from a Type and a payload already in
// that Type's canonical representation (the caller is responsible for
// having run it through Type.Convert).
func NewValue(t Type, payload interface{}) Value {
	return Value{typ: t, payload: payload}
}

// NullValue builds the NULL value for a given type. NULL is still typed:
// a NULL INT64 and a NULL STRING are distinct Values for schema purposes.
func NullValue(t Type) Value {
	return Value{typ: t, null: true}
}

func (v Value) Type() Type        { return v.typ }
func (v Value) IsNull() bool      { return v.null }
func (v Value) Payload() interface{} {
	return v.payload
}

// Clone returns a Value whose variable-length payload (if any) is safe
// to mutate independently of this one. Fixed-width payloads are Go
// value types already and need no special handling; this only matters
// for the copy-on-mutate discipline DML uses when stamping new row
// versions from an existing one (spec.md §3, Value).
func (v Value) Clone() Value {
	switch p := v.payload.(type) {
	case []byte:
		cp := make([]byte, len(p))
		copy(cp, p)
		return Value{typ: v.typ, payload: cp, null: v.null}
	case []Value:
		cp := make([]Value, len(p))
		copy(cp, p)
		return Value{typ: v.typ, payload: cp, null: v.null}
	case map[string]Value:
		cp := make(map[string]Value, len(p))
		for k, val := range p {
			cp[k] = val
		}
		return Value{typ: v.typ, payload: cp, null: v.null}
	default:
		return v
	}
}

func (v Value) String() string {
	if v.null {
		return "NULL"
	}
	return fmt.Sprintf("%v", v.payload)
}

// Equal reports deep equality of two Values: same nullness, same type
// tag, and (when non-null) a zero Compare result.
func Equal(a, b Value) bool {
	if a.null != b.null {
		return false
	}
	if a.null {
		return true
	}
	if a.typ == nil || b.typ == nil || a.typ.Tag() != b.typ.Tag() {
		return false
	}
	cmp, err := a.typ.Compare(a.payload, b.payload)
	return err == nil && cmp == 0
}

func NewBool(b bool) Value        { return Value{typ: boolTypeRef, payload: b} }
func NewInt64(i int64) Value      { return Value{typ: int64TypeRef, payload: i} }
func NewFloat64(f float64) Value  { return Value{typ: float64TypeRef, payload: f} }
func NewString(s string) Value    { return Value{typ: stringTypeRef, payload: s} }
func NewBytes(b []byte) Value     { return Value{typ: bytesTypeRef, payload: b} }

// The five primitive constructors above need concrete Type instances
// without sql/types importing back into sql (which would cycle). Each
// is registered once by sql/types.init via RegisterPrimitives.
var (
	boolTypeRef    Type
	int64TypeRef   Type
	float64TypeRef Type
	stringTypeRef  Type
	bytesTypeRef   Type
)

// BooleanType is the registered BOOL singleton, exposed so code in
// package sql (e.g. Tribool.Value) can build a NULL BOOL Value without
// importing sql/types.
var BooleanType Type

// RegisterPrimitives wires the concrete primitive Type singletons from
// sql/types into the Value constructors above. Called once from
// sql/types.init().
func RegisterPrimitives(boolT, int64T, float64T, stringT, bytesT Type) {
	boolTypeRef = boolT
	int64TypeRef = int64T
	float64TypeRef = float64T
	stringTypeRef = stringT
	bytesTypeRef = bytesT
	BooleanType = boolT
}
