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

package types

import (
	"fmt"
	"math"
	"strings"

	"github.com/yachtsql/yachtsql/sql"
)

// arrayType is ARRAY(T): a variable-length, homogeneously-typed list.
type arrayType struct {
	Elem sql.Type
}

func NewArrayType(elem sql.Type) sql.Type { return arrayType{Elem: elem} }

func (t arrayType) Tag() sql.TypeTag { return sql.ArrayTag }
func (t arrayType) Name() string     { return fmt.Sprintf("ARRAY(%s)", t.Elem.Name()) }
func (t arrayType) Compare(a, b interface{}) (int, error) {
	av, bv := a.([]sql.Value), b.([]sql.Value)
	for i := 0; i < len(av) && i < len(bv); i++ {
		if !sql.Equal(av[i], bv[i]) {
			c, err := t.Elem.Compare(av[i].Payload(), bv[i].Payload())
			if err != nil {
				return 0, err
			}
			return c, nil
		}
	}
	return len(av) - len(bv), nil
}
func (t arrayType) Convert(v interface{}) (interface{}, error) {
	vals, ok := v.([]sql.Value)
	if !ok {
		return nil, sql.ErrTypeMismatch.New(t.Name(), fmt.Sprintf("%T", v), t.Name())
	}
	out := make([]sql.Value, len(vals))
	for i, elem := range vals {
		if elem.IsNull() {
			out[i] = sql.NullValue(t.Elem)
			continue
		}
		converted, err := t.Elem.Convert(elem.Payload())
		if err != nil {
			return nil, err
		}
		out[i] = sql.NewValue(t.Elem, converted)
	}
	return out, nil
}
func (t arrayType) Zero() interface{} { return []sql.Value{} }
func (t arrayType) Equals(other sql.Type) bool {
	o, ok := other.(arrayType)
	return ok && t.Elem.Equals(o.Elem)
}

// structType is STRUCT{field -> T}, field order is significant for
// display but lookup is by name.
type structType struct {
	Fields []sql.Column
}

func NewStructType(fields []sql.Column) sql.Type { return structType{Fields: fields} }

func (t structType) Tag() sql.TypeTag { return sql.StructTag }
func (t structType) Name() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + " " + f.Type.Name()
	}
	return fmt.Sprintf("STRUCT<%s>", strings.Join(parts, ", "))
}
func (t structType) Compare(a, b interface{}) (int, error) {
	av, bv := a.(map[string]sql.Value), b.(map[string]sql.Value)
	for _, f := range t.Fields {
		c, err := f.Type.Compare(av[f.Name].Payload(), bv[f.Name].Payload())
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}
func (t structType) Convert(v interface{}) (interface{}, error) {
	m, ok := v.(map[string]sql.Value)
	if !ok {
		return nil, sql.ErrTypeMismatch.New(t.Name(), fmt.Sprintf("%T", v), t.Name())
	}
	return m, nil
}
func (t structType) Zero() interface{} { return map[string]sql.Value{} }
func (t structType) Equals(other sql.Type) bool {
	o, ok := other.(structType)
	if !ok || len(o.Fields) != len(t.Fields) {
		return false
	}
	for i := range t.Fields {
		if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equals(o.Fields[i].Type) {
			return false
		}
	}
	return true
}

// rangeType is RANGE(T, bounds): a contiguous interval over an ordered
// element type, with inclusive/exclusive bound flags as PostgreSQL
// range types carry.
type rangeType struct {
	Elem sql.Type
}

func NewRangeType(elem sql.Type) sql.Type { return rangeType{Elem: elem} }

// ElemType exposes the element Type, used by expression.Contains to
// recover it from a RANGE(T) Value's static Type for @> evaluation.
func (t rangeType) ElemType() sql.Type { return t.Elem }

// RangeValue is the canonical payload for RANGE(T): half-open by
// default, matching PostgreSQL's int4range/daterange canonicalisation.
type RangeValue struct {
	Lower       sql.Value
	Upper       sql.Value
	LowerInf    bool
	UpperInf    bool
	LowerIncl   bool
	UpperIncl   bool
	Empty       bool
}

func (t rangeType) Tag() sql.TypeTag { return sql.RangeTag }
func (t rangeType) Name() string     { return fmt.Sprintf("RANGE(%s)", t.Elem.Name()) }
func (t rangeType) Compare(a, b interface{}) (int, error) {
	av, bv := a.(RangeValue), b.(RangeValue)
	if av.Empty != bv.Empty {
		if av.Empty {
			return -1, nil
		}
		return 1, nil
	}
	if !av.LowerInf && !bv.LowerInf {
		c, err := t.Elem.Compare(av.Lower.Payload(), bv.Lower.Payload())
		if err != nil || c != 0 {
			return c, err
		}
	}
	return 0, nil
}
func (t rangeType) Convert(v interface{}) (interface{}, error) {
	r, ok := v.(RangeValue)
	if !ok {
		return nil, sql.ErrTypeMismatch.New(t.Name(), fmt.Sprintf("%T", v), t.Name())
	}
	return r, nil
}
func (t rangeType) Zero() interface{} { return RangeValue{Empty: true} }
func (t rangeType) Equals(other sql.Type) bool {
	o, ok := other.(rangeType)
	return ok && t.Elem.Equals(o.Elem)
}

// RangeContains reports whether r contains point x — the building
// block both `int4range(...) @> 5` (spec.md §8 scenario 3) and
// transitivity property P8 are checked against.
func RangeContains(elem sql.Type, r RangeValue, x sql.Value) (bool, error) {
	if r.Empty {
		return false, nil
	}
	if !r.LowerInf {
		c, err := elem.Compare(x.Payload(), r.Lower.Payload())
		if err != nil {
			return false, err
		}
		if c < 0 || (c == 0 && !r.LowerIncl) {
			return false, nil
		}
	}
	if !r.UpperInf {
		c, err := elem.Compare(x.Payload(), r.Upper.Payload())
		if err != nil {
			return false, err
		}
		if c > 0 || (c == 0 && !r.UpperIncl) {
			return false, nil
		}
	}
	return true, nil
}

// RangeContainsRange reports whether outer contains inner entirely,
// giving RANGE @> RANGE the transitivity property P8 requires.
func RangeContainsRange(elem sql.Type, outer, inner RangeValue) (bool, error) {
	if inner.Empty {
		return true, nil
	}
	if outer.Empty {
		return false, nil
	}
	if !outer.LowerInf {
		if inner.LowerInf {
			return false, nil
		}
		c, err := elem.Compare(inner.Lower.Payload(), outer.Lower.Payload())
		if err != nil {
			return false, err
		}
		if c < 0 || (c == 0 && inner.LowerIncl && !outer.LowerIncl) {
			return false, nil
		}
	}
	if !outer.UpperInf {
		if inner.UpperInf {
			return false, nil
		}
		c, err := elem.Compare(inner.Upper.Payload(), outer.Upper.Payload())
		if err != nil {
			return false, err
		}
		if c > 0 || (c == 0 && inner.UpperIncl && !outer.UpperIncl) {
			return false, nil
		}
	}
	return true, nil
}

// vectorType is VECTOR(dim): a fixed-dimension float32 embedding, with
// distance operators (`<->` Euclidean, `<=>` cosine) defined over it.
type vectorType struct {
	Dim int
}

func NewVectorType(dim int) sql.Type { return vectorType{Dim: dim} }

func (t vectorType) Tag() sql.TypeTag { return sql.VectorTag }
func (t vectorType) Name() string     { return fmt.Sprintf("VECTOR(%d)", t.Dim) }
func (t vectorType) Compare(a, b interface{}) (int, error) {
	av, bv := a.([]float32), b.([]float32)
	for i := 0; i < len(av) && i < len(bv); i++ {
		if av[i] != bv[i] {
			if av[i] < bv[i] {
				return -1, nil
			}
			return 1, nil
		}
	}
	return len(av) - len(bv), nil
}
func (t vectorType) Convert(v interface{}) (interface{}, error) {
	vec, ok := v.([]float32)
	if !ok {
		return nil, sql.ErrTypeMismatch.New(t.Name(), fmt.Sprintf("%T", v), t.Name())
	}
	if t.Dim > 0 && len(vec) != t.Dim {
		return nil, sql.ErrDimensionMismatch.New(t.Dim, len(vec))
	}
	return vec, nil
}
func (t vectorType) Zero() interface{} { return make([]float32, t.Dim) }
func (t vectorType) Equals(other sql.Type) bool {
	o, ok := other.(vectorType)
	return ok && o.Dim == t.Dim
}

// EuclideanDistance implements the `<->` operator (spec.md §8 scenario 4).
func EuclideanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, sql.ErrDimensionMismatch.New(len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// CosineDistance implements the `<=>` operator.
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, sql.ErrDimensionMismatch.New(len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1, nil
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb)), nil
}

// enumType is ENUM: a closed set of string labels with a defined
// ordering (declaration order, not lexical).
type enumType struct {
	Labels []string
}

func NewEnumType(labels []string) sql.Type { return enumType{Labels: append([]string{}, labels...)} }

func (t enumType) Tag() sql.TypeTag { return sql.EnumTag }
func (t enumType) Name() string     { return fmt.Sprintf("ENUM(%s)", strings.Join(t.Labels, ",")) }
func (t enumType) indexOf(label string) int {
	for i, l := range t.Labels {
		if l == label {
			return i
		}
	}
	return -1
}
func (t enumType) Compare(a, b interface{}) (int, error) {
	ai, bi := t.indexOf(a.(string)), t.indexOf(b.(string))
	return ai - bi, nil
}
func (t enumType) Convert(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, sql.ErrTypeMismatch.New(t.Name(), fmt.Sprintf("%T", v), t.Name())
	}
	if t.indexOf(s) < 0 {
		return nil, sql.ErrOutOfRange.New(s, t.Name())
	}
	return s, nil
}
func (t enumType) Zero() interface{} {
	if len(t.Labels) == 0 {
		return ""
	}
	return t.Labels[0]
}
func (t enumType) Equals(other sql.Type) bool {
	o, ok := other.(enumType)
	if !ok || len(o.Labels) != len(t.Labels) {
		return false
	}
	for i := range t.Labels {
		if t.Labels[i] != o.Labels[i] {
			return false
		}
	}
	return true
}
