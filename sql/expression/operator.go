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

package expression

import (
	"encoding/json"
	"fmt"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/types"
)

// JSONPath implements `->` (extract as JSON) and `->>` (extract as
// TEXT), PostgreSQL's JSON navigation operators (spec.md §8 scenario
// 1). AsText controls the return representation.
type JSONPath struct {
	binary
	AsText bool
}

func NewJSONPath(haystack, key sql.Expression, asText bool) *JSONPath {
	return &JSONPath{binary: binary{haystack, key}, AsText: asText}
}

func (j *JSONPath) Type() sql.Type {
	if j.AsText {
		return types.String
	}
	return types.JSON
}
func (j *JSONPath) Nullable() bool { return true }
func (j *JSONPath) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("expression.JSONPath: expected 2 children, got %d", len(children))
	}
	return NewJSONPath(children[0], children[1], j.AsText), nil
}
func (j *JSONPath) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	hv, err := evalChild(ctx, j.Left, row)
	if err != nil {
		return sql.Value{}, err
	}
	kv, err := evalChild(ctx, j.Right, row)
	if err != nil {
		return sql.Value{}, err
	}
	if hv.IsNull() || kv.IsNull() {
		return sql.NullValue(j.Type()), nil
	}
	key, ok := kv.Payload().(string)
	if !ok {
		return sql.Value{}, sql.ErrTypeMismatch.New("->", kv.Type().Name(), "STRING")
	}
	extracted, found := types.JSONPath(hv.Payload(), key)
	if !found {
		return sql.NullValue(j.Type()), nil
	}
	if !j.AsText {
		return sql.NewValue(types.JSON, extracted), nil
	}
	switch v := extracted.(type) {
	case string:
		return sql.NewString(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return sql.Value{}, sql.ErrInternal.New(err.Error())
		}
		return sql.NewString(string(b)), nil
	}
}
func (j *JSONPath) String() string {
	if j.AsText {
		return fmt.Sprintf("(%s ->> %s)", j.Left, j.Right)
	}
	return fmt.Sprintf("(%s -> %s)", j.Left, j.Right)
}

// Contains implements `@>`, shared between JSON and RANGE(T) operands
// (spec.md §8 scenario 2 and 3; also exercised by property P8,
// Containment transitivity, in sql/types/container_test.go).
type Contains struct {
	binary
}

func NewContains(haystack, needle sql.Expression) *Contains {
	return &Contains{binary: binary{haystack, needle}}
}

func (c *Contains) Type() sql.Type { return types.Boolean }
func (c *Contains) Nullable() bool { return true }
func (c *Contains) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("expression.Contains: expected 2 children, got %d", len(children))
	}
	return NewContains(children[0], children[1]), nil
}
func (c *Contains) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	hv, err := evalChild(ctx, c.Left, row)
	if err != nil {
		return sql.Value{}, err
	}
	nv, err := evalChild(ctx, c.Right, row)
	if err != nil {
		return sql.Value{}, err
	}
	if hv.IsNull() || nv.IsNull() {
		return sql.NullValue(types.Boolean), nil
	}
	switch hv.Type().Tag() {
	case sql.JSONTag:
		return sql.NewBool(types.JSONContains(hv.Payload(), nv.Payload())), nil
	case sql.RangeTag:
		hr := hv.Payload().(types.RangeValue)
		elem := rangeElemType(hv.Type())
		if nv.Type().Tag() == sql.RangeTag {
			inner := nv.Payload().(types.RangeValue)
			ok, err := types.RangeContainsRange(elem, hr, inner)
			if err != nil {
				return sql.Value{}, err
			}
			return sql.NewBool(ok), nil
		}
		ok, err := types.RangeContains(elem, hr, nv)
		if err != nil {
			return sql.Value{}, err
		}
		return sql.NewBool(ok), nil
	default:
		return sql.Value{}, sql.ErrTypeMismatch.New("@>", hv.Type().Name(), nv.Type().Name())
	}
}
func (c *Contains) String() string { return fmt.Sprintf("(%s @> %s)", c.Left, c.Right) }

// rangeElemType recovers the element Type of a RANGE(T) Type value.
func rangeElemType(t sql.Type) sql.Type {
	type elemHolder interface {
		ElemType() sql.Type
	}
	if h, ok := t.(elemHolder); ok {
		return h.ElemType()
	}
	return types.Int64
}

// VectorDistance implements the Euclidean (`<->`) and cosine (`<=>`)
// distance operators over VECTOR(dim) operands (spec.md §8 scenario 4).
type VectorDistance struct {
	binary
	Cosine bool
}

func NewVectorDistance(left, right sql.Expression, cosine bool) *VectorDistance {
	return &VectorDistance{binary: binary{left, right}, Cosine: cosine}
}

func (v *VectorDistance) Type() sql.Type { return types.Float64 }
func (v *VectorDistance) Nullable() bool { return true }
func (v *VectorDistance) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("expression.VectorDistance: expected 2 children, got %d", len(children))
	}
	return NewVectorDistance(children[0], children[1], v.Cosine), nil
}
func (v *VectorDistance) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lv, err := evalChild(ctx, v.Left, row)
	if err != nil {
		return sql.Value{}, err
	}
	rv, err := evalChild(ctx, v.Right, row)
	if err != nil {
		return sql.Value{}, err
	}
	if lv.IsNull() || rv.IsNull() {
		return sql.NullValue(types.Float64), nil
	}
	l, ok := lv.Payload().([]float32)
	if !ok {
		return sql.Value{}, sql.ErrTypeMismatch.New("<->", lv.Type().Name(), "VECTOR")
	}
	r, ok := rv.Payload().([]float32)
	if !ok {
		return sql.Value{}, sql.ErrTypeMismatch.New("<->", rv.Type().Name(), "VECTOR")
	}
	var dist float64
	if v.Cosine {
		dist, err = types.CosineDistance(l, r)
	} else {
		dist, err = types.EuclideanDistance(l, r)
	}
	if err != nil {
		return sql.Value{}, err
	}
	return sql.NewFloat64(dist), nil
}
func (v *VectorDistance) String() string {
	if v.Cosine {
		return fmt.Sprintf("(%s <=> %s)", v.Left, v.Right)
	}
	return fmt.Sprintf("(%s <-> %s)", v.Left, v.Right)
}
