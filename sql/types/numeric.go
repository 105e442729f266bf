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

// Package types holds the concrete sql.Type implementations: one Go
// type per tag in spec.md §3's Value taxonomy.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/yachtsql/yachtsql/sql"
)

func init() {
	sql.RegisterPrimitives(Boolean, Int64, Float64, String, Bytes)
}

// nullType represents the NULL type. Every column's declared type
// still carries a non-null Tag; nullType is only used for untyped NULL
// literals prior to binding.
type nullType struct{}

var Null sql.Type = nullType{}

func (nullType) Tag() sql.TypeTag { return sql.NullTag }
func (nullType) Name() string     { return "NULL" }
func (nullType) Compare(a, b interface{}) (int, error) {
	return 0, nil
}
func (nullType) Convert(v interface{}) (interface{}, error) { return nil, nil }
func (nullType) Zero() interface{}                          { return nil }
func (nullType) Equals(other sql.Type) bool {
	_, ok := other.(nullType)
	return ok
}

type booleanType struct{}

var Boolean sql.Type = booleanType{}

func (booleanType) Tag() sql.TypeTag { return sql.BoolTag }
func (booleanType) Name() string     { return "BOOL" }
func (booleanType) Compare(a, b interface{}) (int, error) {
	av, bv := a.(bool), b.(bool)
	if av == bv {
		return 0, nil
	}
	if !av && bv {
		return -1, nil
	}
	return 1, nil
}
func (booleanType) Convert(v interface{}) (interface{}, error) {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New("BOOL", fmt.Sprintf("%T", v), "BOOL")
	}
	return b, nil
}
func (booleanType) Zero() interface{} { return false }
func (booleanType) Equals(other sql.Type) bool {
	_, ok := other.(booleanType)
	return ok
}

type int64Type struct{}

var Int64 sql.Type = int64Type{}

func (int64Type) Tag() sql.TypeTag { return sql.Int64Tag }
func (int64Type) Name() string     { return "INT64" }
func (int64Type) Compare(a, b interface{}) (int, error) {
	av, bv := a.(int64), b.(int64)
	switch {
	case av < bv:
		return -1, nil
	case av > bv:
		return 1, nil
	default:
		return 0, nil
	}
}
func (int64Type) Convert(v interface{}) (interface{}, error) {
	i, err := cast.ToInt64E(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New("INT64", fmt.Sprintf("%T", v), "INT64")
	}
	return i, nil
}
func (int64Type) Zero() interface{} { return int64(0) }
func (int64Type) Equals(other sql.Type) bool {
	_, ok := other.(int64Type)
	return ok
}

type float64Type struct{}

var Float64 sql.Type = float64Type{}

func (float64Type) Tag() sql.TypeTag { return sql.Float64Tag }
func (float64Type) Name() string     { return "FLOAT64" }
func (float64Type) Compare(a, b interface{}) (int, error) {
	av, bv := a.(float64), b.(float64)
	switch {
	case av < bv:
		return -1, nil
	case av > bv:
		return 1, nil
	default:
		return 0, nil
	}
}
func (float64Type) Convert(v interface{}) (interface{}, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New("FLOAT64", fmt.Sprintf("%T", v), "FLOAT64")
	}
	return f, nil
}
func (float64Type) Zero() interface{} { return float64(0) }
func (float64Type) Equals(other sql.Type) bool {
	_, ok := other.(float64Type)
	return ok
}

// decimalType is DECIMAL(p,s): precision p, scale s, backed by
// shopspring/decimal for exact arithmetic (spec.md §3, DECIMAL(p,s)).
type decimalType struct {
	Precision uint8
	Scale     uint8
}

func MustCreateDecimalType(precision, scale uint8) sql.Type {
	if scale > precision {
		panic(fmt.Sprintf("invalid decimal(%d,%d): scale exceeds precision", precision, scale))
	}
	return decimalType{Precision: precision, Scale: scale}
}

func (t decimalType) Tag() sql.TypeTag { return sql.DecimalTag }
func (t decimalType) Name() string {
	return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
}
func (t decimalType) Compare(a, b interface{}) (int, error) {
	av, bv := a.(decimal.Decimal), b.(decimal.Decimal)
	return av.Cmp(bv), nil
}
func (t decimalType) Convert(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.Round(int32(t.Scale)), nil
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New(t.Name(), "STRING", t.Name())
		}
		return d.Round(int32(t.Scale)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x).Round(int32(t.Scale)), nil
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New(t.Name(), fmt.Sprintf("%T", v), t.Name())
		}
		return decimal.NewFromFloat(f).Round(int32(t.Scale)), nil
	}
}
func (t decimalType) Zero() interface{} { return decimal.Zero }
func (t decimalType) Equals(other sql.Type) bool {
	o, ok := other.(decimalType)
	return ok && o.Precision == t.Precision && o.Scale == t.Scale
}
