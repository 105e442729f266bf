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
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/yachtsql/yachtsql/sql"
)

type stringType struct{}

var String sql.Type = stringType{}

func (stringType) Tag() sql.TypeTag { return sql.StringTag }
func (stringType) Name() string     { return "STRING" }
func (stringType) Compare(a, b interface{}) (int, error) {
	return strings.Compare(a.(string), b.(string)), nil
}
func (stringType) Convert(v interface{}) (interface{}, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New("STRING", fmt.Sprintf("%T", v), "STRING")
	}
	return s, nil
}
func (stringType) Zero() interface{} { return "" }
func (stringType) Equals(other sql.Type) bool {
	_, ok := other.(stringType)
	return ok
}

type bytesType struct{}

var Bytes sql.Type = bytesType{}

func (bytesType) Tag() sql.TypeTag { return sql.BytesTag }
func (bytesType) Name() string     { return "BYTES" }
func (bytesType) Compare(a, b interface{}) (int, error) {
	return bytes.Compare(a.([]byte), b.([]byte)), nil
}
func (bytesType) Convert(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	default:
		return nil, sql.ErrTypeMismatch.New("BYTES", fmt.Sprintf("%T", v), "BYTES")
	}
}
func (bytesType) Zero() interface{} { return []byte{} }
func (bytesType) Equals(other sql.Type) bool {
	_, ok := other.(bytesType)
	return ok
}
