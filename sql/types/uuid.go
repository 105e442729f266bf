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

	uuid "github.com/satori/go.uuid"

	"github.com/yachtsql/yachtsql/sql"
)

// uuidType stores UUIDs as satori/go.uuid.UUID, the library the teacher
// already depends on for its own UUID() builtin.
type uuidType struct{}

var UUID sql.Type = uuidType{}

func (uuidType) Tag() sql.TypeTag { return sql.UUIDTag }
func (uuidType) Name() string     { return "UUID" }
func (uuidType) Compare(a, b interface{}) (int, error) {
	av, bv := a.(uuid.UUID), b.(uuid.UUID)
	for i := range av {
		if av[i] != bv[i] {
			if av[i] < bv[i] {
				return -1, nil
			}
			return 1, nil
		}
	}
	return 0, nil
}
func (uuidType) Convert(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case string:
		u, err := uuid.FromString(x)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New("UUID", "STRING", "UUID")
		}
		return u, nil
	case []byte:
		u, err := uuid.FromBytes(x)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New("UUID", "BYTES", "UUID")
		}
		return u, nil
	default:
		return nil, sql.ErrTypeMismatch.New("UUID", fmt.Sprintf("%T", v), "UUID")
	}
}
func (uuidType) Zero() interface{} { return uuid.Nil }
func (uuidType) Equals(other sql.Type) bool {
	_, ok := other.(uuidType)
	return ok
}

// NewUUIDV4 generates a random UUID value, backing the `uuid()` scalar
// function.
func NewUUIDV4() sql.Value {
	return sql.NewValue(UUID, uuid.NewV4())
}
