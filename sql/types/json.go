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
	"encoding/json"
	"fmt"

	"github.com/yachtsql/yachtsql/sql"
)

// jsonType stores JSON as its already-decoded Go representation
// (map[string]interface{}, []interface{}, string, float64, bool, nil)
// so containment (@>) and path extraction (->, ->>) don't re-parse on
// every access.
type jsonType struct{}

var JSON sql.Type = jsonType{}

func (jsonType) Tag() sql.TypeTag { return sql.JSONTag }
func (jsonType) Name() string     { return "JSON" }

func (jsonType) Compare(a, b interface{}) (int, error) {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return bytes.Compare(ab, bb), nil
}

func (jsonType) Convert(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case string:
		var decoded interface{}
		if err := json.Unmarshal([]byte(x), &decoded); err != nil {
			return nil, sql.ErrTypeMismatch.New("JSON", "STRING", "JSON")
		}
		return decoded, nil
	case []byte:
		var decoded interface{}
		if err := json.Unmarshal(x, &decoded); err != nil {
			return nil, sql.ErrTypeMismatch.New("JSON", "BYTES", "JSON")
		}
		return decoded, nil
	case map[string]interface{}, []interface{}, float64, bool, nil:
		return x, nil
	default:
		return nil, sql.ErrTypeMismatch.New("JSON", fmt.Sprintf("%T", v), "JSON")
	}
}

func (jsonType) Zero() interface{} { return nil }

func (jsonType) Equals(other sql.Type) bool {
	_, ok := other.(jsonType)
	return ok
}

// JSONContains implements the `@>` containment operator: every
// key/element of needle must be present (recursively) in haystack.
// Used directly by the `@>` operator (expression.Contains) and exercises
// P8 (Containment transitivity) together with RangeContains.
func JSONContains(haystack, needle interface{}) bool {
	switch n := needle.(type) {
	case map[string]interface{}:
		h, ok := haystack.(map[string]interface{})
		if !ok {
			return false
		}
		for k, nv := range n {
			hv, ok := h[k]
			if !ok || !JSONContains(hv, nv) {
				return false
			}
		}
		return true
	case []interface{}:
		h, ok := haystack.([]interface{})
		if !ok {
			return false
		}
		for _, nv := range n {
			found := false
			for _, hv := range h {
				if JSONContains(hv, nv) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		ab, _ := json.Marshal(haystack)
		bb, _ := json.Marshal(needle)
		return bytes.Equal(ab, bb)
	}
}

// JSONPath extracts the value at key from a JSON object, used by the
// `->` / `->>` operators. ok is false if haystack isn't an object or
// the key is absent (this yields SQL NULL at the call site, not an
// error).
func JSONPath(haystack interface{}, key string) (interface{}, bool) {
	obj, ok := haystack.(map[string]interface{})
	if !ok {
		return nil, false
	}
	v, ok := obj[key]
	return v, ok
}
