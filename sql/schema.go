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

import "strings"

// Column is one entry of a Schema: a name, its Type, nullability, and
// the table/alias it came from (used for qualified-name resolution).
type Column struct {
	Name     string
	Source   string
	Type     Type
	Nullable bool
}

// Schema is the ordered sequence of (name, Type, nullable) triples that
// describes a Row or RecordBatch. Lookup is case-folded per dialect;
// the fold function is pluggable because PostgreSQL/ClickHouse fold
// unquoted identifiers to lower-case while BigQuery preserves case.
type Schema []*Column

// IndexOf returns the position of name (optionally qualified by source)
// in the schema, or -1 if not found. fold is applied to both the
// schema's column names and the lookup name before comparing.
func (s Schema) IndexOf(name, source string, fold func(string) string) int {
	if fold == nil {
		fold = strings.ToLower
	}
	name = fold(name)
	for i, c := range s {
		if fold(c.Name) != name {
			continue
		}
		if source != "" && !strings.EqualFold(c.Source, source) {
			continue
		}
		return i
	}
	return -1
}

// Compatible reports whether two schemas have matching arity and each
// column pair is coercion-compatible (same Tag, since actual coercion
// feasibility is decided by the type lattice in sql/analyzer).
func (s Schema) Compatible(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].Type == nil || other[i].Type == nil {
			continue
		}
		if s[i].Type.Tag() != other[i].Type.Tag() {
			return false
		}
	}
	return true
}

func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}
