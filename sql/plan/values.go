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

package plan

import (
	"fmt"

	"github.com/yachtsql/yachtsql/sql"
)

// Values is a literal row generator: standalone VALUES (...), [...] as
// a PostgreSQL table expression, and the row source for INSERT ...
// VALUES (spec.md §4.5).
type Values struct {
	Rows   [][]sql.Expression
	schema sql.Schema
}

func NewValues(rows [][]sql.Expression, schema sql.Schema) *Values {
	return &Values{Rows: rows, schema: schema}
}

func (v *Values) Schema() sql.Schema   { return v.schema }
func (v *Values) Children() []sql.Node { return nil }
func (v *Values) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("plan.Values: expected 0 children, got %d", len(children))
	}
	return v, nil
}
func (v *Values) Resolved() bool {
	for _, row := range v.Rows {
		for _, expr := range row {
			if !expr.Resolved() {
				return false
			}
		}
	}
	return true
}
func (v *Values) String() string { return fmt.Sprintf("Values(%d rows)", len(v.Rows)) }
