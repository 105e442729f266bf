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

// SubqueryAlias is a derived table: `FROM (SELECT ...) AS alias`. Its
// Schema re-stamps every inner column's Source to Alias, so an outer
// query can qualify references as alias.col regardless of what the
// subquery's own FROM clause was named (spec.md §4.2, derived tables).
//
// Lateral marks a derived table written LATERAL. The binder builds it
// with the FROM items to its left in a parent scope but rejects any
// reference that resolves there, so it cannot reference those items
// and binds like a non-lateral one.
type SubqueryAlias struct {
	Child   sql.Node
	Alias   string
	Lateral bool
}

func NewSubqueryAlias(alias string, child sql.Node) *SubqueryAlias {
	return &SubqueryAlias{Child: child, Alias: alias}
}

func NewLateralSubqueryAlias(alias string, child sql.Node) *SubqueryAlias {
	return &SubqueryAlias{Child: child, Alias: alias, Lateral: true}
}

func (s *SubqueryAlias) Schema() sql.Schema {
	inner := s.Child.Schema()
	out := make(sql.Schema, len(inner))
	for i, c := range inner {
		out[i] = &sql.Column{Name: c.Name, Source: s.Alias, Type: c.Type, Nullable: c.Nullable}
	}
	return out
}
func (s *SubqueryAlias) Children() []sql.Node { return []sql.Node{s.Child} }
func (s *SubqueryAlias) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.SubqueryAlias: expected 1 child, got %d", len(children))
	}
	return &SubqueryAlias{Child: children[0], Alias: s.Alias, Lateral: s.Lateral}, nil
}
func (s *SubqueryAlias) Resolved() bool { return s.Child.Resolved() }
func (s *SubqueryAlias) String() string {
	if s.Lateral {
		return fmt.Sprintf("SubqueryAlias(LATERAL, %s)", s.Alias)
	}
	return fmt.Sprintf("SubqueryAlias(%s)", s.Alias)
}

// Name returns the alias, matching plan.Scan's Name method so binder
// code can treat either as a FROM-list item uniformly.
func (s *SubqueryAlias) Name() string { return s.Alias }
