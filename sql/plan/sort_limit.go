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

// NullsOrder controls where NULL sorts relative to non-NULL values,
// independent of ascending/descending (spec.md §4.5, Sort).
type NullsOrder int

const (
	NullsLast NullsOrder = iota
	NullsFirst
)

// SortField is one ORDER BY / PARTITION BY ... ORDER BY key.
type SortField struct {
	Expr  sql.Expression
	Desc  bool
	Nulls NullsOrder
}

// Sort orders Child's rows by Fields, implementing ORDER BY.
type Sort struct {
	Child  sql.Node
	Fields []SortField
}

func NewSort(fields []SortField, child sql.Node) *Sort {
	return &Sort{Child: child, Fields: fields}
}

func (s *Sort) Schema() sql.Schema   { return s.Child.Schema() }
func (s *Sort) Children() []sql.Node { return []sql.Node{s.Child} }
func (s *Sort) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Sort: expected 1 child, got %d", len(children))
	}
	return NewSort(s.Fields, children[0]), nil
}
func (s *Sort) Resolved() bool {
	if !s.Child.Resolved() {
		return false
	}
	for _, f := range s.Fields {
		if !f.Expr.Resolved() {
			return false
		}
	}
	return true
}
func (s *Sort) String() string { return fmt.Sprintf("Sort(%d keys)", len(s.Fields)) }

func (s *Sort) Expressions() []sql.Expression {
	exprs := make([]sql.Expression, len(s.Fields))
	for i, f := range s.Fields {
		exprs[i] = f.Expr
	}
	return exprs
}
func (s *Sort) WithExpressions(expressions ...sql.Expression) (sql.Node, error) {
	if len(expressions) != len(s.Fields) {
		return nil, fmt.Errorf("plan.Sort: expected %d expressions, got %d", len(s.Fields), len(expressions))
	}
	newFields := make([]SortField, len(s.Fields))
	for i, f := range s.Fields {
		newFields[i] = SortField{Expr: expressions[i], Desc: f.Desc, Nulls: f.Nulls}
	}
	return NewSort(newFields, s.Child), nil
}

// Limit caps Child's output at Count rows, after skipping Offset.
// The physical compiler does not fuse Limit with a Sort below it:
// there is no TopN operator, so the Sort orders its whole input first.
type Limit struct {
	Child  sql.Node
	Count  sql.Expression
	Offset sql.Expression
}

func NewLimit(count, offset sql.Expression, child sql.Node) *Limit {
	return &Limit{Child: child, Count: count, Offset: offset}
}

func (l *Limit) Schema() sql.Schema   { return l.Child.Schema() }
func (l *Limit) Children() []sql.Node { return []sql.Node{l.Child} }
func (l *Limit) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Limit: expected 1 child, got %d", len(children))
	}
	return NewLimit(l.Count, l.Offset, children[0]), nil
}
func (l *Limit) Resolved() bool {
	if !l.Child.Resolved() || !l.Count.Resolved() {
		return false
	}
	return l.Offset == nil || l.Offset.Resolved()
}
func (l *Limit) String() string { return fmt.Sprintf("Limit(%s)", l.Count) }

func (l *Limit) Expressions() []sql.Expression {
	if l.Offset == nil {
		return []sql.Expression{l.Count}
	}
	return []sql.Expression{l.Count, l.Offset}
}
func (l *Limit) WithExpressions(expressions ...sql.Expression) (sql.Node, error) {
	switch len(expressions) {
	case 1:
		return NewLimit(expressions[0], nil, l.Child), nil
	case 2:
		return NewLimit(expressions[0], expressions[1], l.Child), nil
	default:
		return nil, fmt.Errorf("plan.Limit: expected 1 or 2 expressions, got %d", len(expressions))
	}
}
