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

// Filter keeps only rows where Predicate's Tribool is True (spec.md
// §4.5: WHERE uses MatchesWhere, HAVING the same).
type Filter struct {
	Child     sql.Node
	Predicate sql.Expression
}

func NewFilter(predicate sql.Expression, child sql.Node) *Filter {
	return &Filter{Child: child, Predicate: predicate}
}

func (f *Filter) Schema() sql.Schema   { return f.Child.Schema() }
func (f *Filter) Children() []sql.Node { return []sql.Node{f.Child} }
func (f *Filter) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Filter: expected 1 child, got %d", len(children))
	}
	return NewFilter(f.Predicate, children[0]), nil
}
func (f *Filter) Resolved() bool { return f.Child.Resolved() && f.Predicate.Resolved() }
func (f *Filter) String() string { return fmt.Sprintf("Filter(%s)", f.Predicate) }

func (f *Filter) Expressions() []sql.Expression { return []sql.Expression{f.Predicate} }
func (f *Filter) WithExpressions(expressions ...sql.Expression) (sql.Node, error) {
	if len(expressions) != 1 {
		return nil, fmt.Errorf("plan.Filter: expected 1 expression, got %d", len(expressions))
	}
	return NewFilter(expressions[0], f.Child), nil
}

// ProjectedColumn names one output column of a Project: its
// computation and the name it's exposed under (its alias, or the
// source column's own name when there is no AS clause).
type ProjectedColumn struct {
	Expr sql.Expression
	Name string
}

// Project computes a new schema from Columns over Child's rows,
// implementing SELECT's column list (spec.md §4.5).
type Project struct {
	Child   sql.Node
	Columns []ProjectedColumn
}

func NewProject(columns []ProjectedColumn, child sql.Node) *Project {
	return &Project{Child: child, Columns: columns}
}

func (p *Project) Schema() sql.Schema {
	schema := make(sql.Schema, len(p.Columns))
	for i, c := range p.Columns {
		var typ sql.Type
		if c.Expr != nil {
			typ = c.Expr.Type()
		}
		schema[i] = &sql.Column{Name: c.Name, Type: typ, Nullable: c.Expr == nil || c.Expr.Nullable()}
	}
	return schema
}
func (p *Project) Children() []sql.Node { return []sql.Node{p.Child} }
func (p *Project) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Project: expected 1 child, got %d", len(children))
	}
	return NewProject(p.Columns, children[0]), nil
}
func (p *Project) Resolved() bool {
	if !p.Child.Resolved() {
		return false
	}
	for _, c := range p.Columns {
		if c.Expr == nil || !c.Expr.Resolved() {
			return false
		}
	}
	return true
}
func (p *Project) String() string { return fmt.Sprintf("Project(%d cols)", len(p.Columns)) }

func (p *Project) Expressions() []sql.Expression {
	exprs := make([]sql.Expression, len(p.Columns))
	for i, c := range p.Columns {
		exprs[i] = c.Expr
	}
	return exprs
}
func (p *Project) WithExpressions(expressions ...sql.Expression) (sql.Node, error) {
	if len(expressions) != len(p.Columns) {
		return nil, fmt.Errorf("plan.Project: expected %d expressions, got %d", len(p.Columns), len(expressions))
	}
	newColumns := make([]ProjectedColumn, len(p.Columns))
	for i, c := range p.Columns {
		newColumns[i] = ProjectedColumn{Expr: expressions[i], Name: c.Name}
	}
	return NewProject(newColumns, p.Child), nil
}
