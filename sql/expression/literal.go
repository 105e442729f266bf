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

// Package expression holds the scalar expression tree: literals, column
// references, operators, CASE, CAST, and function calls, each
// evaluated one Row at a time through Eval.
package expression

import (
	"fmt"

	"github.com/yachtsql/yachtsql/sql"
)

// Literal is a constant Value baked into the plan.
type Literal struct {
	value sql.Value
}

func NewLiteral(v sql.Value) *Literal { return &Literal{value: v} }

func (l *Literal) Type() sql.Type   { return l.value.Type() }
func (l *Literal) Nullable() bool   { return l.value.IsNull() }
func (l *Literal) Resolved() bool   { return true }
func (l *Literal) Children() []sql.Expression { return nil }
func (l *Literal) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("expression.Literal: expected 0 children, got %d", len(children))
	}
	return l, nil
}
func (l *Literal) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return l.value, nil
}
func (l *Literal) String() string {
	return l.value.String()
}

// GetField reads column i of the input row — the compiled form of a
// resolved column reference (spec.md §4.2, binder output).
type GetField struct {
	index  int
	name   string
	typ    sql.Type
	nullOk bool
}

func NewGetField(index int, typ sql.Type, name string, nullable bool) *GetField {
	return &GetField{index: index, name: name, typ: typ, nullOk: nullable}
}

func (g *GetField) Index() int      { return g.index }
func (g *GetField) Type() sql.Type  { return g.typ }
func (g *GetField) Nullable() bool  { return g.nullOk }
func (g *GetField) Resolved() bool  { return true }
func (g *GetField) Children() []sql.Expression { return nil }
func (g *GetField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("expression.GetField: expected 0 children, got %d", len(children))
	}
	return g, nil
}
func (g *GetField) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	if g.index < 0 || g.index >= len(row) {
		return sql.Value{}, sql.ErrInternal.New(fmt.Sprintf("GetField index %d out of range for row of length %d", g.index, len(row)))
	}
	return row[g.index], nil
}
func (g *GetField) String() string { return g.name }

// UnresolvedColumn is a bare identifier not yet bound to a GetField; the
// binder (sql/analyzer) replaces every UnresolvedColumn with a GetField
// before the plan is considered Resolved.
type UnresolvedColumn struct {
	Name   string
	Source string
}

func NewUnresolvedColumn(name string) *UnresolvedColumn { return &UnresolvedColumn{Name: name} }
func NewUnresolvedQualifiedColumn(source, name string) *UnresolvedColumn {
	return &UnresolvedColumn{Name: name, Source: source}
}

func (u *UnresolvedColumn) Type() sql.Type  { return nil }
func (u *UnresolvedColumn) Nullable() bool  { return true }
func (u *UnresolvedColumn) Resolved() bool  { return false }
func (u *UnresolvedColumn) Children() []sql.Expression { return nil }
func (u *UnresolvedColumn) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return u, nil
}
func (u *UnresolvedColumn) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Value{}, sql.ErrInternal.New(fmt.Sprintf("unresolved column %q evaluated", u.Name))
}
func (u *UnresolvedColumn) String() string {
	if u.Source != "" {
		return u.Source + "." + u.Name
	}
	return u.Name
}
