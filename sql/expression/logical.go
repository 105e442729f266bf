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

package expression

import (
	"fmt"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/types"
)

// binary is the common shape every two-child expression shares.
type binary struct {
	Left, Right sql.Expression
}

func (b *binary) Children() []sql.Expression { return []sql.Expression{b.Left, b.Right} }
func (b *binary) Resolved() bool             { return b.Left.Resolved() && b.Right.Resolved() }

func evalChild(ctx *sql.Context, e sql.Expression, row sql.Row) (sql.Value, error) {
	return e.Eval(ctx, row)
}

// And implements three-valued AND: FALSE is absorbing even if the other
// operand is NULL, and a FALSE left operand short-circuits, so the
// right operand is then not evaluated at all.
type And struct{ binary }

func NewAnd(left, right sql.Expression) *And { return &And{binary{left, right}} }

func (a *And) Type() sql.Type { return types.Boolean }
func (a *And) Nullable() bool { return true }
func (a *And) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("expression.And: expected 2 children, got %d", len(children))
	}
	return NewAnd(children[0], children[1]), nil
}
func (a *And) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lv, err := evalChild(ctx, a.Left, row)
	if err != nil {
		return sql.Value{}, err
	}
	lt := sql.TriboolFromValue(lv)
	if lt == sql.False {
		return sql.NewBool(false), nil
	}
	rv, err := evalChild(ctx, a.Right, row)
	if err != nil {
		return sql.Value{}, err
	}
	rt := sql.TriboolFromValue(rv)
	result := lt.And(rt)
	if result == sql.Unknown {
		return sql.NullValue(types.Boolean), nil
	}
	return sql.NewBool(result == sql.True), nil
}
func (a *And) String() string { return fmt.Sprintf("(%s AND %s)", a.Left, a.Right) }

// Or implements three-valued OR.
type Or struct{ binary }

func NewOr(left, right sql.Expression) *Or { return &Or{binary{left, right}} }

func (o *Or) Type() sql.Type { return types.Boolean }
func (o *Or) Nullable() bool { return true }
func (o *Or) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("expression.Or: expected 2 children, got %d", len(children))
	}
	return NewOr(children[0], children[1]), nil
}
func (o *Or) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lv, err := evalChild(ctx, o.Left, row)
	if err != nil {
		return sql.Value{}, err
	}
	lt := sql.TriboolFromValue(lv)
	if lt == sql.True {
		return sql.NewBool(true), nil
	}
	rv, err := evalChild(ctx, o.Right, row)
	if err != nil {
		return sql.Value{}, err
	}
	rt := sql.TriboolFromValue(rv)
	result := lt.Or(rt)
	if result == sql.Unknown {
		return sql.NullValue(types.Boolean), nil
	}
	return sql.NewBool(result == sql.True), nil
}
func (o *Or) String() string { return fmt.Sprintf("(%s OR %s)", o.Left, o.Right) }

// Not implements three-valued NOT.
type Not struct {
	Child sql.Expression
}

func NewNot(child sql.Expression) *Not { return &Not{Child: child} }

func (n *Not) Type() sql.Type              { return types.Boolean }
func (n *Not) Nullable() bool              { return true }
func (n *Not) Resolved() bool              { return n.Child.Resolved() }
func (n *Not) Children() []sql.Expression  { return []sql.Expression{n.Child} }
func (n *Not) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("expression.Not: expected 1 child, got %d", len(children))
	}
	return NewNot(children[0]), nil
}
func (n *Not) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	v, err := evalChild(ctx, n.Child, row)
	if err != nil {
		return sql.Value{}, err
	}
	t := sql.TriboolFromValue(v).Not()
	if t == sql.Unknown {
		return sql.NullValue(types.Boolean), nil
	}
	return sql.NewBool(t == sql.True), nil
}
func (n *Not) String() string { return fmt.Sprintf("(NOT %s)", n.Child) }

// IsNull is one of the explicit three-valued exceptions (spec.md §4.5):
// null input never propagates, the predicate itself is always TRUE or
// FALSE.
type IsNull struct {
	Child sql.Expression
}

func NewIsNull(child sql.Expression) *IsNull { return &IsNull{Child: child} }

func (i *IsNull) Type() sql.Type             { return types.Boolean }
func (i *IsNull) Nullable() bool             { return false }
func (i *IsNull) Resolved() bool             { return i.Child.Resolved() }
func (i *IsNull) Children() []sql.Expression { return []sql.Expression{i.Child} }
func (i *IsNull) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("expression.IsNull: expected 1 child, got %d", len(children))
	}
	return NewIsNull(children[0]), nil
}
func (i *IsNull) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	v, err := evalChild(ctx, i.Child, row)
	if err != nil {
		return sql.Value{}, err
	}
	return sql.NewBool(v.IsNull()), nil
}
func (i *IsNull) String() string { return fmt.Sprintf("(%s IS NULL)", i.Child) }

// Coalesce is the other explicit three-valued exception: returns the
// first non-NULL argument, or NULL if every argument is NULL.
type Coalesce struct {
	Args []sql.Expression
}

func NewCoalesce(args ...sql.Expression) *Coalesce { return &Coalesce{Args: args} }

func (c *Coalesce) Type() sql.Type {
	for _, a := range c.Args {
		if a.Type() != nil {
			return a.Type()
		}
	}
	return types.Null
}
func (c *Coalesce) Nullable() bool { return true }
func (c *Coalesce) Resolved() bool {
	for _, a := range c.Args {
		if !a.Resolved() {
			return false
		}
	}
	return true
}
func (c *Coalesce) Children() []sql.Expression { return c.Args }
func (c *Coalesce) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return NewCoalesce(children...), nil
}
func (c *Coalesce) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	for _, a := range c.Args {
		v, err := evalChild(ctx, a, row)
		if err != nil {
			return sql.Value{}, err
		}
		if !v.IsNull() {
			return v, nil
		}
	}
	return sql.NullValue(c.Type()), nil
}
func (c *Coalesce) String() string { return fmt.Sprintf("COALESCE(%v)", c.Args) }
