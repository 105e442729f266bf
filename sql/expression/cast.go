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
)

// Cast converts its child's value to a target Type, used both for
// explicit `::type`/CAST(...) syntax and for coercions the binder
// inserts implicitly when two operand types differ (spec.md §4.2).
type Cast struct {
	Child  sql.Expression
	Target sql.Type
}

func NewCast(child sql.Expression, target sql.Type) *Cast {
	return &Cast{Child: child, Target: target}
}

func (c *Cast) Type() sql.Type             { return c.Target }
func (c *Cast) Nullable() bool             { return true }
func (c *Cast) Resolved() bool             { return c.Child.Resolved() }
func (c *Cast) Children() []sql.Expression { return []sql.Expression{c.Child} }
func (c *Cast) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("expression.Cast: expected 1 child, got %d", len(children))
	}
	return NewCast(children[0], c.Target), nil
}
func (c *Cast) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	v, err := evalChild(ctx, c.Child, row)
	if err != nil {
		return sql.Value{}, err
	}
	if v.IsNull() {
		return sql.NullValue(c.Target), nil
	}
	converted, err := c.Target.Convert(v.Payload())
	if err != nil {
		return sql.Value{}, err
	}
	return sql.NewValue(c.Target, converted), nil
}
func (c *Cast) String() string { return fmt.Sprintf("CAST(%s AS %s)", c.Child, c.Target.Name()) }
