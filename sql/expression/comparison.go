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

// comparisonOp is a null-propagating ordering predicate: NULL input (in
// either operand) makes the whole comparison NULL, per the uniform
// null-propagation rule in spec.md §4.5.
type comparisonOp struct {
	binary
	symbol string
	accept func(cmp int) bool
}

func newComparison(symbol string, accept func(int) bool, left, right sql.Expression) *comparisonOp {
	return &comparisonOp{binary: binary{left, right}, symbol: symbol, accept: accept}
}

func NewEquals(left, right sql.Expression) sql.Expression {
	return newComparison("=", func(c int) bool { return c == 0 }, left, right)
}
func NewNotEquals(left, right sql.Expression) sql.Expression {
	return newComparison("<>", func(c int) bool { return c != 0 }, left, right)
}
func NewLessThan(left, right sql.Expression) sql.Expression {
	return newComparison("<", func(c int) bool { return c < 0 }, left, right)
}
func NewLessThanOrEqual(left, right sql.Expression) sql.Expression {
	return newComparison("<=", func(c int) bool { return c <= 0 }, left, right)
}
func NewGreaterThan(left, right sql.Expression) sql.Expression {
	return newComparison(">", func(c int) bool { return c > 0 }, left, right)
}
func NewGreaterThanOrEqual(left, right sql.Expression) sql.Expression {
	return newComparison(">=", func(c int) bool { return c >= 0 }, left, right)
}

func (c *comparisonOp) Type() sql.Type { return types.Boolean }
func (c *comparisonOp) Nullable() bool { return true }
func (c *comparisonOp) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("expression comparison %s: expected 2 children, got %d", c.symbol, len(children))
	}
	return newComparison(c.symbol, c.accept, children[0], children[1]), nil
}
func (c *comparisonOp) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lv, err := evalChild(ctx, c.Left, row)
	if err != nil {
		return sql.Value{}, err
	}
	rv, err := evalChild(ctx, c.Right, row)
	if err != nil {
		return sql.Value{}, err
	}
	if lv.IsNull() || rv.IsNull() {
		return sql.NullValue(types.Boolean), nil
	}
	cmp, err := compareCoerced(lv, rv)
	if err != nil {
		return sql.Value{}, err
	}
	return sql.NewBool(c.accept(cmp)), nil
}
func (c *comparisonOp) String() string { return fmt.Sprintf("(%s %s %s)", c.Left, c.symbol, c.Right) }

// compareCoerced compares two non-null Values, requiring the same type
// tag (the binder is responsible for inserting a Cast wherever
// coercion is needed before evaluation reaches here).
func compareCoerced(a, b sql.Value) (int, error) {
	if a.Type().Tag() != b.Type().Tag() {
		return 0, sql.ErrTypeMismatch.New("=", a.Type().Name(), b.Type().Name())
	}
	return a.Type().Compare(a.Payload(), b.Payload())
}

// IsDistinctFrom implements `IS [NOT] DISTINCT FROM`: unlike `=`, NULL
// is treated as a comparable value, so `NULL IS NOT DISTINCT FROM NULL`
// is TRUE. This is the one equi-join condition where NULL keys match
// (spec.md §4.5, Joins).
type IsDistinctFrom struct {
	binary
	Not bool
}

func NewIsDistinctFrom(left, right sql.Expression, not bool) *IsDistinctFrom {
	return &IsDistinctFrom{binary: binary{left, right}, Not: not}
}

func (d *IsDistinctFrom) Type() sql.Type { return types.Boolean }
func (d *IsDistinctFrom) Nullable() bool { return false }
func (d *IsDistinctFrom) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("expression.IsDistinctFrom: expected 2 children, got %d", len(children))
	}
	return NewIsDistinctFrom(children[0], children[1], d.Not), nil
}
func (d *IsDistinctFrom) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lv, err := evalChild(ctx, d.Left, row)
	if err != nil {
		return sql.Value{}, err
	}
	rv, err := evalChild(ctx, d.Right, row)
	if err != nil {
		return sql.Value{}, err
	}
	distinct := !sql.Equal(lv, rv)
	if d.Not {
		return sql.NewBool(!distinct), nil
	}
	return sql.NewBool(distinct), nil
}
func (d *IsDistinctFrom) String() string {
	if d.Not {
		return fmt.Sprintf("(%s IS NOT DISTINCT FROM %s)", d.Left, d.Right)
	}
	return fmt.Sprintf("(%s IS DISTINCT FROM %s)", d.Left, d.Right)
}
