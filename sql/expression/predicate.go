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
	"strings"

	"github.com/yachtsql/yachtsql/sql"
)

// Tuple groups several expressions into one row-valued expression: the
// right-hand side of `x IN (1, 2, 3)` or a VALUES-less row constructor.
type Tuple struct {
	Values []sql.Expression
}

func NewTuple(values ...sql.Expression) *Tuple { return &Tuple{Values: values} }

func (t *Tuple) Type() sql.Type { return nil }
func (t *Tuple) Nullable() bool { return false }
func (t *Tuple) Resolved() bool {
	for _, v := range t.Values {
		if !v.Resolved() {
			return false
		}
	}
	return true
}
func (t *Tuple) Children() []sql.Expression { return t.Values }
func (t *Tuple) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return NewTuple(children...), nil
}
func (t *Tuple) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Value{}, sql.ErrInternal.New("tuple evaluated outside IN/comparison context")
}
func (t *Tuple) String() string {
	parts := make([]string, len(t.Values))
	for i, v := range t.Values {
		parts[i] = v.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// Between implements `x BETWEEN lo AND hi`, equivalent to `x >= lo AND
// x <= hi` but kept as one node so the optimizer can range-pushdown it
// without having to pattern-match a desugared form back out.
type Between struct {
	X, Lo, Hi sql.Expression
	Not       bool
}

func NewBetween(x, lo, hi sql.Expression, not bool) *Between {
	return &Between{X: x, Lo: lo, Hi: hi, Not: not}
}

func (b *Between) Type() sql.Type { return sql.BooleanType }
func (b *Between) Nullable() bool { return true }
func (b *Between) Resolved() bool {
	return b.X.Resolved() && b.Lo.Resolved() && b.Hi.Resolved()
}
func (b *Between) Children() []sql.Expression { return []sql.Expression{b.X, b.Lo, b.Hi} }
func (b *Between) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 3 {
		return nil, fmt.Errorf("expression.Between: expected 3 children, got %d", len(children))
	}
	return NewBetween(children[0], children[1], children[2], b.Not), nil
}
func (b *Between) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	xv, err := evalChild(ctx, b.X, row)
	if err != nil {
		return sql.Value{}, err
	}
	lov, err := evalChild(ctx, b.Lo, row)
	if err != nil {
		return sql.Value{}, err
	}
	hiv, err := evalChild(ctx, b.Hi, row)
	if err != nil {
		return sql.Value{}, err
	}
	if xv.IsNull() || lov.IsNull() || hiv.IsNull() {
		return sql.NullValue(sql.BooleanType), nil
	}
	loCmp, err := compareCoerced(xv, lov)
	if err != nil {
		return sql.Value{}, err
	}
	hiCmp, err := compareCoerced(xv, hiv)
	if err != nil {
		return sql.Value{}, err
	}
	between := loCmp >= 0 && hiCmp <= 0
	if b.Not {
		between = !between
	}
	return sql.NewBool(between), nil
}
func (b *Between) String() string {
	if b.Not {
		return fmt.Sprintf("(%s NOT BETWEEN %s AND %s)", b.X, b.Lo, b.Hi)
	}
	return fmt.Sprintf("(%s BETWEEN %s AND %s)", b.X, b.Lo, b.Hi)
}

// InTuple implements `x IN (v1, v2, ...)` against a literal/expression
// list; `x IN (subquery)` is rewritten by the binder into InSubquery
// instead of reusing this node, since the right side there is a plan
// subtree rather than a Tuple.
type InTuple struct {
	Left  sql.Expression
	Right *Tuple
	Not   bool
}

func NewInTuple(left sql.Expression, right *Tuple, not bool) *InTuple {
	return &InTuple{Left: left, Right: right, Not: not}
}

func (i *InTuple) Type() sql.Type { return sql.BooleanType }
func (i *InTuple) Nullable() bool { return true }
func (i *InTuple) Resolved() bool { return i.Left.Resolved() && i.Right.Resolved() }
func (i *InTuple) Children() []sql.Expression {
	return append([]sql.Expression{i.Left}, i.Right.Values...)
}
func (i *InTuple) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) < 1 {
		return nil, fmt.Errorf("expression.InTuple: expected at least 1 child, got %d", len(children))
	}
	return NewInTuple(children[0], NewTuple(children[1:]...), i.Not), nil
}
func (i *InTuple) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lv, err := evalChild(ctx, i.Left, row)
	if err != nil {
		return sql.Value{}, err
	}
	if lv.IsNull() {
		return sql.NullValue(sql.BooleanType), nil
	}
	sawNull := false
	for _, rv := range i.Right.Values {
		v, err := evalChild(ctx, rv, row)
		if err != nil {
			return sql.Value{}, err
		}
		if v.IsNull() {
			sawNull = true
			continue
		}
		cmp, err := compareCoerced(lv, v)
		if err != nil {
			return sql.Value{}, err
		}
		if cmp == 0 {
			return sql.NewBool(!i.Not), nil
		}
	}
	if sawNull {
		return sql.NullValue(sql.BooleanType), nil
	}
	return sql.NewBool(i.Not), nil
}
func (i *InTuple) String() string {
	if i.Not {
		return fmt.Sprintf("(%s NOT IN %s)", i.Left, i.Right)
	}
	return fmt.Sprintf("(%s IN %s)", i.Left, i.Right)
}

// Like implements `x LIKE pattern [ESCAPE esc]`; CaseFold makes the
// comparison ASCII-case-insensitive for ClickHouse's ILIKE (spec.md
// §4.1, dialect grammar).
type Like struct {
	X, Pattern sql.Expression
	Escape     sql.Expression // nil means the default '\' escape
	Not        bool
	CaseFold   bool
}

func NewLike(x, pattern, escape sql.Expression, not, caseFold bool) *Like {
	return &Like{X: x, Pattern: pattern, Escape: escape, Not: not, CaseFold: caseFold}
}

func (l *Like) Type() sql.Type { return sql.BooleanType }
func (l *Like) Nullable() bool { return true }
func (l *Like) Resolved() bool {
	if !l.X.Resolved() || !l.Pattern.Resolved() {
		return false
	}
	return l.Escape == nil || l.Escape.Resolved()
}
func (l *Like) Children() []sql.Expression {
	children := []sql.Expression{l.X, l.Pattern}
	if l.Escape != nil {
		children = append(children, l.Escape)
	}
	return children
}
func (l *Like) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	switch len(children) {
	case 2:
		return NewLike(children[0], children[1], nil, l.Not, l.CaseFold), nil
	case 3:
		return NewLike(children[0], children[1], children[2], l.Not, l.CaseFold), nil
	default:
		return nil, fmt.Errorf("expression.Like: expected 2 or 3 children, got %d", len(children))
	}
}
func (l *Like) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	xv, err := evalChild(ctx, l.X, row)
	if err != nil {
		return sql.Value{}, err
	}
	pv, err := evalChild(ctx, l.Pattern, row)
	if err != nil {
		return sql.Value{}, err
	}
	if xv.IsNull() || pv.IsNull() {
		return sql.NullValue(sql.BooleanType), nil
	}
	escape := byte('\\')
	if l.Escape != nil {
		ev, err := evalChild(ctx, l.Escape, row)
		if err != nil {
			return sql.Value{}, err
		}
		if ev.IsNull() {
			return sql.NullValue(sql.BooleanType), nil
		}
		if s, ok := ev.Payload().(string); ok && len(s) > 0 {
			escape = s[0]
		}
	}
	s, _ := xv.Payload().(string)
	pattern, _ := pv.Payload().(string)
	if l.CaseFold {
		s = strings.ToLower(s)
		pattern = strings.ToLower(pattern)
	}
	matched := likeMatch(s, pattern, escape)
	if l.Not {
		matched = !matched
	}
	return sql.NewBool(matched), nil
}
func (l *Like) String() string {
	op := "LIKE"
	if l.CaseFold {
		op = "ILIKE"
	}
	if l.Not {
		op = "NOT " + op
	}
	return fmt.Sprintf("(%s %s %s)", l.X, op, l.Pattern)
}

// likeMatch implements SQL LIKE semantics: '%' matches any run of zero
// or more characters, '_' matches exactly one, and escape un-specials
// the character that follows it. A classic backtracking matcher, since
// patterns are short.
func likeMatch(s, pattern string, escape byte) bool {
	return likeMatchAt(s, pattern, escape, 0, 0)
}

func likeMatchAt(s, pattern string, escape byte, si, pi int) bool {
	for pi < len(pattern) {
		switch {
		case pattern[pi] == escape && pi+1 < len(pattern):
			if si >= len(s) || s[si] != pattern[pi+1] {
				return false
			}
			si++
			pi += 2
		case pattern[pi] == '%':
			for pi < len(pattern) && pattern[pi] == '%' {
				pi++
			}
			if pi == len(pattern) {
				return true
			}
			for k := si; k <= len(s); k++ {
				if likeMatchAt(s, pattern, escape, k, pi) {
					return true
				}
			}
			return false
		case pattern[pi] == '_':
			if si >= len(s) {
				return false
			}
			si++
			pi++
		default:
			if si >= len(s) || s[si] != pattern[pi] {
				return false
			}
			si++
			pi++
		}
	}
	return si == len(s)
}
