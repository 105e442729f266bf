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

// CaseBranch is one WHEN cond THEN result arm of a Case expression.
type CaseBranch struct {
	Cond   sql.Expression
	Result sql.Expression
}

// Case implements searched CASE WHEN ... THEN ... ELSE ... END. The
// ELSE branch defaults to NULL when omitted.
type Case struct {
	Branches []CaseBranch
	Else     sql.Expression
	typ      sql.Type
}

func NewCase(branches []CaseBranch, elseExpr sql.Expression, typ sql.Type) *Case {
	return &Case{Branches: branches, Else: elseExpr, typ: typ}
}

func (c *Case) Type() sql.Type { return c.typ }
func (c *Case) Nullable() bool { return true }
func (c *Case) Resolved() bool {
	for _, b := range c.Branches {
		if !b.Cond.Resolved() || !b.Result.Resolved() {
			return false
		}
	}
	return c.Else == nil || c.Else.Resolved()
}
func (c *Case) Children() []sql.Expression {
	children := make([]sql.Expression, 0, len(c.Branches)*2+1)
	for _, b := range c.Branches {
		children = append(children, b.Cond, b.Result)
	}
	if c.Else != nil {
		children = append(children, c.Else)
	}
	return children
}
func (c *Case) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	expected := len(c.Branches) * 2
	hasElse := c.Else != nil
	if hasElse {
		expected++
	}
	if len(children) != expected {
		return nil, fmt.Errorf("expression.Case: expected %d children, got %d", expected, len(children))
	}
	branches := make([]CaseBranch, len(c.Branches))
	for i := range branches {
		branches[i] = CaseBranch{Cond: children[i*2], Result: children[i*2+1]}
	}
	var elseExpr sql.Expression
	if hasElse {
		elseExpr = children[len(children)-1]
	}
	return NewCase(branches, elseExpr, c.typ), nil
}
func (c *Case) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	for _, b := range c.Branches {
		cv, err := evalChild(ctx, b.Cond, row)
		if err != nil {
			return sql.Value{}, err
		}
		if sql.TriboolFromValue(cv) == sql.True {
			return evalChild(ctx, b.Result, row)
		}
	}
	if c.Else != nil {
		return evalChild(ctx, c.Else, row)
	}
	return sql.NullValue(c.typ), nil
}
func (c *Case) String() string {
	return fmt.Sprintf("CASE %v ELSE %v END", c.Branches, c.Else)
}
