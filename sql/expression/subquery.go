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
	"io"

	"github.com/yachtsql/yachtsql/sql"
)

// subqueryRunner is the hook the analyzer/rowexec side installs on a
// Subquery/Exists/InSubquery node so Eval can drive the subquery's plan
// for a given outer row without expression/ importing plan or rowexec
// (which would cycle back into this package). The physical compiler
// (sql/analyzer/physical.go, bindSubqueryRunners) attaches a Runner via
// WithRunner; the decorrelation rules in sql/analyzer/rules.go may
// instead replace an Exists/InSubquery node with a semi or anti join,
// in which case Run is never called.
type subqueryRunner interface {
	Run(ctx *sql.Context, outer sql.Row) (sql.RowIter, error)
}

// Subquery wraps a SELECT used in scalar position (`WHERE x =
// (SELECT ...)`); the binder accepts only uncorrelated ones. Query is
// the logical plan for printing and analysis; Runner does the actual
// execution once wired by the physical compiler.
type Subquery struct {
	Query  sql.Node
	Runner subqueryRunner
	typ    sql.Type
}

func NewSubquery(query sql.Node, typ sql.Type) *Subquery {
	return &Subquery{Query: query, typ: typ}
}

// WithRunner returns a copy of s with its execution hook attached,
// called by the physical compiler once the inner plan has a physical
// iterator.
func (s *Subquery) WithRunner(r subqueryRunner) *Subquery {
	return &Subquery{Query: s.Query, Runner: r, typ: s.typ}
}

func (s *Subquery) Type() sql.Type          { return s.typ }
func (s *Subquery) Nullable() bool          { return true }
func (s *Subquery) Resolved() bool          { return s.Query.Resolved() }
func (s *Subquery) Children() []sql.Expression { return nil }
func (s *Subquery) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("expression.Subquery: expected 0 children, got %d", len(children))
	}
	return s, nil
}
func (s *Subquery) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	if s.Runner == nil {
		return sql.Value{}, sql.ErrInternal.New("subquery evaluated before binding")
	}
	iter, err := s.Runner.Run(ctx, row)
	if err != nil {
		return sql.Value{}, err
	}
	defer iter.Close(ctx)
	r, err := iter.Next(ctx)
	if err != nil {
		if err == io.EOF {
			return sql.NullValue(s.typ), nil
		}
		return sql.Value{}, err
	}
	if len(r) == 0 {
		return sql.NullValue(s.typ), nil
	}
	return r[0], nil
}
func (s *Subquery) String() string { return fmt.Sprintf("(%s)", s.Query) }

// Exists implements `[NOT] EXISTS (subquery)`: true iff the subquery
// produces at least one row for the current outer row.
type Exists struct {
	Query  sql.Node
	Runner subqueryRunner
	Not    bool
}

func NewExists(query sql.Node, not bool) *Exists {
	return &Exists{Query: query, Not: not}
}

func (e *Exists) WithRunner(r subqueryRunner) *Exists {
	return &Exists{Query: e.Query, Runner: r, Not: e.Not}
}

func (e *Exists) Type() sql.Type          { return sql.BooleanType }
func (e *Exists) Nullable() bool          { return false }
func (e *Exists) Resolved() bool          { return e.Query.Resolved() }
func (e *Exists) Children() []sql.Expression { return nil }
func (e *Exists) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("expression.Exists: expected 0 children, got %d", len(children))
	}
	return e, nil
}
func (e *Exists) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	if e.Runner == nil {
		return sql.Value{}, sql.ErrInternal.New("exists evaluated before binding")
	}
	iter, err := e.Runner.Run(ctx, row)
	if err != nil {
		return sql.Value{}, err
	}
	defer iter.Close(ctx)
	_, err = iter.Next(ctx)
	exists := true
	if err != nil {
		if err != io.EOF {
			return sql.Value{}, err
		}
		exists = false
	}
	if e.Not {
		exists = !exists
	}
	return sql.NewBool(exists), nil
}
func (e *Exists) String() string {
	if e.Not {
		return fmt.Sprintf("NOT EXISTS (%s)", e.Query)
	}
	return fmt.Sprintf("EXISTS (%s)", e.Query)
}

// InSubquery implements `x [NOT] IN (subquery)`: membership test of
// Left against the single-column result set of Query, with the same
// three-valued NULL handling as InTuple (spec.md §4.5).
type InSubquery struct {
	Left   sql.Expression
	Query  sql.Node
	Runner subqueryRunner
	Not    bool
}

func NewInSubquery(left sql.Expression, query sql.Node, not bool) *InSubquery {
	return &InSubquery{Left: left, Query: query, Not: not}
}

func (i *InSubquery) WithRunner(r subqueryRunner) *InSubquery {
	return &InSubquery{Left: i.Left, Query: i.Query, Runner: r, Not: i.Not}
}

func (i *InSubquery) Type() sql.Type { return sql.BooleanType }
func (i *InSubquery) Nullable() bool { return true }
func (i *InSubquery) Resolved() bool { return i.Left.Resolved() && i.Query.Resolved() }
func (i *InSubquery) Children() []sql.Expression { return []sql.Expression{i.Left} }
func (i *InSubquery) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("expression.InSubquery: expected 1 child, got %d", len(children))
	}
	return &InSubquery{Left: children[0], Query: i.Query, Runner: i.Runner, Not: i.Not}, nil
}
func (i *InSubquery) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	if i.Runner == nil {
		return sql.Value{}, sql.ErrInternal.New("in-subquery evaluated before binding")
	}
	lv, err := evalChild(ctx, i.Left, row)
	if err != nil {
		return sql.Value{}, err
	}
	if lv.IsNull() {
		return sql.NullValue(sql.BooleanType), nil
	}
	iter, err := i.Runner.Run(ctx, row)
	if err != nil {
		return sql.Value{}, err
	}
	defer iter.Close(ctx)
	sawNull := false
	for {
		r, err := iter.Next(ctx)
		if err != nil {
			if err == io.EOF {
				break
			}
			return sql.Value{}, err
		}
		if len(r) == 0 || r[0].IsNull() {
			sawNull = true
			continue
		}
		cmp, err := compareCoerced(lv, r[0])
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
func (i *InSubquery) String() string {
	if i.Not {
		return fmt.Sprintf("(%s NOT IN (%s))", i.Left, i.Query)
	}
	return fmt.Sprintf("(%s IN (%s))", i.Left, i.Query)
}
