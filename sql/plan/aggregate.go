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
	"github.com/yachtsql/yachtsql/sql/expression/function"
)

// AggregateCall is one aggregate expression in the SELECT list or
// HAVING clause: an accumulator factory from the function registry
// applied to Args, optionally DISTINCT.
type AggregateCall struct {
	Name     string
	Args     []sql.Expression
	Factory  function.AccumulatorFactory
	Distinct bool
	typ      sql.Type
	alias    string
}

func NewAggregateCall(name string, args []sql.Expression, factory function.AccumulatorFactory, typ sql.Type, distinct bool, alias string) AggregateCall {
	return AggregateCall{Name: name, Args: args, Factory: factory, typ: typ, Distinct: distinct, alias: alias}
}

func (a AggregateCall) Type() sql.Type { return a.typ }
func (a AggregateCall) Name_() string {
	if a.alias != "" {
		return a.alias
	}
	return a.Name
}

// Aggregate groups Child's rows by GroupBy and computes Aggregates per
// group, implementing GROUP BY (spec.md §4.5). An empty GroupBy with
// at least one aggregate computes a single group over the whole input.
type Aggregate struct {
	Child      sql.Node
	GroupBy    []sql.Expression
	Aggregates []AggregateCall
}

func NewAggregate(groupBy []sql.Expression, aggregates []AggregateCall, child sql.Node) *Aggregate {
	return &Aggregate{Child: child, GroupBy: groupBy, Aggregates: aggregates}
}

func (a *Aggregate) Schema() sql.Schema {
	schema := make(sql.Schema, 0, len(a.GroupBy)+len(a.Aggregates))
	for i, g := range a.GroupBy {
		schema = append(schema, &sql.Column{Name: fmt.Sprintf("group_%d", i), Type: g.Type(), Nullable: true})
	}
	for _, agg := range a.Aggregates {
		schema = append(schema, &sql.Column{Name: agg.Name_(), Type: agg.Type(), Nullable: true})
	}
	return schema
}
func (a *Aggregate) Children() []sql.Node { return []sql.Node{a.Child} }
func (a *Aggregate) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Aggregate: expected 1 child, got %d", len(children))
	}
	return NewAggregate(a.GroupBy, a.Aggregates, children[0]), nil
}
func (a *Aggregate) Resolved() bool {
	if !a.Child.Resolved() {
		return false
	}
	for _, g := range a.GroupBy {
		if !g.Resolved() {
			return false
		}
	}
	for _, agg := range a.Aggregates {
		for _, arg := range agg.Args {
			if !arg.Resolved() {
				return false
			}
		}
	}
	return true
}
func (a *Aggregate) String() string {
	return fmt.Sprintf("Aggregate(group_by=%d, aggs=%d)", len(a.GroupBy), len(a.Aggregates))
}

// Expressions returns GroupBy followed by every aggregate's Args, in
// order, flattened; WithExpressions splits that same flat slice back
// apart by the original group/arg counts.
func (a *Aggregate) Expressions() []sql.Expression {
	exprs := make([]sql.Expression, 0, len(a.GroupBy)+len(a.Aggregates))
	exprs = append(exprs, a.GroupBy...)
	for _, agg := range a.Aggregates {
		exprs = append(exprs, agg.Args...)
	}
	return exprs
}

func (a *Aggregate) WithExpressions(expressions ...sql.Expression) (sql.Node, error) {
	want := len(a.GroupBy)
	for _, agg := range a.Aggregates {
		want += len(agg.Args)
	}
	if len(expressions) != want {
		return nil, fmt.Errorf("plan.Aggregate: expected %d expressions, got %d", want, len(expressions))
	}
	newGroupBy := append([]sql.Expression{}, expressions[:len(a.GroupBy)]...)
	rest := expressions[len(a.GroupBy):]
	newAggregates := make([]AggregateCall, len(a.Aggregates))
	for i, agg := range a.Aggregates {
		newAgg := agg
		newAgg.Args = append([]sql.Expression{}, rest[:len(agg.Args)]...)
		rest = rest[len(agg.Args):]
		newAggregates[i] = newAgg
	}
	return NewAggregate(newGroupBy, newAggregates, a.Child), nil
}
