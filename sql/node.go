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

package sql

// Node is one node of the logical plan tree (spec.md §3, Plan nodes):
// Scan, Filter, Project, Join, Aggregate, Window, Sort, Limit/Offset,
// SetOp, Values, TableFunction, CTE, RecursiveCTE, DML, DDL each
// implement this in package sql/plan.
type Node interface {
	// Schema is this node's output schema.
	Schema() Schema
	// Children returns this node's plan-tree children, in evaluation
	// order.
	Children() []Node
	// WithChildren returns a copy of this node with its children
	// replaced, used pervasively by sql/transform's rewrite helpers.
	WithChildren(children ...Node) (Node, error)
	// Resolved reports whether every identifier and type in this
	// subtree has been bound; the analyzer's Builder returns a tree
	// that is already Resolved.
	Resolved() bool
	String() string
}

// Expression is a scalar computation over a Row/RecordBatch: literals,
// column references, operators, function calls, CASE, window
// functions. Concrete nodes live in package sql/expression.
type Expression interface {
	Type() Type
	Nullable() bool
	// Eval computes this expression's value for a single Row, used by
	// the row-oriented paths (DML defaults, CHECK constraints).
	Eval(ctx *Context, row Row) (Value, error)
	Children() []Expression
	WithChildren(children ...Expression) (Expression, error)
	Resolved() bool
	String() string
}

// Expressioner is implemented by plan nodes that own scalar
// expressions directly (Filter's predicate, Project's columns,
// Aggregate's group-by and aggregate expressions, Join's condition).
// sql/transform's NodeExprs uses it to rewrite those expressions
// without the caller needing a type switch over every node kind.
type Expressioner interface {
	Expressions() []Expression
	WithExpressions(expressions ...Expression) (Node, error)
}

// OrderedProperty describes a sortedness/distinctness guarantee a plan
// or physical operator advertises, consumed by the optimizer and
// physical planner (spec.md §3, "required properties").
type OrderedProperty struct {
	Sorted      bool
	SortColumns []string
	Distinct    bool
}
