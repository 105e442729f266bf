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

package transform

import "github.com/yachtsql/yachtsql/sql"

// Visitor visits a node of a sql.Node tree. Visit is called with nil
// once after the last child of a node has been visited, mirroring the
// ast.Walk convention: a rule that wants an "end of siblings" signal
// gets one without a separate callback.
type Visitor interface {
	Visit(node sql.Node) Visitor
}

// Walk traverses the tree rooted at node in depth-first pre-order,
// calling v.Visit(node) first, then v.Visit(nil) after each subtree
// (including leaves) using the Visitor that call returned. If
// v.Visit(node) returns nil, node's children are not visited at all.
func Walk(v Visitor, node sql.Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	for _, child := range node.Children() {
		Walk(v, child)
	}

	v.Visit(nil)
}

type inspector func(sql.Node) bool

func (f inspector) Visit(node sql.Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at node in the same order as
// Walk, calling f for every node and nil marker; f returning false
// prunes that node's children.
func Inspect(node sql.Node, f func(sql.Node) bool) {
	Walk(inspector(f), node)
}

// ExprVisitor is the sql.Expression analogue of Visitor.
type ExprVisitor interface {
	Visit(expr sql.Expression) ExprVisitor
}

// WalkExpressions traverses the expression tree rooted at e the same
// way Walk does for nodes.
func WalkExpressions(v ExprVisitor, e sql.Expression) {
	if v = v.Visit(e); v == nil {
		return
	}

	for _, child := range e.Children() {
		WalkExpressions(v, child)
	}

	v.Visit(nil)
}

type exprInspector func(sql.Expression) bool

func (f exprInspector) Visit(e sql.Expression) ExprVisitor {
	if f(e) {
		return f
	}
	return nil
}

// InspectExpressions is the sql.Expression analogue of Inspect.
func InspectExpressions(e sql.Expression, f func(sql.Expression) bool) {
	WalkExpressions(exprInspector(f), e)
}
