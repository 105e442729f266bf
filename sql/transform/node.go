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

// Package transform provides generic bottom-up rewrite helpers over
// sql.Node and sql.Expression trees. The analyzer's rule batches
// (spec.md §5) are built almost entirely out of Node/Expr/NodeExprs
// calls rather than hand-rolled tree walks, so a rule only has to say
// what changes about one node or expression and this package handles
// threading the rebuild back up to the root.
package transform

import "github.com/yachtsql/yachtsql/sql"

// TreeIdentity reports whether a transformation actually produced a
// new tree. Rules compare this against SameTree to decide whether a
// rewrite fired, which the analyzer's fixpoint loop uses to detect
// convergence without relying on deep equality.
type TreeIdentity bool

const (
	// SameTree means the transformation did not change anything: the
	// returned node/expression is identical to (or a value-equal copy
	// of) the one passed in.
	SameTree TreeIdentity = true
	// NewTree means the transformation produced a different node or
	// expression, and every ancestor up to the root must be rebuilt
	// with WithChildren to splice it in.
	NewTree TreeIdentity = false
)

// NodeFunc is applied to a single sql.Node during a bottom-up rewrite.
type NodeFunc func(sql.Node) (sql.Node, TreeIdentity, error)

// Node applies f to every node of the tree rooted at node, children
// before parents. If any child's rewrite returns NewTree, the parent
// is rebuilt with WithChildren before f is applied to it in turn, so f
// never has to know whether its children changed underneath it.
func Node(node sql.Node, f NodeFunc) (sql.Node, TreeIdentity, error) {
	children := node.Children()
	if len(children) == 0 {
		return f(node)
	}

	newChildren := make([]sql.Node, len(children))
	identity := SameTree
	for i, c := range children {
		newChild, same, err := Node(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		newChildren[i] = newChild
		if same == NewTree {
			identity = NewTree
		}
	}

	if identity == NewTree {
		var err error
		node, err = node.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}

	newNode, same, err := f(node)
	if err != nil {
		return nil, SameTree, err
	}
	if same == NewTree {
		identity = NewTree
	}

	return newNode, identity, nil
}

// NodeExprs rewrites every expression directly owned by every node in
// the tree (via sql.Expressioner), leaving the node tree shape itself
// untouched except for the WithExpressions splice. Most analyzer
// rules that only need to rewrite predicates or projected columns use
// this instead of Node plus a manual type switch.
func NodeExprs(node sql.Node, f ExprFunc) (sql.Node, TreeIdentity, error) {
	return Node(node, func(n sql.Node) (sql.Node, TreeIdentity, error) {
		ex, ok := n.(sql.Expressioner)
		if !ok {
			return n, SameTree, nil
		}
		exprs := ex.Expressions()
		if len(exprs) == 0 {
			return n, SameTree, nil
		}

		newExprs := make([]sql.Expression, len(exprs))
		identity := SameTree
		for i, e := range exprs {
			newExpr, same, err := Expr(e, f)
			if err != nil {
				return nil, SameTree, err
			}
			newExprs[i] = newExpr
			if same == NewTree {
				identity = NewTree
			}
		}
		if identity == SameTree {
			return n, SameTree, nil
		}
		newNode, err := ex.WithExpressions(newExprs...)
		if err != nil {
			return nil, SameTree, err
		}
		return newNode, NewTree, nil
	})
}
