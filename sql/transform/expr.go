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

// ExprFunc is applied to a single sql.Expression during a bottom-up
// rewrite, the Expression-tree analogue of NodeFunc.
type ExprFunc func(sql.Expression) (sql.Expression, TreeIdentity, error)

// Expr applies f to every expression of the tree rooted at e,
// children before parents, rebuilding ancestors with WithChildren
// exactly as Node does for sql.Node trees.
func Expr(e sql.Expression, f ExprFunc) (sql.Expression, TreeIdentity, error) {
	children := e.Children()
	if len(children) == 0 {
		return f(e)
	}

	newChildren := make([]sql.Expression, len(children))
	identity := SameTree
	for i, c := range children {
		newChild, same, err := Expr(c, f)
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
		e, err = e.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
	}

	newExpr, same, err := f(e)
	if err != nil {
		return nil, SameTree, err
	}
	if same == NewTree {
		identity = NewTree
	}

	return newExpr, identity, nil
}
