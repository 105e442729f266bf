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

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
)

func TestNode(t *testing.T) {
	require := require.New(t)

	tests := []struct {
		inp   sql.Node
		cmp   sql.Node
		visit NodeFunc
		same  TreeIdentity
	}{
		{
			inp:  a(a(a(), a(), a(b())), c()),
			cmp:  b(b(b(), b(), b(c())), c()),
			same: NewTree,
			visit: func(node sql.Node) (sql.Node, TreeIdentity, error) {
				switch n := node.(type) {
				case *nodeA:
					return b(n.children...), NewTree, nil
				case *nodeB:
					return c(n.children...), NewTree, nil
				default:
					return n, SameTree, nil
				}
			},
		},
		{
			inp:  a(b(a())),
			cmp:  c(b(c())),
			same: NewTree,
			visit: func(node sql.Node) (sql.Node, TreeIdentity, error) {
				switch n := node.(type) {
				case *nodeA:
					return c(n.Children()...), NewTree, nil
				default:
					return n, SameTree, nil
				}
			},
		},
		{
			inp:  a(a(a(), a(), a(b())), b()),
			cmp:  a(a(a(), a(), a(b())), b()),
			same: SameTree,
			visit: func(node sql.Node) (sql.Node, TreeIdentity, error) {
				switch n := node.(type) {
				case *nodeC:
					return a(n.children...), NewTree, nil
				default:
					return n, SameTree, nil
				}
			},
		},
		{
			inp:  a(),
			cmp:  c(),
			same: NewTree,
			visit: func(node sql.Node) (sql.Node, TreeIdentity, error) {
				switch n := node.(type) {
				case *nodeA:
					return c(n.Children()...), NewTree, nil
				default:
					return n, SameTree, nil
				}
			},
		},
	}

	for i, tt := range tests {
		name := fmt.Sprintf("case #%d", i)
		t.Run(name, func(t *testing.T) {
			res, same, err := Node(tt.inp, tt.visit)
			require.NoError(err)
			require.Equal(tt.cmp, res)
			require.Equal(tt.same, same)
		})
	}
}

type nodeA struct{ testNode }
type nodeB struct{ testNode }
type nodeC struct{ testNode }

func a(nodes ...sql.Node) *nodeA { return &nodeA{testNode{children: nodes}} }
func b(nodes ...sql.Node) *nodeB { return &nodeB{testNode{children: nodes}} }
func c(nodes ...sql.Node) *nodeC { return &nodeC{testNode{children: nodes}} }

func (n *nodeA) WithChildren(nodes ...sql.Node) (sql.Node, error) {
	nn := *n
	nn.children = nodes
	return &nn, nil
}

func (n *nodeB) WithChildren(nodes ...sql.Node) (sql.Node, error) {
	nn := *n
	nn.children = nodes
	return &nn, nil
}

func (n *nodeC) WithChildren(nodes ...sql.Node) (sql.Node, error) {
	nn := *n
	nn.children = nodes
	return &nn, nil
}

type testNode struct {
	children []sql.Node
}

func (n *testNode) Resolved() bool         { return true }
func (n *testNode) String() string         { return "" }
func (n *testNode) Schema() sql.Schema     { return nil }
func (n *testNode) Children() []sql.Node   { return n.children }
func (n *testNode) WithChildren(nodes ...sql.Node) (sql.Node, error) {
	nn := *n
	nn.children = nodes
	return &nn, nil
}
