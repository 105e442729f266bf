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

package analyzer

import "github.com/yachtsql/yachtsql/sql"

// Scope is a linked list of enclosing query blocks, innermost last.
// optimizeSubqueryPlans (rules.go) nests the current tree under a new
// Scope before analyzing the subquery plans inside it, and every rule
// receives that chain. No rule resolves columns through it: Builder
// already rejects correlated references (see buildScope in build.go).
type Scope struct {
	parent *Scope
	node   sql.Node
}

// newScope nests n under s as the new innermost scope. A nil receiver
// is valid and denotes "no enclosing query", so a top-level statement
// can call (*Scope)(nil).newScope(n) to establish its own first scope.
func (s *Scope) newScope(n sql.Node) *Scope {
	return &Scope{parent: s, node: n}
}

// Schema returns the columns visible to a correlated reference at
// this scope level, or nil at the top of the chain.
func (s *Scope) Schema() sql.Schema {
	if s == nil || s.node == nil {
		return nil
	}
	return s.node.Schema()
}

func (s *Scope) Parent() *Scope {
	if s == nil {
		return nil
	}
	return s.parent
}

// Outer reports whether s is non-nil, that is, whether the tree being
// analyzed sits inside at least one enclosing query block.
func (s *Scope) Outer() bool {
	return s != nil
}
