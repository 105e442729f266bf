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
)

// CTE binds Name to Definition for the scope of Body (a WITH clause
// entry). The Builder does not construct it: buildWith records each
// WITH name in its buildScope, and every reference to the name is
// built as that CTE's plan.
type CTE struct {
	Name       string
	Definition sql.Node
	Body       sql.Node
}

func NewCTE(name string, definition, body sql.Node) *CTE {
	return &CTE{Name: name, Definition: definition, Body: body}
}

func (c *CTE) Schema() sql.Schema   { return c.Body.Schema() }
func (c *CTE) Children() []sql.Node { return []sql.Node{c.Definition, c.Body} }
func (c *CTE) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("plan.CTE: expected 2 children, got %d", len(children))
	}
	return NewCTE(c.Name, children[0], children[1]), nil
}
func (c *CTE) Resolved() bool { return c.Definition.Resolved() && c.Body.Resolved() }
func (c *CTE) String() string { return fmt.Sprintf("CTE(%s)", c.Name) }

// RecursiveCTE binds Name over the fixpoint of Anchor UNION [ALL]
// Recursive, where Recursive may reference Name as a scan over the
// previous iteration's delta (WITH RECURSIVE). Body is the outer query
// referencing Name and is optional: a RecursiveCTE referenced directly
// as a FROM item (wrapped in a SubqueryAlias by the binder rather than
// inlined as a Body) leaves it nil, in which case Schema/Resolved fall
// back to Anchor, whose columns the fixpoint always matches.
type RecursiveCTE struct {
	Name      string
	Anchor    sql.Node
	Recursive sql.Node
	All       bool
	Body      sql.Node
}

func NewRecursiveCTE(name string, anchor, recursive, body sql.Node, all bool) *RecursiveCTE {
	return &RecursiveCTE{Name: name, Anchor: anchor, Recursive: recursive, Body: body, All: all}
}

func (r *RecursiveCTE) Schema() sql.Schema {
	if r.Body != nil {
		return r.Body.Schema()
	}
	return r.Anchor.Schema()
}
func (r *RecursiveCTE) Children() []sql.Node {
	if r.Body != nil {
		return []sql.Node{r.Anchor, r.Recursive, r.Body}
	}
	return []sql.Node{r.Anchor, r.Recursive}
}
func (r *RecursiveCTE) WithChildren(children ...sql.Node) (sql.Node, error) {
	switch len(children) {
	case 2:
		return NewRecursiveCTE(r.Name, children[0], children[1], nil, r.All), nil
	case 3:
		return NewRecursiveCTE(r.Name, children[0], children[1], children[2], r.All), nil
	default:
		return nil, fmt.Errorf("plan.RecursiveCTE: expected 2 or 3 children, got %d", len(children))
	}
}
func (r *RecursiveCTE) Resolved() bool {
	if !r.Anchor.Resolved() || !r.Recursive.Resolved() {
		return false
	}
	return r.Body == nil || r.Body.Resolved()
}
func (r *RecursiveCTE) String() string { return fmt.Sprintf("RecursiveCTE(%s)", r.Name) }

// RecursiveRef is a reference to the enclosing RecursiveCTE's
// previous-iteration delta, used only inside Recursive's subtree.
type RecursiveRef struct {
	Name   string
	schema sql.Schema
}

func NewRecursiveRef(name string, schema sql.Schema) *RecursiveRef {
	return &RecursiveRef{Name: name, schema: schema}
}

func (r *RecursiveRef) Schema() sql.Schema   { return r.schema }
func (r *RecursiveRef) Children() []sql.Node { return nil }
func (r *RecursiveRef) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("plan.RecursiveRef: expected 0 children, got %d", len(children))
	}
	return r, nil
}
func (r *RecursiveRef) Resolved() bool { return r.schema != nil }
func (r *RecursiveRef) String() string { return fmt.Sprintf("RecursiveRef(%s)", r.Name) }
