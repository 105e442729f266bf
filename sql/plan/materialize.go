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

// Materialize marks a subtree the analyzer's materialization-hints
// batch found referenced from more than one place in the plan (a CTE
// named in two different FROM items, most commonly). The same
// *Materialize pointer is spliced into every referencing site, so
// sql/rowexec can key a run-once cache on pointer identity instead of
// recomputing Child for every reference.
type Materialize struct {
	Child sql.Node
}

func NewMaterialize(child sql.Node) *Materialize {
	return &Materialize{Child: child}
}

func (m *Materialize) Schema() sql.Schema   { return m.Child.Schema() }
func (m *Materialize) Children() []sql.Node { return []sql.Node{m.Child} }
func (m *Materialize) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Materialize: expected 1 child, got %d", len(children))
	}
	return &Materialize{Child: children[0]}, nil
}
func (m *Materialize) Resolved() bool { return m.Child.Resolved() }
func (m *Materialize) String() string { return "Materialize" }
