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
	"github.com/yachtsql/yachtsql/sql/types"
)

var affectedSchema = sql.Schema{{Name: "rows_affected", Type: types.Int64, Nullable: false}}

// Insert writes Source's rows into Table, stamping an MVCC insert
// header on each (spec.md §4.6, DML). Source is typically a Values or
// a Project over a sub-SELECT.
type Insert struct {
	TableNode sql.Node
	Source    sql.Node
	Columns   []string
}

func NewInsert(table, source sql.Node, columns []string) *Insert {
	return &Insert{TableNode: table, Source: source, Columns: columns}
}

func (i *Insert) Schema() sql.Schema   { return affectedSchema }
func (i *Insert) Children() []sql.Node { return []sql.Node{i.TableNode, i.Source} }
func (i *Insert) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("plan.Insert: expected 2 children, got %d", len(children))
	}
	return NewInsert(children[0], children[1], i.Columns), nil
}
func (i *Insert) Resolved() bool { return i.TableNode.Resolved() && i.Source.Resolved() }
func (i *Insert) String() string { return "Insert" }

// Update rewrites Assignments for every row of Child that is still
// visible, stamping a deleter_xid on the old version and inserting a
// new one (spec.md §4.6's version-chain discipline; no in-place
// mutation of a visible row).
type Update struct {
	Child       sql.Node
	Assignments map[string]sql.Expression
}

func NewUpdate(assignments map[string]sql.Expression, child sql.Node) *Update {
	return &Update{Child: child, Assignments: assignments}
}

func (u *Update) Schema() sql.Schema   { return affectedSchema }
func (u *Update) Children() []sql.Node { return []sql.Node{u.Child} }
func (u *Update) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Update: expected 1 child, got %d", len(children))
	}
	return NewUpdate(u.Assignments, children[0]), nil
}
func (u *Update) Resolved() bool {
	if !u.Child.Resolved() {
		return false
	}
	for _, e := range u.Assignments {
		if !e.Resolved() {
			return false
		}
	}
	return true
}
func (u *Update) String() string { return "Update" }

// Delete marks every row of Child with a deleter_xid, matching the
// same version-chain discipline Update uses (spec.md §4.6).
type Delete struct {
	Child sql.Node
}

func NewDelete(child sql.Node) *Delete { return &Delete{Child: child} }

func (d *Delete) Schema() sql.Schema   { return affectedSchema }
func (d *Delete) Children() []sql.Node { return []sql.Node{d.Child} }
func (d *Delete) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Delete: expected 1 child, got %d", len(children))
	}
	return NewDelete(children[0]), nil
}
func (d *Delete) Resolved() bool { return d.Child.Resolved() }
func (d *Delete) String() string { return "Delete" }
