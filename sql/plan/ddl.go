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

import "github.com/yachtsql/yachtsql/sql"

// DDLKind names the handful of schema-definition statements the
// engine supports as first-class plan nodes: enough to stand the
// tables the rest of the pipeline scans, not a full migration
// language (spec.md §1's Non-goals exclude a DDL execution engine
// beyond this).
type DDLKind int

const (
	CreateTable DDLKind = iota
	DropTable
)

// DDL creates or drops a table in Database by Name. It has no
// children: unlike query plans, a DDL statement's "input" is its own
// column definitions, not a row source.
type DDL struct {
	Kind     DDLKind
	Database string
	Name     string
	Columns  sql.Schema
}

func NewCreateTable(database, name string, columns sql.Schema) *DDL {
	return &DDL{Kind: CreateTable, Database: database, Name: name, Columns: columns}
}

func NewDropTable(database, name string) *DDL {
	return &DDL{Kind: DropTable, Database: database, Name: name}
}

func (d *DDL) Schema() sql.Schema   { return affectedSchema }
func (d *DDL) Children() []sql.Node { return nil }
func (d *DDL) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInternal.New("plan.DDL takes no children")
	}
	return d, nil
}
func (d *DDL) Resolved() bool { return d.Name != "" }
func (d *DDL) String() string {
	if d.Kind == CreateTable {
		return "CreateTable(" + d.Name + ")"
	}
	return "DropTable(" + d.Name + ")"
}
