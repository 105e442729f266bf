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

// Package plan holds the logical plan node algebra (spec.md §3, Plan
// nodes): one Go type per node kind, each implementing sql.Node.
// Nodes carry only what shape the plan, not how it executes — the
// physical planner in sql/analyzer/physical.go converts a resolved,
// optimized plan.Node tree into sql/rowexec operators.
package plan

import (
	"fmt"

	"github.com/yachtsql/yachtsql/sql"
)

// Scan reads every row of a resolved Table.
type Scan struct {
	Table sql.Table
	Alias string
	schema sql.Schema
}

func NewScan(table sql.Table) *Scan {
	return &Scan{Table: table, schema: table.Schema()}
}

func NewScanAs(table sql.Table, alias string) *Scan {
	return &Scan{Table: table, Alias: alias, schema: table.Schema()}
}

func (s *Scan) Schema() sql.Schema { return s.schema }
func (s *Scan) Children() []sql.Node { return nil }
func (s *Scan) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("plan.Scan: expected 0 children, got %d", len(children))
	}
	return s, nil
}
func (s *Scan) Resolved() bool { return s.Table != nil }
func (s *Scan) String() string {
	if s.Alias != "" {
		return fmt.Sprintf("Scan(%s AS %s)", s.Table.Name(), s.Alias)
	}
	return fmt.Sprintf("Scan(%s)", s.Table.Name())
}

// Name returns the scan's effective name (alias if set, else the
// table's own name), used by the binder to qualify columns.
func (s *Scan) Name() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Table.Name()
}

// UnresolvedTable is a bare table reference not yet looked up in the
// catalog. The Builder resolves table names straight to a Scan and
// never produces this node.
type UnresolvedTable struct {
	Name     string
	Database string
	Alias    string
}

func NewUnresolvedTable(name, alias string) *UnresolvedTable {
	return &UnresolvedTable{Name: name, Alias: alias}
}

func (u *UnresolvedTable) Schema() sql.Schema { return nil }
func (u *UnresolvedTable) Children() []sql.Node { return nil }
func (u *UnresolvedTable) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("plan.UnresolvedTable: expected 0 children, got %d", len(children))
	}
	return u, nil
}
func (u *UnresolvedTable) Resolved() bool { return false }
func (u *UnresolvedTable) String() string { return fmt.Sprintf("UnresolvedTable(%s)", u.Name) }

// TableFunction invokes a registered table function (e.g.
// generate_series) as a row source. Its arguments cannot reference
// other FROM items, even when written LATERAL: the binder rejects such
// references.
type TableFunction struct {
	FuncName string
	Args     []sql.Expression
	Fn       func(ctx *sql.Context, args []sql.Value) (sql.RowIter, error)
	Alias    string
	schema   sql.Schema
}

func NewTableFunction(name string, args []sql.Expression, fn func(ctx *sql.Context, args []sql.Value) (sql.RowIter, error), schema sql.Schema, alias string) *TableFunction {
	return &TableFunction{FuncName: name, Args: args, Fn: fn, schema: schema, Alias: alias}
}

func (t *TableFunction) Schema() sql.Schema { return t.schema }
func (t *TableFunction) Children() []sql.Node { return nil }
func (t *TableFunction) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("plan.TableFunction: expected 0 children, got %d", len(children))
	}
	return t, nil
}
func (t *TableFunction) Resolved() bool {
	if t.Fn == nil {
		return false
	}
	for _, a := range t.Args {
		if !a.Resolved() {
			return false
		}
	}
	return true
}
func (t *TableFunction) String() string { return fmt.Sprintf("TableFunction(%s)", t.FuncName) }

func (t *TableFunction) Expressions() []sql.Expression { return t.Args }
func (t *TableFunction) WithExpressions(expressions ...sql.Expression) (sql.Node, error) {
	return NewTableFunction(t.FuncName, expressions, t.Fn, t.schema, t.Alias), nil
}
