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

package ast

import "github.com/yachtsql/yachtsql/sql/parser/token"

func (*SelectStatement) stmtNode()     {}
func (*CompoundSelect) stmtNode()      {}
func (*ValuesStatement) stmtNode()     {}
func (*InsertStatement) stmtNode()     {}
func (*UpdateStatement) stmtNode()     {}
func (*DeleteStatement) stmtNode()     {}
func (*CreateTableStatement) stmtNode() {}
func (*DropTableStatement) stmtNode()  {}

func (*TableName) tableExprNode()      {}
func (*SubqueryTableExpr) tableExprNode() {}
func (*TableFunctionExpr) tableExprNode() {}
func (*ValuesTableExpr) tableExprNode()   {}
func (*JoinExpr) tableExprNode()       {}

// CTEDef is one `WITH name (cols) AS (query)` binding.
type CTEDef struct {
	Name    string
	Columns []string
	Query   Statement
}

// WithClause is the optional `WITH [RECURSIVE] cte, cte, ...` prefix
// shared by SELECT and the DML statements.
type WithClause struct {
	Recursive bool
	CTEs      []CTEDef
}

// SelectColumn is one SELECT-list item: `Star` for `*`, `TableStar`
// for `t.*`, otherwise Expr with an optional Alias.
type SelectColumn struct {
	Star      bool
	TableStar string
	Expr      Expr
	Alias     string
}

// SelectStatement is a single (non-compound) SELECT.
type SelectStatement struct {
	Base
	With     *WithClause
	Distinct bool
	Columns  []SelectColumn
	From     TableExpr // nil for `SELECT 1` with no FROM
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []OrderByItem
	Limit    Expr
	Offset   Expr
}

// CompoundSelect chains two statements with UNION/INTERSECT/EXCEPT.
// With is non-nil only when a `WITH` clause prefixes the whole
// compound statement (the CTEs scope over both sides).
type CompoundSelect struct {
	Base
	With        *WithClause
	Left, Right Statement
	Op          token.Kind // UNION, INTERSECT, EXCEPT
	All         bool
}

// ValuesStatement is a standalone `VALUES (...), (...)` statement
// (spec.md §4.5, VALUES; §8, P7).
type ValuesStatement struct {
	Base
	Rows [][]Expr
}

// TableName is a bare `[db.]table [AS alias]` FROM item.
type TableName struct {
	Base
	Database string
	Name     string
	Alias    string
}

// SubqueryTableExpr is a derived table `(SELECT ...) AS alias`,
// optionally LATERAL.
type SubqueryTableExpr struct {
	Base
	Query   Statement
	Alias   string
	Lateral bool
}

// TableFunctionExpr is a table function invoked as a FROM item (e.g.
// `LATERAL generate_series(1, t.n) g`, spec.md §8 scenario 6).
type TableFunctionExpr struct {
	Base
	Name    string
	Args    []Expr
	Alias   string
	Columns []string
	Lateral bool
}

// ValuesTableExpr is `(VALUES (...), (...)) AS t(col1, col2)` used as a
// FROM item.
type ValuesTableExpr struct {
	Base
	Rows    [][]Expr
	Alias   string
	Columns []string
}

// JoinExpr combines Left and Right under Kind; AsOf/Any select
// ClickHouse's join kinds (spec.md §4.1).
type JoinExpr struct {
	Base
	Left, Right TableExpr
	Kind        JoinKind
	On          Expr
	Using       []string
	Natural     bool
}

type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
	AsOfJoin
	AnyJoin
)

// InsertStatement is `INSERT INTO table (cols) VALUES (...) | SELECT ...`.
type InsertStatement struct {
	Base
	Database string
	Table    string
	Columns  []string
	Source   Statement // *ValuesStatement, *SelectStatement or *CompoundSelect
}

// Assignment is one `col = expr` in a SET clause.
type Assignment struct {
	Column string
	Value  Expr
}

type UpdateStatement struct {
	Base
	Database    string
	Table       string
	Alias       string
	Assignments []Assignment
	Where       Expr
}

type DeleteStatement struct {
	Base
	Database string
	Table    string
	Alias    string
	Where    Expr
}

// ColumnDef is one column in a CREATE TABLE column list.
type ColumnDef struct {
	Name       string
	TypeName   string
	TypeArgs   []int
	Nullable   bool
	PrimaryKey bool
}

type CreateTableStatement struct {
	Base
	Database    string
	Name        string
	Columns     []ColumnDef
	IfNotExists bool
}

type DropTableStatement struct {
	Base
	Database string
	Name     string
	IfExists bool
}
