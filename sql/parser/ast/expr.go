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

func (*Ident) exprNode()          {}
func (*NumberLit) exprNode()      {}
func (*StringLit) exprNode()      {}
func (*BoolLit) exprNode()        {}
func (*NullLit) exprNode()        {}
func (*ParamExpr) exprNode()      {}
func (*BinaryExpr) exprNode()     {}
func (*UnaryExpr) exprNode()      {}
func (*BetweenExpr) exprNode()    {}
func (*InExpr) exprNode()         {}
func (*LikeExpr) exprNode()       {}
func (*IsNullExpr) exprNode()     {}
func (*IsDistinctExpr) exprNode() {}
func (*CaseExpr) exprNode()       {}
func (*CastExpr) exprNode()       {}
func (*FuncCallExpr) exprNode()   {}
func (*ExistsExpr) exprNode()     {}
func (*SubqueryExpr) exprNode()   {}
func (*ArrayLit) exprNode()       {}
func (*StructLit) exprNode()      {}
func (*RangeLit) exprNode()       {}
func (*VectorLit) exprNode()      {}
func (*DatePart) exprNode()       {}
func (*TupleExpr) exprNode()      {}
func (*IndexExpr) exprNode()      {}
func (*IntervalLit) exprNode()    {}

// Ident is a column reference, optionally qualified by a table alias
// (Qualifier), e.g. `t.x` or bare `x`.
type Ident struct {
	Base
	Qualifier string
	Name      string
}

// NumberLit is an integer or floating-point literal; IsFloat
// distinguishes "123" from "123.0" so the binder picks INT64 vs
// FLOAT64 without re-scanning the literal text.
type NumberLit struct {
	Base
	Literal string
	IsFloat bool
}

// StringLit is a quoted string literal. Cast handles `'...'::type`
// suffix typing (range/vector/json/uuid literals all lex as a STRING
// token followed by `::type`, per spec.md §8 scenarios 1-4).
type StringLit struct {
	Base
	Value string
}

type BoolLit struct {
	Base
	Value bool
}

type NullLit struct{ Base }

// ParamExpr is a PostgreSQL numbered bind parameter (`$1`); the lexer
// produces no other placeholder form.
type ParamExpr struct {
	Base
	Name string
}

// BinaryExpr covers every infix operator the lexer produces, including
// the PostgreSQL extension spellings (`->`, `->>`, `#>`, `@>`, `<->`,
// `<=>`, `?|`, `?&`, `||`, `-|-`) at the precedences given by
// parser.precedence (spec.md §4.1).
type BinaryExpr struct {
	Base
	Op          token.Kind
	Left, Right Expr
}

// UnaryExpr covers prefix NOT and unary +/-.
type UnaryExpr struct {
	Base
	Op token.Kind
	X  Expr
}

type BetweenExpr struct {
	Base
	X, Low, High Expr
	Not          bool
}

// InExpr is `X [NOT] IN (list...)` or `X [NOT] IN (subquery)`.
type InExpr struct {
	Base
	X        Expr
	List     []Expr
	Subquery *SubqueryExpr
	Not      bool
}

type LikeExpr struct {
	Base
	X, Pattern Expr
	Not        bool
	CaseFold   bool // true for ILIKE
}

type IsNullExpr struct {
	Base
	X   Expr
	Not bool
}

// IsDistinctExpr is `X IS [NOT] DISTINCT FROM Y`, the join-condition
// escape hatch that makes NULL = NULL true (spec.md §4.5, HashJoin
// null handling).
type IsDistinctExpr struct {
	Base
	Left, Right Expr
	Not         bool
}

type WhenClause struct {
	When Expr
	Then Expr
}

// CaseExpr covers both the simple (`CASE x WHEN v THEN ...`) and
// searched (`CASE WHEN cond THEN ...`) forms; Value is nil for the
// searched form.
type CaseExpr struct {
	Base
	Value   Expr
	Whens   []WhenClause
	Else    Expr
}

type CastExpr struct {
	Base
	X        Expr
	TypeName string
	TypeArgs []int
}

// OrderByItem is one ORDER BY / PARTITION BY ... ORDER BY key.
type OrderByItem struct {
	Expr       Expr
	Desc       bool
	NullsFirst bool
	HasNulls   bool
}

// FrameBound mirrors plan.FrameBound at the syntax level.
type FrameBound struct {
	Unbounded bool
	Current   bool
	Offset    Expr
	Preceding bool
}

type FrameSpec struct {
	Mode  token.Kind // ROWS, RANGE, or GROUPS
	Start FrameBound
	End   FrameBound
}

// WindowSpec is an OVER (...) clause.
type WindowSpec struct {
	PartitionBy []Expr
	OrderBy     []OrderByItem
	Frame       *FrameSpec // nil => default frame
}

// FuncCallExpr is a parsed call, not yet bound to an overload; Over is
// non-nil for a window function call, Star is true for `COUNT(*)`.
type FuncCallExpr struct {
	Base
	Name     string
	Args     []Expr
	Distinct bool
	Star     bool
	Over     *WindowSpec
}

type ExistsExpr struct {
	Base
	Subquery *SubqueryExpr
	Not      bool
}

// SubqueryExpr wraps a SELECT used in an expression position (scalar
// subquery, IN/EXISTS subquery, or a FROM-clause derived table).
type SubqueryExpr struct {
	Base
	Query Statement
}

type ArrayLit struct {
	Base
	Elems []Expr
}

type StructField struct {
	Name string
	Expr Expr
}

type StructLit struct {
	Base
	Fields []StructField
}

// RangeLit is an AST shape for a PostgreSQL range constructor
// (`int4range(1,10)`, `daterange(...)`). The parser does not produce
// it: such calls parse as an ordinary FuncCallExpr.
type RangeLit struct {
	Base
	TypeName          string
	Lower, Upper      Expr
	LowerInc, UpperInc bool
}

// VectorLit is a `'[1,0,0]'::vector` literal, lifted out of the
// generic Cast-of-StringLit path once the target type name is seen to
// be "vector" (spec.md §8 scenario 4).
type VectorLit struct {
	Base
	Components []float64
}

// IntervalLit is `INTERVAL '1 day'` / `INTERVAL '3 months'`.
type IntervalLit struct {
	Base
	Value string
}

// DatePart is a BigQuery date-part identifier inside DATE_TRUNC,
// DATE_DIFF, EXTRACT, etc. — never a free string (spec.md §4.1).
type DatePart struct {
	Base
	Name string
}

// TupleExpr is a ClickHouse tuple literal `(1, 'a', 2.0)`.
type TupleExpr struct {
	Base
	Elems []Expr
}

// IndexExpr is array indexing `a[1]` or ClickHouse 1-based tuple
// indexing `t.1`.
type IndexExpr struct {
	Base
	X     Expr
	Index Expr
}
