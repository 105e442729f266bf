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

// Package ast holds the dialect-tagged AST the parser produces
// (spec.md §4.1): one Go type per statement/expression shape, with
// dialect-specific constructs (BigQuery date-parts, ClickHouse tuples
// and join kinds, PostgreSQL LATERAL/range/vector literals) as typed
// variants rather than free strings.
package ast

import "github.com/yachtsql/yachtsql/sql/parser/token"

// Node is the common root of every AST node: it knows its own source
// position for error reporting and round-trip formatting (spec.md §8,
// P9).
type Node interface {
	Pos() token.Position
}

// Statement is a top-level SQL statement.
type Statement interface {
	Node
	stmtNode()
}

// Expr is a scalar expression subtree.
type Expr interface {
	Node
	exprNode()
}

// TableExpr is a FROM-clause item: a bare table name, a subquery, a
// table function call, a VALUES literal, or a Join combining two
// TableExprs.
type TableExpr interface {
	Node
	tableExprNode()
}

// Base carries the source position every node embeds. It is exported
// so callers outside the package (the parser) can set it in a keyed
// composite literal: ast.Ident{Base: ast.Base{P: pos}, Name: "x"}.
type Base struct {
	P token.Position
}

func (b Base) Pos() token.Position { return b.P }
