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

// Package parser is the hand-written Pratt/recursive-descent hybrid
// of spec.md §4.1: statements at top level, expressions via
// precedence climbing. The first syntax error halts parsing and is
// reported with a source span, never a partial AST.
package parser

import (
	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/parser/ast"
	"github.com/yachtsql/yachtsql/sql/parser/lexer"
	"github.com/yachtsql/yachtsql/sql/parser/token"
)

// Parser turns a token stream for one Dialect into an ast.Statement.
// peek2 gives one extra token of lookahead beyond peek, needed to
// disambiguate `t.*` (Ident Dot Asterisk) from a qualified-column
// expression without destructively rewinding the lexer.
type Parser struct {
	l       *lexer.Lexer
	dialect token.Dialect
	cur     token.Token
	peek    token.Token
	peek2   token.Token
}

// Parse parses a single SQL statement under the given dialect tag
// (spec.md §4.1). An optional trailing semicolon is consumed; content
// after it is a syntax error (only one statement per call).
func Parse(src string, dialect token.Dialect) (ast.Statement, error) {
	p := &Parser{l: lexer.New(src, dialect), dialect: dialect}
	p.advance()
	p.advance()
	p.advance()
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.curIs(token.SEMICOLON) {
		p.advance()
	}
	if !p.curIs(token.EOF) {
		return nil, p.syntaxErrorf("unexpected %s after statement", p.cur.Literal)
	}
	return stmt, nil
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.peek2
	p.peek2 = p.l.Next()
}

func (p *Parser) curIs(k token.Kind) bool   { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool  { return p.peek.Kind == k }
func (p *Parser) peek2Is(k token.Kind) bool { return p.peek2.Kind == k }

// curIsName reports whether the current token can serve as an
// identifier: a plain IDENT or a dialect-quoted one (`"col"` in
// PostgreSQL/BigQuery, `` `col` `` in ClickHouse).
func (p *Parser) curIsName() bool {
	return p.cur.Kind == token.IDENT || p.cur.Kind == token.IDENTQUOTE
}

func (p *Parser) expectName() (token.Token, error) {
	if !p.curIsName() {
		return token.Token{}, p.syntaxErrorf("expected identifier, got %s", p.cur.Kind)
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

// curIsIdent reports whether the current token is an unreserved
// identifier spelling name (case-insensitive), used for soft
// keywords like dialect function names that aren't in the keyword
// table.
func (p *Parser) curIsIdent(name string) bool {
	return p.cur.Kind == token.IDENT && eqFold(p.cur.Literal, name)
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'a' && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if cb >= 'a' && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if !p.curIs(k) {
		return token.Token{}, p.syntaxErrorf("expected %s, got %s", k, p.cur.Kind)
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

func (p *Parser) syntaxErrorf(format string, args ...interface{}) error {
	span := sql.Span{Line: p.cur.Pos.Line, Column: p.cur.Pos.Column}
	return sql.NewSyntaxError(span, format, args...)
}

func (p *Parser) pos() token.Position { return p.cur.Pos }

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur.Kind {
	case token.WITH:
		return p.parseWithStatement()
	case token.SELECT:
		return p.parseSetOpExpr(lowest)
	case token.LPAREN:
		return p.parseSetOpExpr(lowest)
	case token.VALUES:
		return p.parseValuesStatement()
	case token.INSERT:
		return p.parseInsertStatement()
	case token.UPDATE:
		return p.parseUpdateStatement()
	case token.DELETE:
		return p.parseDeleteStatement()
	case token.CREATE:
		return p.parseCreateTableStatement()
	case token.DROP:
		return p.parseDropTableStatement()
	default:
		return nil, p.syntaxErrorf("unexpected token %s at start of statement", p.cur.Kind)
	}
}

