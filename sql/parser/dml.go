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

package parser

import (
	"github.com/yachtsql/yachtsql/sql/parser/ast"
	"github.com/yachtsql/yachtsql/sql/parser/token"
)

func (p *Parser) parseTableRef() (database, name string, err error) {
	tok, err := p.expectName()
	if err != nil {
		return "", "", err
	}
	name = tok.Literal
	if p.curIs(token.DOT) {
		p.advance()
		ident, err := p.expectName()
		if err != nil {
			return "", "", err
		}
		database, name = name, ident.Literal
	}
	return database, name, nil
}

func (p *Parser) parseInsertStatement() (*ast.InsertStatement, error) {
	pos := p.pos()
	p.advance() // INSERT
	if _, err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	database, table, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt := &ast.InsertStatement{Base: ast.Base{P: pos}, Database: database, Table: table}
	if p.curIs(token.LPAREN) {
		p.advance()
		for {
			col, err := p.expectName()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col.Literal)
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}
	if p.curIs(token.VALUES) {
		values, err := p.parseValuesStatement()
		if err != nil {
			return nil, err
		}
		stmt.Source = values
	} else {
		source, err := p.parseSetOpExpr(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Source = source
	}
	return stmt, nil
}

func (p *Parser) parseUpdateStatement() (*ast.UpdateStatement, error) {
	pos := p.pos()
	p.advance() // UPDATE
	database, table, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt := &ast.UpdateStatement{Base: ast.Base{P: pos}, Database: database, Table: table}
	if p.curIs(token.AS) {
		p.advance()
	}
	if p.curIsName() {
		stmt.Alias = p.cur.Literal
		p.advance()
	}
	if _, err := p.expect(token.SET); err != nil {
		return nil, err
	}
	for {
		col, err := p.expectName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		val, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Assignments = append(stmt.Assignments, ast.Assignment{Column: col.Literal, Value: val})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if p.curIs(token.WHERE) {
		p.advance()
		where, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

func (p *Parser) parseDeleteStatement() (*ast.DeleteStatement, error) {
	pos := p.pos()
	p.advance() // DELETE
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	database, table, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt := &ast.DeleteStatement{Base: ast.Base{P: pos}, Database: database, Table: table}
	if p.curIs(token.AS) {
		p.advance()
	}
	if p.curIsName() {
		stmt.Alias = p.cur.Literal
		p.advance()
	}
	if p.curIs(token.WHERE) {
		p.advance()
		where, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

func (p *Parser) parseCreateTableStatement() (*ast.CreateTableStatement, error) {
	pos := p.pos()
	p.advance() // CREATE
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	stmt := &ast.CreateTableStatement{Base: ast.Base{P: pos}}
	if p.curIsIdent("IF") {
		p.advance()
		if _, err := p.expect(token.NOT); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}
	database, name, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt.Database = database
	stmt.Name = name
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseColumnDef() (ast.ColumnDef, error) {
	name, err := p.expectName()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	typeName, typeArgs, err := p.parseTypeName()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	col := ast.ColumnDef{Name: name.Literal, TypeName: typeName, TypeArgs: typeArgs, Nullable: true}
	for {
		switch {
		case p.curIs(token.NOT) && p.peekIs(token.NULL):
			p.advance()
			p.advance()
			col.Nullable = false
		case p.curIs(token.NULL):
			p.advance()
			col.Nullable = true
		case p.curIs(token.PRIMARY):
			p.advance()
			if _, err := p.expect(token.KEY); err != nil {
				return ast.ColumnDef{}, err
			}
			col.PrimaryKey = true
			col.Nullable = false
		default:
			return col, nil
		}
	}
}

func (p *Parser) parseDropTableStatement() (*ast.DropTableStatement, error) {
	pos := p.pos()
	p.advance() // DROP
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	stmt := &ast.DropTableStatement{Base: ast.Base{P: pos}}
	if p.curIsIdent("IF") {
		p.advance()
		if _, err := p.expect(token.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}
	database, name, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt.Database = database
	stmt.Name = name
	return stmt, nil
}
