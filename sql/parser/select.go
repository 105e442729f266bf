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

func (p *Parser) parseWithStatement() (ast.Statement, error) {
	p.advance() // WITH
	with := &ast.WithClause{}
	if p.curIs(token.RECURSIVE) {
		with.Recursive = true
		p.advance()
	}
	for {
		name, err := p.expectName()
		if err != nil {
			return nil, err
		}
		def := ast.CTEDef{Name: name.Literal}
		if p.curIs(token.LPAREN) {
			p.advance()
			for {
				col, err := p.expectName()
				if err != nil {
					return nil, err
				}
				def.Columns = append(def.Columns, col.Literal)
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
		if _, err := p.expect(token.AS); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		query, err := p.parseSetOpExpr(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		def.Query = query
		with.CTEs = append(with.CTEs, def)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	switch s := body.(type) {
	case *ast.SelectStatement:
		s.With = with
		return s, nil
	case *ast.CompoundSelect:
		s.With = with
		return s, nil
	default:
		return body, nil
	}
}

// parseSetOpExpr parses a UNION/INTERSECT/EXCEPT chain, left
// associative (spec.md §4.5, Set operations). prec is unused today
// (set ops have one precedence level) but kept for symmetry with
// parseExpression.
func (p *Parser) parseSetOpExpr(prec int) (ast.Statement, error) {
	left, err := p.parseSelectPrimary()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.UNION) || p.curIs(token.INTERSECT) || p.curIs(token.EXCEPT) {
		pos := p.pos()
		op := p.cur.Kind
		p.advance()
		all := false
		if p.curIs(token.ALL) {
			all = true
			p.advance()
		} else if p.curIs(token.DISTINCT) {
			p.advance()
		}
		right, err := p.parseSelectPrimary()
		if err != nil {
			return nil, err
		}
		left = &ast.CompoundSelect{Left: left, Right: right, Op: op, All: all, Base: ast.Base{P: pos}}
	}
	return left, nil
}

func (p *Parser) parseSelectPrimary() (ast.Statement, error) {
	if p.curIs(token.LPAREN) {
		p.advance()
		inner, err := p.parseSetOpExpr(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseSelectStatement()
}

func (p *Parser) parseSelectStatement() (*ast.SelectStatement, error) {
	pos := p.pos()
	if _, err := p.expect(token.SELECT); err != nil {
		return nil, err
	}
	stmt := &ast.SelectStatement{Base: ast.Base{P: pos}}
	if p.curIs(token.DISTINCT) {
		stmt.Distinct = true
		p.advance()
	} else if p.curIs(token.ALL) {
		p.advance()
	}

	cols, err := p.parseSelectColumns()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols

	if p.curIs(token.FROM) {
		p.advance()
		from, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		stmt.From = from
	}
	if p.curIs(token.WHERE) {
		p.advance()
		where, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	if p.curIs(token.GROUP) {
		p.advance()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		for {
			e, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			stmt.GroupBy = append(stmt.GroupBy, e)
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if p.curIs(token.HAVING) {
		p.advance()
		having, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		stmt.Having = having
	}
	if p.curIs(token.ORDER) {
		p.advance()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		items, err := p.parseOrderByList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = items
	}
	if p.curIs(token.LIMIT) {
		p.advance()
		lim, err := p.parseExpression(precComparison)
		if err != nil {
			return nil, err
		}
		stmt.Limit = lim
	}
	if p.curIs(token.OFFSET) {
		p.advance()
		off, err := p.parseExpression(precComparison)
		if err != nil {
			return nil, err
		}
		stmt.Offset = off
	}
	return stmt, nil
}

func (p *Parser) parseSelectColumns() ([]ast.SelectColumn, error) {
	var cols []ast.SelectColumn
	for {
		col, err := p.parseSelectColumn()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return cols, nil
}

func (p *Parser) parseSelectColumn() (ast.SelectColumn, error) {
	if p.curIs(token.ASTERISK) {
		p.advance()
		return ast.SelectColumn{Star: true}, nil
	}
	if p.curIsName() && p.peekIs(token.DOT) && p.peek2Is(token.ASTERISK) {
		qualifier := p.cur.Literal
		p.advance() // ident
		p.advance() // dot
		p.advance() // asterisk
		return ast.SelectColumn{TableStar: qualifier}, nil
	}
	expr, err := p.parseExpression(lowest)
	if err != nil {
		return ast.SelectColumn{}, err
	}
	col := ast.SelectColumn{Expr: expr}
	if p.curIs(token.AS) {
		p.advance()
		name, err := p.expectName()
		if err != nil {
			return ast.SelectColumn{}, err
		}
		col.Alias = name.Literal
	} else if p.curIsName() {
		col.Alias = p.cur.Literal
		p.advance()
	}
	return col, nil
}

func (p *Parser) parseOrderByList() ([]ast.OrderByItem, error) {
	var items []ast.OrderByItem
	for {
		e, err := p.parseExpression(precComparison)
		if err != nil {
			return nil, err
		}
		item := ast.OrderByItem{Expr: e}
		if p.curIs(token.ASC) {
			p.advance()
		} else if p.curIs(token.DESC) {
			item.Desc = true
			p.advance()
		}
		if p.curIs(token.NULLS) {
			p.advance()
			item.HasNulls = true
			if p.curIs(token.FIRST) {
				item.NullsFirst = true
				p.advance()
			} else if _, err := p.expect(token.LAST); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return items, nil
}

// parseFromClause parses the comma-separated FROM list (each
// additional item an implicit CROSS JOIN against the accumulated
// left side) with explicit JOIN clauses folded in left-associatively.
func (p *Parser) parseFromClause() (ast.TableExpr, error) {
	left, err := p.parseTableExprWithJoins()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.COMMA) {
		pos := p.pos()
		p.advance()
		right, err := p.parseTableExprWithJoins()
		if err != nil {
			return nil, err
		}
		left = &ast.JoinExpr{Left: left, Right: right, Kind: ast.CrossJoin, Base: ast.Base{P: pos}}
	}
	return left, nil
}

func (p *Parser) parseTableExprWithJoins() (ast.TableExpr, error) {
	left, err := p.parseTablePrimary()
	if err != nil {
		return nil, err
	}
	for {
		kind, lateral, ok, err := p.tryParseJoinKind()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		pos := p.pos()
		right, err := p.parseTablePrimary()
		if err != nil {
			return nil, err
		}
		if lateral {
			switch r := right.(type) {
			case *ast.SubqueryTableExpr:
				r.Lateral = true
			case *ast.TableFunctionExpr:
				r.Lateral = true
			}
		}
		join := &ast.JoinExpr{Left: left, Right: right, Kind: kind, Base: ast.Base{P: pos}}
		if p.curIs(token.ON) {
			p.advance()
			cond, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			join.On = cond
		} else if p.curIs(token.USING) {
			p.advance()
			if _, err := p.expect(token.LPAREN); err != nil {
				return nil, err
			}
			for {
				col, err := p.expectName()
				if err != nil {
					return nil, err
				}
				join.Using = append(join.Using, col.Literal)
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
		left = join
	}
	return left, nil
}

// tryParseJoinKind consumes a join keyword sequence if present,
// reporting the JoinKind and whether LATERAL preceded the right side.
func (p *Parser) tryParseJoinKind() (ast.JoinKind, bool, bool, error) {
	lateral := false
	switch p.cur.Kind {
	case token.JOIN:
		p.advance()
		return ast.InnerJoin, false, true, nil
	case token.INNER:
		p.advance()
		if _, err := p.expect(token.JOIN); err != nil {
			return 0, false, false, err
		}
		return ast.InnerJoin, false, true, nil
	case token.LEFT:
		p.advance()
		if p.curIs(token.OUTER) {
			p.advance()
		}
		if _, err := p.expect(token.JOIN); err != nil {
			return 0, false, false, err
		}
		return ast.LeftJoin, false, true, nil
	case token.RIGHT:
		p.advance()
		if p.curIs(token.OUTER) {
			p.advance()
		}
		if _, err := p.expect(token.JOIN); err != nil {
			return 0, false, false, err
		}
		return ast.RightJoin, false, true, nil
	case token.FULL:
		p.advance()
		if p.curIs(token.OUTER) {
			p.advance()
		}
		if _, err := p.expect(token.JOIN); err != nil {
			return 0, false, false, err
		}
		return ast.FullJoin, false, true, nil
	case token.CROSS:
		p.advance()
		if _, err := p.expect(token.JOIN); err != nil {
			return 0, false, false, err
		}
		return ast.CrossJoin, false, true, nil
	case token.ASOF:
		p.advance()
		if _, err := p.expect(token.JOIN); err != nil {
			return 0, false, false, err
		}
		return ast.AsOfJoin, false, true, nil
	case token.ANY:
		p.advance()
		if _, err := p.expect(token.JOIN); err != nil {
			return 0, false, false, err
		}
		return ast.AnyJoin, false, true, nil
	case token.LATERAL:
		// `JOIN LATERAL` and `, LATERAL` reach parseTablePrimary, which
		// reads LATERAL itself; this branch fires only when LATERAL
		// follows a FROM item with neither, and it reports no join.
		lateral = true
		p.advance()
		return ast.InnerJoin, lateral, false, nil
	}
	return 0, false, false, nil
}

func (p *Parser) parseTablePrimary() (ast.TableExpr, error) {
	lateral := false
	if p.curIs(token.LATERAL) {
		lateral = true
		p.advance()
	}
	pos := p.pos()
	switch {
	case p.curIs(token.LPAREN):
		p.advance()
		if p.curIs(token.VALUES) {
			rows, err := p.parseValuesRows()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			v := &ast.ValuesTableExpr{Rows: rows, Base: ast.Base{P: pos}}
			return p.parseTableAlias(v)
		}
		inner, err := p.parseSetOpExpr(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		sub := &ast.SubqueryTableExpr{Query: inner, Lateral: lateral, Base: ast.Base{P: pos}}
		return p.parseTableAlias(sub)
	case p.curIsName():
		name := p.cur.Literal
		p.advance()
		if p.curIs(token.LPAREN) {
			// table function call, e.g. generate_series(1, t.n)
			p.advance()
			var args []ast.Expr
			if !p.curIs(token.RPAREN) {
				for {
					arg, err := p.parseExpression(lowest)
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.curIs(token.COMMA) {
						p.advance()
						continue
					}
					break
				}
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			tf := &ast.TableFunctionExpr{Name: name, Args: args, Lateral: lateral, Base: ast.Base{P: pos}}
			return p.parseTableFunctionAlias(tf)
		}
		database := ""
		if p.curIs(token.DOT) {
			p.advance()
			ident, err := p.expectName()
			if err != nil {
				return nil, err
			}
			database, name = name, ident.Literal
		}
		t := &ast.TableName{Database: database, Name: name, Base: ast.Base{P: pos}}
		return p.parseTableAlias(t)
	default:
		return nil, p.syntaxErrorf("expected table reference, got %s", p.cur.Kind)
	}
}

func (p *Parser) parseTableAlias(te ast.TableExpr) (ast.TableExpr, error) {
	alias := ""
	hasAS := false
	if p.curIs(token.AS) {
		hasAS = true
		p.advance()
	}
	if p.curIsName() {
		alias = p.cur.Literal
		p.advance()
	} else if hasAS {
		return nil, p.syntaxErrorf("expected alias after AS, got %s", p.cur.Kind)
	}
	switch t := te.(type) {
	case *ast.TableName:
		t.Alias = alias
		return t, nil
	case *ast.SubqueryTableExpr:
		t.Alias = alias
		return t, nil
	case *ast.ValuesTableExpr:
		t.Alias = alias
		if p.curIs(token.LPAREN) {
			p.advance()
			for {
				col, err := p.expectName()
				if err != nil {
					return nil, err
				}
				t.Columns = append(t.Columns, col.Literal)
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
		return t, nil
	default:
		return te, nil
	}
}

func (p *Parser) parseTableFunctionAlias(tf *ast.TableFunctionExpr) (ast.TableExpr, error) {
	if p.curIs(token.AS) {
		p.advance()
	}
	if p.curIsName() {
		tf.Alias = p.cur.Literal
		p.advance()
		if p.curIs(token.LPAREN) {
			p.advance()
			for {
				col, err := p.expectName()
				if err != nil {
					return nil, err
				}
				tf.Columns = append(tf.Columns, col.Literal)
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
	}
	return tf, nil
}

func (p *Parser) parseValuesStatement() (*ast.ValuesStatement, error) {
	pos := p.pos()
	rows, err := p.parseValuesRows()
	if err != nil {
		return nil, err
	}
	return &ast.ValuesStatement{Rows: rows, Base: ast.Base{P: pos}}, nil
}

func (p *Parser) parseValuesRows() ([][]ast.Expr, error) {
	if _, err := p.expect(token.VALUES); err != nil {
		return nil, err
	}
	var rows [][]ast.Expr
	for {
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		var row []ast.Expr
		for {
			e, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			row = append(row, e)
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return rows, nil
}
