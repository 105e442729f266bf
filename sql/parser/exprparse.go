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
	"strconv"
	"strings"

	"github.com/yachtsql/yachtsql/sql/parser/ast"
	"github.com/yachtsql/yachtsql/sql/parser/token"
)

// parseExpression is the precedence-climbing core: it parses one
// prefix term then repeatedly folds in postfix/infix operators whose
// precedence exceeds prec (spec.md §4.1).
func (p *Parser) parseExpression(prec int) (ast.Expr, error) {
	left, err := p.parsePrefixExpr()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case prec < precCast && p.peekIs(token.DOUBLE_COLON):
			p.advance()
			left, err = p.finishCast(left)
		case prec < precIndex && p.peekIs(token.LBRACKET):
			p.advance()
			left, err = p.finishArrayIndex(left)
		case prec < precIndex && p.peekIs(token.DOT) && p.peek2Is(token.INT):
			p.advance()
			p.advance()
			left, err = p.finishTupleIndex(left)
		case prec < precComparison && p.peekIs(token.BETWEEN):
			p.advance()
			left, err = p.finishBetween(left, false)
		case prec < precComparison && p.peekIs(token.NOT) && p.isNotSuffix():
			p.advance() // NOT
			left, err = p.finishNotSuffix(left)
		case prec < precComparison && p.peekIs(token.IN):
			p.advance()
			left, err = p.finishIn(left, false)
		case prec < precComparison && (p.peekIs(token.LIKE) || p.peekIs(token.ILIKE)):
			caseFold := p.peek.Kind == token.ILIKE
			p.advance()
			left, err = p.finishLike(left, false, caseFold)
		case prec < precComparison && p.peekIs(token.IS):
			p.advance()
			left, err = p.finishIs(left)
		case isBinaryToken(p.peek.Kind) && prec < precedenceOf(p.peek.Kind):
			op := p.peek.Kind
			p.advance()
			left, err = p.finishBinary(left, op)
		default:
			return left, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) isNotSuffix() bool {
	return p.peek2Is(token.BETWEEN) || p.peek2Is(token.IN) ||
		p.peek2Is(token.LIKE) || p.peek2Is(token.ILIKE)
}

func isBinaryToken(k token.Kind) bool {
	switch k {
	case token.AND, token.OR,
		token.EQ, token.NEQ, token.LT, token.GT, token.LTE, token.GTE,
		token.CONCAT, token.ARROW, token.ARROW2, token.HASHARR,
		token.CONTAINS, token.CONTAINED_BY, token.QMARK_PIPE, token.QMARK_AMP,
		token.DIST_L2, token.DIST_COS, token.ADJACENT,
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT:
		return true
	default:
		return false
	}
}

func (p *Parser) finishBinary(left ast.Expr, op token.Kind) (ast.Expr, error) {
	pos := p.pos()
	rprec := precedenceOf(op)
	p.advance()
	right, err := p.parseExpression(rprec)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Base: ast.Base{P: pos}, Op: op, Left: left, Right: right}, nil
}

func (p *Parser) finishCast(left ast.Expr) (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	typeName, typeArgs, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if s, ok := left.(*ast.StringLit); ok && strings.EqualFold(typeName, "vector") {
		comps, err := parseVectorComponents(s.Value)
		if err != nil {
			return nil, err
		}
		return &ast.VectorLit{Base: ast.Base{P: pos}, Components: comps}, nil
	}
	return &ast.CastExpr{Base: ast.Base{P: pos}, X: left, TypeName: typeName, TypeArgs: typeArgs}, nil
}

func parseVectorComponents(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *Parser) finishArrayIndex(left ast.Expr) (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	idx, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.IndexExpr{Base: ast.Base{P: pos}, X: left, Index: idx}, nil
}

func (p *Parser) finishTupleIndex(left ast.Expr) (ast.Expr, error) {
	pos := p.pos()
	idx := &ast.NumberLit{Base: ast.Base{P: pos}, Literal: p.cur.Literal}
	p.advance()
	return &ast.IndexExpr{Base: ast.Base{P: pos}, X: left, Index: idx}, nil
}

func (p *Parser) finishBetween(left ast.Expr, not bool) (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	low, err := p.parseExpression(precComparison)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AND); err != nil {
		return nil, err
	}
	high, err := p.parseExpression(precComparison)
	if err != nil {
		return nil, err
	}
	return &ast.BetweenExpr{Base: ast.Base{P: pos}, X: left, Low: low, High: high, Not: not}, nil
}

func (p *Parser) finishNotSuffix(left ast.Expr) (ast.Expr, error) {
	switch p.peek.Kind {
	case token.BETWEEN:
		p.advance()
		return p.finishBetween(left, true)
	case token.IN:
		p.advance()
		return p.finishIn(left, true)
	case token.LIKE, token.ILIKE:
		caseFold := p.peek.Kind == token.ILIKE
		p.advance()
		return p.finishLike(left, true, caseFold)
	default:
		return nil, p.syntaxErrorf("expected BETWEEN, IN or LIKE after NOT, got %s", p.peek.Kind)
	}
}

func (p *Parser) finishIn(left ast.Expr, not bool) (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	if p.curIs(token.SELECT) || p.curIs(token.WITH) {
		sub, err := p.parseSubqueryBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.InExpr{Base: ast.Base{P: pos}, X: left, Subquery: sub, Not: not}, nil
	}
	var list []ast.Expr
	for {
		e, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.InExpr{Base: ast.Base{P: pos}, X: left, List: list, Not: not}, nil
}

func (p *Parser) finishLike(left ast.Expr, not, caseFold bool) (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	pattern, err := p.parseExpression(precComparison)
	if err != nil {
		return nil, err
	}
	return &ast.LikeExpr{Base: ast.Base{P: pos}, X: left, Pattern: pattern, Not: not, CaseFold: caseFold}, nil
}

func (p *Parser) finishIs(left ast.Expr) (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	not := false
	if p.curIs(token.NOT) {
		not = true
		p.advance()
	}
	switch {
	case p.curIs(token.NULL):
		p.advance()
		return &ast.IsNullExpr{Base: ast.Base{P: pos}, X: left, Not: not}, nil
	case p.curIs(token.DISTINCT):
		p.advance()
		if _, err := p.expect(token.FROM); err != nil {
			return nil, err
		}
		right, err := p.parseExpression(precComparison)
		if err != nil {
			return nil, err
		}
		return &ast.IsDistinctExpr{Base: ast.Base{P: pos}, Left: left, Right: right, Not: not}, nil
	case p.curIs(token.TRUE) || p.curIs(token.FALSE):
		val := p.curIs(token.TRUE)
		p.advance()
		op := token.EQ
		if not {
			op = token.NEQ
		}
		lit := &ast.BoolLit{Base: ast.Base{P: pos}, Value: val}
		return &ast.BinaryExpr{Base: ast.Base{P: pos}, Op: op, Left: left, Right: lit}, nil
	default:
		return nil, p.syntaxErrorf("expected NULL, TRUE, FALSE or DISTINCT FROM after IS, got %s", p.cur.Kind)
	}
}

// parseSubqueryBody parses the statement inside a parenthesized
// subquery position (already past the opening LPAREN) and wraps it.
func (p *Parser) parseSubqueryBody() (*ast.SubqueryExpr, error) {
	pos := p.pos()
	var stmt ast.Statement
	var err error
	if p.curIs(token.WITH) {
		stmt, err = p.parseWithStatement()
	} else {
		stmt, err = p.parseSetOpExpr(lowest)
	}
	if err != nil {
		return nil, err
	}
	return &ast.SubqueryExpr{Base: ast.Base{P: pos}, Query: stmt}, nil
}

func (p *Parser) parsePrefixExpr() (ast.Expr, error) {
	pos := p.pos()
	switch p.cur.Kind {
	case token.INT:
		lit := p.cur.Literal
		p.advance()
		return &ast.NumberLit{Base: ast.Base{P: pos}, Literal: lit}, nil
	case token.FLOAT:
		lit := p.cur.Literal
		p.advance()
		return &ast.NumberLit{Base: ast.Base{P: pos}, Literal: lit, IsFloat: true}, nil
	case token.STRING:
		lit := p.cur.Literal
		p.advance()
		return &ast.StringLit{Base: ast.Base{P: pos}, Value: lit}, nil
	case token.TRUE:
		p.advance()
		return &ast.BoolLit{Base: ast.Base{P: pos}, Value: true}, nil
	case token.FALSE:
		p.advance()
		return &ast.BoolLit{Base: ast.Base{P: pos}, Value: false}, nil
	case token.NULL:
		p.advance()
		return &ast.NullLit{Base: ast.Base{P: pos}}, nil
	case token.PARAM:
		lit := p.cur.Literal
		p.advance()
		return &ast.ParamExpr{Base: ast.Base{P: pos}, Name: lit}, nil
	case token.MINUS, token.PLUS:
		op := p.cur.Kind
		p.advance()
		x, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.Base{P: pos}, Op: op, X: x}, nil
	case token.NOT:
		p.advance()
		x, err := p.parseExpression(precNot)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.Base{P: pos}, Op: token.NOT, X: x}, nil
	case token.LPAREN:
		return p.parseParenExpr()
	case token.CASE:
		return p.parseCaseExpr()
	case token.CAST:
		return p.parseCastCallExpr()
	case token.EXTRACT:
		return p.parseExtractExpr()
	case token.INTERVAL:
		return p.parseIntervalExpr()
	case token.ARRAY:
		return p.parseArrayExpr()
	case token.STRUCT:
		return p.parseStructExpr()
	case token.EXISTS:
		return p.parseExistsExpr()
	case token.IDENT, token.IDENTQUOTE:
		return p.parseIdentOrCallExpr()
	default:
		return nil, p.syntaxErrorf("unexpected token %s in expression", p.cur.Kind)
	}
}

func (p *Parser) parseParenExpr() (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	if p.curIs(token.SELECT) || p.curIs(token.WITH) {
		sub, err := p.parseSubqueryBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return sub, nil
	}
	first, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if p.curIs(token.COMMA) {
		elems := []ast.Expr{first}
		for p.curIs(token.COMMA) {
			p.advance()
			e, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.TupleExpr{Base: ast.Base{P: pos}, Elems: elems}, nil
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *Parser) parseCaseExpr() (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	var value ast.Expr
	if !p.curIs(token.WHEN) {
		v, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		value = v
	}
	var whens []ast.WhenClause
	for p.curIs(token.WHEN) {
		p.advance()
		cond, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		then, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		whens = append(whens, ast.WhenClause{When: cond, Then: then})
	}
	var elseExpr ast.Expr
	if p.curIs(token.ELSE) {
		p.advance()
		e, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		elseExpr = e
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return &ast.CaseExpr{Base: ast.Base{P: pos}, Value: value, Whens: whens, Else: elseExpr}, nil
}

func (p *Parser) parseCastCallExpr() (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	x, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}
	typeName, typeArgs, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.CastExpr{Base: ast.Base{P: pos}, X: x, TypeName: typeName, TypeArgs: typeArgs}, nil
}

func (p *Parser) parseExtractExpr() (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	part, err := p.parseDatePartArg()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	x, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.FuncCallExpr{Base: ast.Base{P: pos}, Name: "EXTRACT", Args: []ast.Expr{part, x}}, nil
}

func (p *Parser) parseDatePartArg() (ast.Expr, error) {
	pos := p.pos()
	if p.curIs(token.IDENT) {
		name := p.cur.Literal
		p.advance()
		return &ast.DatePart{Base: ast.Base{P: pos}, Name: name}, nil
	}
	return nil, p.syntaxErrorf("expected date part name, got %s", p.cur.Kind)
}

func (p *Parser) parseIntervalExpr() (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	str, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	return &ast.IntervalLit{Base: ast.Base{P: pos}, Value: str.Literal}, nil
}

func (p *Parser) parseArrayExpr() (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	if _, err := p.expect(token.LBRACKET); err != nil {
		return nil, err
	}
	var elems []ast.Expr
	if !p.curIs(token.RBRACKET) {
		for {
			e, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Base: ast.Base{P: pos}, Elems: elems}, nil
}

func (p *Parser) parseStructExpr() (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var fields []ast.StructField
	if !p.curIs(token.RPAREN) {
		for {
			e, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			name := ""
			if p.curIs(token.AS) {
				p.advance()
				id, err := p.expectName()
				if err != nil {
					return nil, err
				}
				name = id.Literal
			}
			fields = append(fields, ast.StructField{Name: name, Expr: e})
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
	return &ast.StructLit{Base: ast.Base{P: pos}, Fields: fields}, nil
}

func (p *Parser) parseExistsExpr() (ast.Expr, error) {
	pos := p.pos()
	p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	sub, err := p.parseSubqueryBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.ExistsExpr{Base: ast.Base{P: pos}, Subquery: sub}, nil
}

func (p *Parser) parseIdentOrCallExpr() (ast.Expr, error) {
	pos := p.pos()
	name := p.cur.Literal
	p.advance()
	if p.curIs(token.DOT) && !p.peekIsIntLiteral() {
		p.advance()
		field, err := p.expectName()
		if err != nil {
			return nil, err
		}
		return &ast.Ident{Base: ast.Base{P: pos}, Qualifier: name, Name: field.Literal}, nil
	}
	if p.curIs(token.LPAREN) {
		return p.finishFuncCall(name, pos)
	}
	if p.dialect == token.BigQuery && token.IsDatePart(name) {
		return &ast.DatePart{Base: ast.Base{P: pos}, Name: name}, nil
	}
	return &ast.Ident{Base: ast.Base{P: pos}, Name: name}, nil
}

// peekIsIntLiteral guards against swallowing a ClickHouse tuple index
// (`t.1`) as if it were a qualified identifier's dot.
func (p *Parser) peekIsIntLiteral() bool { return p.peekIs(token.INT) }

func (p *Parser) finishFuncCall(name string, pos token.Position) (ast.Expr, error) {
	p.advance()
	call := &ast.FuncCallExpr{Base: ast.Base{P: pos}, Name: name}
	if p.curIs(token.ASTERISK) {
		p.advance()
		call.Star = true
	} else if !p.curIs(token.RPAREN) {
		if p.curIs(token.DISTINCT) {
			call.Distinct = true
			p.advance()
		}
		for {
			arg, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
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
	if p.curIs(token.OVER) {
		p.advance()
		spec, err := p.parseWindowSpec()
		if err != nil {
			return nil, err
		}
		call.Over = spec
	}
	return call, nil
}

func (p *Parser) parseWindowSpec() (*ast.WindowSpec, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	spec := &ast.WindowSpec{}
	if p.curIs(token.PARTITION) {
		p.advance()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		for {
			e, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			spec.PartitionBy = append(spec.PartitionBy, e)
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
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
		spec.OrderBy = items
	}
	if p.curIs(token.ROWS) || p.curIs(token.RANGE) || p.curIs(token.GROUPS) {
		frame, err := p.parseFrameSpec()
		if err != nil {
			return nil, err
		}
		spec.Frame = frame
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return spec, nil
}

func (p *Parser) parseFrameSpec() (*ast.FrameSpec, error) {
	mode := p.cur.Kind
	p.advance()
	frame := &ast.FrameSpec{Mode: mode}
	if p.curIs(token.BETWEEN) {
		p.advance()
		start, err := p.parseFrameBound()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.AND); err != nil {
			return nil, err
		}
		end, err := p.parseFrameBound()
		if err != nil {
			return nil, err
		}
		frame.Start = start
		frame.End = end
		return frame, nil
	}
	start, err := p.parseFrameBound()
	if err != nil {
		return nil, err
	}
	frame.Start = start
	frame.End = ast.FrameBound{Current: true}
	return frame, nil
}

func (p *Parser) parseFrameBound() (ast.FrameBound, error) {
	if p.curIs(token.UNBOUNDED) {
		p.advance()
		if p.curIs(token.PRECEDING) {
			p.advance()
			return ast.FrameBound{Unbounded: true, Preceding: true}, nil
		}
		if _, err := p.expect(token.FOLLOWING); err != nil {
			return ast.FrameBound{}, err
		}
		return ast.FrameBound{Unbounded: true}, nil
	}
	if p.curIs(token.CURRENT) {
		p.advance()
		if _, err := p.expect(token.ROW); err != nil {
			return ast.FrameBound{}, err
		}
		return ast.FrameBound{Current: true}, nil
	}
	offset, err := p.parseExpression(precAdditive)
	if err != nil {
		return ast.FrameBound{}, err
	}
	if p.curIs(token.PRECEDING) {
		p.advance()
		return ast.FrameBound{Offset: offset, Preceding: true}, nil
	}
	if _, err := p.expect(token.FOLLOWING); err != nil {
		return ast.FrameBound{}, err
	}
	return ast.FrameBound{Offset: offset}, nil
}

// parseTypeName parses a type name with optional (n[,n]) arguments,
// e.g. `numeric(10,2)`, `varchar(50)`, `timestamp`, `ARRAY<INT64>`
// (the angle-bracket element type is skipped; the function registry
// resolves element typing from context, spec.md §4.1 dialect notes).
func (p *Parser) parseTypeName() (string, []int, error) {
	var name string
	if p.curIs(token.ARRAY) {
		name = "ARRAY"
		p.advance()
		depth := 0
		for p.curIs(token.LT) || depth > 0 {
			switch {
			case p.curIs(token.EOF):
				return "", nil, p.syntaxErrorf("unterminated ARRAY<...> type")
			case p.curIs(token.LT):
				depth++
			case p.curIs(token.GT):
				depth--
			}
			p.advance()
		}
	} else {
		tok, err := p.expect(token.IDENT)
		if err != nil {
			return "", nil, err
		}
		name = tok.Literal
	}
	var args []int
	if p.curIs(token.LPAREN) {
		p.advance()
		for {
			n, err := p.expect(token.INT)
			if err != nil {
				return "", nil, err
			}
			v, convErr := strconv.Atoi(n.Literal)
			if convErr != nil {
				return "", nil, p.syntaxErrorf("invalid type argument %q", n.Literal)
			}
			args = append(args, v)
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return "", nil, err
		}
	}
	return name, args, nil
}
