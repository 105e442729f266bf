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

import "github.com/yachtsql/yachtsql/sql/parser/token"

// Precedence levels, lowest to highest, seeded from PostgreSQL's
// operator table (spec.md §4.1): the extension operators (`->`,
// `->>`, `#>`, `@>`, `<->`, `<=>`, `?|`, `?&`, `-|-`) bind tighter
// than comparison but looser than concatenation, exactly where
// PostgreSQL's generic-operator precedence class sits.
const (
	lowest int = iota
	precOr
	precAnd
	precNot
	precComparison // = <> < > <= >= IS IN BETWEEN LIKE ILIKE IS DISTINCT FROM
	precCustomOp   // -> ->> #> @> <@ <-> <=> ?| ?& -|-
	precConcat     // ||
	precAdditive   // + -
	precMultiplicative
	precUnary
	precCast  // ::
	precIndex // [ ] and ClickHouse `.1` tuple index
)

func (p *Parser) peekPrecedence() int { return precedenceOf(p.peek.Kind) }
func (p *Parser) curPrecedence() int  { return precedenceOf(p.cur.Kind) }

func precedenceOf(k token.Kind) int {
	switch k {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NEQ, token.LT, token.GT, token.LTE, token.GTE,
		token.IS, token.IN, token.BETWEEN, token.LIKE, token.ILIKE:
		return precComparison
	case token.ARROW, token.ARROW2, token.HASHARR, token.CONTAINS,
		token.CONTAINED_BY, token.QMARK_PIPE, token.QMARK_AMP,
		token.DIST_L2, token.DIST_COS, token.ADJACENT:
		return precCustomOp
	case token.CONCAT:
		return precConcat
	case token.PLUS, token.MINUS:
		return precAdditive
	case token.ASTERISK, token.SLASH, token.PERCENT:
		return precMultiplicative
	case token.DOUBLE_COLON:
		return precCast
	case token.LBRACKET, token.DOT:
		return precIndex
	default:
		return lowest
	}
}
