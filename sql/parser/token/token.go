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

// Package token defines the lexical tokens shared by all three
// dialects (spec.md §4.1) and the per-dialect keyword tables used to
// classify identifiers.
package token

// Dialect selects which keyword table and operator set the lexer and
// parser use.
type Dialect int

const (
	PostgreSQL Dialect = iota
	BigQuery
	ClickHouse
)

func (d Dialect) String() string {
	switch d {
	case PostgreSQL:
		return "postgresql"
	case BigQuery:
		return "bigquery"
	case ClickHouse:
		return "clickhouse"
	default:
		return "unknown"
	}
}

// Kind is the type of a lexical token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	COMMENT

	IDENT      // table_name, column_name
	PARAM      // $1, $2, ... (numbered placeholder; `?` lexes as QMARK)
	INT        // 12345
	FLOAT      // 123.45
	STRING     // 'string literal'
	BYTES      // b'...' (BigQuery bytes literal)
	IDENTQUOTE // "quoted identifier" / `quoted identifier`

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	EQ       // =
	NEQ      // <> or !=
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	CONCAT   // ||
	ARROW    // ->
	ARROW2   // ->>
	HASHARR  // #>
	CONTAINS // @>
	CONTAINED_BY // <@
	QMARK_PIPE   // ?|
	QMARK_AMP    // ?&
	QMARK        // ?
	DIST_L2      // <->
	DIST_COS     // <=>
	ADJACENT     // -|-
	DOUBLE_COLON // ::
	ASSIGN       // :=

	// Delimiters
	COMMA
	SEMICOLON
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	DOT
	COLON

	keywordBeg
	SELECT
	FROM
	WHERE
	GROUP
	BY
	HAVING
	ORDER
	LIMIT
	OFFSET
	AS
	DISTINCT
	ALL
	WITH
	RECURSIVE
	UNION
	INTERSECT
	EXCEPT
	JOIN
	INNER
	LEFT
	RIGHT
	FULL
	CROSS
	OUTER
	USING
	LATERAL
	ASOF
	ANY
	ON
	AND
	OR
	NOT
	IN
	EXISTS
	BETWEEN
	LIKE
	ILIKE
	IS
	NULL
	TRUE
	FALSE
	CASE
	WHEN
	THEN
	ELSE
	END
	CAST
	OVER
	PARTITION
	ROWS
	RANGE
	GROUPS
	UNBOUNDED
	PRECEDING
	FOLLOWING
	CURRENT
	ROW
	INSERT
	INTO
	VALUES
	UPDATE
	SET
	DELETE
	CREATE
	DROP
	TABLE
	DATABASE
	PRIMARY
	KEY
	NULLS
	FIRST
	LAST
	ASC
	DESC
	EXTRACT
	INTERVAL
	ARRAY
	STRUCT
	DATE_PART // BigQuery DATE_PART identifier class (YEAR, MONTH, DAY, ...)
	keywordEnd
)

var names = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", COMMENT: "COMMENT",
	IDENT: "IDENT", PARAM: "PARAM", INT: "INT", FLOAT: "FLOAT",
	STRING: "STRING", BYTES: "BYTES", IDENTQUOTE: "IDENTQUOTE",
	PLUS: "+", MINUS: "-", ASTERISK: "*", SLASH: "/", PERCENT: "%",
	EQ: "=", NEQ: "<>", LT: "<", GT: ">", LTE: "<=", GTE: ">=",
	CONCAT: "||", ARROW: "->", ARROW2: "->>", HASHARR: "#>",
	CONTAINS: "@>", CONTAINED_BY: "<@", QMARK_PIPE: "?|", QMARK_AMP: "?&",
	QMARK: "?", DIST_L2: "<->", DIST_COS: "<=>", ADJACENT: "-|-",
	DOUBLE_COLON: "::", ASSIGN: ":=",
	COMMA: ",", SEMICOLON: ";", LPAREN: "(", RPAREN: ")",
	LBRACKET: "[", RBRACKET: "]", LBRACE: "{", RBRACE: "}", DOT: ".", COLON: ":",
}

var keywords = map[string]Kind{
	"SELECT": SELECT, "FROM": FROM, "WHERE": WHERE, "GROUP": GROUP, "BY": BY,
	"HAVING": HAVING, "ORDER": ORDER, "LIMIT": LIMIT, "OFFSET": OFFSET,
	"AS": AS, "DISTINCT": DISTINCT, "ALL": ALL, "WITH": WITH, "RECURSIVE": RECURSIVE,
	"UNION": UNION, "INTERSECT": INTERSECT, "EXCEPT": EXCEPT,
	"JOIN": JOIN, "INNER": INNER, "LEFT": LEFT, "RIGHT": RIGHT, "FULL": FULL,
	"CROSS": CROSS, "OUTER": OUTER, "USING": USING,
	"LATERAL": LATERAL, "ASOF": ASOF, "ANY": ANY, "ON": ON,
	"AND": AND, "OR": OR, "NOT": NOT, "IN": IN, "EXISTS": EXISTS,
	"BETWEEN": BETWEEN, "LIKE": LIKE, "ILIKE": ILIKE, "IS": IS,
	"NULL": NULL, "TRUE": TRUE, "FALSE": FALSE,
	"CASE": CASE, "WHEN": WHEN, "THEN": THEN, "ELSE": ELSE, "END": END,
	"CAST": CAST, "OVER": OVER, "PARTITION": PARTITION,
	"ROWS": ROWS, "RANGE": RANGE, "GROUPS": GROUPS,
	"UNBOUNDED": UNBOUNDED, "PRECEDING": PRECEDING, "FOLLOWING": FOLLOWING,
	"CURRENT": CURRENT, "ROW": ROW,
	"INSERT": INSERT, "INTO": INTO, "VALUES": VALUES, "UPDATE": UPDATE, "SET": SET,
	"DELETE": DELETE, "CREATE": CREATE, "DROP": DROP, "TABLE": TABLE,
	"DATABASE": DATABASE, "PRIMARY": PRIMARY, "KEY": KEY,
	"NULLS": NULLS, "FIRST": FIRST, "LAST": LAST, "ASC": ASC, "DESC": DESC,
	"EXTRACT": EXTRACT, "INTERVAL": INTERVAL, "ARRAY": ARRAY, "STRUCT": STRUCT,
}

// bigQueryDateParts are the identifiers BigQuery's EXTRACT/DATE_PART
// accept; never free strings (spec.md §4.1).
var bigQueryDateParts = map[string]bool{
	"YEAR": true, "QUARTER": true, "MONTH": true, "WEEK": true, "DAY": true,
	"DAYOFWEEK": true, "DAYOFYEAR": true, "HOUR": true, "MINUTE": true,
	"SECOND": true, "MILLISECOND": true, "MICROSECOND": true,
}

// KeywordsPostgreSQL, KeywordsBigQuery, KeywordsClickHouse are the
// per-dialect keyword tables the lexer consults. All three are the same
// table, so ASOF and ANY are keywords in every dialect; BigQuery date
// parts are not keywords here but are recognized by the parser through
// IsDatePart.
var (
	KeywordsPostgreSQL = keywords
	KeywordsBigQuery   = keywords
	KeywordsClickHouse = keywords
)

// IsDatePart reports whether ident is a recognized BigQuery date-part
// name, used only when dialect == BigQuery.
func IsDatePart(ident string) bool {
	return bigQueryDateParts[upper(ident)]
}

func upper(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

// LookupIdent classifies ident as a keyword Kind or plain IDENT.
func LookupIdent(dialect Dialect, ident string) Kind {
	tbl := KeywordsPostgreSQL
	switch dialect {
	case BigQuery:
		tbl = KeywordsBigQuery
	case ClickHouse:
		tbl = KeywordsClickHouse
	}
	if kind, ok := tbl[upper(ident)]; ok {
		return kind
	}
	return IDENT
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	for kw, kind := range keywords {
		if kind == k {
			return kw
		}
	}
	return "UNKNOWN"
}

func (k Kind) IsKeyword() bool { return k > keywordBeg && k < keywordEnd }

// Position locates a token in the source text.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token is one lexical token with its source position.
type Token struct {
	Kind    Kind
	Literal string
	Pos     Position
}
