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

package plan

import (
	"fmt"

	"github.com/yachtsql/yachtsql/sql"
)

// JoinKind names the logical join semantics. The physical compiler
// lowers every kind to sql/rowexec's nested-loop Join; there is no hash
// or merge join.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
	// SemiJoin/AntiJoin appear only after decorrelation rewrites an
	// EXISTS/NOT EXISTS or IN subquery (spec.md §4.3, decorrelation
	// phase).
	SemiJoin
	AntiJoin
	// AsOfJoin and AnyJoin are ClickHouse-specific join kinds (spec.md
	// §4.1 dialect grammar); the parser and binder accept them in every
	// dialect, and sql/rowexec runs them as inner joins.
	AsOfJoin
	AnyJoin
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "INNER"
	case LeftJoin:
		return "LEFT"
	case RightJoin:
		return "RIGHT"
	case FullJoin:
		return "FULL"
	case CrossJoin:
		return "CROSS"
	case SemiJoin:
		return "SEMI"
	case AntiJoin:
		return "ANTI"
	case AsOfJoin:
		return "ASOF"
	case AnyJoin:
		return "ANY"
	default:
		return "UNKNOWN"
	}
}

// Join combines Left and Right under Kind and Condition. Lateral marks
// a join whose right side was written LATERAL. Right cannot reference
// Left's columns: the binder rejects such references, and sql/rowexec
// evaluates Right once, not once per Left row.
type Join struct {
	Left, Right sql.Node
	Kind        JoinKind
	Condition   sql.Expression
	Lateral     bool
}

func NewJoin(kind JoinKind, left, right sql.Node, condition sql.Expression) *Join {
	return &Join{Left: left, Right: right, Kind: kind, Condition: condition}
}

func NewLateralJoin(kind JoinKind, left, right sql.Node, condition sql.Expression) *Join {
	return &Join{Left: left, Right: right, Kind: kind, Condition: condition, Lateral: true}
}

func (j *Join) Schema() sql.Schema {
	switch j.Kind {
	case SemiJoin, AntiJoin:
		return j.Left.Schema()
	default:
		return append(append(sql.Schema{}, j.Left.Schema()...), j.Right.Schema()...)
	}
}
func (j *Join) Children() []sql.Node { return []sql.Node{j.Left, j.Right} }
func (j *Join) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("plan.Join: expected 2 children, got %d", len(children))
	}
	return &Join{Left: children[0], Right: children[1], Kind: j.Kind, Condition: j.Condition, Lateral: j.Lateral}, nil
}
func (j *Join) Resolved() bool {
	if !j.Left.Resolved() || !j.Right.Resolved() {
		return false
	}
	return j.Condition == nil || j.Condition.Resolved()
}
func (j *Join) String() string { return fmt.Sprintf("%sJoin", j.Kind) }

func (j *Join) Expressions() []sql.Expression {
	if j.Condition == nil {
		return nil
	}
	return []sql.Expression{j.Condition}
}
func (j *Join) WithExpressions(expressions ...sql.Expression) (sql.Node, error) {
	switch len(expressions) {
	case 0:
		return &Join{Left: j.Left, Right: j.Right, Kind: j.Kind, Condition: nil, Lateral: j.Lateral}, nil
	case 1:
		return &Join{Left: j.Left, Right: j.Right, Kind: j.Kind, Condition: expressions[0], Lateral: j.Lateral}, nil
	default:
		return nil, fmt.Errorf("plan.Join: expected 0 or 1 expressions, got %d", len(expressions))
	}
}
