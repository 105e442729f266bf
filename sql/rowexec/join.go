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

package rowexec

import (
	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/plan"
)

// Join evaluates every plan.JoinKind with a single nested-loop driver:
// the right side is fully buffered, the left side is streamed against
// it row by row. This always produces correct results regardless of
// Condition's shape, at the cost of being the one physical strategy
// this package implements; choosing HashJoin/MergeJoin over it for an
// equi-join is future physical-planner work (sql/analyzer/physical.go).
// AsOfJoin and AnyJoin fall through to the plain inner-join behavior
// below rather than ClickHouse's nearest-match/first-match semantics;
// dialect-specific join matching is not implemented yet.
func Join(ctx *sql.Context, leftSchema, rightSchema sql.Schema, kind plan.JoinKind, condition sql.Expression, left, right Iter) (Iter, error) {
	rightRows, err := DrainRows(ctx, right)
	if err != nil {
		return nil, err
	}
	leftRows, err := DrainRows(ctx, left)
	if err != nil {
		return nil, err
	}

	matches := func(l, r sql.Row) (bool, error) {
		if condition == nil {
			return true, nil
		}
		v, err := condition.Eval(ctx, l.Append(r))
		if err != nil {
			return false, err
		}
		return sql.TriboolFromValue(v).MatchesWhere(), nil
	}

	rightWidth := len(rightSchema)
	nullRight := make(sql.Row, rightWidth)
	for i := range nullRight {
		nullRight[i] = sql.NullValue(rightSchema[i].Type)
	}
	leftWidth := len(leftSchema)
	nullLeft := make(sql.Row, leftWidth)
	for i := range nullLeft {
		nullLeft[i] = sql.NullValue(leftSchema[i].Type)
	}

	var out []sql.Row
	rightMatched := make([]bool, len(rightRows))

	for _, l := range leftRows {
		anyMatch := false
	rightScan:
		for ri, r := range rightRows {
			ok, err := matches(l, r)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			anyMatch = true
			rightMatched[ri] = true
			switch kind {
			case plan.SemiJoin:
				out = append(out, l)
				break rightScan
			case plan.AntiJoin:
				// handled below once the full scan confirms no match
			default:
				out = append(out, l.Append(r))
			}
		}
		switch kind {
		case plan.LeftJoin, plan.FullJoin:
			if !anyMatch {
				out = append(out, l.Append(nullRight))
			}
		case plan.AntiJoin:
			if !anyMatch {
				out = append(out, l)
			}
		}
	}

	if kind == plan.FullJoin || kind == plan.RightJoin {
		for ri, r := range rightRows {
			if !rightMatched[ri] {
				out = append(out, nullLeft.Append(r))
			}
		}
	}

	schema := append(append(sql.Schema{}, leftSchema...), rightSchema...)
	if kind == plan.SemiJoin || kind == plan.AntiJoin {
		schema = leftSchema
	}
	return RowsToIter(schema, out), nil
}
