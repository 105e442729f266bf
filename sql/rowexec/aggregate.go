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
	"fmt"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/expression/function"
	"github.com/yachtsql/yachtsql/sql/plan"
)

// Aggregate drains child, buckets rows by GroupBy's evaluated key, and
// runs one Accumulator per bucket per aggregate call. It is always a
// hash aggregate; spec.md §4.4's sort-then-aggregate alternative (for
// an input already ordered by the group key) is a physical-planner
// optimization not yet wired in (see sql/analyzer/physical.go).
func Aggregate(ctx *sql.Context, schema sql.Schema, groupBy []sql.Expression, aggregates []plan.AggregateCall, child Iter) (Iter, error) {
	rows, err := DrainRows(ctx, child)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		key   sql.Row
		accs  []function.Accumulator
		seen  map[string]bool // per-aggregate DISTINCT dedup, keyed by aggregate index
	}
	order := make([]string, 0)
	buckets := make(map[string]*bucket)

	newBucket := func(key sql.Row) *bucket {
		accs := make([]function.Accumulator, len(aggregates))
		for i, agg := range aggregates {
			accs[i] = agg.Factory()
		}
		return &bucket{key: key, accs: accs, seen: make(map[string]bool)}
	}

	for _, row := range rows {
		key := make(sql.Row, len(groupBy))
		for i, e := range groupBy {
			v, err := e.Eval(ctx, row)
			if err != nil {
				return nil, err
			}
			key[i] = v
		}
		k := rowKey(key)
		b, ok := buckets[k]
		if !ok {
			b = newBucket(key)
			buckets[k] = b
			order = append(order, k)
		}
		for i, agg := range aggregates {
			args := make([]sql.Value, len(agg.Args))
			for j, a := range agg.Args {
				v, err := a.Eval(ctx, row)
				if err != nil {
					return nil, err
				}
				args[j] = v
			}
			if agg.Distinct {
				dk := rowKey(sql.Row(args))
				distinctKey := fmt.Sprintf("%d:%s", i, dk)
				if b.seen[distinctKey] {
					continue
				}
				b.seen[distinctKey] = true
			}
			if err := b.accs[i].Accumulate(ctx, args); err != nil {
				return nil, err
			}
		}
	}

	// A GROUP BY-less aggregate over zero input rows still produces one
	// row (COUNT(*) = 0, SUM(x) = NULL), per spec.md §4.5.
	if len(order) == 0 && len(groupBy) == 0 {
		b := newBucket(nil)
		buckets[""] = b
		order = append(order, "")
	}

	out := make([]sql.Row, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		row := make(sql.Row, 0, len(groupBy)+len(aggregates))
		row = append(row, b.key...)
		for _, acc := range b.accs {
			v, err := acc.Finalize(ctx)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		out = append(out, row)
	}
	return RowsToIter(schema, out), nil
}
