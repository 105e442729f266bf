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
	"sort"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/plan"
)

// Sort drains child, orders the result by fields, and replays it. ORDER
// BY has no streaming physical alternative here (no index to drive a
// pre-sorted scan from), so this is always a full materialize-then-sort
// the way a merge-join's build side would be.
func Sort(ctx *sql.Context, schema sql.Schema, fields []plan.SortField, child Iter) (Iter, error) {
	rows, err := DrainRows(ctx, child)
	if err != nil {
		return nil, err
	}
	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		less, err := rowLess(ctx, fields, rows[i], rows[j])
		if err != nil {
			sortErr = err
		}
		return less
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return RowsToIter(schema, rows), nil
}

// rowLess compares two rows key by key: NULLs sort according to each
// field's NullsOrder independent of Desc, then non-NULL values compare
// via the field's own Type.Compare (spec.md §4.5, Sort).
func rowLess(ctx *sql.Context, fields []plan.SortField, a, b sql.Row) (bool, error) {
	for _, f := range fields {
		av, err := f.Expr.Eval(ctx, a)
		if err != nil {
			return false, err
		}
		bv, err := f.Expr.Eval(ctx, b)
		if err != nil {
			return false, err
		}
		if av.IsNull() || bv.IsNull() {
			if av.IsNull() && bv.IsNull() {
				continue
			}
			// NULL placement follows Nulls regardless of Desc: a field
			// declared NULLS FIRST always puts NULLs first.
			if av.IsNull() {
				return f.Nulls == plan.NullsFirst, nil
			}
			return f.Nulls != plan.NullsFirst, nil
		}
		cmp, err := av.Type().Compare(av.Payload(), bv.Payload())
		if err != nil {
			return false, err
		}
		if cmp == 0 {
			continue
		}
		if f.Desc {
			return cmp > 0, nil
		}
		return cmp < 0, nil
	}
	return false, nil
}
