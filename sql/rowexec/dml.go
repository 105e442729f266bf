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

import "github.com/yachtsql/yachtsql/sql"

// AffectedRows wraps a count into the one-row, one-column result shape
// plan.Insert/Update/Delete/DDL's Schema() (plan.affectedSchema)
// describes.
func AffectedRows(schema sql.Schema, n int64) Iter {
	return RowsToIter(schema, []sql.Row{{sql.NewInt64(n)}})
}

// Insert drains source and writes every row into table, stamping the
// active transaction's xid as inserter (spec.md §4.6, DML).
func Insert(ctx *sql.Context, table sql.InsertableTable, schema sql.Schema, source Iter) (Iter, error) {
	rows, err := DrainRows(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := table.Insert(ctx, rows); err != nil {
		return nil, err
	}
	return AffectedRows(schema, int64(len(rows))), nil
}

// Update drains child (already filtered to the rows the WHERE clause
// matches) and, for each one, builds the new version by evaluating
// every assigned column's expression against the current row and
// keeping tableSchema's original value everywhere else, then hands the
// (old, new) pair to table.Update for the version-chain rewrite.
func Update(ctx *sql.Context, table sql.UpdatableTable, tableSchema sql.Schema, assignments map[string]sql.Expression, resultSchema sql.Schema, child Iter) (Iter, error) {
	rows, err := DrainRows(ctx, child)
	if err != nil {
		return nil, err
	}
	for _, old := range rows {
		newRow := old.Copy()
		for i, col := range tableSchema {
			expr, ok := assignments[col.Name]
			if !ok {
				continue
			}
			v, err := expr.Eval(ctx, old)
			if err != nil {
				return nil, err
			}
			newRow[i] = v
		}
		if err := table.Update(ctx, old, newRow); err != nil {
			return nil, err
		}
	}
	return AffectedRows(resultSchema, int64(len(rows))), nil
}

// Delete drains child and marks every row deleted by the active
// transaction.
func Delete(ctx *sql.Context, table sql.DeletableTable, resultSchema sql.Schema, child Iter) (Iter, error) {
	rows, err := DrainRows(ctx, child)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := table.Delete(ctx, row); err != nil {
			return nil, err
		}
	}
	return AffectedRows(resultSchema, int64(len(rows))), nil
}
