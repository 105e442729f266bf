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
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/expression"
	"github.com/yachtsql/yachtsql/sql/types"
	"github.com/yachtsql/yachtsql/storage"
)

func dmlSchema() sql.Schema {
	return sql.Schema{
		{Name: "id", Type: types.Int64, Nullable: false},
		{Name: "name", Type: types.String, Nullable: true},
	}
}

func dmlCtx(tm *storage.TxManager, isolation sql.IsolationLevel) *sql.Context {
	session := sql.NewSession()
	session.SetTransaction(tm.Begin(isolation))
	return sql.NewContext(context.Background(), session)
}

func drainAll(t *testing.T, ctx *sql.Context, tbl *storage.Table) []sql.Row {
	t.Helper()
	parts, err := tbl.Partitions(ctx)
	require.NoError(t, err)
	var rows []sql.Row
	for _, p := range parts {
		for {
			batch, err := p.Next(ctx)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			for i := 0; i < batch.NumRows(); i++ {
				rows = append(rows, batch.Row(i))
			}
		}
		require.NoError(t, p.Close(ctx))
	}
	return rows
}

func TestInsertWritesEveryDrainedRowAndReportsCount(t *testing.T) {
	tm := storage.NewTxManager()
	tbl := storage.NewTable("t", dmlSchema(), tm)
	ctx := dmlCtx(tm, sql.ReadCommitted)

	source := RowsToIter(dmlSchema(), []sql.Row{
		{sql.NewInt64(1), sql.NewString("a")},
		{sql.NewInt64(2), sql.NewString("b")},
	})

	iter, err := Insert(ctx, tbl, affectedRowsSchema(), source)
	require.NoError(t, err)
	rows, err := DrainRows(ctx, iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(2)}}, rows)

	require.Len(t, drainAll(t, ctx, tbl), 2)
}

func TestUpdateAppliesAssignmentsAndLeavesOtherColumnsAlone(t *testing.T) {
	tm := storage.NewTxManager()
	tbl := storage.NewTable("t", dmlSchema(), tm)
	ctx := dmlCtx(tm, sql.ReadCommitted)

	require.NoError(t, tbl.Insert(ctx, []sql.Row{{sql.NewInt64(1), sql.NewString("a")}}))

	child := RowsToIter(dmlSchema(), []sql.Row{{sql.NewInt64(1), sql.NewString("a")}})
	assignments := map[string]sql.Expression{
		"name": expression.NewLiteral(sql.NewString("updated")),
	}

	iter, err := Update(ctx, tbl, dmlSchema(), assignments, affectedRowsSchema(), child)
	require.NoError(t, err)
	rows, err := DrainRows(ctx, iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(1)}}, rows)

	visible := drainAll(t, ctx, tbl)
	require.Len(t, visible, 1)
	require.Equal(t, int64(1), visible[0][0].Payload())
	require.Equal(t, "updated", visible[0][1].Payload())
}

func TestDeleteMarksEveryDrainedRowDeleted(t *testing.T) {
	tm := storage.NewTxManager()
	tbl := storage.NewTable("t", dmlSchema(), tm)
	ctx := dmlCtx(tm, sql.ReadCommitted)

	row := sql.Row{sql.NewInt64(1), sql.NewString("a")}
	require.NoError(t, tbl.Insert(ctx, []sql.Row{row}))

	child := RowsToIter(dmlSchema(), []sql.Row{row})
	iter, err := Delete(ctx, tbl, affectedRowsSchema(), child)
	require.NoError(t, err)
	rows, err := DrainRows(ctx, iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(1)}}, rows)

	require.Empty(t, drainAll(t, ctx, tbl))
}

func affectedRowsSchema() sql.Schema {
	return sql.Schema{{Name: "rows_affected", Type: types.Int64, Nullable: false}}
}
