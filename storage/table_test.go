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

package storage

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/types"
)

func testSchema() sql.Schema {
	return sql.Schema{
		{Name: "id", Type: types.Int64, Nullable: false},
		{Name: "name", Type: types.String, Nullable: true},
	}
}

func ctxWithTx(tm *TxManager, isolation sql.IsolationLevel) *sql.Context {
	session := sql.NewSession()
	session.SetTransaction(tm.Begin(isolation))
	return sql.NewContext(context.Background(), session)
}

func drainVisible(t *testing.T, ctx *sql.Context, tbl *Table) []sql.Row {
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

func TestTableInsertRequiresActiveTransaction(t *testing.T) {
	tm := NewTxManager()
	tbl := NewTable("t", testSchema(), tm)
	ctx := sql.NewEmptyContext()

	err := tbl.Insert(ctx, []sql.Row{{sql.NewInt64(1), sql.NewString("a")}})
	require.Error(t, err)
	require.True(t, sql.ErrNoActiveTx.Is(err))
}

func TestTableInsertThenReadOwnWrites(t *testing.T) {
	tm := NewTxManager()
	tbl := NewTable("t", testSchema(), tm)
	ctx := ctxWithTx(tm, sql.ReadCommitted)

	require.NoError(t, tbl.Insert(ctx, []sql.Row{
		{sql.NewInt64(1), sql.NewString("a")},
		{sql.NewInt64(2), sql.NewString("b")},
	}))

	rows := drainVisible(t, ctx, tbl)
	require.Len(t, rows, 2)
}

func TestUncommittedInsertInvisibleToOtherSnapshot(t *testing.T) {
	tm := NewTxManager()
	tbl := NewTable("t", testSchema(), tm)
	writer := ctxWithTx(tm, sql.ReadCommitted)
	require.NoError(t, tbl.Insert(writer, []sql.Row{{sql.NewInt64(1), sql.NewString("a")}}))

	reader := sql.NewContext(context.Background(), sql.NewSession())
	rows := drainVisible(t, reader, tbl)
	require.Empty(t, rows)
}

func TestCommittedInsertVisibleToLaterSnapshot(t *testing.T) {
	tm := NewTxManager()
	tbl := NewTable("t", testSchema(), tm)
	writer := ctxWithTx(tm, sql.ReadCommitted)
	require.NoError(t, tbl.Insert(writer, []sql.Row{{sql.NewInt64(1), sql.NewString("a")}}))
	require.NoError(t, tm.Commit(writer.Session.Transaction()))

	reader := sql.NewContext(context.Background(), sql.NewSession())
	rows := drainVisible(t, reader, tbl)
	require.Len(t, rows, 1)
}

func TestUpdateRewritesVersionChainAndHidesOldVersion(t *testing.T) {
	tm := NewTxManager()
	tbl := NewTable("t", testSchema(), tm)
	writer := ctxWithTx(tm, sql.ReadCommitted)
	old := sql.Row{sql.NewInt64(1), sql.NewString("a")}
	require.NoError(t, tbl.Insert(writer, []sql.Row{old}))

	updated := sql.Row{sql.NewInt64(1), sql.NewString("updated")}
	require.NoError(t, tbl.Update(writer, old, updated))

	rows := drainVisible(t, writer, tbl)
	require.Len(t, rows, 1)
	require.Equal(t, "updated", rows[0][1].Payload())
}

func TestDeleteHidesRowFromLaterSnapshot(t *testing.T) {
	tm := NewTxManager()
	tbl := NewTable("t", testSchema(), tm)
	writer := ctxWithTx(tm, sql.ReadCommitted)
	row := sql.Row{sql.NewInt64(1), sql.NewString("a")}
	require.NoError(t, tbl.Insert(writer, []sql.Row{row}))
	require.NoError(t, tm.Commit(writer.Session.Transaction()))

	deleter := ctxWithTx(tm, sql.ReadCommitted)
	require.NoError(t, tbl.Delete(deleter, row))
	require.NoError(t, tm.Commit(deleter.Session.Transaction()))

	reader := sql.NewContext(context.Background(), sql.NewSession())
	rows := drainVisible(t, reader, tbl)
	require.Empty(t, rows)
}

func TestSerializableDisjointWritesetsCommitCleanly(t *testing.T) {
	tm := NewTxManager()
	tbl := NewTable("t", testSchema(), tm)

	txA := ctxWithTx(tm, sql.Serializable)
	txB := ctxWithTx(tm, sql.Serializable)

	require.NoError(t, tbl.Insert(txA, []sql.Row{{sql.NewInt64(1), sql.NewString("a")}}))
	require.NoError(t, tbl.Insert(txB, []sql.Row{{sql.NewInt64(2), sql.NewString("b")}}))

	require.NoError(t, tm.Commit(txA.Session.Transaction()))
	// txB wrote no row txA also wrote, so its writeset doesn't intersect
	// txA's and the commit should succeed, not conflict.
	require.NoError(t, tm.Commit(txB.Session.Transaction()))
}

func TestSerializableOverlappingWritesetAborts(t *testing.T) {
	tm := NewTxManager()
	tbl := NewTable("t", testSchema(), tm)

	setup := ctxWithTx(tm, sql.ReadCommitted)
	row := sql.Row{sql.NewInt64(1), sql.NewString("a")}
	require.NoError(t, tbl.Insert(setup, []sql.Row{row}))
	require.NoError(t, tm.Commit(setup.Session.Transaction()))

	txA := ctxWithTx(tm, sql.Serializable)
	txB := ctxWithTx(tm, sql.Serializable)

	require.NoError(t, tbl.Update(txA, row, sql.Row{sql.NewInt64(1), sql.NewString("from-a")}))
	require.NoError(t, tbl.Update(txB, row, sql.Row{sql.NewInt64(1), sql.NewString("from-b")}))

	require.NoError(t, tm.Commit(txA.Session.Transaction()))
	err := tm.Commit(txB.Session.Transaction())
	require.Error(t, err)
	require.True(t, sql.ErrSerializationFailure.Is(err))
}

func TestReclaimFreesOldDeletedVersionOnceNoSnapshotNeedsIt(t *testing.T) {
	tm := NewTxManager()
	tbl := NewTable("t", testSchema(), tm)
	writer := ctxWithTx(tm, sql.ReadCommitted)
	row := sql.Row{sql.NewInt64(1), sql.NewString("a")}
	require.NoError(t, tbl.Insert(writer, []sql.Row{row}))
	require.NoError(t, tm.Commit(writer.Session.Transaction()))

	deleter := ctxWithTx(tm, sql.ReadCommitted)
	require.NoError(t, tbl.Delete(deleter, row))
	require.NoError(t, tm.Commit(deleter.Session.Transaction()))

	tbl.Reclaim()
	require.True(t, tbl.groups[0].free[0])
}
