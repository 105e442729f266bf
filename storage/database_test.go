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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
)

var _ sql.SchemaOwner = (*Database)(nil)

func TestDatabaseCreateTableIsCaseInsensitiveAndVisible(t *testing.T) {
	db := NewDatabase("db")
	db.CreateTable("Orders", testSchema())

	ctx := sql.NewEmptyContext()
	tbl, ok, err := db.Table(ctx, "orders")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Orders", tbl.Name())

	tables, err := db.Tables(ctx)
	require.NoError(t, err)
	require.Contains(t, tables, "orders")
}

func TestDatabaseDropTableRemovesIt(t *testing.T) {
	db := NewDatabase("db")
	db.CreateTable("orders", testSchema())
	db.DropTable("Orders")

	ctx := sql.NewEmptyContext()
	_, ok, err := db.Table(ctx, "orders")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDatabaseTablesShareOneTransactionManager(t *testing.T) {
	db := NewDatabase("db")
	orders := db.CreateTable("orders", testSchema()).(*Table)
	items := db.CreateTable("items", testSchema()).(*Table)
	require.Same(t, orders.tm, items.tm)
	require.Same(t, orders.tm, db.tm)
}

func TestDatabaseBeginCommitRollback(t *testing.T) {
	db := NewDatabase("db")
	db.CreateTable("orders", testSchema())

	tx := db.Begin(sql.ReadCommitted)
	session := sql.NewSession()
	session.SetTransaction(tx)
	ctx := sql.NewContext(context.Background(), session)

	tbl, _, err := db.Table(ctx, "orders")
	require.NoError(t, err)
	insertable := tbl.(sql.InsertableTable)
	require.NoError(t, insertable.Insert(ctx, []sql.Row{{sql.NewInt64(1), sql.NewString("a")}}))

	require.NoError(t, db.Commit(tx))

	reader := sql.NewContext(context.Background(), sql.NewSession())
	rows := drainVisible(t, reader, tbl.(*Table))
	require.Len(t, rows, 1)
}

func TestDatabaseRollbackDiscardsWrites(t *testing.T) {
	db := NewDatabase("db")
	db.CreateTable("orders", testSchema())

	tx := db.Begin(sql.ReadCommitted)
	session := sql.NewSession()
	session.SetTransaction(tx)
	ctx := sql.NewContext(context.Background(), session)

	tbl, _, err := db.Table(ctx, "orders")
	require.NoError(t, err)
	insertable := tbl.(sql.InsertableTable)
	require.NoError(t, insertable.Insert(ctx, []sql.Row{{sql.NewInt64(1), sql.NewString("a")}}))

	db.Rollback(tx)

	reader := sql.NewContext(context.Background(), sql.NewSession())
	rows := drainVisible(t, reader, tbl.(*Table))
	require.Empty(t, rows)
}

func TestDatabaseReclaimSweepsEveryTable(t *testing.T) {
	db := NewDatabase("db")
	db.CreateTable("orders", testSchema())

	tx := db.Begin(sql.ReadCommitted)
	session := sql.NewSession()
	session.SetTransaction(tx)
	ctx := sql.NewContext(context.Background(), session)
	tbl, _, _ := db.Table(ctx, "orders")
	insertable := tbl.(sql.InsertableTable)
	row := sql.Row{sql.NewInt64(1), sql.NewString("a")}
	require.NoError(t, insertable.Insert(ctx, []sql.Row{row}))
	require.NoError(t, db.Commit(tx))

	deleteTx := db.Begin(sql.ReadCommitted)
	deleteSession := sql.NewSession()
	deleteSession.SetTransaction(deleteTx)
	deleteCtx := sql.NewContext(context.Background(), deleteSession)
	deletable := tbl.(sql.DeletableTable)
	require.NoError(t, deletable.Delete(deleteCtx, row))
	require.NoError(t, db.Commit(deleteTx))

	db.Reclaim()
	require.True(t, tbl.(*Table).groups[0].free[0])
}
