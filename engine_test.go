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

package yachtsql

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/storage"
)

func newTestExecutor() (*Executor, *sql.Session) {
	e := New(PostgreSQL)
	e.AddDatabase(storage.NewDatabase("main"))
	session := sql.NewSession()
	session.CurrentDB = "main"
	return e, session
}

func TestExecuteCreateInsertSelectAutocommits(t *testing.T) {
	e, session := newTestExecutor()
	ctx := context.Background()

	_, err := e.Execute(ctx, session, "CREATE TABLE orders (id INT, name TEXT)")
	require.NoError(t, err)
	require.Nil(t, session.Transaction())

	res, err := e.Execute(ctx, session, "INSERT INTO orders (id, name) VALUES (1, 'a'), (2, 'b')")
	require.NoError(t, err)
	require.Nil(t, session.Transaction())
	rows, err := drainResult(t, res)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(2)}}, rows)

	res, err = e.Execute(ctx, session, "SELECT id, name FROM orders ORDER BY id")
	require.NoError(t, err)
	rows, err = drainResult(t, res)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(1), rows[0][0].Payload())
	require.Equal(t, "a", rows[0][1].Payload())
}

func TestExecuteWithinExplicitTransactionDoesNotAutocommit(t *testing.T) {
	e, session := newTestExecutor()
	ctx := context.Background()

	_, err := e.Execute(ctx, session, "CREATE TABLE orders (id INT, name TEXT)")
	require.NoError(t, err)

	e.Begin(session, sql.ReadCommitted)
	require.NotNil(t, session.Transaction())

	_, err = e.Execute(ctx, session, "INSERT INTO orders (id, name) VALUES (1, 'a')")
	require.NoError(t, err)
	require.NotNil(t, session.Transaction(), "an explicit BEGIN must survive across Execute calls")

	require.NoError(t, e.Commit(session))
	require.Nil(t, session.Transaction())

	res, err := e.Execute(ctx, session, "SELECT id FROM orders")
	require.NoError(t, err)
	rows, err := drainResult(t, res)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExecuteRollsBackImplicitTransactionOnCompileError(t *testing.T) {
	e, session := newTestExecutor()
	ctx := context.Background()

	_, err := e.Execute(ctx, session, "CREATE TABLE orders (id INT, name TEXT)")
	require.NoError(t, err)

	_, err = e.Execute(ctx, session, "SELECT id FROM missing_table")
	require.Error(t, err)
	require.Nil(t, session.Transaction())
	require.True(t, session.ErrorPending())
}

func drainResult(t *testing.T, res *Result) ([]sql.Row, error) {
	t.Helper()
	var rows []sql.Row
	for {
		row, err := res.Rows.Next(nil)
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}
