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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/expression"
	"github.com/yachtsql/yachtsql/sql/types"
)

func idSchema() sql.Schema {
	return sql.Schema{{Name: "id", Type: types.Int64, Nullable: false}}
}

func idRows(n int) []sql.Row {
	rows := make([]sql.Row, n)
	for i := 0; i < n; i++ {
		rows[i] = sql.Row{sql.NewInt64(int64(i))}
	}
	return rows
}

func TestValuesEvaluatesLiteralsOnceUpFront(t *testing.T) {
	rows := [][]sql.Expression{
		{expression.NewLiteral(sql.NewInt64(1))},
		{expression.NewLiteral(sql.NewInt64(2))},
	}
	iter, err := Values(sql.NewEmptyContext(), idSchema(), rows)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}}, out)
}

func TestFilterKeepsOnlyMatchingRowsAndSkipsEmptyBatches(t *testing.T) {
	// Batches of two: {0,1} {2,3} {4}; the first has no matching row.
	ctx := sql.NewEmptyContext().WithBatchSize(2)
	child := RowsToIter(idSchema(), idRows(5))
	greaterThan2 := expression.NewGreaterThan(
		expression.NewGetField(0, types.Int64, "id", false),
		expression.NewLiteral(sql.NewInt64(2)),
	)
	iter := Filter(ctx, greaterThan2, child)
	out, err := DrainRows(ctx, iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(3)}, {sql.NewInt64(4)}}, out)
}

func TestProjectAppliesEachColumnExpression(t *testing.T) {
	child := RowsToIter(idSchema(), idRows(3))
	doubled := expression.NewArithmetic(expression.Mul,
		expression.NewGetField(0, types.Int64, "id", false),
		expression.NewLiteral(sql.NewInt64(2)), types.Int64)
	schema := sql.Schema{{Name: "doubled", Type: types.Int64, Nullable: false}}
	iter := Project(sql.NewEmptyContext(), schema, []sql.Expression{doubled}, child)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(0)}, {sql.NewInt64(2)}, {sql.NewInt64(4)}}, out)
}

func TestLimitSkipsOffsetThenTakesCount(t *testing.T) {
	child := RowsToIter(idSchema(), idRows(10))
	iter := Limit(sql.NewEmptyContext(), 3, 2, child)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(2)}, {sql.NewInt64(3)}, {sql.NewInt64(4)}}, out)
}

func TestLimitWithNegativeCountIsUnboundedAfterOffset(t *testing.T) {
	child := RowsToIter(idSchema(), idRows(5))
	iter := Limit(sql.NewEmptyContext(), -1, 3, child)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(3)}, {sql.NewInt64(4)}}, out)
}

func TestLimitOffsetPastEndYieldsNoRows(t *testing.T) {
	child := RowsToIter(idSchema(), idRows(3))
	iter := Limit(sql.NewEmptyContext(), 5, 10, child)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Empty(t, out)
}
