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
	"github.com/yachtsql/yachtsql/sql/expression/function"
	"github.com/yachtsql/yachtsql/sql/plan"
	"github.com/yachtsql/yachtsql/sql/types"
)

func leftRightSchemas() (sql.Schema, sql.Schema) {
	left := sql.Schema{{Name: "id", Type: types.Int64, Nullable: false}}
	right := sql.Schema{{Name: "order_id", Type: types.Int64, Nullable: false}}
	return left, right
}

func equiJoinCondition() sql.Expression {
	return expression.NewEquals(
		expression.NewGetField(0, types.Int64, "id", false),
		expression.NewGetField(1, types.Int64, "order_id", false),
	)
}

func TestJoinInnerOnlyKeepsMatchingPairs(t *testing.T) {
	leftSchema, rightSchema := leftRightSchemas()
	left := RowsToIter(leftSchema, []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}})
	right := RowsToIter(rightSchema, []sql.Row{{sql.NewInt64(2)}, {sql.NewInt64(3)}})

	iter, err := Join(sql.NewEmptyContext(), leftSchema, rightSchema, plan.InnerJoin, equiJoinCondition(), left, right)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(2), sql.NewInt64(2)}}, out)
}

func TestJoinLeftPadsUnmatchedLeftRowsWithNull(t *testing.T) {
	leftSchema, rightSchema := leftRightSchemas()
	left := RowsToIter(leftSchema, []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}})
	right := RowsToIter(rightSchema, []sql.Row{{sql.NewInt64(2)}})

	iter, err := Join(sql.NewEmptyContext(), leftSchema, rightSchema, plan.LeftJoin, equiJoinCondition(), left, right)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, sql.NewInt64(1), out[0][0])
	require.True(t, out[0][1].IsNull())
	require.Equal(t, sql.NewInt64(2), out[1][0])
	require.Equal(t, sql.NewInt64(2), out[1][1])
}

func TestJoinSemiKeepsOnlyLeftColumnsOnFirstMatch(t *testing.T) {
	leftSchema, rightSchema := leftRightSchemas()
	left := RowsToIter(leftSchema, []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}})
	right := RowsToIter(rightSchema, []sql.Row{{sql.NewInt64(2)}, {sql.NewInt64(2)}})

	iter, err := Join(sql.NewEmptyContext(), leftSchema, rightSchema, plan.SemiJoin, equiJoinCondition(), left, right)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(2)}}, out, "SemiJoin should emit the left row once regardless of how many right rows match")
}

func TestJoinAntiKeepsOnlyLeftRowsWithNoMatch(t *testing.T) {
	leftSchema, rightSchema := leftRightSchemas()
	left := RowsToIter(leftSchema, []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}})
	right := RowsToIter(rightSchema, []sql.Row{{sql.NewInt64(2)}})

	iter, err := Join(sql.NewEmptyContext(), leftSchema, rightSchema, plan.AntiJoin, equiJoinCondition(), left, right)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(1)}}, out)
}

func TestJoinCrossWithNilConditionProducesFullProduct(t *testing.T) {
	leftSchema, rightSchema := leftRightSchemas()
	left := RowsToIter(leftSchema, []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}})
	right := RowsToIter(rightSchema, []sql.Row{{sql.NewInt64(10)}, {sql.NewInt64(20)}})

	iter, err := Join(sql.NewEmptyContext(), leftSchema, rightSchema, plan.CrossJoin, nil, left, right)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Len(t, out, 4)
}

func TestSetOpUnionAllKeepsDuplicates(t *testing.T) {
	left := RowsToIter(idSchema(), []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}})
	right := RowsToIter(idSchema(), []sql.Row{{sql.NewInt64(2)}})

	iter, err := SetOp(sql.NewEmptyContext(), idSchema(), plan.Union, true, left, right)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Len(t, out, 3)
}

func TestSetOpUnionDistinctDropsDuplicates(t *testing.T) {
	left := RowsToIter(idSchema(), []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}})
	right := RowsToIter(idSchema(), []sql.Row{{sql.NewInt64(2)}, {sql.NewInt64(3)}})

	iter, err := SetOp(sql.NewEmptyContext(), idSchema(), plan.Union, false, left, right)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Len(t, out, 3)
}

func TestSetOpIntersectKeepsRowsPresentOnBothSides(t *testing.T) {
	left := RowsToIter(idSchema(), []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}})
	right := RowsToIter(idSchema(), []sql.Row{{sql.NewInt64(2)}, {sql.NewInt64(3)}})

	iter, err := SetOp(sql.NewEmptyContext(), idSchema(), plan.Intersect, false, left, right)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(2)}}, out)
}

func TestSetOpExceptDropsRowsAlsoPresentOnRight(t *testing.T) {
	left := RowsToIter(idSchema(), []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}})
	right := RowsToIter(idSchema(), []sql.Row{{sql.NewInt64(2)}})

	iter, err := SetOp(sql.NewEmptyContext(), idSchema(), plan.Except, false, left, right)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(1)}}, out)
}

func TestAggregateGroupsByKeyAndAccumulates(t *testing.T) {
	registry := function.NewBuiltinRegistry()
	sumFactory, sumType, err := registry.LookupAggregate("sum", []sql.Type{types.Int64})
	require.NoError(t, err)

	schema := sql.Schema{
		{Name: "bucket", Type: types.Int64, Nullable: false},
		{Name: "total", Type: types.Int64, Nullable: false},
	}
	childSchema := sql.Schema{
		{Name: "bucket", Type: types.Int64, Nullable: false},
		{Name: "amount", Type: types.Int64, Nullable: false},
	}
	child := RowsToIter(childSchema, []sql.Row{
		{sql.NewInt64(1), sql.NewInt64(10)},
		{sql.NewInt64(1), sql.NewInt64(5)},
		{sql.NewInt64(2), sql.NewInt64(7)},
	})

	groupBy := []sql.Expression{expression.NewGetField(0, types.Int64, "bucket", false)}
	aggregates := []plan.AggregateCall{
		plan.NewAggregateCall("sum", []sql.Expression{expression.NewGetField(1, types.Int64, "amount", false)}, sumFactory, sumType, false, ""),
	}

	iter, err := Aggregate(sql.NewEmptyContext(), schema, groupBy, aggregates, child)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Len(t, out, 2)

	totals := map[int64]int64{}
	for _, r := range out {
		totals[r[0].Payload().(int64)] = r[1].Payload().(int64)
	}
	require.Equal(t, int64(15), totals[1])
	require.Equal(t, int64(7), totals[2])
}

func TestAggregateWithNoGroupByOnEmptyInputStillProducesOneRow(t *testing.T) {
	registry := function.NewBuiltinRegistry()
	countFactory, countType, err := registry.LookupAggregate("count", []sql.Type{types.Int64})
	require.NoError(t, err)

	schema := sql.Schema{{Name: "n", Type: types.Int64, Nullable: false}}
	child := RowsToIter(idSchema(), nil)

	aggregates := []plan.AggregateCall{
		plan.NewAggregateCall("count", []sql.Expression{expression.NewGetField(0, types.Int64, "id", false)}, countFactory, countType, false, ""),
	}

	iter, err := Aggregate(sql.NewEmptyContext(), schema, nil, aggregates, child)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(0)}}, out)
}

func TestSortOrdersByFieldAscending(t *testing.T) {
	child := RowsToIter(idSchema(), []sql.Row{{sql.NewInt64(3)}, {sql.NewInt64(1)}, {sql.NewInt64(2)}})
	fields := []plan.SortField{{Expr: expression.NewGetField(0, types.Int64, "id", false)}}

	iter, err := Sort(sql.NewEmptyContext(), idSchema(), fields, child)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(2)}, {sql.NewInt64(3)}}, out)
}

func TestSortDescendingReversesOrder(t *testing.T) {
	child := RowsToIter(idSchema(), []sql.Row{{sql.NewInt64(1)}, {sql.NewInt64(3)}, {sql.NewInt64(2)}})
	fields := []plan.SortField{{Expr: expression.NewGetField(0, types.Int64, "id", false), Desc: true}}

	iter, err := Sort(sql.NewEmptyContext(), idSchema(), fields, child)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Equal(t, []sql.Row{{sql.NewInt64(3)}, {sql.NewInt64(2)}, {sql.NewInt64(1)}}, out)
}

func TestSortNullsFirstPlacesNullRegardlessOfDesc(t *testing.T) {
	nullable := sql.Schema{{Name: "id", Type: types.Int64, Nullable: true}}
	child := RowsToIter(nullable, []sql.Row{
		{sql.NewInt64(1)},
		{sql.NullValue(types.Int64)},
		{sql.NewInt64(2)},
	})
	fields := []plan.SortField{{Expr: expression.NewGetField(0, types.Int64, "id", true), Desc: true, Nulls: plan.NullsFirst}}

	iter, err := Sort(sql.NewEmptyContext(), nullable, fields, child)
	require.NoError(t, err)
	out, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.True(t, out[0][0].IsNull())
	require.Equal(t, sql.NewInt64(2), out[1][0])
	require.Equal(t, sql.NewInt64(1), out[2][0])
}
