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

package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/expression"
	"github.com/yachtsql/yachtsql/sql/plan"
	"github.com/yachtsql/yachtsql/sql/transform"
	"github.com/yachtsql/yachtsql/sql/types"
)

func literalRowValues(n int) *plan.Values {
	schema := sql.Schema{{Name: "id", Type: types.Int64, Nullable: false}}
	rows := make([][]sql.Expression, n)
	for i := range rows {
		rows[i] = []sql.Expression{expression.NewLiteral(sql.NewInt64(int64(i)))}
	}
	return plan.NewValues(rows, schema)
}

func TestEstimateRowsScanUsesBaselineDefault(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	db, _ := catalog.Database("main")
	tbl, _, err := db.Table(sql.NewEmptyContext(), "orders")
	require.NoError(t, err)
	require.EqualValues(t, defaultScanRows, EstimateRows(plan.NewScan(tbl)))
}

func TestEstimateRowsValuesCountsRows(t *testing.T) {
	require.EqualValues(t, 3, EstimateRows(literalRowValues(3)))
}

func TestEstimateRowsFilterAppliesSelectivity(t *testing.T) {
	child := literalRowValues(100)
	f := plan.NewFilter(expression.NewLiteral(sql.NewBool(true)), child)
	require.EqualValues(t, 10, EstimateRows(f))
}

func TestEstimateRowsCrossJoinMultipliesSides(t *testing.T) {
	left := literalRowValues(10)
	right := literalRowValues(20)
	j := plan.NewJoin(plan.CrossJoin, left, right, nil)
	require.EqualValues(t, 200, EstimateRows(j))
}

func TestEstimateRowsEquiJoinDividesByLargerSide(t *testing.T) {
	left := literalRowValues(10)
	right := literalRowValues(20)
	cond := expression.NewLiteral(sql.NewBool(true))
	j := plan.NewJoin(plan.InnerJoin, left, right, cond)
	require.EqualValues(t, 10, EstimateRows(j)) // (10*20)/20
}

func TestEstimateRowsUnionAddsSides(t *testing.T) {
	s := plan.NewSetOp(plan.Union, true, literalRowValues(3), literalRowValues(4))
	require.EqualValues(t, 7, EstimateRows(s))
}

func TestMaterializeSharedCTEsSkipsTinyValuesLiteral(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog, "WITH one AS (SELECT 1) SELECT * FROM one a, one b")
	require.NoError(t, err)

	found := false
	transformInspectForMaterialize(node, &found)
	require.False(t, found, "a one-row CTE is cheap enough to recompute; cost model should skip materializing it")
}

func TestMaterializeSharedCTEsKeepsLargeSharedSubquery(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog, "WITH big AS (SELECT * FROM orders) SELECT * FROM big a, big b")
	require.NoError(t, err)

	found := false
	transformInspectForMaterialize(node, &found)
	require.True(t, found, "a CTE scanning a real table is referenced twice and should be materialized once")
}

func TestPushLimitIntoUnionBranchesBoundsBothSides(t *testing.T) {
	left := literalRowValues(100)
	right := literalRowValues(100)
	set := plan.NewSetOp(plan.Union, true, left, right)
	lim := plan.NewLimit(expression.NewLiteral(sql.NewInt64(5)), nil, set)

	rewritten, identity, err := pushLimitIntoUnionBranches(sql.NewEmptyContext(), nil, lim, nil)
	require.NoError(t, err)
	require.Equal(t, transform.NewTree, identity)

	newLim, ok := rewritten.(*plan.Limit)
	require.True(t, ok, "expected a Limit at the top, got %T", rewritten)
	newSet, ok := newLim.Child.(*plan.SetOp)
	require.True(t, ok, "expected Limit's child to remain a SetOp, got %T", newLim.Child)

	leftLim, ok := newSet.Left.(*plan.Limit)
	require.True(t, ok, "expected the union's left branch to be bounded, got %T", newSet.Left)
	count, ok := literalInt(leftLim.Count)
	require.True(t, ok)
	require.Equal(t, int64(5), count)

	rightLim, ok := newSet.Right.(*plan.Limit)
	require.True(t, ok, "expected the union's right branch to be bounded, got %T", newSet.Right)
	count, ok = literalInt(rightLim.Count)
	require.True(t, ok)
	require.Equal(t, int64(5), count)
}

func TestPushLimitIntoUnionBranchesSkipsPlainUnion(t *testing.T) {
	left := literalRowValues(100)
	right := literalRowValues(100)
	set := plan.NewSetOp(plan.Union, false, left, right)
	lim := plan.NewLimit(expression.NewLiteral(sql.NewInt64(5)), nil, set)

	rewritten, identity, err := pushLimitIntoUnionBranches(sql.NewEmptyContext(), nil, lim, nil)
	require.NoError(t, err)
	require.Equal(t, transform.SameTree, identity)
	require.Same(t, lim, rewritten)
}

func transformInspectForMaterialize(n sql.Node, found *bool) {
	if n == nil {
		return
	}
	if _, ok := n.(*plan.Materialize); ok {
		*found = true
		return
	}
	for _, c := range n.Children() {
		transformInspectForMaterialize(c, found)
	}
}
