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
	"github.com/yachtsql/yachtsql/sql/expression/function"
	"github.com/yachtsql/yachtsql/sql/parser"
	"github.com/yachtsql/yachtsql/sql/parser/token"
	"github.com/yachtsql/yachtsql/sql/plan"
	"github.com/yachtsql/yachtsql/sql/types"
	"github.com/yachtsql/yachtsql/storage"
)

func buildAndAnalyze(t *testing.T, catalog *sql.Catalog, query string) (sql.Node, error) {
	t.Helper()
	ctx := sql.NewEmptyContext()
	registry := function.NewBuiltinRegistry()

	stmt, err := parser.Parse(query, token.PostgreSQL)
	require.NoError(t, err)

	builder := NewBuilder(catalog, registry, function.AnyDialect)
	node, err := builder.Build(ctx, "main", stmt)
	if err != nil {
		return nil, err
	}

	a := NewDefault(catalog, registry)
	return a.Analyze(ctx, node, nil)
}

func catalogWithOrdersAndItems(t *testing.T) *sql.Catalog {
	t.Helper()
	db := storage.NewDatabase("main")
	db.CreateTable("orders", sql.Schema{
		{Name: "id", Type: types.Int64, Nullable: false},
		{Name: "total", Type: types.Int64, Nullable: false},
	})
	db.CreateTable("items", sql.Schema{
		{Name: "id", Type: types.Int64, Nullable: false},
		{Name: "order_id", Type: types.Int64, Nullable: false},
	})
	catalog := sql.NewCatalog()
	catalog.AddDatabase(db)
	return catalog
}

func TestAnalyzeUnqualifiedUnknownColumnIsError(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	_, err := buildAndAnalyze(t, catalog, "SELECT nonexistent FROM orders")
	require.Error(t, err)
	require.True(t, sql.ErrUnknownColumn.Is(err))
}

func TestAnalyzeUnqualifiedAmbiguousColumnAcrossJoinIsError(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	_, err := buildAndAnalyze(t, catalog, "SELECT id FROM orders, items")
	require.Error(t, err)
	require.True(t, sql.ErrAmbiguousColumn.Is(err))
}

func TestAnalyzeQualifiedColumnAcrossJoinResolves(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog, "SELECT orders.id FROM orders, items")
	require.NoError(t, err)
	require.True(t, node.Resolved())
}

func TestAnalyzeUnknownTableIsError(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	_, err := buildAndAnalyze(t, catalog, "SELECT 1 FROM missing")
	require.Error(t, err)
	require.True(t, sql.ErrUnknownTable.Is(err))
}

func TestAnalyzeFoldsConstantArithmetic(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog, "SELECT 1 + 2 FROM orders")
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok, "expected a top-level Project, got %T", node)
	require.Len(t, proj.Columns, 1)
	lit, ok := proj.Columns[0].Expr.(*expression.Literal)
	require.True(t, ok, "expected constant folding to reduce 1+2 to a Literal, got %T", proj.Columns[0].Expr)
	v, err := lit.Eval(sql.NewEmptyContext(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), v.Payload())
}

func TestAnalyzeSimplifiesAlwaysFalseFilterToEmptyValues(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog, "SELECT id FROM orders WHERE 1 = 0")
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok, "expected a top-level Project, got %T", node)
	values, ok := proj.Child.(*plan.Values)
	require.True(t, ok, "expected always-false WHERE to simplify its child to Values, got %T", proj.Child)
	require.Empty(t, values.Rows)
}

func TestAnalyzeEliminatesCrossJoinWithEqualityPredicate(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog, "SELECT orders.id FROM orders, items WHERE orders.id = items.order_id")
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok, "expected a top-level Project, got %T", node)
	join, ok := proj.Child.(*plan.Join)
	require.True(t, ok, "expected the cross join + filter to collapse into one Join node, got %T", proj.Child)
	require.NotEqual(t, plan.CrossJoin, join.Kind, "equality predicate should have been pulled into the join condition")
	require.NotNil(t, join.Condition)
}

func TestAnalyzePushesLimitBelowProject(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog, "SELECT id FROM orders LIMIT 5")
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok, "expected Limit to be pushed below Project, top node should be Project, got %T", node)
	_, ok = proj.Child.(*plan.Limit)
	require.True(t, ok, "expected Project's child to be Limit after pushdown, got %T", proj.Child)
}

func TestAnalyzeRewritesExistsToSemiJoin(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog,
		"SELECT id FROM orders WHERE EXISTS (SELECT 1 FROM items WHERE items.order_id = 5)")
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok, "expected a top-level Project, got %T", node)
	join, ok := proj.Child.(*plan.Join)
	require.True(t, ok, "expected EXISTS to rewrite into a Join, got %T", proj.Child)
	require.Equal(t, plan.SemiJoin, join.Kind)
}

func TestAnalyzeRewritesInSubqueryToSemiJoin(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog,
		"SELECT id FROM orders WHERE id IN (SELECT order_id FROM items)")
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok, "expected a top-level Project, got %T", node)
	join, ok := proj.Child.(*plan.Join)
	require.True(t, ok, "expected IN (subquery) to rewrite into a Join, got %T", proj.Child)
	require.Equal(t, plan.SemiJoin, join.Kind)
	require.NotNil(t, join.Condition)
}

func TestAnalyzeRemovesConstantGroupByKey(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog, "SELECT id FROM orders GROUP BY id, 1")
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok, "expected a top-level Project, got %T", node)
	agg, ok := proj.Child.(*plan.Aggregate)
	require.True(t, ok, "expected Project's child to be Aggregate, got %T", proj.Child)
	require.Len(t, agg.GroupBy, 1, "the literal 1 should have been stripped from GROUP BY")
}

func TestAnalyzePushesHavingOnGroupKeyBelowAggregate(t *testing.T) {
	catalog := catalogWithOrdersAndItems(t)
	node, err := buildAndAnalyze(t, catalog, "SELECT id FROM orders GROUP BY id HAVING id > 0")
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok, "expected a top-level Project, got %T", node)
	agg, ok := proj.Child.(*plan.Aggregate)
	require.True(t, ok, "expected HAVING on a group key to push below Aggregate, got %T", proj.Child)
	_, ok = agg.Child.(*plan.Filter)
	require.True(t, ok, "expected Aggregate's child to be the pushed-down Filter, got %T", agg.Child)
}
