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

package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/expression"
	"github.com/yachtsql/yachtsql/sql/types"
)

type fakeTable struct {
	name   string
	schema sql.Schema
}

func (f *fakeTable) Name() string       { return f.name }
func (f *fakeTable) Schema() sql.Schema { return f.schema }
func (f *fakeTable) Partitions(ctx *sql.Context) ([]sql.BatchIter, error) { return nil, nil }

func testSchema() sql.Schema {
	return sql.Schema{
		{Name: "id", Type: types.Int64, Nullable: false},
		{Name: "name", Type: types.String, Nullable: true},
	}
}

func TestScanResolvedAndSchema(t *testing.T) {
	tbl := &fakeTable{name: "users", schema: testSchema()}
	s := NewScan(tbl)
	require.True(t, s.Resolved())
	require.Equal(t, testSchema(), s.Schema())
	require.Empty(t, s.Children())
}

func TestUnresolvedTableNotResolved(t *testing.T) {
	u := NewUnresolvedTable("users", "")
	require.False(t, u.Resolved())
}

func TestFilterPropagatesResolution(t *testing.T) {
	tbl := &fakeTable{name: "users", schema: testSchema()}
	scan := NewScan(tbl)
	pred := expression.NewGetField(0, types.Int64, "id", false)
	f := NewFilter(pred, scan)
	require.True(t, f.Resolved())
	require.Equal(t, testSchema(), f.Schema())
}

func TestProjectSchemaUsesColumnNames(t *testing.T) {
	tbl := &fakeTable{name: "users", schema: testSchema()}
	scan := NewScan(tbl)
	p := NewProject([]ProjectedColumn{
		{Expr: expression.NewGetField(0, types.Int64, "id", false), Name: "id"},
		{Expr: expression.NewLiteral(sql.NewString("const")), Name: "label"},
	}, scan)
	require.True(t, p.Resolved())
	schema := p.Schema()
	require.Equal(t, []string{"id", "label"}, schema.Names())
}

func TestJoinSchemaConcatenatesExceptSemiAnti(t *testing.T) {
	left := NewScan(&fakeTable{name: "a", schema: testSchema()})
	right := NewScan(&fakeTable{name: "b", schema: testSchema()})
	inner := NewJoin(InnerJoin, left, right, nil)
	require.Len(t, inner.Schema(), 4)

	semi := NewJoin(SemiJoin, left, right, nil)
	require.Len(t, semi.Schema(), 2)
}

func TestSetOpRequiresCompatibleSchemas(t *testing.T) {
	left := NewScan(&fakeTable{name: "a", schema: testSchema()})
	right := NewScan(&fakeTable{name: "b", schema: testSchema()})
	u := NewSetOp(Union, false, left, right)
	require.True(t, u.Resolved())

	mismatched := NewScan(&fakeTable{name: "c", schema: sql.Schema{{Name: "x", Type: types.String}}})
	bad := NewSetOp(Union, false, left, mismatched)
	require.False(t, bad.Resolved())
}

func TestLimitRequiresCountResolved(t *testing.T) {
	tbl := NewScan(&fakeTable{name: "a", schema: testSchema()})
	count := expression.NewLiteral(sql.NewInt64(10))
	l := NewLimit(count, nil, tbl)
	require.True(t, l.Resolved())
}

func TestWindowDefaultFrameIsRangeUnboundedToCurrent(t *testing.T) {
	f := DefaultFrame()
	require.Equal(t, FrameRange, f.Mode)
	require.True(t, f.Start.Unbounded)
	require.True(t, f.End.Current)
}
