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

// groupCol/amountCol index the two-column (grp, amount) fixture every
// test in this file partitions and orders by.
const (
	groupCol  = 0
	amountCol = 1
)

func windowFixture() []sql.Row {
	return []sql.Row{
		{sql.NewString("a"), sql.NewInt64(10)},
		{sql.NewString("a"), sql.NewInt64(20)},
		{sql.NewString("a"), sql.NewInt64(20)},
		{sql.NewString("b"), sql.NewInt64(5)},
	}
}

func windowFixtureIter() Iter {
	schema := sql.Schema{
		{Name: "grp", Type: types.String, Nullable: false},
		{Name: "amount", Type: types.Int64, Nullable: false},
	}
	return RowsToIter(schema, windowFixture())
}

func amountAsc() []plan.SortField {
	return []plan.SortField{{Expr: expression.NewGetField(amountCol, types.Int64, "amount", false)}}
}

func partitionByGroup() []sql.Expression {
	return []sql.Expression{expression.NewGetField(groupCol, types.String, "grp", false)}
}

func TestWindowRowNumberIgnoresFrame(t *testing.T) {
	call := plan.NewWindowCall("row_number", nil,
		func() function.Accumulator { return &rowNumberAccForTest{} },
		types.Int64, partitionByGroup(), amountAsc(), plan.DefaultFrame(), "")

	schema := sql.Schema{
		{Name: "grp", Type: types.String},
		{Name: "amount", Type: types.Int64},
		{Name: "rn", Type: types.Int64, Nullable: true},
	}

	iter, err := Window(sql.NewEmptyContext(), schema, []plan.WindowCall{call}, windowFixtureIter())
	require.NoError(t, err)
	rows, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	var aNumbers []int64
	for _, r := range rows {
		key := r[groupCol].Payload().(string)
		if key == "b" {
			require.Equal(t, int64(1), r[len(r)-1].Payload())
			continue
		}
		aNumbers = append(aNumbers, r[len(r)-1].Payload().(int64))
	}
	require.Equal(t, []int64{1, 2, 3}, aNumbers)
}

func TestWindowSumRunningTotalRowsFrame(t *testing.T) {
	sumFactory := func() function.Accumulator { return &sumIntAccForTest{} }
	call := plan.NewWindowCall("sum",
		[]sql.Expression{expression.NewGetField(amountCol, types.Int64, "amount", false)},
		sumFactory, types.Int64, partitionByGroup(), amountAsc(),
		plan.Frame{Mode: plan.FrameRows, Start: plan.FrameBound{Unbounded: true, Preceding: true}, End: plan.FrameBound{Current: true}}, "")

	schema := sql.Schema{
		{Name: "grp", Type: types.String},
		{Name: "amount", Type: types.Int64},
		{Name: "running", Type: types.Int64, Nullable: true},
	}

	iter, err := Window(sql.NewEmptyContext(), schema, []plan.WindowCall{call}, windowFixtureIter())
	require.NoError(t, err)
	rows, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	var totals []int64
	for _, r := range rows {
		if r[groupCol].Payload().(string) != "a" {
			continue
		}
		totals = append(totals, r[len(r)-1].Payload().(int64))
	}
	require.Equal(t, []int64{10, 30, 50}, totals)
}

func TestWindowRankHandlesTies(t *testing.T) {
	call := plan.NewWindowCall("rank", nil,
		func() function.Accumulator { return &rankAccForTest{dense: false} },
		types.Int64, partitionByGroup(), amountAsc(), plan.DefaultFrame(), "")

	schema := sql.Schema{
		{Name: "grp", Type: types.String},
		{Name: "amount", Type: types.Int64},
		{Name: "rnk", Type: types.Int64, Nullable: true},
	}
	iter, err := Window(sql.NewEmptyContext(), schema, []plan.WindowCall{call}, windowFixtureIter())
	require.NoError(t, err)
	rows, err := DrainRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)

	ranksByAmount := make(map[int64]int64)
	for _, r := range rows {
		if r[groupCol].Payload().(string) != "a" {
			continue
		}
		ranksByAmount[r[amountCol].Payload().(int64)] = r[len(r)-1].Payload().(int64)
	}
	require.Equal(t, int64(1), ranksByAmount[10])
	require.Equal(t, int64(2), ranksByAmount[20]) // tied pair shares rank 2, not 2 and 3
}

// --- minimal local accumulators, independent of function.Registry's
// own builtins.go ones, so this test doesn't depend on their exact
// names staying stable. ---

type rowNumberAccForTest struct{ n int64 }

func (a *rowNumberAccForTest) Accumulate(ctx *sql.Context, args []sql.Value) error {
	a.n++
	return nil
}
func (a *rowNumberAccForTest) Merge(ctx *sql.Context, other function.Accumulator) error { return nil }
func (a *rowNumberAccForTest) Finalize(ctx *sql.Context) (sql.Value, error) {
	return sql.NewInt64(a.n), nil
}
func (a *rowNumberAccForTest) Reset() { a.n = 0 }

type sumIntAccForTest struct{ sum int64 }

func (a *sumIntAccForTest) Accumulate(ctx *sql.Context, args []sql.Value) error {
	a.sum += args[0].Payload().(int64)
	return nil
}
func (a *sumIntAccForTest) Merge(ctx *sql.Context, other function.Accumulator) error { return nil }
func (a *sumIntAccForTest) Finalize(ctx *sql.Context) (sql.Value, error) {
	return sql.NewInt64(a.sum), nil
}
func (a *sumIntAccForTest) Reset() { a.sum = 0 }

type rankAccForTest struct {
	dense    bool
	position int64
	rank     int64
}

func (a *rankAccForTest) Accumulate(ctx *sql.Context, args []sql.Value) error {
	groupSize := int64(1)
	if len(args) > 0 && !args[0].IsNull() {
		groupSize = args[0].Payload().(int64)
	}
	if a.dense {
		a.rank++
	} else {
		a.rank = a.position + 1
	}
	a.position += groupSize
	return nil
}
func (a *rankAccForTest) Merge(ctx *sql.Context, other function.Accumulator) error { return nil }
func (a *rankAccForTest) Finalize(ctx *sql.Context) (sql.Value, error) {
	return sql.NewInt64(a.rank), nil
}
func (a *rankAccForTest) Reset() { a.position, a.rank = 0, 0 }
