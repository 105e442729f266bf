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

package function

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/types"
)

func TestLookupScalarExactMatch(t *testing.T) {
	r := NewBuiltinRegistry()
	fn, ret, err := r.LookupScalar("lower", AnyDialect, []sql.Type{types.String})
	require.NoError(t, err)
	require.True(t, ret.Equals(types.String))

	out, err := fn(sql.NewEmptyContext(), []sql.Value{sql.NewString("HELLO")})
	require.NoError(t, err)
	require.Equal(t, "hello", out.Payload())
}

func TestLookupScalarUnknownFunction(t *testing.T) {
	r := NewBuiltinRegistry()
	_, _, err := r.LookupScalar("frobnicate", AnyDialect, []sql.Type{types.Int64})
	require.Error(t, err)
	require.True(t, sql.ErrUnknownFunction.Is(err))
}

func TestCoercionDistanceIntToDecimalCheaperThanFloat(t *testing.T) {
	intToDecimal, ok := CoercionDistance(sql.Int64Tag, sql.DecimalTag)
	require.True(t, ok)
	intToFloat, ok := CoercionDistance(sql.Int64Tag, sql.Float64Tag)
	require.True(t, ok)
	require.Less(t, intToDecimal, intToFloat)
}

func TestLookupAggregateSumIncremental(t *testing.T) {
	r := NewBuiltinRegistry()
	factory, ret, err := r.LookupAggregate("sum", []sql.Type{types.Int64})
	require.NoError(t, err)
	require.True(t, ret.Equals(types.Int64))

	acc := factory()
	ctx := sql.NewEmptyContext()
	require.NoError(t, acc.Accumulate(ctx, []sql.Value{sql.NewInt64(3)}))
	require.NoError(t, acc.Accumulate(ctx, []sql.Value{sql.NewInt64(4)}))
	out, err := acc.Finalize(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(7), out.Payload())

	winAcc := acc.(WindowAccumulator)
	require.NoError(t, winAcc.Remove(ctx, []sql.Value{sql.NewInt64(3)}))
	out, err = acc.Finalize(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), out.Payload())
}

func TestGenerateSeriesTableFunc(t *testing.T) {
	r := NewBuiltinRegistry()
	fn, ok := r.LookupTable("generate_series", 2)
	require.True(t, ok)

	iter, err := fn(sql.NewEmptyContext(), []sql.Value{sql.NewInt64(1), sql.NewInt64(3)})
	require.NoError(t, err)
	rows, err := sql.RowIterToRows(sql.NewEmptyContext(), iter)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, int64(1), rows[0][0].Payload())
	require.Equal(t, int64(3), rows[2][0].Payload())
}
