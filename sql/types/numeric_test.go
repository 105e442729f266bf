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

package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
)

func TestNumberCompare(t *testing.T) {
	tests := []struct {
		typ         sql.Type
		a, b        interface{}
		expectedCmp int
	}{
		{Int64, int64(-5), int64(6), -1},
		{Int64, int64(5), int64(5), 0},
		{Int64, int64(6), int64(-5), 1},
		{Float64, -11.1, 12.2, -1},
		{Float64, 11.1, 11.1, 0},
		{Boolean, false, true, -1},
		{Boolean, true, true, 0},
	}

	for _, tt := range tests {
		cmp, err := tt.typ.Compare(tt.a, tt.b)
		require.NoError(t, err)
		require.Equal(t, tt.expectedCmp, cmp)
	}
}

func TestInt64Convert(t *testing.T) {
	require := require.New(t)

	v, err := Int64.Convert("42")
	require.NoError(err)
	require.Equal(int64(42), v)

	_, err = Int64.Convert("not a number")
	require.Error(err)
}

func TestDecimalRounding(t *testing.T) {
	require := require.New(t)

	d := MustCreateDecimalType(10, 2)
	v, err := d.Convert("3.14159")
	require.NoError(err)
	require.True(v.(decimal.Decimal).Equal(decimal.RequireFromString("3.14")))
}

func TestDecimalEquals(t *testing.T) {
	require := require.New(t)

	require.True(MustCreateDecimalType(10, 2).Equals(MustCreateDecimalType(10, 2)))
	require.False(MustCreateDecimalType(10, 2).Equals(MustCreateDecimalType(12, 2)))
}
