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
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yachtsql/yachtsql/sql"
)

func int4range(lo, hi int64) RangeValue {
	return RangeValue{
		Lower:     sql.NewValue(Int64, lo),
		Upper:     sql.NewValue(Int64, hi),
		LowerIncl: true,
		UpperIncl: false,
	}
}

func TestRangeContainsPoint(t *testing.T) {
	require := require.New(t)

	r := int4range(1, 10)
	ok, err := RangeContains(Int64, r, sql.NewValue(Int64, int64(5)))
	require.NoError(err)
	require.True(ok)

	ok, err = RangeContains(Int64, r, sql.NewValue(Int64, int64(10)))
	require.NoError(err)
	require.False(ok, "upper bound is exclusive")
}

// TestRangeContainmentTransitivity exercises P8: A @> B and B @> C implies
// A @> C.
func TestRangeContainmentTransitivity(t *testing.T) {
	require := require.New(t)

	a := int4range(0, 100)
	b := int4range(10, 50)
	c := int4range(20, 30)

	ab, err := RangeContainsRange(Int64, a, b)
	require.NoError(err)
	require.True(ab)

	bc, err := RangeContainsRange(Int64, b, c)
	require.NoError(err)
	require.True(bc)

	ac, err := RangeContainsRange(Int64, a, c)
	require.NoError(err)
	require.True(ac, "A @> B and B @> C must imply A @> C")
}

func TestJSONContainmentTransitivity(t *testing.T) {
	require := require.New(t)

	a := map[string]interface{}{"x": map[string]interface{}{"y": float64(1), "z": float64(2)}}
	b := map[string]interface{}{"x": map[string]interface{}{"y": float64(1)}}
	c := map[string]interface{}{}

	require.True(JSONContains(a, b))
	require.True(JSONContains(b, c))
	require.True(JSONContains(a, c))
}

func TestVectorDistance(t *testing.T) {
	require := require.New(t)

	d, err := EuclideanDistance([]float32{1, 0, 0}, []float32{0, 1, 0})
	require.NoError(err)
	require.InDelta(math.Sqrt2, d, 1e-12)

	_, err = EuclideanDistance([]float32{1, 0}, []float32{0, 1, 0})
	require.Error(err)
}
