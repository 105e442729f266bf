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
	"github.com/shopspring/decimal"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/types"
)

// registerAggregates wires SUM/COUNT/AVG/MIN/MAX, plus the ranking
// window functions (ROW_NUMBER, RANK, DENSE_RANK) that never appear as
// plain aggregates. SUM is exercised directly by spec.md §8 scenario 5
// ("window SUM OVER") via the incremental add/remove path.
func registerAggregates(r *Registry) {
	r.RegisterAggregate(
		Signature{Name: "count", InputTypes: []sql.TypeTag{sql.Int64Tag}, Variadic: true},
		func() Accumulator { return &countAcc{} },
		func(args []sql.Type) (sql.Type, error) { return types.Int64, nil },
	)
	r.RegisterAggregate(
		Signature{Name: "sum", InputTypes: []sql.TypeTag{sql.Int64Tag}},
		func() Accumulator { return &sumIntAcc{} },
		func(args []sql.Type) (sql.Type, error) { return types.Int64, nil },
	)
	r.RegisterAggregate(
		Signature{Name: "sum", InputTypes: []sql.TypeTag{sql.Float64Tag}},
		func() Accumulator { return &sumFloatAcc{} },
		func(args []sql.Type) (sql.Type, error) { return types.Float64, nil },
	)
	r.RegisterAggregate(
		Signature{Name: "sum", InputTypes: []sql.TypeTag{sql.DecimalTag}},
		func() Accumulator { return &sumDecimalAcc{} },
		func(args []sql.Type) (sql.Type, error) { return args[0], nil },
	)
	r.RegisterAggregate(
		Signature{Name: "avg", InputTypes: []sql.TypeTag{sql.Float64Tag}},
		func() Accumulator { return &avgAcc{} },
		func(args []sql.Type) (sql.Type, error) { return types.Float64, nil },
	)
	r.RegisterAggregate(
		Signature{Name: "min", InputTypes: []sql.TypeTag{sql.Int64Tag}},
		func() Accumulator { return &extremeAcc{min: true} },
		func(args []sql.Type) (sql.Type, error) { return args[0], nil },
	)
	r.RegisterAggregate(
		Signature{Name: "max", InputTypes: []sql.TypeTag{sql.Int64Tag}},
		func() Accumulator { return &extremeAcc{min: false} },
		func(args []sql.Type) (sql.Type, error) { return args[0], nil },
	)

	r.RegisterWindow(
		Signature{Name: "row_number"},
		func() Accumulator { return &rowNumberAcc{} },
		func(args []sql.Type) (sql.Type, error) { return types.Int64, nil },
	)
	r.RegisterWindow(
		Signature{Name: "rank"},
		func() Accumulator { return &rankAcc{dense: false} },
		func(args []sql.Type) (sql.Type, error) { return types.Int64, nil },
	)
	r.RegisterWindow(
		Signature{Name: "dense_rank"},
		func() Accumulator { return &rankAcc{dense: true} },
		func(args []sql.Type) (sql.Type, error) { return types.Int64, nil },
	)
}

// countAcc implements COUNT(*) / COUNT(expr), the latter skipping NULLs.
type countAcc struct{ n int64 }

func (a *countAcc) Accumulate(ctx *sql.Context, args []sql.Value) error {
	if len(args) == 0 || !args[0].IsNull() {
		a.n++
	}
	return nil
}
func (a *countAcc) Remove(ctx *sql.Context, args []sql.Value) error {
	if len(args) == 0 || !args[0].IsNull() {
		a.n--
	}
	return nil
}
func (a *countAcc) Merge(ctx *sql.Context, other Accumulator) error {
	a.n += other.(*countAcc).n
	return nil
}
func (a *countAcc) Finalize(ctx *sql.Context) (sql.Value, error) { return sql.NewInt64(a.n), nil }
func (a *countAcc) Reset()                                      { a.n = 0 }
func (a *countAcc) SupportsIncremental() bool                   { return true }

// sumIntAcc implements incremental SUM over INT64 — the accumulator
// exercised by the running-total window scenario (spec.md §8 scenario
// 5): Accumulate/Remove slide the frame as the window advances.
type sumIntAcc struct {
	sum    int64
	any    bool
}

func (a *sumIntAcc) Accumulate(ctx *sql.Context, args []sql.Value) error {
	if args[0].IsNull() {
		return nil
	}
	a.sum += args[0].Payload().(int64)
	a.any = true
	return nil
}
func (a *sumIntAcc) Remove(ctx *sql.Context, args []sql.Value) error {
	if args[0].IsNull() {
		return nil
	}
	a.sum -= args[0].Payload().(int64)
	return nil
}
func (a *sumIntAcc) Merge(ctx *sql.Context, other Accumulator) error {
	o := other.(*sumIntAcc)
	a.sum += o.sum
	a.any = a.any || o.any
	return nil
}
func (a *sumIntAcc) Finalize(ctx *sql.Context) (sql.Value, error) {
	if !a.any {
		return sql.NullValue(types.Int64), nil
	}
	return sql.NewInt64(a.sum), nil
}
func (a *sumIntAcc) Reset()                    { a.sum, a.any = 0, false }
func (a *sumIntAcc) SupportsIncremental() bool { return true }

type sumFloatAcc struct {
	sum float64
	any bool
}

func (a *sumFloatAcc) Accumulate(ctx *sql.Context, args []sql.Value) error {
	if args[0].IsNull() {
		return nil
	}
	a.sum += args[0].Payload().(float64)
	a.any = true
	return nil
}
func (a *sumFloatAcc) Remove(ctx *sql.Context, args []sql.Value) error {
	if args[0].IsNull() {
		return nil
	}
	a.sum -= args[0].Payload().(float64)
	return nil
}
func (a *sumFloatAcc) Merge(ctx *sql.Context, other Accumulator) error {
	o := other.(*sumFloatAcc)
	a.sum += o.sum
	a.any = a.any || o.any
	return nil
}
func (a *sumFloatAcc) Finalize(ctx *sql.Context) (sql.Value, error) {
	if !a.any {
		return sql.NullValue(types.Float64), nil
	}
	return sql.NewFloat64(a.sum), nil
}
func (a *sumFloatAcc) Reset()                    { a.sum, a.any = 0, false }
func (a *sumFloatAcc) SupportsIncremental() bool { return true }

type sumDecimalAcc struct {
	sum decimal.Decimal
	any bool
}

func (a *sumDecimalAcc) Accumulate(ctx *sql.Context, args []sql.Value) error {
	if args[0].IsNull() {
		return nil
	}
	a.sum = a.sum.Add(args[0].Payload().(decimal.Decimal))
	a.any = true
	return nil
}
func (a *sumDecimalAcc) Remove(ctx *sql.Context, args []sql.Value) error {
	if args[0].IsNull() {
		return nil
	}
	a.sum = a.sum.Sub(args[0].Payload().(decimal.Decimal))
	return nil
}
func (a *sumDecimalAcc) Merge(ctx *sql.Context, other Accumulator) error {
	o := other.(*sumDecimalAcc)
	a.sum = a.sum.Add(o.sum)
	a.any = a.any || o.any
	return nil
}
func (a *sumDecimalAcc) Finalize(ctx *sql.Context) (sql.Value, error) {
	typ := types.MustCreateDecimalType(38, 9)
	if !a.any {
		return sql.NullValue(typ), nil
	}
	return sql.NewValue(typ, a.sum), nil
}
func (a *sumDecimalAcc) Reset()                    { a.sum, a.any = decimal.Zero, false }
func (a *sumDecimalAcc) SupportsIncremental() bool { return true }

// avgAcc holds running sum and count so Finalize can divide; Remove
// subtracts the value from both, so AVG slides incrementally like SUM
// and SupportsIncremental reports true.
type avgAcc struct {
	sum float64
	n   int64
}

func (a *avgAcc) Accumulate(ctx *sql.Context, args []sql.Value) error {
	if args[0].IsNull() {
		return nil
	}
	a.sum += args[0].Payload().(float64)
	a.n++
	return nil
}
func (a *avgAcc) Remove(ctx *sql.Context, args []sql.Value) error {
	if args[0].IsNull() {
		return nil
	}
	a.sum -= args[0].Payload().(float64)
	a.n--
	return nil
}
func (a *avgAcc) Merge(ctx *sql.Context, other Accumulator) error {
	o := other.(*avgAcc)
	a.sum += o.sum
	a.n += o.n
	return nil
}
func (a *avgAcc) Finalize(ctx *sql.Context) (sql.Value, error) {
	if a.n == 0 {
		return sql.NullValue(types.Float64), nil
	}
	return sql.NewFloat64(a.sum / float64(a.n)), nil
}
func (a *avgAcc) Reset()                    { a.sum, a.n = 0, 0 }
func (a *avgAcc) SupportsIncremental() bool { return true }

// extremeAcc implements MIN/MAX by buffering: dropping the current
// extreme on Remove requires rescanning, so this is not incrementally
// invertible and SupportsIncremental reports false (the caller
// recomputes the accumulator over the current frame instead of
// sliding it, per spec.md §4.5's incremental/holistic split).
type extremeAcc struct {
	min    bool
	values []sql.Value
}

func (a *extremeAcc) Accumulate(ctx *sql.Context, args []sql.Value) error {
	if !args[0].IsNull() {
		a.values = append(a.values, args[0])
	}
	return nil
}
func (a *extremeAcc) Remove(ctx *sql.Context, args []sql.Value) error {
	for i, v := range a.values {
		if sql.Equal(v, args[0]) {
			a.values = append(a.values[:i], a.values[i+1:]...)
			return nil
		}
	}
	return nil
}
func (a *extremeAcc) Merge(ctx *sql.Context, other Accumulator) error {
	o := other.(*extremeAcc)
	a.values = append(a.values, o.values...)
	return nil
}
func (a *extremeAcc) Finalize(ctx *sql.Context) (sql.Value, error) {
	if len(a.values) == 0 {
		return sql.Value{}, nil
	}
	best := a.values[0]
	for _, v := range a.values[1:] {
		c, err := v.Type().Compare(v.Payload(), best.Payload())
		if err != nil {
			return sql.Value{}, err
		}
		if (a.min && c < 0) || (!a.min && c > 0) {
			best = v
		}
	}
	return best, nil
}
func (a *extremeAcc) Reset()                    { a.values = nil }
func (a *extremeAcc) SupportsIncremental() bool { return false }

// rowNumberAcc implements ROW_NUMBER(): 1-based position within the
// partition's sort order, ignoring the frame entirely.
type rowNumberAcc struct{ n int64 }

func (a *rowNumberAcc) Accumulate(ctx *sql.Context, args []sql.Value) error {
	a.n++
	return nil
}
func (a *rowNumberAcc) Remove(ctx *sql.Context, args []sql.Value) error { return nil }
func (a *rowNumberAcc) Merge(ctx *sql.Context, other Accumulator) error {
	a.n += other.(*rowNumberAcc).n
	return nil
}
func (a *rowNumberAcc) Finalize(ctx *sql.Context) (sql.Value, error) { return sql.NewInt64(a.n), nil }
func (a *rowNumberAcc) Reset()                                      { a.n = 0 }
func (a *rowNumberAcc) SupportsIncremental() bool                   { return false }

// rankAcc implements RANK()/DENSE_RANK(): the rowexec window operator
// drives peer-group detection and calls Accumulate once per peer group
// with the group's size, so this only needs to track position.
type rankAcc struct {
	dense    bool
	position int64
	rank     int64
}

func (a *rankAcc) Accumulate(ctx *sql.Context, args []sql.Value) error {
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
func (a *rankAcc) Remove(ctx *sql.Context, args []sql.Value) error { return nil }
func (a *rankAcc) Merge(ctx *sql.Context, other Accumulator) error { return nil }
func (a *rankAcc) Finalize(ctx *sql.Context) (sql.Value, error)   { return sql.NewInt64(a.rank), nil }
func (a *rankAcc) Reset()                                          { a.position, a.rank = 0, 0 }
func (a *rankAcc) SupportsIncremental() bool                        { return false }
