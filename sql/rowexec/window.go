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
	"fmt"
	"sort"
	"strings"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/plan"
)

// Window drains child, then for each WindowCall partitions the rows,
// orders each partition, and fills in one extra output column per call
// (spec.md §4.5, Window functions; §8 scenario 5, "window SUM OVER").
// Every call recomputes its accumulator from scratch over each row's
// frame rather than sliding a WindowAccumulator's Add/Remove
// incrementally as the frame advances — the same kind of deferred
// perf optimization aggregate.go's hash-vs-sort choice already is; the
// Accumulator contract already supports it (Remove exists precisely
// for this), it's just not wired up yet.
func Window(ctx *sql.Context, schema sql.Schema, windows []plan.WindowCall, child Iter) (Iter, error) {
	rows, err := DrainRows(ctx, child)
	if err != nil {
		return nil, err
	}

	extra := make([][]sql.Value, len(windows))
	for i, call := range windows {
		vals, err := evalWindowCall(ctx, call, rows)
		if err != nil {
			return nil, err
		}
		extra[i] = vals
	}

	out := make([]sql.Row, len(rows))
	for i, row := range rows {
		newRow := append(sql.Row{}, row...)
		for wi := range windows {
			newRow = append(newRow, extra[wi][i])
		}
		out[i] = newRow
	}
	return RowsToIter(schema, out), nil
}

// partitionEntry is one row's position within the overall drained set,
// carried alongside its row value while a partition is sorted.
type partitionEntry struct {
	origIndex int
	row       sql.Row
}

// evalWindowCall computes one WindowCall's output value for every
// input row, returned in the same order as rows.
func evalWindowCall(ctx *sql.Context, call plan.WindowCall, rows []sql.Row) ([]sql.Value, error) {
	out := make([]sql.Value, len(rows))

	buckets := make(map[string][]partitionEntry)
	var order []string
	for i, row := range rows {
		key, err := evalRowKey(ctx, call.Partitions, row)
		if err != nil {
			return nil, err
		}
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], partitionEntry{origIndex: i, row: row})
	}

	name := strings.ToLower(call.Name)

	for _, key := range order {
		part := buckets[key]
		sort.SliceStable(part, func(i, j int) bool {
			less, _ := rowLess(ctx, call.OrderBy, part[i].row, part[j].row)
			return less
		})

		orderKeys := make([]string, len(part))
		for i, e := range part {
			k, err := evalOrderByKey(ctx, call.OrderBy, e.row)
			if err != nil {
				return nil, err
			}
			orderKeys[i] = k
		}

		switch name {
		case "row_number":
			if err := evalRowNumber(ctx, call, part, out); err != nil {
				return nil, err
			}
		case "rank", "dense_rank":
			if err := evalRank(ctx, call, part, orderKeys, out); err != nil {
				return nil, err
			}
		default:
			if err := evalFramedCall(ctx, call, part, orderKeys, out); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// evalRowNumber ignores the frame entirely: 1-based position in sort
// order, exactly ROW_NUMBER()'s definition.
func evalRowNumber(ctx *sql.Context, call plan.WindowCall, part []partitionEntry, out []sql.Value) error {
	acc := call.Factory()
	for _, e := range part {
		if err := acc.Accumulate(ctx, nil); err != nil {
			return err
		}
		v, err := acc.Finalize(ctx)
		if err != nil {
			return err
		}
		out[e.origIndex] = v
	}
	return nil
}

// evalRank groups contiguous peer rows (equal ORDER BY key, a
// consequence of having already sorted the partition) and calls
// Accumulate once per group with the group's size, so RANK can skip
// ahead by the group size and DENSE_RANK can just count groups.
func evalRank(ctx *sql.Context, call plan.WindowCall, part []partitionEntry, orderKeys []string, out []sql.Value) error {
	acc := call.Factory()
	i := 0
	for i < len(part) {
		j := i
		for j < len(part) && orderKeys[j] == orderKeys[i] {
			j++
		}
		if err := acc.Accumulate(ctx, []sql.Value{sql.NewInt64(int64(j - i))}); err != nil {
			return err
		}
		v, err := acc.Finalize(ctx)
		if err != nil {
			return err
		}
		for k := i; k < j; k++ {
			out[part[k].origIndex] = v
		}
		i = j
	}
	return nil
}

// evalFramedCall handles every ordinary aggregate-as-window-function
// call: for each row, resolve its frame's [lo, hi] position range
// within the partition and recompute the accumulator over exactly
// those rows.
func evalFramedCall(ctx *sql.Context, call plan.WindowCall, part []partitionEntry, orderKeys []string, out []sql.Value) error {
	for pos, e := range part {
		lo, hi, err := resolveFrame(ctx, call.Frame, pos, len(part), orderKeys)
		if err != nil {
			return err
		}
		acc := call.Factory()
		for k := lo; k <= hi; k++ {
			args := make([]sql.Value, len(call.Args))
			for j, a := range call.Args {
				v, err := a.Eval(ctx, part[k].row)
				if err != nil {
					return err
				}
				args[j] = v
			}
			if err := acc.Accumulate(ctx, args); err != nil {
				return err
			}
		}
		v, err := acc.Finalize(ctx)
		if err != nil {
			return err
		}
		out[e.origIndex] = v
	}
	return nil
}

// resolveFrame turns a Frame's two FrameBounds into inclusive [lo, hi]
// positions within a sorted partition of length n, clipped to
// [0, n-1]. ROWS bounds are plain position arithmetic. RANGE/GROUPS
// CURRENT ROW bounds widen to the row's whole peer group (every row
// sharing its ORDER BY key), matching the SQL standard's "current row"
// meaning for non-ROWS frames. A bound with a numeric offset counts
// rows by position in every mode: a RANGE offset is not a distance in
// ORDER BY key values ("RANGE BETWEEN 5 PRECEDING AND CURRENT ROW"
// covers the 5 preceding rows, whatever the key type), and a GROUPS
// offset counts rows, not peer groups.
func resolveFrame(ctx *sql.Context, frame plan.Frame, pos, n int, orderKeys []string) (int, int, error) {
	lo, err := resolveBound(ctx, frame, frame.Start, pos, n, orderKeys, true)
	if err != nil {
		return 0, 0, err
	}
	hi, err := resolveBound(ctx, frame, frame.End, pos, n, orderKeys, false)
	if err != nil {
		return 0, 0, err
	}
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo > hi {
		return pos, pos - 1, nil // empty frame
	}
	return lo, hi, nil
}

func resolveBound(ctx *sql.Context, frame plan.Frame, b plan.FrameBound, pos, n int, orderKeys []string, isStart bool) (int, error) {
	switch {
	case b.Unbounded:
		if b.Preceding {
			return 0, nil
		}
		return n - 1, nil
	case b.Current:
		if frame.Mode == plan.FrameRows {
			return pos, nil
		}
		lo, hi := peerRange(orderKeys, pos)
		if isStart {
			return lo, nil
		}
		return hi, nil
	default:
		offset, err := evalFrameOffset(ctx, b.Offset)
		if err != nil {
			return 0, err
		}
		if b.Preceding {
			return pos - offset, nil
		}
		return pos + offset, nil
	}
}

// peerRange returns the contiguous run of indices around pos sharing
// orderKeys[pos]'s value, relying on the partition already being
// sorted by the same ORDER BY expressions.
func peerRange(orderKeys []string, pos int) (int, int) {
	lo, hi := pos, pos
	for lo > 0 && orderKeys[lo-1] == orderKeys[pos] {
		lo--
	}
	for hi < len(orderKeys)-1 && orderKeys[hi+1] == orderKeys[pos] {
		hi++
	}
	return lo, hi
}

func evalFrameOffset(ctx *sql.Context, e sql.Expression) (int, error) {
	v, err := e.Eval(ctx, nil)
	if err != nil {
		return 0, err
	}
	switch p := v.Payload().(type) {
	case int64:
		return int(p), nil
	case float64:
		return int(p), nil
	default:
		return 0, sql.ErrInternal.New(fmt.Sprintf("window frame offset evaluated to non-numeric payload %T", p))
	}
}

func evalRowKey(ctx *sql.Context, exprs []sql.Expression, row sql.Row) (string, error) {
	vals := make(sql.Row, len(exprs))
	for i, e := range exprs {
		v, err := e.Eval(ctx, row)
		if err != nil {
			return "", err
		}
		vals[i] = v
	}
	return rowKey(vals), nil
}

func evalOrderByKey(ctx *sql.Context, fields []plan.SortField, row sql.Row) (string, error) {
	vals := make(sql.Row, len(fields))
	for i, f := range fields {
		v, err := f.Expr.Eval(ctx, row)
		if err != nil {
			return "", err
		}
		vals[i] = v
	}
	return rowKey(vals), nil
}
