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

package sql

import "io"

// Row is a single tuple of Values, used by VALUES literals, MVCC row
// storage, and anywhere a single-row view is more natural than a batch.
// The execution engine proper moves data in RecordBatches; Row exists
// one layer down, the unit a RecordBatch is built out of.
type Row []Value

func NewRow(values ...Value) Row {
	r := make(Row, len(values))
	copy(r, values)
	return r
}

func (r Row) Copy() Row {
	cp := make(Row, len(r))
	for i, v := range r {
		cp[i] = v.Clone()
	}
	return cp
}

// Append returns a new Row with the given Rows concatenated after r's
// own columns, used by rowexec.Join to build each joined output row.
func (r Row) Append(rows ...Row) Row {
	n := len(r)
	for _, o := range rows {
		n += len(o)
	}
	out := make(Row, 0, n)
	out = append(out, r...)
	for _, o := range rows {
		out = append(out, o...)
	}
	return out
}

// RowIter yields Rows one at a time; it is the row-level counterpart to
// the batch-level rowexec.Iter and backs the VALUES row generator, the
// DML readers, and conversions to/from RecordBatch.
type RowIter interface {
	Next(ctx *Context) (Row, error)
	Close(ctx *Context) error
}

type sliceRowIter struct {
	rows []Row
	pos  int
}

// RowsToRowIter adapts a fixed slice of Rows into a RowIter, exhausting
// with io.EOF once consumed.
func RowsToRowIter(rows ...Row) RowIter {
	return &sliceRowIter{rows: rows}
}

func (it *sliceRowIter) Next(ctx *Context) (Row, error) {
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	r := it.rows[it.pos]
	it.pos++
	return r, nil
}

func (it *sliceRowIter) Close(ctx *Context) error { return nil }

// RowIterToRows drains a RowIter into a slice, used by callers that
// need a materialized result (tests, event bodies with no client).
func RowIterToRows(ctx *Context, iter RowIter) ([]Row, error) {
	var rows []Row
	for {
		r, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = iter.Close(ctx)
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, iter.Close(ctx)
}
