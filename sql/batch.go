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

// DefaultBatchSize is the target row count for a RecordBatch, per
// spec.md §3 ("Batch size target: 1024-4096 rows").
const DefaultBatchSize = 2048

// ColumnData is one dense, equal-length column within a RecordBatch: a
// payload slice plus a parallel []bool null vector. Values holds each
// row's raw payload as interface{}, with the Type stored once on the
// column (a production columnar engine would further specialize this
// per primitive type, which is out of scope for the core).
type ColumnData struct {
	Name    string
	Type    Type
	Values  []interface{}
	Nulls   []bool // Nulls[i] == true means Values[i] is not meaningful
}

func NewColumnData(name string, t Type, cap int) *ColumnData {
	return &ColumnData{
		Name:   name,
		Type:   t,
		Values: make([]interface{}, 0, cap),
		Nulls:  make([]bool, 0, cap),
	}
}

func (c *ColumnData) Len() int { return len(c.Values) }

func (c *ColumnData) Append(v Value) {
	if v.IsNull() {
		c.Values = append(c.Values, nil)
		c.Nulls = append(c.Nulls, true)
		return
	}
	c.Values = append(c.Values, v.Payload())
	c.Nulls = append(c.Nulls, false)
}

// Set overwrites slot i in place without growing the column, used by
// storage's free-slot reuse when a reclaimed MVCC row version is
// recycled instead of appending (spec.md §4.6, free-slot bitmap).
func (c *ColumnData) Set(i int, v Value) {
	if v.IsNull() {
		c.Values[i] = nil
		c.Nulls[i] = true
		return
	}
	c.Values[i] = v.Payload()
	c.Nulls[i] = false
}

func (c *ColumnData) At(i int) Value {
	if c.Nulls[i] {
		return NullValue(c.Type)
	}
	return NewValue(c.Type, c.Values[i])
}

// RecordBatch is an ordered list of named, equal-length columns — the
// unit execution operators pass between each other (spec.md §3).
type RecordBatch struct {
	Schema  Schema
	Columns []*ColumnData
}

// NewRecordBatch allocates an empty batch with one ColumnData per
// schema entry, pre-sized to cap.
func NewRecordBatch(schema Schema, cap int) *RecordBatch {
	cols := make([]*ColumnData, len(schema))
	for i, c := range schema {
		cols[i] = NewColumnData(c.Name, c.Type, cap)
	}
	return &RecordBatch{Schema: schema, Columns: cols}
}

// NumRows returns the batch's row count, taken from the first column's
// length; the columns are not checked against each other here.
func (b *RecordBatch) NumRows() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Len()
}

func (b *RecordBatch) NumCols() int { return len(b.Columns) }

// AppendRow appends one Row's worth of Values to the batch, one per
// column, in schema order.
func (b *RecordBatch) AppendRow(row Row) {
	for i, v := range row {
		b.Columns[i].Append(v)
	}
}

// Row materializes row i as a sql.Row, used by operators (sort
// comparators, hash keys) that need a single logical tuple.
func (b *RecordBatch) Row(i int) Row {
	row := make(Row, len(b.Columns))
	for j, c := range b.Columns {
		row[j] = c.At(i)
	}
	return row
}

// Slice returns a new RecordBatch containing rows [start, end), used by
// LIMIT/OFFSET.
func (b *RecordBatch) Slice(start, end int) *RecordBatch {
	out := NewRecordBatch(b.Schema, end-start)
	for i := start; i < end; i++ {
		out.AppendRow(b.Row(i))
	}
	return out
}

// RowsToRecordBatch materializes a Row slice as a single RecordBatch,
// the bridge used by VALUES and any row-oriented source feeding the
// batch-oriented executor.
func RowsToRecordBatch(schema Schema, rows []Row) *RecordBatch {
	b := NewRecordBatch(schema, len(rows))
	for _, r := range rows {
		b.AppendRow(r)
	}
	return b
}
