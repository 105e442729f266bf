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

// Package rowexec holds the physical operators: one Iter implementation
// per plan.Node kind, each pulling RecordBatches from its children and
// producing its own. sql/analyzer/physical.go is the only caller that
// builds these directly; everything downstream of Builder.Build and the
// optimizer rules lands here.
package rowexec

import (
	"io"

	"github.com/yachtsql/yachtsql/sql"
)

// Iter is the operator interface every node in this package implements.
// It is identical in shape to sql.BatchIter; the alias exists so
// operator code reads as rowexec.Iter rather than reaching into the sql
// package for a name that describes the execution layer, not the core
// data model.
type Iter = sql.BatchIter

// DrainRows pulls every row out of it, across as many batches as it
// takes, and closes it. Used by operators that need the whole input
// materialized before producing their first output row: Sort, both
// sides of Join, Aggregate, Window, and the set operators.
func DrainRows(ctx *sql.Context, it Iter) ([]sql.Row, error) {
	var rows []sql.Row
	for {
		batch, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = it.Close(ctx)
			return nil, err
		}
		for i := 0; i < batch.NumRows(); i++ {
			rows = append(rows, batch.Row(i))
		}
	}
	return rows, it.Close(ctx)
}

// rowsIter replays a fixed, already-materialized row slice as an Iter,
// chunked to ctx.BatchSize() per call to Next. It backs every operator
// that has to fully buffer before it can emit (Sort, hash aggregate,
// set operators) and the VALUES literal row source.
type rowsIter struct {
	schema sql.Schema
	rows   []sql.Row
	pos    int
}

// RowsToIter adapts a materialized row slice into a batch-chunked Iter.
func RowsToIter(schema sql.Schema, rows []sql.Row) Iter {
	return &rowsIter{schema: schema, rows: rows}
}

func (it *rowsIter) Next(ctx *sql.Context) (*sql.RecordBatch, error) {
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	size := ctx.BatchSize()
	end := it.pos + size
	if end > len(it.rows) {
		end = len(it.rows)
	}
	batch := sql.NewRecordBatch(it.schema, end-it.pos)
	for _, r := range it.rows[it.pos:end] {
		batch.AppendRow(r)
	}
	it.pos = end
	return batch, nil
}

func (it *rowsIter) Close(ctx *sql.Context) error { return nil }

// batchRowIter adapts an Iter to a sql.RowIter by flattening each
// RecordBatch into its constituent Rows. This is the bridge
// sql/analyzer/physical.go uses to satisfy expression.Subquery /
// expression.Exists / expression.InSubquery's subqueryRunner hook,
// which is specified in terms of sql.RowIter rather than rowexec.Iter
// (see subquery.go's doc comment on why expression/ can't import plan
// or rowexec).
type batchRowIter struct {
	ctx   *sql.Context
	it    Iter
	batch *sql.RecordBatch
	pos   int
}

// RowIterFromBatches wraps it so it can be consumed one sql.Row at a
// time.
func RowIterFromBatches(ctx *sql.Context, it Iter) sql.RowIter {
	return &batchRowIter{ctx: ctx, it: it}
}

func (b *batchRowIter) Next(ctx *sql.Context) (sql.Row, error) {
	for b.batch == nil || b.pos >= b.batch.NumRows() {
		batch, err := b.it.Next(ctx)
		if err != nil {
			return nil, err
		}
		b.batch = batch
		b.pos = 0
	}
	row := b.batch.Row(b.pos)
	b.pos++
	return row, nil
}

func (b *batchRowIter) Close(ctx *sql.Context) error { return b.it.Close(ctx) }
