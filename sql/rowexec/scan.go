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
	"io"

	"github.com/yachtsql/yachtsql/sql"
)

// tableIter concatenates a Table's partitions into a single Iter,
// advancing to the next partition's BatchIter once the current one is
// exhausted. A Scan with a single row group behaves like its lone
// partition; multi-partition tables (several row groups) are the
// common case once storage.Table grows past one group.
type tableIter struct {
	ctx        *sql.Context
	partitions []sql.BatchIter
	pos        int
}

// Scan builds the Iter for a plan.Scan node.
func Scan(ctx *sql.Context, table sql.Table) (Iter, error) {
	partitions, err := table.Partitions(ctx)
	if err != nil {
		return nil, err
	}
	return &tableIter{ctx: ctx, partitions: partitions}, nil
}

func (t *tableIter) Next(ctx *sql.Context) (*sql.RecordBatch, error) {
	for t.pos < len(t.partitions) {
		batch, err := t.partitions[t.pos].Next(ctx)
		if err == io.EOF {
			if cerr := t.partitions[t.pos].Close(ctx); cerr != nil {
				return nil, cerr
			}
			t.pos++
			continue
		}
		if err != nil {
			return nil, err
		}
		return batch, nil
	}
	return nil, io.EOF
}

func (t *tableIter) Close(ctx *sql.Context) error {
	var firstErr error
	for ; t.pos < len(t.partitions); t.pos++ {
		if err := t.partitions[t.pos].Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
