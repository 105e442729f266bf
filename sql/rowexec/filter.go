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

import "github.com/yachtsql/yachtsql/sql"

// filterIter evaluates Predicate against every row of each batch it
// pulls and re-packs the rows that pass into a new batch of the same
// schema. Predicate is evaluated row by row via sql.Expression.Eval
// rather than a vectorized path: sql/expression evaluates one Row at a
// time (see its package doc), so every operator in this package
// bridges through RecordBatch.Row.
type filterIter struct {
	ctx       *sql.Context
	child     Iter
	predicate sql.Expression
}

// Filter builds the Iter for a plan.Filter node.
func Filter(ctx *sql.Context, predicate sql.Expression, child Iter) Iter {
	return &filterIter{ctx: ctx, child: child, predicate: predicate}
}

func (f *filterIter) Next(ctx *sql.Context) (*sql.RecordBatch, error) {
	for {
		batch, err := f.child.Next(ctx)
		if err != nil {
			return nil, err
		}
		out := sql.NewRecordBatch(batch.Schema, batch.NumRows())
		for i := 0; i < batch.NumRows(); i++ {
			row := batch.Row(i)
			v, err := f.predicate.Eval(ctx, row)
			if err != nil {
				return nil, err
			}
			if sql.TriboolFromValue(v).MatchesWhere() {
				out.AppendRow(row)
			}
		}
		if out.NumRows() == 0 {
			continue
		}
		return out, nil
	}
}

func (f *filterIter) Close(ctx *sql.Context) error { return f.child.Close(ctx) }
