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

// projectIter evaluates Columns against each row of every batch it
// pulls, producing a batch under the new, narrower/wider schema.
type projectIter struct {
	ctx     *sql.Context
	child   Iter
	schema  sql.Schema
	columns []sql.Expression
}

// Project builds the Iter for a plan.Project node.
func Project(ctx *sql.Context, schema sql.Schema, columns []sql.Expression, child Iter) Iter {
	return &projectIter{ctx: ctx, child: child, schema: schema, columns: columns}
}

func (p *projectIter) Next(ctx *sql.Context) (*sql.RecordBatch, error) {
	batch, err := p.child.Next(ctx)
	if err != nil {
		return nil, err
	}
	out := sql.NewRecordBatch(p.schema, batch.NumRows())
	for i := 0; i < batch.NumRows(); i++ {
		row := batch.Row(i)
		projected := make(sql.Row, len(p.columns))
		for j, e := range p.columns {
			v, err := e.Eval(ctx, row)
			if err != nil {
				return nil, err
			}
			projected[j] = v
		}
		out.AppendRow(projected)
	}
	return out, nil
}

func (p *projectIter) Close(ctx *sql.Context) error { return p.child.Close(ctx) }
