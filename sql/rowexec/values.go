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

// Values evaluates a plan.Values node's literal rows once, up front,
// and replays them as an Iter.
func Values(ctx *sql.Context, schema sql.Schema, rows [][]sql.Expression) (Iter, error) {
	out := make([]sql.Row, len(rows))
	for i, exprs := range rows {
		row := make(sql.Row, len(exprs))
		for j, e := range exprs {
			v, err := e.Eval(ctx, nil)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		out[i] = row
	}
	return RowsToIter(schema, out), nil
}
