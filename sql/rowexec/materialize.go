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

// Materialized replays a row set a *plan.Materialize's child has
// already been drained into once (see
// sql/analyzer/physical.go's compiler cache, keyed on the
// *plan.Materialize pointer so every FROM reference to one shared CTE
// gets its own cursor over the same rows instead of recomputing it).
func Materialized(schema sql.Schema, rows []sql.Row) Iter {
	return RowsToIter(schema, rows)
}
