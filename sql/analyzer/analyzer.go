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

package analyzer

import (
	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/expression/function"
)

// NewDefault builds an Analyzer wired with every built-in rule batch in
// its fixed order (see DefaultBatches). This is the orchestration
// entry point a top-level Executor calls once per statement, after
// Builder.Build has already produced a resolved plan.Node tree.
func NewDefault(catalog *sql.Catalog, registry *function.Registry) *Analyzer {
	return &Analyzer{
		Catalog:  catalog,
		Registry: registry,
		Batches:  DefaultBatches(),
	}
}
