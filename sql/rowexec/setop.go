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
	"strings"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/plan"
)

// SetOp drains both sides fully and combines them per kind. The
// dedup'd variants (every kind except UNION ALL) hash each row to a
// string key built from its Values' printed form; spec.md §4.5 only
// requires set semantics over comparable scalars, so this is adequate
// without a typed hash per column.
func SetOp(ctx *sql.Context, schema sql.Schema, kind plan.SetOpKind, all bool, left, right Iter) (Iter, error) {
	leftRows, err := DrainRows(ctx, left)
	if err != nil {
		return nil, err
	}
	rightRows, err := DrainRows(ctx, right)
	if err != nil {
		return nil, err
	}

	if kind == plan.Union && all {
		out := append(append([]sql.Row{}, leftRows...), rightRows...)
		return RowsToIter(schema, out), nil
	}

	rightKeys := make(map[string]int, len(rightRows))
	for _, r := range rightRows {
		rightKeys[rowKey(r)]++
	}

	var out []sql.Row
	switch kind {
	case plan.Union:
		seen := make(map[string]bool, len(leftRows)+len(rightRows))
		for _, r := range leftRows {
			k := rowKey(r)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, r)
		}
		for _, r := range rightRows {
			k := rowKey(r)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, r)
		}
	case plan.Intersect:
		seen := make(map[string]bool, len(leftRows))
		for _, r := range leftRows {
			k := rowKey(r)
			if rightKeys[k] == 0 {
				continue
			}
			if !all && seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, r)
			if all {
				rightKeys[k]--
			}
		}
	case plan.Except:
		seen := make(map[string]bool, len(leftRows))
		for _, r := range leftRows {
			k := rowKey(r)
			if rightKeys[k] > 0 {
				if all {
					rightKeys[k]--
				}
				continue
			}
			if !all && seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, r)
		}
	default:
		return nil, sql.ErrInternal.New(fmt.Sprintf("unknown set operation kind %v", kind))
	}
	return RowsToIter(schema, out), nil
}

func rowKey(r sql.Row) string {
	var b strings.Builder
	for i, v := range r {
		if i > 0 {
			b.WriteByte(0)
		}
		if v.IsNull() {
			b.WriteString("\x01NULL")
			continue
		}
		fmt.Fprintf(&b, "%v", v.Payload())
	}
	return b.String()
}
