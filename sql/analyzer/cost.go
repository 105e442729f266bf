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
	"github.com/yachtsql/yachtsql/sql/plan"
)

// defaultScanRows is the row-count guess for a bare table scan: no
// statistics are collected anywhere in this package (cardinality
// estimation is out of scope beyond this advisory model), so every
// base table is assumed to hold the same moderate number of rows.
const defaultScanRows = 1000

// filterSelectivity is the fraction of rows any Filter is assumed to
// let through, whatever its predicate (a literal TRUE included).
const filterSelectivity = 0.1

// EstimateRows is the cost model's only output: an advisory row-count
// estimate for n, propagated bottom-up via fixed per-operator
// selectivity defaults. It never drives join enumeration or reordering
// (cost-based join reordering beyond the rule-based rewrites in
// rules.go is explicitly out of scope); its only consumer is
// materializeSharedCTEs, which uses it to break the tie between
// materializing a shared CTE and simply recomputing it on each
// reference, both of which are correct.
func EstimateRows(n sql.Node) int64 {
	if n == nil {
		return 0
	}
	switch node := n.(type) {
	case *plan.Scan:
		return defaultScanRows
	case *plan.Values:
		return int64(len(node.Rows))
	case *plan.Filter:
		child := EstimateRows(node.Child)
		est := int64(float64(child) * filterSelectivity)
		if est < 1 && child > 0 {
			est = 1
		}
		return est
	case *plan.Project:
		return EstimateRows(node.Child)
	case *plan.Sort:
		return EstimateRows(node.Child)
	case *plan.SubqueryAlias:
		return EstimateRows(node.Child)
	case *plan.Materialize:
		return EstimateRows(node.Child)
	case *plan.Limit:
		child := EstimateRows(node.Child)
		count, ok := literalInt(node.Count)
		if !ok || count < 0 {
			return child
		}
		if count < child {
			return count
		}
		return child
	case *plan.Aggregate:
		child := EstimateRows(node.Child)
		if len(node.GroupBy) == 0 {
			return 1
		}
		// A GROUP BY collapses rows onto distinct keys; absent any
		// column statistics, assume one order of magnitude fewer
		// groups than input rows, floored at one.
		est := child / 10
		if est < 1 {
			est = 1
		}
		return est
	case *plan.Join:
		left := EstimateRows(node.Left)
		right := EstimateRows(node.Right)
		switch node.Kind {
		case plan.CrossJoin:
			return left * right
		case plan.SemiJoin, plan.AntiJoin:
			return left
		default:
			max := left
			if right > max {
				max = right
			}
			if max == 0 {
				return 0
			}
			return (left * right) / max
		}
	case *plan.SetOp:
		left := EstimateRows(node.Left)
		right := EstimateRows(node.Right)
		switch node.Kind {
		case plan.Union:
			return left + right
		case plan.Intersect:
			if left < right {
				return left
			}
			return right
		default: // Except
			return left
		}
	default:
		children := n.Children()
		if len(children) == 0 {
			return defaultScanRows
		}
		var total int64
		for _, c := range children {
			total += EstimateRows(c)
		}
		return total
	}
}
