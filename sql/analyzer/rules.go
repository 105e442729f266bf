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
	"github.com/yachtsql/yachtsql/sql/expression"
	"github.com/yachtsql/yachtsql/sql/plan"
	"github.com/yachtsql/yachtsql/sql/transform"
)

// DefaultBatches builds the ordered rule batches every Analyzer runs,
// in the fixed phase order decided in the Open Question entry for
// aggregate-rewrite-vs-decorrelation ordering (see DESIGN.md):
// normalization, simplification, decorrelation, join-rewrite,
// aggregate-rewrite, limit-pushdown, materialization-hints. Build
// already returns a fully resolved tree, so unlike the teacher's
// rule batches these never need to re-run resolution; they only
// rewrite an already-resolved plan into an equivalent, cheaper one.
func DefaultBatches() []Batch {
	return []Batch{
		{
			Desc:       "normalization",
			Iterations: -1,
			Rules: []Rule{
				{Name: "optimize_subquery_plans", Apply: optimizeSubqueryPlans},
				{Name: "push_not_through_and_or", Apply: pushNotThroughAndOr},
				{Name: "collapse_double_negation", Apply: collapseDoubleNegation},
			},
		},
		{
			Desc:       "simplification",
			Iterations: -1,
			Rules: []Rule{
				{Name: "fold_constants", Apply: foldConstants},
				{Name: "simplify_logical_identities", Apply: simplifyLogicalIdentities},
				{Name: "simplify_filters", Apply: simplifyFilters},
			},
		},
		{
			Desc:       "decorrelation",
			Iterations: -1,
			Rules: []Rule{
				{Name: "rewrite_exists_to_semi_join", Apply: rewriteExistsToSemiJoin},
				{Name: "rewrite_in_subquery_to_semi_join", Apply: rewriteInSubqueryToSemiJoin},
			},
		},
		{
			Desc:       "join-rewrite",
			Iterations: -1,
			Rules: []Rule{
				{Name: "eliminate_cross_joins", Apply: eliminateCrossJoins},
			},
		},
		{
			Desc:       "aggregate-rewrite",
			Iterations: -1,
			Rules: []Rule{
				{Name: "remove_constant_group_by_keys", Apply: removeConstantGroupByKeys},
				{Name: "pushdown_having_on_group_keys", Apply: pushdownHavingOnGroupKeys},
			},
		},
		{
			Desc:       "limit-pushdown",
			Iterations: -1,
			Rules: []Rule{
				{Name: "push_limit_below_project", Apply: pushLimitBelowProject},
				{Name: "push_limit_into_union_branches", Apply: pushLimitIntoUnionBranches},
			},
		},
		{
			Desc:       "materialization-hints",
			Iterations: 1,
			Rules: []Rule{
				{Name: "materialize_shared_ctes", Apply: materializeSharedCTEs},
			},
		},
	}
}

// --- normalization ---------------------------------------------------

// optimizeSubqueryPlans recurses into every Subquery/Exists/InSubquery
// expression's own Query and runs the full set of batches over it too.
// Subquery.Children()/Exists.Children()/InSubquery.Children() all
// deliberately return nil or just the scalar side (see
// expression/subquery.go's subqueryRunner doc comment, which explains
// that expression/ can't import plan/ to expose Query through
// Children()), so without this rule a nested subquery's plan would
// never be touched by any batch below this one. Run first in
// normalization so every later rule, at any nesting depth, sees an
// already-optimized tree.
func optimizeSubqueryPlans(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	inner := scope.newScope(n)
	return transform.NodeExprs(n, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		switch x := e.(type) {
		case *expression.Subquery:
			newQuery, err := a.Analyze(ctx, x.Query, inner)
			if err != nil {
				return e, transform.SameTree, err
			}
			if newQuery == x.Query {
				return e, transform.SameTree, nil
			}
			return expression.NewSubquery(newQuery, x.Type()), transform.NewTree, nil
		case *expression.Exists:
			newQuery, err := a.Analyze(ctx, x.Query, inner)
			if err != nil {
				return e, transform.SameTree, err
			}
			if newQuery == x.Query {
				return e, transform.SameTree, nil
			}
			return expression.NewExists(newQuery, x.Not), transform.NewTree, nil
		case *expression.InSubquery:
			newQuery, err := a.Analyze(ctx, x.Query, inner)
			if err != nil {
				return e, transform.SameTree, err
			}
			if newQuery == x.Query {
				return e, transform.SameTree, nil
			}
			return expression.NewInSubquery(x.Left, newQuery, x.Not), transform.NewTree, nil
		default:
			return e, transform.SameTree, nil
		}
	})
}

// pushNotThroughAndOr applies De Morgan's laws so later rules (cross-
// join elimination, semi-join rewrite) see AND-conjuncts and OR-
// disjuncts directly instead of buried under a NOT.
func pushNotThroughAndOr(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.NodeExprs(n, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		not, ok := e.(*expression.Not)
		if !ok {
			return e, transform.SameTree, nil
		}
		switch inner := not.Child.(type) {
		case *expression.And:
			return expression.NewOr(expression.NewNot(inner.Left), expression.NewNot(inner.Right)), transform.NewTree, nil
		case *expression.Or:
			return expression.NewAnd(expression.NewNot(inner.Left), expression.NewNot(inner.Right)), transform.NewTree, nil
		default:
			return e, transform.SameTree, nil
		}
	})
}

func collapseDoubleNegation(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.NodeExprs(n, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		not, ok := e.(*expression.Not)
		if !ok {
			return e, transform.SameTree, nil
		}
		if inner, ok := not.Child.(*expression.Not); ok {
			return inner.Child, transform.NewTree, nil
		}
		return e, transform.SameTree, nil
	})
}

// --- simplification ----------------------------------------------------

// constantLeaf reports whether e, once its own children have already
// been folded to literals, can be evaluated with no input row at all.
// GetField obviously can't; Subquery/Exists/InSubquery need a row
// iterator this package doesn't drive, so they're never folded here
// even when their inner plan happens to be free of outer references.
func constantLeaf(e sql.Expression) bool {
	switch e.(type) {
	case *expression.GetField, *expression.Subquery, *expression.Exists, *expression.InSubquery:
		return false
	default:
		return true
	}
}

// foldConstants evaluates any expression whose entire subtree is
// already literal, replacing it with its computed value. Run inside
// the simplification fixpoint so folding one AND's operands can in
// turn let an enclosing comparison fold on the next pass.
func foldConstants(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.NodeExprs(n, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		if _, ok := e.(*expression.Literal); ok {
			return e, transform.SameTree, nil
		}
		if !constantLeaf(e) {
			return e, transform.SameTree, nil
		}
		for _, c := range e.Children() {
			if _, ok := c.(*expression.Literal); !ok {
				return e, transform.SameTree, nil
			}
		}
		v, err := e.Eval(ctx, nil)
		if err != nil {
			// Leave it in place; it may be a runtime-only error (e.g.
			// division by zero) that should surface during execution
			// rather than analysis.
			return e, transform.SameTree, nil
		}
		return expression.NewLiteral(v), transform.NewTree, nil
	})
}

func literalBool(e sql.Expression) (val bool, isNull bool, ok bool) {
	lit, isLit := e.(*expression.Literal)
	if !isLit {
		return false, false, false
	}
	v, err := lit.Eval(nil, nil)
	if err != nil {
		return false, false, false
	}
	if v.IsNull() {
		return false, true, true
	}
	b, ok := v.Payload().(bool)
	if !ok {
		return false, false, false
	}
	return b, false, true
}

// simplifyLogicalIdentities applies the short-circuit identities AND/OR
// satisfy even when only one operand is constant (fold_constants alone
// only fires once every leaf is constant).
func simplifyLogicalIdentities(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.NodeExprs(n, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		switch x := e.(type) {
		case *expression.And:
			if b, isNull, ok := literalBool(x.Left); ok && !isNull {
				if !b {
					return x.Left, transform.NewTree, nil
				}
				return x.Right, transform.NewTree, nil
			}
			if b, isNull, ok := literalBool(x.Right); ok && !isNull {
				if !b {
					return x.Right, transform.NewTree, nil
				}
				return x.Left, transform.NewTree, nil
			}
		case *expression.Or:
			if b, isNull, ok := literalBool(x.Left); ok && !isNull {
				if b {
					return x.Left, transform.NewTree, nil
				}
				return x.Right, transform.NewTree, nil
			}
			if b, isNull, ok := literalBool(x.Right); ok && !isNull {
				if b {
					return x.Right, transform.NewTree, nil
				}
				return x.Left, transform.NewTree, nil
			}
		}
		return e, transform.SameTree, nil
	})
}

// simplifyFilters drops a Filter whose predicate folded to a constant:
// TRUE removes the Filter entirely, FALSE or NULL (neither of which
// ever matches WHERE) replaces it with an empty row source carrying
// the same schema.
func simplifyFilters(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, transform.SameTree, nil
		}
		b, isNull, ok := literalBool(f.Predicate)
		if !ok {
			return node, transform.SameTree, nil
		}
		if isNull || !b {
			return plan.NewValues(nil, f.Child.Schema()), transform.NewTree, nil
		}
		return f.Child, transform.NewTree, nil
	})
}

// --- decorrelation -------------------------------------------------------

// splitConjuncts flattens a tree of ANDs into its leaf conjuncts.
func splitConjuncts(e sql.Expression) []sql.Expression {
	and, ok := e.(*expression.And)
	if !ok {
		return []sql.Expression{e}
	}
	return append(splitConjuncts(and.Left), splitConjuncts(and.Right)...)
}

func joinConjuncts(conjuncts []sql.Expression) sql.Expression {
	if len(conjuncts) == 0 {
		return nil
	}
	result := conjuncts[0]
	for _, c := range conjuncts[1:] {
		result = expression.NewAnd(result, c)
	}
	return result
}

// rewriteExistsToSemiJoin turns `WHERE [NOT] EXISTS (subquery)` (as
// the whole predicate or one AND-conjunct of it) into a SemiJoin or
// AntiJoin against the subquery's plan, per spec.md §4.3's
// decorrelation phase and the SemiJoin/AntiJoin kinds documented in
// plan.Join. The rewrite is sound regardless of whether the subquery
// is correlated; it is applied here to uncorrelated ones too, turning
// the per-row EXISTS check into a join (which the physical compiler
// lowers to its nested-loop join like every other join kind).
func rewriteExistsToSemiJoin(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, transform.SameTree, nil
		}
		conjuncts := splitConjuncts(f.Predicate)
		var kept []sql.Expression
		child := f.Child
		changed := false
		for _, c := range conjuncts {
			ex, ok := c.(*expression.Exists)
			if !ok {
				kept = append(kept, c)
				continue
			}
			kind := plan.SemiJoin
			if ex.Not {
				kind = plan.AntiJoin
			}
			child = plan.NewJoin(kind, child, ex.Query, nil)
			changed = true
		}
		if !changed {
			return node, transform.SameTree, nil
		}
		if len(kept) == 0 {
			return child, transform.NewTree, nil
		}
		return plan.NewFilter(joinConjuncts(kept), child), transform.NewTree, nil
	})
}

// rewriteInSubqueryToSemiJoin turns `x [NOT] IN (subquery)` into a
// SemiJoin/AntiJoin keyed on equality between x and the subquery's
// single output column. NULL-aware NOT IN semantics (a NULL anywhere
// in the subquery's results makes every row fail the check) aren't
// reproduced by a plain AntiJoin; this rewrite therefore only fires
// for the `IN` (non-negated) case, leaving `NOT IN` to InSubquery's
// own three-valued Eval, run through the Runner the physical compiler
// attaches (physical.go, bindSubqueryRunners).
func rewriteInSubqueryToSemiJoin(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, transform.SameTree, nil
		}
		conjuncts := splitConjuncts(f.Predicate)
		var kept []sql.Expression
		child := f.Child
		changed := false
		for _, c := range conjuncts {
			in, ok := c.(*expression.InSubquery)
			if !ok || in.Not {
				kept = append(kept, c)
				continue
			}
			schema := in.Query.Schema()
			if len(schema) == 0 {
				kept = append(kept, c)
				continue
			}
			leftIdx := len(child.Schema())
			cond := expression.NewEquals(in.Left, expression.NewGetField(leftIdx, schema[0].Type, schema[0].Name, schema[0].Nullable))
			child = plan.NewJoin(plan.SemiJoin, child, in.Query, cond)
			changed = true
		}
		if !changed {
			return node, transform.SameTree, nil
		}
		if len(kept) == 0 {
			return child, transform.NewTree, nil
		}
		return plan.NewFilter(joinConjuncts(kept), child), transform.NewTree, nil
	})
}

// --- join-rewrite --------------------------------------------------------

// eliminateCrossJoins rewrites `FROM a, b WHERE a.x = b.y` — parsed as
// a Filter sitting over a CrossJoin, since the comma-join syntax
// carries no ON clause of its own — into an InnerJoin carrying the
// matched conjuncts as its Condition, the classic cross-join
// elimination rewrite (mirrored by the teacher's own
// replace_cross_joins rule, test-only retrieved but confirming the
// same shape). Conjuncts that reference only one side, or neither,
// are left behind in an outer Filter rather than folded into the join
// condition, since a non-equi/non-both-sides predicate isn't safe to
// evaluate as part of the join itself here.
func eliminateCrossJoins(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, transform.SameTree, nil
		}
		j, ok := f.Child.(*plan.Join)
		if !ok || j.Kind != plan.CrossJoin || j.Condition != nil {
			return node, transform.SameTree, nil
		}
		leftWidth := len(j.Left.Schema())
		rightWidth := len(j.Right.Schema())

		conjuncts := splitConjuncts(f.Predicate)
		var joinConds, remaining []sql.Expression
		for _, c := range conjuncts {
			if referencesBothSides(c, leftWidth, rightWidth) {
				joinConds = append(joinConds, c)
			} else {
				remaining = append(remaining, c)
			}
		}
		if len(joinConds) == 0 {
			return node, transform.SameTree, nil
		}
		newJoin := plan.NewJoin(plan.InnerJoin, j.Left, j.Right, joinConjuncts(joinConds))
		if len(remaining) == 0 {
			return newJoin, transform.NewTree, nil
		}
		return plan.NewFilter(joinConjuncts(remaining), newJoin), transform.NewTree, nil
	})
}

// referencesBothSides reports whether e reads at least one GetField
// from [0, leftWidth) and at least one from [leftWidth, leftWidth+rightWidth).
func referencesBothSides(e sql.Expression, leftWidth, rightWidth int) bool {
	sawLeft, sawRight := false, false
	transform.InspectExpressions(e, func(x sql.Expression) bool {
		if x == nil {
			return true
		}
		gf, ok := x.(*expression.GetField)
		if !ok {
			return true
		}
		if gf.Index() < leftWidth {
			sawLeft = true
		} else if gf.Index() < leftWidth+rightWidth {
			sawRight = true
		}
		return true
	})
	return sawLeft && sawRight
}

// --- aggregate-rewrite ---------------------------------------------------

// removeConstantGroupByKeys drops GROUP BY keys that folded to a
// literal: grouping by a constant never changes which rows share a
// group, so it's equivalent to (and cheaper than) not grouping by it
// at all. An Aggregate left with zero GroupBy entries still computes
// one group over its whole input, same as GROUP BY () would.
func removeConstantGroupByKeys(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		agg, ok := node.(*plan.Aggregate)
		if !ok {
			return node, transform.SameTree, nil
		}
		kept := make([]sql.Expression, 0, len(agg.GroupBy))
		changed := false
		for _, g := range agg.GroupBy {
			if _, ok := g.(*expression.Literal); ok {
				changed = true
				continue
			}
			kept = append(kept, g)
		}
		if !changed {
			return node, transform.SameTree, nil
		}
		return plan.NewAggregate(kept, agg.Aggregates, agg.Child), transform.NewTree, nil
	})
}

// pushdownHavingOnGroupKeys pushes a HAVING predicate that only
// references GROUP BY columns (not aggregate results) below the
// Aggregate as an ordinary Filter, so rows that can never contribute
// to a surviving group are discarded before aggregation instead of
// after. Only handles the common case where every GroupBy entry is
// itself a bare column reference (GetField); an Aggregate grouping on
// a computed expression is left as-is, since substituting the
// predicate's references back through an arbitrary expression would
// require re-deriving it rather than a simple GetField remap.
func pushdownHavingOnGroupKeys(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, transform.SameTree, nil
		}
		agg, ok := f.Child.(*plan.Aggregate)
		if !ok {
			return node, transform.SameTree, nil
		}
		groupFields := make([]*expression.GetField, len(agg.GroupBy))
		for i, g := range agg.GroupBy {
			gf, ok := g.(*expression.GetField)
			if !ok {
				return node, transform.SameTree, nil
			}
			groupFields[i] = gf
		}

		conjuncts := splitConjuncts(f.Predicate)
		var pushable, remaining []sql.Expression
		for _, c := range conjuncts {
			if onlyReferencesGroupKeys(c, len(agg.GroupBy)) {
				pushable = append(pushable, remapToChildColumns(c, groupFields))
			} else {
				remaining = append(remaining, c)
			}
		}
		if len(pushable) == 0 {
			return node, transform.SameTree, nil
		}
		newChild := plan.NewFilter(joinConjuncts(pushable), agg.Child)
		newAgg := plan.NewAggregate(agg.GroupBy, agg.Aggregates, newChild)
		if len(remaining) == 0 {
			return newAgg, transform.NewTree, nil
		}
		return plan.NewFilter(joinConjuncts(remaining), newAgg), transform.NewTree, nil
	})
}

func onlyReferencesGroupKeys(e sql.Expression, groupWidth int) bool {
	ok := true
	transform.InspectExpressions(e, func(x sql.Expression) bool {
		if x == nil {
			return true
		}
		if gf, isField := x.(*expression.GetField); isField && gf.Index() >= groupWidth {
			ok = false
		}
		return true
	})
	return ok
}

// remapToChildColumns rewrites every GetField(i) in e (i < len(fields))
// to the GetField fields[i] names, so a predicate written against an
// Aggregate's output schema can run against Aggregate.Child's schema
// instead.
func remapToChildColumns(e sql.Expression, fields []*expression.GetField) sql.Expression {
	rewritten, _, err := transform.Expr(e, func(x sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		gf, ok := x.(*expression.GetField)
		if !ok {
			return x, transform.SameTree, nil
		}
		if gf.Index() < 0 || gf.Index() >= len(fields) {
			return x, transform.SameTree, nil
		}
		return fields[gf.Index()], transform.NewTree, nil
	})
	if err != nil {
		return e
	}
	return rewritten
}

// --- limit-pushdown ------------------------------------------------------

// pushLimitBelowProject moves a LIMIT below a Project: Project is a
// 1:1 row map, so computing it only for the rows that survive the
// limit (rather than for every input row) is always safe and never
// changes the result.
func pushLimitBelowProject(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		lim, ok := node.(*plan.Limit)
		if !ok {
			return node, transform.SameTree, nil
		}
		proj, ok := lim.Child.(*plan.Project)
		if !ok {
			return node, transform.SameTree, nil
		}
		newLimit := plan.NewLimit(lim.Count, lim.Offset, proj.Child)
		return plan.NewProject(proj.Columns, newLimit), transform.NewTree, nil
	})
}

func literalInt(e sql.Expression) (int64, bool) {
	if e == nil {
		return 0, false
	}
	lit, ok := e.(*expression.Literal)
	if !ok {
		return 0, false
	}
	v, err := lit.Eval(nil, nil)
	if err != nil || v.IsNull() {
		return 0, false
	}
	n, ok := v.Payload().(int64)
	return n, ok
}

// pushLimitIntoUnionBranches bounds each branch of a `UNION ALL` at
// count+offset rows: no branch can ever need to contribute more rows
// than the whole query could possibly keep. This doesn't apply to
// plain UNION (dedup means a branch producing fewer rows than the cap
// can still affect which duplicates survive) or to INTERSECT/EXCEPT,
// and only fires once Count/Offset have folded to literals.
func pushLimitIntoUnionBranches(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		lim, ok := node.(*plan.Limit)
		if !ok {
			return node, transform.SameTree, nil
		}
		set, ok := lim.Child.(*plan.SetOp)
		if !ok || set.Kind != plan.Union || !set.All {
			return node, transform.SameTree, nil
		}
		count, ok := literalInt(lim.Count)
		if !ok {
			return node, transform.SameTree, nil
		}
		offset, _ := literalInt(lim.Offset)
		total := count + offset
		bound := expression.NewLiteral(sql.NewInt64(total))

		leftBounded, rightBounded := alreadyBounded(set.Left, total), alreadyBounded(set.Right, total)
		if leftBounded && rightBounded {
			return node, transform.SameTree, nil
		}
		newLeft, newRight := set.Left, set.Right
		if !leftBounded {
			newLeft = boundBranch(set.Left, bound)
		}
		if !rightBounded {
			newRight = boundBranch(set.Right, bound)
		}
		newSet := plan.NewSetOp(set.Kind, set.All, newLeft, newRight)
		return plan.NewLimit(lim.Count, lim.Offset, newSet), transform.NewTree, nil
	})
}

func boundBranch(branch sql.Node, bound sql.Expression) sql.Node {
	return plan.NewLimit(bound, nil, branch)
}

// alreadyBounded avoids looping forever re-wrapping a branch this rule
// already bounded on a previous fixpoint iteration.
func alreadyBounded(branch sql.Node, bound int64) bool {
	lim, ok := branch.(*plan.Limit)
	if !ok {
		return false
	}
	n, ok := literalInt(lim.Count)
	return ok && n <= bound
}

// --- materialization-hints ------------------------------------------------

// materializeMinRows is the cost-model tiebreaker threshold below
// which materializeSharedCTEs leaves a shared CTE unwrapped.
const materializeMinRows = 1

// materializeSharedCTEs finds every distinct Node value (by pointer
// identity of the underlying struct, which sql.Node's interface
// comparison does for us) that appears as the direct child of more
// than one SubqueryAlias, and wraps it once in a *plan.Materialize,
// splicing the *same* wrapper pointer into every referencing site.
// build.go's buildWith binds one WITH-clause CTE to a single built
// sql.Node and reuses that identical pointer for every FROM reference
// to it (see DESIGN.md), so sharing is detected purely structurally
// here with no name-tracking required. sql/rowexec keys a run-once
// cache on the Materialize pointer so a CTE referenced from three
// places in a query is still only computed once.
func materializeSharedCTEs(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	counts := make(map[sql.Node]int)
	transform.Inspect(n, func(node sql.Node) bool {
		if node == nil {
			return true
		}
		if sa, ok := node.(*plan.SubqueryAlias); ok {
			counts[sa.Child]++
		}
		return true
	})

	wrappers := make(map[sql.Node]*plan.Materialize)
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		sa, ok := node.(*plan.SubqueryAlias)
		if !ok || counts[sa.Child] < 2 {
			return node, transform.SameTree, nil
		}
		if _, isMat := sa.Child.(*plan.Materialize); isMat {
			return node, transform.SameTree, nil
		}
		// Materializing and recomputing on each reference are both
		// correct; below this many estimated rows recomputation is
		// cheap enough that the cache adds pure overhead, so the cost
		// model breaks the tie in favor of not materializing.
		if EstimateRows(sa.Child) <= materializeMinRows {
			return node, transform.SameTree, nil
		}
		w, ok := wrappers[sa.Child]
		if !ok {
			w = plan.NewMaterialize(sa.Child)
			wrappers[sa.Child] = w
		}
		rebuilt, err := sa.WithChildren(w)
		if err != nil {
			return node, transform.SameTree, err
		}
		return rebuilt, transform.NewTree, nil
	})
}
