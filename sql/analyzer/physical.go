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
	"fmt"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/expression"
	"github.com/yachtsql/yachtsql/sql/plan"
	"github.com/yachtsql/yachtsql/sql/rowexec"
	"github.com/yachtsql/yachtsql/sql/transform"
)

// maxRecursiveCTERows guards WITH RECURSIVE against a fixpoint that
// never converges (a non-terminating recursive term); spec.md §4.5
// requires recursion to terminate but leaves the engine to enforce it.
const maxRecursiveCTERows = 1_000_000

// Compiler turns a resolved, optimized plan.Node tree into a
// sql/rowexec.Iter. It is the physical planner scan.go's package doc
// promises: for most nodes there is exactly one physical strategy
// (Scan, Filter, Project, Limit, Sort, Values, SetOp), so "compiling"
// is really just instantiating the matching rowexec constructor;
// Join is the one place a real physical choice (hash/merge/nested
// loop) remains future work, so every JoinKind lowers to rowexec.Join's
// nested-loop fallback today.
//
// A Compiler is scoped to one statement's execution: it caches the
// materialized rows behind every *plan.Materialize node it compiles, so
// a CTE referenced from several FROM items is computed once and replayed
// from each reference (see rules.go's materializeSharedCTEs, which is
// the analyzer pass that decides which CTEs need this).
type Compiler struct {
	ctx          *sql.Context
	catalog      *sql.Catalog
	materialized map[*plan.Materialize][]sql.Row
}

// NewCompiler builds a Compiler for one statement's execution. catalog
// is only consulted by DDL (CreateTable/DropTable need to reach the
// target Database directly, not through a Table handle); it may be nil
// for statements known not to contain DDL, such as in tests that only
// exercise a query plan.
func NewCompiler(ctx *sql.Context, catalog *sql.Catalog) *Compiler {
	return &Compiler{ctx: ctx, catalog: catalog, materialized: make(map[*plan.Materialize][]sql.Row)}
}

// Compile binds every subquery expression in node to a runner backed by
// this Compiler, then lowers node itself into an Iter.
func Compile(ctx *sql.Context, catalog *sql.Catalog, node sql.Node) (rowexec.Iter, error) {
	c := NewCompiler(ctx, catalog)
	return c.Compile(node)
}

func (c *Compiler) Compile(node sql.Node) (rowexec.Iter, error) {
	bound, err := c.bindSubqueryRunners(node)
	if err != nil {
		return nil, err
	}
	return c.compileNode(bound)
}

func (c *Compiler) compileNode(node sql.Node) (rowexec.Iter, error) {
	ctx := c.ctx
	switch n := node.(type) {
	case *plan.Scan:
		return rowexec.Scan(ctx, n.Table)

	case *plan.TableFunction:
		args := make([]sql.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := a.Eval(ctx, nil)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		rowIter, err := n.Fn(ctx, args)
		if err != nil {
			return nil, err
		}
		rows, err := sql.RowIterToRows(ctx, rowIter)
		if err != nil {
			return nil, err
		}
		return rowexec.RowsToIter(n.Schema(), rows), nil

	case *plan.Values:
		return rowexec.Values(ctx, n.Schema(), n.Rows)

	case *plan.Filter:
		child, err := c.compileNode(n.Child)
		if err != nil {
			return nil, err
		}
		return rowexec.Filter(ctx, n.Predicate, child), nil

	case *plan.Project:
		child, err := c.compileNode(n.Child)
		if err != nil {
			return nil, err
		}
		exprs := make([]sql.Expression, len(n.Columns))
		for i, col := range n.Columns {
			exprs[i] = col.Expr
		}
		return rowexec.Project(ctx, n.Schema(), exprs, child), nil

	case *plan.Limit:
		child, err := c.compileNode(n.Child)
		if err != nil {
			return nil, err
		}
		count, err := evalScalarInt(ctx, n.Count)
		if err != nil {
			return nil, err
		}
		var offset int64
		if n.Offset != nil {
			offset, err = evalScalarInt(ctx, n.Offset)
			if err != nil {
				return nil, err
			}
		}
		return rowexec.Limit(ctx, count, offset, child), nil

	case *plan.Sort:
		child, err := c.compileNode(n.Child)
		if err != nil {
			return nil, err
		}
		return rowexec.Sort(ctx, n.Schema(), n.Fields, child)

	case *plan.Aggregate:
		child, err := c.compileNode(n.Child)
		if err != nil {
			return nil, err
		}
		return rowexec.Aggregate(ctx, n.Schema(), n.GroupBy, n.Aggregates, child)

	case *plan.Window:
		child, err := c.compileNode(n.Child)
		if err != nil {
			return nil, err
		}
		return rowexec.Window(ctx, n.Schema(), n.Windows, child)

	case *plan.SetOp:
		left, err := c.compileNode(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.compileNode(n.Right)
		if err != nil {
			return nil, err
		}
		return rowexec.SetOp(ctx, n.Schema(), n.Kind, n.All, left, right)

	case *plan.Join:
		left, err := c.compileNode(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.compileNode(n.Right)
		if err != nil {
			return nil, err
		}
		return rowexec.Join(ctx, n.Left.Schema(), n.Right.Schema(), n.Kind, n.Condition, left, right)

	case *plan.SubqueryAlias:
		return c.compileNode(n.Child)

	case *plan.CTE:
		return c.compileNode(n.Definition)

	case *plan.RecursiveCTE:
		rows, err := c.runRecursiveCTE(n)
		if err != nil {
			return nil, err
		}
		return rowexec.RowsToIter(n.Schema(), rows), nil

	case *plan.RecursiveRef:
		return nil, sql.ErrInternal.New("RecursiveRef compiled outside its RecursiveCTE's recursive term")

	case *plan.Materialize:
		rows, ok := c.materialized[n]
		if !ok {
			child, err := c.compileNode(n.Child)
			if err != nil {
				return nil, err
			}
			rows, err = rowexec.DrainRows(ctx, child)
			if err != nil {
				return nil, err
			}
			c.materialized[n] = rows
		}
		return rowexec.Materialized(n.Schema(), rows), nil

	case *plan.Insert:
		table, err := resolveTable(n.TableNode)
		if err != nil {
			return nil, err
		}
		insertable, ok := table.(sql.InsertableTable)
		if !ok {
			return nil, sql.ErrFeatureNotSupported.New(fmt.Sprintf("table %q does not support INSERT", table.Name()))
		}
		source, err := c.compileNode(n.Source)
		if err != nil {
			return nil, err
		}
		return rowexec.Insert(ctx, insertable, n.Schema(), source)

	case *plan.Update:
		table, schema, err := resolveUpdatableTable(n.Child)
		if err != nil {
			return nil, err
		}
		updatable, ok := table.(sql.UpdatableTable)
		if !ok {
			return nil, sql.ErrFeatureNotSupported.New(fmt.Sprintf("table %q does not support UPDATE", table.Name()))
		}
		child, err := c.compileNode(n.Child)
		if err != nil {
			return nil, err
		}
		return rowexec.Update(ctx, updatable, schema, n.Assignments, n.Schema(), child)

	case *plan.Delete:
		table, _, err := resolveUpdatableTable(n.Child)
		if err != nil {
			return nil, err
		}
		deletable, ok := table.(sql.DeletableTable)
		if !ok {
			return nil, sql.ErrFeatureNotSupported.New(fmt.Sprintf("table %q does not support DELETE", table.Name()))
		}
		child, err := c.compileNode(n.Child)
		if err != nil {
			return nil, err
		}
		return rowexec.Delete(ctx, deletable, n.Schema(), child)

	case *plan.DDL:
		return c.compileDDL(n)

	case *plan.UnresolvedTable:
		return nil, sql.ErrInternal.New(fmt.Sprintf("unresolved table %q reached the physical planner", n.Name))

	default:
		return nil, sql.ErrFeatureNotSupported.New(fmt.Sprintf("physical compilation of %T", node))
	}
}

// resolveTable walks down to the Scan a DML TableNode/Child was built
// from (build.go's buildInsert/buildUpdate/buildDelete only ever
// produce *plan.Scan here, possibly wrapped in *plan.Filter for
// UPDATE/DELETE's WHERE clause) and returns its underlying sql.Table.
func resolveTable(node sql.Node) (sql.Table, error) {
	switch n := node.(type) {
	case *plan.Scan:
		return n.Table, nil
	case *plan.Filter:
		return resolveTable(n.Child)
	default:
		return nil, sql.ErrInternal.New(fmt.Sprintf("%T is not a table reference the physical planner can resolve", node))
	}
}

// resolveUpdatableTable is resolveTable plus the table's own schema
// (column order/names Update's assignment map indexes against),
// independent of whatever alias the Scan carries.
func resolveUpdatableTable(node sql.Node) (sql.Table, sql.Schema, error) {
	table, err := resolveTable(node)
	if err != nil {
		return nil, nil, err
	}
	return table, table.Schema(), nil
}

// compileDDL executes CreateTable/DropTable directly against the
// Compiler's Catalog, since these have no row source to compile — the
// catalog's Database must support sql.SchemaOwner (storage.Database
// does) or DDL against it is rejected outright.
func (c *Compiler) compileDDL(n *plan.DDL) (rowexec.Iter, error) {
	if c.catalog == nil {
		return nil, sql.ErrInternal.New("DDL compiled without a Catalog")
	}
	db, ok := c.catalog.Database(n.Database)
	if !ok {
		return nil, sql.ErrUnknownTable.New(n.Database + "." + n.Name)
	}
	owner, ok := db.(sql.SchemaOwner)
	if !ok {
		return nil, sql.ErrFeatureNotSupported.New(fmt.Sprintf("database %q does not support DDL", n.Database))
	}
	switch n.Kind {
	case plan.CreateTable:
		owner.CreateTable(n.Name, n.Columns)
	case plan.DropTable:
		owner.DropTable(n.Name)
	}
	return rowexec.AffectedRows(n.Schema(), 1), nil
}

// evalScalarInt evaluates a LIMIT/OFFSET expression, which the binder
// guarantees is a constant coercible to INT64 (spec.md §4.5 doesn't
// allow a computed LIMIT).
func evalScalarInt(ctx *sql.Context, e sql.Expression) (int64, error) {
	v, err := e.Eval(ctx, nil)
	if err != nil {
		return 0, err
	}
	if v.IsNull() {
		return 0, nil
	}
	switch p := v.Payload().(type) {
	case int64:
		return p, nil
	case float64:
		return int64(p), nil
	default:
		return 0, sql.ErrInternal.New(fmt.Sprintf("LIMIT/OFFSET evaluated to non-numeric payload %T", p))
	}
}

// runRecursiveCTE evaluates the fixpoint: seed with Anchor, then
// repeatedly evaluate Recursive against the previous round's delta
// (bound to every RecursiveRef matching n.Name) until a round adds no
// new rows. Non-ALL recursion drops any row already produced by an
// earlier round before it becomes part of the next round's delta,
// matching the teacher's working-table semantics for WITH RECURSIVE.
func (c *Compiler) runRecursiveCTE(n *plan.RecursiveCTE) ([]sql.Row, error) {
	anchorIter, err := c.compileNode(n.Anchor)
	if err != nil {
		return nil, err
	}
	delta, err := rowexec.DrainRows(c.ctx, anchorIter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(delta))
	if !n.All {
		for _, r := range delta {
			seen[recursiveRowKey(r)] = true
		}
	}
	result := append([]sql.Row{}, delta...)

	for len(delta) > 0 {
		if len(result) > maxRecursiveCTERows {
			return nil, sql.ErrResourceExceeded.New(fmt.Sprintf("WITH RECURSIVE %s exceeded %d rows without converging", n.Name, maxRecursiveCTERows))
		}
		bound, err := bindRecursiveRef(n.Recursive, n.Name, n.Anchor.Schema(), delta)
		if err != nil {
			return nil, err
		}
		recIter, err := c.compileNode(bound)
		if err != nil {
			return nil, err
		}
		next, err := rowexec.DrainRows(c.ctx, recIter)
		if err != nil {
			return nil, err
		}
		if !n.All {
			deduped := next[:0]
			for _, r := range next {
				k := recursiveRowKey(r)
				if seen[k] {
					continue
				}
				seen[k] = true
				deduped = append(deduped, r)
			}
			next = deduped
		}
		result = append(result, next...)
		delta = next
	}
	return result, nil
}

func recursiveRowKey(r sql.Row) string {
	return fmt.Sprintf("%v", r)
}

// bindRecursiveRef rewrites every RecursiveRef named name inside node
// into a Values-shaped literal row source over delta, the previous
// round's rows. This is a tree rewrite rather than a Compiler-side
// binding table because Recursive may reference the name through
// several nested SubqueryAlias/Join layers, each its own plan.Node.
func bindRecursiveRef(node sql.Node, name string, schema sql.Schema, delta []sql.Row) (sql.Node, error) {
	rows := make([][]sql.Expression, len(delta))
	for i, r := range delta {
		row := make([]sql.Expression, len(r))
		for j, v := range r {
			row[j] = expression.NewLiteral(v)
		}
		rows[i] = row
	}
	replacement := plan.NewValues(rows, schema)

	result, _, err := transform.Node(node, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		ref, ok := n.(*plan.RecursiveRef)
		if !ok || ref.Name != name {
			return n, transform.SameTree, nil
		}
		return replacement, transform.NewTree, nil
	})
	return result, err
}

// bindSubqueryRunners attaches a Compiler-backed subqueryRunner to
// every Subquery/Exists/InSubquery expression reachable from node,
// including ones nested inside another subquery's own plan (which
// transform.NodeExprs cannot reach on its own, since those expression
// types deliberately don't expose Query via Children — see
// expression/subquery.go's doc comment; rules.go's
// optimizeSubqueryPlans has the analysis-phase equivalent of this same
// manual recursion).
func (c *Compiler) bindSubqueryRunners(node sql.Node) (sql.Node, error) {
	result, _, err := transform.NodeExprs(node, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		switch x := e.(type) {
		case *expression.Subquery:
			runner, err := c.newQueryRunner(x.Query)
			if err != nil {
				return e, transform.SameTree, err
			}
			return x.WithRunner(runner), transform.NewTree, nil
		case *expression.Exists:
			runner, err := c.newQueryRunner(x.Query)
			if err != nil {
				return e, transform.SameTree, err
			}
			return x.WithRunner(runner), transform.NewTree, nil
		case *expression.InSubquery:
			runner, err := c.newQueryRunner(x.Query)
			if err != nil {
				return e, transform.SameTree, err
			}
			return x.WithRunner(runner), transform.NewTree, nil
		default:
			return e, transform.SameTree, nil
		}
	})
	return result, err
}

// queryRunner backs expression.Subquery/Exists/InSubquery's Runner
// hook. Every subquery this engine ever compiles is uncorrelated (the
// binder never produces a correlated one; see buildScope's doc comment
// in build.go), so its result set is independent of the outer
// row and is computed once, here, rather than once per outer row.
type queryRunner struct {
	schema sql.Schema
	rows   []sql.Row
}

func (c *Compiler) newQueryRunner(query sql.Node) (*queryRunner, error) {
	bound, err := c.bindSubqueryRunners(query)
	if err != nil {
		return nil, err
	}
	it, err := c.compileNode(bound)
	if err != nil {
		return nil, err
	}
	rows, err := rowexec.DrainRows(c.ctx, it)
	if err != nil {
		return nil, err
	}
	return &queryRunner{schema: query.Schema(), rows: rows}, nil
}

func (r *queryRunner) Run(ctx *sql.Context, outer sql.Row) (sql.RowIter, error) {
	return rowexec.RowIterFromBatches(ctx, rowexec.RowsToIter(r.schema, r.rows)), nil
}
