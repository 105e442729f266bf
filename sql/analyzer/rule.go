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

// Package analyzer builds a Resolved, type-checked plan.Node tree from
// a parsed statement (Builder, build.go) and then rewrites it with the
// rule batches of spec.md §5: normalization, simplification,
// decorrelation, join rewrite, aggregate rewrite, limit pushdown, and
// materialization hints. Every batch except materialization hints,
// which runs once, iterates to a fixpoint before the next batch starts.
package analyzer

import (
	"gopkg.in/src-d/go-errors.v1"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/expression/function"
	"github.com/yachtsql/yachtsql/sql/transform"
)

// maxAnalysisIterations bounds every fixpoint batch: a rule set that
// hasn't converged by then is a bug in rule ordering, not a query the
// analyzer should spin on forever.
const maxAnalysisIterations = 8

var ErrMaxAnalysisIters = errors.NewKind("exceeded max analysis iterations (%d) without converging")

// RuleFunc rewrites one node of the tree (or, for whole-tree rules
// like star expansion, walks the tree itself and returns the new
// root). scope carries the enclosing query blocks for correlated
// subquery resolution.
type RuleFunc func(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error)

// Rule pairs a RuleFunc with the name spec.md §5's batch listing and
// this package's tests refer to it by.
type Rule struct {
	Name  string
	Apply RuleFunc
}

// Batch is an ordered set of Rules run together. Iterations < 0 means
// "iterate to a fixpoint, capped at maxAnalysisIterations"; 0 or 1
// means "run exactly once"; any other positive value runs at most that
// many passes, stopping early once a pass leaves the tree unchanged and
// returning without error when the cap is reached.
type Batch struct {
	Desc       string
	Iterations int
	Rules      []Rule
}

// Analyzer holds the Catalog and function Registry every rule closes
// over, plus the ordered Batches that make up one full analysis pass.
type Analyzer struct {
	Catalog  *sql.Catalog
	Registry *function.Registry
	Batches  []Batch
}

// Analyze runs every batch over n in order, threading the rewritten
// tree from one batch into the next.
func (a *Analyzer) Analyze(ctx *sql.Context, n sql.Node, scope *Scope) (sql.Node, error) {
	cur := n
	for _, batch := range a.Batches {
		next, err := a.runBatch(ctx, batch, cur, scope)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (a *Analyzer) runBatch(ctx *sql.Context, batch Batch, n sql.Node, scope *Scope) (sql.Node, error) {
	if batch.Iterations > 1 || batch.Iterations < 0 {
		return a.runFixpoint(ctx, batch, n, scope)
	}
	cur := n
	for _, rule := range batch.Rules {
		next, _, err := rule.Apply(ctx, a, cur, scope)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (a *Analyzer) runFixpoint(ctx *sql.Context, batch Batch, n sql.Node, scope *Scope) (sql.Node, error) {
	cap := batch.Iterations
	if cap < 0 {
		cap = maxAnalysisIterations
	}
	cur := n
	for i := 0; i < cap; i++ {
		changed := transform.SameTree
		for _, rule := range batch.Rules {
			next, same, err := rule.Apply(ctx, a, cur, scope)
			if err != nil {
				return nil, err
			}
			if same == transform.NewTree {
				changed = transform.NewTree
			}
			cur = next
		}
		if changed == transform.SameTree {
			return cur, nil
		}
	}
	if batch.Iterations < 0 {
		return nil, ErrMaxAnalysisIters.New(cap)
	}
	return cur, nil
}
