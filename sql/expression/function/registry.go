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

// Package function implements the FunctionRegistry described in
// spec.md §4.7: a static, startup-time registration of scalar,
// aggregate, window, and table functions, looked up by
// (name, dialect, arity, input-types).
package function

import (
	"strings"

	"github.com/mitchellh/hashstructure"

	"github.com/yachtsql/yachtsql/sql"
)

// Dialect mirrors sql/parser/token.Dialect without importing the parser
// (the registry must not depend on parsing). "" means "all dialects".
type Dialect string

const AnyDialect Dialect = ""

// ScalarFunc is `(Value...) -> Value`.
type ScalarFunc func(ctx *sql.Context, args []sql.Value) (sql.Value, error)

// Accumulator is the aggregate/window capability set from spec.md §4.5
// and §9 ("Accumulator polymorphism"): a tagged behavior, not a class
// hierarchy. Ordered-set aggregates (PERCENTILE_CONT, MODE) buffer
// every input in Accumulate and do the real work in Finalize; plain
// aggregates (SUM, COUNT) update incrementally.
type Accumulator interface {
	Accumulate(ctx *sql.Context, args []sql.Value) error
	Merge(ctx *sql.Context, other Accumulator) error
	Finalize(ctx *sql.Context) (sql.Value, error)
	Reset()
}

// WindowAccumulator extends Accumulator with the incremental
// add/remove hooks a sliding-window frame uses (spec.md §4.5, Window
// functions). Holistic aggregates (e.g. MEDIAN) can leave Remove a
// no-op and instead recompute in Finalize every call; the ranking
// accumulators implement Remove as a no-op and report
// SupportsIncremental false (they ignore the frame).
type WindowAccumulator interface {
	Accumulator
	Remove(ctx *sql.Context, args []sql.Value) error
	SupportsIncremental() bool
}

// TableFunc is `(Value...) -> RowIter`, e.g. generate_series/unnest.
type TableFunc func(ctx *sql.Context, args []sql.Value) (sql.RowIter, error)

type AccumulatorFactory func() Accumulator

// Signature identifies one overload: a name, the dialect it's visible
// in (AnyDialect for all three), and the exact input type tags it
// accepts. Overload resolution in sql/analyzer uses this plus a
// coercion-distance metric when no exact match exists.
type Signature struct {
	Name       string
	Dialect    Dialect
	InputTypes []sql.TypeTag
	Variadic   bool
}

// Hash returns a stable hash of the signature, computed with
// hashstructure.
func (s Signature) Hash() (uint64, error) {
	return hashstructure.Hash(s, nil)
}

type scalarEntry struct {
	sig  Signature
	fn   ScalarFunc
	ret  func([]sql.Type) (sql.Type, error)
}

type aggEntry struct {
	sig     Signature
	factory AccumulatorFactory
	ret     func([]sql.Type) (sql.Type, error)
}

type tableEntry struct {
	sig Signature
	fn  TableFunc
}

// Registry is the FunctionRegistry of spec.md §4.7: O(1) lookup on
// (name, arity) with overload resolution over types layered on top by
// the binder.
type Registry struct {
	scalars map[string][]scalarEntry
	aggs    map[string][]aggEntry
	windows map[string][]aggEntry
	tables  map[string][]tableEntry
	infix   map[string]string // operator spelling -> registered function name
}

func NewRegistry() *Registry {
	return &Registry{
		scalars: make(map[string][]scalarEntry),
		aggs:    make(map[string][]aggEntry),
		windows: make(map[string][]aggEntry),
		tables:  make(map[string][]tableEntry),
		infix:   make(map[string]string),
	}
}

func lowerName(name string) string { return strings.ToLower(name) }

// RegisterScalar adds a scalar overload. ret computes the result Type
// from the (already-resolved) argument Types.
func (r *Registry) RegisterScalar(sig Signature, fn ScalarFunc, ret func([]sql.Type) (sql.Type, error)) {
	name := lowerName(sig.Name)
	r.scalars[name] = append(r.scalars[name], scalarEntry{sig: sig, fn: fn, ret: ret})
}

// RegisterAggregate adds an aggregate overload.
func (r *Registry) RegisterAggregate(sig Signature, factory AccumulatorFactory, ret func([]sql.Type) (sql.Type, error)) {
	name := lowerName(sig.Name)
	r.aggs[name] = append(r.aggs[name], aggEntry{sig: sig, factory: factory, ret: ret})
}

// RegisterWindow adds a window-only overload (ranking functions,
// LAG/LEAD) distinct from the plain aggregate table so `SUM` can be
// used both ways while `ROW_NUMBER` only ever appears as a window.
func (r *Registry) RegisterWindow(sig Signature, factory AccumulatorFactory, ret func([]sql.Type) (sql.Type, error)) {
	name := lowerName(sig.Name)
	r.windows[name] = append(r.windows[name], aggEntry{sig: sig, factory: factory, ret: ret})
}

// RegisterTable adds a table function (e.g. generate_series).
func (r *Registry) RegisterTable(sig Signature, fn TableFunc) {
	name := lowerName(sig.Name)
	r.tables[name] = append(r.tables[name], tableEntry{sig: sig, fn: fn})
}

// RegisterOperator records an infix/prefix spelling under a function
// name, per spec.md §4.7 ("Operators
// ... are scalar functions with a registered infix/prefix spelling").
func (r *Registry) RegisterOperator(symbol, functionName string) {
	r.infix[symbol] = lowerName(functionName)
}

func (r *Registry) OperatorFunction(symbol string) (string, bool) {
	name, ok := r.infix[symbol]
	return name, ok
}

// resolveDistance scores how far candidate is from the call-site types
// using the coercion lattice in distance.go; ok is false when the arity
// does not fit or some argument is not coercion-compatible at all.
func resolveDistance(candidate []sql.TypeTag, variadic bool, args []sql.Type) (int, bool) {
	if !variadic && len(candidate) != len(args) {
		return 0, false
	}
	if variadic && len(args) < len(candidate)-1 {
		return 0, false
	}
	total := 0
	for i, arg := range args {
		want := candidate[i]
		if variadic && i >= len(candidate)-1 {
			want = candidate[len(candidate)-1]
		}
		d, ok := CoercionDistance(arg.Tag(), want)
		if !ok {
			return 0, false
		}
		total += d
	}
	return total, true
}

// LookupScalar finds the best scalar overload for name given concrete
// argument Types, per the exact-match-first, then-coercion-distance
// rule of spec.md §4.2. Returns sql.ErrUnknownFunction or
// sql.ErrAmbiguousFunction on failure.
func (r *Registry) LookupScalar(name string, dialect Dialect, args []sql.Type) (ScalarFunc, sql.Type, error) {
	entries := r.scalars[lowerName(name)]
	if len(entries) == 0 {
		return nil, nil, sql.ErrUnknownFunction.New(name)
	}
	best, bestDist, tieCount := -1, -1, 0
	for i, e := range entries {
		if e.sig.Dialect != AnyDialect && e.sig.Dialect != dialect {
			continue
		}
		dist, ok := resolveDistance(e.sig.InputTypes, e.sig.Variadic, args)
		if !ok {
			continue
		}
		if best == -1 || dist < bestDist {
			best, bestDist, tieCount = i, dist, 1
		} else if dist == bestDist {
			tieCount++
		}
	}
	if best == -1 {
		return nil, nil, sql.ErrUnknownFunction.New(name)
	}
	if tieCount > 1 {
		return nil, nil, sql.ErrAmbiguousFunction.New(name, tieCount)
	}
	e := entries[best]
	ret, err := e.ret(args)
	if err != nil {
		return nil, nil, err
	}
	return e.fn, ret, nil
}

// LookupAggregate finds the best aggregate overload, same rule as
// LookupScalar.
func (r *Registry) LookupAggregate(name string, args []sql.Type) (AccumulatorFactory, sql.Type, error) {
	return lookupAgg(r.aggs, name, args)
}

// LookupWindow finds a window-only (e.g. ranking) overload, falling
// back to the plain aggregate table so incremental SUM/AVG/COUNT can
// serve as window functions too.
func (r *Registry) LookupWindow(name string, args []sql.Type) (AccumulatorFactory, sql.Type, error) {
	if f, t, err := lookupAgg(r.windows, name, args); err == nil {
		return f, t, nil
	}
	return lookupAgg(r.aggs, name, args)
}

func lookupAgg(table map[string][]aggEntry, name string, args []sql.Type) (AccumulatorFactory, sql.Type, error) {
	entries := table[lowerName(name)]
	if len(entries) == 0 {
		return nil, nil, sql.ErrUnknownFunction.New(name)
	}
	best, bestDist, tieCount := -1, -1, 0
	for i, e := range entries {
		dist, ok := resolveDistance(e.sig.InputTypes, e.sig.Variadic, args)
		if !ok {
			continue
		}
		if best == -1 || dist < bestDist {
			best, bestDist, tieCount = i, dist, 1
		} else if dist == bestDist {
			tieCount++
		}
	}
	if best == -1 {
		return nil, nil, sql.ErrUnknownFunction.New(name)
	}
	if tieCount > 1 {
		return nil, nil, sql.ErrAmbiguousFunction.New(name, tieCount)
	}
	e := entries[best]
	ret, err := e.ret(args)
	if err != nil {
		return nil, nil, err
	}
	return e.factory, ret, nil
}

// LookupTable finds a table function overload by name and arity.
func (r *Registry) LookupTable(name string, argc int) (TableFunc, bool) {
	entries := r.tables[lowerName(name)]
	for _, e := range entries {
		if e.sig.Variadic || len(e.sig.InputTypes) == argc {
			return e.fn, true
		}
	}
	return nil, false
}

// HasAggregate reports whether name is registered as an aggregate or
// window accumulator, the binder's way of telling a bare function call
// like `sum(x)` apart from a scalar call without hard-coding a
// built-in-name list (spec.md §4.5, aggregate detection).
func (r *Registry) HasAggregate(name string) bool {
	n := lowerName(name)
	return len(r.aggs[n]) > 0 || len(r.windows[n]) > 0
}
