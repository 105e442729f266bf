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

package plan

import (
	"fmt"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/expression/function"
)

// FrameMode is a window frame's unit: ROWS, RANGE, or GROUPS.
type FrameMode int

const (
	FrameRows FrameMode = iota
	FrameRange
	FrameGroups
)

// FrameBound is one edge of a window frame (spec.md §4.5, Window
// functions): UNBOUNDED PRECEDING/FOLLOWING, CURRENT ROW, or an
// offset N PRECEDING/FOLLOWING.
type FrameBound struct {
	Unbounded bool
	Current   bool
	Offset    sql.Expression // nil when Unbounded or Current
	Preceding bool           // false means FOLLOWING
}

// Frame is a window function's (mode, start, end) triple.
type Frame struct {
	Mode  FrameMode
	Start FrameBound
	End   FrameBound
}

// DefaultFrame is RANGE BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW,
// the SQL standard default when an OVER clause has ORDER BY but no
// explicit frame.
func DefaultFrame() Frame {
	return Frame{
		Mode:  FrameRange,
		Start: FrameBound{Unbounded: true, Preceding: true},
		End:   FrameBound{Current: true},
	}
}

// WindowCall is one window function in the SELECT list: PARTITION BY,
// ORDER BY, and a Frame, each independently specified per spec.md §4.5.
type WindowCall struct {
	Name       string
	Args       []sql.Expression
	Factory    function.AccumulatorFactory
	Partitions []sql.Expression
	OrderBy    []SortField
	Frame      Frame
	typ        sql.Type
	alias      string
}

func NewWindowCall(name string, args []sql.Expression, factory function.AccumulatorFactory, typ sql.Type, partitions []sql.Expression, orderBy []SortField, frame Frame, alias string) WindowCall {
	return WindowCall{Name: name, Args: args, Factory: factory, typ: typ, Partitions: partitions, OrderBy: orderBy, Frame: frame, alias: alias}
}

func (w WindowCall) Type() sql.Type { return w.typ }
func (w WindowCall) Name_() string {
	if w.alias != "" {
		return w.alias
	}
	return w.Name
}

// Window computes one or more WindowCalls over Child, each producing
// an extra output column appended after Child's own schema (spec.md
// §4.5, Window functions; §8 scenario 5, "window SUM OVER").
type Window struct {
	Child   sql.Node
	Windows []WindowCall
}

func NewWindow(windows []WindowCall, child sql.Node) *Window {
	return &Window{Child: child, Windows: windows}
}

func (w *Window) Schema() sql.Schema {
	schema := append(sql.Schema{}, w.Child.Schema()...)
	for _, wc := range w.Windows {
		schema = append(schema, &sql.Column{Name: wc.Name_(), Type: wc.Type(), Nullable: true})
	}
	return schema
}
func (w *Window) Children() []sql.Node { return []sql.Node{w.Child} }
func (w *Window) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("plan.Window: expected 1 child, got %d", len(children))
	}
	return NewWindow(w.Windows, children[0]), nil
}
func (w *Window) Resolved() bool {
	if !w.Child.Resolved() {
		return false
	}
	for _, wc := range w.Windows {
		for _, arg := range wc.Args {
			if !arg.Resolved() {
				return false
			}
		}
		for _, p := range wc.Partitions {
			if !p.Resolved() {
				return false
			}
		}
		for _, o := range wc.OrderBy {
			if !o.Expr.Resolved() {
				return false
			}
		}
	}
	return true
}
func (w *Window) String() string { return fmt.Sprintf("Window(%d funcs)", len(w.Windows)) }

// Expressions flattens every WindowCall's Args, Partitions, and
// OrderBy expressions, in that order, across all Windows in turn.
// WithExpressions reverses the flattening using each call's original
// slice lengths.
func (w *Window) Expressions() []sql.Expression {
	var exprs []sql.Expression
	for _, wc := range w.Windows {
		exprs = append(exprs, wc.Args...)
		exprs = append(exprs, wc.Partitions...)
		for _, o := range wc.OrderBy {
			exprs = append(exprs, o.Expr)
		}
	}
	return exprs
}

func (w *Window) WithExpressions(expressions ...sql.Expression) (sql.Node, error) {
	want := 0
	for _, wc := range w.Windows {
		want += len(wc.Args) + len(wc.Partitions) + len(wc.OrderBy)
	}
	if len(expressions) != want {
		return nil, fmt.Errorf("plan.Window: expected %d expressions, got %d", want, len(expressions))
	}
	rest := expressions
	newWindows := make([]WindowCall, len(w.Windows))
	for i, wc := range w.Windows {
		newWc := wc
		newWc.Args = append([]sql.Expression{}, rest[:len(wc.Args)]...)
		rest = rest[len(wc.Args):]
		newWc.Partitions = append([]sql.Expression{}, rest[:len(wc.Partitions)]...)
		rest = rest[len(wc.Partitions):]
		newOrderBy := make([]SortField, len(wc.OrderBy))
		for j, o := range wc.OrderBy {
			newOrderBy[j] = SortField{Expr: rest[j], Desc: o.Desc, Nulls: o.Nulls}
		}
		rest = rest[len(wc.OrderBy):]
		newWc.OrderBy = newOrderBy
		newWindows[i] = newWc
	}
	return NewWindow(newWindows, w.Child), nil
}
