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

package expression

import (
	"fmt"
	"strings"

	"github.com/yachtsql/yachtsql/sql"
)

// FunctionCall is a resolved call to a scalar function: the binder has
// already picked the overload (Fn), so evaluation just marshals
// argument Values and invokes it. Unresolved calls exist only
// transiently during analysis as UnresolvedFunction nodes.
type FunctionCall struct {
	Name string
	Args []sql.Expression
	Fn   func(ctx *sql.Context, args []sql.Value) (sql.Value, error)
	typ  sql.Type
}

func NewFunctionCall(name string, args []sql.Expression, fn func(ctx *sql.Context, args []sql.Value) (sql.Value, error), typ sql.Type) *FunctionCall {
	return &FunctionCall{Name: name, Args: args, Fn: fn, typ: typ}
}

func (f *FunctionCall) Type() sql.Type { return f.typ }
func (f *FunctionCall) Nullable() bool { return true }
func (f *FunctionCall) Resolved() bool {
	for _, a := range f.Args {
		if !a.Resolved() {
			return false
		}
	}
	return f.Fn != nil
}
func (f *FunctionCall) Children() []sql.Expression { return f.Args }
func (f *FunctionCall) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(f.Args) {
		return nil, fmt.Errorf("expression.FunctionCall %s: expected %d children, got %d", f.Name, len(f.Args), len(children))
	}
	return &FunctionCall{Name: f.Name, Args: children, Fn: f.Fn, typ: f.typ}, nil
}
func (f *FunctionCall) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	args := make([]sql.Value, len(f.Args))
	for i, a := range f.Args {
		v, err := evalChild(ctx, a, row)
		if err != nil {
			return sql.Value{}, err
		}
		args[i] = v
	}
	return f.Fn(ctx, args)
}
func (f *FunctionCall) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(parts, ", "))
}
