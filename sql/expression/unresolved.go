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

// UnresolvedFunction is a parsed-but-not-yet-bound function call: the
// binder looks Name up in the active function.Registry (picking an
// overload by Args' resolved Types) and replaces this node with a
// FunctionCall (spec.md §4.2, §4.7).
type UnresolvedFunction struct {
	Name     string
	Args     []sql.Expression
	Distinct bool
}

func NewUnresolvedFunction(name string, distinct bool, args ...sql.Expression) *UnresolvedFunction {
	return &UnresolvedFunction{Name: name, Args: args, Distinct: distinct}
}

func (u *UnresolvedFunction) Type() sql.Type             { return nil }
func (u *UnresolvedFunction) Nullable() bool             { return true }
func (u *UnresolvedFunction) Resolved() bool             { return false }
func (u *UnresolvedFunction) Children() []sql.Expression { return u.Args }
func (u *UnresolvedFunction) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &UnresolvedFunction{Name: u.Name, Args: children, Distinct: u.Distinct}, nil
}
func (u *UnresolvedFunction) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Value{}, sql.ErrInternal.New(fmt.Sprintf("unresolved function %q evaluated", u.Name))
}
func (u *UnresolvedFunction) String() string {
	parts := make([]string, len(u.Args))
	for i, a := range u.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", u.Name, strings.Join(parts, ", "))
}
