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
)

// SetOpKind names UNION/INTERSECT/EXCEPT.
type SetOpKind int

const (
	Union SetOpKind = iota
	Intersect
	Except
)

func (k SetOpKind) String() string {
	switch k {
	case Union:
		return "UNION"
	case Intersect:
		return "INTERSECT"
	default:
		return "EXCEPT"
	}
}

// SetOp combines Left and Right's rows under Kind; All suppresses the
// deduplication pass ([kind] ALL), per spec.md §4.5.
type SetOp struct {
	Left, Right sql.Node
	Kind        SetOpKind
	All         bool
}

func NewSetOp(kind SetOpKind, all bool, left, right sql.Node) *SetOp {
	return &SetOp{Left: left, Right: right, Kind: kind, All: all}
}

func (s *SetOp) Schema() sql.Schema   { return s.Left.Schema() }
func (s *SetOp) Children() []sql.Node { return []sql.Node{s.Left, s.Right} }
func (s *SetOp) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("plan.SetOp: expected 2 children, got %d", len(children))
	}
	return NewSetOp(s.Kind, s.All, children[0], children[1]), nil
}
func (s *SetOp) Resolved() bool {
	return s.Left.Resolved() && s.Right.Resolved() && s.Left.Schema().Compatible(s.Right.Schema())
}
func (s *SetOp) String() string {
	if s.All {
		return fmt.Sprintf("%s ALL", s.Kind)
	}
	return s.Kind.String()
}
