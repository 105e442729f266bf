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

	"github.com/shopspring/decimal"

	"github.com/yachtsql/yachtsql/sql"
)

// ArithOp identifies the four basic arithmetic operators.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
)

func (op ArithOp) symbol() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	default:
		return "/"
	}
}

// Arithmetic implements `+ - * /` over INT64/FLOAT64/DECIMAL operands.
// Division by zero raises sql.ErrDivisionByZero rather than propagating
// NULL or inf (spec.md §7).
type Arithmetic struct {
	binary
	Op  ArithOp
	typ sql.Type
}

func NewArithmetic(op ArithOp, left, right sql.Expression, resultType sql.Type) *Arithmetic {
	return &Arithmetic{binary: binary{left, right}, Op: op, typ: resultType}
}

func (a *Arithmetic) Type() sql.Type { return a.typ }
func (a *Arithmetic) Nullable() bool { return true }
func (a *Arithmetic) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("expression.Arithmetic: expected 2 children, got %d", len(children))
	}
	return NewArithmetic(a.Op, children[0], children[1], a.typ), nil
}

func (a *Arithmetic) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lv, err := evalChild(ctx, a.Left, row)
	if err != nil {
		return sql.Value{}, err
	}
	rv, err := evalChild(ctx, a.Right, row)
	if err != nil {
		return sql.Value{}, err
	}
	if lv.IsNull() || rv.IsNull() {
		return sql.NullValue(a.typ), nil
	}

	switch a.typ.Tag() {
	case sql.Int64Tag:
		l, r := lv.Payload().(int64), rv.Payload().(int64)
		if a.Op == Div {
			if r == 0 {
				return sql.Value{}, sql.ErrDivisionByZero.New()
			}
			return sql.NewValue(a.typ, l/r), nil
		}
		return sql.NewValue(a.typ, applyInt(a.Op, l, r)), nil
	case sql.Float64Tag:
		l, r := lv.Payload().(float64), rv.Payload().(float64)
		if a.Op == Div && r == 0 {
			return sql.Value{}, sql.ErrDivisionByZero.New()
		}
		return sql.NewValue(a.typ, applyFloat(a.Op, l, r)), nil
	case sql.DecimalTag:
		l, r := lv.Payload().(decimal.Decimal), rv.Payload().(decimal.Decimal)
		if a.Op == Div && r.IsZero() {
			return sql.Value{}, sql.ErrDivisionByZero.New()
		}
		converted, err := a.typ.Convert(applyDecimal(a.Op, l, r))
		if err != nil {
			return sql.Value{}, err
		}
		return sql.NewValue(a.typ, converted), nil
	default:
		return sql.Value{}, sql.ErrTypeMismatch.New(a.Op.symbol(), lv.Type().Name(), rv.Type().Name())
	}
}

func applyInt(op ArithOp, l, r int64) int64 {
	switch op {
	case Add:
		return l + r
	case Sub:
		return l - r
	case Mul:
		return l * r
	default:
		return 0
	}
}

func applyFloat(op ArithOp, l, r float64) float64 {
	switch op {
	case Add:
		return l + r
	case Sub:
		return l - r
	case Mul:
		return l * r
	default:
		return l / r
	}
}

func applyDecimal(op ArithOp, l, r decimal.Decimal) decimal.Decimal {
	switch op {
	case Add:
		return l.Add(r)
	case Sub:
		return l.Sub(r)
	case Mul:
		return l.Mul(r)
	default:
		return l.Div(r)
	}
}

func (a *Arithmetic) String() string {
	return fmt.Sprintf("(%s %s %s)", a.Left, a.Op.symbol(), a.Right)
}
