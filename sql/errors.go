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

package sql

import (
	"fmt"

	"gopkg.in/src-d/go-errors.v1"
)

// Span locates an error in the original source text.
type Span struct {
	Line   int
	Column int
	Length int
}

func (s Span) String() string {
	return fmt.Sprintf("line %d, column %d", s.Line, s.Column)
}

// The error taxonomy every conforming implementation emits. Each Kind
// wraps a message template; call .New(args...) at the failure site.
var (
	ErrSyntax              = errors.NewKind("syntax error at %s: %s")
	ErrResolution          = errors.NewKind("could not resolve %s")
	ErrAmbiguousColumn     = errors.NewKind("ambiguous column name %q")
	ErrTypeMismatch        = errors.NewKind("type mismatch: cannot apply %s to %s and %s")
	ErrAmbiguousFunction   = errors.NewKind("call to %q is ambiguous between %d overloads at equal coercion distance")
	ErrDimensionMismatch   = errors.NewKind("dimension mismatch: %d vs %d")
	ErrDivisionByZero      = errors.NewKind("division by zero")
	ErrOutOfRange          = errors.NewKind("%s out of range for %s")
	ErrConstraintViolation = errors.NewKind("constraint violation: %s")
	ErrSerializationFailure = errors.NewKind("could not serialize access due to concurrent update")
	ErrResourceExceeded    = errors.NewKind("resource exceeded: %s")
	ErrFeatureNotSupported = errors.NewKind("feature not supported: %s")
	ErrInternal            = errors.NewKind("internal error: %s")

	// Narrower kinds used by specific components. Each is a Kind of its
	// own: Is() on one of the kinds above does not match them.
	ErrUnknownFunction  = errors.NewKind("unknown function %q")
	ErrUnknownTable     = errors.NewKind("table not found: %s")
	ErrUnknownColumn    = errors.NewKind("column not found: %s")
	ErrTxAborted        = errors.NewKind("current transaction is aborted, commands ignored until end of transaction block")
	ErrNoActiveTx       = errors.NewKind("no active transaction")
)

// SyntaxError wraps ErrSyntax with a source span, matching the reporting
// format of spec.md §6: every error carries a kind, a message, and
// (where applicable) a span.
type SyntaxError struct {
	Span    Span
	Message string
}

func (e *SyntaxError) Error() string {
	return ErrSyntax.New(e.Span.String(), e.Message).Error()
}

func (e *SyntaxError) Is(target error) bool {
	return ErrSyntax.Is(target)
}

// NewSyntaxError builds a SyntaxError at the given span.
func NewSyntaxError(span Span, format string, args ...interface{}) error {
	return &SyntaxError{Span: span, Message: fmt.Sprintf(format, args...)}
}
