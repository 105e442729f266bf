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

// Package yachtsql is the embeddable entry point: Executor wires the
// parser, analyzer, physical compiler, and storage layer together the
// way the teacher's sqle.Engine/sqle.New/Engine.Query do (engine.go),
// generalized to the three-dialect, columnar pipeline this spec
// describes.
package yachtsql

import (
	"context"

	"github.com/yachtsql/yachtsql/sql"
	"github.com/yachtsql/yachtsql/sql/analyzer"
	"github.com/yachtsql/yachtsql/sql/expression/function"
	"github.com/yachtsql/yachtsql/sql/parser"
	"github.com/yachtsql/yachtsql/sql/parser/token"
	"github.com/yachtsql/yachtsql/sql/rowexec"
)

// Dialect selects which of the three supported SQL dialects a
// statement is parsed and bound against (spec.md §4.1).
type Dialect = token.Dialect

const (
	PostgreSQL = token.PostgreSQL
	BigQuery   = token.BigQuery
	ClickHouse = token.ClickHouse
)

// Result is one statement's output: its schema and a row iterator the
// caller drains and closes.
type Result struct {
	Schema sql.Schema
	Rows   sql.RowIter
}

// Executor is the programmatic surface this engine exposes: New,
// Execute, Begin/Commit/Rollback, RegisterFunction, directly modeled on
// the teacher's Engine type.
type Executor struct {
	Catalog  *sql.Catalog
	Registry *function.Registry
	Dialect  Dialect
}

// New builds an Executor with the built-in function registry
// (sql/expression/function.NewBuiltinRegistry) and an empty Catalog the
// caller populates via AddDatabase.
func New(dialect Dialect) *Executor {
	return &Executor{
		Catalog:  sql.NewCatalog(),
		Registry: function.NewBuiltinRegistry(),
		Dialect:  dialect,
	}
}

// AddDatabase registers db under its own name, the same shape as the
// teacher's Engine.AddDatabase.
func (e *Executor) AddDatabase(db sql.Database) { e.Catalog.AddDatabase(db) }

// RegisterFunction adds a scalar function at runtime, bypassing the
// permission gate the teacher's auth package would apply — this core
// has no such layer (see DESIGN.md, the driver/auth Non-goal).
func (e *Executor) RegisterFunction(sig function.Signature, fn function.ScalarFunc, ret func([]sql.Type) (sql.Type, error)) {
	e.Registry.RegisterScalar(sig, fn, ret)
}

// Begin starts a new transaction and attaches it to session, the
// programmatic equivalent of a client's BEGIN statement.
func (e *Executor) Begin(session *sql.Session, isolation sql.IsolationLevel) {
	tx := e.transactionManager().Begin(isolation)
	session.SetTransaction(tx)
}

// Commit finalizes the session's active transaction, clearing it
// whether or not the commit succeeds (a failed commit still ends the
// transaction per spec.md §3's TxAborted status).
func (e *Executor) Commit(session *sql.Session) error {
	tx := session.Transaction()
	if tx == nil {
		return sql.ErrNoActiveTx.New()
	}
	err := e.transactionManager().Commit(tx)
	session.SetTransaction(nil)
	return err
}

func (e *Executor) Rollback(session *sql.Session) {
	tx := session.Transaction()
	if tx == nil {
		return
	}
	e.transactionManager().Rollback(tx)
	session.SetTransaction(nil)
}

// transactionManager finds some database's shared TxManager by
// type-asserting against txOwner. Every Database this Executor's
// Catalog holds is expected to come from the same storage instance
// sharing one TxManager (a cross-database transaction spanning two
// independent storage.Database values is out of scope, same as the
// teacher's single-engine-wide lock subsystem).
func (e *Executor) transactionManager() txOwner {
	for _, db := range e.Catalog.Databases() {
		if owner, ok := db.(txOwner); ok {
			return owner
		}
	}
	return noopTxOwner{}
}

// txOwner is the subset of storage.Database's transaction lifecycle
// Executor needs, kept as a local interface so this package doesn't
// import storage (an embedder may supply its own Database/TxManager
// pair instead of storage's).
type txOwner interface {
	Begin(isolation sql.IsolationLevel) *sql.Transaction
	Commit(tx *sql.Transaction) error
	Rollback(tx *sql.Transaction)
}

type noopTxOwner struct{}

func (noopTxOwner) Begin(isolation sql.IsolationLevel) *sql.Transaction {
	return sql.NewTransaction(0, 0, isolation)
}
func (noopTxOwner) Commit(tx *sql.Transaction) error { return sql.ErrNoActiveTx.New() }
func (noopTxOwner) Rollback(tx *sql.Transaction)     {}

// Execute parses, analyzes, compiles, and runs one SQL statement
// against session's current database and transaction (autocommit
// wraps the statement in an implicit transaction when session has
// none active, per spec.md §3).
func (e *Executor) Execute(ctx context.Context, session *sql.Session, query string) (*Result, error) {
	sctx := sql.NewContext(ctx, session)

	stmt, err := parser.Parse(query, e.Dialect)
	if err != nil {
		return nil, err
	}

	builder := analyzer.NewBuilder(e.Catalog, e.Registry, function.Dialect(e.Dialect.String()))
	node, err := builder.Build(sctx, session.CurrentDB, stmt)
	if err != nil {
		session.SetErrorPending(true)
		return nil, err
	}

	az := analyzer.NewDefault(e.Catalog, e.Registry)
	node, err = az.Analyze(sctx, node, nil)
	if err != nil {
		session.SetErrorPending(true)
		return nil, err
	}

	autocommit := session.Transaction() == nil
	if autocommit {
		e.Begin(session, sql.ReadCommitted)
	}
	sctx = sql.NewContext(ctx, session)

	compiler := analyzer.NewCompiler(sctx, e.Catalog)
	iter, err := compiler.Compile(node)
	if err != nil {
		if autocommit {
			e.Rollback(session)
		}
		session.SetErrorPending(true)
		return nil, err
	}

	rows, err := rowexec.DrainRows(sctx, iter)
	if autocommit {
		if err != nil {
			e.Rollback(session)
		} else if cerr := e.Commit(session); cerr != nil {
			return nil, cerr
		}
	}
	if err != nil {
		session.SetErrorPending(true)
		return nil, err
	}

	return &Result{Schema: node.Schema(), Rows: sql.RowsToRowIter(rows...)}, nil
}
