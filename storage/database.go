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

package storage

import (
	"strings"
	"sync"

	"github.com/yachtsql/yachtsql/sql"
)

// Database is the storage-backed sql.Database: a case-insensitive
// table registry plus the TxManager every one of its Tables shares, so
// a transaction spanning several tables in the same database gets one
// consistent snapshot and one commit-time conflict check. Grounded on
// mem.NewDatabase/Database.AddTable/Database.Tables, visible in
// mem/database_test.go's TestDatabase_AddTable.
type Database struct {
	mu   sync.RWMutex
	name string
	tm   *TxManager

	tables map[string]*Table
}

func NewDatabase(name string) *Database {
	return &Database{
		name:   name,
		tm:     NewTxManager(),
		tables: make(map[string]*Table),
	}
}

func (d *Database) Name() string { return d.name }

// CreateTable makes a new empty Table under name and schema, backed by
// this Database's shared TxManager, the storage-level half of a DDL
// CreateTable plan node.
func (d *Database) CreateTable(name string, schema sql.Schema) sql.Table {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := NewTable(name, schema, d.tm)
	d.tables[strings.ToLower(name)] = t
	return t
}

func (d *Database) DropTable(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.tables, strings.ToLower(name))
}

func (d *Database) Tables(ctx *sql.Context) (map[string]sql.Table, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]sql.Table, len(d.tables))
	for name, t := range d.tables {
		out[name] = t
	}
	return out, nil
}

func (d *Database) Table(ctx *sql.Context, name string) (sql.Table, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tables[strings.ToLower(name)]
	if !ok {
		return nil, false, nil
	}
	return t, true, nil
}

// Begin starts a new transaction against this database's shared
// TxManager, the storage-level half of engine.go's Executor.Begin.
func (d *Database) Begin(isolation sql.IsolationLevel) *sql.Transaction {
	return d.tm.Begin(isolation)
}

func (d *Database) Commit(tx *sql.Transaction) error { return d.tm.Commit(tx) }
func (d *Database) Rollback(tx *sql.Transaction)     { d.tm.Rollback(tx) }

// Reclaim sweeps every table for slots safe to free. See
// Table.Reclaim's comment on why this is caller-driven, not a
// background goroutine.
func (d *Database) Reclaim() {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, t := range d.tables {
		t.Reclaim()
	}
}
