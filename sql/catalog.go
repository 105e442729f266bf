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

import "strings"

// Catalog is the set of Databases the engine knows about, looked up by
// name (case-insensitive) during table resolution (spec.md §4.2). It
// lives in this package, alongside Database and Table, so sql/analyzer
// and sql/plan can both reference it without importing storage.
type Catalog struct {
	databases map[string]Database
}

func NewCatalog() *Catalog {
	return &Catalog{databases: make(map[string]Database)}
}

func (c *Catalog) AddDatabase(db Database) {
	c.databases[strings.ToLower(db.Name())] = db
}

func (c *Catalog) Database(name string) (Database, bool) {
	db, ok := c.databases[strings.ToLower(name)]
	return db, ok
}

func (c *Catalog) Databases() []Database {
	dbs := make([]Database, 0, len(c.databases))
	for _, db := range c.databases {
		dbs = append(dbs, db)
	}
	return dbs
}

// Table resolves a (database, name) pair, falling back to
// defaultDatabase when database is empty (an unqualified table
// reference).
func (c *Catalog) Table(ctx *Context, defaultDatabase, database, name string) (Table, error) {
	dbName := database
	if dbName == "" {
		dbName = defaultDatabase
	}
	db, ok := c.Database(dbName)
	if !ok {
		return nil, ErrUnknownTable.New(name)
	}
	table, ok, err := db.Table(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownTable.New(name)
	}
	return table, nil
}
