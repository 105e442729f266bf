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

// Table is a named, schema-bearing source of RecordBatches, backed in
// practice by storage.Table's row groups and MVCC version chains. It
// lives in this package (rather than storage) so sql/plan can
// reference it without importing storage, mirroring the way the
// teacher's sql.Table sits in the sql package while mem.Table is just
// one implementation.
type Table interface {
	Name() string
	Schema() Schema
	// Partitions returns one BatchIter per partition (a row group, in
	// this engine); single-partition tables return a slice of one.
	Partitions(ctx *Context) ([]BatchIter, error)
}

// BatchIter yields RecordBatches one at a time, the batch-granular
// counterpart to RowIter, exhausting with io.EOF.
type BatchIter interface {
	Next(ctx *Context) (*RecordBatch, error)
	Close(ctx *Context) error
}

// Database groups named Tables, mirroring the teacher's sql.Database.
type Database interface {
	Name() string
	Tables(ctx *Context) (map[string]Table, error)
	Table(ctx *Context, name string) (Table, bool, error)
}

// InsertableTable, UpdatableTable, DeletableTable are the DML
// capability interfaces a storage.Table implements; plan/rowexec DML
// operators type-assert a Table against these rather than requiring
// every Table to support mutation (read-only views, table functions).
type InsertableTable interface {
	Table
	Insert(ctx *Context, rows []Row) error
}

type UpdatableTable interface {
	Table
	Update(ctx *Context, old, new Row) error
}

type DeletableTable interface {
	Table
	Delete(ctx *Context, row Row) error
}

// SchemaOwner is the DDL capability interface a storage.Database
// implements; CreateTable/DropTable execution type-asserts against
// this rather than growing every Database implementation a mutation
// surface a read-only or view-backed Database may not support.
type SchemaOwner interface {
	Database
	CreateTable(name string, schema Schema) Table
	DropTable(name string)
}
