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
	"sync"

	"github.com/yachtsql/yachtsql/sql"
)

// versionPtr locates the next (newer) version of a logical row,
// spanning row groups since an UPDATE's new version may land in a
// different group than the one being superseded. group == -1 means
// this is the newest version (spec.md §3, MVCC header next_version).
type versionPtr struct {
	group int
	slot  int
}

// RowGroup is one chunk of a Table's storage: column chunks holding the
// actual values, plus a parallel per-row MVCC header (inserter_xid,
// deleter_xid, next_version) and a free-slot bitmap so reclaimed
// versions can be recycled instead of growing the chunk forever
// (spec.md §3, Table and §4.6).
type RowGroup struct {
	mu     sync.RWMutex
	schema sql.Schema
	cap    int

	columns     []*sql.ColumnData
	inserterXid []uint64
	deleterXid  []uint64
	nextVersion []versionPtr
	free        []bool
}

func newRowGroup(schema sql.Schema, capacity int) *RowGroup {
	cols := make([]*sql.ColumnData, len(schema))
	for i, c := range schema {
		cols[i] = sql.NewColumnData(c.Name, c.Type, capacity)
	}
	return &RowGroup{schema: schema, cap: capacity, columns: cols}
}

func (g *RowGroup) len() int   { return len(g.inserterXid) }
func (g *RowGroup) full() bool { return g.len() >= g.cap }

// appendRow stores row under xid's insertion, reusing a freed slot
// before growing the column chunks.
func (g *RowGroup) appendRow(row sql.Row, xid uint64) int {
	for i, isFree := range g.free {
		if !isFree {
			continue
		}
		for j, v := range row {
			g.columns[j].Set(i, v)
		}
		g.inserterXid[i] = xid
		g.deleterXid[i] = 0
		g.nextVersion[i] = versionPtr{group: -1}
		g.free[i] = false
		return i
	}

	for j, v := range row {
		g.columns[j].Append(v)
	}
	g.inserterXid = append(g.inserterXid, xid)
	g.deleterXid = append(g.deleterXid, 0)
	g.nextVersion = append(g.nextVersion, versionPtr{group: -1})
	g.free = append(g.free, false)
	return g.len() - 1
}

func (g *RowGroup) markDeleted(slot int, xid uint64) {
	g.deleterXid[slot] = xid
}

func (g *RowGroup) setNextVersion(slot int, next versionPtr) {
	g.nextVersion[slot] = next
}

func (g *RowGroup) row(slot int) sql.Row {
	row := make(sql.Row, len(g.columns))
	for j, c := range g.columns {
		row[j] = c.At(slot)
	}
	return row
}

// reclaim returns every deleted-and-committed-before-oldestSnapshot
// slot to the free list: no running transaction's snapshot can ever
// need that version again (spec.md §4.6, background reclaimer).
func (g *RowGroup) reclaim(tm *TxManager, oldestSnapshot uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, d := range g.deleterXid {
		if d == 0 || g.free[i] {
			continue
		}
		if tm.IsCommitted(d) && d < oldestSnapshot {
			g.free[i] = true
		}
	}
}
