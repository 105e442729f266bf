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

import "sync"

// WriteKey identifies one logical row touched by a transaction's
// writeset, used by Serializable's write-conflict detection (spec.md
// §4.6, Commit protocol).
type WriteKey struct {
	Table string
	RowID uint64
}

// Transaction is the MVCC unit of work described in spec.md §3: an xid,
// a snapshot xid fixing visibility, an isolation level, a status, and
// the set of rows it has written. The storage package is the only
// thing that mutates Status/Writeset; this struct just carries the
// state so sql.Context/sql.Session can reference a transaction without
// importing storage (which imports sql).
type Transaction struct {
	mu          sync.Mutex
	Xid         uint64
	SnapshotXid uint64
	Isolation   IsolationLevel
	Status      TxStatus
	Writeset    map[WriteKey]struct{}
}

func NewTransaction(xid, snapshotXid uint64, isolation IsolationLevel) *Transaction {
	return &Transaction{
		Xid:         xid,
		SnapshotXid: snapshotXid,
		Isolation:   isolation,
		Status:      TxRunning,
		Writeset:    make(map[WriteKey]struct{}),
	}
}

func (t *Transaction) RecordWrite(k WriteKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Writeset[k] = struct{}{}
}

func (t *Transaction) SetStatus(s TxStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = s
}

func (t *Transaction) GetStatus() TxStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Status
}

// ConflictsWith reports whether t's writeset intersects other's,
// the write-write conflict check Serializable isolation performs at
// commit time (spec.md §4.6).
func (t *Transaction) ConflictsWith(other *Transaction) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()
	for k := range t.Writeset {
		if _, ok := other.Writeset[k]; ok {
			return true
		}
	}
	return false
}
