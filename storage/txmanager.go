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
	"sync/atomic"

	"github.com/yachtsql/yachtsql/sql"
)

// TxManager hands out xids and snapshot xids, tracks which
// transactions are currently running (so Serializable's commit-time
// write-write check has something to compare against), and owns the
// CommitLog every Table's visibility check consults. One TxManager is
// shared by every Table in a Database, matching the teacher's
// single-engine-wide sql.LockSubsystem instance.
type TxManager struct {
	nextXid uint64
	log     *CommitLog

	mu      sync.Mutex
	running map[uint64]*sql.Transaction
}

func NewTxManager() *TxManager {
	return &TxManager{log: NewCommitLog(), running: make(map[uint64]*sql.Transaction)}
}

// Begin starts a real, trackable transaction: its writeset is recorded
// and it participates in commit-time conflict checks. DML always goes
// through one of these (see Table.Insert/Update/Delete).
func (m *TxManager) Begin(isolation sql.IsolationLevel) *sql.Transaction {
	xid := atomic.AddUint64(&m.nextXid, 1)
	tx := sql.NewTransaction(xid, xid, isolation)

	m.mu.Lock()
	m.running[xid] = tx
	m.mu.Unlock()
	return tx
}

// Snapshot builds a throwaway, read-only transaction fixing visibility
// at "every xid committed so far" without registering it as running —
// a plain SELECT with no explicit BEGIN synthesizes one of these rather
// than forcing every reader to pair a Begin with a Commit (spec.md §3,
// the autocommit case engine.go's Executor documents).
func (m *TxManager) Snapshot() *sql.Transaction {
	xid := atomic.LoadUint64(&m.nextXid)
	return sql.NewTransaction(0, xid, sql.ReadCommitted)
}

// Commit runs Serializable's write-write conflict check (spec.md §4.6:
// abort if any concurrently-running transaction's writeset intersects
// ours) and then flips status and records the commit atomically.
func (m *TxManager) Commit(tx *sql.Transaction) error {
	m.mu.Lock()
	if tx.Isolation == sql.Serializable {
		for otherXid, other := range m.running {
			if otherXid == tx.Xid {
				continue
			}
			if tx.ConflictsWith(other) {
				delete(m.running, tx.Xid)
				m.mu.Unlock()
				tx.SetStatus(sql.TxAborted)
				m.log.markAborted(tx.Xid)
				return sql.ErrSerializationFailure.New()
			}
		}
	}
	delete(m.running, tx.Xid)
	m.mu.Unlock()

	tx.SetStatus(sql.TxCommitted)
	m.log.markCommitted(tx.Xid)
	return nil
}

func (m *TxManager) Rollback(tx *sql.Transaction) {
	m.mu.Lock()
	delete(m.running, tx.Xid)
	m.mu.Unlock()

	tx.SetStatus(sql.TxAborted)
	m.log.markAborted(tx.Xid)
}

func (m *TxManager) IsCommitted(xid uint64) bool { return m.log.IsCommitted(xid) }
func (m *TxManager) IsAborted(xid uint64) bool { return m.log.IsAborted(xid) }

// oldestActiveSnapshot is the lowest snapshot_xid among transactions
// still running, the reclaim boundary: a deleted row version whose
// deleter committed strictly before every active snapshot can never
// become visible again under any running transaction, so its slot is
// safe to free (spec.md §4.6, background reclaimer).
func (m *TxManager) oldestActiveSnapshot() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldest := atomic.LoadUint64(&m.nextXid) + 1
	for _, tx := range m.running {
		if tx.SnapshotXid < oldest {
			oldest = tx.SnapshotXid
		}
	}
	return oldest
}
