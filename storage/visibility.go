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

import "github.com/yachtsql/yachtsql/sql"

// visible implements the MVCC rule from spec.md §3 (Transaction): a row
// version is visible to tx iff its inserter is committed at or before
// tx's snapshot and its deleter, if any, is not committed at or before
// the snapshot — except under ReadUncommitted, which also sees
// not-yet-committed inserts/deletes from other still-running
// transactions (the dirty-read exception the spec calls out).
func visible(tm *TxManager, tx *sql.Transaction, inserterXid, deleterXid uint64) bool {
	if !insertVisible(tm, tx, inserterXid) {
		return false
	}
	if deleterXid == 0 {
		return true
	}
	// A transaction never sees its own delete.
	if deleterXid == tx.Xid {
		return false
	}
	if tm.IsAborted(deleterXid) {
		return true
	}
	if tx.Isolation == sql.ReadUncommitted {
		return false
	}
	return !(tm.IsCommitted(deleterXid) && deleterXid <= tx.SnapshotXid)
}

func insertVisible(tm *TxManager, tx *sql.Transaction, inserterXid uint64) bool {
	if inserterXid == tx.Xid {
		return true
	}
	if tm.IsAborted(inserterXid) {
		return false
	}
	if tx.Isolation == sql.ReadUncommitted {
		return true
	}
	return tm.IsCommitted(inserterXid) && inserterXid <= tx.SnapshotXid
}
