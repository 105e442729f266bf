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

import "sync"

// CommitLog records each transaction's final outcome by xid. A single
// mutex guards it, held only for the atomic status flip at commit or
// rollback (spec.md §5), the same locking granularity the teacher's
// sql.LockSubsystem uses for its own short critical sections.
type CommitLog struct {
	mu        sync.Mutex
	committed map[uint64]bool
	aborted   map[uint64]bool
}

func NewCommitLog() *CommitLog {
	return &CommitLog{
		committed: make(map[uint64]bool),
		aborted:   make(map[uint64]bool),
	}
}

func (l *CommitLog) markCommitted(xid uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.committed[xid] = true
}

func (l *CommitLog) markAborted(xid uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.aborted[xid] = true
}

func (l *CommitLog) IsCommitted(xid uint64) bool {
	if xid == 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.committed[xid]
}

func (l *CommitLog) IsAborted(xid uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.aborted[xid]
}
