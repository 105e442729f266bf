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

package rowexec

import (
	"io"

	"github.com/yachtsql/yachtsql/sql"
)

// limitIter skips Offset rows and then yields up to Count rows across
// as many child batches as it takes, slicing the batch that straddles
// either boundary with RecordBatch.Slice. A negative Count (build.go's
// sentinel for "no LIMIT clause was given", used when OFFSET appears
// alone) means unbounded: take everything remaining after the skip.
type limitIter struct {
	ctx           *sql.Context
	child         Iter
	remainingSkip int64
	remainingTake int64
	unbounded     bool
	done          bool
}

// Limit builds the Iter for a plan.Limit node. count/offset are
// already-evaluated scalars (the analyzer requires both to be constant
// at bind time; spec.md §4.5 does not support a computed LIMIT).
func Limit(ctx *sql.Context, count, offset int64, child Iter) Iter {
	return &limitIter{ctx: ctx, child: child, remainingSkip: offset, remainingTake: count, unbounded: count < 0}
}

func (l *limitIter) Next(ctx *sql.Context) (*sql.RecordBatch, error) {
	if l.done || (!l.unbounded && l.remainingTake <= 0) {
		return nil, io.EOF
	}
	for {
		batch, err := l.child.Next(ctx)
		if err != nil {
			return nil, err
		}
		n := int64(batch.NumRows())
		if l.remainingSkip >= n {
			l.remainingSkip -= n
			continue
		}
		start := int(l.remainingSkip)
		l.remainingSkip = 0
		avail := n - int64(start)
		if l.unbounded {
			return batch.Slice(start, start+int(avail)), nil
		}
		take := l.remainingTake
		if take > avail {
			take = avail
		}
		end := start + int(take)
		out := batch.Slice(start, end)
		l.remainingTake -= take
		if l.remainingTake <= 0 {
			l.done = true
		}
		return out, nil
	}
}

func (l *limitIter) Close(ctx *sql.Context) error { return l.child.Close(ctx) }
