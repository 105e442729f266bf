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

package function

import "github.com/yachtsql/yachtsql/sql"

// coercionRank orders the implicit widenings the binder is allowed to
// insert a Cast for (spec.md §4.2). Lower is cheaper; a pair with no
// entry is not implicitly coercible at all (the caller must CAST
// explicitly).
var coercionRank = map[sql.TypeTag]map[sql.TypeTag]int{
	sql.Int64Tag: {
		sql.Int64Tag:   0,
		sql.Float64Tag: 2,
		sql.DecimalTag: 1,
	},
	sql.Float64Tag: {
		sql.Float64Tag: 0,
	},
	sql.DecimalTag: {
		sql.DecimalTag: 0,
		sql.Float64Tag: 2,
	},
	sql.DateTag: {
		sql.DateTag:      0,
		sql.TimestampTag: 1,
	},
	sql.TimestampTag: {
		sql.TimestampTag:   0,
		sql.TimestampTZTag: 1,
	},
	sql.StringTag: {
		sql.StringTag: 0,
	},
	sql.BytesTag: {
		sql.BytesTag: 0,
	},
	sql.BoolTag: {
		sql.BoolTag: 0,
	},
	sql.UUIDTag: {
		sql.UUIDTag: 0,
	},
	sql.JSONTag: {
		sql.JSONTag: 0,
	},
	sql.IntervalTag: {
		sql.IntervalTag: 0,
	},
	sql.ArrayTag: {
		sql.ArrayTag: 0,
	},
	sql.StructTag: {
		sql.StructTag: 0,
	},
	sql.RangeTag: {
		sql.RangeTag: 0,
	},
	sql.VectorTag: {
		sql.VectorTag: 0,
	},
	sql.EnumTag: {
		sql.EnumTag: 0,
	},
	sql.TimestampTZTag: {
		sql.TimestampTZTag: 0,
	},
	sql.TimeTag: {
		sql.TimeTag: 0,
	},
}

// CoercionDistance reports how many implicit-widening steps separate
// `have` from `want`, or false if no such path exists. NullTag is
// compatible with (and free against) anything: an untyped NULL literal
// binds to whatever the overload expects.
func CoercionDistance(have, want sql.TypeTag) (int, bool) {
	if have == sql.NullTag {
		return 0, true
	}
	if have == want {
		return 0, true
	}
	if row, ok := coercionRank[have]; ok {
		if d, ok := row[want]; ok {
			return d, true
		}
	}
	return 0, false
}
