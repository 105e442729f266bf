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

package types

import (
	"fmt"
	"time"

	"github.com/yachtsql/yachtsql/sql"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05.999999"
	timestampLayout = "2006-01-02 15:04:05.999999"
)

// minDate/maxDate bound the supported DATE range; OutOfRange is raised
// outside it (spec.md §7).
var (
	minDate = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

type dateKind int

const (
	kindDate dateKind = iota
	kindTime
	kindTimestamp
	kindTimestampTZ
)

type dateTimeType struct {
	kind dateKind
}

var (
	Date        sql.Type = dateTimeType{kind: kindDate}
	Time        sql.Type = dateTimeType{kind: kindTime}
	Timestamp   sql.Type = dateTimeType{kind: kindTimestamp}
	TimestampTZ sql.Type = dateTimeType{kind: kindTimestampTZ}
)

func (t dateTimeType) Tag() sql.TypeTag {
	switch t.kind {
	case kindDate:
		return sql.DateTag
	case kindTime:
		return sql.TimeTag
	case kindTimestamp:
		return sql.TimestampTag
	default:
		return sql.TimestampTZTag
	}
}

func (t dateTimeType) Name() string {
	switch t.kind {
	case kindDate:
		return "DATE"
	case kindTime:
		return "TIME"
	case kindTimestamp:
		return "TIMESTAMP"
	default:
		return "TIMESTAMPTZ"
	}
}

func (t dateTimeType) Compare(a, b interface{}) (int, error) {
	av, bv := a.(time.Time), b.(time.Time)
	switch {
	case av.Before(bv):
		return -1, nil
	case av.After(bv):
		return 1, nil
	default:
		return 0, nil
	}
}

func (t dateTimeType) layout() string {
	switch t.kind {
	case kindDate:
		return dateLayout
	case kindTime:
		return timeLayout
	default:
		return timestampLayout
	}
}

func (t dateTimeType) Convert(v interface{}) (interface{}, error) {
	var out time.Time
	switch x := v.(type) {
	case time.Time:
		out = t.normalize(x)
	case string:
		loc := time.UTC
		parsed, err := time.ParseInLocation(t.layout(), x, loc)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New(t.Name(), "STRING", t.Name())
		}
		out = t.normalize(parsed)
	default:
		return nil, sql.ErrTypeMismatch.New(t.Name(), fmt.Sprintf("%T", v), t.Name())
	}
	if t.kind == kindDate {
		if err := CheckDateRange(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t dateTimeType) normalize(x time.Time) time.Time {
	if t.kind == kindDate {
		x = time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC)
		if x.Before(minDate) || x.After(maxDate) {
			return x
		}
	}
	if t.kind != kindTimestampTZ {
		x = x.UTC()
	}
	return x
}

func (t dateTimeType) Zero() interface{} { return time.Time{} }

func (t dateTimeType) Equals(other sql.Type) bool {
	o, ok := other.(dateTimeType)
	return ok && o.kind == t.kind
}

// CheckDateRange returns sql.ErrOutOfRange if x falls outside the
// supported DATE range.
func CheckDateRange(x time.Time) error {
	if x.Before(minDate) || x.After(maxDate) {
		return sql.ErrOutOfRange.New(x.Format(dateLayout), "DATE")
	}
	return nil
}

// intervalType represents INTERVAL as a (months, days, nanos) triple,
// the usual decomposition for calendar-aware interval arithmetic.
type intervalType struct{}

var Interval sql.Type = intervalType{}

// IntervalValue is the canonical payload for INTERVAL.
type IntervalValue struct {
	Months int32
	Days   int32
	Nanos  int64
}

func (intervalType) Tag() sql.TypeTag { return sql.IntervalTag }
func (intervalType) Name() string     { return "INTERVAL" }
func (intervalType) Compare(a, b interface{}) (int, error) {
	av, bv := a.(IntervalValue), b.(IntervalValue)
	ad := int64(av.Months)*30*86400e9 + int64(av.Days)*86400e9 + av.Nanos
	bd := int64(bv.Months)*30*86400e9 + int64(bv.Days)*86400e9 + bv.Nanos
	switch {
	case ad < bd:
		return -1, nil
	case ad > bd:
		return 1, nil
	default:
		return 0, nil
	}
}
func (intervalType) Convert(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case IntervalValue:
		return x, nil
	default:
		return nil, sql.ErrTypeMismatch.New("INTERVAL", fmt.Sprintf("%T", v), "INTERVAL")
	}
}
func (intervalType) Zero() interface{} { return IntervalValue{} }
func (intervalType) Equals(other sql.Type) bool {
	_, ok := other.(intervalType)
	return ok
}
