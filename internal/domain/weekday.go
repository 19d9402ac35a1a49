package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidWeekday is returned for weekday indices outside 0..6
var ErrInvalidWeekday = errors.New("invalid weekday index, expected 0 (Sunday) .. 6 (Saturday)")

// Weekday is a day-of-week index with a fixed zero point: 0 = Sunday,
// 1 = Monday, ... 6 = Saturday. The convention matches both the persisted
// days_of_week lists and Go's time.Weekday, and must never change silently.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeekdayOf converts a calendar date to a Weekday. This is the single
// boundary where dates become weekday indices.
func WeekdayOf(date time.Time) Weekday {
	return Weekday(int(date.Weekday()))
}

// Valid reports whether the index is in range
func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

// String returns the English day name
func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return time.Weekday(w).String()
}

// WeekdaySet is a set of weekdays, persisted as an ordered JSON list of
// integers (e.g. [1,3,5] for Monday/Wednesday/Friday)
type WeekdaySet []Weekday

// NewWeekdaySet builds a normalized set from raw indices
func NewWeekdaySet(days ...int) (WeekdaySet, error) {
	set := make(WeekdaySet, 0, len(days))
	for _, d := range days {
		w := Weekday(d)
		if !w.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
		set = append(set, w)
	}
	return set.Normalize(), nil
}

// Contains reports whether the set includes the given weekday
func (s WeekdaySet) Contains(w Weekday) bool {
	for _, d := range s {
		if d == w {
			return true
		}
	}
	return false
}

// ContainsDate reports whether the set includes the weekday of the given date
func (s WeekdaySet) ContainsDate(date time.Time) bool {
	return s.Contains(WeekdayOf(date))
}

// Normalize returns the set sorted with duplicates removed
func (s WeekdaySet) Normalize() WeekdaySet {
	seen := make(map[Weekday]struct{}, len(s))
	out := make(WeekdaySet, 0, len(s))
	for _, d := range s {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks all indices are in range and the set is not empty
func (s WeekdaySet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty set", ErrInvalidWeekday)
	}
	for _, d := range s {
		if !d.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, int(d))
		}
	}
	return nil
}

// Scan implements sql.Scanner: the column holds a JSON array of ints
func (s *WeekdaySet) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidWeekday, src)
	}

	var days []int
	if err := json.Unmarshal(raw, &days); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeekday, err)
	}

	set, err := NewWeekdaySet(days...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// Value implements driver.Valuer: serialized as an ordered JSON list
func (s WeekdaySet) Value() (driver.Value, error) {
	days := make([]int, len(s))
	for i, d := range s.Normalize() {
		days[i] = int(d)
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
