package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidTimeString is returned when a string cannot be parsed as a time of day
	ErrInvalidTimeString = errors.New("invalid time string format, expected HH:MM or HH:MM:SS")
)

// TimeString represents a time of day without a date component.
// The canonical form is "HH:MM:SS"; values parsed from "HH:MM" are
// normalized by appending ":00". All comparisons go through
// SecondsSinceMidnight, so "09:00" and "09:00:00" are always equal.
type TimeString struct {
	hour   int
	minute int
	second int
	valid  bool
}

// NewTimeString creates a TimeString from the clock part of t
func NewTimeString(t time.Time) TimeString {
	return TimeString{
		hour:   t.Hour(),
		minute: t.Minute(),
		second: t.Second(),
		valid:  true,
	}
}

// NewTimeStringFromString parses "HH:MM" or "HH:MM:SS"
func NewTimeStringFromString(s string) (TimeString, error) {
	s = strings.TrimSpace(s)

	var layout string
	switch strings.Count(s, ":") {
	case 1:
		layout = "15:04"
	case 2:
		layout = "15:04:05"
	default:
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	return NewTimeString(t), nil
}

// IsZero reports whether the value was never set
func (t TimeString) IsZero() bool {
	return !t.valid
}

// Validate returns an error if the value is unset
func (t TimeString) Validate() error {
	if !t.valid {
		return ErrInvalidTimeString
	}
	return nil
}

// SecondsSinceMidnight returns the canonical integer form used for all
// comparisons and grouping keys
func (t TimeString) SecondsSinceMidnight() int {
	return t.hour*3600 + t.minute*60 + t.second
}

// Equal compares two times of day at second precision
func (t TimeString) Equal(other TimeString) bool {
	return t.valid && other.valid && t.SecondsSinceMidnight() == other.SecondsSinceMidnight()
}

// IsBefore reports whether t is strictly earlier than other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.SecondsSinceMidnight() < other.SecondsSinceMidnight()
}

// IsAfter reports whether t is strictly later than other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.SecondsSinceMidnight() > other.SecondsSinceMidnight()
}

// TruncateToMinute drops the seconds component
func (t TimeString) TruncateToMinute() TimeString {
	t.second = 0
	return t
}

// String returns the canonical "HH:MM:SS" form
func (t TimeString) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.hour, t.minute, t.second)
}

// Short returns the minute-granularity "HH:MM" form used in API responses
func (t TimeString) Short() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// Scan implements sql.Scanner. Postgres TIME columns arrive as strings or
// []byte, lib/pq may also hand over a time.Time.
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeString{}
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		parsed, err := NewTimeStringFromString(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := NewTimeStringFromString(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidTimeString, src)
	}
}

// Value implements driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if !t.valid {
		return nil, nil
	}
	return t.String(), nil
}
