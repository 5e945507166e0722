package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the canonical day key format. The first ten characters of any
// stored transaction date are expected to match it.
const DayLayout = "2006-01-02"

type (
	// Date is a calendar day. The embedded time is always midnight UTC so that
	// two Dates for the same day compare equal regardless of where they came from.
	Date struct {
		time.Time
	}

	// DateRange is an inclusive span of calendar days.
	DateRange struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidRange  = errors.New("range start is after range end")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidPeriod = errors.New("invalid period")
)

// NewDate creates a new Date from year, month (1-12), day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a wall-clock instant to its local calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO date. Only the leading yyyy-MM-dd portion is
// considered, so full timestamps are accepted and truncated to their day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(DayLayout) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(DayLayout, s[:len(DayLayout)])
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// Key returns the yyyy-MM-dd day key.
func (d Date) Key() string {
	return d.Format(DayLayout)
}

func (d Date) String() string {
	return d.Key()
}

// AddDays returns the date n calendar days later (earlier when negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysInMonth returns the number of days in the date's month.
func (d Date) DaysInMonth() int {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Key() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewDateRange builds an inclusive range, rejecting start after end.
func NewDateRange(start, end Date) (DateRange, error) {
	if start.Time.After(end.Time) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}
	return DateRange{Start: start, End: end}, nil
}

// Contains reports whether d falls within the range, both ends included.
func (r DateRange) Contains(d Date) bool {
	return !d.Time.Before(r.Start.Time) && !d.Time.After(r.End.Time)
}

// Days returns the number of calendar days in the range.
func (r DateRange) Days() int {
	if r.Start.Time.After(r.End.Time) {
		return 0
	}
	// Dates are UTC midnights, so there is no DST drift in the division.
	return int(r.End.Sub(r.Start.Time)/(24*time.Hour)) + 1
}

func (r DateRange) String() string {
	return r.Start.Key() + ".." + r.End.Key()
}
