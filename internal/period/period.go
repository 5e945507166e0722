// Package period resolves a reference (year, month) and a period kind into a
// concrete inclusive date range.
package period

import (
	"fmt"
	"strings"
	"time"

	"findash/internal/core"
)

const (
	Week    Kind = "week"
	Month   Kind = "month"
	Quarter Kind = "quarter"
	Year    Kind = "year"
)

// referenceDay anchors resolution inside the target month whatever weekday the 1st is.
const referenceDay = 15

type (
	// Kind selects the calendar granularity. The zero value means "absent".
	Kind string

	// Clock supplies the wall-clock instant used for capping.
	Clock interface {
		Now() time.Time
	}

	// ClockFunc adapts a function to Clock.
	ClockFunc func() time.Time

	systemClock struct{}
)

// SystemClock reads the local wall clock.
var SystemClock Clock = systemClock{}

func (systemClock) Now() time.Time { return time.Now() }

func (f ClockFunc) Now() time.Time { return f() }

// Today returns the clock's current local calendar day.
func Today(c Clock) core.Date {
	return core.DateOf(c.Now())
}

// Fixed returns a Clock frozen at the given day, for tests and replays.
func Fixed(d core.Date) Clock {
	return ClockFunc(func() time.Time { return d.Time })
}

// ParseKind accepts week|month|quarter|year in any case; "" yields the zero Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return "", nil
	}
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidPeriod, s)
	}
	return k, nil
}

func (k Kind) IsValid() bool {
	switch k {
	case Week, Month, Quarter, Year:
		return true
	default:
		return false
	}
}

// IsMonthShortcut reports whether queries with this kind take the
// month-filter path: absent or explicitly month.
func (k Kind) IsMonthShortcut() bool {
	return k == "" || k == Month
}

func (k Kind) String() string {
	return string(k)
}

// Natural returns the uncapped calendar span of kind containing ref.
// Weeks start on Sunday.
func Natural(ref core.Date, kind Kind) (core.DateRange, error) {
	y, m := ref.Year(), int(ref.Month())
	var start, end core.Date
	switch kind {
	case Week:
		start = ref.AddDays(-int(ref.Weekday()))
		end = start.AddDays(6)
	case "", Month:
		start = core.NewDate(y, m, 1)
		end = core.NewDate(y, m, start.DaysInMonth())
	case Quarter:
		first := ((m-1)/3)*3 + 1
		start = core.NewDate(y, first, 1)
		end = core.NewDate(y, first+3, 0)
	case Year:
		start = core.NewDate(y, 1, 1)
		end = core.NewDate(y, 12, 31)
	default:
		return core.DateRange{}, fmt.Errorf("%w: %q", core.ErrInvalidPeriod, string(kind))
	}
	return core.NewDateRange(start, end)
}

// Cap clamps the range end to today when today lies inside it. Ranges wholly
// in the past or wholly in the future are returned unchanged.
func Cap(r core.DateRange, today core.Date) core.DateRange {
	if r.End.Time.After(today.Time) && !r.Start.Time.After(today.Time) {
		r.End = today
	}
	return r
}

// Resolve maps (year, month, kind) to an inclusive, capped date range.
// month is a calendar month; an empty kind resolves as Month.
func Resolve(year int, month time.Month, kind Kind, today core.Date) (core.DateRange, error) {
	if month < time.January || month > time.December {
		return core.DateRange{}, fmt.Errorf("%w: %d", core.ErrInvalidMonth, int(month))
	}
	ref := core.NewDate(year, int(month), referenceDay)
	r, err := Natural(ref, kind)
	if err != nil {
		return core.DateRange{}, err
	}
	return Cap(r, today), nil
}
