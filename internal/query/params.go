package query

import (
	"fmt"
	"time"

	"findash/internal/core"
	"findash/internal/period"
)

// Kind names one of the four aggregate views served by Query.
type Kind string

const (
	KindOverview     Kind = "overview"
	KindCategories   Kind = "categories"
	KindBalances     Kind = "balances"
	KindTransactions Kind = "transactions"
)

// Params is the boundary input of every period-aware query.
type Params struct {
	Year     int
	Month    int // 0-11
	Period   period.Kind
	Category string // transaction listing only
}

// Validate checks the month index and period kind.
func (p Params) Validate() error {
	if p.Month < 0 || p.Month > 11 {
		return fmt.Errorf("%w: %d (expected 0-11)", core.ErrInvalidMonth, p.Month)
	}
	if p.Period != "" && !p.Period.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidPeriod, string(p.Period))
	}
	return nil
}

// CalendarMonth converts the 0-based month index to time.Month.
func (p Params) CalendarMonth() time.Month {
	return time.Month(p.Month + 1)
}

// Previous returns the same query one month earlier; January rolls back to
// December of the previous year.
func (p Params) Previous() Params {
	prev := p
	if p.Month == 0 {
		prev.Year, prev.Month = p.Year-1, 11
	} else {
		prev.Month = p.Month - 1
	}
	return prev
}

// Current returns the params for today's calendar month.
func Current(today time.Time) Params {
	return Params{Year: today.Year(), Month: int(today.Month()) - 1}
}
