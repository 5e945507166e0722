// Package aggregate filters transaction sets by date and derives the
// dashboard's aggregate views from them. Every function is a pure read: inputs
// are never mutated and results are recomputed on every call.
package aggregate

import (
	"time"

	"findash/internal/core"
	"findash/internal/period"
)

// FilterByDateRange returns the transactions whose day falls within r, both
// ends included, preserving input order.
func FilterByDateRange(txs []core.Transaction, r core.DateRange) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// MonthRange is the month-shortcut range: the calendar month, capped at
// today when today falls inside it.
func MonthRange(year int, month time.Month, today core.Date) (core.DateRange, error) {
	return period.Resolve(year, month, period.Month, today)
}

// FilterByMonth keeps the transactions of the given calendar month. For the
// current month, transactions dated after today are dropped.
func FilterByMonth(txs []core.Transaction, year int, month time.Month, today core.Date) ([]core.Transaction, error) {
	r, err := MonthRange(year, month, today)
	if err != nil {
		return nil, err
	}
	return FilterByDateRange(txs, r), nil
}

// FilterByCategory keeps transactions with the given category. An empty
// category keeps everything.
func FilterByCategory(txs []core.Transaction, category string) []core.Transaction {
	if category == "" {
		return txs
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}
