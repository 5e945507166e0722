package aggregate

import (
	"github.com/shopspring/decimal"

	"findash/internal/core"
)

// TotalIncome sums the raw amounts of income transactions. A negative income
// amount reduces the total; it is not normalized.
func TotalIncome(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.IsIncome() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// TotalExpense sums the absolute amounts of expense transactions.
func TotalExpense(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.IsExpense() {
			total = total.Add(t.AbsAmount())
		}
	}
	return total
}

// NetAmount is TotalIncome minus TotalExpense.
func NetAmount(txs []core.Transaction) decimal.Decimal {
	return TotalIncome(txs).Sub(TotalExpense(txs))
}

// Overview bundles the flat totals of a filtered set.
func Overview(txs []core.Transaction) core.OverviewMetrics {
	return core.OverviewMetrics{
		TotalIncome:      TotalIncome(txs),
		TotalExpense:     TotalExpense(txs),
		NetAmount:        NetAmount(txs),
		TransactionCount: len(txs),
	}
}

// SpendingByCategory groups expenses by category in order of first
// occurrence. Empty categories are reported as core.DefaultCategory. The
// result is never nil.
func SpendingByCategory(txs []core.Transaction) []core.CategorySummary {
	out := []core.CategorySummary{}
	index := map[string]int{}
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = core.DefaultCategory
		}
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, core.CategorySummary{Category: cat, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(t.AbsAmount())
		out[i].Count++
	}
	return out
}

type dayTotals struct {
	income, expense decimal.Decimal
}

// DailyBalances produces one bucket per day of r with the day's income,
// expense and the running balance seeded at zero. Only transactions whose day
// key matches a bucket are counted, so txs should be the set already filtered
// to r.
func DailyBalances(txs []core.Transaction, r core.DateRange) []core.DailyBalance {
	n := r.Days()
	byDay := make(map[string]*dayTotals, n)
	for i := 0; i < n; i++ {
		byDay[r.Start.AddDays(i).Key()] = &dayTotals{income: decimal.Zero, expense: decimal.Zero}
	}
	for _, t := range txs {
		b, ok := byDay[t.Date.Key()]
		if !ok {
			continue
		}
		if t.IsIncome() {
			b.income = b.income.Add(t.Amount)
		} else {
			b.expense = b.expense.Add(t.AbsAmount())
		}
	}

	out := make([]core.DailyBalance, 0, n)
	running := decimal.Zero
	for i := 0; i < n; i++ {
		day := r.Start.AddDays(i)
		b := byDay[day.Key()]
		running = running.Add(b.income).Sub(b.expense)
		out = append(out, core.DailyBalance{
			Date:    day,
			Balance: running,
			Income:  b.income,
			Expense: b.expense,
		})
	}
	return out
}
