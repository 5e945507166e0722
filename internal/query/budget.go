package query

import (
	"context"

	"github.com/shopspring/decimal"

	"findash/internal/aggregate"
	"findash/internal/core"
)

// CategoryBudget is a monthly spending allowance for one expense category.
type CategoryBudget struct {
	Category string
	Limit    decimal.Decimal
}

// Budgets holds the overall monthly budget and the per-category allowances,
// in display order.
type Budgets struct {
	Monthly    decimal.Decimal
	Categories []CategoryBudget
}

func DefaultBudgets() Budgets {
	return Budgets{
		Monthly: decimal.NewFromInt(1500),
		Categories: []CategoryBudget{
			{"Food & Dining", decimal.NewFromInt(400)},
			{"Transportation", decimal.NewFromInt(250)},
			{"Shopping", decimal.NewFromInt(300)},
			{"Entertainment", decimal.NewFromInt(150)},
			{"Bills & Utilities", decimal.NewFromInt(800)},
			{"Healthcare", decimal.NewFromInt(200)},
			{core.DefaultCategory, decimal.NewFromInt(200)},
		},
	}
}

type (
	// BudgetPace compares period spending with the monthly budget. Projected
	// is only set for month queries.
	BudgetPace struct {
		Spent       decimal.Decimal  `json:"spent"`
		Budget      decimal.Decimal  `json:"budget"`
		PercentUsed int              `json:"percentUsed"`
		Projected   *decimal.Decimal `json:"projected,omitempty"`
		DaysInMonth int              `json:"daysInMonth"`
		DaysElapsed int              `json:"daysElapsed"`
		Categories  []CategoryPace   `json:"categories"`
	}

	// CategoryPace is one category's spending against its allowance. Trend is
	// the rounded percent change against the previous month, nil when the
	// previous month had no spending in the category.
	CategoryPace struct {
		Category    string          `json:"category"`
		Spent       decimal.Decimal `json:"spent"`
		Budget      decimal.Decimal `json:"budget"`
		PercentUsed int             `json:"percentUsed"`
		OverBudget  bool            `json:"overBudget"`
		Trend       *int            `json:"trend"`
	}
)

// BudgetPace measures spending in the period against the budgets. For month
// queries it also projects the month-end total from the daily rate so far.
func (e *Engine) BudgetPace(ctx context.Context, p Params) (BudgetPace, error) {
	cur, prev, today, err := e.pair(ctx, p)
	if err != nil {
		return BudgetPace{}, err
	}
	spent := aggregate.TotalExpense(cur.Txs)

	daysInMonth := core.NewDate(p.Year, p.Month+1, 1).DaysInMonth()
	daysElapsed := daysInMonth
	if today.Year() == p.Year && today.Month() == p.CalendarMonth() {
		daysElapsed = today.Day()
	}

	out := BudgetPace{
		Spent:       spent,
		Budget:      e.budgets.Monthly,
		PercentUsed: roundPercent(percentOf(spent, e.budgets.Monthly)),
		DaysInMonth: daysInMonth,
		DaysElapsed: daysElapsed,
		Categories:  make([]CategoryPace, 0, len(e.budgets.Categories)),
	}
	if p.Period.IsMonthShortcut() {
		projected := spent.Div(decimal.NewFromInt(int64(daysElapsed))).
			Mul(decimal.NewFromInt(int64(daysInMonth))).
			Add(decimal.NewFromFloat(0.5)).Floor()
		out.Projected = &projected
	}

	now := totalsByCategory(cur.Txs)
	before := totalsByCategory(prev.Txs)
	for _, b := range e.budgets.Categories {
		s := now[b.Category]
		cp := CategoryPace{Category: b.Category, Spent: s, Budget: b.Limit}
		cp.PercentUsed = roundPercent(percentOf(s, b.Limit))
		cp.OverBudget = b.Limit.IsPositive() && s.GreaterThan(b.Limit)
		if pv := before[b.Category]; pv.IsPositive() {
			trend := roundPercent(percentOf(s.Sub(pv), pv))
			cp.Trend = &trend
		}
		out.Categories = append(out.Categories, cp)
	}
	return out, nil
}

func totalsByCategory(txs []core.Transaction) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, c := range aggregate.SpendingByCategory(txs) {
		out[c.Category] = c.Total
	}
	return out
}
