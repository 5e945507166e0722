package core

import "github.com/shopspring/decimal"

// OverviewMetrics summarizes a filtered transaction set.
type OverviewMetrics struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	TransactionCount int             `json:"transactionCount"`
}

// CategorySummary is the expense total and count for one category.
type CategorySummary struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// DailyBalance is one day bucket of a cumulative balance series.
type DailyBalance struct {
	Date    Date            `json:"date"`
	Balance decimal.Decimal `json:"balance"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Net is the day's income minus expense.
func (b DailyBalance) Net() decimal.Decimal {
	return b.Income.Sub(b.Expense)
}
