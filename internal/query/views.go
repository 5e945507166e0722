package query

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"findash/internal/aggregate"
	"findash/internal/core"
)

type (
	// Dashboard bundles the four views for one period, all derived from the
	// same snapshot.
	Dashboard struct {
		Range        core.DateRange         `json:"range"`
		Overview     core.OverviewMetrics   `json:"overview"`
		Categories   []core.CategorySummary `json:"categories"`
		Balances     []core.DailyBalance    `json:"balances"`
		Transactions []core.Transaction     `json:"transactions"`
	}

	// Comparison is the overview of a period against the same period one month
	// earlier.
	Comparison struct {
		Range         core.DateRange       `json:"range"`
		PreviousRange core.DateRange       `json:"previousRange"`
		Current       core.OverviewMetrics `json:"current"`
		Previous      core.OverviewMetrics `json:"previous"`
		IncomeDelta   decimal.Decimal      `json:"incomeDelta"`
		ExpenseDelta  decimal.Decimal      `json:"expenseDelta"`
		NetDelta      decimal.Decimal      `json:"netDelta"`
	}

	// Insight names the category whose spending grew the most relative to the
	// previous month. Found is false when no category grew.
	Insight struct {
		Found    bool            `json:"found"`
		Category string          `json:"category,omitempty"`
		Percent  int             `json:"percent,omitempty"`
		Diff     decimal.Decimal `json:"diff"`
	}
)

// Dashboard computes every view from a single snapshot, fanning the
// independent aggregations out over an errgroup.
func (e *Engine) Dashboard(ctx context.Context, p Params) (Dashboard, error) {
	s, err := e.load(ctx, p)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{Range: s.Range}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Overview = aggregate.Overview(s.Txs)
		return nil
	})
	g.Go(func() error {
		d.Categories = aggregate.SpendingByCategory(s.Txs)
		return nil
	})
	g.Go(func() error {
		d.Balances = aggregate.DailyBalances(s.Txs, s.Range)
		return nil
	})
	g.Go(func() error {
		d.Transactions = aggregate.FilterByCategory(s.Txs, p.Category)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// pair resolves p and its previous month against one snapshot and one
// reading of the clock, which it returns.
func (e *Engine) pair(ctx context.Context, p Params) (cur, prev scope, today core.Date, err error) {
	txs, err := e.snapshot(ctx)
	if err != nil {
		return scope{}, scope{}, core.Date{}, err
	}
	today = e.Today()
	if cur, err = e.scopeOf(txs, p, today); err != nil {
		return scope{}, scope{}, core.Date{}, err
	}
	if prev, err = e.scopeOf(txs, p.Previous(), today); err != nil {
		return scope{}, scope{}, core.Date{}, err
	}
	return cur, prev, today, nil
}

func (e *Engine) Comparison(ctx context.Context, p Params) (Comparison, error) {
	cur, prev, _, err := e.pair(ctx, p)
	if err != nil {
		return Comparison{}, err
	}
	c := aggregate.Overview(cur.Txs)
	pr := aggregate.Overview(prev.Txs)
	return Comparison{
		Range:         cur.Range,
		PreviousRange: prev.Range,
		Current:       c,
		Previous:      pr,
		IncomeDelta:   c.TotalIncome.Sub(pr.TotalIncome),
		ExpenseDelta:  c.TotalExpense.Sub(pr.TotalExpense),
		NetDelta:      c.NetAmount.Sub(pr.NetAmount),
	}, nil
}

// Insight finds the category with the largest positive rounded percentage
// increase over the previous month. Categories without previous spending are
// skipped; ties keep the first category in current order.
func (e *Engine) Insight(ctx context.Context, p Params) (Insight, error) {
	cur, prev, _, err := e.pair(ctx, p)
	if err != nil {
		return Insight{}, err
	}
	before := map[string]decimal.Decimal{}
	for _, c := range aggregate.SpendingByCategory(prev.Txs) {
		before[c.Category] = c.Total
	}
	best := Insight{Diff: decimal.Zero}
	for _, c := range aggregate.SpendingByCategory(cur.Txs) {
		prevTotal, ok := before[c.Category]
		if !ok || !prevTotal.IsPositive() {
			continue
		}
		diff := c.Total.Sub(prevTotal)
		pct := roundPercent(percentOf(diff, prevTotal))
		if pct > 0 && (!best.Found || pct > best.Percent) {
			best = Insight{Found: true, Category: c.Category, Percent: pct, Diff: diff}
		}
	}
	return best, nil
}
