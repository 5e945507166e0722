// Package query is the read facade of the dashboard. It takes one snapshot of
// the ledger per call, resolves the requested period and runs the pure
// aggregators over the filtered set.
package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"findash/internal/aggregate"
	"findash/internal/core"
	"findash/internal/ledger"
	"findash/internal/log"
	"findash/internal/period"
)

// Engine answers period-aware queries over a ledger snapshot. It holds no
// derived state; every call recomputes from the current snapshot.
type Engine struct {
	source  ledger.Reader
	clock   period.Clock
	logger  *log.Logger
	budgets Budgets
}

type Option func(*Engine)

func WithClock(c period.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l.WithComponent(log.ComponentQuery) }
}

// WithBudgets overrides the monthly and per-category budgets used by BudgetPace.
func WithBudgets(b Budgets) Option {
	return func(e *Engine) { e.budgets = b }
}

func NewEngine(source ledger.Reader, opts ...Option) *Engine {
	e := &Engine{
		source:  source,
		clock:   period.SystemClock,
		logger:  log.Discard(),
		budgets: DefaultBudgets(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// scope is a filtered set together with the range it was filtered by.
type scope struct {
	Range core.DateRange
	Txs   []core.Transaction
}

// Today is the engine's notion of the current calendar day.
func (e *Engine) Today() core.Date {
	return period.Today(e.clock)
}

func (e *Engine) snapshot(ctx context.Context) ([]core.Transaction, error) {
	txs, err := e.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger snapshot: %w", err)
	}
	return txs, nil
}

// scopeOf dispatches between the month shortcut and the generic period path.
// Both paths are kept: the month shortcut filters through FilterByMonth, every
// other kind resolves a range and filters by it.
func (e *Engine) scopeOf(txs []core.Transaction, p Params, today core.Date) (scope, error) {
	if err := p.Validate(); err != nil {
		return scope{}, err
	}
	if p.Period.IsMonthShortcut() {
		r, err := aggregate.MonthRange(p.Year, p.CalendarMonth(), today)
		if err != nil {
			return scope{}, err
		}
		set, err := aggregate.FilterByMonth(txs, p.Year, p.CalendarMonth(), today)
		if err != nil {
			return scope{}, err
		}
		return scope{Range: r, Txs: set}, nil
	}
	r, err := period.Resolve(p.Year, p.CalendarMonth(), p.Period, today)
	if err != nil {
		return scope{}, err
	}
	return scope{Range: r, Txs: aggregate.FilterByDateRange(txs, r)}, nil
}

func (e *Engine) load(ctx context.Context, p Params) (scope, error) {
	txs, err := e.snapshot(ctx)
	if err != nil {
		return scope{}, err
	}
	s, err := e.scopeOf(txs, p, e.Today())
	if err != nil {
		return scope{}, err
	}
	e.logger.DebugContext(ctx, "Resolved query scope",
		log.FieldYear, p.Year,
		log.FieldMonth, p.Month,
		log.FieldPeriod, p.Period.String(),
		log.FieldRange, s.Range.String(),
		log.FieldCount, len(s.Txs))
	return s, nil
}

// Range returns the resolved, capped range for p.
func (e *Engine) Range(p Params) (core.DateRange, error) {
	s, err := e.scopeOf(nil, p, e.Today())
	return s.Range, err
}

func (e *Engine) Overview(ctx context.Context, p Params) (core.OverviewMetrics, error) {
	s, err := e.load(ctx, p)
	if err != nil {
		return core.OverviewMetrics{}, err
	}
	return aggregate.Overview(s.Txs), nil
}

func (e *Engine) SpendingByCategory(ctx context.Context, p Params) ([]core.CategorySummary, error) {
	s, err := e.load(ctx, p)
	if err != nil {
		return nil, err
	}
	return aggregate.SpendingByCategory(s.Txs), nil
}

func (e *Engine) DailyBalances(ctx context.Context, p Params) ([]core.DailyBalance, error) {
	s, err := e.load(ctx, p)
	if err != nil {
		return nil, err
	}
	return aggregate.DailyBalances(s.Txs, s.Range), nil
}

// Transactions lists the filtered set in ledger order, optionally narrowed to
// p.Category.
func (e *Engine) Transactions(ctx context.Context, p Params) ([]core.Transaction, error) {
	s, err := e.load(ctx, p)
	if err != nil {
		return nil, err
	}
	return aggregate.FilterByCategory(s.Txs, p.Category), nil
}

// Query dispatches to one of the four views by kind.
func (e *Engine) Query(ctx context.Context, kind Kind, p Params) (any, error) {
	switch kind {
	case KindOverview:
		return e.Overview(ctx, p)
	case KindCategories:
		return e.SpendingByCategory(ctx, p)
	case KindBalances:
		return e.DailyBalances(ctx, p)
	case KindTransactions:
		return e.Transactions(ctx, p)
	default:
		return nil, fmt.Errorf("unknown query kind %q", string(kind))
	}
}

// Recent returns every transaction, most recent date first, truncated to
// limit when limit is positive.
func (e *Engine) Recent(ctx context.Context, limit int) ([]core.Transaction, error) {
	txs, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]core.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// roundPercent rounds half up, matching how the dashboard displays percents.
func roundPercent(d decimal.Decimal) int {
	return int(d.Add(decimal.NewFromFloat(0.5)).Floor().IntPart())
}

// percentOf returns part/whole*100; zero when whole is not positive.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}
