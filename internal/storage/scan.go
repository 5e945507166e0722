// Package storage holds the durable ledger repositories. Both the SQLite and
// the Postgres repository satisfy ledger.Store and validate every row they
// read, so malformed records fail the snapshot instead of reaching the
// aggregators.
package storage

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"findash/internal/core"
)

// rowScanner is satisfied by *sql.Row, *sql.Rows, pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const selectColumns = `id, description, amount, type, category, date, notes, created_at`

// record is the textual row shape shared by both backends.
type record struct {
	ID, Description, Amount, Type, Category, Date, Notes string
	CreatedAt                                            time.Time
}

func (r record) toTransaction() (core.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %s: %w: %q", r.ID, core.ErrInvalidAmount, r.Amount)
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %s: %w", r.ID, err)
	}
	t := core.Transaction{
		ID:          r.ID,
		Description: r.Description,
		Amount:      amount,
		Type:        core.TransactionType(r.Type),
		Category:    r.Category,
		Date:        date,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("row %s: %w", r.ID, err)
	}
	return t, nil
}
