package memory

import (
	"context"
	"fmt"
	"sync"

	"findash/internal/core"
	"findash/internal/sheets"
)

// Exporter keeps exported rows in memory, keyed by transaction id in first
// write order. It backs the worker when no spreadsheet is configured.
type Exporter struct {
	mu    sync.Mutex
	order []string
	rows  map[string][]any
}

var _ sheets.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{rows: map[string][]any{}}
}

func (e *Exporter) Upsert(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rows[t.ID]; !ok {
		e.order = append(e.order, t.ID)
	}
	e.rows[t.ID] = sheets.Row(t)
	return fmt.Sprintf("mem:%d", indexOf(e.order, t.ID)+2), nil
}

func (e *Exporter) ReplaceAll(_ context.Context, txs []core.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.order = e.order[:0]
	e.rows = make(map[string][]any, len(txs))
	for _, t := range txs {
		if _, ok := e.rows[t.ID]; !ok {
			e.order = append(e.order, t.ID)
		}
		e.rows[t.ID] = sheets.Row(t)
	}
	return nil
}

// Rows returns the exported rows in sheet order.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]any, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, append([]any(nil), e.rows[id]...))
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
