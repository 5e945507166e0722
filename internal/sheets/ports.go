// Package sheets defines the spreadsheet export port used by the worker.
package sheets

import (
	"context"
	"strings"

	"findash/internal/core"
)

// Exporter mirrors ledger transactions into a spreadsheet-like sink.
type Exporter interface {
	// Upsert writes t to the row holding its id, appending a row when the id
	// is new. It returns a reference to the written row.
	Upsert(ctx context.Context, t core.Transaction) (ref string, err error)
	// ReplaceAll rewrites the whole export from a ledger snapshot.
	ReplaceAll(ctx context.Context, txs []core.Transaction) error
}

// Header is the column layout of an exported transaction row.
var Header = []string{"ID", "Date", "Description", "Type", "Category", "Amount", "Notes", "Created At"}

// Row renders t in Header order. Amounts use a plain decimal string so the
// sheet parses them as numbers; free-text cells go through Text.
func Row(t core.Transaction) []any {
	created := ""
	if !t.CreatedAt.IsZero() {
		created = t.CreatedAt.UTC().Format("2006-01-02 15:04:05")
	}
	return []any{
		Text(t.ID),
		t.Date.Key(),
		Text(t.Description),
		string(t.Type),
		Text(t.Category),
		t.Amount.StringFixed(2),
		Text(t.Notes),
		created,
	}
}

// Text keeps a user-supplied value literal when the sheet parses input as if
// typed: a leading quote stops values starting with a formula trigger from
// being evaluated.
func Text(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
