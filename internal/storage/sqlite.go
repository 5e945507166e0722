package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"findash/internal/core"
	"findash/internal/log"

	_ "modernc.org/sqlite"
)

// createdAtLayout is fixed width so created_at text sorts chronologically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository is a ledger.Store backed by a local SQLite file.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SQLiteRepository{db: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanSQLite(row rowScanner) (core.Transaction, error) {
	var rec record
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.Description, &rec.Amount, &rec.Type, &rec.Category, &rec.Date, &rec.Notes, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %s: parse created_at: %w", rec.ID, err)
	}
	rec.CreatedAt = ts
	return rec.toTransaction()
}

// Snapshot implements ledger.Reader.
func (r *SQLiteRepository) Snapshot(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Insert implements ledger.Writer.
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Amount.String(), string(t.Type), t.Category, t.Date.Key(), t.Notes,
		t.CreatedAt.UTC().Format(createdAtLayout))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	r.logger.DebugContext(ctx, "Transaction stored", log.FieldTransactionID, t.ID, log.FieldBackend, "sqlite")
	return nil
}

// Update implements ledger.Writer. Only category and notes change.
func (r *SQLiteRepository) Update(ctx context.Context, u core.TransactionUpdate) (core.Transaction, error) {
	if err := u.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	current, err := scanSQLite(tx.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE id = ?`, u.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, u.ID)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}

	updated := u.Apply(current)
	if _, err := tx.ExecContext(ctx,
		`UPDATE transactions SET category = ?, notes = ? WHERE id = ?`,
		updated.Category, updated.Notes, updated.ID); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}
