package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"findash/internal/core"
	"findash/internal/log"
)

// Amount and date are read back as text so they go through the same parsing
// as every other ingestion path.
const postgresSelect = `SELECT id, description, amount::text, type, category, date::text, notes, created_at FROM transactions`

// PostgresRepository is a ledger.Store backed by a pgx connection pool.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgresRepository(ctx context.Context, databaseURL string, logger *log.Logger) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(databaseURL); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresRepository{pool: pool, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanPostgres(row rowScanner) (core.Transaction, error) {
	var rec record
	if err := row.Scan(&rec.ID, &rec.Description, &rec.Amount, &rec.Type, &rec.Category, &rec.Date, &rec.Notes, &rec.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	return rec.toTransaction()
}

func (r *PostgresRepository) Snapshot(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx, postgresSelect+` ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanPostgres(rows)
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

func (r *PostgresRepository) Insert(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transactions (id, description, amount, type, category, date, notes, created_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6::date, $7, $8)`,
		t.ID, t.Description, t.Amount.String(), string(t.Type), t.Category, t.Date.Key(), t.Notes, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	r.logger.DebugContext(ctx, "Transaction stored", log.FieldTransactionID, t.ID, log.FieldBackend, "postgres")
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, u core.TransactionUpdate) (core.Transaction, error) {
	if err := u.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanPostgres(tx.QueryRow(ctx, postgresSelect+` WHERE id = $1 FOR UPDATE`, u.ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, u.ID)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}

	updated := u.Apply(current)
	if _, err := tx.Exec(ctx, `UPDATE transactions SET category = $1, notes = $2 WHERE id = $3`,
		updated.Category, updated.Notes, updated.ID); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return core.Transaction{}, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}
