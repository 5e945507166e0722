package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shopspring/decimal"

	"findash/internal/core"
	"findash/internal/log"
)

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "findash.db"), log.Discard())
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func fixture(id string, day int, typ core.TransactionType, amount string) core.Transaction {
	cat := "Shopping"
	if typ == core.Income {
		cat = core.IncomeCategory
	}
	return core.Transaction{
		ID:          id,
		Description: "fixture " + id,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    cat,
		Date:        core.NewDate(2025, 3, day),
		CreatedAt:   time.Date(2025, 3, day, 10, 30, 0, 0, time.UTC),
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	for _, tx := range []core.Transaction{
		fixture("a", 1, core.Income, "2500.00"),
		fixture("b", 12, core.Expense, "-19.99"),
		fixture("c", 7, core.Expense, "-0.01"),
	} {
		if err := repo.Insert(ctx, tx); err != nil {
			t.Fatalf("Insert(%s): %v", tx.ID, err)
		}
	}

	got, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(got) != 3 || got[0].ID != "b" || got[1].ID != "c" || got[2].ID != "a" {
		t.Fatalf("expected descending date order, got %+v", got)
	}
	if !got[0].Amount.Equal(decimal.RequireFromString("-19.99")) {
		t.Fatalf("amount not preserved exactly: %s", got[0].Amount)
	}
	if got[2].Date != core.NewDate(2025, 3, 1) || !got[2].CreatedAt.Equal(time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("dates not preserved: %+v", got[2])
	}

	if err := repo.Insert(ctx, fixture("a", 2, core.Income, "1")); err == nil {
		t.Fatal("expected primary key violation")
	}
}

func TestSQLiteSameDayOrderFollowsCreatedAt(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	whole := fixture("whole", 4, core.Expense, "-1")
	whole.CreatedAt = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	half := fixture("half", 4, core.Expense, "-2")
	half.CreatedAt = whole.CreatedAt.Add(500 * time.Millisecond)
	later := fixture("later", 4, core.Expense, "-3")
	later.CreatedAt = whole.CreatedAt.Add(time.Second + 120*time.Millisecond)

	for _, tx := range []core.Transaction{later, whole, half} {
		if err := repo.Insert(ctx, tx); err != nil {
			t.Fatalf("Insert(%s): %v", tx.ID, err)
		}
	}
	got, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	var ids []string
	for _, tx := range got {
		ids = append(ids, tx.ID)
	}
	if len(ids) != 3 || ids[0] != "later" || ids[1] != "half" || ids[2] != "whole" {
		t.Fatalf("expected newest first, got %v", ids)
	}
	if !got[1].CreatedAt.Equal(half.CreatedAt) {
		t.Errorf("created_at = %s, want %s", got[1].CreatedAt, half.CreatedAt)
	}
}

func TestSQLiteUpdate(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()
	if err := repo.Insert(ctx, fixture("a", 3, core.Expense, "-40")); err != nil {
		t.Fatal(err)
	}

	notes := "split with flatmate"
	got, err := repo.Update(ctx, core.TransactionUpdate{ID: "a", Notes: &notes})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Notes != notes || got.Category != "Shopping" {
		t.Fatalf("unexpected update result %+v", got)
	}
	snap, _ := repo.Snapshot(ctx)
	if snap[0].Notes != notes {
		t.Fatalf("update not persisted: %+v", snap[0])
	}

	cat := "Food & Dining"
	if _, err := repo.Update(ctx, core.TransactionUpdate{ID: "gone", Category: &cat}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRejectsMalformedRows(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO transactions (`+selectColumns+`) VALUES ('x', 'bad', '-5', 'expense', 'A', '05/03/2025', '', ?)`,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Snapshot(ctx); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, dir := range []string{"migrations/sqlite", "migrations/postgres"} {
		src, err := iofs.New(migrationsFS, dir)
		if err != nil {
			t.Fatalf("%s: %v", dir, err)
		}
		first, err := src.First()
		if err != nil || first != 1 {
			t.Errorf("%s: first version = %d, err = %v", dir, first, err)
		}
		if _, _, err := src.ReadUp(first); err != nil {
			t.Errorf("%s: missing up migration: %v", dir, err)
		}
		if _, _, err := src.ReadDown(first); err != nil {
			t.Errorf("%s: missing down migration: %v", dir, err)
		}
		src.Close()
	}
}
