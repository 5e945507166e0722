// Package ledger defines the ports between the query engine and whatever
// holds the transaction collection.
package ledger

import (
	"context"

	"findash/internal/core"
)

type (
	// Reader exposes a consistent snapshot of every stored transaction. Callers
	// may keep the returned slice; implementations never mutate it afterwards.
	Reader interface {
		Snapshot(ctx context.Context) ([]core.Transaction, error)
	}

	// Writer is the mutation boundary. Update returns core.ErrNotFound when the
	// id is unknown.
	Writer interface {
		Insert(ctx context.Context, t core.Transaction) error
		Update(ctx context.Context, u core.TransactionUpdate) (core.Transaction, error)
	}

	Store interface {
		Reader
		Writer
	}
)
