package backend

import (
	"context"

	"findash/internal/ledger"
	"findash/internal/services"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Pinger reports whether a backend's dependencies are reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendResult is a ready ledger plus the optional event publisher wired to it.
type BackendResult struct {
	Store     ledger.Store
	Publisher services.EventPublisher
	Pinger    Pinger
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory specific
	SeedFile string

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string

	// Optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
