package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"findash/internal/core"
)

// ErrDuplicateID rejects a transaction whose id is already in the collection.
var ErrDuplicateID = errors.New("duplicate transaction id")

// Store keeps transactions in process memory, most recent date first.
type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
}

func New(txs ...core.Transaction) *Store {
	s := &Store{items: append([]core.Transaction(nil), txs...)}
	s.sortLocked()
	return s
}

// NewFromFile seeds the store from a JSON array of transactions. A missing
// file yields an empty store; malformed records and repeated ids are rejected.
func NewFromFile(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var txs []core.Transaction
	if err := json.Unmarshal(b, &txs); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	seen := make(map[string]int, len(txs))
	for i, t := range txs {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
		if first, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("seed record %d: %w %q (first at record %d)", i, ErrDuplicateID, t.ID, first)
		}
		seen[t.ID] = i
	}
	return New(txs...), nil
}

// Snapshot returns a copy of the collection.
func (s *Store) Snapshot(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), nil
}

func (s *Store) Insert(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ID == t.ID {
			return fmt.Errorf("%w %q", ErrDuplicateID, t.ID)
		}
	}
	s.items = append(s.items, t)
	s.sortLocked()
	return nil
}

func (s *Store) Update(_ context.Context, u core.TransactionUpdate) (core.Transaction, error) {
	if err := u.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == u.ID {
			s.items[i] = u.Apply(t)
			return s.items[i], nil
		}
	}
	return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, u.ID)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) sortLocked() {
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].Date.After(s.items[j].Date.Time)
	})
}
