package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"findash/internal/core"
)

// EventKind says which mutation produced a TransactionEvent.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
)

// TransactionEvent carries the full transaction as stored after a mutation,
// so consumers never have to read back from the ledger.
type TransactionEvent struct {
	Kind        EventKind        `json:"kind"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

func NewTransactionEvent(kind EventKind, t core.Transaction) *TransactionEvent {
	return &TransactionEvent{Kind: kind, Transaction: t, Timestamp: time.Now().UTC()}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes and validates an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case EventCreated, EventUpdated:
	default:
		return nil, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	if err := msg.Transaction.Validate(); err != nil {
		return nil, fmt.Errorf("event transaction: %w", err)
	}
	return &msg, nil
}
