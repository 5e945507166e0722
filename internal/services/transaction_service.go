package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"findash/internal/amqp"
	"findash/internal/core"
	"findash/internal/ledger"
	"findash/internal/log"
)

// EventPublisher is the outbound side of the mutation boundary.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// TransactionService is the mutation boundary: it is the only writer of the
// ledger. Events are published after the write succeeds; a publish failure is
// logged and never fails the mutation.
type TransactionService struct {
	store     ledger.Writer
	publisher EventPublisher
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
}

// NewTransactionService wires the service. publisher may be nil when no broker
// is configured.
func NewTransactionService(store ledger.Writer, publisher EventPublisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentTransaction),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Add validates the input, assigns id and creation time, normalizes the
// amount's sign by type and stores the result.
func (s *TransactionService) Add(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Type == core.Income && in.Category == "" {
		in.Category = core.IncomeCategory
	}
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:          s.newID(),
		Description: in.Description,
		Amount:      in.SignedAmount(),
		Type:        in.Type,
		Category:    in.Category,
		Date:        in.Date,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	log.NewStructuredLogger(s.logger).LogTransactionCreated(ctx, t.ID, string(t.Type), t.Amount.String(), t.Category)
	s.publish(ctx, amqp.EventCreated, t)
	return t, nil
}

// Update changes category and/or notes. Unknown ids yield core.ErrNotFound.
func (s *TransactionService) Update(ctx context.Context, u core.TransactionUpdate) (core.Transaction, error) {
	if u.Category != nil {
		c := strings.TrimSpace(*u.Category)
		if c == "" {
			return core.Transaction{}, core.ErrEmptyCategory
		}
		u.Category = &c
	}
	t, err := s.store.Update(ctx, u)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction updated", log.FieldTransactionID, t.ID, log.FieldCategory, t.Category)
	s.publish(ctx, amqp.EventUpdated, t)
	return t, nil
}

func (s *TransactionService) publish(ctx context.Context, kind amqp.EventKind, t core.Transaction) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping event", log.FieldTransactionID, t.ID)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(kind, t)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldTransactionID, t.ID,
			log.FieldError, err)
	}
}
