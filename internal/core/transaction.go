package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	// DefaultCategory replaces an empty category during category aggregation.
	DefaultCategory = "Other"
	// IncomeCategory is reserved for income transactions.
	IncomeCategory = "Income"

	MaxDescriptionLength = 200
)

type (
	TransactionType string

	// Transaction is immutable after creation except for Category and Notes,
	// which only the mutation boundary may change.
	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"` // negative for expenses, positive for income
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
		Notes       string          `json:"notes,omitempty"`
	}

	// NewTransaction is the input of the add-transaction mutation.
	NewTransaction struct {
		Description string
		Amount      decimal.Decimal
		Type        TransactionType
		Category    string
		Date        Date
	}

	// TransactionUpdate changes category and/or notes. Nil fields are left untouched.
	TransactionUpdate struct {
		ID       string
		Category *string
		Notes    *string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyDescription = errors.New("empty description")
	ErrDescriptionLong  = errors.New("description too long")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyID          = errors.New("empty transaction id")
	ErrNotFound         = errors.New("transaction not found")
)

// ParseTransactionType accepts "income" or "expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
	}
}

// AbsAmount is the unsigned magnitude used for expense totals.
func (t Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// IsExpense reports whether the transaction counts toward expense totals.
func (t Transaction) IsExpense() bool {
	return t.Type == Expense
}

// IsIncome reports whether the transaction counts toward income totals.
func (t Transaction) IsIncome() bool {
	return t.Type == Income
}

// Validate checks a stored record at ingestion time.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (n NewTransaction) Validate() error {
	if err := n.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(n.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(n.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w (max %d characters)", ErrDescriptionLong, MaxDescriptionLength)
	}
	if n.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if err := n.Type.Validate(); err != nil {
		return err
	}
	if n.Type == Expense && strings.TrimSpace(n.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// SignedAmount applies the storage sign convention: expenses negative, income positive.
func (n NewTransaction) SignedAmount() decimal.Decimal {
	if n.Type == Expense {
		return n.Amount.Abs().Neg()
	}
	return n.Amount.Abs()
}

func (u TransactionUpdate) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrEmptyID
	}
	return nil
}

// Apply returns a copy of t with the update's non-nil fields set.
func (u TransactionUpdate) Apply(t Transaction) Transaction {
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	return t
}
