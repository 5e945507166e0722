package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-03-05", "2025-03-05", true},
		{"2025-03-05T23:59:59Z", "2025-03-05", true},
		{"2025-03-05T00:30:00+02:00", "2025-03-05", true},
		{" 2024-02-29 ", "2024-02-29", true},
		{"2025-02-30", "", false},
		{"2025-3-5", "", false},
		{"", "", false},
		{"yesterday", "", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || d.Key() != tc.want {
				t.Fatalf("%q: expected %s, got %s (err=%v)", tc.in, tc.want, d.Key(), err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateRangeDaysAndContains(t *testing.T) {
	r, err := NewDateRange(NewDate(2025, 2, 23), NewDate(2025, 3, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Days() != 7 {
		t.Fatalf("expected 7 days, got %d", r.Days())
	}
	for _, d := range []Date{NewDate(2025, 2, 23), NewDate(2025, 2, 28), NewDate(2025, 3, 1)} {
		if !r.Contains(d) {
			t.Fatalf("expected %s in %s", d, r)
		}
	}
	for _, d := range []Date{NewDate(2025, 2, 22), NewDate(2025, 3, 2)} {
		if r.Contains(d) {
			t.Fatalf("expected %s outside %s", d, r)
		}
	}
	if _, err := NewDateRange(NewDate(2025, 3, 2), NewDate(2025, 3, 1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestDateOfIgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2025, 3, 15, 23, 59, 0, 0, time.Local)
	if got := DateOf(late); got != NewDate(2025, 3, 15) {
		t.Fatalf("expected 2025-03-15, got %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	var tx Transaction
	in := `{"id":"a","description":"x","amount":"-12.5","type":"expense","category":"Food","date":"2025-03-10T08:00:00Z"}`
	if err := json.Unmarshal([]byte(in), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tx.Date.Key() != "2025-03-10" || !tx.Amount.Equal(decimal.RequireFromString("-12.5")) {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	out, err := json.Marshal(tx.Date)
	if err != nil || string(out) != `"2025-03-10"` {
		t.Fatalf("marshal date: %s err=%v", out, err)
	}
	if err := json.Unmarshal([]byte(`{"date":"03/10/2025"}`), &tx); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestNewTransactionValidateAndSign(t *testing.T) {
	good := NewTransaction{
		Description: "Groceries",
		Amount:      decimal.NewFromInt(200),
		Type:        Expense,
		Category:    "Food & Dining",
		Date:        NewDate(2025, 3, 10),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !good.SignedAmount().Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("expense should be stored negative, got %s", good.SignedAmount())
	}
	income := good
	income.Type = Income
	income.Amount = decimal.NewFromInt(-1000)
	if !income.SignedAmount().Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("income should be stored positive, got %s", income.SignedAmount())
	}

	bads := []struct {
		tx  NewTransaction
		err error
	}{
		{NewTransaction{Description: "a", Amount: decimal.NewFromInt(1), Type: Expense, Category: "c"}, ErrInvalidDate},
		{NewTransaction{Date: NewDate(2025, 1, 1), Description: " ", Amount: decimal.NewFromInt(1), Type: Expense, Category: "c"}, ErrEmptyDescription},
		{NewTransaction{Date: NewDate(2025, 1, 1), Description: "a", Type: Expense, Category: "c"}, ErrInvalidAmount},
		{NewTransaction{Date: NewDate(2025, 1, 1), Description: "a", Amount: decimal.NewFromInt(1), Type: "transfer"}, ErrInvalidType},
		{NewTransaction{Date: NewDate(2025, 1, 1), Description: "a", Amount: decimal.NewFromInt(1), Type: Expense}, ErrEmptyCategory},
		{NewTransaction{Date: NewDate(2025, 1, 1), Description: strings.Repeat("x", MaxDescriptionLength+1), Amount: decimal.NewFromInt(1), Type: Income}, ErrDescriptionLong},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("case %d expected %v, got %v", i, tc.err, err)
		}
	}

	for _, desc := range []string{
		strings.Repeat("é", MaxDescriptionLength),
		strings.Repeat("日", 150),
		strings.Repeat("€", MaxDescriptionLength-1) + "x",
	} {
		n := NewTransaction{Date: NewDate(2025, 1, 1), Description: desc, Amount: decimal.NewFromInt(1), Type: Income}
		if err := n.Validate(); err != nil {
			t.Fatalf("%d-character description rejected: %v", len([]rune(desc)), err)
		}
	}
	long := NewTransaction{Date: NewDate(2025, 1, 1), Description: strings.Repeat("é", MaxDescriptionLength+1), Amount: decimal.NewFromInt(1), Type: Income}
	if err := long.Validate(); !errors.Is(err, ErrDescriptionLong) {
		t.Fatalf("expected ErrDescriptionLong, got %v", err)
	}
}

func TestTransactionUpdateApply(t *testing.T) {
	tx := Transaction{ID: "1", Category: "Shopping", Notes: "old"}
	cat := "Entertainment"
	got := TransactionUpdate{ID: "1", Category: &cat}.Apply(tx)
	if got.Category != "Entertainment" || got.Notes != "old" {
		t.Fatalf("unexpected apply result: %+v", got)
	}
	if tx.Category != "Shopping" {
		t.Fatalf("apply must not mutate its input")
	}
	if err := (TransactionUpdate{}).Validate(); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
}
