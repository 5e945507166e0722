package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"findash/internal/core"
)

func TestParseQueryParams(t *testing.T) {
	today := core.NewDate(2025, 3, 15)
	tests := []struct {
		name    string
		query   string
		want    string // year/month/period
		wantErr error
	}{
		{"defaults", "", "2025/2/", nil},
		{"explicit", "year=2024&month=11", "2024/11/", nil},
		{"january is zero", "year=2025&month=0", "2025/0/", nil},
		{"period upper case", "period=WEEK", "2025/2/week", nil},
		{"period mixed case", "period=Year&month=5", "2025/5/year", nil},
		{"trimmed", "year=%202023%20&month=%204", "2023/4/", nil},
		{"month too large", "month=12", "", core.ErrInvalidMonth},
		{"month negative", "month=-1", "", core.ErrInvalidMonth},
		{"month not a number", "month=mar", "", errMalformed},
		{"year not a number", "year=next", "", errMalformed},
		{"unknown period", "period=fortnight", "", core.ErrInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			p, err := ParseQueryParams(values, today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := fmt.Sprintf("%d/%d/%s", p.Year, p.Month, p.Period); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"10", 10, false},
		{"0", 0, false},
		{"5000", maxLimit, false},
		{"-1", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLimit(url.Values{"limit": {tt.in}})
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(r)
}

func TestRequestBodyParser(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		p := newParser(t, "application/json", `{"description":" Coffee\u0007 ","amount":3.5,"notes":null}`)
		if err := p.Parse(); err != nil {
			t.Fatal(err)
		}
		if got := p.Get("description"); got != "Coffee" {
			t.Errorf("description = %q", got)
		}
		if got := p.Get("amount"); got != "3.5" {
			t.Errorf("amount = %q", got)
		}
		if _, ok := p.Lookup("notes"); ok {
			t.Error("null field should count as absent")
		}
	})

	t.Run("form", func(t *testing.T) {
		p := newParser(t, "application/x-www-form-urlencoded", "description=Bus+ticket&notes=")
		if err := p.Parse(); err != nil {
			t.Fatal(err)
		}
		if p.Get("description") != "Bus ticket" {
			t.Errorf("description = %q", p.Get("description"))
		}
		if v, ok := p.Lookup("notes"); !ok || v != "" {
			t.Error("present empty form field should be found")
		}
	})

	t.Run("errors", func(t *testing.T) {
		for _, body := range []string{"", "   ", `{"a":`, strings.Repeat("a", maxBodyBytes+10)} {
			if err := newParser(t, "", body).Parse(); !errors.Is(err, errMalformed) {
				t.Errorf("body of %d bytes: error = %v, want malformed", len(body), err)
			}
		}
	})
}

func TestParseNewTransaction(t *testing.T) {
	today := core.NewDate(2025, 3, 15)

	p := newParser(t, "application/json", `{"description":"Rent","amount":"-800,00","type":"Expense","category":"Bills & Utilities"}`)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	in, err := ParseNewTransaction(p, today)
	if err != nil {
		t.Fatal(err)
	}
	if in.Date != today || in.Type != core.Expense || in.Amount.String() != "-800" {
		t.Errorf("unexpected input %+v", in)
	}

	bads := []struct {
		body string
		want error
	}{
		{`{"amount":"x","type":"expense"}`, core.ErrInvalidAmount},
		{`{"amount":"1","type":"gift"}`, core.ErrInvalidType},
		{`{"amount":"1","type":"income","date":"2025-02-30"}`, core.ErrInvalidDate},
	}
	for _, tc := range bads {
		body, want := tc.body, tc.want
		p := newParser(t, "application/json", body)
		if err := p.Parse(); err != nil {
			t.Fatal(err)
		}
		if _, err := ParseNewTransaction(p, today); !errors.Is(err, want) {
			t.Errorf("%s: error = %v, want %v", body, err, want)
		}
	}
}

func TestParseTransactionUpdate(t *testing.T) {
	p := newParser(t, "application/json", `{"category":"Shopping","notes":"gift"}`)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	u, err := ParseTransactionUpdate(p, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "abc" || *u.Category != "Shopping" || *u.Notes != "gift" {
		t.Errorf("unexpected update %+v", u)
	}

	if _, err := ParseTransactionUpdate(p, " "); !errors.Is(err, core.ErrEmptyID) {
		t.Errorf("blank id error = %v", err)
	}
}
