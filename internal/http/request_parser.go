// This file implements parsing of query parameters and request bodies into
// the facade's and the mutation boundary's inputs.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"findash/internal/core"
	"findash/internal/period"
	"findash/internal/query"
)

const (
	maxBodyBytes = 64 << 10
	maxLimit     = 1000
)

// ParseQueryParams reads year, month (0-11), period and category from the
// query string. Absent year and month default to today's.
func ParseQueryParams(values url.Values, today core.Date) (query.Params, error) {
	p := query.Current(today.Time)

	if v := strings.TrimSpace(values.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return query.Params{}, fmt.Errorf("%w: year %q is not a number", errMalformed, v)
		}
		p.Year = y
	}
	if v := strings.TrimSpace(values.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return query.Params{}, fmt.Errorf("%w: month %q is not a number", errMalformed, v)
		}
		p.Month = m
	}
	kind, err := period.ParseKind(values.Get("period"))
	if err != nil {
		return query.Params{}, err
	}
	p.Period = kind
	p.Category = sanitizeInput(values.Get("category"))

	if err := p.Validate(); err != nil {
		return query.Params{}, err
	}
	return p, nil
}

// ParseLimit reads a non-negative limit; absent means no limit.
func ParseLimit(values url.Values) (int, error) {
	v := strings.TrimSpace(values.Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit %q must be a non-negative integer", errMalformed, v)
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}

// RequestBodyParser reads a JSON object or form-encoded body once and exposes
// its fields as strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of r's body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("%w: body exceeds %d bytes", errMalformed, maxBodyBytes)
	}
	return p
}

// Parse decodes the body as JSON when it looks like an object, otherwise as a
// form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		return fmt.Errorf("%w: empty body", errMalformed)
	}
	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errMalformed, err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformed, p.err)
	}
	return p.err
}

// Lookup returns the sanitized value of key and whether it was present.
func (p *RequestBodyParser) Lookup(key string) (string, bool) {
	if p.jsonData != nil {
		val, ok := p.jsonData[key]
		if !ok || val == nil {
			return "", false
		}
		return sanitizeInput(stringValue(val)), true
	}
	if p.formData != nil {
		if _, ok := p.formData[key]; !ok {
			return "", false
		}
		return sanitizeInput(p.formData.Get(key)), true
	}
	return "", false
}

// Get returns the sanitized value of key, or "".
func (p *RequestBodyParser) Get(key string) string {
	v, _ := p.Lookup(key)
	return v
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseNewTransaction builds the add-transaction input. Date defaults to
// today; the amount accepts a comma decimal separator.
func ParseNewTransaction(p *RequestBodyParser, today core.Date) (core.NewTransaction, error) {
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.NewTransaction{}, err
	}
	typ, err := core.ParseTransactionType(p.Get("type"))
	if err != nil {
		return core.NewTransaction{}, err
	}
	date := today
	if v := p.Get("date"); v != "" {
		if date, err = core.ParseDate(v); err != nil {
			return core.NewTransaction{}, err
		}
	}
	return core.NewTransaction{
		Description: p.Get("description"),
		Amount:      amount,
		Type:        typ,
		Category:    p.Get("category"),
		Date:        date,
	}, nil
}

// ParseTransactionUpdate reads the optional category and notes fields. At
// least one must be present.
func ParseTransactionUpdate(p *RequestBodyParser, id string) (core.TransactionUpdate, error) {
	u := core.TransactionUpdate{ID: strings.TrimSpace(id)}
	if v, ok := p.Lookup("category"); ok {
		u.Category = &v
	}
	if v, ok := p.Lookup("notes"); ok {
		u.Notes = &v
	}
	if u.Category == nil && u.Notes == nil {
		return core.TransactionUpdate{}, fmt.Errorf("%w: nothing to update (expected category or notes)", errMalformed)
	}
	if err := u.Validate(); err != nil {
		return core.TransactionUpdate{}, err
	}
	return u, nil
}
