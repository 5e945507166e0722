package http

import (
	"errors"
	"net/http"
	"strings"

	"findash/internal/core"
)

// errMalformed marks requests that cannot be parsed at all.
var errMalformed = errors.New("malformed request")

// statusFor maps a domain or parsing error to its HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMalformed),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDescriptionLong),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyID):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// sanitizeInput removes control characters except tab and newlines, and trims.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}
