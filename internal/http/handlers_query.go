package http

import (
	"context"
	"net/http"

	"findash/internal/log"
	"findash/internal/query"
)

// periodHandler serves a view computed from the period query parameters. The
// resolved, capped range is reported in the X-Period-Start and X-Period-End
// headers.
func periodHandler[T any](s *Server, operation string, fn func(context.Context, query.Params) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := ParseQueryParams(r.URL.Query(), s.queries.Today())
		if err != nil {
			s.writeError(w, r, err, log.OpParse)
			return
		}
		rng, err := s.queries.Range(p)
		if err != nil {
			s.writeError(w, r, err, log.OpParse)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		result, err := fn(ctx, p)
		if err != nil {
			s.writeError(w, r, err, operation)
			return
		}
		NewJSONResponse().
			Header("X-Period-Start", rng.Start.Key()).
			Header("X-Period-End", rng.End.Key()).
			Data(result).
			Write(w)
	}
}

// handleView serves one of the four aggregate views.
func (s *Server) handleView(kind query.Kind) http.HandlerFunc {
	return periodHandler(s, log.OpQuery, func(ctx context.Context, p query.Params) (any, error) {
		return s.queries.Query(ctx, kind, p)
	})
}

// handleRecent lists every transaction, most recent first.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, log.OpParse)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	txs, err := s.queries.Recent(ctx, limit)
	if err != nil {
		s.writeError(w, r, err, log.OpRecent)
		return
	}
	NewJSONResponse().Data(txs).Write(w)
}
