package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"findash/internal/log"
)

// handleCreateTransaction accepts a JSON or form body and returns the stored
// transaction with 201.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		s.writeError(w, r, err, log.OpParse)
		return
	}
	in, err := ParseNewTransaction(body, s.queries.Today())
	if err != nil {
		s.writeError(w, r, err, log.OpValidate)
		return
	}

	t, err := s.mutations.Add(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}
	s.metrics.transactionsCreated.Inc()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+t.ID).
		Data(t).
		Write(w)
}

// handleUpdateTransaction changes a transaction's category and/or notes.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		s.writeError(w, r, err, log.OpParse)
		return
	}
	u, err := ParseTransactionUpdate(body, mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, log.OpValidate)
		return
	}

	t, err := s.mutations.Update(r.Context(), u)
	if err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	s.metrics.transactionsUpdated.Inc()

	NewJSONResponse().Data(t).Write(w)
}
