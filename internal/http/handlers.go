package http

import (
	"context"
	"net/http"
	"time"

	"findash/internal/log"
)

// handleHealth answers liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the storage dependency when one is configured.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]string{}

	if s.pinger == nil {
		checks["storage"] = "not_applicable"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			checks["storage"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		} else {
			checks["storage"] = "ok"
		}
	}

	NewJSONResponse().Status(code).Data(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}
