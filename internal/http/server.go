// Package http serves the dashboard's JSON API: period-aware reads through the
// query facade and transaction mutations through the service layer.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"findash/internal/core"
	"findash/internal/log"
	"findash/internal/middleware/ratelimit"
	"findash/internal/middleware/security"
	"findash/internal/middleware/trace"
	"findash/internal/query"
)

// Queries is the read side the API needs from the facade.
type Queries interface {
	Today() core.Date
	Range(p query.Params) (core.DateRange, error)
	Query(ctx context.Context, kind query.Kind, p query.Params) (any, error)
	Recent(ctx context.Context, limit int) ([]core.Transaction, error)
	Dashboard(ctx context.Context, p query.Params) (query.Dashboard, error)
	Comparison(ctx context.Context, p query.Params) (query.Comparison, error)
	Insight(ctx context.Context, p query.Params) (query.Insight, error)
	BudgetPace(ctx context.Context, p query.Params) (query.BudgetPace, error)
}

// Mutations is the write side, implemented by services.TransactionService.
type Mutations interface {
	Add(ctx context.Context, in core.NewTransaction) (core.Transaction, error)
	Update(ctx context.Context, u core.TransactionUpdate) (core.Transaction, error)
}

// Pinger checks a storage dependency for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config wires a Server. Pinger is optional; without it readiness only
// reflects the process being up. A zero RateLimit uses ratelimit.DefaultConfig.
type Config struct {
	Addr      string
	Queries   Queries
	Mutations Mutations
	Pinger    Pinger
	Logger    *log.Logger
	RateLimit ratelimit.Config
}

const (
	queryTimeout     = 7 * time.Second
	readinessTimeout = 5 * time.Second
)

type Server struct {
	http.Server
	queries   Queries
	mutations Mutations
	pinger    Pinger
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	metrics      *appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig()
	}

	s := &Server{
		queries:   cfg.Queries,
		mutations: cfg.Mutations,
		pinger:    cfg.Pinger,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(cfg.RateLimit),
		detector:  security.NewDetector(logger),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ClientIP)
	s.metrics = newAppMetrics(s)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no such endpoint").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/overview", s.handleView(query.KindOverview)).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleView(query.KindCategories)).Methods(http.MethodGet)
	api.HandleFunc("/balances", s.handleView(query.KindBalances)).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleView(query.KindTransactions)).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/recent", s.handleRecent).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", s.handleUpdateTransaction).Methods(http.MethodPatch)
	api.HandleFunc("/dashboard", periodHandler(s, log.OpDashboard, s.queries.Dashboard)).Methods(http.MethodGet)
	api.HandleFunc("/comparison", periodHandler(s, log.OpComparison, s.queries.Comparison)).Methods(http.MethodGet)
	api.HandleFunc("/insight", periodHandler(s, log.OpInsight, s.queries.Insight)).Methods(http.MethodGet)
	api.HandleFunc("/budget", periodHandler(s, log.OpBudget, s.queries.BudgetPace)).Methods(http.MethodGet)

	var h http.Handler = r
	h = s.limiter.Middleware(s.detector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	})(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.tracer.Middleware(h)
	h = s.detector.Middleware(h)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops background routines and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// writeError maps err to a status and writes the JSON envelope. Server-side
// failures are logged and their detail withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err, operation, nil)
		InternalServerError("internal error").Write(w)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
		log.FieldOperation, operation,
		log.FieldStatusCode, status,
		log.FieldError, err)
	ErrorResponse(status, err.Error()).Write(w)
}
