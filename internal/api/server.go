// Package api serves the engine over JSON HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/nisab/internal/clarify"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/nisab"
	"github.com/cleared-dev/nisab/internal/portfolio"
	"github.com/cleared-dev/nisab/internal/rates"
	"github.com/cleared-dev/nisab/internal/session"
)

// Defaults fill in request fields the caller leaves empty.
type Defaults struct {
	BaseCurrency  string
	Calendar      model.Calendar
	NisabStandard model.NisabStandard
	PricePerGram  *decimal.Decimal
	PriceCurrency string // currency of PricePerGram; BaseCurrency when empty
	HawlStart     *time.Time
}

// Server holds the collaborators behind the HTTP handlers.
type Server struct {
	provider   *rates.Provider
	portfolios *portfolio.Service
	defaults   Defaults
	logger     *zap.Logger
	now        func() time.Time
}

// NewServer creates a Server. portfolios may be nil, in which case the
// portfolio routes answer 404.
func NewServer(provider *rates.Provider, portfolios *portfolio.Service, defaults Defaults, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		provider:   provider,
		portfolios: portfolios,
		defaults:   defaults,
		logger:     logger,
		now:        time.Now,
	}
}

// Router returns the routes under /v1.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/calculate", s.calculateHandler).Methods(http.MethodPost)
	v1.HandleFunc("/hawl", s.hawlHandler).Methods(http.MethodGet)
	v1.HandleFunc("/prices/{metal}", s.priceHandler).Methods(http.MethodGet)
	v1.HandleFunc("/portfolios", s.listPortfoliosHandler).Methods(http.MethodGet)
	v1.HandleFunc("/portfolios/{id}/records", s.listRecordsHandler).Methods(http.MethodGet)
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps engine errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var ve session.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, rates.ErrUnknownCurrency),
		errors.Is(err, nisab.ErrInvalidPrice),
		errors.Is(err, clarify.ErrInvalidAnswer),
		errors.Is(err, clarify.ErrNegativeMarketValue),
		errors.Is(err, session.ErrNoQuestion),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrLockedClassification):
		status = http.StatusConflict
	case errors.Is(err, portfolio.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

var errBadRequest = errors.New("bad request")
