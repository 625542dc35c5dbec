// Package api exposes the pipeline over HTTP. All analysis goes through the
// shadow flow; the legacy analyze endpoint answers 501 permanently.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fasterangels/shadowpipe/internal/evaluation"
	"github.com/fasterangels/shadowpipe/internal/ingestion"
	"github.com/fasterangels/shadowpipe/internal/pipeline"
	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
	"github.com/fasterangels/shadowpipe/internal/pkg/storage"
)

// Server hosts the pipeline HTTP API.
type Server struct {
	cfg        *config.Config
	pipe       *pipeline.Pipeline
	outcomes   storage.OutcomeStore
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer builds the HTTP server around a pipeline.
func NewServer(cfg *config.Config, pipe *pipeline.Pipeline, outcomes storage.OutcomeStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{cfg: cfg, pipe: pipe, outcomes: outcomes, log: log}
}

// Handler builds the routed, CORS-wrapped handler. Exposed separately from
// Start for tests.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ping", s.handlePing).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/pipeline/shadow/run", s.handleShadowRun).Methods("POST")
	router.HandleFunc("/pipeline/shadow/batch", s.handleShadowBatch).Methods("POST")
	router.HandleFunc("/evaluation/kpis", s.handleKPIs).Methods("GET")

	// The direct analyze endpoint is retired for good; see handleAnalyze.
	router.HandleFunc("/api/v1/analyze", s.handleAnalyze)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}

// Start runs the HTTP server until it fails or Stop is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
	}
	s.log.Info("HTTP server listening", "addr", s.cfg.Server.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) {
	if s.httpServer == nil {
		return
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("Server shutdown error", "error", err)
	}
}

// shadowRunRequest is the body of POST /pipeline/shadow/run.
type shadowRunRequest struct {
	ConnectorName  string   `json:"connector_name"`
	MatchID        string   `json:"match_id"`
	Markets        []string `json:"markets,omitempty"`
	Status         string   `json:"status,omitempty"`
	FinalHomeGoals *int     `json:"final_home_goals,omitempty"`
	FinalAwayGoals *int     `json:"final_away_goals,omitempty"`
}

type shadowBatchRequest struct {
	Matches []shadowRunRequest `json:"matches"`
}

func (s *Server) handleShadowRun(w http.ResponseWriter, r *http.Request) {
	var body shadowRunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, models.ErrValidation, "invalid JSON body: "+err.Error())
		return
	}
	if body.MatchID == "" {
		writeError(w, http.StatusBadRequest, models.ErrMissingMatchID, "match_id is required")
		return
	}

	rep := s.pipe.Run(r.Context(), toPipelineRequest(body))
	writeJSON(w, statusFor(rep), rep)
}

func (s *Server) handleShadowBatch(w http.ResponseWriter, r *http.Request) {
	var body shadowBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, models.ErrValidation, "invalid JSON body: "+err.Error())
		return
	}
	if len(body.Matches) == 0 {
		writeError(w, http.StatusBadRequest, models.ErrValidation, "matches must not be empty")
		return
	}
	for _, m := range body.Matches {
		if m.MatchID == "" {
			writeError(w, http.StatusBadRequest, models.ErrMissingMatchID, "every match needs a match_id")
			return
		}
	}

	reqs := make([]pipeline.Request, len(body.Matches))
	for i, m := range body.Matches {
		reqs[i] = toPipelineRequest(m)
	}
	reports := s.pipe.Batch(r.Context(), reqs)
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// handleAnalyze answers 501 for every method and payload. The behavior is
// frozen so callers migrate to the shadow flow instead of waiting it out.
func (s *Server) handleAnalyze(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotImplemented, models.ErrAnalyzeNotSupported,
		"direct analysis is not supported; use POST /pipeline/shadow/run")
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	period := models.Period(query.Get("period"))
	if period == "" {
		period = models.PeriodDay
	}

	reference := time.Now().UTC()
	if raw := query.Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, models.ErrValidation, "date must be YYYY-MM-DD")
			return
		}
		reference = parsed
	}

	record, err := evaluation.Aggregate(r.Context(), s.outcomes, period, reference)
	if err != nil {
		writeError(w, http.StatusBadRequest, models.ErrValidation, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"connectors": ingestion.Names(),
		"policy":     s.pipe.Policy(),
	})
}

func toPipelineRequest(body shadowRunRequest) pipeline.Request {
	markets := make([]models.Market, 0, len(body.Markets))
	for _, m := range body.Markets {
		markets = append(markets, models.Market(m))
	}
	return pipeline.Request{
		ConnectorName:  body.ConnectorName,
		MatchID:        body.MatchID,
		Markets:        markets,
		Status:         body.Status,
		FinalHomeGoals: body.FinalHomeGoals,
		FinalAwayGoals: body.FinalAwayGoals,
	}
}

// statusFor maps a run report to an HTTP status. Resolver short-circuits are
// successful runs; only run-level errors leave the 2xx range.
func statusFor(rep *models.PipelineReport) int {
	switch rep.Error {
	case "":
		return http.StatusOK
	case models.ErrActivationRejected:
		return http.StatusForbidden
	case models.ErrMissingMatchID, models.ErrValidation:
		return http.StatusBadRequest
	case models.ErrConnectorNotFound:
		return http.StatusNotFound
	case models.ErrIngestionTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, kind models.ErrorKind, detail string) {
	writeJSON(w, status, map[string]string{
		"error":  string(kind),
		"detail": detail,
	})
}
