// Package server exposes the ingested workspaces over HTTP for the
// dashboard frontend.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/KatherineCox/anvil-portal/internal/export"
	"github.com/KatherineCox/anvil-portal/internal/ingest"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// Ingester runs one ingestion pass and returns the normalized record set.
type Ingester interface {
	IngestedWorkspaces(ctx context.Context) ([]ingest.Record, error)
}

// Server is the dashboard HTTP API.
type Server struct {
	pipeline      Ingester
	logger        *zap.Logger
	ingestTimeout time.Duration
	corsOrigins   []string
}

// New creates a Server. A non-zero ingestTimeout bounds every pipeline
// invocation made on behalf of a request.
func New(pipeline Ingester, logger *zap.Logger, ingestTimeout time.Duration, corsOrigins []string) *Server {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	return &Server{
		pipeline:      pipeline,
		logger:        logger,
		ingestTimeout: ingestTimeout,
		corsOrigins:   corsOrigins,
	}
}

// Routes assembles the router with middleware and all API endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/workspaces", s.handleWorkspaces)
	r.Get("/api/workspaces/summary", s.handleSummary)
	r.Get("/api/workspaces/export", s.handleExport)

	return r
}

type workspacesResponse struct {
	Total      int             `json:"total"`
	Workspaces []ingest.Record `json:"workspaces"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

func (s *Server) handleWorkspaces(w http.ResponseWriter, r *http.Request) {
	records, ok := s.runIngest(w, r)
	if !ok {
		return
	}

	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}

	cursor, err := decodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		s.logger.Warn("Rejected pagination cursor", zap.Error(err))
		http.Error(w, "invalid cursor", http.StatusBadRequest)
		return
	}

	offset := cursor.Offset
	if offset > len(records) {
		offset = len(records)
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}

	resp := workspacesResponse{
		Total:      len(records),
		Workspaces: records[offset:end],
	}
	if end < len(records) {
		resp.NextCursor = encodeCursor(end)
	}

	s.writeJSON(w, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	records, ok := s.runIngest(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, ingest.Summarize(records))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records, ok := s.runIngest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apache.arrow.stream")
	if err := export.WriteIPC(w, records); err != nil {
		// Headers are already sent once the stream starts.
		s.logger.Error("Failed to write Arrow export", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// runIngest executes one pipeline invocation for a request, applying the
// configured ingest timeout on top of the request context.
func (s *Server) runIngest(w http.ResponseWriter, r *http.Request) ([]ingest.Record, bool) {
	ctx := r.Context()
	if s.ingestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ingestTimeout)
		defer cancel()
	}

	records, err := s.pipeline.IngestedWorkspaces(ctx)
	if err != nil {
		s.logger.Error("Workspace ingest failed", zap.Error(err))
		http.Error(w, "workspace ingest failed", http.StatusInternalServerError)
		return nil, false
	}

	return records, true
}

func (s *Server) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}
