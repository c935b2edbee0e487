// Package server exposes the aggregation, metrics, and share
// operations over a small JSON HTTP API for the dashboard front end.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gitpulse/gitpulse/internal/chart"
	"github.com/gitpulse/gitpulse/internal/domain"
	"github.com/gitpulse/gitpulse/internal/metrics"
	"github.com/gitpulse/gitpulse/internal/share"
	"github.com/gitpulse/gitpulse/internal/usecase"
)

// requestTimeout bounds every request, pagination loops included. The
// retrieval core itself has no timeout; it is applied here at the
// delivery layer.
const requestTimeout = 2 * time.Minute

// Server routes dashboard API requests to the aggregator.
type Server struct {
	aggregator *usecase.Aggregator
	logger     *log.Logger
	now        func() time.Time
}

// New creates a Server around the given aggregator.
func New(aggregator *usecase.Aggregator, logger *log.Logger) *Server {
	return &Server{
		aggregator: aggregator,
		logger:     logger,
		now:        time.Now,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/repositories", s.handleRepositories)
	mux.HandleFunc("POST /api/commits", s.handleCommits)
	mux.HandleFunc("POST /api/share", s.handleShareCreate)
	mux.HandleFunc("GET /api/share", s.handleShareResolve)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	return withTimeout(mux)
}

func withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// apiResult mirrors the action-result shape the dashboard consumes:
// either data, or a rate-limit notice with the minutes until reset.
type apiResult[T any] struct {
	Success           bool   `json:"success"`
	Data              T      `json:"data,omitempty"`
	Error             string `json:"error,omitempty"`
	MinutesUntilReset int    `json:"minutesUntilReset,omitempty"`
}

func ok[T any](data T) apiResult[T] {
	return apiResult[T]{Success: true, Data: data}
}

func rateLimited[T any](rl domain.RateLimit) apiResult[T] {
	return apiResult[T]{
		Success:           false,
		Error:             rl.Message(),
		MinutesUntilReset: rl.RetryAfterMinutes,
	}
}

func (s *Server) handleRepositories(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.aggregator.FetchRepositories(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	if !outcome.Ok() {
		s.writeJSON(w, http.StatusOK, rateLimited[[]domain.Repository](*outcome.RateLimit))
		return
	}
	s.writeJSON(w, http.StatusOK, ok(outcome.Data))
}

type commitsRequest struct {
	Repos []string `json:"repos"`
	Since string   `json:"since,omitempty"`
	Until string   `json:"until,omitempty"`
}

// commitsPayload bundles everything the dashboard renders for one
// selection: the raw commits, the chart series, and the velocity.
type commitsPayload struct {
	Commits  []domain.Commit     `json:"commits"`
	Timeline []domain.ChartPoint `json:"timeline"`
	Velocity domain.Velocity     `json:"velocity"`
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	var req commitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	window, err := parseWindow(req.Since, req.Until)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	outcome, err := s.aggregator.FetchCommits(r.Context(), req.Repos, window)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if !outcome.Ok() {
		s.writeJSON(w, http.StatusOK, rateLimited[commitsPayload](*outcome.RateLimit))
		return
	}
	s.writeJSON(w, http.StatusOK, ok(commitsPayload{
		Commits:  outcome.Data,
		Timeline: metrics.Timeline(outcome.Data),
		Velocity: metrics.ComputeVelocity(outcome.Data, window, s.now()),
	}))
}

type shareRequest struct {
	Repos    []string        `json:"repos"`
	DateFrom string          `json:"dateFrom,omitempty"`
	DateTo   string          `json:"dateTo,omitempty"`
	Commits  []domain.Commit `json:"commits"`
}

func (s *Server) handleShareCreate(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if len(req.Repos) == 0 {
		s.badRequest(w, "at least one repository is required")
		return
	}
	if req.Commits == nil {
		s.badRequest(w, "commits data is required")
		return
	}
	window, err := parseWindow(req.DateFrom, req.DateTo)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	snap := s.aggregator.Snapshot(r.Context(), req.Repos, window, req.Commits)
	token, err := share.Encode(snap)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"shareId": token})
}

func (s *Server) handleShareResolve(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		s.badRequest(w, "share ID is required")
		return
	}
	snap, err := share.Decode(id)
	if err != nil {
		s.badRequest(w, "invalid share ID")
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	reposParam := r.URL.Query().Get("repos")
	if reposParam == "" {
		http.Error(w, "repos query parameter is required", http.StatusBadRequest)
		return
	}
	repos := strings.Split(reposParam, ",")
	window, err := parseWindow(r.URL.Query().Get("since"), r.URL.Query().Get("until"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := s.aggregator.FetchCommits(r.Context(), repos, window)
	if err != nil {
		s.logger.Printf("Server: dashboard fetch failed: %v", err)
		http.Error(w, "failed to fetch commits", http.StatusInternalServerError)
		return
	}
	if !outcome.Ok() {
		http.Error(w, outcome.RateLimit.Message(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("Commit timeline: %s", strings.Join(repos, ", "))
	if err := chart.Render(w, metrics.Timeline(outcome.Data), title); err != nil {
		s.logger.Printf("Server: chart render failed: %v", err)
	}
}

// parseWindow accepts RFC 3339 instants or plain yyyy-mm-dd dates.
func parseWindow(since, until string) (domain.DateRange, error) {
	var window domain.DateRange
	if since != "" {
		t, err := parseTime(since)
		if err != nil {
			return domain.DateRange{}, fmt.Errorf("invalid since value %q", since)
		}
		window.Since = &t
	}
	if until != "" {
		t, err := parseTime(until)
		if err != nil {
			return domain.DateRange{}, fmt.Errorf("invalid until value %q", until)
		}
		window.Until = &t
	}
	return window, nil
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("Server: response encoding failed: %v", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Printf("Server: internal error: %v", err)
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
