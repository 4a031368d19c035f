// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.



package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/peerscout/core"
	"github.com/rs/cors"
)

// MaxBodyBytes caps the POST /search request body.
const MaxBodyBytes = 10 << 20

// Finder runs one similarity search. *pipeline.Pipeline satisfies it.
type Finder interface {
	Run(ctx context.Context, company core.Company, concept core.Concept) ([]core.CandidateCompany, error)
}

// Health is reported by GET /health.
type Health struct {
	SearchKeyPresent bool
	ModelKeyPresent  bool
	ModelProvider    string
}

// Server is the HTTP surface over a Finder.
type Server struct {
	finder         Finder
	apiKey         string
	timeout        time.Duration
	allowedOrigins []string
	health         Health
	version        string
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey requires callers of POST /search to send key in x-api-key.
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithTimeout bounds each invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithAllowedOrigins sets the CORS origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHealth sets the key presence flags reported by GET /health.
func WithHealth(h Health) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithVersion sets the version reported by GET /.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New creates a Server.
func New(finder Finder, opts ...Option) *Server {
	s := &Server{
		finder:         finder,
		allowedOrigins: []string{"*"},
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	return s
}

// Handler returns the routed handler wrapped in middleware.
// Order: CORS → Recovery → Routes, with the API key check on POST /search.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("POST /search", RequireAPIKey(s.apiKey)(http.HandlerFunc(s.handleSearch)))

	var handler http.Handler = mux
	handler = Recovery(s.logger)(handler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", APIKeyHeader},
		AllowCredentials: true,
	})
	return corsHandler.Handler(handler)
}

// HTTPServer wraps Handler in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

type rootResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, rootResponse{
		Service:   "peerscout",
		Version:   s.version,
		Endpoints: []string{"/health", "/search"},
	})
}

type healthResponse struct {
	Status           string `json:"status"`
	SearchKeyPresent bool   `json:"search_key_present"`
	ModelKeyPresent  bool   `json:"model_key_present"`
	ModelProvider    string `json:"model_provider"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, healthResponse{
		Status:           "healthy",
		SearchKeyPresent: s.health.SearchKeyPresent,
		ModelKeyPresent:  s.health.ModelKeyPresent,
		ModelProvider:    s.health.ModelProvider,
	})
}

type searchRequest struct {
	Company *core.Company `json:"company"`
	Concept *core.Concept `json:"concept"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Company == nil || req.Concept == nil {
		RespondError(w, http.StatusUnprocessableEntity, "company and concept are required")
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	companies, err := s.finder.Run(ctx, *req.Company, *req.Concept)
	if err != nil {
		status := StatusFromError(err)
		s.logger.Warn("search failed", "status", status, "error", core.RedactSecrets(err.Error()))
		RespondError(w, status, core.RedactSecrets(err.Error()))
		return
	}

	s.logger.Debug("search completed", "company", req.Company.Name, "candidates", len(companies))
	RespondJSON(w, http.StatusOK, companies)
}

// StatusFromError maps a pipeline error to an HTTP status code.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidCompany), errors.Is(err, core.ErrInvalidConcept):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrConfiguration):
		return http.StatusInternalServerError
	case errors.Is(err, core.ErrSearchProvider),
		errors.Is(err, core.ErrModelProvider),
		errors.Is(err, core.ErrExtractionSchema),
		errors.Is(err, core.ErrAuthentication):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
