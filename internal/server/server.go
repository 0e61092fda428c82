// Package server provides the HTTP REST API for the research analyst service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/config"
	"github.com/jonathan/research-analyst/internal/formats"
	"github.com/jonathan/research-analyst/internal/mcpserver"
	"github.com/jonathan/research-analyst/internal/pipeline"
	"github.com/jonathan/research-analyst/internal/ranking"
	"github.com/jonathan/research-analyst/internal/server/middleware"
	"github.com/jonathan/research-analyst/internal/server/ratelimit"
	"github.com/jonathan/research-analyst/internal/store"
	"github.com/jonathan/research-analyst/internal/validation"
)

// Server represents the HTTP server
type Server struct {
	httpServer       *http.Server
	handler          http.Handler
	store            store.Store
	pipeline         *pipeline.Pipeline
	classifier       *formats.Classifier
	ranker           *ranking.Ranker
	matcher          *ranking.Matcher
	qualityThreshold float64
	rateLimiter      *ratelimit.Limiter
	jwtService       *JWTService
	logger           *zap.Logger
	now              func() time.Time
}

// Config holds server configuration
type Config struct {
	Port             int
	Store            store.Store
	Pipeline         *pipeline.Pipeline
	Classifier       *formats.Classifier // Defaults to the pipeline engine's classifier
	QualityThreshold float64
	JWT              *config.JWTConfig // Nil leaves the API unauthenticated
	RateLimit        *ratelimit.Config // Nil reads RATE_LIMIT_* from the environment
	Logger           *zap.Logger
	Version          string
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("server requires a store")
	}
	if cfg.Pipeline == nil || cfg.Pipeline.Engine == nil {
		return nil, errors.New("server requires a pipeline with a deliverable engine")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = cfg.Pipeline.Engine.Classifier
	}
	if cfg.QualityThreshold <= 0 {
		cfg.QualityThreshold = validation.DefaultQualityThreshold
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = ratelimit.LoadConfig()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		store:            cfg.Store,
		pipeline:         cfg.Pipeline,
		classifier:       cfg.Classifier,
		ranker:           cfg.Pipeline.Ranker,
		matcher:          ranking.NewMatcher(),
		qualityThreshold: cfg.QualityThreshold,
		rateLimiter:      ratelimit.NewLimiter(cfg.RateLimit),
		logger:           cfg.Logger,
		now:              time.Now,
	}
	if cfg.JWT != nil {
		s.jwtService = NewJWTService(cfg.JWT)
	}

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Store:      cfg.Store,
		Classifier: cfg.Classifier,
		Ranker:     s.ranker,
		Logger:     cfg.Logger,
	}, cfg.Version)

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /search", s.handleSearch)

	// Tasks
	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("PUT /api/tasks", s.handleUpdateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	// Task validation
	mux.HandleFunc("GET /api/tasks/validate", s.handleValidateTasks)
	mux.HandleFunc("GET /api/tasks/quality-report", s.handleQualityReport)
	mux.HandleFunc("POST /api/tasks/fix", s.handleFixTasks)
	mux.HandleFunc("GET /api/tasks/{id}/validate", s.handleValidateTask)

	// Sources
	mux.HandleFunc("GET /api/sources", s.handleListSources)
	mux.HandleFunc("POST /api/sources", s.handleCreateSource)
	mux.HandleFunc("POST /api/tag", s.handleTag)
	mux.HandleFunc("GET /api/suggested_sources/{task_id}", s.handleSuggestedSources)

	// Deliverables
	mux.HandleFunc("GET /api/deliverables", s.handleListDeliverables)
	mux.HandleFunc("POST /api/deliverables", s.handleCreateDeliverable)
	mux.HandleFunc("POST /api/deliverables/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/deliverables/generate/stream", s.handleGenerateStream)
	mux.HandleFunc("POST /api/deliverables/export", s.handleExport)
	mux.HandleFunc("PUT /api/deliverables/{task_id}", s.handleUpsertDeliverable)

	// Analysis
	mux.HandleFunc("POST /api/detect_format", s.handleDetectFormat)
	mux.HandleFunc("POST /api/rank_sources", s.handleRankSources)

	// MCP tools
	mux.Handle("/mcp/", http.StripPrefix("/mcp", mcpSrv.HTTPHandler()))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.withAuth(mux))))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for LLM generation
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until ctx is cancelled or
// the process receives SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.rateLimiter.Stop()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()

	s.logger.Info("server stopped")
	return nil
}

// Close stops background work without serving. Used when the server was
// created only for its handler.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withAuth requires a bearer token on mutating /api/ requests when JWT is
// configured.
func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.jwtService == nil {
		return next
	}
	protected := middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), true)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") && isMutating(r.Method) {
			protected.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr))
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// storeError logs err and writes the matching error response. notFound is
// the message used for missing documents.
func (s *Server) storeError(w http.ResponseWriter, err error, notFound string) {
	status := HTTPStatus(err)
	if status == http.StatusNotFound {
		s.errorResponse(w, status, notFound)
		return
	}
	s.logger.Error("store operation failed", zap.Error(err))
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retry := int(info.RetryAfter.Round(time.Second).Seconds())
		if retry < 1 {
			retry = 1
		}
		response["retry_after"] = retry
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID),
		zap.Int("limit", info.Limit),
		zap.Time("reset_at", info.ResetTime))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
