// Package server exposes lint and package-metadata operations over an
// HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	perrors "github.com/projlint/projlint/pkg/errors"
	"github.com/projlint/projlint/pkg/manifest"
	"github.com/projlint/projlint/pkg/observability"
	"github.com/projlint/projlint/pkg/registry"
	"github.com/projlint/projlint/pkg/registry/pypi"
	"github.com/projlint/projlint/pkg/store"
)

// maxManifestSize bounds the request body for lint requests.
const maxManifestSize = 1 << 20 // 1 MiB

// Options configures the server.
type Options struct {
	Registry *pypi.Client   // Package metadata source (required)
	History  *store.History // Lint run log (optional)
	Logger   *log.Logger    // Request logging (optional)
}

// Server handles HTTP requests for linting and package metadata.
type Server struct {
	registry *pypi.Client
	history  *store.History
	log      *log.Logger
}

// New creates a Server from options.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		registry: opts.Registry,
		history:  opts.History,
		log:      logger,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/lint", s.handleLint)
		r.Get("/packages/{name}", s.handlePackage)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLint accepts a pyproject manifest as the request body and
// responds with the lint report.
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxManifestSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty manifest")
		return
	}
	if len(data) > maxManifestSize {
		writeError(w, http.StatusRequestEntityTooLarge, "manifest too large")
		return
	}

	m, err := manifest.Parse(data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	start := time.Now()
	observability.Lint().OnLintStart(ctx, m.Path())
	report := manifest.Lint(m)
	duration := time.Since(start)
	observability.Lint().OnLintComplete(ctx, m.Path(), report.Errors(), report.Warnings(), duration)

	if s.history != nil {
		if err := s.history.Record(report, duration); err != nil {
			s.log.Warn("record lint run", "err", err)
		}
	}

	writeJSON(w, http.StatusOK, report)
}

// handlePackage proxies package metadata from the registry, serving
// cached responses where available.
func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := perrors.ValidateDistributionName(name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	info, err := s.registry.FetchPackage(r.Context(), name, refresh)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		writeError(w, http.StatusNotFound, "package not found: "+name)
	case err != nil:
		s.log.Error("fetch package", "name", name, "err", err)
		writeError(w, http.StatusBadGateway, "registry unavailable")
	default:
		writeJSON(w, http.StatusOK, info)
	}
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
