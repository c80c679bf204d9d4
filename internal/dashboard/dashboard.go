// Package dashboard serves a read-only JSON view of a project's tracking
// directories over HTTP.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gorewood/longrun/internal/harness"
	"github.com/gorewood/longrun/internal/logging"
	"github.com/gorewood/longrun/internal/output"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:7420"

// Server exposes tracking directories under one project.
type Server struct {
	layout harness.Layout
	logger logging.Logger
	router chi.Router
}

// New builds the router for layout.
func New(layout harness.Layout, logger logging.Logger) *Server {
	s := &Server{layout: layout, logger: logging.OrDiscard(logger)}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/healthz", s.handleHealth)
	r.Route("/features", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/{feature}", s.handleFeature)
		r.Get("/{feature}/progress", s.handleProgress)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. ready, when non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return output.NewSystemErrorWithCause("failed to listen on "+addr, err)
	}
	if ready != nil {
		ready(ln.Addr())
	}

	srv := &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return output.NewSystemErrorWithCause("dashboard server failed", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return output.NewSystemErrorWithCause("dashboard shutdown failed", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	statuses, err := harness.StatusAll(s.layout)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project":  s.layout.ProjectRoot,
		"features": statuses,
	})
}

func (s *Server) handleFeature(w http.ResponseWriter, r *http.Request) {
	st, err := harness.Status(s.layout, chi.URLParam(r, "feature"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	feature := chi.URLParam(r, "feature")
	if err := s.layout.RequireFeature(feature); err != nil {
		s.writeError(w, err)
		return
	}
	data, err := os.ReadFile(s.layout.ProgressPath(feature))
	if err != nil {
		s.writeError(w, output.NewSystemErrorWithCause("failed to read progress log", err))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch harness.KindOf(err) {
	case harness.KindNotFound:
		status = http.StatusNotFound
	case harness.KindInvalidInput:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("dashboard request failed", "error", err)
	}
	writeJSON(w, status, map[string]any{
		"error": err.Error(),
		"code":  output.GetExitCode(err),
		"kind":  output.GetKind(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
