package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/annotator/internal/session"
)

type Server struct {
	router  *chi.Mux
	port    int
	manager *session.Manager
	httpSrv *http.Server
}

// NewServer wires the routes. metrics may be nil to leave /metrics unmounted.
func NewServer(port int, manager *session.Manager, metrics http.Handler) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		manager: manager,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/annotator/status", s.status)
	if metrics != nil {
		router.Method(http.MethodGet, "/metrics", metrics)
	}

	router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.openSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.closeSession)
			r.Get("/export.xlsx", s.exportSession)
			r.Get("/rows/current", s.serveCurrent)
			r.Get("/rows/{row}", s.serveRow)
			r.Post("/rows/{row}", s.submitRow)
		})
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("API server starting", "addr", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	p := s.manager.Policy()
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":               "annotator",
		"sessions":            len(s.manager.List()),
		"progress_source":     p.Progress.String(),
		"write_policy":        p.Write.String(),
		"advance_on_navigate": p.AdvanceOnNavigate,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
