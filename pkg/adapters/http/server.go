package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/kiteflow"
	"github.com/aretw0/kiteflow/internal/dto"
	"github.com/aretw0/kiteflow/internal/presentation/graph"
	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/runner"
)

const maxBodyBytes = 1 << 20

// Server exposes one engine over HTTP.
type Server struct {
	Engine  *kiteflow.Engine
	Metrics http.Handler
	Logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine *kiteflow.Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine, Logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/events", s.PostEvent)
	r.Get("/events", s.GetManifest)
	r.Get("/graph", s.GetGraph)
	r.Get("/healthz", s.GetHealth)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PostEvent handles the POST /events request.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	var body dto.DispatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("PostEvent: Invalid request body", "error", err)
		return
	}
	event, err := body.Event()
	if err == nil {
		// Sanitize Input (Global Policy)
		event, err = runner.SanitizeEvent(event)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid event: %v", err), http.StatusBadRequest)
		s.Logger.Warn("PostEvent: Event rejected", "error", err)
		return
	}

	res, resp := s.Engine.Dispatch(r.Context(), event)
	writeJSON(w, statusFor(resp), dto.NewDispatchResponse(res, resp), s.Logger)
}

// statusFor maps a dispatch outcome to a status code.
// Unhandled events are 404, evaluation failures 422.
func statusFor(resp domain.EventResponse) int {
	if resp.Success {
		return http.StatusOK
	}
	switch resp.Error.Code {
	case domain.CodeNoHandler:
		return http.StatusNotFound
	case domain.CodeRecursionLimit, domain.CodeUnimplementedMode:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// GetManifest handles the GET /events request.
func (s *Server) GetManifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.NewManifest(s.Engine), s.Logger)
}

// GetGraph handles the GET /graph request.
// The default is a Mermaid diagram; format=json returns the flow document.
// visited (comma separated ids) and failed highlight nodes.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("format") == "json" {
		writeJSON(w, http.StatusOK, s.Engine.Flow(), s.Logger)
		return
	}

	var overlay *graph.GraphOverlay
	if visited, failed := q.Get("visited"), q.Get("failed"); visited != "" || failed != "" {
		overlay = &graph.GraphOverlay{FailedNode: failed}
		for _, id := range strings.Split(visited, ",") {
			if id = strings.TrimSpace(id); id != "" {
				overlay.VisitedNodes = append(overlay.VisitedNodes, id)
			}
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(graph.GenerateMermaid(s.Engine.Flow(), overlay))); err != nil {
		s.Logger.Error("GetGraph write failed", "error", err)
	}
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": strings.TrimSpace(kiteflow.Version),
	}, s.Logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logger.Info("shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}
