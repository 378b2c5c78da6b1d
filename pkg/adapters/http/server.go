// Package http exposes notebooks over HTTP: a JSON command endpoint speaking
// the protocol envelope, a Mermaid graph view, a Server-Sent Events stream of
// notebook diffs and Prometheus metrics.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/cado"
	"github.com/aretw0/cado/internal/logging"
	"github.com/aretw0/cado/internal/presentation/graph"
	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/protocol"
	"github.com/aretw0/cado/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize bounds command payloads.
const maxBodySize = 1 << 20

// Server serves the notebooks of a session manager.
type Server struct {
	Manager  *session.Manager
	Streams  *StreamManager
	protocol *protocol.Handler
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams shares a StreamManager, typically one already registered as
// an observer of the manager with session.WithObserver(streams.Observe).
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.Streams = streams
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates a Server. Without WithStreams the events endpoint gets a
// private StreamManager that nothing publishes to.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		Manager:  mgr,
		protocol: protocol.NewHandler(mgr),
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// NewHandler creates the HTTP handler for the notebooks served by mgr.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	return NewServer(mgr, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/notebooks", func(r chi.Router) {
		r.Get("/", s.ListNotebooks)
		r.Post("/", s.CreateNotebook)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetNotebook)
			r.Delete("/", s.DeleteNotebook)
			r.Post("/commands", s.PostCommand)
			r.Get("/graph", s.GetGraph)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":            "cado-http",
		"version":        cado.Version,
		"schema_version": domain.SchemaVersion,
	})
}

// ListNotebooks handles the GET /notebooks request.
func (s *Server) ListNotebooks(w http.ResponseWriter, r *http.Request) {
	details, err := s.Manager.Details(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, details)
}

type createRequest struct {
	Name string `json:"name"`
}

// CreateNotebook handles the POST /notebooks request.
func (s *Server) CreateNotebook(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, errors.Join(protocol.ErrInvalidMessage, err))
		return
	}
	nb, err := s.Manager.Create(r.Context(), body.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, nb)
}

// GetNotebook handles the GET /notebooks/{id} request.
func (s *Server) GetNotebook(w http.ResponseWriter, r *http.Request) {
	nb, err := s.Manager.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nb)
}

// DeleteNotebook handles the DELETE /notebooks/{id} request.
func (s *Server) DeleteNotebook(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostCommand handles the POST /notebooks/{id}/commands request.
// The body is a protocol message; the reply is a protocol response whose
// HTTP status reflects its error kind.
func (s *Server) PostCommand(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cmd, err := protocol.Parse(data)
	if err != nil {
		s.writeJSON(w, statusFor(err), protocol.ErrorResponse(err, nil))
		return
	}

	id := chi.URLParam(r, "id")
	resp := s.protocol.Execute(r.Context(), id, cmd)
	status := http.StatusOK
	if resp.Type == protocol.TypeErrorResponse {
		status = statusForKind(resp.Kind)
		s.logger.Debug("command failed", "notebook", id, "type", cmd.Type(), "kind", resp.Kind, "err", resp.Error)
	}
	s.writeJSON(w, status, resp)
}

// GetGraph handles the GET /notebooks/{id}/graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	nb, err := s.Manager.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(nb, graph.Options{
		Highlight: r.URL.Query().Get("highlight"),
		ShowCode:  r.URL.Query().Get("code") == "true",
	}))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, protocol.ErrorResponse(err, nil))
}
