// Package http exposes fortune sessions as a JSON API with Server-Sent Events.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/fatefinder"
	"github.com/aretw0/fatefinder/internal/i18n"
	"github.com/aretw0/fatefinder/internal/logging"
	"github.com/aretw0/fatefinder/internal/presentation/graph"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/aretw0/fatefinder/pkg/ports"
	"github.com/aretw0/fatefinder/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps request bodies; a form is a few hundred bytes.
const maxBodyBytes = 16 << 10

// Server serves the session API.
type Server struct {
	Sessions *session.Manager
	Store    ports.ResultStore

	catalog  *i18n.Catalog
	limiter  *keyLimiter
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the message catalogue used for error messages.
func WithCatalog(c *i18n.Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// WithRateLimit limits submissions per client address. Non-positive values disable it.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.limiter = newKeyLimiter(rps, burst, 10*time.Minute)
	}
}

// WithGatherer selects the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates the HTTP handler for the registry and the shared store.
func NewHandler(sessions *session.Manager, store ports.ResultStore, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		Store:    store,
		gatherer: prometheus.DefaultGatherer,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = i18n.MustLoad()
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Get("/result", s.GetSavedResult)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/start", s.StartInput)
			r.Post("/submit", s.Submit)
			r.Post("/restart", s.Restart)
			r.Post("/retry", s.Retry)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/graph", s.GetGraph)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Fatefinder API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"app":         "fatefinder-http",
		"version":     strings.TrimSpace(fatefinder.Version),
		"api_version": apiVersion,
		"sessions":    s.Sessions.Len(),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.Sessions.List()})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Create(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("session created", "session_id", sess.ID(), "remote", clientKey(r))
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID(),
		"state":      snap,
	})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.Snapshot(r.Context())
	s.respond(w, r, http.StatusOK, snap, err)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartInput handles POST /sessions/{id}/start.
func (s *Server) StartInput(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.StartInput(r.Context())
	s.respond(w, r, http.StatusOK, snap, err)
}

// Restart handles POST /sessions/{id}/restart.
func (s *Server) Restart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.Restart(r.Context())
	s.respond(w, r, http.StatusOK, snap, err)
}

// Retry handles POST /sessions/{id}/retry.
func (s *Server) Retry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.Retry(r.Context())
	s.respond(w, r, http.StatusOK, snap, err)
}

// Submit handles POST /sessions/{id}/submit.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if !s.limiter.Allow(clientKey(r), s.now()) {
		s.logger.Warn("submit rate limited", "session_id", sess.ID(), "remote", clientKey(r))
		s.writeError(w, r, http.StatusTooManyRequests, "rate_limited", s.localizer(r).T(i18n.ErrorRateLimited), nil)
		return
	}

	var form domain.Form
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&form); err != nil {
		s.logger.Warn("Submit: invalid request body", "err", err)
		s.writeError(w, r, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}

	snap, err := sess.Submit(r.Context(), form)
	s.respond(w, r, http.StatusAccepted, snap, err)
}

// GetGraph handles GET /sessions/{id}/graph with the current screen highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(graph.GenerateMermaid(domain.Transitions, &graph.Overlay{Current: snap.Screen})))
}

// GetSavedResult handles GET /result.
func (s *Server) GetSavedResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.Store.Load(r.Context(), domain.SavedResultsKey)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// session resolves the {id} path parameter or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*fatefinder.Session, bool) {
	sess, err := s.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, snap domain.Snapshot, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, snap)
}

// fail maps domain errors onto status codes with a localised message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	loc := s.localizer(r)
	msg := loc.Error(err)

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		s.writeError(w, r, http.StatusUnprocessableEntity, "validation_failed", msg, ve)
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionClosed):
		s.writeError(w, r, http.StatusNotFound, "session_not_found", msg, nil)
	case errors.Is(err, domain.ErrResultNotFound):
		s.writeError(w, r, http.StatusNotFound, "result_not_found", loc.T(i18n.ResultNoneSaved), nil)
	case errors.Is(err, domain.ErrRequestInFlight):
		s.writeError(w, r, http.StatusConflict, "request_in_flight", msg, nil)
	case domain.IsTransitionError(err):
		s.writeError(w, r, http.StatusConflict, "transition_not_allowed", msg, nil)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal", msg, nil)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string, ve *domain.ValidationError) {
	body := map[string]any{"error": code, "message": msg}
	if ve != nil {
		body["validation"] = ve
	}
	writeJSON(w, status, body)
}

func (s *Server) localizer(r *http.Request) *i18n.Localizer {
	return s.catalog.Localizer(r.Header.Get("Accept-Language"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

// clientKey identifies the caller for rate limiting.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
