package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aretw0/historyviewer"
	"github.com/aretw0/historyviewer/internal/logging"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/aretw0/historyviewer/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Viewer defines the history viewer operations served over HTTP.
type Viewer interface {
	Dispatch(ctx context.Context, sessionID string, actions ...domain.Action) (domain.CompareSelection, error)
	Selection(ctx context.Context, sessionID string) (domain.CompareSelection, error)
	Subscribe(sessionID string) (<-chan session.Update, func())
	Reset(ctx context.Context, sessionID string) error
	Versions(ctx context.Context, ref domain.RecordRef) ([]*domain.Version, error)
	Version(ctx context.Context, ref domain.RecordRef, version int) (*domain.Version, error)
	Detail(ctx context.Context, ref domain.RecordRef, version int) (*domain.VersionForm, error)
	Compare(ctx context.Context, ref domain.RecordRef, from, to int) (*domain.Comparison, error)
	Transform(ctx context.Context, fields []domain.Field, source any) ([]domain.Field, error)
}

var _ Viewer = (*historyviewer.Viewer)(nil)

// errBadRequest marks malformed requests.
var errBadRequest = errors.New("bad request")

// Server serves a Viewer over HTTP.
type Server struct {
	Viewer  Viewer
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger (default: JSON to stderr).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler exposes h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the viewer.
func NewHandler(viewer Viewer, opts ...Option) http.Handler {
	server := &Server{Viewer: viewer}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = logging.NewJSON(os.Stderr, slog.LevelInfo)
	}

	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if server.metrics != nil {
		r.Handle("/metrics", server.metrics)
	}

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/sessions/{id}/selection", server.GetSelection)
	r.Delete("/sessions/{id}/selection", server.DeleteSelection)
	r.Post("/sessions/{id}/selection/actions", server.DispatchActions)
	r.Get("/events", server.SubscribeEvents)
	r.Post("/diff", server.DiffFields)
	r.Get("/records/{class}/{id}/versions", server.ListVersions)
	r.Get("/records/{class}/{id}/versions/{version}", server.GetVersion)
	r.Get("/records/{class}/{id}/compare", server.CompareVersions)

	return enableCORS(r)
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

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>History Viewer API Documentation</title>
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

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Error("OpenAPI spec unavailable", "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "historyviewer-http",
		"version":     strings.TrimSpace(historyviewer.Version),
		"api_version": apiVersion,
	})
}

// GetSelection handles the GET /sessions/{id}/selection request.
func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	sel, err := s.Viewer.Selection(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, mapSelection(sessionID, sel))
}

// DeleteSelection handles the DELETE /sessions/{id}/selection request.
func (s *Server) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	if err := s.Viewer.Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DispatchActions handles the POST /sessions/{id}/selection/actions request.
func (s *Server) DispatchActions(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var body DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return
	}
	if len(body.Actions) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: no actions", errBadRequest))
		return
	}

	actions := make([]domain.Action, 0, len(body.Actions))
	for _, env := range body.Actions {
		if body.Record != nil && env.Version != nil {
			resolved, err := s.Viewer.Version(r.Context(), *body.Record, env.Version.Version)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			env.Version = resolved
		}
		a, err := env.Action()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		actions = append(actions, a)
	}

	sel, err := s.Viewer.Dispatch(r.Context(), sessionID, actions...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("Selection updated", "session_id", sessionID, "phase", sel.Phase(), "actions", len(actions))
	s.respond(w, http.StatusOK, mapSelection(sessionID, sel))
}

// DiffFields handles the POST /diff request.
func (s *Server) DiffFields(w http.ResponseWriter, r *http.Request) {
	var body DiffRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return
	}
	fields, err := domain.FieldsOf(body.Fields)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	out, err := s.Viewer.Transform(r.Context(), fields, body.Comparison)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, FieldsResponse{Fields: domain.SpecsOf(out)})
}

// ListVersions handles the GET /records/{class}/{id}/versions request.
func (s *Server) ListVersions(w http.ResponseWriter, r *http.Request) {
	ref := recordRef(r)

	var sessionID string
	if err := runtime.BindQueryParameter("form", true, false, "session_id", r.URL.Query(), &sessionID); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	versions, err := s.Viewer.Versions(r.Context(), ref)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var sel domain.CompareSelection
	if sessionID != "" {
		if sel, err = s.Viewer.Selection(r.Context(), sessionID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.respond(w, http.StatusOK, mapRows(versions, sel))
}

// GetVersion handles the GET /records/{class}/{id}/versions/{version} request.
func (s *Server) GetVersion(w http.ResponseWriter, r *http.Request) {
	var version int
	err := runtime.BindStyledParameterWithOptions("simple", "version", chi.URLParam(r, "version"), &version,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	form, err := s.Viewer.Detail(r.Context(), recordRef(r), version)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, mapDetail(form))
}

// CompareVersionsParams are the query parameters of the compare request.
type CompareVersionsParams struct {
	From int `form:"from" json:"from"`
	To   int `form:"to" json:"to"`
}

// CompareVersions handles the GET /records/{class}/{id}/compare request.
func (s *Server) CompareVersions(w http.ResponseWriter, r *http.Request) {
	var params CompareVersionsParams
	if err := runtime.BindQueryParameter("form", true, true, "from", r.URL.Query(), &params.From); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "to", r.URL.Query(), &params.To); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	cmp, err := s.Viewer.Compare(r.Context(), recordRef(r), params.From, params.To)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, mapComparison(cmp))
}

func recordRef(r *http.Request) domain.RecordRef {
	return domain.RecordRef{Class: chi.URLParam(r, "class"), ID: chi.URLParam(r, "id")}
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// writeError maps domain errors to status codes. A missing comparison value
// answers 422 and names the field; no partial field tree is returned.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := ErrorResponse{Error: err.Error()}

	var missing *domain.MissingComparisonDataError
	switch {
	case errors.As(err, &missing):
		status = http.StatusUnprocessableEntity
		body.Field = missing.Field
	case errors.Is(err, domain.ErrInvalidComparisonData),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrVersionNotFound):
		status = http.StatusNotFound
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	s.respond(w, status, body)
}
