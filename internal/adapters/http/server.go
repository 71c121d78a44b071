// Package http exposes the interaction engine over a REST surface: pointer
// endpoints feed the gesture machine, the diagram snapshot reflects committed
// mutations, and server-sent events stream interaction hooks to canvases.
package http

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/easel/pkg/catalog"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/observability"
	"github.com/aretw0/easel/pkg/scene"
)

//go:embed openapi.yaml
var specYAML []byte

// Engine defines the interface for the Easel interaction core.
type Engine interface {
	PointerDown(ctx context.Context, at domain.Point)
	PointerMove(ctx context.Context, at domain.Point)
	PointerUp(ctx context.Context, at domain.Point)
	Wheel(ctx context.Context, at domain.Point, magnitude float64)
	ActivatePanning() bool
	DeactivatePanning() bool
	BeginNodeAdd(ctx context.Context, name, nodeType string, at domain.Point) (*scene.Node, error)
	AddFromCatalog(ctx context.Context, entryName string, at domain.Point) (*scene.Node, error)
	CancelNodeAdd(ctx context.Context) bool
	DisconnectEdge(ctx context.Context, id string) error
	RestoreEdge(ctx context.Context, id string) error
	OpenSession(ctx context.Context, name, note string) (*domain.EditSession, error)
	SaveSession(ctx context.Context) (*domain.EditSession, error)
	CancelSession(ctx context.Context) (*domain.EditSession, error)
	ResumeSession(ctx context.Context, id string) (*domain.EditSession, error)
	Sessions(ctx context.Context) ([]*domain.EditSession, error)
	EditingActive() bool
	SetDeploymentNode(id string) error
	DeploymentNode() string
	DiagramKind() string
	State() string
	PendingNode() string
	ZoomFactor() float64
	Selection() *scene.Selection
	Snapshot(fn func(*scene.Diagram))
	Catalog() *catalog.Catalog
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Server holds the engine and the event stream behind the routes.
type Server struct {
	Engine Engine
	Stream *observability.Stream

	spec *openapi3.T
}

// Option configures the handler.
type Option func(*Server)

// WithStream attaches an event stream whose envelopes back GET /events.
// Without one, /events falls back to the engine's reload watcher.
func WithStream(s *observability.Stream) Option {
	return func(srv *Server) {
		srv.Stream = s
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{Engine: engine}
	for _, opt := range opts {
		opt(server)
	}

	spec, err := loadSpec()
	if err != nil {
		// Serve anyway; /openapi.yaml still returns the raw document.
		slog.Error("openapi document invalid", "error", err)
	}
	server.spec = spec

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(specYAML)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Route("/pointer", func(r chi.Router) {
		r.Post("/down", server.pointerDown)
		r.Post("/move", server.pointerMove)
		r.Post("/up", server.pointerUp)
	})
	r.Post("/wheel", server.wheel)
	r.Post("/pan", server.pan)

	r.Post("/nodes/pending", server.beginNodeAdd)
	r.Delete("/nodes/pending", server.cancelNodeAdd)
	r.Post("/edges/{id}/disconnect", server.disconnectEdge)
	r.Post("/edges/{id}/restore", server.restoreEdge)

	r.Get("/diagram", server.getDiagram)
	r.Get("/state", server.getState)
	r.Get("/catalog", server.searchCatalog)
	r.Post("/scope", server.setScope)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", server.listSessions)
		r.Post("/", server.openSession)
		r.Post("/current/save", server.saveSession)
		r.Post("/current/cancel", server.cancelSession)
		r.Post("/{id}/resume", server.resumeSession)
	})

	r.Get("/events", server.subscribeEvents)
	r.Get("/healthz", server.getHealth)
	r.Get("/info", server.getInfo)

	return enableCORS(r)
}

// loadSpec parses and validates the embedded OpenAPI document.
func loadSpec() (*openapi3.T, error) {
	ctx := context.Background()
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}
	return doc, nil
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
    <title>Easel API Documentation</title>
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
