package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/presentation/graph"
	"github.com/aretw0/easel/pkg/catalog"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/scene"
)

type pointerEvent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wheelEvent struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Magnitude float64 `json:"magnitude"`
}

type panRequest struct {
	Active bool `json:"active"`
}

type nodeAddRequest struct {
	Entry string  `json:"entry"`
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type nodeAddResponse struct {
	NodeID string `json:"node_id"`
	State  string `json:"state"`
}

type openSessionRequest struct {
	Name string `json:"name"`
	Note string `json:"note"`
}

type scopeRequest struct {
	NodeID string `json:"node_id"`
}

func (s *Server) pointerDown(w http.ResponseWriter, r *http.Request) {
	var ev pointerEvent
	if err := decode(r, &ev); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.Engine.PointerDown(r.Context(), domain.Point{X: ev.X, Y: ev.Y})
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) pointerMove(w http.ResponseWriter, r *http.Request) {
	var ev pointerEvent
	if err := decode(r, &ev); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.Engine.PointerMove(r.Context(), domain.Point{X: ev.X, Y: ev.Y})
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) pointerUp(w http.ResponseWriter, r *http.Request) {
	var ev pointerEvent
	if err := decode(r, &ev); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.Engine.PointerUp(r.Context(), domain.Point{X: ev.X, Y: ev.Y})
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) wheel(w http.ResponseWriter, r *http.Request) {
	var ev wheelEvent
	if err := decode(r, &ev); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.Engine.Wheel(r.Context(), domain.Point{X: ev.X, Y: ev.Y}, ev.Magnitude)
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) pan(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Active {
		s.Engine.ActivatePanning()
	} else {
		s.Engine.DeactivatePanning()
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) beginNodeAdd(w http.ResponseWriter, r *http.Request) {
	var req nodeAddRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	at := domain.Point{X: req.X, Y: req.Y}

	var node *scene.Node
	var err error
	if req.Entry != "" {
		if c := s.Engine.Catalog(); c != nil {
			if _, ok := c.Get(req.Entry); !ok {
				http.Error(w, fmt.Sprintf("catalog entry %q not found", req.Entry), http.StatusNotFound)
				return
			}
		}
		node, err = s.Engine.AddFromCatalog(r.Context(), req.Entry, at)
	} else {
		if req.Name == "" {
			http.Error(w, "entry or name required", http.StatusBadRequest)
			return
		}
		node, err = s.Engine.BeginNodeAdd(r.Context(), req.Name, req.Type, at)
	}
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusCreated, nodeAddResponse{NodeID: node.ID, State: s.Engine.State()})
}

func (s *Server) cancelNodeAdd(w http.ResponseWriter, r *http.Request) {
	s.Engine.CancelNodeAdd(r.Context())
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) disconnectEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.DisconnectEdge(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) restoreEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.RestoreEdge(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getDiagram(w http.ResponseWriter, r *http.Request) {
	// The facade getters each take the engine lock, so gather the scalar
	// state first and keep the snapshot closure to the tree walk.
	scope := s.Engine.DeploymentNode()
	selected := s.Engine.Selection().Selected(scope)

	if r.URL.Query().Get("format") == "mermaid" {
		var out string
		s.Engine.Snapshot(func(d *scene.Diagram) {
			out = graph.GenerateMermaid(d, &graph.Overlay{Selected: selected, Focus: scope})
		})
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, out)
		return
	}

	state := s.Engine.State()
	pending := s.Engine.PendingNode()

	var dto diagramDTO
	s.Engine.Snapshot(func(d *scene.Diagram) {
		dto = buildDiagram(d, scope, selected)
	})
	dto.State = state
	dto.PendingNode = pending
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) searchCatalog(w http.ResponseWriter, r *http.Request) {
	c := s.Engine.Catalog()
	if c == nil {
		http.Error(w, "no catalog configured", http.StatusNotFound)
		return
	}
	entries := c.Search(r.URL.Query().Get("q"))
	if entries == nil {
		entries = []catalog.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) setScope(w http.ResponseWriter, r *http.Request) {
	var req scopeRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Engine.SetDeploymentNode(req.NodeID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrNodeNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.Engine.Sessions(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if sessions == nil {
		sessions = []*domain.EditSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sess, err := s.Engine.OpenSession(r.Context(), req.Name, req.Note)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Engine.SaveSession(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) cancelSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Engine.CancelSession(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) resumeSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Engine.ResumeSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]string{
		"name":    "easel",
		"version": easel.Version,
	}
	if s.spec != nil && s.spec.Info != nil {
		info["api_version"] = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) state() engineState {
	return engineState{
		State:       s.Engine.State(),
		Zoom:        s.Engine.ZoomFactor(),
		PendingNode: s.Engine.PendingNode(),
		Kind:        s.Engine.DiagramKind(),
		Scope:       s.Engine.DeploymentNode(),
		Editing:     s.Engine.EditingActive(),
	}
}

// statusFor maps the domain sentinels onto HTTP statuses. Session, lock and
// gesture conflicts are 409s; missing elements are 404s.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoEditSession),
		errors.Is(err, domain.ErrSessionActive),
		errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, domain.ErrGestureActive),
		errors.Is(err, domain.ErrDuplicateEdge),
		errors.Is(err, ports.ErrLockHeld):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrEdgeNotFound),
		errors.Is(err, domain.ErrSocketNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
