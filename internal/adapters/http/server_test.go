package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/pkg/catalog"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/dsl"
	"github.com/aretw0/easel/pkg/observability"
)

// checkoutEngine builds an engine around a two-node diagram. The api node
// spans (40,60)-(200,160) with an output socket centered at (200,110); the
// db node spans (400,60)-(560,160) with an input socket centered at
// (400,110).
func checkoutEngine(t *testing.T, connect bool, opts ...easel.Option) *easel.Engine {
	t.Helper()
	b := dsl.New("checkout")
	b.Node("api").Named("API").Typed("service").At(40, 60).Output("api-out", 152, 42)
	b.Node("db").Named("Database").Typed("postgres").At(400, 60).Input("db-in", -8, 42)
	if connect {
		b.Connect("api-out", "db-in")
	}
	loader, err := b.Loader()
	require.NoError(t, err)

	eng, err := easel.New("", append([]easel.Option{easel.WithLoader(loader)}, opts...)...)
	require.NoError(t, err)
	return eng
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func openSession(t *testing.T, handler http.Handler) {
	t.Helper()
	w := doJSON(t, handler, "POST", "/sessions", openSessionRequest{Name: "edit"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func getDiagram(t *testing.T, handler http.Handler) diagramDTO {
	t.Helper()
	w := doJSON(t, handler, "GET", "/diagram", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dto diagramDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	return dto
}

func TestGetHealth(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))

	w := doJSON(t, handler, "GET", "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))

	w := doJSON(t, handler, "GET", "/info", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "easel", resp["name"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, "0.1.0", resp["api_version"])
}

func TestOpenAPIDocument(t *testing.T) {
	doc, err := loadSpec()
	require.NoError(t, err)
	assert.Equal(t, "Easel Interaction API", doc.Info.Title)

	handler := NewHandler(checkoutEngine(t, false))

	w := doJSON(t, handler, "GET", "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Easel Interaction API")

	w = doJSON(t, handler, "GET", "/swagger", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}

func TestCORSPreflight(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))

	req := httptest.NewRequest("OPTIONS", "/pointer/down", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestPointerDownSelectsWithoutSession(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))

	w := doJSON(t, handler, "POST", "/pointer/down", pointerEvent{X: 110, Y: 110})
	require.Equal(t, http.StatusOK, w.Code)

	var state engineState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "selecting-activated", state.State)
	assert.False(t, state.Editing)

	dto := getDiagram(t, handler)
	assert.Equal(t, []string{"api"}, dto.Selected)
}

func TestDragMovesNode(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))
	openSession(t, handler)

	w := doJSON(t, handler, "POST", "/pointer/down", pointerEvent{X: 110, Y: 110})
	var state engineState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "dragging-activated", state.State)
	assert.True(t, state.Editing)

	doJSON(t, handler, "POST", "/pointer/move", pointerEvent{X: 120, Y: 110})
	w = doJSON(t, handler, "POST", "/pointer/up", pointerEvent{X: 150, Y: 110})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "idle", state.State)

	dto := getDiagram(t, handler)
	for _, n := range dto.Nodes {
		if n.ID == "api" {
			assert.Equal(t, 80.0, n.Position.X)
			assert.Equal(t, 60.0, n.Position.Y)
			return
		}
	}
	t.Fatal("api node missing from snapshot")
}

func TestConnectGesture(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))
	openSession(t, handler)

	w := doJSON(t, handler, "POST", "/pointer/down", pointerEvent{X: 200, Y: 110})
	var state engineState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "connecting-activated", state.State)

	doJSON(t, handler, "POST", "/pointer/move", pointerEvent{X: 300, Y: 150})
	w = doJSON(t, handler, "POST", "/pointer/up", pointerEvent{X: 400, Y: 110})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "idle", state.State)

	dto := getDiagram(t, handler)
	require.Len(t, dto.Edges, 1)
	assert.Equal(t, "api-out", dto.Edges[0].FromSocket)
	assert.Equal(t, "db-in", dto.Edges[0].ToSocket)
	assert.False(t, dto.Edges[0].Deleted)
}

func TestDiagramSnapshotShape(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, true))

	dto := getDiagram(t, handler)

	assert.Equal(t, "checkout", dto.Name)
	assert.Equal(t, domain.DiagramKindComponent, dto.Kind)
	assert.Equal(t, "idle", dto.State)
	assert.Equal(t, 1.0, dto.Zoom)
	assert.Empty(t, dto.Selected)

	require.Len(t, dto.Nodes, 2)
	api := dto.Nodes[0]
	assert.Equal(t, "api", api.ID)
	assert.Equal(t, "API", api.Name)
	assert.Equal(t, "service", api.Type)
	assert.Empty(t, api.Parent)
	assert.Equal(t, 160.0, api.Width)
	require.Len(t, api.Sockets, 1)
	assert.Equal(t, "api-out", api.Sockets[0].ID)
	assert.Equal(t, domain.DirectionOutput, api.Sockets[0].Direction)
	assert.Equal(t, 200.0, api.Sockets[0].Anchor.X)
	assert.Equal(t, 110.0, api.Sockets[0].Anchor.Y)

	require.Len(t, dto.Edges, 1)
	assert.Equal(t, 200.0, dto.Edges[0].From.X)
	assert.Equal(t, 400.0, dto.Edges[0].To.X)
}

func TestDiagramMermaidFormat(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, true))

	w := doJSON(t, handler, "GET", "/diagram?format=mermaid", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "graph TD")
	assert.Contains(t, body, `api["API"]`)
	assert.Contains(t, body, "api --> db")
}

func TestEdgeDisconnectAndRestore(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, true))

	edgeID := getDiagram(t, handler).Edges[0].ID

	w := doJSON(t, handler, "POST", "/edges/"+edgeID+"/disconnect", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	openSession(t, handler)

	w = doJSON(t, handler, "POST", "/edges/"+edgeID+"/disconnect", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, getDiagram(t, handler).Edges[0].Deleted)

	w = doJSON(t, handler, "POST", "/edges/"+edgeID+"/restore", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, getDiagram(t, handler).Edges[0].Deleted)

	w = doJSON(t, handler, "POST", "/edges/nope/disconnect", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBeginNodeAdd(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))

	w := doJSON(t, handler, "POST", "/nodes/pending", nodeAddRequest{Name: "cache", Type: "redis", X: 300, Y: 200})
	assert.Equal(t, http.StatusConflict, w.Code)

	openSession(t, handler)

	w = doJSON(t, handler, "POST", "/nodes/pending", nodeAddRequest{Name: "cache", Type: "redis", X: 300, Y: 200})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp nodeAddResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.NodeID)
	assert.Equal(t, "node-add-activated", resp.State)

	// The placement press drops the node centered under the pointer.
	doJSON(t, handler, "POST", "/pointer/down", pointerEvent{X: 300, Y: 200})

	dto := getDiagram(t, handler)
	for _, n := range dto.Nodes {
		if n.Name == "cache" {
			assert.Equal(t, "redis", n.Type)
			assert.Equal(t, 220.0, n.Position.X)
			assert.Equal(t, 150.0, n.Position.Y)
			return
		}
	}
	t.Fatal("placed node missing from snapshot")
}

func TestCancelNodeAdd(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))
	openSession(t, handler)

	w := doJSON(t, handler, "POST", "/nodes/pending", nodeAddRequest{Name: "cache", Type: "redis", X: 300, Y: 200})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, handler, "DELETE", "/nodes/pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var state engineState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "idle", state.State)
	assert.Empty(t, state.PendingNode)

	assert.Len(t, getDiagram(t, handler).Nodes, 2)
}

func TestBeginNodeAddFromCatalog(t *testing.T) {
	cat, err := catalog.New(catalog.Entry{
		Name:     "Postgres",
		Category: "database",
		Type:     "postgres",
		Width:    180,
		Height:   120,
		Sockets:  []catalog.SocketSpec{{Name: "conn", Direction: domain.DirectionInput}},
	})
	require.NoError(t, err)

	handler := NewHandler(checkoutEngine(t, false, easel.WithCatalog(cat)))
	openSession(t, handler)

	w := doJSON(t, handler, "POST", "/nodes/pending", nodeAddRequest{Entry: "Mongo", X: 300, Y: 200})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, handler, "POST", "/nodes/pending", nodeAddRequest{Entry: "Postgres", X: 300, Y: 200})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	doJSON(t, handler, "POST", "/pointer/down", pointerEvent{X: 300, Y: 200})

	dto := getDiagram(t, handler)
	for _, n := range dto.Nodes {
		if n.Name == "Postgres" {
			assert.Equal(t, 180.0, n.Width)
			assert.Equal(t, 120.0, n.Height)
			require.Len(t, n.Sockets, 1)
			assert.Equal(t, domain.DirectionInput, n.Sockets[0].Direction)
			return
		}
	}
	t.Fatal("catalog node missing from snapshot")
}

func TestSearchCatalog(t *testing.T) {
	cat, err := catalog.New(
		catalog.Entry{Name: "Postgres", Type: "postgres", Category: "database"},
		catalog.Entry{Name: "Kafka", Type: "kafka", Category: "messaging"},
	)
	require.NoError(t, err)

	handler := NewHandler(checkoutEngine(t, false, easel.WithCatalog(cat)))

	w := doJSON(t, handler, "GET", "/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []catalog.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)

	w = doJSON(t, handler, "GET", "/catalog?q=pos", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Postgres", entries[0].Name)

	bare := NewHandler(checkoutEngine(t, false))
	w = doJSON(t, bare, "GET", "/catalog", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))

	w := doJSON(t, handler, "GET", "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sessions []domain.EditSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessions))
	assert.Empty(t, sessions)

	w = doJSON(t, handler, "POST", "/sessions", openSessionRequest{Name: "rework", Note: "swap the queue"})
	require.Equal(t, http.StatusCreated, w.Code)
	var sess domain.EditSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "rework", sess.Name)
	assert.Equal(t, domain.EditSessionOpen, sess.Status)

	w = doJSON(t, handler, "POST", "/sessions", openSessionRequest{Name: "second"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, handler, "POST", "/sessions/current/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, domain.EditSessionSaved, sess.Status)

	w = doJSON(t, handler, "POST", "/sessions/"+sess.ID+"/resume", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, domain.EditSessionOpen, sess.Status)

	w = doJSON(t, handler, "POST", "/sessions/current/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, domain.EditSessionCanceled, sess.Status)

	w = doJSON(t, handler, "POST", "/sessions/nope/resume", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetScope(t *testing.T) {
	component := NewHandler(checkoutEngine(t, false))

	w := doJSON(t, component, "POST", "/scope", scopeRequest{NodeID: "api"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	b := dsl.New("prod")
	b.Deployment()
	b.Node("cluster").Named("Cluster")
	b.Node("web").Named("Web").Under("cluster")
	loader, err := b.Loader()
	require.NoError(t, err)
	eng, err := easel.New("", easel.WithLoader(loader))
	require.NoError(t, err)
	deployment := NewHandler(eng)

	w = doJSON(t, deployment, "POST", "/scope", scopeRequest{NodeID: "cluster"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, deployment, "GET", "/state", nil)
	var state engineState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "cluster", state.Scope)
	assert.Equal(t, domain.DiagramKindDeployment, state.Kind)

	w = doJSON(t, deployment, "POST", "/scope", scopeRequest{NodeID: "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, deployment, "POST", "/scope", scopeRequest{})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestWheelZoomsView(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))

	w := doJSON(t, handler, "POST", "/wheel", wheelEvent{X: 0, Y: 0, Magnitude: 100})
	require.Equal(t, http.StatusOK, w.Code)

	var state engineState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.InDelta(t, 0.9, state.Zoom, 1e-9)
	assert.InDelta(t, 0.9, getDiagram(t, handler).Zoom, 1e-9)
}

func TestPanToggle(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))

	w := doJSON(t, handler, "POST", "/pan", panRequest{Active: true})
	var state engineState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "panning-activated", state.State)

	w = doJSON(t, handler, "POST", "/pan", panRequest{Active: false})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "idle", state.State)
}

func TestInvalidBodyRejected(t *testing.T) {
	handler := NewHandler(checkoutEngine(t, false))

	req := httptest.NewRequest("POST", "/pointer/down", strings.NewReader("{nope"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// readFrame consumes one SSE frame, returning its event name and data line.
func readFrame(t *testing.T, r *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if event != "" || data != "" {
				return event, data
			}
		}
	}
}

func postLive(t *testing.T, url string, body any) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestSubscribeEvents(t *testing.T) {
	stream := observability.NewStream()
	eng := checkoutEngine(t, false, easel.WithHooks(stream.Hooks()))
	srv := httptest.NewServer(NewHandler(eng, WithStream(stream)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, data := readFrame(t, reader)
	assert.Equal(t, "ping", event)
	assert.Equal(t, "connected", data)

	// Selecting a node publishes through the engine hooks.
	postLive(t, srv.URL+"/pointer/down", pointerEvent{X: 110, Y: 110})

	event, data = readFrame(t, reader)
	assert.Equal(t, "node_selected", event)
	assert.Contains(t, data, `"node_id":"api"`)
}

func TestSubscribeEventsFiltered(t *testing.T) {
	stream := observability.NewStream()
	eng := checkoutEngine(t, false, easel.WithHooks(stream.Hooks()))
	srv := httptest.NewServer(NewHandler(eng, WithStream(stream)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events?watch=edit_pulse")
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	event, _ := readFrame(t, reader)
	require.Equal(t, "ping", event)

	// A sessionless press emits selection and gesture events too; only the
	// pulse should get through the filter.
	postLive(t, srv.URL+"/pointer/down", pointerEvent{X: 110, Y: 110})

	event, data := readFrame(t, reader)
	assert.Equal(t, "edit_pulse", event)
	assert.Contains(t, data, domain.PulseNoSession)
}

func TestSubscribeEventsWithoutStream(t *testing.T) {
	// Memory loaders cannot watch, so the reload fallback reports as such.
	handler := NewHandler(checkoutEngine(t, false))

	w := doJSON(t, handler, "GET", "/events", nil)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
