package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/dsl"
)

func testServer(t *testing.T, opts ...easel.Option) *Server {
	t.Helper()
	b := dsl.New("checkout")
	b.Node("api").Named("API").Typed("service").At(40, 60).Output("api-out", 152, 42)
	b.Node("db").Named("Database").Typed("postgres").At(400, 60).Input("db-in", -8, 42)
	b.Connect("api-out", "db-in")
	loader, err := b.Loader()
	require.NoError(t, err)

	eng, err := easel.New("", append([]easel.Option{easel.WithLoader(loader)}, opts...)...)
	require.NoError(t, err)
	return NewServer(eng)
}

func point(x, y float64) map[string]interface{} {
	return map[string]interface{}{"x": x, "y": y}
}

func TestPointerToolsDriveDrag(t *testing.T) {
	ctx := context.Background()
	s := testServer(t)

	_, err := s.engine.OpenSession(ctx, "edit", "")
	require.NoError(t, err)

	resp, err := s.handlePointerDown(ctx, mcp.CallToolRequest{}, point(110, 110))
	require.NoError(t, err)
	assert.Equal(t, "dragging-activated", resp.State)
	assert.True(t, resp.Editing)

	_, err = s.handlePointerMove(ctx, mcp.CallToolRequest{}, point(120, 110))
	require.NoError(t, err)
	resp, err = s.handlePointerUp(ctx, mcp.CallToolRequest{}, point(150, 110))
	require.NoError(t, err)
	assert.Equal(t, "idle", resp.State)

	snap := s.snapshot()
	require.NotEmpty(t, snap.Nodes)
	assert.Equal(t, 80.0, snap.Nodes[0].Position.X)
	assert.Equal(t, 60.0, snap.Nodes[0].Position.Y)
}

func TestHandleZoom(t *testing.T) {
	ctx := context.Background()
	s := testServer(t)

	resp, err := s.handleZoom(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"x": 0.0, "y": 0.0, "magnitude": 100.0,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, resp.Zoom, 1e-9)
}

func TestHandleBeginNodeAdd(t *testing.T) {
	ctx := context.Background()
	s := testServer(t)

	args := map[string]interface{}{"name": "cache", "type": "redis", "x": 300.0, "y": 200.0}

	_, err := s.handleBeginNodeAdd(ctx, mcp.CallToolRequest{}, args)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoEditSession))

	_, err = s.engine.OpenSession(ctx, "edit", "")
	require.NoError(t, err)

	resp, err := s.handleBeginNodeAdd(ctx, mcp.CallToolRequest{}, args)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.NodeID)
	assert.Equal(t, "node-add-activated", resp.State)

	state, err := s.handlePointerDown(ctx, mcp.CallToolRequest{}, point(300, 200))
	require.NoError(t, err)
	assert.Equal(t, "idle", state.State)

	snap := s.snapshot()
	require.Len(t, snap.Nodes, 3)
	placed := snap.Nodes[2]
	assert.Equal(t, "cache", placed.Name)
	assert.Equal(t, 220.0, placed.Position.X)
	assert.Equal(t, 150.0, placed.Position.Y)
}

func TestSnapshotShape(t *testing.T) {
	s := testServer(t)

	snap := s.snapshot()

	assert.Equal(t, "checkout", snap.Name)
	assert.Equal(t, domain.DiagramKindComponent, snap.Kind)
	assert.Equal(t, "idle", snap.State)
	assert.Equal(t, 1.0, snap.Zoom)
	assert.Empty(t, snap.Selected)

	require.Len(t, snap.Nodes, 2)
	api := snap.Nodes[0]
	assert.Equal(t, "api", api.ID)
	require.Len(t, api.Sockets, 1)
	assert.Equal(t, 200.0, api.Sockets[0].Anchor.X)
	assert.Equal(t, 110.0, api.Sockets[0].Anchor.Y)

	require.Len(t, snap.Edges, 1)
	assert.Equal(t, "api-out", snap.Edges[0].FromSocket)
	assert.Equal(t, "db-in", snap.Edges[0].ToSocket)
}
