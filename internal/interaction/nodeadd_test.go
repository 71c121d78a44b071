package interaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/easel/internal/machine"
	"github.com/aretw0/easel/pkg/domain"
)

func TestNodeAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("ghost follows the pointer and commits on placement", func(t *testing.T) {
		m, rec := newTestManager(t, Config{Diagram: dragCanvas(t), Edits: &editStub{session: openSession()}})
		g := m.Diagram().Graph

		ghost, err := m.BeginNodeAdd(ctx, "cache", "redis", domain.Point{X: 500, Y: 300})
		require.NoError(t, err)
		require.NotNil(t, ghost)
		assert.True(t, ghost.Placeholder)
		assert.Equal(t, ghost.ID, m.PendingNode())
		// Centered under the cursor: screen (500,300) is scene (300,200).
		assert.Equal(t, domain.Point{X: 220, Y: 150}, ghost.Position())
		assert.Equal(t, machine.NodeAddActivated, m.State())

		m.PointerMove(ctx, at(520, 320))
		assert.Equal(t, domain.Point{X: 220, Y: 150}, ghost.Position())
		m.PointerMove(ctx, at(540, 340))
		assert.Equal(t, domain.Point{X: 240, Y: 170}, ghost.Position())

		m.PointerDown(ctx, at(600, 400))

		assert.False(t, ghost.Placeholder)
		assert.Equal(t, domain.Point{X: 270, Y: 200}, ghost.Position())
		require.Len(t, rec.added, 1)
		assert.Equal(t, ghost.ID, rec.added[0].NodeID)
		assert.Equal(t, "cache", rec.added[0].NodeName)
		assert.Equal(t, "redis", rec.added[0].NodeType)
		assert.Equal(t, domain.Point{X: 270, Y: 200}, rec.added[0].Position)
		assert.Equal(t, machine.Idle, m.State())
		assert.Empty(t, m.PendingNode())

		// Placement never auto-selects.
		assert.Empty(t, m.Selection().Selected(domain.ScopeRoot))
		assert.Empty(t, rec.selected)

		kept, ok := g.Node(ghost.ID)
		require.True(t, ok)
		assert.False(t, kept.Placeholder)
	})

	t.Run("placement press is consumed even over a node", func(t *testing.T) {
		m, rec := newTestManager(t, Config{Diagram: dragCanvas(t), Edits: &editStub{session: openSession()}})

		_, err := m.BeginNodeAdd(ctx, "cache", "redis", domain.Point{X: 600, Y: 400})
		require.NoError(t, err)

		m.PointerDown(ctx, at(110, 120)) // over the web node

		require.Len(t, rec.added, 1)
		assert.Empty(t, rec.selected)
		assert.Empty(t, m.Selection().Selected(domain.ScopeRoot))
		assert.Equal(t, machine.Idle, m.State())
	})

	t.Run("begin requires an idle machine", func(t *testing.T) {
		m, _ := newTestManager(t, Config{Diagram: dragCanvas(t), Edits: &editStub{session: openSession()}})
		m.PointerDown(ctx, at(110, 120))
		require.Equal(t, machine.DraggingActivated, m.State())

		_, err := m.BeginNodeAdd(ctx, "cache", "redis", domain.Point{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "gesture is active")
	})

	t.Run("begin without a session returns the sentinel", func(t *testing.T) {
		m, rec := newTestManager(t, Config{Diagram: dragCanvas(t)})

		_, err := m.BeginNodeAdd(ctx, "cache", "redis", domain.Point{})

		require.ErrorIs(t, err, domain.ErrNoEditSession)
		assert.Equal(t, []string{domain.PulseNoSession}, rec.pulseReasons())
		assert.Equal(t, machine.Idle, m.State())
	})

	t.Run("cancel removes the ghost", func(t *testing.T) {
		m, rec := newTestManager(t, Config{Diagram: dragCanvas(t), Edits: &editStub{session: openSession()}})
		g := m.Diagram().Graph

		ghost, err := m.BeginNodeAdd(ctx, "cache", "redis", domain.Point{X: 600, Y: 400})
		require.NoError(t, err)

		assert.True(t, m.CancelNodeAdd(ctx))
		_, ok := g.Node(ghost.ID)
		assert.False(t, ok)
		assert.Equal(t, machine.Idle, m.State())
		assert.Empty(t, rec.added)

		assert.False(t, m.CancelNodeAdd(ctx))
	})

	t.Run("expired session rejects placement and cancels at release", func(t *testing.T) {
		edits := &editStub{session: openSession()}
		m, rec := newTestManager(t, Config{Diagram: dragCanvas(t), Edits: edits})
		g := m.Diagram().Graph

		ghost, err := m.BeginNodeAdd(ctx, "cache", "redis", domain.Point{X: 600, Y: 400})
		require.NoError(t, err)
		edits.session.Status = domain.EditSessionSaved

		m.PointerDown(ctx, at(600, 400))
		assert.Contains(t, rec.pulseReasons(), domain.PulseNoSession)
		assert.Equal(t, machine.NodeAddActivated, m.State())

		m.PointerUp(ctx, at(600, 400))
		_, ok := g.Node(ghost.ID)
		assert.False(t, ok)
		assert.Empty(t, rec.added)
		assert.Equal(t, machine.Idle, m.State())
	})
}
