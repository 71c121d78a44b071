package interaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/easel/internal/machine"
	"github.com/aretw0/easel/pkg/domain"
)

func TestDragGesture(t *testing.T) {
	ctx := context.Background()

	t.Run("release commits the zoom-scaled displacement", func(t *testing.T) {
		m, rec := newTestManager(t, Config{Diagram: dragCanvas(t), Edits: &editStub{session: openSession()}})
		web, _ := m.Diagram().Graph.Node("web")

		// 40 screen pixels at 2x zoom is 20 scene units.
		m.PointerDown(ctx, at(100, 100))
		m.PointerMove(ctx, at(140, 100))
		m.PointerUp(ctx, at(140, 100))

		assert.Equal(t, domain.Point{X: 120, Y: 100}, web.Position())
		require.Len(t, rec.moved, 1)
		assert.Equal(t, "web", rec.moved[0].NodeID)
		assert.Equal(t, domain.Point{X: 120, Y: 100}, rec.moved[0].Position)
		assert.Equal(t, machine.Idle, m.State())
	})

	t.Run("per-move tracking starts on the second sample", func(t *testing.T) {
		m, _ := newTestManager(t, Config{Diagram: dragCanvas(t), Edits: &editStub{session: openSession()}})
		web, _ := m.Diagram().Graph.Node("web")

		m.PointerDown(ctx, at(110, 120))
		m.PointerMove(ctx, at(130, 120))
		assert.Equal(t, machine.DraggingInitiated, m.State())
		assert.Equal(t, domain.Point{X: 100, Y: 100}, web.Position())

		m.PointerMove(ctx, at(150, 120))
		assert.Equal(t, machine.Dragging, m.State())
		assert.Equal(t, domain.Point{X: 120, Y: 100}, web.Position())

		m.PointerUp(ctx, at(170, 120))
		assert.Equal(t, domain.Point{X: 130, Y: 100}, web.Position())
		assert.Equal(t, machine.Idle, m.State())
	})

	t.Run("click without movement stays put", func(t *testing.T) {
		m, rec := newTestManager(t, Config{Diagram: dragCanvas(t), Edits: &editStub{session: openSession()}})
		web, _ := m.Diagram().Graph.Node("web")

		m.PointerDown(ctx, at(110, 120))
		m.PointerUp(ctx, at(110, 120))

		assert.Equal(t, domain.Point{X: 100, Y: 100}, web.Position())
		assert.Empty(t, rec.moved)
		assert.Equal(t, machine.Idle, m.State())
	})

	t.Run("session expiry between press and release drops the commit", func(t *testing.T) {
		edits := &editStub{session: openSession()}
		m, rec := newTestManager(t, Config{Diagram: dragCanvas(t), Edits: edits})
		web, _ := m.Diagram().Graph.Node("web")

		m.PointerDown(ctx, at(110, 120))
		m.PointerMove(ctx, at(130, 120))
		edits.session.Status = domain.EditSessionSaved

		m.PointerMove(ctx, at(150, 120))
		m.PointerUp(ctx, at(170, 120))

		assert.Equal(t, domain.Point{X: 100, Y: 100}, web.Position())
		assert.Empty(t, rec.moved)
		assert.Equal(t, machine.Idle, m.State())
	})

	t.Run("edges follow the dragged node", func(t *testing.T) {
		m, _ := newTestManager(t, Config{Diagram: connectCanvas(t), Edits: &editStub{session: openSession()}})
		g := m.Diagram().Graph
		edge, err := g.Connect("api-out", "db-in")
		require.NoError(t, err)

		m.PointerDown(ctx, at(0, 0))
		m.PointerMove(ctx, at(20, 0))
		m.PointerUp(ctx, at(40, 0))

		api, _ := g.Node("api")
		assert.Equal(t, domain.Point{X: 20, Y: 0}, api.Position())
		assert.Equal(t, domain.Point{X: 180, Y: 50}, edge.From)
		assert.Equal(t, domain.Point{X: 400, Y: 50}, edge.To)
	})

	t.Run("dragging with no selected node in scope is fatal", func(t *testing.T) {
		m, _ := newTestManager(t, Config{Diagram: dragCanvas(t), Edits: &editStub{session: openSession()}})

		m.PointerDown(ctx, at(110, 120))
		require.Equal(t, machine.DraggingActivated, m.State())
		m.Selection().Reset()

		assert.Panics(t, func() {
			m.PointerUp(ctx, at(110, 120))
		})
	})
}
