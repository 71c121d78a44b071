package scene

import (
	"fmt"

	"github.com/aretw0/easel/pkg/domain"
)

// Edge joins an output socket to an input socket. From and To carry the
// rendered endpoint geometry in scene space; a disconnected edge is kept
// with Deleted set so it can be restored with its identity intact.
type Edge struct {
	ID         string       `json:"id" yaml:"id"`
	FromSocket string       `json:"from_socket" yaml:"from"`
	ToSocket   string       `json:"to_socket,omitempty" yaml:"to,omitempty"`
	From       domain.Point `json:"from_point" yaml:"-"`
	To         domain.Point `json:"to_point" yaml:"-"`
	Deleted    bool         `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// Edges returns the live (non-deleted) committed edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		if e := g.edges[id]; !e.Deleted {
			out = append(out, e)
		}
	}
	return out
}

// AllEdges returns every committed edge, including disconnected ones.
func (g *Graph) AllEdges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id])
	}
	return out
}

// Edge looks up a committed edge by ID, including disconnected ones.
func (g *Graph) Edge(id string) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// EdgesTouching returns the live edges attached to any socket inside the
// subtree rooted at the given element.
func (g *Graph) EdgesTouching(id string) []*Edge {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	inSubtree := make(map[string]bool)
	g.collectSubtree(n, inSubtree)

	var out []*Edge
	for _, edgeID := range g.edgeOrder {
		e := g.edges[edgeID]
		if e.Deleted {
			continue
		}
		if inSubtree[e.FromSocket] || inSubtree[e.ToSocket] {
			out = append(out, e)
		}
	}
	return out
}

// RefreshEdgeGeometry recomputes the scene-space endpoints of every live
// edge touching the subtree rooted at the given element. Called after a drag
// moves a node so attached edges follow it.
func (g *Graph) RefreshEdgeGeometry(id string) {
	for _, e := range g.EdgesTouching(id) {
		if from, err := g.Anchor(e.FromSocket); err == nil {
			e.From = from
		}
		if to, err := g.Anchor(e.ToSocket); err == nil {
			e.To = to
		}
	}
}

// Connect commits an edge between an output socket and an input socket.
// Reconnecting a pair whose edge was previously disconnected restores that
// edge instead of minting a new one, so the edge keeps its identity.
func (g *Graph) Connect(fromSocketID, toSocketID string) (*Edge, error) {
	from, err := g.connectableSocket(fromSocketID, domain.DirectionOutput)
	if err != nil {
		return nil, err
	}
	to, err := g.connectableSocket(toSocketID, domain.DirectionInput)
	if err != nil {
		return nil, err
	}
	if from.parent == to.parent {
		return nil, fmt.Errorf("connect %q -> %q: cannot connect a node to itself", fromSocketID, toSocketID)
	}

	for _, id := range g.edgeOrder {
		e := g.edges[id]
		if e.FromSocket != fromSocketID || e.ToSocket != toSocketID {
			continue
		}
		if !e.Deleted {
			return nil, fmt.Errorf("connect %q -> %q: %w", fromSocketID, toSocketID, domain.ErrDuplicateEdge)
		}
		if err := g.RestoreEdge(e.ID); err != nil {
			return nil, err
		}
		return e, nil
	}

	e := &Edge{ID: g.NewID(), FromSocket: fromSocketID, ToSocket: toSocketID}
	e.From, _ = g.Anchor(fromSocketID)
	e.To, _ = g.Anchor(toSocketID)
	g.edges[e.ID] = e
	g.edgeOrder = append(g.edgeOrder, e.ID)
	return e, nil
}

// restoreEdgeWithID re-inserts a persisted edge, keeping its stored ID.
// Used by the diagram codec; interactive connects mint fresh IDs.
func (g *Graph) restoreEdgeWithID(id, fromSocketID, toSocketID string, deleted bool) (*Edge, error) {
	if id == "" {
		id = g.NewID()
	}
	if _, taken := g.edges[id]; taken {
		return nil, fmt.Errorf("edge %q: %w", id, domain.ErrDuplicateEdge)
	}
	if _, err := g.connectableSocket(fromSocketID, domain.DirectionOutput); err != nil {
		return nil, err
	}
	if _, err := g.connectableSocket(toSocketID, domain.DirectionInput); err != nil {
		return nil, err
	}
	e := &Edge{ID: id, FromSocket: fromSocketID, ToSocket: toSocketID, Deleted: deleted}
	e.From, _ = g.Anchor(fromSocketID)
	e.To, _ = g.Anchor(toSocketID)
	g.edges[e.ID] = e
	g.edgeOrder = append(g.edgeOrder, e.ID)
	return e, nil
}

// DisconnectEdge soft-deletes an edge. The edge stays in the graph so it can
// be restored later; disconnecting an already-disconnected edge is a no-op.
func (g *Graph) DisconnectEdge(id string) error {
	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("disconnect edge %q: %w", id, domain.ErrEdgeNotFound)
	}
	e.Deleted = true
	return nil
}

// RestoreEdge undoes a disconnect and refreshes the edge's endpoint
// geometry, since its sockets may have moved while it was down.
func (g *Graph) RestoreEdge(id string) error {
	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("restore edge %q: %w", id, domain.ErrEdgeNotFound)
	}
	e.Deleted = false
	if from, err := g.Anchor(e.FromSocket); err == nil {
		e.From = from
	}
	if to, err := g.Anchor(e.ToSocket); err == nil {
		e.To = to
	}
	return nil
}

// BeginProvisionalEdge starts the in-progress edge for a connect gesture,
// anchored at the given output socket. Both endpoints start at the socket's
// anchor; the free endpoint follows the pointer afterwards.
func (g *Graph) BeginProvisionalEdge(fromSocketID string) (*Edge, error) {
	if g.provisional != nil {
		return nil, fmt.Errorf("begin edge from %q: a connection is already in progress", fromSocketID)
	}
	if _, err := g.connectableSocket(fromSocketID, domain.DirectionOutput); err != nil {
		return nil, err
	}
	anchor, err := g.Anchor(fromSocketID)
	if err != nil {
		return nil, err
	}
	g.provisional = &Edge{FromSocket: fromSocketID, From: anchor, To: anchor}
	return g.provisional, nil
}

// ProvisionalEdge returns the in-progress edge, or nil when no connect
// gesture is underway.
func (g *Graph) ProvisionalEdge() *Edge {
	return g.provisional
}

// DropProvisionalEdge discards the in-progress edge without committing.
func (g *Graph) DropProvisionalEdge() {
	g.provisional = nil
}

// CommitProvisionalEdge turns the in-progress edge into a committed edge
// ending at the given input socket, then clears the provisional state.
func (g *Graph) CommitProvisionalEdge(toSocketID string) (*Edge, error) {
	if g.provisional == nil {
		return nil, fmt.Errorf("commit edge to %q: no connection in progress", toSocketID)
	}
	e, err := g.Connect(g.provisional.FromSocket, toSocketID)
	if err != nil {
		return nil, err
	}
	g.provisional = nil
	return e, nil
}

func (g *Graph) connectableSocket(id, direction string) (*Node, error) {
	s, ok := g.Socket(id)
	if !ok {
		return nil, fmt.Errorf("socket %q: %w", id, domain.ErrSocketNotFound)
	}
	if s.Direction != direction {
		return nil, fmt.Errorf("socket %q is %s, want %s: %w", id, s.Direction, direction, domain.ErrSocketDirection)
	}
	return s, nil
}
