package interaction

import (
	"fmt"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

// NodeAdder owns the node-add gesture. The pending node is inserted into the
// graph immediately as a placeholder so it renders as a ghost and follows
// the pointer, but stays invisible to selection and dragging until a
// placement click commits it.
type NodeAdder struct {
	pendingID string
}

// Begin inserts the pending node under the given parent ("" for the scene
// root), centered under the press position.
func (a *NodeAdder) Begin(g *scene.Graph, name, nodeType, parentID string, at domain.Point) (*scene.Node, error) {
	if a.pendingID != "" {
		return nil, fmt.Errorf("begin node add: %q is still pending", a.pendingID)
	}
	n := &scene.Node{
		ID:          g.NewID(),
		Kind:        domain.KindNode,
		Name:        name,
		Type:        nodeType,
		Placeholder: true,
	}
	if err := g.AddNode(n, parentID); err != nil {
		return nil, err
	}
	a.pendingID = n.ID
	a.Track(g, at)
	return n, nil
}

// Track recenters the pending node under the pointer.
func (a *NodeAdder) Track(g *scene.Graph, pointer domain.Point) {
	n, ok := g.Node(a.pendingID)
	if !ok {
		return
	}
	parent := g.WorldTransform(n.Parent())
	center := domain.Point{X: n.Width / 2, Y: n.Height / 2}
	n.Transform.Translation = parent.Invert(pointer).Sub(center)
}

// Commit clears the placeholder flag and releases the pending node.
func (a *NodeAdder) Commit(g *scene.Graph) (*scene.Node, bool) {
	n, ok := g.Node(a.pendingID)
	a.pendingID = ""
	if !ok {
		return nil, false
	}
	n.Placeholder = false
	return n, true
}

// Cancel removes the pending node from the graph.
func (a *NodeAdder) Cancel(g *scene.Graph) {
	if a.pendingID == "" {
		return
	}
	_ = g.RemoveNode(a.pendingID)
	a.pendingID = ""
}

// Pending returns the pending node's ID, or "" when no add is underway.
func (a *NodeAdder) Pending() string {
	return a.pendingID
}
