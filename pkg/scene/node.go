package scene

import (
	"github.com/aretw0/easel/pkg/domain"
)

// RootID is the reserved ID of the scene backdrop node.
const RootID = "root"

// Default extents in scene units, applied when a node or socket is added
// with a zero width or height.
const (
	DefaultNodeWidth  = 160.0
	DefaultNodeHeight = 100.0
	DefaultSocketSize = 16.0
)

// Node is an element of the scene tree: the scene backdrop, a diagram node,
// or a socket attached to a node. Nodes nest; a node whose children are other
// nodes acts as a deployment-level group.
type Node struct {
	ID   string
	Kind string
	Name string
	// Type is the catalog schema type this node instantiates (nodes only).
	Type string

	// Direction applies to sockets only: domain.DirectionInput or
	// domain.DirectionOutput.
	Direction string

	// Placeholder marks invisible hit targets. Placeholders are still
	// returned by hit-testing; interaction handlers skip them.
	Placeholder bool

	Width  float64
	Height float64

	// Transform maps local coordinates into the parent space. The scene root
	// carries the view state here (pan translation plus zoom scale); all
	// other nodes keep unit scale and use only the translation, which is
	// their position in the parent space.
	Transform domain.Transform

	parent   *Node
	children []*Node
}

// Position returns the node's position in its parent's coordinate space.
func (n *Node) Position() domain.Point {
	return n.Transform.Translation
}

// Parent returns the node's parent, or nil for the scene root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children in insertion order. The returned
// slice is the graph's own storage; callers must not mutate it.
func (n *Node) Children() []*Node {
	return n.children
}

// Sockets returns the node's directly attached sockets in insertion order.
func (n *Node) Sockets() []*Node {
	var sockets []*Node
	for _, c := range n.children {
		if c.Kind == domain.KindSocket {
			sockets = append(sockets, c)
		}
	}
	return sockets
}

// Target is the result of a hit-test: a snapshot of the topmost element
// under a screen point along with its composed world transform.
type Target struct {
	ID          string
	Kind        string
	Name        string
	Type        string
	Direction   string
	Placeholder bool
	World       domain.Transform
}
