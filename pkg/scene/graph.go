package scene

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/aretw0/easel/pkg/domain"
)

// Graph is the scene tree plus the edges connecting its sockets.
type Graph struct {
	root      *Node
	nodes     map[string]*Node
	order     []string
	edges     map[string]*Edge
	edgeOrder []string

	// provisional is the single in-progress edge drawn while a connect
	// gesture is underway. It is never part of the committed edge set.
	provisional *Edge
}

// NewGraph creates an empty scene graph containing only the backdrop root.
func NewGraph() *Graph {
	root := &Node{ID: RootID, Kind: domain.KindScene, Transform: domain.Identity()}
	return &Graph{
		root:  root,
		nodes: map[string]*Node{RootID: root},
		edges: make(map[string]*Edge),
	}
}

// Root returns the scene backdrop node. Its transform is the view transform.
func (g *Graph) Root() *Node {
	return g.root
}

// Node looks up any element (node or socket) by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all elements except the root, in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NewID returns a fresh lexicographically sortable element ID.
func (g *Graph) NewID() string {
	return ulid.Make().String()
}

// AddNode inserts n under the parent with the given ID. An empty parentID
// attaches to the scene root. Sockets must attach to a node; nodes attach to
// the root or to another node (nesting under a deployment-level group).
func (g *Graph) AddNode(n *Node, parentID string) error {
	if n == nil || n.ID == "" {
		return fmt.Errorf("add node: id is required")
	}
	if _, taken := g.nodes[n.ID]; taken {
		return fmt.Errorf("add node %q: %w", n.ID, domain.ErrDuplicateNode)
	}
	if n.Kind == "" {
		n.Kind = domain.KindNode
	}
	if n.Kind == domain.KindScene {
		return fmt.Errorf("add node %q: the scene root already exists", n.ID)
	}

	if parentID == "" {
		parentID = RootID
	}
	parent, ok := g.nodes[parentID]
	if !ok {
		return fmt.Errorf("add node %q under %q: %w", n.ID, parentID, domain.ErrNodeNotFound)
	}
	if n.Kind == domain.KindSocket && parent.Kind != domain.KindNode {
		return fmt.Errorf("add socket %q: sockets must attach to a node", n.ID)
	}
	if n.Kind == domain.KindNode && parent.Kind == domain.KindSocket {
		return fmt.Errorf("add node %q: cannot nest under a socket", n.ID)
	}

	if n.Width == 0 && n.Height == 0 {
		if n.Kind == domain.KindSocket {
			n.Width, n.Height = DefaultSocketSize, DefaultSocketSize
		} else {
			n.Width, n.Height = DefaultNodeWidth, DefaultNodeHeight
		}
	}
	if n.Transform.ScaleX == 0 && n.Transform.ScaleY == 0 {
		n.Transform.ScaleX, n.Transform.ScaleY = 1, 1
	}

	n.parent = parent
	parent.children = append(parent.children, n)
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return nil
}

// RemoveNode removes the element and its entire subtree, along with every
// edge touching a socket inside that subtree. The scene root is not removable.
func (g *Graph) RemoveNode(id string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("remove node %q: %w", id, domain.ErrNodeNotFound)
	}
	if n == g.root {
		return fmt.Errorf("remove node %q: cannot remove the scene root", id)
	}

	removed := make(map[string]bool)
	g.collectSubtree(n, removed)

	for _, edgeID := range append([]string(nil), g.edgeOrder...) {
		e := g.edges[edgeID]
		if removed[e.FromSocket] || removed[e.ToSocket] {
			delete(g.edges, edgeID)
			g.edgeOrder = deleteString(g.edgeOrder, edgeID)
		}
	}

	parent := n.parent
	for i, c := range parent.children {
		if c == n {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	n.parent = nil

	for rid := range removed {
		delete(g.nodes, rid)
		g.order = deleteString(g.order, rid)
	}
	return nil
}

func (g *Graph) collectSubtree(n *Node, out map[string]bool) {
	out[n.ID] = true
	for _, c := range n.children {
		g.collectSubtree(c, out)
	}
}

func deleteString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// WorldTransform composes the transforms along the ancestor chain, mapping
// the node's local space all the way to screen space.
func (g *Graph) WorldTransform(n *Node) domain.Transform {
	if n == nil {
		return domain.Identity()
	}
	if n.parent == nil {
		return n.Transform
	}
	return g.WorldTransform(n.parent).Compose(n.Transform)
}

// HitTest resolves the topmost element under the given screen point.
// Children are tested before their parent and later siblings before earlier
// ones, matching paint order. The backdrop is the fallback when nothing
// else is under the point.
func (g *Graph) HitTest(p domain.Point) Target {
	if n := hitSubtree(g.root, g.root.Transform, p); n != nil {
		return g.targetFor(n)
	}
	return g.targetFor(g.root)
}

func hitSubtree(n *Node, world domain.Transform, p domain.Point) *Node {
	for i := len(n.children) - 1; i >= 0; i-- {
		c := n.children[i]
		if hit := hitSubtree(c, world.Compose(c.Transform), p); hit != nil {
			return hit
		}
	}
	if n.Kind == domain.KindScene {
		return nil
	}
	if containsPoint(n, world, p) {
		return n
	}
	return nil
}

func containsPoint(n *Node, world domain.Transform, p domain.Point) bool {
	o := world.Translation
	w := n.Width * world.ScaleX
	h := n.Height * world.ScaleY
	return p.X >= o.X && p.X <= o.X+w && p.Y >= o.Y && p.Y <= o.Y+h
}

func (g *Graph) targetFor(n *Node) Target {
	return Target{
		ID:          n.ID,
		Kind:        n.Kind,
		Name:        n.Name,
		Type:        n.Type,
		Direction:   n.Direction,
		Placeholder: n.Placeholder,
		World:       g.WorldTransform(n),
	}
}

// Socket looks up a socket by ID. Elements of any other kind do not resolve.
func (g *Graph) Socket(id string) (*Node, bool) {
	s, ok := g.nodes[id]
	if !ok || s.Kind != domain.KindSocket {
		return nil, false
	}
	return s, true
}

// DeploymentAncestor returns the deployment group an element is nested in:
// the nearest node-kind ancestor, resolving sockets through their owning node
// first. Top-level elements have none.
func (g *Graph) DeploymentAncestor(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	if n.Kind == domain.KindSocket {
		n = n.parent
	}
	for p := n.parent; p != nil; p = p.parent {
		if p.Kind == domain.KindNode {
			return p, true
		}
	}
	return nil, false
}

// Anchor returns the socket's center in scene space (the root's local
// space), which is where edge geometry attaches.
func (g *Graph) Anchor(socketID string) (domain.Point, error) {
	s, ok := g.Socket(socketID)
	if !ok {
		return domain.Point{}, fmt.Errorf("anchor %q: %w", socketID, domain.ErrSocketNotFound)
	}
	center := g.WorldTransform(s).Apply(domain.Point{X: s.Width / 2, Y: s.Height / 2})
	return g.root.Transform.Invert(center), nil
}
