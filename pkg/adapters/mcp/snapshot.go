package mcp

import (
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

type pointSnapshot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type socketSnapshot struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Direction   string        `json:"direction"`
	Placeholder bool          `json:"placeholder,omitempty"`
	Anchor      pointSnapshot `json:"anchor"`
}

type nodeSnapshot struct {
	ID          string           `json:"id"`
	Name        string           `json:"name,omitempty"`
	Type        string           `json:"type,omitempty"`
	Parent      string           `json:"parent,omitempty"`
	Placeholder bool             `json:"placeholder,omitempty"`
	Position    pointSnapshot    `json:"position"`
	Width       float64          `json:"width"`
	Height      float64          `json:"height"`
	Sockets     []socketSnapshot `json:"sockets,omitempty"`
}

type edgeSnapshot struct {
	ID         string `json:"id"`
	FromSocket string `json:"from_socket"`
	ToSocket   string `json:"to_socket"`
	Deleted    bool   `json:"deleted,omitempty"`
}

type diagramSnapshot struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	State       string         `json:"state"`
	Zoom        float64        `json:"zoom"`
	Pan         pointSnapshot  `json:"pan"`
	Scope       string         `json:"scope,omitempty"`
	Selected    []string       `json:"selected"`
	PendingNode string         `json:"pending_node,omitempty"`
	Nodes       []nodeSnapshot `json:"nodes"`
	Edges       []edgeSnapshot `json:"edges"`
}

// snapshot flattens the scene into the wire shape shared with the HTTP
// snapshot: scene-space positions and anchors plus the view fields needed
// to compose screen coordinates.
func (s *Server) snapshot() diagramSnapshot {
	// The facade getters each take the engine lock; gather the scalar
	// state first so the snapshot closure only walks the tree.
	scope := s.engine.DeploymentNode()
	selected := s.engine.Selection().Selected(scope)
	state := s.engine.State()
	pending := s.engine.PendingNode()

	if selected == nil {
		selected = []string{}
	}
	snap := diagramSnapshot{
		State:       state,
		Scope:       scope,
		Selected:    selected,
		PendingNode: pending,
		Nodes:       []nodeSnapshot{},
		Edges:       []edgeSnapshot{},
	}

	s.engine.Snapshot(func(d *scene.Diagram) {
		g := d.Graph
		view := g.Root().Transform

		snap.Name = d.Name
		snap.Kind = d.Kind
		snap.Zoom = view.ScaleX
		snap.Pan = pointSnapshot{X: view.Translation.X, Y: view.Translation.Y}

		var walk func(n *scene.Node, parent domain.Transform)
		walk = func(n *scene.Node, parent domain.Transform) {
			world := parent.Compose(n.Transform)
			ns := nodeSnapshot{
				ID:          n.ID,
				Name:        n.Name,
				Type:        n.Type,
				Placeholder: n.Placeholder,
				Position:    pointSnapshot{X: world.Translation.X, Y: world.Translation.Y},
				Width:       n.Width,
				Height:      n.Height,
			}
			if p := n.Parent(); p != nil && p.ID != scene.RootID {
				ns.Parent = p.ID
			}
			for _, sock := range n.Sockets() {
				ss := socketSnapshot{
					ID:          sock.ID,
					Name:        sock.Name,
					Direction:   sock.Direction,
					Placeholder: sock.Placeholder,
				}
				if anchor, err := g.Anchor(sock.ID); err == nil {
					ss.Anchor = pointSnapshot{X: anchor.X, Y: anchor.Y}
				}
				ns.Sockets = append(ns.Sockets, ss)
			}
			snap.Nodes = append(snap.Nodes, ns)

			for _, c := range n.Children() {
				if c.Kind == domain.KindSocket {
					continue
				}
				walk(c, world)
			}
		}
		for _, c := range g.Root().Children() {
			if c.Kind == domain.KindSocket {
				continue
			}
			walk(c, domain.Identity())
		}

		for _, e := range g.AllEdges() {
			snap.Edges = append(snap.Edges, edgeSnapshot{
				ID:         e.ID,
				FromSocket: e.FromSocket,
				ToSocket:   e.ToSocket,
				Deleted:    e.Deleted,
			})
		}
	})
	return snap
}
