package http

import (
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

type pointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type socketDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Direction   string   `json:"direction"`
	Placeholder bool     `json:"placeholder,omitempty"`
	Anchor      pointDTO `json:"anchor"`
}

type nodeDTO struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Type        string      `json:"type,omitempty"`
	Parent      string      `json:"parent,omitempty"`
	Placeholder bool        `json:"placeholder,omitempty"`
	Position    pointDTO    `json:"position"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Sockets     []socketDTO `json:"sockets,omitempty"`
}

type edgeDTO struct {
	ID         string   `json:"id"`
	FromSocket string   `json:"from_socket"`
	ToSocket   string   `json:"to_socket"`
	From       pointDTO `json:"from"`
	To         pointDTO `json:"to"`
	Deleted    bool     `json:"deleted,omitempty"`
}

type diagramDTO struct {
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	State       string    `json:"state"`
	Zoom        float64   `json:"zoom"`
	Pan         pointDTO  `json:"pan"`
	Scope       string    `json:"scope,omitempty"`
	Selected    []string  `json:"selected"`
	PendingNode string    `json:"pending_node,omitempty"`
	Nodes       []nodeDTO `json:"nodes"`
	Edges       []edgeDTO `json:"edges"`
}

type engineState struct {
	State       string  `json:"state"`
	Zoom        float64 `json:"zoom"`
	PendingNode string  `json:"pending_node,omitempty"`
	Kind        string  `json:"kind"`
	Scope       string  `json:"scope,omitempty"`
	Editing     bool    `json:"editing"`
}

// buildDiagram flattens the scene tree into the wire shape. Positions and
// anchors are scene-space (the root's local space); clients compose pan and
// zoom from the view fields themselves. Must run while the caller holds the
// engine lock.
func buildDiagram(d *scene.Diagram, scope string, selected []string) diagramDTO {
	g := d.Graph
	view := g.Root().Transform

	if selected == nil {
		selected = []string{}
	}
	dto := diagramDTO{
		Name:     d.Name,
		Kind:     d.Kind,
		Zoom:     view.ScaleX,
		Pan:      pointDTO{X: view.Translation.X, Y: view.Translation.Y},
		Scope:    scope,
		Selected: selected,
		Nodes:    []nodeDTO{},
		Edges:    []edgeDTO{},
	}

	var walk func(n *scene.Node, parent domain.Transform)
	walk = func(n *scene.Node, parent domain.Transform) {
		world := parent.Compose(n.Transform)
		nd := nodeDTO{
			ID:          n.ID,
			Name:        n.Name,
			Type:        n.Type,
			Placeholder: n.Placeholder,
			Position:    pointDTO{X: world.Translation.X, Y: world.Translation.Y},
			Width:       n.Width,
			Height:      n.Height,
		}
		if p := n.Parent(); p != nil && p.ID != scene.RootID {
			nd.Parent = p.ID
		}
		for _, sock := range n.Sockets() {
			sd := socketDTO{
				ID:          sock.ID,
				Name:        sock.Name,
				Direction:   sock.Direction,
				Placeholder: sock.Placeholder,
			}
			if anchor, err := g.Anchor(sock.ID); err == nil {
				sd.Anchor = pointDTO{X: anchor.X, Y: anchor.Y}
			}
			nd.Sockets = append(nd.Sockets, sd)
		}
		dto.Nodes = append(dto.Nodes, nd)

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
		dto.Edges = append(dto.Edges, edgeDTO{
			ID:         e.ID,
			FromSocket: e.FromSocket,
			ToSocket:   e.ToSocket,
			From:       pointDTO{X: e.From.X, Y: e.From.Y},
			To:         pointDTO{X: e.To.X, Y: e.To.Y},
			Deleted:    e.Deleted,
		})
	}
	return dto
}
