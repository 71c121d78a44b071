package scene

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/easel/pkg/domain"
)

// Diagram wraps a scene graph with its identity and kind. The kind selects
// the selection scoping rules: deployment diagrams partition selection by
// deployment node, component diagrams use a single flat scope.
type Diagram struct {
	Name  string
	Kind  string
	Graph *Graph
}

// NewDiagram creates an empty diagram of the given kind. An empty kind
// defaults to a component diagram.
func NewDiagram(name, kind string) *Diagram {
	if kind == "" {
		kind = domain.DiagramKindComponent
	}
	return &Diagram{Name: name, Kind: kind, Graph: NewGraph()}
}

// diagramDoc is the on-disk YAML shape of a diagram. Field names follow the
// document keys via mapstructure tags; Parse decodes through a generic map
// so documents with unknown keys still load.
type diagramDoc struct {
	Name  string    `mapstructure:"name" yaml:"name"`
	Kind  string    `mapstructure:"kind" yaml:"kind"`
	Nodes []nodeDoc `mapstructure:"nodes" yaml:"nodes"`
	Edges []edgeDoc `mapstructure:"edges" yaml:"edges,omitempty"`
}

type nodeDoc struct {
	ID       string      `mapstructure:"id" yaml:"id"`
	Name     string      `mapstructure:"name" yaml:"name,omitempty"`
	Type     string      `mapstructure:"type" yaml:"type,omitempty"`
	Parent   string      `mapstructure:"parent" yaml:"parent,omitempty"`
	Position pointDoc    `mapstructure:"position" yaml:"position"`
	Width    float64     `mapstructure:"width" yaml:"width,omitempty"`
	Height   float64     `mapstructure:"height" yaml:"height,omitempty"`
	Sockets  []socketDoc `mapstructure:"sockets" yaml:"sockets,omitempty"`
}

type socketDoc struct {
	ID          string   `mapstructure:"id" yaml:"id"`
	Name        string   `mapstructure:"name" yaml:"name,omitempty"`
	Direction   string   `mapstructure:"direction" yaml:"direction"`
	Position    pointDoc `mapstructure:"position" yaml:"position"`
	Size        float64  `mapstructure:"size" yaml:"size,omitempty"`
	Placeholder bool     `mapstructure:"placeholder" yaml:"placeholder,omitempty"`
}

type edgeDoc struct {
	ID      string `mapstructure:"id" yaml:"id,omitempty"`
	From    string `mapstructure:"from" yaml:"from"`
	To      string `mapstructure:"to" yaml:"to"`
	Deleted bool   `mapstructure:"deleted" yaml:"deleted,omitempty"`
}

type pointDoc struct {
	X float64 `mapstructure:"x" yaml:"x"`
	Y float64 `mapstructure:"y" yaml:"y"`
}

// Parse loads a diagram from its YAML document form. Nodes may reference
// parents declared later in the document; edges are resolved last.
func Parse(data []byte) (*Diagram, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse diagram: %w", err)
	}

	var doc diagramDoc
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode diagram: %w", err)
	}

	d := NewDiagram(doc.Name, doc.Kind)
	if err := buildGraph(d.Graph, doc); err != nil {
		return nil, err
	}
	return d, nil
}

func buildGraph(g *Graph, doc diagramDoc) error {
	// Nodes can nest under parents declared in any order, so insert in
	// passes until no progress is made.
	pending := append([]nodeDoc(nil), doc.Nodes...)
	for len(pending) > 0 {
		progressed := false
		var stalled []nodeDoc
		for _, nd := range pending {
			if nd.Parent != "" {
				if _, ok := g.Node(nd.Parent); !ok {
					stalled = append(stalled, nd)
					continue
				}
			}
			if err := addNodeDoc(g, nd); err != nil {
				return err
			}
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("parse diagram: unresolved parent for node %q", stalled[0].ID)
		}
		pending = stalled
	}

	for _, ed := range doc.Edges {
		if _, err := g.restoreEdgeWithID(ed.ID, ed.From, ed.To, ed.Deleted); err != nil {
			return fmt.Errorf("parse diagram: %w", err)
		}
	}
	return nil
}

func addNodeDoc(g *Graph, nd nodeDoc) error {
	node := &Node{
		ID:        nd.ID,
		Kind:      domain.KindNode,
		Name:      nd.Name,
		Type:      nd.Type,
		Width:     nd.Width,
		Height:    nd.Height,
		Transform: domain.Translate(domain.Point{X: nd.Position.X, Y: nd.Position.Y}),
	}
	if err := g.AddNode(node, nd.Parent); err != nil {
		return fmt.Errorf("parse diagram: %w", err)
	}
	for _, sd := range nd.Sockets {
		socket := &Node{
			ID:          sd.ID,
			Kind:        domain.KindSocket,
			Name:        sd.Name,
			Direction:   sd.Direction,
			Placeholder: sd.Placeholder,
			Width:       sd.Size,
			Height:      sd.Size,
			Transform:   domain.Translate(domain.Point{X: sd.Position.X, Y: sd.Position.Y}),
		}
		if err := g.AddNode(socket, nd.ID); err != nil {
			return fmt.Errorf("parse diagram: %w", err)
		}
	}
	return nil
}

// Marshal renders the diagram back to its YAML document form. View state
// (pan and zoom) is presentation-only and is not persisted.
func (d *Diagram) Marshal() ([]byte, error) {
	doc := diagramDoc{Name: d.Name, Kind: d.Kind}

	for _, n := range d.Graph.Nodes() {
		if n.Kind != domain.KindNode {
			continue
		}
		nd := nodeDoc{
			ID:       n.ID,
			Name:     n.Name,
			Type:     n.Type,
			Position: pointDoc{X: n.Transform.Translation.X, Y: n.Transform.Translation.Y},
			Width:    n.Width,
			Height:   n.Height,
		}
		if p := n.Parent(); p != nil && p.ID != RootID {
			nd.Parent = p.ID
		}
		for _, s := range n.Sockets() {
			nd.Sockets = append(nd.Sockets, socketDoc{
				ID:          s.ID,
				Name:        s.Name,
				Direction:   s.Direction,
				Position:    pointDoc{X: s.Transform.Translation.X, Y: s.Transform.Translation.Y},
				Size:        s.Width,
				Placeholder: s.Placeholder,
			})
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	for _, e := range d.Graph.AllEdges() {
		doc.Edges = append(doc.Edges, edgeDoc{ID: e.ID, From: e.FromSocket, To: e.ToSocket, Deleted: e.Deleted})
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal diagram: %w", err)
	}
	return out, nil
}
