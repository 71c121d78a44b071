package dsl

import (
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	id      string
	builder *Builder

	name    string
	typ     string
	parent  string
	at      domain.Point
	width   float64
	height  float64
	sockets []socketSpec
}

type socketSpec struct {
	id          string
	name        string
	direction   string
	at          domain.Point
	size        float64
	placeholder bool
}

// Named sets the display name.
func (n *NodeBuilder) Named(name string) *NodeBuilder {
	n.name = name
	return n
}

// Typed sets the schema type.
func (n *NodeBuilder) Typed(schemaType string) *NodeBuilder {
	n.typ = schemaType
	return n
}

// At positions the node in its parent's coordinate space.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.at = domain.Point{X: x, Y: y}
	return n
}

// Sized overrides the default node extent.
func (n *NodeBuilder) Sized(width, height float64) *NodeBuilder {
	n.width = width
	n.height = height
	return n
}

// Under nests the node inside another node (deployment grouping).
func (n *NodeBuilder) Under(parentID string) *NodeBuilder {
	n.parent = parentID
	return n
}

// Input adds an input socket at the given node-local position.
func (n *NodeBuilder) Input(id string, x, y float64) *NodeBuilder {
	n.sockets = append(n.sockets, socketSpec{
		id:        id,
		direction: domain.DirectionInput,
		at:        domain.Point{X: x, Y: y},
	})
	return n
}

// Output adds an output socket at the given node-local position.
func (n *NodeBuilder) Output(id string, x, y float64) *NodeBuilder {
	n.sockets = append(n.sockets, socketSpec{
		id:        id,
		direction: domain.DirectionOutput,
		at:        domain.Point{X: x, Y: y},
	})
	return n
}

// Placeholder adds an invisible input socket that pulses instead of
// connecting, reserving space for future capability.
func (n *NodeBuilder) Placeholder(id string, x, y float64) *NodeBuilder {
	n.sockets = append(n.sockets, socketSpec{
		id:          id,
		direction:   domain.DirectionInput,
		at:          domain.Point{X: x, Y: y},
		placeholder: true,
	})
	return n
}

// attach inserts the node and its sockets into the graph.
func (n *NodeBuilder) attach(g *scene.Graph) error {
	node := &scene.Node{
		ID:        n.id,
		Kind:      domain.KindNode,
		Name:      n.name,
		Type:      n.typ,
		Width:     n.width,
		Height:    n.height,
		Transform: domain.Translate(n.at),
	}
	if err := g.AddNode(node, n.parent); err != nil {
		return err
	}
	for _, s := range n.sockets {
		socket := &scene.Node{
			ID:          s.id,
			Kind:        domain.KindSocket,
			Name:        s.name,
			Direction:   s.direction,
			Placeholder: s.placeholder,
			Width:       s.size,
			Height:      s.size,
			Transform:   domain.Translate(s.at),
		}
		if err := g.AddNode(socket, n.id); err != nil {
			return err
		}
	}
	return nil
}
