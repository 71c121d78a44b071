package dsl

import (
	"fmt"

	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

// Builder manages the diagram construction.
type Builder struct {
	name  string
	kind  string
	order []string
	nodes map[string]*NodeBuilder
	edges []edgeSpec
}

type edgeSpec struct {
	from, to string
}

// New creates a builder for a component diagram with the given name.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		kind:  domain.DiagramKindComponent,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Deployment switches the diagram kind to deployment, enabling per-group
// selection scopes.
func (b *Builder) Deployment() *Builder {
	b.kind = domain.DiagramKindDeployment
	return b
}

// Node creates a new node in the diagram. If the node already exists, it
// returns the existing builder. Declaration order is paint order.
func (b *Builder) Node(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		id:      id,
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Connect adds an edge from an output socket to an input socket. Sockets
// are validated at Build time.
func (b *Builder) Connect(fromSocket, toSocket string) *Builder {
	b.edges = append(b.edges, edgeSpec{from: fromSocket, to: toSocket})
	return b
}

// Build compiles the diagram. Parents may be declared in any order; edges
// are resolved last.
func (b *Builder) Build() (*scene.Diagram, error) {
	d := scene.NewDiagram(b.name, b.kind)

	// Insert in passes so a child declared before its parent still lands.
	pending := append([]string(nil), b.order...)
	for len(pending) > 0 {
		progressed := false
		var stalled []string
		for _, id := range pending {
			nb := b.nodes[id]
			if nb.parent != "" {
				if _, ok := d.Graph.Node(nb.parent); !ok {
					stalled = append(stalled, id)
					continue
				}
			}
			if err := nb.attach(d.Graph); err != nil {
				return nil, err
			}
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("build diagram: unresolved parent %q for node %q", b.nodes[stalled[0]].parent, stalled[0])
		}
		pending = stalled
	}

	for _, e := range b.edges {
		if _, err := d.Graph.Connect(e.from, e.to); err != nil {
			return nil, fmt.Errorf("build diagram: %w", err)
		}
	}
	return d, nil
}

// Loader compiles the diagram into an in-memory DiagramLoader, ready to
// hand to the engine.
func (b *Builder) Loader() (*memory.Loader, error) {
	d, err := b.Build()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewFromDiagram(d)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
