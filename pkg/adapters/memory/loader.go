package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/easel/pkg/scene"
)

// Loader implements ports.DiagramLoader from an in-memory document.
type Loader struct {
	raw []byte
}

// NewLoader creates a loader serving the given raw YAML document.
func NewLoader(raw []byte) *Loader {
	return &Loader{raw: raw}
}

// NewFromDiagram creates a loader from a live diagram. The diagram is
// serialized up front, so every Load returns an independent copy and
// later mutations of the original never leak through.
func NewFromDiagram(d *scene.Diagram) (*Loader, error) {
	raw, err := d.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diagram %q: %w", d.Name, err)
	}
	return &Loader{raw: raw}, nil
}

// Load parses the held document into a fresh diagram.
func (l *Loader) Load(ctx context.Context) (*scene.Diagram, error) {
	return scene.Parse(l.raw)
}
