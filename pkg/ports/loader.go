package ports

import (
	"context"

	"github.com/aretw0/easel/pkg/scene"
)

// DiagramLoader defines how the engine retrieves a diagram document.
// This decouples the serving layer from where diagrams live (file, memory).
type DiagramLoader interface {
	// Load reads and parses the current diagram document.
	Load(ctx context.Context) (*scene.Diagram, error)
}

// Watchable defines an interface for loaders that can notify about backend
// changes. This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying diagram
	// changes. It abstracts away the specific event details, signaling only
	// that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
