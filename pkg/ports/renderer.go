package ports

import (
	"context"

	"github.com/aretw0/easel/pkg/scene"
)

// Renderer is the draw surface. The interaction layer calls Render after
// every scene mutation; implementations draw the diagram however they like
// (terminal, SSE push to a browser, test recorder).
type Renderer interface {
	// Render repaints the full diagram. Implementations must not mutate it.
	Render(ctx context.Context, d *scene.Diagram) error
}
