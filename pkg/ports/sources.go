package ports

import (
	"context"

	"github.com/aretw0/easel/pkg/domain"
)

// EditSource resolves whether editing is currently permitted. The interaction
// layer re-reads it at the top of every pointer handler instead of caching
// across handlers, since the session can open or close mid-gesture.
type EditSource interface {
	// CurrentSession returns the open edit session, or nil when there is
	// none. Editing is permitted only while the returned session is active.
	CurrentSession(ctx context.Context) (*domain.EditSession, error)
}

// DiagramSource resolves the active view: which kind of diagram is shown and
// which deployment node the user has drilled into. The drilled node is the
// selection scope for nested diagram contexts.
type DiagramSource interface {
	// DiagramKind returns domain.DiagramKindDeployment or
	// domain.DiagramKindComponent.
	DiagramKind(ctx context.Context) (string, error)

	// DeploymentNode returns the drilled-into deployment node ID, or
	// domain.ScopeRoot when the top level is shown.
	DeploymentNode(ctx context.Context) (string, error)
}
