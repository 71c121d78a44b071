package ports

import (
	"context"

	"github.com/aretw0/easel/pkg/domain"
)

// SessionStore defines the interface for persisting edit sessions.
// This allows sessions to survive restarts and be shared across replicas.
type SessionStore interface {
	// Save persists the session under its ID, creating or replacing it.
	Save(ctx context.Context, session *domain.EditSession) error

	// Load retrieves a session by ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, id string) (*domain.EditSession, error)

	// Delete removes a session by ID. Deleting a missing session is not an
	// error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
