package domain

import "time"

// EditSessionStatus tracks the lifecycle of an edit session.
type EditSessionStatus string

const (
	EditSessionOpen     EditSessionStatus = "open"
	EditSessionSaved    EditSessionStatus = "saved"
	EditSessionCanceled EditSessionStatus = "canceled"
)

// EditSession is the unit of editability for a diagram. Gestures that mutate
// the diagram (drag, connect, node add) are only honored while a session is
// open; saving or canceling closes it.
type EditSession struct {
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	Note      string            `json:"note,omitempty" yaml:"note,omitempty"`
	Status    EditSessionStatus `json:"status" yaml:"status"`
	DiagramID string            `json:"diagram_id,omitempty" yaml:"diagram_id,omitempty"`
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" yaml:"updated_at"`
}

// Active reports whether the session still accepts edits.
func (s *EditSession) Active() bool {
	return s != nil && s.Status == EditSessionOpen
}
