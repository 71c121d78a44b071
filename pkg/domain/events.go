package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeSelected     EventType = "node_selected"
	EventSelectionCleared EventType = "selection_cleared"
	EventNodeMoved        EventType = "node_moved"
	EventNodeAdded        EventType = "node_added"
	EventEdgeConnected    EventType = "edge_connected"
	EventEditPulse        EventType = "edit_pulse"
	EventGesture          EventType = "gesture"
)

// Gesture name constants used by GestureEvent and metrics labels.
const (
	GesturePan      = "pan"
	GestureSelect   = "select"
	GestureDeselect = "deselect"
	GestureDrag     = "drag"
	GestureConnect  = "connect"
	GestureNodeAdd  = "node_add"
)

// Gesture phase constants.
const (
	GesturePhaseStart = "start"
	GesturePhaseEnd   = "end"
)

// Edit pulse reason constants.
const (
	// PulseNoSession: the user tried to mutate the diagram with no open edit session.
	PulseNoSession = "no_session"
	// PulsePlaceholder: the hit target was an invisible placeholder.
	PulsePlaceholder = "placeholder"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// SelectionEvent describes a selection change within one scope.
type SelectionEvent struct {
	EventBase
	Scope    string   `json:"scope"`
	NodeID   string   `json:"node_id,omitempty"`
	NodeName string   `json:"node_name,omitempty"`
	Selected []string `json:"selected"`
}

// NodeEvent describes a node mutation (moved during a drag, or added by placement).
type NodeEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	NodeName string `json:"node_name,omitempty"`
	NodeType string `json:"node_type,omitempty"`
	Position Point  `json:"position"`
}

// EdgeEvent describes a committed connection between two sockets.
type EdgeEvent struct {
	EventBase
	EdgeID     string `json:"edge_id"`
	FromSocket string `json:"from_socket"`
	ToSocket   string `json:"to_socket"`
}

// PulseEvent signals an editability rejection the host may surface as UI
// feedback (e.g. pulsing the edit button).
type PulseEvent struct {
	EventBase
	Reason string `json:"reason"`
}

// GestureEvent marks the start or end of a pointer gesture. End events carry
// the elapsed time since the matching start.
type GestureEvent struct {
	EventBase
	Gesture  string        `json:"gesture"`
	Phase    string        `json:"phase"`
	Duration time.Duration `json:"duration,omitempty"`
}

// InteractionHooks defines write-only callbacks published by the interaction
// core. All fields are optional; nil hooks are skipped. Callbacks run
// synchronously inside the pointer handlers and must not call back into the
// engine.
type InteractionHooks struct {
	// OnNodeSelected fires when a node replaces the selection in its scope.
	OnNodeSelected func(context.Context, *SelectionEvent)
	// OnDeploymentNodeSelected fires when the selected node is a top-level
	// node of a deployment diagram.
	OnDeploymentNodeSelected func(context.Context, *SelectionEvent)
	// OnDeploymentSelection mirrors every selection change made while a
	// deployment diagram is active, including clears.
	OnDeploymentSelection func(context.Context, *SelectionEvent)
	// OnSelectionCleared fires when a background click empties a scope.
	OnSelectionCleared func(context.Context, *SelectionEvent)
	// OnNodeMoved fires when a drag commits a new node position.
	OnNodeMoved func(context.Context, *NodeEvent)
	// OnNodeAdded fires when a placement click commits a pending node.
	OnNodeAdded func(context.Context, *NodeEvent)
	// OnEdgeConnected fires when a connect gesture commits an edge.
	OnEdgeConnected func(context.Context, *EdgeEvent)
	// OnEditPulse fires on editability rejections.
	OnEditPulse func(context.Context, *PulseEvent)
	// OnGesture fires at gesture start and end.
	OnGesture func(context.Context, *GestureEvent)
}

// MergeHooks fans every callback out to all given hook sets in order. Nil
// callbacks are skipped, so sparse hook sets compose without wrappers.
func MergeHooks(hooks ...InteractionHooks) InteractionHooks {
	return InteractionHooks{
		OnNodeSelected: func(ctx context.Context, e *SelectionEvent) {
			for _, h := range hooks {
				if h.OnNodeSelected != nil {
					h.OnNodeSelected(ctx, e)
				}
			}
		},
		OnDeploymentNodeSelected: func(ctx context.Context, e *SelectionEvent) {
			for _, h := range hooks {
				if h.OnDeploymentNodeSelected != nil {
					h.OnDeploymentNodeSelected(ctx, e)
				}
			}
		},
		OnDeploymentSelection: func(ctx context.Context, e *SelectionEvent) {
			for _, h := range hooks {
				if h.OnDeploymentSelection != nil {
					h.OnDeploymentSelection(ctx, e)
				}
			}
		},
		OnSelectionCleared: func(ctx context.Context, e *SelectionEvent) {
			for _, h := range hooks {
				if h.OnSelectionCleared != nil {
					h.OnSelectionCleared(ctx, e)
				}
			}
		},
		OnNodeMoved: func(ctx context.Context, e *NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeMoved != nil {
					h.OnNodeMoved(ctx, e)
				}
			}
		},
		OnNodeAdded: func(ctx context.Context, e *NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeAdded != nil {
					h.OnNodeAdded(ctx, e)
				}
			}
		},
		OnEdgeConnected: func(ctx context.Context, e *EdgeEvent) {
			for _, h := range hooks {
				if h.OnEdgeConnected != nil {
					h.OnEdgeConnected(ctx, e)
				}
			}
		},
		OnEditPulse: func(ctx context.Context, e *PulseEvent) {
			for _, h := range hooks {
				if h.OnEditPulse != nil {
					h.OnEditPulse(ctx, e)
				}
			}
		},
		OnGesture: func(ctx context.Context, e *GestureEvent) {
			for _, h := range hooks {
				if h.OnGesture != nil {
					h.OnGesture(ctx, e)
				}
			}
		},
	}
}
