// Package machine implements the interaction mode state machine: one
// enumerated state per gesture stage, a transition table validated at
// construction, and named triggers plus family predicates.
//
// Every gesture family stages through activated (pointer went down with this
// intent) and, for motion gestures, initiated (first move confirmed the
// gesture) before reaching its steady state, where the per-move effect runs.
// The staging keeps a plain click (down and up with no move in between) from
// producing a drag, pan or connect side effect.
package machine

import "fmt"

// State is the single mode tag for the whole interaction layer. Exactly one
// state is current at a time; at most one gesture family is away from Idle.
type State int

const (
	Idle State = iota

	PanningActivated
	PanningInitiated
	Panning

	SelectingActivated
	Selecting

	DeselectingActivated
	Deselecting

	DraggingActivated
	DraggingInitiated
	Dragging

	ConnectingActivated
	ConnectingInitiated
	Connecting
	ConnectingToSocket

	NodeAddActivated
	NodeAddInitiated
	AddingNode
)

var stateNames = map[State]string{
	Idle:                 "idle",
	PanningActivated:     "panning-activated",
	PanningInitiated:     "panning-initiated",
	Panning:              "panning",
	SelectingActivated:   "selecting-activated",
	Selecting:            "selecting",
	DeselectingActivated: "deselecting-activated",
	Deselecting:          "deselecting",
	DraggingActivated:    "dragging-activated",
	DraggingInitiated:    "dragging-initiated",
	Dragging:             "dragging",
	ConnectingActivated:  "connecting-activated",
	ConnectingInitiated:  "connecting-initiated",
	Connecting:           "connecting",
	ConnectingToSocket:   "connecting-to-socket",
	NodeAddActivated:     "node-add-activated",
	NodeAddInitiated:     "node-add-initiated",
	AddingNode:           "adding-node",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Trigger is a named transition request. Illegal triggers (no table entry
// for the current state) are deterministic no-ops; Fire reports false.
type Trigger int

const (
	ActivatePanning Trigger = iota
	InitiatePanning
	StartPanning
	DeactivatePanning

	ActivateSelecting
	StartSelecting
	DeactivateSelecting

	ActivateDeselecting
	StartDeselecting
	DeactivateDeselecting

	ActivateDragging
	InitiateDragging
	StartDragging
	DeactivateDragging

	ActivateConnecting
	InitiateConnecting
	StartConnecting
	ConnectToSocket
	DeactivateConnecting

	ActivateNodeAdd
	InitiateNodeAdd
	StartNodeAdd
	DeactivateNodeAdd
)

var triggerNames = map[Trigger]string{
	ActivatePanning:       "activate-panning",
	InitiatePanning:       "initiate-panning",
	StartPanning:          "start-panning",
	DeactivatePanning:     "deactivate-panning",
	ActivateSelecting:     "activate-selecting",
	StartSelecting:        "start-selecting",
	DeactivateSelecting:   "deactivate-selecting",
	ActivateDeselecting:   "activate-deselecting",
	StartDeselecting:      "start-deselecting",
	DeactivateDeselecting: "deactivate-deselecting",
	ActivateDragging:      "activate-dragging",
	InitiateDragging:      "initiate-dragging",
	StartDragging:         "start-dragging",
	DeactivateDragging:    "deactivate-dragging",
	ActivateConnecting:    "activate-connecting",
	InitiateConnecting:    "initiate-connecting",
	StartConnecting:       "start-connecting",
	ConnectToSocket:       "connect-to-socket",
	DeactivateConnecting:  "deactivate-connecting",
	ActivateNodeAdd:       "activate-node-add",
	InitiateNodeAdd:       "initiate-node-add",
	StartNodeAdd:          "start-node-add",
	DeactivateNodeAdd:     "deactivate-node-add",
}

func (t Trigger) String() string {
	if name, ok := triggerNames[t]; ok {
		return name
	}
	return fmt.Sprintf("trigger(%d)", int(t))
}

// Machine holds the current interaction state and the transition table.
// Like the scene graph it is owned by the interaction manager and is not
// safe for concurrent use.
type Machine struct {
	current State
	table   map[State]map[Trigger]State
}

// New builds a machine in Idle with the full transition table. The table is
// validated once here; a malformed table is a programming error and panics.
func New() *Machine {
	m := &Machine{current: Idle, table: transitions()}
	if err := m.validate(); err != nil {
		panic(fmt.Sprintf("machine: invalid transition table: %v", err))
	}
	return m
}

// transitions lays out the staged progressions. Activation is only legal
// from Idle, which is what makes the gesture families mutually exclusive.
// Deactivation is legal from every sub-state of a family so pointer-up can
// tear a gesture down no matter how far it progressed. ConnectToSocket is
// legal from ConnectingInitiated as well as Connecting so a single-move
// hover over an input socket can still snap before pointer-up.
func transitions() map[State]map[Trigger]State {
	return map[State]map[Trigger]State{
		Idle: {
			ActivatePanning:     PanningActivated,
			ActivateSelecting:   SelectingActivated,
			ActivateDeselecting: DeselectingActivated,
			ActivateDragging:    DraggingActivated,
			ActivateConnecting:  ConnectingActivated,
			ActivateNodeAdd:     NodeAddActivated,
		},

		PanningActivated: {
			InitiatePanning:   PanningInitiated,
			DeactivatePanning: Idle,
		},
		PanningInitiated: {
			StartPanning:      Panning,
			DeactivatePanning: Idle,
		},
		Panning: {
			DeactivatePanning: Idle,
		},

		SelectingActivated: {
			StartSelecting:      Selecting,
			DeactivateSelecting: Idle,
		},
		Selecting: {
			DeactivateSelecting: Idle,
		},

		DeselectingActivated: {
			StartDeselecting:      Deselecting,
			DeactivateDeselecting: Idle,
		},
		Deselecting: {
			DeactivateDeselecting: Idle,
		},

		DraggingActivated: {
			InitiateDragging:   DraggingInitiated,
			DeactivateDragging: Idle,
		},
		DraggingInitiated: {
			StartDragging:      Dragging,
			DeactivateDragging: Idle,
		},
		Dragging: {
			DeactivateDragging: Idle,
		},

		ConnectingActivated: {
			InitiateConnecting:   ConnectingInitiated,
			DeactivateConnecting: Idle,
		},
		ConnectingInitiated: {
			StartConnecting:      Connecting,
			ConnectToSocket:      ConnectingToSocket,
			DeactivateConnecting: Idle,
		},
		Connecting: {
			ConnectToSocket:      ConnectingToSocket,
			DeactivateConnecting: Idle,
		},
		ConnectingToSocket: {
			DeactivateConnecting: Idle,
		},

		NodeAddActivated: {
			InitiateNodeAdd:   NodeAddInitiated,
			DeactivateNodeAdd: Idle,
		},
		NodeAddInitiated: {
			StartNodeAdd:      AddingNode,
			DeactivateNodeAdd: Idle,
		},
		AddingNode: {
			DeactivateNodeAdd: Idle,
		},
	}
}

// validate checks the structural guarantees the interaction layer relies on:
// every state is reachable from Idle, and every non-idle state has an edge
// back to Idle so no gesture can strand the machine.
func (m *Machine) validate() error {
	reachable := map[State]bool{Idle: true}
	frontier := []State{Idle}
	for len(frontier) > 0 {
		s := frontier[0]
		frontier = frontier[1:]
		for _, next := range m.table[s] {
			if !reachable[next] {
				reachable[next] = true
				frontier = append(frontier, next)
			}
		}
	}

	for s := range stateNames {
		if !reachable[s] {
			return fmt.Errorf("state %s is unreachable from idle", s)
		}
		if s == Idle {
			continue
		}
		exits, ok := m.table[s]
		if !ok {
			return fmt.Errorf("state %s has no outgoing transitions", s)
		}
		toIdle := false
		for _, next := range exits {
			if next == Idle {
				toIdle = true
				break
			}
		}
		if !toIdle {
			return fmt.Errorf("state %s cannot return to idle", s)
		}
	}
	return nil
}

// State returns the current state.
func (m *Machine) State() State {
	return m.current
}

// Fire applies the trigger if the table allows it from the current state.
// It reports whether the transition happened; an illegal trigger leaves the
// state untouched.
func (m *Machine) Fire(t Trigger) bool {
	next, ok := m.table[m.current][t]
	if !ok {
		return false
	}
	m.current = next
	return true
}

// Advance moves the active gesture one stage toward its steady state. The
// interaction manager calls this once per pointer-move; a gesture already
// in its steady state stays put and Advance reports false.
func (m *Machine) Advance() bool {
	switch m.current {
	case PanningActivated:
		return m.Fire(InitiatePanning)
	case PanningInitiated:
		return m.Fire(StartPanning)
	case SelectingActivated:
		return m.Fire(StartSelecting)
	case DeselectingActivated:
		return m.Fire(StartDeselecting)
	case DraggingActivated:
		return m.Fire(InitiateDragging)
	case DraggingInitiated:
		return m.Fire(StartDragging)
	case ConnectingActivated:
		return m.Fire(InitiateConnecting)
	case ConnectingInitiated:
		return m.Fire(StartConnecting)
	case NodeAddActivated:
		return m.Fire(InitiateNodeAdd)
	case NodeAddInitiated:
		return m.Fire(StartNodeAdd)
	}
	return false
}

// Deactivate ends whichever gesture family is active and returns to Idle.
// It reports false when the machine is already idle.
func (m *Machine) Deactivate() bool {
	switch {
	case m.IsPanning():
		return m.Fire(DeactivatePanning)
	case m.IsSelecting():
		return m.Fire(DeactivateSelecting)
	case m.IsDeselecting():
		return m.Fire(DeactivateDeselecting)
	case m.IsDragging():
		return m.Fire(DeactivateDragging)
	case m.IsConnecting():
		return m.Fire(DeactivateConnecting)
	case m.IsAddingNode():
		return m.Fire(DeactivateNodeAdd)
	}
	return false
}

// IsIdle reports whether no gesture is underway.
func (m *Machine) IsIdle() bool {
	return m.current == Idle
}

// IsPanning reports whether any panning sub-state is active.
func (m *Machine) IsPanning() bool {
	switch m.current {
	case PanningActivated, PanningInitiated, Panning:
		return true
	}
	return false
}

// IsSelecting reports whether any selecting sub-state is active.
func (m *Machine) IsSelecting() bool {
	switch m.current {
	case SelectingActivated, Selecting:
		return true
	}
	return false
}

// IsDeselecting reports whether any deselecting sub-state is active.
func (m *Machine) IsDeselecting() bool {
	switch m.current {
	case DeselectingActivated, Deselecting:
		return true
	}
	return false
}

// IsDragging reports whether any dragging sub-state is active.
func (m *Machine) IsDragging() bool {
	switch m.current {
	case DraggingActivated, DraggingInitiated, Dragging:
		return true
	}
	return false
}

// IsConnecting reports whether any connecting sub-state is active.
func (m *Machine) IsConnecting() bool {
	switch m.current {
	case ConnectingActivated, ConnectingInitiated, Connecting, ConnectingToSocket:
		return true
	}
	return false
}

// IsAddingNode reports whether any node-add sub-state is active.
func (m *Machine) IsAddingNode() bool {
	switch m.current {
	case NodeAddActivated, NodeAddInitiated, AddingNode:
		return true
	}
	return false
}
