package domain

import "errors"

// ErrSessionNotFound is returned when an edit session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionClosed is returned when an operation requires an open edit session
// but the targeted session has already been saved or canceled.
var ErrSessionClosed = errors.New("edit session is not open")

// ErrNoEditSession is returned when an operation requires a current edit
// session and none is open.
var ErrNoEditSession = errors.New("no active edit session")

// ErrSessionActive is returned when opening or resuming an edit session
// while another one is still open.
var ErrSessionActive = errors.New("an edit session is already open")

// ErrGestureActive is returned when an operation needs the gesture machine
// idle but a pointer gesture is in flight.
var ErrGestureActive = errors.New("gesture is active")

// ErrNodeNotFound is returned when a node ID does not resolve in the scene graph.
var ErrNodeNotFound = errors.New("node not found")

// ErrSocketNotFound is returned when a socket ID does not resolve in the scene graph.
var ErrSocketNotFound = errors.New("socket not found")

// ErrEdgeNotFound is returned when an edge ID does not resolve in the scene graph.
var ErrEdgeNotFound = errors.New("edge not found")

// ErrDuplicateNode is returned when adding a node whose ID is already taken.
var ErrDuplicateNode = errors.New("node already exists")

// ErrDuplicateEdge is returned when connecting a socket pair that is already
// joined by a live edge.
var ErrDuplicateEdge = errors.New("edge already exists")

// ErrSocketDirection is returned when a connection is attempted against the
// edge direction contract (from must be an output, to must be an input).
var ErrSocketDirection = errors.New("socket direction mismatch")
