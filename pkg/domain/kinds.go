package domain

// Target kind constants identify what a scene hit-test resolved to.
const (
	// KindScene is the canvas backdrop; hitting it means "empty space".
	KindScene = "scene"
	// KindNode is a diagram node (a deployable component or a deployment group).
	KindNode = "node"
	// KindSocket is a connection endpoint attached to a node.
	KindSocket = "socket"
)

// Socket direction constants. Edges always run output -> input.
const (
	DirectionInput  = "input"
	DirectionOutput = "output"
)

// Diagram kind constants select the selection scoping rules.
const (
	// DiagramKindDeployment partitions selection by the deployment node the
	// user has drilled into.
	DiagramKindDeployment = "deployment"
	// DiagramKindComponent uses a single flat selection scope.
	DiagramKindComponent = "component"
)

// ScopeRoot is the selection scope used when no deployment node is selected
// (top level of a deployment diagram, or anywhere in a component diagram).
const ScopeRoot = ""
