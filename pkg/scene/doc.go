/*
Package scene owns the renderable diagram state: the tree of nodes and
sockets, the committed and provisional edges between sockets, and the
per-scope selection.

The graph is the single source of truth mutated by the interaction mode
managers during a gesture. It supports hit-testing a screen point to the
topmost interactive element and composing world transforms along the
ancestor chain; the scene root's transform carries the view state (pan
translation and zoom scale).

The scene graph is not safe for concurrent use. It is owned by the
interaction manager and mutated only from within its pointer handlers;
adapters that serve multiple callers must serialize access themselves.
*/
package scene
