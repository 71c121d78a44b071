package easel

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/easel/internal/interaction"
	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/adapters/file"
	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/catalog"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/scene"
	"github.com/aretw0/easel/pkg/session"
)

// Engine is the high-level entry point for the Easel library. It wraps the
// interaction core and provides a simplified API for hosts: pointer input,
// node placement, edit sessions and the deployment drill. Unlike the
// interaction core, Engine methods are safe for concurrent use; handlers are
// serialized internally.
type Engine struct {
	manager  *interaction.Manager
	loader   ports.DiagramLoader
	sessions *session.Manager
	catalog  *catalog.Catalog
	view     *viewState

	store    ports.SessionStore
	locker   ports.DistributedLocker
	diagrams ports.DiagramSource
	renderer ports.Renderer
	hooks    domain.InteractionHooks
	logger   *slog.Logger
	diagram  *scene.Diagram

	mu   sync.Mutex
	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithHooks registers interaction event callbacks.
func WithHooks(hooks domain.InteractionHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom DiagramLoader, bypassing the default file
// adapter.
func WithLoader(l ports.DiagramLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithDiagram starts the engine on an in-memory diagram. A memory loader is
// snapshotted from it so Reload restores this initial state.
func WithDiagram(d *scene.Diagram) Option {
	return func(e *Engine) {
		e.diagram = d
	}
}

// WithRenderer sets the draw surface repainted after every scene mutation.
func WithRenderer(r ports.Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithCatalog sets the node-type palette used by AddFromCatalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithSessionStore persists edit sessions somewhere other than process
// memory.
func WithSessionStore(s ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker guards the edit session with a distributed lock, so two
// replicas cannot edit the same diagram at once.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithDiagramSource hands the view state (diagram kind and deployment drill)
// to an external owner. SetDeploymentNode is rejected while this is set.
func WithDiagramSource(src ports.DiagramSource) Option {
	return func(e *Engine) {
		e.diagrams = src
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Easel Engine.
// By default it loads the YAML diagram document at the given path. If a
// WithLoader or WithDiagram option is provided, diagramPath can be empty and
// is only used as a display name.
func New(diagramPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	// Apply options first to check what was injected.
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if diagramPath != "" {
		base := filepath.Base(diagramPath)
		eng.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	var d *scene.Diagram
	switch {
	case eng.diagram != nil:
		d = eng.diagram
		if eng.loader == nil {
			l, err := memory.NewFromDiagram(d)
			if err != nil {
				return nil, fmt.Errorf("snapshot diagram: %w", err)
			}
			eng.loader = l
		}

	case eng.loader != nil:
		var err error
		d, err = eng.loader.Load(context.Background())
		if err != nil {
			return nil, fmt.Errorf("load diagram: %w", err)
		}

	default:
		if diagramPath == "" {
			return nil, fmt.Errorf("diagramPath is required when no custom loader or diagram is provided")
		}
		absPath, err := filepath.Abs(diagramPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.loader = file.NewLoader(absPath)
		if d, err = eng.loader.Load(context.Background()); err != nil {
			return nil, err
		}
	}

	if eng.Name == "" {
		eng.Name = d.Name
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("diagram", eng.Name)
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	sessOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(eng.locker))
	}
	diagramID := eng.Name
	if diagramID == "" {
		diagramID = "untitled"
	}
	eng.sessions = session.NewManager(diagramID, eng.store, sessOpts...)

	eng.view = newViewState(d)
	src := ports.DiagramSource(eng.view)
	if eng.diagrams != nil {
		src = eng.diagrams
	}

	eng.manager = interaction.New(interaction.Config{
		Diagram:  d,
		Renderer: eng.renderer,
		Edits:    eng.sessions,
		Diagrams: src,
		Hooks:    eng.hooks,
		Logger:   eng.logger,
	})

	return eng, nil
}

// PointerDown feeds a press at a screen position into the gesture core.
func (e *Engine) PointerDown(ctx context.Context, at domain.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manager.PointerDown(ctx, interaction.PointerEvent{Position: at})
}

// PointerMove feeds a pointer move sample into the gesture core.
func (e *Engine) PointerMove(ctx context.Context, at domain.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manager.PointerMove(ctx, interaction.PointerEvent{Position: at})
}

// PointerUp feeds a release into the gesture core, committing whichever
// gesture was in flight.
func (e *Engine) PointerUp(ctx context.Context, at domain.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manager.PointerUp(ctx, interaction.PointerEvent{Position: at})
}

// Wheel zooms about the given screen position. Positive magnitudes zoom out.
func (e *Engine) Wheel(ctx context.Context, at domain.Point, magnitude float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manager.Wheel(ctx, interaction.WheelEvent{Position: at, Magnitude: magnitude})
}

// ActivatePanning arms the pan gesture so the next press pans the view.
// Hosts call this while their pan affordance (space bar, hand tool) is held.
func (e *Engine) ActivatePanning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.ActivatePanning()
}

// DeactivatePanning disarms the pan gesture.
func (e *Engine) DeactivatePanning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.DeactivatePanning()
}

// BeginNodeAdd starts a node-add gesture with an explicit name and type. The
// returned pending node follows the pointer until a press places it.
func (e *Engine) BeginNodeAdd(ctx context.Context, name, nodeType string, at domain.Point) (*scene.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.BeginNodeAdd(ctx, name, nodeType, at)
}

// AddFromCatalog starts a node-add gesture from a palette entry: the pending
// node takes the entry's extent and grows its declared sockets, inputs down
// the left edge and outputs down the right.
func (e *Engine) AddFromCatalog(ctx context.Context, entryName string, at domain.Point) (*scene.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.catalog == nil {
		return nil, fmt.Errorf("no catalog configured")
	}
	entry, ok := e.catalog.Get(entryName)
	if !ok {
		return nil, fmt.Errorf("catalog entry %q not found", entryName)
	}

	node, err := e.manager.BeginNodeAdd(ctx, entry.Name, entry.Type, at)
	if err != nil {
		return nil, err
	}

	if entry.Width > 0 {
		node.Width = entry.Width
	}
	if entry.Height > 0 {
		node.Height = entry.Height
	}

	g := e.manager.Diagram().Graph
	if err := attachEntrySockets(g, node, entry.Sockets); err != nil {
		e.manager.CancelNodeAdd(ctx)
		return nil, fmt.Errorf("attach sockets: %w", err)
	}

	// The core centered the node before the resize; recenter it under the
	// requested position with its final extent.
	parent := g.WorldTransform(node.Parent())
	center := domain.Point{X: node.Width / 2, Y: node.Height / 2}
	node.Transform.Translation = parent.Invert(at).Sub(center)

	return node, nil
}

// attachEntrySockets grows the entry's sockets on the pending node. Sockets
// straddle the node edge, spaced evenly per direction.
func attachEntrySockets(g *scene.Graph, n *scene.Node, specs []catalog.SocketSpec) error {
	var inputs, outputs []catalog.SocketSpec
	for _, s := range specs {
		if s.Direction == domain.DirectionOutput {
			outputs = append(outputs, s)
		} else {
			inputs = append(inputs, s)
		}
	}
	if err := placeSockets(g, n, inputs, -scene.DefaultSocketSize/2); err != nil {
		return err
	}
	return placeSockets(g, n, outputs, n.Width-scene.DefaultSocketSize/2)
}

func placeSockets(g *scene.Graph, n *scene.Node, specs []catalog.SocketSpec, x float64) error {
	count := float64(len(specs))
	for i, spec := range specs {
		y := n.Height*float64(i+1)/(count+1) - scene.DefaultSocketSize/2
		s := &scene.Node{
			ID:        g.NewID(),
			Kind:      domain.KindSocket,
			Name:      spec.Name,
			Direction: spec.Direction,
			Transform: domain.Translate(domain.Point{X: x, Y: y}),
		}
		if err := g.AddNode(s, n.ID); err != nil {
			return err
		}
	}
	return nil
}

// CancelNodeAdd abandons an in-flight node add.
func (e *Engine) CancelNodeAdd(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.CancelNodeAdd(ctx)
}

// DisconnectEdge soft-deletes an edge, keeping it around for restore.
// Requires an open edit session.
func (e *Engine) DisconnectEdge(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.sessions.EditingActive() {
		return domain.ErrNoEditSession
	}
	if err := e.manager.Diagram().Graph.DisconnectEdge(id); err != nil {
		return err
	}
	e.repaint(ctx)
	return nil
}

// RestoreEdge undoes a soft delete. Requires an open edit session.
func (e *Engine) RestoreEdge(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.sessions.EditingActive() {
		return domain.ErrNoEditSession
	}
	if err := e.manager.Diagram().Graph.RestoreEdge(id); err != nil {
		return err
	}
	e.repaint(ctx)
	return nil
}

// repaint redraws after facade-level mutations that bypass the gesture
// handlers. Render failures are logged, never propagated.
func (e *Engine) repaint(ctx context.Context) {
	if e.renderer == nil {
		return
	}
	if err := e.renderer.Render(ctx, e.manager.Diagram()); err != nil {
		e.logger.Error("render failed", "err", err)
	}
}

// OpenSession opens an edit session, unlocking mutating gestures.
func (e *Engine) OpenSession(ctx context.Context, name, note string) (*domain.EditSession, error) {
	return e.sessions.Open(ctx, name, note)
}

// SaveSession commits and closes the current edit session.
func (e *Engine) SaveSession(ctx context.Context) (*domain.EditSession, error) {
	return e.sessions.Save(ctx)
}

// CancelSession discards and closes the current edit session. The scene keeps
// the edits already applied; persisting or reverting them is the host's call.
func (e *Engine) CancelSession(ctx context.Context) (*domain.EditSession, error) {
	return e.sessions.Cancel(ctx)
}

// ResumeSession reopens a previously saved session by ID.
func (e *Engine) ResumeSession(ctx context.Context, id string) (*domain.EditSession, error) {
	return e.sessions.Resume(ctx, id)
}

// Sessions lists the stored edit sessions, oldest first.
func (e *Engine) Sessions(ctx context.Context) ([]*domain.EditSession, error) {
	return e.sessions.List(ctx)
}

// CurrentSession returns the open edit session, or nil when there is none.
func (e *Engine) CurrentSession(ctx context.Context) (*domain.EditSession, error) {
	return e.sessions.CurrentSession(ctx)
}

// EditingActive reports whether an edit session is currently open.
func (e *Engine) EditingActive() bool {
	return e.sessions.EditingActive()
}

// SetDeploymentNode drills into a deployment node, scoping selection to it.
// Passing domain.ScopeRoot surfaces back to the top level.
func (e *Engine) SetDeploymentNode(id string) error {
	if e.diagrams != nil {
		return fmt.Errorf("diagram view state is owned by a custom source")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == domain.ScopeRoot {
		e.view.setScope(domain.ScopeRoot)
		return nil
	}
	if kind, _ := e.view.snapshot(); kind != domain.DiagramKindDeployment {
		return fmt.Errorf("%q is not a deployment diagram", e.Name)
	}
	if _, ok := e.manager.Diagram().Graph.Node(id); !ok {
		return fmt.Errorf("deployment node %q: %w", id, domain.ErrNodeNotFound)
	}
	e.view.setScope(id)
	return nil
}

// DeploymentNode returns the drilled-into deployment node ID, or
// domain.ScopeRoot at the top level.
func (e *Engine) DeploymentNode() string {
	if e.diagrams != nil {
		scope, err := e.diagrams.DeploymentNode(context.Background())
		if err != nil {
			return domain.ScopeRoot
		}
		return scope
	}
	_, scope := e.view.snapshot()
	return scope
}

// DiagramKind returns the active diagram kind.
func (e *Engine) DiagramKind() string {
	if e.diagrams != nil {
		kind, err := e.diagrams.DiagramKind(context.Background())
		if err != nil {
			return domain.DiagramKindComponent
		}
		return kind
	}
	kind, _ := e.view.snapshot()
	return kind
}

// Reload re-reads the diagram from the loader and swaps it in, resetting
// every gesture, the selection, the zoom and the deployment drill.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload diagram: %w", err)
	}
	e.manager.SetDiagram(d)
	e.view.reset(d)
	e.logger.Info("diagram reloaded", "name", d.Name)
	return nil
}

// Watch returns a channel that signals when the underlying diagram document
// changes. Returns an error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Diagram returns the live scene. It is mutated by the gesture handlers;
// hosts must not write to it.
func (e *Engine) Diagram() *scene.Diagram {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.Diagram()
}

// Snapshot gives fn read access to the live scene while holding the engine
// lock, so exporters do not race the pointer handlers. fn must not retain
// the diagram past the call or mutate it.
func (e *Engine) Snapshot(fn func(*scene.Diagram)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.manager.Diagram())
}

// Selection returns the scoped selection store.
func (e *Engine) Selection() *scene.Selection {
	return e.manager.Selection()
}

// State returns the name of the current gesture machine state.
func (e *Engine) State() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.State().String()
}

// PendingNode returns the ID of the in-flight node add, or "".
func (e *Engine) PendingNode() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.PendingNode()
}

// ZoomFactor returns the current zoom scale.
func (e *Engine) ZoomFactor() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manager.Zoom().Factor()
}

// Loader returns the underlying DiagramLoader used by the engine.
func (e *Engine) Loader() ports.DiagramLoader {
	return e.loader
}

// Catalog returns the configured palette, or nil.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// viewState is the engine-owned diagram source: which kind of diagram is
// shown and which deployment node is drilled into.
type viewState struct {
	mu    sync.RWMutex
	kind  string
	scope string
}

func newViewState(d *scene.Diagram) *viewState {
	v := &viewState{}
	v.reset(d)
	return v
}

func (v *viewState) DiagramKind(ctx context.Context) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.kind, nil
}

func (v *viewState) DeploymentNode(ctx context.Context) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scope, nil
}

func (v *viewState) snapshot() (kind, scope string) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.kind, v.scope
}

func (v *viewState) setScope(scope string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scope = scope
}

func (v *viewState) reset(d *scene.Diagram) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.kind = d.Kind
	if v.kind == "" {
		v.kind = domain.DiagramKindComponent
	}
	v.scope = domain.ScopeRoot
}
