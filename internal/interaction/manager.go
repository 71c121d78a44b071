// Package interaction turns raw pointer input into scene mutations. The
// Manager owns the scene graph, the gesture state machine, the selection and
// the zoom state; each mode manager (pan, drag, connect, node add) owns the
// per-gesture offsets for its family. Handlers are meant to be called from a
// single goroutine; adapters serialize access around them.
package interaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/internal/machine"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/scene"
)

// PointerEvent is a raw pointer sample in screen coordinates.
type PointerEvent struct {
	Position domain.Point `json:"position"`
}

// WheelEvent is a raw wheel sample. Positive magnitudes zoom out.
type WheelEvent struct {
	Position  domain.Point `json:"position"`
	Magnitude float64      `json:"magnitude"`
}

// Config carries the manager's collaborators. Only Diagram is required;
// nil sources mean "never editable" and "component diagram".
type Config struct {
	Diagram  *scene.Diagram
	Renderer ports.Renderer
	Edits    ports.EditSource
	Diagrams ports.DiagramSource
	Hooks    domain.InteractionHooks
	Logger   *slog.Logger
}

// Manager orchestrates pointer input: it hit-tests the scene, re-reads the
// edit and diagram sources, drives the state machine and dispatches to the
// mode managers. Events flow out through the configured hooks; every visual
// mutation ends in a render request.
type Manager struct {
	log     *slog.Logger
	diagram *scene.Diagram

	fsm       *machine.Machine
	selection *scene.Selection
	zoom      *Zoomer
	panner    Panner
	dragger   Dragger
	connector Connector
	adder     NodeAdder

	renderer ports.Renderer
	edits    ports.EditSource
	diagrams ports.DiagramSource
	hooks    domain.InteractionHooks

	gesture      string
	gestureStart time.Time
}

// New builds a manager from its configuration.
func New(cfg Config) *Manager {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}
	d := cfg.Diagram
	if d == nil {
		d = scene.NewDiagram("untitled", "")
	}
	return &Manager{
		log:       log,
		diagram:   d,
		fsm:       machine.New(),
		selection: scene.NewSelection(),
		zoom:      zoomerFor(d),
		renderer:  cfg.Renderer,
		edits:     cfg.Edits,
		diagrams:  cfg.Diagrams,
		hooks:     cfg.Hooks,
	}
}

// zoomerFor builds a zoomer mirroring the view scale the diagram's root
// already carries, so gesture math and the actual transform agree.
func zoomerFor(d *scene.Diagram) *Zoomer {
	z := NewZoomer()
	if s := d.Graph.Root().Transform.ScaleX; s > 0 {
		z.SetFactor(s)
	}
	return z
}

// resolved is the per-handler snapshot of externally owned view state.
type resolved struct {
	editable bool
	session  string
	kind     string
	scope    string
}

// resolve re-reads the edit session and the diagram view state. It runs at
// the top of every handler; nothing here may be cached across handlers,
// because a session can be saved or expire between two pointer samples.
// Source failures log a warning and fall back to read-only defaults.
func (m *Manager) resolve(ctx context.Context) resolved {
	r := resolved{kind: domain.DiagramKindComponent, scope: domain.ScopeRoot}
	if m.edits != nil {
		s, err := m.edits.CurrentSession(ctx)
		switch {
		case err != nil:
			m.log.Warn("edit source unavailable", "err", err)
		case s != nil:
			r.session = s.ID
			r.editable = s.Active()
		}
	}
	if m.diagrams != nil {
		kind, err := m.diagrams.DiagramKind(ctx)
		if err != nil {
			m.log.Warn("diagram source unavailable", "err", err)
		} else if kind != "" {
			r.kind = kind
		}
		if r.kind == domain.DiagramKindDeployment {
			scope, err := m.diagrams.DeploymentNode(ctx)
			if err != nil {
				m.log.Warn("diagram source unavailable", "err", err)
			} else {
				r.scope = scope
			}
		}
	}
	return r
}

// PointerDown routes a press to the gesture it starts. An armed pan claims
// the press before hit-testing matters; an in-flight node add consumes it
// as the placement click.
func (m *Manager) PointerDown(ctx context.Context, e PointerEvent) {
	r := m.resolve(ctx)

	if m.fsm.IsAddingNode() {
		m.placeNode(ctx, r, e.Position)
		return
	}
	if m.fsm.State() == machine.PanningActivated {
		m.panner.BeforePan(e.Position, m.root())
		m.fsm.Fire(machine.InitiatePanning)
		m.beginGesture(ctx, r, domain.GesturePan)
		return
	}

	target := m.diagram.Graph.HitTest(e.Position)
	m.log.Debug("pointer down",
		"x", e.Position.X, "y", e.Position.Y,
		"target", target.ID, "kind", target.Kind, "state", m.fsm.State())

	switch target.Kind {
	case domain.KindNode:
		m.downOnNode(ctx, r, e, target)
	case domain.KindSocket:
		m.downOnSocket(ctx, r, target)
	default:
		m.downOnBackground(ctx, r)
	}
}

// downOnNode selects the node in the current scope, then arms dragging when
// an edit session is open. Selection is navigation, not mutation, so it
// never requires a session.
func (m *Manager) downOnNode(ctx context.Context, r resolved, e PointerEvent, target scene.Target) {
	if target.Placeholder {
		m.pulse(ctx, r, domain.PulsePlaceholder)
		return
	}

	m.selection.Select(r.scope, target.ID)
	ev := &domain.SelectionEvent{
		EventBase: m.base(domain.EventNodeSelected, r.session),
		Scope:     r.scope,
		NodeID:    target.ID,
		NodeName:  target.Name,
		Selected:  m.selection.Selected(r.scope),
	}
	m.emitNodeSelected(ctx, ev)
	if r.kind == domain.DiagramKindDeployment {
		if _, nested := m.diagram.Graph.DeploymentAncestor(target.ID); !nested {
			m.emitDeploymentNodeSelected(ctx, ev)
		}
		m.emitDeploymentSelection(ctx, ev)
	}

	if r.editable {
		m.dragger.BeforeDrag(e.Position, target, m.zoom.Factor())
		if m.fsm.Fire(machine.ActivateDragging) {
			m.beginGesture(ctx, r, domain.GestureDrag)
		}
	} else {
		if m.fsm.Fire(machine.ActivateSelecting) {
			m.beginGesture(ctx, r, domain.GestureSelect)
		}
		m.pulse(ctx, r, domain.PulseNoSession)
	}
	m.repaint(ctx)
}

// downOnSocket opens a provisional edge when the press lands on a live
// output socket and an edit session is open. Connections start at outputs;
// a press on an input socket is inert.
func (m *Manager) downOnSocket(ctx context.Context, r resolved, target scene.Target) {
	if target.Placeholder {
		m.pulse(ctx, r, domain.PulsePlaceholder)
		return
	}
	if !r.editable {
		m.pulse(ctx, r, domain.PulseNoSession)
		return
	}
	if target.Direction != domain.DirectionOutput {
		return
	}
	if err := m.connector.BeforeConnect(m.diagram.Graph, target.ID); err != nil {
		m.log.Debug("connect rejected", "socket", target.ID, "err", err)
		return
	}
	if m.fsm.Fire(machine.ActivateConnecting) {
		m.beginGesture(ctx, r, domain.GestureConnect)
	}
	m.repaint(ctx)
}

// downOnBackground clears the scope's selection. The cleared event only
// fires when something was actually selected.
func (m *Manager) downOnBackground(ctx context.Context, r resolved) {
	changed := len(m.selection.Selected(r.scope)) > 0
	m.selection.Clear(r.scope)
	if m.fsm.Fire(machine.ActivateDeselecting) {
		m.beginGesture(ctx, r, domain.GestureDeselect)
	}
	if !changed {
		return
	}
	ev := &domain.SelectionEvent{
		EventBase: m.base(domain.EventSelectionCleared, r.session),
		Scope:     r.scope,
		Selected:  []string{},
	}
	m.emitSelectionCleared(ctx, ev)
	if r.kind == domain.DiagramKindDeployment {
		m.emitDeploymentSelection(ctx, ev)
	}
	m.repaint(ctx)
}

// PointerMove advances the staged machine one step, then applies the
// per-move effect of whichever gesture reached its steady state. A gesture's
// first move sample is consumed by the Initiated hop, so effects start on
// the second sample; the release handler commits the full displacement
// either way.
func (m *Manager) PointerMove(ctx context.Context, e PointerEvent) {
	r := m.resolve(ctx)
	m.fsm.Advance()

	switch {
	case m.fsm.State() == machine.Panning:
		m.panner.Pan(e.Position, m.root())
		m.repaint(ctx)

	case m.fsm.State() == machine.Dragging:
		if !r.editable {
			return
		}
		node, ok := m.selectedNode(r.scope)
		if !ok {
			m.log.Warn("drag move with no selection", "scope", r.scope)
			return
		}
		m.dragger.Drag(e.Position, node, m.diagram.Graph)
		m.diagram.Graph.RefreshEdgeGeometry(node.ID)
		m.repaint(ctx)

	case m.connectTracking():
		m.trackConnect(e.Position)
		m.repaint(ctx)

	case m.fsm.State() == machine.AddingNode:
		m.adder.Track(m.diagram.Graph, e.Position)
		m.repaint(ctx)
	}
}

// connectTracking reports whether the provisional endpoint follows this
// move: any connecting sub-state past the bare press.
func (m *Manager) connectTracking() bool {
	switch m.fsm.State() {
	case machine.ConnectingInitiated, machine.Connecting, machine.ConnectingToSocket:
		return true
	}
	return false
}

// trackConnect snaps the free endpoint onto a live input socket under the
// pointer, or lets it follow the pointer freely. Leaving a snapped socket
// releases the snap without rewinding the machine; the snapped state only
// records that a socket was reached at least once.
func (m *Manager) trackConnect(pointer domain.Point) {
	target := m.diagram.Graph.HitTest(pointer)
	if target.Kind == domain.KindSocket &&
		target.Direction == domain.DirectionInput && !target.Placeholder {
		m.connector.Connect(m.diagram.Graph, target.ID)
		m.fsm.Fire(machine.ConnectToSocket)
		return
	}
	m.connector.Drag(m.diagram.Graph, pointer)
}

// PointerUp finishes whichever gesture family is away from Idle. Commit
// decisions re-resolve editability at release time: a session that expired
// mid-gesture turns the release into a no-op.
func (m *Manager) PointerUp(ctx context.Context, e PointerEvent) {
	r := m.resolve(ctx)

	switch {
	case m.fsm.IsPanning():
		// An armed pan that never saw a press stays where it is.
		if m.fsm.State() != machine.PanningActivated {
			m.panner.AfterPan(e.Position, m.root())
		}
		m.fsm.Fire(machine.DeactivatePanning)
		m.endGesture(ctx, r)
		m.repaint(ctx)

	case m.fsm.IsSelecting():
		m.fsm.Fire(machine.DeactivateSelecting)
		m.endGesture(ctx, r)
		m.repaint(ctx)

	case m.fsm.IsDeselecting():
		m.fsm.Fire(machine.DeactivateDeselecting)
		m.endGesture(ctx, r)
		m.repaint(ctx)

	case m.fsm.IsDragging():
		m.finishDrag(ctx, r, e.Position)

	case m.fsm.IsConnecting():
		m.finishConnect(ctx, r, e.Position)

	case m.fsm.IsAddingNode():
		// Only reachable when the placement press was rejected.
		m.adder.Cancel(m.diagram.Graph)
		m.fsm.Fire(machine.DeactivateNodeAdd)
		m.endGesture(ctx, r)
		m.repaint(ctx)
	}
}

// finishDrag commits the dragged node at the release position. The dragging
// family cannot be active without a selected node in scope; finding none
// means selection and machine state disagree, which is unrecoverable.
func (m *Manager) finishDrag(ctx context.Context, r resolved, at domain.Point) {
	node, ok := m.selectedNode(r.scope)
	if !ok {
		panic(fmt.Sprintf("interaction: dragging ended with no selected node in scope %q", r.scope))
	}
	// A press with no movement is a click, not a drag.
	if m.fsm.State() != machine.DraggingActivated && r.editable {
		m.dragger.AfterDrag(at, node, m.diagram.Graph)
		m.diagram.Graph.RefreshEdgeGeometry(node.ID)
		m.emitNodeMoved(ctx, &domain.NodeEvent{
			EventBase: m.base(domain.EventNodeMoved, r.session),
			NodeID:    node.ID,
			NodeName:  node.Name,
			NodeType:  node.Type,
			Position:  node.Position(),
		})
	}
	m.fsm.Fire(machine.DeactivateDragging)
	m.endGesture(ctx, r)
	m.repaint(ctx)
}

// finishConnect commits the provisional edge when the release lands on a
// live input socket. The decision comes from the release position alone;
// snapping along the way was only visual. Edges the graph refuses, such as
// duplicates or loops back onto the source node, are discarded silently.
func (m *Manager) finishConnect(ctx context.Context, r resolved, at domain.Point) {
	defer func() {
		m.connector.Abort(m.diagram.Graph)
		m.fsm.Fire(machine.DeactivateConnecting)
		m.endGesture(ctx, r)
		m.repaint(ctx)
	}()

	if !r.editable {
		m.pulse(ctx, r, domain.PulseNoSession)
		return
	}
	target := m.diagram.Graph.HitTest(at)
	if target.Kind != domain.KindSocket ||
		target.Direction != domain.DirectionInput || target.Placeholder {
		return
	}
	// A press with no movement is a click, not a connect.
	if !m.fsm.Fire(machine.ConnectToSocket) && m.fsm.State() != machine.ConnectingToSocket {
		return
	}
	edge, err := m.connector.AfterConnect(m.diagram.Graph, target.ID)
	if err != nil {
		m.log.Debug("connection discarded", "to", target.ID, "err", err)
		return
	}
	m.emitEdgeConnected(ctx, &domain.EdgeEvent{
		EventBase:  m.base(domain.EventEdgeConnected, r.session),
		EdgeID:     edge.ID,
		FromSocket: edge.FromSocket,
		ToSocket:   edge.ToSocket,
	})
}

// placeNode consumes a press as the placement click of an in-flight node
// add. Editability is re-checked at placement time.
func (m *Manager) placeNode(ctx context.Context, r resolved, at domain.Point) {
	if !r.editable {
		m.pulse(ctx, r, domain.PulseNoSession)
		return
	}
	m.adder.Track(m.diagram.Graph, at)
	node, ok := m.adder.Commit(m.diagram.Graph)
	m.fsm.Fire(machine.DeactivateNodeAdd)
	if !ok {
		return
	}
	m.emitNodeAdded(ctx, &domain.NodeEvent{
		EventBase: m.base(domain.EventNodeAdded, r.session),
		NodeID:    node.ID,
		NodeName:  node.Name,
		NodeType:  node.Type,
		Position:  node.Position(),
	})
	m.endGesture(ctx, r)
	m.repaint(ctx)
}

// Wheel zooms about the pointer position. Zooming is not a gesture family:
// it applies in any machine state, including mid-gesture.
func (m *Manager) Wheel(ctx context.Context, e WheelEvent) {
	m.zoom.SetMagnitude(e.Magnitude)
	m.zoom.Zoom(e.Position, m.root())
	m.repaint(ctx)
}

// ActivatePanning arms the pan family so the next press pans instead of
// hit-testing. Hosts call this while their pan affordance (space bar,
// middle button, hand tool) is held. Arming fails while another gesture is
// active.
func (m *Manager) ActivatePanning() bool {
	return m.fsm.Fire(machine.ActivatePanning)
}

// DeactivatePanning disarms the pan family from any of its stages.
func (m *Manager) DeactivatePanning() bool {
	if !m.fsm.IsPanning() {
		return false
	}
	return m.fsm.Fire(machine.DeactivatePanning)
}

// BeginNodeAdd starts a node-add gesture: a placeholder node is inserted
// under the drilled deployment node (or the scene root), centered under the
// given position, and follows the pointer until a placement click commits
// it. Unlike the pointer handlers, this is a host command, so rejections
// come back as errors.
func (m *Manager) BeginNodeAdd(ctx context.Context, name, nodeType string, at domain.Point) (*scene.Node, error) {
	r := m.resolve(ctx)
	if !r.editable {
		m.pulse(ctx, r, domain.PulseNoSession)
		return nil, domain.ErrNoEditSession
	}
	if !m.fsm.Fire(machine.ActivateNodeAdd) {
		return nil, fmt.Errorf("begin node add: a %s %w", m.fsm.State(), domain.ErrGestureActive)
	}
	node, err := m.adder.Begin(m.diagram.Graph, name, nodeType, r.scope, at)
	if err != nil {
		m.fsm.Fire(machine.DeactivateNodeAdd)
		return nil, err
	}
	m.beginGesture(ctx, r, domain.GestureNodeAdd)
	m.repaint(ctx)
	return node, nil
}

// CancelNodeAdd abandons an in-flight node add and removes its placeholder.
func (m *Manager) CancelNodeAdd(ctx context.Context) bool {
	if !m.fsm.IsAddingNode() {
		return false
	}
	m.adder.Cancel(m.diagram.Graph)
	m.fsm.Fire(machine.DeactivateNodeAdd)
	m.endGesture(ctx, m.resolve(ctx))
	m.repaint(ctx)
	return true
}

// SetDiagram swaps the diagram wholesale, as a dev-mode reload does, and
// resets every gesture: machine state, selection, zoom and pending visuals.
func (m *Manager) SetDiagram(d *scene.Diagram) {
	m.diagram = d
	m.fsm = machine.New()
	m.selection.Reset()
	m.zoom = zoomerFor(d)
	m.panner = Panner{}
	m.dragger = Dragger{}
	m.connector = Connector{}
	m.adder = NodeAdder{}
	m.gesture = ""
}

// Diagram returns the scene the manager operates on.
func (m *Manager) Diagram() *scene.Diagram {
	return m.diagram
}

// Selection returns the scoped selection store.
func (m *Manager) Selection() *scene.Selection {
	return m.selection
}

// Zoom returns the zoom state.
func (m *Manager) Zoom() *Zoomer {
	return m.zoom
}

// State returns the current machine state.
func (m *Manager) State() machine.State {
	return m.fsm.State()
}

// PendingNode returns the ID of the in-flight node add, or "".
func (m *Manager) PendingNode() string {
	return m.adder.Pending()
}

func (m *Manager) root() *scene.Node {
	return m.diagram.Graph.Root()
}

// selectedNode resolves the scope's primary selection to a live node.
func (m *Manager) selectedNode(scope string) (*scene.Node, bool) {
	id, ok := m.selection.First(scope)
	if !ok {
		return nil, false
	}
	return m.diagram.Graph.Node(id)
}

// repaint asks the renderer to redraw. Render failures are logged, never
// propagated: a lost frame must not corrupt gesture state.
func (m *Manager) repaint(ctx context.Context) {
	if m.renderer == nil {
		return
	}
	if err := m.renderer.Render(ctx, m.diagram); err != nil {
		m.log.Error("render failed", "err", err)
	}
}

// pulse reports an editability rejection. The gesture itself is skipped
// silently; the hook lets the host nudge the user toward the edit control.
func (m *Manager) pulse(ctx context.Context, r resolved, reason string) {
	m.log.Debug("edit rejected", "reason", reason)
	if m.hooks.OnEditPulse != nil {
		m.hooks.OnEditPulse(ctx, &domain.PulseEvent{
			EventBase: m.base(domain.EventEditPulse, r.session),
			Reason:    reason,
		})
	}
}

func (m *Manager) base(t domain.EventType, session string) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: session}
}

func (m *Manager) beginGesture(ctx context.Context, r resolved, name string) {
	m.gesture = name
	m.gestureStart = time.Now()
	if m.hooks.OnGesture != nil {
		m.hooks.OnGesture(ctx, &domain.GestureEvent{
			EventBase: m.base(domain.EventGesture, r.session),
			Gesture:   name,
			Phase:     domain.GesturePhaseStart,
		})
	}
}

func (m *Manager) endGesture(ctx context.Context, r resolved) {
	if m.gesture == "" {
		return
	}
	if m.hooks.OnGesture != nil {
		m.hooks.OnGesture(ctx, &domain.GestureEvent{
			EventBase: m.base(domain.EventGesture, r.session),
			Gesture:   m.gesture,
			Phase:     domain.GesturePhaseEnd,
			Duration:  time.Since(m.gestureStart),
		})
	}
	m.gesture = ""
}

func (m *Manager) emitNodeSelected(ctx context.Context, e *domain.SelectionEvent) {
	if m.hooks.OnNodeSelected != nil {
		m.hooks.OnNodeSelected(ctx, e)
	}
}

func (m *Manager) emitDeploymentNodeSelected(ctx context.Context, e *domain.SelectionEvent) {
	if m.hooks.OnDeploymentNodeSelected != nil {
		m.hooks.OnDeploymentNodeSelected(ctx, e)
	}
}

func (m *Manager) emitDeploymentSelection(ctx context.Context, e *domain.SelectionEvent) {
	if m.hooks.OnDeploymentSelection != nil {
		m.hooks.OnDeploymentSelection(ctx, e)
	}
}

func (m *Manager) emitSelectionCleared(ctx context.Context, e *domain.SelectionEvent) {
	if m.hooks.OnSelectionCleared != nil {
		m.hooks.OnSelectionCleared(ctx, e)
	}
}

func (m *Manager) emitNodeMoved(ctx context.Context, e *domain.NodeEvent) {
	if m.hooks.OnNodeMoved != nil {
		m.hooks.OnNodeMoved(ctx, e)
	}
}

func (m *Manager) emitNodeAdded(ctx context.Context, e *domain.NodeEvent) {
	if m.hooks.OnNodeAdded != nil {
		m.hooks.OnNodeAdded(ctx, e)
	}
}

func (m *Manager) emitEdgeConnected(ctx context.Context, e *domain.EdgeEvent) {
	if m.hooks.OnEdgeConnected != nil {
		m.hooks.OnEdgeConnected(ctx, e)
	}
}
