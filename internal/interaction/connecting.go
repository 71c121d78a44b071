package interaction

import (
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

// Connector owns the connect gesture: a provisional edge anchored at an
// output socket whose free endpoint follows the pointer, snapping onto
// input sockets it passes over. Snapping is purely visual; nothing is
// committed until the pointer is released over a valid target.
type Connector struct {
	snapped string
}

// BeforeConnect opens the provisional edge at the output socket.
func (c *Connector) BeforeConnect(g *scene.Graph, fromSocketID string) error {
	_, err := g.BeginProvisionalEdge(fromSocketID)
	return err
}

// Drag lets the free endpoint follow the pointer, mapped into scene space.
// Any previous snap is released.
func (c *Connector) Drag(g *scene.Graph, pointer domain.Point) {
	e := g.ProvisionalEdge()
	if e == nil {
		return
	}
	e.To = g.Root().Transform.Invert(pointer)
	c.snapped = ""
}

// Connect snaps the free endpoint onto the socket's anchor.
func (c *Connector) Connect(g *scene.Graph, socketID string) {
	e := g.ProvisionalEdge()
	if e == nil {
		return
	}
	anchor, err := g.Anchor(socketID)
	if err != nil {
		return
	}
	e.To = anchor
	c.snapped = socketID
}

// Snapped returns the socket the endpoint is snapped onto, or "".
func (c *Connector) Snapped() string {
	return c.snapped
}

// AfterConnect commits the provisional edge into the given input socket.
func (c *Connector) AfterConnect(g *scene.Graph, toSocketID string) (*scene.Edge, error) {
	c.snapped = ""
	return g.CommitProvisionalEdge(toSocketID)
}

// Abort drops whatever provisional edge remains and clears the snap.
func (c *Connector) Abort(g *scene.Graph) {
	g.DropProvisionalEdge()
	c.snapped = ""
}
