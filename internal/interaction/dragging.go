package interaction

import (
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

// Dragger owns the drag gesture. The offset between the pointer and the
// node's world position is captured in scene units at press time, so screen
// deltas are divided by the zoom factor before they reach the node.
type Dragger struct {
	offset domain.Point
}

// BeforeDrag captures the scene-space grab offset on the target.
func (d *Dragger) BeforeDrag(pointer domain.Point, target scene.Target, factor float64) {
	d.offset = pointer.Sub(target.World.Translation).Scale(1 / factor)
}

// Drag positions the node so its grab point stays under the pointer. The
// pointer is mapped into the parent's coordinate space first, which folds
// the view translation and zoom out of the screen position.
func (d *Dragger) Drag(pointer domain.Point, node *scene.Node, g *scene.Graph) {
	parent := g.WorldTransform(node.Parent())
	node.Transform.Translation = parent.Invert(pointer).Sub(d.offset)
}

// AfterDrag commits the position at the release point and clears the
// gesture data.
func (d *Dragger) AfterDrag(pointer domain.Point, node *scene.Node, g *scene.Graph) {
	d.Drag(pointer, node, g)
	d.offset = domain.Point{}
}
