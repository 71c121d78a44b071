package interaction

import (
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

// Panner owns the pan gesture. It captures the grab offset between the
// pointer and the view translation at press time, then moves the scene root
// by raw screen deltas. Pan distances are not divided by the zoom factor:
// the gesture moves the canvas itself, not content within it.
type Panner struct {
	offset domain.Point
}

// BeforePan captures the grab offset at the press position.
func (p *Panner) BeforePan(pointer domain.Point, root *scene.Node) {
	p.offset = pointer.Sub(root.Transform.Translation)
}

// Pan moves the view so the grabbed point stays under the pointer.
func (p *Panner) Pan(pointer domain.Point, root *scene.Node) {
	root.Transform.Translation = pointer.Sub(p.offset)
}

// AfterPan applies the release position and clears the gesture data.
func (p *Panner) AfterPan(pointer domain.Point, root *scene.Node) {
	p.Pan(pointer, root)
	p.offset = domain.Point{}
}
