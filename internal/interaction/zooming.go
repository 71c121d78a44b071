package interaction

import (
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

// Zoom clamp and wheel sensitivity. One wheel notch of magnitude 100
// changes the scale by 10%.
const (
	MinZoom  = 0.1
	MaxZoom  = 5.0
	zoomStep = 0.001
)

// Zoomer owns the view scale. The factor lives in a single field behind
// explicit setters; the scene root's transform mirrors it, and mode managers
// read it to convert screen deltas into scene deltas.
type Zoomer struct {
	factor    float64
	magnitude float64
}

func NewZoomer() *Zoomer {
	return &Zoomer{factor: 1}
}

// Factor returns the current scale factor.
func (z *Zoomer) Factor() float64 {
	return z.factor
}

// SetFactor overrides the scale factor, clamped to the allowed range.
// Updating the root transform to match is the caller's job.
func (z *Zoomer) SetFactor(f float64) {
	z.factor = clampZoom(f)
}

// Magnitude returns the wheel magnitude recorded for the next Zoom.
func (z *Zoomer) Magnitude() float64 {
	return z.magnitude
}

// SetMagnitude records a wheel delta. Positive magnitudes zoom out.
func (z *Zoomer) SetMagnitude(m float64) {
	z.magnitude = m
}

// Zoom rescales the view around the pivot so the scene point under the
// pivot stays under it on screen. The root translation is adjusted to
// compensate for the scale change before both axis scales are updated.
func (z *Zoomer) Zoom(pivot domain.Point, root *scene.Node) {
	next := clampZoom(z.factor * (1 - z.magnitude*zoomStep))
	if next == z.factor {
		return
	}
	t := root.Transform.Translation
	root.Transform.Translation = pivot.Sub(pivot.Sub(t).Scale(next / z.factor))
	root.Transform.ScaleX = next
	root.Transform.ScaleY = next
	z.factor = next
}

func clampZoom(f float64) float64 {
	if f < MinZoom {
		return MinZoom
	}
	if f > MaxZoom {
		return MaxZoom
	}
	return f
}
