package domain

// Transform maps local coordinates into a parent coordinate space by scaling
// first and translating second. The scene root's transform carries the view
// state (pan translation plus zoom scale); interior nodes keep unit scale and
// use only the translation component.
type Transform struct {
	Translation Point   `json:"translation" yaml:"translation"`
	ScaleX      float64 `json:"scale_x" yaml:"scale_x"`
	ScaleY      float64 `json:"scale_y" yaml:"scale_y"`
}

// Identity returns the neutral transform (no translation, unit scale).
func Identity() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Translate returns a transform that only translates by p.
func Translate(p Point) Transform {
	return Transform{Translation: p, ScaleX: 1, ScaleY: 1}
}

// Apply maps a local-space point into the parent space.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: t.Translation.X + p.X*t.ScaleX,
		Y: t.Translation.Y + p.Y*t.ScaleY,
	}
}

// Invert maps a parent-space point back into local space.
// Scales must be non-zero; the zoom clamp upstream guarantees that for the
// scene root, and interior nodes always carry unit scale.
func (t Transform) Invert(p Point) Point {
	return Point{
		X: (p.X - t.Translation.X) / t.ScaleX,
		Y: (p.Y - t.Translation.Y) / t.ScaleY,
	}
}

// Compose returns the transform equivalent to applying child first, then t.
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Translation: t.Apply(child.Translation),
		ScaleX:      t.ScaleX * child.ScaleX,
		ScaleY:      t.ScaleY * child.ScaleY,
	}
}
