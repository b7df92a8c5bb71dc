package tree

import "github.com/1broseidon/bsptile/internal/geom"

// SplitArea divides parent between the two children of a container. The left
// child gets c.Constraint (or half) of the split dimension and the right
// child gets the rest, shifted past the left child. The constraint is
// clamped so both children keep at least one pixel.
func SplitArea(parent geom.Rect, c Container) (geom.Rect, geom.Rect) {
	left, right := parent, parent

	dim := parent.Width
	if c.Split == Horizontal {
		dim = parent.Height
	}

	size := dim / 2
	if c.Constrained && dim >= 2 {
		size = min(max(c.Constraint, 1), dim-1)
	}

	if c.Split == Horizontal {
		left.Height = size
		right.Y += size
		right.Height = dim - size
	} else {
		left.Width = size
		right.X += size
		right.Width = dim - size
	}
	return left, right
}
