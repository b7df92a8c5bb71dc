package tiling

import "github.com/1broseidon/bsptile/internal/geom"

// WorkArea returns the rectangle the root of a slot's tree covers. Each side
// of inset is clamped to half the matching dimension. The result is then
// grown by spacing on every side, because every tile is later shrunk by the
// same amount: edge gaps end up equal to inset and gaps between neighbours
// equal to twice the spacing.
func WorkArea(raw geom.Rect, inset geom.Inset, spacing int) geom.Rect {
	clamp := func(v, dim int) int {
		return min(max(v, 0), dim/2)
	}
	top := clamp(inset.Top, raw.Height)
	bottom := clamp(inset.Bottom, raw.Height)
	left := clamp(inset.Left, raw.Width)
	right := clamp(inset.Right, raw.Width)

	return geom.Rect{
		X:      raw.X + left - spacing,
		Y:      raw.Y + top - spacing,
		Width:  raw.Width - left - right + 2*spacing,
		Height: raw.Height - top - bottom + 2*spacing,
	}
}
