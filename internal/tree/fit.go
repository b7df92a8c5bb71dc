package tree

import (
	"errors"

	"github.com/1broseidon/bsptile/internal/geom"
)

// Placer applies a computed rectangle to a real window. fresh is true for
// tiles that have not been placed since the tree was built.
type Placer interface {
	Place(id TileID, from, to geom.Rect, fresh bool) error
}

// PlacerFunc adapts a function to the Placer interface.
type PlacerFunc func(id TileID, from, to geom.Rect, fresh bool) error

func (f PlacerFunc) Place(id TileID, from, to geom.Rect, fresh bool) error {
	return f(id, from, to, fresh)
}

// Fit walks t pre-order, splitting area down to the leaves, and hands every
// tile whose window frame differs from its target to p. The target is the
// tile's rectangle shrunk by spacing on every side.
//
// frames maps tile ids to current window frames. Tiles without a frame are
// reported together in a *StaleTileError after the rest of the tree has been
// placed. A malformed node aborts the walk with a *CorruptTreeError. Placer
// failures are wrapped in *PlaceError; all non-fatal errors are joined.
func Fit(t *Tree, area geom.Rect, frames map[TileID]geom.Rect, spacing int, p Placer) error {
	var stale []TileID
	var errs []error

	err := t.layout(t.root, area, func(id NodeID, r geom.Rect) {
		n := &t.nodes[id]
		if n.payload.Kind != KindTile {
			return
		}
		tile := n.payload.Tile
		from, ok := frames[tile.ID]
		if !ok {
			stale = append(stale, tile.ID)
			return
		}
		to := target(r, spacing)
		if from == to {
			n.payload.Tile.IsNew = false
			return
		}
		if err := p.Place(tile.ID, from, to, tile.IsNew); err != nil {
			errs = append(errs, &PlaceError{ID: tile.ID, Err: err})
			return
		}
		n.payload.Tile.IsNew = false
	})
	if err != nil {
		return err
	}

	if len(stale) > 0 {
		errs = append([]error{&StaleTileError{IDs: stale}}, errs...)
	}
	return errors.Join(errs...)
}

// Layout returns the rectangle of every node when the root covers area.
func Layout(t *Tree, area geom.Rect) (map[NodeID]geom.Rect, error) {
	out := make(map[NodeID]geom.Rect, len(t.nodes))
	err := t.layout(t.root, area, func(id NodeID, r geom.Rect) {
		out[id] = r
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tree) layout(id NodeID, r geom.Rect, visit func(NodeID, geom.Rect)) error {
	if !t.valid(id) {
		return &CorruptTreeError{Node: id, Reason: "not a live node"}
	}
	if err := t.checkShape(id); err != nil {
		return err
	}
	visit(id, r)

	n := t.nodes[id]
	if n.payload.Kind == KindTile || n.left == NoNode {
		return nil
	}
	leftRect, rightRect := SplitArea(r, n.payload.Container)
	if err := t.layout(n.left, leftRect, visit); err != nil {
		return err
	}
	return t.layout(n.right, rightRect, visit)
}

// target shrinks r by spacing, keeping at least one pixel in each
// dimension.
func target(r geom.Rect, spacing int) geom.Rect {
	out := r.Shrink(spacing)
	if out.Width < 1 {
		out.X = r.X + r.Width/2
		out.Width = 1
	}
	if out.Height < 1 {
		out.Y = r.Y + r.Height/2
		out.Height = 1
	}
	return out
}
