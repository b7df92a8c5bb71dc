package tree

import "github.com/1broseidon/bsptile/internal/geom"

// Push inserts tile at the leaf whose rectangle contains p, splitting that
// leaf in two. area is the rectangle the root covers. It returns false
// without touching the tree when p is outside area or the tile is already
// present. The root index never changes.
func (t *Tree) Push(area geom.Rect, p geom.Point, tile Tile) bool {
	if !area.Contains(p) {
		return false
	}
	if t.Contains(tile.ID) {
		return false
	}
	return t.push(t.root, area, p, tile)
}

func (t *Tree) push(id NodeID, r geom.Rect, p geom.Point, tile Tile) bool {
	n := t.nodes[id]

	switch n.payload.Kind {
	case KindTile:
		// Split across the longer side.
		c := Container{Split: Vertical}
		if r.Height > r.Width {
			c.Split = Horizontal
		}
		leftRect, _ := SplitArea(r, c)
		old := n.payload.Tile
		if leftRect.Contains(p) {
			t.splitLeaf(id, c, tile, old)
		} else {
			t.splitLeaf(id, c, old, tile)
		}
		return true

	case KindContainer:
		if n.left == NoNode && n.right == NoNode {
			t.nodes[id].payload = TilePayload(tile)
			return true
		}
		if n.left == NoNode || n.right == NoNode {
			return false
		}
		leftRect, rightRect := SplitArea(r, n.payload.Container)
		if leftRect.Contains(p) {
			return t.push(n.left, leftRect, p, tile)
		}
		if rightRect.Contains(p) {
			return t.push(n.right, rightRect, p, tile)
		}
	}
	return false
}
