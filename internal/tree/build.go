package tree

import "github.com/1broseidon/bsptile/internal/geom"

// Build lays ids out as a right-leaning chain: the first tile takes the
// main area and every following tile splits the most recent one. Splits
// alternate, starting with side by side on a wide area and stacked on a
// tall one. Duplicate ids are skipped. Every tile is marked IsNew.
func Build(ids []TileID, area geom.Rect) *Tree {
	t := New()
	cur := t.root
	seen := make(map[TileID]struct{}, len(ids))

	i := 0
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		tile := Tile{ID: id, IsNew: true}
		if i == 0 {
			t.nodes[cur].payload = TilePayload(tile)
			i++
			continue
		}

		split := Vertical
		if area.Wide() {
			split = Horizontal
		}
		if i%2 == 1 {
			split = split.Opposite()
		}

		t.splitLeaf(cur, Container{Split: split}, t.nodes[cur].payload.Tile, tile)
		cur = t.nodes[cur].right
		i++
	}
	return t
}
