package tree

import (
	"errors"
	"slices"
	"testing"

	"github.com/1broseidon/bsptile/internal/geom"
)

var wide = geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func mustValid(t *testing.T, tr *Tree) {
	t.Helper()
	if err := tr.Validate(); err != nil {
		t.Fatalf("tree invalid: %v", err)
	}
}

func TestNew_IsEmpty(t *testing.T) {
	tr := New()
	mustValid(t, tr)
	if !tr.IsEmpty() {
		t.Fatalf("expected new tree to be empty")
	}
	if tr.Len() != 0 {
		t.Fatalf("expected 0 tiles, got %d", tr.Len())
	}
}

func TestBuild_WideMonitorRootIsVertical(t *testing.T) {
	tr := Build([]TileID{1, 2, 3}, wide)
	mustValid(t, tr)

	root := tr.Payload(tr.Root())
	if root.Kind != KindContainer {
		t.Fatalf("expected root container, got %v", root.Kind)
	}
	if root.Container.Split != Vertical {
		t.Fatalf("expected root split vertical, got %v", root.Container.Split)
	}

	left, right := tr.Children(tr.Root())
	if p := tr.Payload(left); p.Kind != KindTile || p.Tile.ID != 1 {
		t.Fatalf("expected main tile 1 on the left, got %+v", p)
	}
	// The stack on the right alternates to a horizontal split.
	if p := tr.Payload(right); p.Kind != KindContainer || p.Container.Split != Horizontal {
		t.Fatalf("expected horizontal stack on the right, got %+v", p)
	}
	if got := tr.Tiles(); !slices.Equal(got, []TileID{1, 2, 3}) {
		t.Fatalf("expected tiles [1 2 3], got %v", got)
	}
}

func TestBuild_TallMonitorRootIsHorizontal(t *testing.T) {
	tr := Build([]TileID{1, 2}, geom.Rect{Width: 1080, Height: 1920})
	if s := tr.Payload(tr.Root()).Container.Split; s != Horizontal {
		t.Fatalf("expected horizontal root on a tall monitor, got %v", s)
	}
}

func TestBuild_MarksTilesNewAndSkipsDuplicates(t *testing.T) {
	tr := Build([]TileID{7, 8, 7}, wide)
	mustValid(t, tr)
	if tr.Len() != 2 {
		t.Fatalf("expected 2 tiles, got %d", tr.Len())
	}
	tr.Walk(func(id NodeID, _ int) bool {
		if p := tr.Payload(id); p.Kind == KindTile && !p.Tile.IsNew {
			t.Fatalf("expected tile %d to be marked new", p.Tile.ID)
		}
		return true
	})
}

func TestBuild_EmptyListGivesEmptyTree(t *testing.T) {
	tr := Build(nil, wide)
	if !tr.IsEmpty() {
		t.Fatalf("expected empty tree")
	}
}

func TestWalk_VisitsEveryNodeOnce(t *testing.T) {
	tr := Build([]TileID{1, 2, 3, 4, 5}, wide)
	seen := map[NodeID]int{}
	tiles := 0
	tr.Walk(func(id NodeID, _ int) bool {
		seen[id]++
		if tr.Payload(id).Kind == KindTile {
			tiles++
		}
		return true
	})
	// 5 tiles in a binary tree means 4 containers.
	if len(seen) != 9 {
		t.Fatalf("expected 9 nodes, got %d", len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("node %d visited %d times", id, n)
		}
	}
	if tiles != 5 {
		t.Fatalf("expected 5 tiles, got %d", tiles)
	}
}

func TestPush_IntoEmptyOccupiesRoot(t *testing.T) {
	tr := New()
	if !tr.Push(wide, geom.Point{X: 100, Y: 100}, Tile{ID: 1}) {
		t.Fatalf("expected push to succeed")
	}
	mustValid(t, tr)
	if p := tr.Payload(tr.Root()); p.Kind != KindTile || p.Tile.ID != 1 {
		t.Fatalf("expected root tile 1, got %+v", p)
	}
}

func TestPush_SplitsLeafTowardPoint(t *testing.T) {
	tr := New()
	tr.Push(wide, geom.Point{X: 10, Y: 10}, Tile{ID: 1})
	root := tr.Root()

	// Point on the left half of a wide leaf: new tile goes left.
	if !tr.Push(wide, geom.Point{X: 100, Y: 500}, Tile{ID: 2}) {
		t.Fatalf("expected push to succeed")
	}
	mustValid(t, tr)
	if tr.Root() != root {
		t.Fatalf("push must not replace the root")
	}
	p := tr.Payload(root)
	if p.Kind != KindContainer || p.Container.Split != Vertical {
		t.Fatalf("expected vertical split of a wide leaf, got %+v", p)
	}
	left, right := tr.Children(root)
	if tr.Payload(left).Tile.ID != 2 || tr.Payload(right).Tile.ID != 1 {
		t.Fatalf("expected new tile left and old tile right, got %v", tr.Tiles())
	}
}

func TestPush_TallLeafSplitsHorizontally(t *testing.T) {
	tr := New()
	area := geom.Rect{Width: 600, Height: 1000}
	tr.Push(area, geom.Point{X: 1, Y: 1}, Tile{ID: 1})
	tr.Push(area, geom.Point{X: 300, Y: 900}, Tile{ID: 2})

	p := tr.Payload(tr.Root())
	if p.Container.Split != Horizontal {
		t.Fatalf("expected horizontal split, got %v", p.Container.Split)
	}
	_, bottom := tr.Children(tr.Root())
	if tr.Payload(bottom).Tile.ID != 2 {
		t.Fatalf("expected new tile at the bottom, got %v", tr.Tiles())
	}
}

func TestPush_DescendsIntoContainingChild(t *testing.T) {
	tr := Build([]TileID{1, 2, 3}, wide)
	// Right half is split top/bottom: 2 on top, 3 below. Drop into 3.
	if !tr.Push(wide, geom.Point{X: 1500, Y: 1000}, Tile{ID: 4}) {
		t.Fatalf("expected push to succeed")
	}
	mustValid(t, tr)
	if tr.Len() != 4 {
		t.Fatalf("expected 4 tiles, got %d", tr.Len())
	}
	n := tr.Find(4)
	parent := tr.Parent(n)
	left, right := tr.Children(parent)
	siblings := []TileID{tr.Payload(left).Tile.ID, tr.Payload(right).Tile.ID}
	if !slices.Contains(siblings, 3) {
		t.Fatalf("expected tile 4 to share a split with 3, got siblings %v", siblings)
	}
}

func TestPush_BoundaryPointGoesRight(t *testing.T) {
	tr := Build([]TileID{1, 2}, wide)
	// x=960 is exactly on the vertical split line.
	tr.Push(wide, geom.Point{X: 960, Y: 10}, Tile{ID: 3})
	_, right := tr.Children(tr.Root())
	if tr.Payload(right).Kind != KindContainer {
		t.Fatalf("expected the right child to be split by the boundary push")
	}
}

func TestPush_InvariantsHold(t *testing.T) {
	tr := Build([]TileID{1, 2, 3}, wide)
	before := tr.Len()

	if !tr.Push(wide, geom.Point{X: 100, Y: 100}, Tile{ID: 9}) {
		t.Fatalf("expected push to succeed")
	}
	if tr.Len() != before+1 {
		t.Fatalf("expected %d tiles, got %d", before+1, tr.Len())
	}
	if !tr.Contains(1) {
		t.Fatalf("previous occupant 1 must still be present")
	}
}

func TestPush_NoOps(t *testing.T) {
	tr := Build([]TileID{1, 2}, wide)
	snapshot := tr.Clone()

	if tr.Push(wide, geom.Point{X: -1, Y: 10}, Tile{ID: 3}) {
		t.Fatalf("expected push outside the area to be ignored")
	}
	if tr.Push(wide, geom.Point{X: 1920, Y: 10}, Tile{ID: 3}) {
		t.Fatalf("expected push on the exclusive right edge to be ignored")
	}
	if tr.Push(wide, geom.Point{X: 10, Y: 10}, Tile{ID: 2}) {
		t.Fatalf("expected duplicate push to be ignored")
	}
	if !tr.Equal(snapshot) {
		t.Fatalf("no-op pushes must not change the tree")
	}
}

func TestRemove_CollapsesParent(t *testing.T) {
	tr := Build([]TileID{1, 2, 3}, wide)

	root, err := tr.Remove(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustValid(t, tr)
	if root != tr.Root() {
		t.Fatalf("returned root %d differs from stored root %d", root, tr.Root())
	}
	if tr.Contains(2) {
		t.Fatalf("tile 2 should be gone")
	}
	if got := tr.Tiles(); !slices.Equal(got, []TileID{1, 3}) {
		t.Fatalf("expected tiles [1 3], got %v", got)
	}
	// 3 takes the whole right half.
	_, right := tr.Children(tr.Root())
	if tr.Payload(right).Tile.ID != 3 {
		t.Fatalf("expected tile 3 promoted to the right child")
	}
}

func TestRemove_ReplacesRoot(t *testing.T) {
	tr := Build([]TileID{1, 2}, wide)
	oldRoot := tr.Root()

	root, err := tr.Remove(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root == oldRoot {
		t.Fatalf("expected a new root after collapsing the top split")
	}
	if p := tr.Payload(root); p.Kind != KindTile || p.Tile.ID != 2 {
		t.Fatalf("expected root tile 2, got %+v", p)
	}
	if tr.Parent(root) != NoNode {
		t.Fatalf("new root must have no parent")
	}
	mustValid(t, tr)
}

func TestRemove_SoleTileLeavesEmptyContainer(t *testing.T) {
	tr := Build([]TileID{1}, wide)
	if _, err := tr.Remove(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tr.IsEmpty() {
		t.Fatalf("expected empty root container")
	}
	mustValid(t, tr)
}

func TestRemove_UnknownIDIsNoOp(t *testing.T) {
	tr := Build([]TileID{1, 2, 3, 4}, wide)
	snapshot := tr.Clone()

	root, err := tr.Remove(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root != snapshot.Root() {
		t.Fatalf("root changed on no-op removal")
	}
	if !tr.Equal(snapshot) {
		t.Fatalf("expected identical tree after removing an unknown id")
	}
}

func TestRemove_DeepTileAndReuseOfFreedNodes(t *testing.T) {
	tr := Build([]TileID{1, 2, 3, 4, 5}, wide)
	for _, id := range []TileID{4, 2} {
		if _, err := tr.Remove(id); err != nil {
			t.Fatalf("remove %d: %v", id, err)
		}
		mustValid(t, tr)
	}
	if got := tr.Tiles(); !slices.Equal(got, []TileID{1, 3, 5}) {
		t.Fatalf("expected [1 3 5], got %v", got)
	}
	arena := len(tr.nodes)
	tr.Push(wide, geom.Point{X: 10, Y: 10}, Tile{ID: 6})
	if len(tr.nodes) != arena {
		t.Fatalf("expected freed nodes to be reused, arena grew from %d to %d", arena, len(tr.nodes))
	}
	mustValid(t, tr)
}

func TestRemove_CorruptContainerErrors(t *testing.T) {
	tr := Build([]TileID{1, 2, 3}, wide)
	_, right := tr.Children(tr.Root())
	// Break the right container by dropping one child.
	tr.nodes[right].right = NoNode

	_, err := tr.Remove(3)
	var corrupt *CorruptTreeError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptTreeError, got %v", err)
	}
	if corrupt.Node != right {
		t.Fatalf("expected corrupt node %d, got %d", right, corrupt.Node)
	}
}

func TestValidate_DetectsDuplicateTile(t *testing.T) {
	tr := Build([]TileID{1, 2}, wide)
	_, right := tr.Children(tr.Root())
	tr.nodes[right].payload.Tile.ID = 1

	var corrupt *CorruptTreeError
	if err := tr.Validate(); !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptTreeError for duplicate tile, got %v", err)
	}
}

func TestSetConstraint(t *testing.T) {
	tr := Build([]TileID{1, 2}, wide)
	if err := tr.SetConstraint(2, 600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := tr.Payload(tr.Root()).Container
	if !c.Constrained || c.Constraint != 600 {
		t.Fatalf("expected constraint 600, got %+v", c)
	}
	if err := tr.SetConstraint(2, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Payload(tr.Root()).Container.Constrained {
		t.Fatalf("expected constraint cleared")
	}

	single := Build([]TileID{1}, wide)
	if err := single.SetConstraint(1, 100); err == nil {
		t.Fatalf("expected error for a tile without a split")
	}
	if err := tr.SetConstraint(99, 100); err == nil {
		t.Fatalf("expected error for an unknown tile")
	}
}

func TestParseSplit(t *testing.T) {
	for _, s := range []Split{Horizontal, Vertical} {
		got, err := ParseSplit(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseSplit(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseSplit("diagonal"); err == nil {
		t.Fatalf("expected error for unknown split")
	}
}
