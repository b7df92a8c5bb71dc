// Package tree implements the binary space partition that decides where every
// tiled window of a slot goes.
//
// Nodes live in an arena owned by Tree and are addressed by NodeID. A node
// carries either a Tile (one window, never has children) or a Container (a
// split, always has two children except for the empty root of a slot with no
// windows).
package tree

import "fmt"

// TileID identifies the window held by a tile.
type TileID uint32

// NodeID addresses a node inside a Tree's arena.
type NodeID int

// NoNode marks an absent child or parent.
const NoNode NodeID = -1

// Split is the axis along which a container divides its rectangle.
type Split uint8

const (
	// Horizontal divides the height: children are stacked top and bottom.
	Horizontal Split = iota
	// Vertical divides the width: children sit side by side.
	Vertical
)

func (s Split) String() string {
	switch s {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("split(%d)", uint8(s))
	}
}

// Opposite returns the other split axis.
func (s Split) Opposite() Split {
	if s == Horizontal {
		return Vertical
	}
	return Horizontal
}

// ParseSplit is the inverse of Split.String.
func ParseSplit(s string) (Split, error) {
	switch s {
	case "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	default:
		return 0, fmt.Errorf("unknown split %q", s)
	}
}

// Kind tags the variant held by a Payload.
type Kind uint8

const (
	KindContainer Kind = iota
	KindTile
)

func (k Kind) String() string {
	if k == KindTile {
		return "tile"
	}
	return "container"
}

// Tile is the payload of a leaf.
type Tile struct {
	ID TileID
	// IsNew is set on tiles created by Build and cleared by the first Fit
	// that places them.
	IsNew bool
}

// Container is the payload of a split node.
type Container struct {
	Split Split
	// Constraint is the size of the left child along the split dimension.
	// Only meaningful when Constrained is true; otherwise the rectangle is
	// bisected.
	Constraint  int
	Constrained bool
}

// Payload is a tagged union over Tile and Container.
type Payload struct {
	Kind      Kind
	Tile      Tile
	Container Container
}

func TilePayload(t Tile) Payload {
	return Payload{Kind: KindTile, Tile: t}
}

func ContainerPayload(c Container) Payload {
	return Payload{Kind: KindContainer, Container: c}
}

type node struct {
	payload Payload
	left    NodeID
	right   NodeID
	parent  NodeID
	live    bool
}

// Tree is one slot's partition. The zero value is not usable; call New.
type Tree struct {
	nodes []node
	free  []NodeID
	root  NodeID
}

// New returns a tree whose root is an empty container.
func New() *Tree {
	t := &Tree{}
	t.root = t.alloc(ContainerPayload(Container{}), NoNode)
	return t
}

func (t *Tree) alloc(p Payload, parent NodeID) NodeID {
	n := node{payload: p, left: NoNode, right: NoNode, parent: parent, live: true}
	if k := len(t.free); k > 0 {
		id := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[id] = n
		return id
	}
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) release(id NodeID) {
	t.nodes[id] = node{left: NoNode, right: NoNode, parent: NoNode}
	t.free = append(t.free, id)
}

// splitLeaf turns leaf n into a container holding first (left) and second
// (right). n keeps its index so references to it stay valid.
func (t *Tree) splitLeaf(n NodeID, c Container, first, second Tile) {
	l := t.alloc(TilePayload(first), n)
	r := t.alloc(TilePayload(second), n)
	t.nodes[n].payload = ContainerPayload(c)
	t.nodes[n].left = l
	t.nodes[n].right = r
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes) && t.nodes[id].live
}

// Root returns the current root node.
func (t *Tree) Root() NodeID {
	return t.root
}

// Payload returns the payload stored at id.
func (t *Tree) Payload(id NodeID) Payload {
	if !t.valid(id) {
		return Payload{}
	}
	return t.nodes[id].payload
}

// Children returns the left and right children of id (NoNode when absent).
func (t *Tree) Children(id NodeID) (NodeID, NodeID) {
	if !t.valid(id) {
		return NoNode, NoNode
	}
	return t.nodes[id].left, t.nodes[id].right
}

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].parent
}

// IsEmpty reports whether the tree holds no tiles.
func (t *Tree) IsEmpty() bool {
	n := t.nodes[t.root]
	return n.payload.Kind == KindContainer && n.left == NoNode && n.right == NoNode
}

// Walk visits every node reachable from the root in pre-order. Returning
// false from fn skips the subtree below that node.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		if !t.valid(id) {
			return
		}
		if !fn(id, depth) {
			return
		}
		visit(t.nodes[id].left, depth+1)
		visit(t.nodes[id].right, depth+1)
	}
	visit(t.root, 0)
}

// Tiles returns the tile ids in pre-order (left before right).
func (t *Tree) Tiles() []TileID {
	var out []TileID
	t.Walk(func(id NodeID, _ int) bool {
		if p := t.nodes[id].payload; p.Kind == KindTile {
			out = append(out, p.Tile.ID)
		}
		return true
	})
	return out
}

// Len returns the number of tiles.
func (t *Tree) Len() int {
	return len(t.Tiles())
}

// Find returns the node holding tile id, or NoNode.
func (t *Tree) Find(id TileID) NodeID {
	found := NoNode
	t.Walk(func(n NodeID, _ int) bool {
		if found != NoNode {
			return false
		}
		if p := t.nodes[n].payload; p.Kind == KindTile && p.Tile.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Contains reports whether tile id is in the tree.
func (t *Tree) Contains(id TileID) bool {
	return t.Find(id) != NoNode
}

// SetConstraint pins the split directly above tile id so that its left
// child is offset pixels along the split dimension. An offset <= 0 restores
// the even bisection.
func (t *Tree) SetConstraint(id TileID, offset int) error {
	n := t.Find(id)
	if n == NoNode {
		return fmt.Errorf("tile %d not found", id)
	}
	parent := t.nodes[n].parent
	if parent == NoNode {
		return fmt.Errorf("tile %d is not inside a split", id)
	}
	c := &t.nodes[parent].payload.Container
	if offset <= 0 {
		c.Constraint = 0
		c.Constrained = false
		return nil
	}
	c.Constraint = offset
	c.Constrained = true
	return nil
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes: make([]node, len(t.nodes)),
		free:  make([]NodeID, len(t.free)),
		root:  t.root,
	}
	copy(c.nodes, t.nodes)
	copy(c.free, t.free)
	return c
}

// Equal reports whether t and o have the same shape and payloads. Arena
// indices are not compared.
func (t *Tree) Equal(o *Tree) bool {
	var eq func(a, b NodeID) bool
	eq = func(a, b NodeID) bool {
		if a == NoNode || b == NoNode {
			return a == b
		}
		na, nb := t.nodes[a], o.nodes[b]
		if na.payload != nb.payload {
			return false
		}
		return eq(na.left, nb.left) && eq(na.right, nb.right)
	}
	return eq(t.root, o.root)
}

// Validate checks every structural invariant and returns a
// *CorruptTreeError describing the first violation.
func (t *Tree) Validate() error {
	if !t.valid(t.root) {
		return &CorruptTreeError{Node: t.root, Reason: "root is not a live node"}
	}
	if p := t.nodes[t.root].parent; p != NoNode {
		return &CorruptTreeError{Node: t.root, Reason: fmt.Sprintf("root has parent %d", p)}
	}
	seenNodes := make(map[NodeID]struct{})
	seenTiles := make(map[TileID]NodeID)

	var check func(id NodeID) error
	check = func(id NodeID) error {
		if _, dup := seenNodes[id]; dup {
			return &CorruptTreeError{Node: id, Reason: "node reachable twice"}
		}
		seenNodes[id] = struct{}{}
		n := t.nodes[id]
		if err := t.checkShape(id); err != nil {
			return err
		}
		if n.payload.Kind == KindTile {
			if prev, dup := seenTiles[n.payload.Tile.ID]; dup {
				return &CorruptTreeError{Node: id, Reason: fmt.Sprintf("tile %d also at node %d", n.payload.Tile.ID, prev)}
			}
			seenTiles[n.payload.Tile.ID] = id
			return nil
		}
		for _, child := range []NodeID{n.left, n.right} {
			if child == NoNode {
				continue
			}
			if !t.valid(child) {
				return &CorruptTreeError{Node: id, Reason: fmt.Sprintf("child %d is not a live node", child)}
			}
			if t.nodes[child].parent != id {
				return &CorruptTreeError{Node: child, Reason: fmt.Sprintf("parent is %d, want %d", t.nodes[child].parent, id)}
			}
			if err := check(child); err != nil {
				return err
			}
		}
		return nil
	}
	return check(t.root)
}

// checkShape validates the payload/children combination of a single node.
func (t *Tree) checkShape(id NodeID) error {
	n := t.nodes[id]
	switch n.payload.Kind {
	case KindTile:
		if n.left != NoNode || n.right != NoNode {
			return &CorruptTreeError{Node: id, Reason: "tile has children"}
		}
	case KindContainer:
		if (n.left == NoNode) != (n.right == NoNode) {
			return &CorruptTreeError{Node: id, Reason: "container has a single child"}
		}
		if n.left == NoNode && id != t.root {
			return &CorruptTreeError{Node: id, Reason: "empty container below the root"}
		}
		if s := n.payload.Container.Split; s != Horizontal && s != Vertical {
			return &CorruptTreeError{Node: id, Reason: fmt.Sprintf("invalid split %d", s)}
		}
	default:
		return &CorruptTreeError{Node: id, Reason: fmt.Sprintf("unknown payload kind %d", n.payload.Kind)}
	}
	return nil
}
