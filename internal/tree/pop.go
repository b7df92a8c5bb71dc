package tree

// Remove deletes tile id and collapses its parent split by promoting the
// sibling subtree into the parent's place. Removing the only tile leaves an
// empty root container. Unknown ids are a no-op. The (possibly new) root is
// returned and also stored in t.
func (t *Tree) Remove(id TileID) (NodeID, error) {
	root := t.nodes[t.root]
	if root.payload.Kind == KindTile {
		if err := t.checkShape(t.root); err != nil {
			return t.root, err
		}
		if root.payload.Tile.ID == id {
			t.nodes[t.root].payload = ContainerPayload(Container{})
		}
		return t.root, nil
	}

	newRoot, err := t.remove(t.root, id)
	if err != nil {
		return t.root, err
	}
	t.root = newRoot
	t.nodes[newRoot].parent = NoNode
	return t.root, nil
}

// remove works post-order on container n and returns the node that should
// take n's place.
func (t *Tree) remove(n NodeID, id TileID) (NodeID, error) {
	if err := t.checkShape(n); err != nil {
		return n, err
	}
	left, right := t.nodes[n].left, t.nodes[n].right
	if left == NoNode {
		return n, nil
	}
	if !t.valid(left) || !t.valid(right) {
		return n, &CorruptTreeError{Node: n, Reason: "child is not a live node"}
	}

	if t.nodes[left].payload.Kind == KindContainer {
		repl, err := t.remove(left, id)
		if err != nil {
			return n, err
		}
		t.nodes[n].left = repl
		t.nodes[repl].parent = n
		left = repl
	}
	if t.nodes[right].payload.Kind == KindContainer {
		repl, err := t.remove(right, id)
		if err != nil {
			return n, err
		}
		t.nodes[n].right = repl
		t.nodes[repl].parent = n
		right = repl
	}

	if t.isTile(left, id) {
		if err := t.checkShape(left); err != nil {
			return n, err
		}
		return t.collapse(n, left, right), nil
	}
	if t.isTile(right, id) {
		if err := t.checkShape(right); err != nil {
			return n, err
		}
		return t.collapse(n, right, left), nil
	}
	return n, nil
}

func (t *Tree) isTile(n NodeID, id TileID) bool {
	p := t.nodes[n].payload
	return p.Kind == KindTile && p.Tile.ID == id
}

// collapse frees container n and its removed child, returning the survivor.
func (t *Tree) collapse(n, removed, survivor NodeID) NodeID {
	t.nodes[survivor].parent = t.nodes[n].parent
	t.release(removed)
	t.release(n)
	return survivor
}
