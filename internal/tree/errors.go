package tree

import (
	"fmt"
	"strings"
)

// CorruptTreeError reports a node whose shape breaks the tree invariants.
// It points at a bug in an earlier mutation and is not recoverable by
// retrying; the slot has to be rebuilt.
type CorruptTreeError struct {
	Node   NodeID
	Reason string
}

func (e *CorruptTreeError) Error() string {
	return fmt.Sprintf("corrupt tree at node %d: %s", e.Node, e.Reason)
}

// StaleTileError lists tiles whose windows were missing from the frames
// handed to Fit.
type StaleTileError struct {
	IDs []TileID
}

func (e *StaleTileError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprintf("0x%x", uint32(id))
	}
	return "stale tile references: " + strings.Join(ids, ", ")
}

// PlaceError wraps a failure returned by a Placer.
type PlaceError struct {
	ID  TileID
	Err error
}

func (e *PlaceError) Error() string {
	return fmt.Sprintf("place window 0x%x: %v", uint32(e.ID), e.Err)
}

func (e *PlaceError) Unwrap() error {
	return e.Err
}
