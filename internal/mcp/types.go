package mcp

import "github.com/1broseidon/bsptile/internal/geom"

// ListSlotsInput is the input for the list_slots tool.
type ListSlotsInput struct {
	Desktop *int `json:"desktop,omitempty" jsonschema:"Only list slots on this virtual desktop (default: all desktops)"`
}

// WindowInfo identifies a tiled window.
type WindowInfo struct {
	ID    uint32 `json:"id"`
	Title string `json:"title"`
}

// SlotInfo summarises one monitor/desktop pair.
type SlotInfo struct {
	Desktop     int          `json:"desktop"`
	Monitor     int          `json:"monitor"`
	MonitorName string       `json:"monitor_name"`
	Area        geom.Rect    `json:"area"`
	Windows     []WindowInfo `json:"windows"`
}

// ListSlotsOutput is the output for the list_slots tool.
type ListSlotsOutput struct {
	CurrentDesktop int        `json:"current_desktop"`
	Slots          []SlotInfo `json:"slots"`
}

// GetTreeInput is the input for the get_tree tool.
type GetTreeInput struct {
	Desktop *int `json:"desktop,omitempty" jsonschema:"Virtual desktop to show (default: all desktops)"`
	Monitor *int `json:"monitor,omitempty" jsonschema:"Monitor index to show (default: all monitors)"`
}

// NodeInfo is one node of a layout tree. Path locates the node: "root",
// then "/left" or "/right" per level.
type NodeInfo struct {
	Path       string    `json:"path"`
	Kind       string    `json:"kind"`
	Window     uint32    `json:"window,omitempty"`
	Title      string    `json:"title,omitempty"`
	Split      string    `json:"split,omitempty"`
	Constraint *int      `json:"constraint,omitempty"`
	Rect       geom.Rect `json:"rect"`
}

// SlotTree is the flattened tree of one slot, in pre-order.
type SlotTree struct {
	Desktop     int        `json:"desktop"`
	Monitor     int        `json:"monitor"`
	MonitorName string     `json:"monitor_name"`
	Nodes       []NodeInfo `json:"nodes"`
}

// GetTreeOutput is the output for the get_tree tool.
type GetTreeOutput struct {
	Slots []SlotTree `json:"slots"`
}

// EmptyInput is the input for tools without arguments.
type EmptyInput struct{}

// SetSplitInput is the input for the set_split tool.
type SetSplitInput struct {
	WindowID uint32 `json:"window_id" jsonschema:"X window id of a tiled window; the split directly above it is changed"`
	Offset   int    `json:"offset" jsonschema:"Size in pixels of the first (left or top) side of the split; 0 restores the even split"`
}

// ActionOutput is the output of tools that change the layout.
type ActionOutput struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
}
