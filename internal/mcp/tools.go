package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/bsptile/internal/tiling"
)

func (s *Server) handleListSlots(_ context.Context, _ *mcpsdk.CallToolRequest, args ListSlotsInput) (*mcpsdk.CallToolResult, ListSlotsOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, ListSlotsOutput{}, err
	}
	snaps, err := s.daemon.GetTree()
	if err != nil {
		return nil, ListSlotsOutput{}, err
	}

	out := ListSlotsOutput{CurrentDesktop: status.Desktop, Slots: []SlotInfo{}}
	for _, snap := range snaps {
		if args.Desktop != nil && snap.Desktop != *args.Desktop {
			continue
		}
		info := SlotInfo{
			Desktop:     snap.Desktop,
			Monitor:     snap.Monitor,
			MonitorName: snap.MonitorName,
			Area:        snap.Area,
			Windows:     []WindowInfo{},
		}
		for _, n := range flatten(snap.Root) {
			if n.Kind == "tile" {
				info.Windows = append(info.Windows, WindowInfo{ID: n.Window, Title: n.Title})
			}
		}
		out.Slots = append(out.Slots, info)
	}
	s.logger.Debug("mcp: list_slots", "slots", len(out.Slots))
	return nil, out, nil
}

func (s *Server) handleGetTree(_ context.Context, _ *mcpsdk.CallToolRequest, args GetTreeInput) (*mcpsdk.CallToolResult, GetTreeOutput, error) {
	snaps, err := s.daemon.GetTree()
	if err != nil {
		return nil, GetTreeOutput{}, err
	}

	out := GetTreeOutput{Slots: []SlotTree{}}
	for _, snap := range snaps {
		if args.Desktop != nil && snap.Desktop != *args.Desktop {
			continue
		}
		if args.Monitor != nil && snap.Monitor != *args.Monitor {
			continue
		}
		out.Slots = append(out.Slots, SlotTree{
			Desktop:     snap.Desktop,
			Monitor:     snap.Monitor,
			MonitorName: snap.MonitorName,
			Nodes:       flatten(snap.Root),
		})
	}
	return nil, out, nil
}

func (s *Server) handleRetile(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.daemon.Retile(); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{Action: "retile", OK: true}, nil
}

func (s *Server) handleReset(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.daemon.Reset(); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{Action: "reset", OK: true}, nil
}

func (s *Server) handleSetSplit(_ context.Context, _ *mcpsdk.CallToolRequest, args SetSplitInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.WindowID == 0 {
		return nil, ActionOutput{}, fmt.Errorf("window_id is required")
	}
	if args.Offset < 0 {
		return nil, ActionOutput{}, fmt.Errorf("offset must be >= 0")
	}
	if err := s.daemon.SetSplit(args.WindowID, args.Offset); err != nil {
		return nil, ActionOutput{}, err
	}
	s.logger.Info("mcp: split changed", "window", args.WindowID, "offset", args.Offset)
	return nil, ActionOutput{Action: "set_split", OK: true}, nil
}

// flatten lists the nodes under root in pre-order.
func flatten(root *tiling.NodeView) []NodeInfo {
	out := []NodeInfo{}
	var walk func(v *tiling.NodeView, path string)
	walk = func(v *tiling.NodeView, path string) {
		if v == nil {
			return
		}
		out = append(out, NodeInfo{
			Path:       path,
			Kind:       v.Kind,
			Window:     v.Window,
			Title:      v.Title,
			Split:      v.Split,
			Constraint: v.Constraint,
			Rect:       v.Rect,
		})
		if len(v.Children) == 2 {
			walk(v.Children[0], path+"/left")
			walk(v.Children[1], path+"/right")
		}
	}
	walk(root, "root")
	return out
}
