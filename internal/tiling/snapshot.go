package tiling

import (
	"github.com/1broseidon/bsptile/internal/geom"
	"github.com/1broseidon/bsptile/internal/platform"
	"github.com/1broseidon/bsptile/internal/tree"
)

// NodeView is one node of a slot's tree as reported over IPC.
type NodeView struct {
	Kind       string      `json:"kind"`
	Window     uint32      `json:"window,omitempty"`
	Title      string      `json:"title,omitempty"`
	Split      string      `json:"split,omitempty"`
	Constraint *int        `json:"constraint,omitempty"`
	Rect       geom.Rect   `json:"rect"`
	Children   []*NodeView `json:"children,omitempty"`
}

type SlotSnapshot struct {
	Desktop     int       `json:"desktop"`
	Monitor     int       `json:"monitor"`
	MonitorName string    `json:"monitor_name"`
	Area        geom.Rect `json:"area"`
	Tiles       int       `json:"tiles"`
	Root        *NodeView `json:"root"`
}

type IgnoredWindow struct {
	ID     uint32 `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type Status struct {
	Desktop  int             `json:"desktop"`
	Monitors int             `json:"monitors"`
	Slots    int             `json:"slots"`
	Tiled    int             `json:"tiled"`
	Dragging uint32          `json:"dragging,omitempty"`
	Ignored  []IgnoredWindow `json:"ignored,omitempty"`
}

// MonitorView pairs a display with the work area its trees cover.
type MonitorView struct {
	platform.Display
	WorkArea geom.Rect `json:"work_area"`
}

// Snapshot describes every slot, ordered by desktop then monitor.
func (t *Tiler) Snapshot() []SlotSnapshot {
	out := make([]SlotSnapshot, 0, len(t.forest))
	for _, s := range sortedSlots(t.forest) {
		tr := t.forest[s]
		area, _ := t.areaFor(s)
		snap := SlotSnapshot{
			Desktop: s.Desktop,
			Monitor: s.Monitor,
			Area:    area,
			Tiles:   tr.Len(),
		}
		if d, ok := t.displays[s.Monitor]; ok {
			snap.MonitorName = d.Name
		}
		rects, err := tree.Layout(tr, area)
		if err != nil {
			t.logger.Warn("tiler: cannot lay out slot for snapshot", "slot", s.String(), "error", err)
		} else {
			snap.Root = t.view(tr, tr.Root(), rects)
		}
		out = append(out, snap)
	}
	return out
}

func (t *Tiler) view(tr *tree.Tree, id tree.NodeID, rects map[tree.NodeID]geom.Rect) *NodeView {
	p := tr.Payload(id)
	v := &NodeView{Kind: p.Kind.String(), Rect: rects[id]}
	if p.Kind == tree.KindTile {
		v.Window = uint32(p.Tile.ID)
		if w, ok := t.byID[platform.WindowID(p.Tile.ID)]; ok {
			v.Title = w.Title
		}
		return v
	}

	left, right := tr.Children(id)
	if left == tree.NoNode {
		return v
	}
	v.Split = p.Container.Split.String()
	if p.Container.Constrained {
		c := p.Container.Constraint
		v.Constraint = &c
	}
	v.Children = []*NodeView{t.view(tr, left, rects), t.view(tr, right, rects)}
	return v
}

// Status summarises the forest and lists the windows that are not tiled.
func (t *Tiler) Status() Status {
	st := Status{
		Desktop:  t.desktop,
		Monitors: len(t.displayList),
		Slots:    len(t.forest),
		Tiled:    len(t.where),
	}
	if t.grabbed != nil {
		st.Dragging = uint32(t.grabbed.id)
	}
	for _, w := range t.windows {
		if _, reason := slotOf(w, t.cfg.Blacklisted); reason != "" {
			st.Ignored = append(st.Ignored, IgnoredWindow{ID: uint32(w.ID), Title: w.Title, Reason: reason})
		}
	}
	return st
}

func (t *Tiler) Monitors() []MonitorView {
	out := make([]MonitorView, 0, len(t.displayList))
	for _, d := range t.displayList {
		out = append(out, MonitorView{
			Display:  d,
			WorkArea: WorkArea(d.Usable, t.cfg.InsetFor(d.Name).Inset(), t.cfg.Spacing),
		})
	}
	return out
}
