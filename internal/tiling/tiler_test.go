package tiling

import (
	"fmt"
	"testing"
	"time"

	"github.com/1broseidon/bsptile/internal/config"
	"github.com/1broseidon/bsptile/internal/geom"
	"github.com/1broseidon/bsptile/internal/logging"
	"github.com/1broseidon/bsptile/internal/platform"
)

type fakeBackend struct {
	displays []platform.Display
	desktop  int
	windows  []platform.Window
	pointer  geom.Point
	moves    map[platform.WindowID]int
}

func newFakeBackend(displays ...platform.Display) *fakeBackend {
	return &fakeBackend{
		displays: displays,
		pointer:  geom.Point{X: -1, Y: -1},
		moves:    map[platform.WindowID]int{},
	}
}

func display(id int, x int) platform.Display {
	r := geom.Rect{X: x, Y: 0, Width: 1000, Height: 600}
	return platform.Display{ID: id, Name: fmt.Sprintf("DP-%d", id), Bounds: r, Usable: r}
}

func (b *fakeBackend) Displays() ([]platform.Display, error) {
	return append([]platform.Display(nil), b.displays...), nil
}

func (b *fakeBackend) CurrentDesktop() (int, error) { return b.desktop, nil }

func (b *fakeBackend) Windows() ([]platform.Window, error) {
	out := make([]platform.Window, len(b.windows))
	for i, w := range b.windows {
		w.Display = platform.NoDisplay
		if d, ok := platform.DisplayAt(b.displays, w.Frame.Center()); ok {
			w.Display = d.ID
		}
		out[i] = w
	}
	return out, nil
}

func (b *fakeBackend) WindowAt(p geom.Point) (platform.WindowID, bool, error) {
	for i := len(b.windows) - 1; i >= 0; i-- {
		w := b.windows[i]
		if w.Minimized || (w.Desktop != b.desktop && w.Desktop != platform.AllDesktops) {
			continue
		}
		if w.Frame.Contains(p) {
			return w.ID, true, nil
		}
	}
	return 0, false, nil
}

func (b *fakeBackend) Pointer() (geom.Point, error) { return b.pointer, nil }

func (b *fakeBackend) MoveResize(id platform.WindowID, frame geom.Rect) error {
	for i := range b.windows {
		if b.windows[i].ID == id {
			b.windows[i].Frame = frame
			b.moves[id]++
			return nil
		}
	}
	return fmt.Errorf("no window 0x%x", uint32(id))
}

func (b *fakeBackend) Unmaximize(platform.WindowID) error { return nil }

func (b *fakeBackend) add(id platform.WindowID, frame geom.Rect) *platform.Window {
	b.windows = append(b.windows, platform.Window{
		ID:     id,
		Title:  fmt.Sprintf("window %d", id),
		Frame:  frame,
		Normal: true,
	})
	return &b.windows[len(b.windows)-1]
}

func (b *fakeBackend) remove(id platform.WindowID) {
	for i, w := range b.windows {
		if w.ID == id {
			b.windows = append(b.windows[:i], b.windows[i+1:]...)
			return
		}
	}
}

func (b *fakeBackend) window(id platform.WindowID) *platform.Window {
	for i := range b.windows {
		if b.windows[i].ID == id {
			return &b.windows[i]
		}
	}
	return nil
}

func (b *fakeBackend) frame(t *testing.T, id platform.WindowID) geom.Rect {
	t.Helper()
	w := b.window(id)
	if w == nil {
		t.Fatalf("window %d not found", id)
	}
	return w.Frame
}

type recordingEaser struct {
	eases map[platform.WindowID]geom.Rect
}

func (e *recordingEaser) Ease(id platform.WindowID, _, to geom.Rect) error {
	e.eases[id] = to
	return nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Inset = config.Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}
	cfg.Spacing = 10
	cfg.Animation.DurationMs = 0
	return cfg
}

var small = geom.Rect{X: 100, Y: 100, Width: 200, Height: 200}

// threeTiled returns a tiler with windows 1, 2 and 3 tiled on one monitor.
func threeTiled(t *testing.T) (*Tiler, *fakeBackend) {
	t.Helper()
	b := newFakeBackend(display(0, 0))
	b.add(1, small)
	b.add(2, small)
	b.add(3, small)
	tl := NewTiler(b, testConfig(), nil, logging.Nop())
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	return tl, b
}

func expectFrames(t *testing.T, b *fakeBackend, want map[platform.WindowID]geom.Rect) {
	t.Helper()
	for id, r := range want {
		if got := b.frame(t, id); got != r {
			t.Fatalf("window %d: expected %v, got %v", id, r, got)
		}
	}
}

func TestSync_BuildsMainAndStack(t *testing.T) {
	tl, b := threeTiled(t)

	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		1: {X: 10, Y: 10, Width: 480, Height: 580},
		2: {X: 510, Y: 10, Width: 480, Height: 280},
		3: {X: 510, Y: 310, Width: 480, Height: 280},
	})
	if st := tl.Status(); st.Tiled != 3 || st.Slots != 1 {
		t.Fatalf("expected 3 tiled windows in 1 slot, got %+v", st)
	}
}

func TestSync_IsIdempotent(t *testing.T) {
	tl, b := threeTiled(t)
	before := map[platform.WindowID]int{1: b.moves[1], 2: b.moves[2], 3: b.moves[3]}

	if err := tl.Retile(); err != nil {
		t.Fatalf("retile failed: %v", err)
	}
	for id, n := range before {
		if b.moves[id] != n {
			t.Fatalf("window %d moved again on an unchanged layout", id)
		}
	}
}

func TestSync_NewWindowSplitsTileUnderPointer(t *testing.T) {
	tl, b := threeTiled(t)
	b.pointer = geom.Point{X: 100, Y: 100}
	b.add(4, geom.Rect{X: 700, Y: 400, Width: 50, Height: 50})

	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		4: {X: 10, Y: 10, Width: 480, Height: 280},
		1: {X: 10, Y: 310, Width: 480, Height: 280},
		2: {X: 510, Y: 10, Width: 480, Height: 280},
	})
}

func TestSync_PointerOnOtherMonitorUsesWindowCenter(t *testing.T) {
	b := newFakeBackend(display(0, 0), display(1, 1000))
	b.add(1, small)
	b.add(2, small)
	b.add(3, small)
	tl := NewTiler(b, testConfig(), nil, logging.Nop())
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	b.pointer = geom.Point{X: 1500, Y: 100}
	b.add(4, geom.Rect{X: 600, Y: 400, Width: 100, Height: 100})
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		4: {X: 510, Y: 310, Width: 230, Height: 280},
		3: {X: 760, Y: 310, Width: 230, Height: 280},
	})
}

func TestSync_ClosedWindowCollapsesTree(t *testing.T) {
	tl, b := threeTiled(t)
	b.remove(2)

	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		1: {X: 10, Y: 10, Width: 480, Height: 580},
		3: {X: 510, Y: 10, Width: 480, Height: 580},
	})
	if _, ok := tl.where[2]; ok {
		t.Fatalf("expected closed window to be forgotten")
	}
}

func TestSync_MinimizeAndRestore(t *testing.T) {
	tl, b := threeTiled(t)
	b.window(1).Minimized = true

	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		2: {X: 10, Y: 10, Width: 980, Height: 280},
		3: {X: 10, Y: 310, Width: 980, Height: 280},
	})

	b.window(1).Minimized = false
	b.pointer = geom.Point{X: 500, Y: 500}
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if _, ok := tl.where[1]; !ok {
		t.Fatalf("expected restored window to be tiled again")
	}
	if got := tl.forest[Slot{}].Len(); got != 3 {
		t.Fatalf("expected 3 tiles, got %d", got)
	}
}

func TestSync_WindowMovedToOtherMonitor(t *testing.T) {
	b := newFakeBackend(display(0, 0), display(1, 1000))
	b.add(1, small)
	b.add(2, small)
	tl := NewTiler(b, testConfig(), nil, logging.Nop())
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	b.window(2).Frame = geom.Rect{X: 1200, Y: 100, Width: 300, Height: 300}
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if got := tl.where[2]; got != (Slot{Desktop: 0, Monitor: 1}) {
		t.Fatalf("expected window 2 in monitor 1, got %v", got)
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		1: {X: 10, Y: 10, Width: 980, Height: 580},
		2: {X: 1010, Y: 10, Width: 980, Height: 580},
	})
}

func TestSync_IgnoresIneligibleWindows(t *testing.T) {
	b := newFakeBackend(display(0, 0))
	b.add(1, small)
	b.add(2, small).Normal = false
	b.add(3, small).Title = "Desktop Icons"
	b.add(4, small).Desktop = platform.AllDesktops
	b.add(5, small).Fullscreen = true
	b.add(6, geom.Rect{X: 5000, Y: 5000, Width: 10, Height: 10})

	tl := NewTiler(b, testConfig(), nil, logging.Nop())
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	st := tl.Status()
	if st.Tiled != 1 {
		t.Fatalf("expected only window 1 tiled, got %d", st.Tiled)
	}
	reasons := map[uint32]string{}
	for _, ig := range st.Ignored {
		reasons[ig.ID] = ig.Reason
	}
	want := map[uint32]string{
		2: ReasonNotNormal,
		3: ReasonBlacklisted,
		4: ReasonSticky,
		5: ReasonFullscreen,
		6: ReasonOffscreen,
	}
	for id, reason := range want {
		if reasons[id] != reason {
			t.Fatalf("window %d: expected reason %q, got %q", id, reason, reasons[id])
		}
	}
	if b.frame(t, 2) != small {
		t.Fatalf("expected ignored window to stay put")
	}
}

func TestGrab_DropSplitsTileUnderPointer(t *testing.T) {
	tl, b := threeTiled(t)

	if err := tl.GrabBegin(geom.Point{X: 700, Y: 450}); err != nil {
		t.Fatalf("grab begin failed: %v", err)
	}
	if tl.Status().Dragging != 3 {
		t.Fatalf("expected window 3 to be dragged")
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		2: {X: 510, Y: 10, Width: 480, Height: 580},
	})

	// A sync while dragging must not put the window back.
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if _, ok := tl.where[3]; ok {
		t.Fatalf("expected dragged window to stay out of the tree")
	}

	if err := tl.GrabEnd(geom.Point{X: 100, Y: 100}); err != nil {
		t.Fatalf("grab end failed: %v", err)
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		3: {X: 10, Y: 10, Width: 480, Height: 280},
		1: {X: 10, Y: 310, Width: 480, Height: 280},
		2: {X: 510, Y: 10, Width: 480, Height: 580},
	})
}

func TestGrab_EmptySpaceIsIgnored(t *testing.T) {
	b := newFakeBackend(display(0, 0))
	tl := NewTiler(b, testConfig(), nil, logging.Nop())

	if err := tl.GrabBegin(geom.Point{X: 10, Y: 10}); err != nil {
		t.Fatalf("grab begin failed: %v", err)
	}
	if tl.grabbed != nil {
		t.Fatalf("expected no grab without a window")
	}
	if err := tl.GrabEnd(geom.Point{X: 10, Y: 10}); err != nil {
		t.Fatalf("grab end failed: %v", err)
	}
}

func TestGrab_DropOnOtherMonitorSettles(t *testing.T) {
	b := newFakeBackend(display(0, 0), display(1, 1000))
	b.add(1, small)
	b.add(2, small)
	easer := &recordingEaser{eases: map[platform.WindowID]geom.Rect{}}
	cfg := testConfig()
	cfg.Animation.DurationMs = 200
	tl := NewTiler(b, cfg, easer, logging.Nop())
	now := time.Unix(1000, 0)
	tl.now = func() time.Time { return now }
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if err := tl.GrabBegin(geom.Point{X: 700, Y: 300}); err != nil {
		t.Fatalf("grab begin failed: %v", err)
	}
	if err := tl.GrabEnd(geom.Point{X: 1500, Y: 300}); err != nil {
		t.Fatalf("grab end failed: %v", err)
	}
	target := Slot{Desktop: 0, Monitor: 1}
	if tl.where[2] != target {
		t.Fatalf("expected window 2 in %v, got %v", target, tl.where[2])
	}
	if got := easer.eases[2]; got != (geom.Rect{X: 1010, Y: 10, Width: 980, Height: 580}) {
		t.Fatalf("expected window 2 eased onto monitor 1, got %v", got)
	}

	// The easer never moved the window, so it still looks like it is on
	// monitor 0. It must stay put while the animation is in flight.
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if tl.where[2] != target {
		t.Fatalf("expected window 2 to stay in %v while settling, got %v", target, tl.where[2])
	}

	now = now.Add(time.Minute)
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if tl.where[2] != (Slot{}) {
		t.Fatalf("expected window 2 to follow its real position after settling, got %v", tl.where[2])
	}
}

func TestGrab_ClosedWhileSettlingForgetsDeadline(t *testing.T) {
	b := newFakeBackend(display(0, 0), display(1, 1000))
	b.add(1, small)
	b.add(2, small)
	cfg := testConfig()
	cfg.Animation.DurationMs = 200
	tl := NewTiler(b, cfg, &recordingEaser{eases: map[platform.WindowID]geom.Rect{}}, logging.Nop())
	now := time.Unix(1000, 0)
	tl.now = func() time.Time { return now }
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if err := tl.GrabBegin(geom.Point{X: 700, Y: 300}); err != nil {
		t.Fatalf("grab begin failed: %v", err)
	}
	if err := tl.GrabEnd(geom.Point{X: 1500, Y: 300}); err != nil {
		t.Fatalf("grab end failed: %v", err)
	}
	if _, ok := tl.settle[2]; !ok {
		t.Fatalf("expected window 2 to be settling")
	}

	b.remove(2)
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if _, ok := tl.settle[2]; ok {
		t.Fatalf("expected settle deadline of closed window to be dropped")
	}
}

func TestSync_NoWorkAreaLeavesWindowsAlone(t *testing.T) {
	b := newFakeBackend(display(0, 0))
	b.add(1, small)
	cfg := testConfig()
	cfg.Inset = config.Margins{Left: 500, Right: 500}
	cfg.Spacing = 0
	tl := NewTiler(b, cfg, nil, logging.Nop())

	for range 2 {
		if err := tl.Sync(); err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		b.add(platform.WindowID(len(b.windows)+1), small)
	}
	if st := tl.Status(); st.Tiled != 0 || st.Slots != 0 {
		t.Fatalf("expected nothing tiled, got %+v", st)
	}
	if len(b.moves) != 0 {
		t.Fatalf("expected no moves, got %v", b.moves)
	}
}

func TestSetSplit(t *testing.T) {
	tl, b := threeTiled(t)

	if err := tl.SetSplit(1, 300); err != nil {
		t.Fatalf("set split failed: %v", err)
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		1: {X: 10, Y: 10, Width: 280, Height: 580},
		2: {X: 310, Y: 10, Width: 680, Height: 280},
	})

	if err := tl.SetSplit(99, 300); err == nil {
		t.Fatalf("expected an error for an untiled window")
	}
}

func TestSetSplit_StaleWindowRebuildsSlot(t *testing.T) {
	for _, offset := range []int{200, 300} {
		t.Run(fmt.Sprintf("offset %d", offset), func(t *testing.T) {
			tl, b := threeTiled(t)
			b.remove(3)
			before := b.moves[1]

			if err := tl.SetSplit(1, offset); err != nil {
				t.Fatalf("set split failed: %v", err)
			}
			if _, ok := tl.where[3]; ok {
				t.Fatalf("expected stale window to be dropped")
			}
			expectFrames(t, b, map[platform.WindowID]geom.Rect{
				1: {X: 10, Y: 10, Width: 480, Height: 580},
				2: {X: 510, Y: 10, Width: 480, Height: 580},
			})
			if got := b.moves[1] - before; got != 0 {
				t.Fatalf("expected window 1 to stay put, got %d moves", got)
			}
		})
	}
}

func TestPlace_RecordsFrame(t *testing.T) {
	tl, b := threeTiled(t)
	to := geom.Rect{X: 20, Y: 20, Width: 300, Height: 300}

	if err := tl.place(1, b.frame(t, 1), to, true); err != nil {
		t.Fatalf("place failed: %v", err)
	}
	if got := tl.byID[1].Frame; got != to {
		t.Fatalf("expected cached frame %v, got %v", to, got)
	}
	if got := tl.frames()[1]; got != to {
		t.Fatalf("expected fit to see %v, got %v", to, got)
	}
}

func TestReset_RebuildsInClientOrder(t *testing.T) {
	tl, b := threeTiled(t)
	b.pointer = geom.Point{X: 100, Y: 100}
	b.add(4, small)
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if err := tl.Reset(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		1: {X: 10, Y: 10, Width: 480, Height: 580},
		2: {X: 510, Y: 10, Width: 480, Height: 280},
		3: {X: 510, Y: 310, Width: 230, Height: 280},
		4: {X: 760, Y: 310, Width: 230, Height: 280},
	})
}

func TestUpdateConfig_RefitsWithNewSpacing(t *testing.T) {
	tl, b := threeTiled(t)
	cfg := testConfig()
	cfg.Spacing = 0

	if err := tl.UpdateConfig(cfg); err != nil {
		t.Fatalf("update config failed: %v", err)
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		1: {X: 10, Y: 10, Width: 490, Height: 580},
		2: {X: 500, Y: 10, Width: 490, Height: 290},
	})
}

func TestSync_OtherDesktopFittedWhenCurrent(t *testing.T) {
	tl, b := threeTiled(t)
	b.add(5, small).Desktop = 1

	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if b.frame(t, 5) != small {
		t.Fatalf("expected window on a hidden desktop to stay put")
	}
	if _, ok := tl.where[5]; !ok {
		t.Fatalf("expected window on a hidden desktop to be tracked")
	}

	b.desktop = 1
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	expectFrames(t, b, map[platform.WindowID]geom.Rect{
		5: {X: 10, Y: 10, Width: 980, Height: 580},
	})
}

func TestSync_MonitorRemovedDropsSlot(t *testing.T) {
	b := newFakeBackend(display(0, 0), display(1, 1000))
	b.add(1, small)
	b.add(2, geom.Rect{X: 1200, Y: 100, Width: 300, Height: 300})
	tl := NewTiler(b, testConfig(), nil, logging.Nop())
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	b.displays = b.displays[:1]
	if err := tl.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if _, ok := tl.forest[Slot{Desktop: 0, Monitor: 1}]; ok {
		t.Fatalf("expected slot of the removed monitor to be dropped")
	}
	if _, ok := tl.where[2]; ok {
		t.Fatalf("expected window on the removed monitor to be untracked")
	}
}

func TestSnapshot(t *testing.T) {
	tl, _ := threeTiled(t)
	if err := tl.SetSplit(1, 300); err != nil {
		t.Fatalf("set split failed: %v", err)
	}

	snaps := tl.Snapshot()
	if len(snaps) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(snaps))
	}
	s := snaps[0]
	if s.Tiles != 3 || s.MonitorName != "DP-0" {
		t.Fatalf("unexpected slot summary %+v", s)
	}
	root := s.Root
	if root == nil || root.Kind != "container" || root.Split != "vertical" {
		t.Fatalf("expected vertical root container, got %+v", root)
	}
	if root.Constraint == nil || *root.Constraint != 300 {
		t.Fatalf("expected root constraint 300, got %v", root.Constraint)
	}
	left := root.Children[0]
	if left.Kind != "tile" || left.Window != 1 || left.Title != "window 1" {
		t.Fatalf("unexpected left child %+v", left)
	}
	if left.Rect != (geom.Rect{X: 0, Y: 0, Width: 300, Height: 600}) {
		t.Fatalf("unexpected left rect %v", left.Rect)
	}
}

func TestMonitors_ReportWorkArea(t *testing.T) {
	tl, _ := threeTiled(t)
	ms := tl.Monitors()
	if len(ms) != 1 {
		t.Fatalf("expected 1 monitor, got %d", len(ms))
	}
	if ms[0].WorkArea != (geom.Rect{X: 0, Y: 0, Width: 1000, Height: 600}) {
		t.Fatalf("unexpected work area %v", ms[0].WorkArea)
	}
}
