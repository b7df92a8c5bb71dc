package tiling

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/1broseidon/bsptile/internal/config"
	"github.com/1broseidon/bsptile/internal/geom"
	"github.com/1broseidon/bsptile/internal/logging"
	"github.com/1broseidon/bsptile/internal/platform"
	"github.com/1broseidon/bsptile/internal/tree"
)

// settleGrace is added to the animation duration while a dropped window
// travels to its new monitor.
const settleGrace = 500 * time.Millisecond

// Easer animates a window from one frame to another.
type Easer interface {
	Ease(id platform.WindowID, from, to geom.Rect) error
}

type grab struct {
	id   platform.WindowID
	from Slot
}

// Tiler keeps one tree per slot in step with the window manager's client
// list. It is not safe for concurrent use; every method must run on the
// Dispatcher goroutine.
type Tiler struct {
	backend platform.Backend
	easer   Easer
	cfg     *config.Config
	logger  *slog.Logger
	now     func() time.Time

	forest map[Slot]*tree.Tree
	where  map[platform.WindowID]Slot
	areas  map[Slot]geom.Rect
	dirty  map[Slot]bool
	settle map[platform.WindowID]time.Time

	desktop     int
	displays    map[int]platform.Display
	displayList []platform.Display
	windows     []platform.Window
	byID        map[platform.WindowID]platform.Window
	grabbed     *grab
}

// NewTiler creates a tiler. A nil easer moves windows without animation.
func NewTiler(backend platform.Backend, cfg *config.Config, easer Easer, logger *slog.Logger) *Tiler {
	return &Tiler{
		backend: backend,
		easer:   easer,
		cfg:     cfg,
		logger:  logging.Or(logger),
		now:     time.Now,
		forest:  make(map[Slot]*tree.Tree),
		where:   make(map[platform.WindowID]Slot),
		areas:   make(map[Slot]geom.Rect),
		dirty:   make(map[Slot]bool),
		settle:  make(map[platform.WindowID]time.Time),
	}
}

// Sync diffs the live client list against the trees: windows that appeared
// are pushed, windows that vanished or became ineligible are popped, and
// windows that changed monitor or desktop move between slots. Touched slots
// on the current desktop are fitted; the rest are fitted when their desktop
// becomes current.
func (t *Tiler) Sync() error {
	return t.sync(false)
}

// Retile is Sync followed by a fit of every slot on the current desktop.
func (t *Tiler) Retile() error {
	return t.sync(true)
}

// Reset rebuilds every slot on the current desktop from the client list,
// discarding pushes, drags and split offsets.
func (t *Tiler) Reset() error {
	if err := t.refresh(); err != nil {
		return err
	}
	for s := range t.forest {
		if s.Desktop == t.desktop {
			t.drop(s)
		}
	}

	want, order := t.desired()
	bySlot := make(map[Slot][]platform.Window)
	for _, w := range order {
		s := want[w.ID]
		if s.Desktop != t.desktop {
			continue
		}
		if _, tracked := t.where[w.ID]; tracked {
			continue
		}
		bySlot[s] = append(bySlot[s], w)
	}
	for _, d := range t.displayList {
		s := Slot{Desktop: t.desktop, Monitor: d.ID}
		if ws := bySlot[s]; len(ws) > 0 {
			t.build(s, ws)
			t.fit(s)
		}
	}
	t.logger.Info("tiler: reset", "desktop", t.desktop, "slots", len(bySlot))
	return nil
}

// GrabBegin lifts the tiled window under p out of its tree. The window is
// ignored by Sync until GrabEnd.
func (t *Tiler) GrabBegin(p geom.Point) error {
	if t.grabbed != nil {
		return nil
	}
	id, ok, err := t.backend.WindowAt(p)
	if err != nil {
		return fmt.Errorf("failed to find window under pointer: %w", err)
	}
	if !ok {
		return nil
	}
	s, tracked := t.where[id]
	if !tracked {
		return nil
	}
	if err := t.refresh(); err != nil {
		return err
	}

	t.grabbed = &grab{id: id, from: s}
	t.pop(s, id)
	t.fitOrDefer(s)
	t.logger.Debug("tiler: window lifted", "window", id, "slot", s.String())
	return nil
}

// GrabEnd drops the lifted window into the slot under p, splitting the tile
// that contains p. Dropping outside every monitor returns the window to the
// slot it came from.
func (t *Tiler) GrabEnd(p geom.Point) error {
	g := t.grabbed
	if g == nil {
		return nil
	}
	t.grabbed = nil
	if err := t.refresh(); err != nil {
		return err
	}

	w, ok := t.byID[g.id]
	if !ok {
		return nil
	}
	if _, reason := slotOf(w, t.cfg.Blacklisted); reason != "" && reason != ReasonOffscreen {
		t.logger.Debug("tiler: dropped window is not tileable", "window", w.ID, "reason", reason)
		return nil
	}

	target := Slot{Desktop: w.Desktop, Monitor: g.from.Monitor}
	if d, ok := platform.DisplayAt(t.displayList, p); ok {
		target.Monitor = d.ID
	} else {
		p = w.Frame.Center()
	}
	if _, ok := t.displays[target.Monitor]; !ok {
		return nil
	}

	t.push(target, w, p)
	t.settle[w.ID] = t.now().Add(t.cfg.Animation.Duration() + settleGrace)
	t.fitOrDefer(target)
	t.logger.Debug("tiler: window dropped", "window", w.ID, "slot", target.String(), "point", p.String())
	return nil
}

// SetSplit pins the split above window so that its first child is offset
// pixels wide (or tall). An offset <= 0 restores the even split.
func (t *Tiler) SetSplit(window platform.WindowID, offset int) error {
	s, ok := t.where[window]
	if !ok {
		return fmt.Errorf("window 0x%x is not tiled", uint32(window))
	}
	if err := t.forest[s].SetConstraint(tree.TileID(window), offset); err != nil {
		return err
	}
	if err := t.refresh(); err != nil {
		return err
	}
	t.fitOrDefer(s)
	return nil
}

// UpdateConfig swaps the configuration and refits the current desktop.
func (t *Tiler) UpdateConfig(cfg *config.Config) error {
	t.cfg = cfg
	return t.Retile()
}

func (t *Tiler) sync(all bool) error {
	if err := t.refresh(); err != nil {
		return err
	}
	touched := make(map[Slot]bool)

	for s := range t.forest {
		if _, ok := t.displays[s.Monitor]; !ok {
			t.logger.Info("tiler: monitor gone, dropping slot", "slot", s.String())
			t.drop(s)
		}
	}

	want, order := t.desired()

	for id, s := range t.where {
		if ws, ok := want[id]; ok && ws == s {
			continue
		}
		t.pop(s, id)
		touched[s] = true
	}

	arrived := make(map[Slot][]platform.Window)
	for _, w := range order {
		if _, tracked := t.where[w.ID]; tracked {
			continue
		}
		s := want[w.ID]
		arrived[s] = append(arrived[s], w)
	}
	for _, s := range sortedSlots(arrived) {
		ws := arrived[s]
		touched[s] = true
		if tr, ok := t.forest[s]; !ok || tr.IsEmpty() {
			t.build(s, ws)
			continue
		}
		for _, w := range ws {
			t.push(s, w, t.pushPoint(s, w))
		}
	}

	for s := range t.forest {
		area, _ := t.areaFor(s)
		if prev, ok := t.areas[s]; !ok || prev != area {
			touched[s] = true
		}
		if s.Desktop == t.desktop && (all || t.dirty[s]) {
			touched[s] = true
		}
	}

	for _, s := range sortedSlots(touched) {
		t.fitOrDefer(s)
	}
	return nil
}

func (t *Tiler) refresh() error {
	displays, err := t.backend.Displays()
	if err != nil {
		return fmt.Errorf("failed to list displays: %w", err)
	}
	desktop, err := t.backend.CurrentDesktop()
	if err != nil {
		return fmt.Errorf("failed to get current desktop: %w", err)
	}
	windows, err := t.backend.Windows()
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}

	t.desktop = desktop
	t.displayList = displays
	t.displays = make(map[int]platform.Display, len(displays))
	for _, d := range displays {
		t.displays[d.ID] = d
	}
	t.windows = windows
	t.byID = make(map[platform.WindowID]platform.Window, len(windows))
	for _, w := range windows {
		t.byID[w.ID] = w
	}
	return nil
}

// desired maps every tileable window to its slot, and lists those windows
// in client order. A window that was just dropped keeps the slot it was
// dropped into until it has had time to arrive there.
func (t *Tiler) desired() (map[platform.WindowID]Slot, []platform.Window) {
	now := t.now()
	want := make(map[platform.WindowID]Slot, len(t.windows))
	order := make([]platform.Window, 0, len(t.windows))
	for _, w := range t.windows {
		if t.grabbed != nil && w.ID == t.grabbed.id {
			continue
		}
		s, reason := slotOf(w, t.cfg.Blacklisted)
		if reason != "" {
			continue
		}
		if until, ok := t.settle[w.ID]; ok {
			if now.Before(until) {
				if cur, tracked := t.where[w.ID]; tracked && cur.Desktop == s.Desktop {
					s = cur
				}
			} else {
				delete(t.settle, w.ID)
			}
		}
		want[w.ID] = s
		order = append(order, w)
	}
	return want, order
}

// areaFor is the work area of s. A slot whose monitor is gone, or whose
// insets leave no room, has none and holds no windows.
func (t *Tiler) areaFor(s Slot) (geom.Rect, bool) {
	d, ok := t.displays[s.Monitor]
	if !ok {
		return geom.Rect{}, false
	}
	area := WorkArea(d.Usable, t.cfg.InsetFor(d.Name).Inset(), t.cfg.Spacing)
	if area.Area() == 0 {
		return geom.Rect{}, false
	}
	return area, true
}

// pushPoint is the pointer when it is on the slot's monitor, otherwise the
// center of the window.
func (t *Tiler) pushPoint(s Slot, w platform.Window) geom.Point {
	if s.Desktop == t.desktop {
		if p, err := t.backend.Pointer(); err == nil {
			if d, ok := t.displays[s.Monitor]; ok && d.Bounds.Contains(p) {
				return p
			}
		}
	}
	return w.Frame.Center()
}

func (t *Tiler) push(s Slot, w platform.Window, p geom.Point) {
	area, ok := t.areaFor(s)
	if !ok {
		return
	}
	tr, ok := t.forest[s]
	if !ok {
		tr = tree.New()
		t.forest[s] = tr
	}
	if !tr.Push(area, clampPoint(p, area), tree.Tile{ID: tree.TileID(w.ID)}) {
		t.logger.Warn("tiler: push rejected, rebuilding", "window", w.ID, "slot", s.String())
		t.rebuild(s)
		return
	}
	t.where[w.ID] = s
}

func (t *Tiler) pop(s Slot, id platform.WindowID) {
	delete(t.where, id)
	if _, live := t.byID[id]; !live {
		delete(t.settle, id)
	}
	tr, ok := t.forest[s]
	if !ok {
		return
	}
	if _, err := tr.Remove(tree.TileID(id)); err != nil {
		t.logger.Error("tiler: tree corrupt, rebuilding", "slot", s.String(), "error", err)
		t.rebuild(s)
		return
	}
	if tr.IsEmpty() {
		t.drop(s)
	}
}

// build replaces the tree of s with a fresh main/stack tree of ws.
func (t *Tiler) build(s Slot, ws []platform.Window) {
	for id, cur := range t.where {
		if cur == s {
			delete(t.where, id)
		}
	}
	area, ok := t.areaFor(s)
	if !ok || len(ws) == 0 {
		t.drop(s)
		return
	}
	ids := make([]tree.TileID, len(ws))
	for i, w := range ws {
		ids[i] = tree.TileID(w.ID)
		t.where[w.ID] = s
	}
	t.forest[s] = tree.Build(ids, area)
	t.logger.Debug("tiler: built slot", "slot", s.String(), "windows", len(ids))
}

// rebuild rebuilds s from the windows that currently belong to it.
func (t *Tiler) rebuild(s Slot) {
	want, order := t.desired()
	var ws []platform.Window
	for _, w := range order {
		if want[w.ID] == s {
			ws = append(ws, w)
		}
	}
	t.build(s, ws)
}

func (t *Tiler) drop(s Slot) {
	for id, cur := range t.where {
		if cur == s {
			delete(t.where, id)
		}
	}
	delete(t.forest, s)
	delete(t.areas, s)
	delete(t.dirty, s)
}

func (t *Tiler) fitOrDefer(s Slot) {
	if _, ok := t.forest[s]; !ok {
		return
	}
	if s.Desktop != t.desktop {
		t.dirty[s] = true
		return
	}
	delete(t.dirty, s)
	t.fit(s)
}

// fit places the windows of s. Stale and corrupt trees are rebuilt from the
// client list and fitted once more.
func (t *Tiler) fit(s Slot) {
	area, ok := t.areaFor(s)
	if !ok {
		t.drop(s)
		return
	}
	t.areas[s] = area

	if gone := t.gone(s); len(gone) > 0 {
		t.logger.Warn("tiler: stale windows in tree, rebuilding", "slot", s.String(), "windows", len(gone))
		t.rebuild(s)
	}
	tr, ok := t.forest[s]
	if !ok {
		return
	}

	err := tree.Fit(tr, area, t.frames(), t.cfg.Spacing, tree.PlacerFunc(t.place))
	if err == nil {
		return
	}

	var corrupt *tree.CorruptTreeError
	var stale *tree.StaleTileError
	switch {
	case errors.As(err, &corrupt):
		t.logger.Error("tiler: tree corrupt, rebuilding", "slot", s.String(), "error", err)
	case errors.As(err, &stale):
		t.logger.Warn("tiler: stale windows in tree, rebuilding", "slot", s.String(), "windows", len(stale.IDs))
	default:
		t.logger.Warn("tiler: placement failed", "slot", s.String(), "error", err)
		return
	}

	t.rebuild(s)
	if tr, ok := t.forest[s]; ok {
		if err := tree.Fit(tr, area, t.frames(), t.cfg.Spacing, tree.PlacerFunc(t.place)); err != nil {
			t.logger.Warn("tiler: fit after rebuild failed", "slot", s.String(), "error", err)
		}
	}
}

// gone lists the tiles of s whose windows are no longer in the client list.
func (t *Tiler) gone(s Slot) []tree.TileID {
	tr, ok := t.forest[s]
	if !ok {
		return nil
	}
	var out []tree.TileID
	for _, id := range tr.Tiles() {
		if _, live := t.byID[platform.WindowID(id)]; !live {
			out = append(out, id)
		}
	}
	return out
}

func (t *Tiler) frames() map[tree.TileID]geom.Rect {
	out := make(map[tree.TileID]geom.Rect, len(t.windows))
	for _, w := range t.windows {
		out[tree.TileID(w.ID)] = w.Frame
	}
	return out
}

// place moves a window to its tile. Freshly built tiles jump into place;
// everything else is eased.
func (t *Tiler) place(id tree.TileID, from, to geom.Rect, fresh bool) error {
	wid := platform.WindowID(id)
	if err := t.backend.Unmaximize(wid); err != nil {
		t.logger.Debug("tiler: unmaximize failed", "window", wid, "error", err)
	}
	var err error
	if fresh || t.easer == nil {
		err = t.backend.MoveResize(wid, to)
	} else {
		err = t.easer.Ease(wid, from, to)
	}
	if err != nil {
		return err
	}
	t.record(wid, to)
	return nil
}

// record keeps the cached client list in step with a placement so a second
// fit in the same pass compares against where the window is headed.
func (t *Tiler) record(id platform.WindowID, frame geom.Rect) {
	w, ok := t.byID[id]
	if !ok {
		return
	}
	w.Frame = frame
	t.byID[id] = w
	for i := range t.windows {
		if t.windows[i].ID == id {
			t.windows[i].Frame = frame
			break
		}
	}
}

func clampPoint(p geom.Point, r geom.Rect) geom.Point {
	if r.Empty() {
		return geom.Point{X: r.X, Y: r.Y}
	}
	return geom.Point{
		X: min(max(p.X, r.X), r.X+r.Width-1),
		Y: min(max(p.Y, r.Y), r.Y+r.Height-1),
	}
}

func sortedSlots[V any](m map[Slot]V) []Slot {
	out := make([]Slot, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Desktop != out[j].Desktop {
			return out[i].Desktop < out[j].Desktop
		}
		return out[i].Monitor < out[j].Monitor
	})
	return out
}
