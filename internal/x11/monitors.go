package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/bsptile/internal/geom"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) Rect() geom.Rect {
	return geom.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

func (m *Monitor) setRect(r geom.Rect) {
	m.X, m.Y, m.Width, m.Height = r.X, r.Y, r.Width, r.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		// Get output name
		outputName := fmt.Sprintf("Monitor%d", i)
		if len(crtcInfo.Outputs) > 0 {
			outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
			if err == nil {
				outputName = string(outputInfo.Name)
			}
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// UsableAreas returns monitors shrunk by dock struts. When no dock publishes
// struts, each monitor is intersected with _NET_WORKAREA of the current
// desktop instead.
func (c *Connection) UsableAreas(monitors []Monitor) []Monitor {
	out := make([]Monitor, len(monitors))
	copy(out, monitors)

	partials, rootWidth, rootHeight, ok := c.dockStrutPartials()
	for i := range out {
		if ok && applyDockStruts(&out[i], rootWidth, rootHeight, partials) {
			continue
		}
		c.applyWorkArea(&out[i])
	}
	return out
}

func (c *Connection) applyWorkArea(monitor *Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}

	clipToWorkarea(monitor, workArea[desktopIndex])
}

// clipToWorkarea shrinks monitor to the part of wa it overlaps. A work area
// on another monitor leaves it untouched.
func clipToWorkarea(monitor *Monitor, wa ewmh.Workarea) bool {
	area := geom.Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}
	if !monitor.Rect().Intersects(area) {
		return false
	}
	monitor.setRect(monitor.Rect().Intersect(area))
	return true
}

// PointerPosition returns the pointer in root coordinates.
func (c *Connection) PointerPosition() (geom.Point, error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geom.Point{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return geom.Point{X: int(pointer.RootX), Y: int(pointer.RootY)}, nil
}

// dockStruts is the space reserved on each edge of one monitor.
type dockStruts struct {
	left, right, top, bottom int
}

// dockStrutPartials collects the struts of every dock window, normalising
// plain _NET_WM_STRUT to the partial form.
func (c *Connection) dockStrutPartials() ([]ewmh.WmStrutPartial, int, int, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return nil, 0, 0, false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, 0, 0, false
	}

	var partials []ewmh.WmStrutPartial
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil || !slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			partials = append(partials, *sp)
			continue
		}
		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			partials = append(partials, fullStrut(s, rootWidth, rootHeight))
		}
	}
	return partials, rootWidth, rootHeight, true
}

// fullStrut widens a plain strut to span the whole root edge.
func fullStrut(s *ewmh.WmStrut, rootWidth, rootHeight int) ewmh.WmStrutPartial {
	return ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(rootHeight - 1),
		RightEndY:  uint(rootHeight - 1),
		TopEndX:    uint(rootWidth - 1),
		BottomEndX: uint(rootWidth - 1),
	}
}

// applyDockStruts shrinks monitor by the struts that overlap it and reports
// whether any did.
func applyDockStruts(monitor *Monitor, rootWidth, rootHeight int, partials []ewmh.WmStrutPartial) bool {
	var acc dockStruts
	bounds := monitor.Rect()
	for i := range partials {
		acc.add(bounds, strutEdges(&partials[i], rootWidth, rootHeight))
	}
	if acc == (dockStruts{}) {
		return false
	}

	monitor.setRect(geom.Rect{
		X:      bounds.X + acc.left,
		Y:      bounds.Y + acc.top,
		Width:  max(1, bounds.Width-acc.left-acc.right),
		Height: max(1, bounds.Height-acc.top-acc.bottom),
	})
	return true
}

// strutEdges converts a strut into the root-space rectangles it reserves,
// in top, bottom, left, right order. Unused edges are empty.
func strutEdges(sp *ewmh.WmStrutPartial, rootWidth, rootHeight int) [4]geom.Rect {
	var edges [4]geom.Rect
	if sp.Top > 0 {
		edges[0] = geom.Rect{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) - int(sp.TopStartX) + 1, Height: int(sp.Top)}
	}
	if sp.Bottom > 0 {
		edges[1] = geom.Rect{X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom), Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1, Height: int(sp.Bottom)}
	}
	if sp.Left > 0 {
		edges[2] = geom.Rect{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1}
	}
	if sp.Right > 0 {
		edges[3] = geom.Rect{X: rootWidth - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1}
	}
	return edges
}

func (d *dockStruts) add(bounds geom.Rect, edges [4]geom.Rect) {
	d.top = max(d.top, bounds.Intersect(edges[0]).Height)
	d.bottom = max(d.bottom, bounds.Intersect(edges[1]).Height)
	d.left = max(d.left, bounds.Intersect(edges[2]).Width)
	d.right = max(d.right, bounds.Intersect(edges[3]).Width)
}
