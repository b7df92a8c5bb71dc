package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/bsptile/internal/geom"
)

// Extents are the decoration sizes a window manager adds around a client.
type Extents struct {
	Left, Right, Top, Bottom int
}

// MoveResizeFrame places windowID so that its outer frame, decorations
// included, covers frame.
func (c *Connection) MoveResizeFrame(windowID xproto.Window, frame geom.Rect) error {
	ext := c.FrameExtents(windowID)
	w := max(frame.Width-ext.Left-ext.Right, 1)
	h := max(frame.Height-ext.Top-ext.Bottom, 1)

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, frame.X, frame.Y, w, h); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(frame.X, frame.Y, w, h)
	}
	return nil
}

// Unmaximize removes the maximized states from a window. Window managers
// ignore geometry requests for maximized windows.
func (c *Connection) Unmaximize(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return fmt.Errorf("failed to read window state: %w", err)
	}

	for _, state := range states {
		if state != "_NET_WM_STATE_MAXIMIZED_HORZ" && state != "_NET_WM_STATE_MAXIMIZED_VERT" {
			continue
		}
		if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
			return fmt.Errorf("failed to remove %s: %w", state, err)
		}
	}
	return nil
}

// FrameExtents returns the window decoration sizes, or zero extents when the
// window manager does not publish them.
func (c *Connection) FrameExtents(windowID xproto.Window) Extents {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return Extents{}
	}
	return Extents{
		Left:   int(extents.Left),
		Right:  int(extents.Right),
		Top:    int(extents.Top),
		Bottom: int(extents.Bottom),
	}
}

// WindowFrame returns the outer frame of a client in root coordinates.
func (c *Connection) WindowFrame(windowID xproto.Window) (geom.Rect, error) {
	g, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("failed to get geometry of 0x%x: %w", windowID, err)
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("failed to translate coordinates of 0x%x: %w", windowID, err)
	}

	ext := c.FrameExtents(windowID)
	return geom.Rect{
		X:      int(translate.DstX) - ext.Left,
		Y:      int(translate.DstY) - ext.Top,
		Width:  int(g.Width) + ext.Left + ext.Right,
		Height: int(g.Height) + ext.Top + ext.Bottom,
	}, nil
}

// WindowState summarises the _NET_WM_STATE atoms that affect tiling.
type WindowState struct {
	Hidden     bool
	Fullscreen bool
	Sticky     bool
}

func (c *Connection) WindowState(windowID xproto.Window) WindowState {
	var ws WindowState
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return ws
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN":
			ws.Hidden = true
		case "_NET_WM_STATE_FULLSCREEN":
			ws.Fullscreen = true
		case "_NET_WM_STATE_STICKY":
			ws.Sticky = true
		}
	}
	return ws
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_DIALOG" ||
			t == "_NET_WM_WINDOW_TYPE_UTILITY" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowClass returns the WM_CLASS class part.
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// ClientListStacking returns clients bottom to top.
func (c *Connection) ClientListStacking() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get stacking client list: %w", err)
	}
	return clients, nil
}
