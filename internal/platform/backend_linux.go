//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/bsptile/internal/geom"
	"github.com/1broseidon/bsptile/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays ordered by ID.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	usable := conn.UsableAreas(monitors)

	displays := make([]Display, 0, len(monitors))
	for i, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: m.Rect(),
			Usable: usable[i].Rect(),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

func (b *LinuxBackend) CurrentDesktop() (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	return conn.GetCurrentDesktop()
}

// Windows lists every managed window in _NET_CLIENT_LIST order. Windows whose
// geometry cannot be read (usually because they were just destroyed) are
// skipped.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	clients, err := conn.ClientList()
	if err != nil {
		return nil, err
	}
	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	return b.describe(clients, monitors), nil
}

// WindowAt walks the stacking order from the top.
func (b *LinuxBackend) WindowAt(p geom.Point) (WindowID, bool, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, false, err
	}
	stacking, err := conn.ClientListStacking()
	if err != nil {
		return 0, false, err
	}
	desktop, err := conn.GetCurrentDesktop()
	if err != nil {
		return 0, false, err
	}
	monitors, err := conn.GetMonitors()
	if err != nil {
		return 0, false, err
	}

	windows := b.describe(stacking, monitors)
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		if w.Minimized || (w.Desktop != desktop && w.Desktop != AllDesktops) {
			continue
		}
		if w.Frame.Contains(p) {
			return w.ID, true, nil
		}
	}
	return 0, false, nil
}

func (b *LinuxBackend) Pointer() (geom.Point, error) {
	conn, err := b.connection()
	if err != nil {
		return geom.Point{}, err
	}
	return conn.PointerPosition()
}

// MoveResize moves and resizes a window so that its frame covers frame.
func (b *LinuxBackend) MoveResize(id WindowID, frame geom.Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeFrame(xproto.Window(id), frame)
}

func (b *LinuxBackend) Unmaximize(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Unmaximize(xproto.Window(id))
}

func (b *LinuxBackend) describe(ids []xproto.Window, monitors []x11.Monitor) []Window {
	conn := b.conn
	windows := make([]Window, 0, len(ids))
	for _, id := range ids {
		frame, err := conn.WindowFrame(id)
		if err != nil {
			continue
		}
		desktop, err := conn.GetWindowDesktop(id)
		if err != nil {
			desktop = AllDesktops
		}
		state := conn.WindowState(id)
		if state.Sticky {
			desktop = AllDesktops
		}

		windows = append(windows, Window{
			ID:         WindowID(id),
			PID:        conn.WindowPID(id),
			AppID:      conn.WindowClass(id),
			Title:      conn.WindowTitle(id),
			Frame:      frame,
			Desktop:    desktop,
			Display:    displayOf(monitors, frame.Center()),
			Minimized:  state.Hidden,
			Fullscreen: state.Fullscreen,
			Normal:     conn.IsNormalWindow(id),
		})
	}
	return windows
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayOf(monitors []x11.Monitor, p geom.Point) int {
	for _, m := range monitors {
		if m.Rect().Contains(p) {
			return m.ID
		}
	}
	return NoDisplay
}
