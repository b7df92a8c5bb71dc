package platform

import "github.com/1broseidon/bsptile/internal/geom"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// AllDesktops is the desktop of a window shown on every desktop.
const AllDesktops = -1

// NoDisplay is the display of a window whose center is on no display.
const NoDisplay = -1

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int       `json:"id"`
	Name   string    `json:"name"`
	Bounds geom.Rect `json:"bounds"`
	Usable geom.Rect `json:"usable"`
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID    WindowID
	PID   int
	AppID string
	Title string
	// Frame is the outer rectangle, decorations included.
	Frame      geom.Rect
	Desktop    int
	Display    int
	Minimized  bool
	Fullscreen bool
	// Normal is false for docks, dialogs, splashes and other window types
	// that are never tiled.
	Normal bool
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	CurrentDesktop() (int, error)
	// Windows lists managed windows in the window manager's client order.
	Windows() ([]Window, error)
	// WindowAt returns the topmost visible managed window containing p.
	WindowAt(p geom.Point) (WindowID, bool, error)
	Pointer() (geom.Point, error)
	// MoveResize places the window's outer frame at frame.
	MoveResize(id WindowID, frame geom.Rect) error
	Unmaximize(id WindowID) error
}

// DisplayAt returns the display whose bounds contain p.
func DisplayAt(displays []Display, p geom.Point) (Display, bool) {
	for _, d := range displays {
		if d.Bounds.Contains(p) {
			return d, true
		}
	}
	return Display{}, false
}
