package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection connects to display, or to $DISPLAY when display is empty,
// and initializes the key and mouse binding modules.
func NewConnection(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display == "" {
		xu, err = xgbutil.NewConn()
	} else {
		xu, err = xgbutil.NewConnDisplay(display)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	keybind.Initialize(xu)
	mousebind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop runs the X11 event loop until Quit is called.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// wakeProperty is written on the root window to unblock EventLoop.
const wakeProperty = "_BSPTILE_WAKE"

// Quit makes EventLoop return. The loop blocks until the next event, so one
// is provoked by touching a private root property; this only arrives when the
// root window is being watched for property changes.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
	xprop.ChangeProp32(c.XUtil, c.Root, wakeProperty, "CARDINAL", 1)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
