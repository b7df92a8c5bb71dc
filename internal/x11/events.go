package x11

import (
	"fmt"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// RootProperties are the root window properties whose changes mean the set
// or placement of managed windows may have changed.
var RootProperties = []string{
	"_NET_CLIENT_LIST",
	"_NET_CURRENT_DESKTOP",
	"_NET_ACTIVE_WINDOW",
	"_NET_WORKAREA",
}

// WatchRoot calls fn with the property name whenever one of names changes on
// the root window. fn runs on the event loop goroutine. The returned function
// silences the watch.
func (c *Connection) WatchRoot(names []string, fn func(name string)) (func(), error) {
	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange); err != nil {
		return nil, fmt.Errorf("failed to listen on root window: %w", err)
	}

	want := make(map[string]struct{}, len(names))
	for _, name := range names {
		want[name] = struct{}{}
	}

	var stopped atomic.Bool
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if stopped.Load() {
			return
		}
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		if _, ok := want[name]; ok {
			fn(name)
		}
	}).Connect(c.XUtil, c.Root)

	return func() { stopped.Store(true) }, nil
}
