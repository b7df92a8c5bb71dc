package hotkeys

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"

	"github.com/1broseidon/bsptile/internal/geom"
)

// DragFunc receives the pointer position in root coordinates.
type DragFunc func(p geom.Point)

// BindDrag grabs button (e.g. "Mod4-1") on the root window. begin runs when
// the button goes down and end when it is released; motion in between is
// ignored because the layout only changes on drop.
func (h *Handler) BindDrag(button string, begin, end DragFunc) error {
	if _, _, err := mousebind.ParseString(h.xu, button); err != nil {
		return fmt.Errorf("invalid drag button %q: %w", button, err)
	}

	mousebind.Drag(h.xu, h.root, h.root, button, true,
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
			h.logger.Debug("hotkeys: drag begin", "x", rootX, "y", rootY)
			begin(geom.Point{X: rootX, Y: rootY})
			return true, 0
		},
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {},
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
			h.logger.Debug("hotkeys: drag end", "x", rootX, "y", rootY)
			end(geom.Point{X: rootX, Y: rootY})
		},
	)
	return nil
}

// ReleaseDrag drops the pointer grab made by BindDrag.
func (h *Handler) ReleaseDrag() {
	mousebind.Detach(h.xu, h.root)
}
