package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/bsptile/internal/logging"
)

// Handler owns the global key and pointer grabs on the root window.
// Callbacks run on the X event loop; they must only hand work off.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	mu    sync.Mutex
	bound []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a handler for grabs on root.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, logger *slog.Logger) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	return &Handler{xu: xu, root: root, logger: logging.Or(logger)}
}

// Register binds keySequence (e.g. "Mod4-Mod1-t") to callback. An empty
// sequence disables the binding.
func (h *Handler) Register(keySequence string, callback func()) error {
	if keySequence == "" {
		return nil
	}
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.logger.Debug("hotkeys: triggered", "keys", keySequence)
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
	if err != nil {
		return fmt.Errorf("failed to bind %q: %w", keySequence, err)
	}

	h.mu.Lock()
	h.bound = append(h.bound, keySequence)
	h.mu.Unlock()
	return nil
}

// Release drops every key binding made through h. Must run on the X event
// loop or after it has stopped.
func (h *Handler) Release() {
	h.mu.Lock()
	bound := h.bound
	h.bound = nil
	h.mu.Unlock()

	if len(bound) == 0 {
		return
	}
	keybind.Detach(h.xu, h.root)
	h.logger.Debug("hotkeys: released", "count", len(bound))
}

// Bound lists the key sequences currently registered.
func (h *Handler) Bound() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.bound...)
}

// configureIgnoreMods makes every grab match regardless of the lock keys.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)
	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}
	xevent.IgnoreMods = lockCombinations(base)
}

// lockCombinations returns 0 plus the OR of every non-empty subset of masks.
func lockCombinations(masks []uint16) []uint16 {
	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(masks)); subset++ {
		var mask uint16
		for bit := range masks {
			if subset&(1<<bit) != 0 {
				mask |= masks[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	out := make([]uint16, 0, len(unique))
	for mask := range unique {
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
