package tiling

import (
	"fmt"

	"github.com/1broseidon/bsptile/internal/platform"
)

// Slot identifies one tree: a monitor on a virtual desktop.
type Slot struct {
	Desktop int `json:"desktop"`
	Monitor int `json:"monitor"`
}

func (s Slot) String() string {
	return fmt.Sprintf("desktop %d/monitor %d", s.Desktop, s.Monitor)
}

// Ineligibility reasons, reported by the status and tree commands.
const (
	ReasonMinimized   = "minimized"
	ReasonFullscreen  = "fullscreen"
	ReasonSticky      = "sticky"
	ReasonNotNormal   = "not a normal window"
	ReasonOffscreen   = "not on any monitor"
	ReasonBlacklisted = "blacklisted title"
)

// slotOf returns the slot w should be tiled in, or the reason it is never
// tiled. blacklisted reports titles that must not be tiled.
func slotOf(w platform.Window, blacklisted func(string) bool) (Slot, string) {
	switch {
	case !w.Normal:
		return Slot{}, ReasonNotNormal
	case w.Minimized:
		return Slot{}, ReasonMinimized
	case w.Fullscreen:
		return Slot{}, ReasonFullscreen
	case w.Desktop == platform.AllDesktops:
		return Slot{}, ReasonSticky
	case w.Display == platform.NoDisplay:
		return Slot{}, ReasonOffscreen
	case blacklisted != nil && blacklisted(w.Title):
		return Slot{}, ReasonBlacklisted
	}
	return Slot{Desktop: w.Desktop, Monitor: w.Display}, ""
}
