package config

// DefaultTitleBlacklist returns titles of desktop-icon layer windows that
// report a normal window type but must never be tiled.
func DefaultTitleBlacklist() []string {
	return []string{
		"@!0,0;BDHF", // gnome-shell desktop-icons extension
		"Desktop Icons",
		"xfdesktop",
		"plasmashell",
	}
}
