package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	display
//	inset, inset.top
//	spacing
//	monitor_insets, monitor_insets.<name>, monitor_insets.<name>.left
//	drag_button
//	retile_hotkey
//	reset_hotkey
//	animation.duration_ms
//	animation.frame_ms
//	title_blacklist
//	log_level
//	reconcile_interval_ms
//	watch_config
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	// Monitor overrides inherit unset sides from the global inset.
	if strings.HasPrefix(path, "monitor_insets.") {
		parts := strings.Split(path, ".")
		if len(parts) == 3 {
			if src, ok := res.Sources["inset."+parts[2]]; ok {
				return value, src, nil
			}
		}
	}

	if path == "title_blacklist" {
		return value, Source{Kind: SourceBuiltin, Name: "title_blacklist"}, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	scalar := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "display":
		return scalar(cfg.Display)
	case "inset":
		return lookupMargins(cfg.Inset, parts[1:], path)
	case "spacing":
		return scalar(cfg.Spacing)
	case "monitor_insets":
		if len(parts) == 1 {
			return cfg.MonitorInsets, nil
		}
		m, ok := cfg.MonitorInsets[parts[1]]
		if !ok {
			return nil, fmt.Errorf("no inset override for monitor %q", parts[1])
		}
		return lookupMargins(m, parts[2:], path)
	case "drag_button":
		return scalar(cfg.DragButton)
	case "retile_hotkey":
		return scalar(cfg.RetileHotkey)
	case "reset_hotkey":
		return scalar(cfg.ResetHotkey)
	case "animation":
		if len(parts) == 1 {
			return cfg.Animation, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "duration_ms":
			return cfg.Animation.DurationMs, nil
		case "frame_ms":
			return cfg.Animation.FrameMs, nil
		}
	case "title_blacklist":
		return scalar(cfg.TitleBlacklist)
	case "log_level":
		return scalar(cfg.LogLevel)
	case "reconcile_interval_ms":
		return scalar(cfg.ReconcileIntervalMs)
	case "watch_config":
		return scalar(cfg.WatchConfig)
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}

func lookupMargins(m Margins, rest []string, path string) (any, error) {
	if len(rest) == 0 {
		return m, nil
	}
	if len(rest) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	switch rest[0] {
	case "top":
		return m.Top, nil
	case "right":
		return m.Right, nil
	case "bottom":
		return m.Bottom, nil
	case "left":
		return m.Left, nil
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
