package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// Raw types mirror Config with pointer fields so that a key set to its zero
// value can be told apart from an absent key when layering files.

type RawMargins struct {
	Top    *int `yaml:"top"`
	Right  *int `yaml:"right"`
	Bottom *int `yaml:"bottom"`
	Left   *int `yaml:"left"`
}

type RawAnimation struct {
	DurationMs *int `yaml:"duration_ms"`
	FrameMs    *int `yaml:"frame_ms"`
}

type RawConfig struct {
	Include             IncludeList           `yaml:"include"`
	Display             *string               `yaml:"display"`
	Inset               *RawMargins           `yaml:"inset"`
	Spacing             *int                  `yaml:"spacing"`
	MonitorInsets       map[string]RawMargins `yaml:"monitor_insets"`
	DragButton          *string               `yaml:"drag_button"`
	RetileHotkey        *string               `yaml:"retile_hotkey"`
	ResetHotkey         *string               `yaml:"reset_hotkey"`
	Animation           *RawAnimation         `yaml:"animation"`
	TitleBlacklist      *[]string             `yaml:"title_blacklist"`
	LogLevel            *string               `yaml:"log_level"`
	ReconcileIntervalMs *int                  `yaml:"reconcile_interval_ms"`
	WatchConfig         *bool                 `yaml:"watch_config"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.Inset != nil {
		base := RawMargins{}
		if out.Inset != nil {
			base = *out.Inset
		}
		merged := mergeRawMargins(base, *overlay.Inset)
		out.Inset = &merged
	}
	if overlay.Spacing != nil {
		out.Spacing = overlay.Spacing
	}
	if overlay.MonitorInsets != nil {
		merged := make(map[string]RawMargins, len(out.MonitorInsets)+len(overlay.MonitorInsets))
		for name, m := range out.MonitorInsets {
			merged[name] = m
		}
		for name, m := range overlay.MonitorInsets {
			merged[name] = mergeRawMargins(merged[name], m)
		}
		out.MonitorInsets = merged
	}
	if overlay.DragButton != nil {
		out.DragButton = overlay.DragButton
	}
	if overlay.RetileHotkey != nil {
		out.RetileHotkey = overlay.RetileHotkey
	}
	if overlay.ResetHotkey != nil {
		out.ResetHotkey = overlay.ResetHotkey
	}
	if overlay.Animation != nil {
		merged := RawAnimation{}
		if out.Animation != nil {
			merged = *out.Animation
		}
		if overlay.Animation.DurationMs != nil {
			merged.DurationMs = overlay.Animation.DurationMs
		}
		if overlay.Animation.FrameMs != nil {
			merged.FrameMs = overlay.Animation.FrameMs
		}
		out.Animation = &merged
	}
	// Lists replace rather than append.
	if overlay.TitleBlacklist != nil {
		out.TitleBlacklist = overlay.TitleBlacklist
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.ReconcileIntervalMs != nil {
		out.ReconcileIntervalMs = overlay.ReconcileIntervalMs
	}
	if overlay.WatchConfig != nil {
		out.WatchConfig = overlay.WatchConfig
	}

	return out
}

func mergeRawMargins(base RawMargins, overlay RawMargins) RawMargins {
	out := base
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Right != nil {
		out.Right = overlay.Right
	}
	if overlay.Bottom != nil {
		out.Bottom = overlay.Bottom
	}
	if overlay.Left != nil {
		out.Left = overlay.Left
	}
	return out
}

func applyRawMargins(base Margins, raw RawMargins) Margins {
	out := base
	if raw.Top != nil {
		out.Top = *raw.Top
	}
	if raw.Right != nil {
		out.Right = *raw.Right
	}
	if raw.Bottom != nil {
		out.Bottom = *raw.Bottom
	}
	if raw.Left != nil {
		out.Left = *raw.Left
	}
	return out
}
