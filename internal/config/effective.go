package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw over DefaultConfig. Per-monitor insets
// start from the global inset, so an override only needs the sides it
// changes.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.Inset != nil {
		cfg.Inset = applyRawMargins(cfg.Inset, *raw.Inset)
	}
	if raw.Spacing != nil {
		cfg.Spacing = *raw.Spacing
	}
	for name, m := range raw.MonitorInsets {
		cfg.MonitorInsets[name] = applyRawMargins(cfg.Inset, m)
	}
	if raw.DragButton != nil {
		cfg.DragButton = *raw.DragButton
	}
	if raw.RetileHotkey != nil {
		cfg.RetileHotkey = *raw.RetileHotkey
	}
	if raw.ResetHotkey != nil {
		cfg.ResetHotkey = *raw.ResetHotkey
	}
	if raw.Animation != nil {
		if raw.Animation.DurationMs != nil {
			cfg.Animation.DurationMs = *raw.Animation.DurationMs
		}
		if raw.Animation.FrameMs != nil {
			cfg.Animation.FrameMs = *raw.Animation.FrameMs
		}
	}
	if raw.TitleBlacklist != nil {
		cfg.TitleBlacklist = append([]string{}, (*raw.TitleBlacklist)...)
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.ReconcileIntervalMs != nil {
		cfg.ReconcileIntervalMs = *raw.ReconcileIntervalMs
	}
	if raw.WatchConfig != nil {
		cfg.WatchConfig = *raw.WatchConfig
	}

	return cfg, nil
}
