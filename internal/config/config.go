package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/bsptile/internal/geom"
)

// Margins is an amount of space reserved on each side of a rectangle.
type Margins struct {
	Top    int `yaml:"top"`
	Right  int `yaml:"right"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
}

// Inset converts m to the geometry type used by the work-area calculator.
func (m Margins) Inset() geom.Inset {
	return geom.Inset{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}
}

func (m Margins) negative() bool {
	return m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0
}

// Animation controls how windows travel to their new tiles.
type Animation struct {
	DurationMs int `yaml:"duration_ms"`
	FrameMs    int `yaml:"frame_ms"`
}

func (a Animation) Duration() time.Duration {
	return time.Duration(a.DurationMs) * time.Millisecond
}

func (a Animation) Frame() time.Duration {
	return time.Duration(a.FrameMs) * time.Millisecond
}

// Config is the effective daemon configuration after defaults, includes and
// the main file have been merged.
type Config struct {
	Display             string             `yaml:"display"`
	Inset               Margins            `yaml:"inset"`
	Spacing             int                `yaml:"spacing"`
	MonitorInsets       map[string]Margins `yaml:"monitor_insets"`
	DragButton          string             `yaml:"drag_button"`
	RetileHotkey        string             `yaml:"retile_hotkey"`
	ResetHotkey         string             `yaml:"reset_hotkey"`
	Animation           Animation          `yaml:"animation"`
	TitleBlacklist      []string           `yaml:"title_blacklist"`
	LogLevel            string             `yaml:"log_level"`
	ReconcileIntervalMs int                `yaml:"reconcile_interval_ms"`
	WatchConfig         bool               `yaml:"watch_config"`
}

const minReconcileIntervalMs = 100

// DefaultConfig returns a config with every key at its default value.
func DefaultConfig() *Config {
	return &Config{
		Spacing:             8,
		MonitorInsets:       map[string]Margins{},
		DragButton:          "Mod4-1",
		RetileHotkey:        "Mod4-Mod1-t",
		ResetHotkey:         "Mod4-Mod1-r",
		Animation:           Animation{DurationMs: 150, FrameMs: 16},
		TitleBlacklist:      DefaultTitleBlacklist(),
		LogLevel:            "info",
		ReconcileIntervalMs: 2000,
		WatchConfig:         true,
	}
}

// InsetFor returns the inset of the named monitor, falling back to the global
// inset when no override exists.
func (c *Config) InsetFor(monitor string) Margins {
	if m, ok := c.MonitorInsets[monitor]; ok {
		return m
	}
	return c.Inset
}

func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalMs) * time.Millisecond
}

// Blacklisted reports whether windows with this title are never tiled.
func (c *Config) Blacklisted(title string) bool {
	for _, t := range c.TitleBlacklist {
		if t == title {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.Inset.negative() {
		return &ValidationError{Path: "inset", Err: fmt.Errorf("inset values must be >= 0")}
	}
	if c.Spacing < 0 {
		return &ValidationError{Path: "spacing", Err: fmt.Errorf("spacing must be >= 0")}
	}
	for name, m := range c.MonitorInsets {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "monitor_insets", Err: fmt.Errorf("monitor_insets contains an empty monitor name")}
		}
		if m.negative() {
			return &ValidationError{Path: "monitor_insets." + name, Err: fmt.Errorf("inset values must be >= 0")}
		}
	}
	if strings.TrimSpace(c.DragButton) == "" {
		return &ValidationError{Path: "drag_button", Err: fmt.Errorf("drag_button is required")}
	}
	if c.Animation.DurationMs < 0 {
		return &ValidationError{Path: "animation.duration_ms", Err: fmt.Errorf("duration_ms must be >= 0")}
	}
	if c.Animation.DurationMs > 0 && c.Animation.FrameMs < 1 {
		return &ValidationError{Path: "animation.frame_ms", Err: fmt.Errorf("frame_ms must be >= 1 when animation is enabled")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.ReconcileIntervalMs < minReconcileIntervalMs {
		return &ValidationError{Path: "reconcile_interval_ms", Err: fmt.Errorf("reconcile_interval_ms must be >= %d", minReconcileIntervalMs)}
	}
	return nil
}
