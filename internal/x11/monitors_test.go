package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/bsptile/internal/geom"
)

func TestApplyDockStruts(t *testing.T) {
	const rootW, rootH = 3840, 1080
	left := Monitor{ID: 0, Name: "DP-0", X: 0, Y: 0, Width: 1920, Height: 1080}
	right := Monitor{ID: 1, Name: "DP-1", X: 1920, Y: 0, Width: 1920, Height: 1080}

	tests := []struct {
		name     string
		monitor  Monitor
		partials []ewmh.WmStrutPartial
		want     geom.Rect
		applied  bool
	}{
		{
			name:     "top panel on left monitor only",
			monitor:  left,
			partials: []ewmh.WmStrutPartial{{Top: 30, TopStartX: 0, TopEndX: 1919}},
			want:     geom.Rect{X: 0, Y: 30, Width: 1920, Height: 1050},
			applied:  true,
		},
		{
			name:     "top panel does not touch right monitor",
			monitor:  right,
			partials: []ewmh.WmStrutPartial{{Top: 30, TopStartX: 0, TopEndX: 1919}},
			want:     geom.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080},
			applied:  false,
		},
		{
			name:     "full-width bottom bar and right dock",
			monitor:  right,
			partials: []ewmh.WmStrutPartial{
				fullStrut(&ewmh.WmStrut{Bottom: 40}, rootW, rootH),
				{Right: 64, RightStartY: 100, RightEndY: 900},
			},
			want:    geom.Rect{X: 1920, Y: 0, Width: 1856, Height: 1040},
			applied: true,
		},
		{
			name:     "largest strut per edge wins",
			monitor:  left,
			partials: []ewmh.WmStrutPartial{{Left: 20, LeftEndY: 1079}, {Left: 48, LeftEndY: 1079}},
			want:     geom.Rect{X: 48, Y: 0, Width: 1872, Height: 1080},
			applied:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.monitor
			applied := applyDockStruts(&m, rootW, rootH, tt.partials)
			if applied != tt.applied {
				t.Fatalf("expected applied=%v, got %v", tt.applied, applied)
			}
			if got := m.Rect(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestApplyDockStruts_KeepsPositiveSize(t *testing.T) {
	m := Monitor{Width: 100, Height: 100}
	applyDockStruts(&m, 100, 100, []ewmh.WmStrutPartial{fullStrut(&ewmh.WmStrut{Top: 60, Bottom: 60}, 100, 100)})
	if m.Height < 1 {
		t.Fatalf("expected positive height, got %d", m.Height)
	}
}

func TestClipToWorkarea(t *testing.T) {
	tests := []struct {
		name    string
		wa      ewmh.Workarea
		want    geom.Rect
		clipped bool
	}{
		{
			name:    "panel across the top",
			wa:      ewmh.Workarea{X: 0, Y: 30, Width: 3840, Height: 1050},
			want:    geom.Rect{X: 1920, Y: 30, Width: 1920, Height: 1050},
			clipped: true,
		},
		{
			name:    "work area on the other monitor",
			wa:      ewmh.Workarea{X: 0, Y: 0, Width: 1920, Height: 1080},
			want:    geom.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080},
			clipped: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Monitor{ID: 1, Name: "DP-1", X: 1920, Y: 0, Width: 1920, Height: 1080}
			if got := clipToWorkarea(&m, tt.wa); got != tt.clipped {
				t.Fatalf("expected clipped=%v, got %v", tt.clipped, got)
			}
			if got := m.Rect(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
