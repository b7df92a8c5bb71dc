package daemon

import (
	"context"

	"github.com/1broseidon/bsptile/internal/ipc"
	"github.com/1broseidon/bsptile/internal/platform"
	"github.com/1broseidon/bsptile/internal/tiling"
)

// layout is the part of *tiling.Tiler the IPC surface drives.
type layout interface {
	Status() tiling.Status
	Monitors() []tiling.MonitorView
	Snapshot() []tiling.SlotSnapshot
	Retile() error
	Reset() error
	SetSplit(window platform.WindowID, offset int) error
}

// api runs IPC commands on the dispatcher goroutine.
type api struct {
	disp   *tiling.Dispatcher
	layout layout
	reload func(ctx context.Context) error
}

var _ ipc.Handler = (*api)(nil)

func (a *api) Status(ctx context.Context) (tiling.Status, error) {
	var st tiling.Status
	err := a.disp.Call(ctx, func() error {
		st = a.layout.Status()
		return nil
	})
	return st, err
}

func (a *api) Monitors(ctx context.Context) ([]tiling.MonitorView, error) {
	var ms []tiling.MonitorView
	err := a.disp.Call(ctx, func() error {
		ms = a.layout.Monitors()
		return nil
	})
	return ms, err
}

func (a *api) Tree(ctx context.Context) ([]tiling.SlotSnapshot, error) {
	var slots []tiling.SlotSnapshot
	err := a.disp.Call(ctx, func() error {
		slots = a.layout.Snapshot()
		return nil
	})
	return slots, err
}

func (a *api) Retile(ctx context.Context) error {
	return a.disp.Call(ctx, a.layout.Retile)
}

func (a *api) Reset(ctx context.Context) error {
	return a.disp.Call(ctx, a.layout.Reset)
}

func (a *api) Reload(ctx context.Context) error {
	return a.reload(ctx)
}

func (a *api) SetSplit(ctx context.Context, window uint32, offset int) error {
	return a.disp.Call(ctx, func() error {
		return a.layout.SetSplit(platform.WindowID(window), offset)
	})
}
