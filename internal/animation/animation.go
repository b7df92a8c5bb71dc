// Package animation eases windows from their current frame to a target frame.
// Animations run on their own goroutines and only talk to the window system;
// they never touch layout state.
package animation

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/1broseidon/bsptile/internal/geom"
	"github.com/1broseidon/bsptile/internal/logging"
	"github.com/1broseidon/bsptile/internal/platform"
)

// Mover applies a frame to a window.
type Mover interface {
	MoveResize(id platform.WindowID, frame geom.Rect) error
}

type run struct {
	cancel chan struct{}
}

// Animator runs at most one animation per window. Starting a new animation
// for a window cancels the running one, which stops wherever it was.
type Animator struct {
	mover  Mover
	logger *slog.Logger

	mu       sync.Mutex
	duration time.Duration
	frame    time.Duration
	running  map[platform.WindowID]*run
	wg       sync.WaitGroup
}

func New(m Mover, duration, frame time.Duration, logger *slog.Logger) *Animator {
	a := &Animator{
		mover:   m,
		logger:  logging.Or(logger),
		running: make(map[platform.WindowID]*run),
	}
	a.SetTiming(duration, frame)
	return a
}

// SetTiming changes the duration and frame interval of later animations.
// A duration of zero disables animation.
func (a *Animator) SetTiming(duration, frame time.Duration) {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	a.mu.Lock()
	a.duration = duration
	a.frame = frame
	a.mu.Unlock()
}

// Ease moves id from from to to. With animation disabled, or when from is
// unknown (empty), the window is moved directly and the error is returned.
// Otherwise Ease returns immediately; frame errors end the animation and are
// logged.
func (a *Animator) Ease(id platform.WindowID, from, to geom.Rect) error {
	a.mu.Lock()
	if prev, ok := a.running[id]; ok {
		close(prev.cancel)
		delete(a.running, id)
	}
	duration, frame := a.duration, a.frame
	if duration <= 0 || from.Empty() || from == to {
		a.mu.Unlock()
		return a.mover.MoveResize(id, to)
	}

	r := &run{cancel: make(chan struct{})}
	a.running[id] = r
	a.wg.Add(1)
	a.mu.Unlock()

	go a.animate(id, r, from, to, duration, frame)
	return nil
}

func (a *Animator) animate(id platform.WindowID, r *run, from, to geom.Rect, duration, frame time.Duration) {
	defer a.wg.Done()
	defer a.finish(id, r)

	steps := max(int(duration/frame), 1)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	start := time.Now()
	for i := 1; i <= steps; i++ {
		select {
		case <-r.cancel:
			a.logger.Debug("animation: cancelled", "window", id, "step", i, "steps", steps)
			return
		case <-ticker.C:
		}

		rect := to
		if i < steps {
			rect = Lerp(from, to, EaseOutCubic(float64(i)/float64(steps)))
		}
		if err := a.mover.MoveResize(id, rect); err != nil {
			a.logger.Debug("animation: move failed", "window", id, "error", err)
			return
		}
	}
	a.logger.Debug("animation: done", "window", id, "target", to.String(), "elapsed", time.Since(start).Round(time.Millisecond))
}

func (a *Animator) finish(id platform.WindowID, r *run) {
	a.mu.Lock()
	if a.running[id] == r {
		delete(a.running, id)
	}
	a.mu.Unlock()
}

// Wait blocks until every running animation has ended.
func (a *Animator) Wait() {
	a.wg.Wait()
}

// Stop cancels every running animation and waits for them to end.
func (a *Animator) Stop() {
	a.mu.Lock()
	for id, r := range a.running {
		close(r.cancel)
		delete(a.running, id)
	}
	a.mu.Unlock()
	a.wg.Wait()
}

// EaseOutCubic maps linear progress t in [0,1] to a decelerating curve.
func EaseOutCubic(t float64) float64 {
	t = math.Min(math.Max(t, 0), 1)
	u := 1 - t
	return 1 - u*u*u
}

// Lerp interpolates every edge of from toward to by t.
func Lerp(from, to geom.Rect, t float64) geom.Rect {
	mix := func(a, b int) int {
		return int(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return geom.Rect{
		X:      mix(from.X, to.X),
		Y:      mix(from.Y, to.Y),
		Width:  max(mix(from.Width, to.Width), 1),
		Height: max(mix(from.Height, to.Height), 1),
	}
}
