package tiling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/1broseidon/bsptile/internal/logging"
)

// ErrStopped is returned for work submitted after the dispatcher stopped.
var ErrStopped = errors.New("dispatcher stopped")

// Dispatcher serialises all layout work on one goroutine. X event callbacks,
// hotkeys, IPC handlers and timers only enqueue closures; the trees are
// never touched anywhere else.
type Dispatcher struct {
	queue  chan func()
	done   chan struct{}
	logger *slog.Logger
}

func NewDispatcher(size int, logger *slog.Logger) *Dispatcher {
	if size < 1 {
		size = 1
	}
	return &Dispatcher{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logging.Or(logger),
	}
}

// Run executes queued work until ctx is cancelled. Work still queued at that
// point is dropped.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-d.queue:
			d.exec(fn)
		}
	}
}

func (d *Dispatcher) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatcher: recovered from panic", "panic", r)
		}
	}()
	fn()
}

// Post enqueues fn without waiting for it to run.
func (d *Dispatcher) Post(fn func()) error {
	select {
	case <-d.done:
		return ErrStopped
	default:
	}
	select {
	case d.queue <- fn:
		return nil
	case <-d.done:
		return ErrStopped
	}
}

// Call runs fn on the dispatcher and waits for its result.
func (d *Dispatcher) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	err := d.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("panic: %v", r)
			}
		}()
		result <- fn()
	})
	if err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Coalescer posts a function at most once until that post has started to
// run, collapsing bursts of triggers into one execution.
type Coalescer struct {
	d       *Dispatcher
	fn      func()
	pending atomic.Bool
}

func (d *Dispatcher) Coalesce(fn func()) *Coalescer {
	return &Coalescer{d: d, fn: fn}
}

// Trigger requests a run. It never blocks on a busy dispatcher for longer
// than a full queue takes to drain.
func (c *Coalescer) Trigger() {
	if !c.pending.CompareAndSwap(false, true) {
		return
	}
	err := c.d.Post(func() {
		c.pending.Store(false)
		c.fn()
	})
	if err != nil {
		c.pending.Store(false)
	}
}
