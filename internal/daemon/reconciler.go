package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/bsptile/internal/logging"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically requests a full refit so that windows moved or
// resized behind the daemon's back snap back to their tiles, even when no
// root property change announced it.
type Reconciler struct {
	interval time.Duration
	request  func()
	logger   *slog.Logger
}

// NewReconciler creates a reconciler that calls request on every tick.
// request must not block; it should only enqueue work.
func NewReconciler(cfg ReconcilerConfig, request func()) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	return &Reconciler{
		interval: interval,
		request:  request,
		logger:   logging.Or(cfg.Logger),
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()
	r.request()
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
