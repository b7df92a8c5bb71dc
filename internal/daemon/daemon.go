package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/bsptile/internal/animation"
	"github.com/1broseidon/bsptile/internal/config"
	"github.com/1broseidon/bsptile/internal/geom"
	"github.com/1broseidon/bsptile/internal/hotkeys"
	"github.com/1broseidon/bsptile/internal/ipc"
	"github.com/1broseidon/bsptile/internal/logging"
	"github.com/1broseidon/bsptile/internal/platform"
	"github.com/1broseidon/bsptile/internal/runtimepath"
	"github.com/1broseidon/bsptile/internal/tiling"
	"github.com/1broseidon/bsptile/internal/x11"
)

const (
	queueSize       = 64
	eventLoopGrace  = 2 * time.Second
	dispatcherGrace = 2 * time.Second
)

// Options configure a Daemon.
type Options struct {
	// ConfigPath is the main config file; empty means the default location.
	ConfigPath string
	// SocketPath overrides the IPC socket location.
	SocketPath string
	// Logger overrides the logger built from the configured log level.
	Logger *slog.Logger
}

// Daemon owns every resource of a running tiler. Start acquires them in
// order and Shutdown releases them in reverse order.
type Daemon struct {
	opts        Options
	logger      *slog.Logger
	ownedLogger bool

	cfgPath  string
	cfg      *config.Config
	conn     *x11.Connection
	backend  *platform.LinuxBackend
	animator *animation.Animator
	disp     *tiling.Dispatcher
	tiler    *tiling.Tiler
	keys     *hotkeys.Handler
	server   *ipc.Server
	syncReq  *tiling.Coalescer
	retile   *tiling.Coalescer

	loopDone chan struct{}
	releases releaseStack
}

func New(opts Options) *Daemon {
	return &Daemon{opts: opts, loopDone: make(chan struct{})}
}

// Run starts the daemon and blocks until ctx is cancelled or the X
// connection is lost, then shuts down.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		d.logger.Info("daemon: shutting down")
	case <-d.loopDone:
		d.logger.Warn("daemon: X event loop ended, shutting down")
	}
	d.Shutdown()
	return nil
}

// Start acquires every resource. On failure everything acquired so far is
// released before the error is returned.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.start(ctx); err != nil {
		d.Shutdown()
		return err
	}
	return nil
}

func (d *Daemon) start(ctx context.Context) error {
	path := d.opts.ConfigPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	d.cfgPath = path
	d.cfg = res.Config

	d.logger = d.opts.Logger
	if d.logger == nil {
		d.logger = logging.MustNew(os.Stderr, d.cfg.LogLevel)
		d.ownedLogger = true
	}
	d.logger.Info("daemon: configuration loaded", "path", path, "files", len(res.Files), "spacing", d.cfg.Spacing)

	conn, err := x11.NewConnection(d.cfg.Display)
	if err != nil {
		return err
	}
	d.conn = conn
	d.releases.push("x connection", conn.Close)
	d.backend = platform.NewLinuxBackend(conn)

	d.animator = animation.New(d.backend, d.cfg.Animation.Duration(), d.cfg.Animation.Frame(), d.logger)
	d.releases.push("animator", d.animator.Stop)

	d.disp = tiling.NewDispatcher(queueSize, d.logger)
	dispCtx, stopDisp := context.WithCancel(context.Background())
	dispDone := make(chan struct{})
	go func() {
		defer close(dispDone)
		d.disp.Run(dispCtx)
	}()
	d.releases.push("dispatcher", func() {
		stopDisp()
		select {
		case <-dispDone:
		case <-time.After(dispatcherGrace):
			d.logger.Warn("daemon: dispatcher did not stop in time")
		}
	})

	d.tiler = tiling.NewTiler(d.backend, d.cfg, d.animator, d.logger)
	d.syncReq = d.disp.Coalesce(func() { d.logErr("sync", d.tiler.Sync()) })
	d.retile = d.disp.Coalesce(func() { d.logErr("retile", d.tiler.Retile()) })

	if err := d.bindInput(); err != nil {
		return err
	}

	stopWatch, err := conn.WatchRoot(x11.RootProperties, func(name string) {
		d.syncReq.Trigger()
	})
	if err != nil {
		return err
	}
	d.releases.push("root watch", stopWatch)

	go func() {
		defer close(d.loopDone)
		conn.EventLoop()
	}()
	d.releases.push("event loop", func() {
		conn.Quit()
		select {
		case <-d.loopDone:
		case <-time.After(eventLoopGrace):
			d.logger.Warn("daemon: event loop did not stop in time")
		}
	})

	socket := d.opts.SocketPath
	if socket == "" {
		if socket, err = runtimepath.SocketPath(); err != nil {
			return fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	d.server = ipc.NewServer(socket, &api{disp: d.disp, layout: d.tiler, reload: d.Reload}, d.logger)
	if err := d.server.Start(); err != nil {
		return err
	}
	d.releases.push("ipc server", d.server.Stop)

	reconciler := NewReconciler(ReconcilerConfig{
		Interval: d.cfg.ReconcileInterval(),
		Logger:   d.logger,
	}, d.retile.Trigger)
	recCtx, stopRec := context.WithCancel(ctx)
	go reconciler.Run(recCtx)
	d.releases.push("reconciler", stopRec)

	d.watchSignals()
	if d.cfg.WatchConfig {
		d.watchConfig(res)
	}

	// Initial tiling of everything already on screen.
	reconciler.ReconcileNow()
	d.logger.Info("daemon: started", "socket", socket)
	return nil
}

func (d *Daemon) bindInput() error {
	d.keys = hotkeys.NewHandler(d.backend.XUtil(), d.backend.RootWindow(), d.logger)
	d.releases.push("hotkeys", func() {
		d.keys.Release()
		d.keys.ReleaseDrag()
	})

	bindings := []struct {
		name string
		keys string
		fn   func() error
	}{
		{"retile", d.cfg.RetileHotkey, d.tiler.Retile},
		{"reset", d.cfg.ResetHotkey, d.tiler.Reset},
	}
	for _, b := range bindings {
		b := b
		if err := d.keys.Register(b.keys, func() { d.post(b.name, b.fn) }); err != nil {
			d.logger.Warn("daemon: hotkey not registered", "action", b.name, "error", err)
		}
	}

	return d.keys.BindDrag(d.cfg.DragButton,
		func(p geom.Point) { d.post("grab", func() error { return d.tiler.GrabBegin(p) }) },
		func(p geom.Point) { d.post("drop", func() error { return d.tiler.GrabEnd(p) }) },
	)
}

func (d *Daemon) watchSignals() {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-hup:
				d.logger.Info("daemon: SIGHUP received, reloading config")
				d.logErr("reload", d.Reload(context.Background()))
			case <-done:
				return
			}
		}
	}()
	d.releases.push("signals", func() {
		signal.Stop(hup)
		close(done)
	})
}

func (d *Daemon) watchConfig(res *config.LoadResult) {
	files := res.Files
	if len(files) == 0 {
		files = []string{res.Path}
	}
	w, err := config.Watch(files, config.DefaultWatchDebounce,
		func() {
			d.logger.Info("daemon: config changed on disk, reloading")
			d.logErr("reload", d.Reload(context.Background()))
		},
		func(err error) { d.logger.Warn("daemon: config watcher error", "error", err) },
	)
	if err != nil {
		d.logger.Warn("daemon: config hot reload disabled", "error", err)
		return
	}
	d.releases.push("config watcher", func() { w.Close() })
}

// Reload re-reads the configuration and applies it on the dispatcher. An
// invalid file leaves the running configuration untouched.
func (d *Daemon) Reload(ctx context.Context) error {
	res, err := config.LoadFromPath(d.cfgPath)
	if err != nil {
		return fmt.Errorf("config reload failed: %w", err)
	}
	cfg := res.Config
	return d.disp.Call(ctx, func() error {
		old := d.cfg
		d.cfg = cfg
		if old.RetileHotkey != cfg.RetileHotkey || old.ResetHotkey != cfg.ResetHotkey || old.DragButton != cfg.DragButton {
			d.logger.Warn("daemon: key bindings changed, restart the daemon to apply them")
		}
		if d.ownedLogger && old.LogLevel != cfg.LogLevel {
			if err := logging.SetLevel(d.logger, cfg.LogLevel); err != nil {
				d.logger.Warn("daemon: log level not changed", "error", err)
			} else {
				d.logger.Info("daemon: log level changed", "level", cfg.LogLevel)
			}
		}
		d.animator.SetTiming(cfg.Animation.Duration(), cfg.Animation.Frame())
		if err := d.tiler.UpdateConfig(cfg); err != nil {
			return err
		}
		d.logger.Info("daemon: configuration reloaded")
		return nil
	})
}

// Shutdown releases every acquired resource in reverse order. It is safe to
// call more than once.
func (d *Daemon) Shutdown() {
	d.releases.unwind(logging.Or(d.logger))
}

// post queues fn on the dispatcher. It is called from X event callbacks.
func (d *Daemon) post(action string, fn func() error) {
	err := d.disp.Post(func() { d.logErr(action, fn()) })
	if err != nil && !errors.Is(err, tiling.ErrStopped) {
		d.logger.Warn("daemon: failed to queue work", "action", action, "error", err)
	}
}

func (d *Daemon) logErr(action string, err error) {
	if err != nil {
		d.logger.Warn("daemon: "+action+" failed", "error", err)
	}
}
