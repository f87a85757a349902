// Package daemon runs the shell on a headless display: it owns the event
// loop, builds outputs and panels from the configuration, serves IPC
// requests on the loop goroutine and keeps the state tidy in the
// background.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/1broseidon/wlshell/internal/config"
	"github.com/1broseidon/wlshell/internal/desktop"
	"github.com/1broseidon/wlshell/internal/eventloop"
	"github.com/1broseidon/wlshell/internal/geom"
	"github.com/1broseidon/wlshell/internal/headless"
	"github.com/1broseidon/wlshell/internal/ipc"
	"github.com/1broseidon/wlshell/internal/placement"
	"github.com/1broseidon/wlshell/internal/platform"
	"github.com/1broseidon/wlshell/internal/runtimepath"
	"github.com/1broseidon/wlshell/internal/shell"
)

// Options configures a Daemon.
type Options struct {
	Config *config.Config
	// ConfigPath is re-read on reload. Empty means the default path.
	ConfigPath string
	// Host seeds outputs when the config asks for x11.import_outputs.
	Host platform.Host

	SocketPath string
	PIDPath    string
	Logger     *slog.Logger
}

// Daemon is a running wlshell instance.
type Daemon struct {
	cfg        *config.Config
	configPath string
	host       platform.Host
	socketPath string
	pidPath    string
	logger     *slog.Logger

	loop    *eventloop.Loop
	display *headless.Display
	space   *headless.Space
	shell   *shell.Shell

	apps    *headless.Client
	panels  *headless.Client
	windows map[desktop.SurfaceID]*headless.Window
	layers  []*panel
	// managed names the outputs created from config or the host; outputs
	// added over IPC survive a reload.
	managed map[string]bool
}

// New builds the display, outputs and panels described by opts.Config.
func New(opts Options) (*Daemon, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loop, err := eventloop.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create event loop: %w", err)
	}

	display := headless.NewDisplay()
	fallback := cfg.Placement.FallbackSize
	sh := shell.New(shell.Config{
		Space:        display.Space(),
		Popups:       display.Popups(),
		Loop:         loop,
		Session:      placement.NewSession(cfg.Placement.MemoLimit),
		FallbackSize: geom.Sz(fallback.Width, fallback.Height),
		Logger:       logger.With("component", "shell"),
	})
	display.SetHandler(sh)

	d := &Daemon{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		host:       opts.Host,
		socketPath: opts.SocketPath,
		pidPath:    opts.PIDPath,
		logger:     logger,
		loop:       loop,
		display:    display,
		space:      display.Space(),
		shell:      sh,
		apps:       display.NewClient("ipc"),
		panels:     display.NewClient("panels"),
		windows:    make(map[desktop.SurfaceID]*headless.Window),
		managed:    make(map[string]bool),
	}

	d.syncOutputs()
	d.rebuildLayers()
	d.shell.FixupPositions()
	if d.host != nil && cfg.X11.ImportOutputs {
		if x, y, err := d.host.Pointer(); err == nil {
			d.shell.SetPointer(geom.Pt(x, y).ToF())
		}
	}

	logger.Info("daemon initialized",
		"outputs", len(d.space.Outputs()),
		"layers", len(d.layers))
	return d, nil
}

// Shell returns the shell. Only touch it from the loop goroutine.
func (d *Daemon) Shell() *shell.Shell {
	return d.shell
}

// Loop returns the event loop.
func (d *Daemon) Loop() *eventloop.Loop {
	return d.loop
}

// Run serves IPC and dispatches the loop until ctx is cancelled or the
// process receives SIGINT or SIGTERM. SIGHUP reloads the configuration.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	socketPath := d.socketPath
	if socketPath == "" {
		socketPath = d.cfg.IPC.Socket
	}
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return fmt.Errorf("failed to resolve socket path: %w", err)
		}
		socketPath = p
	}

	if err := d.writePID(); err != nil {
		return err
	}
	defer d.removePID()

	server, err := ipc.NewServer(ipc.ServerConfig{
		SocketPath: socketPath,
		Handler:    d,
		Exec:       d.loop.Call,
		Logger:     d.logger.With("component", "ipc"),
	})
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	// Clean up whatever the start-up sequence left behind before serving.
	d.Reconcile()

	reconciler := NewReconciler(ReconcilerConfig{
		Interval: d.cfg.Daemon.ReconcileInterval,
		Logger:   d.logger.With("component", "reconciler"),
	}, d.loop.Call, d.Reconcile)
	go reconciler.Run(ctx)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				d.logger.Info("received SIGHUP, reloading config")
				_ = d.loop.Post(func() {
					if err := d.Reload(); err != nil {
						d.logger.Error("config reload failed", "error", err)
					}
				})
			}
		}
	}()

	d.logger.Info("entering event loop")
	err = d.loop.Run(ctx)
	d.logger.Info("shutting down")
	return err
}

// Close releases the loop and the host connection.
func (d *Daemon) Close() error {
	if d.host != nil {
		d.host.Close()
	}
	return d.loop.Close()
}

// Reconcile drops state that outlived its windows. It runs on the loop.
func (d *Daemon) Reconcile() ReconcileStats {
	stats := ReconcileStats{
		FullscreenCleared: d.shell.Fullscreen().Sweep(),
	}
	before := len(d.space.Elements())
	d.space.Refresh()
	stats.WindowsDropped = before - len(d.space.Elements())
	return stats
}

// Reload re-reads the configuration and re-applies outputs and panels.
// The placement session keeps its ordinals.
func (d *Daemon) Reload() error {
	path := d.configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	if res.Config.Placement.MemoLimit != d.cfg.Placement.MemoLimit {
		d.logger.Warn("placement.memo_limit takes effect after restart")
	}
	d.cfg = res.Config
	d.syncOutputs()
	d.rebuildLayers()
	moved := d.shell.FixupPositions()
	d.logger.Info("config reloaded",
		"files", len(res.Files),
		"outputs", len(d.space.Outputs()),
		"moved", len(moved))
	return nil
}

func (d *Daemon) resolvedPIDPath() (string, error) {
	if d.pidPath != "" {
		return d.pidPath, nil
	}
	return runtimepath.PIDPath()
}

func (d *Daemon) writePID() error {
	path, err := d.resolvedPIDPath()
	if err != nil {
		return fmt.Errorf("failed to resolve pid path: %w", err)
	}
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(string(data)); err == nil && processAlive(pid) {
			return fmt.Errorf("daemon already running (pid %d)", pid)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600)
}

func (d *Daemon) removePID() {
	path, err := d.resolvedPIDPath()
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logger.Warn("failed to remove pid file", "path", path, "error", err)
	}
}

func processAlive(pid int) bool {
	if pid <= 0 || pid == os.Getpid() {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}
