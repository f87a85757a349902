package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Executor runs fn on the goroutine that owns the reconciled state.
type Executor func(ctx context.Context, fn func()) error

// ReconcileStats reports what one pass cleaned up.
type ReconcileStats struct {
	FullscreenCleared int
	WindowsDropped    int
}

func (s ReconcileStats) empty() bool {
	return s.FullscreenCleared == 0 && s.WindowsDropped == 0
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops state that outlived its windows.
type Reconciler struct {
	interval time.Duration
	exec     Executor
	pass     func() ReconcileStats
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
// pass is run through exec on every tick.
func NewReconciler(cfg ReconcilerConfig, exec Executor, pass func() ReconcileStats) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		exec:     exec,
		pass:     pass,
		logger:   logger,
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
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) ReconcileStats {
	var stats ReconcileStats
	err := r.exec(ctx, func() {
		// Recover from panics to prevent crashing the daemon
		defer func() {
			if err := recover(); err != nil {
				r.logger.Error("reconciler panic recovered", "error", err)
			}
		}()
		stats = r.pass()
	})
	if err != nil {
		r.logger.Warn("reconciler: pass not run", "error", err)
		return ReconcileStats{}
	}

	if !stats.empty() {
		r.logger.Info("reconciler: stale state dropped",
			"fullscreen", stats.FullscreenCleared,
			"windows", stats.WindowsDropped)
	}
	return stats
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) ReconcileStats {
	return r.reconcile(ctx)
}
