// Package daemon runs the background dispatcher as a single-instance
// process. An advisory file lock keeps a second daemon from racing the first
// on the shared task file.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"inkwell/internal/config"
	"inkwell/internal/dispatch"
	"inkwell/internal/logging"
	"inkwell/internal/notifications"
	"inkwell/internal/queue"
)

// Daemon owns the dispatcher loop and the instance lock.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	tasks      *queue.FileStore
	dispatcher *dispatch.Dispatcher

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs a daemon with its dispatcher wired to the configured queue
// and notifier.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	tasks := queue.NewFileStore(filepath.Join(cfg.Paths.DataDir, "pending_tasks.json"))
	notifier := notifications.NewService(cfg.Notify)
	lockPath := filepath.Join(cfg.Paths.LogDir, "inkwelld.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		tasks:      tasks,
		dispatcher: dispatch.New(tasks, notifier, cfg.Dispatcher, logger),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Tasks exposes the queue store for callers embedding the daemon.
func (d *Daemon) Tasks() *queue.FileStore {
	return d.tasks
}

// Start acquires the instance lock and launches the dispatcher loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another inkwell daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		_ = d.dispatcher.Run(runCtx)
	}()

	d.running.Store(true)
	d.logger.Info("inkwell daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts the dispatcher and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.done != nil {
		<-d.done
		d.done = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("inkwell daemon stopped")
}

// Running reports whether the dispatcher loop is live.
func (d *Daemon) Running() bool {
	return d.running.Load()
}
