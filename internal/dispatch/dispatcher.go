// Package dispatch polls the task queue and hands pending work to the
// downstream consumer through the notification service. Delivery is at
// least once: a failed notification leaves the task pending so the next
// sweep retries it, and successfully handed-off tasks are re-notified only
// after the cooldown elapses.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/logging"
	"inkwell/internal/notifications"
	"inkwell/internal/queue"
)

// Dispatcher periodically sweeps the queue for tasks that need notifying.
type Dispatcher struct {
	tasks    *queue.FileStore
	notifier notifications.Service
	interval time.Duration
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// Option adjusts dispatcher construction.
type Option func(*Dispatcher)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// New builds a dispatcher over the given queue store and notifier.
func New(tasks *queue.FileStore, notifier notifications.Service, cfg config.Dispatcher, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := time.Duration(cfg.PollInterval) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	cooldown := time.Duration(cfg.NotifyCooldown) * time.Second
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	d := &Dispatcher{
		tasks:    tasks,
		notifier: notifier,
		interval: interval,
		cooldown: cooldown,
		logger:   logging.NewComponentLogger(logger, "dispatcher"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run polls until the context is cancelled. One sweep happens immediately so
// restarts do not wait a full interval before picking up stale tasks.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher started",
		slog.Duration("poll_interval", d.interval),
		slog.Duration("notify_cooldown", d.cooldown))
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	d.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopped")
			return ctx.Err()
		case <-ticker.C:
			d.Sweep(ctx)
		}
	}
}

// Sweep notifies every eligible task once. Notification failures are logged
// and leave the task untouched so a later sweep retries it.
func (d *Dispatcher) Sweep(ctx context.Context) {
	now := d.now()
	for _, task := range d.tasks.List() {
		if ctx.Err() != nil {
			return
		}
		if !d.eligible(task, now) {
			continue
		}
		if err := d.notifier.NotifyTaskReady(ctx, task); err != nil {
			d.logger.Warn("task notification failed, will retry",
				logging.String(logging.FieldTaskID, task.TaskID),
				logging.String(logging.FieldAccountID, task.AccountID),
				logging.Error(err))
			continue
		}
		if err := d.tasks.MarkNotified(task.TaskID, now); err != nil {
			d.logger.Error("failed to record notification",
				logging.String(logging.FieldTaskID, task.TaskID),
				logging.Error(err))
			continue
		}
		d.logger.Info("task handed off",
			logging.String(logging.FieldTaskID, task.TaskID),
			logging.String(logging.FieldAccountID, task.AccountID),
			slog.Int("notify_count", task.NotifyCount+1))
	}
}

// eligible reports whether a task should be notified now. Pending tasks are
// always eligible. Handed-off and in-flight tasks are re-notified once their
// last notification is older than the cooldown, covering consumers that lost
// the first delivery.
func (d *Dispatcher) eligible(task queue.Task, now time.Time) bool {
	switch task.Status {
	case queue.StatusPending:
		return true
	case queue.StatusDispatched, queue.StatusNotified, queue.StatusProcessing:
		if task.LastNotifiedAt.IsZero() {
			return true
		}
		return now.Sub(task.LastNotifiedAt) >= d.cooldown
	default:
		return false
	}
}
