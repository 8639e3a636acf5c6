package dispatch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/queue"
)

type recordingNotifier struct {
	ready []string
	fail  bool
}

func (n *recordingNotifier) NotifyTaskReady(_ context.Context, task queue.Task) error {
	if n.fail {
		return errors.New("webhook unreachable")
	}
	n.ready = append(n.ready, task.TaskID)
	return nil
}

func (n *recordingNotifier) NotifyTaskDone(context.Context, queue.Task) error   { return nil }
func (n *recordingNotifier) NotifyTaskFailed(context.Context, queue.Task) error { return nil }
func (n *recordingNotifier) TestNotification(context.Context) error             { return nil }

func newTestQueue(t *testing.T) *queue.FileStore {
	t.Helper()
	return queue.NewFileStore(filepath.Join(t.TempDir(), "pending_tasks.json"))
}

func TestSweepNotifiesPendingTask(t *testing.T) {
	tasks := newTestQueue(t)
	added, err := tasks.Add(queue.Task{AccountID: "acct-1", Keyword: "慢生活"})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	notifier := &recordingNotifier{}
	d := New(tasks, notifier, config.Dispatcher{PollInterval: 1, NotifyCooldown: 60}, nil)

	d.Sweep(context.Background())

	if len(notifier.ready) != 1 || notifier.ready[0] != added.TaskID {
		t.Fatalf("expected one notification for %s, got %v", added.TaskID, notifier.ready)
	}
	got, ok := tasks.Get(added.TaskID)
	if !ok {
		t.Fatal("task disappeared after sweep")
	}
	if got.Status != queue.StatusNotified {
		t.Errorf("expected status notified, got %s", got.Status)
	}
	if got.NotifyCount != 1 {
		t.Errorf("expected notify count 1, got %d", got.NotifyCount)
	}
	if got.LastNotifiedAt.IsZero() {
		t.Error("expected last notified timestamp to be set")
	}
}

func TestSweepRespectsCooldown(t *testing.T) {
	tasks := newTestQueue(t)
	added, err := tasks.Add(queue.Task{AccountID: "acct-1", Keyword: "数字断舍离"})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	notifier := &recordingNotifier{}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	d := New(tasks, notifier, config.Dispatcher{PollInterval: 1, NotifyCooldown: 60}, nil,
		WithClock(func() time.Time { return now }))

	d.Sweep(context.Background())
	d.Sweep(context.Background())
	if len(notifier.ready) != 1 {
		t.Fatalf("expected a single notification within the cooldown, got %d", len(notifier.ready))
	}

	now = now.Add(30 * time.Second)
	d.Sweep(context.Background())
	if len(notifier.ready) != 1 {
		t.Fatalf("cooldown not honored at 30s, got %d notifications", len(notifier.ready))
	}

	now = now.Add(31 * time.Second)
	d.Sweep(context.Background())
	if len(notifier.ready) != 2 {
		t.Fatalf("expected re-notification after cooldown, got %d", len(notifier.ready))
	}
	got, _ := tasks.Get(added.TaskID)
	if got.NotifyCount != 2 {
		t.Errorf("expected notify count 2, got %d", got.NotifyCount)
	}
}

func TestSweepLeavesTaskPendingOnFailure(t *testing.T) {
	tasks := newTestQueue(t)
	added, err := tasks.Add(queue.Task{AccountID: "acct-1", Keyword: "长期主义"})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	notifier := &recordingNotifier{fail: true}
	d := New(tasks, notifier, config.Dispatcher{PollInterval: 1, NotifyCooldown: 60}, nil)

	d.Sweep(context.Background())

	got, _ := tasks.Get(added.TaskID)
	if got.Status != queue.StatusPending {
		t.Errorf("failed notification must leave the task pending, got %s", got.Status)
	}
	if got.NotifyCount != 0 {
		t.Errorf("failed notification must not count, got %d", got.NotifyCount)
	}

	notifier.fail = false
	d.Sweep(context.Background())
	got, _ = tasks.Get(added.TaskID)
	if got.Status != queue.StatusNotified || got.NotifyCount != 1 {
		t.Errorf("retry after recovery should notify once: status=%s count=%d", got.Status, got.NotifyCount)
	}
}

func TestSweepSkipsFinishedTasks(t *testing.T) {
	tasks := newTestQueue(t)
	added, err := tasks.Add(queue.Task{AccountID: "acct-1", Keyword: "完结话题"})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if err := tasks.SetStatus(added.TaskID, queue.StatusProcessing, ""); err != nil {
		t.Fatalf("set processing: %v", err)
	}
	if err := tasks.SetStatus(added.TaskID, queue.StatusDone, ""); err != nil {
		t.Fatalf("set done: %v", err)
	}
	notifier := &recordingNotifier{}
	d := New(tasks, notifier, config.Dispatcher{PollInterval: 1, NotifyCooldown: 1}, nil)

	d.Sweep(context.Background())
	if len(notifier.ready) != 0 {
		t.Fatalf("done task must not be re-notified, got %v", notifier.ready)
	}
}
