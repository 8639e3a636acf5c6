// Package queue holds generation work items and their lifecycle. Statuses
// move monotonically forward; a finished task never returns to pending.
package queue

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusDispatched Status = "dispatched"
	StatusNotified   Status = "notified"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
	StatusPushed     Status = "pushed"
)

// statusRank orders the forward-only lifecycle. Done and error share a rank:
// a task ends one way or the other, never both.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusDispatched: 1,
	StatusNotified:   1,
	StatusProcessing: 2,
	StatusDone:       3,
	StatusError:      3,
	StatusPushed:     4,
}

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further work happens on a task in this state.
// Done is not terminal: a done task may still be pushed.
func (s Status) Terminal() bool {
	return s == StatusError || s == StatusPushed
}

// CanTransition reports whether moving from one status to another preserves
// forward-only ordering. Equal statuses are allowed so repeated notifications
// and idempotent updates are harmless. Pushed is reachable only from done.
func CanTransition(from, to Status) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	if from == to {
		return true
	}
	if to == StatusPushed {
		return from == StatusDone
	}
	if from.Terminal() {
		return false
	}
	if fromRank == toRank {
		// dispatched <-> notified are both "handed off" states.
		return (from == StatusDispatched && to == StatusNotified) ||
			(from == StatusNotified && to == StatusDispatched)
	}
	return toRank > fromRank
}

// Task is one unit of generation work.
type Task struct {
	TaskID    string    `json:"task_id"`
	AccountID string    `json:"account_id"`
	Keyword   string    `json:"keyword"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Provenance when the topic came from a hot source.
	HotTitle  string `json:"hot_title,omitempty"`
	HotURL    string `json:"hot_url,omitempty"`
	HotSource string `json:"hot_source,omitempty"`

	// Generation options.
	TopicID     string `json:"topic_id,omitempty"`
	Theme       string `json:"theme,omitempty"`
	InlineCount int    `json:"inline_count,omitempty"`
	PushToDraft bool   `json:"push_to_draft,omitempty"`
	DoWebSearch bool   `json:"do_web_search,omitempty"`

	// Dispatcher bookkeeping.
	DispatchedAt   time.Time `json:"dispatched_at,omitzero"`
	LastNotifiedAt time.Time `json:"last_notified_at,omitzero"`
	NotifyCount    int       `json:"notify_count,omitempty"`

	// Outcome.
	Error      string    `json:"error,omitempty"`
	Title      string    `json:"title,omitempty"`
	OutputDir  string    `json:"output_dir,omitempty"`
	PreviewURL string    `json:"preview_url,omitempty"`
	DoneAt     time.Time `json:"done_at,omitzero"`
}

// ErrInvalidTransition reports a rejected status change.
type ErrInvalidTransition struct {
	TaskID string
	From   Status
	To     Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("queue: task %s cannot move %s -> %s", e.TaskID, e.From, e.To)
}
