package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"inkwell/internal/store"
)

// FileStore persists the task list as one JSON document, rewritten atomically
// on every change. Readers always see a complete, valid task list; a crash
// mid-write leaves the previous version intact.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Add assigns an identifier and appends the task as pending.
func (s *FileStore) Add(task Task) (Task, error) {
	if strings.TrimSpace(task.AccountID) == "" {
		return Task{}, fmt.Errorf("queue: account id required")
	}
	if strings.TrimSpace(task.Keyword) == "" {
		return Task{}, fmt.Errorf("queue: keyword required")
	}
	task.TaskID = store.NewID("task", task.AccountID+"|"+task.Keyword)
	task.Status = StatusPending
	task.CreatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.readAll()
	tasks = append(tasks, task)
	if err := s.writeAll(tasks); err != nil {
		return Task{}, err
	}
	return task, nil
}

// List returns all tasks in file order. An unreadable or missing file yields
// an empty slice; a corrupt task list must not block new work.
func (s *FileStore) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Get returns the task with the given id.
func (s *FileStore) Get(taskID string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.readAll() {
		if task.TaskID == taskID {
			return task, true
		}
	}
	return Task{}, false
}

// Update replaces the stored task with the given one, enforcing forward-only
// status movement. Unknown task ids are an error.
func (s *FileStore) Update(updated Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.readAll()
	for i, task := range tasks {
		if task.TaskID != updated.TaskID {
			continue
		}
		if !CanTransition(task.Status, updated.Status) {
			return &ErrInvalidTransition{TaskID: task.TaskID, From: task.Status, To: updated.Status}
		}
		tasks[i] = updated
		return s.writeAll(tasks)
	}
	return fmt.Errorf("queue: task %s not found", updated.TaskID)
}

// SetStatus moves a task to the given status, recording an error message when
// the new status is error.
func (s *FileStore) SetStatus(taskID string, status Status, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.readAll()
	for i, task := range tasks {
		if task.TaskID != taskID {
			continue
		}
		if !CanTransition(task.Status, status) {
			return &ErrInvalidTransition{TaskID: taskID, From: task.Status, To: status}
		}
		tasks[i].Status = status
		switch status {
		case StatusError:
			tasks[i].Error = message
		case StatusDone:
			tasks[i].DoneAt = time.Now()
		}
		return s.writeAll(tasks)
	}
	return fmt.Errorf("queue: task %s not found", taskID)
}

// MarkNotified stamps dispatcher bookkeeping on a task: the status advances
// to notified when the task is still pending, the notify counter increments,
// and the notification time is recorded.
func (s *FileStore) MarkNotified(taskID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.readAll()
	for i, task := range tasks {
		if task.TaskID != taskID {
			continue
		}
		if task.Status == StatusPending {
			tasks[i].Status = StatusNotified
			tasks[i].DispatchedAt = at
		}
		tasks[i].LastNotifiedAt = at
		tasks[i].NotifyCount++
		return s.writeAll(tasks)
	}
	return fmt.Errorf("queue: task %s not found", taskID)
}

func (s *FileStore) readAll() []Task {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil
	}
	return tasks
}

func (s *FileStore) writeAll(tasks []Task) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("queue: marshal tasks: %w", err)
	}
	return store.AtomicWrite(s.path, append(data, '\n'))
}
