package app

import (
	"context"
	"sync"

	"github.com/evanschultz/todoboard/internal/domain"
)

// TaskList caches the last successful full fetch from a TaskStore.
// Refresh is the only writer; readers get copies.
type TaskList struct {
	store TaskStore

	mu      sync.RWMutex
	tasks   []domain.Task
	err     error
	loaded  bool
	started uint64
	applied uint64
}

// NewTaskList constructs an empty cache over store.
func NewTaskList(store TaskStore) *TaskList {
	return &TaskList{store: store}
}

// Refresh replaces the cached list with the store's current list.
// On failure the cache is untouched and Err reports the failure.
// A refresh that completes after a newer one has already been applied is dropped.
func (l *TaskList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.started++
	seq := l.started
	l.mu.Unlock()

	tasks, err := l.store.List(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq < l.applied {
		return err
	}
	l.applied = seq
	if err != nil {
		l.err = err
		return err
	}
	l.tasks = cloneTasks(tasks)
	l.err = nil
	l.loaded = true
	return nil
}

// Tasks returns a copy of the cache in fetch order.
func (l *TaskList) Tasks() []domain.Task {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneTasks(l.tasks)
}

// Lookup returns the cached copy of one task.
func (l *TaskList) Lookup(id domain.TaskID) (domain.Task, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, task := range l.tasks {
		if task.ID == id {
			return task.Clone(), true
		}
	}
	return domain.Task{}, false
}

// Err returns the failure from the latest refresh, or nil after a successful one.
func (l *TaskList) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Loaded reports whether at least one refresh succeeded.
func (l *TaskList) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Clone())
	}
	return out
}
