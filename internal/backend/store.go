// Package backend holds the in-memory task store served by `todoboard serve`.
package backend

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/evanschultz/todoboard/internal/domain"
)

// ErrNotFound reports a missing task id.
var ErrNotFound = errors.New("task not found")

// Store keeps tasks in insertion order. Ids are sequential and never reused.
type Store struct {
	mu     sync.Mutex
	tasks  []domain.Task
	nextID uint64
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{nextID: 1}
}

// List returns every task in insertion order.
func (s *Store) List(context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task.Clone())
	}
	return out, nil
}

// Get returns one task.
func (s *Store) Get(_ context.Context, id domain.TaskID) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Task{}, ErrNotFound
	}
	return s.tasks[idx].Clone(), nil
}

// Create appends a task with status todo.
func (s *Store) Create(_ context.Context, title string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, err := domain.NewTask(domain.TaskInput{
		ID:     domain.TaskID(strconv.FormatUint(s.nextID, 10)),
		Title:  title,
		Status: domain.StatusTodo,
	})
	if err != nil {
		return domain.Task{}, err
	}
	s.nextID++
	s.tasks = append(s.tasks, task)
	return task.Clone(), nil
}

// Replace overwrites status, description and both dates of one task.
// Fields left zero are cleared.
func (s *Store) Replace(_ context.Context, id domain.TaskID, fields domain.UpdateFields) (domain.Task, error) {
	if err := fields.Validate(); err != nil {
		return domain.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Task{}, ErrNotFound
	}
	s.tasks[idx] = s.tasks[idx].Apply(fields)
	return s.tasks[idx].Clone(), nil
}

// Delete removes one task.
func (s *Store) Delete(_ context.Context, id domain.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	return nil
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Store) indexOf(id domain.TaskID) int {
	for i, task := range s.tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}
