package app

import (
	"context"
	"fmt"

	"github.com/evanschultz/todoboard/internal/domain"
)

// SessionConfig holds optional collaborators for a session.
type SessionConfig struct {
	Logger Logger
}

// Session owns the task cache, drag controller and detail editor for one
// board view and exposes them to the front-ends.
type Session struct {
	store  TaskStore
	list   *TaskList
	drag   *DragController
	editor *DetailEditor
	log    Logger
}

// NewSession constructs a session over store.
func NewSession(store TaskStore, cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	list := NewTaskList(store)
	return &Session{
		store:  store,
		list:   list,
		drag:   NewDragController(store, list, logger),
		editor: NewDetailEditor(store, list, logger),
		log:    logger,
	}
}

// Load refreshes the task cache.
func (s *Session) Load(ctx context.Context) error {
	if err := s.list.Refresh(ctx); err != nil {
		s.log.Warn("refresh failed", "err", err)
		return err
	}
	return nil
}

// Tasks returns the cached tasks in fetch order.
func (s *Session) Tasks() []domain.Task {
	return s.list.Tasks()
}

// Lookup returns the cached copy of one task.
func (s *Session) Lookup(id domain.TaskID) (domain.Task, bool) {
	return s.list.Lookup(id)
}

// Column returns the cached tasks in status.
func (s *Session) Column(status domain.Status) []domain.Task {
	return ColumnFor(s.list.Tasks(), status)
}

// Board projects the cache into its three columns.
func (s *Session) Board() Board {
	return Project(s.list.Tasks())
}

// Err returns the latest refresh failure.
func (s *Session) Err() error {
	return s.list.Err()
}

// Loaded reports whether the cache has been filled at least once.
func (s *Session) Loaded() bool {
	return s.list.Loaded()
}

// CreateTask creates one task from title. Blank titles are rejected before any store call.
func (s *Session) CreateTask(ctx context.Context, title string) (domain.Task, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return domain.Task{}, err
	}
	created, err := s.store.Create(ctx, title)
	refreshErr := s.list.Refresh(ctx)
	if err != nil {
		s.log.Warn("create failed", "title", title, "err", err)
		return domain.Task{}, err
	}
	s.log.Info("task created", "task", created.ID, "title", title)
	return created, refreshErr
}

// DeleteTask deletes one task and refreshes the cache.
func (s *Session) DeleteTask(ctx context.Context, id domain.TaskID) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	err := s.store.Delete(ctx, id)
	refreshErr := s.list.Refresh(ctx)
	if err != nil {
		s.log.Warn("delete failed", "task", id, "err", err)
		return err
	}
	s.log.Info("task deleted", "task", id)
	return refreshErr
}

// MoveTask performs one complete drag gesture of id onto target, starting from its cached status.
func (s *Session) MoveTask(ctx context.Context, id domain.TaskID, target domain.Status) (DropResult, error) {
	task, ok := s.list.Lookup(id)
	if !ok {
		return DropResult{}, fmt.Errorf("move task %q: %w", id, ErrTaskNotFound)
	}
	if err := s.drag.Begin(task.ID, task.Status); err != nil {
		return DropResult{}, err
	}
	return s.drag.Drop(ctx, target)
}

// BeginDrag starts a drag of a cached task.
func (s *Session) BeginDrag(id domain.TaskID) (DragPayload, error) {
	task, ok := s.list.Lookup(id)
	if !ok {
		return DragPayload{}, fmt.Errorf("drag task %q: %w", id, ErrTaskNotFound)
	}
	if err := s.drag.Begin(task.ID, task.Status); err != nil {
		return DragPayload{}, err
	}
	return DragPayload{ID: task.ID, Status: task.Status}, nil
}

// ActiveDrag returns the in-flight drag payload.
func (s *Session) ActiveDrag() (DragPayload, bool) {
	return s.drag.Active()
}

// CancelDrag abandons the in-flight drag.
func (s *Session) CancelDrag() bool {
	return s.drag.Cancel()
}

// Drop drops the in-flight drag onto target.
func (s *Session) Drop(ctx context.Context, target domain.Status) (DropResult, error) {
	return s.drag.Drop(ctx, target)
}

// OpenEditor loads id into the detail editor.
func (s *Session) OpenEditor(ctx context.Context, id domain.TaskID) (EditBuffer, error) {
	return s.editor.Open(ctx, id)
}

// EditorBuffer returns the open edit buffer.
func (s *Session) EditorBuffer() (EditBuffer, bool) {
	return s.editor.Current()
}

// SaveEditor commits buf through the detail editor.
func (s *Session) SaveEditor(ctx context.Context, buf EditBuffer) (domain.Task, error) {
	return s.editor.Save(ctx, buf)
}

// CloseEditor discards the edit buffer.
func (s *Session) CloseEditor() {
	s.editor.Close()
}
