package app

import (
	"context"
	"sync"

	"github.com/evanschultz/todoboard/internal/domain"
)

// EditBuffer is the uncommitted copy of a task's editable fields.
type EditBuffer struct {
	ID          domain.TaskID
	Title       string
	Status      domain.Status
	Description string
	StartDate   *domain.Date
	EndDate     *domain.Date
	// Degraded is set when the buffer was filled from the cache because the store could not be read.
	Degraded bool
}

// DetailEditor loads one task into an edit buffer and commits it as one update.
type DetailEditor struct {
	store TaskStore
	list  *TaskList
	log   Logger

	mu     sync.Mutex
	gen    uint64
	open   bool
	buffer EditBuffer
}

// NewDetailEditor constructs a closed editor.
func NewDetailEditor(store TaskStore, list *TaskList, logger Logger) *DetailEditor {
	if logger == nil {
		logger = NopLogger{}
	}
	return &DetailEditor{store: store, list: list, log: logger}
}

// Open loads id into the buffer. When the store cannot be reached the cached
// copy is used and the buffer is marked Degraded. If the editor is closed or
// reopened before the read returns, the result is discarded with ErrEditorClosed.
func (e *DetailEditor) Open(ctx context.Context, id domain.TaskID) (EditBuffer, error) {
	if id == "" {
		return EditBuffer{}, domain.ErrInvalidID
	}
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.open = false
	e.buffer = EditBuffer{}
	e.mu.Unlock()

	task, err := e.store.Get(ctx, id)
	degraded := false
	if err != nil {
		if _, ok := AsNetworkFailure(err); !ok {
			return EditBuffer{}, err
		}
		cached, ok := e.list.Lookup(id)
		if !ok {
			return EditBuffer{}, err
		}
		e.log.Warn("editor using cached task", "task", id, "err", err)
		task = cached
		degraded = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return EditBuffer{}, ErrEditorClosed
	}
	e.buffer = bufferFromTask(task, degraded)
	e.open = true
	return e.buffer, nil
}

// Current returns the open buffer.
func (e *DetailEditor) Current() (EditBuffer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return EditBuffer{}, false
	}
	return e.buffer, true
}

// Save commits buf's description and dates with the status captured at open time.
// On success the editor closes; on failure it stays open holding buf.
// The list is refreshed in both cases.
func (e *DetailEditor) Save(ctx context.Context, buf EditBuffer) (domain.Task, error) {
	e.mu.Lock()
	if !e.open || e.buffer.ID != buf.ID {
		e.mu.Unlock()
		return domain.Task{}, ErrEditorClosed
	}
	gen := e.gen
	status := e.buffer.Status
	e.mu.Unlock()

	fields := domain.UpdateFields{
		Status:      status,
		Description: buf.Description,
		StartDate:   buf.StartDate,
		EndDate:     buf.EndDate,
	}
	updated, err := e.store.Update(ctx, buf.ID, fields)

	e.mu.Lock()
	if e.gen == gen {
		if err != nil {
			buf.Status = status
			buf.Title = e.buffer.Title
			e.buffer = buf
		} else {
			e.gen++
			e.open = false
			e.buffer = EditBuffer{}
		}
	}
	e.mu.Unlock()

	refreshErr := e.list.Refresh(ctx)
	if err != nil {
		e.log.Warn("editor save failed", "task", buf.ID, "err", err)
		return domain.Task{}, err
	}
	e.log.Info("task details saved", "task", buf.ID)
	return updated, refreshErr
}

// Close discards the buffer. Pending Open calls will be discarded.
func (e *DetailEditor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.open = false
	e.buffer = EditBuffer{}
}

func bufferFromTask(task domain.Task, degraded bool) EditBuffer {
	task = task.Clone()
	return EditBuffer{
		ID:          task.ID,
		Title:       task.Title,
		Status:      task.Status,
		Description: task.Description,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		Degraded:    degraded,
	}
}
