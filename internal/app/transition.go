package app

import (
	"context"
	"sync"

	"github.com/evanschultz/todoboard/internal/domain"
)

// DragPayload is the data attached to an in-flight drag gesture.
type DragPayload struct {
	ID     domain.TaskID
	Status domain.Status
}

// DropResult describes how a drop was evaluated.
type DropResult struct {
	Payload DragPayload
	Target  domain.Status
	Moved   bool
	Task    domain.Task
}

// DragController tracks one drag gesture at a time and turns a drop on a
// different column into a single status update.
type DragController struct {
	store TaskStore
	list  *TaskList
	log   Logger

	mu      sync.Mutex
	payload *DragPayload
}

// NewDragController constructs an idle controller.
func NewDragController(store TaskStore, list *TaskList, logger Logger) *DragController {
	if logger == nil {
		logger = NopLogger{}
	}
	return &DragController{store: store, list: list, log: logger}
}

// Begin starts a drag. A drag already in progress is replaced.
func (c *DragController) Begin(id domain.TaskID, status domain.Status) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload != nil && c.payload.ID != id {
		c.log.Debug("drag superseded", "previous", c.payload.ID, "task", id)
	}
	c.payload = &DragPayload{ID: id, Status: status}
	return nil
}

// Active returns the current payload while dragging.
func (c *DragController) Active() (DragPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload == nil {
		return DragPayload{}, false
	}
	return *c.payload, true
}

// Cancel abandons the current drag without any store call.
func (c *DragController) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	wasDragging := c.payload != nil
	c.payload = nil
	return wasDragging
}

// Drop evaluates the current drag against target.
//
// Dropping on the origin column is a no-op. Otherwise the task's persisted
// fields are read first (falling back to the cached copy when the read fails)
// and one update is issued carrying them forward with the new status, since
// the store replaces every field on update. The list is refreshed afterwards
// whether or not the update succeeded.
func (c *DragController) Drop(ctx context.Context, target domain.Status) (DropResult, error) {
	if !target.Valid() {
		return DropResult{}, domain.ErrInvalidStatus
	}
	c.mu.Lock()
	if c.payload == nil {
		c.mu.Unlock()
		return DropResult{}, ErrNoActiveDrag
	}
	payload := *c.payload
	c.payload = nil
	c.mu.Unlock()

	result := DropResult{Payload: payload, Target: target}
	if payload.Status == target {
		return result, nil
	}

	current, err := c.currentTask(ctx, payload.ID)
	if err != nil {
		return result, err
	}
	fields := current.Fields()
	fields.Status = target

	updated, updateErr := c.store.Update(ctx, payload.ID, fields)
	refreshErr := c.list.Refresh(ctx)
	if updateErr != nil {
		c.log.Warn("drop update failed", "task", payload.ID, "from", payload.Status, "to", target, "err", updateErr)
		return result, updateErr
	}
	c.log.Info("task moved", "task", payload.ID, "from", payload.Status, "to", target)
	result.Moved = true
	result.Task = updated
	return result, refreshErr
}

// currentTask reads the persisted task, using the cache when the store is unreachable.
func (c *DragController) currentTask(ctx context.Context, id domain.TaskID) (domain.Task, error) {
	task, err := c.store.Get(ctx, id)
	if err == nil {
		return task, nil
	}
	if _, ok := AsNetworkFailure(err); !ok {
		return domain.Task{}, err
	}
	cached, ok := c.list.Lookup(id)
	if !ok {
		return domain.Task{}, err
	}
	c.log.Warn("using cached task for drop", "task", id, "err", err)
	return cached, nil
}
