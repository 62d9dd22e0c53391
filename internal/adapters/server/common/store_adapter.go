package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanschultz/todoboard/internal/backend"
	"github.com/evanschultz/todoboard/internal/domain"
)

// TaskRepository is the storage surface the adapter needs. *backend.Store satisfies it.
type TaskRepository interface {
	List(context.Context) ([]domain.Task, error)
	Get(context.Context, domain.TaskID) (domain.Task, error)
	Create(context.Context, string) (domain.Task, error)
	Replace(context.Context, domain.TaskID, domain.UpdateFields) (domain.Task, error)
	Delete(context.Context, domain.TaskID) error
}

// StoreAdapter maps transport contracts onto a task repository.
type StoreAdapter struct {
	repo TaskRepository
}

var _ TaskService = (*StoreAdapter)(nil)

// NewStoreAdapter builds one adapter over repo.
func NewStoreAdapter(repo TaskRepository) *StoreAdapter {
	return &StoreAdapter{repo: repo}
}

// ListTasks lists tasks in insertion order, optionally filtered by status.
func (a *StoreAdapter) ListTasks(ctx context.Context, in ListTasksRequest) ([]Task, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	tasks, err := a.repo.List(ctx)
	if err != nil {
		return nil, mapStoreError("list tasks", err)
	}
	raw := strings.TrimSpace(in.Status)
	if raw == "" {
		return TasksFromDomain(tasks), nil
	}
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, mapStoreError("list tasks", err)
	}
	filtered := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status == status {
			filtered = append(filtered, task)
		}
	}
	return TasksFromDomain(filtered), nil
}

// GetTask returns one task.
func (a *StoreAdapter) GetTask(ctx context.Context, rawID string) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	id, err := domain.ParseTaskID(rawID)
	if err != nil {
		return Task{}, mapStoreError("get task", err)
	}
	task, err := a.repo.Get(ctx, id)
	if err != nil {
		return Task{}, mapStoreError("get task", err)
	}
	return TaskFromDomain(task), nil
}

// CreateTask creates one task from a title.
func (a *StoreAdapter) CreateTask(ctx context.Context, in CreateTaskRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	task, err := a.repo.Create(ctx, in.Title)
	if err != nil {
		return Task{}, mapStoreError("create task", err)
	}
	return TaskFromDomain(task), nil
}

// UpdateTask replaces the status, description and dates of one task.
func (a *StoreAdapter) UpdateTask(ctx context.Context, rawID string, in UpdateTaskRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	id, err := domain.ParseTaskID(rawID)
	if err != nil {
		return Task{}, mapStoreError("update task", err)
	}
	fields, err := normalizeUpdateRequest(in)
	if err != nil {
		return Task{}, mapStoreError("update task", err)
	}
	task, err := a.repo.Replace(ctx, id, fields)
	if err != nil {
		return Task{}, mapStoreError("update task", err)
	}
	return TaskFromDomain(task), nil
}

// DeleteTask deletes one task.
func (a *StoreAdapter) DeleteTask(ctx context.Context, rawID string) error {
	if err := a.ready(); err != nil {
		return err
	}
	id, err := domain.ParseTaskID(rawID)
	if err != nil {
		return mapStoreError("delete task", err)
	}
	if err := a.repo.Delete(ctx, id); err != nil {
		return mapStoreError("delete task", err)
	}
	return nil
}

func (a *StoreAdapter) ready() error {
	if a == nil || a.repo == nil {
		return fmt.Errorf("store adapter is not configured")
	}
	return nil
}

// normalizeUpdateRequest validates one update payload into domain fields.
func normalizeUpdateRequest(in UpdateTaskRequest) (domain.UpdateFields, error) {
	status := domain.Status(strings.TrimSpace(in.Status))
	if !status.Valid() {
		return domain.UpdateFields{}, fmt.Errorf("status %q: %w", in.Status, domain.ErrInvalidStatus)
	}
	start, err := parseOptionalDate("start_date", in.StartDate)
	if err != nil {
		return domain.UpdateFields{}, err
	}
	end, err := parseOptionalDate("end_date", in.EndDate)
	if err != nil {
		return domain.UpdateFields{}, err
	}
	description := ""
	if in.Description != nil {
		description = *in.Description
	}
	return domain.UpdateFields{
		Status:      status,
		Description: description,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

func parseOptionalDate(field string, raw *string) (*domain.Date, error) {
	if raw == nil {
		return nil, nil
	}
	date, err := domain.ParseDate(*raw)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", field, *raw, err)
	}
	return date, nil
}

// mapStoreError maps storage and validation errors onto transport errors.
func mapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidDate):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
