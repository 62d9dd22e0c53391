// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/evanschultz/todoboard/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// TaskService is the task surface shared by the REST and MCP adapters.
type TaskService interface {
	ListTasks(context.Context, ListTasksRequest) ([]Task, error)
	GetTask(context.Context, string) (Task, error)
	CreateTask(context.Context, CreateTaskRequest) (Task, error)
	UpdateTask(context.Context, string, UpdateTaskRequest) (Task, error)
	DeleteTask(context.Context, string) error
}

// ListTasksRequest optionally filters the list by status.
type ListTasksRequest struct {
	Status string
}

// CreateTaskRequest is the POST /todos body.
type CreateTaskRequest struct {
	Title string `json:"title"`
}

// UpdateTaskRequest is the PUT /todos/{id} body. Every field is replaced; null clears.
type UpdateTaskRequest struct {
	Status      string  `json:"status"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// Task is the snake_case wire representation of one task.
type Task struct {
	ID          TaskID  `json:"id"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// TaskID serializes numeric identifiers as JSON numbers and anything else as a string.
type TaskID string

// MarshalJSON implements json.Marshaler.
func (id TaskID) MarshalJSON() ([]byte, error) {
	raw := string(id)
	if _, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return []byte(raw), nil
	}
	return []byte(strconv.Quote(raw)), nil
}

// TaskFromDomain converts one domain task into its wire form.
func TaskFromDomain(task domain.Task) Task {
	return Task{
		ID:          TaskID(task.ID),
		Title:       task.Title,
		Status:      string(task.Status),
		Description: optionalString(task.Description),
		StartDate:   optionalString(domain.FormatDate(task.StartDate)),
		EndDate:     optionalString(domain.FormatDate(task.EndDate)),
	}
}

// TasksFromDomain converts a list of domain tasks.
func TasksFromDomain(tasks []domain.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, TaskFromDomain(task))
	}
	return out
}

func optionalString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
