package app

import (
	"context"

	"github.com/evanschultz/todoboard/internal/domain"
)

// TaskStore is the remote source of truth for tasks.
// Every failure is returned as *NetworkFailure.
type TaskStore interface {
	List(context.Context) ([]domain.Task, error)
	Get(context.Context, domain.TaskID) (domain.Task, error)
	Create(context.Context, string) (domain.Task, error)
	Update(context.Context, domain.TaskID, domain.UpdateFields) (domain.Task, error)
	Delete(context.Context, domain.TaskID) error
}

// Logger is the structured logging surface used by app components.
// *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// NopLogger discards every entry.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(any, ...any) {}

// Info implements Logger.
func (NopLogger) Info(any, ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(any, ...any) {}

// Error implements Logger.
func (NopLogger) Error(any, ...any) {}
