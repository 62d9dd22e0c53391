package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evanschultz/todoboard/internal/domain"
)

// ErrNoActiveDrag and related errors describe local guard failures.
var (
	ErrNoActiveDrag = errors.New("no active drag")
	ErrEditorClosed = errors.New("editor closed")
	ErrTaskNotFound = errors.New("task not found")
)

// Remote operation names recorded on NetworkFailure.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// NetworkFailure is the single error kind returned by a TaskStore.
// It covers connection errors, timeouts, non-2xx responses and undecodable payloads.
type NetworkFailure struct {
	Op         string
	StatusCode int
	Err        error
}

// Error implements error.
func (f *NetworkFailure) Error() string {
	op := strings.TrimSpace(f.Op)
	if op == "" {
		op = "request"
	}
	switch {
	case f.StatusCode > 0 && f.Err != nil:
		return fmt.Sprintf("%s task: status %d: %v", op, f.StatusCode, f.Err)
	case f.StatusCode > 0:
		return fmt.Sprintf("%s task: status %d", op, f.StatusCode)
	case f.Err != nil:
		return fmt.Sprintf("%s task: %v", op, f.Err)
	default:
		return op + " task: network failure"
	}
}

// Unwrap returns the underlying cause.
func (f *NetworkFailure) Unwrap() error {
	return f.Err
}

// Timeout reports whether the failure was caused by the request deadline.
func (f *NetworkFailure) Timeout() bool {
	return errors.Is(f.Err, context.DeadlineExceeded)
}

// AsNetworkFailure extracts a NetworkFailure from err's chain.
func AsNetworkFailure(err error) (*NetworkFailure, bool) {
	var failure *NetworkFailure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}

// UserMessage converts err into one line suitable for a status bar or CLI error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if failure, ok := AsNetworkFailure(err); ok {
		switch {
		case failure.Timeout():
			return fmt.Sprintf("%s timed out; the task server did not answer in time", failure.Op)
		case failure.StatusCode == http.StatusNotFound:
			return fmt.Sprintf("%s failed: task not found on server", failure.Op)
		case failure.StatusCode >= 500:
			return fmt.Sprintf("%s failed: server error (HTTP %d)", failure.Op, failure.StatusCode)
		case failure.StatusCode > 0:
			return fmt.Sprintf("%s rejected by server (HTTP %d)", failure.Op, failure.StatusCode)
		default:
			return fmt.Sprintf("%s failed: cannot reach task server (%v)", failure.Op, failure.Err)
		}
	}
	switch {
	case errors.Is(err, domain.ErrInvalidTitle):
		return "title is required"
	case errors.Is(err, domain.ErrInvalidStatus):
		return "status must be todo, in_progress or completed"
	case errors.Is(err, domain.ErrInvalidDate):
		return "dates must use YYYY-MM-DD"
	case errors.Is(err, domain.ErrInvalidID):
		return "task id is required"
	case errors.Is(err, ErrNoActiveDrag):
		return "no card is being dragged"
	case errors.Is(err, ErrEditorClosed):
		return "editor was closed before the request finished"
	case errors.Is(err, ErrTaskNotFound):
		return "task is not loaded; reload and try again"
	default:
		return err.Error()
	}
}
