package domain

import "strings"

// Status identifies one of the three board columns a task can sit in.
type Status string

// StatusTodo and related constants define the fixed column set.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var orderedStatuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

// Statuses returns every status in board display order.
func Statuses() []Status {
	out := make([]Status, len(orderedStatuses))
	copy(out, orderedStatuses)
	return out
}

// ParseStatus normalizes raw input into a known status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "in-progress", "inprogress", "doing":
		s = StatusInProgress
	case "done":
		s = StatusCompleted
	}
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Label returns the column heading for s.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Index returns the display position of s, or -1 when unknown.
func (s Status) Index() int {
	for i, candidate := range orderedStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Shift returns the neighbouring status delta columns away, clamped to the board edges.
func (s Status) Shift(delta int) Status {
	idx := s.Index()
	if idx < 0 {
		return s
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(orderedStatuses) {
		idx = len(orderedStatuses) - 1
	}
	return orderedStatuses[idx]
}
