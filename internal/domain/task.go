package domain

import "strings"

// TaskID is the server-assigned task identifier. The client treats it as opaque.
type TaskID string

// String returns the raw identifier.
func (id TaskID) String() string {
	return string(id)
}

// ParseTaskID trims and validates a user-supplied identifier.
func ParseTaskID(raw string) (TaskID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidID
	}
	return TaskID(raw), nil
}

// Task represents one to-do item as held by the remote store.
type Task struct {
	ID          TaskID
	Title       string
	Status      Status
	Description string
	StartDate   *Date
	EndDate     *Date
}

// TaskInput holds the raw values used to build a task.
type TaskInput struct {
	ID          TaskID
	Title       string
	Status      Status
	Description string
	StartDate   *Date
	EndDate     *Date
}

// NewTask validates input and constructs a task. An empty status defaults to todo.
func NewTask(in TaskInput) (Task, error) {
	in.ID = TaskID(strings.TrimSpace(string(in.ID)))
	title, err := NormalizeTitle(in.Title)
	if err != nil {
		return Task{}, err
	}
	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !in.Status.Valid() {
		return Task{}, ErrInvalidStatus
	}

	return Task{
		ID:          in.ID,
		Title:       title,
		Status:      in.Status,
		Description: in.Description,
		StartDate:   cloneDate(in.StartDate),
		EndDate:     cloneDate(in.EndDate),
	}, nil
}

// NormalizeTitle trims a title and rejects blank values.
func NormalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrInvalidTitle
	}
	return title, nil
}

// Fields returns the replaceable fields of t so callers can carry them forward.
func (t Task) Fields() UpdateFields {
	return UpdateFields{
		Status:      t.Status,
		Description: t.Description,
		StartDate:   cloneDate(t.StartDate),
		EndDate:     cloneDate(t.EndDate),
	}
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	t.StartDate = cloneDate(t.StartDate)
	t.EndDate = cloneDate(t.EndDate)
	return t
}

// Apply returns a copy of t with every replaceable field overwritten by fields.
func (t Task) Apply(fields UpdateFields) Task {
	t.Status = fields.Status
	t.Description = fields.Description
	t.StartDate = cloneDate(fields.StartDate)
	t.EndDate = cloneDate(fields.EndDate)
	return t
}

// UpdateFields is the complete replaceable representation sent on update.
// The store replaces every field, so an omitted value clears it.
type UpdateFields struct {
	Status      Status
	Description string
	StartDate   *Date
	EndDate     *Date
}

// Validate checks fields before they are sent.
func (f UpdateFields) Validate() error {
	if !f.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
