package todoapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/evanschultz/todoboard/internal/domain"
)

// wireID accepts a JSON number or string identifier.
type wireID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*id = wireID(strings.TrimSpace(raw))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	if _, err := strconv.ParseInt(num.String(), 10, 64); err != nil {
		return fmt.Errorf("decode id %s: not an integer", num)
	}
	*id = wireID(num.String())
	return nil
}

// wireTask is the snake_case task representation served under /todos.
type wireTask struct {
	ID          wireID  `json:"id"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

type createBody struct {
	Title string `json:"title"`
}

type updateBody struct {
	Status      domain.Status `json:"status"`
	Description string        `json:"description"`
	StartDate   *string       `json:"start_date"`
	EndDate     *string       `json:"end_date"`
}

// toDomain validates one payload. Missing ids, unknown statuses and malformed
// dates are rejected; the title is kept as the server sent it.
func (w wireTask) toDomain() (domain.Task, error) {
	id := domain.TaskID(strings.TrimSpace(string(w.ID)))
	if id == "" {
		return domain.Task{}, fmt.Errorf("task: %w", domain.ErrInvalidID)
	}
	status := domain.Status(strings.TrimSpace(w.Status))
	if !status.Valid() {
		return domain.Task{}, fmt.Errorf("task %q: %w %q", w.ID, domain.ErrInvalidStatus, w.Status)
	}
	start, err := parseWireDate(w.StartDate)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %q start_date: %w", w.ID, err)
	}
	end, err := parseWireDate(w.EndDate)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %q end_date: %w", w.ID, err)
	}
	return domain.Task{
		ID:          id,
		Title:       w.Title,
		Status:      status,
		Description: derefString(w.Description),
		StartDate:   start,
		EndDate:     end,
	}, nil
}

func newUpdateBody(fields domain.UpdateFields) updateBody {
	return updateBody{
		Status:      fields.Status,
		Description: fields.Description,
		StartDate:   nullIfEmpty(domain.FormatDate(fields.StartDate)),
		EndDate:     nullIfEmpty(domain.FormatDate(fields.EndDate)),
	}
}

func parseWireDate(raw *string) (*domain.Date, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	// Some backends serialize full timestamps; only the calendar part matters.
	if len(value) > len(domain.DateLayout) && value[len(domain.DateLayout)] == 'T' {
		value = value[:len(domain.DateLayout)]
	}
	return domain.ParseDate(value)
}

func nullIfEmpty(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
