package common

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/evanschultz/todoboard/internal/backend"
)

func strPtr(value string) *string {
	return &value
}

func TestStoreAdapterUpdateReplacesFields(t *testing.T) {
	adapter := NewStoreAdapter(backend.NewStore())
	ctx := context.Background()

	created, err := adapter.CreateTask(ctx, CreateTaskRequest{Title: "A"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	updated, err := adapter.UpdateTask(ctx, string(created.ID), UpdateTaskRequest{
		Status:      "in_progress",
		Description: strPtr("notes"),
		StartDate:   strPtr("2026-03-01"),
		EndDate:     strPtr(""),
	})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Status != "in_progress" || updated.Description == nil || *updated.Description != "notes" {
		t.Fatalf("unexpected task %#v", updated)
	}
	if updated.StartDate == nil || *updated.StartDate != "2026-03-01" || updated.EndDate != nil {
		t.Fatalf("unexpected dates %#v", updated)
	}

	cleared, err := adapter.UpdateTask(ctx, string(created.ID), UpdateTaskRequest{Status: "completed"})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if cleared.Description != nil || cleared.StartDate != nil {
		t.Fatalf("expected omitted fields cleared, got %#v", cleared)
	}
}

func TestStoreAdapterErrorMapping(t *testing.T) {
	adapter := NewStoreAdapter(backend.NewStore())
	ctx := context.Background()

	if _, err := adapter.GetTask(ctx, "404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := adapter.CreateTask(ctx, CreateTaskRequest{Title: " "}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	created, _ := adapter.CreateTask(ctx, CreateTaskRequest{Title: "A"})
	if _, err := adapter.UpdateTask(ctx, string(created.ID), UpdateTaskRequest{Status: "done-ish"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for status, got %v", err)
	}
	if _, err := adapter.UpdateTask(ctx, string(created.ID), UpdateTaskRequest{Status: "todo", EndDate: strPtr("tomorrow")}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for date, got %v", err)
	}
	if err := adapter.DeleteTask(ctx, " "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank id, got %v", err)
	}
	if _, err := adapter.ListTasks(ctx, ListTasksRequest{Status: "nope"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for filter, got %v", err)
	}
	var nilAdapter *StoreAdapter
	if _, err := nilAdapter.ListTasks(ctx, ListTasksRequest{}); err == nil {
		t.Fatal("expected error from unconfigured adapter")
	}
}

func TestStoreAdapterListFilter(t *testing.T) {
	adapter := NewStoreAdapter(backend.NewStore())
	ctx := context.Background()
	first, _ := adapter.CreateTask(ctx, CreateTaskRequest{Title: "A"})
	_, _ = adapter.CreateTask(ctx, CreateTaskRequest{Title: "B"})
	if _, err := adapter.UpdateTask(ctx, string(first.ID), UpdateTaskRequest{Status: "completed"}); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	done, err := adapter.ListTasks(ctx, ListTasksRequest{Status: "done"})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(done) != 1 || done[0].Title != "A" {
		t.Fatalf("unexpected filtered list %#v", done)
	}
}

func TestTaskIDMarshalsNumbersAsNumbers(t *testing.T) {
	cases := map[TaskID]string{"12": `12`, "abc": `"abc"`, "": `""`}
	for id, want := range cases {
		got, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(got) != want {
			t.Fatalf("Marshal(%q) = %s, want %s", id, got, want)
		}
	}
}
