package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/evanschultz/todoboard/internal/domain"
)

func TestCreateTaskRejectsBlankTitle(t *testing.T) {
	store := newFakeStore()
	session := loadedSession(t, store)

	if _, err := session.CreateTask(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if store.createCalls != 0 {
		t.Fatalf("expected zero create calls, got %d", store.createCalls)
	}
}

func TestCreateTaskTrimsAndRefreshes(t *testing.T) {
	store := newFakeStore()
	session := loadedSession(t, store)

	created, err := session.CreateTask(context.Background(), "  Buy milk ")
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.Title != "Buy milk" {
		t.Fatalf("unexpected title %q", created.Title)
	}
	todo := session.Column(domain.StatusTodo)
	if len(todo) != 1 || todo[0].Title != "Buy milk" {
		t.Fatalf("expected refreshed todo column, got %#v", todo)
	}
}

func TestDeleteTaskRefreshes(t *testing.T) {
	store := newFakeStore(domain.Task{ID: "1", Title: "A", Status: domain.StatusTodo})
	session := loadedSession(t, store)

	if err := session.DeleteTask(context.Background(), "1"); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if session.Board().Len() != 0 {
		t.Fatal("expected empty board after delete")
	}

	err := session.DeleteTask(context.Background(), "1")
	failure, ok := AsNetworkFailure(err)
	if !ok || failure.StatusCode != 404 {
		t.Fatalf("expected 404 NetworkFailure, got %v", err)
	}
}

func TestMoveTaskRequiresCachedTask(t *testing.T) {
	store := newFakeStore()
	session := loadedSession(t, store)
	if _, err := session.MoveTask(context.Background(), "9", domain.StatusCompleted); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestLoadFailureRaisesIndicator(t *testing.T) {
	store := newFakeStore()
	store.listErr = netFail(OpList, 0)
	session := NewSession(store, SessionConfig{})
	if err := session.Load(context.Background()); err == nil {
		t.Fatal("expected load failure")
	}
	if session.Err() == nil || session.Loaded() {
		t.Fatalf("expected error indicator and unloaded cache, err=%v loaded=%v", session.Err(), session.Loaded())
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: &NetworkFailure{Op: OpUpdate, Err: context.DeadlineExceeded}, want: "timed out"},
		{err: &NetworkFailure{Op: OpGet, StatusCode: 404}, want: "not found"},
		{err: &NetworkFailure{Op: OpList, StatusCode: 503}, want: "HTTP 503"},
		{err: &NetworkFailure{Op: OpCreate, StatusCode: 400}, want: "rejected"},
		{err: &NetworkFailure{Op: OpList, Err: errors.New("connection refused")}, want: "cannot reach"},
		{err: domain.ErrInvalidTitle, want: "title is required"},
		{err: domain.ErrInvalidDate, want: "YYYY-MM-DD"},
		{err: ErrNoActiveDrag, want: "dragged"},
		{err: errors.New("plain"), want: "plain"},
	}
	for _, tc := range cases {
		got := UserMessage(tc.err)
		if tc.want == "" {
			if got != "" {
				t.Fatalf("UserMessage(nil) = %q", got)
			}
			continue
		}
		if !strings.Contains(got, tc.want) {
			t.Fatalf("UserMessage(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
}

func TestNetworkFailureUnwrap(t *testing.T) {
	err := error(&NetworkFailure{Op: OpList, Err: context.DeadlineExceeded})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("expected deadline to unwrap")
	}
	if !strings.Contains(err.Error(), "list task") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
