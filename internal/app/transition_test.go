package app

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/evanschultz/todoboard/internal/domain"
)

func loadedSession(t *testing.T, store *fakeStore) *Session {
	t.Helper()
	session := NewSession(store, SessionConfig{})
	if err := session.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return session
}

func TestDropOnSameColumnIssuesNoUpdate(t *testing.T) {
	store := newFakeStore(domain.Task{ID: "1", Title: "A", Status: domain.StatusTodo})
	session := loadedSession(t, store)

	if _, err := session.BeginDrag("1"); err != nil {
		t.Fatalf("BeginDrag() error = %v", err)
	}
	result, err := session.Drop(context.Background(), domain.StatusTodo)
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if result.Moved {
		t.Fatal("expected no move for same-column drop")
	}
	if len(store.updates) != 0 || store.getCalls != 0 {
		t.Fatalf("expected zero store calls, got updates=%d gets=%d", len(store.updates), store.getCalls)
	}
	if _, ok := session.ActiveDrag(); ok {
		t.Fatal("expected controller back to idle")
	}
}

func TestDropScenarioCarriesDescriptionAndKeepsOrder(t *testing.T) {
	store := newFakeStore(
		domain.Task{ID: "1", Title: "A", Status: domain.StatusTodo, Description: "A details", EndDate: mustDate("2026-05-01")},
		domain.Task{ID: "2", Title: "B", Status: domain.StatusCompleted},
	)
	session := loadedSession(t, store)

	if _, err := session.BeginDrag("1"); err != nil {
		t.Fatalf("BeginDrag() error = %v", err)
	}
	result, err := session.Drop(context.Background(), domain.StatusCompleted)
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if !result.Moved || result.Payload.Status != domain.StatusTodo {
		t.Fatalf("unexpected result %#v", result)
	}
	if len(store.updates) != 1 {
		t.Fatalf("expected exactly one update, got %d", len(store.updates))
	}
	call := store.updates[0]
	if call.ID != "1" || call.Fields.Status != domain.StatusCompleted {
		t.Fatalf("unexpected update %#v", call)
	}
	if call.Fields.Description != "A details" {
		t.Fatalf("expected pre-drop description carried forward, got %q", call.Fields.Description)
	}
	if domain.FormatDate(call.Fields.EndDate) != "2026-05-01" {
		t.Fatalf("expected end date carried forward, got %v", call.Fields.EndDate)
	}

	if got := taskIDs(session.Column(domain.StatusCompleted)); !slices.Equal(got, []domain.TaskID{"1", "2"}) {
		t.Fatalf("expected completed column [1 2], got %v", got)
	}
	if got := session.Column(domain.StatusTodo); len(got) != 0 {
		t.Fatalf("expected empty todo column, got %v", taskIDs(got))
	}
}

func TestDropReadsFreshFieldsBeforeWriting(t *testing.T) {
	store := newFakeStore(domain.Task{ID: "1", Title: "A", Status: domain.StatusTodo, Description: "stale"})
	session := loadedSession(t, store)

	store.tasks[0].Description = "edited elsewhere"
	if _, err := session.MoveTask(context.Background(), "1", domain.StatusInProgress); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if got := store.updates[0].Fields.Description; got != "edited elsewhere" {
		t.Fatalf("expected persisted description, got %q", got)
	}
}

func TestDropFallsBackToCacheWhenGetFails(t *testing.T) {
	store := newFakeStore(domain.Task{ID: "1", Title: "A", Status: domain.StatusTodo, Description: "cached"})
	session := loadedSession(t, store)

	store.getErr = netFail(OpGet, 0)
	if _, err := session.MoveTask(context.Background(), "1", domain.StatusCompleted); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if len(store.updates) != 1 || store.updates[0].Fields.Description != "cached" {
		t.Fatalf("expected update built from cache, got %#v", store.updates)
	}
}

func TestFailedDropLeavesStatusUnchanged(t *testing.T) {
	store := newFakeStore(domain.Task{ID: "1", Title: "A", Status: domain.StatusTodo})
	session := loadedSession(t, store)
	listCallsBefore := store.listCalls

	store.updateErr = netFail(OpUpdate, 500)
	_, err := session.MoveTask(context.Background(), "1", domain.StatusCompleted)
	if _, ok := AsNetworkFailure(err); !ok {
		t.Fatalf("expected NetworkFailure, got %v", err)
	}
	if store.listCalls != listCallsBefore+1 {
		t.Fatalf("expected refresh after failed update, list calls %d -> %d", listCallsBefore, store.listCalls)
	}
	cached, ok := session.Lookup("1")
	if !ok || cached.Status != domain.StatusTodo {
		t.Fatalf("expected cached status todo, got %#v", cached)
	}
}

func TestDropWithoutDragFails(t *testing.T) {
	store := newFakeStore()
	session := loadedSession(t, store)
	if _, err := session.Drop(context.Background(), domain.StatusTodo); !errors.Is(err, ErrNoActiveDrag) {
		t.Fatalf("expected ErrNoActiveDrag, got %v", err)
	}
}

func TestBeginReplacesPayloadAndCancelIsSilent(t *testing.T) {
	store := newFakeStore(
		domain.Task{ID: "1", Title: "A", Status: domain.StatusTodo},
		domain.Task{ID: "2", Title: "B", Status: domain.StatusInProgress},
	)
	list := NewTaskList(store)
	controller := NewDragController(store, list, nil)

	if err := controller.Begin("1", domain.StatusTodo); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := controller.Begin("2", domain.StatusInProgress); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	payload, ok := controller.Active()
	if !ok || payload.ID != "2" || payload.Status != domain.StatusInProgress {
		t.Fatalf("expected replaced payload, got %#v", payload)
	}
	if !controller.Cancel() {
		t.Fatal("expected Cancel() to report an active drag")
	}
	if controller.Cancel() {
		t.Fatal("expected second Cancel() to report idle")
	}
	if store.getCalls+len(store.updates)+store.listCalls != 0 {
		t.Fatal("expected no store calls")
	}
	if err := controller.Begin("3", "bogus"); err != domain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestDropInvalidTargetKeepsDragging(t *testing.T) {
	store := newFakeStore(domain.Task{ID: "1", Title: "A", Status: domain.StatusTodo})
	session := loadedSession(t, store)
	if _, err := session.BeginDrag("1"); err != nil {
		t.Fatalf("BeginDrag() error = %v", err)
	}
	if _, err := session.Drop(context.Background(), "later"); err != domain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, ok := session.ActiveDrag(); !ok {
		t.Fatal("expected drag to remain active")
	}
}
