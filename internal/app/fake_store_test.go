package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/evanschultz/todoboard/internal/domain"
)

type updateCall struct {
	ID     domain.TaskID
	Fields domain.UpdateFields
}

// fakeStore is an in-memory TaskStore with full-replace update semantics.
type fakeStore struct {
	mu     sync.Mutex
	tasks  []domain.Task
	nextID int

	listCalls   int
	getCalls    int
	createCalls int
	updates     []updateCall
	deletes     []domain.TaskID

	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error

	// getHook runs before Get returns, outside the lock.
	getHook func()
}

func newFakeStore(tasks ...domain.Task) *fakeStore {
	return &fakeStore{tasks: tasks, nextID: len(tasks) + 1}
}

func netFail(op string, status int) error {
	return &NetworkFailure{Op: op, StatusCode: status, Err: errors.New("boom")}
}

func (f *fakeStore) List(context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return cloneTasks(f.tasks), nil
}

func (f *fakeStore) Get(_ context.Context, id domain.TaskID) (domain.Task, error) {
	f.mu.Lock()
	f.getCalls++
	err := f.getErr
	var (
		found domain.Task
		ok    bool
	)
	for _, task := range f.tasks {
		if task.ID == id {
			found, ok = task.Clone(), true
		}
	}
	hook := f.getHook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return domain.Task{}, err
	}
	if !ok {
		return domain.Task{}, netFail(OpGet, 404)
	}
	return found, nil
}

func (f *fakeStore) Create(_ context.Context, title string) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return domain.Task{}, f.createErr
	}
	task := domain.Task{ID: domain.TaskID(strconv.Itoa(f.nextID)), Title: title, Status: domain.StatusTodo}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeStore) Update(_ context.Context, id domain.TaskID, fields domain.UpdateFields) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{ID: id, Fields: fields})
	if f.updateErr != nil {
		return domain.Task{}, f.updateErr
	}
	for i, task := range f.tasks {
		if task.ID == id {
			f.tasks[i] = task.Apply(fields)
			return f.tasks[i].Clone(), nil
		}
	}
	return domain.Task{}, netFail(OpUpdate, 404)
}

func (f *fakeStore) Delete(_ context.Context, id domain.TaskID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, task := range f.tasks {
		if task.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return netFail(OpDelete, 404)
}

func (f *fakeStore) task(id domain.TaskID) domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, task := range f.tasks {
		if task.ID == id {
			return task.Clone()
		}
	}
	panic(fmt.Sprintf("task %s not in fake store", id))
}

func mustDate(raw string) *domain.Date {
	d, err := domain.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func taskIDs(tasks []domain.Task) []domain.TaskID {
	out := make([]domain.TaskID, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}
