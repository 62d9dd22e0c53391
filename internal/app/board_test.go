package app

import (
	"slices"
	"testing"

	"github.com/evanschultz/todoboard/internal/domain"
)

func TestColumnForPartitionsTasks(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo},
		{ID: "2", Title: "b", Status: domain.StatusCompleted},
		{ID: "3", Title: "c", Status: domain.StatusInProgress},
		{ID: "4", Title: "d", Status: domain.StatusTodo},
		{ID: "5", Title: "e", Status: domain.StatusCompleted},
	}

	seen := map[domain.TaskID]int{}
	for _, status := range domain.Statuses() {
		for _, task := range ColumnFor(tasks, status) {
			if task.Status != status {
				t.Fatalf("task %s in column %s has status %s", task.ID, status, task.Status)
			}
			seen[task.ID]++
		}
	}
	if len(seen) != len(tasks) {
		t.Fatalf("expected every task in some column, got %v", seen)
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("task %s appeared %d times", id, count)
		}
	}

	if got := taskIDs(ColumnFor(tasks, domain.StatusTodo)); !slices.Equal(got, []domain.TaskID{"1", "4"}) {
		t.Fatalf("expected todo column in input order, got %v", got)
	}
}

func TestProjectBuildsColumnsInDisplayOrder(t *testing.T) {
	board := Project([]domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusCompleted},
		{ID: "2", Title: "b", Status: domain.StatusTodo},
	})
	if len(board.Columns) != 3 {
		t.Fatalf("expected three columns, got %d", len(board.Columns))
	}
	want := []domain.Status{domain.StatusTodo, domain.StatusInProgress, domain.StatusCompleted}
	for i, column := range board.Columns {
		if column.Status != want[i] {
			t.Fatalf("column %d = %s, want %s", i, column.Status, want[i])
		}
	}
	if board.Len() != 2 {
		t.Fatalf("expected two tasks, got %d", board.Len())
	}
	if got := board.Column(domain.StatusInProgress); len(got.Tasks) != 0 {
		t.Fatalf("expected empty in_progress column, got %#v", got)
	}
	if got := board.Column("bogus"); got.Status != "bogus" || len(got.Tasks) != 0 {
		t.Fatalf("expected empty column for unknown status, got %#v", got)
	}
}
