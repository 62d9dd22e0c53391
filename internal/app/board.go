package app

import "github.com/evanschultz/todoboard/internal/domain"

// Column is one status bucket of the board.
type Column struct {
	Status domain.Status
	Tasks  []domain.Task
}

// Board holds the three status columns in display order.
type Board struct {
	Columns []Column
}

// ColumnFor returns, in input order, every task whose status equals status.
func ColumnFor(tasks []domain.Task, status domain.Status) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

// Project splits tasks into the board's columns.
func Project(tasks []domain.Task) Board {
	statuses := domain.Statuses()
	board := Board{Columns: make([]Column, 0, len(statuses))}
	for _, status := range statuses {
		board.Columns = append(board.Columns, Column{
			Status: status,
			Tasks:  ColumnFor(tasks, status),
		})
	}
	return board
}

// Column returns the column for status, or an empty one when unknown.
func (b Board) Column(status domain.Status) Column {
	for _, column := range b.Columns {
		if column.Status == status {
			return column
		}
	}
	return Column{Status: status}
}

// Len returns the number of tasks across all columns.
func (b Board) Len() int {
	total := 0
	for _, column := range b.Columns {
		total += len(column.Tasks)
	}
	return total
}
