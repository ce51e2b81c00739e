// Package task holds the Task entity, input validation, the storage contract
// and the service operations that tie them together.
package task

import (
	"fmt"
	"time"
)

// Task is a single to-do item.
type Task struct {
	ID        int64     `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Summary counts a task list by completion state.
type Summary struct {
	Total     int
	Completed int
	Remaining int
}

// Summarize counts tasks.
func Summarize(tasks []Task) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Remaining = s.Total - s.Completed
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("Total: %d | Completed: %d | Remaining: %d", s.Total, s.Completed, s.Remaining)
}
