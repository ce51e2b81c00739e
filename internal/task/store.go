package task

import "context"

// Store is the persistence contract for the tasks table. Implementations
// run each method as a single statement so it either fully applies or not
// at all.
type Store interface {
	// Insert creates a row with completed=false and both timestamps set to now.
	Insert(ctx context.Context, text string) (Task, error)
	// SelectAll returns every row, newest created_at first, ties broken by
	// id descending. An empty table yields an empty slice.
	SelectAll(ctx context.Context) ([]Task, error)
	// UpdateByID sets completed and refreshes updated_at. It returns
	// ErrNotFound when no row has the id.
	UpdateByID(ctx context.Context, id int64, completed bool) (Task, error)
	// DeleteByID removes the row if present. A missing row is not an error.
	DeleteByID(ctx context.Context, id int64) error
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	Close()
}
