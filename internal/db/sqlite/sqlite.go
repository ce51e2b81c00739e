// Package sqlite implements the task store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tasklist/internal/task"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so that lexical order of the stored text is
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL CHECK (trim(text) <> ''),
    completed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS tasks_created_at_idx ON tasks (created_at DESC, id DESC);`

const taskColumns = `id, text, completed, created_at, updated_at`

// Store is a task.Store backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ task.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	// One connection: SQLite serializes writers anyway and an in-memory
	// database only lives as long as its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error configuring sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Insert creates a new incomplete task.
func (s *Store) Insert(ctx context.Context, text string) (task.Task, error) {
	now := s.timestamp()
	query := `
		INSERT INTO tasks (text, completed, created_at, updated_at)
		VALUES (?, 0, ?, ?)
		RETURNING ` + taskColumns

	t, err := scanTask(s.db.QueryRowContext(ctx, query, text, now, now))
	if err != nil {
		return task.Task{}, fmt.Errorf("error inserting task: %w", err)
	}
	return t, nil
}

// SelectAll returns all tasks, newest first.
func (s *Store) SelectAll(ctx context.Context) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error selecting tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateByID sets the completion flag of the task with id.
func (s *Store) UpdateByID(ctx context.Context, id int64, completed bool) (task.Task, error) {
	query := `
		UPDATE tasks
		SET completed = ?, updated_at = max(?, created_at)
		WHERE id = ?
		RETURNING ` + taskColumns

	t, err := scanTask(s.db.QueryRowContext(ctx, query, completed, s.timestamp(), id))
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("error updating task %d: %w", id, err)
	}
	return t, nil
}

// DeleteByID removes the task with id, if any.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting task %d: %w", id, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (task.Task, error) {
	var (
		t                    task.Task
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Text, &t.Completed, &createdAt, &updatedAt); err != nil {
		return task.Task{}, err
	}

	var err error
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return task.Task{}, fmt.Errorf("error parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return task.Task{}, fmt.Errorf("error parsing updated_at: %w", err)
	}
	return t, nil
}
