// Package db implements the task store on PostgreSQL.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tasklist/internal/config"
	"tasklist/internal/task"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, text, completed, created_at, updated_at`

type DB struct {
	*pgxpool.Pool
}

var _ task.Store = (*DB)(nil)

func New(ctx context.Context, dbCfg config.Database) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dbCfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Configure connection pool and statement cache
	cfg.MaxConns = dbCfg.MaxConns
	cfg.MinConns = dbCfg.MinConns
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	return &DB{pool}, nil
}

// Insert creates a new task. completed and both timestamps come from the
// column defaults.
func (db *DB) Insert(ctx context.Context, text string) (task.Task, error) {
	query := `
		INSERT INTO tasks (text)
		VALUES ($1)
		RETURNING ` + taskColumns

	rows, _ := db.Query(ctx, query, text)
	t, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[task.Task])
	if err != nil {
		return task.Task{}, fmt.Errorf("error inserting task: %w", err)
	}
	return t, nil
}

// SelectAll retrieves every task, newest first
func (db *DB) SelectAll(ctx context.Context) ([]task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		ORDER BY created_at DESC, id DESC`

	rows, _ := db.Query(ctx, query)
	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[task.Task])
	if err != nil {
		return nil, fmt.Errorf("error selecting tasks: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// UpdateByID sets the completion flag and refreshes updated_at
func (db *DB) UpdateByID(ctx context.Context, id int64, completed bool) (task.Task, error) {
	query := `
		UPDATE tasks
		SET completed = $1, updated_at = GREATEST(now(), created_at)
		WHERE id = $2
		RETURNING ` + taskColumns

	rows, _ := db.Query(ctx, query, completed, id)
	t, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[task.Task])
	if errors.Is(err, pgx.ErrNoRows) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("error updating task %d: %w", id, err)
	}
	return t, nil
}

// DeleteByID removes a task if it exists
func (db *DB) DeleteByID(ctx context.Context, id int64) error {
	query := `
		DELETE FROM tasks
		WHERE id = $1`

	if _, err := db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("error deleting task %d: %w", id, err)
	}
	return nil
}
