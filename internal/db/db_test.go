package db

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"tasklist/internal/task"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// the tasks table. Tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping test: TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	sqlDB, err := sql.Open("postgres", url)
	require.NoError(t, err)
	defer sqlDB.Close()
	if err := sqlDB.PingContext(ctx); err != nil {
		t.Skipf("Skipping test: database ping failed: %v", err)
	}
	_, err = Migrate(ctx, sqlDB)
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "DELETE FROM tasks")
	require.NoError(t, err)

	return &DB{pool}
}

func TestDB_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.Insert(ctx, "Test task")
	require.NoError(t, err)
	assert.Equal(t, "Test task", created.Text)
	assert.False(t, created.Completed)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	updated, err := db.UpdateByID(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = db.UpdateByID(ctx, created.ID+1000, true)
	assert.ErrorIs(t, err, task.ErrNotFound)

	require.NoError(t, db.DeleteByID(ctx, created.ID))
	require.NoError(t, db.DeleteByID(ctx, created.ID))

	tasks, err := db.SelectAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestDB_SelectAllOrdering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, text := range []string{"A", "B", "C"} {
		_, err := db.Insert(ctx, text)
		require.NoError(t, err)
	}

	tasks, err := db.SelectAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "C", tasks[0].Text)
	assert.Equal(t, "B", tasks[1].Text)
	assert.Equal(t, "A", tasks[2].Text)
}

func TestDB_RejectsBlankText(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Insert(context.Background(), "   ")
	assert.Error(t, err)
}

func TestMigrate_IsRepeatable(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping test: TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	sqlDB, err := sql.Open("postgres", url)
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = Migrate(ctx, sqlDB)
	require.NoError(t, err)

	applied, err := Migrate(ctx, sqlDB)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrations_Embedded(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, "001_create_tasks", migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS tasks")
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}
