package task

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore is an in-memory Store with injectable failures.
type mockStore struct {
	tasks  map[int64]*Task
	nextID int64
	calls  int

	insertErr    error
	selectErr    error
	updateErr    error
	deleteErr    error
	returnNilAll bool
}

var _ Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{tasks: make(map[int64]*Task)}
}

func (m *mockStore) Insert(_ context.Context, text string) (Task, error) {
	m.calls++
	if m.insertErr != nil {
		return Task{}, m.insertErr
	}
	m.nextID++
	now := time.Now()
	t := &Task{ID: m.nextID, Text: text, CreatedAt: now, UpdatedAt: now}
	m.tasks[t.ID] = t
	return *t, nil
}

func (m *mockStore) SelectAll(_ context.Context) ([]Task, error) {
	m.calls++
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	if m.returnNilAll {
		return nil, nil
	}
	tasks := make([]Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID > tasks[j].ID })
	return tasks, nil
}

func (m *mockStore) UpdateByID(_ context.Context, id int64, completed bool) (Task, error) {
	m.calls++
	if m.updateErr != nil {
		return Task{}, m.updateErr
	}
	t, ok := m.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	t.Completed = completed
	t.UpdatedAt = time.Now()
	return *t, nil
}

func (m *mockStore) DeleteByID(_ context.Context, id int64) error {
	m.calls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockStore) Ping(context.Context) error { return m.selectErr }
func (m *mockStore) Close()                     {}

func TestService_Create(t *testing.T) {
	t.Run("success trims text", func(t *testing.T) {
		store := newMockStore()
		svc := NewService(store)

		got, err := svc.Create(context.Background(), CreateInput{Text: "  water plants  "})
		require.NoError(t, err)
		assert.Equal(t, "water plants", got.Text)
		assert.False(t, got.Completed)
		assert.NotZero(t, got.ID)
	})

	t.Run("validation failure never reaches the store", func(t *testing.T) {
		store := newMockStore()
		svc := NewService(store)

		_, err := svc.Create(context.Background(), CreateInput{Text: "   "})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Zero(t, store.calls)
	})

	t.Run("store failure is infrastructure", func(t *testing.T) {
		store := newMockStore()
		store.insertErr = errors.New("disk full")
		svc := NewService(store)

		_, err := svc.Create(context.Background(), CreateInput{Text: "a"})
		require.Error(t, err)
		assert.True(t, IsInfrastructure(err))
		assert.ErrorIs(t, err, store.insertErr)
	})
}

func TestService_List(t *testing.T) {
	t.Run("empty store yields empty non-nil slice", func(t *testing.T) {
		store := newMockStore()
		store.returnNilAll = true
		svc := NewService(store)

		got, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("store order is returned unmodified", func(t *testing.T) {
		store := newMockStore()
		svc := NewService(store)
		for _, text := range []string{"a", "b", "c"} {
			_, err := svc.Create(context.Background(), CreateInput{Text: text})
			require.NoError(t, err)
		}

		got, err := svc.List(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].Text, got[1].Text, got[2].Text})
	})

	t.Run("store failure is infrastructure", func(t *testing.T) {
		store := newMockStore()
		store.selectErr = errors.New("connection reset")
		svc := NewService(store)

		_, err := svc.List(context.Background())
		require.Error(t, err)
		assert.True(t, IsInfrastructure(err))
	})
}

func TestService_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := newMockStore()
		svc := NewService(store)
		created, err := svc.Create(context.Background(), CreateInput{Text: "a"})
		require.NoError(t, err)

		got, err := svc.Update(context.Background(), UpdateInput{ID: created.ID, Completed: true})
		require.NoError(t, err)
		assert.True(t, got.Completed)
		assert.Equal(t, created.Text, got.Text)
	})

	t.Run("missing id is not found with the id attached", func(t *testing.T) {
		svc := NewService(newMockStore())

		_, err := svc.Update(context.Background(), UpdateInput{ID: 999, Completed: true})
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "not found")

		var taskErr *Error
		require.ErrorAs(t, err, &taskErr)
		assert.Equal(t, int64(999), taskErr.ID)
	})

	t.Run("store failure is infrastructure", func(t *testing.T) {
		store := newMockStore()
		store.updateErr = errors.New("timeout")
		svc := NewService(store)

		_, err := svc.Update(context.Background(), UpdateInput{ID: 1, Completed: true})
		require.Error(t, err)
		assert.True(t, IsInfrastructure(err))
		assert.False(t, IsNotFound(err))
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("missing id succeeds", func(t *testing.T) {
		store := newMockStore()
		svc := NewService(store)

		require.NoError(t, svc.Delete(context.Background(), DeleteInput{ID: 42}))
		require.NoError(t, svc.Delete(context.Background(), DeleteInput{ID: 42}))
		assert.Equal(t, 2, store.calls, "delete always reaches the store")
	})

	t.Run("store failure is infrastructure", func(t *testing.T) {
		store := newMockStore()
		store.deleteErr = errors.New("read-only")
		svc := NewService(store)

		err := svc.Delete(context.Background(), DeleteInput{ID: 1})
		require.Error(t, err)
		assert.True(t, IsInfrastructure(err))
	})
}

func TestService_Ping(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	require.NoError(t, svc.Ping(context.Background()))

	store.selectErr = errors.New("down")
	err := svc.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, IsInfrastructure(err))
}
