package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickingClock struct {
	t time.Time
}

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newClock() *tickingClock {
	return &tickingClock{t: time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)}
}

// storeFactories runs every behavioral test against both implementations.
func storeFactories(t *testing.T) map[string]func(now func() time.Time) Store {
	return map[string]func(now func() time.Time) Store{
		"sqlite": func(now func() time.Time) Store {
			s, err := NewSQLiteStore(":memory:", WithClock(now))
			require.NoError(t, err)
			return s
		},
		"memory": func(now func() time.Time) Store {
			return NewMemoryStore(WithClock(now))
		},
	}
}

func TestNewSQLiteStore(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{name: "creates database successfully", dbPath: filepath.Join(t.TempDir(), "history.db")},
		{name: "handles in-memory database", dbPath: ":memory:"},
		{name: "creates parent directories if needed", dbPath: filepath.Join(t.TempDir(), "nested", "dir", "history.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewSQLiteStore(tt.dbPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()

			version, err := store.GetLatestVersion()
			require.NoError(t, err)
			assert.Equal(t, len(migrations), version)
			assert.Equal(t, tt.dbPath, store.Path())
		})
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	sess, err := store.CreateSession(ctx, "find my notes")
	require.NoError(t, err)
	require.NoError(t, store.AppendMessages(ctx, sess.ID, []Message{{Role: RoleUser, Content: "where is notes.txt"}}))
	require.NoError(t, store.Close())

	// migrations are idempotent and data survives
	store, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	msgs, err := store.Messages(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "where is notes.txt", msgs[0].Content)
}

func TestStoreRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := newClock()
			store := factory(clock.Now)
			defer store.Close()

			sess, err := store.CreateSession(ctx, "large files")
			require.NoError(t, err)
			assert.Len(t, sess.ID, 26, "session IDs are ULIDs")

			msgs := []Message{
				{Role: RoleUser, Content: "find files over 1GB"},
				{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_1", Name: "find_large_files", Arguments: `{"min_size_mb":1024}`}}},
				{Role: RoleTool, ToolCallID: "call_1", Name: "find_large_files", Content: `{"success":true}`},
				{Role: RoleAssistant, Content: "Found 2 files."},
			}
			require.NoError(t, store.AppendMessages(ctx, sess.ID, msgs))

			got, err := store.Messages(ctx, sess.ID)
			require.NoError(t, err)
			require.Len(t, got, 4)

			for i, m := range got {
				assert.NotEmpty(t, m.ID)
				assert.Equal(t, sess.ID, m.SessionID)
				assert.Equal(t, msgs[i].Role, m.Role)
				assert.Equal(t, msgs[i].Content, m.Content)
				assert.False(t, m.CreatedAt.IsZero())
			}
			assert.Equal(t, msgs[1].ToolCalls, got[1].ToolCalls)
			assert.Equal(t, "call_1", got[2].ToolCallID)
			assert.Equal(t, "find_large_files", got[2].Name)

			loaded, err := store.GetSession(ctx, sess.ID)
			require.NoError(t, err)
			assert.Equal(t, "large files", loaded.Title)
			assert.Equal(t, 4, loaded.MessageCount)
			assert.True(t, loaded.UpdatedAt.After(loaded.CreatedAt))
		})
	}
}

func TestStoreListOrder(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(newClock().Now)
			defer store.Close()

			first, err := store.CreateSession(ctx, "first")
			require.NoError(t, err)
			second, err := store.CreateSession(ctx, "second")
			require.NoError(t, err)

			sessions, err := store.ListSessions(ctx)
			require.NoError(t, err)
			require.Len(t, sessions, 2)
			assert.Equal(t, second.ID, sessions[0].ID)

			// appending bumps first to the top
			require.NoError(t, store.AppendMessages(ctx, first.ID, []Message{{Role: RoleUser, Content: "hi"}}))
			sessions, err = store.ListSessions(ctx)
			require.NoError(t, err)
			assert.Equal(t, first.ID, sessions[0].ID)
			assert.Equal(t, 1, sessions[0].MessageCount)
			assert.Equal(t, 0, sessions[1].MessageCount)
		})
	}
}

func TestStoreSessionNotFound(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(time.Now)
			defer store.Close()

			_, err := store.GetSession(ctx, "missing")
			assert.True(t, errors.Is(err, ErrSessionNotFound))

			_, err = store.Messages(ctx, "missing")
			assert.True(t, errors.Is(err, ErrSessionNotFound))

			err = store.AppendMessages(ctx, "missing", []Message{{Role: RoleUser, Content: "x"}})
			assert.True(t, errors.Is(err, ErrSessionNotFound))

			err = store.DeleteSession(ctx, "missing")
			assert.True(t, errors.Is(err, ErrSessionNotFound))
		})
	}
}

func TestStoreDeleteSession(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(time.Now)
			defer store.Close()

			keep, err := store.CreateSession(ctx, "keep")
			require.NoError(t, err)
			drop, err := store.CreateSession(ctx, "drop")
			require.NoError(t, err)
			require.NoError(t, store.AppendMessages(ctx, drop.ID, []Message{{Role: RoleUser, Content: "bye"}}))

			require.NoError(t, store.DeleteSession(ctx, drop.ID))

			_, err = store.GetSession(ctx, drop.ID)
			assert.ErrorIs(t, err, ErrSessionNotFound)
			sessions, err := store.ListSessions(ctx)
			require.NoError(t, err)
			require.Len(t, sessions, 1)
			assert.Equal(t, keep.ID, sessions[0].ID)
		})
	}
}

func TestTitleFromText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  find duplicates in Downloads \n and delete them", "find duplicates in Downloads"},
		{"", "Untitled chat"},
		{"\n\n", "Untitled chat"},
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TitleFromText(tt.in), "TitleFromText(%q)", tt.in)
	}
}
