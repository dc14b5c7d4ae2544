package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lazharichir/marketmaker/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// backends runs the same contract against every store implementation
func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.Restore(ctx, "t1")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Persist(ctx, Snapshot{TableID: "t1", Table: json.RawMessage(`{"hand_number":1}`)}))
			require.NoError(t, s.Persist(ctx, Snapshot{TableID: "t1", Table: json.RawMessage(`{"hand_number":2}`)}))
			require.NoError(t, s.Persist(ctx, Snapshot{TableID: "t2", Table: json.RawMessage(`{}`)}))

			snap, ok, err := s.Restore(ctx, "t1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, int64(2), snap.Version)
			assert.JSONEq(t, `{"hand_number":2}`, string(snap.Table))

			require.NoError(t, s.Clear(ctx))
			for _, id := range []string{"t1", "t2"} {
				_, ok, err := s.Restore(ctx, id)
				require.NoError(t, err)
				assert.False(t, ok)
			}
		})
	}
}

func TestStoreRejectsEmptyTableID(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Persist(context.Background(), Snapshot{Table: json.RawMessage(`{}`)})
			assert.ErrorIs(t, err, ErrInvalidTableID)
		})
	}
}

func TestFileStoreRejectsPathTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"..", "../x", `a\b`} {
		err := s.Persist(context.Background(), Snapshot{TableID: id, Table: json.RawMessage(`{}`)})
		assert.ErrorIs(t, err, ErrInvalidTableID, id)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Persist(context.Background(), Snapshot{TableID: "t1", Table: json.RawMessage(`{}`)}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t1.json", entries[0].Name())
}

func TestMemoryStoreCopiesPayload(t *testing.T) {
	s := NewMemoryStore()
	payload := json.RawMessage(`{"a":1}`)
	require.NoError(t, s.Persist(context.Background(), Snapshot{TableID: "t1", Table: payload}))
	payload[2] = 'b'

	snap, _, err := s.Restore(context.Background(), "t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(snap.Table))
}

func TestLoaderRestoresTable(t *testing.T) {
	s := NewMemoryStore()
	table := domain.NewTable("t1")
	_, err := table.Join("", "Alice", 100)
	require.NoError(t, err)
	snap, err := TakeSnapshot(table, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Persist(context.Background(), snap))

	load := Loader(s, discardLogger())

	restored, ok := load("t1")
	require.True(t, ok)
	assert.Len(t, restored.Players, 1)

	_, ok = load("missing")
	assert.False(t, ok)
}

func TestLoaderIgnoresCorruptSnapshot(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Persist(context.Background(), Snapshot{TableID: "t1", Table: json.RawMessage(`{"tid":1}`)}))

	_, ok := Loader(s, discardLogger())("t1")
	assert.False(t, ok)
}

func TestAsyncWriterDrainsOnShutdown(t *testing.T) {
	s := NewMemoryStore()
	w := NewAsyncWriter(s, discardLogger(), 8)
	for i := 0; i < 3; i++ {
		require.True(t, w.Enqueue(Snapshot{TableID: "t1", Table: json.RawMessage(`{}`)}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))

	snap, ok, err := s.Restore(context.Background(), "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), snap.Version)
}

func TestAsyncWriterDropsWhenFull(t *testing.T) {
	w := NewAsyncWriter(NewMemoryStore(), discardLogger(), 1)

	assert.True(t, w.Enqueue(Snapshot{TableID: "t1"}))
	assert.False(t, w.Enqueue(Snapshot{TableID: "t1"}))
}

type failingStore struct{ MemoryStore }

func (*failingStore) Persist(context.Context, Snapshot) error { return os.ErrPermission }

func TestAsyncWriterSurvivesFailures(t *testing.T) {
	w := NewAsyncWriter(&failingStore{}, discardLogger(), 4)
	w.Enqueue(Snapshot{TableID: "t1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Run(ctx))
}
