package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/lazharichir/marketmaker/config"
	"github.com/lazharichir/marketmaker/domain"
	"github.com/lazharichir/marketmaker/store"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"memory", config.Config{Store: config.StoreMemory}},
		{"file", config.Config{Store: config.StoreFile, StorePath: filepath.Join(dir, "snapshots")}},
		{"sqlite", config.Config{Store: config.StoreSQLite, StorePath: filepath.Join(dir, "mm.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, closeStore, err := openStore(tt.cfg)
			require.NoError(t, err)
			defer closeStore()

			ctx := context.Background()
			require.NoError(t, s.Persist(ctx, store.Snapshot{TableID: "t1", Table: []byte(`{"tid":"t1"}`)}))
			_, ok, err := s.Restore(ctx, "t1")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestPtermLevel(t *testing.T) {
	assert.Equal(t, pterm.LogLevelDebug, ptermLevel(slog.LevelDebug))
	assert.Equal(t, pterm.LogLevelInfo, ptermLevel(slog.LevelInfo))
	assert.Equal(t, pterm.LogLevelWarn, ptermLevel(slog.LevelWarn))
	assert.Equal(t, pterm.LogLevelError, ptermLevel(slog.LevelError))
}

func TestFlushTables(t *testing.T) {
	lobby := domain.NewLobby()
	lobby.GetOrCreateTable("b")
	lobby.GetOrCreateTable("a")
	snapshots := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	flushTables(context.Background(), lobby, snapshots, logger)

	for _, id := range []string{"a", "b"} {
		snap, ok, err := snapshots.Restore(context.Background(), id)
		require.NoError(t, err)
		require.True(t, ok, "table %s not flushed", id)
		restored, err := domain.RestoreTable(snap.Table)
		require.NoError(t, err)
		assert.Equal(t, id, restored.ID)
	}
}
