// Package sqlite provides a SQLite-backed snapshot store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lazharichir/marketmaker/store"
	"github.com/lazharichir/marketmaker/store/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists table snapshots in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ store.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite snapshot store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Persist upserts the snapshot and bumps its version.
func (s *Store) Persist(ctx context.Context, snap store.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	tableID := strings.TrimSpace(snap.TableID)
	if tableID == "" {
		return store.ErrInvalidTableID
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO table_snapshots (table_id, version, saved_at, state)
		 VALUES (?, 1, ?, ?)
		 ON CONFLICT(table_id) DO UPDATE SET
		   version = table_snapshots.version + 1,
		   saved_at = excluded.saved_at,
		   state = excluded.state`,
		tableID,
		toMillis(savedAt),
		string(snap.Table),
	)
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Restore returns the latest snapshot of one table.
func (s *Store) Restore(ctx context.Context, tableID string) (store.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return store.Snapshot{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return store.Snapshot{}, false, fmt.Errorf("storage is not configured")
	}

	var (
		snap    store.Snapshot
		savedAt int64
		state   string
	)
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT table_id, version, saved_at, state FROM table_snapshots WHERE table_id = ?`,
		tableID,
	).Scan(&snap.TableID, &snap.Version, &savedAt, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, false, nil
	}
	if err != nil {
		return store.Snapshot{}, false, fmt.Errorf("restore snapshot: %w", err)
	}
	snap.SavedAt = fromMillis(savedAt)
	snap.Table = []byte(state)
	return snap, true, nil
}

// Clear deletes every stored snapshot.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM table_snapshots`); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}
