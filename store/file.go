package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const snapshotExt = ".json"

// FileStore writes one JSON document per table into a directory. Writes go
// to a temporary file that is renamed into place.
type FileStore struct {
	dir   string
	mutex sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStore{dir: filepath.Clean(dir)}, nil
}

func (s *FileStore) path(tableID string) (string, error) {
	if tableID == "" || tableID == "." || tableID == ".." || strings.ContainsAny(tableID, `/\`) {
		return "", fmt.Errorf("%w %q", ErrInvalidTableID, tableID)
	}
	return filepath.Join(s.dir, tableID+snapshotExt), nil
}

func (s *FileStore) Persist(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(snap.TableID)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	prev, _, err := s.read(path)
	if err != nil {
		return err
	}
	snap.Version = prev.Version + 1

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, snap.TableID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Restore(ctx context.Context, tableID string) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	path, err := s.path(tableID)
	if err != nil {
		return Snapshot{}, false, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.read(path)
}

func (s *FileStore) read(path string) (Snapshot, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", filepath.Base(path), err)
	}
	return snap, true, nil
}

// Clear removes every snapshot in the directory
func (s *FileStore) Clear(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != snapshotExt {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove snapshot: %w", err)
		}
	}
	return nil
}
