// Package store persists table snapshots so a table can be rebuilt after a
// restart.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/lazharichir/marketmaker/domain"
)

var ErrInvalidTableID = errors.New("invalid table id")

// Snapshot is the serialised state of one table. Version is assigned by the
// store and grows by one on every persist of the same table.
type Snapshot struct {
	TableID string          `json:"tid"`
	Version int64           `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Table   json.RawMessage `json:"table"`
}

// Store is implemented by every snapshot backend
type Store interface {
	Persist(ctx context.Context, snap Snapshot) error
	Restore(ctx context.Context, tableID string) (Snapshot, bool, error)
	Clear(ctx context.Context) error
}

// TakeSnapshot serialises a table. The caller must hold the table lock.
func TakeSnapshot(t *domain.Table, now time.Time) (Snapshot, error) {
	data, err := t.Snapshot()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{TableID: t.ID, SavedAt: now.UTC(), Table: data}, nil
}

// Loader adapts a Store to the lobby's table loader. Restore failures are
// logged and treated as a missing snapshot.
func Loader(s Store, logger *slog.Logger, opts ...domain.TableOption) domain.TableLoader {
	return func(tableID string) (*domain.Table, bool) {
		snap, ok, err := s.Restore(context.Background(), tableID)
		if err != nil {
			logger.Error("restore snapshot", "table", tableID, "error", err)
			return nil, false
		}
		if !ok {
			return nil, false
		}
		t, err := domain.RestoreTable(snap.Table, opts...)
		if err != nil {
			logger.Error("decode snapshot", "table", tableID, "version", snap.Version, "error", err)
			return nil, false
		}
		logger.Info("restored table", "table", tableID, "version", snap.Version, "hand", t.HandNumber)
		return t, true
	}
}
