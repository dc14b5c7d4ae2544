package store

import (
	"context"
	"log/slog"
)

// DefaultQueueSize bounds the number of snapshots waiting to be written
const DefaultQueueSize = 1024

// AsyncWriter persists snapshots on a single background goroutine so callers
// never wait on storage. Failures are logged and dropped.
type AsyncWriter struct {
	store  Store
	queue  chan Snapshot
	logger *slog.Logger
}

func NewAsyncWriter(s Store, logger *slog.Logger, queueSize int) *AsyncWriter {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &AsyncWriter{
		store:  s,
		queue:  make(chan Snapshot, queueSize),
		logger: logger,
	}
}

// Enqueue schedules a snapshot without blocking. It reports false when the
// queue is full and the snapshot was dropped.
func (w *AsyncWriter) Enqueue(snap Snapshot) bool {
	select {
	case w.queue <- snap:
		return true
	default:
		w.logger.Warn("snapshot queue full, dropping", "table", snap.TableID)
		return false
	}
}

// Run writes queued snapshots until ctx is cancelled, then drains what is
// already queued.
func (w *AsyncWriter) Run(ctx context.Context) error {
	for {
		select {
		case snap := <-w.queue:
			w.write(context.Background(), snap)
		case <-ctx.Done():
			for {
				select {
				case snap := <-w.queue:
					w.write(context.Background(), snap)
				default:
					return nil
				}
			}
		}
	}
}

func (w *AsyncWriter) write(ctx context.Context, snap Snapshot) {
	if err := w.store.Persist(ctx, snap); err != nil {
		w.logger.Error("persist snapshot", "table", snap.TableID, "error", err)
		return
	}
	w.logger.Debug("persisted snapshot", "table", snap.TableID)
}
