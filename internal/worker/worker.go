// Package worker contains the background snapshot writer. The store hands it
// a copy of the tree after every transition; the worker persists the latest
// one and absorbs backend failures so they never reach the session.
package worker

import (
	"context"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/state"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

const saveAttempts = 3

// SnapshotWorker serializes state snapshots through a single writer goroutine
type SnapshotWorker struct {
	snapshot state.Snapshot
	logger   *zap.Logger
	pending  chan models.AppState
}

// NewSnapshotWorker creates a worker writing through the given backend
func NewSnapshotWorker(snapshot state.Snapshot) *SnapshotWorker {
	return &SnapshotWorker{
		snapshot: snapshot,
		logger:   util.GetLogger(),
		pending:  make(chan models.AppState, 1),
	}
}

// Enqueue hands the worker a new tree to persist. Bursts coalesce: a snapshot
// that was never written is dropped in favor of the newer one, since every
// save is a full-tree overwrite anyway.
func (w *SnapshotWorker) Enqueue(st models.AppState) {
	for {
		select {
		case w.pending <- st:
			return
		default:
			select {
			case <-w.pending:
			default:
			}
		}
	}
}

// Start runs the writer loop until the context is cancelled, then flushes any
// snapshot still pending.
func (w *SnapshotWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting snapshot worker")
	for {
		select {
		case <-ctx.Done():
			w.flush()
			w.logger.Info("Snapshot worker stopped")
			return ctx.Err()
		case st := <-w.pending:
			w.save(ctx, st)
		}
	}
}

// flush writes a still-pending snapshot with its own deadline, because the
// loop context is already cancelled at this point
func (w *SnapshotWorker) flush() {
	select {
	case st := <-w.pending:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		w.save(ctx, st)
	default:
	}
}

func (w *SnapshotWorker) save(ctx context.Context, st models.AppState) {
	ctx, span := util.StartSpan(ctx, "SnapshotWorker.Save")
	defer span.End()

	data, err := state.EncodeState(st)
	if err != nil {
		util.SnapshotSaveFailuresTotal.Inc()
		w.logger.Error("Failed to encode state snapshot", zap.Error(err))
		return
	}

	for attempt := 1; attempt <= saveAttempts; attempt++ {
		if err = w.snapshot.Save(ctx, data); err == nil {
			util.SnapshotSavesTotal.Inc()
			return
		}
		w.logger.Warn("Snapshot save failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < saveAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
			}
		}
	}

	util.SnapshotSaveFailuresTotal.Inc()
	w.logger.Error("Giving up on snapshot save", zap.Error(err))
}
