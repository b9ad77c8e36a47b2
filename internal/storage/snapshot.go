package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/goccy/go-json"
	"github.com/timmy/themeboard/internal/domain"
	"github.com/timmy/themeboard/internal/logger"
)

// Snapshot is the exported theme map of one run.
type Snapshot struct {
	Run    *domain.RunSummary `json:"run"`
	Points []domain.MapPoint  `json:"points"`
}

// SnapshotWriter exports run snapshots under prefix/<run_id>.json and keeps
// prefix/latest.json pointing at the newest one.
type SnapshotWriter struct {
	store  ObjectStorage
	prefix string
}

// NewSnapshotWriter creates a writer over store.
func NewSnapshotWriter(store ObjectStorage, prefix string) *SnapshotWriter {
	return &SnapshotWriter{store: store, prefix: prefix}
}

// RunKey returns the object key for a run.
func (w *SnapshotWriter) RunKey(runID string) string {
	return path.Join(w.prefix, runID+".json")
}

// LatestKey returns the object key of the newest snapshot.
func (w *SnapshotWriter) LatestKey() string {
	return path.Join(w.prefix, "latest.json")
}

// Export writes the run snapshot and then updates latest.
func (w *SnapshotWriter) Export(ctx context.Context, summary *domain.RunSummary, points []domain.MapPoint) error {
	data, err := json.Marshal(Snapshot{Run: summary, Points: points})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	key := w.RunKey(summary.RunID)
	if err := w.store.Put(ctx, key, data, "application/json"); err != nil {
		return err
	}
	if err := w.store.Put(ctx, w.LatestKey(), data, "application/json"); err != nil {
		return err
	}
	logger.With(logger.Fields{
		logger.FieldRunID: summary.RunID,
		logger.FieldSize:  len(data),
	}).Info(ctx, "Snapshot exported to %s", w.store.GetURL(key))
	return nil
}

// Latest reads the newest snapshot.
func (w *SnapshotWriter) Latest(ctx context.Context) (*Snapshot, error) {
	data, err := w.store.Get(ctx, w.LatestKey())
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
