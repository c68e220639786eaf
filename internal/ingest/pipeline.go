package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/jengzang/geolife-backend-go/internal/geolife"
	"github.com/jengzang/geolife-backend-go/internal/models"
	"github.com/jengzang/geolife-backend-go/internal/repository"
)

// DefaultBatchSize is the number of trackpoints buffered per bulk insert
const DefaultBatchSize = 5000

// Pipeline loads a Geolife dataset into a store
type Pipeline struct {
	store     repository.Store
	batchSize int
	now       func() time.Time
}

// NewPipeline creates a pipeline writing to store; a non-positive batch size
// selects DefaultBatchSize
func NewPipeline(store repository.Store, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{store: store, batchSize: batchSize, now: time.Now}
}

// Run recreates the collections, walks the dataset at root, inserts
// everything it emits and records the run. The returned run carries the
// walk statistics even when the walk fails part way.
func (p *Pipeline) Run(ctx context.Context, root string) (models.IngestionRun, error) {
	run := models.IngestionRun{
		ID:          uuid.NewString(),
		DatasetPath: root,
		StartedAt:   p.now(),
	}
	logger := log.WithFields(log.Fields{"run": run.ID, "dataset": root})

	dataset, err := geolife.OpenDataset(root)
	if err != nil {
		return run, err
	}

	if err := p.store.DropCollections(ctx); err != nil {
		return run, err
	}
	if err := p.store.CreateCollections(ctx); err != nil {
		return run, err
	}
	logger.WithField("labeled_users", len(dataset.LabeledIDs)).Info("ingestion started")

	b := newBatcher(p.store, p.batchSize)
	stats, err := dataset.Walk(ctx, b)
	run.Users = stats.Users
	run.Activities = stats.Activities
	run.TrackPoints = stats.TrackPoints
	run.SkippedFiles = stats.SkippedFiles
	if err != nil {
		logger.WithError(err).Error("walk aborted")
		return run, fmt.Errorf("failed to walk dataset: %w", err)
	}
	if err := b.flush(ctx); err != nil {
		return run, err
	}

	run.FinishedAt = p.now()
	if err := p.store.RecordIngestionRun(ctx, run); err != nil {
		return run, err
	}

	logger.WithFields(log.Fields{
		"users":        run.Users,
		"activities":   run.Activities,
		"track_points": run.TrackPoints,
		"skipped":      run.SkippedFiles,
		"batches":      b.flushes,
		"elapsed":      run.FinishedAt.Sub(run.StartedAt).String(),
	}).Info("ingestion finished")
	return run, nil
}
