package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/geolife-backend-go/internal/models"
)

// RunRepository records ingestion runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// RecordIngestionRun stores the summary of one ingestion run
func (r *RunRepository) RecordIngestionRun(ctx context.Context, run models.IngestionRun) error {
	query := `INSERT INTO ingestion_runs
		(id, dataset_path, started_at, finished_at, users, activities, track_points, skipped_files)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, run.ID, run.DatasetPath,
		formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.Users, run.Activities, run.TrackPoints, run.SkippedFiles)
	if err != nil {
		return fmt.Errorf("failed to record ingestion run: %w", err)
	}
	return nil
}
