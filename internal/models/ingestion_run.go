package models

import "time"

// IngestionRun records one pass of the ingestion pipeline over a dataset
type IngestionRun struct {
	ID           string    `json:"id" db:"id" bson:"_id"`
	DatasetPath  string    `json:"datasetPath" db:"dataset_path" bson:"dataset_path"`
	StartedAt    time.Time `json:"startedAt" db:"started_at" bson:"started_at"`
	FinishedAt   time.Time `json:"finishedAt" db:"finished_at" bson:"finished_at"`
	Users        int64     `json:"users" db:"users" bson:"users"`
	Activities   int64     `json:"activities" db:"activities" bson:"activities"`
	TrackPoints  int64     `json:"trackPoints" db:"track_points" bson:"track_points"`
	SkippedFiles int64     `json:"skippedFiles" db:"skipped_files" bson:"skipped_files"`
}
