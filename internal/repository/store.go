package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jengzang/geolife-backend-go/internal/database"
	"github.com/jengzang/geolife-backend-go/internal/models"
)

// ErrUnknownCollection is returned for a collection name no store knows
var ErrUnknownCollection = errors.New("unknown collection")

// Store is the document store the pipeline and the query service run against
type Store interface {
	CreateCollections(ctx context.Context) error
	DropCollections(ctx context.Context) error

	InsertUsers(ctx context.Context, users []models.User) error
	InsertActivities(ctx context.Context, activities []models.Activity) error
	InsertTrackPoints(ctx context.Context, points []models.TrackPoint) error
	RecordIngestionRun(ctx context.Context, run models.IngestionRun) error

	Count(ctx context.Context, collection string) (int64, error)
	FindActivities(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error)
	FindUsersOwningActivities(ctx context.Context, activityIDs []int64) ([]models.User, error)

	TopUsersByActivityCount(ctx context.Context, limit int) ([]models.UserActivityCount, error)
	ModeCounts(ctx context.Context) ([]models.ModeCount, error)
	ModeCountsByUser(ctx context.Context) ([]models.UserModeCount, error)
	YearActivityCounts(ctx context.Context, limit int) ([]models.YearActivityCount, error)
	YearHours(ctx context.Context, limit int) ([]models.YearHours, error)

	StreamTrackPoints(ctx context.Context, q models.TrackPointQuery, fn func(models.TrackPoint) error) error
	FindTrackPointsInBox(ctx context.Context, box models.BoundingBox, year int) ([]models.TrackPoint, error)

	Close() error
}

// SchemaManager creates and drops the SQL schema
type SchemaManager interface {
	MigrateUp() error
	MigrateDown() error
}

var _ Store = (*SQLStore)(nil)

// SQLStore implements Store on SQLite
type SQLStore struct {
	*UserRepository
	*ActivityRepository
	*TrackRepository
	*StatsRepository
	*RunRepository

	db     *sql.DB
	schema SchemaManager
}

// NewSQLStore creates a store over db; schema may be nil when the schema is
// managed elsewhere
func NewSQLStore(db *sql.DB, schema SchemaManager) *SQLStore {
	return &SQLStore{
		UserRepository:     NewUserRepository(db),
		ActivityRepository: NewActivityRepository(db),
		TrackRepository:    NewTrackRepository(db),
		StatsRepository:    NewStatsRepository(db),
		RunRepository:      NewRunRepository(db),
		db:                 db,
		schema:             schema,
	}
}

// OpenSQLStore opens the SQLite file at path and makes sure the schema exists
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := database.Open(database.Config{Path: path})
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLStore(db.DB, db), nil
}

// CreateCollections creates the tables
func (s *SQLStore) CreateCollections(ctx context.Context) error {
	if s.schema == nil {
		return nil
	}
	if err := s.schema.MigrateUp(); err != nil {
		return fmt.Errorf("failed to create collections: %w", err)
	}
	return nil
}

// DropCollections drops the tables and everything in them
func (s *SQLStore) DropCollections(ctx context.Context) error {
	if s.schema == nil {
		return nil
	}
	if err := s.schema.MigrateDown(); err != nil {
		return fmt.Errorf("failed to drop collections: %w", err)
	}
	return nil
}

var collectionTables = map[string]string{
	models.CollectionUser:         "users",
	models.CollectionActivity:     "activities",
	models.CollectionTrackPoint:   "track_points",
	models.CollectionIngestionRun: "ingestion_runs",
}

// Count returns the number of documents in a collection
func (s *SQLStore) Count(ctx context.Context, collection string) (int64, error) {
	table, ok := collectionTables[collection]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}
