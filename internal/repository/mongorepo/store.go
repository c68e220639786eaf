package mongorepo

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jengzang/geolife-backend-go/internal/models"
	"github.com/jengzang/geolife-backend-go/internal/repository"
)

var _ repository.Store = (*Store)(nil)

var collections = []string{
	models.CollectionUser,
	models.CollectionActivity,
	models.CollectionTrackPoint,
	models.CollectionIngestionRun,
}

// Config holds MongoDB connection settings
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Store implements repository.Store on MongoDB
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to the server and pings it
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.WithFields(log.Fields{"uri": cfg.URI, "database": cfg.Database}).Info("mongodb connected")
	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// CreateCollections creates the collections that do not exist yet and their
// indexes
func (s *Store) CreateCollections(ctx context.Context) error {
	existing, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, name := range collections {
		if have[name] {
			continue
		}
		if err := s.db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}

	for name, idx := range indexes() {
		if _, err := s.collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		models.CollectionActivity: {
			{Keys: bson.D{{"user_id", 1}}},
			{Keys: bson.D{{"transportation_mode", 1}}},
			{Keys: bson.D{{"start_date_time", 1}}},
		},
		models.CollectionTrackPoint: {
			{Keys: bson.D{{"user_id", 1}, {"activity_id", 1}, {"date_time", 1}}},
			{Keys: bson.D{{"activity_id", 1}, {"date_time", 1}}},
			{Keys: bson.D{{"lat", 1}, {"lon", 1}}},
		},
		models.CollectionUser: {
			{Keys: bson.D{{"activities", 1}}},
		},
	}
}

// DropCollections drops every collection and its documents
func (s *Store) DropCollections(ctx context.Context) error {
	for _, name := range collections {
		if err := s.collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop collection %s: %w", name, err)
		}
	}
	return nil
}

func insertMany[T any](ctx context.Context, coll *mongo.Collection, docs []T) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, len(docs))
	for i := range docs {
		batch[i] = docs[i]
	}
	if _, err := coll.InsertMany(ctx, batch, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
	}
	return nil
}

// InsertUsers inserts a batch of users
func (s *Store) InsertUsers(ctx context.Context, users []models.User) error {
	return insertMany(ctx, s.collection(models.CollectionUser), users)
}

// InsertActivities inserts a batch of activities
func (s *Store) InsertActivities(ctx context.Context, activities []models.Activity) error {
	return insertMany(ctx, s.collection(models.CollectionActivity), activities)
}

// InsertTrackPoints inserts a batch of track points
func (s *Store) InsertTrackPoints(ctx context.Context, points []models.TrackPoint) error {
	return insertMany(ctx, s.collection(models.CollectionTrackPoint), points)
}

// RecordIngestionRun stores the summary of one ingestion run
func (s *Store) RecordIngestionRun(ctx context.Context, run models.IngestionRun) error {
	if _, err := s.collection(models.CollectionIngestionRun).InsertOne(ctx, run); err != nil {
		return fmt.Errorf("failed to record ingestion run: %w", err)
	}
	return nil
}

// Count returns the number of documents in a collection
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	known := false
	for _, name := range collections {
		known = known || name == collection
	}
	if !known {
		return 0, fmt.Errorf("%w: %s", repository.ErrUnknownCollection, collection)
	}

	n, err := s.collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

// FindActivities retrieves activities matching the filter, sorted by id
func (s *Store) FindActivities(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	opts := options.Find().
		SetSort(bson.D{{"_id", 1}}).
		SetProjection(bson.D{{"track_points", 0}})

	cursor, err := s.collection(models.CollectionActivity).Find(ctx, activityFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}

	var activities []models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

// FindUsersOwningActivities returns the users whose activity list contains
// any of the given ids, sorted by id
func (s *Store) FindUsersOwningActivities(ctx context.Context, activityIDs []int64) ([]models.User, error) {
	if len(activityIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().
		SetSort(bson.D{{"_id", 1}}).
		SetProjection(bson.D{{"activities", 0}})

	cursor, err := s.collection(models.CollectionUser).Find(ctx, usersOwningFilter(activityIDs), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, what string) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", what, err)
	}

	var result []T
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", what, err)
	}
	return result, nil
}

// TopUsersByActivityCount counts activities per user, largest first
func (s *Store) TopUsersByActivityCount(ctx context.Context, limit int) ([]models.UserActivityCount, error) {
	return aggregate[models.UserActivityCount](ctx, s.collection(models.CollectionActivity), topUsersPipeline(limit), "activities per user")
}

// ModeCounts counts activities per transportation mode, largest first
func (s *Store) ModeCounts(ctx context.Context) ([]models.ModeCount, error) {
	return aggregate[models.ModeCount](ctx, s.collection(models.CollectionActivity), modeCountsPipeline(), "modes")
}

// ModeCountsByUser counts activities per (user, mode)
func (s *Store) ModeCountsByUser(ctx context.Context) ([]models.UserModeCount, error) {
	return aggregate[models.UserModeCount](ctx, s.collection(models.CollectionActivity), modeCountsByUserPipeline(), "modes per user")
}

// YearActivityCounts counts activities per calendar year of their start
func (s *Store) YearActivityCounts(ctx context.Context, limit int) ([]models.YearActivityCount, error) {
	return aggregate[models.YearActivityCount](ctx, s.collection(models.CollectionActivity), yearCountsPipeline(limit), "activities per year")
}

// YearHours sums recorded hours per calendar year of the activity start
func (s *Store) YearHours(ctx context.Context, limit int) ([]models.YearHours, error) {
	return aggregate[models.YearHours](ctx, s.collection(models.CollectionActivity), yearHoursPipeline(limit), "hours per year")
}

// StreamTrackPoints calls fn for every matching track point in the requested
// order. An error from fn stops the pass and is returned unchanged.
func (s *Store) StreamTrackPoints(ctx context.Context, q models.TrackPointQuery, fn func(models.TrackPoint) error) error {
	opts := options.Find().
		SetSort(trackPointSort(q.Order)).
		SetAllowDiskUse(true)

	cursor, err := s.collection(models.CollectionTrackPoint).Find(ctx, trackPointFilter(q), opts)
	if err != nil {
		return fmt.Errorf("failed to query track points: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p models.TrackPoint
		if err := cursor.Decode(&p); err != nil {
			return fmt.Errorf("failed to decode track point: %w", err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("failed to iterate track points: %w", err)
	}
	return nil
}

// FindTrackPointsInBox retrieves the track points inside box, optionally
// restricted to one calendar year
func (s *Store) FindTrackPointsInBox(ctx context.Context, box models.BoundingBox, year int) ([]models.TrackPoint, error) {
	opts := options.Find().SetSort(bson.D{{"_id", 1}})

	cursor, err := s.collection(models.CollectionTrackPoint).Find(ctx, boxFilter(box, year), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query track points in box: %w", err)
	}

	var points []models.TrackPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode track points: %w", err)
	}
	return points, nil
}

// Close disconnects from the server
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}
