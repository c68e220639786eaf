package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jengzang/geolife-backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := OpenSQLStore(filepath.Join(t.TempDir(), "geolife.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func strPtr(s string) *string { return &s }

func ts(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// seed loads three users: 010 (labelled, walk/walk/bus), 011 (taxi), 012 (no modes)
func seed(t *testing.T, store *SQLStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.InsertUsers(ctx, []models.User{
		{ID: "010", HasLabels: true},
		{ID: "011", HasLabels: true},
		{ID: "012"},
	}))
	require.NoError(t, store.InsertActivities(ctx, []models.Activity{
		{ID: 1, UserID: "010", TransportationMode: strPtr("walk"), StartDateTime: ts("2008-05-01 10:00:00"), EndDateTime: ts("2008-05-01 12:00:00")},
		{ID: 2, UserID: "010", TransportationMode: strPtr("walk"), StartDateTime: ts("2008-05-02 10:00:00"), EndDateTime: ts("2008-05-02 11:00:00")},
		{ID: 3, UserID: "010", TransportationMode: strPtr("bus"), StartDateTime: ts("2009-01-01 10:00:00"), EndDateTime: ts("2009-01-01 20:00:00")},
		{ID: 4, UserID: "011", TransportationMode: strPtr("taxi"), StartDateTime: ts("2009-02-01 10:00:00"), EndDateTime: ts("2009-02-01 10:30:00")},
		{ID: 5, UserID: "012", StartDateTime: ts("2008-07-01 00:00:00"), EndDateTime: ts("2008-07-01 00:10:00")},
	}))
	require.NoError(t, store.InsertTrackPoints(ctx, []models.TrackPoint{
		{ID: 3, UserID: "010", ActivityID: 1, Latitude: 39.916, Longitude: 116.397, Altitude: 150, DateTime: ts("2008-05-01 10:02:00")},
		{ID: 1, UserID: "010", ActivityID: 1, Latitude: 39.900, Longitude: 116.300, Altitude: 100, DateTime: ts("2008-05-01 10:00:00")},
		{ID: 2, UserID: "010", ActivityID: 1, Latitude: 39.910, Longitude: 116.350, Altitude: models.SentinelAltitude, DateTime: ts("2008-05-01 10:01:00")},
		{ID: 4, UserID: "010", ActivityID: 2, Latitude: 40.000, Longitude: 116.400, Altitude: 10, DateTime: ts("2008-05-02 10:00:00")},
		{ID: 5, UserID: "011", ActivityID: 4, Latitude: 39.9161, Longitude: 116.3971, Altitude: 20, DateTime: ts("2009-02-01 10:00:00")},
		{ID: 6, UserID: "012", ActivityID: 5, Latitude: 30.000, Longitude: 120.000, Altitude: 30, DateTime: ts("2008-07-01 00:00:00")},
	}))
}

func TestSQLStoreCount(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)
	ctx := context.Background()

	for collection, want := range map[string]int64{
		models.CollectionUser:       3,
		models.CollectionActivity:   5,
		models.CollectionTrackPoint: 6,
	} {
		got, err := store.Count(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, want, got, collection)
	}

	_, err := store.Count(ctx, "Nope")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestSQLStoreDropAndCreateCollections(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)
	ctx := context.Background()

	require.NoError(t, store.DropCollections(ctx))
	_, err := store.Count(ctx, models.CollectionUser)
	assert.Error(t, err)

	require.NoError(t, store.CreateCollections(ctx))
	n, err := store.Count(ctx, models.CollectionUser)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLStoreFindActivities(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)
	ctx := context.Background()

	walks, err := store.FindActivities(ctx, models.ActivityFilter{UserID: "010", Mode: "walk"})
	require.NoError(t, err)
	require.Len(t, walks, 2)
	assert.Equal(t, int64(1), walks[0].ID)
	assert.Equal(t, "walk", walks[0].Mode())
	assert.Equal(t, ts("2008-05-01 10:00:00"), walks[0].StartDateTime)
	assert.Equal(t, ts("2008-05-01 12:00:00"), walks[0].EndDateTime)

	all, err := store.FindActivities(ctx, models.ActivityFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Nil(t, all[4].TransportationMode)
}

func TestSQLStoreFindUsersOwningActivities(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)

	users, err := store.FindUsersOwningActivities(context.Background(), []int64{4, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []models.User{{ID: "010", HasLabels: true}, {ID: "011", HasLabels: true}}, users)

	none, err := store.FindUsersOwningActivities(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLStoreFindUsersOwningManyActivities(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)

	ids := make([]int64, 0, 1200)
	for i := int64(100); i < 1300; i++ {
		ids = append(ids, i)
	}
	ids = append(ids, 5)

	users, err := store.FindUsersOwningActivities(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, []models.User{{ID: "012"}}, users)
}

func TestSQLStoreGroupings(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)
	ctx := context.Background()

	top, err := store.TopUsersByActivityCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []models.UserActivityCount{{UserID: "010", Activities: 3}, {UserID: "011", Activities: 1}}, top)

	modes, err := store.ModeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ModeCount{{Mode: "walk", Activities: 2}, {Mode: "bus", Activities: 1}, {Mode: "taxi", Activities: 1}}, modes)

	byUser, err := store.ModeCountsByUser(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]models.UserModeCount{
		{UserID: "010", Mode: "walk", Activities: 2},
		{UserID: "010", Mode: "bus", Activities: 1},
		{UserID: "011", Mode: "taxi", Activities: 1},
	}, byUser); diff != "" {
		t.Errorf("ModeCountsByUser mismatch (-want +got):\n%s", diff)
	}

	years, err := store.YearActivityCounts(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.YearActivityCount{{Year: 2008, Activities: 3}, {Year: 2009, Activities: 2}}, years)

	hours, err := store.YearHours(ctx, 1)
	require.NoError(t, err)
	require.Len(t, hours, 1)
	assert.Equal(t, 2009, hours[0].Year)
	assert.InDelta(t, 10.5, hours[0].Hours, 1e-6)
}

func TestSQLStoreStreamTrackPointsOrder(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)
	ctx := context.Background()

	var ids []int64
	err := store.StreamTrackPoints(ctx, models.TrackPointQuery{}, func(p models.TrackPoint) error {
		ids = append(ids, p.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids)

	ids = nil
	err = store.StreamTrackPoints(ctx, models.TrackPointQuery{ExcludeUnknownAltitude: true}, func(p models.TrackPoint) error {
		ids = append(ids, p.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4, 5, 6}, ids)

	ids = nil
	err = store.StreamTrackPoints(ctx, models.TrackPointQuery{ActivityID: 1, Order: models.OrderByTime}, func(p models.TrackPoint) error {
		ids = append(ids, p.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestSQLStoreStreamStopsOnCallbackError(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)

	stop := errors.New("stop")
	calls := 0
	err := store.StreamTrackPoints(context.Background(), models.TrackPointQuery{}, func(models.TrackPoint) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)

	// The cursor was released, so the single connection is usable again
	_, err = store.Count(context.Background(), models.CollectionTrackPoint)
	assert.NoError(t, err)
}

func TestSQLStoreFindTrackPointsInBox(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store)
	box := models.BoundingBox{MinLat: 39.915, MaxLat: 39.917, MinLon: 116.396, MaxLon: 116.398}

	points, err := store.FindTrackPointsInBox(context.Background(), box, 0)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, int64(3), points[0].ID)
	assert.Equal(t, "011", points[1].UserID)

	points, err = store.FindTrackPointsInBox(context.Background(), box, 2008)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "010", points[0].UserID)
}

func TestSQLStoreRecordIngestionRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := models.IngestionRun{
		ID:          "6f1c1c2e-1d52-4d0f-8a43-8f5b4c7f0d11",
		DatasetPath: "/data/geolife",
		StartedAt:   ts("2024-01-01 00:00:00"),
		FinishedAt:  ts("2024-01-01 00:10:00"),
		Users:       2,
		Activities:  3,
		TrackPoints: 4,
	}
	require.NoError(t, store.RecordIngestionRun(ctx, run))

	n, err := store.Count(ctx, models.CollectionIngestionRun)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Error(t, store.RecordIngestionRun(ctx, run), "duplicate run id")
}
