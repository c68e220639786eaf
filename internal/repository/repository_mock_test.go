package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/geolife-backend-go/internal/models"
)

var (
	mockDB *sql.DB
	mock   sqlmock.Sqlmock
)

func setUp() {
	mockDB, mock, _ = sqlmock.New()
}

func tearDown() {
	mockDB.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var errDriver = errors.New("driver failure")

func TestStatsQueryErrorsAreWrapped(t *testing.T) {
	it(func() {
		repo := NewStatsRepository(mockDB)
		mock.ExpectQuery("FROM activities GROUP BY user_id").
			WithArgs(3).
			WillReturnError(errDriver)

		_, err := repo.TopUsersByActivityCount(context.Background(), 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, errDriver)
		assert.Contains(t, err.Error(), "failed to count activities per user")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStatsNonPositiveLimitMeansAll(t *testing.T) {
	it(func() {
		repo := NewStatsRepository(mockDB)
		mock.ExpectQuery("SUM\\(\\(julianday").
			WithArgs(-1).
			WillReturnRows(sqlmock.NewRows([]string{"year", "hours"}).
				AddRow(2009, 10.5).
				AddRow(2008, 3.0))

		hours, err := repo.YearHours(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, []models.YearHours{{Year: 2009, Hours: 10.5}, {Year: 2008, Hours: 3}}, hours)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestModeCountsScanError(t *testing.T) {
	it(func() {
		repo := NewStatsRepository(mockDB)
		mock.ExpectQuery("GROUP BY transportation_mode").
			WillReturnRows(sqlmock.NewRows([]string{"transportation_mode", "n"}).
				AddRow("walk", "many"))

		_, err := repo.ModeCounts(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to scan mode count")
	})
}

func TestInsertUsersRollsBackOnError(t *testing.T) {
	it(func() {
		repo := NewUserRepository(mockDB)
		mock.ExpectBegin()
		prep := mock.ExpectPrepare("INSERT INTO users")
		prep.ExpectExec().WithArgs("010", true).WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WithArgs("011", false).WillReturnError(errDriver)
		mock.ExpectRollback()

		err := repo.InsertUsers(context.Background(), []models.User{
			{ID: "010", HasLabels: true},
			{ID: "011"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, errDriver)
		assert.Contains(t, err.Error(), "failed to insert user 011")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInsertEmptyBatchIsNoop(t *testing.T) {
	it(func() {
		assert.NoError(t, NewUserRepository(mockDB).InsertUsers(context.Background(), nil))
		assert.NoError(t, NewActivityRepository(mockDB).InsertActivities(context.Background(), nil))
		assert.NoError(t, NewTrackRepository(mockDB).InsertTrackPoints(context.Background(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStreamTrackPointsFiltersAndOrder(t *testing.T) {
	it(func() {
		repo := NewTrackRepository(mockDB)
		mock.ExpectQuery("FROM track_points WHERE altitude != \\? ORDER BY user_id, activity_id, date_time, id").
			WithArgs(models.SentinelAltitude).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "activity_id", "lat", "lon", "altitude", "date_days", "date_time"}).
				AddRow(1, "010", 1, 39.9, 116.3, 100.0, 39570.4, "2008-05-01 10:00:00"))

		var got []models.TrackPoint
		err := repo.StreamTrackPoints(context.Background(), models.TrackPointQuery{ExcludeUnknownAltitude: true}, func(p models.TrackPoint) error {
			got = append(got, p)
			return nil
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "010", got[0].UserID)
		assert.Equal(t, 2008, got[0].DateTime.Year())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStreamTrackPointsBadTimestamp(t *testing.T) {
	it(func() {
		repo := NewTrackRepository(mockDB)
		mock.ExpectQuery("FROM track_points WHERE activity_id = \\? ORDER BY date_time, id").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "activity_id", "lat", "lon", "altitude", "date_days", "date_time"}).
				AddRow(1, "010", 7, 39.9, 116.3, 100.0, 39570.4, "yesterday"))

		err := repo.StreamTrackPoints(context.Background(), models.TrackPointQuery{ActivityID: 7, Order: models.OrderByTime}, func(models.TrackPoint) error {
			t.Fatal("callback must not run for an unparsable row")
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse timestamp")
	})
}

func TestCountUnknownCollectionSkipsDatabase(t *testing.T) {
	it(func() {
		store := NewSQLStore(mockDB, nil)
		_, err := store.Count(context.Background(), "Trips")
		assert.ErrorIs(t, err, ErrUnknownCollection)

		// Without a schema manager the collection lifecycle is left to the caller
		assert.NoError(t, store.CreateCollections(context.Background()))
		assert.NoError(t, store.DropCollections(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
