package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/apex/log"

	"github.com/jengzang/geolife-backend-go/internal/analysis"
	"github.com/jengzang/geolife-backend-go/internal/models"
	"github.com/jengzang/geolife-backend-go/internal/repository"
	"github.com/jengzang/geolife-backend-go/internal/spatial"
)

var (
	// ErrNoData is returned when a statistic is undefined on an empty store
	ErrNoData = errors.New("no data")
	// ErrInvalidArgument is returned for out-of-range query parameters
	ErrInvalidArgument = errors.New("invalid argument")
)

// Query defaults
const (
	DefaultLimit = 20
	DefaultMode  = "taxi"

	DefaultDistanceUser = "112"
	DefaultDistanceMode = "walk"
	DefaultDistanceYear = 2008

	// Forbidden City, Beijing
	DefaultNearLatitude  = 39.916
	DefaultNearLongitude = 116.397
	DefaultNearRadius    = 100.0
)

// StatsService answers the Geolife questions over a store
type StatsService struct {
	store repository.Store
}

// NewStatsService creates a new stats service
func NewStatsService(store repository.Store) *StatsService {
	return &StatsService{
		store: store,
	}
}

// Counts returns the number of users, activities and trackpoints
func (s *StatsService) Counts(ctx context.Context) (*models.CollectionCounts, error) {
	var counts models.CollectionCounts
	for _, c := range []struct {
		collection string
		dst        *int64
	}{
		{models.CollectionUser, &counts.Users},
		{models.CollectionActivity, &counts.Activities},
		{models.CollectionTrackPoint, &counts.TrackPoints},
	} {
		n, err := s.store.Count(ctx, c.collection)
		if err != nil {
			return nil, fmt.Errorf("failed to get counts: %w", err)
		}
		*c.dst = n
	}
	return &counts, nil
}

// AverageActivitiesPerUser returns activities divided by users
func (s *StatsService) AverageActivitiesPerUser(ctx context.Context) (float64, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return 0, err
	}
	if counts.Users == 0 {
		return 0, ErrNoData
	}
	return float64(counts.Activities) / float64(counts.Users), nil
}

// TopUsersByActivityCount returns the n users with most activities
func (s *StatsService) TopUsersByActivityCount(ctx context.Context, n int) ([]models.UserActivityCount, error) {
	if n <= 0 {
		n = DefaultLimit
	}
	top, err := s.store.TopUsersByActivityCount(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return top, nil
}

// UsersWhoTookMode returns the sorted ids of users with at least one
// activity tagged with mode
func (s *StatsService) UsersWhoTookMode(ctx context.Context, mode string) ([]string, error) {
	if mode == "" {
		mode = DefaultMode
	}
	activities, err := s.store.FindActivities(ctx, models.ActivityFilter{Mode: mode})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s activities: %w", mode, err)
	}

	ids := make([]int64, len(activities))
	for i, a := range activities {
		ids[i] = a.ID
	}
	users, err := s.store.FindUsersOwningActivities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users who took %s: %w", mode, err)
	}

	result := make([]string, len(users))
	for i, u := range users {
		result[i] = u.ID
	}
	sort.Strings(result)
	return result, nil
}

// ModeCounts returns the number of activities per transportation mode
func (s *StatsService) ModeCounts(ctx context.Context) ([]models.ModeCount, error) {
	counts, err := s.store.ModeCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get mode counts: %w", err)
	}
	return counts, nil
}

// BusiestYear returns the year with most activities and the year with most
// recorded hours
func (s *StatsService) BusiestYear(ctx context.Context) (*models.BusiestYear, error) {
	byCount, err := s.store.YearActivityCounts(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to get activities per year: %w", err)
	}
	byHours, err := s.store.YearHours(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to get hours per year: %w", err)
	}
	if len(byCount) == 0 || len(byHours) == 0 {
		return nil, ErrNoData
	}

	return &models.BusiestYear{
		ByActivities: byCount[0],
		ByHours:      byHours[0],
		Agree:        byCount[0].Year == byHours[0].Year,
	}, nil
}

// DistanceWalked sums the distance a user covered with mode during year.
// Only pairs of consecutive fixes that both fall in year are counted.
func (s *StatsService) DistanceWalked(ctx context.Context, userID, mode string, year int) (*models.DistanceReport, error) {
	if userID == "" {
		userID = DefaultDistanceUser
	}
	if mode == "" {
		mode = DefaultDistanceMode
	}
	if year == 0 {
		year = DefaultDistanceYear
	}

	activities, err := s.store.FindActivities(ctx, models.ActivityFilter{UserID: userID, Mode: mode})
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}

	summer := analysis.NewYearDistanceSummer(year)
	for _, a := range activities {
		q := models.TrackPointQuery{ActivityID: a.ID, Order: models.OrderByTime}
		if err := analysis.Run(ctx, s.store, q, summer); err != nil {
			return nil, err
		}
	}

	return &models.DistanceReport{
		UserID:     userID,
		Mode:       mode,
		Year:       year,
		Activities: len(activities),
		Meters:     summer.Meters(),
	}, nil
}

// TopAltitudeGain returns the n users who climbed the most
func (s *StatsService) TopAltitudeGain(ctx context.Context, n int) ([]models.UserAltitudeGain, error) {
	if n <= 0 {
		n = DefaultLimit
	}
	acc := analysis.NewAltitudeGainAccumulator()
	q := models.TrackPointQuery{ExcludeUnknownAltitude: true}
	if err := analysis.Run(ctx, s.store, q, acc); err != nil {
		return nil, err
	}
	return acc.Top(n), nil
}

// InvalidActivities returns the number of invalid activities per user, for
// users with at least one
func (s *StatsService) InvalidActivities(ctx context.Context) ([]models.UserInvalidCount, error) {
	gaps := analysis.NewGapDetector()
	if err := analysis.Run(ctx, s.store, models.TrackPointQuery{}, gaps); err != nil {
		return nil, err
	}
	return gaps.Results(), nil
}

// TrackReport holds the results of the trackpoint stream analyses
type TrackReport struct {
	AltitudeGain      []models.UserAltitudeGain
	InvalidActivities []models.UserInvalidCount
}

// AnalyzeTracks runs the altitude and gap analyses in a single pass over
// the trackpoints
func (s *StatsService) AnalyzeTracks(ctx context.Context, n int) (*TrackReport, error) {
	if n <= 0 {
		n = DefaultLimit
	}
	acc := analysis.NewAltitudeGainAccumulator()
	gaps := analysis.NewGapDetector()
	if err := analysis.Run(ctx, s.store, models.TrackPointQuery{}, acc, gaps); err != nil {
		return nil, err
	}
	return &TrackReport{
		AltitudeGain:      acc.Top(n),
		InvalidActivities: gaps.Results(),
	}, nil
}

// UsersNear returns the users with a fix within radius meters of a point,
// optionally restricted to one calendar year
func (s *StatsService) UsersNear(ctx context.Context, lat, lon, radius float64, year int) (*models.NearbyReport, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", ErrInvalidArgument)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidArgument)
	}

	box := spatial.BoundingBox(lat, lon, radius)
	points, err := s.store.FindTrackPointsInBox(ctx, box, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get nearby track points: %w", err)
	}

	seen := make(map[string]bool)
	users := []string{}
	for _, p := range points {
		if seen[p.UserID] || !spatial.Within(lat, lon, p.Latitude, p.Longitude, radius) {
			continue
		}
		seen[p.UserID] = true
		users = append(users, p.UserID)
	}
	sort.Strings(users)

	log.WithFields(log.Fields{
		"candidates": len(points),
		"users":      len(users),
		"radius":     radius,
	}).Debug("proximity query")

	return &models.NearbyReport{
		Latitude:  lat,
		Longitude: lon,
		Radius:    radius,
		Year:      year,
		Box:       box,
		Users:     users,
	}, nil
}

// MostUsedModes returns, for every user with a tagged activity, the mode the
// user registered most often. Ties go to the alphabetically first mode.
func (s *StatsService) MostUsedModes(ctx context.Context) ([]models.UserMode, error) {
	counts, err := s.store.ModeCountsByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get modes per user: %w", err)
	}

	best := make(map[string]models.UserMode)
	for _, c := range counts {
		cur, ok := best[c.UserID]
		if !ok || c.Activities > cur.Activities || (c.Activities == cur.Activities && c.Mode < cur.Mode) {
			best[c.UserID] = models.UserMode{UserID: c.UserID, Mode: c.Mode, Activities: c.Activities}
		}
	}

	result := make([]models.UserMode, 0, len(best))
	for _, m := range best {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}
