package analysis

import (
	"context"
	"time"

	"github.com/jengzang/geolife-backend-go/internal/models"
)

var base = time.Date(2008, 10, 23, 0, 0, 0, 0, time.UTC)

func pt(user string, activity int64, minute int, altitude float64) models.TrackPoint {
	return models.TrackPoint{
		UserID:     user,
		ActivityID: activity,
		Altitude:   altitude,
		DateTime:   base.Add(time.Duration(minute) * time.Minute),
	}
}

// sliceSource serves points in slice order, like a pre-sorted cursor
type sliceSource struct {
	points []models.TrackPoint
	err    error
	got    models.TrackPointQuery
}

func (s *sliceSource) StreamTrackPoints(_ context.Context, q models.TrackPointQuery, fn func(models.TrackPoint) error) error {
	s.got = q
	for _, p := range s.points {
		if err := fn(p); err != nil {
			return err
		}
	}
	return s.err
}
