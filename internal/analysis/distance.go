package analysis

import (
	"github.com/jengzang/geolife-backend-go/internal/models"
	"github.com/jengzang/geolife-backend-go/internal/spatial"
)

type distanceState struct {
	started bool
	prev    models.TrackPoint
	meters  float64
}

// stepDistance adds the segment ending at p when both ends fall in year.
// Segments crossing a year boundary are dropped, not split.
func stepDistance(year int, s distanceState, p models.TrackPoint) distanceState {
	if s.started && s.prev.ActivityID == p.ActivityID &&
		s.prev.DateTime.Year() == year && p.DateTime.Year() == year {
		s.meters += spatial.HaversineDistance(s.prev.Latitude, s.prev.Longitude, p.Latitude, p.Longitude)
	}
	s.started = true
	s.prev = p
	return s
}

// YearDistanceSummer sums great-circle segment lengths inside one calendar
// year. Points must arrive sorted by time within each activity.
type YearDistanceSummer struct {
	Year  int
	state distanceState
}

// NewYearDistanceSummer creates a summer for year
func NewYearDistanceSummer(year int) *YearDistanceSummer {
	return &YearDistanceSummer{Year: year}
}

// Name implements TrackPointAnalyzer
func (d *YearDistanceSummer) Name() string {
	return "year_distance"
}

// Add implements TrackPointAnalyzer
func (d *YearDistanceSummer) Add(p models.TrackPoint) {
	d.state = stepDistance(d.Year, d.state, p)
}

// Meters returns the distance summed so far
func (d *YearDistanceSummer) Meters() float64 {
	return d.state.meters
}
