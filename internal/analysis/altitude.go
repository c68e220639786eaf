package analysis

import (
	"sort"

	"github.com/jengzang/geolife-backend-go/internal/models"
)

// FeetPerMeter converts Geolife altitudes (feet) to meters
const FeetPerMeter = 3.281

// altitudeState is the fold state of the altitude-gain accumulator. totals
// holds the users already flushed; the current user's running gain is total.
type altitudeState struct {
	started  bool
	user     string
	activity int64
	last     float64
	total    float64
	totals   []models.UserAltitudeGain
}

// stepAltitude folds one trackpoint into the state. Points must arrive sorted
// by (user, activity, time). The first point of a user or of an activity only
// sets the baseline.
func stepAltitude(s altitudeState, p models.TrackPoint) altitudeState {
	if !p.HasAltitude() {
		return s
	}

	switch {
	case !s.started:
		return altitudeState{started: true, user: p.UserID, activity: p.ActivityID, last: p.Altitude, totals: s.totals}
	case p.UserID != s.user:
		totals := append(s.totals, models.UserAltitudeGain{UserID: s.user, Meters: s.total})
		return altitudeState{started: true, user: p.UserID, activity: p.ActivityID, last: p.Altitude, totals: totals}
	case p.ActivityID != s.activity:
		s.activity = p.ActivityID
		s.last = p.Altitude
		return s
	}

	if p.Altitude > s.last {
		s.total += (p.Altitude - s.last) / FeetPerMeter
	}
	s.last = p.Altitude
	return s
}

func flushAltitude(s altitudeState) []models.UserAltitudeGain {
	out := make([]models.UserAltitudeGain, len(s.totals), len(s.totals)+1)
	copy(out, s.totals)
	if s.started {
		out = append(out, models.UserAltitudeGain{UserID: s.user, Meters: s.total})
	}
	return out
}

// AltitudeGainAccumulator sums the meters each user climbed
type AltitudeGainAccumulator struct {
	state altitudeState
}

// NewAltitudeGainAccumulator creates an empty accumulator
func NewAltitudeGainAccumulator() *AltitudeGainAccumulator {
	return &AltitudeGainAccumulator{}
}

// Name implements TrackPointAnalyzer
func (a *AltitudeGainAccumulator) Name() string {
	return "altitude_gain"
}

// Add implements TrackPointAnalyzer
func (a *AltitudeGainAccumulator) Add(p models.TrackPoint) {
	a.state = stepAltitude(a.state, p)
}

// Totals returns every user seen, in stream order
func (a *AltitudeGainAccumulator) Totals() []models.UserAltitudeGain {
	return flushAltitude(a.state)
}

// Top returns the n users with the largest gain, largest first
func (a *AltitudeGainAccumulator) Top(n int) []models.UserAltitudeGain {
	totals := a.Totals()
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Meters != totals[j].Meters {
			return totals[i].Meters > totals[j].Meters
		}
		return totals[i].UserID < totals[j].UserID
	})
	if n > 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}
