package analysis

import (
	"time"

	"github.com/jengzang/geolife-backend-go/internal/models"
)

// MaxGap is the largest pause between fixes a valid activity may contain
const MaxGap = 5 * time.Minute

type gapState struct {
	started     bool
	user        string
	activity    int64
	last        time.Time
	invalidated bool
	invalid     int
	counts      []models.UserInvalidCount
}

// stepGap folds one trackpoint into the state. Points must arrive sorted by
// (user, activity, time). An activity is counted once, at its first gap of
// MaxGap or more; its remaining points are ignored.
func stepGap(s gapState, p models.TrackPoint) gapState {
	switch {
	case !s.started:
		return gapState{started: true, user: p.UserID, activity: p.ActivityID, last: p.DateTime, counts: s.counts}
	case p.UserID != s.user:
		counts := s.counts
		if s.invalid > 0 {
			counts = append(counts, models.UserInvalidCount{UserID: s.user, Invalid: s.invalid})
		}
		return gapState{started: true, user: p.UserID, activity: p.ActivityID, last: p.DateTime, counts: counts}
	case p.ActivityID != s.activity:
		s.activity = p.ActivityID
		s.last = p.DateTime
		s.invalidated = false
		return s
	case s.invalidated:
		return s
	}

	if p.DateTime.Sub(s.last) >= MaxGap {
		s.invalidated = true
		s.invalid++
	}
	s.last = p.DateTime
	return s
}

func flushGap(s gapState) []models.UserInvalidCount {
	out := make([]models.UserInvalidCount, len(s.counts), len(s.counts)+1)
	copy(out, s.counts)
	if s.started && s.invalid > 0 {
		out = append(out, models.UserInvalidCount{UserID: s.user, Invalid: s.invalid})
	}
	return out
}

// GapDetector counts, per user, the activities containing a gap of MaxGap or more
type GapDetector struct {
	state gapState
}

// NewGapDetector creates an empty detector
func NewGapDetector() *GapDetector {
	return &GapDetector{}
}

// Name implements TrackPointAnalyzer
func (g *GapDetector) Name() string {
	return "invalid_activities"
}

// Add implements TrackPointAnalyzer
func (g *GapDetector) Add(p models.TrackPoint) {
	g.state = stepGap(g.state, p)
}

// Results returns users with at least one invalid activity, in stream order
func (g *GapDetector) Results() []models.UserInvalidCount {
	return flushGap(g.state)
}

// Counts returns the invalid activity count per user, nonzero counts only
func (g *GapDetector) Counts() map[string]int {
	counts := make(map[string]int)
	for _, c := range g.Results() {
		counts[c.UserID] = c.Invalid
	}
	return counts
}
