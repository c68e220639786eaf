package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/jengzang/geolife-backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFeedsEveryAnalyzer(t *testing.T) {
	src := &sliceSource{points: []models.TrackPoint{
		pt("112", 1, 0, 10), pt("112", 1, 4, 5), pt("112", 1, 10, 15),
	}}
	alt := NewAltitudeGainAccumulator()
	gaps := NewGapDetector()

	q := models.TrackPointQuery{Order: models.OrderByUserActivityTime}
	require.NoError(t, Run(context.Background(), src, q, alt, gaps))

	assert.Equal(t, q, src.got)
	assert.InDelta(t, 10/FeetPerMeter, alt.Totals()[0].Meters, 1e-12)
	assert.Equal(t, map[string]int{"112": 1}, gaps.Counts())
}

func TestRunWrapsSourceError(t *testing.T) {
	boom := errors.New("cursor died")
	src := &sliceSource{err: boom}

	err := Run(context.Background(), src, models.TrackPointQuery{}, NewGapDetector())
	assert.ErrorIs(t, err, boom)
}

func TestRunWithoutAnalyzers(t *testing.T) {
	src := &sliceSource{err: errors.New("should not be called")}
	assert.NoError(t, Run(context.Background(), src, models.TrackPointQuery{}))
}
