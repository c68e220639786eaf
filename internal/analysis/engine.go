package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/jengzang/geolife-backend-go/internal/models"
)

// TrackPointAnalyzer consumes one ordered pass over trackpoints
type TrackPointAnalyzer interface {
	// Name returns the name of the analyzer
	Name() string

	// Add folds the next trackpoint into the analyzer's state
	Add(p models.TrackPoint)
}

// TrackPointSource yields trackpoints in the order the query asks for
type TrackPointSource interface {
	StreamTrackPoints(ctx context.Context, q models.TrackPointQuery, fn func(models.TrackPoint) error) error
}

// ProgressInterval is how many points pass between progress log lines
const ProgressInterval = 1_000_000

// Run feeds one pass of src to every analyzer. Analyzers that need sentinel
// altitudes removed skip them themselves, so a single pass serves all of them.
func Run(ctx context.Context, src TrackPointSource, q models.TrackPointQuery, analyzers ...TrackPointAnalyzer) error {
	if len(analyzers) == 0 {
		return nil
	}

	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name()
	}
	logger := log.WithField("analyzers", names)
	logger.Info("starting trackpoint pass")

	start := time.Now()
	var processed int64
	err := src.StreamTrackPoints(ctx, q, func(p models.TrackPoint) error {
		for _, a := range analyzers {
			a.Add(p)
		}
		processed++
		if processed%ProgressInterval == 0 {
			logger.WithField("processed", processed).Info("trackpoint pass progress")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to stream trackpoints: %w", err)
	}

	logger.WithFields(log.Fields{
		"processed": processed,
		"elapsed":   time.Since(start).String(),
	}).Info("trackpoint pass completed")
	return nil
}
