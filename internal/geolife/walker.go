package geolife

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/apex/log"
	"github.com/jengzang/geolife-backend-go/internal/models"
)

// TrajectoryDirName is the directory holding a user's .plt files
const TrajectoryDirName = "Trajectory"

var userDirPattern = regexp.MustCompile(`^[0-9]{3}$`)

// Sink receives the entities produced by a walk. Activity is called once per
// ingested trajectory file; User is called once the user's whole subtree has
// been walked, so its activity list is complete.
type Sink interface {
	Activity(ctx context.Context, activity models.Activity, points []models.TrackPoint) error
	User(ctx context.Context, user models.User) error
}

// WalkStats counts what a walk emitted
type WalkStats struct {
	Users        int64
	Activities   int64
	TrackPoints  int64
	SkippedFiles int64
}

// Walker turns a Geolife Data directory into users, activities and
// trackpoints. Identifiers come from the walker's own sequences, so separate
// walkers never share numbering.
type Walker struct {
	MaxLines int

	labeledIDs  map[string]bool
	activityIDs Sequence
	pointIDs    Sequence
	stats       WalkStats

	user          *models.User
	userDir       string
	trajectoryDir string
	reconciler    *ModeReconciler
}

// NewWalker creates a walker. labeledIDs lists the users that have labels.txt.
func NewWalker(labeledIDs map[string]bool) *Walker {
	if labeledIDs == nil {
		labeledIDs = make(map[string]bool)
	}
	return &Walker{
		MaxLines:   MaxTrajectoryLines,
		labeledIDs: labeledIDs,
	}
}

// Stats returns the counts accumulated so far
func (w *Walker) Stats() WalkStats {
	return w.stats
}

// Walk traverses root top-down in lexical order and feeds sink
func (w *Walker) Walk(ctx context.Context, root string, sink Sink) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			return w.enterDir(ctx, path, d.Name(), sink)
		}
		if !d.Type().IsRegular() || w.trajectoryDir == "" || filepath.Dir(path) != w.trajectoryDir {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return w.processFile(ctx, path, sink)
	})
	if err != nil {
		return err
	}

	return w.flushUser(ctx, sink)
}

func (w *Walker) enterDir(ctx context.Context, path, name string, sink Sink) error {
	if userDirPattern.MatchString(name) {
		if w.user != nil && isWithin(path, w.userDir) {
			return fmt.Errorf("user directory %s is nested inside user %s", path, w.user.ID)
		}
		if err := w.flushUser(ctx, sink); err != nil {
			return err
		}

		w.user = &models.User{
			ID:         name,
			HasLabels:  w.labeledIDs[name],
			Activities: []int64{},
		}
		w.userDir = path
		w.trajectoryDir = ""
		w.reconciler = nil
		log.WithFields(log.Fields{"user": name, "has_labels": w.user.HasLabels}).Info("reading user")
		return nil
	}

	if name != TrajectoryDirName {
		return nil
	}
	if w.user == nil || !isWithin(path, w.userDir) {
		return fmt.Errorf("trajectory directory %s does not belong to a user directory", path)
	}

	w.trajectoryDir = path
	w.reconciler = nil
	if w.user.HasLabels {
		labels, err := LoadLabels(filepath.Join(filepath.Dir(path), "labels.txt"))
		if err != nil {
			return fmt.Errorf("failed to load labels for user %s: %w", w.user.ID, err)
		}
		w.reconciler = NewModeReconciler(labels)
	}
	return nil
}

func (w *Walker) processFile(ctx context.Context, path string, sink Sink) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read trajectory: %w", err)
	}

	if lines := CountLines(data); lines > w.MaxLines {
		log.WithFields(log.Fields{"file": path, "lines": lines}).Debug("skipping oversized trajectory")
		w.stats.SkippedFiles++
		return nil
	}

	rows, err := ParsePLT(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		log.WithField("file", path).Warn("skipping trajectory without fixes")
		w.stats.SkippedFiles++
		return nil
	}

	first, last := rows[0], rows[len(rows)-1]
	activity := models.Activity{
		ID:            w.activityIDs.Next(),
		UserID:        w.user.ID,
		StartDateTime: first.Time,
		EndDateTime:   last.Time,
		TrackPoints:   make([]int64, 0, len(rows)),
	}
	w.reconciler.Reconcile(&activity, first.Timestamp, last.Timestamp)

	points := make([]models.TrackPoint, 0, len(rows))
	for _, row := range rows {
		id := w.pointIDs.Next()
		activity.TrackPoints = append(activity.TrackPoints, id)
		points = append(points, models.TrackPoint{
			ID:         id,
			UserID:     w.user.ID,
			ActivityID: activity.ID,
			Latitude:   row.Latitude,
			Longitude:  row.Longitude,
			Altitude:   row.Altitude,
			DateDays:   row.DateDays,
			DateTime:   row.Time,
		})
	}

	w.user.Activities = append(w.user.Activities, activity.ID)
	w.stats.Activities++
	w.stats.TrackPoints += int64(len(points))

	return sink.Activity(ctx, activity, points)
}

func (w *Walker) flushUser(ctx context.Context, sink Sink) error {
	if w.user == nil {
		return nil
	}
	user := *w.user
	w.user = nil
	w.userDir = ""
	w.trajectoryDir = ""
	w.reconciler = nil

	w.stats.Users++
	return sink.User(ctx, user)
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
