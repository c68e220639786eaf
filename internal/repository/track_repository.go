package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/geolife-backend-go/internal/database"
	"github.com/jengzang/geolife-backend-go/internal/models"
)

const trackPointColumns = `id, user_id, activity_id, lat, lon, altitude, date_days, date_time`

// TrackRepository handles database operations for track points
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// InsertTrackPoints inserts a batch of track points in one transaction
func (r *TrackRepository) InsertTrackPoints(ctx context.Context, points []models.TrackPoint) error {
	if len(points) == 0 {
		return nil
	}

	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO track_points (`+trackPointColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			_, err := stmt.ExecContext(ctx, p.ID, p.UserID, p.ActivityID, p.Latitude, p.Longitude,
				p.Altitude, p.DateDays, formatTime(p.DateTime))
			if err != nil {
				return fmt.Errorf("failed to insert track point %d: %w", p.ID, err)
			}
		}
		return nil
	})
}

// StreamTrackPoints calls fn for every matching track point in the requested
// order. The cursor is closed on every return path; an error from fn stops
// the pass and is returned unchanged.
func (r *TrackRepository) StreamTrackPoints(ctx context.Context, q models.TrackPointQuery, fn func(models.TrackPoint) error) error {
	query := `SELECT ` + trackPointColumns + ` FROM track_points`

	var conditions []string
	var args []interface{}

	if q.ActivityID != 0 {
		conditions = append(conditions, "activity_id = ?")
		args = append(args, q.ActivityID)
	}
	if q.ExcludeUnknownAltitude {
		conditions = append(conditions, "altitude != ?")
		args = append(args, models.SentinelAltitude)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	switch q.Order {
	case models.OrderByTime:
		query += " ORDER BY date_time, id"
	default:
		query += " ORDER BY user_id, activity_id, date_time, id"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query track points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanTrackPoint(rows)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate track points: %w", err)
	}

	return nil
}

// FindTrackPointsInBox retrieves the track points inside box. A non-zero year
// restricts the result to fixes recorded in that calendar year.
func (r *TrackRepository) FindTrackPointsInBox(ctx context.Context, box models.BoundingBox, year int) ([]models.TrackPoint, error) {
	query := `SELECT ` + trackPointColumns + ` FROM track_points
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?`
	args := []interface{}{box.MinLat, box.MaxLat, box.MinLon, box.MaxLon}

	if year != 0 {
		query += " AND substr(date_time, 1, 4) = ?"
		args = append(args, fmt.Sprintf("%04d", year))
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track points in box: %w", err)
	}
	defer rows.Close()

	var points []models.TrackPoint
	for rows.Next() {
		p, err := scanTrackPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate track points: %w", err)
	}

	return points, nil
}

func scanTrackPoint(rows *sql.Rows) (models.TrackPoint, error) {
	var (
		p  models.TrackPoint
		ts string
	)
	err := rows.Scan(&p.ID, &p.UserID, &p.ActivityID, &p.Latitude, &p.Longitude,
		&p.Altitude, &p.DateDays, &ts)
	if err != nil {
		return models.TrackPoint{}, fmt.Errorf("failed to scan track point: %w", err)
	}
	if p.DateTime, err = parseTime(ts); err != nil {
		return models.TrackPoint{}, err
	}
	return p, nil
}
