package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/geolife-backend-go/internal/database"
	"github.com/jengzang/geolife-backend-go/internal/models"
)

// ActivityRepository handles database operations for activities
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// InsertActivities inserts a batch of activities in one transaction
func (r *ActivityRepository) InsertActivities(ctx context.Context, activities []models.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO activities
			(id, user_id, transportation_mode, start_date_time, end_date_time)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, a := range activities {
			var mode sql.NullString
			if a.TransportationMode != nil {
				mode = sql.NullString{String: *a.TransportationMode, Valid: true}
			}
			_, err := stmt.ExecContext(ctx, a.ID, a.UserID, mode, formatTime(a.StartDateTime), formatTime(a.EndDateTime))
			if err != nil {
				return fmt.Errorf("failed to insert activity %d: %w", a.ID, err)
			}
		}
		return nil
	})
}

// FindActivities retrieves activities matching the filter, sorted by id
func (r *ActivityRepository) FindActivities(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	query := `SELECT id, user_id, transportation_mode, start_date_time, end_date_time FROM activities`

	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Mode != "" {
		conditions = append(conditions, "transportation_mode = ?")
		args = append(args, filter.Mode)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var (
			a          models.Activity
			mode       sql.NullString
			start, end string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &mode, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if mode.Valid {
			m := mode.String
			a.TransportationMode = &m
		}
		if a.StartDateTime, err = parseTime(start); err != nil {
			return nil, err
		}
		if a.EndDateTime, err = parseTime(end); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, nil
}
