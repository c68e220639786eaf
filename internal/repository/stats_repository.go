package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/geolife-backend-go/internal/models"
)

// StatsRepository runs the grouping queries over activities
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// TopUsersByActivityCount counts activities per user, largest first
func (r *StatsRepository) TopUsersByActivityCount(ctx context.Context, limit int) ([]models.UserActivityCount, error) {
	query := `SELECT user_id, COUNT(*) AS n
		FROM activities
		GROUP BY user_id
		ORDER BY n DESC, user_id
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to count activities per user: %w", err)
	}
	defer rows.Close()

	var result []models.UserActivityCount
	for rows.Next() {
		var c models.UserActivityCount
		if err := rows.Scan(&c.UserID, &c.Activities); err != nil {
			return nil, fmt.Errorf("failed to scan user activity count: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ModeCounts counts activities per transportation mode, largest first.
// Activities without a mode are left out.
func (r *StatsRepository) ModeCounts(ctx context.Context) ([]models.ModeCount, error) {
	query := `SELECT transportation_mode, COUNT(*) AS n
		FROM activities
		WHERE transportation_mode IS NOT NULL
		GROUP BY transportation_mode
		ORDER BY n DESC, transportation_mode`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count modes: %w", err)
	}
	defer rows.Close()

	var result []models.ModeCount
	for rows.Next() {
		var c models.ModeCount
		if err := rows.Scan(&c.Mode, &c.Activities); err != nil {
			return nil, fmt.Errorf("failed to scan mode count: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ModeCountsByUser counts activities per (user, mode), ordered by user, then
// count descending, then mode
func (r *StatsRepository) ModeCountsByUser(ctx context.Context) ([]models.UserModeCount, error) {
	query := `SELECT user_id, transportation_mode, COUNT(*) AS n
		FROM activities
		WHERE transportation_mode IS NOT NULL
		GROUP BY user_id, transportation_mode
		ORDER BY user_id, n DESC, transportation_mode`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count modes per user: %w", err)
	}
	defer rows.Close()

	var result []models.UserModeCount
	for rows.Next() {
		var c models.UserModeCount
		if err := rows.Scan(&c.UserID, &c.Mode, &c.Activities); err != nil {
			return nil, fmt.Errorf("failed to scan user mode count: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// YearActivityCounts counts activities per calendar year of their start,
// largest first
func (r *StatsRepository) YearActivityCounts(ctx context.Context, limit int) ([]models.YearActivityCount, error) {
	query := `SELECT CAST(substr(start_date_time, 1, 4) AS INTEGER) AS year, COUNT(*) AS n
		FROM activities
		GROUP BY year
		ORDER BY n DESC, year
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to count activities per year: %w", err)
	}
	defer rows.Close()

	var result []models.YearActivityCount
	for rows.Next() {
		var c models.YearActivityCount
		if err := rows.Scan(&c.Year, &c.Activities); err != nil {
			return nil, fmt.Errorf("failed to scan year count: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// YearHours sums recorded hours per calendar year of the activity start,
// largest first
func (r *StatsRepository) YearHours(ctx context.Context, limit int) ([]models.YearHours, error) {
	query := `SELECT CAST(substr(start_date_time, 1, 4) AS INTEGER) AS year,
			SUM((julianday(end_date_time) - julianday(start_date_time)) * 24.0) AS hours
		FROM activities
		GROUP BY year
		ORDER BY hours DESC, year
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to sum hours per year: %w", err)
	}
	defer rows.Close()

	var result []models.YearHours
	for rows.Next() {
		var h models.YearHours
		if err := rows.Scan(&h.Year, &h.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan year hours: %w", err)
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// sqlLimit maps a non-positive limit to SQLite's "no limit"
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
