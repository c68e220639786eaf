package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jengzang/geolife-backend-go/internal/database"
	"github.com/jengzang/geolife-backend-go/internal/models"
)

// timeLayout is how timestamps are stored; it sorts lexically
const timeLayout = "2006-01-02 15:04:05"

// maxInArgs bounds the placeholders of one IN clause
const maxInArgs = 500

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// UserRepository handles database operations for users
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// InsertUsers inserts a batch of users in one transaction
func (r *UserRepository) InsertUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}

	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO users (id, has_labels) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, u := range users {
			if _, err := stmt.ExecContext(ctx, u.ID, u.HasLabels); err != nil {
				return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
			}
		}
		return nil
	})
}

// FindUsersOwningActivities returns the users owning any of the given
// activities, sorted by id. Activities of the returned users are not loaded.
func (r *UserRepository) FindUsersOwningActivities(ctx context.Context, activityIDs []int64) ([]models.User, error) {
	seen := make(map[string]bool)
	var users []models.User

	for start := 0; start < len(activityIDs); start += maxInArgs {
		end := start + maxInArgs
		if end > len(activityIDs) {
			end = len(activityIDs)
		}
		chunk := activityIDs[start:end]

		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		query := `SELECT DISTINCT u.id, u.has_labels
			FROM users u
			JOIN activities a ON a.user_id = u.id
			WHERE a.id IN (?` + strings.Repeat(", ?", len(chunk)-1) + `)
			ORDER BY u.id`

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query users: %w", err)
		}
		for rows.Next() {
			var u models.User
			if err := rows.Scan(&u.ID, &u.HasLabels); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan user: %w", err)
			}
			if !seen[u.ID] {
				seen[u.ID] = true
				users = append(users, u)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
	}

	sortUsers(users)
	return users, nil
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}
