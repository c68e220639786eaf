package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "nested", "geolife.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestMigrateUpCreatesTables(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.MigrateUp())
	for _, table := range []string{"users", "activities", "track_points", "ingestion_runs"} {
		assert.True(t, tableExists(t, db, table), table)
	}

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Already current
	assert.NoError(t, db.MigrateUp())
}

func TestMigrateDownDropsTables(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.MigrateUp())

	require.NoError(t, db.MigrateDown())
	for _, table := range []string{"users", "activities", "track_points", "ingestion_runs"} {
		assert.False(t, tableExists(t, db, table), table)
	}

	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Zero(t, version)

	// Nothing left to drop
	assert.NoError(t, db.MigrateDown())
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.MigrateUp())

	boom := errors.New("boom")
	err := Transaction(context.Background(), db.DB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO users (id, has_labels) VALUES ('010', 1)`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Zero(t, n)
}

func TestTransactionCommits(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.MigrateUp())

	err := Transaction(context.Background(), db.DB, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO users (id, has_labels) VALUES ('010', 1)`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)
}
