package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travel-predict-system/models"
)

// newBareDB opens an isolated in-memory database pinned to a single
// connection so the schema survives connection pooling.
func newBareDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// newTestDB creates the schema with plain DDL. The production schema comes
// from AutoMigrate against Postgres; here the column defaults are spelled out
// so the same models work on SQLite.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newBareDB(t)
	ddl := []string{
		`CREATE TABLE users (
			id text PRIMARY KEY,
			username text NOT NULL UNIQUE,
			display_name text NOT NULL,
			is_admin numeric DEFAULT false,
			created_at datetime,
			updated_at datetime,
			deleted_at datetime
		)`,
		`CREATE TABLE series (
			id text PRIMARY KEY,
			name text NOT NULL,
			slug text NOT NULL UNIQUE,
			description text,
			start_date_utc datetime,
			end_date_utc datetime,
			is_locked numeric DEFAULT false,
			created_by text,
			created_at datetime,
			updated_at datetime,
			deleted_at datetime
		)`,
		`CREATE TABLE series_members (
			id text PRIMARY KEY,
			series_id text NOT NULL,
			user_id text NOT NULL,
			joined_at datetime,
			UNIQUE (series_id, user_id)
		)`,
		`CREATE TABLE matches (
			id text PRIMARY KEY,
			series_id text NOT NULL,
			name text NOT NULL,
			sport text,
			team_a text NOT NULL,
			team_b text NOT NULL,
			start_time_utc datetime NOT NULL,
			cutoff_mins integer DEFAULT 30,
			entry_points real DEFAULT 50,
			status text DEFAULT 'scheduled',
			winner text,
			declared_at datetime,
			created_at datetime,
			updated_at datetime,
			deleted_at datetime
		)`,
		`CREATE TABLE predictions (
			id text PRIMARY KEY,
			match_id text NOT NULL,
			user_id text NOT NULL,
			picked_team text NOT NULL,
			predicted_at_utc datetime NOT NULL,
			UNIQUE (match_id, user_id)
		)`,
		`CREATE TABLE ledger_entries (
			id text PRIMARY KEY,
			user_id text NOT NULL,
			match_id text NOT NULL,
			series_id text NOT NULL,
			points real NOT NULL,
			reason text NOT NULL,
			note text,
			created_at datetime,
			UNIQUE (match_id, user_id)
		)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedSeriesWithMembers(t *testing.T, db *gorm.DB, seriesID string, userIDs ...string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Series{
		ID:           seriesID,
		Name:         "Winter Tour",
		Slug:         "winter-tour-" + seriesID,
		StartDateUTC: time.Now().UTC(),
	}).Error)
	for i, uid := range userIDs {
		require.NoError(t, db.Create(&models.SeriesMember{
			ID:       seriesID + "-m" + uid,
			SeriesID: seriesID,
			UserID:   uid,
			JoinedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}).Error)
	}
}

func seedMatch(t *testing.T, db *gorm.DB, id, seriesID string, start time.Time) models.Match {
	t.Helper()
	m := models.Match{
		ID:           id,
		SeriesID:     seriesID,
		Name:         "Travel " + id,
		Sport:        "Travels",
		TeamA:        "Red Rockets",
		TeamB:        "Blue Bisons",
		StartTimeUTC: start.UTC(),
		CutoffMins:   30,
		EntryPoints:  50,
		Status:       models.MatchStatusScheduled,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}
