package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite for persistence.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate creates the necessary tables and indexes if they don't exist.
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		external_id TEXT NOT NULL,
		name TEXT NOT NULL,
		height_cm REAL DEFAULT 0,
		weight_kg REAL DEFAULT 0,
		philosophy TEXT,
		schedule_days TEXT,
		window_name TEXT,
		window_start TEXT,
		window_end TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_external_id ON profiles(external_id);
	CREATE INDEX IF NOT EXISTS idx_profiles_updated_at ON profiles(updated_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks database availability.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create inserts a new profile, assigning an internal id when missing.
func (s *SQLiteStore) Create(ctx context.Context, p *Profile) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	daysJSON, err := json.Marshal(p.Schedule.Days)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schedule days: %w", err)
	}

	query := `
		INSERT INTO profiles (id, external_id, name, height_cm, weight_kg, philosophy,
			schedule_days, window_name, window_start, window_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.ExternalID, p.Name, p.HeightCm, p.WeightKg, p.Philosophy,
		string(daysJSON), p.Schedule.Window.Name, p.Schedule.Window.Start,
		p.Schedule.Window.End, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}

	return p, nil
}

// GetByID retrieves a profile by internal id.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getWhere(ctx, "id = ?", id)
}

// GetByExternalID retrieves a profile by platform identity.
func (s *SQLiteStore) GetByExternalID(ctx context.Context, externalID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getWhere(ctx, "external_id = ?", externalID)
}

func (s *SQLiteStore) getWhere(ctx context.Context, where string, arg any) (*Profile, error) {
	query := `
		SELECT id, external_id, name, height_cm, weight_kg, philosophy,
			schedule_days, window_name, window_start, window_end, created_at, updated_at
		FROM profiles WHERE ` + where

	var p Profile
	var daysJSON string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.ExternalID, &p.Name, &p.HeightCm, &p.WeightKg, &p.Philosophy,
		&daysJSON, &p.Schedule.Window.Name, &p.Schedule.Window.Start,
		&p.Schedule.Window.End, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if daysJSON != "" {
		if err := json.Unmarshal([]byte(daysJSON), &p.Schedule.Days); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schedule days: %w", err)
		}
	}
	return &p, nil
}

// UpdateSchedule applies a partial schedule update and returns the fresh
// profile.
func (s *SQLiteStore) UpdateSchedule(ctx context.Context, id string, patch SchedulePatch) (*Profile, error) {
	s.mu.Lock()

	current, err := s.getWhere(ctx, "id = ?", id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	days := current.Schedule.Days
	if patch.Days != nil {
		days = patch.Days
	}
	window := current.Schedule.Window
	if patch.Window != nil {
		window = *patch.Window
	}

	daysJSON, err := json.Marshal(days)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to marshal schedule days: %w", err)
	}

	query := `
		UPDATE profiles
		SET schedule_days = ?, window_name = ?, window_start = ?, window_end = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = s.db.ExecContext(ctx, query,
		string(daysJSON), window.Name, window.Start, window.End, time.Now(), id,
	)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	return s.GetByID(ctx, id)
}

// ListWithSchedule returns every profile that has at least one training day,
// for the reminder scheduler.
func (s *SQLiteStore) ListWithSchedule(ctx context.Context) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, external_id, name, height_cm, weight_kg, philosophy,
			schedule_days, window_name, window_start, window_end, created_at, updated_at
		FROM profiles
		WHERE schedule_days IS NOT NULL AND schedule_days != '' AND schedule_days != 'null'
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		var daysJSON string
		if err := rows.Scan(
			&p.ID, &p.ExternalID, &p.Name, &p.HeightCm, &p.WeightKg, &p.Philosophy,
			&daysJSON, &p.Schedule.Window.Name, &p.Schedule.Window.Start,
			&p.Schedule.Window.End, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		if daysJSON != "" {
			if err := json.Unmarshal([]byte(daysJSON), &p.Schedule.Days); err != nil {
				return nil, fmt.Errorf("failed to unmarshal schedule days: %w", err)
			}
		}
		if len(p.Schedule.Days) == 0 {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
