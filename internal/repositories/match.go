package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/shared"
)

const matchColumns = "id, artist, title, track_id, created_at, updated_at"

// MatchRepository implements models.Repository[*models.Match].
//
// Each row is unique on its match key, the normalized (title, artist) pair from [shared.NormalizeTrackKey].
type MatchRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Match] = (*MatchRepository)(nil)

// NewMatchRepository creates a new MatchRepository with the given database connection
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a new match with a generated ID. A second match for the same key fails.
func (r *MatchRepository) Create(match *models.Match) error {
	if err := match.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO matches (id, artist, title, match_key, track_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		match.Artist(),
		match.Title(),
		matchKey(match),
		match.TrackID(),
		match.CreatedAt(),
		match.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("match already exists for %q by %q: %w", match.Title(), match.Artist(), err)
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}

	match.SetID(id)
	return nil
}

// Upsert inserts match or, when its key is already stored, replaces that row's track ID.
//
// match carries the stored row's ID afterwards.
func (r *MatchRepository) Upsert(match *models.Match) error {
	if err := match.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO matches (id, artist, title, match_key, track_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (match_key) DO UPDATE SET
			track_id = excluded.track_id,
			updated_at = excluded.updated_at
	`

	key := matchKey(match)
	_, err := r.db.Exec(query,
		shared.GenerateID(),
		match.Artist(),
		match.Title(),
		key,
		match.TrackID(),
		match.CreatedAt(),
		match.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}

	var id string
	if err := r.db.QueryRow("SELECT id FROM matches WHERE match_key = ?", key).Scan(&id); err != nil {
		return fmt.Errorf("failed to read upserted match: %w", err)
	}
	match.SetID(id)
	return nil
}

// Get retrieves a match by ID
func (r *MatchRepository) Get(id string) (*models.Match, error) {
	row := r.db.QueryRow("SELECT "+matchColumns+" FROM matches WHERE id = ?", id)
	return scanMatch(row, id)
}

// GetByKey retrieves the match stored for a song title and artist.
func (r *MatchRepository) GetByKey(title, artist string) (*models.Match, error) {
	key := shared.NormalizeTrackKey(title, artist)
	row := r.db.QueryRow("SELECT "+matchColumns+" FROM matches WHERE match_key = ?", key)
	return scanMatch(row, key)
}

// Update replaces the track ID of an existing match
func (r *MatchRepository) Update(match *models.Match) error {
	if err := match.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	match.SetUpdatedAt(now)

	result, err := r.db.Exec("UPDATE matches SET track_id = ?, updated_at = ? WHERE id = ?", match.TrackID(), now, match.ID())
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	return checkAffected(result, "match "+match.ID())
}

// Delete removes a match by ID
func (r *MatchRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM matches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return checkAffected(result, "match "+id)
}

// List retrieves matches, newest first.
//
// Supported criteria: "artist" (exact), "track_id" (exact), "limit" (int).
func (r *MatchRepository) List(criteria map[string]any) ([]*models.Match, error) {
	query := "SELECT " + matchColumns + " FROM matches WHERE 1 = 1"
	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	if trackID, ok := criteria["track_id"].(string); ok && trackID != "" {
		query += " AND track_id = ?"
		args = append(args, trackID)
	}

	query += " ORDER BY updated_at DESC, title ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows, "")
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return matches, nil
}

// Clear deletes every match and returns how many were removed.
func (r *MatchRepository) Clear() (int64, error) {
	result, err := r.db.Exec("DELETE FROM matches")
	if err != nil {
		return 0, fmt.Errorf("failed to clear matches: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanMatch scans one row into a [models.Match]. ref names the lookup in not-found errors.
func scanMatch(s scanner, ref string) (*models.Match, error) {
	var (
		id        string
		artist    string
		title     string
		trackID   string
		createdAt time.Time
		updatedAt time.Time
	)

	err := s.Scan(&id, &artist, &title, &trackID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %s", shared.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}

	return models.RestoreMatch(id, artist, title, trackID, createdAt, updatedAt), nil
}

func matchKey(m *models.Match) string {
	return shared.NormalizeTrackKey(m.Title(), m.Artist())
}
