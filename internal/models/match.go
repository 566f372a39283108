package models

import (
	"fmt"
	"strings"
	"time"
)

// Match is a cached track resolution: an (artist, title) query that resolved to a FLO track.
type Match struct {
	id        string
	artist    string
	title     string
	trackID   string
	createdAt time.Time
	updatedAt time.Time
}

// NewMatch creates a Match with timestamps set to now. The ID is assigned on insert.
func NewMatch(artist, title, trackID string) *Match {
	now := time.Now()
	return &Match{
		artist:    artist,
		title:     title,
		trackID:   trackID,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreMatch rebuilds a Match from stored columns.
func RestoreMatch(id, artist, title, trackID string, createdAt, updatedAt time.Time) *Match {
	return &Match{
		id:        id,
		artist:    artist,
		title:     title,
		trackID:   trackID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (m *Match) ID() string { return m.id }
func (m *Match) Artist() string { return m.artist }
func (m *Match) Title() string { return m.title }
func (m *Match) TrackID() string { return m.trackID }
func (m *Match) CreatedAt() time.Time { return m.createdAt }
func (m *Match) UpdatedAt() time.Time { return m.updatedAt }

func (m *Match) SetID(id string) { m.id = id }
func (m *Match) SetTrackID(trackID string) { m.trackID = trackID }
func (m *Match) SetUpdatedAt(t time.Time) { m.updatedAt = t }

// Validate requires a title and a track ID. Artist may be empty (title-only searches).
func (m *Match) Validate() error {
	if strings.TrimSpace(m.title) == "" {
		return fmt.Errorf("match title is required")
	}
	if strings.TrimSpace(m.trackID) == "" {
		return fmt.Errorf("match track ID is required")
	}
	return nil
}
