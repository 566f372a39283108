// package models defines the data model shared by the FLO adaptor and its host
package models

import (
	"context"
	"time"
)

// ChannelFLO is the catalog name used as the key in [Song.ChannelIDs] and [Playlist.PreGenerated].
const ChannelFLO = "flo"

// Song is a single track with cross-catalog neutral metadata.
//
// ChannelIDs maps a catalog name to that catalog's track identifier.
type Song struct {
	Name       string            `json:"name"`
	Artist     string            `json:"artist"`
	ChannelIDs map[string]string `json:"channelIds"`
}

// ChannelID returns the song's identifier in the given catalog.
func (s Song) ChannelID(channel string) (string, bool) {
	id, ok := s.ChannelIDs[channel]
	return id, ok && id != ""
}

// WithChannelID returns a copy of the song with the catalog identifier set.
func (s Song) WithChannelID(channel, id string) Song {
	c := s.Clone()
	if c.ChannelIDs == nil {
		c.ChannelIDs = make(map[string]string, 1)
	}
	c.ChannelIDs[channel] = id
	return c
}

// Clone returns a deep copy of the song.
func (s Song) Clone() Song {
	c := s
	if s.ChannelIDs != nil {
		c.ChannelIDs = make(map[string]string, len(s.ChannelIDs))
		for k, v := range s.ChannelIDs {
			c.ChannelIDs[k] = v
		}
	}
	return c
}

// Playlist is a normalized playlist. Track order is significant.
//
// PreGenerated maps a catalog name to a URL where this playlist already exists in that catalog.
type Playlist struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	PreGenerated map[string]string `json:"preGenerated"`
	Tracks       []Song            `json:"tracks"`
}

// Clone returns a deep copy of the playlist.
func (p Playlist) Clone() Playlist {
	c := p
	if p.PreGenerated != nil {
		c.PreGenerated = make(map[string]string, len(p.PreGenerated))
		for k, v := range p.PreGenerated {
			c.PreGenerated[k] = v
		}
	}
	if p.Tracks != nil {
		c.Tracks = make([]Song, len(p.Tracks))
		for i, s := range p.Tracks {
			c.Tracks[i] = s.Clone()
		}
	}
	return c
}

// SearchEntry is a single item inside a [SearchGroup].
type SearchEntry struct {
	ID     string
	Name   string
	Artist string
}

// SearchGroup is one ranked group of search results, tagged by result kind (e.g. "TRACK").
type SearchGroup struct {
	Type    string
	Entries []SearchEntry
}

// Display is static presentation metadata for an adaptor.
type Display struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Logo  string `json:"logo"`
}

// Adaptor is the capability set a host migration tool consumes from a catalog plugin.
type Adaptor interface {
	// FindSongID resolves the catalog's identifier for a song from another catalog.
	// ok is false when no match was found; err is reserved for real failures.
	FindSongID(ctx context.Context, song Song) (id string, ok bool, err error)

	// GetPlaylistContent reads a public playlist URL into a normalized [Playlist].
	GetPlaylistContent(ctx context.Context, url string) (Playlist, error)

	// GenerateURL publishes a playlist to the catalog and returns its public URL.
	GenerateURL(ctx context.Context, playlist Playlist) (string, error)

	// Determinator returns the URL-pattern tags the host routes on.
	Determinator() []string

	// Display returns presentation metadata.
	Display() Display
}

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}
