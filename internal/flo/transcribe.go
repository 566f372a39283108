package flo

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flox/internal/codec"
	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/shared"
)

// idSegment is the index of the encoded playlist ID in the resolved path
// ("/detail/openplaylist/{id}" splits into "", "detail", "openplaylist", id).
const idSegment = 3

// Transcriber reads public FLO playlists into [models.Playlist].
type Transcriber struct {
	store  PlaylistStore
	codec  *codec.Codec
	logger *log.Logger
}

func NewTranscriber(store PlaylistStore, c *codec.Codec, logger *log.Logger) *Transcriber {
	if c == nil {
		c = codec.Default()
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Transcriber{store: store, codec: c, logger: logger}
}

// GetPlaylistContent resolves url to a playlist ID, fetches the playlist and normalizes it.
//
// Every failure wraps [shared.ErrTranscription]; no partial playlist is returned.
func (t *Transcriber) GetPlaylistContent(ctx context.Context, url string) (models.Playlist, error) {
	id, err := t.PlaylistID(ctx, url)
	if err != nil {
		return models.Playlist{}, err
	}

	raw, err := t.store.Playlist(ctx, id)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("%w: failed to fetch playlist %d: %w", shared.ErrTranscription, id, err)
	}

	tracks := make([]models.Song, 0, len(raw.Tracks))
	for _, tr := range raw.Tracks {
		tracks = append(tracks, models.Song{
			Name:       tr.Name,
			Artist:     tr.Artist,
			ChannelIDs: map[string]string{models.ChannelFLO: tr.ID},
		})
	}

	t.logger.Debug("transcribed FLO playlist", "id", id, "name", raw.Name, "tracks", len(tracks))

	return models.Playlist{
		Name:         raw.Name,
		Description:  raw.Description,
		PreGenerated: map[string]string{models.ChannelFLO: url},
		Tracks:       tracks,
	}, nil
}

// PlaylistID follows url's redirects and decodes the playlist ID from the final path.
func (t *Transcriber) PlaylistID(ctx context.Context, url string) (uint64, error) {
	path, err := t.store.ResolveURL(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to resolve %s: %w", shared.ErrTranscription, url, err)
	}

	segments := strings.Split(path, "/")
	if len(segments) <= idSegment || segments[idSegment] == "" {
		return 0, fmt.Errorf("%w: path %q has no playlist segment", shared.ErrTranscription, path)
	}

	id, err := t.codec.Decode(segments[idSegment])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", shared.ErrTranscription, err)
	}
	return id, nil
}
