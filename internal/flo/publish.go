package flo

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flox/internal/codec"
	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/services"
	"github.com/desertthunder/flox/internal/shared"
)

// PublishOptions controls [Publisher] behavior.
type PublishOptions struct {
	// ReusePreGenerated returns the playlist's existing FLO URL instead of creating a copy.
	ReusePreGenerated bool
}

// Publisher creates FLO playlists from [models.Playlist] values.
type Publisher struct {
	store  PlaylistStore
	tokens TokenProvider
	codec  *codec.Codec
	logger *log.Logger
	opts   PublishOptions
}

func NewPublisher(store PlaylistStore, tokens TokenProvider, c *codec.Codec, logger *log.Logger, opts PublishOptions) *Publisher {
	if c == nil {
		c = codec.Default()
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Publisher{store: store, tokens: tokens, codec: c, logger: logger, opts: opts}
}

// GenerateURL publishes playlist and returns its public URL.
//
// Every track must already carry a FLO ID; otherwise [shared.ErrMissingIdentifier] is returned
// before signing in. Sign-in failures surface as [shared.ErrAuthentication] and store rejections
// as [shared.ErrPublish].
func (p *Publisher) GenerateURL(ctx context.Context, playlist models.Playlist) (string, error) {
	if p.opts.ReusePreGenerated {
		if existing := playlist.PreGenerated[models.ChannelFLO]; existing != "" {
			p.logger.Debug("reusing pre-generated FLO playlist", "url", existing)
			return existing, nil
		}
	}

	req, err := NewCreateRequest(playlist)
	if err != nil {
		return "", err
	}

	token, err := p.tokens.GetToken(ctx)
	if err != nil {
		return "", err
	}

	id, err := p.store.CreatePlaylist(ctx, token, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrPublish, err)
	}

	p.logger.Debug("FLO playlist created", "id", id, "name", req.Name, "tracks", len(req.TrackList))

	return p.URL(id), nil
}

// URL formats the public URL of playlist id.
func (p *Publisher) URL(id uint64) string {
	return PublicURLBase + p.codec.Encode(id)
}

// NewCreateRequest builds the create-playlist body, failing on the first track without a FLO ID.
func NewCreateRequest(playlist models.Playlist) (services.CreatePlaylistRequest, error) {
	req := services.CreatePlaylistRequest{
		Description: playlist.Description,
		Name:        playlist.Name,
		PublishYn:   "Y",
		TrackList:   make([]services.NewTrack, 0, len(playlist.Tracks)),
	}

	for i, song := range playlist.Tracks {
		id, ok := song.ChannelID(models.ChannelFLO)
		if !ok {
			return services.CreatePlaylistRequest{}, fmt.Errorf("%w: track %d (%s - %s)", shared.ErrMissingIdentifier, i, song.Artist, song.Name)
		}
		req.TrackList = append(req.TrackList, services.NewTrack{NewYn: "Y", TrackID: id})
	}
	return req, nil
}
