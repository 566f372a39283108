// package flo is the FLO catalog adaptor consumed by a playlist-migration host.
//
// An [Adaptor] bundles three capabilities:
//   - FindSongID resolves a song from another catalog to a FLO track ID (delegated to a [TrackFinder])
//   - GetPlaylistContent reads a public FLO playlist URL into a [models.Playlist] ([Transcriber])
//   - GenerateURL publishes a [models.Playlist] to FLO and returns its public URL ([Publisher])
//
// Collaborators are interfaces so tests and hosts can substitute them. [services.FloService]
// implements [PlaylistStore] against the live API.
package flo

import (
	"context"
	_ "embed"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flox/internal/codec"
	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/services"
	"github.com/desertthunder/flox/internal/shared"
)

// PublicURLBase prefixes the encoded playlist ID in shareable URLs.
const PublicURLBase = "https://www.music-flo.com/detail/openplaylist/"

const (
	displayName  = "플로"
	displayColor = "#3F3FFF"
)

//go:embed logo.svg
var logoSVG string

// PlaylistStore is FLO's playlist storage as seen by the adaptor.
type PlaylistStore interface {
	// ResolveURL follows a public URL's redirects and returns the final path.
	ResolveURL(ctx context.Context, rawURL string) (string, error)
	// Playlist fetches a playlist's detail by internal ID.
	Playlist(ctx context.Context, id uint64) (*services.FloPlaylist, error)
	// CreatePlaylist creates a playlist and returns its internal ID.
	CreatePlaylist(ctx context.Context, accessToken string, req services.CreatePlaylistRequest) (uint64, error)
}

// TokenProvider supplies the access token for authenticated calls.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// TrackFinder resolves a song to a FLO track ID.
type TrackFinder interface {
	FindSongID(ctx context.Context, song models.Song) (string, bool, error)
}

// Adaptor implements [models.Adaptor] for FLO.
type Adaptor struct {
	finder      TrackFinder
	transcriber *Transcriber
	publisher   *Publisher
}

var _ models.Adaptor = (*Adaptor)(nil)

type adaptorConfig struct {
	codec   *codec.Codec
	logger  *log.Logger
	publish PublishOptions
}

// Option configures an [Adaptor].
type Option func(*adaptorConfig)

// WithCodec replaces the default playlist ID codec.
func WithCodec(c *codec.Codec) Option {
	return func(cfg *adaptorConfig) { cfg.codec = c }
}

// WithLogger sets the logger shared by the transcriber and publisher.
func WithLogger(l *log.Logger) Option {
	return func(cfg *adaptorConfig) { cfg.logger = l }
}

// WithPublishOptions sets publisher behavior.
func WithPublishOptions(o PublishOptions) Option {
	return func(cfg *adaptorConfig) { cfg.publish = o }
}

// NewAdaptor wires the adaptor from its collaborators.
func NewAdaptor(store PlaylistStore, finder TrackFinder, tokens TokenProvider, opts ...Option) *Adaptor {
	cfg := adaptorConfig{codec: codec.Default(), logger: shared.DiscardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Adaptor{
		finder:      finder,
		transcriber: NewTranscriber(store, cfg.codec, cfg.logger),
		publisher:   NewPublisher(store, tokens, cfg.codec, cfg.logger, cfg.publish),
	}
}

func (a *Adaptor) FindSongID(ctx context.Context, song models.Song) (string, bool, error) {
	return a.finder.FindSongID(ctx, song)
}

func (a *Adaptor) GetPlaylistContent(ctx context.Context, url string) (models.Playlist, error) {
	return a.transcriber.GetPlaylistContent(ctx, url)
}

func (a *Adaptor) GenerateURL(ctx context.Context, playlist models.Playlist) (string, error) {
	return a.publisher.GenerateURL(ctx, playlist)
}

// Determinator returns the tags a host matches playlist URLs against.
func (a *Adaptor) Determinator() []string {
	return []string{models.ChannelFLO}
}

func (a *Adaptor) Display() models.Display {
	return models.Display{Name: displayName, Color: displayColor, Logo: logoSVG}
}

// Matches reports whether url contains one of the adaptor's determinator tags.
func (a *Adaptor) Matches(url string) bool {
	for _, tag := range a.Determinator() {
		if strings.Contains(url, tag) {
			return true
		}
	}
	return false
}
