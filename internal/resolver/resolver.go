// package resolver finds the FLO track matching a song from another catalog.
//
// Resolution walks an ordered list of [Strategy] values. Each step issues one search and inspects
// the first "TRACK" result group; the first step with a non-empty group wins. Steps run strictly
// in sequence and a transport failure aborts the chain instead of being treated as a miss.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/shared"
)

// TrackGroupType tags the search result group holding tracks.
const TrackGroupType = "TRACK"

// Searcher runs a keyword search against the catalog.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchGroup, error)
}

// MatchCache remembers previous resolutions. Implementations must tolerate concurrent use.
type MatchCache interface {
	Lookup(artist, title string) (string, bool)
	Store(artist, title, trackID string) error
}

// OutcomeKind classifies a single search attempt.
type OutcomeKind int

const (
	Miss OutcomeKind = iota
	Hit
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Hit:
		return "hit"
	case Failed:
		return "failed"
	default:
		return "miss"
	}
}

// Outcome is the result of one attempt. ID is set for [Hit]; Err explains a [Miss] or [Failed].
type Outcome struct {
	Kind OutcomeKind
	ID   string
	Err  error
}

// Step pairs a strategy with the query it produced.
type Step struct {
	Strategy string
	Query    Query
}

// Resolver implements FindSongID over a [Searcher].
type Resolver struct {
	searcher   Searcher
	strategies []Strategy
	cache      MatchCache
	logger     *log.Logger
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithStrategies replaces [DefaultStrategies].
func WithStrategies(s ...Strategy) Option {
	return func(r *Resolver) { r.strategies = s }
}

// WithCache consults c before searching and records hits in it.
func WithCache(c MatchCache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithLogger sets the logger used for miss diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver searching through s.
func New(s Searcher, opts ...Option) *Resolver {
	r := &Resolver{searcher: s, strategies: DefaultStrategies()}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = shared.DiscardLogger()
	}
	return r
}

// Plan returns the queries FindSongID would issue for song, in order.
func (r *Resolver) Plan(song models.Song) []Step {
	q := Query{Artist: song.Artist, Title: song.Name}
	steps := make([]Step, 0, len(r.strategies))
	for _, s := range r.strategies {
		next, ok := s.Apply(q)
		if !ok {
			continue
		}
		q = next
		steps = append(steps, Step{Strategy: s.Name, Query: q})
	}
	return steps
}

// FindSongID returns the FLO track ID for song.
//
// ok is false when every step missed; that case is logged and is not an error.
// err is non-nil only for transport failures or a cancelled context.
func (r *Resolver) FindSongID(ctx context.Context, song models.Song) (string, bool, error) {
	if r.cache != nil {
		if id, found := r.cache.Lookup(song.Artist, song.Name); found {
			r.logger.Debug("match cache hit", "artist", song.Artist, "title", song.Name, "id", id)
			return id, true, nil
		}
	}

	var last Outcome
	for _, step := range r.Plan(song) {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		last = r.attempt(ctx, step.Query)
		switch last.Kind {
		case Hit:
			r.logger.Debug("matched track", "strategy", step.Strategy, "query", step.Query.String(), "id", last.ID)
			r.remember(song, last.ID)
			return last.ID, true, nil
		case Failed:
			return "", false, last.Err
		}
	}

	r.logger.Warn("missed match on FLO", "artist", song.Artist, "title", song.Name, "error", last.Err)
	return "", false, nil
}

// attempt runs a single search and classifies the result.
func (r *Resolver) attempt(ctx context.Context, q Query) Outcome {
	groups, err := r.searcher.Search(ctx, q.String())
	switch {
	case err == nil:
		return FirstTrack(groups)
	case errors.Is(err, shared.ErrTransport), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Outcome{Kind: Failed, Err: err}
	default:
		return Outcome{Kind: Failed, Err: fmt.Errorf("%w: search %q: %w", shared.ErrTransport, q.String(), err)}
	}
}

func (r *Resolver) remember(song models.Song, id string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Store(song.Artist, song.Name, id); err != nil {
		r.logger.Warn("failed to cache match", "artist", song.Artist, "title", song.Name, "error", err)
	}
}

// FirstTrack picks the first entry of the first [TrackGroupType] group.
func FirstTrack(groups []models.SearchGroup) Outcome {
	for _, g := range groups {
		if g.Type != TrackGroupType {
			continue
		}
		if len(g.Entries) == 0 || g.Entries[0].ID == "" {
			return Outcome{Kind: Miss, Err: fmt.Errorf("%w: empty track group", shared.ErrNotFound)}
		}
		return Outcome{Kind: Hit, ID: g.Entries[0].ID}
	}
	return Outcome{Kind: Miss, Err: fmt.Errorf("%w: no track group in results", shared.ErrNotFound)}
}
