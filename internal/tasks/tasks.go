// package tasks implements the planning step that prepares a playlist for FLO.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultRateLimit is the default number of track resolutions per second.
const DefaultRateLimit = 5.0

// TrackFinder resolves a song to a FLO track ID.
type TrackFinder interface {
	FindSongID(ctx context.Context, song models.Song) (string, bool, error)
}

// Publisher publishes a playlist and returns its public URL.
type Publisher interface {
	GenerateURL(ctx context.Context, playlist models.Playlist) (string, error)
}

// TrackMatch is a track resolved during planning.
type TrackMatch struct {
	Index int         // Position in the source playlist
	Song  models.Song // Source song
	ID    string      // Resolved FLO track ID
}

// MissedTrack is a track that could not be resolved.
type MissedTrack struct {
	Index int
	Song  models.Song
}

// PlanResult contains the publishable playlist and what happened to each track.
type PlanResult struct {
	Playlist models.Playlist // Source playlist reduced to tracks with a FLO ID, order preserved
	Kept     int             // Tracks that already had a FLO ID
	Resolved []TrackMatch    // Tracks resolved by search
	Missing  []MissedTrack   // Tracks dropped because no match was found
	Total    int             // Tracks in the source playlist
}

// MatchPercentage is the share of source tracks present in the planned playlist.
func (r *PlanResult) MatchPercentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Kept+len(r.Resolved)) / float64(r.Total) * 100
}

// RunResult contains the plan and the published URL.
type RunResult struct {
	Plan *PlanResult
	URL  string
}

// PlannerOpts configures a [Planner].
type PlannerOpts struct {
	RateLimit float64 // Resolutions per second (default: 5)
	Logger    *log.Logger
}

// Planner resolves playlists track by track.
type Planner struct {
	finder  TrackFinder
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewPlanner creates a Planner over finder.
func NewPlanner(finder TrackFinder, opts PlannerOpts) *Planner {
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &Planner{
		finder:  finder,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:  opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (p *Planner) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Plan resolves every track of playlist that lacks a FLO ID.
//
// The input playlist is not modified. Tracks are processed strictly in order; the first
// resolution error aborts the plan.
func (p *Planner) Plan(ctx context.Context, playlist models.Playlist, progress chan<- ProgressUpdate) (*PlanResult, error) {
	src := playlist.Clone()
	total := len(src.Tracks)

	out := src
	out.Tracks = make([]models.Song, 0, total)

	result := &PlanResult{Total: total}
	p.sendProgress(progress, resolveStartUpdate(total, src.Name))

	for i, song := range src.Tracks {
		step := i + 1

		if _, ok := song.ChannelID(models.ChannelFLO); ok {
			result.Kept++
			out.Tracks = append(out.Tracks, song)
			p.sendProgress(progress, keptTrackUpdate(step, total, song))
			continue
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("planning stopped at track %d: %w", step, err)
		}

		id, ok, err := p.finder.FindSongID(ctx, song)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve track %d (%s - %s): %w", step, song.Artist, song.Name, err)
		}

		if !ok {
			result.Missing = append(result.Missing, MissedTrack{Index: i, Song: song})
			p.sendProgress(progress, missedTrackUpdate(step, total, song))
			continue
		}

		match := TrackMatch{Index: i, Song: song, ID: id}
		result.Resolved = append(result.Resolved, match)
		out.Tracks = append(out.Tracks, song.WithChannelID(models.ChannelFLO, id))
		p.sendProgress(progress, resolvedTrackUpdate(step, total, match))
	}

	result.Playlist = out

	p.logger.Info("plan complete",
		"playlist", src.Name,
		"kept", result.Kept,
		"resolved", len(result.Resolved),
		"missing", len(result.Missing),
	)

	return result, nil
}

// Run plans playlist and publishes the result.
//
// A plan with no tracks left is not published.
func (p *Planner) Run(ctx context.Context, playlist models.Playlist, pub Publisher, progress chan<- ProgressUpdate) (*RunResult, error) {
	plan, err := p.Plan(ctx, playlist, progress)
	if err != nil {
		return nil, err
	}

	if len(plan.Playlist.Tracks) == 0 && plan.Total > 0 {
		return &RunResult{Plan: plan}, fmt.Errorf("%w: none of %d tracks were found on FLO", shared.ErrNotFound, plan.Total)
	}

	p.sendProgress(progress, publishStartUpdate(plan.Playlist))

	url, err := pub.GenerateURL(ctx, plan.Playlist)
	if err != nil {
		return &RunResult{Plan: plan}, err
	}

	p.sendProgress(progress, publishedUpdate(url))
	return &RunResult{Plan: plan, URL: url}, nil
}
