package tasks

import (
	"fmt"

	"github.com/desertthunder/flox/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ResolveTracks Phase = iota
	PublishPlaylist
)

func (p Phase) String() string {
	switch p {
	case ResolveTracks:
		return "resolve_tracks"
	case PublishPlaylist:
		return "publish_playlist"
	default:
		return ""
	}
}

func resolveStartUpdate(total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Resolving %d tracks of %s on FLO...", total, name),
	}
}

func keptTrackUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] = %s - %s", step, total, song.Artist, song.Name),
	}
}

func resolvedTrackUpdate(step, total int, match TrackMatch) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s - %s (%s)", step, total, match.Song.Artist, match.Song.Name, match.ID),
		Data:    match,
	}
}

func missedTrackUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s - %s", step, total, song.Artist, song.Name),
	}
}

func publishStartUpdate(pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PublishPlaylist,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Creating %s on FLO (%d tracks)...", pl.Name, len(pl.Tracks)),
	}
}

func publishedUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PublishPlaylist,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Playlist created: %s", url),
		Data:    url,
	}
}
