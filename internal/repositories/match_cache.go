package repositories

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/shared"
)

// MatchCacheAdapter implements resolver.MatchCache using MatchRepository.
//
// Lookup failures other than "not found" are logged and treated as a cache miss so a broken
// cache never blocks resolution.
type MatchCacheAdapter struct {
	repo   *MatchRepository
	logger *log.Logger
}

// NewMatchCacheAdapter creates a new MatchCacheAdapter with the given repository
func NewMatchCacheAdapter(repo *MatchRepository, logger *log.Logger) *MatchCacheAdapter {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &MatchCacheAdapter{repo: repo, logger: logger}
}

func (a *MatchCacheAdapter) Lookup(artist, title string) (string, bool) {
	m, err := a.repo.GetByKey(title, artist)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			a.logger.Warn("match cache lookup failed", "artist", artist, "title", title, "error", err)
		}
		return "", false
	}
	return m.TrackID(), true
}

func (a *MatchCacheAdapter) Store(artist, title, trackID string) error {
	return a.repo.Upsert(models.NewMatch(artist, title, trackID))
}
