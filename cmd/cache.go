package main

import (
	"context"

	"github.com/desertthunder/flox/internal/repositories"
	"github.com/desertthunder/flox/internal/shared"
	"github.com/urfave/cli/v3"
)

type matchOutput struct {
	ID        string `json:"id"`
	Artist    string `json:"artist"`
	Title     string `json:"title"`
	TrackID   string `json:"trackId"`
	UpdatedAt string `json:"updatedAt"`
}

// CacheList prints cached matches, newest first.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenMatchCache(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := repositories.NewMatchRepository(db).List(map[string]any{
		"artist": cmd.String("artist"),
		"limit":  int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	out := make([]matchOutput, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchOutput{
			ID:        m.ID(),
			Artist:    m.Artist(),
			Title:     m.Title(),
			TrackID:   m.TrackID(),
			UpdatedAt: m.UpdatedAt().Format("2006-01-02 15:04"),
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, true)
	}

	if len(out) == 0 {
		r.writePlain("No cached matches\n")
		return nil
	}

	r.writePlainHeader("Cached matches")
	for _, m := range out {
		r.writePlain("%-12s %s - %s %s\n", m.TrackID, m.Artist, m.Title, r.palette.Help(m.UpdatedAt))
	}
	return nil
}

// CacheClear deletes every cached match.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenMatchCache(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := repositories.NewMatchRepository(db).Clear()
	if err != nil {
		return err
	}

	r.logger.Info("match cache cleared", "removed", n)
	r.writePlain("%s removed %d cached matches\n", r.palette.OK("✓"), n)
	return nil
}
