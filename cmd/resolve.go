package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/shared"
	"github.com/urfave/cli/v3"
)

type resolveOutput struct {
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	TrackID string `json:"trackId,omitempty"`
	Found   bool   `json:"found"`
}

// Resolve finds the FLO track ID for --artist and --title.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	song := models.Song{
		Name:   cmd.String("title"),
		Artist: cmd.String("artist"),
	}
	if song.Name == "" {
		return fmt.Errorf("%w: --title is required", shared.ErrMissingArgument)
	}

	db, err := r.openCache(cmd)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	res := r.resolver(db)

	if cmd.Bool("steps") {
		r.writePlainHeader("Fallback queries")
		for i, step := range res.Plan(song) {
			r.writePlain("%d. [%s] %s\n", i+1, step.Strategy, step.Query)
		}
		r.writePlain("\n")
	}

	id, ok, err := res.FindSongID(ctx, song)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(resolveOutput{Artist: song.Artist, Title: song.Name, TrackID: id, Found: ok}, true)
	}

	if !ok {
		r.writePlain("%s no FLO match for %s - %s\n", r.palette.Err("✗"), song.Artist, song.Name)
		return nil
	}
	r.writePlain("%s %s\n", r.palette.OK("✓"), id)
	return nil
}
