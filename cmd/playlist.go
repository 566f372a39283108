package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/flox/internal/flo"
	"github.com/desertthunder/flox/internal/formatter"
	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/shared"
	"github.com/desertthunder/flox/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Import reads a public FLO playlist and writes it in the requested format.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: playlist URL is required", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	a := r.adaptor(nil, flo.PublishOptions{})
	if !a.Matches(url) {
		r.logger.Warn("URL does not look like a FLO link", "url", url)
	}

	r.logger.Info("importing FLO playlist", "url", url)
	playlist, err := a.GetPlaylistContent(ctx, url)
	if err != nil {
		return err
	}
	r.logger.Infof("fetched playlist: %s (%d tracks)", playlist.Name, len(playlist.Tracks))

	if output := cmd.String("output"); output != "" {
		path, err := formatter.WriteExport(playlist, format, output)
		if err != nil {
			return err
		}
		r.writePlain("%s %s (%d tracks) written to %s\n", r.palette.OK("✓"), playlist.Name, len(playlist.Tracks), path)
		return nil
	}

	data, err := formatter.Render(playlist, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Export publishes a playlist file to FLO and prints the public URL.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	playlist, err := formatter.ReadPlaylist(cmd.String("file"))
	if err != nil {
		return err
	}

	reuse := cmd.Bool("reuse")
	if !reuse || playlist.PreGenerated[models.ChannelFLO] == "" {
		if _, err := flo.NewCreateRequest(playlist); err != nil {
			return fmt.Errorf("%w (run 'flox plan' first)", err)
		}
		if err := r.config.ValidateCredentials(); err != nil {
			return err
		}
	}

	a := r.adaptor(nil, flo.PublishOptions{ReusePreGenerated: reuse})

	r.logger.Info("publishing playlist to FLO", "name", playlist.Name, "tracks", len(playlist.Tracks))
	url, err := a.GenerateURL(ctx, playlist)
	if err != nil {
		return err
	}

	r.writePlain("%s %s\n", r.palette.OK("✓"), url)
	return nil
}

// Plan resolves every track in a playlist file, optionally publishing the result.
func (r *Runner) Plan(ctx context.Context, cmd *cli.Command) error {
	playlist, err := formatter.ReadPlaylist(cmd.String("file"))
	if err != nil {
		return err
	}

	publish := cmd.Bool("publish")
	if publish {
		if err := r.config.ValidateCredentials(); err != nil {
			return err
		}
	}

	db, err := r.openCache(cmd)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	planner := tasks.NewPlanner(r.resolver(db), tasks.PlannerOpts{
		RateLimit: cmd.Float("rate"),
		Logger:    r.logger,
	})

	r.writePlainHeader(fmt.Sprintf("Planning %s (%d tracks)", playlist.Name, len(playlist.Tracks)))

	progress := make(chan tasks.ProgressUpdate, 100)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	var (
		plan *tasks.PlanResult
		url  string
	)
	if publish {
		var res *tasks.RunResult
		res, err = planner.Run(ctx, playlist, r.adaptor(db, flo.PublishOptions{}), progress)
		if res != nil {
			plan, url = res.Plan, res.URL
		}
	} else {
		plan, err = planner.Plan(ctx, playlist, progress)
	}
	close(progress)
	wg.Wait()

	if plan != nil {
		r.writePlanSummary(plan)
		if output := cmd.String("output"); output != "" {
			path, werr := formatter.WriteExport(plan.Playlist, formatter.JSON, output)
			if werr != nil {
				return werr
			}
			r.writePlain("Planned playlist written to %s\n", path)
		}
	}
	if err != nil {
		return err
	}

	if url != "" {
		r.writePlain("%s %s\n", r.palette.OK("✓"), url)
	}
	return nil
}

func (r *Runner) writePlanSummary(plan *tasks.PlanResult) {
	r.writePlainln("%s %d kept, %d resolved, %d missing (%.1f%% matched)",
		r.palette.Title("Summary:"), plan.Kept, len(plan.Resolved), len(plan.Missing), plan.MatchPercentage())

	if len(plan.Missing) == 0 {
		return
	}
	r.writePlain("%s\n", r.palette.Warn(fmt.Sprintf("Not found on FLO (%d):", len(plan.Missing))))
	for _, m := range plan.Missing {
		r.writePlain("  %d. %s - %s\n", m.Index+1, m.Song.Artist, m.Song.Name)
	}
}
