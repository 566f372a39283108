// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"
)

// noCacheFlag is built per command since flags keep parsed state.
func noCacheFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "no-cache",
		Usage: "Skip the local match cache",
	}
}

// setupCommand handles configuration and database setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the config file",
						Value:   r.defaultConfigPath(),
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the match cache database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// codecCommand exposes the playlist ID codec.
func codecCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "codec",
		Usage: "Encode and decode FLO public playlist IDs",
		Commands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "Encode a numeric playlist ID",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.CodecEncode,
			},
			{
				Name:      "decode",
				Usage:     "Decode an encoded playlist ID or public playlist URL",
				Arguments: []cli.Argument{&cli.StringArg{Name: "value"}},
				Action:    r.CodecDecode,
			},
		},
	}
}

// resolveCommand finds the FLO track for a song.
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Find the FLO track ID for a song",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Artist name",
			},
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Track title",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "steps",
				Usage: "Print the fallback queries that would be tried",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			noCacheFlag(),
		},
		Action: r.Resolve,
	}
}

// importCommand reads a FLO playlist.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Read a public FLO playlist URL into a normalized playlist",
		Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, csv, markdown, txt",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to this file instead of stdout",
			},
		},
		Action: r.Import,
	}
}

// exportCommand publishes a playlist to FLO.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Create a FLO playlist from a playlist JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Playlist JSON (as written by import or plan)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "reuse",
				Usage: "Return the playlist's existing FLO URL instead of creating a copy",
			},
		},
		Action: r.Export,
	}
}

// planCommand resolves every track of a playlist file.
func planCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Resolve FLO track IDs for every track in a playlist JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Playlist JSON to plan",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the planned playlist JSON to this file",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Track resolutions per second",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "Create the planned playlist on FLO",
			},
			noCacheFlag(),
		},
		Action: r.Plan,
	}
}

// cacheCommand manages the local match cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and clear the local match cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached matches",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Only matches for this artist",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of matches to show",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Delete every cached match",
				Action: r.CacheClear,
			},
		},
	}
}
