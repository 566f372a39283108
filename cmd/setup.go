package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/flox/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded config template. An existing file is left untouched.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if _, err := os.Stat(path); err == nil {
		r.logger.Warn("config file already exists", "path", path)
		r.writePlain("Config already exists at %s\n", path)
		return nil
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("%s Config written to %s\n", r.palette.OK("✓"), path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set [credentials.flo] username and password (or %s / %s in .env)\n", shared.EnvFloUsername, shared.EnvFloPassword)
	r.writePlain("2. Run 'flox setup database' to create the match cache\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("%s Match cache ready at %s\n", r.palette.OK("✓"), r.config.Database.Path)
	return nil
}
