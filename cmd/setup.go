package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/twx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the runner's config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("✓ Config written to %s\n", r.configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Register an application at https://dev.twitch.tv/console/apps\n")
	r.writePlain("2. Set its OAuth redirect URL to http://127.0.0.1:%d%s\n", r.config.Server.Port, r.config.Server.Path)
	r.writePlain("3. Put the client ID in [twitch] client_id and run 'twx auth login'\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations. With --reset it rolls the schema back first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	_, db, err := r.openCache()
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("reset") {
		n, err := shared.RollbackMigrations(db, 0)
		if err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		r.logger.Warn("database reset", "path", r.config.Database.Path, "migrations", n)
		r.writePlain("✓ Rolled back %d migrations and dropped cached videos\n", n)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}
