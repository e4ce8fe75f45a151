package app

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/stacklok/lakehouse-bootstrap/database"
)

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending metastore migrations",
	Long: `Apply pending migrations to bring the metastore schema up to date.

Examples:
  # Apply all pending migrations
  lakehouse-bootstrap migrate up --config config.yaml --yes

  # Apply the next migration only
  lakehouse-bootstrap migrate up --config config.yaml --num-steps 1`,
	RunE: runMigrateUp,
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	flags, err := getMigrationFlags(cmd)
	if err != nil {
		return err
	}

	dbCfg, m, err := setupMigration()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if !flags.yes {
		prompt := fmt.Sprintf("About to apply migrations to %s@%s:%d/%s. Continue?",
			dbCfg.User, dbCfg.Host, dbCfg.Port, dbCfg.Database)
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
			slog.Info("Migration cancelled by user")
			return nil
		}
	}

	if err := executeMigrateUp(m, flags.numSteps); err != nil {
		return err
	}

	displayMigrationVersion(m, false)
	return nil
}

func executeMigrateUp(m database.Migrator, numSteps uint) error {
	var err error
	if numSteps == 0 {
		slog.Info("Applying all pending migrations")
		err = m.Up()
	} else {
		slog.Info("Applying migrations", "steps", numSteps)
		if numSteps > math.MaxInt {
			return fmt.Errorf("number of steps exceeds maximum allowed value")
		}
		err = m.Steps(int(numSteps)) // #nosec G115 -- overflow checked above
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("No migrations to apply, metastore schema is up to date")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("Migration completed successfully")
	return nil
}
