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

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert metastore migrations",
	Long: `Migrate the metastore schema down by reverting migrations.
WARNING: reverting the initial migration drops every catalog record. Use with caution.

Examples:
  # Migrate down by 1 step
  lakehouse-bootstrap migrate down --config config.yaml --num-steps 1 --yes

  # Migrate down all the way (WARNING: destroys all metastore data)
  lakehouse-bootstrap migrate down --config config.yaml --yes`,
	RunE: runMigrateDown,
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	flags, err := getMigrationFlags(cmd)
	if err != nil {
		return err
	}

	_, m, err := setupMigration()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if !flags.yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), migrateDownPrompt(flags.numSteps)) {
		slog.Info("Migration cancelled")
		return fmt.Errorf("migration cancelled by user")
	}

	if err := executeMigrateDown(m, flags.numSteps); err != nil {
		return err
	}

	displayMigrationVersion(m, flags.numSteps == 0)
	return nil
}

func migrateDownPrompt(numSteps uint) string {
	if numSteps == 0 {
		return "WARNING: This will migrate down ALL steps and may result in complete data loss. Continue?"
	}
	return fmt.Sprintf("WARNING: This will migrate down %d step(s) and may result in data loss. Continue?", numSteps)
}

func executeMigrateDown(m database.Migrator, numSteps uint) error {
	var err error
	if numSteps == 0 {
		slog.Warn("Migrating down all steps - this will remove the metastore schema")
		err = m.Down()
	} else {
		slog.Info("Migrating down", "steps", numSteps)
		if numSteps > math.MaxInt {
			return fmt.Errorf("number of steps exceeds maximum allowed value")
		}
		err = m.Steps(-1 * int(numSteps)) // #nosec G115 -- overflow checked above
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("No migrations to revert - metastore is already at the oldest version")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("Migration completed successfully")
	return nil
}
