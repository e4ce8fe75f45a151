package app

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacklok/lakehouse-bootstrap/database"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Metastore migration tool",
	Long: `Metastore migration tool for the postgres backend. Use with 'up' or 'down' subcommands.
The database connection is read from backend.database in the configuration file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

func init() {
	migrateCmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to all questions")
	migrateCmd.PersistentFlags().UintP("num-steps", "n", 0, "Number of steps to migrate (0 = all)")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

// migrationFlags are the flags shared by the migrate subcommands
type migrationFlags struct {
	yes      bool
	numSteps uint
}

func getMigrationFlags(cmd *cobra.Command) (migrationFlags, error) {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return migrationFlags{}, fmt.Errorf("failed to get yes flag: %w", err)
	}
	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return migrationFlags{}, fmt.Errorf("failed to get num-steps flag: %w", err)
	}
	return migrationFlags{yes: yes, numSteps: numSteps}, nil
}

// setupMigration loads the configuration and opens a migrator against the postgres metastore
func setupMigration() (*config.DatabaseConfig, database.Migrator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	dbCfg, err := postgresBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	connString, err := dbCfg.GetConnectionString()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	m, err := database.NewFromConnectionString(connString)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return dbCfg, m, nil
}

// postgresBackend returns the database settings, failing for other backend types
func postgresBackend(cfg *config.Config) (*config.DatabaseConfig, error) {
	if cfg.Backend.Type != config.BackendTypePostgres || cfg.Backend.Database == nil {
		return nil, fmt.Errorf("this command requires backend type '%s' (configured: '%s')",
			config.BackendTypePostgres, cfg.Backend.Type)
	}
	return cfg.Backend.Database, nil
}

func closeMigrator(m database.Migrator) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		slog.Error("Error closing migration source", "error", srcErr)
	}
	if dbErr != nil {
		slog.Error("Error closing database connection", "error", dbErr)
	}
}

// confirm asks a yes/no question on out and reads the answer from in
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprintf(out, "%s (yes/no): ", prompt)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "yes", "y":
		return true
	default:
		return false
	}
}

func displayMigrationVersion(m database.Migrator, removedAll bool) {
	version, dirty, err := m.Version()
	if err != nil {
		if removedAll {
			slog.Info("Metastore schema has been completely removed")
		} else {
			slog.Warn("Failed to get migration version", "error", err)
		}
		return
	}

	if dirty {
		slog.Warn("Metastore is in a dirty state, manual intervention may be required", "version", version)
	} else {
		slog.Info("Current migration version", "version", version)
	}
}
