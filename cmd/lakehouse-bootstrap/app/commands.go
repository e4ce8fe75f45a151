// Package app provides the command line entry point for the lakehouse bootstrapper.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/lakehouse-bootstrap/internal/config"
	"github.com/stacklok/lakehouse-bootstrap/internal/versions"
)

var rootCmd = &cobra.Command{
	Use:               "lakehouse-bootstrap",
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	Short:             "Lakehouse environment bootstrapper",
	Long: `lakehouse-bootstrap creates the catalog, external locations, medallion schemas
(files, bronze, silver, gold) and landing volume a lakehouse ingestion pipeline
depends on. Runs are idempotent: resources that already exist are left untouched.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			slog.Error("Error displaying help", "error", err)
		}
	},
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format)")
	rootCmd.PersistentFlags().String("report-dir", "", "Directory for run reports (overrides report.directory)")

	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		slog.Error("Error binding config flag", "error", err)
	}
	if err := viper.BindEnv("config", config.EnvPrefix+"_CONFIG"); err != nil {
		slog.Error("Error binding config environment variable", "error", err)
	}
	if err := viper.BindPFlag("report-dir", rootCmd.PersistentFlags().Lookup("report-dir")); err != nil {
		slog.Error("Error binding report-dir flag", "error", err)
	}

	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// configPath returns the configuration file from --config or LAKEHOUSE_CONFIG
func configPath() (string, error) {
	path := viper.GetString("config")
	if path == "" {
		return "", fmt.Errorf("a configuration file is required (--config or %s_CONFIG)", config.EnvPrefix)
	}
	return path, nil
}

// loadConfig loads and validates the configuration named on the command line
func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		return printVersion(cmd.OutOrStdout(), versions.GetVersionInfo(), format)
	},
}

func printVersion(w io.Writer, info versions.VersionInfo, format string) error {
	if format == "json" {
		output, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format version info as JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(output))
		return err
	}

	_, err := fmt.Fprintf(w, "lakehouse-bootstrap %s\n  commit:   %s\n  built:    %s\n  go:       %s\n  platform: %s\n",
		info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
	return err
}

func init() {
	versionCmd.Flags().String("format", "", "Output format (json)")
}
