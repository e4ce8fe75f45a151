package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/lakehouse-bootstrap/internal/report"
	"github.com/stacklok/lakehouse-bootstrap/internal/versions"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect persisted run reports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the last reconcile report of a catalog",
	Long: `Show prints the last persisted reconcile report. The catalog and report directory
are taken from the configuration file unless given explicitly.

Examples:
  lakehouse-bootstrap report show --config config.yaml
  lakehouse-bootstrap report show --report-dir ./data/reports --catalog ecom_lakehouse -o json`,
	RunE: runReportShow,
}

func init() {
	reportShowCmd.Flags().String("catalog", "", "Catalog whose report to show (defaults to the configured catalog)")
	reportShowCmd.Flags().StringP("output", "o", string(report.FormatTable), "Output format (table, json, yaml)")

	reportCmd.AddCommand(reportShowCmd)
}

func runReportShow(cmd *cobra.Command, _ []string) error {
	catalogName, err := cmd.Flags().GetString("catalog")
	if err != nil {
		return fmt.Errorf("failed to get catalog flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	format, err := report.ParseFormat(output)
	if err != nil {
		return err
	}

	reportDir := viper.GetString("report-dir")
	if catalogName == "" || reportDir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("--catalog and --report-dir are required without a configuration: %w", err)
		}
		if catalogName == "" {
			catalogName = cfg.Environment.CatalogName
		}
		if reportDir == "" {
			reportDir = cfg.GetReportDirectory()
		}
	}

	return showReport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(),
		report.NewFilePersistence(reportDir), catalogName, format, versions.GetVersionInfo().Version)
}

func showReport(
	ctx context.Context,
	out, errOut io.Writer,
	store report.Persistence,
	catalogName string,
	format report.Format,
	runningVersion string,
) error {
	rep, err := store.Load(ctx, catalogName)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	if rep == nil {
		return fmt.Errorf("no report found for catalog '%s'", catalogName)
	}

	if versions.IsNewerVersion(rep.Version, runningVersion) {
		_, _ = fmt.Fprintf(errOut, "Warning: report was written by version %s, newer than this binary (%s)\n",
			rep.Version, runningVersion)
	}

	return report.Render(out, rep, format)
}
