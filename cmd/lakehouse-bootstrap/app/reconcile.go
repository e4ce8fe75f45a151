package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	bootstrap "github.com/stacklok/lakehouse-bootstrap/internal/app"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
	"github.com/stacklok/lakehouse-bootstrap/internal/report"
)

const (
	defaultRunTimeout      = 10 * time.Minute
	defaultShutdownTimeout = 10 * time.Second
)

// errRunFailed is returned when a run completed but did not reach the desired state
var errRunFailed = errors.New("environment is not fully provisioned")

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Create missing lakehouse resources",
	Long: `Reconcile reads the current state of every declared resource and creates the ones
that are missing, in dependency order: catalog, external locations, schemas, volume.
Existing resources are reported as AlreadyExists and never modified.

The command exits non-zero when any resource could not be confirmed.

Examples:
  lakehouse-bootstrap reconcile --config config.yaml
  lakehouse-bootstrap reconcile --config config.yaml --output json --timeout 2m`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFromFlags(cmd, report.ModeApply)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show which lakehouse resources would be created",
	Long: `Plan performs the same existence checks as reconcile without creating anything.
Plans are not persisted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFromFlags(cmd, report.ModePlan)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{reconcileCmd, planCmd} {
		cmd.Flags().Duration("timeout", defaultRunTimeout, "Maximum duration of the run")
		cmd.Flags().StringP("output", "o", string(report.FormatTable), "Output format (table, json, yaml)")
	}
}

// runOptions are the inputs of a reconcile or plan run
type runOptions struct {
	configPath string
	reportDir  string
	timeout    time.Duration
	format     report.Format
	mode       report.Mode
}

func runFromFlags(cmd *cobra.Command, mode report.Mode) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("failed to get timeout flag: %w", err)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	format, err := report.ParseFormat(output)
	if err != nil {
		return err
	}

	return run(cmd.Context(), cmd.OutOrStdout(), runOptions{
		configPath: path,
		reportDir:  viper.GetString("report-dir"),
		timeout:    timeout,
		format:     format,
		mode:       mode,
	})
}

func run(ctx context.Context, w io.Writer, opts runOptions) error {
	cfg, err := config.LoadConfig(config.WithConfigPath(opts.configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	appOpts := []bootstrap.BootstrapAppOptions{bootstrap.WithConfig(cfg)}
	if opts.reportDir != "" {
		appOpts = append(appOpts, bootstrap.WithReportDirectory(opts.reportDir))
	}

	bootstrapApp, err := bootstrap.NewBootstrapApp(ctx, appOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		// The run context may already be expired; telemetry still needs to flush
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := bootstrapApp.Close(shutdownCtx); err != nil {
			slog.Error("Failed to shut down cleanly", "error", err)
		}
	}()

	slog.InfoContext(ctx, "Starting run",
		"mode", opts.mode,
		"catalog", cfg.Environment.CatalogName,
		"backend", cfg.Backend.Type)

	var rep *report.Report
	if opts.mode == report.ModePlan {
		rep, err = bootstrapApp.Plan(ctx)
	} else {
		rep, err = bootstrapApp.Reconcile(ctx)
	}

	return writeRunResult(w, rep, err, opts.format)
}

// writeRunResult renders the report, if any, and turns the run outcome into the command error
func writeRunResult(w io.Writer, rep *report.Report, runErr error, format report.Format) error {
	if rep != nil {
		if err := report.Render(w, rep, format); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to render report: %w", err))
		}
	}

	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	if rep == nil {
		return fmt.Errorf("run produced no report")
	}
	if !rep.Succeeded() {
		return fmt.Errorf("%w: %s", errRunFailed, rep.Summary())
	}
	return nil
}
