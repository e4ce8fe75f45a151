package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stacklok/lakehouse-bootstrap/internal/app/backend"
	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage storage credentials of the postgres metastore",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

var credentialRegisterCmd = &cobra.Command{
	Use:   "register NAME...",
	Short: "Register storage credentials in the postgres metastore",
	Long: `Register records storage credentials by name so that external locations can reference
them. Credentials are never issued by reconcile; on managed catalogs they are created
by an administrator. Registering an existing name is a no-op.

Example:
  lakehouse-bootstrap credential register cred1 --config config.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCredentialRegister,
}

func init() {
	credentialCmd.AddCommand(credentialRegisterCmd)
}

// credentialRegistrar records storage credentials in a metastore
type credentialRegistrar interface {
	RegisterCredential(ctx context.Context, name string) (catalog.CredentialHandle, error)
}

func runCredentialRegister(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dbCfg, err := postgresBackend(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	factory, err := backend.NewDatabaseFactory(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer factory.Cleanup()

	return registerCredentials(ctx, cmd.OutOrStdout(), factory.Metastore(), args)
}

func registerCredentials(ctx context.Context, w io.Writer, registrar credentialRegistrar, names []string) error {
	for _, name := range names {
		handle, err := registrar.RegisterCredential(ctx, name)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "Storage credential registered", "name", handle.Name, "id", handle.ID)
		if _, err := fmt.Fprintf(w, "%s\t%s\n", handle.Name, handle.ID); err != nil {
			return err
		}
	}
	return nil
}
