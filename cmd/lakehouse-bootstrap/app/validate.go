package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
	"github.com/stacklok/lakehouse-bootstrap/internal/environment"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate checks the configuration against its schema and the environment rules
(unique names and paths, volume under the files schema, gold location declared)
and prints the resources a run would reconcile, in order. No backend is contacted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		return validateConfigFile(cmd.OutOrStdout(), path)
	},
}

func validateConfigFile(w io.Writer, path string) error {
	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	env := environment.FromConfig(&cfg.Environment)
	if _, err := fmt.Fprintf(w, "Configuration is valid (backend: %s, %d resources)\n",
		cfg.Backend.Type, env.ResourceCount()); err != nil {
		return err
	}

	for _, r := range desiredResources(env) {
		if _, err := fmt.Fprintf(w, "  %-16s %s\n", r.Kind(), r.QualifiedName()); err != nil {
			return err
		}
	}
	return nil
}

// desiredResources lists the environment in reconcile order
func desiredResources(env *environment.Spec) []catalog.Resource {
	resources := make([]catalog.Resource, 0, env.ResourceCount())
	resources = append(resources, env.Catalog)
	for _, loc := range env.ExternalLocations {
		resources = append(resources, loc)
	}
	for _, s := range env.Schemas {
		resources = append(resources, s)
	}
	return append(resources, env.Volume)
}
