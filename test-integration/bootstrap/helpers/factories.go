package helpers

import (
	"os"
	"path/filepath"

	"github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/lakehouse-bootstrap/internal/config"
)

const (
	// CatalogName is the catalog every fixture environment declares
	CatalogName = "ecom_lakehouse"

	// CredentialName is the storage credential every fixture environment references
	CredentialName = "cred1"
)

// EcomEnvironment returns the two-location ecom_lakehouse environment
func EcomEnvironment() config.EnvironmentConfig {
	return config.EnvironmentConfig{
		CatalogName:    CatalogName,
		CredentialName: CredentialName,
		ExternalLocations: []config.ExternalLocationConfig{
			{Name: "landing_ext_loc", Path: "s3://ecom-lake/files/landing/"},
			{Name: "gold_ext_loc", Path: "s3://ecom-lake/gold/"},
		},
		Volume: config.VolumeConfig{
			Name:                 "landing",
			Schema:               "files",
			ExternalLocationName: "landing_ext_loc",
		},
	}
}

// ExpectedOrder lists the qualified names of EcomEnvironment in reconcile order
func ExpectedOrder() []string {
	return []string{
		"ecom_lakehouse",
		"landing_ext_loc",
		"gold_ext_loc",
		"ecom_lakehouse.files",
		"ecom_lakehouse.bronze",
		"ecom_lakehouse.silver",
		"ecom_lakehouse.gold",
		"ecom_lakehouse.files.landing",
	}
}

// MemoryBackend returns the in-memory backend configuration
func MemoryBackend() config.BackendConfig {
	return config.BackendConfig{Type: config.BackendTypeMemory}
}

// UnityBackend returns a Unity Catalog backend configuration whose token is stored in dir
func UnityBackend(dir, host, token string) config.BackendConfig {
	tokenFile := filepath.Join(dir, "unity-token")
	gomega.Expect(os.WriteFile(tokenFile, []byte(token+"\n"), 0600)).To(gomega.Succeed())

	return config.BackendConfig{
		Type: config.BackendTypeUnity,
		Unity: &config.UnityConfig{
			Host:      host,
			TokenFile: tokenFile,
			Timeout:   "5s",
		},
	}
}

// WriteConfigYAML writes a configuration file to dir and returns its path.
// Reports are persisted under dir/reports.
func WriteConfigYAML(dir string, env config.EnvironmentConfig, backend config.BackendConfig) string {
	cfg := config.Config{
		Environment: env,
		Backend:     backend,
		Report:      &config.ReportConfig{Directory: filepath.Join(dir, "reports")},
	}

	data, err := yaml.Marshal(&cfg)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	path := filepath.Join(dir, "config.yaml")
	gomega.Expect(os.WriteFile(path, data, 0600)).To(gomega.Succeed())
	return path
}
