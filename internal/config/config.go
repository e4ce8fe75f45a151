// Package config provides configuration loading and management for the lakehouse bootstrapper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/lakehouse-bootstrap/internal/telemetry"
	"github.com/stacklok/lakehouse-bootstrap/internal/validators"
)

const (
	// EnvPrefix is the prefix for environment variables read by the bootstrapper
	EnvPrefix = "LAKEHOUSE"

	// UnityTokenEnvVar holds the Unity Catalog token when no token file is configured
	UnityTokenEnvVar = EnvPrefix + "_UNITY_TOKEN"

	// DatabasePasswordEnvVar holds the database password when no password file is configured
	DatabasePasswordEnvVar = EnvPrefix + "_DATABASE_PASSWORD"
)

const (
	// BackendTypeUnity talks to a Unity Catalog REST API
	BackendTypeUnity = "unity"

	// BackendTypePostgres stores the catalog in a PostgreSQL metastore
	BackendTypePostgres = "postgres"

	// BackendTypeMemory keeps the catalog in memory for the duration of the process
	BackendTypeMemory = "memory"
)

const (
	// FilesSchemaName is the only schema allowed to hold the landing volume
	FilesSchemaName = "files"

	// DefaultGoldExternalLocationName is used when gold_external_location_name is not set
	DefaultGoldExternalLocationName = "gold_ext_loc"

	// DefaultReportDirectory is where run reports are persisted when not configured
	DefaultReportDirectory = "./data/reports"

	// DefaultUnityTimeout bounds a single Unity Catalog HTTP request
	DefaultUnityTimeout = 30 * time.Second
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Environment is the desired state of the lakehouse hierarchy
	Environment EnvironmentConfig `yaml:"environment"`

	// Backend selects and configures the catalog system to reconcile against
	Backend BackendConfig `yaml:"backend"`

	// Report configures where run reports are persisted
	Report *ReportConfig `yaml:"report,omitempty"`

	// Telemetry configures OpenTelemetry tracing and metrics
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// EnvironmentConfig is the declared desired state.
// Schema names and kinds are fixed and cannot be configured here.
type EnvironmentConfig struct {
	// CatalogName is the name of the root catalog
	CatalogName string `yaml:"catalog_name"`

	// CredentialName references the pre-existing storage credential
	CredentialName string `yaml:"credential_name"`

	// ExternalLocations are created in declaration order
	ExternalLocations []ExternalLocationConfig `yaml:"external_locations"`

	// Volume is the landing volume under the files schema
	Volume VolumeConfig `yaml:"volume"`

	// GoldExternalLocationName names the location backing the gold schema
	// Defaults to "gold_ext_loc"
	GoldExternalLocationName string `yaml:"gold_external_location_name,omitempty"`
}

// ExternalLocationConfig declares one external location
type ExternalLocationConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`

	// CredentialName defaults to the environment credential when empty
	CredentialName string `yaml:"credential_name,omitempty"`
}

// VolumeConfig declares the landing volume
type VolumeConfig struct {
	Name                 string `yaml:"name"`
	Schema               string `yaml:"schema"`
	ExternalLocationName string `yaml:"external_location_name"`
}

// BackendConfig selects the catalog client implementation
type BackendConfig struct {
	// Type is one of unity, postgres or memory
	Type string `yaml:"type"`

	Unity    *UnityConfig    `yaml:"unity,omitempty"`
	Database *DatabaseConfig `yaml:"database,omitempty"`
}

// UnityConfig defines Unity Catalog REST API settings
type UnityConfig struct {
	// Host is the workspace URL, e.g. https://adb-123.azuredatabricks.net
	Host string `yaml:"host"`

	// TokenFile is the path to a file containing a bearer token
	TokenFile string `yaml:"token_file,omitempty"`

	// Timeout bounds a single HTTP request (e.g., "30s")
	Timeout string `yaml:"timeout,omitempty"`
}

// DatabaseConfig defines database connection settings for the postgres backend
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"password_file,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"ssl_mode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"max_open_conns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"conn_max_lifetime,omitempty"`
}

// ReportConfig defines report persistence settings
type ReportConfig struct {
	// Directory is the base directory for per-catalog report files
	Directory string `yaml:"directory,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration document
func Parse(data []byte) (*Config, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate performs semantic validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := c.Environment.validate(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	if err := c.Backend.validate(); err != nil {
		return fmt.Errorf("backend: %w", err)
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}

	return nil
}

// GetReportDirectory returns the report directory, using the default if not specified
func (c *Config) GetReportDirectory() string {
	if c.Report == nil || c.Report.Directory == "" {
		return DefaultReportDirectory
	}
	return c.Report.Directory
}

// GetGoldExternalLocationName returns the gold location name, using the default if not specified
func (e *EnvironmentConfig) GetGoldExternalLocationName() string {
	if e.GoldExternalLocationName == "" {
		return DefaultGoldExternalLocationName
	}
	return e.GoldExternalLocationName
}

// GetVolumeSchema returns the volume schema, defaulting to the files schema
func (e *EnvironmentConfig) GetVolumeSchema() string {
	if e.Volume.Schema == "" {
		return FilesSchemaName
	}
	return e.Volume.Schema
}

// GetCredentialName returns the location credential, defaulting to the given environment credential
func (l *ExternalLocationConfig) GetCredentialName(defaultName string) string {
	if l.CredentialName == "" {
		return defaultName
	}
	return l.CredentialName
}

func (e *EnvironmentConfig) validate() error {
	if err := validators.ValidateObjectName("catalog_name", e.CatalogName); err != nil {
		return err
	}
	if e.CredentialName == "" {
		return fmt.Errorf("credential_name is required")
	}

	if len(e.ExternalLocations) == 0 {
		return fmt.Errorf("at least one external location must be configured")
	}

	names := make(map[string]bool, len(e.ExternalLocations))
	paths := make(map[string]string, len(e.ExternalLocations))
	for i, loc := range e.ExternalLocations {
		prefix := fmt.Sprintf("external_locations[%d]", i)
		if err := validators.ValidateObjectName(prefix+".name", loc.Name); err != nil {
			return err
		}
		if names[loc.Name] {
			return fmt.Errorf("%s: duplicate external location name '%s'", prefix, loc.Name)
		}
		names[loc.Name] = true

		if loc.Path == "" {
			return fmt.Errorf("%s (%s): path is required", prefix, loc.Name)
		}
		if err := validators.ValidateStoragePath(loc.Path); err != nil {
			return fmt.Errorf("%s (%s): %w", prefix, loc.Name, err)
		}
		if other, ok := paths[normalizePath(loc.Path)]; ok {
			return fmt.Errorf("%s (%s): path '%s' is already used by external location '%s'",
				prefix, loc.Name, loc.Path, other)
		}
		paths[normalizePath(loc.Path)] = loc.Name
	}

	if err := validators.ValidateObjectName("volume.name", e.Volume.Name); err != nil {
		return err
	}
	if e.GetVolumeSchema() != FilesSchemaName {
		return fmt.Errorf("volume.schema must be '%s', got '%s'", FilesSchemaName, e.Volume.Schema)
	}
	if !names[e.Volume.ExternalLocationName] {
		return fmt.Errorf("volume.external_location_name '%s' does not reference a declared external location",
			e.Volume.ExternalLocationName)
	}

	gold := e.GetGoldExternalLocationName()
	if !names[gold] {
		return fmt.Errorf("gold_external_location_name '%s' does not reference a declared external location", gold)
	}
	if gold == e.Volume.ExternalLocationName {
		return fmt.Errorf("external location '%s' cannot back both the volume and the gold schema", gold)
	}

	return nil
}

func (b *BackendConfig) validate() error {
	switch b.Type {
	case BackendTypeUnity:
		if b.Unity == nil {
			return fmt.Errorf("unity configuration is required for backend type '%s'", b.Type)
		}
		return b.Unity.validate()
	case BackendTypePostgres:
		if b.Database == nil {
			return fmt.Errorf("database configuration is required for backend type '%s'", b.Type)
		}
		return b.Database.validate()
	case BackendTypeMemory:
		return nil
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unsupported backend type '%s' (expected %s, %s or %s)",
			b.Type, BackendTypeUnity, BackendTypePostgres, BackendTypeMemory)
	}
}

func (u *UnityConfig) validate() error {
	if u.Host == "" {
		return fmt.Errorf("unity.host is required")
	}
	parsed, err := url.Parse(u.Host)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("unity.host must be an absolute URL, got '%s'", u.Host)
	}
	if u.Timeout != "" {
		if _, err := time.ParseDuration(u.Timeout); err != nil {
			return fmt.Errorf("unity.timeout must be a valid duration (e.g., '30s'): %w", err)
		}
	}
	return nil
}

// GetTimeout returns the request timeout, using the default if not specified
func (u *UnityConfig) GetTimeout() time.Duration {
	if u.Timeout == "" {
		return DefaultUnityTimeout
	}
	d, err := time.ParseDuration(u.Timeout)
	if err != nil {
		return DefaultUnityTimeout
	}
	return d
}

// GetToken returns the bearer token using the following priority:
// 1. Read from TokenFile if specified
// 2. Read from the LAKEHOUSE_UNITY_TOKEN environment variable
func (u *UnityConfig) GetToken() (string, error) {
	if u.TokenFile != "" {
		data, err := os.ReadFile(filepath.Clean(u.TokenFile))
		if err != nil {
			return "", fmt.Errorf("failed to read token from file %s: %w", u.TokenFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if token := os.Getenv(UnityTokenEnvVar); token != "" {
		return token, nil
	}

	return "", fmt.Errorf("no unity token configured: set token_file or %s environment variable", UnityTokenEnvVar)
}

func (d *DatabaseConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if d.Port <= 0 {
		return fmt.Errorf("database.port is required")
	}
	if d.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if d.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if d.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(d.ConnMaxLifetime); err != nil {
			return fmt.Errorf("database.conn_max_lifetime must be a valid duration: %w", err)
		}
	}
	return nil
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from the LAKEHOUSE_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(DatabasePasswordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set password_file or %s environment variable", DatabasePasswordEnvVar,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)

	return connString, nil
}

// normalizePath makes "/gold" and "/gold/" compare equal
func normalizePath(p string) string {
	return strings.TrimRight(p, "/")
}
