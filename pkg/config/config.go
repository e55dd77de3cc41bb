// Package config provides configuration management for GNpull.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Remote, Local: driver, host, port, user, password, database,
//     ssl_mode, path, batch_size
//   - Copy: reuse, exclude, ignore_model, update_local_model,
//     update_optional_local_model, type_prefix, type_map, schema_file
//   - Log: level, format, destination
//
// Runtime-only fields (CLI flags only):
//   - DryRun (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNPULL_ prefix with underscores for nesting:
//
//	GNPULL_REMOTE_HOST=db.example.org
//	GNPULL_LOCAL_DATABASE=shop_dev
//	GNPULL_COPY_TYPE_PREFIX=Legacy::
//	GNPULL_LOG_LEVEL=debug
package config

import "path/filepath"

// Config represents the complete GNpull configuration.
type Config struct {
	// Remote is the database records are copied from.
	Remote DatabaseConfig `mapstructure:"remote" yaml:"remote"`

	// Local is the database records are copied to.
	Local DatabaseConfig `mapstructure:"local" yaml:"local"`

	// Copy contains settings of the graph copy.
	Copy CopyConfig `mapstructure:"copy" yaml:"copy"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// DryRun rolls back every copy after it is complete.
	DryRun bool

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains database connection parameters.
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite". SQLite is supported only for the
	// remote database, where it reads snapshot files.
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// Path is the SQLite snapshot file, used with the "sqlite" driver.
	Path string `mapstructure:"path" yaml:"path"`

	// BatchSize is the number of rows fetched per query when reading
	// has_many collections.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// CopyConfig describes how record graphs are copied.
type CopyConfig struct {
	// Reuse maps a model to the attribute used to find an existing local
	// record, for example {User: email}. Found records are adopted
	// instead of copied.
	Reuse map[string]string `mapstructure:"reuse" yaml:"reuse"`

	// Exclude maps a model to attribute or association names that are not
	// copied. The name "all_associations" skips every association.
	Exclude map[string][]string `mapstructure:"exclude" yaml:"exclude"`

	// IgnoreModel lists models that are not crawled into, unless the model
	// is the root of a copy.
	IgnoreModel []string `mapstructure:"ignore_model" yaml:"ignore_model"`

	// UpdateLocalModel lists models whose local records must exist and
	// are updated in place.
	UpdateLocalModel []string `mapstructure:"update_local_model" yaml:"update_local_model"`

	// UpdateOptionalLocalModel lists models whose local records are
	// updated when they exist and created otherwise.
	UpdateOptionalLocalModel []string `mapstructure:"update_optional_local_model" yaml:"update_optional_local_model"`

	// TypePrefix is removed from remote type names, for example "Legacy::".
	TypePrefix string `mapstructure:"type_prefix" yaml:"type_prefix"`

	// TypeMap renames remote type names to local ones.
	TypeMap map[string]string `mapstructure:"type_map" yaml:"type_map"`

	// SchemaFile is the path to the schema catalog. Empty value means
	// schema.yaml next to config.yaml.
	SchemaFile string `mapstructure:"schema_file" yaml:"schema_file"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Remote: defaultDatabase("remote"),
		Local:  defaultDatabase("local"),
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
	}

	return res
}

func defaultDatabase(name string) DatabaseConfig {
	return DatabaseConfig{
		Driver:    "postgres",
		Host:      "localhost",
		Port:      5432,
		User:      "postgres",
		Password:  "postgres",
		Database:  name,
		SSLMode:   "disable",
		BatchSize: 1_000,
	}
}

// SchemaPath returns the schema catalog file to load.
func (c *Config) SchemaPath() string {
	if c.Copy.SchemaFile == "" {
		return SchemaFilePath(c.HomeDir)
	}
	if filepath.IsAbs(c.Copy.SchemaFile) || c.HomeDir == "" {
		return c.Copy.SchemaFile
	}
	return filepath.Join(ConfigDir(c.HomeDir), c.Copy.SchemaFile)
}
