// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gnpull/internal/ioconfig"
	"github.com/gnames/gnpull/pkg/config"
)

const (
	// RemoteTestDatabase is the remote database used by integration tests.
	RemoteTestDatabase = "gnpull_remote_test"

	// LocalTestDatabase is the local database used by integration tests.
	// Tests never run against databases with other names.
	LocalTestDatabase = "gnpull_local_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// Credentials come from GNPULL_* environment variables or defaults,
// database names are always replaced by the test ones.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg.Local for database operations
//	}
func GetTestConfig() *config.Config {
	cfg := config.New()
	if loaded, err := ioconfig.Load(""); err == nil {
		cfg.Update(loaded.ToOptions())
	}

	cfg.Update([]config.Option{
		config.OptRemoteDriver("postgres"),
		config.OptRemoteDatabase(RemoteTestDatabase),
		config.OptLocalDriver("postgres"),
		config.OptLocalDatabase(LocalTestDatabase),
	})
	return cfg
}

// GetTestDatabaseConfig returns the local database configuration for
// tests.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Local
}

// SetupTempHome creates a temporary home directory with the config
// directory inside. It returns the home directory.
func SetupTempHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	if err := os.MkdirAll(config.ConfigDir(home), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	return home
}

// WriteConfigYAML writes config.yaml into the config directory of home.
func WriteConfigYAML(t *testing.T, home, content string) string {
	t.Helper()
	return writeFile(t, config.ConfigFilePath(home), content)
}

// WriteSchemaYAML writes schema.yaml into the config directory of home.
func WriteSchemaYAML(t *testing.T, home, content string) string {
	t.Helper()
	return writeFile(t, config.SchemaFilePath(home), content)
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
