package config

import (
	"maps"
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

type side int

const (
	remote side = iota
	local
)

func (s side) String() string {
	if s == remote {
		return "Remote"
	}
	return "Local"
}

func (c *Config) database(s side) *DatabaseConfig {
	if s == remote {
		return &c.Remote
	}
	return &c.Local
}

func dbString(s side, field, val string, set func(*DatabaseConfig, string)) Option {
	val = strings.TrimSpace(val)
	return func(c *Config) {
		if isValidString(s.String()+" "+field, val) {
			set(c.database(s), val)
		}
	}
}

func dbInt(s side, field string, val int, set func(*DatabaseConfig, int)) Option {
	return func(c *Config) {
		if isValidInt(s.String()+" "+field, val) {
			set(c.database(s), val)
		}
	}
}

func dbEnum(s side, field, val string, set func(*DatabaseConfig, string)) Option {
	val = strings.ToLower(strings.TrimSpace(val))
	return func(c *Config) {
		if isValidEnum("Database."+field, val) {
			set(c.database(s), val)
		}
	}
}

func setDriver(d *DatabaseConfig, v string)   { d.Driver = v }
func setHost(d *DatabaseConfig, v string)     { d.Host = v }
func setPort(d *DatabaseConfig, v int)        { d.Port = v }
func setUser(d *DatabaseConfig, v string)     { d.User = v }
func setPassword(d *DatabaseConfig, v string) { d.Password = v }
func setDatabase(d *DatabaseConfig, v string) { d.Database = v }
func setSSLMode(d *DatabaseConfig, v string)  { d.SSLMode = v }
func setPath(d *DatabaseConfig, v string)     { d.Path = v }
func setBatchSize(d *DatabaseConfig, v int)   { d.BatchSize = v }

// OptRemoteDriver sets the remote database driver.
// Valid values: "postgres", "sqlite".
func OptRemoteDriver(s string) Option {
	return dbEnum(remote, "Driver", s, setDriver)
}

// OptRemoteHost sets the remote PostgreSQL server hostname or IP address.
func OptRemoteHost(s string) Option {
	return dbString(remote, "Host", s, setHost)
}

// OptRemotePort sets the remote PostgreSQL server port number.
func OptRemotePort(i int) Option {
	return dbInt(remote, "Port", i, setPort)
}

// OptRemoteUser sets the remote database username.
func OptRemoteUser(s string) Option {
	return dbString(remote, "User", s, setUser)
}

// OptRemotePassword sets the remote database password.
func OptRemotePassword(s string) Option {
	return dbString(remote, "Password", s, setPassword)
}

// OptRemoteDatabase sets the remote database name.
func OptRemoteDatabase(s string) Option {
	return dbString(remote, "Database", s, setDatabase)
}

// OptRemoteSSLMode sets the SSL connection mode of the remote database.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptRemoteSSLMode(s string) Option {
	return dbEnum(remote, "SSLMode", s, setSSLMode)
}

// OptRemotePath sets the SQLite snapshot file of the remote database.
func OptRemotePath(s string) Option {
	return dbString(remote, "Path", s, setPath)
}

// OptRemoteBatchSize sets the number of rows fetched per query.
func OptRemoteBatchSize(i int) Option {
	return dbInt(remote, "Batch Size", i, setBatchSize)
}

// OptLocalDriver sets the local database driver. Only "postgres" can be
// used for writing.
func OptLocalDriver(s string) Option {
	return dbEnum(local, "Driver", s, setDriver)
}

// OptLocalHost sets the local PostgreSQL server hostname or IP address.
func OptLocalHost(s string) Option {
	return dbString(local, "Host", s, setHost)
}

// OptLocalPort sets the local PostgreSQL server port number.
func OptLocalPort(i int) Option {
	return dbInt(local, "Port", i, setPort)
}

// OptLocalUser sets the local database username.
func OptLocalUser(s string) Option {
	return dbString(local, "User", s, setUser)
}

// OptLocalPassword sets the local database password.
func OptLocalPassword(s string) Option {
	return dbString(local, "Password", s, setPassword)
}

// OptLocalDatabase sets the local database name.
func OptLocalDatabase(s string) Option {
	return dbString(local, "Database", s, setDatabase)
}

// OptLocalSSLMode sets the SSL connection mode of the local database.
func OptLocalSSLMode(s string) Option {
	return dbEnum(local, "SSLMode", s, setSSLMode)
}

// OptLocalPath sets the SQLite file of the local database.
func OptLocalPath(s string) Option {
	return dbString(local, "Path", s, setPath)
}

// OptLocalBatchSize sets the batch size of the local database.
func OptLocalBatchSize(i int) Option {
	return dbInt(local, "Batch Size", i, setBatchSize)
}

// OptCopyReuse sets attributes used to find existing local records,
// per model. Entries with empty names are ignored.
func OptCopyReuse(m map[string]string) Option {
	return func(c *Config) {
		res := make(map[string]string)
		for k, v := range m {
			k, v = strings.TrimSpace(k), strings.TrimSpace(v)
			if k == "" || v == "" {
				continue
			}
			res[k] = v
		}
		if len(res) > 0 {
			c.Copy.Reuse = res
		}
	}
}

// OptCopyExclude sets attribute and association names that are not
// copied, per model.
func OptCopyExclude(m map[string][]string) Option {
	return func(c *Config) {
		res := make(map[string][]string)
		for k, vs := range m {
			k = strings.TrimSpace(k)
			names := cleanList(vs)
			if k == "" || len(names) == 0 {
				continue
			}
			res[k] = names
		}
		if len(res) > 0 {
			c.Copy.Exclude = res
		}
	}
}

// OptCopyIgnoreModel sets models that are not crawled into.
func OptCopyIgnoreModel(ss []string) Option {
	return func(c *Config) {
		if res := cleanList(ss); len(res) > 0 {
			c.Copy.IgnoreModel = res
		}
	}
}

// OptCopyUpdateLocalModel sets models whose local records must exist.
func OptCopyUpdateLocalModel(ss []string) Option {
	return func(c *Config) {
		if res := cleanList(ss); len(res) > 0 {
			c.Copy.UpdateLocalModel = res
		}
	}
}

// OptCopyUpdateOptionalLocalModel sets models whose local records are
// updated when they exist.
func OptCopyUpdateOptionalLocalModel(ss []string) Option {
	return func(c *Config) {
		if res := cleanList(ss); len(res) > 0 {
			c.Copy.UpdateOptionalLocalModel = res
		}
	}
}

// OptCopyTypePrefix sets the prefix removed from remote type names.
func OptCopyTypePrefix(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Copy Type Prefix", s) {
			c.Copy.TypePrefix = s
		}
	}
}

// OptCopyTypeMap sets explicit renames of remote type names.
func OptCopyTypeMap(m map[string]string) Option {
	return func(c *Config) {
		if len(m) > 0 {
			c.Copy.TypeMap = maps.Clone(m)
		}
	}
}

// OptCopySchemaFile sets the path to the schema catalog.
func OptCopySchemaFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Copy Schema File", s) {
			c.Copy.SchemaFile = s
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptDryRun rolls back copies instead of committing them.
// Runtime-only field - not in ToOptions().
func OptDryRun(b bool) Option {
	return func(c *Config) {
		c.DryRun = b
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}

func cleanList(ss []string) []string {
	var res []string
	for _, v := range ss {
		v = strings.TrimSpace(v)
		if v != "" {
			res = append(res, v)
		}
	}
	return res
}
