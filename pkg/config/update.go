package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, DryRun).
func (c *Config) ToOptions() []Option {
	var res []Option
	res = append(res, databaseOptions(remote, c.Remote)...)
	res = append(res, databaseOptions(local, c.Local)...)

	cp := c.Copy
	if len(cp.Reuse) > 0 {
		res = append(res, OptCopyReuse(cp.Reuse))
	}
	if len(cp.Exclude) > 0 {
		res = append(res, OptCopyExclude(cp.Exclude))
	}
	if len(cp.IgnoreModel) > 0 {
		res = append(res, OptCopyIgnoreModel(cp.IgnoreModel))
	}
	if len(cp.UpdateLocalModel) > 0 {
		res = append(res, OptCopyUpdateLocalModel(cp.UpdateLocalModel))
	}
	if len(cp.UpdateOptionalLocalModel) > 0 {
		res = append(res,
			OptCopyUpdateOptionalLocalModel(cp.UpdateOptionalLocalModel))
	}
	if cp.TypePrefix != "" {
		res = append(res, OptCopyTypePrefix(cp.TypePrefix))
	}
	if len(cp.TypeMap) > 0 {
		res = append(res, OptCopyTypeMap(cp.TypeMap))
	}
	if cp.SchemaFile != "" {
		res = append(res, OptCopySchemaFile(cp.SchemaFile))
	}

	s := c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}
	return res
}

func databaseOptions(sd side, d DatabaseConfig) []Option {
	var res []Option
	str := func(val string, set func(*DatabaseConfig, string), field string) {
		if val != "" {
			res = append(res, dbString(sd, field, val, set))
		}
	}
	num := func(val int, set func(*DatabaseConfig, int), field string) {
		if val > 0 {
			res = append(res, dbInt(sd, field, val, set))
		}
	}

	if d.Driver != "" {
		res = append(res, dbEnum(sd, "Driver", d.Driver, setDriver))
	}
	str(d.Host, setHost, "Host")
	num(d.Port, setPort, "Port")
	str(d.User, setUser, "User")
	str(d.Password, setPassword, "Password")
	str(d.Database, setDatabase, "Database")
	if d.SSLMode != "" {
		res = append(res, dbEnum(sd, "SSLMode", d.SSLMode, setSSLMode))
	}
	str(d.Path, setPath, "Path")
	num(d.BatchSize, setBatchSize, "Batch Size")
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Database.Driver": {"postgres": s, "sqlite": s},
		"Database.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
