// Package ioconfig loads configuration from config.yaml and environment
// variables. This is an impure package that handles file system
// operations.
package ioconfig

import (
	"os"
	"strings"

	"github.com/gnames/gnpull/internal/iofs"
	"github.com/gnames/gnpull/pkg/config"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of all environment variables.
const EnvPrefix = "GNPULL"

// Load reads config.yaml from the config directory under homeDir and
// applies GNPULL_* environment variables on top of it. A missing file is
// not an error, then only defaults and environment variables are used.
// An empty homeDir skips the file.
//
// The result contains only persistent fields. Apply it to a Config from
// config.New() with Update(res.ToOptions()).
func Load(homeDir string) (*config.Config, error) {
	var err error
	v := viper.New()
	v.SetConfigType("yaml")
	initEnvVars(v)

	var cfgPath string
	if homeDir != "" {
		cfgPath = config.ConfigFilePath(homeDir)
		if _, err = os.Stat(cfgPath); err == nil {
			v.SetConfigFile(cfgPath)
			if err = v.ReadInConfig(); err != nil {
				return nil, iofs.ReadFileError(cfgPath, err)
			}
		} else {
			cfgPath = ""
		}
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	if cfgPath != "" {
		if err = readModelMaps(cfgPath, &res.Copy); err != nil {
			return nil, err
		}
	}

	return &res, nil
}

// readModelMaps reads maps keyed by model names directly from the YAML
// file, because viper lowercases map keys.
func readModelMaps(path string, cp *config.CopyConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return iofs.ReadFileError(path, err)
	}

	var file struct {
		Copy struct {
			Reuse   map[string]string   `yaml:"reuse"`
			Exclude map[string][]string `yaml:"exclude"`
			TypeMap map[string]string   `yaml:"type_map"`
		} `yaml:"copy"`
	}
	if err = yaml.Unmarshal(data, &file); err != nil {
		return iofs.ReadFileError(path, err)
	}

	cp.Reuse = file.Copy.Reuse
	cp.Exclude = file.Copy.Exclude
	cp.TypeMap = file.Copy.TypeMap
	return nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions() - i.e., persistent
	// configuration that can be stored in config.yaml.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, db := range []string{"remote", "local"} {
		for _, field := range []string{
			"driver", "host", "port", "user", "password", "database",
			"ssl_mode", "path", "batch_size",
		} {
			key := db + "." + field
			_ = v.BindEnv(key, strings.ToUpper(db+"_"+field))
		}
	}

	// Copy configuration. Maps are only read from config.yaml.
	_ = v.BindEnv("copy.ignore_model", "COPY_IGNORE_MODEL")
	_ = v.BindEnv("copy.update_local_model", "COPY_UPDATE_LOCAL_MODEL")
	_ = v.BindEnv("copy.update_optional_local_model",
		"COPY_UPDATE_OPTIONAL_LOCAL_MODEL")
	_ = v.BindEnv("copy.type_prefix", "COPY_TYPE_PREFIX")
	_ = v.BindEnv("copy.schema_file", "COPY_SCHEMA_FILE")

	// Log configuration
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "LOG_FORMAT")
	_ = v.BindEnv("log.destination", "LOG_DESTINATION")

	v.AutomaticEnv()
}
