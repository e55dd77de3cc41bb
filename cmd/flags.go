/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"github.com/gnames/gnpull/internal/iologger"
	"github.com/gnames/gnpull/pkg/config"
	"github.com/spf13/cobra"
)

// copyFlags keeps flags shared by commands that read the databases.
type copyFlags struct {
	remoteDriver string
	remotePath   string
	remoteHost   string
	remoteDB     string
	localHost    string
	localDB      string
	schemaFile   string
	typePrefix   string
	ignore       []string
	logLevel     string
}

func (f *copyFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.remoteDriver, "remote-driver", "",
		"remote database driver (postgres or sqlite)")
	fs.StringVar(&f.remotePath, "remote-path", "",
		"path to a SQLite snapshot of the remote database")
	fs.StringVar(&f.remoteHost, "remote-host", "", "remote PostgreSQL host")
	fs.StringVar(&f.remoteDB, "remote-database", "", "remote database name")
	fs.StringVar(&f.localHost, "local-host", "", "local PostgreSQL host")
	fs.StringVar(&f.localDB, "local-database", "", "local database name")
	fs.StringVarP(&f.schemaFile, "schema", "s", "", "schema catalog file")
	fs.StringVar(&f.typePrefix, "type-prefix", "",
		"prefix removed from remote type names")
	fs.StringSliceVarP(&f.ignore, "ignore-model", "i", nil,
		"models that are copied but not crawled into")
	fs.StringVarP(&f.logLevel, "log-level", "l", "",
		"log level (debug, info, warn, error)")
}

// options converts explicitly set flags to config options.
func (f *copyFlags) options(cmd *cobra.Command) []config.Option {
	var res []config.Option
	changed := cmd.Flags().Changed

	type flagOpt struct {
		name string
		opt  func() config.Option
	}
	flags := []flagOpt{
		{"remote-driver", func() config.Option { return config.OptRemoteDriver(f.remoteDriver) }},
		{"remote-path", func() config.Option { return config.OptRemotePath(f.remotePath) }},
		{"remote-host", func() config.Option { return config.OptRemoteHost(f.remoteHost) }},
		{"remote-database", func() config.Option { return config.OptRemoteDatabase(f.remoteDB) }},
		{"local-host", func() config.Option { return config.OptLocalHost(f.localHost) }},
		{"local-database", func() config.Option { return config.OptLocalDatabase(f.localDB) }},
		{"schema", func() config.Option { return config.OptCopySchemaFile(f.schemaFile) }},
		{"type-prefix", func() config.Option { return config.OptCopyTypePrefix(f.typePrefix) }},
		{"ignore-model", func() config.Option { return config.OptCopyIgnoreModel(f.ignore) }},
		{"log-level", func() config.Option { return config.OptLogLevel(f.logLevel) }},
	}
	for _, v := range flags {
		if changed(v.name) {
			res = append(res, v.opt())
		}
	}
	return res
}

// applyFlags updates the configuration with flags of the command and
// restarts logging if its level changed.
func applyFlags(cmd *cobra.Command, f *copyFlags, extra ...config.Option) error {
	opts := append(f.options(cmd), extra...)
	if len(opts) == 0 {
		return nil
	}
	cfg.Update(opts)
	if !cmd.Flags().Changed("log-level") {
		return nil
	}

	if logCloser != nil {
		logCloser.Close()
	}
	var err error
	logCloser, err = iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log)
	return err
}
