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
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gnames/gn"
	"github.com/gnames/gnpull/internal/ioconfig"
	"github.com/gnames/gnpull/internal/iofs"
	"github.com/gnames/gnpull/internal/iologger"
	app "github.com/gnames/gnpull/pkg"
	"github.com/gnames/gnpull/pkg/config"
	"github.com/spf13/cobra"
)

var (
	homeDir   string
	cfg       *config.Config
	logCloser io.Closer
)

// getRootCmd returns the root command with all subcommands.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "gnpull",
		Short:   "GNpull copies records with their graphs between databases",
		Long: `GNpull copies a record from a remote database into a local one,
together with every record it references: records it belongs to are
copied first, records that belong to it (has one, has many, many to
many) are copied after it. Foreign keys are rewritten to local IDs.

Models and associations are described in a schema catalog
(~/.config/gnpull/schema.yaml).

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (GNPULL_*)
  3. Config file (~/.config/gnpull/config.yaml)
  4. Built-in defaults

Environment variables:
  GNPULL_REMOTE_HOST, GNPULL_REMOTE_DATABASE, GNPULL_REMOTE_DRIVER,
  GNPULL_REMOTE_PATH, GNPULL_LOCAL_HOST, GNPULL_LOCAL_DATABASE,
  GNPULL_COPY_IGNORE_MODEL, GNPULL_LOG_LEVEL and others follow the
  keys of config.yaml.`,
		PersistentPreRunE:  bootstrap,
		PersistentPostRunE: shutdown,
		SilenceErrors:      true,
		SilenceUsage:       true,
	}

	rootCmd.SetVersionTemplate("{{.Version}}\n")
	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for gnpull")

	rootCmd.AddCommand(getPullCmd())
	rootCmd.AddCommand(getSchemaCmd())
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureSchemaFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgFile *config.Config
	if cfgFile, err = ioconfig.Load(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	cfg.Update(cfgFile.ToOptions())
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	if logCloser, err = iologger.Init(config.LogDir(homeDir), cfg.Log); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"command", cmd.Name(),
	)
	return nil
}

func shutdown(cmd *cobra.Command, args []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
