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
	"context"

	"github.com/gnames/gn"
	"github.com/gnames/gnpull/internal/iopull"
	"github.com/gnames/gnpull/pkg/config"
	"github.com/spf13/cobra"
)

// getPullCmd returns the pull command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getPullCmd() *cobra.Command {
	var (
		flags  copyFlags
		dryRun bool
	)

	pullCmd := &cobra.Command{
		Use:   "pull MODEL ID [ID...]",
		Short: "Copy records with their graphs into the local database",
		Long: `Copy records of a model from the remote database into the
local one.

For every ID this command:
  1. Reads the record from the remote database
  2. Copies records it belongs to, depth first
  3. Writes the local copy with foreign keys pointing to local records
  4. Copies has one, has many and many to many associations
  5. Commits the local transaction

Every ID is copied in its own transaction. Records that already exist
locally can be reused (copy.reuse) or updated (copy.update_local_model)
according to config.yaml.

Examples:
  # Copy order 42 with its customer, line items and tags
  gnpull pull Order 42

  # Copy several orders from a SQLite snapshot
  gnpull pull Order 1 2 3 --remote-driver sqlite --remote-path dump.sqlite

  # Check what would be copied without saving anything
  gnpull pull Order 42 --dry-run --log-level debug`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runPull(cmd, args, &flags, dryRun)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	flags.register(pullCmd)
	pullCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false,
		"copy inside a transaction that is rolled back")

	return pullCmd
}

func runPull(
	cmd *cobra.Command,
	args []string,
	flags *copyFlags,
	dryRun bool,
) error {
	var extra []config.Option
	if cmd.Flags().Changed("dry-run") {
		extra = append(extra, config.OptDryRun(dryRun))
	}
	if err := applyFlags(cmd, flags, extra...); err != nil {
		return err
	}

	ctx := context.Background()
	p := iopull.New(cfg)
	defer p.Close()

	_, err := p.Pull(ctx, args[0], args[1:])
	return err
}
