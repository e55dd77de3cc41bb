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
	"os"

	"github.com/gnames/gn"
	"github.com/gnames/gnpull/internal/iopull"
	"github.com/gnames/gnpull/internal/ioschema"
	"github.com/spf13/cobra"
)

// getSchemaCmd returns the schema command.
func getSchemaCmd() *cobra.Command {
	var (
		flags  copyFlags
		fromDB bool
	)

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema catalog",
		Long: `Print the schema catalog as YAML.

Without flags the command validates and prints schema.yaml. With
--from-db it reads tables and columns of the remote database and guesses
models and associations from Rails and GORM naming conventions. The
result is a starting point for schema.yaml.

Examples:
  gnpull schema
  gnpull schema --from-db > ~/.config/gnpull/schema.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSchema(cmd, &flags, fromDB)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	flags.register(schemaCmd)
	schemaCmd.Flags().BoolVarP(&fromDB, "from-db", "d", false,
		"guess the catalog from remote tables")

	return schemaCmd
}

func runSchema(cmd *cobra.Command, flags *copyFlags, fromDB bool) error {
	if err := applyFlags(cmd, flags); err != nil {
		return err
	}

	p := iopull.New(cfg)
	defer p.Close()

	cat, err := p.Schema(context.Background(), fromDB)
	if err != nil {
		return err
	}
	return ioschema.Write(os.Stdout, cat)
}
