package iosource

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnpull/pkg/errcode"
)

// UnknownModelError is returned for models missing from the catalog.
func UnknownModelError(model string) error {
	msg := `Model <em>%s</em> is not described in the schema catalog

<em>How to fix:</em>
  1. Add the model to schema.yaml
  2. Or exclude the association that points to it`
	vars := []any{model}

	return &gn.Error{
		Code: errcode.SchemaUnknownModelError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown model %s", model),
	}
}

// QueryError is returned when reading rows of a remote table fails.
func QueryError(table string, err error) error {
	msg := "Cannot read remote table <em>%s</em>"
	vars := []any{table}

	return &gn.Error{
		Code: errcode.SourceQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot query %s: %w", table, err),
	}
}

// TablesError is returned when table metadata of the remote database
// cannot be read.
func TablesError(err error) error {
	msg := "Cannot read tables and columns of the remote database"

	return &gn.Error{
		Code: errcode.SourceTablesError,
		Msg:  msg,
		Err:  fmt.Errorf("cannot read tables: %w", err),
	}
}

// OpenError is returned when a snapshot file cannot be opened.
func OpenError(path string, err error) error {
	msg := `Cannot open SQLite snapshot <em>%s</em>

<em>How to fix:</em>
  1. Check the <em>remote.path</em> setting in config.yaml
  2. Make sure the file is a SQLite database`
	vars := []any{path}

	return &gn.Error{
		Code: errcode.SourceQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot open %s: %w", path, err),
	}
}
