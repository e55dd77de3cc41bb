package iopull

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnpull/pkg/errcode"
)

// NoRootsError is returned when Pull gets no IDs.
func NoRootsError(model string) error {
	msg := "No IDs given for model <em>%s</em>"
	vars := []any{model}

	return &gn.Error{
		Code: errcode.CopyNoRootsError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no IDs for %s", model),
	}
}

// LocalDriverError is returned when the local database is not
// PostgreSQL.
func LocalDriverError(driver string) error {
	msg := `Local database driver <em>%s</em> is not supported

Only the remote database can be a SQLite snapshot.
Set <em>local.driver</em> to <em>postgres</em> in config.yaml.`
	vars := []any{driver}

	return &gn.Error{
		Code: errcode.PullLocalDriverError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unsupported local driver %s", driver),
	}
}

// MissingTablesError is returned when tables of the catalog do not exist
// in the local database.
func MissingTablesError(tables []string) error {
	msg := `Local database misses tables: <em>%s</em>

<em>How to fix:</em>
  1. Run migrations of the local application
  2. Or remove the models from schema.yaml`
	list := strings.Join(tables, ", ")
	vars := []any{list}

	return &gn.Error{
		Code: errcode.PullMissingTablesError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("missing local tables: %s", list),
	}
}

// FailedRootsError is returned when some of the requested IDs were not
// copied.
func FailedRootsError(failed, total int) error {
	msg := "Could not copy <em>%d</em> of <em>%d</em> records, see the log for details"
	vars := []any{failed, total}

	return &gn.Error{
		Code: errcode.PullFailedRootsError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%d of %d roots failed", failed, total),
	}
}
