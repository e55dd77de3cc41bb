package copier

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnpull/pkg/errcode"
	"github.com/gnames/gnpull/pkg/record"
)

// PersistenceError is returned when the local store rejects a write.
// The whole copy is rolled back.
func PersistenceError(id record.Identity, err error) error {
	msg := `Cannot save local copy of <em>%s</em> with ID <em>%v</em>

<em>Possible causes:</em>
  - Constraint violation in the local database
  - Required column missing in the local schema

<em>How to fix:</em>
  1. Compare remote and local schemas of the model
  2. Exclude the offending attribute in config.yaml`
	vars := []any{id.Type, id.ID}

	return &gn.Error{
		Code: errcode.CopyPersistenceError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot persist %s: %w", id, err),
	}
}

// MissingLocalRecordError is returned when a model configured in
// update_local_model has no local record with the source ID.
func MissingLocalRecordError(id record.Identity) error {
	msg := `Local record <em>%s</em> with ID <em>%v</em> does not exist

The model is listed in <em>update_local_model</em>, so the record
must exist locally before copying.`
	vars := []any{id.Type, id.ID}

	return &gn.Error{
		Code: errcode.CopyMissingLocalRecordError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("missing required local record %s", id),
	}
}

// UnresolvableAssociationError is returned when the source cannot supply
// a record referenced through an association.
func UnresolvableAssociationError(
	id record.Identity,
	e record.Edge,
	err error,
) error {
	msg := `Cannot resolve association <em>%s</em> of <em>%s</em> with ID <em>%v</em>

The remote data source references a record it cannot supply.`
	vars := []any{e.Name, id.Type, id.ID}

	return &gn.Error{
		Code: errcode.CopyUnresolvableAssociationError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("cannot resolve %s of %s: %w",
			e.Name, id, err),
	}
}

// CyclicDependencyError is returned when records depend on each other
// through belongs-to associations, so none of them can be written first.
func CyclicDependencyError(chain []record.Identity) error {
	parts := make([]string, len(chain))
	for i, v := range chain {
		parts[i] = v.String()
	}
	path := strings.Join(parts, " -> ")
	msg := `Cyclic belongs-to dependency between records

<em>Chain:</em> %s

<em>How to fix:</em>
  Exclude one of the associations in the chain in config.yaml`
	vars := []any{path}

	return &gn.Error{
		Code: errcode.CopyCyclicDependencyError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cyclic dependency: %s", path),
	}
}

// FinderError is returned when looking up a local record fails.
func FinderError(id record.Identity, err error) error {
	msg := `Cannot look up local record for <em>%s</em> with ID <em>%v</em>`
	vars := []any{id.Type, id.ID}

	return &gn.Error{
		Code: errcode.CopyFinderError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot find local record for %s: %w", id, err),
	}
}

// CallbackError is returned when an after-each callback fails.
func CallbackError(id record.Identity, err error) error {
	msg := `Callback failed for <em>%s</em> with ID <em>%v</em>`
	vars := []any{id.Type, id.ID}

	return &gn.Error{
		Code: errcode.CopyCallbackError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("callback failed for %s: %w", id, err),
	}
}

// SourceNotFoundError is returned when the root record does not exist in
// the remote data source.
func SourceNotFoundError(id record.Identity, err error) error {
	msg := `Record <em>%s</em> with ID <em>%v</em> not found in remote database`
	vars := []any{id.Type, id.ID}

	return &gn.Error{
		Code: errcode.SourceNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot fetch %s: %w", id, err),
	}
}
