package ioschema

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnpull/pkg/errcode"
)

// ReadError is returned when the catalog file cannot be read.
func ReadError(path string, err error) error {
	msg := `Cannot read schema catalog <em>%s</em>

<em>How to fix:</em>
  1. Check the <em>copy.schema_file</em> setting in config.yaml
  2. Run <em>gnpull schema --from-db</em> to generate a catalog`
	vars := []any{path}

	return &gn.Error{
		Code: errcode.SchemaReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read %s: %w", path, err),
	}
}

// ParseError is returned when the catalog is not valid YAML.
func ParseError(path string, err error) error {
	msg := "Cannot parse YAML of schema catalog <em>%s</em>"
	vars := []any{path}

	return &gn.Error{
		Code: errcode.SchemaParseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot parse %s: %w", path, err),
	}
}

// ValidationError is returned when models of the catalog are
// inconsistent.
func ValidationError(path string, err error) error {
	msg := `Schema catalog <em>%s</em> is invalid:
  %s`
	vars := []any{path, err.Error()}

	return &gn.Error{
		Code: errcode.SchemaValidationError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid catalog %s: %w", path, err),
	}
}
