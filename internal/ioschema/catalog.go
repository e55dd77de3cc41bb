// Package ioschema reads and writes schema catalogs in YAML format.
package ioschema

import (
	"io"
	"os"

	"github.com/gnames/gnpull/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the catalog file.
func Load(path string) (*schema.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ReadError(path, err)
	}
	return parse(path, data)
}

// Parse reads a catalog from YAML data.
func Parse(data []byte) (*schema.Catalog, error) {
	return parse("<input>", data)
}

func parse(path string, data []byte) (*schema.Catalog, error) {
	var res schema.Catalog
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, ParseError(path, err)
	}
	if err := res.Init(); err != nil {
		return nil, ValidationError(path, err)
	}
	return &res, nil
}

// Write encodes the catalog as YAML.
func Write(w io.Writer, cat *schema.Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cat); err != nil {
		return err
	}
	return enc.Close()
}
