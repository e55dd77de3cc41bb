// Package gnpull defines the main use case of the application: pulling
// records with their graphs from the remote database into the local one.
package gnpull

import (
	"context"

	"github.com/gnames/gnpull/pkg/copier"
	"github.com/gnames/gnpull/pkg/schema"
)

// Puller copies remote records into the local database.
// Config is provided during construction.
type Puller interface {
	// Pull copies records of a model with the given IDs. Every ID is
	// copied in its own transaction, a failed ID does not roll back the
	// others.
	Pull(ctx context.Context, model string, ids []string) (Result, error)

	// Schema returns the schema catalog. With fromDB the catalog is
	// guessed from tables of the remote database instead of read from
	// schema.yaml.
	Schema(ctx context.Context, fromDB bool) (*schema.Catalog, error)

	// Close releases database connections.
	Close() error
}

// Result summarizes a Pull.
type Result struct {
	// Roots is the number of IDs copied successfully.
	Roots int
	// Failed is the number of IDs that could not be copied.
	Failed int
	// Stats accumulates statistics of all successful copies.
	Stats copier.Stats
}
