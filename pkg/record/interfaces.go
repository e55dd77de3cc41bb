package record

import "context"

// RecordSource provides records and association metadata of the remote
// data source.
type RecordSource interface {
	// Fetch returns the record with the given identity, or ErrNotFound.
	Fetch(ctx context.Context, id Identity) (*Source, error)

	// Associations returns edges of a model in declaration order.
	Associations(model string) ([]Edge, error)

	// Related returns records reachable from src through the edge, in
	// source order. BelongsTo and HasOne edges yield at most one record.
	Related(ctx context.Context, src *Source, e Edge) ([]*Source, error)
}

// LocalStore reads and writes records of the destination store.
type LocalStore interface {
	// FindBy returns the first record of a type matching all values of
	// where. It returns nil and no error if nothing matches.
	FindBy(ctx context.Context, typ string, where map[string]any) (*Local, error)

	// Find returns a record by primary key, or nil if it does not exist.
	Find(ctx context.Context, typ string, id any) (*Local, error)

	// New returns an unsaved record of the type.
	New(typ string) (*Local, error)

	// HasPrimaryKey checks if the type has a primary key column.
	HasPrimaryKey(typ string) bool

	// Persist inserts or updates the record and flushes its pending
	// attachments. With skipHooks the store bypasses its own
	// validation and lifecycle hooks.
	Persist(ctx context.Context, l *Local, skipHooks bool) error

	// Linked checks if target is already linked to owner through a
	// ManyToMany edge.
	Linked(ctx context.Context, owner *Local, e Edge, target *Local) (bool, error)
}

// UnitOfWork runs a function atomically against a LocalStore. All writes
// are committed when fn returns nil and rolled back otherwise.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(LocalStore) error) error
}
