// Package copier copies a record and the graph of records it references
// from a RecordSource into a LocalStore.
//
// Belongs-to references are copied before the record that owns them, so
// foreign keys never point to missing local rows. Has-one, has-many and
// many-to-many references are copied after it and attached to the new
// local record. Every source record is resolved at most once per call
// to Copy, which makes cyclic graphs safe.
//
// The package is pure: it has no I/O besides calls to the interfaces
// defined in the record package.
package copier

import (
	"context"
	"errors"
	"time"

	"github.com/gnames/gnpull/pkg/record"
	"github.com/gnames/gnpull/pkg/schema"
	"github.com/google/uuid"
)

// Engine holds the immutable configuration of graph copies. It is safe to
// reuse an Engine for many calls to Copy, each call gets its own state.
type Engine struct {
	catalog *schema.Catalog
	source  record.RecordSource

	reuse          map[string]Finder
	exclude        map[string][]string
	ignore         map[string]struct{}
	updateLocal    map[string]struct{}
	updateOptional map[string]struct{}
	afterEach      map[string]Callback
	ns             record.Namespace
}

// New creates an Engine. The catalog provides primary keys, inheritance
// columns and subtypes. It can be nil for sources without inheritance,
// then "id" is used as the primary key of every model.
func New(
	cat *schema.Catalog,
	src record.RecordSource,
	opts ...Option,
) *Engine {
	res := &Engine{
		catalog:        cat,
		source:         src,
		reuse:          make(map[string]Finder),
		exclude:        make(map[string][]string),
		ignore:         make(map[string]struct{}),
		updateLocal:    make(map[string]struct{}),
		updateOptional: make(map[string]struct{}),
		afterEach:      make(map[string]Callback),
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Copy fetches the record with the given identity from the source and
// copies it with its graph into the store. It returns the local
// counterpart of the root record.
//
// Copy does not demarcate transactions. Use CopyIn to run the copy as one
// unit of work, or call Copy with a store that is already bound to a
// transaction.
func (e *Engine) Copy(
	ctx context.Context,
	store record.LocalStore,
	id record.Identity,
) (*record.Local, Stats, error) {
	start := time.Now()
	id = record.NewIdentity(id.Type, id.ID)

	src, err := e.source.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return nil, Stats{}, SourceNotFoundError(id, err)
		}
		return nil, Stats{}, err
	}

	c := newCopyContext(e, store, src.Identity)
	res, err := c.copy(ctx, src)
	c.stats.Duration = time.Since(start)
	if err != nil {
		return nil, c.stats, err
	}
	return res, c.stats, nil
}

// CopyIn runs Copy inside a unit of work. Nothing is committed unless the
// whole graph is copied.
func (e *Engine) CopyIn(
	ctx context.Context,
	uow record.UnitOfWork,
	id record.Identity,
) (*record.Local, Stats, error) {
	var res *record.Local
	var stats Stats
	err := uow.Run(ctx, func(store record.LocalStore) error {
		var err error
		res, stats, err = e.Copy(ctx, store, id)
		return err
	})
	if err != nil {
		return nil, stats, err
	}
	return res, stats, nil
}

func newRunID() string {
	return uuid.NewString()
}
