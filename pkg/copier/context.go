package copier

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gnames/gnpull/pkg/record"
)

// copyContext keeps the state of one call to Engine.Copy.
type copyContext struct {
	*Engine
	store  record.LocalStore
	policy *exclusionPolicy
	runID  string

	// cache maps source identities to their local copies.
	cache map[record.Identity]*record.Local
	// adopted keeps local records found by reuse finders.
	adopted map[*record.Local]struct{}
	// resolving counts active backward passes per identity. A forward pass
	// starts a new scope, so only chains of belongs-to edges are cycles.
	resolving map[record.Identity]int
	// chain is the stack of identities with an active backward pass in the
	// current scope.
	chain []record.Identity

	// root is the identity Copy was called with.
	root record.Identity
	// rootForced stays true until the root forward pass completes. While
	// it is true the root associations ignore IgnoreModel.
	rootForced bool

	depth int
	stats Stats
}

func newCopyContext(
	e *Engine,
	store record.LocalStore,
	root record.Identity,
) *copyContext {
	return &copyContext{
		Engine:     e,
		store:      store,
		policy:     newExclusionPolicy(e),
		runID:      newRunID(),
		cache:      make(map[record.Identity]*record.Local),
		adopted:    make(map[*record.Local]struct{}),
		resolving:  make(map[record.Identity]int),
		root:       root,
		rootForced: true,
	}
}

// copy returns the local copy of src, creating it and its graph if it was
// not resolved yet.
func (c *copyContext) copy(
	ctx context.Context,
	src *record.Source,
) (*record.Local, error) {
	var refs []backRef
	var err error
	if _, ok := c.cache[src.Identity]; !ok {
		if refs, err = c.copyBelongsTo(ctx, src); err != nil {
			return nil, err
		}
	}

	if res, ok := c.cache[src.Identity]; ok {
		c.stats.Cached++
		c.debug("from cache...", src.Identity)
		return res, nil
	}

	return c.performCopy(ctx, src, refs)
}

func (c *copyContext) performCopy(
	ctx context.Context,
	src *record.Source,
	refs []backRef,
) (*record.Local, error) {
	res, err := c.localCopy(ctx, src, refs)
	if err != nil {
		return nil, err
	}
	c.cache[src.Identity] = res

	if _, ok := c.adopted[res]; ok {
		if src.Identity == c.root {
			c.rootForced = false
		}
		return res, nil
	}

	if err = c.copyAssociated(ctx, res, src); err != nil {
		return nil, err
	}
	return res, nil
}

// localCopy adopts an existing local record or writes a copy of src with
// its scalar attributes.
func (c *copyContext) localCopy(
	ctx context.Context,
	src *record.Source,
	refs []backRef,
) (*record.Local, error) {
	found, reusable, err := c.findReusable(ctx, src)
	if err != nil {
		return nil, err
	}
	if reusable && found != nil {
		c.debug("reusing...", src.Identity)
		c.copyAttributes(found, src, refs)
		if err = c.store.Persist(ctx, found, true); err != nil {
			return nil, PersistenceError(src.Identity, err)
		}
		c.adopted[found] = struct{}{}
		c.stats.Adopted++
		return found, nil
	}

	return c.createLocalCopy(ctx, src, refs)
}

func (c *copyContext) createLocalCopy(
	ctx context.Context,
	src *record.Source,
	refs []backRef,
) (*record.Local, error) {
	c.debug("copying...", src.Identity)
	typ := c.localType(src)

	res, update, err := c.findExisting(ctx, src, typ)
	if err != nil {
		return nil, err
	}

	if res == nil {
		if res, err = c.store.New(typ); err != nil {
			return nil, PersistenceError(src.Identity, err)
		}
		if c.store.HasPrimaryKey(typ) {
			res.ID = src.ID
		}
		c.stats.Created++
	} else if update {
		c.stats.Updated++
	}

	c.copyAttributes(res, src, refs)

	if err = c.store.Persist(ctx, res, true); err != nil {
		return nil, PersistenceError(src.Identity, err)
	}

	if err = c.invokeAfterEach(ctx, res, src); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *copyContext) invokeAfterEach(
	ctx context.Context,
	local *record.Local,
	src *record.Source,
) error {
	cb, ok := c.afterEach[local.Type]
	if !ok {
		cb, ok = c.afterEach[src.Type]
	}
	if !ok {
		return nil
	}
	if err := cb(ctx, local, src); err != nil {
		return CallbackError(src.Identity, err)
	}
	return nil
}

// copyBelongsTo copies records that src depends on. It returns resolved
// references, so the foreign keys of the local copy can point to them.
func (c *copyContext) copyBelongsTo(
	ctx context.Context,
	src *record.Source,
) ([]backRef, error) {
	c.resolving[src.Identity]++
	c.chain = append(c.chain, src.Identity)
	defer func() {
		c.resolving[src.Identity]--
		c.chain = c.chain[:len(c.chain)-1]
	}()

	edges, err := c.associationsToCopy(src, record.BelongsTo, false)
	if err != nil {
		return nil, err
	}

	var res []backRef
	err = c.nested(func() error {
		for _, e := range edges {
			related, err := c.source.Related(ctx, src, e)
			if err != nil {
				return UnresolvableAssociationError(src.Identity, e, err)
			}
			if len(related) == 0 {
				continue
			}
			target := related[0]

			// a record that references itself is written in one step
			if target.Identity == src.Identity {
				continue
			}

			_, cached := c.cache[target.Identity]
			if !cached && c.resolving[target.Identity] > 0 {
				chain := slices.Clone(c.chain)
				chain = append(chain, target.Identity)
				return CyclicDependencyError(chain)
			}

			local, err := c.copy(ctx, target)
			if err != nil {
				return err
			}
			res = append(res, backRef{edge: e, local: local})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// copyAssociated copies forward associations of src and attaches them to
// local. The root record ignores IgnoreModel. Nested records of ignored
// models are not crawled.
func (c *copyContext) copyAssociated(
	ctx context.Context,
	local *record.Local,
	src *record.Source,
) error {
	forced := c.rootForced && src.Identity == c.root
	if !forced && (c.policy.ignored(src.Model) || c.policy.ignored(src.Type)) {
		c.debug("not crawling ignored model", src.Identity)
		return nil
	}

	resolving, chain := c.resolving, c.chain
	c.resolving, c.chain = make(map[record.Identity]int), nil
	defer func() {
		c.resolving, c.chain = resolving, chain
	}()

	err := c.nested(func() error {
		for _, kind := range record.ForwardKinds {
			if err := c.copyAssociatedByKind(ctx, local, src, kind, !forced); err != nil {
				return err
			}
			if err := c.store.Persist(ctx, local, true); err != nil {
				return PersistenceError(src.Identity, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if src.Identity == c.root {
		c.rootForced = false
	}
	return nil
}

func (c *copyContext) copyAssociatedByKind(
	ctx context.Context,
	local *record.Local,
	src *record.Source,
	kind record.Kind,
	honorIgnore bool,
) error {
	edges, err := c.associationsToCopy(src, kind, honorIgnore)
	if err != nil {
		return err
	}

	for _, e := range edges {
		related, err := c.source.Related(ctx, src, e)
		if err != nil {
			return UnresolvableAssociationError(src.Identity, e, err)
		}

		switch kind {
		case record.HasOne:
			if len(related) == 0 {
				continue
			}
			if err = c.attach(ctx, local, e, related[0]); err != nil {
				return err
			}
		case record.HasMany:
			for _, v := range related {
				if err = c.attach(ctx, local, e, v); err != nil {
					return err
				}
			}
		case record.ManyToMany:
			for _, v := range related {
				if err = c.link(ctx, local, src, e, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// attach copies a has-one or has-many record and queues it on local.
func (c *copyContext) attach(
	ctx context.Context,
	local *record.Local,
	e record.Edge,
	related *record.Source,
) error {
	child, err := c.copy(ctx, related)
	if err != nil {
		return err
	}
	local.Attach(e, child)
	return nil
}

// link copies a many-to-many peer and queues it on local unless the pair
// is linked already.
func (c *copyContext) link(
	ctx context.Context,
	local *record.Local,
	src *record.Source,
	e record.Edge,
	related *record.Source,
) error {
	peer, err := c.copy(ctx, related)
	if err != nil {
		return err
	}
	if local.IsPending(e, peer) {
		return nil
	}
	linked, err := c.store.Linked(ctx, local, e, peer)
	if err != nil {
		return PersistenceError(src.Identity, err)
	}
	if linked {
		return nil
	}
	local.Attach(e, peer)
	c.stats.Attached++
	return nil
}

// associationsToCopy returns edges of the given kind that are not
// excluded for src.
func (c *copyContext) associationsToCopy(
	src *record.Source,
	kind record.Kind,
	honorIgnore bool,
) ([]record.Edge, error) {
	edges, err := c.source.Associations(src.Model)
	if err != nil {
		return nil, err
	}
	var res []record.Edge
	for _, e := range edges {
		if e.Kind != kind || c.policy.edge(src, e, honorIgnore) {
			continue
		}
		res = append(res, e)
	}
	return res, nil
}

func (c *copyContext) nested(fn func() error) error {
	c.depth++
	if c.depth > c.stats.MaxDepth {
		c.stats.MaxDepth = c.depth
	}
	defer func() { c.depth-- }()
	return fn()
}

func (c *copyContext) debug(msg string, id record.Identity) {
	margin := strings.Repeat("  ", c.depth)
	slog.Debug(fmt.Sprintf("%s%s %s", margin, id, msg),
		"run_id", c.runID,
		"depth", c.depth,
		"type", id.Type,
		"id", id.ID,
	)
}
