package copier

import (
	"context"

	"github.com/gnames/gnpull/pkg/record"
)

// AttributeFinder returns a Finder that adopts the first local record of
// the same base model whose attributes equal the source values.
func AttributeFinder(attrs ...string) Finder {
	return func(
		ctx context.Context,
		src *record.Source,
		store record.LocalStore,
	) (*record.Local, error) {
		where := make(map[string]any, len(attrs))
		for _, v := range attrs {
			where[v], _ = src.Attr(v)
		}
		return store.FindBy(ctx, src.Type, where)
	}
}

// findReusable runs the finder configured for the source base model.
// The boolean is false if the model is not configured for reuse.
func (c *copyContext) findReusable(
	ctx context.Context,
	src *record.Source,
) (*record.Local, bool, error) {
	finder, ok := c.reuse[src.Type]
	if !ok {
		return nil, false, nil
	}
	res, err := finder(ctx, src, c.store)
	if err != nil {
		return nil, true, FinderError(src.Identity, err)
	}
	return res, true, nil
}

// findExisting locates the local record with the source primary key for
// models configured for update. The boolean is false for other models.
func (c *copyContext) findExisting(
	ctx context.Context,
	src *record.Source,
	typ string,
) (*record.Local, bool, error) {
	_, must := c.updateLocal[src.Type]
	_, optional := c.updateOptional[src.Type]
	if !must && !optional {
		return nil, false, nil
	}

	res, err := c.store.Find(ctx, typ, src.ID)
	if err != nil {
		return nil, true, FinderError(src.Identity, err)
	}
	if res == nil && must {
		return nil, true, MissingLocalRecordError(src.Identity)
	}
	if res != nil {
		c.debug("found local record", src.Identity)
	}
	return res, true, nil
}
