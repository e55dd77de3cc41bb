package copier

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnpull/pkg/errcode"
	"github.com/gnames/gnpull/pkg/record"
	"github.com/gnames/gnpull/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T, models ...schema.Model) *schema.Catalog {
	t.Helper()
	res, err := schema.New(models...)
	require.Nil(t, err)
	return res
}

func customerModel(assoc ...schema.Association) schema.Model {
	return schema.Model{
		Name:         "Customer",
		Table:        "customers",
		Columns:      []string{"id", "name", "email"},
		Associations: assoc,
	}
}

// shopModels returns Order, LineItem, Tag and Note models. Customer is
// added by tests, because its associations vary.
func shopModels() []schema.Model {
	return []schema.Model{
		{
			Name:    "Order",
			Table:   "orders",
			Columns: []string{"id", "number", "customer_id"},
			Associations: []schema.Association{
				{Kind: "belongs_to", Name: "customer", Target: "Customer"},
				{
					Kind: "has_many", Name: "line_items", Target: "LineItem",
					ForeignKey: "order_id",
				},
				{
					Kind: "has_and_belongs_to_many", Name: "tags", Target: "Tag",
					JoinTable: "orders_tags", JoinForeignKey: "order_id",
					JoinTargetKey: "tag_id",
				},
			},
		},
		{
			Name:    "LineItem",
			Table:   "line_items",
			Columns: []string{"id", "order_id", "qty"},
			Associations: []schema.Association{
				{Kind: "belongs_to", Name: "order", Target: "Order"},
			},
		},
		{Name: "Tag", Table: "tags", Columns: []string{"id", "name"}},
		{
			Name:    "Note",
			Table:   "notes",
			Columns: []string{"id", "customer_id", "body"},
		},
	}
}

func shopSource(cat *schema.Catalog) *fakeSource {
	src := newFakeSource(cat)
	src.add("Customer", map[string]any{
		"id": 9, "name": "Ann", "email": "ann@example.org",
	})
	src.add("Order", map[string]any{"id": 1, "number": "A-1", "customer_id": 9})
	src.add("Order", map[string]any{"id": 2, "number": "A-2", "customer_id": 9})
	src.add("LineItem", map[string]any{"id": 1, "order_id": 1, "qty": 3})
	src.add("LineItem", map[string]any{"id": 2, "order_id": 1, "qty": 5})
	src.add("LineItem", map[string]any{"id": 3, "order_id": 2, "qty": 1})
	src.add("Note", map[string]any{"id": 1, "customer_id": 9, "body": "vip"})
	return src
}

func codeOf(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr), "error should be *gn.Error")
	return gnErr.Code
}

func TestCopyOrderGraph(t *testing.T) {
	cat := newCatalog(t, append(shopModels(), customerModel())...)
	store := newFakeStore(cat)
	eng := New(cat, shopSource(cat))

	res, stats, err := eng.Copy(context.Background(), store,
		record.NewIdentity("Order", 1))
	require.Nil(t, err)

	assert.Equal(t, "Order", res.Type)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t,
		[]string{"Customer#9", "Order#1", "LineItem#1", "LineItem#2"},
		store.inserts)
	assert.Len(t, store.records, 4)
	assert.Equal(t, int64(9), res.Attrs["customer_id"])
	assert.Equal(t, "A-1", res.Attrs["number"])

	for _, id := range []int{1, 2} {
		li := store.records[record.NewIdentity("LineItem", id)]
		require.NotNil(t, li)
		assert.Equal(t, int64(1), li.Attrs["order_id"])
	}
	assert.Empty(t, res.Pending())
	assert.Equal(t, 4, stats.Created)
	assert.Equal(t, 4, stats.Copied())
	assert.Greater(t, stats.MaxDepth, 0)
}

func TestCopyCycle(t *testing.T) {
	customer := customerModel(schema.Association{
		Kind: "has_many", Name: "orders", Target: "Order",
		ForeignKey: "customer_id",
	})
	cat := newCatalog(t, append(shopModels(), customer)...)

	tests := []struct {
		msg  string
		root record.Identity
	}{
		{"from customer", record.NewIdentity("Customer", 9)},
		{"from order", record.NewIdentity("Order", 1)},
		{"from line item", record.NewIdentity("LineItem", 2)},
	}

	for _, v := range tests {
		store := newFakeStore(cat)
		eng := New(cat, shopSource(cat))
		_, _, err := eng.Copy(context.Background(), store, v.root)
		require.Nil(t, err, v.msg)

		assert.Len(t, store.inserts, 6, v.msg)
		assert.Equal(t, "Customer#9", store.inserts[0], v.msg)
		for _, id := range []int{1, 2} {
			o := store.records[record.NewIdentity("Order", id)]
			require.NotNil(t, o, v.msg)
			assert.Equal(t, int64(9), o.Attrs["customer_id"], v.msg)
		}
	}
}

func TestCopyIdempotent(t *testing.T) {
	customer := customerModel(schema.Association{
		Kind: "has_many", Name: "orders", Target: "Order",
		ForeignKey: "customer_id",
	})
	cat := newCatalog(t, append(shopModels(), customer)...)
	src := shopSource(cat)
	src.add("Tag", map[string]any{"id": 5, "name": "gift"})
	src.join("orders_tags", map[string]any{"order_id": 1, "tag_id": 5})
	src.join("orders_tags", map[string]any{"order_id": 2, "tag_id": 5})

	store := newFakeStore(cat)
	eng := New(cat, src)
	root := record.NewIdentity("Customer", 9)
	c := newCopyContext(eng, store, root)

	fetched, err := src.Fetch(context.Background(), root)
	require.Nil(t, err)

	first, err := c.copy(context.Background(), fetched)
	require.Nil(t, err)
	inserts := len(store.inserts)

	second, err := c.copy(context.Background(), fetched)
	require.Nil(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, inserts, len(store.inserts))

	var tags int
	for _, v := range store.inserts {
		if v == "Tag#5" {
			tags++
		}
	}
	assert.Equal(t, 1, tags, "shared tag is copied once")
	assert.Len(t, store.links, 2)
}

func TestCopyCyclicBelongsTo(t *testing.T) {
	cat := newCatalog(t,
		schema.Model{
			Name: "Author", Table: "authors",
			Associations: []schema.Association{
				{Kind: "belongs_to", Name: "best_book", Target: "Book"},
			},
		},
		schema.Model{
			Name: "Book", Table: "books",
			Associations: []schema.Association{
				{Kind: "belongs_to", Name: "author", Target: "Author"},
			},
		},
	)
	src := newFakeSource(cat)
	src.add("Author", map[string]any{"id": 1, "best_book_id": 1})
	src.add("Book", map[string]any{"id": 1, "author_id": 1})

	store := newFakeStore(cat)
	_, _, err := New(cat, src).Copy(context.Background(), store,
		record.NewIdentity("Author", 1))
	require.NotNil(t, err)
	assert.Equal(t, errcode.CopyCyclicDependencyError, codeOf(t, err))
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Contains(t, gnErr.Err.Error(),
		"<Author - 1> -> <Book - 1> -> <Author - 1>")
	assert.Empty(t, store.inserts)
}

func TestCopyMixedCycle(t *testing.T) {
	customer := customerModel(schema.Association{
		Kind: "has_many", Name: "payments", Target: "Payment",
		ForeignKey: "customer_id",
	})
	payment := schema.Model{
		Name: "Payment", Table: "payments",
		Columns: []string{"id", "customer_id", "order_id"},
		Associations: []schema.Association{
			{Kind: "belongs_to", Name: "order", Target: "Order"},
		},
	}
	cat := newCatalog(t, append(shopModels(), customer, payment)...)
	src := shopSource(cat)
	src.add("Payment", map[string]any{"id": 7, "customer_id": 9, "order_id": 1})

	tests := []struct {
		msg  string
		root record.Identity
	}{
		{"from order", record.NewIdentity("Order", 1)},
		{"from payment", record.NewIdentity("Payment", 7)},
		{"from customer", record.NewIdentity("Customer", 9)},
	}

	for _, v := range tests {
		store := newFakeStore(cat)
		_, _, err := New(cat, src).Copy(context.Background(), store, v.root)
		require.Nil(t, err, v.msg)

		assert.Equal(t, "Customer#9", store.inserts[0], v.msg)
		assert.Contains(t, store.inserts, "Order#1", v.msg)
		assert.Contains(t, store.inserts, "Payment#7", v.msg)
		pay := store.records[record.NewIdentity("Payment", 7)]
		require.NotNil(t, pay, v.msg)
		assert.Equal(t, int64(1), pay.Attrs["order_id"], v.msg)
		assert.Equal(t, int64(9), pay.Attrs["customer_id"], v.msg)
	}
}

func TestCopySelfReference(t *testing.T) {
	cat := newCatalog(t, schema.Model{
		Name: "Category", Table: "categories",
		Associations: []schema.Association{
			{Kind: "belongs_to", Name: "parent", Target: "Category"},
		},
	})
	src := newFakeSource(cat)
	src.add("Category", map[string]any{"id": 1, "parent_id": 1, "name": "root"})
	src.add("Category", map[string]any{"id": 2, "parent_id": 1, "name": "leaf"})

	store := newFakeStore(cat)
	res, _, err := New(cat, src).Copy(context.Background(), store,
		record.NewIdentity("Category", 2))
	require.Nil(t, err)
	assert.Equal(t, []string{"Category#1", "Category#2"}, store.inserts)
	assert.Equal(t, int64(1), res.Attrs["parent_id"])
}

func projectCatalog(t *testing.T) *schema.Catalog {
	hasMany := func(name, target, fk string) schema.Association {
		return schema.Association{
			Kind: "has_many", Name: name, Target: target, ForeignKey: fk,
		}
	}
	return newCatalog(t,
		schema.Model{
			Name: "Project", Table: "projects",
			Associations: []schema.Association{
				hasMany("tasks", "Task", "project_id"),
				hasMany("members", "Member", "project_id"),
			},
		},
		schema.Model{
			Name: "Task", Table: "tasks",
			Associations: []schema.Association{
				hasMany("comments", "Comment", "task_id"),
			},
		},
		schema.Model{
			Name: "Member", Table: "members",
			Associations: []schema.Association{
				hasMany("badges", "Badge", "member_id"),
			},
		},
		schema.Model{Name: "Comment", Table: "comments"},
		schema.Model{Name: "Badge", Table: "badges"},
	)
}

func TestCopyIgnoreModel(t *testing.T) {
	cat := projectCatalog(t)
	src := newFakeSource(cat)
	src.add("Project", map[string]any{"id": 1})
	src.add("Task", map[string]any{"id": 1, "project_id": 1})
	src.add("Member", map[string]any{"id": 1, "project_id": 1})
	src.add("Comment", map[string]any{"id": 1, "task_id": 1})
	src.add("Badge", map[string]any{"id": 1, "member_id": 1})

	tests := []struct {
		msg    string
		ignore []string
		res    []string
	}{
		{
			msg: "nothing ignored",
			res: []string{
				"Project#1", "Task#1", "Comment#1", "Member#1", "Badge#1",
			},
		},
		{
			msg:    "ignored root is crawled, ignored nested owner is not",
			ignore: []string{"Project", "Task"},
			res:    []string{"Project#1", "Task#1", "Member#1", "Badge#1"},
		},
		{
			msg:    "ignored targets of nested records are skipped",
			ignore: []string{"Badge", "Comment"},
			res:    []string{"Project#1", "Task#1", "Member#1"},
		},
		{
			msg:    "ignored targets of the root are copied",
			ignore: []string{"Task", "Member"},
			res:    []string{"Project#1", "Task#1", "Member#1"},
		},
	}

	for _, v := range tests {
		store := newFakeStore(cat)
		eng := New(cat, src, OptIgnoreModel(v.ignore...))
		_, _, err := eng.Copy(context.Background(), store,
			record.NewIdentity("Project", 1))
		require.Nil(t, err, v.msg)
		assert.Equal(t, v.res, store.inserts, v.msg)
	}
}

func TestCopyReuse(t *testing.T) {
	customer := customerModel(schema.Association{
		Kind: "has_many", Name: "notes", Target: "Note",
		ForeignKey: "customer_id",
	})
	cat := newCatalog(t, append(shopModels(), customer)...)
	store := newFakeStore(cat)
	existing := store.seed("Customer", 100, map[string]any{
		"name": "Old name", "email": "ann@example.org",
	})

	eng := New(cat, shopSource(cat),
		OptReuse("Customer", AttributeFinder("email")))
	res, stats, err := eng.Copy(context.Background(), store,
		record.NewIdentity("Order", 1))
	require.Nil(t, err)

	assert.Equal(t, int64(100), res.Attrs["customer_id"])
	assert.Equal(t, "Ann", existing.Attrs["name"], "attributes are refreshed")
	assert.Equal(t, int64(100), existing.ID)
	assert.Equal(t, 1, stats.Adopted)
	assert.Equal(t,
		[]string{"Order#1", "LineItem#1", "LineItem#2"}, store.inserts,
		"adopted records are not crawled")
}

func TestCopyReuseRoot(t *testing.T) {
	customer := customerModel(schema.Association{
		Kind: "has_many", Name: "notes", Target: "Note",
		ForeignKey: "customer_id",
	})
	cat := newCatalog(t, append(shopModels(), customer)...)
	store := newFakeStore(cat)
	existing := store.seed("Customer", 100, map[string]any{
		"email": "ann@example.org",
	})

	eng := New(cat, shopSource(cat),
		OptReuse("Customer", AttributeFinder("email")))
	res, _, err := eng.Copy(context.Background(), store,
		record.NewIdentity("Customer", 9))
	require.Nil(t, err)
	assert.Same(t, existing, res)
	assert.Empty(t, store.inserts)
}

func TestCopyManyToMany(t *testing.T) {
	cat := newCatalog(t, append(shopModels(), customerModel())...)
	src := shopSource(cat)
	src.add("Tag", map[string]any{"id": 5, "name": "gift"})
	src.add("Tag", map[string]any{"id": 6, "name": "rush"})
	src.join("orders_tags", map[string]any{"order_id": 1, "tag_id": 5})
	src.join("orders_tags", map[string]any{"order_id": 1, "tag_id": 5})
	src.join("orders_tags", map[string]any{"order_id": 1, "tag_id": 6})

	store := newFakeStore(cat)
	// the link to tag 6 exists already
	store.links["orders_tags:1:6"] = struct{}{}

	_, stats, err := New(cat, src).Copy(context.Background(), store,
		record.NewIdentity("Order", 1))
	require.Nil(t, err)

	assert.Equal(t, 1, stats.Attached)
	assert.Len(t, store.links, 2)
	assert.Contains(t, store.links, "orders_tags:1:5")
	assert.Contains(t, store.inserts, "Tag#5")
	assert.Contains(t, store.inserts, "Tag#6")
}

func TestCopyUpdateLocalModel(t *testing.T) {
	cat := newCatalog(t, append(shopModels(), customerModel())...)
	ctx := context.Background()
	root := record.NewIdentity("Order", 1)

	t.Run("missing local record", func(t *testing.T) {
		store := newFakeStore(cat)
		eng := New(cat, shopSource(cat), OptUpdateLocalModel("Customer"))
		_, _, err := eng.Copy(ctx, store, root)
		require.NotNil(t, err)
		assert.Equal(t, errcode.CopyMissingLocalRecordError, codeOf(t, err))
		assert.Empty(t, store.inserts)
	})

	t.Run("existing local record", func(t *testing.T) {
		store := newFakeStore(cat)
		existing := store.seed("Customer", 9, map[string]any{"name": "Old"})
		eng := New(cat, shopSource(cat), OptUpdateLocalModel("Customer"))
		_, stats, err := eng.Copy(ctx, store, root)
		require.Nil(t, err)
		assert.Equal(t, "Ann", existing.Attrs["name"])
		assert.Equal(t, 1, stats.Updated)
		assert.NotContains(t, store.inserts, "Customer#9")
	})

	t.Run("optional local record", func(t *testing.T) {
		store := newFakeStore(cat)
		eng := New(cat, shopSource(cat),
			OptUpdateOptionalLocalModel("Customer"))
		_, stats, err := eng.Copy(ctx, store, root)
		require.Nil(t, err)
		assert.Contains(t, store.inserts, "Customer#9")
		assert.Equal(t, 0, stats.Updated)
	})
}

func TestCopyAfterEach(t *testing.T) {
	cat := newCatalog(t, append(shopModels(), customerModel())...)
	ctx := context.Background()

	var seen []any
	cb := func(_ context.Context, l *record.Local, src *record.Source) error {
		assert.True(t, l.Persisted())
		assert.Equal(t, src.ID, l.ID)
		seen = append(seen, l.ID)
		return nil
	}
	eng := New(cat, shopSource(cat), OptAfterEach("LineItem", cb))
	_, _, err := eng.Copy(ctx, newFakeStore(cat), record.NewIdentity("Order", 1))
	require.Nil(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, seen)

	failing := func(context.Context, *record.Local, *record.Source) error {
		return errors.New("boom")
	}
	eng = New(cat, shopSource(cat), OptAfterEach("Customer", failing))
	_, _, err = eng.Copy(ctx, newFakeStore(cat), record.NewIdentity("Order", 1))
	require.NotNil(t, err)
	assert.Equal(t, errcode.CopyCallbackError, codeOf(t, err))
}

func vehicleCatalog(t *testing.T) *schema.Catalog {
	return newCatalog(t,
		schema.Model{
			Name: "Vehicle", Table: "vehicles", InheritanceColumn: "type",
			Columns: []string{"id", "type", "name"},
		},
		schema.Model{Name: "Truck", Base: "Vehicle"},
		schema.Model{
			Name: "Picture", Table: "pictures",
			Columns: []string{"id", "imageable_id", "imageable_type"},
			Associations: []schema.Association{
				{Kind: "belongs_to", Name: "imageable", Polymorphic: true},
			},
		},
	)
}

func TestCopySubtypes(t *testing.T) {
	cat := vehicleCatalog(t)
	ns := record.Namespace{Prefix: "Legacy::"}
	src := newFakeSource(cat)
	src.ns = ns
	src.add("Vehicle", map[string]any{
		"id": 3, "type": "Legacy::Truck", "name": "Big",
	})
	src.add("Picture", map[string]any{
		"id": 1, "imageable_id": 3, "imageable_type": "Legacy::Truck",
	})

	t.Run("subtype is remapped", func(t *testing.T) {
		store := newFakeStore(cat)
		eng := New(cat, src, OptNamespace(ns))
		res, _, err := eng.Copy(context.Background(), store,
			record.NewIdentity("Vehicle", 3))
		require.Nil(t, err)
		assert.Equal(t, "Truck", res.Type)
		assert.Equal(t, "Truck", res.Attrs["type"])
	})

	t.Run("polymorphic target ignores ignore list", func(t *testing.T) {
		store := newFakeStore(cat)
		eng := New(cat, src, OptNamespace(ns), OptIgnoreModel("Vehicle"))
		res, _, err := eng.Copy(context.Background(), store,
			record.NewIdentity("Picture", 1))
		require.Nil(t, err)
		assert.Equal(t, []string{"Truck#3", "Picture#1"}, store.inserts)
		assert.Equal(t, int64(3), res.Attrs["imageable_id"])
		assert.Equal(t, "Vehicle", res.Attrs["imageable_type"])
	})
}

func TestCopyAttributes(t *testing.T) {
	cat := newCatalog(t, append(shopModels(), customerModel())...)
	src := shopSource(cat)
	src.rows["Customer"][0]["legacy_flag"] = true

	store := newFakeStore(cat)
	eng := New(cat, src, OptExclude("Order", "number", "tags"))
	res, stats, err := eng.Copy(context.Background(), store,
		record.NewIdentity("Order", 1))
	require.Nil(t, err)

	assert.Equal(t, 1, stats.SkippedAttrs)
	cust := store.records[record.NewIdentity("Customer", 9)]
	require.NotNil(t, cust)
	assert.NotContains(t, cust.Attrs, "legacy_flag")
	assert.NotContains(t, res.Attrs, "number")
	assert.NotContains(t, res.Attrs, "id", "primary key is not an attribute")
}

func TestCopyExcludeAssociations(t *testing.T) {
	customer := customerModel(schema.Association{
		Kind: "has_many", Name: "notes", Target: "Note",
		ForeignKey: "customer_id",
	})
	cat := newCatalog(t, append(shopModels(), customer)...)

	tests := []struct {
		msg  string
		opts []Option
		res  []string
	}{
		{
			msg: "all",
			res: []string{"Customer#9", "Note#1"},
		},
		{
			msg:  "by name",
			opts: []Option{OptExclude("Customer", "notes")},
			res:  []string{"Customer#9"},
		},
		{
			msg:  "all associations",
			opts: []Option{OptExclude("Customer", AllAssociations)},
			res:  []string{"Customer#9"},
		},
	}

	for _, v := range tests {
		store := newFakeStore(cat)
		eng := New(cat, shopSource(cat), v.opts...)
		_, _, err := eng.Copy(context.Background(), store,
			record.NewIdentity("Customer", 9))
		require.Nil(t, err, v.msg)
		assert.Equal(t, v.res, store.inserts, v.msg)
	}
}

func TestCopyErrors(t *testing.T) {
	cat := newCatalog(t, append(shopModels(), customerModel())...)
	ctx := context.Background()

	t.Run("root not found", func(t *testing.T) {
		_, _, err := New(cat, shopSource(cat)).Copy(ctx, newFakeStore(cat),
			record.NewIdentity("Order", 42))
		require.NotNil(t, err)
		assert.Equal(t, errcode.SourceNotFoundError, codeOf(t, err))
	})

	t.Run("dangling reference", func(t *testing.T) {
		src := shopSource(cat)
		src.add("Order", map[string]any{"id": 7, "customer_id": 77})
		_, _, err := New(cat, src).Copy(ctx, newFakeStore(cat),
			record.NewIdentity("Order", 7))
		require.NotNil(t, err)
		assert.Equal(t, errcode.CopyUnresolvableAssociationError,
			codeOf(t, err))
	})

	t.Run("persistence failure", func(t *testing.T) {
		store := newFakeStore(cat)
		cause := errors.New("constraint violation")
		store.failOn["LineItem#2"] = cause
		uow := &fakeUnitOfWork{store: store}

		_, _, err := New(cat, shopSource(cat)).CopyIn(ctx, uow,
			record.NewIdentity("Order", 1))
		require.NotNil(t, err)
		assert.Equal(t, errcode.CopyPersistenceError, codeOf(t, err))
		var gnErr *gn.Error
		require.True(t, errors.As(err, &gnErr))
		assert.ErrorIs(t, gnErr.Err, cause)
		assert.False(t, uow.committed)
	})

	t.Run("unit of work commits", func(t *testing.T) {
		uow := &fakeUnitOfWork{store: newFakeStore(cat)}
		res, _, err := New(cat, shopSource(cat)).CopyIn(ctx, uow,
			record.NewIdentity("Order", 1))
		require.Nil(t, err)
		assert.NotNil(t, res)
		assert.True(t, uow.committed)
	})
}

func TestCopyHasOne(t *testing.T) {
	customer := customerModel(schema.Association{
		Kind: "has_one", Name: "profile", Target: "Profile",
		ForeignKey: "customer_id",
	})
	profile := schema.Model{
		Name: "Profile", Table: "profiles",
		Columns: []string{"id", "customer_id", "bio"},
	}
	cat := newCatalog(t, append(shopModels(), customer, profile)...)
	src := shopSource(cat)
	src.add("Profile", map[string]any{"id": 1, "customer_id": 9, "bio": "a"})
	src.add("Profile", map[string]any{"id": 2, "customer_id": 9, "bio": "b"})

	store := newFakeStore(cat)
	res, _, err := New(cat, src).Copy(context.Background(), store,
		record.NewIdentity("Customer", 9))
	require.Nil(t, err)

	assert.Equal(t, []string{"Customer#9", "Profile#1"}, store.inserts)
	p := store.records[record.NewIdentity("Profile", 1)]
	require.NotNil(t, p)
	assert.Equal(t, int64(9), p.Attrs["customer_id"])
	assert.Empty(t, res.Pending())
}

func TestCopyThroughAssociation(t *testing.T) {
	customer := customerModel(
		schema.Association{
			Kind: "has_many", Name: "notes", Target: "Note",
			ForeignKey: "customer_id",
		},
		schema.Association{
			Kind: "has_many", Name: "line_items", Target: "LineItem",
			Through: true,
		},
	)
	cat := newCatalog(t, append(shopModels(), customer)...)

	store := newFakeStore(cat)
	_, _, err := New(cat, shopSource(cat)).Copy(context.Background(), store,
		record.NewIdentity("Customer", 9))
	require.Nil(t, err)
	assert.Equal(t, []string{"Customer#9", "Note#1"}, store.inserts)
}

func TestCopyLargeGraphs(t *testing.T) {
	t.Run("deep chain", func(t *testing.T) {
		cat := newCatalog(t, schema.Model{
			Name: "Node", Table: "nodes",
			Columns: []string{"id", "parent_id"},
			Associations: []schema.Association{
				{Kind: "belongs_to", Name: "parent", Target: "Node"},
			},
		})
		depth := 3000
		src := newFakeSource(cat)
		src.add("Node", map[string]any{"id": 1, "parent_id": nil})
		for i := 2; i <= depth; i++ {
			src.add("Node", map[string]any{"id": i, "parent_id": i - 1})
		}

		store := newFakeStore(cat)
		res, stats, err := New(cat, src).Copy(context.Background(), store,
			record.NewIdentity("Node", depth))
		require.Nil(t, err)
		assert.Equal(t, int64(depth-1), res.Attrs["parent_id"])
		assert.Equal(t, depth, stats.Created)
		assert.Equal(t, depth, stats.MaxDepth)
		assert.Equal(t, "Node#1", store.inserts[0])
	})

	t.Run("wide tree", func(t *testing.T) {
		cat := projectCatalog(t)
		src := newFakeSource(cat)
		src.add("Project", map[string]any{"id": 1})
		tasks := 500
		for i := 1; i <= tasks; i++ {
			src.add("Task", map[string]any{"id": i, "project_id": 1})
			for j := 0; j < 2; j++ {
				src.add("Comment", map[string]any{
					"id": i*10 + j, "task_id": i,
				})
			}
		}

		store := newFakeStore(cat)
		_, stats, err := New(cat, src).Copy(context.Background(), store,
			record.NewIdentity("Project", 1))
		require.Nil(t, err)
		assert.Equal(t, 1+tasks*3, stats.Created)
		assert.Equal(t, 1+tasks*3, len(store.records))
	})
}
