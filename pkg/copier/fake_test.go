package copier

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/gnames/gnpull/pkg/record"
	"github.com/gnames/gnpull/pkg/schema"
)

// fakeSource serves rows kept in memory, resolving associations through
// a catalog the same way the SQL sources do.
type fakeSource struct {
	cat   *schema.Catalog
	ns    record.Namespace
	rows  map[string][]map[string]any // base model -> rows
	joins map[string][]map[string]any // join table -> rows
}

func newFakeSource(cat *schema.Catalog) *fakeSource {
	return &fakeSource{
		cat:   cat,
		rows:  make(map[string][]map[string]any),
		joins: make(map[string][]map[string]any),
	}
}

func (s *fakeSource) add(model string, row map[string]any) {
	base := s.cat.BaseType(model)
	s.rows[base] = append(s.rows[base], row)
}

func (s *fakeSource) join(table string, row map[string]any) {
	s.joins[table] = append(s.joins[table], row)
}

func (s *fakeSource) toSource(base string, row map[string]any) *record.Source {
	pk, _ := s.cat.PrimaryKey(base)
	model := base
	if col := s.cat.InheritanceColumn(base); col != "" {
		if sub, ok := row[col].(string); ok {
			model = s.cat.ResolveType(base, s.ns.Local(sub))
		}
	}
	return &record.Source{
		Identity: record.NewIdentity(base, row[pk]),
		Model:    model,
		Attrs:    row,
	}
}

func (s *fakeSource) Fetch(
	_ context.Context,
	id record.Identity,
) (*record.Source, error) {
	base := s.cat.BaseType(id.Type)
	pk, _ := s.cat.PrimaryKey(base)
	for _, row := range s.rows[base] {
		if record.NormalizeID(row[pk]) == id.ID {
			return s.toSource(base, row), nil
		}
	}
	return nil, record.ErrNotFound
}

func (s *fakeSource) Associations(model string) ([]record.Edge, error) {
	return s.cat.Edges(model)
}

func (s *fakeSource) Related(
	ctx context.Context,
	src *record.Source,
	e record.Edge,
) ([]*record.Source, error) {
	if e.Virtual {
		return nil, fmt.Errorf("virtual association %s is not readable", e.Name)
	}
	switch e.Kind {
	case record.BelongsTo:
		fk := src.Attrs[e.ForeignKey]
		if fk == nil {
			return nil, nil
		}
		target := e.Target
		if e.Polymorphic {
			typ, _ := src.Attrs[e.ForeignType].(string)
			target = s.ns.Local(typ)
		}
		res, err := s.Fetch(ctx, record.NewIdentity(s.cat.BaseType(target), fk))
		if err != nil {
			return nil, err
		}
		return []*record.Source{res}, nil
	case record.HasOne, record.HasMany:
		base := s.cat.BaseType(e.Target)
		var res []*record.Source
		for _, row := range s.rows[base] {
			if record.NormalizeID(row[e.ForeignKey]) != src.ID {
				continue
			}
			if e.ForeignType != "" && row[e.ForeignType] != e.PolymorphicValue {
				continue
			}
			res = append(res, s.toSource(base, row))
		}
		slices.SortFunc(res, func(a, b *record.Source) int {
			return cmp.Compare(fmt.Sprint(a.ID), fmt.Sprint(b.ID))
		})
		if e.Kind == record.HasOne && len(res) > 1 {
			res = res[:1]
		}
		return res, nil
	case record.ManyToMany:
		var res []*record.Source
		for _, row := range s.joins[e.JoinTable] {
			if record.NormalizeID(row[e.JoinForeignKey]) != src.ID {
				continue
			}
			id := record.NewIdentity(s.cat.BaseType(e.Target), row[e.JoinTargetKey])
			v, err := s.Fetch(ctx, id)
			if err != nil {
				return nil, err
			}
			res = append(res, v)
		}
		return res, nil
	}
	return nil, nil
}

// fakeStore keeps local records in memory and logs writes. Inserts fail
// when a belongs-to foreign key points to a missing record.
type fakeStore struct {
	cat     *schema.Catalog
	records map[record.Identity]*record.Local
	links   map[string]struct{}
	inserts []string
	updates int
	failOn  map[string]error // "Type#id" -> error
}

func newFakeStore(cat *schema.Catalog) *fakeStore {
	return &fakeStore{
		cat:     cat,
		records: make(map[record.Identity]*record.Local),
		links:   make(map[string]struct{}),
		failOn:  make(map[string]error),
	}
}

func (s *fakeStore) key(l *record.Local) record.Identity {
	return record.NewIdentity(s.cat.BaseType(l.Type), l.ID)
}

// seed stores an existing local record.
func (s *fakeStore) seed(typ string, id any, attrs map[string]any) *record.Local {
	l := record.NewLocal(typ, s.cat.Columns(typ))
	l.ID = record.NormalizeID(id)
	for k, v := range attrs {
		l.Attrs[k] = v
	}
	l.MarkPersisted()
	s.records[s.key(l)] = l
	return l
}

func (s *fakeStore) FindBy(
	_ context.Context,
	typ string,
	where map[string]any,
) (*record.Local, error) {
	base := s.cat.BaseType(typ)
	var res []*record.Local
	for k, l := range s.records {
		if k.Type != base {
			continue
		}
		match := true
		for col, val := range where {
			if l.Attrs[col] != val {
				match = false
				break
			}
		}
		if match {
			res = append(res, l)
		}
	}
	if len(res) == 0 {
		return nil, nil
	}
	slices.SortFunc(res, func(a, b *record.Local) int {
		return cmp.Compare(fmt.Sprint(a.ID), fmt.Sprint(b.ID))
	})
	return res[0], nil
}

func (s *fakeStore) Find(
	_ context.Context,
	typ string,
	id any,
) (*record.Local, error) {
	return s.records[record.NewIdentity(s.cat.BaseType(typ), id)], nil
}

func (s *fakeStore) New(typ string) (*record.Local, error) {
	if !s.cat.Has(typ) {
		return nil, fmt.Errorf("unknown model %s", typ)
	}
	return record.NewLocal(typ, s.cat.Columns(typ)), nil
}

func (s *fakeStore) HasPrimaryKey(typ string) bool {
	_, ok := s.cat.PrimaryKey(typ)
	return ok
}

func (s *fakeStore) Persist(
	_ context.Context,
	l *record.Local,
	skipHooks bool,
) error {
	if !skipHooks {
		return fmt.Errorf("hooks must be skipped")
	}
	name := fmt.Sprintf("%s#%v", l.Type, l.ID)
	if err, ok := s.failOn[name]; ok {
		return err
	}

	if !l.Persisted() {
		edges, _ := s.cat.Edges(l.Type)
		for _, e := range edges {
			if e.Kind != record.BelongsTo || e.Polymorphic {
				continue
			}
			fk, ok := l.Attrs[e.ForeignKey]
			if !ok || fk == nil {
				continue
			}
			id := record.NewIdentity(s.cat.BaseType(e.Target), fk)
			if id == s.key(l) {
				continue
			}
			if _, ok := s.records[id]; !ok {
				return fmt.Errorf("foreign key %s of %s points to missing %s",
					e.ForeignKey, name, id)
			}
		}
		l.MarkPersisted()
		s.records[s.key(l)] = l
		s.inserts = append(s.inserts, name)
	} else {
		s.updates++
	}

	for _, a := range l.Pending() {
		switch a.Edge.Kind {
		case record.HasOne, record.HasMany:
			a.Target.Attrs[a.Edge.ForeignKey] = l.ID
			if a.Edge.ForeignType != "" {
				a.Target.Attrs[a.Edge.ForeignType] = a.Edge.PolymorphicValue
			}
		case record.ManyToMany:
			s.links[s.linkKey(l, a.Edge, a.Target)] = struct{}{}
		}
	}
	l.ClearPending()
	return nil
}

func (s *fakeStore) linkKey(owner *record.Local, e record.Edge, target *record.Local) string {
	return fmt.Sprintf("%s:%v:%v", e.JoinTable,
		record.NormalizeID(owner.ID), record.NormalizeID(target.ID))
}

func (s *fakeStore) Linked(
	_ context.Context,
	owner *record.Local,
	e record.Edge,
	target *record.Local,
) (bool, error) {
	_, ok := s.links[s.linkKey(owner, e, target)]
	return ok, nil
}

// fakeUnitOfWork records whether the work was committed.
type fakeUnitOfWork struct {
	store     *fakeStore
	committed bool
}

func (u *fakeUnitOfWork) Run(
	ctx context.Context,
	fn func(record.LocalStore) error,
) error {
	if err := fn(u.store); err != nil {
		return err
	}
	u.committed = true
	return nil
}
