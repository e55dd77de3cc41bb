// Package iostore implements record.LocalStore and record.UnitOfWork with
// GORM. Records are written as column maps, so GORM model structs are not
// required and GORM hooks never run.
package iostore

import (
	"context"
	"errors"
	"maps"
	"reflect"

	"github.com/gnames/gnpull/pkg/record"
	"github.com/gnames/gnpull/pkg/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is a LocalStore bound to one GORM session, usually a
// transaction.
type Store struct {
	db  *gorm.DB
	cat *schema.Catalog

	// written keeps the last saved attributes per record, unchanged
	// records are not updated again.
	written map[*record.Local]map[string]any
}

// NewStore creates a Store.
func NewStore(db *gorm.DB, cat *schema.Catalog) *Store {
	return &Store{
		db:      db,
		cat:     cat,
		written: make(map[*record.Local]map[string]any),
	}
}

// FindBy returns the first record of a type with matching columns, or
// nil.
func (s *Store) FindBy(
	ctx context.Context,
	typ string,
	where map[string]any,
) (*record.Local, error) {
	if !s.cat.Has(typ) {
		return nil, UnknownModelError(typ)
	}
	table := s.cat.Table(typ)
	tx := s.db.WithContext(ctx).Table(table)
	for col, val := range where {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: val})
	}
	if col := s.cat.InheritanceColumn(typ); col != "" && s.cat.BaseType(typ) != typ {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: typ})
	}
	if pk, ok := s.cat.PrimaryKey(typ); ok {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: pk}})
	}

	var rows []map[string]any
	if err := tx.Limit(1).Find(&rows).Error; err != nil {
		return nil, QueryError(table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return s.toLocal(typ, rows[0]), nil
}

// Find returns a record by primary key, or nil.
func (s *Store) Find(
	ctx context.Context,
	typ string,
	id any,
) (*record.Local, error) {
	pk, ok := s.cat.PrimaryKey(typ)
	if !ok {
		if !s.cat.Has(typ) {
			return nil, UnknownModelError(typ)
		}
		return nil, nil
	}
	return s.FindBy(ctx, typ, map[string]any{pk: id})
}

// New returns an unsaved record. Subtypes get their inheritance column
// set to the model name.
func (s *Store) New(typ string) (*record.Local, error) {
	if !s.cat.Has(typ) {
		return nil, UnknownModelError(typ)
	}
	res := record.NewLocal(typ, s.cat.Columns(typ))
	if col := s.cat.InheritanceColumn(typ); col != "" && s.cat.BaseType(typ) != typ {
		res.Set(col, typ)
	}
	return res, nil
}

// HasPrimaryKey checks if the model has a primary key column.
func (s *Store) HasPrimaryKey(typ string) bool {
	_, ok := s.cat.PrimaryKey(typ)
	return ok
}

// Persist inserts a new record or updates a persisted one, then writes
// pending attachments.
func (s *Store) Persist(
	ctx context.Context,
	l *record.Local,
	skipHooks bool,
) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{SkipHooks: skipHooks})
	table := s.cat.Table(l.Type)
	if table == "" {
		return UnknownModelError(l.Type)
	}

	var err error
	if l.Persisted() {
		err = s.update(tx, table, l)
	} else {
		err = s.insert(tx, table, l)
	}
	if err != nil {
		return err
	}

	for _, a := range l.Pending() {
		if err = s.attach(tx, l, a); err != nil {
			return err
		}
	}
	l.ClearPending()
	return nil
}

func (s *Store) insert(tx *gorm.DB, table string, l *record.Local) error {
	values := maps.Clone(l.Attrs)
	if pk, ok := s.cat.PrimaryKey(l.Type); ok && l.ID != nil {
		values[pk] = l.ID
	}
	if err := tx.Table(table).Create(values).Error; err != nil {
		return QueryError(table, err)
	}
	l.MarkPersisted()
	s.written[l] = maps.Clone(l.Attrs)
	return nil
}

func (s *Store) update(tx *gorm.DB, table string, l *record.Local) error {
	if reflect.DeepEqual(s.written[l], l.Attrs) {
		return nil
	}
	pk, ok := s.cat.PrimaryKey(l.Type)
	if !ok {
		return NoPrimaryKeyError(l.Type)
	}

	values := maps.Clone(l.Attrs)
	delete(values, pk)
	if len(values) > 0 {
		err := tx.Table(table).
			Where(clause.Eq{Column: clause.Column{Name: pk}, Value: l.ID}).
			Updates(values).Error
		if err != nil {
			return QueryError(table, err)
		}
	}
	s.written[l] = maps.Clone(l.Attrs)
	return nil
}

func (s *Store) attach(tx *gorm.DB, owner *record.Local, a record.Attachment) error {
	e := a.Edge
	switch e.Kind {
	case record.HasOne, record.HasMany:
		a.Target.Attrs[e.ForeignKey] = owner.ID
		if e.ForeignType != "" {
			a.Target.Attrs[e.ForeignType] = e.PolymorphicValue
		}
		return s.update(tx, s.cat.Table(a.Target.Type), a.Target)
	case record.ManyToMany:
		row := map[string]any{
			e.JoinForeignKey: owner.ID,
			e.JoinTargetKey:  a.Target.ID,
		}
		if err := tx.Table(e.JoinTable).Create(row).Error; err != nil {
			return QueryError(e.JoinTable, err)
		}
	}
	return nil
}

// Linked checks if the join table already links owner and target.
func (s *Store) Linked(
	ctx context.Context,
	owner *record.Local,
	e record.Edge,
	target *record.Local,
) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Table(e.JoinTable).
		Where(clause.Eq{Column: clause.Column{Name: e.JoinForeignKey}, Value: owner.ID}).
		Where(clause.Eq{Column: clause.Column{Name: e.JoinTargetKey}, Value: target.ID}).
		Count(&n).Error
	if err != nil {
		return false, QueryError(e.JoinTable, err)
	}
	return n > 0, nil
}

func (s *Store) toLocal(typ string, row map[string]any) *record.Local {
	if col := s.cat.InheritanceColumn(typ); col != "" {
		if sub, ok := row[col].(string); ok && sub != "" {
			typ = s.cat.ResolveType(s.cat.BaseType(typ), sub)
		}
	}

	res := record.NewLocal(typ, s.cat.Columns(typ))
	pk, hasPK := s.cat.PrimaryKey(typ)
	for k, v := range row {
		if hasPK && k == pk {
			res.ID = v
			continue
		}
		res.Attrs[k] = v
	}
	res.MarkPersisted()
	s.written[res] = maps.Clone(res.Attrs)
	return res
}

// UnitOfWork runs copies inside GORM transactions.
type UnitOfWork struct {
	db     *gorm.DB
	cat    *schema.Catalog
	dryRun bool
}

// errDryRun rolls back a dry run.
var errDryRun = errors.New("dry run")

// NewUnitOfWork creates a UnitOfWork. With dryRun every transaction is
// rolled back after fn succeeds.
func NewUnitOfWork(db *gorm.DB, cat *schema.Catalog, dryRun bool) *UnitOfWork {
	return &UnitOfWork{db: db, cat: cat, dryRun: dryRun}
}

// Run calls fn with a Store bound to a new transaction.
func (u *UnitOfWork) Run(
	ctx context.Context,
	fn func(record.LocalStore) error,
) error {
	var fnErr error
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if fnErr = fn(NewStore(tx, u.cat)); fnErr != nil {
			return fnErr
		}
		if u.dryRun {
			return errDryRun
		}
		return nil
	})
	switch {
	case fnErr != nil:
		return fnErr
	case errors.Is(err, errDryRun):
		return nil
	case err != nil:
		return TransactionError(err)
	}
	return nil
}
