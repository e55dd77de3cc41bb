// Package iosource implements record.RecordSource on top of SQL databases.
// Rows are read as maps, models and associations come from a schema
// catalog. There are two backends: GORM for PostgreSQL and database/sql
// for SQLite snapshot files.
package iosource

import (
	"context"
	"fmt"
	"strings"

	"github.com/gnames/gnpull/pkg/record"
	"github.com/gnames/gnpull/pkg/schema"
)

// cond limits a column to one of the values.
type cond struct {
	column string
	values []any
}

// query is a select from one table.
type query struct {
	table  string
	where  []cond
	order  string
	limit  int
	offset int
}

// querier executes selects for a backend.
type querier interface {
	rows(ctx context.Context, q query) ([]map[string]any, error)
	tables(ctx context.Context) (map[string][]string, error)
	close() error
}

// Source reads remote records.
type Source struct {
	q         querier
	cat       *schema.Catalog
	ns        record.Namespace
	batchSize int
}

// Option configures a Source.
type Option func(*Source)

// OptNamespace sets the remapping of remote type names.
func OptNamespace(ns record.Namespace) Option {
	return func(s *Source) {
		s.ns = ns
	}
}

// OptBatchSize sets how many rows of a has-many collection or a join
// table are read per query. Zero reads everything at once.
func OptBatchSize(i int) Option {
	return func(s *Source) {
		if i >= 0 {
			s.batchSize = i
		}
	}
}

func newSource(q querier, cat *schema.Catalog, opts ...Option) *Source {
	res := &Source{q: q, cat: cat}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Close releases resources owned by the source.
func (s *Source) Close() error {
	return s.q.close()
}

// Tables returns column names per table of the remote database.
func (s *Source) Tables(ctx context.Context) (map[string][]string, error) {
	res, err := s.q.tables(ctx)
	if err != nil {
		return nil, TablesError(err)
	}
	return res, nil
}

// Fetch returns a record by identity or record.ErrNotFound.
func (s *Source) Fetch(
	ctx context.Context,
	id record.Identity,
) (*record.Source, error) {
	if !s.cat.Has(id.Type) {
		return nil, UnknownModelError(id.Type)
	}
	base := s.cat.BaseType(id.Type)
	pk, ok := s.cat.PrimaryKey(base)
	if !ok {
		return nil, fmt.Errorf("model %s has no primary key: %w",
			base, record.ErrNotFound)
	}

	table := s.cat.Table(base)
	rows, err := s.q.rows(ctx, query{
		table: table,
		where: []cond{{column: pk, values: []any{id.ID}}},
		limit: 1,
	})
	if err != nil {
		return nil, QueryError(table, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", id, record.ErrNotFound)
	}
	return s.toSource(base, rows[0]), nil
}

// Associations returns edges of a model.
func (s *Source) Associations(model string) ([]record.Edge, error) {
	if !s.cat.Has(model) {
		return nil, UnknownModelError(model)
	}
	return s.cat.Edges(model)
}

// Related returns records reachable from src through an edge.
func (s *Source) Related(
	ctx context.Context,
	src *record.Source,
	e record.Edge,
) ([]*record.Source, error) {
	switch e.Kind {
	case record.BelongsTo:
		return s.belongsTo(ctx, src, e)
	case record.HasOne, record.HasMany:
		return s.has(ctx, src, e)
	case record.ManyToMany:
		return s.manyToMany(ctx, src, e)
	}
	return nil, nil
}

func (s *Source) belongsTo(
	ctx context.Context,
	src *record.Source,
	e record.Edge,
) ([]*record.Source, error) {
	fk := src.Attrs[e.ForeignKey]
	if fk == nil {
		return nil, nil
	}

	target := e.Target
	if e.Polymorphic {
		typ := str(src.Attrs[e.ForeignType])
		if typ == "" {
			return nil, nil
		}
		target = s.ns.Local(typ)
		if !s.cat.Has(target) {
			return nil, UnknownModelError(target)
		}
	}

	res, err := s.Fetch(ctx, record.NewIdentity(s.cat.BaseType(target), fk))
	if err != nil {
		return nil, err
	}
	return []*record.Source{res}, nil
}

func (s *Source) has(
	ctx context.Context,
	src *record.Source,
	e record.Edge,
) ([]*record.Source, error) {
	base := s.cat.BaseType(e.Target)
	q := query{
		table: s.cat.Table(base),
		where: []cond{{column: e.ForeignKey, values: []any{src.ID}}},
		order: s.order(base, e.OrderBy),
	}
	if e.ForeignType != "" {
		q.where = append(q.where, cond{
			column: e.ForeignType,
			values: s.remoteNames(e.PolymorphicValue),
		})
	}
	if col := s.cat.InheritanceColumn(base); col != "" && e.Target != base {
		var names []any
		for _, v := range s.subtypes(e.Target) {
			names = append(names, s.remoteNames(v)...)
		}
		q.where = append(q.where, cond{column: col, values: names})
	}

	var rows []map[string]any
	var err error
	if e.Kind == record.HasOne {
		q.limit = 1
		rows, err = s.q.rows(ctx, q)
	} else {
		rows, err = s.all(ctx, q)
	}
	if err != nil {
		return nil, QueryError(q.table, err)
	}

	res := make([]*record.Source, 0, len(rows))
	for _, row := range rows {
		res = append(res, s.toSource(base, row))
	}
	return res, nil
}

func (s *Source) manyToMany(
	ctx context.Context,
	src *record.Source,
	e record.Edge,
) ([]*record.Source, error) {
	q := query{
		table: e.JoinTable,
		where: []cond{{column: e.JoinForeignKey, values: []any{src.ID}}},
		order: quote(e.JoinTargetKey),
	}
	rows, err := s.all(ctx, q)
	if err != nil {
		return nil, QueryError(q.table, err)
	}

	base := s.cat.BaseType(e.Target)
	res := make([]*record.Source, 0, len(rows))
	for _, row := range rows {
		id := row[e.JoinTargetKey]
		if id == nil {
			continue
		}
		v, err := s.Fetch(ctx, record.NewIdentity(base, id))
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

// all reads every row of a query in batches.
func (s *Source) all(ctx context.Context, q query) ([]map[string]any, error) {
	if s.batchSize == 0 {
		return s.q.rows(ctx, q)
	}

	var res []map[string]any
	q.limit = s.batchSize
	for {
		rows, err := s.q.rows(ctx, q)
		if err != nil {
			return nil, err
		}
		res = append(res, rows...)
		if len(rows) < s.batchSize {
			return res, nil
		}
		q.offset += s.batchSize
	}
}

func (s *Source) toSource(base string, row map[string]any) *record.Source {
	pk, _ := s.cat.PrimaryKey(base)
	model := base
	if col := s.cat.InheritanceColumn(base); col != "" {
		if sub := str(row[col]); sub != "" {
			model = s.cat.ResolveType(base, s.ns.Local(sub))
		}
	}
	return &record.Source{
		Identity: record.NewIdentity(base, row[pk]),
		Model:    model,
		Attrs:    row,
	}
}

func (s *Source) order(model, orderBy string) string {
	if orderBy != "" {
		return orderBy
	}
	if pk, ok := s.cat.PrimaryKey(model); ok {
		return quote(pk)
	}
	return ""
}

// remoteNames returns type names the remote database may keep for a
// local model.
func (s *Source) remoteNames(local string) []any {
	names := s.ns.Remote(local)
	res := make([]any, len(names))
	for i, v := range names {
		res[i] = v
	}
	return res
}

// subtypes returns the model followed by all its descendants.
func (s *Source) subtypes(model string) []string {
	res := []string{model}
	for _, name := range s.cat.Names() {
		if name == model {
			continue
		}
		m, _ := s.cat.Model(name)
		for m != nil && m.Base != "" {
			if m.Base == model {
				res = append(res, name)
				break
			}
			m, _ = s.cat.Model(m.Base)
		}
	}
	return res
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func str(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}
