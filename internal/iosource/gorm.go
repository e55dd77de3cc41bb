package iosource

import (
	"context"

	"github.com/gnames/gnpull/pkg/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormQuerier struct {
	db *gorm.DB
}

// NewGORM creates a Source that reads through a GORM connection. The
// connection stays open after Close, it belongs to the caller.
func NewGORM(db *gorm.DB, cat *schema.Catalog, opts ...Option) *Source {
	return newSource(gormQuerier{db: db}, cat, opts...)
}

func (g gormQuerier) rows(
	ctx context.Context,
	q query,
) ([]map[string]any, error) {
	tx := g.db.WithContext(ctx).Table(q.table)
	for _, c := range q.where {
		tx = tx.Where(clause.IN{
			Column: clause.Column{Name: c.column},
			Values: c.values,
		})
	}
	if q.order != "" {
		tx = tx.Order(q.order)
	}
	if q.limit > 0 {
		tx = tx.Limit(q.limit)
	}
	if q.offset > 0 {
		tx = tx.Offset(q.offset)
	}

	var res []map[string]any
	if err := tx.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (g gormQuerier) tables(
	ctx context.Context,
) (map[string][]string, error) {
	m := g.db.WithContext(ctx).Migrator()
	tables, err := m.GetTables()
	if err != nil {
		return nil, err
	}

	res := make(map[string][]string, len(tables))
	for _, t := range tables {
		cols, err := m.ColumnTypes(t)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.Name()
		}
		res[t] = names
	}
	return res, nil
}

func (g gormQuerier) close() error {
	return nil
}
