package ioschema

import (
	"slices"
	"strings"

	"github.com/gnames/gnpull/pkg/record"
	"github.com/gnames/gnpull/pkg/schema"
	gschema "gorm.io/gorm/schema"
)

// FromTables guesses a catalog from table and column names that follow
// Rails and GORM conventions: plural table names, "id" primary keys,
// "<name>_id" foreign keys, "<name>_type" polymorphic types and "type"
// inheritance columns. The result is a starting point for schema.yaml,
// join tables and subtypes have to be described by hand.
func FromTables(tables map[string][]string) (*schema.Catalog, error) {
	namer := gschema.NamingStrategy{}

	names := make([]string, 0, len(tables))
	for k := range tables {
		names = append(names, k)
	}
	slices.Sort(names)

	models := make(map[string]*schema.Model, len(names))
	for _, table := range names {
		cols := tables[table]
		m := &schema.Model{
			Name:    namer.SchemaName(table),
			Table:   table,
			Columns: cols,
		}
		if !slices.Contains(cols, "id") {
			m.NoPrimaryKey = true
		}
		if slices.Contains(cols, "type") {
			m.InheritanceColumn = "type"
		}
		models[table] = m
	}

	for _, table := range names {
		m := models[table]
		for _, col := range m.Columns {
			name, ok := strings.CutSuffix(col, "_id")
			if !ok || name == "" {
				continue
			}
			if slices.Contains(m.Columns, name+"_type") {
				m.Associations = append(m.Associations, schema.Association{
					Kind:        record.BelongsTo.String(),
					Name:        name,
					Polymorphic: true,
				})
				continue
			}

			target, ok := models[namer.TableName(name)]
			if !ok || target.NoPrimaryKey {
				continue
			}
			m.Associations = append(m.Associations, schema.Association{
				Kind:   record.BelongsTo.String(),
				Name:   name,
				Target: target.Name,
			})
			if m.NoPrimaryKey {
				continue
			}
			target.Associations = append(target.Associations,
				schema.Association{
					Kind:       record.HasMany.String(),
					Name:       table,
					Target:     m.Name,
					ForeignKey: col,
				})
		}
	}

	res := make([]schema.Model, 0, len(names))
	for _, table := range names {
		res = append(res, *models[table])
	}
	return schema.New(res...)
}
