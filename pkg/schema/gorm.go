package schema

import (
	"fmt"
	"sync"

	"github.com/gnames/gnpull/pkg/record"
	gschema "gorm.io/gorm/schema"
)

// FromGORM builds a Catalog from GORM model structs. Relationships are
// detected by GORM the same way it does for preloading: belongs to,
// has one, has many (including polymorphic ones) and many2many.
func FromGORM(models ...any) (*Catalog, error) {
	cache := &sync.Map{}
	namer := gschema.NamingStrategy{}

	res := make([]Model, 0, len(models))
	for _, v := range models {
		s, err := gschema.Parse(v, cache, namer)
		if err != nil {
			return nil, fmt.Errorf("cannot parse GORM model %T: %w", v, err)
		}
		res = append(res, modelFromGORM(s))
	}
	return New(res...)
}

func modelFromGORM(s *gschema.Schema) Model {
	res := Model{
		Name:    s.Name,
		Table:   s.Table,
		Columns: s.DBNames,
	}
	if pk := s.PrioritizedPrimaryField; pk != nil {
		res.PrimaryKey = pk.DBName
	} else {
		res.NoPrimaryKey = true
	}

	rels := &s.Relationships
	for _, r := range rels.BelongsTo {
		a := Association{
			Kind:   record.BelongsTo.String(),
			Name:   r.Name,
			Target: r.FieldSchema.Name,
		}
		for _, ref := range r.References {
			if !ref.OwnPrimaryKey && ref.ForeignKey != nil {
				a.ForeignKey = ref.ForeignKey.DBName
				break
			}
		}
		res.Associations = append(res.Associations, a)
	}

	has := func(kind record.Kind, rs []*gschema.Relationship) {
		for _, r := range rs {
			a := Association{
				Kind:   kind.String(),
				Name:   r.Name,
				Target: r.FieldSchema.Name,
			}
			for _, ref := range r.References {
				if ref.PrimaryKey != nil && ref.ForeignKey != nil {
					a.ForeignKey = ref.ForeignKey.DBName
					break
				}
			}
			if p := r.Polymorphic; p != nil {
				a.ForeignType = p.PolymorphicType.DBName
				a.PolymorphicValue = p.Value
			}
			res.Associations = append(res.Associations, a)
		}
	}
	has(record.HasOne, rels.HasOne)
	has(record.HasMany, rels.HasMany)

	for _, r := range rels.Many2Many {
		a := Association{
			Kind:   record.ManyToMany.String(),
			Name:   r.Name,
			Target: r.FieldSchema.Name,
		}
		if r.JoinTable != nil {
			a.JoinTable = r.JoinTable.Table
		}
		for _, ref := range r.References {
			if ref.ForeignKey == nil {
				continue
			}
			if ref.OwnPrimaryKey {
				a.JoinForeignKey = ref.ForeignKey.DBName
			} else {
				a.JoinTargetKey = ref.ForeignKey.DBName
			}
		}
		res.Associations = append(res.Associations, a)
	}
	return res
}
