// Package schema provides explicit metadata about models that exist both
// in the remote data source and in the local store: tables, primary keys,
// single table inheritance and associations.
//
// A Catalog is usually read from schema.yaml (see internal/ioschema) or
// derived from GORM model structs with FromGORM.
package schema

import (
	"fmt"
	"slices"

	"github.com/gnames/gnpull/pkg/record"
)

// Catalog is a validated collection of models.
type Catalog struct {
	// Models in declaration order.
	Models []Model `yaml:"models"`

	index map[string]int
}

// Model describes one record type.
type Model struct {
	// Name of the model, for example "Order".
	Name string `yaml:"name"`

	// Table keeps records of the model. Subtypes inherit the table of
	// their base model.
	Table string `yaml:"table,omitempty"`

	// PrimaryKey column. Defaults to "id" unless NoPrimaryKey is set.
	PrimaryKey string `yaml:"primary_key,omitempty"`

	// NoPrimaryKey is true for tables without a primary key column.
	NoPrimaryKey bool `yaml:"no_primary_key,omitempty"`

	// InheritanceColumn keeps the subtype name for single table
	// inheritance, usually "type".
	InheritanceColumn string `yaml:"inheritance_column,omitempty"`

	// Base is the parent model of a subtype.
	Base string `yaml:"base,omitempty"`

	// Columns of the local table. If empty, any column is accepted.
	Columns []string `yaml:"columns,omitempty"`

	// Associations in declaration order.
	Associations []Association `yaml:"associations,omitempty"`
}

// Association describes one edge of a model.
type Association struct {
	Kind             string `yaml:"kind"`
	Name             string `yaml:"name"`
	Target           string `yaml:"target,omitempty"`
	Polymorphic      bool   `yaml:"polymorphic,omitempty"`
	Through          bool   `yaml:"through,omitempty"`
	ForeignKey       string `yaml:"foreign_key,omitempty"`
	ForeignType      string `yaml:"foreign_type,omitempty"`
	PolymorphicValue string `yaml:"polymorphic_value,omitempty"`
	JoinTable        string `yaml:"join_table,omitempty"`
	JoinForeignKey   string `yaml:"join_foreign_key,omitempty"`
	JoinTargetKey    string `yaml:"join_target_key,omitempty"`
	OrderBy          string `yaml:"order_by,omitempty"`
}

// New creates a Catalog from models, filling defaults and validating
// references between models.
func New(models ...Model) (*Catalog, error) {
	res := &Catalog{Models: models}
	if err := res.Init(); err != nil {
		return nil, err
	}
	return res, nil
}

// Init fills defaults and validates the catalog. It has to be called
// after the catalog is unmarshalled from YAML.
func (c *Catalog) Init() error {
	c.index = make(map[string]int, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("model #%d has no name", i+1)
		}
		if _, ok := c.index[m.Name]; ok {
			return fmt.Errorf("model %s is declared twice", m.Name)
		}
		c.index[m.Name] = i
	}

	for i := range c.Models {
		m := &c.Models[i]
		if m.Base != "" {
			if _, ok := c.index[m.Base]; !ok {
				return fmt.Errorf("model %s: unknown base model %s",
					m.Name, m.Base)
			}
			if _, err := c.chain(m.Name); err != nil {
				return err
			}
		}
		if !m.NoPrimaryKey && m.PrimaryKey == "" && m.Base == "" {
			m.PrimaryKey = "id"
		}
	}

	for i := range c.Models {
		m := &c.Models[i]
		if m.Table == "" && m.Base == "" {
			return fmt.Errorf("model %s has no table", m.Name)
		}
		for j := range m.Associations {
			if err := c.initAssociation(m, &m.Associations[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Catalog) initAssociation(m *Model, a *Association) error {
	kind, err := record.ParseKind(a.Kind)
	if err != nil {
		return fmt.Errorf("model %s, association %s: %w", m.Name, a.Name, err)
	}
	a.Kind = kind.String()
	if a.Name == "" {
		return fmt.Errorf("model %s has an association without name", m.Name)
	}
	if a.Polymorphic && kind != record.BelongsTo {
		return fmt.Errorf("model %s, association %s: only belongs_to "+
			"can be polymorphic", m.Name, a.Name)
	}
	if !a.Polymorphic {
		if a.Target == "" {
			return fmt.Errorf("model %s, association %s has no target",
				m.Name, a.Name)
		}
		if _, ok := c.index[a.Target]; !ok {
			return fmt.Errorf("model %s, association %s: unknown target %s",
				m.Name, a.Name, a.Target)
		}
	}
	if a.Through {
		return nil
	}

	switch kind {
	case record.BelongsTo:
		if a.ForeignKey == "" {
			a.ForeignKey = a.Name + "_id"
		}
		if a.Polymorphic && a.ForeignType == "" {
			a.ForeignType = a.Name + "_type"
		}
	case record.HasOne, record.HasMany:
		if a.ForeignKey == "" {
			return fmt.Errorf("model %s, association %s has no foreign_key",
				m.Name, a.Name)
		}
		if a.ForeignType != "" && a.PolymorphicValue == "" {
			a.PolymorphicValue = c.BaseType(m.Name)
		}
	case record.ManyToMany:
		if a.JoinTable == "" || a.JoinForeignKey == "" || a.JoinTargetKey == "" {
			return fmt.Errorf("model %s, association %s needs join_table, "+
				"join_foreign_key and join_target_key", m.Name, a.Name)
		}
	}
	return nil
}

// chain returns the model followed by its ancestors.
func (c *Catalog) chain(name string) ([]*Model, error) {
	var res []*Model
	seen := make(map[string]struct{})
	for name != "" {
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("model %s: inheritance loop", name)
		}
		seen[name] = struct{}{}
		i, ok := c.index[name]
		if !ok {
			return nil, fmt.Errorf("unknown model %s", name)
		}
		m := &c.Models[i]
		res = append(res, m)
		name = m.Base
	}
	return res, nil
}

// Model returns a model by name.
func (c *Catalog) Model(name string) (*Model, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return &c.Models[i], true
}

// Has checks if the catalog knows the model.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Names returns sorted model names.
func (c *Catalog) Names() []string {
	res := make([]string, 0, len(c.Models))
	for _, v := range c.Models {
		res = append(res, v.Name)
	}
	slices.Sort(res)
	return res
}

// BaseType returns the root of the inheritance chain of a model.
func (c *Catalog) BaseType(name string) string {
	ms, err := c.chain(name)
	if err != nil {
		return name
	}
	return ms[len(ms)-1].Name
}

// Table returns the table of a model, inherited from the base model if
// needed.
func (c *Catalog) Table(name string) string {
	ms, _ := c.chain(name)
	for _, m := range ms {
		if m.Table != "" {
			return m.Table
		}
	}
	return ""
}

// PrimaryKey returns the primary key column of a model. The boolean is
// false if the model has no primary key.
func (c *Catalog) PrimaryKey(name string) (string, bool) {
	ms, _ := c.chain(name)
	if len(ms) == 0 {
		return "", false
	}
	base := ms[len(ms)-1]
	if base.NoPrimaryKey || base.PrimaryKey == "" {
		return "", false
	}
	return base.PrimaryKey, true
}

// InheritanceColumn returns the subtype discriminator column, if any.
func (c *Catalog) InheritanceColumn(name string) string {
	ms, _ := c.chain(name)
	for _, m := range ms {
		if m.InheritanceColumn != "" {
			return m.InheritanceColumn
		}
	}
	return ""
}

// Columns returns the declared columns of a model, inherited from its
// base model if the model itself declares none.
func (c *Catalog) Columns(name string) []string {
	ms, _ := c.chain(name)
	for _, m := range ms {
		if len(m.Columns) > 0 {
			return m.Columns
		}
	}
	return nil
}

// ResolveType returns the concrete model for a record of the base model
// whose inheritance column holds subtype. Unknown subtypes, and models
// that do not descend from base, resolve to base.
func (c *Catalog) ResolveType(base, subtype string) string {
	if subtype == "" || !c.Has(subtype) {
		return base
	}
	if c.BaseType(subtype) != c.BaseType(base) {
		return base
	}
	return subtype
}

// Edges returns associations of a model, inherited ones first.
func (c *Catalog) Edges(name string) ([]record.Edge, error) {
	ms, err := c.chain(name)
	if err != nil {
		return nil, err
	}
	var res []record.Edge
	for i := len(ms) - 1; i >= 0; i-- {
		for _, a := range ms[i].Associations {
			kind, err := record.ParseKind(a.Kind)
			if err != nil {
				return nil, err
			}
			res = append(res, record.Edge{
				Kind:             kind,
				Name:             a.Name,
				Target:           a.Target,
				Polymorphic:      a.Polymorphic,
				Virtual:          a.Through,
				ForeignKey:       a.ForeignKey,
				ForeignType:      a.ForeignType,
				PolymorphicValue: a.PolymorphicValue,
				JoinTable:        a.JoinTable,
				JoinForeignKey:   a.JoinForeignKey,
				JoinTargetKey:    a.JoinTargetKey,
				OrderBy:          a.OrderBy,
			})
		}
	}
	return res, nil
}

// TypeColumns returns columns that hold type names: the inheritance column
// and foreign type columns of polymorphic BelongsTo edges.
func (c *Catalog) TypeColumns(name string) []string {
	var res []string
	if col := c.InheritanceColumn(name); col != "" {
		res = append(res, col)
	}
	edges, _ := c.Edges(name)
	for _, e := range edges {
		if e.Kind == record.BelongsTo && e.Polymorphic && e.ForeignType != "" {
			res = append(res, e.ForeignType)
		}
	}
	return res
}
