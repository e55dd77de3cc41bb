package copier

import (
	"slices"

	"github.com/gnames/gnpull/pkg/record"
)

// backRef is a resolved BelongsTo edge of a source record.
type backRef struct {
	edge  record.Edge
	local *record.Local
}

// localType returns the local model for a source record. Subtypes stored
// in the inheritance column are remapped to the local namespace first.
func (c *copyContext) localType(src *record.Source) string {
	if c.catalog == nil {
		return src.Model
	}
	col := c.catalog.InheritanceColumn(src.Model)
	if col == "" {
		return src.Model
	}
	sub, ok := src.Attrs[col].(string)
	if !ok || sub == "" {
		return src.Model
	}
	return c.catalog.ResolveType(src.Type, c.ns.Local(sub))
}

// copyAttributes assigns scalar attributes of src to local, except the
// primary key and excluded names. Type names are remapped to the local
// namespace. Attributes unknown to the local model are skipped.
func (c *copyContext) copyAttributes(
	local *record.Local,
	src *record.Source,
	refs []backRef,
) {
	pk := c.primaryKey(src.Model)
	typeCols := c.typeColumns(src.Model)

	names := make([]string, 0, len(src.Attrs))
	for k := range src.Attrs {
		names = append(names, k)
	}
	slices.Sort(names)

	for _, name := range names {
		if name == pk || c.policy.attribute(src, name) {
			continue
		}
		val := src.Attrs[name]
		if _, ok := typeCols[name]; ok {
			if s, ok := val.(string); ok && s != "" {
				val = c.ns.Local(s)
			}
		}
		if !local.Set(name, val) {
			c.stats.SkippedAttrs++
			c.debug("attribute skipped, local model has no column "+name,
				src.Identity)
		}
	}

	for _, v := range refs {
		if v.local.ID == nil || c.policy.attribute(src, v.edge.ForeignKey) {
			continue
		}
		local.Set(v.edge.ForeignKey, v.local.ID)
		if v.edge.Polymorphic && v.edge.ForeignType != "" {
			local.Set(v.edge.ForeignType, c.baseType(v.local.Type))
		}
	}
}

func (c *copyContext) primaryKey(model string) string {
	if c.catalog == nil {
		return "id"
	}
	pk, _ := c.catalog.PrimaryKey(model)
	return pk
}

func (c *copyContext) typeColumns(model string) map[string]struct{} {
	res := make(map[string]struct{})
	if c.catalog == nil {
		return res
	}
	for _, v := range c.catalog.TypeColumns(model) {
		res[v] = struct{}{}
	}
	return res
}

func (c *copyContext) baseType(model string) string {
	if c.catalog == nil {
		return model
	}
	return c.catalog.BaseType(model)
}
