package copier

import "github.com/gnames/gnpull/pkg/record"

// exclusionPolicy decides which attributes and associations are skipped.
// Exclude lists are computed once per model for each copy invocation.
type exclusionPolicy struct {
	engine *Engine
	cache  map[string]map[string]struct{}
}

func newExclusionPolicy(e *Engine) *exclusionPolicy {
	return &exclusionPolicy{
		engine: e,
		cache:  make(map[string]map[string]struct{}),
	}
}

// excluded returns names excluded for a record of the base model and its
// concrete model.
func (p *exclusionPolicy) excluded(base, model string) map[string]struct{} {
	key := base + "\x00" + model
	if res, ok := p.cache[key]; ok {
		return res
	}
	res := make(map[string]struct{})
	for _, v := range p.engine.exclude[base] {
		res[v] = struct{}{}
	}
	if model != base {
		for _, v := range p.engine.exclude[model] {
			res[v] = struct{}{}
		}
	}
	p.cache[key] = res
	return res
}

// attribute checks if a scalar attribute is excluded.
func (p *exclusionPolicy) attribute(src *record.Source, name string) bool {
	_, ok := p.excluded(src.Type, src.Model)[name]
	return ok
}

// edge checks if an association is excluded. When honorIgnore is true,
// concrete targets listed as ignored models are excluded too.
func (p *exclusionPolicy) edge(
	src *record.Source,
	e record.Edge,
	honorIgnore bool,
) bool {
	if e.Virtual {
		return true
	}
	ex := p.excluded(src.Type, src.Model)
	if _, ok := ex[AllAssociations]; ok {
		return true
	}
	if _, ok := ex[e.Name]; ok {
		return true
	}
	if honorIgnore && !e.Polymorphic && p.ignored(e.Target) {
		return true
	}
	return false
}

// ignored checks if a model, or its base model, is not crawled into.
func (p *exclusionPolicy) ignored(model string) bool {
	if _, ok := p.engine.ignore[model]; ok {
		return true
	}
	if p.engine.catalog == nil {
		return false
	}
	_, ok := p.engine.ignore[p.engine.catalog.BaseType(model)]
	return ok
}
