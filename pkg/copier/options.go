package copier

import (
	"context"
	"strings"

	"github.com/gnames/gnpull/pkg/record"
)

// AllAssociations excludes every association of a model when it is
// present in the model's exclude list.
const AllAssociations = "all_associations"

// Finder looks for an existing local record that should be reused instead
// of creating a copy of src. It returns nil when nothing is found.
type Finder func(
	ctx context.Context,
	src *record.Source,
	store record.LocalStore,
) (*record.Local, error)

// Callback runs after a local copy of src is persisted.
type Callback func(
	ctx context.Context,
	local *record.Local,
	src *record.Source,
) error

// Option is a function that modifies an Engine.
type Option func(*Engine)

// OptReuse sets a finder for records of a base model. Records found by the
// finder are adopted: their attributes are refreshed from the source, but
// their forward associations are not copied.
func OptReuse(model string, f Finder) Option {
	return func(e *Engine) {
		if model != "" && f != nil {
			e.reuse[model] = f
		}
	}
}

// OptExclude skips attributes and associations of a model by name.
// Use AllAssociations to skip all associations.
func OptExclude(model string, names ...string) Option {
	return func(e *Engine) {
		for _, v := range names {
			v = strings.TrimSpace(v)
			if v != "" {
				e.exclude[model] = append(e.exclude[model], v)
			}
		}
	}
}

// OptIgnoreModel sets models that are not crawled into when they are
// reached as nested records. The root record is always crawled.
func OptIgnoreModel(models ...string) Option {
	return func(e *Engine) {
		addAll(e.ignore, models)
	}
}

// OptUpdateLocalModel sets models whose local records must already exist.
// They are updated in place instead of being created.
func OptUpdateLocalModel(models ...string) Option {
	return func(e *Engine) {
		addAll(e.updateLocal, models)
	}
}

// OptUpdateOptionalLocalModel sets models whose local records are updated
// if they exist, and created otherwise.
func OptUpdateOptionalLocalModel(models ...string) Option {
	return func(e *Engine) {
		addAll(e.updateOptional, models)
	}
}

// OptAfterEach sets a callback that runs after every copied record of a
// model is persisted.
func OptAfterEach(model string, cb Callback) Option {
	return func(e *Engine) {
		if model != "" && cb != nil {
			e.afterEach[model] = cb
		}
	}
}

// OptNamespace sets how remote type names map to local ones.
func OptNamespace(ns record.Namespace) Option {
	return func(e *Engine) {
		e.ns = ns
	}
}

func addAll(set map[string]struct{}, names []string) {
	for _, v := range names {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = struct{}{}
		}
	}
}
