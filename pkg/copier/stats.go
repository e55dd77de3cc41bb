package copier

import "time"

// Stats summarizes one copy invocation.
type Stats struct {
	// Created is the number of new local records.
	Created int
	// Updated is the number of existing local records overwritten because
	// of update_local_model or update_optional_local_model.
	Updated int
	// Adopted is the number of records resolved by reuse finders.
	Adopted int
	// Cached is the number of times a record was served from the cache.
	Cached int
	// Attached is the number of many-to-many links added.
	Attached int
	// SkippedAttrs counts attributes the local schema does not have.
	SkippedAttrs int
	// MaxDepth is the deepest nesting reached during traversal.
	MaxDepth int
	// Duration of the invocation.
	Duration time.Duration
}

// Copied returns the number of records written to the local store.
func (s Stats) Copied() int {
	return s.Created + s.Updated + s.Adopted
}

// Add accumulates statistics of another invocation.
func (s *Stats) Add(o Stats) {
	s.Created += o.Created
	s.Updated += o.Updated
	s.Adopted += o.Adopted
	s.Cached += o.Cached
	s.Attached += o.Attached
	s.SkippedAttrs += o.SkippedAttrs
	s.MaxDepth = max(s.MaxDepth, o.MaxDepth)
	s.Duration += o.Duration
}
