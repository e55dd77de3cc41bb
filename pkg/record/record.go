// Package record defines the data that travels between a remote data
// source, the copy engine and a local data store.
//
// This package has no I/O dependencies. Implementations of RecordSource,
// LocalStore and UnitOfWork live in internal/io* packages.
package record

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotFound is returned by RecordSource.Fetch when the requested
// record does not exist in the source.
var ErrNotFound = errors.New("record not found")

// Identity uniquely identifies a source record. Type is the base model
// name, so all subtypes stored in one table share identities.
type Identity struct {
	Type string
	ID   any
}

// NewIdentity creates an Identity with a normalized ID, so identities
// built from different integer widths compare equal.
func NewIdentity(typ string, id any) Identity {
	return Identity{Type: typ, ID: NormalizeID(id)}
}

func (i Identity) String() string {
	return fmt.Sprintf("<%s - %v>", i.Type, i.ID)
}

// NormalizeID converts integer IDs to int64 and byte slices to strings.
// Unsigned values that do not fit into int64 stay uint64. Other values
// are returned unchanged.
func NormalizeID(id any) any {
	switch v := id.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		if uint64(v) > math.MaxInt64 {
			return uint64(v)
		}
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return v
		}
		return int64(v)
	case []byte:
		return string(v)
	default:
		return id
	}
}

// Source is a record read from the remote data source.
type Source struct {
	Identity

	// Model is the concrete model name of the record. It differs from
	// Identity.Type for subtypes that share a table with their base model.
	Model string

	// Attrs maps column names to values, primary key included.
	Attrs map[string]any
}

// Attr returns the value of a source attribute.
func (s *Source) Attr(name string) (any, bool) {
	v, ok := s.Attrs[name]
	return v, ok
}

// Attachment is a pending link between a local record and a related
// local record through a forward association.
type Attachment struct {
	Edge   Edge
	Target *Local
}

// Local is a record in the destination store. It is either created by
// the copy engine or adopted from records that already exist locally.
type Local struct {
	// Type is the local model name.
	Type string

	// ID is the primary key value, nil until it is assigned or persisted.
	ID any

	// Attrs holds values assigned to columns other than the primary key.
	Attrs map[string]any

	columns   map[string]struct{}
	persisted bool
	pending   []Attachment
}

// NewLocal creates an empty local record. If columns is not empty, only
// those columns accept assignments.
func NewLocal(typ string, columns []string) *Local {
	res := &Local{Type: typ, Attrs: make(map[string]any)}
	if len(columns) > 0 {
		res.columns = make(map[string]struct{}, len(columns))
		for _, v := range columns {
			res.columns[v] = struct{}{}
		}
	}
	return res
}

// Set assigns a value to a column. It returns false if the local model
// has no such column.
func (l *Local) Set(name string, value any) bool {
	if l.columns != nil {
		if _, ok := l.columns[name]; !ok {
			return false
		}
	}
	l.Attrs[name] = value
	return true
}

// HasColumn checks if the local model accepts the column.
func (l *Local) HasColumn(name string) bool {
	if l.columns == nil {
		return true
	}
	_, ok := l.columns[name]
	return ok
}

// Persisted is true after the record was written to, or loaded from, the
// local store.
func (l *Local) Persisted() bool {
	return l.persisted
}

// MarkPersisted is called by LocalStore implementations after a record
// is loaded or written.
func (l *Local) MarkPersisted() {
	l.persisted = true
}

// Attach queues a related record to be linked on the next Persist.
func (l *Local) Attach(e Edge, target *Local) {
	l.pending = append(l.pending, Attachment{Edge: e, Target: target})
}

// Pending returns queued attachments.
func (l *Local) Pending() []Attachment {
	return l.pending
}

// ClearPending drops queued attachments after they were persisted.
func (l *Local) ClearPending() {
	l.pending = nil
}

// IsPending checks if the target is already queued through the edge.
func (l *Local) IsPending(e Edge, target *Local) bool {
	for _, v := range l.pending {
		if v.Edge.Name == e.Name && v.Target.Type == target.Type &&
			NormalizeID(v.Target.ID) == NormalizeID(target.ID) {
			return true
		}
	}
	return false
}

func (l *Local) String() string {
	return fmt.Sprintf("<%s - %v>", l.Type, l.ID)
}
