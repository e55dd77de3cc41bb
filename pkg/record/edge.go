package record

import (
	"fmt"
	"strings"
)

// Kind is the kind of an association edge.
type Kind int

const (
	// BelongsTo points to a record this one depends on through a foreign
	// key that this record owns.
	BelongsTo Kind = iota
	// HasOne points to a single record that references this one.
	HasOne
	// HasMany points to an ordered collection of records that reference
	// this one.
	HasMany
	// ManyToMany points to peers linked through a join table.
	ManyToMany
)

// ForwardKinds lists forward association kinds in traversal order.
var ForwardKinds = []Kind{HasOne, HasMany, ManyToMany}

var kindNames = map[Kind]string{
	BelongsTo:  "belongs_to",
	HasOne:     "has_one",
	HasMany:    "has_many",
	ManyToMany: "many_to_many",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Backward is true for edges that must be resolved before the owner
// record is written.
func (k Kind) Backward() bool {
	return k == BelongsTo
}

// ParseKind converts a kind name to Kind. It accepts the names returned
// by String and "has_and_belongs_to_many" as a synonym of many_to_many.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "has_and_belongs_to_many" || s == "many2many" {
		return ManyToMany, nil
	}
	for k, v := range kindNames {
		if v == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown association kind %q", s)
}

// Edge describes one association of a model.
type Edge struct {
	Kind Kind

	// Name of the association, unique within its owner model.
	Name string

	// Target is the related model name. It is empty for polymorphic
	// BelongsTo edges, where the type is read from ForeignType.
	Target string

	// Polymorphic edges resolve their target type per record.
	Polymorphic bool

	// Virtual edges go "through" other associations and are never
	// traversed.
	Virtual bool

	// ForeignKey is the column holding the reference. It belongs to the
	// owner for BelongsTo and to the target for HasOne and HasMany.
	ForeignKey string

	// ForeignType is the type discriminator column of polymorphic
	// associations.
	ForeignType string

	// PolymorphicValue is the value ForeignType must have for HasOne and
	// HasMany edges declared on the polymorphic side.
	PolymorphicValue string

	// JoinTable, JoinForeignKey and JoinTargetKey describe ManyToMany
	// links.
	JoinTable      string
	JoinForeignKey string
	JoinTargetKey  string

	// OrderBy keeps collections in source order. Empty means primary key.
	OrderBy string
}

func (e Edge) String() string {
	return fmt.Sprintf("%s %s -> %s", e.Kind, e.Name, e.Target)
}
