package record_test

import (
	"math"
	"testing"

	"github.com/gnames/gnpull/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentity(t *testing.T) {
	tests := []struct {
		msg string
		id  any
		res any
	}{
		{"int", 5, int64(5)},
		{"int32", int32(5), int64(5)},
		{"uint64", uint64(5), int64(5)},
		{"large uint64", uint64(math.MaxUint64), uint64(math.MaxUint64)},
		{"bytes", []byte("a1"), "a1"},
		{"string", "a1", "a1"},
	}

	for _, v := range tests {
		id := record.NewIdentity("Order", v.id)
		assert.Equal(t, v.res, id.ID, v.msg)
	}

	assert.Equal(t,
		record.NewIdentity("Order", 5), record.NewIdentity("Order", int16(5)))
	assert.NotEqual(t,
		record.NewIdentity("Order", 5), record.NewIdentity("Customer", 5))
	assert.Equal(t, "<Order - 5>", record.NewIdentity("Order", 5).String())
	assert.NotEqual(t,
		record.NewIdentity("Order", int64(-1)),
		record.NewIdentity("Order", uint64(math.MaxUint64)))
}

func TestNamespace(t *testing.T) {
	ns := record.Namespace{
		Prefix: "Legacy::",
		Map:    map[string]string{"Legacy::Lorry": "Truck"},
	}

	tests := []struct {
		msg, remote, res string
	}{
		{"prefix", "Legacy::Truck", "Truck"},
		{"map wins", "Legacy::Lorry", "Truck"},
		{"no prefix", "Truck", "Truck"},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, ns.Local(v.remote), v.msg)
	}

	var empty record.Namespace
	assert.Equal(t, "Legacy::Truck", empty.Local("Legacy::Truck"))

	assert.Equal(t, []string{"Truck", "Legacy::Lorry", "Legacy::Truck"},
		ns.Remote("Truck"))
	assert.Equal(t, []string{"Truck"}, empty.Remote("Truck"))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		res   record.Kind
	}{
		{"belongs_to", record.BelongsTo},
		{"has_one", record.HasOne},
		{" Has_Many ", record.HasMany},
		{"many_to_many", record.ManyToMany},
		{"has_and_belongs_to_many", record.ManyToMany},
		{"many2many", record.ManyToMany},
	}
	for _, v := range tests {
		res, err := record.ParseKind(v.input)
		require.Nil(t, err, v.input)
		assert.Equal(t, v.res, res, v.input)
	}

	_, err := record.ParseKind("has_few")
	assert.NotNil(t, err)

	assert.True(t, record.BelongsTo.Backward())
	assert.False(t, record.HasMany.Backward())
	assert.Equal(t,
		[]record.Kind{record.HasOne, record.HasMany, record.ManyToMany},
		record.ForwardKinds)
}

func TestLocal(t *testing.T) {
	t.Run("declared columns", func(t *testing.T) {
		l := record.NewLocal("Order", []string{"id", "number"})
		assert.True(t, l.Set("number", "A-1"))
		assert.False(t, l.Set("legacy", true))
		assert.True(t, l.HasColumn("number"))
		assert.False(t, l.HasColumn("legacy"))
		assert.Equal(t, map[string]any{"number": "A-1"}, l.Attrs)
	})

	t.Run("any column", func(t *testing.T) {
		l := record.NewLocal("Order", nil)
		assert.True(t, l.Set("legacy", true))
		assert.True(t, l.HasColumn("anything"))
	})

	t.Run("pending attachments", func(t *testing.T) {
		e := record.Edge{Kind: record.ManyToMany, Name: "tags"}
		l := record.NewLocal("Order", nil)
		tag := record.NewLocal("Tag", nil)
		tag.ID = 5

		assert.False(t, l.IsPending(e, tag))
		l.Attach(e, tag)

		same := record.NewLocal("Tag", nil)
		same.ID = int64(5)
		assert.True(t, l.IsPending(e, same))
		assert.Len(t, l.Pending(), 1)

		l.ClearPending()
		assert.Empty(t, l.Pending())
		assert.False(t, l.Persisted())
		l.MarkPersisted()
		assert.True(t, l.Persisted())
	})
}
