package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameManagerCaseInsensitivity(t *testing.T) {
	m := NewNameManager[int]()

	require.True(t, m.Put("Foo", 1))
	assert.True(t, m.HasName("foo"))
	assert.True(t, m.HasName("FOO"))

	v, ok := m.Get("fOo")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// The first spelling wins for display.
	assert.False(t, m.Put("FOO", 2))
	assert.Equal(t, "Foo", m.DisplayName("foo"))
	assert.Equal(t, 1, m.Size())

	// Unknown names come back unchanged.
	assert.Equal(t, "bar", m.DisplayName("bar"))

	m.Remove("fOO")
	assert.False(t, m.HasName("Foo"))
	assert.Equal(t, 0, m.Size())
}

func TestNameManagerUpdate(t *testing.T) {
	m := NewNameManager[int]()
	m.Put("count", 1)

	assert.True(t, m.Update("COUNT", 5))
	v, _ := m.Get("count")
	assert.Equal(t, 5, v)
	assert.Equal(t, "count", m.DisplayName("Count"))

	assert.False(t, m.Update("missing", 1))
}

func TestGenerateUniqueName(t *testing.T) {
	m := NewNameManager[int]()

	tests := []struct {
		taken     []string
		requested string
		want      string
	}{
		{nil, "foo", "foo"},
		{[]string{"foo"}, "foo", "foo2"},
		{[]string{"foo", "foo2"}, "foo", "foo3"},
		{[]string{"foo"}, "FOO", "FOO2"},
		{[]string{"222"}, "222", "223"},
		{[]string{"item9"}, "item9", "item10"},
		{[]string{"a1b2"}, "a1b2", "a1b3"},
	}
	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			m.Clear()
			for _, name := range tt.taken {
				m.Put(name, 0)
			}
			assert.Equal(t, tt.want, m.GenerateUniqueName(tt.requested))
		})
	}
}

func TestPutUniquely(t *testing.T) {
	m := NewNameManager[int]()
	assert.Equal(t, "x", m.PutUniquely("x", 1))
	assert.Equal(t, "x2", m.PutUniquely("x", 2))
	// The requested spelling is kept even when the suffix comes from a
	// collision with another casing.
	assert.Equal(t, "X3", m.PutUniquely("X", 3))

	v, _ := m.Get("x2")
	assert.Equal(t, 2, v)
}

func TestUsedNamesOrder(t *testing.T) {
	m := NewNameManager[int]()
	m.Put("c", 0)
	m.Put("A", 0)
	m.Put("b", 0)
	assert.Equal(t, []string{"c", "A", "b"}, m.UsedNames())

	m.Remove("a")
	assert.Equal(t, []string{"c", "b"}, m.UsedNames())
}

func TestObserverBatching(t *testing.T) {
	m := NewNameManager[int]()
	notifications := 0
	m.Subscribe(func() { notifications++ })

	m.Put("a", 1)
	assert.Equal(t, 1, notifications)

	// A batch of mutations fires exactly once.
	m.BeginUpdate()
	m.Put("b", 2)
	m.Remove("a")
	m.Put("c", 3)
	assert.Equal(t, 1, notifications)
	m.EndUpdate()
	assert.Equal(t, 2, notifications)

	// An empty batch fires nothing.
	m.BeginUpdate()
	m.EndUpdate()
	assert.Equal(t, 2, notifications)

	// Nested batches fire once at the outermost end.
	m.BeginUpdate()
	m.BeginUpdate()
	m.Put("d", 4)
	m.EndUpdate()
	assert.Equal(t, 2, notifications)
	m.EndUpdate()
	assert.Equal(t, 3, notifications)
}

func TestVariableNameManager(t *testing.T) {
	m := NewVariableNameManager()

	f1 := &Field{Name: "VAR", Kind: FieldVariable, Value: "speed"}
	f2 := &Field{Name: "VAR", Kind: FieldVariable, Value: "Speed"}
	info := m.AddVariable("speed", f1)
	assert.Same(t, info, m.AddVariable("Speed", f2))
	assert.Len(t, info.Fields, 2)
	assert.Equal(t, "speed", m.DisplayName("SPEED"))

	assert.False(t, m.IsArgument("speed"))
	m.MarkArgument("speed", +1)
	assert.True(t, m.IsArgument("speed"))
	m.MarkArgument("speed", -1)
	assert.False(t, m.IsArgument("speed"))

	// The count never goes negative.
	m.MarkArgument("speed", -1)
	m.MarkArgument("speed", +1)
	assert.True(t, m.IsArgument("speed"))

	// Marking an unknown name registers it.
	m.MarkArgument("n", +1)
	assert.True(t, m.HasName("n"))
}

func TestMarkArgumentNotifies(t *testing.T) {
	m := NewVariableNameManager()
	m.AddVariable("a", nil)

	notifications := 0
	m.Subscribe(func() { notifications++ })

	// Count changes on existing names notify too, since observers watch
	// ArgRefs to decide deletability.
	m.MarkArgument("a", +1)
	assert.Equal(t, 1, notifications)

	// A batch that only touches counts still fires exactly once.
	m.BeginUpdate()
	m.MarkArgument("a", -1)
	m.EndUpdate()
	assert.Equal(t, 2, notifications)

	// A new name notifies once, not twice, despite the implicit insert.
	m.MarkArgument("b", +1)
	assert.Equal(t, 3, notifications)
}

func TestGenerateVariableName(t *testing.T) {
	m := NewVariableNameManager()

	assert.Equal(t, "i", m.GenerateVariableName())
	m.AddVariable("i", nil)
	assert.Equal(t, "j", m.GenerateVariableName())
	m.AddVariable("j", nil)
	m.AddVariable("k", nil)

	// l is skipped.
	assert.Equal(t, "m", m.GenerateVariableName())

	for c := byte('i'); c <= 'z'; c++ {
		m.AddVariable(string(c), nil)
	}
	assert.Equal(t, "i2", m.GenerateVariableName())
	m.AddVariable("i2", nil)
	assert.Equal(t, "j2", m.GenerateVariableName())
}
