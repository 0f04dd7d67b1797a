package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defBlock(t *testing.T, name string, args ...string) *Block {
	t.Helper()
	def := BlockDefinition{
		Type: "procedures_defnoreturn",
		Inputs: []InputDefinition{
			{Kind: InputDummy, Fields: []FieldDefinition{
				{Name: ProcedureNameField, Kind: FieldText},
			}},
			{Name: "STACK", Kind: InputStatement},
		},
	}
	b, err := def.Build()
	require.NoError(t, err)
	b.Procedure = &ProcedureInfo{Name: name, Arguments: args}
	b.FieldByName(ProcedureNameField).Value = name
	return b
}

func callBlock(t *testing.T, info ProcedureInfo) *Block {
	t.Helper()
	def := BlockDefinition{
		Type:        "procedures_callnoreturn",
		HasPrevious: true,
		HasNext:     true,
		Inputs: []InputDefinition{
			{Kind: InputDummy, Fields: []FieldDefinition{
				{Name: ProcedureNameField, Kind: FieldText},
			}},
		},
	}
	b, err := def.Build()
	require.NoError(t, err)
	b.Procedure = info.clone()
	b.FieldByName(ProcedureNameField).Value = info.Name
	AttachArgInputs(b, b.Procedure)
	return b
}

func newTestProcedureManager() (*ProcedureManager, *VariableNameManager) {
	vars := NewVariableNameManager()
	return NewProcedureManager(vars, NewConnectionManager()), vars
}

func TestAddDefinition(t *testing.T) {
	m, vars := newTestProcedureManager()

	def := defBlock(t, "doThing", "x")
	require.NoError(t, m.AddDefinition(def))
	assert.True(t, m.IsProcedureDefined("dothing"))
	assert.Same(t, def, m.Definition("DoThing"))
	assert.True(t, m.ContainsDefinition(def))
	assert.True(t, vars.IsArgument("x"))

	// Same name, any casing, is a duplicate.
	err := m.AddDefinition(defBlock(t, "DOTHING"))
	require.ErrorIs(t, err, ErrDuplicateProcedure)

	err = m.AddDefinition(&Block{Type: "procedures_defnoreturn"})
	require.ErrorIs(t, err, ErrMissingProcedureInfo)
}

func TestAddDefinitionUniquely(t *testing.T) {
	m, _ := newTestProcedureManager()

	require.NoError(t, m.AddDefinition(defBlock(t, "doThing")))

	dup := defBlock(t, "doThing")
	name, err := m.AddDefinitionUniquely(dup)
	require.NoError(t, err)
	assert.Equal(t, "doThing2", name)
	assert.Equal(t, "doThing2", dup.Procedure.Name)
	assert.Equal(t, "doThing2", dup.FieldByName(ProcedureNameField).Value)
	assert.Same(t, dup, m.Definition("dothing2"))
}

func TestReferences(t *testing.T) {
	m, _ := newTestProcedureManager()

	def := defBlock(t, "run")
	require.NoError(t, m.AddDefinition(def))
	assert.False(t, m.IsDefinitionReferenced(def))

	// References require a definition.
	orphan := callBlock(t, ProcedureInfo{Name: "nothing"})
	require.ErrorIs(t, m.AddReference(orphan), ErrProcedureNotDefined)

	ref1 := callBlock(t, ProcedureInfo{Name: "run"})
	ref2 := callBlock(t, ProcedureInfo{Name: "RUN"})
	require.NoError(t, m.AddReference(ref1))
	require.NoError(t, m.AddReference(ref2))

	assert.True(t, m.IsDefinitionReferenced(def))
	assert.Len(t, m.References("run"), 2)

	assert.True(t, m.RemoveReference(ref1))
	assert.False(t, m.RemoveReference(ref1))
	assert.Len(t, m.References("run"), 1)
}

func TestRemoveProcedure(t *testing.T) {
	m, vars := newTestProcedureManager()

	def := defBlock(t, "run", "n")
	ref := callBlock(t, ProcedureInfo{Name: "run", Arguments: []string{"n"}})
	require.NoError(t, m.AddDefinition(def))
	require.NoError(t, m.AddReference(ref))
	require.True(t, vars.IsArgument("n"))

	removed := m.RemoveProcedure(def)
	assert.ElementsMatch(t, []*Block{def, ref}, removed)
	assert.False(t, m.IsProcedureDefined("run"))
	assert.Empty(t, m.References("run"))
	assert.False(t, vars.IsArgument("n"))

	// A block that was never a registered definition removes nothing.
	assert.Nil(t, m.RemoveProcedure(defBlock(t, "other")))
}

func TestMutateProcedureRename(t *testing.T) {
	m, _ := newTestProcedureManager()

	def := defBlock(t, "run")
	ref := callBlock(t, ProcedureInfo{Name: "run"})
	require.NoError(t, m.AddDefinition(def))
	require.NoError(t, m.AddReference(ref))

	_, err := m.MutateProcedure("run", ProcedureInfo{Name: "sprint"}, nil)
	require.NoError(t, err)

	assert.False(t, m.IsProcedureDefined("run"))
	assert.True(t, m.IsProcedureDefined("sprint"))
	assert.Equal(t, "sprint", def.Procedure.Name)
	assert.Equal(t, "sprint", def.FieldByName(ProcedureNameField).Value)
	assert.Equal(t, "sprint", ref.Procedure.Name)
	assert.Equal(t, "sprint", ref.FieldByName(ProcedureNameField).Value)
	assert.Len(t, m.References("sprint"), 1)

	// Renaming onto another defined procedure fails.
	require.NoError(t, m.AddDefinition(defBlock(t, "jog")))
	_, err = m.MutateProcedure("sprint", ProcedureInfo{Name: "JOG"}, nil)
	require.ErrorIs(t, err, ErrDuplicateProcedure)
}

func TestMutateProcedureRemapsArguments(t *testing.T) {
	m, vars := newTestProcedureManager()

	def := defBlock(t, "run", "a", "b")
	ref := callBlock(t, ProcedureInfo{Name: "run", Arguments: []string{"a", "b"}})
	require.NoError(t, m.AddDefinition(def))
	require.NoError(t, m.AddReference(ref))

	// Plug a value into each argument slot.
	valA := valueBlock(t)
	valB := valueBlock(t)
	require.NoError(t, ref.InputByName(ArgInputName(0)).Conn.Connect(valA.Output))
	require.NoError(t, ref.InputByName(ArgInputName(1)).Conn.Connect(valB.Output))

	// Swap the arguments and rename one: (a, b) -> (b, c).
	released, err := m.MutateProcedure("run", ProcedureInfo{
		Name:      "run",
		Arguments: []string{"b", "c"},
	}, []ArgumentIndexUpdate{{Before: 1, After: 0}})
	require.NoError(t, err)

	// b's subtree moved to slot 0; a's slot was deleted, so its subtree
	// comes back released.
	assert.Same(t, valB, ref.InputByName(ArgInputName(0)).ConnectedBlock())
	assert.Nil(t, ref.InputByName(ArgInputName(1)).ConnectedBlock())
	assert.Equal(t, []*Block{valA}, released)
	assert.False(t, valA.Output.IsConnected())

	// The call block's shape and labels follow the new argument list.
	assert.Equal(t, []string{"b", "c"}, ref.Procedure.Arguments)
	assert.Equal(t, "b", ref.FieldByName(ArgNameField(0)).Value)
	assert.Equal(t, "c", ref.FieldByName(ArgNameField(1)).Value)

	// Argument bookkeeping follows the rename.
	assert.False(t, vars.IsArgument("a"))
	assert.True(t, vars.IsArgument("b"))
	assert.True(t, vars.IsArgument("c"))
}

func TestMutateProcedureReorder(t *testing.T) {
	m, vars := newTestProcedureManager()

	def := defBlock(t, "run", "A", "B")
	ref := callBlock(t, ProcedureInfo{Name: "run", Arguments: []string{"A", "B"}})
	require.NoError(t, m.AddDefinition(def))
	require.NoError(t, m.AddReference(ref))

	released, err := m.MutateProcedure("run", ProcedureInfo{
		Name:      "run",
		Arguments: []string{"B", "A"},
	}, []ArgumentIndexUpdate{{Before: 0, After: 1}, {Before: 1, After: 0}})
	require.NoError(t, err)
	assert.Empty(t, released)

	assert.Equal(t, []string{"B", "A"}, def.Procedure.Arguments)
	assert.Equal(t, []string{"B", "A"}, ref.Procedure.Arguments)
	assert.True(t, vars.HasName("A"))
	assert.True(t, vars.HasName("B"))
	assert.True(t, vars.IsArgument("A"))
	assert.True(t, vars.IsArgument("B"))
}

func TestMutateProcedureNotifiesOnce(t *testing.T) {
	m, vars := newTestProcedureManager()

	require.NoError(t, m.AddDefinition(defBlock(t, "run", "a")))

	notifications := 0
	vars.Subscribe(func() { notifications++ })

	_, err := m.MutateProcedure("run", ProcedureInfo{
		Name:      "run",
		Arguments: []string{"x", "y", "z"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, notifications)
}

func TestMutateProcedureArgRemovalNotifiesOnce(t *testing.T) {
	m, vars := newTestProcedureManager()

	require.NoError(t, m.AddDefinition(defBlock(t, "run", "a", "b")))

	notifications := 0
	vars.Subscribe(func() { notifications++ })

	// Dropping an argument only decrements counts, but observers still hear
	// about it exactly once.
	_, err := m.MutateProcedure("run", ProcedureInfo{
		Name:      "run",
		Arguments: []string{"a"},
	}, []ArgumentIndexUpdate{{Before: 0, After: 0}})
	require.NoError(t, err)
	assert.Equal(t, 1, notifications)
	assert.False(t, vars.IsArgument("b"))
}

func TestMutateProcedureKeepsConnectionsIndexed(t *testing.T) {
	vars := NewVariableNameManager()
	conns := NewConnectionManager()
	m := NewProcedureManager(vars, conns)

	def := defBlock(t, "run", "a")
	ref := callBlock(t, ProcedureInfo{Name: "run", Arguments: []string{"a"}})
	require.NoError(t, m.AddDefinition(def))
	require.NoError(t, m.AddReference(ref))

	oldConn := ref.InputByName(ArgInputName(0)).Conn
	conns.Add(oldConn)

	_, err := m.MutateProcedure("run", ProcedureInfo{
		Name:      "run",
		Arguments: []string{"a", "b"},
	}, []ArgumentIndexUpdate{{Before: 0, After: 0}})
	require.NoError(t, err)

	// The rebuilt argument connections replace the old ones in the index.
	assert.False(t, conns.ListFor(ConnInput).Contains(oldConn))
	assert.True(t, conns.ListFor(ConnInput).Contains(ref.InputByName(ArgInputName(0)).Conn))
	assert.True(t, conns.ListFor(ConnInput).Contains(ref.InputByName(ArgInputName(1)).Conn))
}
