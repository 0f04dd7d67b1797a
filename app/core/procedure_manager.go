package core

import (
	"fmt"
	"slices"
	"strings"
)

const (
	ProcedureDefinitionPrefix = "procedures_def"
	ProcedureReferencePrefix  = "procedures_call"

	// ProcedureNameField is the field on procedure blocks that displays the
	// procedure name.
	ProcedureNameField = "NAME"
)

// ProcedureInfo is the shared description of a procedure: its name, its
// argument names in order, and whether it returns a value. One definition
// block and every one of its call-site blocks carry copies that the
// ProcedureManager keeps identical.
type ProcedureInfo struct {
	Name      string
	Arguments []string
	HasReturn bool
}

func (p ProcedureInfo) clone() *ProcedureInfo {
	return &ProcedureInfo{
		Name:      p.Name,
		Arguments: slices.Clone(p.Arguments),
		HasReturn: p.HasReturn,
	}
}

// ArgumentIndexUpdate maps one existing argument position into the argument
// list produced by a mutation. Old positions absent from the update list
// are deletions; new positions absent from it are insertions.
type ArgumentIndexUpdate struct {
	Before int
	After  int
}

// IsProcedureDefinition reports whether the block is the authoring block
// for a procedure.
func IsProcedureDefinition(b *Block) bool {
	return b.Procedure != nil && strings.HasPrefix(b.Type, ProcedureDefinitionPrefix)
}

// IsProcedureReference reports whether the block is a call site.
func IsProcedureReference(b *Block) bool {
	return b.Procedure != nil && strings.HasPrefix(b.Type, ProcedureReferencePrefix)
}

// ProcedureManager enforces that exactly one definition exists per
// procedure name and keeps every call site's ProcedureInfo synchronized
// with its definition.
type ProcedureManager struct {
	definitions *NameManager[*Block]
	references  map[string][]*Block

	variables   *VariableNameManager
	connections *ConnectionManager // may be nil when no index is tracked
}

func NewProcedureManager(variables *VariableNameManager, connections *ConnectionManager) *ProcedureManager {
	return &ProcedureManager{
		definitions: NewNameManager[*Block](),
		references:  make(map[string][]*Block),
		variables:   variables,
		connections: connections,
	}
}

// DefinedNames returns the display names of all defined procedures.
func (m *ProcedureManager) DefinedNames() []string {
	return m.definitions.UsedNames()
}

func (m *ProcedureManager) IsProcedureDefined(name string) bool {
	return m.definitions.HasName(name)
}

// Definition returns the definition block for the name, or nil.
func (m *ProcedureManager) Definition(name string) *Block {
	def, _ := m.definitions.Get(name)
	return def
}

// ContainsDefinition reports whether this exact block is a registered
// definition.
func (m *ProcedureManager) ContainsDefinition(b *Block) bool {
	if b.Procedure == nil {
		return false
	}
	def, ok := m.definitions.Get(b.Procedure.Name)
	return ok && def == b
}

// IsDefinitionReferenced reports whether the definition has at least one
// registered call site.
func (m *ProcedureManager) IsDefinitionReferenced(b *Block) bool {
	if b.Procedure == nil {
		return false
	}
	return len(m.references[foldName(b.Procedure.Name)]) > 0
}

// References returns the registered call sites for the name.
func (m *ProcedureManager) References(name string) []*Block {
	return slices.Clone(m.references[foldName(name)])
}

// AddDefinition registers the block as the definition for its procedure
// name. It fails with ErrDuplicateProcedure if the name is taken.
func (m *ProcedureManager) AddDefinition(b *Block) error {
	if b.Procedure == nil {
		return fmt.Errorf("%w: %s", ErrMissingProcedureInfo, b)
	}
	if m.definitions.HasName(b.Procedure.Name) {
		return fmt.Errorf("%w: %q", ErrDuplicateProcedure, b.Procedure.Name)
	}
	m.definitions.Put(b.Procedure.Name, b)
	m.markArguments(b.Procedure.Arguments, +1)
	return nil
}

// AddDefinitionUniquely registers the block as a definition, renaming it
// (including its name field) instead of failing when the name collides.
// It returns the name actually used.
func (m *ProcedureManager) AddDefinitionUniquely(b *Block) (string, error) {
	if b.Procedure == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingProcedureInfo, b)
	}
	name := m.definitions.PutUniquely(b.Procedure.Name, b)
	if name != b.Procedure.Name {
		b.Procedure.Name = name
		if f := b.FieldByName(ProcedureNameField); f != nil {
			f.Value = name
		}
	}
	m.markArguments(b.Procedure.Arguments, +1)
	return name, nil
}

// AddReference registers a call-site block. The referenced procedure must
// already be defined.
func (m *ProcedureManager) AddReference(b *Block) error {
	if b.Procedure == nil {
		return fmt.Errorf("%w: %s", ErrMissingProcedureInfo, b)
	}
	key := foldName(b.Procedure.Name)
	if !m.definitions.HasName(b.Procedure.Name) {
		return fmt.Errorf("%w: %q", ErrProcedureNotDefined, b.Procedure.Name)
	}
	m.references[key] = append(m.references[key], b)
	return nil
}

// RemoveReference unregisters one call site, reporting whether it was
// actually registered.
func (m *ProcedureManager) RemoveReference(b *Block) bool {
	if b.Procedure == nil {
		return false
	}
	key := foldName(b.Procedure.Name)
	refs := m.references[key]
	for i, ref := range refs {
		if ref == b {
			m.references[key] = append(refs[:i], refs[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveProcedure unregisters the definition and every call site for it,
// returning all removed blocks (definition included) so the caller can
// detach them from the workspace. Removing a block that was never a
// registered definition returns nil.
func (m *ProcedureManager) RemoveProcedure(def *Block) []*Block {
	if !m.ContainsDefinition(def) {
		return nil
	}
	key := foldName(def.Procedure.Name)

	removed := []*Block{def}
	removed = append(removed, m.references[key]...)

	m.definitions.Remove(def.Procedure.Name)
	delete(m.references, key)
	m.markArguments(def.Procedure.Arguments, -1)
	return removed
}

// Clear resets the manager to empty.
func (m *ProcedureManager) Clear() {
	m.definitions.Clear()
	m.references = make(map[string][]*Block)
}

// MutateProcedure applies an argument-list mutation (add/remove/rename/
// reorder, optionally a procedure rename) to the definition and every call
// site in one step. updates maps old argument positions into newInfo's
// argument list; connected argument subtrees move with their mapped slot.
// Subtrees whose slot was deleted are disconnected and returned so the
// caller can reattach them, not silently discarded.
//
// The variable registry observers are notified exactly once per call.
func (m *ProcedureManager) MutateProcedure(name string, newInfo ProcedureInfo, updates []ArgumentIndexUpdate) ([]*Block, error) {
	def, ok := m.definitions.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProcedureNotDefined, name)
	}
	oldInfo := *def.Procedure

	// Optional rename of the procedure itself.
	if foldName(newInfo.Name) != foldName(name) {
		if m.definitions.HasName(newInfo.Name) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProcedure, newInfo.Name)
		}
		m.definitions.Remove(name)
		m.definitions.Put(newInfo.Name, def)
		m.references[foldName(newInfo.Name)] = m.references[foldName(name)]
		delete(m.references, foldName(name))
	}

	if m.variables != nil {
		m.variables.BeginUpdate()
		defer m.variables.EndUpdate()
	}

	def.Procedure = newInfo.clone()
	if f := def.FieldByName(ProcedureNameField); f != nil {
		f.Value = newInfo.Name
	}

	var released []*Block
	for _, ref := range m.references[foldName(newInfo.Name)] {
		released = append(released, m.remapReferenceArgs(ref, newInfo, updates)...)
		ref.Procedure = newInfo.clone()
		if f := ref.FieldByName(ProcedureNameField); f != nil {
			f.Value = newInfo.Name
		}
	}

	// Argument variables: names dropped by the mutation stop counting as
	// procedure arguments, new names start. The variable entries themselves
	// persist until the user deletes them.
	if m.variables != nil {
		for _, arg := range oldInfo.Arguments {
			if !containsFold(newInfo.Arguments, arg) {
				m.variables.MarkArgument(arg, -1)
			}
		}
		for _, arg := range newInfo.Arguments {
			if !containsFold(oldInfo.Arguments, arg) {
				m.variables.MarkArgument(arg, +1)
			}
		}
	}

	return released, nil
}

func containsFold(names []string, name string) bool {
	key := foldName(name)
	for _, n := range names {
		if foldName(n) == key {
			return true
		}
	}
	return false
}

// ArgInputName is the name of the value input for the i-th argument on a
// call-site block.
func ArgInputName(i int) string {
	return fmt.Sprintf("ARG%d", i)
}

// ArgNameField is the name of the label field that shows the i-th
// argument's variable name on a call-site block. Indexed so that field
// names stay unique within the block.
func ArgNameField(i int) string {
	return fmt.Sprintf("ARGNAME%d", i)
}

// AttachArgInputs appends one value input per argument to a call-site
// block, each carrying a label field with the argument's variable name.
// Used by block factories and the load paths, which rebuild argument inputs
// from ProcedureInfo rather than from the static definition.
func AttachArgInputs(b *Block, info *ProcedureInfo) {
	for i, argName := range info.Arguments {
		in := &Input{
			Name:  ArgInputName(i),
			Kind:  InputValue,
			block: b,
		}
		in.Conn = &Connection{Type: ConnInput, block: b, input: in}
		in.Fields = []*Field{{Name: ArgNameField(i), Kind: FieldText, Value: argName}}
		b.Inputs = append(b.Inputs, in)
	}
}

// remapReferenceArgs rebuilds the argument inputs of a call-site block for
// the new argument list, carrying connected subtrees to their mapped slots
// and returning the subtrees whose slots were deleted.
func (m *ProcedureManager) remapReferenceArgs(ref *Block, newInfo ProcedureInfo, updates []ArgumentIndexUpdate) []*Block {
	// Split off the old argument inputs; everything else is kept verbatim.
	var kept, oldArgs []*Input
	for _, in := range ref.Inputs {
		if in.Kind == InputValue && strings.HasPrefix(in.Name, "ARG") {
			oldArgs = append(oldArgs, in)
		} else {
			kept = append(kept, in)
		}
	}

	// Capture and detach the old subtrees.
	targets := make(map[int]*Connection)
	for i, in := range oldArgs {
		if in.Conn == nil {
			continue
		}
		if t := in.Conn.Target(); t != nil {
			targets[i] = t
			in.Conn.Disconnect()
		}
		if m.connections != nil {
			m.connections.Remove(in.Conn)
		}
	}

	// Build the new argument inputs.
	newArgs := make([]*Input, len(newInfo.Arguments))
	for i, argName := range newInfo.Arguments {
		in := &Input{
			Name:  ArgInputName(i),
			Kind:  InputValue,
			block: ref,
		}
		in.Conn = &Connection{Type: ConnInput, block: ref, input: in}
		in.Fields = []*Field{{Name: ArgNameField(i), Kind: FieldText, Value: argName}}
		newArgs[i] = in
		if m.connections != nil {
			m.connections.Add(in.Conn)
		}
	}

	// Reconnect subtrees that map forward.
	for _, u := range updates {
		t, ok := targets[u.Before]
		if !ok || u.After < 0 || u.After >= len(newArgs) {
			continue
		}
		if err := newArgs[u.After].Conn.Connect(t); err == nil {
			delete(targets, u.Before)
		}
	}

	// Whatever is left was deleted by the mutation; hand the subtrees back.
	var released []*Block
	for i := range oldArgs {
		if t, ok := targets[i]; ok {
			released = append(released, t.Block())
		}
	}

	ref.Inputs = append(kept, newArgs...)
	return released
}

// markArguments adjusts the argument reference counts for a whole argument
// list at once, with a single registry notification.
func (m *ProcedureManager) markArguments(args []string, delta int) {
	if m.variables == nil || len(args) == 0 {
		return
	}
	m.variables.BeginUpdate()
	defer m.variables.EndUpdate()
	for _, arg := range args {
		m.variables.MarkArgument(arg, delta)
	}
}
