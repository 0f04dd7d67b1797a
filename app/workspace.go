package app

import (
	"errors"
	"fmt"

	"github.com/bvisness/blockflow/app/core"
)

var (
	ErrBlockNotRoot     = errors.New("block is not a workspace root")
	ErrVariableUnknown  = errors.New("variable is not registered")
	ErrVariableIsArgRef = errors.New("variable is used as a procedure argument")
)

// Workspace owns all the per-workspace registries: the spatial connection
// index, the variable registry, and the procedure registry. They are plain
// fields, never process-wide state, so workspaces are independent of each
// other. All mutation is expected to happen on one thread.
type Workspace struct {
	Conns      *core.ConnectionManager
	Variables  *core.VariableNameManager
	Procedures *core.ProcedureManager
	Stats      *core.WorkspaceStats

	Cfg Config

	roots []*core.Block
}

func NewWorkspace(cfg Config) *Workspace {
	conns := core.NewConnectionManager()
	vars := core.NewVariableNameManager()
	procs := core.NewProcedureManager(vars, conns)
	return &Workspace{
		Conns:      conns,
		Variables:  vars,
		Procedures: procs,
		Stats:      core.NewWorkspaceStats(conns, vars, procs),
		Cfg:        cfg,
	}
}

func (ws *Workspace) Roots() []*core.Block {
	return ws.roots
}

// AddRootBlock places the block as a top-level entry and indexes its
// subtree. recursive controls whether the whole next-chain below the block
// is indexed too, which is the difference between adding one block and
// adding a prebuilt stack.
func (ws *Workspace) AddRootBlock(b *core.Block, recursive bool) error {
	if b.Previous != nil && b.Previous.IsConnected() {
		return fmt.Errorf("%w: %s has a connected previous connection", ErrBlockNotRoot, b)
	}
	if b.Output != nil && b.Output.IsConnected() {
		return fmt.Errorf("%w: %s has a connected output connection", ErrBlockNotRoot, b)
	}
	if err := ws.Stats.CollectStats(b, recursive); err != nil {
		return err
	}
	ws.roots = append(ws.roots, b)
	return nil
}

// RemoveRootBlock detaches the root from the workspace and unindexes its
// subtree. If the root is a procedure definition, every one of its call
// sites is torn down too; all deleted blocks are returned.
func (ws *Workspace) RemoveRootBlock(b *core.Block) ([]*core.Block, error) {
	if !ws.isRoot(b) {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotRoot, b)
	}

	deleted := []*core.Block{b}
	if core.IsProcedureDefinition(b) {
		for _, removed := range ws.Procedures.RemoveProcedure(b) {
			if removed == b {
				continue
			}
			ws.detachBlock(removed)
			deleted = append(deleted, removed)
		}
	}

	ws.unroot(b)
	ws.Stats.RemoveStats(b, true)
	return deleted, nil
}

// detachBlock rips one block out of wherever it sits: disconnects it from
// its parent, splices nothing (the chain below goes with it), and removes
// its subtree from the index and root list.
func (ws *Workspace) detachBlock(b *core.Block) {
	if b.Previous != nil {
		b.Previous.Disconnect()
	}
	if b.Output != nil {
		b.Output.Disconnect()
	}
	ws.unroot(b)
	ws.Stats.RemoveStats(b, true)
}

func (ws *Workspace) isRoot(b *core.Block) bool {
	for _, r := range ws.roots {
		if r == b {
			return true
		}
	}
	return false
}

func (ws *Workspace) unroot(b *core.Block) {
	for i, r := range ws.roots {
		if r == b {
			ws.roots = append(ws.roots[:i], ws.roots[i+1:]...)
			return
		}
	}
}

// Clear resets the workspace to empty.
func (ws *Workspace) Clear() {
	ws.roots = nil
	ws.Conns.Clear()
	ws.Variables.Clear()
	ws.Procedures.Clear()
}

// RenameVariable changes a variable's display name everywhere it is used,
// returning the name actually applied (a unique variant if the requested
// name collides with a different variable).
func (ws *Workspace) RenameVariable(oldName, newName string) (string, error) {
	info, ok := ws.Variables.Get(oldName)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrVariableUnknown, oldName)
	}

	ws.Variables.BeginUpdate()
	defer ws.Variables.EndUpdate()

	// Remove first so a rename to another casing of the same name does not
	// collide with itself.
	ws.Variables.Remove(oldName)
	actual := ws.Variables.GenerateUniqueName(newName)
	ws.Variables.Put(actual, info)
	for _, f := range info.Fields {
		f.Value = actual
	}
	return actual, nil
}

// DeleteVariable removes a variable from the registry and blanks every
// field that referenced it. Deletion is refused while any procedure uses
// the name as an argument.
func (ws *Workspace) DeleteVariable(name string) error {
	info, ok := ws.Variables.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrVariableUnknown, name)
	}
	if info.ArgRefs > 0 {
		return fmt.Errorf("%w: %q", ErrVariableIsArgRef, name)
	}

	ws.Variables.BeginUpdate()
	defer ws.Variables.EndUpdate()
	for _, f := range info.Fields {
		f.Value = ""
	}
	ws.Variables.Remove(name)
	return nil
}
