package app

import (
	"bytes"
	"fmt"

	"github.com/bvisness/blockflow/app/core"
)

const maxHistorySize = 50

// HistoryManager handles Undo/Redo by storing serialized snapshots of the
// workspace's root blocks.
type HistoryManager struct {
	snapshots [][]byte
	pointer   int // points to the current snapshot
}

func NewHistoryManager(ws *Workspace) *HistoryManager {
	hm := &HistoryManager{pointer: -1}
	hm.Push(ws)
	return hm
}

// Push records the workspace's current state, truncating any redo history.
// A state identical to the current snapshot is not recorded twice.
func (hm *HistoryManager) Push(ws *Workspace) {
	data, err := core.SerializeBlocks(ws.Roots())
	if err != nil {
		fmt.Printf("History Push failed: %v\n", err)
		return
	}

	if hm.pointer >= 0 && hm.pointer < len(hm.snapshots) {
		if bytes.Equal(hm.snapshots[hm.pointer], data) {
			return
		}
	}

	if hm.pointer < len(hm.snapshots)-1 {
		hm.snapshots = hm.snapshots[:hm.pointer+1]
	}

	hm.snapshots = append(hm.snapshots, data)
	hm.pointer++

	if len(hm.snapshots) > maxHistorySize {
		hm.snapshots = hm.snapshots[1:]
		hm.pointer--
	}
}

// Undo reverts the workspace to the previous snapshot. Returns false if
// there is nothing to undo.
func (hm *HistoryManager) Undo(ws *Workspace) bool {
	if hm.pointer <= 0 {
		return false
	}
	hm.pointer--
	return hm.restore(ws, hm.snapshots[hm.pointer], "Undo")
}

// Redo advances the workspace to the next snapshot. Returns false if there
// is nothing to redo.
func (hm *HistoryManager) Redo(ws *Workspace) bool {
	if hm.pointer >= len(hm.snapshots)-1 {
		return false
	}
	hm.pointer++
	return hm.restore(ws, hm.snapshots[hm.pointer], "Redo")
}

func (hm *HistoryManager) restore(ws *Workspace, data []byte, op string) bool {
	roots, err := core.DeserializeBlocks(data)
	if err != nil {
		fmt.Printf("History %s failed: %v\n", op, err)
		return false
	}
	ws.Clear()
	for _, b := range roots {
		if err := ws.AddRootBlock(b, true); err != nil {
			fmt.Printf("History %s failed: %v\n", op, err)
			return false
		}
	}
	return true
}

func (hm *HistoryManager) CanUndo() bool {
	return hm.pointer > 0
}

func (hm *HistoryManager) CanRedo() bool {
	return hm.pointer < len(hm.snapshots)-1
}
