package app

import (
	"encoding/base64"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/bvisness/blockflow/app/core"
)

// Copy puts the block's subtree on the system clipboard as base64 so it can
// be pasted into any workspace, including another process.
func Copy(b *core.Block) {
	data, err := core.SerializeBlocks([]*core.Block{b})
	if err != nil {
		return
	}
	rl.SetClipboardText(base64.StdEncoding.EncodeToString(data))
}

// Paste decodes the clipboard and adds the blocks to the workspace. Returns
// the pasted roots, or nil if the clipboard didn't hold blocks.
func (ws *Workspace) Paste() []*core.Block {
	str := rl.GetClipboardText()
	if str == "" {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		// Not a valid base64 string, maybe just text? Ignore.
		return nil
	}
	roots, err := ws.PasteFromData(data)
	if err != nil {
		return nil
	}
	return roots
}

// PasteFromData is the clipboard-free half of Paste, split out for tests.
// Pasted blocks get fresh IDs and a small offset so they don't land exactly
// on the originals.
func (ws *Workspace) PasteFromData(data []byte) ([]*core.Block, error) {
	roots, err := core.DeserializeBlocks(data)
	if err != nil {
		return nil, err
	}
	for _, b := range roots {
		reassignIDs(b)
		b.Pos = rl.Vector2Add(b.Pos, core.V2{X: 20, Y: 20})
		if err := ws.AddRootBlock(b, true); err != nil {
			return nil, err
		}
	}
	return roots, nil
}

// reassignIDs gives the block and its whole subtree fresh IDs so a paste
// never collides with the copied originals.
func reassignIDs(b *core.Block) {
	b.ID = core.NewBlockID()
	for _, in := range b.Inputs {
		if child := in.ConnectedBlock(); child != nil {
			reassignIDs(child)
		}
	}
	if next := b.NextBlock(); next != nil {
		reassignIDs(next)
	}
}
