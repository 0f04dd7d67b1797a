package app

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/bvisness/blockflow/app/core"
)

// InputProvider abstracts the raylib input calls the drag machine needs, so
// tests can feed it synthetic mouse state.
type InputProvider interface {
	IsKeyPressed(key int32) bool
	IsMouseButtonReleased(button rl.MouseButton) bool
	IsMouseButtonUp(button rl.MouseButton) bool
	IsMouseButtonDown(button rl.MouseButton) bool
	GetMousePosition() rl.Vector2
}

type RealInputProvider struct{}

func (p RealInputProvider) IsKeyPressed(key int32) bool {
	return rl.IsKeyPressed(key)
}
func (p RealInputProvider) IsMouseButtonReleased(button rl.MouseButton) bool {
	return rl.IsMouseButtonReleased(button)
}
func (p RealInputProvider) IsMouseButtonUp(button rl.MouseButton) bool {
	return rl.IsMouseButtonUp(button)
}
func (p RealInputProvider) IsMouseButtonDown(button rl.MouseButton) bool {
	return rl.IsMouseButtonDown(button)
}
func (p RealInputProvider) GetMousePosition() rl.Vector2 {
	return rl.GetMousePosition()
}

var Drag DragState = DragState{
	Input: RealInputProvider{},
}

type DragState struct {
	Input InputProvider

	Dragging    bool
	WasDragging bool
	Pending     bool
	Canceled    bool

	Thing any
	Key   string

	MouseStart core.V2
	ObjStart   core.V2
}

// Call once per frame at the start of the frame.
func (d *DragState) Update() {
	d.WasDragging = false
	if d.Input.IsKeyPressed(rl.KeyEscape) {
		d.Dragging = false
		d.Canceled = true
	} else if d.Input.IsMouseButtonReleased(rl.MouseLeftButton) {
		if d.Dragging {
			d.WasDragging = true
		}
		d.Dragging = false
	} else if d.Input.IsMouseButtonUp(rl.MouseLeftButton) {
		if d.Dragging {
			d.WasDragging = true
		}
		d.Dragging = false
		d.Pending = false
		d.Canceled = true
		d.Thing = nil
		d.Key = ""
		d.MouseStart = rl.Vector2{}
		d.ObjStart = rl.Vector2{}
	} else if d.Input.IsMouseButtonDown(rl.MouseLeftButton) {
		if !d.Dragging && !d.Pending {
			d.Pending = true
			d.MouseStart = d.Input.GetMousePosition()
		}
	}
}

func (d *DragState) TryStartDrag(thing any, dragRegion rl.Rectangle, objStart rl.Vector2) bool {
	if thing == nil {
		panic("you must provide a thing to drag")
	}

	if d.Dragging {
		// can't start a new drag while one is in progress
		return false
	}

	if !d.Pending {
		// can't start a new drag with this item unless we have a pending one
		return false
	}

	if rl.Vector2Length(rl.Vector2Subtract(d.Input.GetMousePosition(), d.MouseStart)) < 3 {
		// haven't dragged far enough
		return false
	}

	if !rl.CheckCollisionPointRec(d.MouseStart, dragRegion) {
		// not dragging from the right place
		return false
	}

	d.Dragging = true
	d.Pending = false
	d.Canceled = false
	d.Thing = thing
	d.Key = GetDragKey(thing)
	d.ObjStart = objStart

	return true
}

func (d *DragState) Offset() rl.Vector2 {
	if !d.Dragging && d.Key == "" {
		return rl.Vector2{}
	}
	return rl.Vector2Subtract(d.Input.GetMousePosition(), d.MouseStart)
}

func (d *DragState) NewObjPosition() rl.Vector2 {
	return rl.Vector2Add(d.ObjStart, d.Offset())
}

// Pass in a key and it will tell you the relevant drag state for that thing.
// matchesKey will be true if that object is the one currently being dragged.
// done will be true if the drag is complete this frame.
// canceled will be true if the drag is done but was canceled.
func (d *DragState) State(key any) (matchesKey bool, done bool, canceled bool) {
	matchesKey = true
	if key != nil {
		matchesKey = d.Key == GetDragKey(key)
	}

	if !d.Dragging && d.Key != "" && matchesKey {
		return matchesKey, true, d.Canceled
	} else {
		return matchesKey, false, false
	}
}

func GetDragKey(key any) string {
	switch kt := key.(type) {
	case string:
		return kt
	case DragKeyer:
		return kt.DragKey()
	default:
		panic(fmt.Errorf("cannot make drag key for %v", key))
	}
}

type DragKeyer interface {
	DragKey() string
}

// ----------------------------------
// Block drags

// BlockDrag is one in-flight block drag: the picked-up block, every
// connection in its subtree, and where each of those connections sits
// relative to the block's origin. While the drag lives, the subtree's
// connections are out of the workspace index and in drag mode, so the moving
// group never snaps to itself.
type BlockDrag struct {
	ws    *Workspace
	block *core.Block

	conns    []*core.Connection
	offsets  []core.V2
	startPos core.V2
	wasRoot  bool
}

func (bd *BlockDrag) DragKey() string { return "block:" + bd.block.ID }

func (bd *BlockDrag) Block() *core.Block { return bd.block }

// PickUpBlock detaches the block from its parent (the chain hanging below it
// comes along) and puts its whole subtree into drag mode.
func (ws *Workspace) PickUpBlock(b *core.Block) *BlockDrag {
	if b.Previous != nil && b.Previous.IsConnected() {
		b.Previous.Disconnect()
	}
	if b.Output != nil && b.Output.IsConnected() {
		b.Output.Disconnect()
	}

	bd := &BlockDrag{
		ws:       ws,
		block:    b,
		startPos: b.Pos,
		wasRoot:  ws.isRoot(b),
	}
	if bd.wasRoot {
		ws.unroot(b)
	}

	collectSubtreeConnections(b, &bd.conns)
	for _, c := range bd.conns {
		ws.Conns.Remove(c)
		c.SetDragMode(true)
		bd.offsets = append(bd.offsets, rl.Vector2Subtract(c.Position(), b.Pos))
	}
	return bd
}

// MoveTo moves the whole group so the block's origin lands at pos.
func (bd *BlockDrag) MoveTo(pos core.V2) {
	bd.block.Pos = pos
	for i, c := range bd.conns {
		bd.ws.Conns.MoveTo(c, pos, bd.offsets[i])
	}
}

// Drop ends the drag: the nearest allowed connection within the snap radius
// wins, the group's connections rejoin the index, and the block becomes a
// root again if nothing claimed it.
func (bd *BlockDrag) Drop() error {
	for _, c := range bd.conns {
		c.SetDragMode(false)
	}

	var local, target *core.Connection
	bestDist := bd.ws.Cfg.SnapRadius
	for _, c := range bd.conns {
		if c.IsConnected() {
			continue
		}
		candidate := bd.ws.Conns.ClosestAllowed(c, bd.ws.Cfg.SnapRadius, false)
		if candidate == nil {
			continue
		}
		d := rl.Vector2Distance(c.Position(), candidate.Position())
		if target == nil || d < bestDist {
			local, target = c, candidate
			bestDist = d
		}
	}

	for _, c := range bd.conns {
		bd.ws.Conns.Add(c)
	}

	if target != nil {
		if err := local.Connect(target); err != nil {
			return err
		}
	}
	if bd.block.IsRoot() && !bd.ws.isRoot(bd.block) {
		bd.ws.roots = append(bd.ws.roots, bd.block)
	}
	return nil
}

// Cancel puts the group back where the drag started without snapping.
func (bd *BlockDrag) Cancel() {
	bd.MoveTo(bd.startPos)
	for _, c := range bd.conns {
		c.SetDragMode(false)
		bd.ws.Conns.Add(c)
	}
	if bd.block.IsRoot() && !bd.ws.isRoot(bd.block) {
		bd.ws.roots = append(bd.ws.roots, bd.block)
	}
}

// HandleBlockDrag runs one frame of gesture handling for the block: a
// pending press inside dragRegion that pulls away becomes a live drag, the
// subtree follows the mouse while the drag lasts, and release drops it
// (escape cancels). Call once per visible block, after DragState.Update.
func (ws *Workspace) HandleBlockDrag(d *DragState, b *core.Block, dragRegion rl.Rectangle) error {
	if d.TryStartDrag("block:"+b.ID, dragRegion, b.Pos) {
		d.Thing = ws.PickUpBlock(b)
	}

	_, done, canceled := d.State("block:" + b.ID)
	bd, ok := d.Thing.(*BlockDrag)
	if !ok || bd.block != b {
		return nil
	}

	if done {
		d.Thing = nil
		if canceled {
			bd.Cancel()
			return nil
		}
		return bd.Drop()
	}
	bd.MoveTo(d.NewObjPosition())
	return nil
}

// collectSubtreeConnections gathers the block's own connections plus those
// of everything hanging off its inputs and next chain.
func collectSubtreeConnections(b *core.Block, out *[]*core.Connection) {
	*out = append(*out, b.Connections()...)
	for _, in := range b.Inputs {
		if child := in.ConnectedBlock(); child != nil {
			collectSubtreeConnections(child, out)
		}
	}
	if next := b.NextBlock(); next != nil {
		collectSubtreeConnections(next, out)
	}
}
