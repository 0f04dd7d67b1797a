package core

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/bvisness/blockflow/util"
)

// ConnectionManager tracks every live connection in a workspace, one
// y-sorted list per connection type, and answers the proximity queries that
// drive drag-and-drop snapping.
type ConnectionManager struct {
	previous YSortedList
	next     YSortedList
	input    YSortedList
	output   YSortedList
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		previous: YSortedList{typ: ConnPrevious},
		next:     YSortedList{typ: ConnNext},
		input:    YSortedList{typ: ConnInput},
		output:   YSortedList{typ: ConnOutput},
	}
}

func (m *ConnectionManager) ListFor(t ConnectionType) *YSortedList {
	switch t {
	case ConnPrevious:
		return &m.previous
	case ConnNext:
		return &m.next
	case ConnInput:
		return &m.input
	case ConnOutput:
		return &m.output
	default:
		panic("unknown connection type")
	}
}

// Add inserts the connection into its type's index, preserving y-order.
func (m *ConnectionManager) Add(conn *Connection) {
	m.ListFor(conn.Type).add(conn)
}

// Remove takes the connection out of its type's index. Removing a
// connection that was never added is a no-op.
func (m *ConnectionManager) Remove(conn *Connection) {
	m.ListFor(conn.Type).remove(conn)
}

// MoveTo sets the connection's position to newPos+offset. Index-tracked
// connections are removed and reinserted to keep the sort order; drag-mode
// connections just get the new position so that the ghost being dragged
// never matches against itself.
func (m *ConnectionManager) MoveTo(conn *Connection, newPos V2, offset V2) {
	pos := rl.Vector2Add(newPos, offset)
	if conn.InDragMode() {
		conn.SetPosition(pos)
		return
	}
	list := m.ListFor(conn.Type)
	list.remove(conn)
	conn.SetPosition(pos)
	list.add(conn)
}

// Clear empties all four indexes.
func (m *ConnectionManager) Clear() {
	m.previous.conns = nil
	m.next.conns = nil
	m.input.conns = nil
	m.output.conns = nil
}

// IsConnectionAllowed decides whether candidate may be offered as a snap
// target for the moving connection. Beyond plain compatibility this
// enforces the drag rules: occupied sockets are never offered, and a shadow
// block may not become the parent of a real block unless the caller is
// deliberately replacing a shadow default.
func (m *ConnectionManager) IsConnectionAllowed(moving, candidate *Connection, maxRadius float32, allowShadowToNonShadow bool) bool {
	if rl.Vector2Distance(moving.Position(), candidate.Position()) > maxRadius {
		return false
	}
	// Statement chains don't steal: only the unconnected end of a chain may
	// be offered. Same for occupied value sockets.
	if candidate.IsConnected() {
		return false
	}
	if !moving.CanConnect(candidate) {
		return false
	}
	if !allowShadowToNonShadow {
		parent, child := util.Tern(isParentSide(moving), moving, candidate), util.Tern(isParentSide(moving), candidate, moving)
		if parent.Shadow && !child.Shadow {
			return false
		}
	}
	return true
}

// isParentSide reports whether a connection of this type belongs to the
// parent in a parent/child link. Input and Next sockets receive children.
func isParentSide(conn *Connection) bool {
	return conn.Type == ConnInput || conn.Type == ConnNext
}

// GetNeighbours collects indexed connections of the opposite type within a
// square of side 2*radius centered on conn.
func (m *ConnectionManager) GetNeighbours(conn *Connection, radius float32) []*Connection {
	var res []*Connection
	m.ListFor(conn.Type.Opposite()).getNeighbours(conn, radius, &res)
	return res
}

// ClosestAllowed returns the nearest connection of the opposite type that
// IsConnectionAllowed accepts for the moving connection, or nil.
func (m *ConnectionManager) ClosestAllowed(moving *Connection, maxRadius float32, allowShadowToNonShadow bool) *Connection {
	var best *Connection
	bestDist := maxRadius
	for _, candidate := range m.GetNeighbours(moving, maxRadius) {
		if !m.IsConnectionAllowed(moving, candidate, maxRadius, allowShadowToNonShadow) {
			continue
		}
		d := rl.Vector2Distance(moving.Position(), candidate.Position())
		if best == nil || d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}

// ----------------------------------
// YSortedList

// YSortedList is an index over connections of one type, sorted ascending by
// y so that proximity queries only touch the vertical window that could
// possibly match.
type YSortedList struct {
	typ   ConnectionType
	conns []*Connection
}

func (l *YSortedList) Len() int { return len(l.conns) }

func (l *YSortedList) Get(i int) *Connection { return l.conns[i] }

func (l *YSortedList) Contains(c *Connection) bool { return l.findConnection(c) != -1 }

// IsSorted reports whether the list invariant holds. Exposed for tests.
func (l *YSortedList) IsSorted() bool {
	for i := 1; i < len(l.conns); i++ {
		if l.conns[i-1].Position().Y > l.conns[i].Position().Y {
			return false
		}
	}
	return true
}

func (l *YSortedList) add(conn *Connection) {
	util.Assert(conn.Type == l.typ, "added a %s connection to the %s list", conn.Type, l.typ)
	idx := l.findPositionFor(conn)
	l.conns = append(l.conns, nil)
	copy(l.conns[idx+1:], l.conns[idx:])
	l.conns[idx] = conn
}

func (l *YSortedList) remove(conn *Connection) {
	idx := l.findConnection(conn)
	if idx == -1 {
		return
	}
	l.conns = append(l.conns[:idx], l.conns[idx+1:]...)
}

// findPositionFor binary-searches for an insertion index that keeps the
// list sorted by y.
func (l *YSortedList) findPositionFor(conn *Connection) int {
	lo, hi := 0, len(l.conns)
	y := conn.Position().Y
	for lo < hi {
		mid := (lo + hi) / 2
		if l.conns[mid].Position().Y < y {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// findConnection locates the exact connection object, scanning both
// directions from its y-insertion point while y stays equal. Returns -1 if
// the connection is not in the list.
func (l *YSortedList) findConnection(conn *Connection) int {
	if len(l.conns) == 0 {
		return -1
	}
	start := l.findPositionFor(conn)
	y := conn.Position().Y

	for i := start; i < len(l.conns) && l.conns[i].Position().Y == y; i++ {
		if l.conns[i] == conn {
			return i
		}
	}
	for i := start - 1; i >= 0 && l.conns[i].Position().Y == y; i-- {
		if l.conns[i] == conn {
			return i
		}
	}
	return -1
}

// getNeighbours appends every connection within a box of side 2*radius
// around target to out. The scan runs outward from the y-insertion point in
// both directions and stops as soon as the y-distance alone exceeds the
// radius, so the cost is bounded by the window, not the list.
func (l *YSortedList) getNeighbours(target *Connection, radius float32, out *[]*Connection) {
	if len(l.conns) == 0 {
		return
	}
	pos := target.Position()
	start := l.findPositionFor(target)

	inBox := func(c *Connection) bool {
		dx := c.Position().X - pos.X
		return -radius <= dx && dx <= radius
	}

	for i := start; i < len(l.conns); i++ {
		dy := l.conns[i].Position().Y - pos.Y
		if dy > radius {
			break
		}
		if inBox(l.conns[i]) {
			*out = append(*out, l.conns[i])
		}
	}
	for i := start - 1; i >= 0; i-- {
		dy := pos.Y - l.conns[i].Position().Y
		if dy > radius {
			break
		}
		if inBox(l.conns[i]) {
			*out = append(*out, l.conns[i])
		}
	}
}

// searchForClosest returns the neighbour with the smallest Euclidean
// distance to target, or nil if nothing is within radius. Ties go to the
// first one found; callers must not rely on that beyond test stability.
func (l *YSortedList) searchForClosest(target *Connection, radius float32) *Connection {
	var neighbours []*Connection
	l.getNeighbours(target, radius, &neighbours)

	var best *Connection
	bestDist := radius
	for _, c := range neighbours {
		d := rl.Vector2Distance(target.Position(), c.Position())
		if d > radius {
			continue
		}
		if best == nil || d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// SearchForClosest is the exported form used by draggers and tests.
func (l *YSortedList) SearchForClosest(target *Connection, radius float32) *Connection {
	return l.searchForClosest(target, radius)
}
