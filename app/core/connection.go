package core

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type V2 = rl.Vector2

// ConnectionType says which kind of socket a Connection is. Previous/Next
// stitch statement blocks into vertical chains; Input/Output plug value
// blocks into sockets.
type ConnectionType int

const (
	ConnPrevious ConnectionType = iota
	ConnNext
	ConnInput
	ConnOutput
)

func (t ConnectionType) String() string {
	switch t {
	case ConnPrevious:
		return "Previous"
	case ConnNext:
		return "Next"
	case ConnInput:
		return "Input"
	case ConnOutput:
		return "Output"
	default:
		return "<UNKNOWN CONNECTION TYPE>"
	}
}

// Opposite returns the only connection type this type may link to.
func (t ConnectionType) Opposite() ConnectionType {
	switch t {
	case ConnPrevious:
		return ConnNext
	case ConnNext:
		return ConnPrevious
	case ConnInput:
		return ConnOutput
	case ConnOutput:
		return ConnInput
	default:
		panic(fmt.Errorf("no opposite for connection type %d", t))
	}
}

// ConnectReason is the outcome of checking whether two connections may link.
// The order of these checks matters; see CanConnectWithReason.
type ConnectReason int

const (
	CanConnect ConnectReason = iota
	ReasonSelfConnection
	ReasonWrongType
	ReasonMustDisconnect
	ReasonTargetNull
	ReasonChecksFailed
)

func (r ConnectReason) String() string {
	switch r {
	case CanConnect:
		return "can connect"
	case ReasonSelfConnection:
		return "block cannot connect to itself"
	case ReasonWrongType:
		return "connection types are not compatible"
	case ReasonMustDisconnect:
		return "already connected; must disconnect first"
	case ReasonTargetNull:
		return "target connection is nil"
	case ReasonChecksFailed:
		return "connection checks do not match"
	default:
		return "<UNKNOWN REASON>"
	}
}

// ConnectionError is returned by Connect when validation fails.
type ConnectionError struct {
	Reason ConnectReason
	Local  *Connection
	Target *Connection
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect %s to %s: %s", e.Local, e.Target, e.Reason)
}

// Connection is one typed socket on a block. It links to at most one peer of
// the opposite type, and both sides of the link are always kept in sync.
type Connection struct {
	Type ConnectionType

	// Checks restricts which peers this connection accepts. nil or empty
	// means "accepts anything"; otherwise the two sides must share at least
	// one tag.
	Checks []string

	// Shadow marks connections belonging to shadow (placeholder) blocks.
	Shadow bool

	pos      V2
	dragMode bool

	block  *Block
	input  *Input
	target *Connection
}

func (c *Connection) String() string {
	if c == nil {
		return "Connection(nil)"
	}
	owner := "<detached>"
	if c.block != nil {
		owner = c.block.String()
	}
	return fmt.Sprintf("%sConnection(%s)", c.Type, owner)
}

func (c *Connection) Block() *Block { return c.block }

func (c *Connection) Input() *Input { return c.input }

func (c *Connection) Target() *Connection { return c.target }

func (c *Connection) IsConnected() bool { return c.target != nil }

func (c *Connection) Position() V2 { return c.pos }

func (c *Connection) SetPosition(pos V2) { c.pos = pos }

func (c *Connection) InDragMode() bool { return c.dragMode }

func (c *Connection) SetDragMode(drag bool) { c.dragMode = drag }

// TargetBlock returns the block on the other end of the link, or nil.
func (c *Connection) TargetBlock() *Block {
	if c.target == nil {
		return nil
	}
	return c.target.block
}

// CanConnect reports whether Connect(other) would succeed.
func (c *Connection) CanConnect(other *Connection) bool {
	return c.CanConnectWithReason(other) == CanConnect
}

// CanConnectWithReason evaluates its checks in a fixed order, and callers
// rely on that order: a self-connection on mismatched types reports
// ReasonSelfConnection, not ReasonWrongType, and type errors are reported
// before "already connected" errors.
func (c *Connection) CanConnectWithReason(other *Connection) ConnectReason {
	if other == nil || other.block == nil {
		return ReasonTargetNull
	}
	if other.block == c.block {
		return ReasonSelfConnection
	}
	if other.Type != c.Type.Opposite() {
		return ReasonWrongType
	}
	if c.target != nil {
		return ReasonMustDisconnect
	}
	if !c.checksMatch(other) {
		return ReasonChecksFailed
	}
	return CanConnect
}

// Connect links c and other symmetrically. Connecting an already-connected
// pair is a no-op. Any validation failure is returned as a *ConnectionError
// carrying the reason.
func (c *Connection) Connect(other *Connection) error {
	if c.target == other {
		return nil
	}
	if reason := c.CanConnectWithReason(other); reason != CanConnect {
		return &ConnectionError{Reason: reason, Local: c, Target: other}
	}
	c.target = other
	other.target = c
	return nil
}

// Disconnect clears both sides of the link. Disconnecting an unconnected
// connection is a no-op.
func (c *Connection) Disconnect() {
	if c.target == nil {
		return
	}
	t := c.target
	c.target = nil
	t.target = nil
}

// checksMatch reports whether the two connections' tag sets are compatible.
// nil checks on either side accept anything; otherwise the sides must share
// at least one exact tag. Tag lists are tiny, so the quadratic scan is fine.
func (c *Connection) checksMatch(other *Connection) bool {
	if len(c.Checks) == 0 || len(other.Checks) == 0 {
		return true
	}
	for _, a := range c.Checks {
		for _, b := range other.Checks {
			if a == b {
				return true
			}
		}
	}
	return false
}
