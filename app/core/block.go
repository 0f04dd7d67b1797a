package core

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Block is one draggable unit in the workspace. Its connections stitch it
// into a chain (Previous/Next) or plug it into a value socket (Output), and
// its inputs carry nested value trees, statement bodies, and fields.
type Block struct {
	ID   string
	Type string

	// Pos is only meaningful for root blocks; connected blocks get their
	// position from layout.
	Pos V2

	// Shadow blocks are placeholder defaults that occupy a socket until the
	// user supplies a real block.
	Shadow bool

	Previous *Connection
	Next     *Connection
	Output   *Connection
	Inputs   []*Input

	// Procedure is set on procedure definition and call blocks and is kept
	// in sync across all of them by the ProcedureManager.
	Procedure *ProcedureInfo

	Collapsed bool
	Disabled  bool
}

func (b *Block) String() string {
	return fmt.Sprintf("Block#%.8s(%s)", b.ID, b.Type)
}

// IsRoot reports whether the block is a workspace root: nothing upstream of
// it via previous or output.
func (b *Block) IsRoot() bool {
	if b.Previous != nil && b.Previous.IsConnected() {
		return false
	}
	if b.Output != nil && b.Output.IsConnected() {
		return false
	}
	return true
}

// RootBlock walks upward through previous/output links to the top of the
// tree this block belongs to.
func (b *Block) RootBlock() *Block {
	cur := b
	for {
		var up *Connection
		if cur.Previous != nil && cur.Previous.IsConnected() {
			up = cur.Previous
		} else if cur.Output != nil && cur.Output.IsConnected() {
			up = cur.Output
		} else {
			return cur
		}
		cur = up.TargetBlock()
	}
}

// NextBlock returns the block connected below this one, or nil.
func (b *Block) NextBlock() *Block {
	if b.Next == nil {
		return nil
	}
	return b.Next.TargetBlock()
}

// LastBlockInChain follows next links to the bottom of the chain.
func (b *Block) LastBlockInChain() *Block {
	cur := b
	for cur.NextBlock() != nil {
		cur = cur.NextBlock()
	}
	return cur
}

// InputByName returns the named input, or nil.
func (b *Block) InputByName(name string) *Input {
	for _, in := range b.Inputs {
		if in.Name == name {
			return in
		}
	}
	return nil
}

// FieldByName searches all inputs for the named field, or nil.
func (b *Block) FieldByName(name string) *Field {
	for _, in := range b.Inputs {
		for _, f := range in.Fields {
			if f.Name == name {
				return f
			}
		}
	}
	return nil
}

// Connections returns the block's own structural connections plus every
// input connection, in a stable order. Input target blocks are not included.
func (b *Block) Connections() []*Connection {
	var res []*Connection
	if b.Previous != nil {
		res = append(res, b.Previous)
	}
	if b.Next != nil {
		res = append(res, b.Next)
	}
	if b.Output != nil {
		res = append(res, b.Output)
	}
	for _, in := range b.Inputs {
		if in.Conn != nil {
			res = append(res, in.Conn)
		}
	}
	return res
}

// InputKind says what an Input carries: a value socket, a statement socket,
// or nothing but fields.
type InputKind int

const (
	InputValue InputKind = iota
	InputStatement
	InputDummy
)

// Input is one socket-bearing slot on a block. Value inputs own an Input
// connection, statement inputs own a Next connection, dummy inputs own none.
type Input struct {
	Name   string
	Kind   InputKind
	Conn   *Connection
	Fields []*Field

	block *Block
}

func (in *Input) Block() *Block { return in.block }

// ConnectedBlock returns the block plugged into this input, or nil.
func (in *Input) ConnectedBlock() *Block {
	if in.Conn == nil {
		return nil
	}
	return in.Conn.TargetBlock()
}

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	FieldVariable
	FieldDropdown
	FieldCheckbox
)

// Field is an editable scalar on a block. The editing widgets live outside
// this package; the core only tracks names and values. Variable fields are
// indexed by the workspace's variable registry.
type Field struct {
	Name  string
	Kind  FieldKind
	Value string
}

// ----------------------------------
// Definitions and building

// FieldDefinition describes one field on a block definition.
type FieldDefinition struct {
	Name    string
	Kind    FieldKind
	Default string
}

// InputDefinition describes one input slot on a block definition.
type InputDefinition struct {
	Name   string
	Kind   InputKind
	Checks []string
	Fields []FieldDefinition
}

// BlockDefinition is the static shape of a block type: which structural
// connections it has and which inputs and fields it carries.
type BlockDefinition struct {
	Type string

	HasPrevious    bool
	PreviousChecks []string
	HasNext        bool
	NextChecks     []string
	HasOutput      bool
	OutputChecks   []string

	Inputs []InputDefinition
}

// Validate enforces the structural invariants of a definition, most
// importantly that a block is never both a value block and a statement
// block.
func (d BlockDefinition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Type, validation.Required),
		validation.Field(&d.HasOutput, validation.By(func(any) error {
			if d.HasOutput && d.HasPrevious {
				return fmt.Errorf("a block cannot have both an output and a previous connection")
			}
			return nil
		})),
		validation.Field(&d.Inputs, validation.By(func(any) error {
			seen := make(map[string]bool, len(d.Inputs))
			for _, in := range d.Inputs {
				if in.Name == "" && in.Kind != InputDummy {
					return fmt.Errorf("non-dummy inputs must be named")
				}
				if in.Name != "" && seen[in.Name] {
					return fmt.Errorf("duplicate input name %q", in.Name)
				}
				seen[in.Name] = true
			}
			return nil
		})),
	)
}

// Build constructs a fresh block from the definition, wiring all the
// connection back-references. The new block gets a new ID.
func (d BlockDefinition) Build() (*Block, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("bad definition for block type %q: %w", d.Type, err)
	}

	b := &Block{
		ID:   NewBlockID(),
		Type: d.Type,
	}
	if d.HasPrevious {
		b.Previous = &Connection{Type: ConnPrevious, Checks: d.PreviousChecks, block: b}
	}
	if d.HasNext {
		b.Next = &Connection{Type: ConnNext, Checks: d.NextChecks, block: b}
	}
	if d.HasOutput {
		b.Output = &Connection{Type: ConnOutput, Checks: d.OutputChecks, block: b}
	}
	for _, ind := range d.Inputs {
		in := &Input{
			Name:  ind.Name,
			Kind:  ind.Kind,
			block: b,
		}
		switch ind.Kind {
		case InputValue:
			in.Conn = &Connection{Type: ConnInput, Checks: ind.Checks, block: b, input: in}
		case InputStatement:
			in.Conn = &Connection{Type: ConnNext, Checks: ind.Checks, block: b, input: in}
		case InputDummy:
			// fields only
		}
		for _, fd := range ind.Fields {
			in.Fields = append(in.Fields, &Field{Name: fd.Name, Kind: fd.Kind, Value: fd.Default})
		}
		b.Inputs = append(b.Inputs, in)
	}
	return b, nil
}

// MarkShadow flags the block and all of its connections as shadow.
func (b *Block) MarkShadow() {
	b.Shadow = true
	for _, conn := range b.Connections() {
		conn.Shadow = true
	}
}

func NewBlockID() string {
	return uuid.NewString()
}
