package core

import (
	"fmt"
)

// BlockBuilder is a small fluent helper for assembling block trees in tests
// and demos without going through the drag layer.
type BlockBuilder struct {
	Block *Block
}

// NewBlock builds a block of the given registered type and wraps it for
// chaining. It panics on unknown types or bad definitions, which is fine
// for the assembly contexts this is meant for.
func NewBlock(typ string) *BlockBuilder {
	def := MustGetBlockDefinition(typ)
	b, err := def.Build()
	if err != nil {
		panic(err)
	}
	return &BlockBuilder{Block: b}
}

// Wrap adapts an already-built block for chaining.
func Wrap(b *Block) *BlockBuilder {
	return &BlockBuilder{Block: b}
}

func (bb *BlockBuilder) At(x, y float32) *BlockBuilder {
	bb.Block.Pos = V2{X: x, Y: y}
	return bb
}

// WithField sets a field value, panicking if the field does not exist.
func (bb *BlockBuilder) WithField(name, value string) *BlockBuilder {
	f := bb.Block.FieldByName(name)
	if f == nil {
		panic(fmt.Sprintf("block %s has no field named %s", bb.Block, name))
	}
	f.Value = value
	return bb
}

// Then stacks next below this block and returns next's builder, so chains
// read top to bottom: a.Then(b).Then(c).
func (bb *BlockBuilder) Then(next *BlockBuilder) *BlockBuilder {
	if bb.Block.Next == nil {
		panic(fmt.Sprintf("block %s has no next connection", bb.Block))
	}
	if next.Block.Previous == nil {
		panic(fmt.Sprintf("block %s has no previous connection", next.Block))
	}
	if err := bb.Block.Next.Connect(next.Block.Previous); err != nil {
		panic(err)
	}
	return next
}

// Plug connects child's output into the named value input and returns the
// parent builder for further chaining.
func (bb *BlockBuilder) Plug(inputName string, child *BlockBuilder) *BlockBuilder {
	in := bb.Block.InputByName(inputName)
	if in == nil || in.Conn == nil {
		panic(fmt.Sprintf("block %s has no connectable input named %s", bb.Block, inputName))
	}
	if child.Block.Output == nil {
		panic(fmt.Sprintf("block %s has no output connection", child.Block))
	}
	if err := in.Conn.Connect(child.Block.Output); err != nil {
		panic(err)
	}
	return bb
}

// Slot connects child's previous connection under the named statement input
// and returns the parent builder.
func (bb *BlockBuilder) Slot(inputName string, child *BlockBuilder) *BlockBuilder {
	in := bb.Block.InputByName(inputName)
	if in == nil || in.Conn == nil || in.Kind != InputStatement {
		panic(fmt.Sprintf("block %s has no statement input named %s", bb.Block, inputName))
	}
	if child.Block.Previous == nil {
		panic(fmt.Sprintf("block %s has no previous connection", child.Block))
	}
	if err := in.Conn.Connect(child.Block.Previous); err != nil {
		panic(err)
	}
	return bb
}
