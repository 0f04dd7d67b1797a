package core

import (
	"fmt"
	"os"
)

const blocksFileVersion = 1

// SerializeBlocks encodes the given root blocks and their connected
// subtrees (value trees and next chains) into the versioned binary format.
func SerializeBlocks(roots []*Block) ([]byte, error) {
	s := NewEncoder(blocksFileVersion)

	rootCount := len(roots)
	SInt(s, &rootCount)
	for _, b := range roots {
		serializeBlockTree(s, b)
	}

	if !s.Ok() {
		return nil, fmt.Errorf("serialization failed: %v", s.Errs)
	}
	return s.Bytes(), nil
}

// DeserializeBlocks rebuilds root blocks from data. Every block is
// reconstructed from its registered definition so that all connections
// exist, then overlaid with the saved state. The caller must reindex the
// returned roots through WorkspaceStats.
func DeserializeBlocks(data []byte) ([]*Block, error) {
	s := NewDecoder(data)

	var rootCount int
	if !SInt(s, &rootCount) || rootCount < 0 {
		return nil, fmt.Errorf("failed to read root count: %v", s.Errs)
	}

	roots := make([]*Block, 0, rootCount)
	for range rootCount {
		b, err := deserializeBlockTree(s)
		if err != nil {
			return nil, err
		}
		roots = append(roots, b)
	}
	return roots, nil
}

func SaveBlocksFile(path string, roots []*Block) error {
	data, err := SerializeBlocks(roots)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func LoadBlocksFile(path string) ([]*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DeserializeBlocks(data)
}

func serializeBlockTree(s *Serializer, b *Block) bool {
	SStr(s, &b.Type)
	SStr(s, &b.ID)
	SV2(s, &b.Pos)
	SBool(s, &b.Shadow)
	SBool(s, &b.Collapsed)
	SBool(s, &b.Disabled)

	hasProc := b.Procedure != nil
	SBool(s, &hasProc)
	if hasProc {
		SStr(s, &b.Procedure.Name)
		SStrSlice(s, &b.Procedure.Arguments)
		SBool(s, &b.Procedure.HasReturn)
	}

	// Field values, keyed by name so the definition stays the source of
	// truth for everything else about the field.
	var fieldCount int
	for _, in := range b.Inputs {
		fieldCount += len(in.Fields)
	}
	SInt(s, &fieldCount)
	for _, in := range b.Inputs {
		for _, f := range in.Fields {
			SStr(s, &f.Name)
			SStr(s, &f.Value)
		}
	}

	// Input children, keyed by input name. Argument inputs on call blocks
	// are rebuilt from ProcedureInfo on load, so their names round-trip.
	connected := 0
	for _, in := range b.Inputs {
		if in.ConnectedBlock() != nil {
			connected++
		}
	}
	SInt(s, &connected)
	for _, in := range b.Inputs {
		child := in.ConnectedBlock()
		if child == nil {
			continue
		}
		SStr(s, &in.Name)
		serializeBlockTree(s, child)
	}

	hasNext := b.NextBlock() != nil
	SBool(s, &hasNext)
	if hasNext {
		serializeBlockTree(s, b.NextBlock())
	}

	return s.Ok()
}

func deserializeBlockTree(s *Serializer) (*Block, error) {
	var typ string
	if !SStr(s, &typ) {
		return nil, fmt.Errorf("failed to read block type: %v", s.Errs)
	}

	def, ok := GetBlockDefinition(typ)
	if !ok {
		return nil, fmt.Errorf("cannot load block of unknown type %q", typ)
	}
	b, err := def.Build()
	if err != nil {
		return nil, err
	}

	SStr(s, &b.ID)
	SV2(s, &b.Pos)
	var shadow bool
	SBool(s, &shadow)
	SBool(s, &b.Collapsed)
	SBool(s, &b.Disabled)

	var hasProc bool
	SBool(s, &hasProc)
	if hasProc {
		info := &ProcedureInfo{}
		SStr(s, &info.Name)
		SStrSlice(s, &info.Arguments)
		SBool(s, &info.HasReturn)
		b.Procedure = info
		if IsProcedureReference(b) {
			AttachArgInputs(b, info)
		}
	}

	var fieldCount int
	SInt(s, &fieldCount)
	for range fieldCount {
		var name, value string
		SStr(s, &name)
		SStr(s, &value)
		if !s.Ok() {
			return nil, fmt.Errorf("failed to read field: %v", s.Errs)
		}
		if f := b.FieldByName(name); f != nil {
			f.Value = value
		}
	}

	var connected int
	SInt(s, &connected)
	for range connected {
		var inputName string
		SStr(s, &inputName)
		if !s.Ok() {
			return nil, fmt.Errorf("failed to read input name: %v", s.Errs)
		}
		child, err := deserializeBlockTree(s)
		if err != nil {
			return nil, err
		}
		in := b.InputByName(inputName)
		if in == nil || in.Conn == nil {
			return nil, fmt.Errorf("block type %q has no connectable input %q", typ, inputName)
		}
		childEnd := child.Output
		if in.Kind == InputStatement {
			childEnd = child.Previous
		}
		if childEnd == nil {
			return nil, fmt.Errorf("block %q cannot plug into input %q", child.Type, inputName)
		}
		if err := in.Conn.Connect(childEnd); err != nil {
			return nil, err
		}
	}

	var hasNext bool
	SBool(s, &hasNext)
	if hasNext {
		next, err := deserializeBlockTree(s)
		if err != nil {
			return nil, err
		}
		if b.Next == nil || next.Previous == nil {
			return nil, fmt.Errorf("saved next chain does not fit block type %q", typ)
		}
		if err := b.Next.Connect(next.Previous); err != nil {
			return nil, err
		}
	}

	if shadow {
		b.MarkShadow()
	}
	if !s.Ok() {
		return nil, fmt.Errorf("deserialization failed: %v", s.Errs)
	}
	return b, nil
}
