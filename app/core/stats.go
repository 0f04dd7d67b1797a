package core

// WorkspaceStats walks a block subtree and registers everything it finds:
// connections with the ConnectionManager, variable fields with the variable
// registry, and procedure blocks with the ProcedureManager. The external
// load path must run this on every root after deserialization so the live
// indexes match the graph exactly.
type WorkspaceStats struct {
	connections *ConnectionManager
	variables   *VariableNameManager
	procedures  *ProcedureManager
}

func NewWorkspaceStats(connections *ConnectionManager, variables *VariableNameManager, procedures *ProcedureManager) *WorkspaceStats {
	return &WorkspaceStats{
		connections: connections,
		variables:   variables,
		procedures:  procedures,
	}
}

// CollectStats indexes the block. Value-input subtrees are always fully
// traversed, since they are part of the block's own shape; the chain hanging
// off the next connection is only followed when recursive is set. The
// previous connection is registered but never followed, because it points at
// the parent, not into the subtree.
func (s *WorkspaceStats) CollectStats(b *Block, recursive bool) error {
	if IsProcedureDefinition(b) {
		if _, err := s.procedures.AddDefinitionUniquely(b); err != nil {
			return err
		}
	} else if IsProcedureReference(b) {
		if err := s.procedures.AddReference(b); err != nil {
			return err
		}
	}

	for _, in := range b.Inputs {
		for _, f := range in.Fields {
			if f.Kind == FieldVariable && f.Value != "" {
				s.variables.AddVariable(f.Value, f)
			}
		}
		if in.Conn == nil {
			continue
		}
		s.connections.Add(in.Conn)
		if child := in.Conn.TargetBlock(); child != nil {
			if err := s.CollectStats(child, true); err != nil {
				return err
			}
		}
	}

	if b.Previous != nil {
		s.connections.Add(b.Previous)
	}
	if b.Output != nil {
		s.connections.Add(b.Output)
	}
	if b.Next != nil {
		s.connections.Add(b.Next)
		if recursive {
			if next := b.NextBlock(); next != nil {
				if err := s.CollectStats(next, true); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// RemoveStats is the inverse of CollectStats for the connection index: it
// pulls the subtree's connections out so a deleted tree stops matching.
func (s *WorkspaceStats) RemoveStats(b *Block, recursive bool) {
	for _, in := range b.Inputs {
		if in.Conn == nil {
			continue
		}
		s.connections.Remove(in.Conn)
		if child := in.Conn.TargetBlock(); child != nil {
			s.RemoveStats(child, true)
		}
	}
	if b.Previous != nil {
		s.connections.Remove(b.Previous)
	}
	if b.Output != nil {
		s.connections.Remove(b.Output)
	}
	if b.Next != nil {
		s.connections.Remove(b.Next)
		if recursive {
			if next := b.NextBlock(); next != nil {
				s.RemoveStats(next, true)
			}
		}
	}
}
