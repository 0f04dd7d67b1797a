package blocks

import (
	"slices"

	"github.com/bvisness/blockflow/app/core"
)

func init() {
	core.RegisterBlockDefinition(core.BlockDefinition{
		Type: "procedures_defnoreturn",
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: core.ProcedureNameField, Kind: core.FieldText},
			}},
			{Name: "STACK", Kind: core.InputStatement},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type: "procedures_defreturn",
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: core.ProcedureNameField, Kind: core.FieldText},
			}},
			{Name: "STACK", Kind: core.InputStatement},
			{Name: "RETURN", Kind: core.InputValue},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:        "procedures_callnoreturn",
		HasPrevious: true,
		HasNext:     true,
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: core.ProcedureNameField, Kind: core.FieldText},
			}},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:      "procedures_callreturn",
		HasOutput: true,
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: core.ProcedureNameField, Kind: core.FieldText},
			}},
		},
	})
}

// NewProcedureDefinition builds the authoring block for a procedure.
func NewProcedureDefinition(name string, args []string, hasReturn bool) (*core.Block, error) {
	typ := "procedures_defnoreturn"
	if hasReturn {
		typ = "procedures_defreturn"
	}
	b, err := New(typ)
	if err != nil {
		return nil, err
	}
	b.Procedure = &core.ProcedureInfo{
		Name:      name,
		Arguments: slices.Clone(args),
		HasReturn: hasReturn,
	}
	b.FieldByName(core.ProcedureNameField).Value = name
	return b, nil
}

// NewProcedureCall builds a call-site block for the given procedure, with
// one argument input per argument.
func NewProcedureCall(info core.ProcedureInfo) (*core.Block, error) {
	typ := "procedures_callnoreturn"
	if info.HasReturn {
		typ = "procedures_callreturn"
	}
	b, err := New(typ)
	if err != nil {
		return nil, err
	}
	b.Procedure = &core.ProcedureInfo{
		Name:      info.Name,
		Arguments: slices.Clone(info.Arguments),
		HasReturn: info.HasReturn,
	}
	b.FieldByName(core.ProcedureNameField).Value = info.Name
	core.AttachArgInputs(b, b.Procedure)
	return b, nil
}
