// Package blocks holds the standard block library. Each block type
// registers its definition with the core registry from init, the same way
// node actions register themselves in a node-graph editor.
package blocks

import (
	"github.com/bvisness/blockflow/app/core"
)

// Compatibility tags used on connection checks. A connection with no tags
// accepts anything.
const (
	CheckNumber  = "Number"
	CheckString  = "String"
	CheckBoolean = "Boolean"
)

func init() {
	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:        "controls_if",
		HasPrevious: true,
		HasNext:     true,
		Inputs: []core.InputDefinition{
			{Name: "IF0", Kind: core.InputValue, Checks: []string{CheckBoolean}},
			{Name: "DO0", Kind: core.InputStatement},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:        "controls_repeat_ext",
		HasPrevious: true,
		HasNext:     true,
		Inputs: []core.InputDefinition{
			{Name: "TIMES", Kind: core.InputValue, Checks: []string{CheckNumber}},
			{Name: "DO", Kind: core.InputStatement},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:      "logic_compare",
		HasOutput: true, OutputChecks: []string{CheckBoolean},
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: "OP", Kind: core.FieldDropdown, Default: "EQ"},
			}},
			{Name: "A", Kind: core.InputValue},
			{Name: "B", Kind: core.InputValue},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:      "logic_boolean",
		HasOutput: true, OutputChecks: []string{CheckBoolean},
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: "BOOL", Kind: core.FieldCheckbox, Default: "TRUE"},
			}},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:      "text",
		HasOutput: true, OutputChecks: []string{CheckString},
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: "TEXT", Kind: core.FieldText},
			}},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:      "text_join",
		HasOutput: true, OutputChecks: []string{CheckString},
		Inputs: []core.InputDefinition{
			{Name: "ADD0", Kind: core.InputValue},
			{Name: "ADD1", Kind: core.InputValue},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:        "text_print",
		HasPrevious: true,
		HasNext:     true,
		Inputs: []core.InputDefinition{
			{Name: "TEXT", Kind: core.InputValue},
		},
	})
}

// New builds a block of the given registered type.
func New(typ string) (*core.Block, error) {
	def, ok := core.GetBlockDefinition(typ)
	if !ok {
		return nil, &UnknownTypeError{Type: typ}
	}
	return def.Build()
}

type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return "unknown block type: " + e.Type
}

// NewShadow builds a shadow (placeholder) block of the given type.
func NewShadow(typ string) (*core.Block, error) {
	b, err := New(typ)
	if err != nil {
		return nil, err
	}
	b.MarkShadow()
	return b, nil
}
