package blocks

import (
	"github.com/bvisness/blockflow/app/core"
)

func init() {
	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:      "variables_get",
		HasOutput: true,
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: "VAR", Kind: core.FieldVariable},
			}},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:        "variables_set",
		HasPrevious: true,
		HasNext:     true,
		Inputs: []core.InputDefinition{
			{Name: "VALUE", Kind: core.InputValue, Fields: []core.FieldDefinition{
				{Name: "VAR", Kind: core.FieldVariable},
			}},
		},
	})
}

// NewVariableGet builds a variables_get block referencing name.
func NewVariableGet(name string) (*core.Block, error) {
	b, err := New("variables_get")
	if err != nil {
		return nil, err
	}
	b.FieldByName("VAR").Value = name
	return b, nil
}

// NewVariableSet builds a variables_set block assigning to name.
func NewVariableSet(name string) (*core.Block, error) {
	b, err := New("variables_set")
	if err != nil {
		return nil, err
	}
	b.FieldByName("VAR").Value = name
	return b, nil
}
