package blocks

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/bvisness/blockflow/app/core"
)

func init() {
	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:      "math_number",
		HasOutput: true, OutputChecks: []string{CheckNumber},
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: "NUM", Kind: core.FieldNumber, Default: "0"},
			}},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:      "math_arithmetic",
		HasOutput: true, OutputChecks: []string{CheckNumber},
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: "OP", Kind: core.FieldDropdown, Default: "ADD"},
			}},
			{Name: "A", Kind: core.InputValue, Checks: []string{CheckNumber}},
			{Name: "B", Kind: core.InputValue, Checks: []string{CheckNumber}},
		},
	})

	core.RegisterBlockDefinition(core.BlockDefinition{
		Type:      "math_expression",
		HasOutput: true, OutputChecks: []string{CheckNumber},
		Inputs: []core.InputDefinition{
			{Kind: core.InputDummy, Fields: []core.FieldDefinition{
				{Name: "EXPR", Kind: core.FieldText, Default: "0"},
			}},
		},
	})
}

// ValidateExpression checks the EXPR field of a math_expression block by
// compiling it. Variables known to the workspace are declared to the
// compiler so references to them pass.
func ValidateExpression(b *core.Block, variables []string) error {
	f := b.FieldByName("EXPR")
	if f == nil {
		return fmt.Errorf("block %s has no EXPR field", b)
	}

	env := make(map[string]any, len(variables))
	for _, v := range variables {
		env[v] = float64(0)
	}
	if _, err := expr.Compile(f.Value, expr.Env(env)); err != nil {
		return fmt.Errorf("bad expression %q: %w", f.Value, err)
	}
	return nil
}
