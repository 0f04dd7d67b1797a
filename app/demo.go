package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bvisness/blockflow/app/blocks"
	"github.com/bvisness/blockflow/app/core"
	"github.com/bvisness/blockflow/util"
)

// Demo builds a small workspace, round-trips it through the blocks file
// format, and prints a summary. Useful as a smoke test of the whole pipeline
// without a window.
func Demo() error {
	ws := NewWorkspace(DefaultConfig())

	def := util.Must1(blocks.NewProcedureDefinition("greet", []string{"who"}, false))
	body := core.NewBlock("text_print").
		Plug("TEXT", core.NewBlock("text").WithField("TEXT", "hello"))
	if err := def.InputByName("STACK").Conn.Connect(body.Block.Previous); err != nil {
		return err
	}
	if err := ws.AddRootBlock(def, true); err != nil {
		return err
	}

	call := util.Must1(blocks.NewProcedureCall(*def.Procedure))
	core.Wrap(call).At(0, 200).
		Plug(core.ArgInputName(0), core.NewBlock("text").WithField("TEXT", "world"))
	if err := ws.AddRootBlock(call, true); err != nil {
		return err
	}

	repeat := core.NewBlock("controls_repeat_ext").At(0, 300).
		Plug("TIMES", core.Wrap(util.Must1(blocks.NewShadow("math_number")))).
		Slot("DO", core.NewBlock("text_print"))
	if err := ws.AddRootBlock(repeat.Block, true); err != nil {
		return err
	}

	path := filepath.Join(os.TempDir(), "blockflow-demo.blocks")
	if err := core.SaveBlocksFile(path, ws.Roots()); err != nil {
		return err
	}
	roots, err := core.LoadBlocksFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("demo workspace: %d roots, %d procedures, reloaded %d roots from %s\n",
		len(ws.Roots()), len(ws.Procedures.DefinedNames()), len(roots), path)

	xml, err := ws.ExportXML()
	if err != nil {
		return err
	}
	fmt.Println(string(xml))
	return nil
}
