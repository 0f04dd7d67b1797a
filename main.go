package main

import (
	"fmt"
	"os"

	"github.com/bvisness/blockflow/app"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "run" {
		if len(os.Args) < 3 {
			fmt.Println("Usage: blockflow run <file.blocks> [config.yaml]")
			return
		}
		cfgPath := "blockflow.yaml"
		if len(os.Args) > 3 {
			cfgPath = os.Args[3]
		}
		app.HeadlessRun(cfgPath, os.Args[2])
		return
	}
	if err := app.Demo(); err != nil {
		fmt.Fprintf(os.Stderr, "demo failed: %v\n", err)
		os.Exit(1)
	}
}
