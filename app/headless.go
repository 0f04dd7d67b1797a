package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bvisness/blockflow/app/blocks"
	"github.com/bvisness/blockflow/app/core"
)

// HeadlessRun loads a workspace file, reindexes it, reports what it found,
// and then watches the toolbox for palette changes until interrupted.
func HeadlessRun(cfgPath, workspacePath string) {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		log.Error("bad config", "err", err)
		os.Exit(1)
	}

	ws := NewWorkspace(cfg)
	roots, err := core.LoadBlocksFile(workspacePath)
	if err != nil {
		log.Error("failed to load workspace", "path", workspacePath, "err", err)
		os.Exit(1)
	}
	for _, b := range roots {
		if err := ws.AddRootBlock(b, true); err != nil {
			log.Error("failed to index block", "block", b.String(), "err", err)
			os.Exit(1)
		}
	}
	log.Info("workspace loaded",
		"path", workspacePath,
		"roots", len(ws.Roots()),
		"variables", ws.Variables.Size(),
		"procedures", len(ws.Procedures.DefinedNames()),
	)

	// Formula blocks are validated up front so a broken workspace is
	// reported before anyone starts editing it.
	vars := ws.Variables.UsedNames()
	for _, root := range ws.Roots() {
		forEachBlock(root, func(b *core.Block) {
			if b.Type != "math_expression" {
				return
			}
			if err := blocks.ValidateExpression(b, vars); err != nil {
				log.Warn("invalid expression", "block", b.String(), "err", err)
			}
		})
	}

	if _, err := LoadToolbox(cfg.ToolboxPath); err != nil {
		log.Warn("no usable toolbox", "path", cfg.ToolboxPath, "err", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	err = WatchToolbox(ctx, cfg.ToolboxPath, log, func(tb *Toolbox) {
		log.Info("palette updated", "categories", len(tb.Categories))
	})
	if err != nil && ctx.Err() == nil {
		log.Error("toolbox watch failed", "err", err)
	}
	fmt.Println("Shutdown complete.")
}

// forEachBlock visits the block and every block in its subtree.
func forEachBlock(b *core.Block, visit func(*core.Block)) {
	visit(b)
	for _, in := range b.Inputs {
		if child := in.ConnectedBlock(); child != nil {
			forEachBlock(child, visit)
		}
	}
	if next := b.NextBlock(); next != nil {
		forEachBlock(next, visit)
	}
}
