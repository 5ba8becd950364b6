package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nixel/internal/config"
	"nixel/internal/evaluator"
	"nixel/internal/format"
	"nixel/internal/lsp"
	"nixel/internal/repl"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the nixel language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadNearest(".")
	if err != nil {
		return err
	}

	mgr := repl.NewManager(repl.Config{
		Command: cfg.Repl.Command,
		Args:    cfg.Repl.Args,
		Timeout: cfg.Repl.Timeout(),
	})
	defer func() {
		if err := mgr.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "lsp: close repl: %v\n", err)
		}
	}()

	eval := evaluator.New(cfg.Evaluator.Command, cfg.Evaluator.Args)
	runner := format.New(cfg.Formatter.Command, cfg.Formatter.Args)

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		MaxDiagnostics: cfg.MaxDiagnostics,
		TabWidth:       cfg.TabWidth,
		SearchPath:     cfg.Roots(),
		Evaluate:       eval.Check,
		Complete:       mgr.Complete,
		Format:         runner.Run,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
