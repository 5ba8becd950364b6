package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nixel/internal/config"
	"nixel/internal/repl"
)

var completeCmd = &cobra.Command{
	Use:   "complete [flags] <file.nix>",
	Short: "Ask the Nix REPL for completions of a prefix within a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func init() {
	completeCmd.Flags().String("prefix", "", "partial token to complete (required)")
	_ = completeCmd.MarkFlagRequired("prefix")
}

func runComplete(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	prefix, err := cmd.Flags().GetString("prefix")
	if err != nil {
		return err
	}

	cfg, err := config.LoadNearest(filepath.Dir(args[0]))
	if err != nil {
		return err
	}
	contents, err := os.ReadFile(args[0])
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
			fmt.Fprintf(os.Stderr, "complete: close repl: %v\n", err)
		}
	}()

	candidates, err := mgr.Complete(cmd.Context(), repl.Buffer{Name: args[0], Contents: contents}, prefix)
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, cand := range candidates {
		fmt.Fprintln(out, cand)
	}
	return nil
}
