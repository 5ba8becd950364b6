package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"nixel/internal/config"
	"nixel/internal/nav"
	"nixel/internal/source"
)

var navCmd = &cobra.Command{
	Use:   "nav [flags] <file.nix>",
	Short: "Resolve the path token under a position to a file on disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runNav,
}

func init() {
	navCmd.Flags().Uint32("line", 1, "1-based line of the position")
	navCmd.Flags().Int("col", 0, "0-based byte column of the position")
}

func runNav(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	line, err := cmd.Flags().GetUint32("line")
	if err != nil {
		return err
	}
	col, err := cmd.Flags().GetInt("col")
	if err != nil {
		return err
	}

	cfg, err := config.LoadNearest(filepath.Dir(args[0]))
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	id, err := fs.Load(args[0])
	if err != nil {
		return err
	}
	f := fs.Get(id)
	if line == 0 || line > f.LineCount() {
		return fmt.Errorf("nav: line %d past end of file (%d lines)", line, f.LineCount())
	}

	target, ok := nav.TargetAt(f.Line(line), col)
	if !ok {
		return fmt.Errorf("nav: no path token at %s:%d:%d", args[0], line, col)
	}
	resolved, ok := target.Resolve(filepath.Dir(args[0]), cfg.Roots())
	if !ok {
		return fmt.Errorf("nav: %q does not resolve to an existing file", target.Raw)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resolved)
	return nil
}
