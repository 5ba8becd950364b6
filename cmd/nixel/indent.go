package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nixel/internal/config"
	"nixel/internal/indent"
	"nixel/internal/source"
	"nixel/internal/syntax"
)

var indentCmd = &cobra.Command{
	Use:   "indent [flags] <file.nix>",
	Short: "Compute heuristic indentation for a Nix source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndent,
}

func init() {
	indentCmd.Flags().Uint32("line", 0, "1-based line to compute (prints the target column)")
	indentCmd.Flags().Bool("all", false, "reindent every line and print the result")
	indentCmd.Flags().Int("tab-width", 0, "indentation unit (0 = from nixel.toml)")
}

func runIndent(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	line, err := cmd.Flags().GetUint32("line")
	if err != nil {
		return err
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	tabWidth, err := cmd.Flags().GetInt("tab-width")
	if err != nil {
		return err
	}
	if (line == 0) == !all {
		return fmt.Errorf("indent: exactly one of --line or --all is required")
	}

	cfg, err := config.LoadNearest(filepath.Dir(args[0]))
	if err != nil {
		return err
	}
	if tabWidth <= 0 {
		tabWidth = cfg.TabWidth
	}

	fs := source.NewFileSet()
	id, err := fs.Load(args[0])
	if err != nil {
		return err
	}
	f := fs.Get(id)
	cls := syntax.NewClassifier(f)
	engine := indent.NewEngine(tabWidth)
	snap := indent.NewSnapshot(cls)

	if line > 0 {
		if line > f.LineCount() {
			return fmt.Errorf("indent: line %d past end of file (%d lines)", line, f.LineCount())
		}
		col, ok := engine.ComputeIndentCached(snap, line)
		if !ok {
			// Inside a string or comment: the line is left untouched.
			fmt.Fprintln(cmd.OutOrStdout(), "-")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), col)
		return nil
	}

	// Target columns are computed against the original buffer, then applied
	// in one pass.
	type plan struct {
		col int
		ok  bool
	}
	plans := make([]plan, f.LineCount())
	for n := uint32(1); n <= f.LineCount(); n++ {
		col, ok := engine.ComputeIndentCached(snap, n)
		plans[n-1] = plan{col: col, ok: ok}
	}
	out := cmd.OutOrStdout()
	for n := uint32(1); n <= f.LineCount(); n++ {
		text := f.Line(n)
		p := plans[n-1]
		if !p.ok || strings.TrimSpace(text) == "" {
			fmt.Fprintln(out, text)
			continue
		}
		fmt.Fprintln(out, strings.Repeat(" ", p.col)+strings.TrimLeft(text, " \t"))
	}
	return nil
}
