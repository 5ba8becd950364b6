package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nixel/internal/source"
	"nixel/internal/syntax"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file.nix>",
	Short: "Print multiline-string and antiquote tags for a Nix source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

var (
	classifyDelimColor = color.New(color.FgGreen)
	classifyHoleColor  = color.New(color.FgCyan)
)

func runClassify(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	fs := source.NewFileSet()
	id, err := fs.Load(args[0])
	if err != nil {
		return err
	}
	f := fs.Get(id)
	cls := syntax.NewClassifier(f)

	out := cmd.OutOrStdout()
	for _, tag := range cls.Tags() {
		lc := f.Pos(tag.Span.Start)
		kind := tag.Kind.String()
		switch tag.Kind {
		case syntax.TagStringDelim:
			kind = classifyDelimColor.Sprint(kind)
		case syntax.TagAntiquoteOpen, syntax.TagAntiquoteClose:
			kind = classifyHoleColor.Sprint(kind)
		}
		fmt.Fprintf(out, "%s:%d:%d: %s [%d,%d)\n", f.Path, lc.Line, lc.Col, kind, tag.Span.Start, tag.Span.End)
	}
	return nil
}
