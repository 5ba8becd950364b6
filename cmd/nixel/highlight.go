package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nixel/internal/highlight"
	"nixel/internal/source"
)

var highlightCmd = &cobra.Command{
	Use:   "highlight [flags] <file.nix>",
	Short: "Print a file with lexical highlighting applied",
	Args:  cobra.ExactArgs(1),
	RunE:  runHighlight,
}

func init() {
	highlightCmd.Flags().String("format", "ansi", "output format (ansi|json)")
}

var categoryColors = map[highlight.Category]*color.Color{
	highlight.CatKeyword:    color.New(color.FgMagenta),
	highlight.CatBuiltin:    color.New(color.FgBlue),
	highlight.CatDanger:     color.New(color.FgRed, color.Bold),
	highlight.CatURL:        color.New(color.FgCyan, color.Underline),
	highlight.CatPath:       color.New(color.FgGreen),
	highlight.CatSearchPath: color.New(color.FgGreen, color.Bold),
	highlight.CatAssign:     color.New(color.FgYellow),
}

func runHighlight(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	id, err := fs.Load(args[0])
	if err != nil {
		return err
	}
	f := fs.Get(id)

	switch format {
	case "ansi":
		return renderHighlightANSI(cmd, f)
	case "json":
		return renderHighlightJSON(cmd, f)
	default:
		return fmt.Errorf("highlight: unsupported output format %q", format)
	}
}

func renderHighlightANSI(cmd *cobra.Command, f *source.File) error {
	out := cmd.OutOrStdout()
	for n := uint32(1); n <= f.LineCount(); n++ {
		line := f.Line(n)
		spans := highlight.ScanLine(line)
		pos := 0
		for _, span := range spans {
			if span.Start > pos {
				fmt.Fprint(out, line[pos:span.Start])
			}
			text := line[span.Start:span.End]
			if c, ok := categoryColors[span.Category]; ok {
				text = c.Sprint(text)
			}
			fmt.Fprint(out, text)
			pos = span.End
		}
		if pos < len(line) {
			fmt.Fprint(out, line[pos:])
		}
		fmt.Fprintln(out)
	}
	return nil
}

func renderHighlightJSON(cmd *cobra.Command, f *source.File) error {
	type jsonSpan struct {
		Line     uint32 `json:"line"`
		Start    int    `json:"start"`
		End      int    `json:"end"`
		Category string `json:"category"`
	}

	var payload []jsonSpan
	for n := uint32(1); n <= f.LineCount(); n++ {
		for _, span := range highlight.ScanLine(f.Line(n)) {
			payload = append(payload, jsonSpan{
				Line:     n,
				Start:    span.Start,
				End:      span.End,
				Category: span.Category.String(),
			})
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
