package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nixel/internal/config"
	"nixel/internal/diag"
	"nixel/internal/driver"
	"nixel/internal/evaluator"
	"nixel/internal/observ"
	"nixel/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <path> [path...]",
	Short: "Evaluate Nix files and report diagnostics",
	Long:  `Run the external evaluator over files or directories (recursively collecting *.nix) and report its findings`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("disk-cache", false, "cache findings by content hash under the user cache directory")
	checkCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("check: unsupported output format %q", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	useCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	cfg, err := config.LoadNearest(filepath.Dir(args[0]))
	if err != nil {
		return err
	}
	if maxDiagnostics <= 0 {
		maxDiagnostics = cfg.MaxDiagnostics
	}

	var cache *driver.DiskCache
	if useCache {
		cache, err = driver.OpenDiskCache("nixel")
		if err != nil {
			return fmt.Errorf("check: open disk cache: %w", err)
		}
	}

	opts := driver.CheckOptions{
		Evaluator:      evaluator.New(cfg.Evaluator.Command, cfg.Evaluator.Args),
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		Cache:          cache,
	}

	timer := observ.NewTimer()
	phase := timer.Begin("check")

	var results []driver.CheckResult
	if shouldUseTUI(mode) && format == "pretty" {
		results, err = runCheckWithUI(cmd.Context(), args, opts)
	} else {
		results, err = driver.CheckPaths(cmd.Context(), args, opts)
	}
	timer.End(phase, fmt.Sprintf("%d files", len(results)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: %v\n", err)
		return err
	}

	var rendered error
	switch format {
	case "json":
		rendered = renderCheckJSON(cmd, results)
	default:
		rendered = renderCheckPretty(cmd, results, quiet)
	}
	if rendered != nil {
		return rendered
	}

	if showTimings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	problems := 0
	for _, res := range results {
		if res.Bag.HasErrors() || res.Err != nil {
			problems++
		}
	}
	if problems > 0 {
		err := fmt.Errorf("check: problems in %d of %d files", problems, len(results))
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

func runCheckWithUI(ctx context.Context, paths []string, opts driver.CheckOptions) ([]driver.CheckResult, error) {
	files, err := driver.CollectFiles(ctx, paths)
	if err != nil {
		return nil, err
	}

	type checkOutcome struct {
		results []driver.CheckResult
		err     error
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckPaths(ctx, paths, optsCopy)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("check", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

func renderCheckPretty(cmd *cobra.Command, results []driver.CheckResult, quiet bool) error {
	out := cmd.OutOrStdout()
	clean := 0
	for _, res := range results {
		if res.Bag.Len() == 0 && res.Err == nil {
			clean++
			continue
		}
		for _, d := range res.Bag.Items() {
			fmt.Fprintln(out, renderDiagnostic(d))
		}
	}
	if !quiet && clean > 0 {
		fmt.Fprintf(out, "%d file(s) clean\n", clean)
	}
	return nil
}

func renderCheckJSON(cmd *cobra.Command, results []driver.CheckResult) error {
	type jsonDiag struct {
		File     string `json:"file"`
		Line     uint32 `json:"line"`
		Col      uint32 `json:"col"`
		Severity string `json:"severity"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	}
	type jsonResult struct {
		Path        string     `json:"path"`
		Cached      bool       `json:"cached"`
		Error       string     `json:"error,omitempty"`
		Diagnostics []jsonDiag `json:"diagnostics"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{Path: res.Path, Cached: res.Cached, Diagnostics: []jsonDiag{}}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		for _, d := range res.Bag.Items() {
			jr.Diagnostics = append(jr.Diagnostics, jsonDiag{
				File:     d.FileOrNone(),
				Line:     d.Line,
				Col:      d.Col,
				Severity: d.Severity.String(),
				Code:     d.Code.String(),
				Message:  d.Message,
			})
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

var (
	sevErrorColor   = color.New(color.FgRed, color.Bold)
	sevWarningColor = color.New(color.FgYellow)
	sevInfoColor    = color.New(color.FgCyan)
	diagCodeColor   = color.New(color.Faint)
)

func renderDiagnostic(d diag.Diagnostic) string {
	sev := d.Severity.String()
	switch d.Severity {
	case diag.SevError:
		sev = sevErrorColor.Sprint(sev)
	case diag.SevWarning:
		sev = sevWarningColor.Sprint(sev)
	default:
		sev = sevInfoColor.Sprint(sev)
	}
	return fmt.Sprintf("%s:%d:%d: %s %s: %s", d.FileOrNone(), d.Line, d.Col, sev, diagCodeColor.Sprint(d.Code.String()), d.Message)
}
