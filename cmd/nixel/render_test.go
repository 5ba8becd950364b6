package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"nixel/internal/diag"
)

func TestRenderDiagnosticPlain(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	d := diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.EvalError,
		Message:  "undefined variable 'foo'",
		File:     "/tmp/a.nix",
		Line:     3,
		Col:      5,
	}
	got := renderDiagnostic(d)
	want := "/tmp/a.nix:3:5: ERROR NIX1001: undefined variable 'foo'"
	if got != want {
		t.Errorf("renderDiagnostic = %q, want %q", got, want)
	}
}

func TestRenderDiagnosticAnonymousInput(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	d := diag.Diagnostic{Severity: diag.SevWarning, Code: diag.EvalError, Message: "m", Line: 1, Col: 1}
	got := renderDiagnostic(d)
	if !strings.HasPrefix(got, "no file:1:1:") {
		t.Errorf("anonymous input should render as %q, got %q", "no file", got)
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "1.2.3", GitCommit: "abc123"}
	opts := versionOptions{format: "json", showHash: true}
	if err := renderVersionJSON(&buf, info, opts); err != nil {
		t.Fatalf("renderVersionJSON: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Tool != "nixel" || payload.Version != "1.2.3" || payload.GitCommit != "abc123" {
		t.Errorf("unexpected payload %+v", payload)
	}
	if payload.BuildDate != "" {
		t.Errorf("build date should be omitted, got %q", payload.BuildDate)
	}
}

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		value   string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"auto", uiModeAuto, false},
		{"ON", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.value)
		if tc.wantErr {
			if err == nil {
				t.Errorf("readUIMode(%q): expected error", tc.value)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("readUIMode(%q) = (%v, %v), want %v", tc.value, got, err, tc.want)
		}
	}
}
