package ui

import (
	"testing"

	"nixel/internal/driver"
)

func TestStatusLabel(t *testing.T) {
	cases := []struct {
		stage  driver.Stage
		status driver.Status
		want   string
	}{
		{driver.StageEval, driver.StatusQueued, "queued"},
		{driver.StageEval, driver.StatusWorking, "evaluating"},
		{driver.StageFormat, driver.StatusWorking, "formatting"},
		{driver.StageEval, driver.StatusDone, "done"},
		{driver.StageEval, driver.StatusError, "error"},
	}
	for _, tc := range cases {
		if got := statusLabel(tc.stage, tc.status); got != tc.want {
			t.Errorf("statusLabel(%v, %v) = %q, want %q", tc.stage, tc.status, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 20); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("a/very/long/path/to/file.nix", 10); len(got) > 10 {
		t.Errorf("truncate did not shorten: %q", got)
	}
}

func TestApplyEventUpdatesItem(t *testing.T) {
	events := make(chan driver.Event)
	model := NewProgressModel("check", []string{"a.nix", "b.nix"}, events).(*progressModel)

	model.applyEvent(driver.Event{File: "a.nix", Stage: driver.StageEval, Status: driver.StatusDone})
	if model.items[0].status != "done" {
		t.Errorf("item status = %q, want done", model.items[0].status)
	}
	if model.items[1].status != "queued" {
		t.Errorf("untouched item status = %q, want queued", model.items[1].status)
	}
}
