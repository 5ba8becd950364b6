package diag

import (
	"testing"
)

func TestBagCap(t *testing.T) {
	b := NewBag(2)

	if !b.Add(Diagnostic{Severity: SevError, Message: "one"}) {
		t.Error("Expected first Add to succeed")
	}
	if !b.Add(Diagnostic{Severity: SevWarning, Message: "two"}) {
		t.Error("Expected second Add to succeed")
	}
	if b.Add(Diagnostic{Severity: SevError, Message: "three"}) {
		t.Error("Expected Add past the cap to be dropped")
	}
	if b.Len() != 2 {
		t.Errorf("Expected 2 items, got %d", b.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{Severity: SevWarning, Message: "w"})
	if b.HasErrors() {
		t.Error("Expected no errors with only a warning")
	}
	b.Add(Diagnostic{Severity: SevError, Message: "e"})
	if !b.HasErrors() {
		t.Error("Expected HasErrors after adding an error")
	}
}

func TestDiagnosticLocation(t *testing.T) {
	d := Diagnostic{Message: "boom", File: "/tmp/f.nix", Line: 3, Col: 5}
	if got := d.Location(); got != "/tmp/f.nix:3:5" {
		t.Errorf("Expected /tmp/f.nix:3:5, got %q", got)
	}

	anon := Diagnostic{Message: "boom", Line: 1, Col: 1}
	if got := anon.Location(); got != "no file:1:1" {
		t.Errorf("Expected anonymous location, got %q", got)
	}
}
