package indent

import (
	"strings"
	"testing"
)

const snapshotFixture = "let\n  cfg = {\n    ports = [\n      80\n    ];\n  };\nin cfg\n"

func TestSnapshotMatchesDirectScan(t *testing.T) {
	c := classify(t, snapshotFixture)
	e := NewEngine(2)
	snap := NewSnapshot(c)

	lineCount := c.File().LineCount()
	for line := uint32(1); line <= lineCount; line++ {
		wantCol, wantOK := e.ComputeIndent(c, line)
		gotCol, gotOK := e.ComputeIndentCached(snap, line)
		if wantOK != gotOK || wantCol != gotCol {
			t.Errorf("line %d: direct scan gave (%d, %v), cached gave (%d, %v)",
				line, wantCol, wantOK, gotCol, gotOK)
		}
	}
}

func TestSnapshotLazyRows(t *testing.T) {
	c := classify(t, snapshotFixture)
	snap := NewSnapshot(c)

	snap.ensure(3)
	if len(snap.rows) != 3 {
		t.Errorf("Expected 3 rows after ensure(3), got %d", len(snap.rows))
	}

	// Asking for an earlier line must not grow the cache.
	_ = snap.LetBalance(2)
	if len(snap.rows) != 3 {
		t.Errorf("Expected cache to stay at 3 rows, got %d", len(snap.rows))
	}
}

func TestSnapshotInvalidateFrom(t *testing.T) {
	c := classify(t, snapshotFixture)
	snap := NewSnapshot(c)
	snap.ensure(6)

	snap.InvalidateFrom(4)
	if len(snap.rows) != 3 {
		t.Errorf("Expected 3 surviving rows after InvalidateFrom(4), got %d", len(snap.rows))
	}

	// Rows regrow on demand and still agree with the direct scan.
	e := NewEngine(2)
	for line := uint32(1); line <= 6; line++ {
		wantCol, wantOK := e.ComputeIndent(c, line)
		gotCol, gotOK := e.ComputeIndentCached(snap, line)
		if wantOK != gotOK || wantCol != gotCol {
			t.Errorf("line %d after invalidation: expected (%d, %v), got (%d, %v)",
				line, wantCol, wantOK, gotCol, gotOK)
		}
	}
}

func TestSnapshotRebindAfterEdit(t *testing.T) {
	c := classify(t, snapshotFixture)
	snap := NewSnapshot(c)
	snap.ensure(7)

	// Simulate an edit on line 4: the new buffer shares lines 1-3.
	edited := strings.Replace(snapshotFixture, "      80\n", "      8080\n      8443\n", 1)
	c2 := classify(t, edited)
	snap.Rebind(c2, 4)

	e := NewEngine(2)
	lineCount := c2.File().LineCount()
	for line := uint32(1); line <= lineCount; line++ {
		wantCol, wantOK := e.ComputeIndent(c2, line)
		gotCol, gotOK := e.ComputeIndentCached(snap, line)
		if wantOK != gotOK || wantCol != gotCol {
			t.Errorf("line %d after rebind: expected (%d, %v), got (%d, %v)",
				line, wantCol, wantOK, gotCol, gotOK)
		}
	}
}
