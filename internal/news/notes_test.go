package news

import (
	"strings"
	"testing"
)

func TestBuildNotes(t *testing.T) {
	items := []Item{
		{Title: "MBTA announces weekend closures", Summary: "Shuttle buses on the Red Line.", Source: "Globe"},
		{Title: "City council votes on budget", Summary: "", Source: "WBUR"},
	}
	notes := BuildNotes(items, 10)

	lines := strings.Split(strings.TrimRight(notes, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), notes)
	}
	if !strings.HasPrefix(lines[0], "1. MBTA announces weekend closures") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[0], "Shuttle buses") {
		t.Errorf("summary missing from first line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2. City council votes on budget") {
		t.Errorf("unexpected second line: %q", lines[1])
	}
	// no trailing separator for an empty summary
	if strings.Contains(lines[1], "—") {
		t.Errorf("empty summary should not add a separator: %q", lines[1])
	}
}

func TestBuildNotesMax(t *testing.T) {
	items := make([]Item, 15)
	for i := range items {
		items[i] = Item{Title: "Story"}
	}
	// titles are identical here on purpose; BuildNotes does not dedupe
	notes := BuildNotes(items, 10)
	if got := strings.Count(notes, "\n"); got != 10 {
		t.Errorf("expected 10 stories, got %d", got)
	}
}

func TestBuildNotesSkipsEmptyTitles(t *testing.T) {
	items := []Item{
		{Title: ""},
		{Title: "Real story"},
	}
	notes := BuildNotes(items, 10)
	if !strings.HasPrefix(notes, "1. Real story") {
		t.Errorf("empty titles should be skipped: %q", notes)
	}
}
