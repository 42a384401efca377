package news

import (
	"fmt"
	"strings"
)

// BuildNotes turns deduped items into the numbered story notes handed to
// the script writer. At most max stories are included.
func BuildNotes(items []Item, max int) string {
	if max <= 0 {
		max = 10
	}

	var b strings.Builder
	count := 0
	for _, item := range items {
		if item.Title == "" {
			continue
		}
		count++
		fmt.Fprintf(&b, "%d. %s", count, item.Title)
		if item.Summary != "" {
			fmt.Fprintf(&b, " — %s", item.Summary)
		}
		if item.Source != "" {
			fmt.Fprintf(&b, " (%s)", item.Source)
		}
		b.WriteString("\n")
		if count >= max {
			break
		}
	}
	return b.String()
}
