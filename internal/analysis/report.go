package analysis

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders a dead-code report for display.
func RenderMarkdown(r *DeadCodeReport) string {
	var b strings.Builder

	b.WriteString("# Dead Code Report\n\n")
	fmt.Fprintf(&b, "Flagged items: %d (confidence: %s)\n\n", r.TotalItems, r.Confidence)

	if r.TotalItems == 0 {
		b.WriteString("No likely-unused symbols found.\n")
		return b.String()
	}

	renderSection(&b, "Unused Classes", r.UnusedClasses)
	renderSection(&b, "Unused Methods", r.UnusedMethods)
	renderSection(&b, "Unused Constants", r.UnusedConstants)

	b.WriteString("Confidence scores are heuristic estimates, not proof of unreachability.\n")
	return b.String()
}

func renderSection(b *strings.Builder, title string, items []DeadCodeItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s (%d)\n\n", title, len(items))
	for _, item := range items {
		loc := ""
		if item.File != "" {
			loc = " at " + item.File
			if item.Line > 0 {
				loc = fmt.Sprintf("%s:%d", loc, item.Line)
			}
		}
		fmt.Fprintf(b, "- `%s`%s (%.1f) %s\n", item.Name, loc, item.Confidence, item.Reason)
	}
	b.WriteString("\n")
}
