package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	// ANSI colors for terminal output
	colorHeader = color.New(color.FgHiMagenta, color.Bold)
	colorBold   = color.New(color.Bold)
	colorCyan   = color.New(color.FgCyan)
	colorFaint  = color.New(color.Faint)
)

// FormatResults writes hits in a human-readable format.
func FormatResults(w io.Writer, hits []Hit, query string) {
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(w, "Type a query to search the documentation.")
		return
	}
	if len(hits) == 0 {
		fmt.Fprintf(w, "No matches found for '%s'.\n", query)
		return
	}

	colorHeader.Fprintf(w, "\nSearch Results for '%s'\n", query)
	fmt.Fprintf(w, "Found %d matching pages.\n\n", len(hits))

	for i, hit := range hits {
		colorBold.Fprintf(w, "%d. %s\n", i+1, hit.Label)
		if hit.Category != "" {
			fmt.Fprintf(w, "   %s | Score: %d\n", hit.Category, hit.Score)
		} else {
			fmt.Fprintf(w, "   Score: %d\n", hit.Score)
		}
		colorCyan.Fprintf(w, "   %s\n", hit.Href)
		if hit.Snippet != "" {
			colorFaint.Fprintf(w, "   %s\n", hit.Snippet)
		}
		fmt.Fprintln(w)
	}
}

// FormatJSON writes hits as an indented JSON array.
func FormatJSON(w io.Writer, hits []Hit) error {
	if hits == nil {
		hits = []Hit{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(hits)
}
