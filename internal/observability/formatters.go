// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-recommender/internal/embedding"
	"github.com/jonathan/job-recommender/internal/ingestion"
	"github.com/jonathan/job-recommender/internal/ranking"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(clip(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most width runes, marking the cut with an ellipsis.
func clip(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// pad right-pads s with spaces to width runes. %-*s counts bytes, which breaks
// the box border for bullets and box-drawing characters.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// PrintDocument outputs what was extracted from a resume file.
func (p *Printer) PrintDocument(meta *ingestion.Metadata) {
	if meta == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:     %s\n", meta.Source))
	sb.WriteString(fmt.Sprintf("Format:     %s\n", meta.Format))
	sb.WriteString(fmt.Sprintf("Characters: %d\n", meta.Characters))
	sb.WriteString(fmt.Sprintf("SHA256:     %s", clip(meta.Hash, 16)))

	p.printBox("RESUME DOCUMENT", sb.String())
}

// PrintKeywordResults outputs keyword recommendations with scores and reasons.
func (p *Printer) PrintKeywordResults(results []ranking.Result) {
	if len(results) == 0 {
		p.printBox("KEYWORD RECOMMENDATIONS", "No recommendations")
		return
	}

	var sb strings.Builder
	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, r.Title))
		sb.WriteString(fmt.Sprintf("    Score: %d\n", r.Score))
		if len(r.Matched) > 0 {
			sb.WriteString(fmt.Sprintf("    Matched: %s\n", strings.Join(r.Matched, ", ")))
		} else {
			sb.WriteString(fmt.Sprintf("    %s\n", r.Reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(results)-maxItemsToShow))
	}

	p.printBox("KEYWORD RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEmbeddingMatches outputs embedding recommendations with similarity percentages.
func (p *Printer) PrintEmbeddingMatches(model string, matches []embedding.Match) {
	title := "EMBEDDING RECOMMENDATIONS"
	if len(matches) == 0 {
		p.printBox(title, "No recommendations")
		return
	}

	var sb strings.Builder
	if model != "" {
		sb.WriteString(fmt.Sprintf("Model: %s\n\n", model))
	}
	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, m.Title))
		sb.WriteString(fmt.Sprintf("    Score: %d (cosine %.3f)\n", embedding.Percent(m.Similarity), m.Similarity))
	}

	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(matches)-maxItemsToShow))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// BatchEntry is one processed file in a batch run.
type BatchEntry struct {
	Source   string
	TopTitle string
	TopScore int
	Err      error
}

// PrintBatchSummary outputs per-file top picks and failures from a batch run.
func (p *Printer) PrintBatchSummary(entries []BatchEntry, outputPath string) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	failed := 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
		}
	}
	sb.WriteString(fmt.Sprintf("Processed: %d  Failed: %d\n\n", len(entries), failed))

	shown := 0
	for _, e := range entries {
		if shown == maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(entries)-shown))
			break
		}
		shown++
		if e.Err != nil {
			sb.WriteString(fmt.Sprintf("✗ %s: %v\n", e.Source, e.Err))
			continue
		}
		sb.WriteString(fmt.Sprintf("✓ %s → %s (%d)\n", e.Source, e.TopTitle, e.TopScore))
	}

	if outputPath != "" {
		sb.WriteString(fmt.Sprintf("\nWorkbook: %s", outputPath))
	}

	p.printBox("BATCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
