// Package observability provides logging, metrics and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-curator/internal/ranking"
	"github.com/jonathan/resume-curator/internal/selection"
	"github.com/jonathan/resume-curator/internal/types"
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
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintProviderResult outputs the provider metadata of a successful selection.
func (p *Printer) PrintProviderResult(result *types.ProviderResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Provider: %s\n", result.Provider))
	sb.WriteString(fmt.Sprintf("Attempts: %d\n", result.AttemptCount))
	sb.WriteString(fmt.Sprintf("Tokens:   %d\n", result.TokensUsed))
	if result.JobTitle != "" {
		sb.WriteString(fmt.Sprintf("Role:     %s\n", result.JobTitle))
	}
	if s := result.Salary; s != nil {
		sb.WriteString(fmt.Sprintf("Salary:   %s\n", formatSalary(s)))
	}
	if result.Reasoning != "" {
		sb.WriteString("\n")
		sb.WriteString(truncate(result.Reasoning, 3*(boxWidth-4)))
	}

	p.printBox("PROVIDER RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

func formatSalary(s *types.Salary) string {
	switch {
	case s.Min > 0 && s.Max > 0:
		return strings.TrimSpace(fmt.Sprintf("%.0f-%.0f %s", s.Min, s.Max, s.Currency))
	case s.Max > 0:
		return strings.TrimSpace(fmt.Sprintf("up to %.0f %s", s.Max, s.Currency))
	case s.Min > 0:
		return strings.TrimSpace(fmt.Sprintf("from %.0f %s", s.Min, s.Currency))
	default:
		return "unspecified"
	}
}

// PrintSelectedBullets outputs the final bullets grouped by company, plus any company whose
// minimum could not be met.
func (p *Printer) PrintSelectedBullets(bullets []types.SelectedBullet, shortfalls []selection.Shortfall) {
	if len(bullets) == 0 && len(shortfalls) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Selected %d bullets:\n", len(bullets)))

	company := ""
	for _, b := range bullets {
		if b.CompanyID != company {
			company = b.CompanyID
			sb.WriteString(fmt.Sprintf("\n%s\n", company))
		}
		sb.WriteString(fmt.Sprintf("  %.2f  %s\n", b.Score, b.Bullet.Description))
	}

	if len(shortfalls) > 0 {
		sb.WriteString("\nBelow minimum:\n")
		for _, s := range shortfalls {
			sb.WriteString(fmt.Sprintf("  ⚠ %s (%d of %d)\n", s.CompanyID, s.Have, s.Want))
		}
	}

	p.printBox("SELECTED BULLETS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRankedBullets outputs the top heuristic rankings with scores and matched tags.
func (p *Printer) PrintRankedBullets(ranked []ranking.RankedBullet) {
	if len(ranked) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total bullets ranked: %d\n\n", len(ranked)))

	count := min(len(ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		b := ranked[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (%s)\n", i+1, b.BulletID, b.CompanyID))
		sb.WriteString(fmt.Sprintf("    Score: %.2f\n", b.Score))
		if len(b.MatchedTags) > 0 {
			sb.WriteString(fmt.Sprintf("    Tags: %s\n", truncate(strings.Join(b.MatchedTags, ", "), 40)))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more bullets", len(ranked)-maxItemsToShow))
	}

	p.printBox("TOP RANKED BULLETS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAttempts outputs the failed provider attempts of a run, oldest first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAttempts(attempts []types.AttemptFailure) {
	if len(attempts) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO FAILED ATTEMPTS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d failed attempts:\n\n", len(attempts)))

	for i, a := range attempts {
		sb.WriteString(fmt.Sprintf("⚠ %s %s\n", a.Provider, a.Code))
		sb.WriteString(fmt.Sprintf("  %s\n", a.Message))
		if i < len(attempts)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("PROVIDER ATTEMPTS", strings.TrimSuffix(sb.String(), "\n"))
}
