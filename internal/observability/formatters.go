// Package observability provides formatted console summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/apply-engine/internal/classify"
	"github.com/jonathan/apply-engine/internal/dispatch"
	"github.com/jonathan/apply-engine/internal/scoring"
	"github.com/jonathan/apply-engine/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted console output
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
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// PrintDistribution outputs postings per tier and the most common providers.
func (p *Printer) PrintDistribution(d classify.Distribution, total int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Postings classified: %d\n\n", total))

	for _, tier := range []types.Tier{types.TierLow, types.TierMedium, types.TierHigh} {
		n := d.ByTier[tier]
		sb.WriteString(fmt.Sprintf("Tier %d (%s): %d (%.1f%%)\n", tier, tier.Strategy(), n, pct(n, total)))
	}

	top := d.TopProviders()
	if len(top) > 0 {
		sb.WriteString("\nTop ATS:\n")
		count := min(len(top), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %-18s %d\n", top[i].Provider, top[i].Count))
		}
		if len(top) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(top)-maxItemsToShow))
		}
	}

	p.printBox("ATS DISTRIBUTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTierStats outputs the catalog's providers per tier.
func (p *Printer) PrintTierStats(stats []classify.TierStat) {
	if len(stats) == 0 {
		return
	}

	var sb strings.Builder
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("Tier %d: %d providers, avg success %.0f%%\n",
			s.Tier, s.Providers, s.AverageSuccessRate*100))
	}
	p.printBox("ATS CATALOG", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScoreBands outputs how many postings fall in each score band and how
// many cleared the minimum score.
func (p *Printer) PrintScoreBands(b scoring.Bands, total, kept int, minScore float64) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Postings scored: %d\n\n", total))
	sb.WriteString(fmt.Sprintf("Excellent (%.0f+): %d\n", scoring.ExcellentThreshold, b.Excellent))
	sb.WriteString(fmt.Sprintf("Good (%.0f-%.0f):  %d\n", scoring.GoodThreshold, scoring.ExcellentThreshold-1, b.Good))
	sb.WriteString(fmt.Sprintf("Fair (%.0f-%.0f):  %d\n", scoring.FairThreshold, scoring.GoodThreshold-1, b.Fair))
	sb.WriteString(fmt.Sprintf("Poor (<%.0f):    %d\n", scoring.FairThreshold, b.Poor))
	sb.WriteString(fmt.Sprintf("\nKept at min score %.0f: %d (%.1f%%)", minScore, kept, pct(kept, total)))

	p.printBox("FIT SCORES", sb.String())
}

// PrintTopPostings outputs the best scored postings.
func (p *Printer) PrintTopPostings(postings []types.Posting) {
	if len(postings) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(postings), maxItemsToShow)
	for i := 0; i < count; i++ {
		posting := postings[i]
		sb.WriteString(fmt.Sprintf("#%d  %5.1f  %s\n", i+1, posting.ScoreValue(), posting.Title))
		sb.WriteString(fmt.Sprintf("    %s · %s (tier %d)\n", posting.Company, posting.Provider(), posting.Tier()))
	}
	if len(postings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more postings", len(postings)-maxItemsToShow))
	}

	p.printBox("TOP MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDispatchResult outputs the outcome of a dispatch batch.
func (p *Printer) PrintDispatchResult(r *dispatch.Result) {
	if r == nil {
		return
	}

	var sb strings.Builder
	if r.DryRun {
		sb.WriteString(fmt.Sprintf("Dry run: would apply to %d tier-1 postings", r.Planned))
		p.printBox("DISPATCH", sb.String())
		return
	}

	sb.WriteString(fmt.Sprintf("Attempted: %d of %d planned\n", r.Attempted(), r.Planned))
	sb.WriteString(fmt.Sprintf("Submitted: %d\n", r.Succeeded))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", r.Failed))
	sb.WriteString(fmt.Sprintf("Success:   %.1f%%", r.SuccessRate()*100))

	failures := r.Failures()
	if len(failures) > 0 {
		sb.WriteString("\n\nFailures:\n")
		count := min(len(failures), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("⚠ %s (%s)\n", failures[i].Company, failures[i].Provider))
			sb.WriteString(fmt.Sprintf("  %s\n", failures[i].Error))
		}
		if len(failures) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more failures\n", len(failures)-maxItemsToShow))
		}
	}

	p.printBox("DISPATCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTrackerStats outputs aggregate application statistics.
func (p *Printer) PrintTrackerStats(stats *types.TrackerStats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total applications: %d\n\n", stats.Total))

	for _, status := range []types.ApplicationStatus{
		types.StatusPending, types.StatusSubmitted, types.StatusFailed, types.StatusResponded,
	} {
		sb.WriteString(fmt.Sprintf("%-10s %d\n", status, stats.ByStatus[status]))
	}
	sb.WriteString(fmt.Sprintf("\nSubmitted ratio: %.1f%%\n", stats.SubmittedRatio*100))

	if len(stats.TopProviders) > 0 {
		sb.WriteString("\nBy ATS:\n")
		for _, pc := range stats.TopProviders {
			sb.WriteString(fmt.Sprintf("  • %-18s %d\n", pc.Provider, pc.Count))
		}
	}

	p.printBox("APPLICATION STATS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPending outputs pending applications awaiting manual handling.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintPending(recs []types.ApplicationRecord) {
	if len(recs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO PENDING APPLICATIONS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d pending:\n\n", len(recs)))
	for i, rec := range recs {
		sb.WriteString(fmt.Sprintf("%5.1f  %s @ %s\n", rec.Score, rec.Title, rec.Company))
		sb.WriteString(fmt.Sprintf("       tier %d · %s\n", rec.Tier, rec.Provider))
		sb.WriteString(fmt.Sprintf("       %s", rec.URL))
		if i < len(recs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("PENDING APPLICATIONS", sb.String())
}
