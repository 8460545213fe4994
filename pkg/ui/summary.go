package ui

import (
	"fmt"
	"time"

	"coubcrawl/pkg/crawler"
)

// PrintReports prints one summary line per crawled category
func PrintReports(reports []crawler.CategoryReport) {
	if len(reports) == 0 {
		return
	}

	PrintHighlight("Crawl summary")
	for _, r := range reports {
		fmt.Fprintln(output, FormatReport(r))
	}
}

// FormatReport renders a single category report
func FormatReport(r crawler.CategoryReport) string {
	status := string(r.Outcome)
	switch r.Outcome {
	case crawler.OutcomeCrawled:
		status = Green(status)
	case crawler.OutcomeAborted:
		status = Red(status)
	default:
		status = Yellow(status)
	}

	line := fmt.Sprintf("  %-24s %s", r.Category, status)
	if r.Outcome == crawler.OutcomeSkipped {
		return line + Dim(" ("+r.Reason+")")
	}

	line += fmt.Sprintf("  pages=%d items=%d reposts=%d", r.Pages, r.Emitted, r.Reposts)
	if r.SegmentBundles > 0 {
		line += fmt.Sprintf(" segments=%d", r.SegmentBundles)
	}
	if r.Filtered > 0 {
		line += fmt.Sprintf(" filtered=%d", r.Filtered)
	}
	if !r.StartedAt.IsZero() && !r.FinishedAt.IsZero() {
		line += Dim(" " + r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String())
	}
	if r.Outcome == crawler.OutcomeAborted && r.Reason != "" {
		line += Dim(" (" + r.Reason + ")")
	}
	return line
}
