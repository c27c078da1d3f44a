package reporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/maisquelle/maisquelle/internal/models"
)

// TextReporter generates human-readable text reports
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
	}
}

// Generate creates a text report from a monitoring run
func (r *TextReporter) Generate(report *models.Report) error {
	r.printHeader()
	r.printf("Timestamp: %s\n\n", formatTimestamp(report.GeneratedAt))

	r.printRunSummary(report)
	r.printSamples(report)

	if report.Degraded() {
		r.printDegraded(report.CollectorErrors)
	}

	if len(report.Findings) > 0 {
		r.printFindings(report.Findings)
	}

	if len(report.Recommendations) > 0 {
		r.printRecommendations(report)
	}

	return nil
}

// printHeader prints the report header
func (r *TextReporter) printHeader() {
	r.printf("╔════════════════════════════════════════════╗\n")
	r.printf("║         Maisquelle Health Report           ║\n")
	r.printf("╚════════════════════════════════════════════╝\n\n")
}

// printRunSummary prints the target and run scope
func (r *TextReporter) printRunSummary(report *models.Report) {
	r.printf("Run Summary:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Target: %s (user %s)\n", report.Target.String(), report.Target.User)
	r.printf("  Level: %s\n", strings.ToUpper(report.Level.String()))

	names := make([]string, 0, len(report.Checks))
	for _, check := range report.Checks {
		names = append(names, string(check))
	}
	r.printf("  Checks: %s\n", strings.Join(names, ", "))
	r.printf("  Samples: %d\n", report.SampleCount())
	r.printf("  Findings: %d\n", len(report.Findings))

	if report.AssistantUsed {
		r.printf("  Advice: assistant-enriched\n")
	}

	r.printf("\n")
}

// printSamples prints a per-collector metric breakdown
func (r *TextReporter) printSamples(report *models.Report) {
	for _, group := range report.Samples {
		r.printf("%s\n", group.Check)
		r.printf("--------------------------------------------------\n")
		for _, s := range group.Samples {
			r.printf("  %s: %s\n", s.Name, formatSample(s))
		}
		r.printf("\n")
	}
}

// printDegraded lists collectors that failed during the run
func (r *TextReporter) printDegraded(errs []models.CollectorError) {
	r.printf("Degraded Collectors:\n")
	r.printf("--------------------------------------------------\n")
	for _, e := range errs {
		r.printf("  %s: %s\n", e.Check, e.Error)
	}
	r.printf("\n")
}

// printFindings prints threshold violations in severity order
func (r *TextReporter) printFindings(findings []models.Finding) {
	r.printf("Findings:\n")
	r.printf("--------------------------------------------------\n")
	for _, f := range findings {
		r.printf("  [%s] %s\n", strings.ToUpper(f.Severity), f.Description)
	}
	r.printf("\n")
}

// printRecommendations prints the recommendations section
func (r *TextReporter) printRecommendations(report *models.Report) {
	r.printf("Recommended Actions:\n")
	r.printf("--------------------------------------------------\n")

	for i, rec := range report.Recommendations {
		r.printf("  %d. [%s] %s\n", i+1, strings.ToUpper(rec.Severity), rec.Advice)
		if rec.Command != "" {
			r.printf("     Command: %s (%s)\n", rec.Command, rec.Approval)
		}
		if len(rec.Findings) > 0 {
			r.printf("     Metrics: %s\n", strings.Join(rec.Findings, ", "))
		}
	}
}

// formatSample renders a sample value by its kind
func formatSample(s models.MetricSample) string {
	switch s.Kind {
	case models.KindText:
		return s.Text
	case models.KindDuration:
		return s.Duration.String()
	default:
		return formatNumber(s.Number)
	}
}

// formatNumber trims trailing zeros on whole values
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// printf is a helper to write formatted output
func (r *TextReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
