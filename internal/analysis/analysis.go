package analysis

import (
	"fmt"
	"sort"

	"github.com/maisquelle/maisquelle/internal/models"
)

// Evaluate classifies samples against thresholds and returns the findings.
// It is a pure function: identical inputs always yield identical,
// order-stable output. A threshold whose metric is absent (collector
// failed or the server lacks the surface) yields no finding — absence is
// graceful degradation, not an error.
func Evaluate(samples []models.MetricSample, thresholds []models.Threshold) []models.Finding {
	var findings []models.Finding
	seen := make(map[string]bool)

	for _, t := range thresholds {
		value, ok := numericValue(samples, t.Metric)
		if !ok {
			continue
		}
		if !t.Exceeded(value) {
			continue
		}

		// One finding per (metric, severity) per run.
		key := t.Metric + "\x00" + t.Severity
		if seen[key] {
			continue
		}
		seen[key] = true

		findings = append(findings, models.Finding{
			Metric:      t.Metric,
			Severity:    t.Severity,
			Value:       value,
			Limit:       t.Limit,
			Threshold:   t.Name,
			Description: describe(t, value),
		})
	}

	// Descending severity, then metric name: deterministic output.
	sort.Slice(findings, func(i, j int) bool {
		ri, rj := models.SeverityRank(findings[i].Severity), models.SeverityRank(findings[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return findings[i].Metric < findings[j].Metric
	})

	return findings
}

// numericValue resolves a metric to a number: durations evaluate as
// seconds so thresholds can bound them.
func numericValue(samples []models.MetricSample, name string) (float64, bool) {
	for _, s := range samples {
		if s.Name != name {
			continue
		}
		switch s.Kind {
		case models.KindNumber:
			return s.Number, true
		case models.KindDuration:
			return s.Duration.Seconds(), true
		}
	}
	return 0, false
}

func describe(t models.Threshold, value float64) string {
	return fmt.Sprintf("%s is %s (threshold %s %s %s)",
		t.Metric, formatValue(value), t.Metric, t.Op, formatValue(t.Limit))
}

// formatValue trims trailing zeros so descriptions stay readable.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
