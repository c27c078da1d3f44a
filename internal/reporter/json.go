package reporter

import (
	"encoding/json"
	"io"

	"github.com/maisquelle/maisquelle/internal/models"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate writes the full report as JSON
func (r *JSONReporter) Generate(report *models.Report) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	// Trailing newline for terminal output
	_, err = r.writer.Write([]byte("\n"))
	return err
}

// GenerateSummaryOnly writes a compact summary without the raw samples
func (r *JSONReporter) GenerateSummaryOnly(report *models.Report) error {
	summary := struct {
		Timestamp       string                  `json:"timestamp"`
		Target          models.Target           `json:"target"`
		Level           models.Level            `json:"level"`
		Checks          []models.CheckType      `json:"checks"`
		SampleCount     int                     `json:"sample_count"`
		Degraded        bool                    `json:"degraded"`
		Findings        []models.Finding        `json:"findings"`
		Recommendations []models.Recommendation `json:"recommendations"`
		AssistantUsed   bool                    `json:"assistant_used"`
	}{
		Timestamp:       report.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Target:          report.Target,
		Level:           report.Level,
		Checks:          report.Checks,
		SampleCount:     report.SampleCount(),
		Degraded:        report.Degraded(),
		Findings:        report.Findings,
		Recommendations: report.Recommendations,
		AssistantUsed:   report.AssistantUsed,
	}

	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(summary, "", "  ")
	} else {
		data, err = json.Marshal(summary)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	_, err = r.writer.Write([]byte("\n"))
	return err
}
