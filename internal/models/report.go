package models

import (
	"fmt"
	"time"
)

// Threshold is one named, configured rule evaluated against one metric.
// Thresholds are configured, never inferred from observed data.
type Threshold struct {
	Name     string  `json:"name" yaml:"name"`
	Metric   string  `json:"metric" yaml:"metric"`
	Op       string  `json:"op" yaml:"op"` // > < >= <=
	Limit    float64 `json:"limit" yaml:"limit"`
	Severity string  `json:"severity" yaml:"severity"`
	Advice   string  `json:"advice,omitempty" yaml:"advice,omitempty"`
	Command  string  `json:"command,omitempty" yaml:"command,omitempty"`
}

// Exceeded evaluates the comparator against a measured value.
func (t Threshold) Exceeded(value float64) bool {
	switch t.Op {
	case ">":
		return value > t.Limit
	case "<":
		return value < t.Limit
	case ">=":
		return value >= t.Limit
	case "<=":
		return value <= t.Limit
	default:
		return false
	}
}

// Validate checks the rule is well-formed.
func (t Threshold) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("threshold has no name")
	}
	if t.Metric == "" {
		return fmt.Errorf("threshold %q has no metric", t.Name)
	}
	switch t.Op {
	case ">", "<", ">=", "<=":
	default:
		return fmt.Errorf("threshold %q has invalid comparator %q", t.Name, t.Op)
	}
	if !ValidSeverity(t.Severity) {
		return fmt.Errorf("threshold %q has invalid severity %q", t.Name, t.Severity)
	}
	return nil
}

// Finding is a single threshold violation. Findings are immutable and
// uniquely identified by (metric, severity) within one run.
type Finding struct {
	Metric      string  `json:"metric"`
	Severity    string  `json:"severity"`
	Value       float64 `json:"value"`
	Limit       float64 `json:"limit"`
	Threshold   string  `json:"threshold"`
	Description string  `json:"description"`
}

// Approval is the lifecycle state of a proposed corrective command
type Approval string

const (
	ApprovalPending       Approval = "pending"
	ApprovalApproved      Approval = "approved"
	ApprovalRejected      Approval = "rejected"
	ApprovalNotApplicable Approval = "not-applicable"
)

// Recommendation sources
const (
	SourceLocal     = "local"
	SourceAssistant = "assistant"
)

// Recommendation is advisory output derived from one or more findings.
// Only the Approval field changes after creation, and only through the
// advisor's Approver interface.
type Recommendation struct {
	ID       string   `json:"id"`
	Severity string   `json:"severity"`
	Advice   string   `json:"advice"`
	Command  string   `json:"command,omitempty"`
	Findings []string `json:"findings"` // metric names of the findings it addresses
	Source   string   `json:"source"`
	Approval Approval `json:"approval"`
}

// CollectorError records a check whose collection failed. The failure is
// isolated: the rest of the report remains valid.
type CollectorError struct {
	Check CheckType `json:"check"`
	Error string    `json:"error"`
}

// Target identifies the inspected server. The password is never part of
// a report.
type Target struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	User string `json:"user"`
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// SampleGroup holds one collector's samples, preserving capture order.
type SampleGroup struct {
	Check   CheckType      `json:"check"`
	Samples []MetricSample `json:"samples"`
}

// Report is the complete, write-once output of one monitoring run.
type Report struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	Target          Target           `json:"target"`
	Level           Level            `json:"level"`
	Checks          []CheckType      `json:"checks"`
	Samples         []SampleGroup    `json:"samples"`
	CollectorErrors []CollectorError `json:"collector_errors,omitempty"`
	Findings        []Finding        `json:"findings"`
	Recommendations []Recommendation `json:"recommendations"`
	AssistantUsed   bool             `json:"assistant_used"`
}

// Degraded reports whether any collector failed during the run.
func (r *Report) Degraded() bool {
	return len(r.CollectorErrors) > 0
}

// SampleCount returns the total number of samples across all groups.
func (r *Report) SampleCount() int {
	n := 0
	for _, g := range r.Samples {
		n += len(g.Samples)
	}
	return n
}

// AllSamples flattens the groups in report order.
func (r *Report) AllSamples() []MetricSample {
	out := make([]MetricSample, 0, r.SampleCount())
	for _, g := range r.Samples {
		out = append(out, g.Samples...)
	}
	return out
}
