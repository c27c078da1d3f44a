package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/maisquelle/maisquelle/internal/anthropic"
	"github.com/maisquelle/maisquelle/internal/models"
)

// ReasoningClient is the narrow contract to the external advice service.
// Implemented by *anthropic.Client; nil-safe.
type ReasoningClient interface {
	Available() bool
	Advise(ctx context.Context, level models.Level, findings []models.Finding, samples []models.MetricSample) ([]anthropic.AdviceItem, error)
}

// Advisor turns findings into ranked recommendations. Local mode uses the
// threshold rule table; enriched mode round-trips through the reasoning
// service and falls back to local on any failure.
type Advisor struct {
	client ReasoningClient
	logf   func(format string, args ...interface{})
}

// New creates an advisor. client may be nil (local mode only); logf, if
// non-nil, receives fallback diagnostics.
func New(client ReasoningClient, logf func(format string, args ...interface{})) *Advisor {
	return &Advisor{client: client, logf: logf}
}

// Result carries the recommendations and whether the assistant produced
// them.
type Result struct {
	Recommendations []models.Recommendation
	AssistantUsed   bool
}

// Approver reviews command-bearing recommendations and decides their
// approval state. Implementations must only move pending items to
// approved or rejected; the tool itself never executes commands.
type Approver interface {
	Review(recs []models.Recommendation) ([]models.Recommendation, error)
}

// ApplyApprovals runs the approver over the pending command-bearing
// recommendations and merges the decisions back. Transitions are only
// accepted out of the pending state, so an approver cannot resurrect a
// rejection or touch command-less advice.
func ApplyApprovals(recs []models.Recommendation, approver Approver) ([]models.Recommendation, error) {
	if approver == nil {
		return recs, nil
	}

	var pending []models.Recommendation
	for _, rec := range recs {
		if rec.Command != "" && rec.Approval == models.ApprovalPending {
			pending = append(pending, rec)
		}
	}
	if len(pending) == 0 {
		return recs, nil
	}

	reviewed, err := approver.Review(pending)
	if err != nil {
		return recs, err
	}

	decisions := make(map[string]models.Approval, len(reviewed))
	for _, rec := range reviewed {
		if rec.Approval == models.ApprovalApproved || rec.Approval == models.ApprovalRejected {
			decisions[rec.ID] = rec.Approval
		}
	}

	out := make([]models.Recommendation, len(recs))
	copy(out, recs)
	for i := range out {
		if out[i].Approval != models.ApprovalPending {
			continue
		}
		if decision, ok := decisions[out[i].ID]; ok {
			out[i].Approval = decision
		}
	}
	return out, nil
}

// Generate builds recommendations for the run's findings. The thresholds
// must be the same set the analysis engine evaluated: they carry the
// advice templates. samples provide measured values for command
// substitution.
func (a *Advisor) Generate(ctx context.Context, level models.Level, findings []models.Finding, thresholds []models.Threshold, samples []models.MetricSample) Result {
	if len(findings) == 0 {
		return Result{}
	}

	if a.client != nil && a.client.Available() {
		items, err := a.client.Advise(ctx, level, findings, samples)
		if err == nil {
			if recs := a.fromAssistant(items, findings); len(recs) > 0 {
				return Result{Recommendations: recs, AssistantUsed: true}
			}
			err = fmt.Errorf("no advice matched the run's findings")
		}
		if a.logf != nil {
			a.logf("assistant advice unavailable, using local rules: %v", err)
		}
	}

	return Result{Recommendations: a.local(findings, thresholds, samples)}
}

// local maps findings through the threshold rule table. Findings that
// resolve to identical advice (e.g. several buffer pool rules) cluster
// into one recommendation.
func (a *Advisor) local(findings []models.Finding, thresholds []models.Threshold, samples []models.MetricSample) []models.Recommendation {
	byName := make(map[string]models.Threshold, len(thresholds))
	for _, t := range thresholds {
		byName[t.Name] = t
	}

	type cluster struct {
		severity string
		advice   string
		command  string
		findings []string
	}
	var order []string
	clusters := make(map[string]*cluster)

	for _, f := range findings {
		t, ok := byName[f.Threshold]
		if !ok {
			continue
		}
		advice := t.Advice
		if advice == "" {
			advice = fmt.Sprintf("Investigate %s: %s", f.Metric, f.Description)
		}
		command := expandCommand(t.Command, f.Metric, samples)

		key := advice
		c, exists := clusters[key]
		if !exists {
			c = &cluster{severity: f.Severity, advice: advice, command: command}
			clusters[key] = c
			order = append(order, key)
		}
		if models.SeverityRank(f.Severity) > models.SeverityRank(c.severity) {
			c.severity = f.Severity
		}
		c.findings = append(c.findings, f.Metric)
	}

	recs := make([]models.Recommendation, 0, len(order))
	for _, key := range order {
		c := clusters[key]
		recs = append(recs, newRecommendation(len(recs)+1, c.severity, c.advice, c.command, c.findings, models.SourceLocal))
	}

	rankRecommendations(recs)
	renumber(recs)
	return recs
}

// fromAssistant validates service advice against the run's findings.
// Items referencing no actual finding are dropped: no orphan advice.
func (a *Advisor) fromAssistant(items []anthropic.AdviceItem, findings []models.Finding) []models.Recommendation {
	known := make(map[string]bool, len(findings))
	for _, f := range findings {
		known[f.Metric] = true
	}

	var recs []models.Recommendation
	for _, item := range items {
		var matched []string
		for _, m := range item.Metrics {
			if known[m] {
				matched = append(matched, m)
			}
		}
		if len(matched) == 0 {
			continue
		}
		recs = append(recs, newRecommendation(len(recs)+1, item.Priority, item.Advice, item.Command, matched, models.SourceAssistant))
	}

	rankRecommendations(recs)
	renumber(recs)
	return recs
}

func newRecommendation(n int, severity, advice, command string, findingMetrics []string, source string) models.Recommendation {
	approval := models.ApprovalNotApplicable
	if command != "" {
		approval = models.ApprovalPending
	}
	return models.Recommendation{
		ID:       fmt.Sprintf("rec-%d", n),
		Severity: severity,
		Advice:   advice,
		Command:  command,
		Findings: findingMetrics,
		Source:   source,
		Approval: approval,
	}
}

// rankRecommendations orders by severity then advice text for stability.
func rankRecommendations(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := models.SeverityRank(recs[i].Severity), models.SeverityRank(recs[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return recs[i].Advice < recs[j].Advice
	})
}

// renumber reassigns IDs after sorting so rec-1 is the most urgent.
func renumber(recs []models.Recommendation) {
	for i := range recs {
		recs[i].ID = fmt.Sprintf("rec-%d", i+1)
	}
}

// expandCommand substitutes template placeholders with values derived
// from the run's own samples. Commands that keep unresolved placeholders
// are suppressed rather than surfaced half-baked.
func expandCommand(command, metric string, samples []models.MetricSample) string {
	if command == "" {
		return ""
	}
	if strings.Contains(command, "{{suggest}}") {
		suggestion, ok := suggestValue(metric, samples)
		if !ok {
			return ""
		}
		command = strings.ReplaceAll(command, "{{suggest}}", suggestion)
	}
	if strings.Contains(command, "{{") {
		return ""
	}
	return command
}

// suggestValue derives a tuning suggestion for the variable behind a
// metric: 50% above the current setting, which is conservative enough to
// propose without sizing knowledge the tool does not have.
func suggestValue(metric string, samples []models.MetricSample) (string, bool) {
	var source string
	switch {
	case strings.HasPrefix(metric, "innodb.buffer_pool."):
		source = "innodb.buffer_pool.size_bytes"
	case strings.HasPrefix(metric, "connections."):
		source = "connections.max"
	case strings.HasPrefix(metric, "query_cache."):
		source = "query_cache.size_bytes"
	default:
		return "", false
	}

	current, ok := models.FindNumber(samples, source)
	if !ok || current <= 0 {
		return "", false
	}
	return fmt.Sprintf("%d", int64(current*1.5)), true
}
