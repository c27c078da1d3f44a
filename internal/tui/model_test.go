package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maisquelle/maisquelle/internal/models"
)

func reviewFixture() []models.Recommendation {
	return []models.Recommendation{
		{ID: "rec-1", Severity: models.SeverityHigh, Advice: "Raise max_connections", Command: "SET GLOBAL max_connections = 300", Findings: []string{"connections.usage_percent"}, Approval: models.ApprovalPending},
		{ID: "rec-2", Severity: models.SeverityMedium, Advice: "Grow the buffer pool", Command: "SET GLOBAL innodb_buffer_pool_size = 1610612736", Approval: models.ApprovalPending},
		{ID: "rec-3", Severity: models.SeverityLow, Advice: "Flush the query cache", Command: "FLUSH QUERY CACHE", Approval: models.ApprovalPending},
	}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(t *testing.T, m Model, r rune) Model {
	t.Helper()
	updated, _ := m.Update(keyPress(r))
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next
}

func TestNewStartsPending(t *testing.T) {
	m := New(reviewFixture())
	for i, rec := range m.Decisions() {
		if rec.Approval != models.ApprovalPending {
			t.Errorf("item %d should start pending, got %s", i, rec.Approval)
		}
	}
	if m.cursor != 0 || m.done {
		t.Errorf("unexpected initial state: cursor=%d done=%v", m.cursor, m.done)
	}
}

func TestReviewDecisions(t *testing.T) {
	m := New(reviewFixture())

	m = press(t, m, 'a') // approve rec-1
	m = press(t, m, 'r') // reject rec-2
	m = press(t, m, 's') // skip rec-3

	if !m.done {
		t.Error("expected review to finish after the last decision")
	}

	recs := m.Decisions()
	if recs[0].Approval != models.ApprovalApproved {
		t.Errorf("rec-1: expected approved, got %s", recs[0].Approval)
	}
	if recs[1].Approval != models.ApprovalRejected {
		t.Errorf("rec-2: expected rejected, got %s", recs[1].Approval)
	}
	if recs[2].Approval != models.ApprovalPending {
		t.Errorf("rec-3: skipped item should stay pending, got %s", recs[2].Approval)
	}
}

func TestReviewAlternateKeys(t *testing.T) {
	m := New(reviewFixture())

	m = press(t, m, 'y') // approve
	m = press(t, m, 'n') // reject

	recs := m.Decisions()
	if recs[0].Approval != models.ApprovalApproved || recs[1].Approval != models.ApprovalRejected {
		t.Errorf("alternate keys not honored: %s/%s", recs[0].Approval, recs[1].Approval)
	}
}

func TestReviewBackNavigation(t *testing.T) {
	m := New(reviewFixture())

	m = press(t, m, 'a')
	m = press(t, m, 'b') // back to the first item
	if m.cursor != 0 {
		t.Fatalf("expected cursor back at 0, got %d", m.cursor)
	}
	m = press(t, m, 'r') // change the decision

	if m.Decisions()[0].Approval != models.ApprovalRejected {
		t.Errorf("revised decision lost: %s", m.Decisions()[0].Approval)
	}
}

func TestReviewQuitLeavesRestPending(t *testing.T) {
	m := New(reviewFixture())

	m = press(t, m, 'a')
	m = press(t, m, 'q')

	if !m.done {
		t.Error("quit should end the review")
	}
	recs := m.Decisions()
	if recs[0].Approval != models.ApprovalApproved {
		t.Errorf("decided item lost on quit: %s", recs[0].Approval)
	}
	for _, rec := range recs[1:] {
		if rec.Approval != models.ApprovalPending {
			t.Errorf("undecided item should stay pending after quit, got %s", rec.Approval)
		}
	}
}

func TestViewShowsCommand(t *testing.T) {
	m := New(reviewFixture())
	view := m.View()

	for _, fragment := range []string{
		"Command Approval  1/3",
		"Raise max_connections",
		"SET GLOBAL max_connections = 300",
		"connections.usage_percent",
	} {
		if !strings.Contains(view, fragment) {
			t.Errorf("view missing %q", fragment)
		}
	}
}

func TestViewSummaryAfterDone(t *testing.T) {
	m := New(reviewFixture())
	m = press(t, m, 'a')
	m = press(t, m, 'r')
	m = press(t, m, 's')

	view := m.View()
	for _, fragment := range []string{"Review complete", "1 approved", "1 rejected", "1 skipped"} {
		if !strings.Contains(view, fragment) {
			t.Errorf("summary missing %q\n%s", fragment, view)
		}
	}
}

func TestWindowSizeCapsProgressWidth(t *testing.T) {
	m := New(reviewFixture())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 50})
	m = updated.(Model)
	if m.progress.Width != 60 {
		t.Errorf("expected progress width capped at 60, got %d", m.progress.Width)
	}
	if m.width != 200 {
		t.Errorf("expected width 200, got %d", m.width)
	}
}
