package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maisquelle/maisquelle/internal/models"
)

// Model is the Bubble Tea model for the command approval review. It
// walks through the pending command-bearing recommendations one at a
// time; every decision is explicit and nothing is ever executed.
type Model struct {
	// Data (immutable after init)
	recs []models.Recommendation

	// UI state
	decisions []models.Approval
	cursor    int
	done      bool
	progress  progress.Model
	width     int
	statusMsg string
}

// New creates a review model over the pending recommendations.
func New(recs []models.Recommendation) Model {
	decisions := make([]models.Approval, len(recs))
	for i := range decisions {
		decisions[i] = models.ApprovalPending
	}

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return Model{
		recs:      recs,
		decisions: decisions,
		progress:  p,
		width:     80,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 4
		if w > 60 {
			w = 60
		}
		if w > 0 {
			m.progress.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.done = true
		return m, tea.Quit
	case key.Matches(msg, keys.Approve):
		return m.decide(models.ApprovalApproved)
	case key.Matches(msg, keys.Reject):
		return m.decide(models.ApprovalRejected)
	case key.Matches(msg, keys.Skip):
		return m.decide(models.ApprovalPending)
	case key.Matches(msg, keys.Back):
		if m.cursor > 0 {
			m.cursor--
			m.statusMsg = ""
		}
		return m, nil
	}
	return m, nil
}

// decide records the decision for the current item and advances.
func (m Model) decide(decision models.Approval) (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.recs) {
		return m, nil
	}
	m.decisions[m.cursor] = decision
	m.cursor++
	m.statusMsg = ""
	if m.cursor >= len(m.recs) {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// Decisions returns the recommendations with the review applied.
func (m Model) Decisions() []models.Recommendation {
	out := make([]models.Recommendation, len(m.recs))
	copy(out, m.recs)
	for i := range out {
		out[i].Approval = m.decisions[i]
	}
	return out
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done || m.cursor >= len(m.recs) {
		return m.renderSummary()
	}

	rec := m.recs[m.cursor]
	var b strings.Builder

	header := fmt.Sprintf("Command Approval  %d/%d", m.cursor+1, len(m.recs))
	b.WriteString(styleHeader.Render(header))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(float64(m.cursor) / float64(len(m.recs))))
	b.WriteString("\n\n")

	b.WriteString(severityStyle(rec.Severity).Render(strings.ToUpper(rec.Severity)))
	b.WriteString("  " + rec.Advice + "\n")
	if len(rec.Findings) > 0 {
		b.WriteString(styleFooter.Render("metrics: " + strings.Join(rec.Findings, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleCommand.Render(rec.Command))
	b.WriteString("\n\n")

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderSummary() string {
	approved, rejected, skipped := 0, 0, 0
	for _, d := range m.decisions {
		switch d {
		case models.ApprovalApproved:
			approved++
		case models.ApprovalRejected:
			rejected++
		default:
			skipped++
		}
	}

	parts := []string{
		styleApproved.Render(fmt.Sprintf("%d approved", approved)),
		styleRejected.Render(fmt.Sprintf("%d rejected", rejected)),
		styleSkipped.Render(fmt.Sprintf("%d skipped", skipped)),
	}
	return "Review complete: " + strings.Join(parts, "  ") + "\n"
}

func (m Model) renderFooter() string {
	left := "a:approve  r:reject  s:skip  b:back  q:done"
	right := m.statusMsg

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return styleFooter.Render(left + strings.Repeat(" ", gap) + right)
}

// Run starts the Bubble Tea review program and returns the reviewed
// recommendations.
func Run(recs []models.Recommendation) ([]models.Recommendation, error) {
	m := New(recs)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := final.(Model); ok {
		return fm.Decisions(), nil
	}
	return recs, nil
}
