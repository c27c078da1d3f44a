package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/maisquelle/maisquelle/internal/models"
)

// InteractiveApprover reviews pending commands with a human. On a
// terminal it runs the Bubble Tea review; piped in or out, it falls back
// to a line-oriented y/N prompt so scripted runs still work.
type InteractiveApprover struct {
	in    io.Reader
	out   io.Writer
	isTTY func() bool
}

// NewInteractiveApprover creates an approver bound to stdin/stdout.
func NewInteractiveApprover() *InteractiveApprover {
	return &InteractiveApprover{
		in:  os.Stdin,
		out: os.Stdout,
		isTTY: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
	}
}

// Review implements the advisor's approval contract.
func (a *InteractiveApprover) Review(recs []models.Recommendation) ([]models.Recommendation, error) {
	if len(recs) == 0 {
		return recs, nil
	}
	if a.isTTY() {
		return Run(recs)
	}
	return a.promptReview(recs)
}

// promptReview is the non-terminal fallback: one y/N question per
// command, anything but an explicit yes stays pending.
func (a *InteractiveApprover) promptReview(recs []models.Recommendation) ([]models.Recommendation, error) {
	out := make([]models.Recommendation, len(recs))
	copy(out, recs)

	scanner := bufio.NewScanner(a.in)
	for i := range out {
		fmt.Fprintf(a.out, "[%s] %s\n", strings.ToUpper(out[i].Severity), out[i].Advice)
		fmt.Fprintf(a.out, "  %s\n", out[i].Command)
		fmt.Fprintf(a.out, "Approve this command? [y/N/r]: ")

		if !scanner.Scan() {
			// Input exhausted: the rest stays pending
			break
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			out[i].Approval = models.ApprovalApproved
		case "r", "reject":
			out[i].Approval = models.ApprovalRejected
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read approval input: %w", err)
	}
	return out, nil
}
