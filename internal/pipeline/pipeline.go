// Package pipeline implements the three-stage classification sequence that
// turns an uploaded image into an issue type, a priority and a summary.
// Stages are pure value-to-value functions; a stage failure is captured as a
// descriptive string carried forward, so a run always reaches the final
// stage and always yields a complete state.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/vision"
)

// NoIssueSentinel is the exact phrase the inspection prompt requests for a
// clean image.
const NoIssueSentinel = "No maintenance issues detected"

// State is the value threaded through the three stages.
type State struct {
	ImagePath     string
	IssueDetected string
	IssueType     domain.IssueType
	Priority      domain.TicketPriority
	TicketReady   bool
}

// Workflow runs the fixed Inspect → Classify → Finalize sequence.
type Workflow struct {
	inspector vision.Inspector
}

// NewWorkflow builds a workflow over the given inspector.
func NewWorkflow(inspector vision.Inspector) *Workflow {
	return &Workflow{inspector: inspector}
}

// Run executes all three stages. It never returns early: inspection errors
// are folded into the state and classified downstream.
func (w *Workflow) Run(ctx context.Context, imagePath string) State {
	state := State{ImagePath: imagePath}
	state = w.Inspect(ctx, state)
	state = Classify(state)
	state = Finalize(state)
	return state
}

// Inspect asks the vision model for an issue summary. A missing file or a
// provider failure becomes an error string in IssueDetected, which the
// classify stage resolves to Other / low.
func (w *Workflow) Inspect(ctx context.Context, state State) State {
	if _, err := os.Stat(state.ImagePath); err != nil {
		state.IssueDetected = fmt.Sprintf("Error: Image not found at %s", state.ImagePath)
		return state
	}

	summary, err := w.inspector.Inspect(ctx, state.ImagePath)
	if err != nil {
		state.IssueDetected = fmt.Sprintf("Error occurred: %v", err)
		return state
	}
	if summary == "" {
		summary = "No visible issues detected."
	}
	state.IssueDetected = summary
	return state
}

// Ordered issue-type matching: first match wins.
var issueTypeKeywords = []struct {
	issueType domain.IssueType
	keywords  []string
}{
	{domain.IssueTypeFan, []string{"fan"}},
	{domain.IssueTypeLight, []string{"light", "bulb", "lamp"}},
	{domain.IssueTypeFurniture, []string{"furniture", "chair", "table", "desk"}},
	{domain.IssueTypeElectronics, []string{"electronics", "computer", "screen"}},
	{domain.IssueTypeElectrical, []string{"electrical", "wire", "socket"}},
}

var (
	lowKeywords      = []string{"no maintenance issues", "no issues", "no visible issues", "minor", "slight"}
	criticalKeywords = []string{"severely", "broken", "damaged", "fire", "sparking", "dangerous", "hazard", "catastrophic", "major", "shattered"}
	mediumKeywords   = []string{"not working", "malfunctioning", "cracked", "bent", "loose", "leaking"}
)

// Classify derives issue type and priority from the lowercased summary via
// ordered substring matching. The low-keyword check deliberately precedes the
// critical-keyword check: a summary containing both resolves to low. That
// precedence is long-standing policy and must not be reordered.
func Classify(state State) State {
	issueText := strings.ToLower(state.IssueDetected)

	state.IssueType = domain.IssueTypeOther
	for _, entry := range issueTypeKeywords {
		if containsAny(issueText, entry.keywords) {
			state.IssueType = entry.issueType
			break
		}
	}

	switch {
	case containsAny(issueText, lowKeywords):
		state.Priority = domain.TicketPriorityLow
	case containsAny(issueText, criticalKeywords):
		state.Priority = domain.TicketPriorityHigh
	case containsAny(issueText, mediumKeywords):
		state.Priority = domain.TicketPriorityMedium
	default:
		state.Priority = domain.TicketPriorityLow
	}

	return state
}

// Finalize marks the state ready for persistence. Storage itself is the API
// layer's responsibility.
func Finalize(state State) State {
	state.TicketReady = true
	return state
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
