// Package feedback defines the human-in-the-loop escalation contract. The
// actual input/output mechanism (terminal prompt, web form) lives with the
// caller; this package owns the four-way decision and its cap rules.
package feedback

import (
	"context"
	"errors"

	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/store"
)

// Action is the operator's choice when the automatic loop is suspended.
type Action string

const (
	ActionAccept         Action = "accept"
	ActionMoreResearch   Action = "more-research"
	ActionImproveSummary Action = "improve-summary"
	ActionManualSummary  Action = "manual"
)

// Choice carries the selected action plus the replacement text for manual
// summaries.
type Choice struct {
	Action        Action
	ManualSummary string
}

// Review presents the paused session to an operator.
type Review struct {
	Query          string
	Summary        string
	Recommendation string
	LoopCount      int
	ResearchCount  int
	SummarizeCount int

	// Remaining budget, so the presenter can disable exhausted actions
	ResearchAllowed  bool
	SummarizeAllowed bool
}

// Reviewer obtains exactly one choice from an external operator.
type Reviewer interface {
	Review(ctx context.Context, review Review) (Choice, error)
}

// Refusal errors: the requested action exceeds its attempt cap. The session
// is left unmutated and the operator should be re-prompted.
var (
	ErrResearchExhausted  = errors.New("feedback: research attempt cap reached")
	ErrSummarizeExhausted = errors.New("feedback: summarize attempt cap reached")
	ErrUnknownAction      = errors.New("feedback: unknown action")
)

// NewReview builds the presentation snapshot for a paused session.
func NewReview(session *store.ResearchSession, cfg agent.Config) Review {
	return Review{
		Query:            session.Query,
		Summary:          session.Summary,
		Recommendation:   session.LastRecommendation,
		LoopCount:        session.LoopCount,
		ResearchCount:    session.ResearchCount,
		SummarizeCount:   session.SummarizeCount,
		ResearchAllowed:  session.ResearchCount < cfg.ResearchCap,
		SummarizeAllowed: session.SummarizeCount < cfg.SummarizeCap,
	}
}

// Apply mutates the session according to the operator's choice. Cap-violating
// choices are refused with no state mutation so the caller can re-prompt.
// Every accepted choice counts as one loop pass.
func Apply(session *store.ResearchSession, choice Choice, cfg agent.Config) error {
	switch choice.Action {
	case ActionAccept:
		session.Decision = store.DecisionStop
	case ActionMoreResearch:
		if session.ResearchCount >= cfg.ResearchCap {
			return ErrResearchExhausted
		}
		session.Decision = store.DecisionResearch
	case ActionImproveSummary:
		if session.SummarizeCount >= cfg.SummarizeCap {
			return ErrSummarizeExhausted
		}
		session.Decision = store.DecisionSummarize
	case ActionManualSummary:
		session.ReplaceSummary(choice.ManualSummary)
		session.Decision = store.DecisionStop
	default:
		return ErrUnknownAction
	}

	session.LoopCount++
	return nil
}
