// Package executor implements the loop controller that sequences the
// research, summarize, and critique steps under attempt and iteration caps.
package executor

import (
	"context"
	"log"

	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/agent/critic"
	"ai-research-be/pkg/agent/feedback"
	"ai-research-be/pkg/agent/researcher"
	"ai-research-be/pkg/agent/summarizer"
	"ai-research-be/pkg/store"
)

// Phase names for observers (websocket events, CLI status lines).
const (
	PhaseResearch  = "research"
	PhaseSummarize = "summarize"
	PhaseCritique  = "critique"
	PhaseEscalate  = "escalate"
	PhaseStop      = "stop"
)

// PhaseFunc is notified after each completed phase. May be nil.
type PhaseFunc func(phase string, session *store.ResearchSession)

// Executor coordinates one session's pipeline. It holds only read-only
// collaborators, so one instance can serve many sessions.
type Executor struct {
	researcher *researcher.Researcher
	summarizer *summarizer.Summarizer
	critic     *critic.Critic
	cfg        agent.Config
	logger     *log.Logger
	onPhase    PhaseFunc
}

func New(
	r *researcher.Researcher,
	s *summarizer.Summarizer,
	c *critic.Critic,
	cfg agent.Config,
	logger *log.Logger,
) *Executor {
	return &Executor{
		researcher: r,
		summarizer: s,
		critic:     c,
		cfg:        cfg,
		logger:     logger,
	}
}

// SetPhaseCallback registers an observer for phase completions.
func (e *Executor) SetPhaseCallback(fn PhaseFunc) {
	e.onPhase = fn
}

func (e *Executor) notify(phase string, session *store.ResearchSession) {
	if e.onPhase != nil {
		e.onPhase(phase, session)
	}
}

// Config exposes the loop tuning, for callers that present budgets.
func (e *Executor) Config() agent.Config {
	return e.cfg
}

// Step runs one automatic cycle: the entry phase implied by the pending
// decision, then unconditionally through critique. On return the session's
// decision is one of continue-research, continue-summarize, escalate or stop.
func (e *Executor) Step(ctx context.Context, session *store.ResearchSession) {
	switch session.Decision {
	case store.DecisionSummarize:
		if session.SummarizeCount >= e.cfg.SummarizeCap {
			session.Decision = store.DecisionStop
			return
		}
	case store.DecisionResearch, store.DecisionNone:
		if session.Decision == store.DecisionResearch && session.ResearchCount >= e.cfg.ResearchCap {
			session.Decision = store.DecisionStop
			return
		}
	case store.DecisionStop, store.DecisionEscalate:
		// Stopped sessions are terminal; escalated ones belong to the
		// operator until feedback resolves them.
		return
	}

	if session.Decision != store.DecisionSummarize {
		e.researcher.Run(ctx, session)
		e.notify(PhaseResearch, session)
	}

	e.summarizer.Run(ctx, session)
	e.notify(PhaseSummarize, session)
	if session.Decision == store.DecisionStop {
		// Summarize cap short-circuit ends the cycle without a critique pass.
		return
	}

	e.critic.Run(ctx, session)
	e.notify(PhaseCritique, session)
}

// Run drives the session to a terminal state, consulting reviewer whenever
// the critic escalates. A nil reviewer accepts the current summary, so
// headless deployments still terminate.
func (e *Executor) Run(ctx context.Context, session *store.ResearchSession, reviewer feedback.Reviewer) error {
	for iterations := 0; iterations < e.cfg.MaxIterations; iterations++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch session.Decision {
		case store.DecisionStop:
			e.notify(PhaseStop, session)
			return nil

		case store.DecisionEscalate:
			if err := e.escalate(ctx, session, reviewer); err != nil {
				return err
			}

		default:
			e.Step(ctx, session)
		}
	}

	// Global iteration ceiling reached: treated as implicit completion, not
	// failure. Whatever summary exists is the result.
	e.logger.Printf("[LOOP] Iteration ceiling (%d) reached, stopping", e.cfg.MaxIterations)
	session.Decision = store.DecisionStop
	e.notify(PhaseStop, session)
	return nil
}

// escalate suspends the loop for an operator decision, re-prompting while the
// chosen action is refused for exceeding its cap.
func (e *Executor) escalate(ctx context.Context, session *store.ResearchSession, reviewer feedback.Reviewer) error {
	e.notify(PhaseEscalate, session)

	if reviewer == nil {
		// No operator available: accept what we have.
		return feedback.Apply(session, feedback.Choice{Action: feedback.ActionAccept}, e.cfg)
	}

	for {
		choice, err := reviewer.Review(ctx, feedback.NewReview(session, e.cfg))
		if err != nil {
			return err
		}

		switch applyErr := feedback.Apply(session, choice, e.cfg); applyErr {
		case nil:
			return nil
		case feedback.ErrResearchExhausted, feedback.ErrSummarizeExhausted, feedback.ErrUnknownAction:
			e.logger.Printf("[LOOP] Reviewer choice refused: %v", applyErr)
			// Re-prompt; the session was not mutated.
		default:
			return applyErr
		}
	}
}
