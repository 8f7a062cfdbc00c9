// Package critic implements the critique step: judge the current summary and
// produce the routing decision for the loop controller.
package critic

import (
	"context"
	"log"
	"strings"

	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/agent/prompt"
	"ai-research-be/pkg/agent/similarity"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/store"
)

type Critic struct {
	llmProvider llm.LLMProvider
	cfg         agent.Config
	logger      *log.Logger
}

func NewCritic(llmProvider llm.LLMProvider, cfg agent.Config, logger *log.Logger) *Critic {
	return &Critic{
		llmProvider: llmProvider,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run classifies the summary and resolves the session's next decision. It
// never returns an error: a failed classification call degrades to a
// conservative heuristic and still produces a concrete decision.
func (c *Critic) Run(ctx context.Context, session *store.ResearchSession) {
	session.LoopCount++

	classification, llmFailed := c.classify(ctx, session)

	// The raw classification is kept for display to a human reviewer even
	// when the overrides below route elsewhere.
	session.LastRecommendation = classification

	decision := c.route(session, classification, llmFailed)
	session.Decision = decision

	c.logger.Printf("[CRITIC] Loop: %d | Research: %d/%d | Summarize: %d/%d | Recommendation: %s | Decision: %s",
		session.LoopCount, session.ResearchCount, c.cfg.ResearchCap,
		session.SummarizeCount, c.cfg.SummarizeCap, classification, decision)
}

// classify asks the model for one of the three recommendation keywords and
// parses the reply by keyword search in fixed priority order: reresearch wins
// over resummarize wins over end, defaulting to resummarize. The tie-break
// order is observable behavior; do not reorder it.
func (c *Critic) classify(ctx context.Context, session *store.ResearchSession) (string, bool) {
	response, err := c.llmProvider.Generate(ctx,
		prompt.CriticEvaluation(
			session.Query, session.PreviousSummary, session.Summary,
			session.LoopCount, session.ResearchCount, session.SummarizeCount,
			c.cfg.ResearchCap, c.cfg.SummarizeCap,
		),
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(512),
	)
	if err != nil {
		c.logger.Printf("[CRITIC] Evaluation call failed, using heuristic: %v", err)
		return c.heuristic(session), true
	}

	return ParseRecommendation(response), false
}

// ParseRecommendation extracts the recommendation keyword from free-form
// model output.
func ParseRecommendation(response string) string {
	lowered := strings.ToLower(response)
	switch {
	case strings.Contains(lowered, store.RecommendReresearch):
		return store.RecommendReresearch
	case strings.Contains(lowered, store.RecommendResummarize):
		return store.RecommendResummarize
	case strings.Contains(lowered, store.RecommendEnd):
		return store.RecommendEnd
	default:
		return store.RecommendResummarize
	}
}

// heuristic is the fallback classifier when the model is unreachable: failure
// markers or very short summaries call for fresh research, everything else is
// uncertain and handled conservatively by route.
func (c *Critic) heuristic(session *store.ResearchSession) string {
	summary := strings.ToLower(strings.TrimSpace(session.Summary))
	if len(summary) < c.cfg.MinContentChars ||
		strings.Contains(summary, "failed") ||
		strings.Contains(summary, "was limited") ||
		strings.Contains(summary, strings.ToLower(store.PlaceholderMinimalInfo)) {
		return store.RecommendReresearch
	}
	return store.RecommendResummarize
}

// route applies the stagnation and limit overrides, in priority order, and
// maps the surviving recommendation onto a routing decision.
func (c *Critic) route(session *store.ResearchSession, classification string, llmFailed bool) string {
	rec := classification
	stagnant := similarity.Similar(session.Summary, session.PreviousSummary, c.cfg.SimilarityThreshold)

	// Stagnation override: resummarizing will not help if the summarizer
	// already produced something indistinguishable from before.
	if rec == store.RecommendResummarize && session.PreviousSummary != "" && stagnant {
		if session.ResearchCount < c.cfg.ResearchCap {
			rec = store.RecommendReresearch
		} else {
			rec = store.RecommendEnd
		}
	}

	escalate := false

	// Repeated near-identical output with the research budget nearly spent,
	// or an "end" verdict that merely repeats the previous pass, goes to a
	// human rather than burning the remaining attempts.
	if rec == store.RecommendReresearch && stagnant && session.ResearchCount >= c.cfg.ResearchCap-1 {
		escalate = true
	}
	if rec == store.RecommendEnd && session.PreviousSummary != "" && stagnant && session.LoopCount >= 2 {
		escalate = true
	}

	// Anti-infinite-loop guarantee: hard loop ceiling, or both budgets spent.
	if session.LoopCount >= c.cfg.LoopCeiling ||
		(session.ResearchCount >= c.cfg.ResearchCap && session.SummarizeCount >= c.cfg.SummarizeCap) {
		escalate = true
	}

	// Tunable review gate: once LoopCount reaches ReviewAfterLoops, every
	// decision is routed through the operator.
	if c.cfg.ReviewAfterLoops > 0 && session.LoopCount >= c.cfg.ReviewAfterLoops {
		escalate = true
	}

	// When the classifier itself was unreachable, anything short of a clear
	// research need is uncertain and goes to the operator.
	if llmFailed && rec != store.RecommendReresearch {
		escalate = true
	}

	if escalate {
		return store.DecisionEscalate
	}

	switch rec {
	case store.RecommendReresearch:
		return store.DecisionResearch
	case store.RecommendResummarize:
		return store.DecisionSummarize
	default:
		return store.DecisionStop
	}
}
