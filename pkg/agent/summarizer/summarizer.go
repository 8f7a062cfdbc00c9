// Package summarizer implements the summarization step: condense accumulated
// source material into a structured summary, revising the prior one.
package summarizer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/agent/prompt"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/store"
)

// LimitReachedNotice is installed as the summary when the attempt cap is hit
// before any summary was produced.
const LimitReachedNotice = "Maximum summarization attempts reached."

type Summarizer struct {
	llmProvider llm.LLMProvider
	cfg         agent.Config
	logger      *log.Logger
}

func NewSummarizer(llmProvider llm.LLMProvider, cfg agent.Config, logger *log.Logger) *Summarizer {
	return &Summarizer{
		llmProvider: llmProvider,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run executes one summarize attempt. At the cap boundary the session is left
// unchanged except for the stop signal, so the counter never exceeds its cap.
func (s *Summarizer) Run(ctx context.Context, session *store.ResearchSession) {
	if session.SummarizeCount >= s.cfg.SummarizeCap {
		if session.Summary == "" {
			session.Summary = LimitReachedNotice
		}
		session.Decision = store.DecisionStop
		s.logger.Printf("[SUMMARIZE] Attempt cap reached (%d), keeping current summary", s.cfg.SummarizeCap)
		return
	}

	session.SummarizeCount++

	var summary string
	if store.IsLowInformation(session.RawContent, s.cfg.MinContentChars) {
		summary = fmt.Sprintf("Research on '%s' was limited.", session.Query)
		s.logger.Printf("[SUMMARIZE] Raw content is error-like, emitting low-confidence summary")
	} else {
		summary = s.generate(ctx, session)
	}

	session.ReplaceSummary(summary)
	session.Decision = store.DecisionNone
}

// generate invokes the model with bounded retries, then falls back to the
// previous summary, then to an emergency truncation of the raw content.
func (s *Summarizer) generate(ctx context.Context, session *store.ResearchSession) string {
	content := store.Truncate(session.RawContent, s.cfg.ContentTruncation)
	temperature := 0.3 + float64(session.SummarizeCount)*0.1

	var lastErr error
	for attempt := 0; attempt <= s.cfg.SummarizeRetries; attempt++ {
		response, err := s.llmProvider.Generate(ctx,
			prompt.StructuredSynthesis(session.Query, content),
			llm.WithTemperature(temperature),
			llm.WithMaxTokens(2048),
		)
		if err != nil {
			lastErr = err
			continue
		}
		if trimmed := strings.TrimSpace(response); trimmed != "" {
			return trimmed
		}
		lastErr = llm.ErrEmptyResponse
	}

	s.logger.Printf("[SUMMARIZE] Generation failed after retries: %v", lastErr)

	if session.Summary != "" {
		return session.Summary
	}

	// Emergency summary: no model, no prior summary, only raw content left.
	return fmt.Sprintf("Summary of available material on '%s':\n\n%s",
		session.Query, store.Truncate(session.RawContent, 500))
}
