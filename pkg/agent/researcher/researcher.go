// Package researcher implements the research step: obtain new source material
// for the query, search-first with a generation fallback.
package researcher

import (
	"context"
	"fmt"
	"log"

	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/agent/prompt"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/search"
	"ai-research-be/pkg/store"
)

// strategyTemplates are the fixed query-variation phrasings, cycled by
// research count. The order is stable so tests and replays see the same
// sequence.
var strategyTemplates = []string{
	"%s overview explanation",
	"%s technical details and examples",
	"%s applications and case studies",
	"%s current trends and future prospects",
	"%s challenges and innovations",
}

// Researcher fetches raw content for a session. A nil search provider means
// the search capability is unconfigured and every attempt goes straight to
// the generation fallback.
type Researcher struct {
	searchProvider search.Provider
	llmProvider    llm.LLMProvider
	cfg            agent.Config
	logger         *log.Logger
}

func NewResearcher(searchProvider search.Provider, llmProvider llm.LLMProvider, cfg agent.Config, logger *log.Logger) *Researcher {
	return &Researcher{
		searchProvider: searchProvider,
		llmProvider:    llmProvider,
		cfg:            cfg,
		logger:         logger,
	}
}

// Run executes one research attempt. It always succeeds: external failures
// degrade through the fallback tiers and end at a tagged placeholder, never
// at an error.
func (r *Researcher) Run(ctx context.Context, session *store.ResearchSession) {
	session.ResearchCount++

	strategy := r.selectStrategy(session)
	session.RecordStrategy(strategy)

	r.logger.Printf("[RESEARCH] Attempt %d using strategy: %s", session.ResearchCount, strategy)

	result := r.trySearch(ctx, session.Query, strategy)

	if len(result) < r.cfg.MinContentChars {
		result = r.tryGenerate(ctx, session)
	}

	if result == "" {
		result = fmt.Sprintf("%s for '%s'.", store.PlaceholderMinimalInfo, session.Query)
		r.logger.Printf("[RESEARCH] All tiers failed, emitting placeholder")
	}

	session.RawContent = result
	session.Decision = store.DecisionNone
}

// selectStrategy picks the first template not yet tried; once every template
// has been used the set is reused from the start, keyed by research count.
func (r *Researcher) selectStrategy(session *store.ResearchSession) string {
	available := make([]string, 0, len(strategyTemplates))
	for _, tmpl := range strategyTemplates {
		candidate := fmt.Sprintf(tmpl, session.Query)
		if !session.HasTriedStrategy(candidate) {
			available = append(available, candidate)
		}
	}
	if len(available) == 0 {
		for _, tmpl := range strategyTemplates {
			available = append(available, fmt.Sprintf(tmpl, session.Query))
		}
	}

	idx := session.ResearchCount - 1
	if idx >= len(available) {
		idx = len(available) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return available[idx]
}

// trySearch runs the search capability and accepts the result only if it
// clears the minimum usefulness threshold.
func (r *Researcher) trySearch(ctx context.Context, query, strategy string) string {
	if r.searchProvider == nil {
		return ""
	}

	results, err := r.searchProvider.Search(ctx, strategy)
	if err != nil {
		r.logger.Printf("[RESEARCH] Search failed, falling back to generation: %v", err)
		return ""
	}

	formatted := search.FormatResults(results)
	if len(formatted) <= r.cfg.MinSearchChars {
		r.logger.Printf("[RESEARCH] Search result too small (%d chars), falling back", len(formatted))
		return ""
	}

	body := store.Truncate(formatted, r.cfg.ContentTruncation)
	return fmt.Sprintf("Web search results for '%s':\n\n%s", query, body)
}

// tryGenerate asks the generation capability to explain the topic directly,
// nudging the temperature up per attempt to encourage diverse phrasing.
func (r *Researcher) tryGenerate(ctx context.Context, session *store.ResearchSession) string {
	temperature := 0.2 + float64(session.ResearchCount)*0.1

	explanation, err := r.llmProvider.Generate(ctx,
		prompt.ResearchExplanation(session.Query, session.TriedStrategies),
		llm.WithTemperature(temperature),
		llm.WithMaxTokens(1500),
	)
	if err != nil {
		r.logger.Printf("[RESEARCH] Generation fallback failed: %v", err)
		return ""
	}
	return explanation
}
