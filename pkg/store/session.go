package store

// ResearchSession is the mutable working state for one research query,
// threaded through every pipeline step.
type ResearchSession struct {
	ID    string `json:"id"`
	Query string `json:"query"` // Immutable after creation

	// Latest fetched source material, replaced on every research step
	RawContent string `json:"raw_content"`

	// Current best summary and the one it replaced
	Summary         string `json:"summary"`
	PreviousSummary string `json:"previous_summary"`

	// Pending routing signal, one of the Decision* constants. "" means the
	// controller should proceed normally.
	Decision string `json:"decision"`

	// Attempt counters
	LoopCount      int `json:"loop_count"`
	ResearchCount  int `json:"research_count"`
	SummarizeCount int `json:"summarize_count"`

	// The critic's raw suggestion before any override, kept for display to a
	// human reviewer even when the routed decision differs
	LastRecommendation string `json:"last_recommendation"`

	// Search strategies already attempted this session, ordered, no duplicates
	TriedStrategies []string `json:"tried_strategies"`
}

// Routing decisions
const (
	DecisionNone      = ""
	DecisionResearch  = "continue-research"
	DecisionSummarize = "continue-summarize"
	DecisionEscalate  = "escalate"
	DecisionStop      = "stop"
)

// Critic recommendations (raw classification vocabulary, before routing
// overrides are applied)
const (
	RecommendReresearch  = "reresearch"
	RecommendResummarize = "resummarize"
	RecommendEnd         = "end"
)

// NewResearchSession creates a fresh session for a query with all counters at
// zero and empty text fields.
func NewResearchSession(id, query string) *ResearchSession {
	return &ResearchSession{
		ID:    id,
		Query: query,
	}
}

// HasTriedStrategy reports whether the given search strategy was already
// attempted in this session.
func (s *ResearchSession) HasTriedStrategy(strategy string) bool {
	for _, tried := range s.TriedStrategies {
		if tried == strategy {
			return true
		}
	}
	return false
}

// RecordStrategy appends a strategy to the tried list, keeping it duplicate-free.
func (s *ResearchSession) RecordStrategy(strategy string) {
	if s.HasTriedStrategy(strategy) {
		return
	}
	s.TriedStrategies = append(s.TriedStrategies, strategy)
}

// ReplaceSummary moves the current summary into PreviousSummary and installs
// the new one. Used by both the summarize step and manual reviewer input so
// the stagnation check always sees the pre-overwrite value.
func (s *ResearchSession) ReplaceSummary(summary string) {
	s.PreviousSummary = s.Summary
	s.Summary = summary
}
