// Package agent holds the shared tuning knobs for the iterative research
// pipeline. All values carry the defaults of the original tuning but are
// plain configuration: callers override them per deployment.
package agent

// Config bounds the research loop. The zero value is not usable; construct
// with DefaultConfig and override fields as needed.
type Config struct {
	// Per-step attempt caps
	ResearchCap  int
	SummarizeCap int

	// Hard ceiling on critique-or-escalation passes before control is forced
	// to a human
	LoopCeiling int

	// Global ceiling on controller iterations, independent of the per-step
	// caps. Protects against decision sequences that alternate without
	// incrementing the right counter.
	MaxIterations int

	// ReviewAfterLoops forces every non-terminal critic decision into
	// escalation once LoopCount reaches this value. 0 disables the override.
	// The default of 1 mirrors the historical behavior where nearly every
	// pass asks the operator to confirm.
	ReviewAfterLoops int

	// Stagnation threshold for the character-level similarity ratio
	SimilarityThreshold float64

	// Minimum size of a useful search result
	MinSearchChars int

	// Below this, raw content is treated as error-like
	MinContentChars int

	// Raw content is clipped to this many characters before summarization
	ContentTruncation int

	// Extra generation attempts inside the summarize step
	SummarizeRetries int
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		ResearchCap:         4,
		SummarizeCap:        4,
		LoopCeiling:         6,
		MaxIterations:       30,
		ReviewAfterLoops:    1,
		SimilarityThreshold: 0.75,
		MinSearchChars:      50,
		MinContentChars:     100,
		ContentTruncation:   2000,
		SummarizeRetries:    2,
	}
}
